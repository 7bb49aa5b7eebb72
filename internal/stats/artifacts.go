package stats

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"cgpkit/internal/resources"
)

const (
	runIndexFile   = "run_index.json"
	configFile     = "config.json"
	runsFile       = "runs.csv"
	summaryFile    = "summary.json"
	chromosomeFile = "best.chr"
)

var ErrExperimentID = errors.New("experiment id is required")

var runsHeader = []string{"run", "generation", "fitness", "active_nodes", "successful"}

type ExperimentConfig struct {
	ExperimentID string               `json:"experiment_id"`
	Problem      string               `json:"problem"`
	Strategy     string               `json:"strategy"`
	Mutator      string               `json:"mutator"`
	Parameters   resources.Parameters `json:"parameters"`
	Arity        int                  `json:"arity"`
	Functions    []string             `json:"functions"`
	CreatedAtUTC string               `json:"created_at_utc,omitempty"`
}

// Artifacts is everything written for one experiment. BestChromosome holds
// the flat chromosome text of the fittest chromosome of the last run and may
// be empty.
type Artifacts struct {
	Config         ExperimentConfig
	Runs           []RunEntry
	Summary        Summary
	BestChromosome string
}

type RunIndexEntry struct {
	ExperimentID   string  `json:"experiment_id"`
	Problem        string  `json:"problem"`
	Runs           int     `json:"runs"`
	SuccessfulRuns int     `json:"successful_runs"`
	HighestFitness float64 `json:"highest_fitness"`
	CreatedAtUTC   string  `json:"created_at_utc"`
}

// WriteArtifacts writes the experiment directory under baseDir and returns
// its path.
func WriteArtifacts(baseDir string, artifacts Artifacts) (string, error) {
	id := strings.TrimSpace(artifacts.Config.ExperimentID)
	if id == "" {
		return "", ErrExperimentID
	}

	dir := filepath.Join(baseDir, id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(dir, configFile), artifacts.Config); err != nil {
		return "", err
	}
	if err := writeRuns(filepath.Join(dir, runsFile), artifacts.Runs); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(dir, summaryFile), artifacts.Summary); err != nil {
		return "", err
	}
	if artifacts.BestChromosome != "" {
		if err := os.WriteFile(filepath.Join(dir, chromosomeFile), []byte(artifacts.BestChromosome), 0o644); err != nil {
			return "", err
		}
	}
	return dir, nil
}

// AppendRunIndex adds entry to the index in baseDir, replacing any entry with
// the same experiment id.
func AppendRunIndex(baseDir string, entry RunIndexEntry) error {
	if entry.ExperimentID == "" {
		return ErrExperimentID
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return err
	}

	index, err := readRunIndex(baseDir)
	if err != nil {
		return err
	}
	for i := range index {
		if index[i].ExperimentID == entry.ExperimentID {
			index[i] = entry
			return writeJSON(filepath.Join(baseDir, runIndexFile), index)
		}
	}
	index = append(index, entry)
	return writeJSON(filepath.Join(baseDir, runIndexFile), index)
}

// ListRunIndex returns the index newest first. Entries with equal timestamps
// keep the later appended one first.
func ListRunIndex(baseDir string) ([]RunIndexEntry, error) {
	entries, err := readRunIndex(baseDir)
	if err != nil {
		return nil, err
	}
	reversed := make([]RunIndexEntry, len(entries))
	for i, e := range entries {
		reversed[len(entries)-1-i] = e
	}
	sort.SliceStable(reversed, func(i, j int) bool {
		return reversed[i].CreatedAtUTC > reversed[j].CreatedAtUTC
	})
	return reversed, nil
}

func readRunIndex(baseDir string) ([]RunIndexEntry, error) {
	data, err := os.ReadFile(filepath.Join(baseDir, runIndexFile))
	if err != nil {
		if os.IsNotExist(err) {
			return []RunIndexEntry{}, nil
		}
		return nil, err
	}
	var entries []RunIndexEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func ReadConfig(baseDir, id string) (ExperimentConfig, bool, error) {
	var cfg ExperimentConfig
	ok, err := readJSON(filepath.Join(baseDir, id, configFile), &cfg)
	return cfg, ok, err
}

func ReadSummary(baseDir, id string) (Summary, bool, error) {
	var summary Summary
	ok, err := readJSON(filepath.Join(baseDir, id, summaryFile), &summary)
	return summary, ok, err
}

func ReadRuns(baseDir, id string) ([]RunEntry, bool, error) {
	file, err := os.Open(filepath.Join(baseDir, id, runsFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = len(runsHeader)
	if _, err := reader.Read(); err != nil {
		if err == io.EOF {
			return []RunEntry{}, true, nil
		}
		return nil, false, err
	}

	var runs []RunEntry
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, false, err
		}
		entry, err := parseRun(record)
		if err != nil {
			return nil, false, fmt.Errorf("runs row %d: %w", len(runs)+1, err)
		}
		runs = append(runs, entry)
	}
	return runs, true, nil
}

func ReadBestChromosome(baseDir, id string) (string, bool, error) {
	data, err := os.ReadFile(filepath.Join(baseDir, id, chromosomeFile))
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, err
	}
	return string(data), true, nil
}

// ExportArtifacts copies an experiment directory to outDir and returns the
// destination path.
func ExportArtifacts(baseDir, id, outDir string) (string, error) {
	if id == "" {
		return "", ErrExperimentID
	}
	src := filepath.Join(baseDir, id)
	if _, err := os.Stat(src); err != nil {
		return "", err
	}
	dst := filepath.Join(outDir, id)
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return "", err
	}
	for _, file := range []string{configFile, runsFile, summaryFile} {
		if err := copyFile(filepath.Join(src, file), filepath.Join(dst, file)); err != nil {
			return "", err
		}
	}
	if _, err := os.Stat(filepath.Join(src, chromosomeFile)); err == nil {
		if err := copyFile(filepath.Join(src, chromosomeFile), filepath.Join(dst, chromosomeFile)); err != nil {
			return "", err
		}
	} else if !os.IsNotExist(err) {
		return "", err
	}
	return dst, nil
}

func writeRuns(path string, runs []RunEntry) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(runsHeader); err != nil {
		return err
	}
	for _, run := range runs {
		if err := writer.Write([]string{
			strconv.Itoa(run.Run),
			strconv.Itoa(run.Generation),
			strconv.FormatFloat(run.Fitness, 'f', -1, 64),
			strconv.Itoa(run.ActiveNodes),
			strconv.FormatBool(run.Successful),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func parseRun(record []string) (RunEntry, error) {
	var entry RunEntry
	var err error
	if entry.Run, err = strconv.Atoi(record[0]); err != nil {
		return RunEntry{}, err
	}
	if entry.Generation, err = strconv.Atoi(record[1]); err != nil {
		return RunEntry{}, err
	}
	if entry.Fitness, err = strconv.ParseFloat(record[2], 64); err != nil {
		return RunEntry{}, err
	}
	if entry.ActiveNodes, err = strconv.Atoi(record[3]); err != nil {
		return RunEntry{}, err
	}
	if entry.Successful, err = strconv.ParseBool(record[4]); err != nil {
		return RunEntry{}, err
	}
	return entry, nil
}

func writeJSON(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}

func readJSON(path string, value any) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, value); err != nil {
		return false, err
	}
	return true, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
