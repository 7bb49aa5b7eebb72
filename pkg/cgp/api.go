// Package cgp is the public entry point for running Cartesian genetic
// programming experiments and inspecting their stored results.
package cgp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"cgpkit/internal/config"
	"cgpkit/internal/experiment"
	"cgpkit/internal/genome"
	"cgpkit/internal/metrics"
	"cgpkit/internal/model"
	"cgpkit/internal/parser"
	"cgpkit/internal/resources"
	"cgpkit/internal/stats"
	"cgpkit/internal/storage"
)

const (
	defaultDBPath     = "cgp.db"
	defaultExportsDir = "exports"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrMissingCases   = errors.New("a test case file is required")
	ErrUnknownFormat  = errors.New("unknown export format")
	ErrInvalidRequest = errors.New("invalid request")
)

type Options struct {
	StoreKind    string
	DBPath       string
	ArtifactsDir string
	ExportsDir   string
	Logger       *slog.Logger
}

type Client struct {
	store        storage.Store
	artifactsDir string
	exportsDir   string
	logger       *slog.Logger

	initOnce sync.Once
	initErr  error
}

// RunRequest runs one experiment. File paths in Settings are read from disk.
type RunRequest struct {
	Settings config.Settings

	// SaveBestPath receives the chromosome of the best run.
	SaveBestPath string
}

type RunSummary struct {
	ExperimentID   string
	Problem        string
	Parameters     resources.Parameters
	Runs           []stats.RunEntry
	Summary        stats.Summary
	BestChromosome string
	ArtifactsDir   string
}

type ExportRequest struct {
	ExperimentID string

	// Run selects a logged run, 1-based.
	Run int

	// Format is "chr" or "dot".
	Format string
}

func New(opts Options) (*Client, error) {
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	exportsDir := opts.ExportsDir
	if exportsDir == "" {
		exportsDir = defaultExportsDir
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	store, err := storage.NewStore(opts.StoreKind, dbPath)
	if err != nil {
		return nil, err
	}
	return &Client{
		store:        store,
		artifactsDir: opts.ArtifactsDir,
		exportsDir:   exportsDir,
		logger:       logger,
	}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Init(ctx context.Context) error {
	c.initOnce.Do(func() {
		c.initErr = c.store.Init(ctx)
	})
	return c.initErr
}

// Run builds the requested problem from its files, runs every configured run
// and records the outcome in the store, and in the artifacts directory when
// one is configured.
func (c *Client) Run(ctx context.Context, req RunRequest) (RunSummary, error) {
	if err := c.Init(ctx); err != nil {
		return RunSummary{}, err
	}
	k, err := lookupKind(req.Settings.Problem)
	if err != nil {
		return RunSummary{}, err
	}
	return k.run(ctx, c, req)
}

func runProblem[T any](ctx context.Context, c *Client, req RunRequest, p caseProblem[T]) (RunSummary, error) {
	s := req.Settings
	params := resources.DefaultParameters()
	if s.ParametersFile != "" {
		data, err := os.ReadFile(s.ParametersFile)
		if err != nil {
			return RunSummary{}, err
		}
		if params, err = parser.ParseParameters(bytes.NewReader(data), params); err != nil {
			return RunSummary{}, fmt.Errorf("%s: %w", s.ParametersFile, err)
		}
		if err := parser.ParseFunctions(bytes.NewReader(data), p.Functions(), c.logger); err != nil {
			return RunSummary{}, fmt.Errorf("%s: %w", s.ParametersFile, err)
		}
	}
	if err := applyFunctionSettings(p.Functions(), s.Functions); err != nil {
		return RunSummary{}, err
	}

	if s.CasesFile == "" {
		return RunSummary{}, ErrMissingCases
	}
	f, err := os.Open(s.CasesFile)
	if err != nil {
		return RunSummary{}, err
	}
	cases, err := parser.LoadTestCases(f, p)
	f.Close()
	if err != nil {
		return RunSummary{}, fmt.Errorf("%s: %w", s.CasesFile, err)
	}
	params.Inputs, params.Outputs = cases.Inputs, cases.Outputs

	if params, err = s.Parameters(params); err != nil {
		return RunSummary{}, err
	}
	indexing, err := parser.ParseNodeIndexing(s.Chromosome.Indexing)
	if err != nil {
		return RunSummary{}, err
	}

	var recorder *metrics.Recorder
	if s.MetricsFile != "" {
		recorder = metrics.New()
	}
	id := uuid.NewString()
	exp, err := experiment.New(experiment.Config[T]{
		ID:         id,
		Parameters: params,
		Problem:    p,
		Strategy:   s.Strategy,
		Mutator:    s.Mutator,
		Indexing:   indexing,
		Logger:     c.logger.With("experiment_id", id),
		Metrics:    recorder,
	})
	if err != nil {
		return RunSummary{}, err
	}
	if s.Chromosome.File != "" {
		f, err := os.Open(s.Chromosome.File)
		if err != nil {
			return RunSummary{}, err
		}
		err = exp.LoadChromosome(f, s.Chromosome.Index, parser.ChromosomeOptions{Indexing: indexing, AllowForward: s.Chromosome.AllowForward})
		f.Close()
		if err != nil {
			return RunSummary{}, fmt.Errorf("%s: %w", s.Chromosome.File, err)
		}
	}

	record := model.ExperimentRecord{
		VersionedRecord: storage.CurrentVersion(),
		ID:              id,
		Problem:         s.Problem,
		Strategy:        exp.Strategy().Name(),
		Mutator:         exp.Mutator().Name(),
		Grid:            gridRecord(params, exp.Resources().Arity()),
		Functions:       enabledNames(p.Functions()),
		Indexing:        indexing.String(),
		CreatedAtUTC:    time.Now().UTC().Format(time.RFC3339Nano),
	}
	if err := c.store.SaveExperiment(ctx, record); err != nil {
		return RunSummary{}, err
	}

	var (
		saveErr     error
		best        string
		bestFitness float64
	)
	exp.OnRunComplete(func(entry stats.RunEntry, chr *genome.Chromosome[T]) {
		if saveErr != nil {
			return
		}
		text, err := parser.FormatChromosome(chr, indexing)
		if err != nil {
			saveErr = err
			return
		}
		if best == "" || p.Orientation().Better(entry.Fitness, bestFitness) {
			best, bestFitness = text, entry.Fitness
		}
		saveErr = c.store.SaveRun(ctx, model.RunRecord{
			VersionedRecord: storage.CurrentVersion(),
			ExperimentID:    id,
			Run:             entry.Run,
			Generation:      entry.Generation,
			Fitness:         entry.Fitness,
			ActiveNodes:     entry.ActiveNodes,
			Successful:      entry.Successful,
			Chromosome:      text,
		})
	})
	if err := exp.Start(ctx); err != nil {
		return RunSummary{}, err
	}
	if saveErr != nil {
		return RunSummary{}, fmt.Errorf("save run: %w", saveErr)
	}

	summary := exp.Statistics().Summary()
	record.CompletedRuns = summary.Runs
	record.SuccessfulRuns = summary.SuccessfulRuns
	record.HighestFitness = summary.HighestFitness
	if err := c.store.SaveExperiment(ctx, record); err != nil {
		return RunSummary{}, err
	}

	out := RunSummary{
		ExperimentID:   id,
		Problem:        s.Problem,
		Parameters:     params,
		Runs:           exp.Statistics().Entries(),
		Summary:        summary,
		BestChromosome: best,
	}

	artifactsDir := s.ArtifactsDir
	if artifactsDir == "" {
		artifactsDir = c.artifactsDir
	}
	if artifactsDir != "" {
		dir, err := stats.WriteArtifacts(artifactsDir, stats.Artifacts{
			Config: stats.ExperimentConfig{
				ExperimentID: id,
				Problem:      s.Problem,
				Strategy:     record.Strategy,
				Mutator:      record.Mutator,
				Parameters:   params,
				Arity:        record.Grid.Arity,
				Functions:    record.Functions,
				CreatedAtUTC: record.CreatedAtUTC,
			},
			Runs:           out.Runs,
			Summary:        summary,
			BestChromosome: best,
		})
		if err != nil {
			return RunSummary{}, err
		}
		if err := stats.AppendRunIndex(artifactsDir, stats.RunIndexEntry{
			ExperimentID:   id,
			Problem:        s.Problem,
			Runs:           summary.Runs,
			SuccessfulRuns: summary.SuccessfulRuns,
			HighestFitness: summary.HighestFitness,
			CreatedAtUTC:   record.CreatedAtUTC,
		}); err != nil {
			return RunSummary{}, err
		}
		out.ArtifactsDir = dir
	}
	if err := recorder.WriteTextfile(s.MetricsFile); err != nil {
		return RunSummary{}, err
	}
	if req.SaveBestPath != "" {
		if err := os.WriteFile(req.SaveBestPath, []byte(best), 0o644); err != nil {
			return RunSummary{}, err
		}
	}
	return out, nil
}

func gridRecord(p resources.Parameters, arity int) model.GridRecord {
	return model.GridRecord{
		Rows:           p.Rows,
		Columns:        p.Columns,
		Inputs:         p.Inputs,
		Outputs:        p.Outputs,
		LevelsBack:     p.LevelsBack,
		Arity:          arity,
		PopulationSize: p.PopulationSize,
		Generations:    p.Generations,
		Runs:           p.Runs,
		Seed:           p.Seed,
	}
}

// Experiments lists stored experiments newest first. limit <= 0 means all.
func (c *Client) Experiments(ctx context.Context, limit int) ([]model.ExperimentRecord, error) {
	if err := c.Init(ctx); err != nil {
		return nil, err
	}
	list, err := c.store.ListExperiments(ctx)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (c *Client) Experiment(ctx context.Context, id string) (model.ExperimentRecord, []model.RunRecord, error) {
	if err := c.Init(ctx); err != nil {
		return model.ExperimentRecord{}, nil, err
	}
	record, ok, err := c.store.GetExperiment(ctx, id)
	if err != nil {
		return model.ExperimentRecord{}, nil, err
	}
	if !ok {
		return model.ExperimentRecord{}, nil, fmt.Errorf("experiment %s: %w", id, ErrNotFound)
	}
	runs, _, err := c.store.GetRuns(ctx, id)
	if err != nil {
		return model.ExperimentRecord{}, nil, err
	}
	return record, runs, nil
}

// Export renders the chromosome stored for one run.
func (c *Client) Export(ctx context.Context, req ExportRequest) ([]byte, error) {
	record, runs, err := c.Experiment(ctx, req.ExperimentID)
	if err != nil {
		return nil, err
	}
	var run *model.RunRecord
	for i := range runs {
		if runs[i].Run == req.Run {
			run = &runs[i]
		}
	}
	if run == nil {
		return nil, fmt.Errorf("experiment %s run %d: %w", req.ExperimentID, req.Run, ErrNotFound)
	}

	switch req.Format {
	case "", "chr":
		return []byte(run.Chromosome), nil
	case "dot":
		k, err := lookupKind(record.Problem)
		if err != nil {
			return nil, err
		}
		return k.dot(record, run.Chromosome)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, req.Format)
}

// ExportArtifacts copies an experiment's artifact directory to the exports
// directory.
func (c *Client) ExportArtifacts(_ context.Context, id string) (string, error) {
	if c.artifactsDir == "" {
		return "", fmt.Errorf("%w: no artifacts directory configured", ErrInvalidRequest)
	}
	dir, err := stats.ExportArtifacts(c.artifactsDir, id, c.exportsDir)
	if err != nil {
		return "", err
	}
	return filepath.Clean(dir), nil
}
