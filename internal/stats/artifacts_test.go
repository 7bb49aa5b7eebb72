package stats

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"cgpkit/internal/resources"
)

func sampleArtifacts(id string) Artifacts {
	logger := NewLogger()
	logger.LogRun(RunEntry{Run: 1, Generation: 12, Fitness: 8, ActiveNodes: 4, Successful: true})
	logger.LogRun(RunEntry{Run: 2, Generation: 40, Fitness: 6.5, ActiveNodes: 7})
	return Artifacts{
		Config: ExperimentConfig{
			ExperimentID: id,
			Problem:      "digital",
			Strategy:     "mu-plus-lambda",
			Mutator:      "percent-point",
			Parameters:   resources.DefaultParameters(),
			Arity:        3,
			Functions:    []string{"And", "Or"},
		},
		Runs:           logger.Entries(),
		Summary:        logger.Summary(),
		BestChromosome: " 0 1 6\t\t\t 3\n",
	}
}

func TestWriteReadAndExportArtifacts(t *testing.T) {
	baseDir := t.TempDir()
	outDir := filepath.Join(t.TempDir(), "exports")

	dir, err := WriteArtifacts(baseDir, sampleArtifacts("exp-1"))
	if err != nil {
		t.Fatalf("write artifacts: %v", err)
	}
	for _, file := range []string{configFile, runsFile, summaryFile, chromosomeFile} {
		if _, err := os.Stat(filepath.Join(dir, file)); err != nil {
			t.Fatalf("expected file %s: %v", file, err)
		}
	}

	cfg, ok, err := ReadConfig(baseDir, "exp-1")
	if err != nil || !ok {
		t.Fatalf("read config: ok=%v err=%v", ok, err)
	}
	if cfg.Problem != "digital" || cfg.Parameters.Rows != 5 || len(cfg.Functions) != 2 {
		t.Fatalf("unexpected config: %+v", cfg)
	}

	runs, ok, err := ReadRuns(baseDir, "exp-1")
	if err != nil || !ok {
		t.Fatalf("read runs: ok=%v err=%v", ok, err)
	}
	if len(runs) != 2 || !runs[0].Successful || runs[1].Fitness != 6.5 || runs[1].ActiveNodes != 7 {
		t.Fatalf("unexpected runs: %+v", runs)
	}

	summary, ok, err := ReadSummary(baseDir, "exp-1")
	if err != nil || !ok {
		t.Fatalf("read summary: ok=%v err=%v", ok, err)
	}
	if summary.SuccessfulRuns != 1 || summary.Runs != 2 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	chr, ok, err := ReadBestChromosome(baseDir, "exp-1")
	if err != nil || !ok || chr != " 0 1 6\t\t\t 3\n" {
		t.Fatalf("read chromosome: %q ok=%v err=%v", chr, ok, err)
	}

	exported, err := ExportArtifacts(baseDir, "exp-1", outDir)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	for _, file := range []string{configFile, runsFile, summaryFile, chromosomeFile} {
		if _, err := os.Stat(filepath.Join(exported, file)); err != nil {
			t.Fatalf("expected exported file %s: %v", file, err)
		}
	}
}

func TestArtifactsWithoutChromosome(t *testing.T) {
	baseDir := t.TempDir()
	a := sampleArtifacts("exp-2")
	a.BestChromosome = ""
	if _, err := WriteArtifacts(baseDir, a); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, ok, err := ReadBestChromosome(baseDir, "exp-2"); err != nil || ok {
		t.Fatalf("expected no chromosome, ok=%v err=%v", ok, err)
	}
	if _, err := ExportArtifacts(baseDir, "exp-2", t.TempDir()); err != nil {
		t.Fatalf("export without chromosome: %v", err)
	}
}

func TestReadMissingArtifacts(t *testing.T) {
	baseDir := t.TempDir()
	if _, ok, err := ReadConfig(baseDir, "missing"); err != nil || ok {
		t.Fatalf("config: ok=%v err=%v", ok, err)
	}
	if _, ok, err := ReadRuns(baseDir, "missing"); err != nil || ok {
		t.Fatalf("runs: ok=%v err=%v", ok, err)
	}
}

func TestArtifactsRequireExperimentID(t *testing.T) {
	if _, err := WriteArtifacts(t.TempDir(), sampleArtifacts(" ")); !errors.Is(err, ErrExperimentID) {
		t.Fatalf("expected ErrExperimentID, got %v", err)
	}
	if err := AppendRunIndex(t.TempDir(), RunIndexEntry{}); !errors.Is(err, ErrExperimentID) {
		t.Fatalf("expected ErrExperimentID, got %v", err)
	}
}

func TestRunIndexOrderingAndReplacement(t *testing.T) {
	baseDir := t.TempDir()
	for _, entry := range []RunIndexEntry{
		{ExperimentID: "a", CreatedAtUTC: "2026-01-01T00:00:00Z"},
		{ExperimentID: "b", CreatedAtUTC: "2026-01-02T00:00:00Z"},
		{ExperimentID: "c", CreatedAtUTC: "2026-01-02T00:00:00Z"},
		{ExperimentID: "a", CreatedAtUTC: "2026-01-01T00:00:00Z", Runs: 5},
	} {
		if err := AppendRunIndex(baseDir, entry); err != nil {
			t.Fatalf("append %s: %v", entry.ExperimentID, err)
		}
	}
	index, err := ListRunIndex(baseDir)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(index) != 3 {
		t.Fatalf("expected 3 entries, got %+v", index)
	}
	if index[0].ExperimentID != "c" || index[1].ExperimentID != "b" || index[2].ExperimentID != "a" {
		t.Fatalf("unexpected order: %+v", index)
	}
	if index[2].Runs != 5 {
		t.Fatalf("expected replaced entry, got %+v", index[2])
	}
}
