package main

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"cgpkit/internal/config"
	"cgpkit/internal/evo"
	"cgpkit/pkg/cgp"
)

func newFlagSet(name string) *flag.FlagSet {
	return flag.NewFlagSet(name, flag.ContinueOnError)
}

func runRun(ctx context.Context, args []string) error {
	fs := newFlagSet("run")
	configPath := fs.String("config", "", "optional settings file (.toml, .yaml, .yml or .json)")
	problemName := fs.String("problem", cgp.ProblemDigital, "problem: "+strings.Join(cgp.Problems(), "|"))
	parPath := fs.String("par", "", "legacy .par parameter file")
	casesPath := fs.String("cases", "", "test case file")
	strategy := fs.String("strategy", evo.StrategyMuPlusLambda, "strategy: "+strings.Join(evo.StrategyNames(), "|"))
	mutator := fs.String("mutator", evo.MutatorPercentPoint, "mutator: "+strings.Join(evo.MutatorNames(), "|"))
	mu := fs.Int("mu", 1, "mu+lambda parents")
	lambda := fs.Int("lambda", 4, "mu+lambda offspring")
	tournamentSize := fs.Int("tournament-size", 1, "tournament size")
	genes := fs.Int("genes", 5, "fixed-point mutated genes")
	rate := fs.Float64("rate", 10, "percent-point mutation rate in percent")
	probability := fs.Float64("probability", 10, "probabilistic mutation probability in percent")
	rows := fs.Int("rows", 0, "grid rows (0 keeps the file value)")
	columns := fs.Int("columns", 0, "grid columns (0 keeps the file value)")
	levelsBack := fs.Int("levels-back", 0, "levels back (0 keeps the file value)")
	population := fs.Int("pop", 0, "population size (0 keeps the file value)")
	generations := fs.Int("generations", 0, "generations per run (0 keeps the file value)")
	runs := fs.Int("runs", 0, "runs (0 keeps the file value)")
	seed := fs.Int64("seed", 0, "rng seed (0 keeps the file value)")
	reportInterval := fs.Int("report-interval", 0, "log progress every N generations (0 keeps the file value)")
	chromosome := fs.String("chromosome", "", "seed the population with this .chr file")
	chromosomeIndex := fs.Int("chromosome-index", 0, "population member replaced by --chromosome")
	indexing := fs.String("indexing", "rows", "chromosome node indexing: rows|inputs")
	allowForward := fs.Bool("allow-forward", false, "accept acyclic forward connections in --chromosome")
	enable := fs.String("enable", "", "comma-separated function names to enable")
	disable := fs.String("disable", "", "comma-separated function names to disable")
	storeKind := fs.String("store", "memory", "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDB, "sqlite database path")
	artifacts := fs.String("artifacts", artifactsDir, "artifacts directory (empty disables)")
	metricsFile := fs.String("metrics-file", "", "write prometheus metrics to this textfile")
	saveBest := fs.String("save-best", "", "write the best chromosome to this file")
	logLevel := fs.String("log-level", "info", "log level: debug|info|warn|error")
	if err := fs.Parse(args); err != nil {
		return err
	}

	settings := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return err
		}
		settings = loaded
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) {
		set[f.Name] = true
	})
	override := func(name string, apply func()) {
		if set[name] || *configPath == "" {
			apply()
		}
	}
	override("problem", func() { settings.Problem = *problemName })
	override("par", func() { settings.ParametersFile = *parPath })
	override("cases", func() { settings.CasesFile = *casesPath })
	override("strategy", func() { settings.Strategy.Name = *strategy })
	override("mutator", func() { settings.Mutator.Name = *mutator })
	override("mu", func() { settings.Strategy.Mu = *mu })
	override("lambda", func() { settings.Strategy.Lambda = *lambda })
	override("tournament-size", func() { settings.Strategy.TournamentSize = *tournamentSize })
	override("genes", func() { settings.Mutator.Genes = *genes })
	override("rate", func() { settings.Mutator.Rate = *rate })
	override("probability", func() { settings.Mutator.Probability = *probability })
	override("rows", func() { settings.Grid.Rows = *rows })
	override("columns", func() { settings.Grid.Columns = *columns })
	override("levels-back", func() { settings.Grid.LevelsBack = *levelsBack })
	override("pop", func() { settings.Grid.PopulationSize = *population })
	override("generations", func() { settings.Grid.Generations = *generations })
	override("runs", func() { settings.Grid.Runs = *runs })
	override("seed", func() { settings.Grid.Seed = *seed })
	override("report-interval", func() { settings.Grid.ReportInterval = *reportInterval })
	override("chromosome", func() { settings.Chromosome.File = *chromosome })
	override("chromosome-index", func() { settings.Chromosome.Index = *chromosomeIndex })
	override("indexing", func() { settings.Chromosome.Indexing = *indexing })
	override("allow-forward", func() { settings.Chromosome.AllowForward = *allowForward })
	override("enable", func() { settings.Functions.Enable = splitList(*enable) })
	override("disable", func() { settings.Functions.Disable = splitList(*disable) })
	override("store", func() { settings.Store.Kind = *storeKind })
	override("db-path", func() { settings.Store.Path = *dbPath })
	override("artifacts", func() { settings.ArtifactsDir = *artifacts })
	override("metrics-file", func() { settings.MetricsFile = *metricsFile })

	logger, err := newLogger(*logLevel)
	if err != nil {
		return err
	}
	client, err := cgp.New(cgp.Options{
		StoreKind: settings.Store.Kind,
		DBPath:    settings.Store.Path,
		Logger:    logger,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	summary, err := client.Run(ctx, cgp.RunRequest{Settings: settings, SaveBestPath: *saveBest})
	if err != nil {
		return err
	}
	s := summary.Summary
	fmt.Printf("run completed id=%s problem=%s runs=%d successful=%d success_rate=%.2f%% highest_fitness=%s avg_generations=%s\n",
		summary.ExperimentID, summary.Problem, s.Runs, s.SuccessfulRuns, s.SuccessRate*100,
		humanize.Ftoa(s.HighestFitness), humanize.FtoaWithDigits(s.AverageGenerations, 2))
	if summary.ArtifactsDir != "" {
		fmt.Printf("artifacts=%s\n", summary.ArtifactsDir)
	}
	return nil
}
