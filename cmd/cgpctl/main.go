package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"cgpkit/internal/casegen"
	"cgpkit/internal/stats"
	"cgpkit/pkg/cgp"
)

const (
	artifactsDir = "artifacts"
	exportsDir   = "exports"
	defaultDB    = "cgp.db"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := run(ctx, os.Args[1:])
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "run":
		return runRun(ctx, args[1:])
	case "experiments":
		return runExperiments(ctx, args[1:])
	case "show":
		return runShow(ctx, args[1:])
	case "export":
		return runExport(ctx, args[1:])
	case "cases":
		return runCases(ctx, args[1:])
	case "functions":
		return runFunctions(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func runExperiments(ctx context.Context, args []string) error {
	fs := newFlagSet("experiments")
	storeKind := fs.String("store", "memory", "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDB, "sqlite database path")
	artifacts := fs.String("artifacts", "", "list the run index of this artifacts directory instead of the store")
	limit := fs.Int("limit", 0, "maximum experiments to list (0 lists all)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *artifacts != "" {
		entries, err := stats.ListRunIndex(*artifacts)
		if err != nil {
			return err
		}
		if *limit > 0 && len(entries) > *limit {
			entries = entries[:*limit]
		}
		for _, e := range entries {
			fmt.Printf("id=%s problem=%s runs=%d successful=%d highest_fitness=%s created=%s\n",
				e.ExperimentID, e.Problem, e.Runs, e.SuccessfulRuns, humanize.Ftoa(e.HighestFitness), e.CreatedAtUTC)
		}
		return nil
	}

	client, err := cgp.New(cgp.Options{StoreKind: *storeKind, DBPath: *dbPath})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()
	list, err := client.Experiments(ctx, *limit)
	if err != nil {
		return err
	}
	for _, e := range list {
		fmt.Printf("id=%s problem=%s runs=%d successful=%d highest_fitness=%s created=%s\n",
			e.ID, e.Problem, e.CompletedRuns, e.SuccessfulRuns, humanize.Ftoa(e.HighestFitness), e.CreatedAtUTC)
	}
	return nil
}

func runShow(ctx context.Context, args []string) error {
	fs := newFlagSet("show")
	storeKind := fs.String("store", "memory", "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDB, "sqlite database path")
	artifacts := fs.String("artifacts", "", "read the experiment from this artifacts directory instead of the store")
	id := fs.String("id", "", "experiment id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return errors.New("show requires --id")
	}

	if *artifacts != "" {
		summary, ok, err := stats.ReadSummary(*artifacts, *id)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("experiment %s: %w", *id, cgp.ErrNotFound)
		}
		runs, _, err := stats.ReadRuns(*artifacts, *id)
		if err != nil {
			return err
		}
		printRuns(runs)
		printSummary(summary)
		return nil
	}

	client, err := cgp.New(cgp.Options{StoreKind: *storeKind, DBPath: *dbPath})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()
	record, runs, err := client.Experiment(ctx, *id)
	if err != nil {
		return err
	}
	fmt.Printf("id=%s problem=%s strategy=%s mutator=%s grid=%dx%d inputs=%d outputs=%d arity=%d created=%s\n",
		record.ID, record.Problem, record.Strategy, record.Mutator, record.Grid.Rows, record.Grid.Columns,
		record.Grid.Inputs, record.Grid.Outputs, record.Grid.Arity, record.CreatedAtUTC)
	logger := stats.NewLogger()
	for _, r := range runs {
		logger.LogRun(stats.RunEntry{
			Run:         r.Run,
			Generation:  r.Generation,
			Fitness:     r.Fitness,
			ActiveNodes: r.ActiveNodes,
			Successful:  r.Successful,
		})
	}
	printRuns(logger.Entries())
	printSummary(logger.Summary())
	return nil
}

func runExport(ctx context.Context, args []string) error {
	fs := newFlagSet("export")
	storeKind := fs.String("store", "memory", "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDB, "sqlite database path")
	artifacts := fs.String("artifacts", artifactsDir, "artifacts directory for --format dir")
	id := fs.String("id", "", "experiment id")
	latest := fs.Bool("latest", false, "export the most recent experiment from the run index (--format dir)")
	runNumber := fs.Int("run", 1, "run number, 1-based")
	format := fs.String("format", "chr", "export format: chr|dot|dir")
	out := fs.String("out", "", "output file, or directory for --format dir (default exports)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id != "" && *latest {
		return errors.New("use either --id or --latest, not both")
	}

	if *format == "dir" {
		if *latest {
			entries, err := stats.ListRunIndex(*artifacts)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				return errors.New("no experiments available to export")
			}
			*id = entries[0].ExperimentID
		}
		if *id == "" {
			return errors.New("export requires --id or --latest")
		}
		dest := *out
		if dest == "" {
			dest = exportsDir
		}
		exported, err := stats.ExportArtifacts(*artifacts, *id, dest)
		if err != nil {
			return err
		}
		fmt.Printf("exported id=%s to=%s\n", *id, filepath.Clean(exported))
		return nil
	}

	if *id == "" {
		return errors.New("export requires --id")
	}
	client, err := cgp.New(cgp.Options{StoreKind: *storeKind, DBPath: *dbPath})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()
	data, err := client.Export(ctx, cgp.ExportRequest{ExperimentID: *id, Run: *runNumber, Format: *format})
	if err != nil {
		return err
	}
	if *out == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		return err
	}
	fmt.Printf("exported id=%s run=%d format=%s to=%s\n", *id, *runNumber, *format, *out)
	return nil
}

func runCases(ctx context.Context, args []string) error {
	fs := newFlagSet("cases")
	var exprs stringList
	fs.Var(&exprs, "expr", "output expression (repeatable)")
	vars := fs.String("vars", "x", "comma-separated input variable names")
	from := fs.Float64("from", -1, "first sample value")
	to := fs.Float64("to", 1, "last sample value")
	step := fs.Float64("step", 0.1, "sample step")
	csvPath := fs.String("csv", "", "convert this CSV table instead of sampling --expr")
	out := fs.String("out", "", "output file (default stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var (
		cases []casegen.Case
		err   error
	)
	if *csvPath != "" {
		if len(exprs) > 0 {
			return errors.New("use either --csv or --expr, not both")
		}
		f, openErr := os.Open(*csvPath)
		if openErr != nil {
			return openErr
		}
		cases, err = casegen.FromCSV(f)
		_ = f.Close()
	} else {
		cases, err = casegen.Generate(ctx, casegen.Spec{
			Expressions: exprs,
			Variables:   splitList(*vars),
			From:        *from,
			To:          *to,
			Step:        *step,
		})
	}
	if err != nil {
		return err
	}
	if *out == "" {
		return casegen.Write(os.Stdout, cases)
	}
	f, err := os.Create(*out)
	if err != nil {
		return err
	}
	if err := casegen.Write(f, cases); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Printf("wrote cases=%s to=%s\n", humanize.Comma(int64(len(cases))), *out)
	return nil
}

func runFunctions(_ context.Context, args []string) error {
	fs := newFlagSet("functions")
	problemName := fs.String("problem", cgp.ProblemDigital, "problem: "+strings.Join(cgp.Problems(), "|"))
	if err := fs.Parse(args); err != nil {
		return err
	}
	infos, err := cgp.Functions(*problemName)
	if err != nil {
		return err
	}
	for _, fn := range infos {
		fmt.Printf("%2d %-16s arity=%d enabled=%t\n", fn.Index, fn.Name, fn.Arity, fn.Enabled)
	}
	return nil
}

func printRuns(runs []stats.RunEntry) {
	for _, r := range runs {
		fmt.Printf("run=%d generation=%s fitness=%s active_nodes=%d successful=%t\n",
			r.Run, humanize.Comma(int64(r.Generation)), humanize.Ftoa(r.Fitness), r.ActiveNodes, r.Successful)
	}
}

func printSummary(s stats.Summary) {
	fmt.Printf("runs=%d successful=%d success_rate=%.2f%%\n", s.Runs, s.SuccessfulRuns, s.SuccessRate*100)
	fmt.Printf("fitness avg=%s std=%s highest=%s lowest=%s\n",
		humanize.FtoaWithDigits(s.AverageFitness, 4), humanize.FtoaWithDigits(s.FitnessStdDev, 4),
		humanize.Ftoa(s.HighestFitness), humanize.Ftoa(s.LowestFitness))
	fmt.Printf("active_nodes avg=%s std=%s\n",
		humanize.FtoaWithDigits(s.AverageActiveNodes, 2), humanize.FtoaWithDigits(s.ActiveNodesStdDev, 2))
	fmt.Printf("generations avg=%s std=%s\n",
		humanize.FtoaWithDigits(s.AverageGenerations, 2), humanize.FtoaWithDigits(s.GenerationsStdDev, 2))
	if s.SuccessfulRuns > 0 {
		fmt.Printf("successful generations avg=%s std=%s active_nodes avg=%s std=%s\n",
			humanize.FtoaWithDigits(s.AverageSuccessfulGenerations, 2), humanize.FtoaWithDigits(s.SuccessfulGenerationsStdDev, 2),
			humanize.FtoaWithDigits(s.AverageSuccessfulActiveNodes, 2), humanize.FtoaWithDigits(s.SuccessfulActiveNodesStdDev, 2))
	}
}

// newLogger writes to stderr: text on a terminal, JSON otherwise.
func newLogger(level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid --log-level %q: %w", level, err)
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		return slog.New(slog.NewTextHandler(os.Stderr, opts)), nil
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts)), nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

type stringList []string

func (l *stringList) String() string { return strings.Join(*l, ",") }

func (l *stringList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: cgpctl <run|experiments|show|export|cases|functions> [flags]", msg)
}
