// Package experiment runs the generational loop: evaluate the population,
// stop a run on a perfect solution or when its generations are spent, and
// otherwise evolve the next generation.
package experiment

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"

	"cgpkit/internal/evo"
	"cgpkit/internal/genome"
	"cgpkit/internal/metrics"
	"cgpkit/internal/parser"
	"cgpkit/internal/problem"
	"cgpkit/internal/resources"
	"cgpkit/internal/stats"
)

var (
	ErrFinished      = errors.New("experiment finished")
	ErrMissingModule = errors.New("experiment module is required")
)

// RunObserver is notified after each run is logged with the chromosome that
// produced the logged result.
type RunObserver[T any] func(entry stats.RunEntry, best *genome.Chromosome[T])

type Config[T any] struct {
	ID         string
	Parameters resources.Parameters
	Problem    problem.Problem[T]
	Strategy   evo.StrategySettings
	Mutator    evo.MutatorSettings

	// Indexing is the node numbering of saved chromosomes.
	Indexing parser.NodeIndexing

	// Rand defaults to a source seeded with Parameters.Seed.
	Rand *rand.Rand

	Logger  *slog.Logger
	Metrics *metrics.Recorder
}

type Experiment[T any] struct {
	id       string
	params   resources.Parameters
	problem  problem.Problem[T]
	strategy evo.Strategy[T]
	mutator  evo.Mutator[T]
	indexing parser.NodeIndexing
	rng      *rand.Rand
	logger   *slog.Logger
	metrics  *metrics.Recorder

	res        *resources.Resources[T]
	population *genome.Population[T]
	statistics *stats.Logger
	observers  []RunObserver[T]

	generation      int
	run             int
	finished        bool
	lastImprovement int
	bestFitness     float64
	activeNodes     int

	// best holds the genes that last improved the run, nil before the first
	// improvement.
	best *genome.Chromosome[T]
}

func New[T any](cfg Config[T]) (*Experiment[T], error) {
	if cfg.Problem == nil {
		return nil, fmt.Errorf("%w: problem", ErrMissingModule)
	}
	if err := cfg.Parameters.Validate(); err != nil {
		return nil, err
	}
	if t, ok := cfg.Problem.(interface {
		Inputs() int
		Outputs() int
	}); ok && (t.Inputs() != cfg.Parameters.Inputs || t.Outputs() != cfg.Parameters.Outputs) {
		return nil, fmt.Errorf("%w: %s has %d inputs and %d outputs, parameters have %d and %d",
			problem.ErrTopology, cfg.Problem.Name(), t.Inputs(), t.Outputs(), cfg.Parameters.Inputs, cfg.Parameters.Outputs)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	strategy, err := evo.NewStrategy[T](cfg.Strategy, cfg.Parameters, logger)
	if err != nil {
		return nil, err
	}
	mutator, err := evo.NewMutator[T](cfg.Mutator, logger)
	if err != nil {
		return nil, err
	}
	rng := cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(cfg.Parameters.Seed))
	}

	e := &Experiment[T]{
		id:         cfg.ID,
		params:     cfg.Parameters,
		problem:    cfg.Problem,
		strategy:   strategy,
		mutator:    mutator,
		indexing:   cfg.Indexing,
		rng:        rng,
		logger:     logger,
		metrics:    cfg.Metrics,
		statistics: stats.NewLogger(),
	}
	if err := e.Reset(); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Experiment[T]) ID() string { return e.id }
func (e *Experiment[T]) Parameters() resources.Parameters { return e.params }
func (e *Experiment[T]) Problem() problem.Problem[T] { return e.problem }
func (e *Experiment[T]) Strategy() evo.Strategy[T] { return e.strategy }
func (e *Experiment[T]) Mutator() evo.Mutator[T] { return e.mutator }
func (e *Experiment[T]) Resources() *resources.Resources[T] { return e.res }
func (e *Experiment[T]) Population() *genome.Population[T] { return e.population }
func (e *Experiment[T]) Statistics() *stats.Logger { return e.statistics }
func (e *Experiment[T]) Generation() int { return e.generation }
func (e *Experiment[T]) Run() int { return e.run }
func (e *Experiment[T]) Finished() bool { return e.finished }

// OnRunComplete registers fn to be called after every logged run.
func (e *Experiment[T]) OnRunComplete(fn RunObserver[T]) {
	e.observers = append(e.observers, fn)
}

// Reset rebuilds the resources from the problem's current function set and
// starts again from generation 1 of run 1 with a fresh population. The random
// source is not reseeded.
func (e *Experiment[T]) Reset() error {
	res, err := resources.New(resources.Config[T]{
		Parameters:  e.params,
		Functions:   e.problem.Functions(),
		Orientation: e.problem.Orientation(),
		Rand:        e.rng,
	})
	if err != nil {
		return err
	}
	e.res = res
	e.population = genome.NewPopulation(res)
	e.statistics.Clear()
	e.problem.Reset()
	e.generation, e.run = 1, 1
	e.finished = false
	e.resetRun()

	e.logger.Info("experiment started",
		"id", e.id,
		"problem", e.problem.Name(),
		"rows", e.params.Rows,
		"columns", e.params.Columns,
		"inputs", e.params.Inputs,
		"outputs", e.params.Outputs,
		"levels_back", e.params.LevelsBack,
		"arity", res.Arity(),
		"population", e.params.PopulationSize,
		"strategy", e.strategy.Name(),
		"mutator", e.mutator.Name(),
		"seed", e.params.Seed,
	)
	return nil
}

func (e *Experiment[T]) resetRun() {
	e.lastImprovement = 0
	e.bestFitness = 0
	e.activeNodes = 0
	e.best = nil
}

// NextGeneration advances the experiment by one generation.
func (e *Experiment[T]) NextGeneration(ctx context.Context) error {
	if e.finished {
		return ErrFinished
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := e.problem.Evaluate(e.population); err != nil {
		return fmt.Errorf("evaluate generation %d of run %d: %w", e.generation, e.run, err)
	}

	if e.generation >= e.params.Generations {
		best := e.best
		if best == nil {
			best = e.population.Get(e.population.Fittest())
		}
		e.logRun(stats.RunEntry{
			Run:         e.run,
			Generation:  e.lastImprovement,
			Fitness:     e.bestFitness,
			ActiveNodes: e.activeNodes,
		}, best)
		e.nextRun()
		return nil
	}

	if index := e.problem.PerfectSolution(e.population); index >= 0 {
		c := e.population.Get(index)
		e.logger.Info("solution found",
			"run", e.run,
			"generation", e.generation,
			"fitness", c.Fitness(),
			"active_nodes", len(c.ActiveNodes()),
		)
		e.logRun(stats.RunEntry{
			Run:         e.run,
			Generation:  e.generation,
			Fitness:     c.Fitness(),
			ActiveNodes: len(c.ActiveNodes()),
			Successful:  true,
		}, c)
		e.nextRun()
		return nil
	}

	if index := e.problem.Improvement(e.population); index >= 0 {
		c := e.population.Get(index)
		e.lastImprovement = e.generation
		e.bestFitness = c.Fitness()
		e.activeNodes = len(c.ActiveNodes())
		if e.best == nil {
			e.best = genome.NewChromosomeFrom(c)
		} else {
			e.best.CopyGenes(c)
		}
		e.logger.Info("fitness improved",
			"run", e.run,
			"generation", e.generation,
			"fitness", e.bestFitness,
			"active_nodes", e.activeNodes,
		)
	} else if e.params.ReportInterval > 0 && e.generation%e.params.ReportInterval == 0 {
		e.logger.Info("generation",
			"run", e.run,
			"generation", e.generation,
			"best_fitness", e.bestFitness,
		)
	}
	e.metrics.ObserveGeneration(e.id, e.bestFitness)

	e.generation++
	e.strategy.Evolve(e.population, e.mutator)
	return nil
}

// Start runs generations until every run is complete. ctx is only checked
// between generations.
func (e *Experiment[T]) Start(ctx context.Context) error {
	for !e.finished {
		if err := e.NextGeneration(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (e *Experiment[T]) logRun(entry stats.RunEntry, best *genome.Chromosome[T]) {
	e.statistics.LogRun(entry)
	e.metrics.ObserveRun(e.id, entry)
	if diversity, err := stats.PopulationDiversity(e.population); err != nil {
		e.logger.Debug("diversity unavailable", "run", entry.Run, "error", err)
	} else {
		e.metrics.ObserveDiversity(e.id, diversity)
	}
	e.logger.Info("run complete",
		"run", entry.Run,
		"generation", entry.Generation,
		"fitness", entry.Fitness,
		"active_nodes", entry.ActiveNodes,
		"successful", entry.Successful,
	)
	for _, observe := range e.observers {
		observe(entry, best)
	}
}

func (e *Experiment[T]) nextRun() {
	e.problem.Reset()
	if e.run < e.params.Runs {
		e.run++
		e.generation = 1
		e.resetRun()
		e.population.Reinitialise()
		return
	}
	e.finished = true
	summary := e.statistics.Summary()
	e.logger.Info("experiment complete",
		"id", e.id,
		"runs", summary.Runs,
		"successful_runs", summary.SuccessfulRuns,
		"success_rate", summary.SuccessRate,
		"average_fitness", summary.AverageFitness,
		"average_generations", summary.AverageGenerations,
	)
}

// LoadChromosome replaces the genes of population member index with a .chr
// file. On error the chromosome is unchanged.
func (e *Experiment[T]) LoadChromosome(r io.Reader, index int, opts parser.ChromosomeOptions) error {
	if index < 0 || index >= e.population.Len() {
		return fmt.Errorf("chromosome index %d out of range [0, %d)", index, e.population.Len())
	}
	return parser.ParseChromosome(r, e.population.Get(index), opts)
}

// SaveChromosome writes population member index in .chr layout.
func (e *Experiment[T]) SaveChromosome(w io.Writer, index int) error {
	if index < 0 || index >= e.population.Len() {
		return fmt.Errorf("chromosome index %d out of range [0, %d)", index, e.population.Len())
	}
	return parser.WriteChromosome(w, e.population.Get(index), e.indexing)
}
