package evo

import (
	"fmt"
	"log/slog"

	"cgpkit/internal/genome"
)

// Mutator rewrites genes of one chromosome in place.
type Mutator[T any] interface {
	Name() string
	Mutate(c *genome.Chromosome[T])
}

// pointMutate performs genes independent draws of a random mutable, each
// rewriting one of that element's genes.
func pointMutate[T any](logger *slog.Logger, c *genome.Chromosome[T], genes int) {
	logger.Debug("point mutation", "genes", genes)
	for i := 0; i < genes; i++ {
		mutable := c.RandomMutable()
		logger.Debug("mutation selected", "mutation", i, "gene", mutable)
		mutable.Mutate()
	}
}

// FixedPoint mutates a configured number of genes.
type FixedPoint[T any] struct {
	genes  int
	logger *slog.Logger
}

func NewFixedPoint[T any](genes int, logger *slog.Logger) (*FixedPoint[T], error) {
	if genes < 0 {
		return nil, fmt.Errorf("%w: genes mutated must be >= 0, got %d", ErrInvalidSettings, genes)
	}
	return &FixedPoint[T]{genes: genes, logger: orDiscard(logger)}, nil
}

func (m *FixedPoint[T]) Name() string { return MutatorFixedPoint }
func (m *FixedPoint[T]) Genes() int { return m.genes }

func (m *FixedPoint[T]) Mutate(c *genome.Chromosome[T]) {
	pointMutate(m.logger, c, m.genes)
}

// PercentPoint mutates a percentage of the chromosome's total gene count.
type PercentPoint[T any] struct {
	rate   float64
	logger *slog.Logger
}

func NewPercentPoint[T any](rate float64, logger *slog.Logger) (*PercentPoint[T], error) {
	if rate <= 0 || rate > 100 {
		return nil, fmt.Errorf("%w: mutation rate must be > 0 and <= 100, got %g", ErrInvalidSettings, rate)
	}
	return &PercentPoint[T]{rate: rate, logger: orDiscard(logger)}, nil
}

func (m *PercentPoint[T]) Name() string { return MutatorPercentPoint }
func (m *PercentPoint[T]) Rate() float64 { return m.rate }

// GenesFor is the number of draws made on a chromosome with c's topology.
func (m *PercentPoint[T]) GenesFor(c *genome.Chromosome[T]) int {
	res := c.Resources()
	total := res.Nodes()*(res.Arity()+1) + res.Outputs()
	return int(m.rate * float64(total) / 100)
}

func (m *PercentPoint[T]) Mutate(c *genome.Chromosome[T]) {
	pointMutate(m.logger, c, m.GenesFor(c))
}

// Probabilistic visits every gene and mutates each with an independent
// probability given in percent.
type Probabilistic[T any] struct {
	probability float64
	logger      *slog.Logger
}

func NewProbabilistic[T any](probability float64, logger *slog.Logger) (*Probabilistic[T], error) {
	if probability <= 0 || probability > 100 {
		return nil, fmt.Errorf("%w: mutation probability must be > 0 and <= 100, got %g", ErrInvalidSettings, probability)
	}
	return &Probabilistic[T]{probability: probability, logger: orDiscard(logger)}, nil
}

func (m *Probabilistic[T]) Name() string { return MutatorProbabilistic }
func (m *Probabilistic[T]) Probability() float64 { return m.probability }

// Mutate trials genes row by row: each node's connections, then its function,
// then every output.
func (m *Probabilistic[T]) Mutate(c *genome.Chromosome[T]) {
	res := c.Resources()
	for r := 0; r < res.Rows(); r++ {
		for col := 0; col < res.Columns(); col++ {
			node := c.Node(r, col)
			for a := 0; a < res.Arity(); a++ {
				if m.trial(res.RandomDouble(100)) {
					from := node.Connection(a)
					node.SetConnection(a, c.RandomConnectionBefore(col))
					m.logger.Debug("mutated connection", "node", node, "slot", a, "from", from, "to", node.Connection(a))
				}
			}
			if m.trial(res.RandomDouble(100)) {
				from := node.Function()
				node.SetFunction(res.RandomFunction())
				m.logger.Debug("mutated function", "node", node, "from", from, "to", node.Function())
			}
		}
	}
	for o := 0; o < res.Outputs(); o++ {
		if m.trial(res.RandomDouble(100)) {
			out := c.Output(o)
			from := out.Source()
			out.SetSource(c.RandomConnection())
			m.logger.Debug("mutated output", "output", out, "from", from, "to", out.Source())
		}
	}
}

func (m *Probabilistic[T]) trial(draw float64) bool {
	return draw < m.probability
}

func orDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return logger
}
