package evo

import (
	"fmt"
	"log/slog"

	"cgpkit/internal/genome"
)

// Strategy produces the next generation of an evaluated population.
type Strategy[T any] interface {
	Name() string
	Evolve(pop *genome.Population[T], mutator Mutator[T])
}

// MuPlusLambda keeps the last mu slots as parents and refills the first
// lambda slots with mutated copies of them.
type MuPlusLambda[T any] struct {
	mu, lambda int
	logger     *slog.Logger
}

func NewMuPlusLambda[T any](mu, lambda, populationSize int, logger *slog.Logger) (*MuPlusLambda[T], error) {
	if mu < 1 || lambda < 1 {
		return nil, fmt.Errorf("%w: mu and lambda must be >= 1, got mu=%d lambda=%d", ErrInvalidSettings, mu, lambda)
	}
	if mu+lambda != populationSize {
		return nil, fmt.Errorf("%w: mu + lambda must equal population size %d, got %d", ErrInvalidSettings, populationSize, mu+lambda)
	}
	return &MuPlusLambda[T]{mu: mu, lambda: lambda, logger: orDiscard(logger)}, nil
}

func (s *MuPlusLambda[T]) Name() string { return StrategyMuPlusLambda }
func (s *MuPlusLambda[T]) Mu() int { return s.mu }
func (s *MuPlusLambda[T]) Lambda() int { return s.lambda }

func (s *MuPlusLambda[T]) Evolve(pop *genome.Population[T], mutator Mutator[T]) {
	s.selectParents(pop)
	size := pop.Len()
	res := pop.Resources()
	for i := 0; i < size-s.mu; i++ {
		parent := size - 1 - res.RandomInt(s.mu)
		s.logger.Debug("copying parent", "from", parent, "to", i)
		pop.CopyChromosome(parent, i)
		mutator.Mutate(pop.Get(i))
	}
}

// selectParents moves the winning mu chromosomes into the last mu slots. An
// offspring replaces the first parent it strictly beats, or the first parent
// it ties that is still an original parent.
func (s *MuPlusLambda[T]) selectParents(pop *genome.Population[T]) {
	orientation := pop.Resources().Orientation()
	parents := make([]int, s.mu)
	for i := range parents {
		parents[i] = s.lambda + i
	}
	for o := 0; o < s.lambda; o++ {
		offspring := pop.Get(o).Fitness()
		for p, slot := range parents {
			parent := pop.Get(slot).Fitness()
			if orientation.Better(offspring, parent) || (offspring == parent && slot >= s.lambda) {
				parents[p] = o
				break
			}
		}
	}
	for c, slot := range parents {
		pop.CopyChromosome(slot, s.lambda+c)
	}
	s.logger.Debug("parents selected", "parents", parents)
}

// Tournament refills every slot with the mutated winner of a tournament over
// the sorted population.
type Tournament[T any] struct {
	size   int
	logger *slog.Logger
}

func NewTournament[T any](size, populationSize int, logger *slog.Logger) (*Tournament[T], error) {
	if size < 1 || size > populationSize {
		return nil, fmt.Errorf("%w: tournament size must be in [1, %d], got %d", ErrInvalidSettings, populationSize, size)
	}
	return &Tournament[T]{size: size, logger: orDiscard(logger)}, nil
}

func (s *Tournament[T]) Name() string { return StrategyTournament }
func (s *Tournament[T]) Size() int { return s.size }

func (s *Tournament[T]) Evolve(pop *genome.Population[T], mutator Mutator[T]) {
	pop.Sort()
	staged := make([]*genome.Chromosome[T], pop.Len())
	for i := range staged {
		winner := s.winner(pop)
		s.logger.Debug("tournament won", "tournament", i, "winner", winner)
		staged[i] = genome.NewChromosomeFrom(pop.Get(winner))
		mutator.Mutate(staged[i])
	}
	for i, c := range staged {
		pop.Get(i).CopyGenes(c)
	}
}

// winner returns the highest sorted position among size-1 random draws and
// position 0. A tournament over the whole population is won by the best.
func (s *Tournament[T]) winner(pop *genome.Population[T]) int {
	if s.size == pop.Len() {
		return pop.Len() - 1
	}
	res := pop.Resources()
	winner := 0
	for t := 0; t < s.size-1; t++ {
		winner = max(winner, res.RandomInt(pop.Len()))
	}
	return winner
}
