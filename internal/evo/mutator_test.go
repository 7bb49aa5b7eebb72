package evo

import (
	"errors"
	"slices"
	"testing"

	"cgpkit/internal/genome"
	"cgpkit/internal/resources"
)

func TestFixedPointZeroGenesLeavesChromosome(t *testing.T) {
	res := testResources(t, 1, resources.HigherIsBetter)
	c := genome.NewChromosome(res)
	before := genome.NewChromosomeFrom(c)
	mustFixedPoint(t, 0).Mutate(c)
	if !c.CompareGenesTo(before) {
		t.Fatal("expected no gene changes with zero mutations")
	}
}

func TestPointMutationIsDeterministic(t *testing.T) {
	build := func() *genome.Chromosome[float64] {
		res := testResources(t, 1, resources.HigherIsBetter)
		c := genome.NewChromosome(res)
		mustFixedPoint(t, 7).Mutate(c)
		return c
	}
	a, b := build(), build()
	if !slices.Equal(a.Genes(), b.Genes()) {
		t.Fatalf("expected identical genes from identical seeds:\n%v\n%v", a.Genes(), b.Genes())
	}
}

func TestPercentPointGeneCount(t *testing.T) {
	res := testResources(t, 1, resources.HigherIsBetter)
	c := genome.NewChromosome(res)
	cases := []struct {
		rate float64
		want int
	}{
		{rate: 10, want: 2},
		{rate: 50, want: 14},
		{rate: 100, want: 29},
		{rate: 1, want: 0},
	}
	for _, tc := range cases {
		m, err := NewPercentPoint[float64](tc.rate, nil)
		if err != nil {
			t.Fatalf("new percent point: %v", err)
		}
		if got := m.GenesFor(c); got != tc.want {
			t.Fatalf("rate %g: got=%d want=%d", tc.rate, got, tc.want)
		}
	}
}

func TestMutatorValidation(t *testing.T) {
	if _, err := NewFixedPoint[float64](-1, nil); !errors.Is(err, ErrInvalidSettings) {
		t.Fatalf("expected ErrInvalidSettings, got %v", err)
	}
	for _, rate := range []float64{0, -5, 101} {
		if _, err := NewPercentPoint[float64](rate, nil); !errors.Is(err, ErrInvalidSettings) {
			t.Fatalf("rate %g: expected ErrInvalidSettings, got %v", rate, err)
		}
		if _, err := NewProbabilistic[float64](rate, nil); !errors.Is(err, ErrInvalidSettings) {
			t.Fatalf("probability %g: expected ErrInvalidSettings, got %v", rate, err)
		}
	}
}

func TestProbabilisticKeepsFeedForwardWiring(t *testing.T) {
	res := testResources(t, 1, resources.HigherIsBetter)
	c := genome.NewChromosome(res)
	m, err := NewProbabilistic[float64](100, nil)
	if err != nil {
		t.Fatalf("new probabilistic: %v", err)
	}
	for i := 0; i < 20; i++ {
		m.Mutate(c)
	}
	for r := 0; r < res.Rows(); r++ {
		for col := 0; col < res.Columns(); col++ {
			node := c.Node(r, col)
			if !res.Functions().IsEnabled(node.Function()) {
				t.Fatalf("node %s has a disabled function", node)
			}
			for a := 0; a < node.Arity(); a++ {
				if other, ok := node.Connection(a).(*genome.Node[float64]); ok {
					if other.Column() >= col || other.Column() < col-res.LevelsBack() {
						t.Fatalf("node %s connects outside levels back to %s", node, other)
					}
				}
			}
		}
	}
}

func TestProbabilisticChangesGenes(t *testing.T) {
	res := testResources(t, 1, resources.HigherIsBetter)
	c := genome.NewChromosome(res)
	before := genome.NewChromosomeFrom(c)
	m, err := NewProbabilistic[float64](100, nil)
	if err != nil {
		t.Fatalf("new probabilistic: %v", err)
	}
	m.Mutate(c)
	if c.CompareGenesTo(before) {
		t.Fatal("expected a full-probability mutation to change at least one gene")
	}
}
