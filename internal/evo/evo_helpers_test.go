package evo

import (
	"math/rand"
	"testing"

	"cgpkit/internal/function"
	"cgpkit/internal/genome"
	"cgpkit/internal/resources"
)

func testResources(t *testing.T, populationSize int, orientation resources.Orientation) *resources.Resources[float64] {
	t.Helper()
	p := resources.DefaultParameters()
	p.Rows, p.Columns, p.Inputs, p.Outputs, p.LevelsBack = 3, 3, 3, 2, 2
	p.PopulationSize = populationSize
	res, err := resources.New(resources.Config[float64]{
		Parameters:  p,
		Functions:   function.SymbolicRegression(),
		Orientation: orientation,
		Rand:        rand.New(rand.NewSource(99)),
	})
	if err != nil {
		t.Fatalf("new resources: %v", err)
	}
	return res
}

func setFitness(pop *genome.Population[float64], values ...float64) {
	for i, v := range values {
		pop.Get(i).SetFitness(v)
	}
}

func snapshot(pop *genome.Population[float64]) []*genome.Chromosome[float64] {
	out := make([]*genome.Chromosome[float64], pop.Len())
	for i := range out {
		out[i] = genome.NewChromosomeFrom(pop.Get(i))
	}
	return out
}

func mustFixedPoint(t *testing.T, genes int) *FixedPoint[float64] {
	t.Helper()
	m, err := NewFixedPoint[float64](genes, nil)
	if err != nil {
		t.Fatalf("new fixed point: %v", err)
	}
	return m
}
