package problem

import (
	"math"
	"strconv"

	"cgpkit/internal/function"
	"cgpkit/internal/genome"
)

type Polynomial struct {
	testCases[int]
}

func NewPolynomial() *Polynomial {
	return &Polynomial{testCases: newTestCases("Polynomial solver", ".txt", function.Polynomial(), strconv.Atoi)}
}

func (p *Polynomial) Evaluate(pop *genome.Population[int]) error {
	return p.evaluate(pop, func(got, want int) float64 {
		return 1 - math.Abs(float64(got-want))
	})
}

func (p *Polynomial) MaxFitness() float64 {
	return p.caseMaxFitness()
}

func (p *Polynomial) PerfectSolution(pop *genome.Population[int]) int {
	return p.firstReaching(pop, p.MaxFitness())
}
