package problem

import (
	"math/bits"

	"cgpkit/internal/function"
	"cgpkit/internal/genome"
)

// DigitalCircuit scores bit-parallel truth tables: each matching output bit
// over the rows of the table is worth one point.
type DigitalCircuit struct {
	testCases[function.Word]
}

func NewDigitalCircuit() *DigitalCircuit {
	return &DigitalCircuit{testCases: newTestCases("Digital circuit", ".plu", function.DigitalCircuit(), function.ParseWord)}
}

// relevantBits masks the truth table rows packed into one word.
func (p *DigitalCircuit) relevantBits() function.Word {
	if p.inputs < 5 {
		return function.Word(1)<<(uint(1)<<p.inputs) - 1
	}
	return ^function.Word(0)
}

func (p *DigitalCircuit) Evaluate(pop *genome.Population[function.Word]) error {
	mask := p.relevantBits()
	return p.evaluate(pop, func(got, want function.Word) float64 {
		return float64(bits.OnesCount32(uint32(^(got ^ want) & mask)))
	})
}

// MaxFitness counts every relevant bit of every output of every case.
func (p *DigitalCircuit) MaxFitness() float64 {
	return float64(bits.OnesCount32(uint32(p.relevantBits())) * p.outputs * len(p.cases))
}

func (p *DigitalCircuit) PerfectSolution(pop *genome.Population[function.Word]) int {
	return p.firstReaching(pop, p.MaxFitness())
}
