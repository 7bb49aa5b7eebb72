// Package problem scores populations against test cases.
package problem

import (
	"errors"
	"fmt"
	"math"

	"cgpkit/internal/function"
	"cgpkit/internal/genome"
	"cgpkit/internal/resources"
)

var (
	ErrTestCaseShape = errors.New("test case shape mismatch")
	ErrTopology      = errors.New("problem topology mismatch")
)

// Problem evaluates whole populations. PerfectSolution and Improvement only
// read fitness and return a chromosome index, or -1.
type Problem[T any] interface {
	Name() string
	FileExtension() string
	Orientation() resources.Orientation
	Functions() *function.Set[T]
	Evaluate(pop *genome.Population[T]) error
	PerfectSolution(pop *genome.Population[T]) int
	Improvement(pop *genome.Population[T]) int
	BestFitness() float64
	MaxFitness() float64
	Reset()
}

// CaseLoader receives test cases in their textual form.
type CaseLoader interface {
	SetTopology(inputs, outputs int)
	ClearTestCases()
	AddTestCaseStrings(inputs, outputs []string) error
}

type TestCase[T any] struct {
	Inputs  []T
	Outputs []T
}

// testCases is the state shared by every test-case problem.
type testCases[T any] struct {
	name        string
	extension   string
	functions   *function.Set[T]
	orientation resources.Orientation
	parse       func(string) (T, error)

	inputs, outputs int
	cases           []TestCase[T]
	best            float64
}

func newTestCases[T any](name, extension string, functions *function.Set[T], parse func(string) (T, error)) testCases[T] {
	tc := testCases[T]{name: name, extension: extension, functions: functions, parse: parse}
	tc.Reset()
	return tc
}

func (p *testCases[T]) Name() string { return p.name }
func (p *testCases[T]) FileExtension() string { return p.extension }
func (p *testCases[T]) Functions() *function.Set[T] { return p.functions }
func (p *testCases[T]) Orientation() resources.Orientation { return p.orientation }
func (p *testCases[T]) BestFitness() float64 { return p.best }
func (p *testCases[T]) Inputs() int { return p.inputs }
func (p *testCases[T]) Outputs() int { return p.outputs }

// SetTopology fixes the input and output counts new test cases must have.
// Existing cases are cleared.
func (p *testCases[T]) SetTopology(inputs, outputs int) {
	p.inputs, p.outputs = inputs, outputs
	p.cases = nil
}

func (p *testCases[T]) TestCases() []TestCase[T] {
	return append([]TestCase[T](nil), p.cases...)
}

func (p *testCases[T]) ClearTestCases() {
	p.cases = nil
}

func (p *testCases[T]) AddTestCase(tc TestCase[T]) error {
	if len(tc.Inputs) != p.inputs {
		return fmt.Errorf("%w: received test case with %d inputs but need exactly %d", ErrTestCaseShape, len(tc.Inputs), p.inputs)
	}
	if len(tc.Outputs) != p.outputs {
		return fmt.Errorf("%w: received test case with %d outputs but need exactly %d", ErrTestCaseShape, len(tc.Outputs), p.outputs)
	}
	p.cases = append(p.cases, TestCase[T]{
		Inputs:  append([]T(nil), tc.Inputs...),
		Outputs: append([]T(nil), tc.Outputs...),
	})
	return nil
}

func (p *testCases[T]) AddTestCaseStrings(inputs, outputs []string) error {
	tc := TestCase[T]{Inputs: make([]T, len(inputs)), Outputs: make([]T, len(outputs))}
	for i, s := range inputs {
		v, err := p.parse(s)
		if err != nil {
			return fmt.Errorf("parse input %d %q: %w", i, s, err)
		}
		tc.Inputs[i] = v
	}
	for o, s := range outputs {
		v, err := p.parse(s)
		if err != nil {
			return fmt.Errorf("parse output %d %q: %w", o, s, err)
		}
		tc.Outputs[o] = v
	}
	return p.AddTestCase(tc)
}

// Reset forgets the best fitness seen so the first evaluated generation
// always counts as an improvement.
func (p *testCases[T]) Reset() {
	if p.orientation == resources.LowerIsBetter {
		p.best = math.Inf(1)
		return
	}
	p.best = math.Inf(-1)
}

func (p *testCases[T]) Improvement(pop *genome.Population[T]) int {
	for i := 0; i < pop.Len(); i++ {
		if f := pop.Get(i).Fitness(); p.orientation.Better(f, p.best) {
			p.best = f
			return i
		}
	}
	return -1
}

// caseMaxFitness is one point per expected output value.
func (p *testCases[T]) caseMaxFitness() float64 {
	return float64(len(p.cases) * p.outputs)
}

// firstReaching returns the first chromosome whose fitness is at least
// threshold. Nothing is perfect before any case is loaded.
func (p *testCases[T]) firstReaching(pop *genome.Population[T], threshold float64) int {
	if len(p.cases) == 0 {
		return -1
	}
	for i := 0; i < pop.Len(); i++ {
		if pop.Get(i).Fitness() >= threshold {
			return i
		}
	}
	return -1
}

// evaluate sets every chromosome's fitness to the sum of score over all test
// cases and outputs.
func (p *testCases[T]) evaluate(pop *genome.Population[T], score func(got, want T) float64) error {
	res := pop.Resources()
	if res.Inputs() != p.inputs || res.Outputs() != p.outputs {
		return fmt.Errorf("%w: %s has %d inputs and %d outputs, population has %d and %d",
			ErrTopology, p.name, p.inputs, p.outputs, res.Inputs(), res.Outputs())
	}
	for i := 0; i < pop.Len(); i++ {
		c := pop.Get(i)
		fitness := 0.0
		for _, tc := range p.cases {
			if err := c.SetInputs(tc.Inputs...); err != nil {
				return err
			}
			for o, want := range tc.Outputs {
				fitness += score(c.Output(o).Value(), want)
			}
		}
		c.SetFitness(fitness)
	}
	return nil
}
