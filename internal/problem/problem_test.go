package problem

import (
	"errors"
	"math/rand"
	"testing"

	"cgpkit/internal/function"
	"cgpkit/internal/genome"
	"cgpkit/internal/resources"
)

func singleNodePopulation[T any](t *testing.T, set *function.Set[T], inputs, size int) *genome.Population[T] {
	t.Helper()
	p := resources.DefaultParameters()
	p.Rows, p.Columns, p.Inputs, p.Outputs, p.LevelsBack, p.PopulationSize = 1, 1, inputs, 1, 1, size
	res, err := resources.New(resources.Config[T]{Parameters: p, Functions: set, Rand: rand.New(rand.NewSource(5))})
	if err != nil {
		t.Fatalf("new resources: %v", err)
	}
	return genome.NewPopulation(res)
}

// wire points every chromosome's single node at fn over the inputs, and the
// output at that node.
func wire[T any](t *testing.T, pop *genome.Population[T], fn string) {
	t.Helper()
	res := pop.Resources()
	f, err := res.Functions().Lookup(fn)
	if err != nil {
		t.Fatalf("lookup %s: %v", fn, err)
	}
	for i := 0; i < pop.Len(); i++ {
		c := pop.Get(i)
		conns := make([]genome.Connection[T], res.Arity())
		for a := range conns {
			conns[a] = c.Input(a % res.Inputs())
		}
		if err := c.Node(0, 0).Initialise(f, conns...); err != nil {
			t.Fatalf("initialise: %v", err)
		}
		c.Output(0).SetSource(c.Node(0, 0))
	}
}

func TestDigitalCircuitScoresTruthTable(t *testing.T) {
	p := NewDigitalCircuit()
	p.SetTopology(2, 1)
	if err := p.AddTestCaseStrings([]string{"10", "12"}, []string{"6"}); err != nil {
		t.Fatalf("add test case: %v", err)
	}
	pop := singleNodePopulation(t, p.Functions(), 2, 2)
	wire(t, pop, "Xor")
	f, _ := p.Functions().Lookup("And")
	pop.Get(1).Node(0, 0).SetFunction(f)

	if err := p.Evaluate(pop); err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if got := pop.Get(0).Fitness(); got != 4 {
		t.Fatalf("xor fitness: got=%f want=4", got)
	}
	// and gives 1000 against 0110: only the lowest bit matches
	if got := pop.Get(1).Fitness(); got != 1 {
		t.Fatalf("and fitness: got=%f want=1", got)
	}
	if p.MaxFitness() != 4 {
		t.Fatalf("max fitness: got=%f want=4", p.MaxFitness())
	}
	if got := p.PerfectSolution(pop); got != 0 {
		t.Fatalf("perfect solution: got=%d want=0", got)
	}
}

func TestAddTestCaseRejectsWrongShape(t *testing.T) {
	p := NewPolynomial()
	p.SetTopology(1, 1)
	if err := p.AddTestCase(TestCase[int]{Inputs: []int{1, 2}, Outputs: []int{3}}); !errors.Is(err, ErrTestCaseShape) {
		t.Fatalf("expected ErrTestCaseShape for inputs, got %v", err)
	}
	if err := p.AddTestCase(TestCase[int]{Inputs: []int{1}}); !errors.Is(err, ErrTestCaseShape) {
		t.Fatalf("expected ErrTestCaseShape for outputs, got %v", err)
	}
	if err := p.AddTestCaseStrings([]string{"x"}, []string{"1"}); err == nil {
		t.Fatal("expected parse error")
	}
	if len(p.TestCases()) != 0 {
		t.Fatalf("expected no cases, got %d", len(p.TestCases()))
	}
}

func TestEvaluateRejectsTopologyMismatch(t *testing.T) {
	p := NewPolynomial()
	p.SetTopology(3, 1)
	pop := singleNodePopulation(t, p.Functions(), 2, 1)
	if err := p.Evaluate(pop); !errors.Is(err, ErrTopology) {
		t.Fatalf("expected ErrTopology, got %v", err)
	}
}

func TestPolynomialFitness(t *testing.T) {
	p := NewPolynomial()
	p.SetTopology(2, 1)
	for _, tc := range []TestCase[int]{
		{Inputs: []int{2, 3}, Outputs: []int{5}},
		{Inputs: []int{4, 4}, Outputs: []int{10}},
	} {
		if err := p.AddTestCase(tc); err != nil {
			t.Fatalf("add test case: %v", err)
		}
	}
	pop := singleNodePopulation(t, p.Functions(), 2, 1)
	wire(t, pop, "Addition")
	if err := p.Evaluate(pop); err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if got := pop.Get(0).Fitness(); got != 0 {
		t.Fatalf("fitness: got=%f want=0", got)
	}
	if p.PerfectSolution(pop) != -1 {
		t.Fatal("expected no perfect solution")
	}
}

func TestSymbolicRegressionHitsBased(t *testing.T) {
	settings := DefaultRegressionSettings()
	settings.HitsBased = true
	settings.ErrorThreshold = 0.5
	p, err := NewSymbolicRegression(settings)
	if err != nil {
		t.Fatalf("new symbolic regression: %v", err)
	}
	p.SetTopology(2, 1)
	_ = p.AddTestCase(TestCase[float64]{Inputs: []float64{1, 2}, Outputs: []float64{3.2}})
	_ = p.AddTestCase(TestCase[float64]{Inputs: []float64{1, 1}, Outputs: []float64{5}})

	pop := singleNodePopulation(t, p.Functions(), 2, 1)
	wire(t, pop, "Addition")
	if err := p.Evaluate(pop); err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if got := pop.Get(0).Fitness(); got != 1 {
		t.Fatalf("hits: got=%f want=1", got)
	}
	if _, err := NewSymbolicRegression(RegressionSettings{ErrorThreshold: -1}); !errors.Is(err, ErrInvalidThreshold) {
		t.Fatalf("expected ErrInvalidThreshold, got %v", err)
	}
}

func TestImprovementTracksBestFitness(t *testing.T) {
	p := NewPolynomial()
	pop := singleNodePopulation(t, p.Functions(), 1, 3)
	pop.Get(0).SetFitness(-4)
	pop.Get(1).SetFitness(2)
	pop.Get(2).SetFitness(1)

	if got := p.Improvement(pop); got != 0 {
		t.Fatalf("first improvement: got=%d want=0", got)
	}
	if got := p.Improvement(pop); got != 1 {
		t.Fatalf("second improvement: got=%d want=1", got)
	}
	if got := p.Improvement(pop); got != -1 {
		t.Fatalf("expected no further improvement, got %d", got)
	}
	if p.BestFitness() != 2 {
		t.Fatalf("best fitness: got=%f want=2", p.BestFitness())
	}
	p.Reset()
	if got := p.Improvement(pop); got != 0 {
		t.Fatalf("improvement after reset: got=%d want=0", got)
	}
}
