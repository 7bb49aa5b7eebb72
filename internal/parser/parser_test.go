package parser

import (
	"errors"
	"math/rand"
	"strings"
	"testing"

	"cgpkit/internal/function"
	"cgpkit/internal/genome"
	"cgpkit/internal/problem"
	"cgpkit/internal/resources"
)

const sampleParameters = `5 population_size
2000 num_generations
10 num_runs_total
1 num_rows
20 num_cols
10 levels_back
100 report_interval
7 global_seed
3 unknown_key
1 Wire B 2
0 Not B 5
1 Extra function 99
`

func TestParseParameters(t *testing.T) {
	params, err := ParseParameters(strings.NewReader(sampleParameters), resources.DefaultParameters())
	if err != nil {
		t.Fatalf("parse parameters: %v", err)
	}
	want := resources.DefaultParameters()
	want.PopulationSize, want.Generations, want.Runs = 5, 2000, 10
	want.Rows, want.Columns, want.LevelsBack = 1, 20, 10
	want.ReportInterval, want.Seed = 100, 7
	if params != want {
		t.Fatalf("unexpected parameters:\ngot=%+v\nwant=%+v", params, want)
	}
}

func TestParseParametersRejectsBadValue(t *testing.T) {
	_, err := ParseParameters(strings.NewReader("many num_rows\n"), resources.DefaultParameters())
	if !errors.Is(err, ErrSyntax) {
		t.Fatalf("expected ErrSyntax, got %v", err)
	}
}

func TestParseFunctions(t *testing.T) {
	set := function.DigitalCircuit()
	_ = set.DisableFunction(2)
	if err := ParseFunctions(strings.NewReader(sampleParameters), set, nil); err != nil {
		t.Fatalf("parse functions: %v", err)
	}
	if !set.IsEnabled(set.Function(2)) {
		t.Fatal("expected function 2 to be re-enabled")
	}
	if set.IsEnabled(set.Function(5)) {
		t.Fatal("expected function 5 to be disabled")
	}
	if set.AllowedCount() != set.TotalCount()-1 {
		t.Fatalf("unexpected enabled count %d", set.AllowedCount())
	}
}

const sampleCases = `.i 2
.o 1
.p 4
0 0 0
0 1 1
1 0 1

1 1 0
.e
`

func TestParseTestCases(t *testing.T) {
	file, err := ParseTestCases(strings.NewReader(sampleCases))
	if err != nil {
		t.Fatalf("parse test cases: %v", err)
	}
	if file.Inputs != 2 || file.Outputs != 1 || len(file.Cases) != 4 {
		t.Fatalf("unexpected file: %+v", file)
	}
	if got := file.Cases[1]; got.Inputs[1] != "1" || got.Outputs[0] != "1" {
		t.Fatalf("unexpected case 1: %+v", got)
	}
}

func TestParseTestCasesRejectsShortRows(t *testing.T) {
	_, err := ParseTestCases(strings.NewReader(".i 2\n.o 1\n.p\n1 0\n.e\n"))
	if !errors.Is(err, ErrSyntax) {
		t.Fatalf("expected ErrSyntax, got %v", err)
	}
}

func TestLoadTestCases(t *testing.T) {
	p := problem.NewPolynomial()
	if _, err := LoadTestCases(strings.NewReader(sampleCases), p); err != nil {
		t.Fatalf("load test cases: %v", err)
	}
	if p.Inputs() != 2 || p.Outputs() != 1 || len(p.TestCases()) != 4 {
		t.Fatalf("unexpected problem state: inputs=%d outputs=%d cases=%d", p.Inputs(), p.Outputs(), len(p.TestCases()))
	}
	if _, err := LoadTestCases(strings.NewReader(".i 1\n.o 1\n.p\nx 1\n.e\n"), p); err == nil {
		t.Fatal("expected parse error")
	}
	if len(p.TestCases()) != 0 {
		t.Fatal("expected a failed load to leave no cases")
	}
}

func chrResources(t *testing.T, rows, columns, inputs int) *resources.Resources[float64] {
	t.Helper()
	p := resources.DefaultParameters()
	p.Rows, p.Columns, p.Inputs, p.Outputs, p.LevelsBack = rows, columns, inputs, 2, columns
	res, err := resources.New(resources.Config[float64]{
		Parameters: p,
		Functions:  function.SymbolicRegression(),
		Rand:       rand.New(rand.NewSource(11)),
	})
	if err != nil {
		t.Fatalf("new resources: %v", err)
	}
	return res
}

func TestChromosomeRoundTrip(t *testing.T) {
	for _, indexing := range []NodeIndexing{ByRows, ByInputs} {
		res := chrResources(t, 2, 4, 3)
		src := genome.NewChromosome(res)
		text, err := FormatChromosome(src, indexing)
		if err != nil {
			t.Fatalf("%s: format: %v", indexing, err)
		}
		dst := genome.NewChromosome(res)
		if err := ParseChromosome(strings.NewReader(text), dst, ChromosomeOptions{Indexing: indexing}); err != nil {
			t.Fatalf("%s: parse: %v", indexing, err)
		}
		if !dst.CompareGenesTo(src) {
			t.Fatalf("%s: round trip changed genes:\n%s", indexing, text)
		}
	}
}

func TestChromosomeIndexingArithmetic(t *testing.T) {
	res := chrResources(t, 2, 3, 3)
	c := genome.NewChromosome(res)
	c.Output(0).SetSource(c.Input(2))
	c.Output(1).SetSource(c.Node(1, 2))

	byRows, err := FormatChromosome(c, ByRows)
	if err != nil {
		t.Fatalf("format: %v", err)
	}
	if !strings.HasSuffix(byRows, "\t\t\t 2 8") {
		t.Fatalf("unexpected row-indexed outputs: %q", byRows)
	}
	byInputs, err := FormatChromosome(c, ByInputs)
	if err != nil {
		t.Fatalf("format: %v", err)
	}
	if !strings.HasSuffix(byInputs, "\t\t\t 2 10") {
		t.Fatalf("unexpected input-indexed outputs: %q", byInputs)
	}
}

func TestByInputsRefusesAmbiguousTopology(t *testing.T) {
	res := chrResources(t, 4, 2, 2)
	c := genome.NewChromosome(res)
	if _, err := FormatChromosome(c, ByInputs); !errors.Is(err, ErrAmbiguousIndexing) {
		t.Fatalf("expected ErrAmbiguousIndexing, got %v", err)
	}
}

func TestParseChromosomeRejectsMismatchUnchanged(t *testing.T) {
	res := chrResources(t, 2, 2, 2)
	c := genome.NewChromosome(res)
	before := genome.NewChromosomeFrom(c)

	other := chrResources(t, 2, 3, 2)
	text, err := FormatChromosome(genome.NewChromosome(other), ByRows)
	if err != nil {
		t.Fatalf("format: %v", err)
	}
	cases := map[string]struct {
		text string
		want error
	}{
		"gene count":     {text: text, want: ErrGeneCountMismatch},
		"no separator":   {text: " 0 1 2 3 4", want: ErrSyntax},
		"bad function":   {text: " 0 1 99\t 0 1 0\t 2 3 0\t 2 3 0\t\t\t 0 1", want: ErrGeneRange},
		"forward wiring": {text: " 4 1 0\t 0 1 0\t 2 3 0\t 2 3 0\t\t\t 0 1", want: ErrGeneRange},
		"out of grid":    {text: " 0 1 0\t 0 1 0\t 2 3 0\t 2 3 0\t\t\t 0 6", want: ErrGeneRange},
		"not a number":   {text: " 0 x 0\t 0 1 0\t 2 3 0\t 2 3 0\t\t\t 0 1", want: ErrSyntax},
	}
	for name, tc := range cases {
		err := ParseChromosome(strings.NewReader(tc.text), c, ChromosomeOptions{})
		if !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", name, tc.want, err)
		}
		if !c.CompareGenesTo(before) {
			t.Fatalf("%s: chromosome modified by a rejected file", name)
		}
	}
}

func TestParseChromosomeForwardWiring(t *testing.T) {
	res := chrResources(t, 2, 2, 2)
	c := genome.NewChromosome(res)
	// node (0,0) reads node (0,1), which reads the inputs
	forward := " 4 1 0\t 0 1 0\t 0 1 0\t 2 3 0\t\t\t 2 4"
	if err := ParseChromosome(strings.NewReader(forward), c, ChromosomeOptions{AllowForward: true}); err != nil {
		t.Fatalf("parse forward wiring: %v", err)
	}
	if c.Node(0, 0).Connection(0) != genome.Connection[float64](c.Node(0, 1)) {
		t.Fatal("expected node (0,0) to read node (0,1)")
	}
	cyclic := " 4 1 0\t 0 1 0\t 2 0 0\t 2 3 0\t\t\t 2 4"
	before := genome.NewChromosomeFrom(c)
	if err := ParseChromosome(strings.NewReader(cyclic), c, ChromosomeOptions{AllowForward: true}); err == nil {
		t.Fatal("expected cycle to be rejected")
	}
	if !c.CompareGenesTo(before) {
		t.Fatal("chromosome modified by a cyclic file")
	}
}

func TestParseChromosomeRejectsFunctionAboveArity(t *testing.T) {
	set := function.DigitalCircuit()
	for _, name := range []string{"Mux1", "Mux2", "Mux3", "Mux4"} {
		fn, err := set.Lookup(name)
		if err != nil {
			t.Fatalf("lookup %s: %v", name, err)
		}
		if err := set.DisableFunction(set.Index(fn)); err != nil {
			t.Fatalf("disable %s: %v", name, err)
		}
	}
	p := resources.DefaultParameters()
	p.Rows, p.Columns, p.Inputs, p.Outputs, p.LevelsBack = 1, 1, 2, 1, 1
	res, err := resources.New(resources.Config[function.Word]{
		Parameters: p,
		Functions:  set,
		Rand:       rand.New(rand.NewSource(3)),
	})
	if err != nil {
		t.Fatalf("new resources: %v", err)
	}
	if res.Arity() != 2 {
		t.Fatalf("expected arity 2, got %d", res.Arity())
	}
	c := genome.NewChromosome(res)
	before := genome.NewChromosomeFrom(c)

	// Function 16 is Mux1, a disabled arity-3 function.
	err = ParseChromosome(strings.NewReader(" 0 1 16\t\t\t 2"), c, ChromosomeOptions{})
	if !errors.Is(err, ErrGeneRange) {
		t.Fatalf("expected ErrGeneRange, got %v", err)
	}
	if !c.CompareGenesTo(before) {
		t.Fatal("chromosome modified by a rejected file")
	}
}
