package cgp

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"cgpkit/internal/config"
	"cgpkit/internal/function"
	"cgpkit/internal/genome"
	"cgpkit/internal/model"
	"cgpkit/internal/parser"
	"cgpkit/internal/phenotype"
	"cgpkit/internal/problem"
	"cgpkit/internal/resources"
)

var ErrUnknownProblem = errors.New("unknown problem")

const (
	ProblemDigital    = "digital"
	ProblemRegression = "regression"
	ProblemPolynomial = "polynomial"
)

// caseProblem is a problem fed from a test-case file.
type caseProblem[T any] interface {
	problem.Problem[T]
	problem.CaseLoader
	Inputs() int
	Outputs() int
}

type FunctionInfo struct {
	Index   int
	Name    string
	Arity   int
	Enabled bool
}

// kind binds a problem name to its value type.
type kind struct {
	run       func(ctx context.Context, c *Client, req RunRequest) (RunSummary, error)
	functions func() []FunctionInfo
	dot       func(rec model.ExperimentRecord, chromosome string) ([]byte, error)
}

func register[T any](build func(config.Settings) (caseProblem[T], error)) kind {
	return kind{
		run: func(ctx context.Context, c *Client, req RunRequest) (RunSummary, error) {
			p, err := build(req.Settings)
			if err != nil {
				return RunSummary{}, err
			}
			return runProblem(ctx, c, req, p)
		},
		functions: func() []FunctionInfo {
			p, err := build(config.Default())
			if err != nil {
				return nil
			}
			return describe(p.Functions())
		},
		dot: func(rec model.ExperimentRecord, chromosome string) ([]byte, error) {
			p, err := build(config.Default())
			if err != nil {
				return nil, err
			}
			return chromosomeDOT(rec, p.Functions(), chromosome)
		},
	}
}

var kinds = map[string]kind{
	ProblemDigital: register(func(config.Settings) (caseProblem[function.Word], error) {
		return problem.NewDigitalCircuit(), nil
	}),
	ProblemRegression: register(func(s config.Settings) (caseProblem[float64], error) {
		p, err := problem.NewSymbolicRegression(s.Regression)
		if err != nil {
			return nil, err
		}
		return p, nil
	}),
	ProblemPolynomial: register(func(config.Settings) (caseProblem[int], error) {
		return problem.NewPolynomial(), nil
	}),
}

func lookupKind(name string) (kind, error) {
	k, ok := kinds[name]
	if !ok {
		return kind{}, fmt.Errorf("%w: %q (want one of %v)", ErrUnknownProblem, name, Problems())
	}
	return k, nil
}

// Problems lists the registered problem names.
func Problems() []string {
	names := make([]string, 0, len(kinds))
	for name := range kinds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Functions describes the built-in function set of a problem.
func Functions(problemName string) ([]FunctionInfo, error) {
	k, err := lookupKind(problemName)
	if err != nil {
		return nil, err
	}
	return k.functions(), nil
}

func describe[T any](set *function.Set[T]) []FunctionInfo {
	out := make([]FunctionInfo, set.TotalCount())
	for i := range out {
		fn := set.Function(i)
		out[i] = FunctionInfo{Index: i, Name: fn.Name, Arity: fn.Arity, Enabled: set.IsEnabled(fn)}
	}
	return out
}

func enabledNames[T any](set *function.Set[T]) []string {
	var names []string
	for _, index := range set.AllowedIndices() {
		names = append(names, set.Function(index).Name)
	}
	return names
}

// applyFunctionSettings toggles functions by name. Disable is applied last.
func applyFunctionSettings[T any](set *function.Set[T], s config.FunctionSettings) error {
	toggle := func(names []string, apply func(int) error) error {
		for _, name := range names {
			fn, err := set.Lookup(name)
			if err != nil {
				return err
			}
			if err := apply(set.Index(fn)); err != nil {
				return err
			}
		}
		return nil
	}
	if err := toggle(s.Enable, set.EnableFunction); err != nil {
		return err
	}
	return toggle(s.Disable, set.DisableFunction)
}

// chromosomeDOT rebuilds a stored chromosome against the experiment's
// enabled functions and renders its active graph.
func chromosomeDOT[T any](rec model.ExperimentRecord, set *function.Set[T], chromosome string) ([]byte, error) {
	enabled := make(map[string]bool, len(rec.Functions))
	for _, name := range rec.Functions {
		enabled[name] = true
	}
	for i := 0; i < set.TotalCount(); i++ {
		var err error
		if enabled[set.Function(i).Name] {
			err = set.EnableFunction(i)
		} else {
			err = set.DisableFunction(i)
		}
		if err != nil {
			return nil, err
		}
	}

	params := resources.DefaultParameters()
	params.Rows, params.Columns = rec.Grid.Rows, rec.Grid.Columns
	params.Inputs, params.Outputs = rec.Grid.Inputs, rec.Grid.Outputs
	params.LevelsBack, params.PopulationSize = rec.Grid.LevelsBack, 1
	res, err := resources.New(resources.Config[T]{Parameters: params, Functions: set})
	if err != nil {
		return nil, err
	}
	if res.Arity() != rec.Grid.Arity {
		return nil, fmt.Errorf("experiment %s was run with arity %d, its functions give %d", rec.ID, rec.Grid.Arity, res.Arity())
	}
	indexing, err := parser.ParseNodeIndexing(rec.Indexing)
	if err != nil {
		return nil, err
	}

	c := genome.NewChromosome(res)
	if err := parser.ParseChromosome(strings.NewReader(chromosome), c, parser.ChromosomeOptions{Indexing: indexing}); err != nil {
		return nil, err
	}
	g, err := phenotype.FromChromosome(c)
	if err != nil {
		return nil, err
	}
	return g.MarshalDOT("best")
}
