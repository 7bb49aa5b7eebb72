// Package casegen samples arithmetic expressions over a grid of variable
// values to produce regression test cases.
package casegen

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/PaesslerAG/gval"
)

const MaxCases = 100000

var ErrInvalidSpec = errors.New("invalid case generation spec")

// Language is gval arithmetic with the common math functions and constants.
var Language = gval.NewLanguage(
	gval.Full(),
	unary("sin", math.Sin),
	unary("cos", math.Cos),
	unary("tan", math.Tan),
	unary("exp", math.Exp),
	unary("ln", math.Log),
	unary("log", math.Log10),
	unary("sqrt", math.Sqrt),
	unary("abs", math.Abs),
	binary("pow", math.Pow),
	binary("hypot", math.Hypot),
	gval.Constant("pi", math.Pi),
	gval.Constant("e", math.E),
)

func unary(name string, fn func(float64) float64) gval.Language {
	return gval.Function(name, func(args ...interface{}) (interface{}, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("%s takes 1 argument, got %d", name, len(args))
		}
		x, ok := args[0].(float64)
		if !ok {
			return nil, fmt.Errorf("%s: expected number, got %T", name, args[0])
		}
		return fn(x), nil
	})
}

func binary(name string, fn func(float64, float64) float64) gval.Language {
	return gval.Function(name, func(args ...interface{}) (interface{}, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("%s takes 2 arguments, got %d", name, len(args))
		}
		x, ok1 := args[0].(float64)
		y, ok2 := args[1].(float64)
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("%s: expected numbers, got %T and %T", name, args[0], args[1])
		}
		return fn(x, y), nil
	})
}

// Spec samples every expression on the grid From..To (inclusive) in steps of
// Step along each variable.
type Spec struct {
	Expressions []string
	Variables   []string
	From, To    float64
	Step        float64
}

type Case struct {
	Inputs  []float64
	Outputs []float64
}

func (s Spec) points() (int, error) {
	if len(s.Expressions) == 0 {
		return 0, fmt.Errorf("%w: at least one expression is required", ErrInvalidSpec)
	}
	if len(s.Variables) == 0 {
		return 0, fmt.Errorf("%w: at least one variable is required", ErrInvalidSpec)
	}
	if s.Step <= 0 || s.To < s.From {
		return 0, fmt.Errorf("%w: need step > 0 and from <= to, got %g..%g step %g", ErrInvalidSpec, s.From, s.To, s.Step)
	}
	// tolerate rounding so that the upper bound is included
	n := int(math.Floor((s.To-s.From)/s.Step+1e-9)) + 1
	total := 1
	for range s.Variables {
		total *= n
		if total > MaxCases {
			return 0, fmt.Errorf("%w: grid exceeds %d cases", ErrInvalidSpec, MaxCases)
		}
	}
	return n, nil
}

func Generate(ctx context.Context, spec Spec) ([]Case, error) {
	n, err := spec.points()
	if err != nil {
		return nil, err
	}
	evals := make([]gval.Evaluable, len(spec.Expressions))
	for i, expr := range spec.Expressions {
		evals[i], err = Language.NewEvaluable(expr)
		if err != nil {
			return nil, fmt.Errorf("parse %q: %w", expr, err)
		}
	}

	var cases []Case
	index := make([]int, len(spec.Variables))
	values := make(map[string]interface{}, len(spec.Variables))
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		tc := Case{Inputs: make([]float64, len(spec.Variables)), Outputs: make([]float64, len(evals))}
		for v, name := range spec.Variables {
			x := spec.From + float64(index[v])*spec.Step
			tc.Inputs[v] = x
			values[name] = x
		}
		for o, eval := range evals {
			y, err := eval.EvalFloat64(ctx, values)
			if err != nil {
				return nil, fmt.Errorf("evaluate %q at %v: %w", spec.Expressions[o], tc.Inputs, err)
			}
			tc.Outputs[o] = y
		}
		cases = append(cases, tc)

		// odometer over the variable indices, last variable fastest
		v := len(index) - 1
		for v >= 0 {
			index[v]++
			if index[v] < n {
				break
			}
			index[v] = 0
			v--
		}
		if v < 0 {
			return cases, nil
		}
	}
}

// Write emits cases in the test-case table format.
func Write(w io.Writer, cases []Case) error {
	if len(cases) == 0 {
		return fmt.Errorf("%w: no cases to write", ErrInvalidSpec)
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, ".i %d\n.o %d\n.p %d\n", len(cases[0].Inputs), len(cases[0].Outputs), len(cases))
	for _, tc := range cases {
		fields := make([]string, 0, len(tc.Inputs)+len(tc.Outputs))
		for _, v := range tc.Inputs {
			fields = append(fields, strconv.FormatFloat(v, 'g', -1, 64))
		}
		for _, v := range tc.Outputs {
			fields = append(fields, strconv.FormatFloat(v, 'g', -1, 64))
		}
		bw.WriteString(strings.Join(fields, " "))
		bw.WriteByte('\n')
	}
	bw.WriteString(".e\n")
	return bw.Flush()
}
