package function

import "math"

// DivisionLimit guards the protected operators: inputs below it are returned
// unchanged instead of being divided, logged or passed to tan.
const DivisionLimit = 0.0001

// SymbolicRegression returns a fresh set of real-valued operators.
func SymbolicRegression() *Set[float64] {
	return NewSet[float64]("symbolic regression").MustRegister(
		Function[float64]{Name: "Absolute", Arity: 1, Run: func(a []float64) float64 { return math.Abs(a[0]) }},
		Function[float64]{Name: "Square root", Arity: 1, Run: func(a []float64) float64 { return math.Sqrt(math.Abs(a[0])) }},
		Function[float64]{Name: "Reciprocal", Arity: 1, Run: func(a []float64) float64 {
			if a[0] < DivisionLimit {
				return a[0]
			}
			return 1 / a[0]
		}},
		Function[float64]{Name: "Sin", Arity: 1, Run: func(a []float64) float64 { return math.Sin(a[0]) }},
		Function[float64]{Name: "Cos", Arity: 1, Run: func(a []float64) float64 { return math.Cos(a[0]) }},
		Function[float64]{Name: "Tan", Arity: 1, Run: func(a []float64) float64 {
			if a[0] < DivisionLimit {
				return a[0]
			}
			return math.Tan(a[0])
		}},
		Function[float64]{Name: "Exp", Arity: 1, Run: func(a []float64) float64 { return math.Exp(a[0]) }},
		Function[float64]{Name: "Sinh", Arity: 1, Run: func(a []float64) float64 { return math.Sinh(a[0]) }},
		Function[float64]{Name: "Cosh", Arity: 1, Run: func(a []float64) float64 { return math.Cosh(a[0]) }},
		Function[float64]{Name: "Tanh", Arity: 1, Run: func(a []float64) float64 { return math.Tanh(a[0]) }},
		Function[float64]{Name: "Ln", Arity: 1, Run: func(a []float64) float64 {
			if a[0] < DivisionLimit {
				return a[0]
			}
			return math.Log(math.Abs(a[0]))
		}},
		Function[float64]{Name: "Log", Arity: 1, Run: func(a []float64) float64 {
			if a[0] < DivisionLimit {
				return a[0]
			}
			return math.Log10(math.Abs(a[0]))
		}},
		Function[float64]{Name: "Sin(a+b)", Arity: 2, Run: func(a []float64) float64 { return math.Sin(a[0] + a[1]) }},
		Function[float64]{Name: "Cos(a+b)", Arity: 2, Run: func(a []float64) float64 { return math.Cos(a[0] + a[1]) }},
		Function[float64]{Name: "Hypotenuse", Arity: 2, Run: func(a []float64) float64 { return math.Hypot(a[0], a[1]) }},
		Function[float64]{Name: "Power", Arity: 2, Run: func(a []float64) float64 { return math.Pow(math.Abs(a[0]), a[1]) }},
		Function[float64]{Name: "Addition", Arity: 2, Run: func(a []float64) float64 { return a[0] + a[1] }},
		Function[float64]{Name: "Subtraction", Arity: 2, Run: func(a []float64) float64 { return a[0] - a[1] }},
		Function[float64]{Name: "Multiplication", Arity: 2, Run: func(a []float64) float64 { return a[0] * a[1] }},
		Function[float64]{Name: "Division", Arity: 2, Run: func(a []float64) float64 {
			if a[1] < DivisionLimit {
				return a[0]
			}
			return a[0] / a[1]
		}},
	)
}
