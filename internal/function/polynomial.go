package function

import "math"

// Polynomial returns a fresh set of integer operators.
func Polynomial() *Set[int] {
	return NewSet[int]("polynomial").MustRegister(
		Function[int]{Name: "Square root", Arity: 1, Run: func(a []int) int {
			return int(math.Sqrt(math.Abs(float64(a[0]))))
		}},
		Function[int]{Name: "Power", Arity: 2, Run: func(a []int) int {
			return int(math.Pow(float64(a[0]), float64(a[1])))
		}},
		Function[int]{Name: "Addition", Arity: 2, Run: func(a []int) int { return a[0] + a[1] }},
		Function[int]{Name: "Subtraction", Arity: 2, Run: func(a []int) int { return a[0] - a[1] }},
		Function[int]{Name: "Multiplication", Arity: 2, Run: func(a []int) int { return a[0] * a[1] }},
		// Integer divisors are protected at zero only.
		Function[int]{Name: "Division", Arity: 2, Run: func(a []int) int {
			if a[1] == 0 {
				return a[0]
			}
			return a[0] / a[1]
		}},
	)
}
