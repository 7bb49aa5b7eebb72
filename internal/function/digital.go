package function

import "strconv"

// Word is the bit-parallel value digital circuit nodes compute on. Each bit
// position carries one row of the truth table.
type Word uint32

func ParseWord(s string) (Word, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, err
	}
	return Word(v), nil
}

func (w Word) String() string {
	return strconv.FormatUint(uint64(w), 10)
}

// DigitalCircuit returns a fresh set of boolean gates and multiplexers.
func DigitalCircuit() *Set[Word] {
	return NewSet[Word]("digital circuit").MustRegister(
		Function[Word]{Name: "0", Arity: 0, Run: func([]Word) Word { return 0 }},
		Function[Word]{Name: "1", Arity: 0, Run: func([]Word) Word { return ^Word(0) }},
		Function[Word]{Name: "Wire A", Arity: 2, Run: func(a []Word) Word { return a[0] }},
		Function[Word]{Name: "Wire B", Arity: 2, Run: func(a []Word) Word { return a[1] }},
		Function[Word]{Name: "Not A", Arity: 2, Run: func(a []Word) Word { return ^a[0] }},
		Function[Word]{Name: "Not B", Arity: 2, Run: func(a []Word) Word { return ^a[1] }},
		Function[Word]{Name: "And", Arity: 2, Run: func(a []Word) Word { return a[0] & a[1] }},
		Function[Word]{Name: "And !A", Arity: 2, Run: func(a []Word) Word { return ^a[0] & a[1] }},
		Function[Word]{Name: "And !B", Arity: 2, Run: func(a []Word) Word { return a[0] &^ a[1] }},
		Function[Word]{Name: "Nor", Arity: 2, Run: func(a []Word) Word { return ^(a[0] | a[1]) }},
		Function[Word]{Name: "Xor", Arity: 2, Run: func(a []Word) Word { return a[0] ^ a[1] }},
		Function[Word]{Name: "Xnor", Arity: 2, Run: func(a []Word) Word { return ^(a[0] ^ a[1]) }},
		Function[Word]{Name: "Or", Arity: 2, Run: func(a []Word) Word { return a[0] | a[1] }},
		Function[Word]{Name: "Or !A", Arity: 2, Run: func(a []Word) Word { return ^a[0] | a[1] }},
		Function[Word]{Name: "Or !B", Arity: 2, Run: func(a []Word) Word { return a[0] | ^a[1] }},
		Function[Word]{Name: "Nand", Arity: 2, Run: func(a []Word) Word { return ^(a[0] & a[1]) }},
		Function[Word]{Name: "Mux1", Arity: 3, Run: func(a []Word) Word { return (a[0] &^ a[2]) | (a[1] & a[2]) }},
		Function[Word]{Name: "Mux2", Arity: 3, Run: func(a []Word) Word { return (a[0] &^ a[2]) | (^a[1] & a[2]) }},
		Function[Word]{Name: "Mux3", Arity: 3, Run: func(a []Word) Word { return (^a[0] &^ a[2]) | (a[1] & a[2]) }},
		Function[Word]{Name: "Mux4", Arity: 3, Run: func(a []Word) Word { return (^a[0] &^ a[2]) | (^a[1] & a[2]) }},
	)
}
