package function

import (
	"errors"
	"math"
	"testing"
)

func TestRegisterSkipsDuplicateNames(t *testing.T) {
	set := NewSet[int]("test")
	add := Function[int]{Name: "add", Arity: 2, Run: func(a []int) int { return a[0] + a[1] }}
	if err := set.Register(add, add); err != nil {
		t.Fatalf("register: %v", err)
	}
	if set.TotalCount() != 1 || set.AllowedCount() != 1 {
		t.Fatalf("unexpected counts: total=%d allowed=%d", set.TotalCount(), set.AllowedCount())
	}
}

func TestRegisterValidation(t *testing.T) {
	set := NewSet[int]("test")
	cases := []Function[int]{
		{Name: "", Arity: 1, Run: func(a []int) int { return a[0] }},
		{Name: "nil", Arity: 1},
		{Name: "negative", Arity: -1, Run: func(a []int) int { return 0 }},
	}
	for _, fn := range cases {
		if err := set.Register(fn); !errors.Is(err, ErrInvalidFunction) {
			t.Fatalf("expected ErrInvalidFunction for %q, got %v", fn.Name, err)
		}
	}
}

func TestEnableFunctionIsIdempotent(t *testing.T) {
	set := Polynomial()
	if err := set.EnableFunction(2); err != nil {
		t.Fatalf("enable: %v", err)
	}
	if err := set.EnableFunction(2); err != nil {
		t.Fatalf("enable again: %v", err)
	}
	indices := set.AllowedIndices()
	if len(indices) != set.TotalCount() {
		t.Fatalf("expected %d enabled, got %v", set.TotalCount(), indices)
	}
	for i := 1; i < len(indices); i++ {
		if indices[i] <= indices[i-1] {
			t.Fatalf("enabled indices not strictly ascending: %v", indices)
		}
	}
}

func TestDisableAndReenableKeepsOrder(t *testing.T) {
	set := Polynomial()
	for _, index := range []int{0, 3, 3, 5} {
		if err := set.DisableFunction(index); err != nil {
			t.Fatalf("disable %d: %v", index, err)
		}
	}
	if got := set.AllowedIndices(); len(got) != 3 || got[0] != 1 || got[1] != 2 || got[2] != 4 {
		t.Fatalf("unexpected enabled list after disable: %v", got)
	}
	if err := set.EnableFunction(3); err != nil {
		t.Fatalf("enable: %v", err)
	}
	if err := set.EnableFunction(0); err != nil {
		t.Fatalf("enable: %v", err)
	}
	if got := set.AllowedIndices(); len(got) != 5 || got[0] != 0 || got[3] != 3 {
		t.Fatalf("unexpected enabled list after enable: %v", got)
	}
	if set.Allowed(1) != set.Function(1) {
		t.Fatal("expected allowed(1) to resolve to function 1")
	}
}

func TestEnableOutOfRange(t *testing.T) {
	set := Polynomial()
	if err := set.EnableFunction(set.TotalCount()); !errors.Is(err, ErrFunctionNotFound) {
		t.Fatalf("expected ErrFunctionNotFound, got %v", err)
	}
	if err := set.DisableFunction(-1); !errors.Is(err, ErrFunctionNotFound) {
		t.Fatalf("expected ErrFunctionNotFound, got %v", err)
	}
}

func TestMaxArityTracksEnabledSubset(t *testing.T) {
	set := DigitalCircuit()
	if got := set.MaxArity(); got != 3 {
		t.Fatalf("expected max arity 3, got %d", got)
	}
	for i := 16; i < 20; i++ {
		if err := set.DisableFunction(i); err != nil {
			t.Fatalf("disable: %v", err)
		}
	}
	if got := set.MaxArity(); got != 2 {
		t.Fatalf("expected max arity 2 without multiplexers, got %d", got)
	}
	for i := 0; i < set.TotalCount(); i++ {
		_ = set.DisableFunction(i)
	}
	if got := set.MaxArity(); got != 0 {
		t.Fatalf("expected max arity 0 with empty set, got %d", got)
	}
}

func TestIndexAndLookup(t *testing.T) {
	set := SymbolicRegression()
	fn, err := set.Lookup("Division")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if set.Index(fn) != set.TotalCount()-1 {
		t.Fatalf("unexpected division index %d", set.Index(fn))
	}
	if !set.IsEnabled(fn) {
		t.Fatal("expected registered function to be enabled")
	}
	_ = set.DisableFunction(set.Index(fn))
	if set.IsEnabled(fn) {
		t.Fatal("expected disabled function")
	}
	if _, err := set.Lookup("Missing"); !errors.Is(err, ErrFunctionNotFound) {
		t.Fatalf("expected ErrFunctionNotFound, got %v", err)
	}
	other := SymbolicRegression()
	if set.Index(other.Function(0)) != -1 {
		t.Fatal("functions from another set must not resolve")
	}
}

func TestDigitalCircuitFunctions(t *testing.T) {
	set := DigitalCircuit()
	a, b, sel := Word(0b1100), Word(0b1010), Word(0b0110)
	cases := []struct {
		name string
		args []Word
		want Word
	}{
		{name: "1", args: nil, want: ^Word(0)},
		{name: "And", args: []Word{a, b}, want: 0b1000},
		{name: "Or", args: []Word{a, b}, want: 0b1110},
		{name: "Xor", args: []Word{a, b}, want: 0b0110},
		{name: "And !B", args: []Word{a, b}, want: 0b0100},
		{name: "Nand", args: []Word{a, b}, want: ^Word(0b1000)},
		{name: "Mux1", args: []Word{a, b, sel}, want: (a &^ sel) | (b & sel)},
	}
	for _, tc := range cases {
		fn, err := set.Lookup(tc.name)
		if err != nil {
			t.Fatalf("lookup %s: %v", tc.name, err)
		}
		if got := fn.Run(tc.args); got != tc.want {
			t.Fatalf("%s: got=%b want=%b", tc.name, got, tc.want)
		}
	}
}

func TestProtectedRegressionFunctions(t *testing.T) {
	set := SymbolicRegression()
	div, _ := set.Lookup("Division")
	if got := div.Run([]float64{3, 0}); got != 3 {
		t.Fatalf("protected division: got=%f want=3", got)
	}
	if got := div.Run([]float64{3, 2}); got != 1.5 {
		t.Fatalf("division: got=%f want=1.5", got)
	}
	ln, _ := set.Lookup("Ln")
	if got := ln.Run([]float64{math.E}); math.Abs(got-1) > 1e-12 {
		t.Fatalf("ln: got=%f want=1", got)
	}
	poly := Polynomial()
	idiv, _ := poly.Lookup("Division")
	if got := idiv.Run([]int{7, 0}); got != 7 {
		t.Fatalf("protected integer division: got=%d want=7", got)
	}
}
