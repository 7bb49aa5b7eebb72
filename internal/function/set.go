package function

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrFunctionNotFound = errors.New("function not found")
	ErrInvalidFunction  = errors.New("invalid function")
)

// Func computes a node value from exactly Arity arguments.
type Func[T any] func(args []T) T

// Function is a named node behaviour. Nodes hold pointers to registered
// functions, so pointer equality identifies the same behaviour.
type Function[T any] struct {
	Name  string
	Arity int
	Run   Func[T]
}

func (f *Function[T]) String() string {
	return f.Name
}

// Set is an ordered registry of functions with an enabled subset. The enabled
// list holds function indices in ascending order without duplicates.
type Set[T any] struct {
	name      string
	functions []*Function[T]
	allowed   []int
}

func NewSet[T any](name string) *Set[T] {
	return &Set[T]{name: name}
}

func (s *Set[T]) Name() string {
	return s.name
}

// Register appends and enables each function whose name is not already in the
// set. Functions with an existing name are skipped.
func (s *Set[T]) Register(functions ...Function[T]) error {
	for _, fn := range functions {
		if fn.Name == "" {
			return fmt.Errorf("%w: name is required", ErrInvalidFunction)
		}
		if fn.Run == nil {
			return fmt.Errorf("%w: %s has no behaviour", ErrInvalidFunction, fn.Name)
		}
		if fn.Arity < 0 {
			return fmt.Errorf("%w: %s arity must be >= 0", ErrInvalidFunction, fn.Name)
		}
		if s.lookup(fn.Name) >= 0 {
			continue
		}
		registered := fn
		s.functions = append(s.functions, &registered)
		s.enable(len(s.functions) - 1)
	}
	return nil
}

// MustRegister is Register for built-in sets.
func (s *Set[T]) MustRegister(functions ...Function[T]) *Set[T] {
	if err := s.Register(functions...); err != nil {
		panic(err)
	}
	return s
}

func (s *Set[T]) AllowedCount() int {
	return len(s.allowed)
}

func (s *Set[T]) TotalCount() int {
	return len(s.functions)
}

// Allowed returns the index-th enabled function.
func (s *Set[T]) Allowed(index int) *Function[T] {
	return s.functions[s.allowed[index]]
}

// Function returns a function from the complete list, enabled or not.
func (s *Set[T]) Function(index int) *Function[T] {
	return s.functions[index]
}

// AllowedIndices returns a copy of the enabled index list.
func (s *Set[T]) AllowedIndices() []int {
	return append([]int(nil), s.allowed...)
}

// MaxArity is the highest arity among the enabled functions, 0 when none is
// enabled.
func (s *Set[T]) MaxArity() int {
	arity := 0
	for _, index := range s.allowed {
		if a := s.functions[index].Arity; a > arity {
			arity = a
		}
	}
	return arity
}

func (s *Set[T]) EnableFunction(index int) error {
	if index < 0 || index >= len(s.functions) {
		return fmt.Errorf("%w: index %d, set has %d functions", ErrFunctionNotFound, index, len(s.functions))
	}
	s.enable(index)
	return nil
}

func (s *Set[T]) DisableFunction(index int) error {
	if index < 0 || index >= len(s.functions) {
		return fmt.Errorf("%w: index %d, set has %d functions", ErrFunctionNotFound, index, len(s.functions))
	}
	pos := sort.SearchInts(s.allowed, index)
	if pos < len(s.allowed) && s.allowed[pos] == index {
		s.allowed = append(s.allowed[:pos], s.allowed[pos+1:]...)
	}
	return nil
}

// IsEnabled reports whether fn is one of this set's enabled functions.
func (s *Set[T]) IsEnabled(fn *Function[T]) bool {
	for _, index := range s.allowed {
		if s.functions[index] == fn {
			return true
		}
	}
	return false
}

// Index returns the position of fn in the complete list, or -1.
func (s *Set[T]) Index(fn *Function[T]) int {
	for i, candidate := range s.functions {
		if candidate == fn {
			return i
		}
	}
	return -1
}

// Lookup resolves a function by name.
func (s *Set[T]) Lookup(name string) (*Function[T], error) {
	index := s.lookup(name)
	if index < 0 {
		return nil, fmt.Errorf("%w: %s", ErrFunctionNotFound, name)
	}
	return s.functions[index], nil
}

func (s *Set[T]) Names() []string {
	names := make([]string, len(s.functions))
	for i, fn := range s.functions {
		names[i] = fn.Name
	}
	return names
}

func (s *Set[T]) lookup(name string) int {
	for i, fn := range s.functions {
		if fn.Name == name {
			return i
		}
	}
	return -1
}

func (s *Set[T]) enable(index int) {
	pos := sort.SearchInts(s.allowed, index)
	if pos < len(s.allowed) && s.allowed[pos] == index {
		return
	}
	s.allowed = append(s.allowed, 0)
	copy(s.allowed[pos+1:], s.allowed[pos:])
	s.allowed[pos] = index
}
