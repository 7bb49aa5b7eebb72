// Package genome holds the Cartesian grid representation: inputs, a rows by
// columns grid of function nodes and outputs, wired into a feed-forward graph.
package genome

import "errors"

var (
	ErrInputCount      = errors.New("input count mismatch")
	ErrConnectionCount = errors.New("connection count mismatch")
)

// Connection is anything a node or output can read a value from. Only *Input
// and *Node implement it.
type Connection[T any] interface {
	Value() T
	connection()
}

// Mutable is a gene holder that can rewrite one of its own genes at random.
// Only *Node and *Output implement it.
type Mutable[T any] interface {
	Mutate()
	mutable()
}

type Input[T any] struct {
	chromosome *Chromosome[T]
	index      int
	value      T
}

func (in *Input[T]) Index() int { return in.index }
func (in *Input[T]) Value() T { return in.value }
func (in *Input[T]) connection() {}

func (in *Input[T]) SetValue(value T) {
	in.value = value
	in.chromosome.epoch++
}

// sameConnection reports whether a and b address the same coordinates while
// being distinct instances.
func sameConnection[T any](a, b Connection[T]) bool {
	if a == b {
		return false
	}
	switch x := a.(type) {
	case *Input[T]:
		y, ok := b.(*Input[T])
		return ok && x.index == y.index
	case *Node[T]:
		y, ok := b.(*Node[T])
		return ok && x.row == y.row && x.column == y.column
	}
	return false
}
