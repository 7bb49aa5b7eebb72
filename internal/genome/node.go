package genome

import (
	"fmt"

	"cgpkit/internal/function"
)

type Node[T any] struct {
	chromosome  *Chromosome[T]
	row, column int
	function    *function.Function[T]
	connections []Connection[T]
	args        []T

	// value memoises the last evaluation while epoch matches the chromosome.
	value T
	epoch uint64
}

func newNode[T any](c *Chromosome[T], row, column, arity int) *Node[T] {
	return &Node[T]{
		chromosome:  c,
		row:         row,
		column:      column,
		connections: make([]Connection[T], arity),
		args:        make([]T, arity),
	}
}

func (n *Node[T]) Row() int { return n.row }
func (n *Node[T]) Column() int { return n.column }
func (n *Node[T]) Function() *function.Function[T] { return n.function }
func (n *Node[T]) Connection(index int) Connection[T] {
	return n.connections[index]
}

// Arity is the number of connection genes, which can exceed what the current
// function reads.
func (n *Node[T]) Arity() int { return len(n.connections) }

func (n *Node[T]) connection() {}
func (n *Node[T]) mutable() {}

// Value computes the node's function over its first Arity-of-function
// connections.
func (n *Node[T]) Value() T {
	if n.epoch == n.chromosome.epoch {
		return n.value
	}
	args := n.args[:n.function.Arity]
	for i := range args {
		args[i] = n.connections[i].Value()
	}
	n.value = n.function.Run(args)
	n.epoch = n.chromosome.epoch
	return n.value
}

// Initialise replaces the function and every connection. Connections are not
// checked against levels back.
func (n *Node[T]) Initialise(fn *function.Function[T], connections ...Connection[T]) error {
	if len(connections) != len(n.connections) {
		return fmt.Errorf("%w: node (%d, %d) needs %d connections, got %d",
			ErrConnectionCount, n.row, n.column, len(n.connections), len(connections))
	}
	n.function = fn
	copy(n.connections, connections)
	n.chromosome.invalidate()
	return nil
}

func (n *Node[T]) SetFunction(fn *function.Function[T]) {
	n.function = fn
	n.chromosome.invalidate()
}

// SetConnection trusts the caller: no column ordering check is made.
func (n *Node[T]) SetConnection(index int, conn Connection[T]) {
	n.connections[index] = conn
	n.chromosome.invalidate()
}

// Mutate rewrites the function or one connection, each with equal chance.
func (n *Node[T]) Mutate() {
	res := n.chromosome.res
	gene := res.RandomInt(1 + res.Arity())
	if gene < 1 {
		n.SetFunction(res.RandomFunction())
		return
	}
	n.SetConnection(gene-1, n.chromosome.RandomConnectionBefore(n.column))
}

// CopyOf reports whether other is a distinct node with the same function,
// position and connection coordinates.
func (n *Node[T]) CopyOf(other *Node[T]) bool {
	if n == other || other == nil {
		return false
	}
	if n.function != other.function || n.row != other.row || n.column != other.column {
		return false
	}
	if len(n.connections) != len(other.connections) {
		return false
	}
	for i, conn := range n.connections {
		if !sameConnection(conn, other.connections[i]) {
			return false
		}
	}
	return true
}

func (n *Node[T]) collectActive(active []*Node[T], seen map[*Node[T]]struct{}) []*Node[T] {
	if _, ok := seen[n]; ok {
		return active
	}
	seen[n] = struct{}{}
	active = append(active, n)
	for _, conn := range n.connections[:n.function.Arity] {
		if node, ok := conn.(*Node[T]); ok {
			active = node.collectActive(active, seen)
		}
	}
	return active
}

func (n *Node[T]) String() string {
	return fmt.Sprintf("Node [%d, %d]", n.row, n.column)
}
