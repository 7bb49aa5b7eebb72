package genome

import "fmt"

type Output[T any] struct {
	chromosome *Chromosome[T]
	index      int
	source     Connection[T]
}

func (o *Output[T]) Index() int { return o.index }
func (o *Output[T]) Source() Connection[T] { return o.source }
func (o *Output[T]) Value() T { return o.source.Value() }
func (o *Output[T]) mutable() {}

// SetSource accepts any input or node regardless of column.
func (o *Output[T]) SetSource(conn Connection[T]) {
	o.source = conn
	o.chromosome.invalidate()
}

func (o *Output[T]) Mutate() {
	o.SetSource(o.chromosome.RandomConnection())
}

func (o *Output[T]) CopyOf(other *Output[T]) bool {
	if o == other || other == nil {
		return false
	}
	return o.index == other.index && sameConnection(o.source, other.source)
}

func (o *Output[T]) String() string {
	return fmt.Sprintf("Output %d", o.index)
}
