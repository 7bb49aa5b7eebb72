package phenotype

import (
	"fmt"

	"cgpkit/internal/genome"
)

// NodeID numbers node (row, column) after the inputs, column by column.
func NodeID(inputs, rows, row, column int) int64 {
	return int64(inputs + column*rows + row)
}

func connectionID[T any](c *genome.Chromosome[T], conn genome.Connection[T]) int64 {
	res := c.Resources()
	switch x := conn.(type) {
	case *genome.Input[T]:
		return int64(x.Index())
	case *genome.Node[T]:
		return NodeID(res.Inputs(), res.Rows(), x.Row(), x.Column())
	}
	panic(fmt.Sprintf("phenotype: unknown connection type %T", conn))
}

// FromChromosome builds the graph of every input, every output and the
// active nodes between them.
func FromChromosome[T any](c *genome.Chromosome[T]) (*Graph, error) {
	res := c.Resources()
	g := New()
	for i := 0; i < res.Inputs(); i++ {
		g.Add(int64(i), InputVertex, fmt.Sprintf("in %d", i))
	}
	active := c.ActiveNodes()
	for _, n := range active {
		g.Add(connectionID(c, n), NodeVertex, fmt.Sprintf("%s (%d, %d)", n.Function().Name, n.Row(), n.Column()))
	}
	for _, n := range active {
		to := connectionID(c, n)
		for a := 0; a < n.Function().Arity; a++ {
			if err := g.Connect(connectionID(c, n.Connection(a)), to); err != nil {
				return nil, err
			}
		}
	}
	base := int64(res.Inputs() + res.Nodes())
	for o := 0; o < res.Outputs(); o++ {
		out := c.Output(o)
		g.Add(base+int64(o), OutputVertex, fmt.Sprintf("out %d", o))
		if err := g.Connect(connectionID(c, out.Source()), base+int64(o)); err != nil {
			return nil, err
		}
	}
	return g, nil
}
