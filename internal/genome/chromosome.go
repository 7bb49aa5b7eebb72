package genome

import (
	"fmt"

	"cgpkit/internal/resources"
)

// Chromosome owns its genes for life: copying and mutation rewrite gene
// contents in place, so references to its inputs, nodes and outputs stay
// valid.
type Chromosome[T any] struct {
	res     *resources.Resources[T]
	inputs  []*Input[T]
	nodes   [][]*Node[T] // [row][column]
	outputs []*Output[T]
	fitness float64

	active []*Node[T]
	dirty  bool
	epoch  uint64
}

// NewChromosome allocates a chromosome with random genes.
func NewChromosome[T any](res *resources.Resources[T]) *Chromosome[T] {
	c := allocate(res)
	c.ReinitialiseConnections()
	return c
}

// NewChromosomeFrom allocates a chromosome whose genes copy src.
func NewChromosomeFrom[T any](src *Chromosome[T]) *Chromosome[T] {
	c := allocate(src.res)
	c.CopyGenes(src)
	return c
}

func allocate[T any](res *resources.Resources[T]) *Chromosome[T] {
	c := &Chromosome[T]{res: res, dirty: true, epoch: 1}
	c.inputs = make([]*Input[T], res.Inputs())
	for i := range c.inputs {
		c.inputs[i] = &Input[T]{chromosome: c, index: i}
	}
	c.nodes = make([][]*Node[T], res.Rows())
	for r := range c.nodes {
		c.nodes[r] = make([]*Node[T], res.Columns())
		for col := range c.nodes[r] {
			c.nodes[r][col] = newNode(c, r, col, res.Arity())
		}
	}
	c.outputs = make([]*Output[T], res.Outputs())
	for o := range c.outputs {
		c.outputs[o] = &Output[T]{chromosome: c, index: o}
	}
	return c
}

func (c *Chromosome[T]) Resources() *resources.Resources[T] { return c.res }
func (c *Chromosome[T]) Input(index int) *Input[T] { return c.inputs[index] }
func (c *Chromosome[T]) Node(row, column int) *Node[T] { return c.nodes[row][column] }
func (c *Chromosome[T]) Output(index int) *Output[T] { return c.outputs[index] }
func (c *Chromosome[T]) Fitness() float64 { return c.fitness }
func (c *Chromosome[T]) SetFitness(fitness float64) { c.fitness = fitness }

// ReinitialiseConnections draws fresh random genes for every node, row by row,
// then for every output.
func (c *Chromosome[T]) ReinitialiseConnections() {
	arity := c.res.Arity()
	for r := range c.nodes {
		for col, node := range c.nodes[r] {
			for i := 0; i < arity; i++ {
				node.connections[i] = c.RandomConnectionBefore(col)
			}
			node.function = c.res.RandomFunction()
		}
	}
	for _, output := range c.outputs {
		output.source = c.RandomConnection()
	}
	c.invalidate()
}

// CopyGenes makes every gene of c equivalent to the matching gene of src,
// resolved against c's own inputs and nodes. Both chromosomes must share a
// topology.
func (c *Chromosome[T]) CopyGenes(src *Chromosome[T]) {
	for r := range c.nodes {
		for col, node := range c.nodes[r] {
			from := src.nodes[r][col]
			node.function = from.function
			for i, conn := range from.connections {
				node.connections[i] = c.equivalent(conn)
			}
		}
	}
	for o, output := range c.outputs {
		output.source = c.equivalent(src.outputs[o].source)
	}
	c.fitness = src.fitness
	c.invalidate()
}

func (c *Chromosome[T]) equivalent(conn Connection[T]) Connection[T] {
	switch x := conn.(type) {
	case *Input[T]:
		return c.inputs[x.index]
	case *Node[T]:
		return c.nodes[x.row][x.column]
	}
	panic(fmt.Sprintf("genome: unknown connection type %T", conn))
}

// RandomConnectionBefore draws uniformly from all inputs plus the nodes of the
// levels-back window of columns directly preceding column.
func (c *Chromosome[T]) RandomConnectionBefore(column int) Connection[T] {
	rows := c.res.Rows()
	inputs := len(c.inputs)
	allowed := min(column, c.res.LevelsBack())
	offset := (column-allowed)*rows - inputs
	index := c.res.RandomInt(inputs + rows*allowed)
	if index < inputs {
		return c.inputs[index]
	}
	index += offset
	return c.nodes[index%rows][index/rows]
}

// RandomConnection draws uniformly from all inputs plus every node.
func (c *Chromosome[T]) RandomConnection() Connection[T] {
	columns := c.res.Columns()
	inputs := len(c.inputs)
	index := c.res.RandomInt(inputs + c.res.Nodes())
	if index < inputs {
		return c.inputs[index]
	}
	index -= inputs
	return c.nodes[index/columns][index%columns]
}

// RandomMutable draws uniformly from all outputs plus every node.
func (c *Chromosome[T]) RandomMutable() Mutable[T] {
	columns := c.res.Columns()
	outputs := len(c.outputs)
	index := c.res.RandomInt(outputs + c.res.Nodes())
	if index < outputs {
		return c.outputs[index]
	}
	index -= outputs
	return c.nodes[index/columns][index%columns]
}

// SetInputs loads one test case. values must hold exactly one value per input.
func (c *Chromosome[T]) SetInputs(values ...T) error {
	if len(values) != len(c.inputs) {
		return fmt.Errorf("%w: received %d inputs but need exactly %d", ErrInputCount, len(values), len(c.inputs))
	}
	for i, v := range values {
		c.inputs[i].value = v
	}
	c.epoch++
	return nil
}

// ActiveNodes returns the nodes reachable from the outputs in first-discovery
// order. The slice is cached until the next gene change and must not be
// modified.
func (c *Chromosome[T]) ActiveNodes() []*Node[T] {
	if c.dirty {
		seen := make(map[*Node[T]]struct{})
		active := make([]*Node[T], 0, c.res.Nodes())
		for _, output := range c.outputs {
			if node, ok := output.source.(*Node[T]); ok {
				active = node.collectActive(active, seen)
			}
		}
		c.active = active
		c.dirty = false
	}
	return c.active
}

// CompareGenesTo reports whether other is a distinct chromosome whose every
// node and output is a copy of c's. It is false for c itself.
func (c *Chromosome[T]) CompareGenesTo(other *Chromosome[T]) bool {
	if c == other {
		return false
	}
	for r := range c.nodes {
		for col, node := range c.nodes[r] {
			if !node.CopyOf(other.nodes[r][col]) {
				return false
			}
		}
	}
	for o, output := range c.outputs {
		if !output.CopyOf(other.outputs[o]) {
			return false
		}
	}
	return true
}

// CompareActiveGenesTo is CompareGenesTo restricted to the active nodes in
// discovery order.
func (c *Chromosome[T]) CompareActiveGenesTo(other *Chromosome[T]) bool {
	if c == other {
		return false
	}
	mine, theirs := c.ActiveNodes(), other.ActiveNodes()
	if len(mine) != len(theirs) {
		return false
	}
	for i, node := range mine {
		if !node.CopyOf(theirs[i]) {
			return false
		}
	}
	return true
}

// Genes flattens the genotype column by column: each node contributes its
// connection indices then its function index, followed by one index per
// output. Inputs are numbered first, then nodes as inputs+column*rows+row.
func (c *Chromosome[T]) Genes() []int {
	rows := c.res.Rows()
	genes := make([]int, 0, c.res.Nodes()*(c.res.Arity()+1)+len(c.outputs))
	index := func(conn Connection[T]) int {
		switch x := conn.(type) {
		case *Input[T]:
			return x.index
		case *Node[T]:
			return len(c.inputs) + x.column*rows + x.row
		}
		panic(fmt.Sprintf("genome: unknown connection type %T", conn))
	}
	for col := 0; col < c.res.Columns(); col++ {
		for r := 0; r < rows; r++ {
			node := c.nodes[r][col]
			for _, conn := range node.connections {
				genes = append(genes, index(conn))
			}
			genes = append(genes, c.res.FunctionIndex(node.function))
		}
	}
	for _, output := range c.outputs {
		genes = append(genes, index(output.source))
	}
	return genes
}

// Compare orders chromosomes by fitness ascending.
func (c *Chromosome[T]) Compare(other *Chromosome[T]) int {
	switch {
	case c.fitness < other.fitness:
		return -1
	case c.fitness > other.fitness:
		return 1
	}
	return 0
}

func (c *Chromosome[T]) invalidate() {
	c.dirty = true
	c.epoch++
}
