package parser

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"cgpkit/internal/genome"
	"cgpkit/internal/phenotype"
)

var (
	ErrGeneCountMismatch = errors.New("gene count does not match the experiment")
	ErrGeneRange         = errors.New("gene out of range")
	ErrAmbiguousIndexing = errors.New("node indexing is ambiguous for this topology")
)

// NodeIndexing maps node coordinates to flat .chr indices. Indices below the
// input count always address inputs.
type NodeIndexing int

const (
	// ByRows numbers nodes column by column after the inputs:
	// inputs + column*rows + row.
	ByRows NodeIndexing = iota
	// ByInputs is the legacy numbering (column+1)*inputs + row. It is only
	// decodable when rows <= inputs.
	ByInputs
)

func (n NodeIndexing) String() string {
	if n == ByInputs {
		return "inputs"
	}
	return "rows"
}

func ParseNodeIndexing(s string) (NodeIndexing, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "rows":
		return ByRows, nil
	case "inputs":
		return ByInputs, nil
	}
	return ByRows, fmt.Errorf("unknown node indexing %q", s)
}

type ChromosomeOptions struct {
	Indexing NodeIndexing
	// AllowForward accepts node connections into the same or later columns
	// as long as the wiring stays acyclic.
	AllowForward bool
}

type coordinate struct {
	input    bool
	index    int
	row, col int
}

type grid struct {
	inputs, rows, columns int
	indexing              NodeIndexing
}

func (g grid) check() error {
	if g.indexing == ByInputs && g.rows > g.inputs {
		return fmt.Errorf("%w: %d rows with %d inputs", ErrAmbiguousIndexing, g.rows, g.inputs)
	}
	return nil
}

func (g grid) decode(index int) (coordinate, error) {
	if index < 0 {
		return coordinate{}, fmt.Errorf("%w: negative index %d", ErrGeneRange, index)
	}
	if index < g.inputs {
		return coordinate{input: true, index: index}, nil
	}
	var row, col int
	if g.indexing == ByInputs {
		row, col = index%g.inputs, index/g.inputs-1
	} else {
		row, col = (index-g.inputs)%g.rows, (index-g.inputs)/g.rows
	}
	if row >= g.rows || col >= g.columns {
		return coordinate{}, fmt.Errorf("%w: index %d addresses node (%d, %d)", ErrGeneRange, index, row, col)
	}
	return coordinate{row: row, col: col}, nil
}

func (g grid) encode(row, col int) int {
	if g.indexing == ByInputs {
		return (col+1)*g.inputs + row
	}
	return g.inputs + col*g.rows + row
}

type nodeGenes struct {
	connections []coordinate
	function    int
}

// ParseChromosome reads a .chr file into c. The whole file is validated first;
// on any error c is left unmodified.
func ParseChromosome[T any](r io.Reader, c *genome.Chromosome[T], opts ChromosomeOptions) error {
	res := c.Resources()
	g := grid{inputs: res.Inputs(), rows: res.Rows(), columns: res.Columns(), indexing: opts.Indexing}
	if err := g.check(); err != nil {
		return err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read chromosome: %w", err)
	}
	parts := strings.SplitN(string(data), "\t\t\t", 2)
	if len(parts) != 2 {
		return fmt.Errorf("%w: missing separator between nodes and outputs", ErrSyntax)
	}
	geneFields, outputFields := strings.Fields(parts[0]), strings.Fields(parts[1])
	arity := res.Arity()
	if len(geneFields) != res.Nodes()*(arity+1) || len(outputFields) != res.Outputs() {
		return fmt.Errorf("%w: file has %d node genes and %d outputs, experiment needs %d and %d",
			ErrGeneCountMismatch, len(geneFields), len(outputFields), res.Nodes()*(arity+1), res.Outputs())
	}
	genes, err := atoiAll(geneFields)
	if err != nil {
		return err
	}
	outs, err := atoiAll(outputFields)
	if err != nil {
		return err
	}

	// nodes[row][col], filled in file order: column by column, row by row.
	nodes := make([][]nodeGenes, res.Rows())
	for row := range nodes {
		nodes[row] = make([]nodeGenes, res.Columns())
	}
	pos := 0
	for col := 0; col < res.Columns(); col++ {
		for row := 0; row < res.Rows(); row++ {
			n := nodeGenes{connections: make([]coordinate, arity)}
			for a := 0; a < arity; a++ {
				coord, err := g.decode(genes[pos])
				if err != nil {
					return fmt.Errorf("node (%d, %d) connection %d: %w", row, col, a, err)
				}
				if !coord.input && !opts.AllowForward && coord.col >= col {
					return fmt.Errorf("%w: node (%d, %d) connection %d reads column %d", ErrGeneRange, row, col, a, coord.col)
				}
				n.connections[a] = coord
				pos++
			}
			n.function = genes[pos]
			pos++
			if n.function < 0 || n.function >= res.Functions().TotalCount() {
				return fmt.Errorf("%w: node (%d, %d) function %d, set has %d", ErrGeneRange, row, col, n.function, res.Functions().TotalCount())
			}
			if fn := res.Function(n.function); fn.Arity > arity {
				return fmt.Errorf("%w: node (%d, %d) function %s needs %d inputs, experiment arity is %d", ErrGeneRange, row, col, fn.Name, fn.Arity, arity)
			}
			nodes[row][col] = n
		}
	}
	outputs := make([]coordinate, len(outs))
	for o, index := range outs {
		coord, err := g.decode(index)
		if err != nil {
			return fmt.Errorf("output %d: %w", o, err)
		}
		outputs[o] = coord
	}
	if opts.AllowForward {
		if err := checkAcyclic(g, nodes); err != nil {
			return err
		}
	}

	resolve := func(coord coordinate) genome.Connection[T] {
		if coord.input {
			return c.Input(coord.index)
		}
		return c.Node(coord.row, coord.col)
	}
	conns := make([]genome.Connection[T], arity)
	for row := range nodes {
		for col, n := range nodes[row] {
			for a, coord := range n.connections {
				conns[a] = resolve(coord)
			}
			if err := c.Node(row, col).Initialise(res.Function(n.function), conns...); err != nil {
				return err
			}
		}
	}
	for o, coord := range outputs {
		c.Output(o).SetSource(resolve(coord))
	}
	return nil
}

// checkAcyclic rejects wiring in which any node feeds itself through every
// connection gene, active or not.
func checkAcyclic(g grid, nodes [][]nodeGenes) error {
	graph := phenotype.New()
	id := func(coord coordinate) int64 {
		if coord.input {
			return int64(coord.index)
		}
		return phenotype.NodeID(g.inputs, g.rows, coord.row, coord.col)
	}
	for i := 0; i < g.inputs; i++ {
		graph.Add(int64(i), phenotype.InputVertex, "")
	}
	for row := range nodes {
		for col := range nodes[row] {
			graph.Add(phenotype.NodeID(g.inputs, g.rows, row, col), phenotype.NodeVertex, "")
		}
	}
	for row := range nodes {
		for col, n := range nodes[row] {
			to := phenotype.NodeID(g.inputs, g.rows, row, col)
			for _, coord := range n.connections {
				if err := graph.Connect(id(coord), to); err != nil {
					return fmt.Errorf("node (%d, %d): %w", row, col, err)
				}
			}
		}
	}
	return graph.Acyclic()
}

func atoiAll(fields []string) ([]int, error) {
	out := make([]int, len(fields))
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("%w: gene %q", ErrSyntax, f)
		}
		out[i] = v
	}
	return out, nil
}

// WriteChromosome writes c in .chr layout: per node, column by column, its
// connection indices and function index followed by a tab, then two more
// tabs and the output indices.
func WriteChromosome[T any](w io.Writer, c *genome.Chromosome[T], indexing NodeIndexing) error {
	res := c.Resources()
	g := grid{inputs: res.Inputs(), rows: res.Rows(), columns: res.Columns(), indexing: indexing}
	if err := g.check(); err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	encode := func(conn genome.Connection[T]) int {
		switch x := conn.(type) {
		case *genome.Input[T]:
			return x.Index()
		case *genome.Node[T]:
			return g.encode(x.Row(), x.Column())
		}
		panic(fmt.Sprintf("parser: unknown connection type %T", conn))
	}
	for col := 0; col < res.Columns(); col++ {
		for row := 0; row < res.Rows(); row++ {
			n := c.Node(row, col)
			for a := 0; a < n.Arity(); a++ {
				fmt.Fprintf(bw, " %d", encode(n.Connection(a)))
			}
			fmt.Fprintf(bw, " %d\t", res.FunctionIndex(n.Function()))
		}
	}
	bw.WriteString("\t\t")
	for o := 0; o < res.Outputs(); o++ {
		fmt.Fprintf(bw, " %d", encode(c.Output(o).Source()))
	}
	return bw.Flush()
}

// FormatChromosome is WriteChromosome into a string.
func FormatChromosome[T any](c *genome.Chromosome[T], indexing NodeIndexing) (string, error) {
	var b strings.Builder
	if err := WriteChromosome(&b, c, indexing); err != nil {
		return "", err
	}
	return b.String(), nil
}
