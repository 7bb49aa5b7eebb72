// Package phenotype views the active part of a chromosome as a directed graph
// from inputs through function nodes to outputs.
package phenotype

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/encoding"
	"gonum.org/v1/gonum/graph/encoding/dot"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

var (
	ErrCycle         = errors.New("graph has a cycle")
	ErrUnknownVertex = errors.New("unknown vertex")
)

type Kind int

const (
	InputVertex Kind = iota
	NodeVertex
	OutputVertex
)

// Vertex is a graph node. Its ID follows the flat chromosome numbering:
// inputs first, then nodes column by column, then outputs.
type Vertex struct {
	id    int64
	Kind  Kind
	Label string
}

func (v *Vertex) ID() int64 { return v.id }

func (v *Vertex) DOTID() string {
	switch v.Kind {
	case InputVertex:
		return fmt.Sprintf("i%d", v.id)
	case OutputVertex:
		return fmt.Sprintf("o%d", v.id)
	}
	return fmt.Sprintf("n%d", v.id)
}

func (v *Vertex) Attributes() []encoding.Attribute {
	attrs := []encoding.Attribute{{Key: "label", Value: fmt.Sprintf("%q", v.Label)}}
	switch v.Kind {
	case InputVertex:
		attrs = append(attrs, encoding.Attribute{Key: "shape", Value: "invhouse"})
	case OutputVertex:
		attrs = append(attrs, encoding.Attribute{Key: "shape", Value: "house"})
	default:
		attrs = append(attrs, encoding.Attribute{Key: "shape", Value: "box"})
	}
	return attrs
}

// Graph is a data-flow graph: edges run from a value's producer to its
// consumer.
type Graph struct {
	g *simple.DirectedGraph
}

func New() *Graph {
	return &Graph{g: simple.NewDirectedGraph()}
}

// Add inserts a vertex unless one with the same ID exists, and returns the
// vertex stored under that ID.
func (g *Graph) Add(id int64, kind Kind, label string) *Vertex {
	if existing := g.g.Node(id); existing != nil {
		return existing.(*Vertex)
	}
	v := &Vertex{id: id, Kind: kind, Label: label}
	g.g.AddNode(v)
	return v
}

// Connect adds the edge from -> to. Both vertices must exist.
func (g *Graph) Connect(from, to int64) error {
	if from == to {
		return fmt.Errorf("%w: vertex %d feeds itself", ErrCycle, from)
	}
	f, t := g.g.Node(from), g.g.Node(to)
	if f == nil || t == nil {
		return fmt.Errorf("%w: edge %d -> %d", ErrUnknownVertex, from, to)
	}
	g.g.SetEdge(g.g.NewEdge(f, t))
	return nil
}

func (g *Graph) Len() int {
	return g.g.Nodes().Len()
}

func (g *Graph) Vertex(id int64) (*Vertex, bool) {
	n := g.g.Node(id)
	if n == nil {
		return nil, false
	}
	return n.(*Vertex), true
}

// Order returns the vertices in an evaluation order, ties broken by ID.
func (g *Graph) Order() ([]*Vertex, error) {
	sorted, err := topo.SortStabilized(g.g, byID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCycle, err)
	}
	out := make([]*Vertex, len(sorted))
	for i, n := range sorted {
		out[i] = n.(*Vertex)
	}
	return out, nil
}

func (g *Graph) Acyclic() error {
	_, err := g.Order()
	return err
}

// Predecessors returns the IDs feeding id.
func (g *Graph) Predecessors(id int64) []int64 {
	var ids []int64
	nodes := g.g.To(id)
	for nodes.Next() {
		ids = append(ids, nodes.Node().ID())
	}
	return ids
}

func (g *Graph) MarshalDOT(name string) ([]byte, error) {
	return dot.Marshal(g.g, name, "", "\t")
}

func byID(nodes []graph.Node) {
	for i := 1; i < len(nodes); i++ {
		for j := i; j > 0 && nodes[j].ID() < nodes[j-1].ID(); j-- {
			nodes[j], nodes[j-1] = nodes[j-1], nodes[j]
		}
	}
}
