package kgraph

import (
	"fmt"
	"unicode/utf8"

	"github.com/smallnest/medgraph/rag"
)

// Graph is a directed multigraph keyed by normalized node name.
type Graph struct {
	nodes  []*Node
	edges  []Edge
	index  map[string]int
	frozen bool
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{index: make(map[string]int)}
}

func normalizeName(name string) (string, error) {
	n := rag.Normalize(name)
	if utf8.RuneCountInString(n) < MinNameLength {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return n, nil
}

// AddNode inserts name or, if it exists, overwrites its category and
// provenance. It returns the node index.
func (g *Graph) AddNode(name string, category Category, provenance Provenance) (int, error) {
	if g.frozen {
		return -1, ErrFrozen
	}
	n, err := normalizeName(name)
	if err != nil {
		return -1, err
	}
	if idx, ok := g.index[n]; ok {
		node := g.nodes[idx]
		node.Category = category
		node.Provenance = provenance
		return idx, nil
	}
	return g.insert(n, category, provenance), nil
}

func (g *Graph) insert(name string, category Category, provenance Provenance) int {
	idx := len(g.nodes)
	g.nodes = append(g.nodes, &Node{Name: name, Category: category, Provenance: provenance})
	g.index[name] = idx
	return idx
}

func (g *Graph) ensure(name string) (int, error) {
	n, err := normalizeName(name)
	if err != nil {
		return -1, err
	}
	if idx, ok := g.index[n]; ok {
		return idx, nil
	}
	return g.insert(n, "", ""), nil
}

// AddEdge appends a new source --relation--> target edge. Existing edges
// are never merged, so repeated calls create parallel edges. Missing
// endpoints are created without category or provenance.
func (g *Graph) AddEdge(source, relation, target string) error {
	if g.frozen {
		return ErrFrozen
	}
	if relation == "" {
		return ErrInvalidRelation
	}
	s, err := g.ensure(source)
	if err != nil {
		return err
	}
	t, err := g.ensure(target)
	if err != nil {
		return err
	}
	g.link(s, relation, t)
	return nil
}

func (g *Graph) link(s int, relation string, t int) {
	e := len(g.edges)
	g.edges = append(g.edges, Edge{Source: s, Relation: relation, Target: t})
	g.nodes[s].out = append(g.nodes[s].out, e)
	g.nodes[t].in = append(g.nodes[t].in, e)
}

// HasEdge reports whether at least one source --relation--> target edge exists.
func (g *Graph) HasEdge(source, relation, target string) bool {
	s, ok := g.lookup(source)
	if !ok {
		return false
	}
	t, ok := g.lookup(target)
	if !ok {
		return false
	}
	for _, e := range g.nodes[s].out {
		if edge := g.edges[e]; edge.Target == t && edge.Relation == relation {
			return true
		}
	}
	return false
}

func (g *Graph) lookup(name string) (int, bool) {
	idx, ok := g.index[rag.Normalize(name)]
	return idx, ok
}

// Node returns a copy of the named node.
func (g *Graph) Node(name string) (Node, error) {
	idx, ok := g.lookup(name)
	if !ok {
		return Node{}, fmt.Errorf("%w: %q", ErrNodeNotFound, name)
	}
	n := g.nodes[idx]
	return Node{Name: n.Name, Category: n.Category, Provenance: n.Provenance}, nil
}

// Has reports whether the named node exists.
func (g *Graph) Has(name string) bool {
	_, ok := g.lookup(name)
	return ok
}

// Names returns node names in insertion order.
func (g *Graph) Names() []string {
	out := make([]string, len(g.nodes))
	for i, n := range g.nodes {
		out[i] = n.Name
	}
	return out
}

// NeighborsOut lists every outgoing edge of name, parallel edges included,
// in insertion order.
func (g *Graph) NeighborsOut(name string) []Neighbor {
	idx, ok := g.lookup(name)
	if !ok {
		return nil
	}
	out := make([]Neighbor, 0, len(g.nodes[idx].out))
	for _, e := range g.nodes[idx].out {
		edge := g.edges[e]
		out = append(out, Neighbor{Relation: edge.Relation, Name: g.nodes[edge.Target].Name})
	}
	return out
}

// NeighborsIn lists every incoming edge of name, parallel edges included,
// in insertion order.
func (g *Graph) NeighborsIn(name string) []Neighbor {
	idx, ok := g.lookup(name)
	if !ok {
		return nil
	}
	in := make([]Neighbor, 0, len(g.nodes[idx].in))
	for _, e := range g.nodes[idx].in {
		edge := g.edges[e]
		in = append(in, Neighbor{Relation: edge.Relation, Name: g.nodes[edge.Source].Name})
	}
	return in
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.nodes) }

// EdgeCount returns the number of edges, parallel edges counted separately.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Freeze makes the graph read-only.
func (g *Graph) Freeze() { g.frozen = true }

// Frozen reports whether Freeze has been called.
func (g *Graph) Frozen() bool { return g.frozen }

// Stats counts nodes and edges and breaks nodes down by category and
// provenance. Implicit nodes are counted under Unknown.
func (g *Graph) Stats() Stats {
	st := Stats{
		NodeCount:           len(g.nodes),
		EdgeCount:           len(g.edges),
		CategoryBreakdown:   make(map[string]int),
		ProvenanceBreakdown: make(map[string]int),
	}
	for _, n := range g.nodes {
		st.CategoryBreakdown[orUnknown(string(n.Category))]++
		st.ProvenanceBreakdown[orUnknown(string(n.Provenance))]++
	}
	st.DistinctCategories = len(st.CategoryBreakdown)
	return st
}

func orUnknown(s string) string {
	if s == "" {
		return Unknown
	}
	return s
}
