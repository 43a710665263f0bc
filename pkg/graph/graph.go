package graph

import (
	"errors"
	"fmt"
)

var (
	// ErrNoNodes is returned by [New] when the node list is empty.
	ErrNoNodes = errors.New("graph must contain at least one node")

	// ErrInvalidNodeID is returned by [New] when a node ID is empty.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [New] when two nodes share an ID.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrNegativePopulation is returned by [New] when a node carries a
	// negative population.
	ErrNegativePopulation = errors.New("node population must be non-negative")

	// ErrUnknownEndpoint is returned by [New] when an edge references a node
	// that is not in the node list.
	ErrUnknownEndpoint = errors.New("unknown edge endpoint")

	// ErrSelfLoopEdge is returned by [New] when an edge connects a node to
	// itself. Self-loops can never be cut and only distort flip selection.
	ErrSelfLoopEdge = errors.New("edge endpoints must differ")
)

// Node is a vertex in the districting graph, typically a census unit
// (precinct, block group, county).
type Node struct {
	ID         string  `json:"id" bson:"id"`
	Population float64 `json:"population" bson:"population"`
}

// Edge is an undirected adjacency between two nodes. From/To naming follows
// the wire format; the graph itself treats the endpoints symmetrically.
type Edge struct {
	From string `json:"from" bson:"from"`
	To   string `json:"to" bson:"to"`
}

// Graph is an immutable adjacency graph with per-node populations.
// The zero value is not usable - use [New] to create a valid instance.
type Graph struct {
	nodes    []Node
	nodeIdx  map[string]int
	edges    []Edge
	adj      map[string][]string
	incident map[string][]int // node ID -> indices into edges
	totalPop float64
}

// New builds a graph from an ordered node list and an ordered edge list.
// Node and edge order is preserved; edge indices returned by [Graph.IncidentEdges]
// refer to positions in the given edge list.
func New(nodes []Node, edges []Edge) (*Graph, error) {
	if len(nodes) == 0 {
		return nil, ErrNoNodes
	}

	g := &Graph{
		nodes:    make([]Node, len(nodes)),
		nodeIdx:  make(map[string]int, len(nodes)),
		edges:    make([]Edge, len(edges)),
		adj:      make(map[string][]string, len(nodes)),
		incident: make(map[string][]int, len(nodes)),
	}

	for i, n := range nodes {
		if n.ID == "" {
			return nil, ErrInvalidNodeID
		}
		if _, exists := g.nodeIdx[n.ID]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateNodeID, n.ID)
		}
		if n.Population < 0 {
			return nil, fmt.Errorf("%w: %q has %v", ErrNegativePopulation, n.ID, n.Population)
		}
		g.nodes[i] = n
		g.nodeIdx[n.ID] = i
		g.totalPop += n.Population
	}

	for i, e := range edges {
		if _, ok := g.nodeIdx[e.From]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownEndpoint, e.From)
		}
		if _, ok := g.nodeIdx[e.To]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownEndpoint, e.To)
		}
		if e.From == e.To {
			return nil, fmt.Errorf("%w: %q", ErrSelfLoopEdge, e.From)
		}
		g.edges[i] = e
		g.adj[e.From] = append(g.adj[e.From], e.To)
		g.adj[e.To] = append(g.adj[e.To], e.From)
		g.incident[e.From] = append(g.incident[e.From], i)
		g.incident[e.To] = append(g.incident[e.To], i)
	}

	return g, nil
}

// Nodes returns the ordered node list. The returned slice is shared with the
// graph and must not be modified.
func (g *Graph) Nodes() []Node { return g.nodes }

// Edges returns the ordered edge list. The returned slice is shared with the
// graph and must not be modified.
func (g *Graph) Edges() []Edge { return g.edges }

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// HasNode reports whether a node with the given ID exists.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.nodeIdx[id]
	return ok
}

// Population returns the population of the given node.
// The second return value is false if the node does not exist.
func (g *Graph) Population(id string) (float64, bool) {
	i, ok := g.nodeIdx[id]
	if !ok {
		return 0, false
	}
	return g.nodes[i].Population, true
}

// TotalPopulation returns the sum of all node populations.
func (g *Graph) TotalPopulation() float64 { return g.totalPop }

// Edge returns the edge at the given index in wire order.
// It panics if i is out of range, matching slice semantics.
func (g *Graph) Edge(i int) Edge { return g.edges[i] }

// Neighbors returns the IDs adjacent to the given node.
// The returned slice is shared with the graph and must not be modified.
func (g *Graph) Neighbors(id string) []string { return g.adj[id] }

// IncidentEdges returns the indices of all edges touching the given node.
// Only these edges can change cut status when the node moves between
// districts, which is what makes incremental cut bookkeeping O(degree).
// The returned slice is shared with the graph and must not be modified.
func (g *Graph) IncidentEdges(id string) []int { return g.incident[id] }
