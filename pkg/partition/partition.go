package partition

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/flipchain/flipchain/pkg/graph"
)

var (
	// ErrUnassignedNode is returned by [New] when a graph node has no entry
	// in the assignment.
	ErrUnassignedNode = errors.New("node missing from assignment")

	// ErrUnknownNode is returned by [New] when the assignment mentions a node
	// the graph does not contain.
	ErrUnknownNode = errors.New("assignment references unknown node")

	// ErrInvalidDistrict is returned by [New] when a district ID is empty.
	ErrInvalidDistrict = errors.New("district ID must not be empty")
)

// Partition is a mutable assignment of graph nodes to districts together
// with derived aggregates and a single-slot rollback snapshot.
// The zero value is not usable - use [New] to create a valid instance.
type Partition struct {
	assignment    map[string]string
	districtPop   map[string]float64
	districtNodes map[string]map[string]struct{}
	cutEdge       []bool
	cutEdges      int
	parent        *Partition
}

// New builds a partition from a total node→district assignment and derives
// all aggregates (district populations, node sets, cut-edge flags) from
// scratch. The assignment map is copied; the caller keeps ownership.
func New(g *graph.Graph, assignment map[string]string) (*Partition, error) {
	for id := range assignment {
		if !g.HasNode(id) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownNode, id)
		}
	}

	p := &Partition{
		assignment:    make(map[string]string, g.NodeCount()),
		districtPop:   make(map[string]float64),
		districtNodes: make(map[string]map[string]struct{}),
		cutEdge:       make([]bool, g.EdgeCount()),
	}

	for _, n := range g.Nodes() {
		district, ok := assignment[n.ID]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnassignedNode, n.ID)
		}
		if district == "" {
			return nil, fmt.Errorf("%w: node %q", ErrInvalidDistrict, n.ID)
		}
		p.assignment[n.ID] = district
		p.districtPop[district] += n.Population
		if p.districtNodes[district] == nil {
			p.districtNodes[district] = make(map[string]struct{})
		}
		p.districtNodes[district][n.ID] = struct{}{}
	}

	for i, e := range g.Edges() {
		if p.assignment[e.From] != p.assignment[e.To] {
			p.cutEdge[i] = true
			p.cutEdges++
		}
	}

	return p, nil
}

// Copy returns a deep, independent copy of the partition.
// The copy's parent link is cleared regardless of the receiver's.
func (p *Partition) Copy() *Partition {
	c := &Partition{
		assignment:    maps.Clone(p.assignment),
		districtPop:   maps.Clone(p.districtPop),
		districtNodes: make(map[string]map[string]struct{}, len(p.districtNodes)),
		cutEdge:       slices.Clone(p.cutEdge),
		cutEdges:      p.cutEdges,
	}
	for d, nodes := range p.districtNodes {
		c.districtNodes[d] = maps.Clone(nodes)
	}
	return c
}

// District returns the district the given node is assigned to.
// The second return value is false if the node is unknown.
func (p *Partition) District(node string) (string, bool) {
	d, ok := p.assignment[node]
	return d, ok
}

// Assignment returns a copy of the full node→district assignment.
func (p *Partition) Assignment() map[string]string {
	return maps.Clone(p.assignment)
}

// Districts returns the sorted list of district IDs.
func (p *Partition) Districts() []string {
	return slices.Sorted(maps.Keys(p.districtPop))
}

// DistrictPopulation returns the tracked population of the given district.
func (p *Partition) DistrictPopulation(district string) float64 {
	return p.districtPop[district]
}

// NodesIn returns the node set of the given district. The returned map is
// shared with the partition and must not be modified; it is also invalidated
// by the next [Partition.Apply].
func (p *Partition) NodesIn(district string) map[string]struct{} {
	return p.districtNodes[district]
}

// CutEdgeCount returns the number of edges whose endpoints lie in
// different districts.
func (p *Partition) CutEdgeCount() int { return p.cutEdges }

// IsCutEdge reports whether the edge at index i (in graph edge order)
// currently crosses a district boundary.
func (p *Partition) IsCutEdge(i int) bool { return p.cutEdge[i] }

// Parent returns the stored rollback snapshot, or nil if none is installed.
func (p *Partition) Parent() *Partition { return p.parent }

// Equal reports whether two partitions describe the same plan state:
// identical assignments, district populations, node sets, and cut-edge
// bookkeeping. Parent links are not compared.
func (p *Partition) Equal(o *Partition) bool {
	if !maps.Equal(p.assignment, o.assignment) {
		return false
	}
	if !maps.Equal(p.districtPop, o.districtPop) {
		return false
	}
	if len(p.districtNodes) != len(o.districtNodes) {
		return false
	}
	for d, nodes := range p.districtNodes {
		if !maps.Equal(nodes, o.districtNodes[d]) {
			return false
		}
	}
	return p.cutEdges == o.cutEdges && slices.Equal(p.cutEdge, o.cutEdge)
}
