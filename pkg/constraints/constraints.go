package constraints

import (
	"github.com/flipchain/flipchain/pkg/graph"
	"github.com/flipchain/flipchain/pkg/partition"
)

// PopulationChecker accepts or rejects the population pair a flip would
// produce. The first argument is the destination district's new population,
// the second the origin district's new population.
type PopulationChecker interface {
	Satisfies(newDest, newOrigin float64) bool
}

// ContiguityChecker accepts or rejects a flip based on whether the origin
// district's induced subgraph stays connected without the moving node.
type ContiguityChecker interface {
	Satisfies(g *graph.Graph, p *partition.Partition, prop partition.FlipProposal) bool
}

// Tolerance accepts populations within a symmetric band around an ideal
// per-district population: [Ideal*(1-Allowed), Ideal*(1+Allowed)].
type Tolerance struct {
	Ideal   float64 // target per-district population
	Allowed float64 // fractional deviation, e.g. 0.05 for ±5%
}

// Satisfies reports whether both populations lie inside the tolerance band.
func (t Tolerance) Satisfies(newDest, newOrigin float64) bool {
	lo := t.Ideal * (1 - t.Allowed)
	hi := t.Ideal * (1 + t.Allowed)
	return newDest >= lo && newDest <= hi && newOrigin >= lo && newOrigin <= hi
}

// IdealPopulation returns the ideal per-district population for a graph
// split into the given number of districts.
func IdealPopulation(g *graph.Graph, districts int) float64 {
	if districts <= 0 {
		return 0
	}
	return g.TotalPopulation() / float64(districts)
}

// Bounds accepts populations within an explicit [Min, Max] interval.
type Bounds struct {
	Min float64
	Max float64
}

// Satisfies reports whether both populations lie inside [Min, Max].
func (b Bounds) Satisfies(newDest, newOrigin float64) bool {
	return newDest >= b.Min && newDest <= b.Max && newOrigin >= b.Min && newOrigin <= b.Max
}
