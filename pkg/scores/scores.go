// Package scores defines the per-step measurement capability consumed by the
// chain driver.
//
// A [Score] produces one opaque value per chain step. The driver calls
// [Score.Initial] once before the first step (step 0 has no proposal) and
// [Score.Step] after every completed step. Returned values are never
// inspected by the chain - they are stored in the history and forwarded to
// the consumer as-is, so scorers are free to return scalars, maps, or
// structs, as long as the values survive JSON round-trips when histories are
// persisted.
package scores

import (
	"math"

	"github.com/flipchain/flipchain/pkg/graph"
	"github.com/flipchain/flipchain/pkg/partition"
)

// Score measures one property of a partition per chain step.
type Score interface {
	// Name identifies the score; it keys the per-step entries in a history.
	Name() string

	// Initial computes the step-0 value, before any proposal exists.
	Initial(g *graph.Graph, p *partition.Partition) any

	// Step computes the value after a completed step. For a self-loop step
	// the partition has been rolled back and prop is the rejected proposal.
	Step(g *graph.Graph, p *partition.Partition, prop partition.FlipProposal) any
}

// CutEdges reports the partition's cut-edge count, the standard compactness
// proxy for flip chains.
type CutEdges struct{}

func (CutEdges) Name() string { return "cut_edges" }

func (CutEdges) Initial(_ *graph.Graph, p *partition.Partition) any {
	return p.CutEdgeCount()
}

func (CutEdges) Step(_ *graph.Graph, p *partition.Partition, _ partition.FlipProposal) any {
	return p.CutEdgeCount()
}

// DistrictPopulations reports every district's tracked population.
type DistrictPopulations struct{}

func (DistrictPopulations) Name() string { return "district_populations" }

func (DistrictPopulations) Initial(_ *graph.Graph, p *partition.Partition) any {
	return populations(p)
}

func (DistrictPopulations) Step(_ *graph.Graph, p *partition.Partition, _ partition.FlipProposal) any {
	return populations(p)
}

func populations(p *partition.Partition) map[string]float64 {
	out := make(map[string]float64)
	for _, d := range p.Districts() {
		out[d] = p.DistrictPopulation(d)
	}
	return out
}

// MaxDeviation reports the largest fractional deviation of any district's
// population from the ideal per-district population.
type MaxDeviation struct {
	Ideal float64
}

func (MaxDeviation) Name() string { return "max_deviation" }

func (s MaxDeviation) Initial(_ *graph.Graph, p *partition.Partition) any {
	return s.deviation(p)
}

func (s MaxDeviation) Step(_ *graph.Graph, p *partition.Partition, _ partition.FlipProposal) any {
	return s.deviation(p)
}

func (s MaxDeviation) deviation(p *partition.Partition) float64 {
	if s.Ideal == 0 {
		return 0
	}
	var worst float64
	for _, d := range p.Districts() {
		dev := math.Abs(p.DistrictPopulation(d)-s.Ideal) / s.Ideal
		if dev > worst {
			worst = dev
		}
	}
	return worst
}

// FlippedNode records which node a step moved and between which districts.
// Step 0 has no proposal, so the initial value is nil.
type FlippedNode struct{}

func (FlippedNode) Name() string { return "flipped_node" }

func (FlippedNode) Initial(*graph.Graph, *partition.Partition) any { return nil }

func (FlippedNode) Step(_ *graph.Graph, _ *partition.Partition, prop partition.FlipProposal) any {
	return map[string]string{"node": prop.Node, "from": prop.From, "to": prop.To}
}
