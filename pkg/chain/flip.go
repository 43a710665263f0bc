package chain

import (
	"errors"
	"maps"
	"math/rand/v2"

	"github.com/flipchain/flipchain/pkg/constraints"
	"github.com/flipchain/flipchain/pkg/graph"
	"github.com/flipchain/flipchain/pkg/partition"
)

// ErrNoCutEdges is returned by [ProposeRandomFlip] when the partition has no
// boundary to flip across. This is fatal: a plan with no cut edges (e.g. a
// single district) admits no legal move, and the caller must stop the chain.
var ErrNoCutEdges = errors.New("no cut edges: plan has no boundary to flip")

// ProposeRandomFlip draws one flip proposal uniformly at random.
//
// The cut edge is chosen by drawing an index in [1, cutEdgeCount] and
// scanning the edge set in wire order, counting cut edges until the running
// count reaches the draw. This gives a uniform choice among cut edges
// without maintaining a separate cut-edge index. One endpoint is then chosen
// uniformly as the moving node; the other endpoint's district becomes the
// destination. The two districts' populations and node sets are recomputed
// speculatively - the partition is not touched.
func ProposeRandomFlip(rng *rand.Rand, g *graph.Graph, p *partition.Partition) (partition.FlipProposal, error) {
	total := p.CutEdgeCount()
	if total == 0 {
		return partition.FlipProposal{}, ErrNoCutEdges
	}

	target := rng.IntN(total) + 1
	seen := 0
	var edge graph.Edge
	for i := 0; i < g.EdgeCount(); i++ {
		if !p.IsCutEdge(i) {
			continue
		}
		seen++
		if seen == target {
			edge = g.Edge(i)
			break
		}
	}

	mover, anchor := edge.From, edge.To
	if rng.IntN(2) == 1 {
		mover, anchor = anchor, mover
	}

	from, _ := p.District(mover)
	to, _ := p.District(anchor)
	pop, _ := g.Population(mover)

	fromNodes := maps.Clone(p.NodesIn(from))
	delete(fromNodes, mover)
	toNodes := maps.Clone(p.NodesIn(to))
	toNodes[mover] = struct{}{}

	return partition.FlipProposal{
		Node:      mover,
		From:      from,
		To:        to,
		FromPop:   p.DistrictPopulation(from) - pop,
		ToPop:     p.DistrictPopulation(to) + pop,
		FromNodes: fromNodes,
		ToNodes:   toNodes,
	}, nil
}

// IsValid reports whether a proposal passes both constraint checkers: the
// population checker on the pair (new destination population, new origin
// population), then the contiguity checker on the proposal itself.
func IsValid(g *graph.Graph, p *partition.Partition, pop constraints.PopulationChecker, contig constraints.ContiguityChecker, prop partition.FlipProposal) bool {
	if !pop.Satisfies(prop.ToPop, prop.FromPop) {
		return false
	}
	return contig.Satisfies(g, p, prop)
}

// ValidProposal rejection-samples flips until one satisfies both checkers.
//
// There is no iteration bound. If the constraint set is infeasible from the
// current boundary this loops forever; that trade-off (simplicity over
// guaranteed termination) is deliberate, and callers with tight constraints
// must bound the call externally. The only error is [ErrNoCutEdges] from the
// proposal step.
func ValidProposal(rng *rand.Rand, g *graph.Graph, p *partition.Partition, pop constraints.PopulationChecker, contig constraints.ContiguityChecker) (partition.FlipProposal, error) {
	for {
		prop, err := ProposeRandomFlip(rng, g, p)
		if err != nil {
			return partition.FlipProposal{}, err
		}
		if IsValid(g, p, pop, contig, prop) {
			return prop, nil
		}
	}
}
