package partition

import (
	"errors"
	"fmt"

	"github.com/flipchain/flipchain/pkg/graph"
)

var (
	// ErrStaleProposal is returned by [Partition.Apply] when the proposal's
	// moving node is no longer assigned to the proposal's origin district.
	// This happens when a proposal is held across an intervening flip.
	ErrStaleProposal = errors.New("proposal does not match current assignment")

	// ErrEmptiesDistrict is returned by [Partition.Apply] when committing the
	// proposal would leave the origin district with no nodes. Districts are
	// never eliminated by a flip chain.
	ErrEmptiesDistrict = errors.New("flip would empty origin district")

	// ErrNoParent is returned by [Partition.Revert] when no rollback
	// snapshot is installed.
	ErrNoParent = errors.New("no parent snapshot to revert to")
)

// FlipProposal is a single-node move across a cut edge, together with the
// speculatively recomputed state of the two districts it touches. Proposals
// are values: producing one never mutates the partition.
type FlipProposal struct {
	Node string // moving node
	From string // origin district
	To   string // destination district

	FromPop float64 // origin population after the move
	ToPop   float64 // destination population after the move

	FromNodes map[string]struct{} // origin node set after the move
	ToNodes   map[string]struct{} // destination node set after the move
}

// Apply commits a flip proposal in place.
//
// When snapshotParent is true, a deep copy of the pre-flip state (with its
// own parent link cleared) is installed as the rollback snapshot before any
// mutation. Then the two affected districts take the proposal's recomputed
// populations and node sets, the moving node is reassigned, and the cut-edge
// flags are refreshed incrementally over the moving node's incident edges -
// the only edges whose cut status can have changed.
func (p *Partition) Apply(g *graph.Graph, prop FlipProposal, snapshotParent bool) error {
	if cur, ok := p.assignment[prop.Node]; !ok || cur != prop.From {
		return fmt.Errorf("%w: node %q not in district %q", ErrStaleProposal, prop.Node, prop.From)
	}
	if len(prop.FromNodes) == 0 {
		return fmt.Errorf("%w: %q", ErrEmptiesDistrict, prop.From)
	}

	if snapshotParent {
		p.parent = p.Copy()
	}

	p.districtPop[prop.From] = prop.FromPop
	p.districtPop[prop.To] = prop.ToPop
	p.assignment[prop.Node] = prop.To
	delete(p.districtNodes[prop.From], prop.Node)
	if p.districtNodes[prop.To] == nil {
		p.districtNodes[prop.To] = make(map[string]struct{})
	}
	p.districtNodes[prop.To][prop.Node] = struct{}{}

	for _, ei := range g.IncidentEdges(prop.Node) {
		e := g.Edge(ei)
		cut := p.assignment[e.From] != p.assignment[e.To]
		if cut == p.cutEdge[ei] {
			continue
		}
		p.cutEdge[ei] = cut
		if cut {
			p.cutEdges++
		} else {
			p.cutEdges--
		}
	}

	return nil
}

// Revert restores the partition to its stored parent snapshot and clears the
// parent link. The receiver keeps its identity: callers holding a *Partition
// observe the rolled-back state through the same pointer.
func (p *Partition) Revert() error {
	if p.parent == nil {
		return ErrNoParent
	}
	snap := p.parent
	p.assignment = snap.assignment
	p.districtPop = snap.districtPop
	p.districtNodes = snap.districtNodes
	p.cutEdge = snap.cutEdge
	p.cutEdges = snap.cutEdges
	p.parent = nil
	return nil
}
