package constraints

import (
	"github.com/flipchain/flipchain/pkg/graph"
	"github.com/flipchain/flipchain/pkg/partition"
)

// BFSContiguity checks contiguity with a breadth-first search over the
// origin district's remaining node set. The proposal's FromNodes already
// excludes the moving node, so the check is: every remaining node is
// reachable from an arbitrary remaining node through edges whose endpoints
// both remain in the origin district.
type BFSContiguity struct{}

// Satisfies reports whether the origin district stays connected after the
// flip. An origin district left empty fails the check; the partition mutator
// would reject such a proposal anyway.
func (BFSContiguity) Satisfies(g *graph.Graph, p *partition.Partition, prop partition.FlipProposal) bool {
	remaining := prop.FromNodes
	if len(remaining) == 0 {
		return false
	}

	var start string
	for n := range remaining {
		start = n
		break
	}

	visited := make(map[string]struct{}, len(remaining))
	visited[start] = struct{}{}
	queue := []string{start}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, nb := range g.Neighbors(cur) {
			if _, in := remaining[nb]; !in {
				continue
			}
			if _, seen := visited[nb]; seen {
				continue
			}
			visited[nb] = struct{}{}
			queue = append(queue, nb)
		}
	}

	return len(visited) == len(remaining)
}

// NoopContiguity accepts every proposal. Useful for benchmarks and for
// chains whose graphs make fragmentation impossible.
type NoopContiguity struct{}

// Satisfies always returns true.
func (NoopContiguity) Satisfies(*graph.Graph, *partition.Partition, partition.FlipProposal) bool {
	return true
}
