package chain

import (
	"math"
	"math/rand/v2"

	"github.com/flipchain/flipchain/pkg/partition"
)

// AcceptFunc decides whether a committed candidate partition is kept.
// The function owns its own probability sampling (the rng is provided for
// that purpose); the driver only consumes the boolean verdict. When a
// chain's Accept field is nil the default always-accept policy applies and
// no rollback snapshots are taken.
type AcceptFunc func(rng *rand.Rand, p *partition.Partition) bool

// AlwaysAccept keeps every candidate. Configuring it explicitly differs
// from leaving Accept nil only in that the driver still pays for snapshots.
func AlwaysAccept(*rand.Rand, *partition.Partition) bool { return true }

// NeverAccept rejects every candidate, turning every step into a self-loop.
// With NoSelfLoops set this spins forever; it exists for tests and for
// measuring proposal throughput.
func NeverAccept(*rand.Rand, *partition.Partition) bool { return false }

// MetropolisCutEdges returns a Metropolis acceptance rule on the cut-edge
// count: moves that do not increase the count are always kept, moves that
// increase it by Δ are kept with probability exp(-beta·Δ). Larger beta
// favors more compact plans.
//
// The pre-step count is read from the partition's rollback snapshot, which
// the driver installs whenever a custom acceptance function is configured.
func MetropolisCutEdges(beta float64) AcceptFunc {
	return func(rng *rand.Rand, p *partition.Partition) bool {
		parent := p.Parent()
		if parent == nil {
			return true
		}
		delta := float64(p.CutEdgeCount() - parent.CutEdgeCount())
		if delta <= 0 {
			return true
		}
		return rng.Float64() < math.Exp(-beta*delta)
	}
}
