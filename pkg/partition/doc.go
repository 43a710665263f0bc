// Package partition tracks the mutable state of a districting plan: the
// node→district assignment and everything derived from it.
//
// A [Partition] maintains, at every observable point:
//
//   - district populations (sum of member node populations)
//   - district node sets (pairwise disjoint, covering all nodes)
//   - per-edge cut flags and the cut-edge count
//
// Mutation happens exclusively through [Partition.Apply], which commits a
// [FlipProposal] in place and updates the cut bookkeeping incrementally over
// the moving node's incident edges (O(degree), not O(edges)). When asked to,
// Apply first stores a deep snapshot of the pre-flip state as the partition's
// parent; [Partition.Revert] restores exactly that state. Rollback capacity
// is one level - the snapshot's own parent link is always cleared, so memory
// stays O(1) in chain length rather than growing an undo history.
//
// A Partition has exactly one writer. Sharing one instance across chains, or
// reading while a chain mutates it, is undefined behavior; copy first with
// [Partition.Copy].
package partition
