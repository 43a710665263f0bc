// Package constraints defines the pluggable validity checks a flip proposal
// must pass before the chain will commit it.
//
// Two independent capabilities gate every proposal:
//
//   - [PopulationChecker] judges the two recomputed district populations
//     (destination first, origin second).
//   - [ContiguityChecker] judges whether the origin district stays connected
//     after losing the moving node.
//
// The chain driver consumes these purely through their interfaces and never
// branches on a concrete type. This package ships the standard
// implementations: [Tolerance] and [Bounds] for population balance,
// [BFSContiguity] for connectivity, and [NoopContiguity] for benchmarks and
// tests where contiguity is irrelevant.
package constraints
