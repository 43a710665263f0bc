// Package chain implements the single-node flip Markov chain over
// districting partitions.
//
// # Architecture
//
// Each step of the chain runs the same state machine:
//
//	propose → validate → commit → accept/rollback → score → yield
//
// [ProposeRandomFlip] draws a uniform cut edge and moves one of its
// endpoints into the other's district. [ValidProposal] rejection-samples
// proposals until the population and contiguity checkers both pass. The
// [Chain] driver commits the winning proposal into the shared
// [partition.Partition], optionally consults an [AcceptFunc] (rolling back
// through the partition's one-level snapshot on rejection), scores the
// resulting state, and yields.
//
// # Usage
//
// The driver is a pull iterator in the bufio.Scanner style - it performs no
// work beyond the current step until the consumer asks for the next one, and
// stopping the loop is the only cancellation mechanism:
//
//	c, err := chain.New(chain.Config{
//	    Graph:      g,
//	    Partition:  p,
//	    Population: constraints.Tolerance{Ideal: ideal, Allowed: 0.05},
//	    Contiguity: constraints.BFSContiguity{},
//	    Scores:     []scores.Score{scores.CutEdges{}},
//	    Steps:      1000,
//	    Seed:       42,
//	})
//	if err != nil {
//	    return err
//	}
//	for c.Next() {
//	    step := c.Step()
//	    // step.Partition aliases the chain's mutating instance;
//	    // copy it before calling Next again if you need to keep it.
//	}
//	if err := c.Err(); err != nil {
//	    return err
//	}
//
// [Run] is the batch form: it prepends a step-0 snapshot and drains the
// iterator into a [ScoreData] history of Steps+1 entries.
//
// # Termination hazards
//
// Two loops are unbounded by design and carry no internal timeout: the
// rejection-sampling loop in [ValidProposal] (infeasible constraints spin
// forever) and the NoSelfLoops retry in [Chain.Next] (an acceptance function
// that can never be satisfied from the current state spins forever). Callers
// with tight constraint sets must bound the run externally, e.g. by running
// the chain in a goroutine they can abandon. The one fatal condition is a
// plan with no cut edges at all ([ErrNoCutEdges]): there is no legal flip,
// and the chain stops with the error.
package chain
