package chain

import (
	"errors"
	"math/rand/v2"

	"github.com/flipchain/flipchain/pkg/constraints"
	"github.com/flipchain/flipchain/pkg/graph"
	"github.com/flipchain/flipchain/pkg/partition"
	"github.com/flipchain/flipchain/pkg/scores"
)

var (
	// ErrMissingGraph is returned by [New] when Config.Graph is nil.
	ErrMissingGraph = errors.New("chain requires a graph")

	// ErrMissingPartition is returned by [New] when Config.Partition is nil.
	ErrMissingPartition = errors.New("chain requires an initial partition")

	// ErrInvalidSteps is returned by [New] when Config.Steps is not positive.
	ErrInvalidSteps = errors.New("steps must be positive")
)

// Config configures a flip chain.
type Config struct {
	// Graph is the immutable structure the chain runs on.
	Graph *graph.Graph

	// Partition is the initial plan. The chain mutates it in place; callers
	// that need the original must copy it first.
	Partition *partition.Partition

	// Population gates proposals on district population balance.
	// Nil means every population pair is accepted.
	Population constraints.PopulationChecker

	// Contiguity gates proposals on origin-district connectivity.
	// Nil defaults to [constraints.BFSContiguity].
	Contiguity constraints.ContiguityChecker

	// Scores are snapshotted once per completed step. May be empty.
	Scores []scores.Score

	// Steps is the number of completed steps to emit.
	Steps int

	// Accept, when non-nil, is evaluated against each committed candidate;
	// rejected candidates are rolled back. Nil means always accept, and
	// spares the per-step snapshot cost.
	Accept AcceptFunc

	// NoSelfLoops makes rejected candidates not count as steps: the driver
	// retries the same step slot until a candidate is accepted. Unbounded
	// when Accept can never be satisfied.
	NoSelfLoops bool

	// Seed initializes the chain's random source for reproducible runs.
	Seed uint64

	// Rand overrides Seed with an explicit random source when non-nil.
	Rand *rand.Rand

	// OnStep, when non-nil, is called by [Run] after each completed step
	// with the number of completed steps and the target. It is a display
	// sink (progress bars); errors and panics are not expected from it.
	OnStep func(done, total int)
}

// Step is one completed chain step.
type Step struct {
	// Index counts completed steps, starting at 1.
	Index int

	// Partition aliases the chain's single mutating instance. Consumers who
	// need this step's state after calling Next again must Copy it.
	Partition *partition.Partition

	// Proposal is the flip this step committed - or, for a self-loop, the
	// flip that was committed and rolled back.
	Proposal partition.FlipProposal

	// SelfLoop marks a step whose candidate was rejected by the acceptance
	// function and reverted; the step still counts unless NoSelfLoops.
	SelfLoop bool

	// Scores holds one entry per configured score, keyed by score name.
	Scores map[string]any
}

// allPopulations is the nil-Population default: every pair passes.
type allPopulations struct{}

func (allPopulations) Satisfies(_, _ float64) bool { return true }

// Chain is the lazy flip-chain driver. It advances one step per call to
// [Chain.Next] and performs no work in between - ceasing to call Next is
// the cancellation mechanism. A Chain is single-threaded and owns write
// access to its partition for its whole lifetime.
type Chain struct {
	cfg     Config
	rng     *rand.Rand
	emitted int
	step    Step
	err     error
}

// New validates the configuration and prepares a chain. No proposals are
// generated until the first call to [Chain.Next].
func New(cfg Config) (*Chain, error) {
	if cfg.Graph == nil {
		return nil, ErrMissingGraph
	}
	if cfg.Partition == nil {
		return nil, ErrMissingPartition
	}
	if cfg.Steps <= 0 {
		return nil, ErrInvalidSteps
	}
	if cfg.Population == nil {
		cfg.Population = allPopulations{}
	}
	if cfg.Contiguity == nil {
		cfg.Contiguity = constraints.BFSContiguity{}
	}
	rng := cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(cfg.Seed, cfg.Seed))
	}
	return &Chain{cfg: cfg, rng: rng}, nil
}

// Next advances the chain by one completed step. It returns false once
// Steps steps have been emitted or a fatal error occurred; check
// [Chain.Err] after the loop.
//
// One call runs the full per-step state machine: obtain a valid proposal,
// commit it (snapshotting first iff an acceptance function is configured),
// evaluate acceptance, roll back on rejection, and score the resulting
// state. With NoSelfLoops set, rejected candidates restart the loop within
// the same call.
func (c *Chain) Next() bool {
	if c.err != nil || c.emitted >= c.cfg.Steps {
		return false
	}

	for {
		prop, err := ValidProposal(c.rng, c.cfg.Graph, c.cfg.Partition, c.cfg.Population, c.cfg.Contiguity)
		if err != nil {
			c.err = err
			return false
		}

		// A rollback snapshot is only worth paying for when a custom
		// acceptance function can reject the committed state.
		snapshot := c.cfg.Accept != nil
		if err := c.cfg.Partition.Apply(c.cfg.Graph, prop, snapshot); err != nil {
			c.err = err
			return false
		}

		selfLoop := false
		if snapshot && !c.cfg.Accept(c.rng, c.cfg.Partition) {
			if err := c.cfg.Partition.Revert(); err != nil {
				c.err = err
				return false
			}
			if c.cfg.NoSelfLoops {
				continue
			}
			selfLoop = true
		}

		c.emitted++
		c.step = Step{
			Index:     c.emitted,
			Partition: c.cfg.Partition,
			Proposal:  prop,
			SelfLoop:  selfLoop,
			Scores:    c.snapshotScores(prop),
		}
		return true
	}
}

// Step returns the most recent completed step. It is only valid after a
// call to Next that returned true.
func (c *Chain) Step() Step { return c.step }

// Err returns the fatal error that stopped the chain, if any.
func (c *Chain) Err() error { return c.err }

// Emitted returns the number of completed steps so far.
func (c *Chain) Emitted() int { return c.emitted }

func (c *Chain) snapshotScores(prop partition.FlipProposal) map[string]any {
	out := make(map[string]any, len(c.cfg.Scores))
	for _, s := range c.cfg.Scores {
		out[s.Name()] = s.Step(c.cfg.Graph, c.cfg.Partition, prop)
	}
	return out
}

// initialScores computes the step-0 snapshot, before any proposal exists.
func (c *Chain) initialScores() map[string]any {
	out := make(map[string]any, len(c.cfg.Scores))
	for _, s := range c.cfg.Scores {
		out[s.Name()] = s.Initial(c.cfg.Graph, c.cfg.Partition)
	}
	return out
}
