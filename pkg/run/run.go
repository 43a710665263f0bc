// Package run provides the end-to-end execution layer for flip chains.
//
// This package implements the complete load → chain → persist flow that
// can be used by CLI and API components. By centralizing this logic, we
// ensure consistent behavior across all entry points and avoid code
// duplication.
//
// # Architecture
//
// An execution consists of three stages:
//
//  1. Load: Read and validate the dual graph and the initial assignment
//  2. Chain: Run the flip chain for the configured number of steps
//  3. Persist: Cache the score history and record the run in the store
//
// # Usage
//
// Create a Runner and execute a run:
//
//	runner := run.NewRunner(cache, nil, store, logger)
//	opts := run.Options{
//	    GraphPath:      "iowa.json",
//	    AssignmentPath: "plan.json",
//	    Steps:          10000,
//	    Tolerance:      0.05,
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	history := result.Data
package run

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/flipchain/flipchain/pkg/chain"
	"github.com/flipchain/flipchain/pkg/errors"
	"github.com/flipchain/flipchain/pkg/scores"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultSteps is the default number of chain steps.
	DefaultSteps = 1000

	// DefaultSeed is the default random seed for reproducibility.
	DefaultSeed = uint64(42)
)

// Score name constants.
const (
	ScoreCutEdges            = "cut_edges"
	ScoreDistrictPopulations = "district_populations"
	ScoreMaxDeviation        = "max_deviation"
	ScoreFlippedNode         = "flipped_node"
)

// RegisteredScores lists every score name Options.Scores may reference.
var RegisteredScores = []string{
	ScoreCutEdges,
	ScoreDistrictPopulations,
	ScoreMaxDeviation,
	ScoreFlippedNode,
}

// =============================================================================
// Options - Run Configuration
// =============================================================================

// Options contains all configuration for one chain run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Input options
	GraphPath      string `json:"graph"`
	AssignmentPath string `json:"assignment"`

	// Chain options
	Steps          int      `json:"steps,omitempty"`
	Seed           uint64   `json:"seed,omitempty"`
	Tolerance      float64  `json:"tolerance,omitempty"` // fractional deviation; 0 disables the population gate
	Scores         []string `json:"scores,omitempty"`
	NoSelfLoops    bool     `json:"no_self_loops,omitempty"`
	MetropolisBeta float64  `json:"metropolis_beta,omitempty"` // >0 enables cut-edge Metropolis acceptance
	Refresh        bool     `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger           `json:"-"`
	OnStep func(done, total int) `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a run.
type Result struct {
	// ID is the run identifier assigned to this execution.
	ID string

	// CreatedAt is when the run finished.
	CreatedAt time.Time

	// GraphHash is the content hash of the graph file.
	GraphHash string

	// Data is the full score history.
	Data *chain.ScoreData

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains run execution statistics.
type Stats struct {
	NodeCount int
	EdgeCount int
	Districts int
	SelfLoops int
	LoadTime  time.Duration
	ChainTime time.Duration
}

// CacheInfo tracks cache hits for each stage.
type CacheInfo struct {
	GraphHit bool // Whether the parsed graph came from cache
	RunHit   bool // Whether the score history came from cache
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent - calling it multiple times has the same effect
// as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.GraphPath == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "graph path is required")
	}
	if err := errors.ValidatePath(o.GraphPath); err != nil {
		return err
	}
	if o.AssignmentPath == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "assignment path is required")
	}
	if err := errors.ValidatePath(o.AssignmentPath); err != nil {
		return err
	}
	if o.Steps < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "steps must be positive")
	}
	if o.Steps == 0 {
		o.Steps = DefaultSteps
	}
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	if o.Tolerance < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "tolerance must be non-negative")
	}
	if len(o.Scores) == 0 {
		o.Scores = []string{ScoreCutEdges}
	}
	for _, name := range o.Scores {
		if err := errors.ValidateScoreName(name, RegisteredScores); err != nil {
			return err
		}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// BuildScores instantiates the configured scores. The ideal per-district
// population parameterizes the deviation score.
func (o *Options) BuildScores(ideal float64) ([]scores.Score, error) {
	out := make([]scores.Score, 0, len(o.Scores))
	for _, name := range o.Scores {
		switch name {
		case ScoreCutEdges:
			out = append(out, scores.CutEdges{})
		case ScoreDistrictPopulations:
			out = append(out, scores.DistrictPopulations{})
		case ScoreMaxDeviation:
			out = append(out, scores.MaxDeviation{Ideal: ideal})
		case ScoreFlippedNode:
			out = append(out, scores.FlippedNode{})
		default:
			return nil, errors.New(errors.ErrCodeInvalidScore, "unknown score %q", name)
		}
	}
	return out, nil
}

// runKeyOpts is the canonical input of the run cache key. Two runs with
// equal key options produce identical histories, so they share one entry.
type runKeyOpts struct {
	GraphHash      string   `json:"graph_hash"`
	AssignmentHash string   `json:"assignment_hash"`
	Steps          int      `json:"steps"`
	Seed           uint64   `json:"seed"`
	Tolerance      float64  `json:"tolerance"`
	Scores         []string `json:"scores"`
	NoSelfLoops    bool     `json:"no_self_loops"`
	MetropolisBeta float64  `json:"metropolis_beta"`
}
