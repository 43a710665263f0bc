package run

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/flipchain/flipchain/pkg/cache"
	"github.com/flipchain/flipchain/pkg/chain"
	"github.com/flipchain/flipchain/pkg/constraints"
	"github.com/flipchain/flipchain/pkg/errors"
	"github.com/flipchain/flipchain/pkg/graph"
	"github.com/flipchain/flipchain/pkg/observability"
	"github.com/flipchain/flipchain/pkg/partition"
	"github.com/flipchain/flipchain/pkg/store"
)

// Cache TTLs per entry type.
const (
	// TTLGraph is how long validated graphs stay cached. Graph files
	// change rarely and entries are keyed by content hash, so staleness
	// is not a concern.
	TTLGraph = 7 * 24 * time.Hour

	// TTLRun is how long score histories stay cached.
	TTLRun = 24 * time.Hour
)

// Runner encapsulates run execution with caching and persistence.
// Both CLI and API can use this to avoid duplicating the flow.
//
// The Runner is stateless except for the cache, store, and logger - it
// doesn't hold run results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Store  store.Store
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache, keyer, and store.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
// If store is nil, runs are not persisted.
func NewRunner(c cache.Cache, keyer cache.Keyer, st store.Store, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Store:  st,
		Logger: logger,
	}
}

// Execute runs the complete load → chain → persist flow with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)

	result := &Result{ID: uuid.NewString()}

	// Stage 1: Load
	loadStart := time.Now()
	g, graphHash, graphHit, err := r.LoadGraphWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, err
	}
	result.GraphHash = graphHash
	result.CacheInfo.GraphHit = graphHit

	assignment, assignmentHash, err := loadAssignment(opts.AssignmentPath)
	if err != nil {
		return nil, err
	}
	p, err := partition.New(g, assignment)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidAssignment, err, "building initial partition")
	}

	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.NodeCount = g.NodeCount()
	result.Stats.EdgeCount = g.EdgeCount()
	result.Stats.Districts = len(p.Districts())

	opts.Logger.Info("loaded inputs",
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount(),
		"districts", result.Stats.Districts,
		"duration", result.Stats.LoadTime)

	// Stage 2: Chain, short-circuited by the run cache.
	keyOpts := runKeyOpts{
		GraphHash:      graphHash,
		AssignmentHash: assignmentHash,
		Steps:          opts.Steps,
		Seed:           opts.Seed,
		Tolerance:      opts.Tolerance,
		Scores:         opts.Scores,
		NoSelfLoops:    opts.NoSelfLoops,
		MetropolisBeta: opts.MetropolisBeta,
	}
	optionsHash, err := cache.HashJSON(keyOpts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "hashing run options")
	}
	runKey := r.Keyer.RunKey(optionsHash)

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, runKey); err == nil && hit {
			var cached chain.ScoreData
			if err := json.Unmarshal(data, &cached); err == nil {
				observability.Cache().OnCacheHit(ctx, "run")
				result.Data = &cached
				result.CacheInfo.RunHit = true
				result.CreatedAt = time.Now().UTC()
				opts.Logger.Info("run served from cache", "steps", opts.Steps)
				return result, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "run")
	}

	data, err := r.runChain(ctx, g, p, opts)
	result.Stats.ChainTime = time.Since(loadStart) - result.Stats.LoadTime
	if err != nil {
		return nil, err
	}
	result.Data = data
	result.CreatedAt = time.Now().UTC()
	result.Stats.SelfLoops = data.SelfLoops

	opts.Logger.Info("chain complete",
		"steps", opts.Steps,
		"self_loops", data.SelfLoops,
		"duration", result.Stats.ChainTime)

	// Stage 3: Persist
	if encoded, err := json.Marshal(data); err == nil {
		if err := r.Cache.Set(ctx, runKey, encoded, TTLRun); err == nil {
			observability.Cache().OnCacheSet(ctx, "run", len(encoded))
		}
	}
	if r.Store != nil {
		rec := &store.Record{
			ID:        result.ID,
			CreatedAt: result.CreatedAt,
			Options:   optionsMap(opts),
			Data:      data,
		}
		if err := r.Store.Save(ctx, rec); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// LoadGraphWithCacheInfo loads and validates a graph file, keyed in the
// cache by its content hash, and returns cache hit info.
func (r *Runner) LoadGraphWithCacheInfo(ctx context.Context, opts Options) (*graph.Graph, string, bool, error) {
	raw, err := os.ReadFile(opts.GraphPath)
	if err != nil {
		return nil, "", false, errors.Wrap(errors.ErrCodeFileNotFound, err, "reading graph file %q", opts.GraphPath)
	}
	contentHash := cache.Hash(raw)
	cacheKey := r.Keyer.GraphKey(contentHash)

	// Entries hold the validated canonical encoding, so a hit skips
	// structural validation.
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if g, err := graph.Unmarshal(data); err == nil {
				observability.Cache().OnCacheHit(ctx, "graph")
				return g, contentHash, true, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "graph")
	}

	g, err := graph.Unmarshal(raw)
	if err != nil {
		return nil, "", false, errors.Wrap(errors.ErrCodeInvalidGraph, err, "parsing graph file %q", opts.GraphPath)
	}

	if canonical, err := graph.Marshal(g); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, canonical, TTLGraph); err == nil {
			observability.Cache().OnCacheSet(ctx, "graph", len(canonical))
		}
	}

	return g, contentHash, false, nil
}

// LoadGraph is a convenience wrapper that discards the cache hit info.
func (r *Runner) LoadGraph(ctx context.Context, opts Options) (*graph.Graph, error) {
	g, _, _, err := r.LoadGraphWithCacheInfo(ctx, opts)
	return g, err
}

// runChain assembles the chain configuration and drains it.
func (r *Runner) runChain(ctx context.Context, g *graph.Graph, p *partition.Partition, opts Options) (*chain.ScoreData, error) {
	ideal := constraints.IdealPopulation(g, len(p.Districts()))

	var pop constraints.PopulationChecker
	if opts.Tolerance > 0 {
		pop = constraints.Tolerance{Ideal: ideal, Allowed: opts.Tolerance}
	}

	var accept chain.AcceptFunc
	if opts.MetropolisBeta > 0 {
		accept = chain.MetropolisCutEdges(opts.MetropolisBeta)
	}

	scorers, err := opts.BuildScores(ideal)
	if err != nil {
		return nil, err
	}

	cfg := chain.Config{
		Graph:       g,
		Partition:   p,
		Population:  pop,
		Scores:      scorers,
		Steps:       opts.Steps,
		Accept:      accept,
		NoSelfLoops: opts.NoSelfLoops,
		Seed:        opts.Seed,
	}
	cfg.OnStep = func(done, total int) {
		observability.Chain().OnStepBatch(ctx, done, total)
		if opts.OnStep != nil {
			opts.OnStep(done, total)
		}
	}

	observability.Chain().OnChainStart(ctx, opts.Steps, opts.Seed)
	start := time.Now()
	data, err := chain.Run(cfg)
	observability.Chain().OnChainComplete(ctx, opts.Steps, time.Since(start), err)
	if err != nil {
		if data != nil {
			return nil, errors.Wrap(errors.ErrCodeNoBoundary, err, "chain stopped after %d steps", len(data.Steps)-1)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "starting chain")
	}
	return data, nil
}

// Close releases resources held by the runner.
func (r *Runner) Close(ctx context.Context) error {
	if r.Store != nil {
		if err := r.Store.Close(ctx); err != nil {
			return err
		}
	}
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// loadAssignment reads an assignment file and hashes its content for the
// run cache key.
func loadAssignment(path string) (map[string]string, string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, "", errors.Wrap(errors.ErrCodeFileNotFound, err, "reading assignment file %q", path)
	}
	var assignment map[string]string
	if err := json.Unmarshal(raw, &assignment); err != nil {
		return nil, "", errors.Wrap(errors.ErrCodeInvalidAssignment, err, "parsing assignment file %q", path)
	}
	for _, district := range assignment {
		if err := errors.ValidateDistrictID(district); err != nil {
			return nil, "", err
		}
	}
	return assignment, cache.Hash(raw), nil
}

// optionsMap converts options to their canonical JSON map form for
// storage alongside the run record.
func optionsMap(opts Options) map[string]any {
	data, err := json.Marshal(opts)
	if err != nil {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil
	}
	return m
}
