package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/flipchain/flipchain/pkg/cache"
	"github.com/flipchain/flipchain/pkg/run"
)

// runOpts holds the command-line flags for the run command.
type runOpts struct {
	config         string  // TOML config file path
	steps          int     // number of chain steps
	seed           uint64  // random seed
	tolerance      float64 // population tolerance (fractional)
	scores         string  // comma-separated score names
	noSelfLoops    bool    // retry rejected candidates instead of emitting self-loops
	metropolisBeta float64 // cut-edge Metropolis inverse temperature
	output         string  // history output path
	cacheDir       string  // file cache directory
	redis          string  // redis URL, overrides the file cache when set
	noCache        bool    // disable caching
	refresh        bool    // bypass cached results
	progress       bool    // show an interactive progress bar
}

// newRunCmd creates the run command for executing flip chains.
//
// Default settings:
//   - steps: 1000, seed: 42
//   - tolerance: 0 (population gate disabled)
//   - scores: cut_edges
//   - output: history.json
func newRunCmd() *cobra.Command {
	opts := runOpts{
		output:   "history.json",
		cacheDir: defaultCacheDir(),
		progress: true,
	}

	cmd := &cobra.Command{
		Use:   "run [graph] [assignment]",
		Short: "Run a flip chain and write its score history",
		Long: `Run executes a single-node flip Markov chain over the dual graph in
[graph], starting from the district assignment in [assignment], and writes
the per-step score history as JSON.

Both paths may instead come from a TOML file via --config; positional
arguments override the file.`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ropts, err := opts.buildOptions(args)
			if err != nil {
				return err
			}
			return runRun(cmd.Context(), ropts, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.config, "config", "c", "", "TOML config file")
	cmd.Flags().IntVarP(&opts.steps, "steps", "n", 0, "number of chain steps")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "random seed for reproducible runs")
	cmd.Flags().Float64Var(&opts.tolerance, "tolerance", 0, "allowed fractional population deviation (0 disables)")
	cmd.Flags().StringVar(&opts.scores, "scores", "", "comma-separated scores: "+strings.Join(run.RegisteredScores, ", "))
	cmd.Flags().BoolVar(&opts.noSelfLoops, "no-self-loops", false, "retry rejected candidates instead of emitting self-loops")
	cmd.Flags().Float64Var(&opts.metropolisBeta, "beta", 0, "cut-edge Metropolis inverse temperature (0 disables)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", opts.output, "history output file")
	cmd.Flags().StringVar(&opts.cacheDir, "cache-dir", opts.cacheDir, "file cache directory")
	cmd.Flags().StringVar(&opts.redis, "redis", "", "redis URL, e.g. redis://localhost:6379/0")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable result caching")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute even if a cached history exists")
	cmd.Flags().BoolVar(&opts.progress, "progress", opts.progress, "show a progress bar (skipped when stderr is not a terminal)")

	return cmd
}

// buildOptions merges the config file, flags, and positional arguments into
// run options. Precedence: positional args > flags > config file.
func (o *runOpts) buildOptions(args []string) (run.Options, error) {
	var ropts run.Options
	if o.config != "" {
		cfg, err := loadConfig(o.config)
		if err != nil {
			return run.Options{}, fmt.Errorf("load config: %w", err)
		}
		ropts = cfg.options()
		if cfg.Cache.Dir != "" && o.cacheDir == defaultCacheDir() {
			o.cacheDir = cfg.Cache.Dir
		}
		if cfg.Cache.Redis != "" && o.redis == "" {
			o.redis = cfg.Cache.Redis
		}
	}

	if len(args) > 0 {
		ropts.GraphPath = args[0]
	}
	if len(args) > 1 {
		ropts.AssignmentPath = args[1]
	}
	if o.steps != 0 {
		ropts.Steps = o.steps
	}
	if o.seed != 0 {
		ropts.Seed = o.seed
	}
	if o.tolerance != 0 {
		ropts.Tolerance = o.tolerance
	}
	if o.scores != "" {
		ropts.Scores = strings.Split(o.scores, ",")
	}
	if o.noSelfLoops {
		ropts.NoSelfLoops = true
	}
	if o.metropolisBeta != 0 {
		ropts.MetropolisBeta = o.metropolisBeta
	}
	ropts.Refresh = o.refresh
	return ropts, nil
}

// runRun executes the chain and writes the history file.
func runRun(ctx context.Context, ropts run.Options, opts *runOpts) error {
	logger := loggerFromContext(ctx)
	ropts.Logger = logger

	c, err := buildCache(ctx, opts)
	if err != nil {
		return err
	}

	runner := run.NewRunner(c, nil, nil, logger)
	defer runner.Close(ctx)

	t := newTimer(logger)
	result, err := executeWithProgress(ctx, runner, ropts, opts.progress)
	if err != nil {
		printError("%v", err)
		return err
	}
	t.done(fmt.Sprintf("Completed %d steps", len(result.Data.Steps)-1))

	data, err := json.MarshalIndent(result.Data, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(opts.output, data, 0644); err != nil {
		return err
	}

	printSuccess("Chain finished")
	printStats(result.Stats.NodeCount, result.Stats.EdgeCount, result.Stats.Districts, result.CacheInfo.RunHit)
	printFile(opts.output)
	return nil
}

// executeWithProgress runs the chain, optionally behind a bubbletea
// progress bar fed by the runner's step callback. The bar only makes
// sense interactively, so piped or redirected stderr falls back to a
// plain run.
func executeWithProgress(ctx context.Context, runner *run.Runner, ropts run.Options, progress bool) (*run.Result, error) {
	if !progress || !isTerminal(os.Stderr) {
		return runner.Execute(ctx, ropts)
	}

	type outcome struct {
		result *run.Result
		err    error
	}

	prog := tea.NewProgram(NewProgressModel(ropts.Steps), tea.WithOutput(os.Stderr))
	ropts.OnStep = func(done, total int) {
		prog.Send(stepMsg{done: done, total: total})
	}

	ch := make(chan outcome, 1)
	go func() {
		result, err := runner.Execute(ctx, ropts)
		prog.Send(finishedMsg{})
		ch <- outcome{result: result, err: err}
	}()

	if _, err := prog.Run(); err != nil {
		return nil, err
	}
	out := <-ch
	return out.result, out.err
}

// buildCache constructs the cache backend selected by the flags and
// config file: none, Redis, or the file cache in that order.
func buildCache(ctx context.Context, opts *runOpts) (cache.Cache, error) {
	if opts.noCache {
		return cache.NewNullCache(), nil
	}
	if opts.redis != "" {
		return cache.NewRedisCache(ctx, opts.redis)
	}
	return cache.NewFileCache(opts.cacheDir)
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
