package cli

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/flipchain/flipchain/pkg/run"
)

// Config is the TOML file format accepted by --config. Flags set on the
// command line take precedence over file values.
type Config struct {
	Run   RunConfig   `toml:"run"`
	Cache CacheConfig `toml:"cache"`
}

// RunConfig mirrors the run options that make sense in a config file.
type RunConfig struct {
	Graph          string   `toml:"graph"`
	Assignment     string   `toml:"assignment"`
	Steps          int      `toml:"steps"`
	Seed           uint64   `toml:"seed"`
	Tolerance      float64  `toml:"tolerance"`
	Scores         []string `toml:"scores"`
	NoSelfLoops    bool     `toml:"no_self_loops"`
	MetropolisBeta float64  `toml:"metropolis_beta"`
}

// CacheConfig selects the cache backend.
type CacheConfig struct {
	// Dir is the file cache directory. Empty disables file caching.
	Dir string `toml:"dir"`

	// Redis is a Redis URL, e.g. "redis://localhost:6379/0".
	// Takes precedence over Dir when set.
	Redis string `toml:"redis"`
}

// loadConfig reads and parses a TOML config file.
func loadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// options converts the run section into run options. Zero-valued fields
// are left for the caller's flags or run defaults to fill.
func (c *Config) options() run.Options {
	return run.Options{
		GraphPath:      c.Run.Graph,
		AssignmentPath: c.Run.Assignment,
		Steps:          c.Run.Steps,
		Seed:           c.Run.Seed,
		Tolerance:      c.Run.Tolerance,
		Scores:         c.Run.Scores,
		NoSelfLoops:    c.Run.NoSelfLoops,
		MetropolisBeta: c.Run.MetropolisBeta,
	}
}
