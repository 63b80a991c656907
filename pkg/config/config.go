// Package config holds the benchmark session configuration. It lives under
// pkg so other programs can describe a session without pulling in the entire
// workload catalog.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Ownership mode names as they appear in config files. They mirror the
// workload modes; kept as plain strings here so files stay readable.
const (
	ModeCopyEnabled  = "copy-enabled"
	ModeCopyDisabled = "copy-disabled"
)

// Config drives a benchmark session: which workloads run, at which element
// counts, under which ownership modes, and how often.
type Config struct {
	// Iterations is the number of timed runs per workload combination.
	Iterations int `yaml:"iterations"`

	// Elements lists the element counts each workload is exercised at.
	Elements []int `yaml:"elements"`

	// Seed feeds the shuffling workloads so sessions replay identically.
	Seed int64 `yaml:"seed"`

	// Workloads filters the catalog by name; empty selects every workload.
	Workloads []string `yaml:"workloads"`

	// Modes filters the ownership modes; empty selects both.
	Modes []string `yaml:"modes"`
}

// Default returns the session configuration used when no file is given.
func Default() *Config {
	return &Config{
		Iterations: 5,
		Elements:   []int{1000, 10000, 100000},
		Seed:       1,
	}
}

// Load reads a YAML session config from path. An empty path or a missing
// file is not an error: the defaults are returned so the bench can run
// unconfigured.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects values the bench cannot run with.
func (c *Config) Validate() error {
	if c.Iterations < 1 {
		return fmt.Errorf("iterations must be at least 1, got %d", c.Iterations)
	}
	if len(c.Elements) == 0 {
		return errors.New("at least one element count is required")
	}
	for _, n := range c.Elements {
		if n < 1 {
			return fmt.Errorf("element counts must be positive, got %d", n)
		}
	}
	for _, m := range c.Modes {
		if m != ModeCopyEnabled && m != ModeCopyDisabled {
			return fmt.Errorf("unknown ownership mode %q", m)
		}
	}
	return nil
}
