// Package config provides YAML configuration loading and access for the
// simulation core: grid dimensions, the runtime-tunable physics settings
// of spec §6.3, and the scenario config of §6.2. Grounded on
// config/config.go's embedded-defaults-plus-override pattern
// (gopkg.in/yaml.v3, //go:embed defaults.yaml, Load merging a user file
// over the embedded baseline).
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/granule/scenario"
	"github.com/pthm-cable/granule/sim"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config is the top-level settings document: everything needed to
// construct a sim.World without any additional code-side defaults.
type Config struct {
	Grid     GridConfig      `yaml:"grid"`
	Physics  sim.Settings    `yaml:"physics"`
	Scenario scenario.Config `yaml:"scenario"`
	Engine   EngineConfig    `yaml:"engine"`
}

// GridConfig holds the fixed grid dimensions (spec §3.3: width/height
// are fixed between resizes, which are external to this core).
type GridConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// EngineConfig holds the frame driver's own knobs: the tick rate the
// caller intends to honor, the move executor's RNG seed, and the perf
// collector's rolling window size (spec §6.5, §9 determinism).
type EngineConfig struct {
	TickHz         float64 `yaml:"tick_hz"`
	ExecutorSeed   int64   `yaml:"executor_seed"`
	PerfWindowSize int     `yaml:"perf_window_size"`
}

// Load reads a YAML document from path, merging it over the embedded
// baseline defaults so a partial override file only needs to name the
// fields it changes. An empty path returns the embedded defaults
// unmodified.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing embedded defaults: %w", err)
	}

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return cfg, nil
}

// WriteYAML persists cfg to path, the round-trip counterpart to Load
// used by collaborator tooling (tests, CLIs) that want to save a tuned
// settings file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("config: marshaling: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("config: writing %s: %w", path, err)
	}
	return nil
}
