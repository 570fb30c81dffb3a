package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/granule/scenario"
)

func TestLoadEmbeddedDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\"): %v", err)
	}
	if cfg.Grid.Width <= 0 || cfg.Grid.Height <= 0 {
		t.Fatalf("expected positive grid dimensions, got %+v", cfg.Grid)
	}
	if cfg.Physics.PressureDiffusionIterations < 1 {
		t.Fatalf("expected PressureDiffusionIterations >= 1, got %d", cfg.Physics.PressureDiffusionIterations)
	}
	if cfg.Scenario.Kind != scenario.Empty {
		t.Fatalf("expected default scenario kind empty, got %q", cfg.Scenario.Kind)
	}
}

func TestLoadOverridesEmbeddedDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "override.yaml")
	override := []byte("grid:\n  width: 10\n  height: 10\nphysics:\n  gravity: 1.0\n")
	if err := os.WriteFile(path, override, 0644); err != nil {
		t.Fatalf("writing override file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load(%q): %v", path, err)
	}
	if cfg.Grid.Width != 10 || cfg.Grid.Height != 10 {
		t.Fatalf("expected overridden 10x10 grid, got %+v", cfg.Grid)
	}
	if cfg.Physics.Gravity != 1.0 {
		t.Fatalf("expected overridden gravity 1.0, got %v", cfg.Physics.Gravity)
	}
	// Fields absent from the override file keep the embedded baseline.
	if cfg.Physics.PressureDiffusionIterations < 1 {
		t.Fatalf("expected baseline PressureDiffusionIterations to survive merge, got %d", cfg.Physics.PressureDiffusionIterations)
	}
}

func TestWriteYAMLRoundTrips(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\"): %v", err)
	}
	cfg.Physics.Gravity = 3.14

	dir := t.TempDir()
	path := filepath.Join(dir, "saved.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}

	reloaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load(saved): %v", err)
	}
	if reloaded.Physics.Gravity != 3.14 {
		t.Fatalf("expected gravity 3.14 to round-trip, got %v", reloaded.Physics.Gravity)
	}
}
