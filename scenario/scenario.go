// Package scenario implements the event-generator boundary of spec
// §6.1 and the scenario config tagged union of §6.2. It is grounded on
// systems/terrain.go's seeded-procedural-setup pattern
// (NewTerrainSystem + Generate), enriched with opensimplex-go noise
// for spatially-varying injection the way systems/resource_field.go
// drives its capacity field.
package scenario

import (
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/pthm-cable/granule/grid"
	"github.com/pthm-cable/granule/material"
)

// Kind is the stable string tag of spec §6.2's tagged union.
type Kind string

const (
	Empty             Kind = "empty"
	Sandbox           Kind = "sandbox"
	DamBreak          Kind = "dam_break"
	Raining           Kind = "raining"
	WaterEqualization Kind = "water_equalization"
	FallingDirt       Kind = "falling_dirt"
)

// Config is a flat record covering every variant's scalar fields; the
// Kind tag selects which fields are meaningful (spec §6.2).
type Config struct {
	Kind Kind `yaml:"kind"`

	// Sandbox / initial-quadrant-fill fields.
	QuadrantMaterial material.Type `yaml:"quadrant_material"`
	QuadrantFill     float64       `yaml:"quadrant_fill"`

	// DamBreak fields.
	DamColumn     int     `yaml:"dam_column"`
	DamFill       float64 `yaml:"dam_fill"`
	WaterMaterial material.Type `yaml:"water_material"`

	// Raining fields.
	RainRate     float64 `yaml:"rain_rate"`
	RainMaterial material.Type `yaml:"rain_material"`
	NoiseScale   float64 `yaml:"noise_scale"`

	// WaterEqualization fields.
	LeftColumnFill float64 `yaml:"left_column_fill"`

	// FallingDirt fields.
	ThrowInterval int     `yaml:"throw_interval"`
	ThrowAmount   float64 `yaml:"throw_amount"`

	// Seed drives both the per-scenario RNG decisions and the noise
	// field, kept separate from the simulation's own move-executor RNG
	// (spec §9: determinism requires independent, explicit seeds).
	Seed int64 `yaml:"seed"`
}

// EventGenerator is the external-collaborator boundary of spec §6.1:
// the only path by which anything outside the simulation core mutates
// the grid.
type EventGenerator interface {
	Setup(g *grid.Grid, reg *material.Registry)
	Clear(g *grid.Grid)
	Tick(g *grid.Grid, reg *material.Registry, dt float64, step uint64)
}

// Configurable is the EventGenerator backed by a Config (spec §6.1's
// "Configurable implementation").
type Configurable struct {
	cfg   Config
	rng   *rand.Rand
	noise opensimplex.Noise
}

// NewConfigurable builds an event generator for cfg. Its RNG and noise
// field are seeded from cfg.Seed, independent of the simulation's move
// executor RNG.
func NewConfigurable(cfg Config) *Configurable {
	return &Configurable{
		cfg:   cfg,
		rng:   rand.New(rand.NewSource(cfg.Seed)),
		noise: opensimplex.New(cfg.Seed),
	}
}

func (c *Configurable) Clear(g *grid.Grid) {
	w, h := g.Width(), g.Height()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			g.Clear(x, y)
		}
	}
}

func (c *Configurable) Setup(g *grid.Grid, reg *material.Registry) {
	g.InstallWalls()
	switch c.cfg.Kind {
	case Sandbox:
		c.setupSandbox(g)
	case DamBreak:
		c.setupDamBreak(g)
	case WaterEqualization:
		c.setupWaterEqualization(g)
	case Empty, Raining, FallingDirt:
		// No initial material beyond the installed walls.
	}
}

func (c *Configurable) setupSandbox(g *grid.Grid) {
	w, h := g.Width(), g.Height()
	for y := 1; y < h/2; y++ {
		for x := 1; x < w/2; x++ {
			g.Replace(x, y, c.cfg.QuadrantMaterial, c.cfg.QuadrantFill)
		}
	}
}

func (c *Configurable) setupDamBreak(g *grid.Grid) {
	w, h := g.Width(), g.Height()
	col := c.cfg.DamColumn
	if col <= 0 || col >= w {
		col = w / 2
	}
	for y := 1; y < h-1; y++ {
		for x := 1; x < col; x++ {
			g.Replace(x, y, c.cfg.WaterMaterial, c.cfg.DamFill)
		}
	}
}

func (c *Configurable) setupWaterEqualization(g *grid.Grid) {
	h := g.Height()
	for y := 1; y < h-1; y++ {
		g.Replace(1, y, c.cfg.WaterMaterial, c.cfg.LeftColumnFill)
	}
}

// Tick implements spec §6.1's per-frame injection contract: the only
// grid mutations an event generator performs happen here, via
// AddMaterial*, never during §4.5-§4.11.
func (c *Configurable) Tick(g *grid.Grid, reg *material.Registry, dt float64, step uint64) {
	switch c.cfg.Kind {
	case Raining:
		c.tickRaining(g, dt, step)
	case FallingDirt:
		c.tickFallingDirt(g, step)
	}
}

func (c *Configurable) tickRaining(g *grid.Grid, dt float64, step uint64) {
	w := g.Width()
	scale := c.cfg.NoiseScale
	if scale <= 0 {
		scale = 0.1
	}
	for x := 1; x < w-1; x++ {
		n := (c.noise.Eval2(float64(x)*scale, float64(step)*scale) + 1) * 0.5
		if n < 1-c.cfg.RainRate {
			continue
		}
		g.AddMaterial(x, 1, c.cfg.RainMaterial, c.cfg.RainRate*dt)
	}
}

func (c *Configurable) tickFallingDirt(g *grid.Grid, step uint64) {
	interval := c.cfg.ThrowInterval
	if interval <= 0 {
		interval = 60
	}
	if step%uint64(interval) != 0 {
		return
	}
	w := g.Width()
	x := 1 + c.rng.Intn(w-2)
	g.AddMaterial(x, 1, material.Dirt, c.cfg.ThrowAmount)
}
