// Package pressure implements the hydrostatic, dynamic, diffusion, and
// decay passes of spec §4.5. It is grounded on
// systems/resource_field.go's shape: a scalar-per-cell field that is
// regenerated, diffused, and decayed once per frame, with row-strip
// parallel update for the expensive passes.
package pressure

import (
	"math"
	"sync"

	"github.com/pthm-cable/granule/grid"
	"github.com/pthm-cable/granule/material"
)

// Constants confirmed against the original WorldPressureCalculator.h
// (test-lvgl/src/core), matching spec §4.5 literally.
const (
	SliceThickness      = 1.0
	MinPressureThreshold = 0.001
	minDenom             = 1e-9
)

// hydroWeight returns the material-specific hydrostatic "weight" table
// of spec §4.5.1 — intentionally different from density; fluids
// dominate hydrostatic communication. Preserved as given.
func hydroWeight(t material.Type) float64 {
	switch t {
	case material.Water:
		return 1.0
	case material.Sand:
		return 0.7
	case material.Dirt:
		return 0.3
	case material.Wood:
		return 0.1
	case material.Metal:
		return 0.05
	case material.Leaf:
		return 0.3
	default:
		return 0.0
	}
}

// dynamicWeight is the dynamic-pressure sensitivity table of §4.5.2.
func dynamicWeight(t material.Type) float64 {
	switch t {
	case material.Water:
		return 0.8
	case material.Dirt, material.Sand:
		return 1.0
	case material.Wood:
		return 0.5
	case material.Metal:
		return 0.5
	case material.Leaf:
		return 0.6
	default:
		return 0
	}
}

// absorbPairs table used only to decide who "absorbs" kinetic energy as
// dynamic pressure at a wall reflection is not needed here; that lives
// in the collision package. This file only concerns the scalar field.

// Settings mirrors the pressure-relevant subset of spec §6.3.
type Settings struct {
	HydrostaticStrength float64
	DynamicStrength     float64
	DiffusionStrength   float64
	DiffusionIterations int // >= 1
	DecayRate           float64
	Gravity             float64
	UseEightNeighborhood bool
}

// BlockedTransfer is the pressure subsystem's input record from the move
// executor (spec §3.4, §4.5.2).
type BlockedTransfer struct {
	FromX, FromY int
	ToX, ToY     int
	Amount       float64
	Velocity     grid.Vec2
	DeltaKE      float64
}

// HydrostaticPass computes next-frame hydrostatic pressure for every
// column independently (spec §4.5.1). It writes into
// Cell.HydrostaticPressure, leaving DynamicPressure untouched.
func HydrostaticPass(g *grid.Grid, reg *material.Registry, s Settings) {
	w, h := g.Width(), g.Height()

	numWorkers := workerCount(w)
	colsPerWorker := (w + numWorkers - 1) / numWorkers
	var wg sync.WaitGroup
	for wi := 0; wi < numWorkers; wi++ {
		startX := wi * colsPerWorker
		endX := startX + colsPerWorker
		if endX > w {
			endX = w
		}
		if startX >= w {
			break
		}
		wg.Add(1)
		go func(x0, x1 int) {
			defer wg.Done()
			for x := x0; x < x1; x++ {
				hydrostaticColumn(g, reg, s, x, h)
			}
		}(startX, endX)
	}
	wg.Wait()
}

func hydrostaticColumn(g *grid.Grid, reg *material.Registry, s Settings, x, h int) {
	// Bottom-up pass: mark "has support below" — restored whenever a
	// WALL or a material with IsRigid or density > RigidDensityThreshold
	// appears, broken by any empty cell.
	supported := make([]bool, h)
	hasSupportBelow := true // bottom boundary provides support.
	for y := h - 1; y >= 0; y-- {
		c := g.CellAt(x, y)
		if c.IsEmpty() {
			hasSupportBelow = false
			supported[y] = false
			continue
		}
		props := reg.Get(c.Material)
		if c.IsWall() || props.IsRigid || props.Density > grid.RigidDensityThreshold {
			hasSupportBelow = true
		}
		supported[y] = hasSupportBelow
	}

	// Top-down pass: accumulate into supported cells only. Every
	// supported cell, fluid or solid, adds its own fill*density times its
	// own hydrostatic weight; a solid does not take on the density of the
	// fluid around it.
	accum := 0.0
	for y := 0; y < h; y++ {
		c := g.At(x, y)
		if c.IsEmpty() || c.IsWall() {
			c.HydrostaticPressure = 0
			continue
		}
		if !supported[y] {
			c.HydrostaticPressure = 0
			continue
		}
		c.HydrostaticPressure = accum
		props := reg.Get(c.Material)
		effectiveDensity := c.Fill * props.Density
		accum += effectiveDensity * hydroWeight(c.Material) * math.Abs(s.Gravity) *
			SliceThickness * s.HydrostaticStrength
	}
}

func workerCount(units int) int {
	n := maxParallelism()
	if n > units {
		n = units
	}
	if n < 1 {
		n = 1
	}
	return n
}
