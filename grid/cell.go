// Package grid owns the flat cell store: coordinate access, cell
// mutation, the per-frame empty/material bitmap cache, and the support
// analyzer. It is the one concrete grid and cell type this core
// specifies (spec §9: dynamic dispatch over Cell/grid variants collapses
// to one concrete type).
package grid

import (
	"fmt"
	"math"

	"github.com/pthm-cable/granule/material"
)

// MinMatterThreshold is the fill ratio below which a cell auto-clears to
// air, and the floor/cap tolerance used by mass-conserving transfers.
const MinMatterThreshold = 0.001

// Cell is the plain aggregate held at every grid position (spec §3.2).
type Cell struct {
	Material material.Type
	Fill     float64 // [0,1]

	COM      Vec2 // sub-cell offset from cell centre, clamped to [-1,1]^2
	Velocity Vec2

	HydrostaticPressure float64
	DynamicPressure     float64
	PressureGradient    Vec2

	PendingForce Vec2

	HasAnySupport      bool
	HasVerticalSupport bool

	OrganismID uint32 // opaque tag; 0 = none
}

// Pressure returns the cell's total pressure (sum of components).
func (c Cell) Pressure() float64 { return c.HydrostaticPressure + c.DynamicPressure }

// IsEmpty reports whether the cell is air.
func (c Cell) IsEmpty() bool { return c.Material == material.Air }

// IsWall reports whether the cell is an immobile wall.
func (c Cell) IsWall() bool { return c.Material == material.Wall }

// clear resets the cell to AIR with all dependent state zeroed
// (invariant 2: air cells always have zero velocity, COM, pressure).
func (c *Cell) clear() {
	*c = Cell{Material: material.Air}
}

// normalize enforces cell invariants after any mutation: below-threshold
// fill auto-clears to air (spec §3.2), and COM stays within [-1,1]^2
// (invariant 4).
func (c *Cell) normalize() {
	if c.Material == material.Air || c.Fill < MinMatterThreshold {
		c.clear()
		return
	}
	c.COM = c.COM.Clamp(1.0)
}

// FaultError marks a precondition fault: invalid coordinates or an
// out-of-range material id reaching the grid from code that should have
// validated them already (spec §7.1). These are programmer errors, never
// raised by valid external input, and are reported via panic.
type FaultError struct {
	Op  string
	Err error
}

func (e *FaultError) Error() string { return fmt.Sprintf("grid: %s: %v", e.Op, e.Err) }
func (e *FaultError) Unwrap() error { return e.Err }

func fault(op string, format string, args ...any) {
	panic(&FaultError{Op: op, Err: fmt.Errorf(format, args...)})
}

// CheckNaN scans every cell for NaN/Inf in COM, velocity, or pressure
// fields. It is a debug-build self-check (spec §7.3): NaNs must never
// appear in valid execution, so any NaN found here is a bug, not a
// recoverable condition, and aborts via panic.
func CheckNaN(g *Grid) {
	bad := func(v float64) bool { return math.IsNaN(v) || math.IsInf(v, 0) }
	for i := range g.cells {
		c := &g.cells[i]
		if bad(c.COM.X) || bad(c.COM.Y) || bad(c.Velocity.X) || bad(c.Velocity.Y) ||
			bad(c.HydrostaticPressure) || bad(c.DynamicPressure) ||
			bad(c.PressureGradient.X) || bad(c.PressureGradient.Y) {
			x, y := g.coordsOf(i)
			fault("CheckNaN", "NaN/Inf detected at (%d,%d): %+v", x, y, *c)
		}
	}
}
