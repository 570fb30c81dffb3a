package velocity

import (
	"math"
	"testing"

	"github.com/pthm-cable/granule/grid"
	"github.com/pthm-cable/granule/material"
)

func TestIntegrateAppliesForceOverDamping(t *testing.T) {
	g := grid.New(3, 3)
	reg := material.NewRegistry()
	g.Replace(1, 1, material.Water, 1.0)
	c := g.At(1, 1)
	c.PendingForce = grid.Vec2{X: 0, Y: 9.81}

	Integrate(g, reg, Settings{}, 1.0/60)

	if c.Velocity.Y <= 0 {
		t.Fatalf("expected downward velocity after integrating gravity, got %+v", c.Velocity)
	}
}

func TestIntegrateSkipsEmptyAndWallCells(t *testing.T) {
	g := grid.New(3, 3)
	reg := material.NewRegistry()
	g.InstallWalls()
	wall := g.At(0, 0)
	wall.PendingForce = grid.Vec2{X: 5, Y: 5}

	Integrate(g, reg, Settings{}, 1.0/60)

	if wall.Velocity != (grid.Vec2{}) {
		t.Fatalf("expected wall velocity to stay zero, got %+v", wall.Velocity)
	}
	if g.At(1, 1).Velocity != (grid.Vec2{}) {
		t.Fatalf("expected empty cell velocity to stay zero, got %+v", g.At(1, 1).Velocity)
	}
}

func TestHigherViscosityProducesMoreDamping(t *testing.T) {
	gLow := grid.New(3, 3)
	gHigh := grid.New(3, 3)
	reg := material.NewRegistry()
	gLow.Replace(1, 1, material.Wood, 1.0)
	gHigh.Replace(1, 1, material.Wood, 1.0)
	// Damping only engages support_factor == 1 (spec §4.7 step 4), so
	// both cells need structural support to exercise the viscosity term.
	gLow.At(1, 1).HasAnySupport = true
	gHigh.At(1, 1).HasAnySupport = true
	gLow.At(1, 1).PendingForce = grid.Vec2{X: 10, Y: 0}
	gHigh.At(1, 1).PendingForce = grid.Vec2{X: 10, Y: 0}

	Integrate(gLow, reg, Settings{ViscosityEnabled: false}, 1.0/60)
	Integrate(gHigh, reg, Settings{ViscosityEnabled: true, ViscosityStrength: 1.0}, 1.0/60)

	lowSpeed := gLow.At(1, 1).Velocity.Length()
	highSpeed := gHigh.At(1, 1).Velocity.Length()
	if highSpeed >= lowSpeed {
		t.Fatalf("expected enabled viscosity to reduce resulting speed: low=%f high=%f", lowSpeed, highSpeed)
	}
}

func TestLimitVelocityClampsMagnitude(t *testing.T) {
	g := grid.New(3, 3)
	g.Replace(1, 1, material.Water, 1.0)
	c := g.At(1, 1)
	c.Velocity = grid.Vec2{X: 300, Y: 0}

	limitVelocity(c)

	// Clamped to the maximum, then damped because the maximum lies above
	// the damping threshold.
	want := MaxVelocityPerTimestep * (1 - DampingFactorPerTimestep)
	if math.Abs(c.Velocity.Length()-want) > 1e-9 {
		t.Fatalf("expected clamp-then-damp to %f, got %f", want, c.Velocity.Length())
	}
}

func TestLimitVelocityDampsAboveThreshold(t *testing.T) {
	g := grid.New(3, 3)
	g.Replace(1, 1, material.Water, 1.0)
	c := g.At(1, 1)
	c.Velocity = grid.Vec2{X: 150, Y: 0}

	limitVelocity(c)

	want := 150 * (1 - DampingFactorPerTimestep)
	if math.Abs(c.Velocity.X-want) > 1e-9 {
		t.Fatalf("expected damped velocity %f, got %f", want, c.Velocity.X)
	}
}

func TestLimitVelocityLeavesLowSpeedUnchanged(t *testing.T) {
	g := grid.New(3, 3)
	g.Replace(1, 1, material.Water, 1.0)
	c := g.At(1, 1)
	c.Velocity = grid.Vec2{X: 5, Y: 0}

	limitVelocity(c)

	if c.Velocity.X != 5 {
		t.Fatalf("expected velocity unchanged below thresholds, got %f", c.Velocity.X)
	}
}
