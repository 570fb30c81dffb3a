package forces

import (
	"math"
	"testing"

	"github.com/pthm-cable/granule/grid"
	"github.com/pthm-cable/granule/material"
)

func baseSettings() Settings {
	return Settings{
		Gravity:          9.81,
		PressureScale:    1.0,
		AdhesionStrength: 1.0,
		CohesionStrength: 1.0,
		FrictionStrength: 1.0,
		AirResistance:    1.0,
	}
}

func TestGravityAppliesToNonEmptyNonWallCells(t *testing.T) {
	g := grid.New(3, 3)
	reg := material.NewRegistry()
	g.Replace(1, 1, material.Water, 1.0)
	g.InstallWalls()

	s := baseSettings()
	Accumulate(g, reg, s)

	c := g.At(1, 1)
	if c.PendingForce.Y != s.Gravity {
		t.Fatalf("expected gravity force %f, got %f", s.Gravity, c.PendingForce.Y)
	}

	wall := g.At(0, 0)
	if wall.PendingForce != (grid.Vec2{}) {
		t.Fatalf("wall cell should not accumulate force, got %+v", wall.PendingForce)
	}
}

func TestAirDragOpposesVelocity(t *testing.T) {
	g := grid.New(3, 3)
	reg := material.NewRegistry()
	g.Replace(1, 1, material.Water, 1.0)
	c := g.At(1, 1)
	c.Velocity = grid.Vec2{X: 5, Y: 0}

	s := Settings{AirResistance: 1.0}
	Accumulate(g, reg, s)

	if c.PendingForce.X >= 0 {
		t.Fatalf("expected drag to oppose rightward velocity, got %+v", c.PendingForce)
	}
}

func TestAirDragSkippedBelowThreshold(t *testing.T) {
	g := grid.New(3, 3)
	reg := material.NewRegistry()
	g.Replace(1, 1, material.Water, 1.0)
	c := g.At(1, 1)
	c.Velocity = grid.Vec2{X: grid.MinMatterThreshold / 2, Y: 0}

	s := Settings{AirResistance: 1.0}
	Accumulate(g, reg, s)

	if c.PendingForce.X != 0 {
		t.Fatalf("expected no drag below threshold, got %+v", c.PendingForce)
	}
}

func TestPressureForceUsesStoredGradient(t *testing.T) {
	g := grid.New(3, 3)
	reg := material.NewRegistry()
	g.Replace(1, 1, material.Water, 1.0)
	c := g.At(1, 1)
	c.PressureGradient = grid.Vec2{X: 2, Y: -3}

	s := Settings{PressureScale: 2.0}
	Accumulate(g, reg, s)

	want := grid.Vec2{X: 4, Y: -6}
	if math.Abs(c.PendingForce.X-want.X) > 1e-9 || math.Abs(c.PendingForce.Y-want.Y) > 1e-9 {
		t.Fatalf("expected pressure force %+v, got %+v", want, c.PendingForce)
	}
}

func TestCohesionBindingResistanceUsesSupportFactors(t *testing.T) {
	g := grid.New(5, 5)
	reg := material.NewRegistry()
	// Isolated wood cell: no same-material neighbors, no support -> resistance 0
	// because same == 0 makes resistance*same == 0 regardless of factor.
	g.Replace(2, 2, material.Wood, 1.0)

	s := baseSettings()
	s.CohesionEnabled = true
	binding := Accumulate(g, reg, s)

	idx := 2*g.Width() + 2
	if binding[idx].Resistance != 0 {
		t.Fatalf("expected zero resistance with no same-material neighbors, got %f", binding[idx].Resistance)
	}
}

func TestCohesionBindingResistanceScalesWithSupport(t *testing.T) {
	g := grid.New(5, 5)
	reg := material.NewRegistry()
	g.InstallWalls()
	g.Replace(2, 1, material.Wood, 1.0)
	g.Replace(1, 1, material.Wood, 1.0)
	g.At(2, 1).HasVerticalSupport = true

	s := baseSettings()
	s.CohesionEnabled = true
	binding := Accumulate(g, reg, s)

	idx := 1*g.Width() + 2
	if binding[idx].Resistance <= 0 {
		t.Fatalf("expected positive resistance with one same-material neighbor, got %f", binding[idx].Resistance)
	}
}

func TestAdhesionPullsTowardDifferentMaterialNeighbor(t *testing.T) {
	g := grid.New(3, 3)
	reg := material.NewRegistry()
	g.Replace(1, 1, material.Dirt, 1.0)
	g.Replace(2, 1, material.Wood, 1.0)

	s := Settings{AdhesionEnabled: true, AdhesionStrength: 1.0}
	Accumulate(g, reg, s)

	c := g.At(1, 1)
	if c.PendingForce.X <= 0 {
		t.Fatalf("expected adhesion to pull toward the neighbor at +x, got %+v", c.PendingForce)
	}
}

func TestAdhesionSkipsSameMaterial(t *testing.T) {
	g := grid.New(3, 3)
	reg := material.NewRegistry()
	g.Replace(1, 1, material.Dirt, 1.0)
	g.Replace(2, 1, material.Dirt, 1.0)

	s := Settings{AdhesionEnabled: true, AdhesionStrength: 1.0}
	Accumulate(g, reg, s)

	c := g.At(1, 1)
	if c.PendingForce.X != 0 {
		t.Fatalf("expected no adhesion between same-material cells, got %+v", c.PendingForce)
	}
}

func TestContactFrictionSkippedBelowMinNormalForce(t *testing.T) {
	g := grid.New(3, 3)
	reg := material.NewRegistry()
	g.Replace(1, 1, material.Water, 0.01)
	g.Replace(2, 1, material.Water, 0.01)
	g.At(1, 1).Velocity = grid.Vec2{X: 1, Y: 0}

	s := Settings{FrictionEnabled: true, FrictionStrength: 1.0}
	Accumulate(g, reg, s)

	if g.At(1, 1).PendingForce.X != 0 {
		t.Fatalf("expected no friction when normal force is below threshold")
	}
}

func TestContactFrictionAppliesEqualAndOpposite(t *testing.T) {
	g := grid.New(3, 3)
	reg := material.NewRegistry()
	g.Replace(1, 1, material.Sand, 1.0)
	g.Replace(2, 1, material.Sand, 1.0)
	g.At(1, 1).HydrostaticPressure = 5
	// Pair (1,1)-(2,1) is horizontal, so the normal axis is X; a
	// velocity difference along Y is purely tangential.
	g.At(1, 1).Velocity = grid.Vec2{X: 0, Y: 2}

	s := Settings{FrictionEnabled: true, FrictionStrength: 1.0}
	Accumulate(g, reg, s)

	a := g.At(1, 1).PendingForce
	b := g.At(2, 1).PendingForce
	if math.Abs(a.X+b.X) > 1e-9 || math.Abs(a.Y+b.Y) > 1e-9 {
		t.Fatalf("expected equal-and-opposite friction forces, got %+v and %+v", a, b)
	}
}
