package serialize

import (
	"math"
	"testing"

	"github.com/pthm-cable/granule/grid"
	"github.com/pthm-cable/granule/material"
	"github.com/pthm-cable/granule/scenario"
	"github.com/pthm-cable/granule/sim"
)

func buildRenderTestWorld(t *testing.T) *sim.World {
	t.Helper()
	evt := scenario.NewConfigurable(scenario.Config{Kind: scenario.Empty, Seed: 1})
	w := sim.New(5, 5, evt, 1, 60)
	w.Grid.Replace(2, 2, material.Water, 0.6)
	c := w.Grid.At(2, 2)
	c.COM = grid.Vec2{X: 0.4, Y: -0.3}
	c.Velocity = grid.Vec2{X: 3.5, Y: -7.0}
	c.HydrostaticPressure = 12.0
	c.DynamicPressure = 4.0
	c.PressureGradient = grid.Vec2{X: 0.1, Y: -0.2}
	c.HasAnySupport = true
	return w
}

func TestBasicFrameRoundTripsWithinQuantizationBound(t *testing.T) {
	w := buildRenderTestWorld(t)
	data := EncodeBasicFrame(w)

	width, height, materials, fills, err := DecodeBasicFrame(data)
	if err != nil {
		t.Fatalf("DecodeBasicFrame: %v", err)
	}
	wWant, hWant := w.Dimensions()
	if width != wWant || height != hWant {
		t.Fatalf("expected dimensions %dx%d, got %dx%d", wWant, hWant, width, height)
	}

	idx := 2*width + 2
	if materials[idx] != material.Water {
		t.Fatalf("expected WATER at (2,2), got %v", materials[idx])
	}
	if math.Abs(fills[idx]-0.6) > 1.0/255.0+1e-9 {
		t.Fatalf("fill %v not within 8-bit quantization of 0.6", fills[idx])
	}
}

func TestDebugFrameRoundTripsWithinQuantizationBound(t *testing.T) {
	w := buildRenderTestWorld(t)
	data := EncodeDebugFrame(w)

	width, _, cells, err := DecodeDebugFrame(data)
	if err != nil {
		t.Fatalf("DecodeDebugFrame: %v", err)
	}

	idx := 2*width + 2
	cell := cells[idx]

	if cell.Material != material.Water {
		t.Fatalf("expected WATER, got %v", cell.Material)
	}
	comTol := 2.0 / 32767.0
	if math.Abs(cell.COM.X-0.4) > comTol || math.Abs(cell.COM.Y-(-0.3)) > comTol {
		t.Fatalf("COM %v not within quantization bound of (0.4,-0.3)", cell.COM)
	}
	velTol := 2 * 10.0 / 32767.0
	if math.Abs(cell.Velocity.X-3.5) > velTol || math.Abs(cell.Velocity.Y-(-7.0)) > velTol {
		t.Fatalf("velocity %v not within quantization bound of (3.5,-7.0)", cell.Velocity)
	}
	pTol := 2 * 1000.0 / 65535.0
	if math.Abs(cell.HydrostaticPressure-12.0) > pTol {
		t.Fatalf("hydrostatic pressure %v not within quantization bound of 12.0", cell.HydrostaticPressure)
	}
	if math.Abs(cell.DynamicPressure-4.0) > pTol {
		t.Fatalf("dynamic pressure %v not within quantization bound of 4.0", cell.DynamicPressure)
	}
	if !cell.HasAnySupport {
		t.Fatalf("expected HasAnySupport to round-trip true")
	}
}

func TestDecodeBasicFrameRejectsWrongMagic(t *testing.T) {
	_, _, _, _, err := DecodeBasicFrame([]byte{0xFF, 0x00, 0, 0, 0, 0, 0, 0, 0})
	if err == nil {
		t.Fatalf("expected error for wrong magic byte")
	}
}
