// Package velocity implements the force-resolution integrator of spec
// §4.7 and the per-timestep velocity limiter of §4.8. It is grounded
// on game/simulation.go's accel/drag/clamp-speed block, generalized
// from the teacher's per-entity integration to per-cell integration.
package velocity

import (
	"github.com/pthm-cable/granule/grid"
	"github.com/pthm-cable/granule/material"
)

const (
	// MaxVelocityPerTimestep is the hard magnitude clamp of spec §4.8.
	MaxVelocityPerTimestep = 200.0
	// DampingThresholdPerTimestep triggers extra damping above this speed.
	DampingThresholdPerTimestep = 100.0
	// DampingFactorPerTimestep is the extra multiplicative damp applied
	// above DampingThresholdPerTimestep.
	DampingFactorPerTimestep = 0.05

	minDamping = 0.001
)

// motion state multipliers (spec §4.7 step 2).
const (
	motionStatic     = 1.0
	motionSliding    = 0.5
	motionFalling    = 0.3
	motionTurbulent  = 0.1
)

// Settings mirrors the viscosity/friction-relevant subset of spec §6.3.
type Settings struct {
	ViscosityEnabled bool
	ViscosityStrength float64
	FrictionStrength  float64
}

// Integrate resolves pending_force into velocity for every non-empty,
// non-wall cell (spec §4.7), then applies the per-timestep limiter
// (spec §4.8).
func Integrate(g *grid.Grid, reg *material.Registry, s Settings, dt float64) {
	w, h := g.Width(), g.Height()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := g.At(x, y)
			if c.IsEmpty() || c.IsWall() {
				continue
			}
			integrateCell(c, reg, s, dt)
			limitVelocity(c)
		}
	}
}

func integrateCell(c *grid.Cell, reg *material.Registry, s Settings, dt float64) {
	props := reg.Get(c.Material)

	supportFactor := 0.0
	if c.HasAnySupport {
		supportFactor = 1.0
	}

	motionMult := motionMultiplier(c, props, supportFactor)

	speed := c.Velocity.Length()
	mu := material.FrictionCoeff(speed, props)
	muEff := 1 + (mu-1)*s.FrictionStrength

	viscosityStrength := s.ViscosityStrength
	if !s.ViscosityEnabled {
		viscosityStrength = 0
	}

	damping := 1 + props.Viscosity*muEff*motionMult*c.Fill*supportFactor*viscosityStrength*1000
	if damping < minDamping {
		damping = minDamping
	}

	c.Velocity = c.Velocity.Add(c.PendingForce.Scale(dt / damping))
}

// motionMultiplier implements spec §4.7 step 2: STATIC when supported,
// else FALLING (SLIDING/TURBULENT are reserved for future refinement),
// weighted by the material's motion_sensitivity: 1.0 at sensitivity 0,
// the full state multiplier at sensitivity 1.
func motionMultiplier(c *grid.Cell, props material.Properties, supportFactor float64) float64 {
	base := motionFalling
	if supportFactor == 1.0 {
		base = motionStatic
	}
	return 1 - props.MotionSensitivity*(1-base)
}

// limitVelocity implements spec §4.8: hard-clamp magnitude, then apply
// extra damping above a lower threshold. Both constants are per
// timestep, independent of dt.
func limitVelocity(c *grid.Cell) {
	speed := c.Velocity.Length()
	if speed > MaxVelocityPerTimestep {
		c.Velocity = c.Velocity.Scale(MaxVelocityPerTimestep / speed)
		speed = MaxVelocityPerTimestep
	}
	if speed > DampingThresholdPerTimestep {
		c.Velocity = c.Velocity.Scale(1 - DampingFactorPerTimestep)
	}
}
