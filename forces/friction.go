package forces

import (
	"math"

	"github.com/pthm-cable/granule/grid"
	"github.com/pthm-cable/granule/material"
)

// applyContactFriction implements spec §4.6's contact-based friction:
// cardinal neighbor pairs only, each unordered pair visited once (by
// only ever looking right and down from each cell), equal-and-opposite
// force applied to both cells.
func applyContactFriction(g *grid.Grid, reg *material.Registry, s Settings) {
	w, h := g.Width(), g.Height()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			a := g.At(x, y)
			if a.IsEmpty() || a.IsWall() {
				continue
			}
			if x+1 < w {
				frictionPair(g, reg, s, x, y, x+1, y)
			}
			if y+1 < h {
				frictionPair(g, reg, s, x, y, x, y+1)
			}
		}
	}
}

func frictionPair(g *grid.Grid, reg *material.Registry, s Settings, ax, ay, bx, by int) {
	a := g.At(ax, ay)
	b := g.At(bx, by)
	if b.IsEmpty() || b.IsWall() {
		return
	}

	propsA := reg.Get(a.Material)
	propsB := reg.Get(b.Material)

	vertical := ax == bx
	normal := normalForce(a, b, propsA, vertical, ay, by)
	if normal < MinNormalForce {
		return
	}

	rel := a.Velocity.Sub(b.Velocity)
	axisDir := grid.Vec2{X: float64(bx - ax), Y: float64(by - ay)}.Normalized()
	normalComponent := axisDir.Scale(rel.Dot(axisDir))
	tangent := rel.Sub(normalComponent)
	tangentSpeed := tangent.Length()
	if tangentSpeed < MinTangentialSpeed {
		return
	}

	speedForCoeff := (a.Velocity.Length() + b.Velocity.Length()) / 2
	geomA := geomMeanProps(propsA, propsB)
	mu := material.FrictionCoeff(speedForCoeff, geomA)
	muEff := 1 + (mu-1)*s.FrictionStrength

	frictionMag := muEff * normal * s.FrictionStrength
	frictionDir := tangent.Normalized().Scale(-1)
	frictionForce := frictionDir.Scale(frictionMag)

	a.PendingForce = a.PendingForce.Add(frictionForce)
	b.PendingForce = b.PendingForce.Add(frictionForce.Scale(-1))
}

func normalForce(a, b *grid.Cell, propsA material.Properties, vertical bool, ay, by int) float64 {
	diff := a.Pressure() - b.Pressure()
	if diff < 0 {
		diff = 0
	}
	n := diff * a.Fill
	if vertical {
		upper := a
		if by < ay {
			upper = b
		}
		n += upper.Fill * propsA.Density
	}
	return n
}

// geomMeanProps builds a synthetic Properties record whose friction
// fields are the geometric mean of the pair's, per spec §4.6's
// "friction_coeff(|v_tan|, props_geom_mean)".
func geomMeanProps(a, b material.Properties) material.Properties {
	return material.Properties{
		StaticFriction:          math.Sqrt(a.StaticFriction * b.StaticFriction),
		KineticFriction:         math.Sqrt(a.KineticFriction * b.KineticFriction),
		StickVelocity:           math.Sqrt(a.StickVelocity * b.StickVelocity),
		FrictionTransitionWidth: math.Sqrt(a.FrictionTransitionWidth * b.FrictionTransitionWidth),
	}
}
