// Package transfer implements the COM advection and boundary-crossing
// move planner of spec §4.9. It is grounded on
// systems/particle_resource.go's advection/boundary-wrap logic,
// generalized from continuous-space particles to fixed-cell COM
// offsets.
package transfer

import (
	"github.com/pthm-cable/granule/grid"
	"github.com/pthm-cable/granule/material"
)

// Move is the proposed-move record of spec §3.5. Collision fields are
// left zero-valued here; the collision package fills them in.
type Move struct {
	FromX, FromY int
	ToX, ToY     int
	Material     material.Type
	Amount       float64
	Momentum     grid.Vec2
	BoundaryNormal grid.Vec2

	CollisionType          int
	CollisionEnergy        float64
	RestitutionCoefficient float64
	MaterialMass           float64
	TargetMass             float64
	PressureFromExcess     float64
}

// Plan advances every non-empty, non-wall cell's COM by v*dt (spec
// §4.9), collecting a Move for every boundary the new COM crosses that
// has an in-bounds neighbor, and immediately applying boundary
// reflections (negate + scale by elasticity, clamp COM) for
// out-of-bounds crossings.
func Plan(g *grid.Grid, reg *material.Registry, dt float64) []Move {
	var moves []Move
	w, h := g.Width(), g.Height()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := g.At(x, y)
			if c.IsEmpty() || c.IsWall() {
				continue
			}
			moves = append(moves, planCell(g, reg, x, y, dt)...)
		}
	}
	return moves
}

func planCell(g *grid.Grid, reg *material.Registry, x, y int, dt float64) []Move {
	c := g.At(x, y)
	props := reg.Get(c.Material)
	newCOM := c.COM.Add(c.Velocity.Scale(dt))

	var pending []Move
	finalCOM := newCOM

	if newCOM.X >= 1 || newCOM.X <= -1 {
		nx := x + signOf(newCOM.X)
		if g.InBounds(nx, y) {
			pending = append(pending, buildMove(g, x, y, nx, y, c, props, grid.Vec2{X: float64(signOf(newCOM.X)), Y: 0}))
		} else {
			c.Velocity.X = -c.Velocity.X * props.Elasticity
		}
		// Either way the crossed axis is clamped to the cell boundary
		// (invariant 4): the executor relocates COM for whatever mass
		// actually transfers, and the remainder stays pinned at the edge
		// until next frame's advection moves it again.
		finalCOM.X = clampInset(newCOM.X)
	}

	if newCOM.Y >= 1 || newCOM.Y <= -1 {
		ny := y + signOf(newCOM.Y)
		if g.InBounds(x, ny) {
			pending = append(pending, buildMove(g, x, y, x, ny, c, props, grid.Vec2{X: 0, Y: float64(signOf(newCOM.Y))}))
		} else {
			c.Velocity.Y = -c.Velocity.Y * props.Elasticity
		}
		finalCOM.Y = clampInset(newCOM.Y)
	}

	c.COM = finalCOM
	return pending
}

func buildMove(g *grid.Grid, fx, fy, tx, ty int, c *grid.Cell, props material.Properties, normal grid.Vec2) Move {
	target := g.CellAt(tx, ty)
	capacity := 1.0
	if !target.IsEmpty() && target.Material == c.Material {
		capacity = 1.0 - target.Fill
	} else if !target.IsEmpty() {
		capacity = 0
	}

	amount := c.Fill
	excess := 0.0
	if amount > capacity {
		excess = amount - capacity
		amount = capacity
	}

	return Move{
		FromX: fx, FromY: fy,
		ToX: tx, ToY: ty,
		Material:           c.Material,
		Amount:             amount,
		Momentum:           c.Velocity.Scale(c.Fill * props.Density),
		BoundaryNormal:     normal,
		MaterialMass:       c.Fill * props.Density,
		PressureFromExcess: excess,
	}
}

func signOf(v float64) int {
	if v < 0 {
		return -1
	}
	return 1
}

func clampInset(v float64) float64 {
	const inset = 1e-6
	if v >= 1 {
		return 1 - inset
	}
	if v <= -1 {
		return -1 + inset
	}
	return v
}
