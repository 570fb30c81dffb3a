// Package collision classifies proposed moves per spec §4.10. It is
// grounded on neural/reproduction.go's pure-function dispatch style:
// a single classification function with no side effects, consumed by
// the move executor.
package collision

import (
	"math"

	"github.com/pthm-cable/granule/grid"
	"github.com/pthm-cable/granule/material"
	"github.com/pthm-cable/granule/transfer"
)

// Type is the tagged collision-response kind of spec §3.5/§4.10.
type Type int

const (
	TransferOnly Type = iota
	Fragmentation
	Absorption
	ElasticReflection
	InelasticCollision
)

const (
	// FragmentationThreshold is the ΔKE above which two rigid materials
	// fragment on impact instead of transferring cleanly.
	FragmentationThreshold = 15.0
	// ElasticRestitutionThreshold is the minimum combined elasticity for
	// a rigid-rigid collision to be treated as elastic.
	ElasticRestitutionThreshold = 0.5
	// InelasticRestitutionFactor is applied to non-elastic, non-absorbed
	// rigid/mixed collisions.
	InelasticRestitutionFactor = 0.5
)

// absorbPairs is the small fixed table of (source-into-target) pairs
// that merge instead of colliding (spec §4.10).
var absorbPairs = map[[2]material.Type]bool{
	{material.Water, material.Dirt}:  true,
	{material.Water, material.Sand}:  true,
	{material.Water, material.Leaf}:  true,
	{material.Leaf, material.Water}:  true,
}

// Classify fills in the collision fields of a proposed Move (spec
// §4.10) and reports whether a swap should additionally be proposed.
func Classify(g *grid.Grid, reg *material.Registry, m transfer.Move, swapEnabled bool) (transfer.Move, bool) {
	from := g.CellAt(m.FromX, m.FromY)
	to := g.CellAt(m.ToX, m.ToY)
	fromProps := reg.Get(from.Material)
	toProps := reg.Get(to.Material)

	vRel := from.Velocity.Sub(to.Velocity)
	deltaKE := 0.5 * m.MaterialMass * vRel.Dot(vRel)
	m.CollisionEnergy = deltaKE

	switch {
	case to.IsEmpty() || to.Material == from.Material:
		m.CollisionType = int(TransferOnly)
	case fromProps.IsRigid && toProps.IsRigid && deltaKE > FragmentationThreshold:
		m.CollisionType = int(Fragmentation)
	case absorbPairs[[2]material.Type{from.Material, to.Material}]:
		m.CollisionType = int(Absorption)
	default:
		e := math.Sqrt(fromProps.Elasticity * toProps.Elasticity)
		if e >= ElasticRestitutionThreshold && fromProps.IsRigid && toProps.IsRigid {
			m.CollisionType = int(ElasticReflection)
			m.RestitutionCoefficient = e
		} else {
			m.CollisionType = int(InelasticCollision)
			m.RestitutionCoefficient = InelasticRestitutionFactor
		}
	}

	swap := swapEnabled && shouldSwap(from, to, fromProps, toProps, m)
	return m, swap
}

// shouldSwap implements spec §4.10's swap rule: proposed when the move
// direction aligns with the density differential (lighter moving up or
// heavier moving down) and both cells are non-empty, different
// materials.
func shouldSwap(from, to grid.Cell, fromProps, toProps material.Properties, m transfer.Move) bool {
	if from.IsEmpty() || to.IsEmpty() || to.IsWall() || from.Material == to.Material {
		return false
	}
	denserMovesDown := fromProps.Density > toProps.Density && m.BoundaryNormal.Y > 0
	lighterMovesUp := fromProps.Density < toProps.Density && m.BoundaryNormal.Y < 0
	return denserMovesDown || lighterMovesUp
}

// SwapEnergyCost is the small v-magnitude deduction the moving side
// pays when a swap executes (spec §4.10).
const SwapEnergyCost = 0.05

// ApplySwapCost scales the moving cell's velocity down to represent the
// kinetic energy spent forcing the swap.
func ApplySwapCost(c *grid.Cell) {
	speed := c.Velocity.Length()
	if speed <= SwapEnergyCost {
		c.Velocity = grid.Vec2{}
		return
	}
	c.Velocity = c.Velocity.Scale((speed - SwapEnergyCost) / speed)
}
