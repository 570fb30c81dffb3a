package pressure

import (
	"math"

	"github.com/pthm-cable/granule/grid"
	"github.com/pthm-cable/granule/material"
)

// ProcessBlockedTransfers converts blocked-transfer kinetic energy into
// dynamic pressure (spec §4.5.2). Each transfer either reflects energy
// back to its source (target is WALL) or deposits weighted energy into
// the target's dynamic pressure. The caller clears the blocked list
// after this returns.
func ProcessBlockedTransfers(g *grid.Grid, reg *material.Registry, s Settings, blocked []BlockedTransfer) {
	for _, bt := range blocked {
		target := g.CellAt(bt.ToX, bt.ToY)
		source := g.At(bt.FromX, bt.FromY)

		if target.IsWall() {
			eSource := reg.Get(source.Material).Elasticity
			eWall := reg.Get(material.Wall).Elasticity
			restitution := math.Sqrt(eSource*eWall) * (1 - 0.1*math.Min(1, bt.DeltaKE/10))
			deposit := bt.DeltaKE * restitution * dynamicWeight(source.Material) * s.DynamicStrength
			source.DynamicPressure += deposit
			continue
		}

		if target.IsEmpty() {
			continue // empty targets absorb no pressure
		}

		targetCell := g.At(bt.ToX, bt.ToY)
		deposit := bt.DeltaKE * dynamicWeight(targetCell.Material) * s.DynamicStrength
		targetCell.DynamicPressure += deposit
	}
}
