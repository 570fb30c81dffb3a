// Package executor implements the move executor of spec §4.11:
// shuffle proposed moves with a per-world seeded RNG, dispatch each by
// collision type, apply swaps, and collect blocked transfers for the
// pressure subsystem. Grounded on game/lifecycle.go's
// collect-then-apply-then-clear pattern and neural/ffnn.go's
// *rand.Rand threading idiom (never call package-level math/rand).
package executor

import (
	"math/rand"

	"github.com/pthm-cable/granule/collision"
	"github.com/pthm-cable/granule/grid"
	"github.com/pthm-cable/granule/material"
	"github.com/pthm-cable/granule/pressure"
	"github.com/pthm-cable/granule/transfer"
)

// Settings mirrors the executor-relevant subset of spec §6.3.
type Settings struct {
	SwapEnabled bool
	// FragmentCount is the number of sub-moves a FRAGMENTATION split
	// sprays to random empty neighbors (spec §4.11, "N (>=2)").
	FragmentCount int
}

// Execute classifies and runs every proposed move in a shuffled order
// (spec §4.11), returning the blocked transfers produced along the
// way. rng must be a per-world, seedable source (spec §9); callers
// never reach for the global math/rand functions.
func Execute(g *grid.Grid, reg *material.Registry, s Settings, moves []transfer.Move, rng *rand.Rand) []pressure.BlockedTransfer {
	rng.Shuffle(len(moves), func(i, j int) { moves[i], moves[j] = moves[j], moves[i] })

	var blocked []pressure.BlockedTransfer
	for _, m := range moves {
		classified, swap := collision.Classify(g, reg, m, s.SwapEnabled)
		applyExcess(g, reg, classified, &blocked)

		switch collision.Type(classified.CollisionType) {
		case collision.TransferOnly:
			blocked = append(blocked, executeTransferOnly(g, reg, classified)...)
		case collision.ElasticReflection:
			executeElasticReflection(g, classified)
		case collision.InelasticCollision:
			blocked = append(blocked, executeInelastic(g, reg, classified)...)
		case collision.Fragmentation:
			executeFragmentation(g, reg, s, classified, rng)
		case collision.Absorption:
			blocked = append(blocked, executeAbsorption(g, reg, classified)...)
		}

		if swap {
			executeSwap(g, classified)
		}
	}
	return blocked
}

// applyExcess deposits pressure_from_excess into the target, or
// reflects it to the source when the target is a wall (spec §4.11
// step 2a).
func applyExcess(g *grid.Grid, reg *material.Registry, m transfer.Move, blocked *[]pressure.BlockedTransfer) {
	if m.PressureFromExcess <= 0 {
		return
	}
	if g.CellAt(m.ToX, m.ToY).IsWall() {
		source := g.At(m.FromX, m.FromY)
		source.DynamicPressure += m.PressureFromExcess
		return
	}
	target := g.At(m.ToX, m.ToY)
	target.DynamicPressure += m.PressureFromExcess
}

func executeTransferOnly(g *grid.Grid, reg *material.Registry, m transfer.Move) []pressure.BlockedTransfer {
	source := g.At(m.FromX, m.FromY)
	accepted := g.AddMaterialPhysicsAware(m.ToX, m.ToY, m.Material, m.Amount, source.COM, source.Velocity, m.BoundaryNormal)
	rejected := m.Amount - accepted
	source.Fill -= accepted

	if rejected > grid.MinMatterThreshold {
		return []pressure.BlockedTransfer{{
			FromX: m.FromX, FromY: m.FromY, ToX: m.ToX, ToY: m.ToY,
			Amount: rejected, Velocity: source.Velocity, DeltaKE: m.CollisionEnergy,
		}}
	}
	return nil
}

func executeElasticReflection(g *grid.Grid, m transfer.Move) {
	source := g.At(m.FromX, m.FromY)
	n := m.BoundaryNormal
	vn := source.Velocity.Dot(n)
	normalComp := n.Scale(vn)
	tangentComp := source.Velocity.Sub(normalComp)
	source.Velocity = tangentComp.Sub(normalComp)
}

func executeInelastic(g *grid.Grid, reg *material.Registry, m transfer.Move) []pressure.BlockedTransfer {
	source := g.At(m.FromX, m.FromY)
	n := m.BoundaryNormal

	// A wall has infinite mass: it absorbs none of the impulse, so the
	// full relative-velocity change lands on the source (spec invariant
	// that wall cells never move).
	if g.CellAt(m.ToX, m.ToY).IsWall() {
		vn := source.Velocity.Dot(n)
		source.Velocity = source.Velocity.Sub(n.Scale((1 + m.RestitutionCoefficient) * vn))
	} else {
		target := g.At(m.ToX, m.ToY)
		relVel := source.Velocity.Sub(target.Velocity)
		impulse := n.Scale(-(1 + m.RestitutionCoefficient) * relVel.Dot(n))
		source.Velocity = source.Velocity.Add(impulse.Scale(0.5))
		target.Velocity = target.Velocity.Sub(impulse.Scale(0.5))
	}

	accepted := g.AddMaterialPhysicsAware(m.ToX, m.ToY, m.Material, m.Amount, source.COM, source.Velocity, n)
	rejected := m.Amount - accepted
	source.Fill -= accepted
	if rejected > grid.MinMatterThreshold {
		return []pressure.BlockedTransfer{{
			FromX: m.FromX, FromY: m.FromY, ToX: m.ToX, ToY: m.ToY,
			Amount: rejected, Velocity: source.Velocity, DeltaKE: m.CollisionEnergy,
		}}
	}
	return nil
}

func executeFragmentation(g *grid.Grid, reg *material.Registry, s Settings, m transfer.Move, rng *rand.Rand) {
	source := g.At(m.FromX, m.FromY)
	n := fragmentCount(s)

	var candidates []struct{ x, y int }
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			nx, ny := m.FromX+dx, m.FromY+dy
			if !g.InBounds(nx, ny) {
				continue
			}
			if g.CellAt(nx, ny).IsEmpty() {
				candidates = append(candidates, struct{ x, y int }{nx, ny})
			}
		}
	}
	if len(candidates) == 0 {
		source.DynamicPressure += m.CollisionEnergy
		return
	}

	share := m.Amount / float64(n)
	leftover := 0.0
	for i := 0; i < n; i++ {
		target := candidates[rng.Intn(len(candidates))]
		perturbed := source.Velocity.Scale(0.5 + rng.Float64()*0.5)
		accepted := g.AddMaterialPhysicsAware(target.x, target.y, m.Material, share, source.COM, perturbed, grid.Vec2{})
		leftover += share - accepted
		source.Fill -= accepted
	}
	if leftover > 0 {
		source.DynamicPressure += leftover * m.CollisionEnergy / m.Amount
	}
}

func fragmentCount(s Settings) int {
	if s.FragmentCount >= 2 {
		return s.FragmentCount
	}
	return 2
}

// executeAbsorption implements spec §4.11's ABSORPTION dispatch: merge
// per the classifier's absorb-pair rule. The core does not model
// saturation, so absent a material-specific rule the default is a
// plain transfer.
func executeAbsorption(g *grid.Grid, reg *material.Registry, m transfer.Move) []pressure.BlockedTransfer {
	return executeTransferOnly(g, reg, m)
}

func executeSwap(g *grid.Grid, m transfer.Move) {
	a := g.At(m.FromX, m.FromY)
	b := g.At(m.ToX, m.ToY)

	a.Material, b.Material = b.Material, a.Material
	a.Fill, b.Fill = b.Fill, a.Fill
	a.Velocity, b.Velocity = b.Velocity, a.Velocity
	a.COM, b.COM = b.COM, a.COM

	collision.ApplySwapCost(a)
	collision.ApplySwapCost(b)
}
