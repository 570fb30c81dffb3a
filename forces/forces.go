// Package forces implements the per-frame force accumulators of spec
// §4.6: gravity, quadratic air drag, the stored pressure gradient,
// cohesion (binding resistance + COM attraction), adhesion, and
// contact friction. It is grounded on systems/particle_resource.go's
// per-cell flow-field accumulation and systems/behavior.go's
// per-entity force-summing loop, generalized from entities to grid
// cells.
package forces

import (
	"math"

	"github.com/pthm-cable/granule/grid"
	"github.com/pthm-cable/granule/material"
)

const (
	// MinNormalForce below which contact friction is skipped (spec §4.6).
	MinNormalForce = 0.01
	// MinTangentialSpeed below which contact friction is skipped.
	MinTangentialSpeed = 1e-6
	// MinSupportFactor is the floor support factor for cohesion binding
	// resistance when a cell has no structural or metal-cluster support.
	MinSupportFactor = 0.05
	// DefaultCohesionRange is the neighbor radius used by COM attraction
	// when the settings do not override it.
	DefaultCohesionRange = 1
)

// Settings mirrors the force-relevant subset of spec §6.3. All
// *Enabled switches and strengths are read fresh every frame; the
// core never caches them.
type Settings struct {
	Gravity                  float64
	PressureScale            float64
	CohesionEnabled          bool
	CohesionStrength         float64
	CohesionResistanceFactor float64
	CohesionRange            int
	AdhesionEnabled          bool
	AdhesionStrength         float64
	FrictionEnabled          bool
	FrictionStrength         float64
	AirResistance            float64
}

// BindingResistance is the cohesion "movement threshold" computed per
// non-empty cell (spec §4.6); it is not a force but is consumed by the
// transfer planner or applied as extra damping, per configuration.
type BindingResistance struct {
	Resistance float64
}

// Accumulate clears pending_force on every cell then adds every
// enabled term, in the order given by spec §4.12 step 5. reg and s are
// passed explicitly per the no-global-state design (spec §9).
func Accumulate(g *grid.Grid, reg *material.Registry, s Settings) []BindingResistance {
	w, h := g.Width(), g.Height()
	for i := range g.Cells() {
		g.Cells()[i].PendingForce = grid.Vec2{}
	}

	binding := make([]BindingResistance, w*h)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := g.At(x, y)
			if c.IsEmpty() || c.IsWall() {
				continue
			}
			props := reg.Get(c.Material)

			applyGravity(c, s)
			applyAirDrag(c, props, s)
			applyPressureForce(c, s)

			if s.CohesionEnabled && props.Cohesion > 0 {
				binding[y*w+x] = BindingResistance{Resistance: bindingResistance(g, reg, x, y, props)}
				applyCohesionAttraction(g, reg, x, y, props, s)
			}
			if s.AdhesionEnabled {
				applyAdhesion(g, reg, x, y, props, s)
			}
		}
	}

	if s.FrictionEnabled {
		applyContactFriction(g, reg, s)
	}

	return binding
}

func applyGravity(c *grid.Cell, s Settings) {
	c.PendingForce = c.PendingForce.Add(grid.Vec2{X: 0, Y: s.Gravity})
}

func applyAirDrag(c *grid.Cell, props material.Properties, s Settings) {
	speed := c.Velocity.Length()
	if speed < grid.MinMatterThreshold {
		return
	}
	k := props.AirResistance * s.AirResistance
	drag := c.Velocity.Scale(-k * speed)
	c.PendingForce = c.PendingForce.Add(drag)
}

func applyPressureForce(c *grid.Cell, s Settings) {
	c.PendingForce = c.PendingForce.Add(c.PressureGradient.Scale(s.PressureScale))
}

// bindingResistance implements spec §4.6's cohesion support-factor
// table: a metal cell with >=2 same-material neighbors, or any cell
// with structural support, gets full resistance; any other support
// (here: vertical-only support, since horizontal support has no
// dedicated per-cell flag) halves it; otherwise the floor applies.
func bindingResistance(g *grid.Grid, reg *material.Registry, x, y int, props material.Properties) float64 {
	c := g.At(x, y)
	same := countSameMaterialNeighbors(g, x, y, c.Material)

	supportFactor := MinSupportFactor
	switch {
	case c.Material == material.Metal && same >= 2:
		supportFactor = 1.0
	case c.HasAnySupport:
		supportFactor = 1.0
	case c.HasVerticalSupport:
		supportFactor = 0.5
	}

	return props.Cohesion * float64(same) * c.Fill * supportFactor
}

func countSameMaterialNeighbors(g *grid.Grid, x, y int, m material.Type) int {
	count := 0
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			nx, ny := x+dx, y+dy
			if !g.InBounds(nx, ny) {
				continue
			}
			n := g.CellAt(nx, ny)
			if n.Material == m && !n.IsEmpty() {
				count++
			}
		}
	}
	return count
}

// applyCohesionAttraction implements spec §4.6's COM-attraction term:
// clustering toward the same-material weighted centre, plus centering
// the cell's own COM toward the cell's own centre.
func applyCohesionAttraction(g *grid.Grid, reg *material.Registry, x, y int, props material.Properties, s Settings) {
	c := g.At(x, y)
	radius := s.CohesionRange
	if radius < 1 {
		radius = DefaultCohesionRange
	}

	var weightedFillSum float64
	var weightedCenter grid.Vec2
	connections := 0
	maxConnections := (2*radius + 1) * (2*radius + 1) - 1

	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			nx, ny := x+dx, y+dy
			if !g.InBounds(nx, ny) {
				continue
			}
			n := g.CellAt(nx, ny)
			if n.IsEmpty() || n.Material != c.Material {
				continue
			}
			connections++
			weightedFillSum += n.Fill
			weightedCenter = weightedCenter.Add(grid.Vec2{X: float64(dx), Y: float64(dy)}.Scale(n.Fill))
		}
	}

	if connections == 0 || maxConnections == 0 {
		// Centering still applies even with no neighbors.
		applyCentering(c, props, s)
		return
	}

	centerOffset := weightedCenter.Scale(1.0 / weightedFillSum)
	d := centerOffset.Length()

	clusterMag := props.Cohesion * (weightedFillSum / float64(maxConnections)) * (1.0 / (d + 0.1)) * c.Fill
	cap := 10 * props.Cohesion
	if clusterMag > cap {
		clusterMag = cap
	}

	clusterDir := centerOffset.Normalized()
	centeringDir := grid.Vec2{X: -c.COM.X, Y: -c.COM.Y}.Normalized()

	if clusterDir.Dot(centeringDir) >= 0 {
		c.PendingForce = c.PendingForce.Add(clusterDir.Scale(clusterMag * s.CohesionStrength * 0.5))
	}

	applyCentering(c, props, s)
}

func applyCentering(c *grid.Cell, props material.Properties, s Settings) {
	magnitude := props.Cohesion * c.COM.Length() * c.Fill
	dir := grid.Vec2{X: -c.COM.X, Y: -c.COM.Y}.Normalized()
	c.PendingForce = c.PendingForce.Add(dir.Scale(magnitude * s.CohesionStrength))
}

// applyAdhesion implements spec §4.6's different-material attraction.
func applyAdhesion(g *grid.Grid, reg *material.Registry, x, y int, props material.Properties, s Settings) {
	c := g.At(x, y)
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			nx, ny := x+dx, y+dy
			if !g.InBounds(nx, ny) {
				continue
			}
			n := g.CellAt(nx, ny)
			if n.IsEmpty() || n.Material == c.Material {
				continue
			}
			nProps := reg.Get(n.Material)
			cardinal := dx == 0 || dy == 0
			factor := 1.0
			if !cardinal {
				factor = invSqrt2
			}
			strength := math.Sqrt(props.Adhesion*nProps.Adhesion) * c.Fill * n.Fill * factor * s.AdhesionStrength
			dir := grid.Vec2{X: float64(dx), Y: float64(dy)}.Normalized()
			c.PendingForce = c.PendingForce.Add(dir.Scale(strength))
		}
	}
}

const invSqrt2 = 0.70710678118654752440
