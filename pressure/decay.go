package pressure

import "github.com/pthm-cable/granule/grid"

// DecayRate is the fixed decay constant of spec §4.5.4.
const DecayRate = 0.1

// Decay multiplies every cell's total pressure by (1 - decayRate*dt),
// rescaling the hydrostatic/dynamic components to keep their ratio, then
// recomputes and stores the pressure gradient for next frame's force
// step (spec §4.5.4).
func Decay(g *grid.Grid, s Settings, dt float64) {
	decayRate := s.DecayRate
	if decayRate == 0 {
		decayRate = DecayRate
	}
	factor := 1 - decayRate*dt
	if factor < 0 {
		factor = 0
	}

	cells := g.Cells()
	for i := range cells {
		c := &cells[i]
		if c.IsEmpty() || c.IsWall() {
			continue
		}
		c.HydrostaticPressure *= factor
		c.DynamicPressure *= factor
	}

	computeGradients(g, s)
}

// computeGradients implements spec §4.5.5: for cells above
// MinPressureThreshold, sum (center-neighbor)*direction over the 4 or 8
// neighborhood, diagonals weighted 1/sqrt2. Wall neighbors contribute
// zero directly but their blocked pressure is redistributed uniformly
// over the remaining open directions; empty neighbors read as pressure
// 0. The sum is divided by the neighbor count (4 or 8).
func computeGradients(g *grid.Grid, s Settings) {
	w, h := g.Width(), g.Height()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := g.At(x, y)
			if c.IsEmpty() || c.IsWall() {
				c.PressureGradient = grid.Vec2{}
				continue
			}
			if c.Pressure() <= MinPressureThreshold {
				c.PressureGradient = grid.Vec2{}
				continue
			}
			c.PressureGradient = gradientAt(g, s, x, y, c.Pressure())
		}
	}
}

type gradDir struct {
	dx, dy int
	dir    grid.Vec2
	weight float64
}

func directions(eight bool) []gradDir {
	dirs := []gradDir{
		{1, 0, grid.Vec2{X: 1, Y: 0}, 1.0},
		{-1, 0, grid.Vec2{X: -1, Y: 0}, 1.0},
		{0, 1, grid.Vec2{X: 0, Y: 1}, 1.0},
		{0, -1, grid.Vec2{X: 0, Y: -1}, 1.0},
	}
	if eight {
		dirs = append(dirs,
			gradDir{1, 1, grid.Vec2{X: invSqrt2, Y: invSqrt2}, invSqrt2},
			gradDir{1, -1, grid.Vec2{X: invSqrt2, Y: -invSqrt2}, invSqrt2},
			gradDir{-1, 1, grid.Vec2{X: -invSqrt2, Y: invSqrt2}, invSqrt2},
			gradDir{-1, -1, grid.Vec2{X: -invSqrt2, Y: -invSqrt2}, invSqrt2},
		)
	}
	return dirs
}

func gradientAt(g *grid.Grid, s Settings, x, y int, center float64) grid.Vec2 {
	dirs := directions(s.UseEightNeighborhood)
	n := float64(len(dirs))

	var sum grid.Vec2
	var blocked float64
	openCount := 0

	type contribution struct {
		dir    grid.Vec2
		weight float64
		isWall bool
	}
	contribs := make([]contribution, 0, len(dirs))

	for _, d := range dirs {
		nx, ny := x+d.dx, y+d.dy
		var neighborPressure float64
		isWall := false
		if g.InBounds(nx, ny) {
			nc := g.CellAt(nx, ny)
			if nc.IsWall() {
				isWall = true
			} else {
				neighborPressure = nc.Pressure()
			}
		}
		if isWall {
			blocked += (center - 0) * d.weight
			contribs = append(contribs, contribution{dir: d.dir, weight: d.weight, isWall: true})
			continue
		}
		openCount++
		sum = sum.Add(d.dir.Scale((center - neighborPressure) * d.weight))
		contribs = append(contribs, contribution{dir: d.dir, weight: d.weight})
	}

	if openCount > 0 && blocked != 0 {
		share := blocked / float64(openCount)
		for _, c := range contribs {
			if c.isWall {
				continue
			}
			sum = sum.Add(c.dir.Scale(share))
		}
	}

	return sum.Scale(1.0 / n)
}
