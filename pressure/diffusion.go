package pressure

import (
	"math"
	"sync"

	"github.com/pthm-cable/granule/grid"
	"github.com/pthm-cable/granule/material"
)

var cardinalDirs = [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
var diagonalDirs = [4][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}

const invSqrt2 = 0.70710678118654752440

// Diffuse runs s.DiffusionIterations explicit diffusion steps (spec
// §4.5.3), double-buffering pressure into a scratch array each step so
// the pass is embarrassingly parallel across row strips (grounded on
// systems/resource_field.go's updateCapacity row partitioning).
func Diffuse(g *grid.Grid, reg *material.Registry, s Settings) {
	iters := s.DiffusionIterations
	if iters < 1 {
		iters = 1
	}
	for i := 0; i < iters; i++ {
		diffuseStep(g, reg, s)
	}
}

func diffuseStep(g *grid.Grid, reg *material.Registry, s Settings) {
	w, h := g.Width(), g.Height()
	cells := g.Cells()

	oldTotal := make([]float64, len(cells))
	for i := range cells {
		oldTotal[i] = cells[i].Pressure()
	}

	newTotal := make([]float64, len(cells))

	numWorkers := workerCount(h)
	rowsPerWorker := (h + numWorkers - 1) / numWorkers
	var wg sync.WaitGroup
	for wi := 0; wi < numWorkers; wi++ {
		y0 := wi * rowsPerWorker
		y1 := y0 + rowsPerWorker
		if y1 > h {
			y1 = h
		}
		if y0 >= h {
			break
		}
		wg.Add(1)
		go func(yStart, yEnd int) {
			defer wg.Done()
			for y := yStart; y < yEnd; y++ {
				for x := 0; x < w; x++ {
					i := y*w + x
					newTotal[i] = diffuseCell(g, reg, s, oldTotal, x, y, w)
				}
			}
		}(y0, y1)
	}
	wg.Wait()

	for i := range cells {
		c := &cells[i]
		if c.IsEmpty() || c.IsWall() {
			continue
		}
		oldP := oldTotal[i]
		newP := newTotal[i]
		if newP < 0 {
			newP = 0
		}
		scale := 1.0
		if oldP > minDenom {
			scale = newP / oldP
		}
		c.HydrostaticPressure *= scale
		c.DynamicPressure *= scale
	}
}

func diffuseCell(g *grid.Grid, reg *material.Registry, s Settings, oldTotal []float64, x, y, w int) float64 {
	c := g.CellAt(x, y)
	if c.IsEmpty() || c.IsWall() {
		return oldTotal[y*w+x]
	}
	pI := oldTotal[y*w+x]
	dI := reg.Get(c.Material).PressureDiffusion

	delta := 0.0
	wallFlux := 0.0

	visit := func(dx, dy int, weight float64) {
		nx, ny := x+dx, y+dy
		if !g.InBounds(nx, ny) {
			return // ghost cell: same pressure as centre, zero flux
		}
		n := g.CellAt(nx, ny)
		if n.IsWall() {
			// Hypothetical unobstructed flux, used only for the
			// reflection add-back below (spec §4.5.3).
			wallFlux += dI * pI * weight
			return
		}
		pJ := oldTotal[ny*w+nx]
		dJ := reg.Get(n.Material).PressureDiffusion
		dij := 2 * dI * dJ / (dI + dJ + 1e-9)
		flux := dij * (pJ - pI) * weight
		delta += flux
		if n.IsEmpty() {
			// Empty cells are zero-pressure sinks: the source loses
			// pressure into them, but AIR cells never accumulate
			// pressure (invariant), so nothing is deposited back.
		}
	}

	for _, d := range cardinalDirs {
		visit(d[0], d[1], 1.0)
	}
	if s.UseEightNeighborhood {
		for _, d := range diagonalDirs {
			visit(d[0], d[1], invSqrt2)
		}
	}

	if wallFlux > 0 {
		props := reg.Get(c.Material)
		r := (0.7*props.Elasticity + 0.3*(1-props.Density/10)) * (1 - math.Exp(-10*wallFlux))
		if r < 0 {
			r = 0
		}
		delta += r * wallFlux
	}

	// CFL stability clip.
	limit := 0.5*pI + 0.1
	if delta > limit {
		delta = limit
	} else if delta < -limit {
		delta = -limit
	}

	return pI + delta
}
