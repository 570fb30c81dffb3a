package grid

import (
	"math"

	"github.com/pthm-cable/granule/material"
)

// Support constants (spec §4.4).
const (
	MaxVerticalSupportDistance = 5
	RigidDensityThreshold      = 5.0
	StrongAdhesionThreshold    = 0.5
	MaxSupportDistance         = 10
)

// emptyAt is the emptiness probe shared by vertical/structural support.
// When cache is non-nil it is consulted; otherwise the grid is read
// directly. Both paths must agree bit-for-bit (spec §4.3, §8.1 #6).
func emptyAt(g *Grid, cache *BitmapCache, x, y int) bool {
	if !g.InBounds(x, y) {
		return false
	}
	if cache != nil {
		return cache.IsEmpty(x, y)
	}
	return g.CellAt(x, y).IsEmpty()
}

// AnalyzeSupport runs the support pass once per frame, writing
// HasVerticalSupport and HasAnySupport (structural support) into every
// cell. Grounded on systems/terrain.go's carveCaves flood-fill
// connectivity pass, adapted from cave-carving to support propagation.
func AnalyzeSupport(g *Grid, cache *BitmapCache, reg *material.Registry) {
	computeVerticalSupport(g, cache)
	computeStructuralSupport(g, cache, reg)
}

// computeVerticalSupport processes each column bottom-up so the
// recursive "first non-empty cell below must itself have vertical
// support" definition (spec §4.4) resolves in a single pass per column.
func computeVerticalSupport(g *Grid, cache *BitmapCache) {
	w, h := g.Width(), g.Height()
	for x := 0; x < w; x++ {
		for y := h - 1; y >= 0; y-- {
			c := g.At(x, y)
			if y == h-1 {
				c.HasVerticalSupport = true
				continue
			}
			supported := false
			for dy := 1; dy <= MaxVerticalSupportDistance; dy++ {
				ny := y + dy
				if ny >= h {
					break
				}
				if emptyAt(g, cache, x, ny) {
					continue
				}
				supported = g.At(x, ny).HasVerticalSupport
				break
			}
			c.HasVerticalSupport = supported
		}
	}
}

// HorizontalSupport reports whether (x,y) has horizontal support: some
// non-empty 8-neighbor with density above RigidDensityThreshold whose
// geometric-mean adhesion with this cell exceeds StrongAdhesionThreshold
// (spec §4.4). It has no dedicated cell field and is computed on
// demand; the cohesion binding resistance in package forces does not
// consult it.
func HorizontalSupport(g *Grid, x, y int, reg *material.Registry) bool {
	self := g.CellAt(x, y)
	if self.IsEmpty() {
		return false
	}
	selfProps := reg.Get(self.Material)
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
			if n.IsEmpty() {
				continue
			}
			nProps := reg.Get(n.Material)
			if nProps.Density <= RigidDensityThreshold {
				continue
			}
			geomAdh := math.Sqrt(selfProps.Adhesion * nProps.Adhesion)
			if geomAdh > StrongAdhesionThreshold {
				return true
			}
		}
	}
	return false
}

// computeStructuralSupport writes HasAnySupport for every cell via a
// bounded-radius BFS through same-material connected cells, exactly as
// spec §4.4 describes.
func computeStructuralSupport(g *Grid, cache *BitmapCache, reg *material.Registry) {
	w, h := g.Width(), g.Height()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			g.At(x, y).HasAnySupport = structuralSupportAt(g, cache, reg, x, y)
		}
	}
}

func structuralSupportAt(g *Grid, cache *BitmapCache, reg *material.Registry, sx, sy int) bool {
	start := g.CellAt(sx, sy)
	if start.IsWall() {
		return true
	}
	if start.IsEmpty() {
		return false
	}
	if sy == g.Height()-1 {
		return true
	}
	startProps := reg.Get(start.Material)
	if startProps.Density > RigidDensityThreshold {
		return true
	}

	origin := gridPoint{sx, sy}
	visited := map[gridPoint]bool{origin: true}
	queue := []gridPoint{origin}

	for qi := 0; qi < len(queue); qi++ {
		p := queue[qi]
		if manhattan(p, origin) > MaxSupportDistance {
			continue
		}
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				nx, ny := p.x+dx, p.y+dy
				if !g.InBounds(nx, ny) {
					continue
				}
				if ny == g.Height()-1 {
					return true
				}
				n := g.CellAt(nx, ny)
				if n.IsWall() {
					if startProps.IsRigid {
						return true
					}
					continue // walls do not support fluids/granulars
				}
				if n.IsEmpty() {
					continue
				}
				nProps := reg.Get(n.Material)
				if nProps.Density > RigidDensityThreshold {
					return true
				}
				if n.Material != start.Material {
					continue // propagate only through same-material connectivity
				}
				np := gridPoint{nx, ny}
				if visited[np] {
					continue
				}
				if manhattan(np, origin) > MaxSupportDistance {
					continue
				}
				visited[np] = true
				queue = append(queue, np)
			}
		}
	}
	return false
}

type gridPoint struct{ x, y int }

func manhattan(a, b gridPoint) int {
	dx := a.x - b.x
	if dx < 0 {
		dx = -dx
	}
	dy := a.y - b.y
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}
