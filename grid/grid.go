package grid

import "github.com/pthm-cable/granule/material"

// Grid is a row-major flat array of width*height cells (spec §3.3).
// Width and height are fixed between resizes; resizing is external to
// this core.
type Grid struct {
	width, height int
	cells         []Cell
}

// New allocates a width x height grid, all cells initialized to AIR.
func New(width, height int) *Grid {
	if width <= 0 || height <= 0 {
		fault("New", "invalid dimensions %dx%d", width, height)
	}
	return &Grid{width: width, height: height, cells: make([]Cell, width*height)}
}

func (g *Grid) Width() int  { return g.width }
func (g *Grid) Height() int { return g.height }

// InBounds reports whether (x,y) addresses a cell in the grid.
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && x < g.width && y >= 0 && y < g.height
}

func (g *Grid) index(x, y int) int {
	if !g.InBounds(x, y) {
		fault("index", "out of bounds (%d,%d) in %dx%d grid", x, y, g.width, g.height)
	}
	return y*g.width + x
}

func (g *Grid) coordsOf(i int) (x, y int) {
	return i % g.width, i / g.width
}

// At returns a pointer to the cell at (x,y). Precondition fault (panics)
// if out of bounds.
func (g *Grid) At(x, y int) *Cell {
	return &g.cells[g.index(x, y)]
}

// Cells exposes the flat backing store for bulk, read-only scans (the
// bitmap cache and pressure/support passes iterate it directly rather
// than paying per-cell bounds checks).
func (g *Grid) Cells() []Cell { return g.cells }

// CellAt is the bounds-checked read-only accessor; returns the zero
// value (AIR) for out-of-bounds coordinates instead of faulting, for
// callers that routinely probe neighbors near the edge.
func (g *Grid) CellAt(x, y int) Cell {
	if !g.InBounds(x, y) {
		return Cell{}
	}
	return g.cells[g.index(x, y)]
}

// Replace atomically sets both material and fill ratio, then enforces
// cell invariants.
func (g *Grid) Replace(x, y int, t material.Type, fill float64) {
	c := g.At(x, y)
	c.Material = t
	c.Fill = clampf(fill, 0, 1)
	c.normalize()
}

// Clear resets the cell at (x,y) to AIR with all dependent state zeroed.
func (g *Grid) Clear(x, y int) {
	g.At(x, y).clear()
}

// InstallWalls clobbers the outer ring of the grid to WALL, the
// documented mechanism for installing boundary walls (spec §3.3).
func (g *Grid) InstallWalls() {
	for x := 0; x < g.width; x++ {
		g.Replace(x, 0, material.Wall, 1.0)
		g.Replace(x, g.height-1, material.Wall, 1.0)
	}
	for y := 0; y < g.height; y++ {
		g.Replace(0, y, material.Wall, 1.0)
		g.Replace(g.width-1, y, material.Wall, 1.0)
	}
}

// AddMaterial adds amount of material t to the cell at (x,y), clamped to
// remaining capacity. It only accepts mass when the target is empty or
// already holds t — different materials never mix (spec §4.2). Returns
// the amount actually accepted.
func (g *Grid) AddMaterial(x, y int, t material.Type, amount float64) float64 {
	c := g.At(x, y)
	if !(c.IsEmpty() || c.Material == t) || c.IsWall() {
		return 0
	}
	if amount <= 0 {
		return 0
	}
	accepted := amount
	room := 1.0 - c.Fill
	if accepted > room {
		accepted = room
	}
	if accepted <= 0 {
		return 0
	}
	c.Material = t
	c.Fill += accepted
	c.normalize()
	return accepted
}

// AddMaterialWithVelocity is AddMaterial plus a mass-weighted velocity
// blend with any existing content of the same material.
func (g *Grid) AddMaterialWithVelocity(x, y int, t material.Type, amount float64, vel Vec2) float64 {
	c := g.At(x, y)
	existingMass := c.Fill
	accepted := g.AddMaterial(x, y, t, amount)
	if accepted <= 0 {
		return 0
	}
	totalMass := existingMass + accepted
	if totalMass < MinMatterThreshold {
		c.Velocity = vel
		return accepted
	}
	c.Velocity = c.Velocity.Scale(existingMass / totalMass).Add(vel.Scale(accepted / totalMass))
	return accepted
}

// AddMaterialWithComAndVelocity additionally blends an incoming COM
// (already expressed in the target cell's local coordinates).
func (g *Grid) AddMaterialWithComAndVelocity(x, y int, t material.Type, amount float64, com, vel Vec2) float64 {
	c := g.At(x, y)
	existingMass := c.Fill
	accepted := g.AddMaterialWithVelocity(x, y, t, amount, vel)
	if accepted <= 0 {
		return 0
	}
	totalMass := existingMass + accepted
	if totalMass < MinMatterThreshold {
		c.COM = com.Clamp(1.0)
		return accepted
	}
	c.COM = c.COM.Scale(existingMass / totalMass).Add(com.Scale(accepted / totalMass)).Clamp(1.0)
	return accepted
}

// AddMaterialPhysicsAware is the "physics-aware" variant of spec §4.2: it
// computes the incoming COM's landing point by intersecting the line
// sourceCOM + t*v with the boundary identified by normal, wraps that
// point into the target cell's local coordinates, and performs the same
// mass-weighted COM/velocity averaging as AddMaterialWithComAndVelocity
// (momentum conservation across the transfer).
func (g *Grid) AddMaterialPhysicsAware(x, y int, t material.Type, amount float64, sourceCOM, vel, boundaryNormal Vec2) float64 {
	landing := landingPoint(sourceCOM, vel, boundaryNormal)
	return g.AddMaterialWithComAndVelocity(x, y, t, amount, landing, vel)
}

// landingPoint intersects sourceCOM + t*v with the unit cell boundary
// identified by normal and wraps the result into the neighbor cell's
// local [-1,1]^2 coordinates (entering from the opposite edge).
func landingPoint(sourceCOM, v, normal Vec2) Vec2 {
	// The crossed boundary is at sourceCOM.axis + t*v.axis = sign(normal.axis).
	var t float64 = 1
	if normal.X != 0 && v.X != 0 {
		t = (signOf(normal.X) - sourceCOM.X) / v.X
	} else if normal.Y != 0 && v.Y != 0 {
		t = (signOf(normal.Y) - sourceCOM.Y) / v.Y
	}
	if t < 0 {
		t = 0
	}
	crossed := sourceCOM.Add(v.Scale(t))

	// Wrap the crossed-axis component into the neighbor, entering at the
	// opposite edge; carry the other axis through unchanged.
	out := crossed
	if normal.X != 0 {
		out.X = -signOf(normal.X)
	}
	if normal.Y != 0 {
		out.Y = -signOf(normal.Y)
	}
	return out.Clamp(1.0)
}

func signOf(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}

// TotalMass returns the sum of fill*density over every non-wall cell
// (spec §3.2 invariant 5, the conserved quantity).
func (g *Grid) TotalMass(reg *material.Registry) float64 {
	var total float64
	for i := range g.cells {
		c := &g.cells[i]
		if c.IsWall() || c.IsEmpty() {
			continue
		}
		total += c.Fill * reg.Density(c.Material)
	}
	return total
}
