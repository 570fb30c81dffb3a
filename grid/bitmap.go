package grid

import "github.com/pthm-cable/granule/material"

const tileSize = 8

// BitmapCache is the per-frame derived structure of spec §3.4: an 8x8
// bit-packed "empty" bitmap plus 3x3 material/empty neighborhood
// queries. It is rebuilt once per frame by a single linear pass
// (grounded on systems/terrain.go's occluderCache: wholesale rebuild,
// not incremental update) and must produce bit-identical frame outcomes
// whether or not it is consulted (the direct-access code path is always
// available as a fallback and must agree exactly).
type BitmapCache struct {
	width, height int
	tilesX        int
	tilesY        int
	tiles         []uint64 // one bit per cell, 1 <=> empty (AIR); row-major within each 8x8 tile
}

// NewBitmapCache allocates a cache sized for a width x height grid.
func NewBitmapCache(width, height int) *BitmapCache {
	tx := (width + tileSize - 1) / tileSize
	ty := (height + tileSize - 1) / tileSize
	return &BitmapCache{
		width: width, height: height,
		tilesX: tx, tilesY: ty,
		tiles: make([]uint64, tx*ty),
	}
}

// Rebuild repopulates the cache from the grid's current contents in a
// single linear pass.
func (b *BitmapCache) Rebuild(g *Grid) {
	for i := range b.tiles {
		b.tiles[i] = 0
	}
	cells := g.Cells()
	for y := 0; y < b.height; y++ {
		row := y * g.width
		for x := 0; x < b.width; x++ {
			if cells[row+x].IsEmpty() {
				b.setEmpty(x, y)
			}
		}
	}
}

func (b *BitmapCache) tileIndex(x, y int) (tileIdx int, bit uint) {
	tx, ty := x/tileSize, y/tileSize
	lx, ly := x%tileSize, y%tileSize
	return ty*b.tilesX + tx, uint(ly*tileSize + lx)
}

func (b *BitmapCache) setEmpty(x, y int) {
	ti, bit := b.tileIndex(x, y)
	b.tiles[ti] |= 1 << bit
}

// IsEmpty reports whether (x,y) was AIR as of the last Rebuild. Out-of-
// bounds coordinates report not-empty (mirrors wall-like boundary
// behavior for cache consumers).
func (b *BitmapCache) IsEmpty(x, y int) bool {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return false
	}
	ti, bit := b.tileIndex(x, y)
	return b.tiles[ti]&(1<<bit) != 0
}

// Neighborhood3x3 packs both the "value" (is-empty) and "valid"
// (in-bounds) bit for each of the 9 cells in a 3x3 block into two 9-bit
// fields, ordered row-major starting at the top-left corner (bit 0) with
// the query point at bit 4 (spec §3.4: 18-bit record).
type Neighborhood3x3 struct {
	Value uint16 // 9 bits: 1 = empty
	Valid uint16 // 9 bits: 1 = in-bounds
}

// At returns the (value, valid) pair for neighbor offset (dx,dy) in
// [-1,1]^2.
func (n Neighborhood3x3) At(dx, dy int) (value, valid bool) {
	bit := uint((dy+1)*3 + (dx + 1))
	return n.Value&(1<<bit) != 0, n.Valid&(1<<bit) != 0
}

// EmptyNeighborhood3x3 returns the cached empty/valid neighborhood of
// (x,y).
func (b *BitmapCache) EmptyNeighborhood3x3(x, y int) Neighborhood3x3 {
	var n Neighborhood3x3
	bit := uint(0)
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			nx, ny := x+dx, y+dy
			if nx >= 0 && nx < b.width && ny >= 0 && ny < b.height {
				n.Valid |= 1 << bit
				if b.IsEmpty(nx, ny) {
					n.Value |= 1 << bit
				}
			}
			bit++
		}
	}
	return n
}

// MaterialNeighborhood3x3 is the 9x4-bit packed variant carrying
// material ids (spec §3.4). It is computed directly from the grid (not
// from the empty bitmap) since it needs the full material id, not just
// an empty/non-empty bit; out-of-bounds neighbors read as WALL so
// boundary-aware consumers treat the grid edge like a wall by default.
func MaterialNeighborhood3x3(g *Grid, x, y int) (packed uint64, valid uint16) {
	bit := uint(0)
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			nx, ny := x+dx, y+dy
			var m material.Type = material.Wall
			if g.InBounds(nx, ny) {
				valid |= 1 << bit
				m = g.CellAt(nx, ny).Material
			}
			packed |= uint64(m) << (bit * 4)
			bit++
		}
	}
	return packed, valid
}

// MaterialAt unpacks the material id for offset (dx,dy) from a value
// returned by MaterialNeighborhood3x3.
func MaterialAt(packed uint64, dx, dy int) material.Type {
	bit := uint((dy+1)*3 + (dx + 1))
	return material.Type((packed >> (bit * 4)) & 0xF)
}
