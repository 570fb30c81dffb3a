package grid

import (
	"testing"

	"github.com/pthm-cable/granule/material"
)

func TestBitmapCacheMatchesDirectAccess(t *testing.T) {
	g := New(10, 10)
	g.Replace(3, 3, material.Dirt, 0.5)
	g.Replace(4, 4, material.Water, 0.9)

	cache := NewBitmapCache(10, 10)
	cache.Rebuild(g)

	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			direct := g.CellAt(x, y).IsEmpty()
			if got := cache.IsEmpty(x, y); got != direct {
				t.Fatalf("cache/direct mismatch at (%d,%d): cache=%v direct=%v", x, y, got, direct)
			}
		}
	}
}

func TestEmptyNeighborhood3x3ValidityAtEdge(t *testing.T) {
	g := New(4, 4)
	cache := NewBitmapCache(4, 4)
	cache.Rebuild(g)

	n := cache.EmptyNeighborhood3x3(0, 0)
	// Top-left corner: only 4 of 9 neighbors are in-bounds.
	validCount := 0
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			_, valid := n.At(dx, dy)
			if valid {
				validCount++
			}
		}
	}
	if validCount != 4 {
		t.Fatalf("expected 4 valid neighbors at corner, got %d", validCount)
	}
}

func TestMaterialNeighborhoodPacksAndUnpacks(t *testing.T) {
	g := New(5, 5)
	g.Replace(2, 2, material.Water, 1.0)
	g.Replace(3, 2, material.Metal, 1.0)
	g.Replace(2, 1, material.Sand, 1.0)

	packed, valid := MaterialNeighborhood3x3(g, 2, 2)
	if valid&(1<<4) == 0 {
		t.Fatalf("expected center to be valid")
	}
	if got := MaterialAt(packed, 0, 0); got != material.Water {
		t.Fatalf("expected center material Water, got %v", got)
	}
	if got := MaterialAt(packed, 1, 0); got != material.Metal {
		t.Fatalf("expected east neighbor Metal, got %v", got)
	}
	if got := MaterialAt(packed, 0, -1); got != material.Sand {
		t.Fatalf("expected north neighbor Sand, got %v", got)
	}
}
