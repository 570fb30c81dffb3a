package grid

import (
	"testing"

	"github.com/pthm-cable/granule/material"
)

func TestBottomRowAlwaysVerticallySupported(t *testing.T) {
	g := New(5, 5)
	reg := material.NewRegistry()
	g.Replace(2, 4, material.Dirt, 1.0)
	AnalyzeSupport(g, nil, reg)
	if !g.At(2, 4).HasVerticalSupport {
		t.Fatal("expected bottom row cell to be vertically supported")
	}
}

func TestVerticalSupportChainBreaksOnGap(t *testing.T) {
	g := New(3, 10)
	reg := material.NewRegistry()
	// Stack of dirt resting on the floor, with a gap further up that
	// exceeds MaxVerticalSupportDistance above anything solid.
	g.Replace(1, 9, material.Dirt, 1.0)
	g.Replace(1, 0, material.Dirt, 1.0) // isolated, 9 rows of air below it
	AnalyzeSupport(g, nil, reg)
	if !g.At(1, 9).HasVerticalSupport {
		t.Fatal("expected floor-resting cell to be supported")
	}
	if g.At(1, 0).HasVerticalSupport {
		t.Fatal("expected isolated cell far from the floor to be unsupported")
	}
}

func TestVerticalSupportPropagatesThroughShortStack(t *testing.T) {
	g := New(3, 10)
	reg := material.NewRegistry()
	for y := 5; y <= 9; y++ {
		g.Replace(1, y, material.Dirt, 1.0)
	}
	AnalyzeSupport(g, nil, reg)
	for y := 5; y <= 9; y++ {
		if !g.At(1, y).HasVerticalSupport {
			t.Fatalf("expected cell at y=%d in a floor-connected stack to be supported", y)
		}
	}
}

func TestCacheToggleAgreesWithDirectAccess(t *testing.T) {
	g := New(8, 8)
	reg := material.NewRegistry()
	g.Replace(3, 3, material.Sand, 1.0)
	g.Replace(3, 4, material.Sand, 1.0)
	g.Replace(3, 5, material.Wall, 1.0)

	cache := NewBitmapCache(8, 8)
	cache.Rebuild(g)

	AnalyzeSupport(g, cache, reg)
	withCache := make([]bool, 0, 64)
	for i := range g.Cells() {
		withCache = append(withCache, g.Cells()[i].HasVerticalSupport)
	}

	// Reset and recompute without the cache.
	g2 := New(8, 8)
	g2.Replace(3, 3, material.Sand, 1.0)
	g2.Replace(3, 4, material.Sand, 1.0)
	g2.Replace(3, 5, material.Wall, 1.0)
	AnalyzeSupport(g2, nil, reg)

	for i := range g2.Cells() {
		if withCache[i] != g2.Cells()[i].HasVerticalSupport {
			t.Fatalf("cache toggle changed vertical support outcome at cell %d", i)
		}
	}
}

func TestStructuralSupportWallAndBottomEdge(t *testing.T) {
	g := New(5, 5)
	reg := material.NewRegistry()
	g.Replace(2, 2, material.Wall, 1.0)
	g.Replace(2, 4, material.Dirt, 1.0)
	AnalyzeSupport(g, nil, reg)
	if !g.At(2, 2).HasAnySupport {
		t.Fatal("expected wall cell to have structural support")
	}
	if !g.At(2, 4).HasAnySupport {
		t.Fatal("expected bottom-edge cell to have structural support")
	}
}

func TestStructuralSupportHighDensityNeighbor(t *testing.T) {
	g := New(5, 5)
	reg := material.NewRegistry()
	g.Replace(2, 1, material.Metal, 1.0) // density 7.8 > threshold
	g.Replace(2, 1, material.Metal, 1.0)
	g.Replace(2, 0, material.Dirt, 1.0)
	AnalyzeSupport(g, nil, reg)
	if !g.At(2, 0).HasAnySupport {
		t.Fatal("expected dirt adjacent to dense metal to have structural support")
	}
}

func TestWallsDoNotSupportFluids(t *testing.T) {
	g := New(5, 5)
	reg := material.NewRegistry()
	g.Replace(2, 0, material.Wall, 1.0)
	g.Replace(2, 1, material.Water, 1.0) // floating water touching a wall, far from floor
	AnalyzeSupport(g, nil, reg)
	if g.At(2, 1).HasAnySupport {
		t.Fatal("expected wall to not confer structural support to a fluid")
	}
}

func TestHorizontalSupportRequiresDensityAndAdhesion(t *testing.T) {
	// Sand (adhesion 0.1) next to dense Metal (adhesion 0.1): density
	// clears the threshold but the geometric-mean adhesion (0.1) does
	// not clear StrongAdhesionThreshold (0.5), so no horizontal support.
	g := New(5, 5)
	reg := material.NewRegistry()
	g.Replace(2, 2, material.Sand, 1.0)
	g.Replace(3, 2, material.Metal, 1.0)
	if HorizontalSupport(g, 2, 2, reg) {
		t.Fatal("expected low-adhesion pair to lack horizontal support despite high density")
	}
}

func TestHorizontalSupportFalseWithoutDenseNeighbor(t *testing.T) {
	g := New(5, 5)
	reg := material.NewRegistry()
	g.Replace(2, 2, material.Water, 1.0)
	g.Replace(3, 2, material.Water, 1.0) // same material, density below threshold
	if HorizontalSupport(g, 2, 2, reg) {
		t.Fatal("expected no horizontal support without a high-density neighbor")
	}
}
