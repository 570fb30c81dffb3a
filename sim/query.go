package sim

import (
	"fmt"
	"io"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/granule/grid"
	"github.com/pthm-cable/granule/material"
	"github.com/pthm-cable/granule/telemetry"
)

// CellView is the read-only snapshot of §6.5's "cell's content" query,
// flattening a *grid.Cell into plain values so callers never hold a
// pointer into the live grid.
type CellView struct {
	Material material.Type
	Fill     float64
	COM      grid.Vec2
	Velocity grid.Vec2
	Pressure float64
}

// RowStats is the per-row debug summary of §6.5: total mass and the
// material composition of a single grid row.
type RowStats struct {
	Y            int
	TotalMass    float64
	MaterialMass map[material.Type]float64
}

// TotalMass returns the sum of fill*density over every non-wall cell.
func (w *World) TotalMass() float64 { return w.Grid.TotalMass(w.Registry) }

// Dimensions returns the grid's width and height.
func (w *World) Dimensions() (width, height int) { return w.Grid.Width(), w.Grid.Height() }

// Step returns the number of ticks run so far.
func (w *World) Step() uint64 { return w.step }

// CellAt returns a read-only snapshot of the cell at (x,y).
func (w *World) CellAt(x, y int) CellView {
	c := w.Grid.CellAt(x, y)
	return CellView{
		Material: c.Material,
		Fill:     c.Fill,
		COM:      c.COM,
		Velocity: c.Velocity,
		Pressure: c.Pressure(),
	}
}

// RowStats summarizes row y's mass and material composition, the
// per-row debug info of spec §6.5.
func (w *World) RowStats(y int) RowStats {
	width := w.Grid.Width()
	out := RowStats{Y: y, MaterialMass: make(map[material.Type]float64)}
	for x := 0; x < width; x++ {
		c := w.Grid.CellAt(x, y)
		if c.IsWall() || c.IsEmpty() {
			continue
		}
		mass := c.Fill * w.Registry.Density(c.Material)
		out.TotalMass += mass
		out.MaterialMass[c.Material] += mass
	}
	return out
}

// RowDebugRecord builds the CSV-ready debug record for row y at the
// world's current step, for callers streaming spec §6.5's per-row
// debug info to telemetry.OutputManager.
func (w *World) RowDebugRecord(y int) telemetry.RowDebugRecord {
	stats := w.RowStats(y)
	return telemetry.NewRowDebugRecord(w.step, y, stats.TotalMass, stats.MaterialMass)
}

// ColumnHeightVariance reports the unbiased sample variance (n-1
// denominator) of the fluid column heights across every interior
// column, a scenario-health
// metric for DamBreak/WaterEqualization convergence (does the surface
// flatten out): 0 once the fluid has equalized.
func (w *World) ColumnHeightVariance(mat material.Type) float64 {
	width, height := w.Grid.Width(), w.Grid.Height()
	heights := make([]float64, 0, width)
	for x := 1; x < width-1; x++ {
		h := 0.0
		for y := 1; y < height-1; y++ {
			c := w.Grid.CellAt(x, y)
			if c.Material == mat {
				h += c.Fill
			}
		}
		heights = append(heights, h)
	}
	if len(heights) < 2 {
		return 0
	}
	return stat.Variance(heights, nil)
}

// DumpTimers writes the last window's averaged per-phase timing tree
// to w, sorted slowest-phase-first (spec §6.5).
func (w *World) DumpTimers(out io.Writer) {
	stats := w.perf.Stats()
	fmt.Fprintf(out, "tick avg=%s min=%s max=%s (%.1f/s)\n",
		stats.AvgTickDuration, stats.MinTickDuration, stats.MaxTickDuration, stats.TicksPerSecond)

	type row struct {
		name string
		pct  float64
	}
	rows := make([]row, 0, len(stats.PhaseAvg))
	for name, avg := range stats.PhaseAvg {
		rows = append(rows, row{name: name, pct: stats.PhasePct[name]})
		_ = avg
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].pct > rows[j].pct })
	for _, r := range rows {
		fmt.Fprintf(out, "  %-18s %6.2f%%  %s\n", r.name, r.pct, stats.PhaseAvg[r.name])
	}
}
