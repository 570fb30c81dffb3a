// Package serialize implements the lossless JSON dump/restore and the
// compact binary render-frame codec of spec §6.4, plus a sparse
// organism overlay. Grounded on telemetry/output.go's marshal-on-demand
// pattern, adapted from CSV rows to JSON documents and packed binary
// cell records.
package serialize

import (
	"encoding/json"
	"fmt"

	"github.com/pthm-cable/granule/grid"
	"github.com/pthm-cable/granule/material"
	"github.com/pthm-cable/granule/scenario"
	"github.com/pthm-cable/granule/sim"
)

// cellDoc is the lossless JSON representation of a single cell.
type cellDoc struct {
	Material           material.Type `json:"material"`
	Fill               float64       `json:"fill"`
	ComX               float64       `json:"com_x"`
	ComY               float64       `json:"com_y"`
	VelX               float64       `json:"vel_x"`
	VelY               float64       `json:"vel_y"`
	HydrostaticPressure float64      `json:"p_hydro"`
	DynamicPressure     float64      `json:"p_dynamic"`
	GradX              float64       `json:"grad_x"`
	GradY              float64       `json:"grad_y"`
	HasAnySupport      bool          `json:"has_any_support"`
	HasVerticalSupport bool          `json:"has_vertical_support"`
	OrganismID         uint32        `json:"organism_id"`
}

// Doc is the full lossless dump of a world: dimensions, every cell,
// and the settings record in force at dump time (spec §6.4).
type Doc struct {
	Width    int          `json:"width"`
	Height   int          `json:"height"`
	Step     uint64       `json:"step"`
	Settings sim.Settings `json:"settings"`
	Cells    []cellDoc    `json:"cells"`
}

// DumpJSON renders the full state of w as a lossless JSON document.
func DumpJSON(w *sim.World) ([]byte, error) {
	width, height := w.Dimensions()
	doc := Doc{
		Width:    width,
		Height:   height,
		Step:     w.Step(),
		Settings: w.Settings,
		Cells:    make([]cellDoc, 0, width*height),
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := w.Grid.CellAt(x, y)
			doc.Cells = append(doc.Cells, cellDoc{
				Material:            c.Material,
				Fill:                c.Fill,
				ComX:                c.COM.X,
				ComY:                c.COM.Y,
				VelX:                c.Velocity.X,
				VelY:                c.Velocity.Y,
				HydrostaticPressure: c.HydrostaticPressure,
				DynamicPressure:     c.DynamicPressure,
				GradX:               c.PressureGradient.X,
				GradY:               c.PressureGradient.Y,
				HasAnySupport:       c.HasAnySupport,
				HasVerticalSupport:  c.HasVerticalSupport,
				OrganismID:          c.OrganismID,
			})
		}
	}
	return json.Marshal(doc)
}

// RestoreJSON rebuilds a *sim.World from a document produced by
// DumpJSON. The returned world shares no state with the one it was
// dumped from.
func RestoreJSON(data []byte, evt scenario.EventGenerator, executorSeed int64, perfWindow int) (*sim.World, error) {
	var doc Doc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("serialize: unmarshaling doc: %w", err)
	}
	if doc.Width <= 0 || doc.Height <= 0 {
		return nil, fmt.Errorf("serialize: invalid dimensions %dx%d", doc.Width, doc.Height)
	}
	if len(doc.Cells) != doc.Width*doc.Height {
		return nil, fmt.Errorf("serialize: cell count %d does not match %dx%d", len(doc.Cells), doc.Width, doc.Height)
	}

	w := sim.NewBlank(doc.Width, doc.Height, evt, executorSeed, perfWindow)
	w.Settings = doc.Settings
	w.SetStep(doc.Step)

	for i, cd := range doc.Cells {
		x, y := i%doc.Width, i/doc.Width
		c := w.Grid.At(x, y)
		c.Material = cd.Material
		c.Fill = cd.Fill
		c.COM = grid.Vec2{X: cd.ComX, Y: cd.ComY}
		c.Velocity = grid.Vec2{X: cd.VelX, Y: cd.VelY}
		c.HydrostaticPressure = cd.HydrostaticPressure
		c.DynamicPressure = cd.DynamicPressure
		c.PressureGradient = grid.Vec2{X: cd.GradX, Y: cd.GradY}
		c.HasAnySupport = cd.HasAnySupport
		c.HasVerticalSupport = cd.HasVerticalSupport
		c.OrganismID = cd.OrganismID
	}
	return w, nil
}
