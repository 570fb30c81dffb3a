package serialize

import (
	"encoding/json"
	"fmt"

	"github.com/pthm-cable/granule/sim"
)

// OrganismOverlay is the sparse organism overlay of spec §6.4: for
// every organism id present on the grid, the flat row-major cell
// indices it tags. Cells with organism_id 0 (none) are omitted.
type OrganismOverlay struct {
	Width   int                `json:"width"`
	Height  int                `json:"height"`
	Members map[uint32][]int   `json:"members"`
}

// DumpOrganismOverlay scans w's grid once and groups every tagged
// cell's flat index under its organism id.
func DumpOrganismOverlay(w *sim.World) OrganismOverlay {
	width, height := w.Dimensions()
	overlay := OrganismOverlay{Width: width, Height: height, Members: make(map[uint32][]int)}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := w.Grid.CellAt(x, y)
			if c.OrganismID == 0 {
				continue
			}
			idx := y*width + x
			overlay.Members[c.OrganismID] = append(overlay.Members[c.OrganismID], idx)
		}
	}
	return overlay
}

// ApplyOrganismOverlay writes overlay's organism_id tags back onto w's
// grid, the counterpart used when restoring a dumped world alongside
// its JSON cell document (which does not itself require organism data
// to round-trip, since OrganismID already rides in cellDoc — this
// entry point exists for collaborators that transmit the overlay
// separately, e.g. over a narrower channel than the full JSON dump).
func ApplyOrganismOverlay(w *sim.World, overlay OrganismOverlay) error {
	width, height := w.Dimensions()
	if overlay.Width != width || overlay.Height != height {
		return fmt.Errorf("serialize: organism overlay size %dx%d does not match world %dx%d",
			overlay.Width, overlay.Height, width, height)
	}
	for id, indices := range overlay.Members {
		for _, idx := range indices {
			if idx < 0 || idx >= width*height {
				return fmt.Errorf("serialize: organism overlay index %d out of range for %dx%d world", idx, width, height)
			}
			x, y := idx%width, idx/width
			w.Grid.At(x, y).OrganismID = id
		}
	}
	return nil
}

// DumpOrganismOverlayJSON renders overlay as a JSON document (spec
// §6.4's serialization boundary never panics; decode errors propagate
// via error, never a panic, per spec §7.2).
func DumpOrganismOverlayJSON(overlay OrganismOverlay) ([]byte, error) {
	return json.Marshal(overlay)
}

// RestoreOrganismOverlayJSON parses a JSON document produced by
// DumpOrganismOverlayJSON.
func RestoreOrganismOverlayJSON(data []byte) (OrganismOverlay, error) {
	var overlay OrganismOverlay
	if err := json.Unmarshal(data, &overlay); err != nil {
		return OrganismOverlay{}, fmt.Errorf("serialize: unmarshaling organism overlay: %w", err)
	}
	return overlay, nil
}
