package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/granule/material"
)

// RowDebugRecord is the per-row debug CSV record of spec §6.5's
// "per-row debug info" query, one fixed column per known material so a
// spreadsheet or plotting tool can read a time series directly.
type RowDebugRecord struct {
	Step      uint64  `csv:"step"`
	Row       int     `csv:"row"`
	TotalMass float64 `csv:"total_mass"`
	AirMass   float64 `csv:"air_mass"`
	DirtMass  float64 `csv:"dirt_mass"`
	WaterMass float64 `csv:"water_mass"`
	WoodMass  float64 `csv:"wood_mass"`
	SandMass  float64 `csv:"sand_mass"`
	MetalMass float64 `csv:"metal_mass"`
	LeafMass  float64 `csv:"leaf_mass"`
}

// NewRowDebugRecord builds a RowDebugRecord from a per-material mass
// breakdown, the shape sim.World.RowStats produces.
func NewRowDebugRecord(step uint64, row int, totalMass float64, byMaterial map[material.Type]float64) RowDebugRecord {
	return RowDebugRecord{
		Step:      step,
		Row:       row,
		TotalMass: totalMass,
		AirMass:   byMaterial[material.Air],
		DirtMass:  byMaterial[material.Dirt],
		WaterMass: byMaterial[material.Water],
		WoodMass:  byMaterial[material.Wood],
		SandMass:  byMaterial[material.Sand],
		MetalMass: byMaterial[material.Metal],
		LeafMass:  byMaterial[material.Leaf],
	}
}

// OutputManager handles structured headless-run output: a per-row mass
// breakdown CSV and a per-tick perf CSV, grounded on
// telemetry/output.go's OutputManager (CSV marshal-on-demand via
// gocsv, headers written once then appended) narrowed to the two
// record kinds this core's query interface actually produces (spec
// §6.5); the teacher's ecosystem-specific bookmark/hall-of-fame
// streams have no equivalent here (out of scope per spec §1).
type OutputManager struct {
	dir      string
	rowFile  *os.File
	perfFile *os.File

	rowHeaderWritten  bool
	perfHeaderWritten bool
}

// NewOutputManager creates the output directory and opens its two CSV
// sinks. Returns nil (a disabled, no-op manager) if dir is empty.
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("telemetry: creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}

	rowPath := filepath.Join(dir, "rows.csv")
	f, err := os.Create(rowPath)
	if err != nil {
		return nil, fmt.Errorf("telemetry: creating rows.csv: %w", err)
	}
	om.rowFile = f

	perfPath := filepath.Join(dir, "perf.csv")
	f, err = os.Create(perfPath)
	if err != nil {
		om.rowFile.Close()
		return nil, fmt.Errorf("telemetry: creating perf.csv: %w", err)
	}
	om.perfFile = f

	return om, nil
}

// WriteRowDebug appends a row-debug record to rows.csv.
func (om *OutputManager) WriteRowDebug(rec RowDebugRecord) error {
	if om == nil {
		return nil
	}
	records := []RowDebugRecord{rec}
	if !om.rowHeaderWritten {
		if err := gocsv.Marshal(records, om.rowFile); err != nil {
			return fmt.Errorf("telemetry: writing row debug: %w", err)
		}
		om.rowHeaderWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, om.rowFile); err != nil {
		return fmt.Errorf("telemetry: writing row debug: %w", err)
	}
	return nil
}

// WritePerf appends a performance stats record to perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats, windowEnd int32) error {
	if om == nil {
		return nil
	}
	records := []PerfStatsCSV{stats.ToCSV(windowEnd)}
	if !om.perfHeaderWritten {
		if err := gocsv.Marshal(records, om.perfFile); err != nil {
			return fmt.Errorf("telemetry: writing perf: %w", err)
		}
		om.perfHeaderWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, om.perfFile); err != nil {
		return fmt.Errorf("telemetry: writing perf: %w", err)
	}
	return nil
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close flushes and closes both output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}
	var firstErr error
	if om.rowFile != nil {
		if err := om.rowFile.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if om.perfFile != nil {
		if err := om.perfFile.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
