package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/granule/material"
)

func TestNewOutputManagerEmptyDirIsNoop(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil {
		t.Fatalf("NewOutputManager(\"\"): %v", err)
	}
	if om != nil {
		t.Fatalf("expected nil manager for empty dir")
	}
	// All methods must be safe no-ops on a nil manager.
	if err := om.WriteRowDebug(RowDebugRecord{}); err != nil {
		t.Fatalf("WriteRowDebug on nil manager: %v", err)
	}
	if err := om.WritePerf(PerfStats{}, 0); err != nil {
		t.Fatalf("WritePerf on nil manager: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Fatalf("Close on nil manager: %v", err)
	}
}

func TestOutputManagerWritesRowsAndPerf(t *testing.T) {
	dir := t.TempDir()
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager: %v", err)
	}

	rec := NewRowDebugRecord(7, 3, 12.5, map[material.Type]float64{
		material.Water: 10.0,
		material.Dirt:  2.5,
	})
	if err := om.WriteRowDebug(rec); err != nil {
		t.Fatalf("WriteRowDebug: %v", err)
	}
	if err := om.WritePerf(PerfStats{TicksPerSecond: 60}, 1); err != nil {
		t.Fatalf("WritePerf: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	rowsData, err := os.ReadFile(filepath.Join(dir, "rows.csv"))
	if err != nil {
		t.Fatalf("reading rows.csv: %v", err)
	}
	if !strings.Contains(string(rowsData), "water_mass") {
		t.Fatalf("expected rows.csv header to include water_mass, got %q", rowsData)
	}

	perfData, err := os.ReadFile(filepath.Join(dir, "perf.csv"))
	if err != nil {
		t.Fatalf("reading perf.csv: %v", err)
	}
	if !strings.Contains(string(perfData), "ticks_per_sec") {
		t.Fatalf("expected perf.csv header to include ticks_per_sec, got %q", perfData)
	}
}
