package serialize

import (
	"testing"

	"github.com/pthm-cable/granule/material"
	"github.com/pthm-cable/granule/scenario"
	"github.com/pthm-cable/granule/sim"
)

func TestDumpJSONRestoreJSONRoundTripsByteIdentical(t *testing.T) {
	evt := scenario.NewConfigurable(scenario.Config{Kind: scenario.Empty, Seed: 1})
	w := sim.New(6, 5, evt, 42, 60)
	w.Grid.Replace(2, 2, material.Water, 0.75)
	w.Grid.At(2, 2).OrganismID = 9

	first, err := DumpJSON(w)
	if err != nil {
		t.Fatalf("DumpJSON: %v", err)
	}

	restored, err := RestoreJSON(first, evt, 42, 60)
	if err != nil {
		t.Fatalf("RestoreJSON: %v", err)
	}

	second, err := DumpJSON(restored)
	if err != nil {
		t.Fatalf("DumpJSON (second): %v", err)
	}

	if string(first) != string(second) {
		t.Fatalf("expected byte-identical round trip, got:\nfirst:  %s\nsecond: %s", first, second)
	}
}

func TestRestoreJSONRejectsDimensionMismatch(t *testing.T) {
	evt := scenario.NewConfigurable(scenario.Config{Kind: scenario.Empty, Seed: 1})
	_, err := RestoreJSON([]byte(`{"width":3,"height":3,"cells":[]}`), evt, 1, 60)
	if err == nil {
		t.Fatalf("expected error for mismatched cell count")
	}
}
