// Command granule runs the cellular-automaton physics core headlessly
// for a fixed number of ticks, optionally streaming per-row/per-tick
// telemetry and a final lossless JSON snapshot. Grounded on
// cmd/optimize/main.go's flag-parsing and config-loading conventions.
//
// Usage: go run ./cmd/granule -config world.yaml -ticks 600 -output run/
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/pthm-cable/granule/config"
	"github.com/pthm-cable/granule/scenario"
	"github.com/pthm-cable/granule/serialize"
	"github.com/pthm-cable/granule/sim"
	"github.com/pthm-cable/granule/telemetry"
)

func main() {
	configPath := flag.String("config", "", "Settings YAML file (empty = use embedded defaults)")
	ticks := flag.Int("ticks", 600, "Number of ticks to run")
	outputDir := flag.String("output", "", "Output directory for telemetry CSVs and the final snapshot (empty = disabled)")
	debugRow := flag.Int("debug-row", -1, "Grid row to stream per-tick mass telemetry for (-1 = disabled)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("granule: loading config: %v", err)
	}

	evt := scenario.NewConfigurable(cfg.Scenario)
	world := sim.New(cfg.Grid.Width, cfg.Grid.Height, evt, cfg.Engine.ExecutorSeed, cfg.Engine.PerfWindowSize)
	world.Settings = cfg.Physics

	out, err := telemetry.NewOutputManager(*outputDir)
	if err != nil {
		log.Fatalf("granule: opening output directory: %v", err)
	}
	defer out.Close()

	dt := 1.0 / cfg.Engine.TickHz
	start := time.Now()

	for i := 0; i < *ticks; i++ {
		world.Tick(dt)

		if *debugRow >= 0 {
			if err := out.WriteRowDebug(world.RowDebugRecord(*debugRow)); err != nil {
				log.Fatalf("granule: writing row debug: %v", err)
			}
		}
	}

	elapsed := time.Since(start)
	slog.Info("run complete",
		"ticks", *ticks,
		"elapsed", elapsed,
		"ticks_per_sec", float64(*ticks)/elapsed.Seconds(),
		"total_mass", world.TotalMass(),
	)

	world.DumpTimers(os.Stdout)

	if *outputDir != "" {
		data, err := serialize.DumpJSON(world)
		if err != nil {
			log.Fatalf("granule: dumping final snapshot: %v", err)
		}
		snapshotPath := filepath.Join(*outputDir, "snapshot.json")
		if err := os.WriteFile(snapshotPath, data, 0644); err != nil {
			log.Fatalf("granule: writing snapshot: %v", err)
		}
		fmt.Printf("snapshot written to %s\n", snapshotPath)
	}
}
