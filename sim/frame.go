package sim

import (
	"math/rand"

	"github.com/pthm-cable/granule/executor"
	"github.com/pthm-cable/granule/forces"
	"github.com/pthm-cable/granule/grid"
	"github.com/pthm-cable/granule/material"
	"github.com/pthm-cable/granule/pressure"
	"github.com/pthm-cable/granule/scenario"
	"github.com/pthm-cable/granule/telemetry"
	"github.com/pthm-cable/granule/transfer"
	"github.com/pthm-cable/granule/velocity"
)

// World owns a grid, its derived caches, and the RNG driving the move
// executor. It is the frame driver of spec §4.12: a single Tick call
// runs the event generator, rebuilds caches, then the full force →
// velocity → transfer → collision → pressure pipeline in order.
type World struct {
	Grid     *grid.Grid
	Registry *material.Registry
	Settings Settings
	Events   scenario.EventGenerator

	cache *grid.BitmapCache
	rng   *rand.Rand
	perf  *telemetry.PerfCollector
	step  uint64
}

// New builds a World over a freshly allocated grid and installs evt as
// its event generator. seed drives the move executor's shuffle/
// fragmentation RNG, independent of any RNG the event generator keeps
// for itself (spec §9).
func New(width, height int, evt scenario.EventGenerator, seed int64, perfWindow int) *World {
	w := NewBlank(width, height, evt, seed, perfWindow)
	evt.Setup(w.Grid, w.Registry)
	return w
}

// NewBlank builds a World the same way New does but skips the event
// generator's Setup call, leaving every cell at its zero value. Used by
// serialize.RestoreJSON, which overwrites every cell itself immediately
// after construction.
func NewBlank(width, height int, evt scenario.EventGenerator, seed int64, perfWindow int) *World {
	return &World{
		Grid:     grid.New(width, height),
		Registry: material.NewRegistry(),
		Settings: Default(),
		Events:   evt,
		cache:    grid.NewBitmapCache(width, height),
		rng:      rand.New(rand.NewSource(seed)),
		perf:     telemetry.NewPerfCollector(perfWindow),
	}
}

// SetStep overrides the tick counter, used by serialize.RestoreJSON to
// resume at the dumped step rather than restarting at 0.
func (w *World) SetStep(step uint64) { w.step = step }

// Tick advances the simulation by one frame (spec §4.12's fixed phase
// order). dt is the base timestep; Settings.Timescale scales it before
// it reaches the velocity integrator and transfer planner.
func (w *World) Tick(dt float64) {
	w.perf.StartTick()
	scaledDT := dt * w.Settings.Timescale

	w.perf.StartPhase(telemetry.PhaseEventGenerator)
	w.Events.Tick(w.Grid, w.Registry, scaledDT, w.step)

	w.perf.StartPhase(telemetry.PhaseBitmapCache)
	w.cache.Rebuild(w.Grid)

	w.perf.StartPhase(telemetry.PhaseSupport)
	grid.AnalyzeSupport(w.Grid, w.cache, w.Registry)

	w.perf.StartPhase(telemetry.PhaseForces)
	forces.Accumulate(w.Grid, w.Registry, w.forceSettings())

	w.perf.StartPhase(telemetry.PhaseVelocity)
	velocity.Integrate(w.Grid, w.Registry, w.velocitySettings(), scaledDT)

	w.perf.StartPhase(telemetry.PhaseTransferPlan)
	moves := transfer.Plan(w.Grid, w.Registry, scaledDT)

	w.perf.StartPhase(telemetry.PhaseMoveExecute)
	blocked := executor.Execute(w.Grid, w.Registry, w.executorSettings(), moves, w.rng)

	w.perf.StartPhase(telemetry.PhaseHydrostatic)
	pressureSettings := w.pressureSettings()
	pressure.HydrostaticPass(w.Grid, w.Registry, pressureSettings)

	w.perf.StartPhase(telemetry.PhaseDynamicPressure)
	pressure.ProcessBlockedTransfers(w.Grid, w.Registry, pressureSettings, blocked)

	w.perf.StartPhase(telemetry.PhaseDiffusion)
	pressure.Diffuse(w.Grid, w.Registry, pressureSettings)

	w.perf.StartPhase(telemetry.PhaseDecay)
	pressure.Decay(w.Grid, pressureSettings, scaledDT)

	w.perf.EndTick()
	w.step++
}

func (w *World) forceSettings() forces.Settings {
	s := w.Settings
	return forces.Settings{
		Gravity:                  s.Gravity,
		PressureScale:            s.PressureScale,
		CohesionEnabled:          s.CohesionEnabled,
		CohesionStrength:         s.CohesionStrength,
		CohesionResistanceFactor: s.CohesionResistanceFactor,
		CohesionRange:            s.CohesionRange,
		AdhesionEnabled:          s.AdhesionEnabled,
		AdhesionStrength:         s.AdhesionStrength,
		FrictionEnabled:          s.FrictionEnabled,
		FrictionStrength:         s.FrictionStrength,
		AirResistance:            s.AirResistance,
	}
}

func (w *World) velocitySettings() velocity.Settings {
	s := w.Settings
	return velocity.Settings{
		ViscosityEnabled:  s.ViscosityEnabled,
		ViscosityStrength: s.ViscosityStrength,
		FrictionStrength:  s.FrictionStrength,
	}
}

func (w *World) executorSettings() executor.Settings {
	return executor.Settings{
		SwapEnabled:   w.Settings.SwapEnabled,
		FragmentCount: w.Settings.FragmentationCount,
	}
}

func (w *World) pressureSettings() pressure.Settings {
	s := w.Settings
	return pressure.Settings{
		HydrostaticStrength: s.PressureHydrostaticStrength,
		DynamicStrength:     s.PressureDynamicStrength,
		DiffusionStrength:   s.PressureDiffusionStrength,
		DiffusionIterations: s.PressureDiffusionIterations,
		DecayRate:           s.PressureDecayRate,
		Gravity:             s.Gravity,
		UseEightNeighborhood: s.PressureEightNeighborhood,
	}
}
