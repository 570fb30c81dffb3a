package telemetry

import (
	"time"
)

// Phase names for the frame driver's per-tick order (spec §4.12).
const (
	PhaseEventGenerator   = "event_generator"
	PhaseBitmapCache      = "bitmap_cache"
	PhaseSupport          = "support"
	PhaseForces           = "forces"
	PhaseVelocity         = "velocity"
	PhaseTransferPlan     = "transfer_plan"
	PhaseMoveExecute      = "move_execute"
	PhaseHydrostatic      = "hydrostatic"
	PhaseDynamicPressure  = "dynamic_pressure"
	PhaseDiffusion        = "diffusion"
	PhaseDecay            = "decay"
)

// PerfSample holds timing data for a single tick.
type PerfSample struct {
	TickDuration time.Duration
	Phases       map[string]time.Duration
}

// PerfCollector tracks performance metrics over a rolling window.
type PerfCollector struct {
	windowSize    int
	samples       []PerfSample
	writeIndex    int
	sampleCount   int
	currentPhases map[string]time.Duration
	tickStart     time.Time
	phaseStart    time.Time
	lastPhase     string
}

// NewPerfCollector creates a new performance collector.
// windowSize: number of ticks to average over (e.g., 60 for 1 second at 60fps).
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{
		windowSize:    windowSize,
		samples:       make([]PerfSample, windowSize),
		currentPhases: make(map[string]time.Duration),
	}
}

// StartTick begins timing a new simulation tick.
func (p *PerfCollector) StartTick() {
	p.tickStart = time.Now()
	p.currentPhases = make(map[string]time.Duration)
	p.lastPhase = ""
}

// StartPhase begins timing a specific phase.
func (p *PerfCollector) StartPhase(phase string) {
	now := time.Now()
	// End previous phase if any
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}
	p.phaseStart = now
	p.lastPhase = phase
}

// EndTick finishes timing the current tick and records the sample.
func (p *PerfCollector) EndTick() {
	now := time.Now()
	// End final phase
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}

	sample := PerfSample{
		TickDuration: now.Sub(p.tickStart),
		Phases:       p.currentPhases,
	}

	p.samples[p.writeIndex] = sample
	p.writeIndex = (p.writeIndex + 1) % p.windowSize
	if p.sampleCount < p.windowSize {
		p.sampleCount++
	}
}

// PerfStats holds aggregated performance statistics.
type PerfStats struct {
	// Tick timing
	AvgTickDuration time.Duration
	MinTickDuration time.Duration
	MaxTickDuration time.Duration

	// Phase breakdown (average durations)
	PhaseAvg map[string]time.Duration

	// Phase percentages of total tick time
	PhasePct map[string]float64

	// Throughput
	TicksPerSecond float64
}

// Stats computes aggregated statistics over the current window.
func (p *PerfCollector) Stats() PerfStats {
	if p.sampleCount == 0 {
		return PerfStats{
			PhaseAvg: make(map[string]time.Duration),
			PhasePct: make(map[string]float64),
		}
	}

	var totalTick time.Duration
	var minTick, maxTick time.Duration
	phaseSum := make(map[string]time.Duration)

	// Iterate over valid samples
	for i := 0; i < p.sampleCount; i++ {
		s := p.samples[i]
		totalTick += s.TickDuration

		if i == 0 || s.TickDuration < minTick {
			minTick = s.TickDuration
		}
		if s.TickDuration > maxTick {
			maxTick = s.TickDuration
		}

		for phase, dur := range s.Phases {
			phaseSum[phase] += dur
		}
	}

	avgTick := totalTick / time.Duration(p.sampleCount)

	// Calculate phase averages and percentages
	phaseAvg := make(map[string]time.Duration)
	phasePct := make(map[string]float64)
	for phase, sum := range phaseSum {
		phaseAvg[phase] = sum / time.Duration(p.sampleCount)
		if avgTick > 0 {
			phasePct[phase] = float64(phaseAvg[phase]) / float64(avgTick) * 100
		}
	}

	// Calculate throughput
	var ticksPerSec float64
	if avgTick > 0 {
		ticksPerSec = float64(time.Second) / float64(avgTick)
	}

	return PerfStats{
		AvgTickDuration: avgTick,
		MinTickDuration: minTick,
		MaxTickDuration: maxTick,
		PhaseAvg:        phaseAvg,
		PhasePct:        phasePct,
		TicksPerSecond:  ticksPerSec,
	}
}

// PerfStatsCSV is a flat struct for CSV export of performance stats.
type PerfStatsCSV struct {
	WindowEnd         int32   `csv:"window_end"`
	AvgTickUS         int64   `csv:"avg_tick_us"`
	MinTickUS         int64   `csv:"min_tick_us"`
	MaxTickUS         int64   `csv:"max_tick_us"`
	TicksPerSec       float64 `csv:"ticks_per_sec"`
	EventGeneratorPct float64 `csv:"event_generator_pct"`
	BitmapCachePct    float64 `csv:"bitmap_cache_pct"`
	SupportPct        float64 `csv:"support_pct"`
	ForcesPct         float64 `csv:"forces_pct"`
	VelocityPct       float64 `csv:"velocity_pct"`
	TransferPlanPct   float64 `csv:"transfer_plan_pct"`
	MoveExecutePct    float64 `csv:"move_execute_pct"`
	HydrostaticPct    float64 `csv:"hydrostatic_pct"`
	DynamicPressurePct float64 `csv:"dynamic_pressure_pct"`
	DiffusionPct      float64 `csv:"diffusion_pct"`
	DecayPct          float64 `csv:"decay_pct"`
}

// ToCSV converts PerfStats to a flat CSV-friendly struct.
func (s PerfStats) ToCSV(windowEnd int32) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:          windowEnd,
		AvgTickUS:          s.AvgTickDuration.Microseconds(),
		MinTickUS:          s.MinTickDuration.Microseconds(),
		MaxTickUS:          s.MaxTickDuration.Microseconds(),
		TicksPerSec:        s.TicksPerSecond,
		EventGeneratorPct:  s.PhasePct[PhaseEventGenerator],
		BitmapCachePct:     s.PhasePct[PhaseBitmapCache],
		SupportPct:         s.PhasePct[PhaseSupport],
		ForcesPct:          s.PhasePct[PhaseForces],
		VelocityPct:        s.PhasePct[PhaseVelocity],
		TransferPlanPct:    s.PhasePct[PhaseTransferPlan],
		MoveExecutePct:     s.PhasePct[PhaseMoveExecute],
		HydrostaticPct:     s.PhasePct[PhaseHydrostatic],
		DynamicPressurePct: s.PhasePct[PhaseDynamicPressure],
		DiffusionPct:       s.PhasePct[PhaseDiffusion],
		DecayPct:           s.PhasePct[PhaseDecay],
	}
}
