// Package sim implements the frame driver of spec §4.12 and the
// runtime-tunable settings/query interfaces of §6.3/§6.5. It is
// grounded on game/game.go's simulationStep() orchestration and
// game/perf.go's PerfStats timer tree.
package sim

// Settings is the single runtime-tunable record of spec §6.3. Every
// field is readable and writable at any time; World.Tick reads them
// fresh on every tick rather than caching a copy.
type Settings struct {
	Gravity       float64 `yaml:"gravity"`
	Elasticity    float64 `yaml:"elasticity"`
	PressureScale float64 `yaml:"pressure_scale"`

	PressureHydrostaticStrength float64 `yaml:"pressure_hydrostatic_strength"`
	PressureDynamicStrength     float64 `yaml:"pressure_dynamic_strength"`
	PressureDiffusionStrength   float64 `yaml:"pressure_diffusion_strength"`
	PressureDiffusionIterations int     `yaml:"pressure_diffusion_iterations"` // >= 1
	PressureDecayRate           float64 `yaml:"pressure_decay_rate"`
	PressureEightNeighborhood   bool    `yaml:"pressure_eight_neighborhood"`

	CohesionEnabled          bool    `yaml:"cohesion_enabled"`
	CohesionStrength         float64 `yaml:"cohesion_strength"`
	CohesionResistanceFactor float64 `yaml:"cohesion_resistance_factor"`
	CohesionRange            int     `yaml:"cohesion_range"`

	AdhesionEnabled  bool    `yaml:"adhesion_enabled"`
	AdhesionStrength float64 `yaml:"adhesion_strength"`

	ViscosityEnabled  bool    `yaml:"viscosity_enabled"`
	ViscosityStrength float64 `yaml:"viscosity_strength"`

	FrictionEnabled  bool    `yaml:"friction_enabled"`
	FrictionStrength float64 `yaml:"friction_strength"`

	AirResistance float64 `yaml:"air_resistance"`

	SwapEnabled        bool `yaml:"swap_enabled"`
	FragmentationCount int  `yaml:"fragmentation_count"`

	// Timescale multiplies dt before it reaches the velocity integrator
	// and transfer planner, the one knob that changes simulation speed
	// without changing any force or collision constant.
	Timescale float64 `yaml:"timescale"`
}

// Default returns the built-in baseline settings, the values a fresh
// sim.New starts with absent an explicit Settings or loaded config.
func Default() Settings {
	return Settings{
		Gravity:       9.8,
		Elasticity:    1.0,
		PressureScale: 1.0,

		PressureHydrostaticStrength: 1.0,
		PressureDynamicStrength:     1.0,
		PressureDiffusionStrength:   1.0,
		PressureDiffusionIterations: 2,
		PressureDecayRate:           0.1,
		PressureEightNeighborhood:   false,

		CohesionEnabled:          true,
		CohesionStrength:         1.0,
		CohesionResistanceFactor: 1.0,
		CohesionRange:            1,

		AdhesionEnabled:  true,
		AdhesionStrength: 1.0,

		ViscosityEnabled:  true,
		ViscosityStrength: 1.0,

		FrictionEnabled:  true,
		FrictionStrength: 1.0,

		AirResistance: 1.0,

		SwapEnabled:        true,
		FragmentationCount: 3,

		Timescale: 1.0,
	}
}
