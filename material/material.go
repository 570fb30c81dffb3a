// Package material holds the static, process-lifetime property table for
// every material a cell can contain.
package material

import "fmt"

// Type is a fixed, indexed material enumeration. Cells hold at most one
// Type at a time.
type Type uint8

const (
	Air Type = iota
	Dirt
	Water
	Wood
	Sand
	Metal
	Leaf
	Wall

	count
)

// Properties is an immutable per-material record. Every field is
// process-lifetime constant except Cohesion, which may be overridden
// in place via an explicit registry override (see Registry.SetCohesion).
type Properties struct {
	Density                 float64
	Elasticity              float64 // [0,1]
	Cohesion                float64
	Adhesion                float64
	AirResistance           float64
	ComMassConstant         float64
	PressureDiffusion       float64
	Viscosity               float64
	MotionSensitivity        float64
	StaticFriction           float64
	KineticFriction          float64
	StickVelocity            float64
	FrictionTransitionWidth  float64
	IsFluid                  bool
	IsRigid                  bool
}

// table holds the built-in, immutable defaults. Grounded on the original
// DirtSim MATERIAL_PROPERTIES table (test-lvgl/src/core/MaterialType.cpp),
// restricted to the 8 materials this core names; the original's extra
// SEED entry belongs to the out-of-scope organism/tree subsystem.
var table = [count]Properties{
	Air: {
		Density: 0.001, Elasticity: 1.0, Cohesion: 0, Adhesion: 0,
		AirResistance: 0, ComMassConstant: 0, PressureDiffusion: 1.0,
		Viscosity: 0.001, MotionSensitivity: 0,
		StaticFriction: 1.0, KineticFriction: 1.0,
		StickVelocity: 0, FrictionTransitionWidth: 0.01,
		IsFluid: true, IsRigid: false,
	},
	Dirt: {
		Density: 1.5, Elasticity: 0.2, Cohesion: 0.3, Adhesion: 0.2,
		AirResistance: 0.3, ComMassConstant: 5.0, PressureDiffusion: 0.3,
		Viscosity: 0.5, MotionSensitivity: 0,
		StaticFriction: 1.0, KineticFriction: 0.5,
		StickVelocity: 0.05, FrictionTransitionWidth: 0.10,
		IsFluid: false, IsRigid: false,
	},
	Water: {
		Density: 1.0, Elasticity: 0.1, Cohesion: 0.25, Adhesion: 0.5,
		AirResistance: 0.01, ComMassConstant: 8.0, PressureDiffusion: 0.9,
		Viscosity: 0.01, MotionSensitivity: 1.0,
		StaticFriction: 1.0, KineticFriction: 1.0,
		StickVelocity: 0, FrictionTransitionWidth: 0.01,
		IsFluid: true, IsRigid: false,
	},
	Wood: {
		Density: 0.8, Elasticity: 0.6, Cohesion: 0.7, Adhesion: 0.3,
		AirResistance: 0.4, ComMassConstant: 3.0, PressureDiffusion: 0.15,
		Viscosity: 0.9, MotionSensitivity: 0.2,
		StaticFriction: 1.3, KineticFriction: 0.9,
		StickVelocity: 0.02, FrictionTransitionWidth: 0.03,
		IsFluid: false, IsRigid: true,
	},
	Sand: {
		Density: 1.8, Elasticity: 0.2, Cohesion: 0.2, Adhesion: 0.1,
		AirResistance: 0.2, ComMassConstant: 4.0, PressureDiffusion: 0.3,
		Viscosity: 0.3, MotionSensitivity: 0.5,
		StaticFriction: 0.6, KineticFriction: 0.4,
		StickVelocity: 0.04, FrictionTransitionWidth: 0.08,
		IsFluid: false, IsRigid: false,
	},
	Metal: {
		Density: 7.8, Elasticity: 0.8, Cohesion: 1.0, Adhesion: 0.1,
		AirResistance: 0.1, ComMassConstant: 2.0, PressureDiffusion: 0.1,
		Viscosity: 0.95, MotionSensitivity: 0.1,
		StaticFriction: 1.5, KineticFriction: 1.0,
		StickVelocity: 0.01, FrictionTransitionWidth: 0.02,
		IsFluid: false, IsRigid: true,
	},
	Leaf: {
		Density: 0.3, Elasticity: 0.4, Cohesion: 0.3, Adhesion: 0.2,
		AirResistance: 0.8, ComMassConstant: 10.0, PressureDiffusion: 0.6,
		Viscosity: 0.2, MotionSensitivity: 0.8,
		StaticFriction: 0.5, KineticFriction: 0.3,
		StickVelocity: 0.03, FrictionTransitionWidth: 0.06,
		IsFluid: false, IsRigid: false,
	},
	Wall: {
		// Effectively infinite density; zero pressure diffusion (no-flux barrier).
		Density: 1000.0, Elasticity: 0.9, Cohesion: 1.0, Adhesion: 0.5,
		AirResistance: 0, ComMassConstant: 0, PressureDiffusion: 0,
		Viscosity: 1.0, MotionSensitivity: 0,
		StaticFriction: 1.0, KineticFriction: 1.0,
		StickVelocity: 0, FrictionTransitionWidth: 0.01,
		IsFluid: false, IsRigid: true,
	},
}

var names = [count]string{"AIR", "DIRT", "WATER", "WOOD", "SAND", "METAL", "LEAF", "WALL"}

// String returns the material's stable name, used as its JSON/wire tag.
func (t Type) String() string {
	if int(t) >= len(names) {
		return fmt.Sprintf("UNKNOWN(%d)", uint8(t))
	}
	return names[t]
}

// Parse resolves a stable material name back to its Type.
func Parse(name string) (Type, error) {
	for i, n := range names {
		if n == name {
			return Type(i), nil
		}
	}
	return 0, fmt.Errorf("material: unknown type %q", name)
}

// MarshalYAML renders a Type as its stable name, so scenario configs
// read as e.g. "water_material: WATER" rather than a bare integer.
func (t Type) MarshalYAML() (interface{}, error) {
	return t.String(), nil
}

// UnmarshalYAML resolves a stable material name from YAML back to a Type.
func (t *Type) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var name string
	if err := unmarshal(&name); err != nil {
		return err
	}
	parsed, err := Parse(name)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Registry exposes by-enum lookup of material properties, with the one
// documented mutable exception: a cohesion override used by external
// tuning collaborators (e.g. a UI). The base table itself is never
// mutated; overrides are tracked in a side map so the registry stays
// otherwise pure.
type Registry struct {
	cohesionOverride map[Type]float64
}

// NewRegistry returns a registry over the built-in property table.
func NewRegistry() *Registry {
	return &Registry{cohesionOverride: make(map[Type]float64)}
}

// Get returns the effective properties for t, applying any cohesion
// override. Panics on an out-of-range Type: invalid material ids are a
// programmer error, never a valid external input (spec §7.1).
func (r *Registry) Get(t Type) Properties {
	if int(t) >= int(count) {
		panic(fmt.Errorf("material: type %d out of range", uint8(t)))
	}
	p := table[t]
	if c, ok := r.cohesionOverride[t]; ok {
		p.Cohesion = c
	}
	return p
}

// SetCohesion installs an in-place cohesion override for t.
func (r *Registry) SetCohesion(t Type, cohesion float64) {
	if int(t) >= int(count) {
		panic(fmt.Errorf("material: type %d out of range", uint8(t)))
	}
	r.cohesionOverride[t] = cohesion
}

// Density is a convenience accessor for Get(t).Density.
func (r *Registry) Density(t Type) float64 { return r.Get(t).Density }

// IsFluid is a convenience accessor for Get(t).IsFluid.
func (r *Registry) IsFluid(t Type) bool { return r.Get(t).IsFluid }

// IsRigid is a convenience accessor for Get(t).IsRigid.
func (r *Registry) IsRigid(t Type) bool { return r.Get(t).IsRigid }

// Name returns the stable name for t.
func (r *Registry) Name(t Type) string { return t.String() }

// FrictionCoeff implements the velocity-dependent static/kinetic friction
// blend of spec §4.1: below StickVelocity the material is fully static;
// above it, a smoothstep ramps from static to kinetic friction over
// FrictionTransitionWidth.
func FrictionCoeff(speed float64, props Properties) float64 {
	if speed < props.StickVelocity {
		return props.StaticFriction
	}
	width := props.FrictionTransitionWidth
	if width < 0.001 {
		width = 0.001
	}
	t := (speed - props.StickVelocity) / width
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	s := t * t * (3 - 2*t)
	return (1-s)*props.StaticFriction + s*props.KineticFriction
}
