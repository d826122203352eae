package main

import (
	"github.com/pthm-cable/rookery/config"
)

// ParamSpec defines a single tunable.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all tunables searched over.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of tunables.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			// Collision response
			{Name: "springiness", Path: "physics.springiness", Min: 0.0, Max: 0.8, Default: 0.2},
			{Name: "base_friction", Path: "physics.base_friction", Min: 0.0, Max: 0.2, Default: 0.03},
			{Name: "impact_friction_mult", Path: "physics.impact_friction_mult", Min: 1.0, Max: 30.0, Default: 10.0},
			{Name: "gravity", Path: "physics.gravity_strength", Min: 100, Max: 600, Default: 300},
			// Bird
			{Name: "launch_speed", Path: "game.launch_speed", Min: 2.0, Max: 8.0, Default: 4.0},
			{Name: "bullet_speed", Path: "game.bullet_speed", Min: 120, Max: 500, Default: 250},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig writes parameter values into cfg. Order must match Specs.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	clamped := pv.Clamp(values)
	cfg.Physics.Springiness = clamped[0]
	cfg.Physics.BaseFriction = clamped[1]
	cfg.Physics.ImpactFrictionMult = clamped[2]
	cfg.Physics.GravityStrength = clamped[3]
	cfg.Game.LaunchSpeed = clamped[4]
	cfg.Game.BulletSpeed = clamped[5]
}

// ExtractFromConfig reads the current parameter values from cfg.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	return []float64{
		cfg.Physics.Springiness,
		cfg.Physics.BaseFriction,
		cfg.Physics.ImpactFrictionMult,
		cfg.Physics.GravityStrength,
		cfg.Game.LaunchSpeed,
		cfg.Game.BulletSpeed,
	}
}
