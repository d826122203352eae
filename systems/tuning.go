package systems

import "github.com/pthm-cable/rookery/config"

// Tuning holds the collision constants. They are game-feel values and are
// meant to be overridden from config rather than re-derived.
type Tuning struct {
	MaxStepLength      float64 // longest single receiver sub-step in world units
	Springiness        float64 // fraction of normal velocity kept after a bounce
	BaseFriction       float64 // tangential damping for a grazing hit
	ImpactFrictionMult float64 // how much a head-on hit raises friction
	Validate           bool    // run the invariant check stage
}

// DefaultTuning returns the values the game ships with.
func DefaultTuning() Tuning {
	return Tuning{
		MaxStepLength:      1.0,
		Springiness:        0.2,
		BaseFriction:       0.03,
		ImpactFrictionMult: 10,
		Validate:           true,
	}
}

// TuningFromConfig reads the tunables from the physics config section.
func TuningFromConfig(p config.PhysicsConfig) Tuning {
	t := Tuning{
		MaxStepLength:      p.MaxStepLength,
		Springiness:        p.Springiness,
		BaseFriction:       p.BaseFriction,
		ImpactFrictionMult: p.ImpactFrictionMult,
		Validate:           p.Validate,
	}
	if t.MaxStepLength <= 0 {
		t.MaxStepLength = DefaultTuning().MaxStepLength
	}
	return t
}
