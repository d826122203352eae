package components

import "gonum.org/v1/gonum/spatial/r2"

// Transform is an entity's placement in world space. Y points up.
type Transform struct {
	Pos   r2.Vec
	Angle float64 // radians, counter-clockwise
}

// DynoTran gives an entity a linear velocity in world units per second.
type DynoTran struct {
	Vel r2.Vec
}

// DynoRot gives an entity an angular velocity in radians per second.
type DynoRot struct {
	Rot float64
}

// Gravity pulls an entity's DynoTran velocity down every tick.
type Gravity struct {
	Strength float64
}

