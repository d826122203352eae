// Package components defines ECS components for the physics world.
package components

import (
	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/rookery/geometry"
)

// Bounds is the collision shape of an entity, placed by its Transform.
type Bounds struct {
	Shape geometry.Shape
}

// Placement returns where the bounds sit for the given transform.
func (b *Bounds) Placement(tf *Transform) geometry.Placement {
	return geometry.Placement{Pos: tf.Pos, Angle: tf.Angle}
}

// StaticProviderKind controls how a provider treats receivers that hit it.
type StaticProviderKind uint8

const (
	ProviderNormal StaticProviderKind = iota // Bounce receivers off
	ProviderSticky                           // Capture receivers in place
)

// StaticReceiverKind controls how a receiver's velocity responds to a hit.
type StaticReceiverKind uint8

const (
	ReceiverNormal   StaticReceiverKind = iota // Springy bounce with friction
	ReceiverStop                               // Velocity drops to zero
	ReceiverGoAround                           // Slide around the obstacle
)

// StaticProvider is an immovable-by-collision obstacle. It can still move
// on its own through DynoTran or DynoRot, but never both.
type StaticProvider struct {
	Kind       StaticProviderKind
	Collisions []StaticCollisionID
}

// StaticReceiver is a body that gets pushed out of providers.
type StaticReceiver struct {
	Kind StaticReceiverKind
	// Mult biases GoAround steering: its sign picks the tangent direction,
	// its magnitude weights the tangent against the sliding velocity.
	Mult       int
	Collisions []StaticCollisionID
}

// TriggerKind tags a trigger receiver. The set is open; gameplay code can
// define its own values.
type TriggerKind string

const (
	TriggerBird       TriggerKind = "bird"
	TriggerBulletGood TriggerKind = "bullet_good"
	TriggerBulletBad  TriggerKind = "bullet_bad"
	TriggerSimpBody   TriggerKind = "simp_body"
	TriggerHeart      TriggerKind = "heart"
	TriggerGoNext     TriggerKind = "go_next"
)

// TutorialTrigger returns the kind for a tutorial prompt region.
func TutorialTrigger(key string) TriggerKind {
	return TriggerKind("tutorial:" + key)
}

// TriggerReceiver detects overlaps with other triggers without affecting motion.
type TriggerReceiver struct {
	Kind       TriggerKind
	Collisions []TriggerCollisionID
}

// Stuck pins an entity rigidly to a parent. Parent is a lookup-only handle;
// a dead parent leaves the entity where it is.
type Stuck struct {
	Parent             ecs.Entity
	MyInitialAngle     float64
	ParentInitialAngle float64
	InitialOffset      r2.Vec
}

// NewStuck records the relative placement of child to parent at the moment
// of attachment.
func NewStuck(parent ecs.Entity, child, parentTf Transform) Stuck {
	return Stuck{
		Parent:             parent,
		MyInitialAngle:     child.Angle,
		ParentInitialAngle: parentTf.Angle,
		InitialOffset:      r2.Sub(child.Pos, parentTf.Pos),
	}
}
