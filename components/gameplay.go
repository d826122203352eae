package components

import (
	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"
)

// Bird is the player's body.
type Bird struct {
	LaunchesLeft int
	BulletsLeft  int
	Health       int
	Hurt         float64 // scaled seconds of invulnerability left
}

// Bullet is a projectile. Good bullets are fired by the bird.
type Bullet struct {
	Good bool
}

// Heart restores one point of health when the bird or a good bullet touches it.
type Heart struct{}

// GoNext opens the way to the next room when shot.
type GoNext struct{}

// Simp is a stationary enemy that lobs bad bullets at the bird.
type Simp struct {
	FireEvery float64 // scaled seconds between shots
	Cooldown  float64
}

// Spew is an enemy that steers toward where the bird is heading and slides
// around whatever is in the way.
type Spew struct {
	Speed        float64 // top speed
	PreferFuture float64 // seconds of bird velocity to lead the aim by
	Health       int

	// Good bullets that already hit. A bullet grazing for several ticks
	// only hurts once.
	ImmuneTo map[ecs.Entity]bool
}

// Patrol turns a translating platform around once it strays Range from Origin.
type Patrol struct {
	Origin r2.Vec
	Range  float64
}
