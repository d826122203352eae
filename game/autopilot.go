package game

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"
)

// Autopilot plays the game without input so headless runs exercise
// launches, bullets and room changes. It aims and waits a few ticks before
// releasing, like a player would.
type Autopilot struct {
	rng     *rand.Rand
	maxDrag float64

	aimTicks int
	aim      r2.Vec
	firing   bool
}

// aimHold is how many ticks the autopilot holds a drag before releasing.
const aimHold = 20

// NewAutopilot creates an autopilot with a fixed seed.
func NewAutopilot(seed int64, maxDrag float64) *Autopilot {
	return &Autopilot{
		rng:     rand.New(rand.NewSource(seed)),
		maxDrag: maxDrag,
	}
}

// Next decides this tick's intent. It only acts while the bird is stuck to
// something: first it shoots at the nearest target, then it launches.
func (a *Autopilot) Next(g *Gameplay) Intent {
	tf, _, bird, stuck, ok := g.BirdState()
	if !ok {
		a.aimTicks = 0
		return Intent{}
	}

	if a.aimTicks > 0 {
		a.aimTicks--
		in := Intent{Aiming: true, Drag: a.aim}
		if a.aimTicks == 0 {
			in.Aiming = false
			in.Fire = a.firing
			in.Launch = !a.firing
		}
		return in
	}
	if !stuck {
		return Intent{}
	}

	switch {
	case bird.BulletsLeft > 0 && len(g.Targets()) > 0:
		a.firing = true
		a.aim = r2.Sub(nearest(tf.Pos, g.Targets()), tf.Pos)
	case bird.LaunchesLeft > 0:
		a.firing = false
		// Mostly upward, so the bird tends to find a new surface.
		angle := math.Pi/2 + (a.rng.Float64()-0.5)*math.Pi*0.8
		mag := a.maxDrag * (0.4 + 0.6*a.rng.Float64())
		a.aim = r2.Vec{X: mag * math.Cos(angle), Y: mag * math.Sin(angle)}
	default:
		return Intent{}
	}
	a.aimTicks = aimHold
	return Intent{Aiming: true, Drag: a.aim}
}

func nearest(from r2.Vec, points []r2.Vec) r2.Vec {
	best := points[0]
	bestD := r2.Norm2(r2.Sub(best, from))
	for _, p := range points[1:] {
		if d := r2.Norm2(r2.Sub(p, from)); d < bestD {
			best, bestD = p, d
		}
	}
	return best
}
