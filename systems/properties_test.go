package systems

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
	"pgregory.net/rapid"

	"github.com/pthm-cable/rookery/components"
	"github.com/pthm-cable/rookery/geometry"
)

// Without collisions, total displacement does not depend on how the path is chopped up.
func TestSubStepLengthDoesNotChangeDisplacement(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		tuning := DefaultTuning()
		tuning.MaxStepLength = rapid.Float64Range(0.05, 20).Draw(rt, "maxStep")
		vel := r2.Vec{
			X: rapid.Float64Range(-500, 500).Draw(rt, "vx"),
			Y: rapid.Float64Range(-500, 500).Draw(rt, "vy"),
		}
		dt := rapid.Float64Range(0.001, 0.1).Draw(rt, "dt")

		tw := newTestWorld(t, tuning)
		e := tw.ball(r2.Vec{}, vel, 1, components.ReceiverNormal)
		tw.p.Step(dt)

		want := r2.Scale(dt, vel)
		if got := tw.pos(e); !near(got, want, 1e-9*(1+r2.Norm(want))) {
			rt.Fatalf("displacement = %v, want %v", got, want)
		}
		if got := tw.vel(e); got != vel {
			rt.Fatalf("vel changed to %v", got)
		}
	})
}

// A receiver never ends a tick inside the provider it was resolved against.
func TestReceiverEndsTickOutsideProvider(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		radius := rapid.Float64Range(0.5, 10).Draw(rt, "radius")
		start := r2.Vec{
			X: rapid.Float64Range(-40, 40).Draw(rt, "x"),
			Y: rapid.Float64Range(-40, 40).Draw(rt, "y"),
		}
		vel := r2.Vec{
			X: rapid.Float64Range(-300, 300).Draw(rt, "vx"),
			Y: rapid.Float64Range(-300, 300).Draw(rt, "vy"),
		}
		wallShape := geometry.Rect(rapid.Float64Range(2, 40).Draw(rt, "w"), rapid.Float64Range(2, 40).Draw(rt, "h"))
		if rapid.Bool().Draw(rt, "wedge") {
			// Sharp corner at (-length, 0).
			length := rapid.Float64Range(5, 30).Draw(rt, "length")
			spread := rapid.Float64Range(1, 15).Draw(rt, "spread")
			wallShape = geometry.Polygon(r2.Vec{X: -length}, r2.Vec{X: length, Y: spread}, r2.Vec{X: length, Y: -spread})
		}

		tw := newTestWorld(t, DefaultTuning())
		wall := tw.body(r2.Vec{}, wallShape)
		tw.prov.Add(wall, &components.StaticProvider{Kind: components.ProviderNormal})
		e := tw.ball(start, vel, radius, components.ReceiverNormal)

		tw.p.Step(1.0 / 60)

		d, _ := wallShape.ClosestPoint(geometry.Placement{}, tw.pos(e))
		if d < radius-1e-6 {
			rt.Fatalf("penetration: center %.6f from border, radius %.6f", d, radius)
		}
	})
}

// A stuck body follows every parent rotation exactly.
func TestStuckTracksRotatingParent(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		tw := newTestWorld(t, DefaultTuning())

		parentStart := components.Transform{
			Pos:   r2.Vec{X: rapid.Float64Range(-50, 50).Draw(rt, "px"), Y: rapid.Float64Range(-50, 50).Draw(rt, "py")},
			Angle: rapid.Float64Range(-math.Pi, math.Pi).Draw(rt, "pangle"),
		}
		parent := tw.body(parentStart.Pos, geometry.Rect(10, 10))
		tw.tf.Get(parent).Angle = parentStart.Angle
		tw.prov.Add(parent, &components.StaticProvider{Kind: components.ProviderSticky})
		tw.rot.Add(parent, &components.DynoRot{Rot: rapid.Float64Range(-10, 10).Draw(rt, "rot")})

		childStart := components.Transform{
			Pos:   r2.Add(parentStart.Pos, r2.Vec{X: rapid.Float64Range(-20, 20).Draw(rt, "ox"), Y: rapid.Float64Range(-20, 20).Draw(rt, "oy")}),
			Angle: rapid.Float64Range(-math.Pi, math.Pi).Draw(rt, "cangle"),
		}
		child := tw.spawner.NewEntity(&childStart)
		stuck := components.NewStuck(parent, childStart, parentStart)
		tw.stuck.Add(child, &stuck)

		ticks := rapid.IntRange(1, 20).Draw(rt, "ticks")
		for i := 0; i < ticks; i++ {
			tw.p.Step(rapid.Float64Range(0, 0.1).Draw(rt, "dt"))

			ptf := *tw.tf.Get(parent)
			ctf := *tw.tf.Get(child)
			turned := ptf.Angle - stuck.ParentInitialAngle
			if want := stuck.MyInitialAngle + turned; ctf.Angle != want {
				rt.Fatalf("tick %d: angle = %v, want %v", i, ctf.Angle, want)
			}
			wantPos := r2.Add(ptf.Pos, geometry.Rotate(stuck.InitialOffset, turned))
			if ctf.Pos != wantPos {
				rt.Fatalf("tick %d: pos = %v, want %v", i, ctf.Pos, wantPos)
			}
			if math.Abs(r2.Norm(r2.Sub(ctf.Pos, ptf.Pos))-r2.Norm(stuck.InitialOffset)) > 1e-9 {
				rt.Fatalf("tick %d: distance to parent changed", i)
			}
		}
	})
}
