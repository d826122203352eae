package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/rookery/components"
	"github.com/pthm-cable/rookery/geometry"
)

// splitVelocity decomposes vel against the surface normal n (unit or zero)
// into its normal and tangential parts.
func splitVelocity(vel, n r2.Vec) (perp, par r2.Vec) {
	perp = r2.Scale(r2.Dot(vel, n), n)
	par = r2.Sub(vel, perp)
	return perp, par
}

// bounce is the Normal x Normal response: the normal part is reflected
// away from the surface and scaled by springiness, the tangential part is
// damped harder the more head-on the hit.
func bounce(vel, normal r2.Vec, t *Tuning) r2.Vec {
	n := geometry.UnitOrZero(normal)
	perp, par := splitVelocity(vel, n)
	if r2.Dot(perp, n) < 0 {
		perp = r2.Scale(-1, perp)
	}
	perp = r2.Scale(t.Springiness, perp)

	headOn := math.Abs(r2.Dot(geometry.UnitOrZero(vel), n))
	friction := t.BaseFriction * (1 + t.ImpactFrictionMult*headOn)
	friction = math.Max(0, math.Min(1, friction))
	par = r2.Scale(1-friction, par)

	return r2.Add(perp, par)
}

// goAround steers the receiver along the surface instead of bouncing. The
// sign of mult picks the tangent, its magnitude how strongly to follow it.
// Speed is preserved.
func goAround(vel, normal r2.Vec, mult int) r2.Vec {
	speed := r2.Norm(vel)
	n := geometry.UnitOrZero(normal)
	if speed == 0 || n == (r2.Vec{}) {
		return vel
	}

	slide := vel
	if vn := r2.Dot(vel, n); vn < 0 {
		slide = r2.Sub(vel, r2.Scale(vn, n))
	}

	tangent := geometry.Perp(n)
	switch {
	case mult < 0:
		tangent = r2.Scale(-1, tangent)
	case mult == 0 && r2.Dot(slide, tangent) < 0:
		tangent = r2.Scale(-1, tangent)
	}

	steer := r2.Add(slide, r2.Scale(speed*math.Abs(float64(mult)), tangent))
	dir := geometry.UnitOrZero(steer)
	if dir == (r2.Vec{}) {
		dir = tangent
	}
	return r2.Scale(speed, dir)
}

// respond returns the receiver's velocity after hitting a provider along the
// outward surface normal and whether the receiver should attach to it.
func respond(vel, normal r2.Vec, prov components.StaticProviderKind, rx components.StaticReceiverKind, mult int, t *Tuning) (r2.Vec, bool) {
	switch rx {
	case components.ReceiverStop:
		return r2.Vec{}, false
	case components.ReceiverGoAround:
		return goAround(vel, normal, mult), false
	case components.ReceiverNormal:
		switch prov {
		case components.ProviderSticky:
			return r2.Vec{}, true
		case components.ProviderNormal:
			return bounce(vel, normal, t), false
		}
	}
	panic("physics: unknown static kind combination " + prov.String() + " x " + rx.String())
}
