package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Segment is a line segment between two points.
type Segment [2]r2.Vec

// Edges returns the closed loop of segments through points.
func Edges(points []r2.Vec) []Segment {
	out := make([]Segment, len(points))
	for i := range points {
		out[i] = Segment{points[i], points[(i+1)%len(points)]}
	}
	return out
}

// ClosestPointOnSegment returns the point on seg nearest to pos.
func ClosestPointOnSegment(pos r2.Vec, seg Segment) r2.Vec {
	d := r2.Sub(seg[1], seg[0])
	l2 := r2.Norm2(d)
	if l2 == 0 {
		return seg[0]
	}
	t := r2.Dot(r2.Sub(pos, seg[0]), d) / l2
	t = math.Max(0, math.Min(1, t))
	return r2.Add(seg[0], r2.Scale(t, d))
}

// SignedDistanceToSegment returns the distance from pos to seg and the
// closest point. The distance is positive when pos is on the outer side of
// the segment under the clockwise winding convention, negative otherwise.
func SignedDistanceToSegment(pos r2.Vec, seg Segment) (float64, r2.Vec) {
	cp := ClosestPointOnSegment(pos, seg)
	d := r2.Sub(seg[1], seg[0])
	normal := r2.Vec{X: d.Y, Y: -d.X}
	side := r2.Dot(r2.Sub(seg[0], pos), normal)
	dist := r2.Norm(r2.Sub(pos, cp))
	if side < 0 {
		return -dist, cp
	}
	return dist, cp
}

// UnitOrZero returns the unit vector of v, or the zero vector when v is zero.
func UnitOrZero(v r2.Vec) r2.Vec {
	n := r2.Norm(v)
	if n == 0 {
		return r2.Vec{}
	}
	return r2.Scale(1/n, v)
}

// Rotate rotates v around the origin by angle radians.
func Rotate(v r2.Vec, angle float64) r2.Vec {
	return r2.NewRotation(angle, r2.Vec{}).Rotate(v)
}

// Perp returns v rotated a quarter turn counter-clockwise.
func Perp(v r2.Vec) r2.Vec {
	return r2.Vec{X: -v.Y, Y: v.X}
}
