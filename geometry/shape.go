// Package geometry provides the shape math behind collision detection.
// All functions are pure; placements are passed in explicitly.
package geometry

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// ErrUnknownShape is returned when a shape name cannot be parsed.
var ErrUnknownShape = errors.New("geometry: unknown shape")

// ShapeKind selects the variant of a Shape.
type ShapeKind uint8

const (
	ShapeCircle ShapeKind = iota
	ShapePolygon
)

// String returns the lowercase name of the kind.
func (k ShapeKind) String() string {
	switch k {
	case ShapeCircle:
		return "circle"
	case ShapePolygon:
		return "polygon"
	default:
		return fmt.Sprintf("shape(%d)", uint8(k))
	}
}

// ParseShapeKind converts a name from a room file into a ShapeKind.
func ParseShapeKind(name string) (ShapeKind, error) {
	switch name {
	case "circle":
		return ShapeCircle, nil
	case "polygon", "rect":
		return ShapePolygon, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownShape, name)
	}
}

// Shape is either a circle or a polygon. Only the fields of the active kind
// are meaningful. Polygon points must be in CLOCKWISE order.
type Shape struct {
	Kind   ShapeKind
	Radius float64
	Points []r2.Vec
}

// Placement is where a shape sits in the world.
type Placement struct {
	Pos   r2.Vec
	Angle float64
}

// Circle returns a circle shape centered on its placement.
func Circle(radius float64) Shape {
	return Shape{Kind: ShapeCircle, Radius: radius}
}

// Polygon returns a polygon shape. The points are copied.
func Polygon(points ...r2.Vec) Shape {
	pts := make([]r2.Vec, len(points))
	copy(pts, points)
	return Shape{Kind: ShapePolygon, Points: pts}
}

// Rect returns a clockwise box of the given size centered on its placement.
func Rect(width, height float64) Shape {
	hw, hh := width/2, height/2
	return Polygon(
		r2.Vec{X: -hw, Y: hh},
		r2.Vec{X: hw, Y: hh},
		r2.Vec{X: hw, Y: -hh},
		r2.Vec{X: -hw, Y: -hh},
	)
}

// ClosestPoint returns the signed distance from point to the border of the
// shape at placement, along with the closest point on that border.
// Positive distances are outside the shape.
func (s Shape) ClosestPoint(placement Placement, point r2.Vec) (float64, r2.Vec) {
	d, cp, _ := s.closest(placement, point)
	return d, cp
}

// closest also reports the outward normal of the border feature it picked.
func (s Shape) closest(placement Placement, point r2.Vec) (float64, r2.Vec, r2.Vec) {
	switch s.Kind {
	case ShapeCircle:
		diff := r2.Sub(point, placement.Pos)
		signedDist := r2.Norm(diff) - s.Radius
		normal := UnitOrZero(diff)
		if normal == (r2.Vec{}) {
			normal = r2.Vec{Y: 1}
		}
		return signedDist, r2.Add(placement.Pos, r2.Scale(s.Radius, UnitOrZero(diff))), normal
	case ShapePolygon:
		dist := math.MaxFloat64
		var closest, normal r2.Vec
		for _, edge := range Edges(s.Points) {
			placed := placeSegment(edge, placement)
			cp := ClosestPointOnSegment(point, placed)
			if d := r2.Norm(r2.Sub(point, cp)); d < dist {
				dist = d
				closest = cp
				normal = UnitOrZero(Perp(r2.Sub(placed[1], placed[0])))
			}
		}
		// The nearest edge's side is ambiguous at corners, so the sign
		// comes from the whole outline.
		if s.contains(placement, point) {
			dist = -dist
		}
		return dist, closest, normal
	default:
		panic(fmt.Sprintf("geometry: closest point on unknown shape kind %d", s.Kind))
	}
}

// contains reports whether point is inside the polygon at placement, by
// the even-odd rule. Bridge edges walked in both directions cancel out, so
// a hole joined to its outline works.
func (s Shape) contains(placement Placement, point r2.Vec) bool {
	inside := false
	for _, edge := range Edges(s.Points) {
		a, b := placement.Place(edge[0]), placement.Place(edge[1])
		if (a.Y > point.Y) == (b.Y > point.Y) {
			continue
		}
		x := a.X + (point.Y-a.Y)*(b.X-a.X)/(b.Y-a.Y)
		if point.X < x {
			inside = !inside
		}
	}
	return inside
}

// BounceOff figures out how to push this shape out of other. It returns
// ok=false when the shapes do not overlap. Otherwise push is the translation
// to apply to this shape's placement and contact is the collision point.
//
// Only circles can be pushed; polygon probes panic.
func (s Shape) BounceOff(placement Placement, other Shape, otherPlacement Placement) (push, contact r2.Vec, ok bool) {
	switch s.Kind {
	case ShapeCircle:
		signedDist, cp, normal := other.closest(otherPlacement, placement.Pos)
		if signedDist > s.Radius {
			return r2.Vec{}, r2.Vec{}, false
		}
		dir := UnitOrZero(r2.Sub(placement.Pos, cp))
		if signedDist < 0 {
			// Center is inside other, so border-to-center points inward.
			dir = r2.Scale(-1, dir)
		}
		if dir == (r2.Vec{}) {
			// Center sits exactly on the border.
			dir = normal
		}
		return r2.Scale(s.Radius-signedDist, dir), cp, true
	case ShapePolygon:
		panic("geometry: push-out for polygon shapes is not implemented")
	default:
		panic(fmt.Sprintf("geometry: bounce off with unknown shape kind %d", s.Kind))
	}
}

// AnimPoints returns an outline suitable for drawing. Circles are
// approximated by a regular polygon with the given number of sides.
func (s Shape) AnimPoints(sides int) []r2.Vec {
	switch s.Kind {
	case ShapeCircle:
		if sides < 3 {
			sides = 3
		}
		out := make([]r2.Vec, sides)
		for i := range out {
			// Walk clockwise to match the polygon convention.
			theta := -2 * math.Pi * float64(i) / float64(sides)
			out[i] = r2.Vec{X: s.Radius * math.Cos(theta), Y: s.Radius * math.Sin(theta)}
		}
		return out
	case ShapePolygon:
		out := make([]r2.Vec, len(s.Points))
		copy(out, s.Points)
		return out
	default:
		panic(fmt.Sprintf("geometry: anim points for unknown shape kind %d", s.Kind))
	}
}

// Extent returns the radius of a circle around the shape's origin that
// contains the whole shape.
func (s Shape) Extent() float64 {
	switch s.Kind {
	case ShapeCircle:
		return s.Radius
	case ShapePolygon:
		var ext float64
		for _, p := range s.Points {
			ext = math.Max(ext, r2.Norm(p))
		}
		return ext
	default:
		panic(fmt.Sprintf("geometry: extent of unknown shape kind %d", s.Kind))
	}
}

// Place transforms a point from shape-local space into world space.
func (p Placement) Place(local r2.Vec) r2.Vec {
	return r2.Add(p.Pos, Rotate(local, p.Angle))
}

func placeSegment(seg Segment, placement Placement) Segment {
	return Segment{placement.Place(seg[0]), placement.Place(seg[1])}
}
