package game

import (
	"math"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"
)

// pickTolerance is how far outside a shape a click still selects it, in pixels.
const pickTolerance = 4.0

// pickEntity returns the body under a world point, or the zero entity.
func (g *Game) pickEntity(point r2.Vec) ecs.Entity {
	return g.probe.pick(point, pickTolerance/g.camera.Zoom)
}

// pick returns the body whose border is nearest point, counting only bodies
// within tolerance of it. Overlapping bodies resolve to the one the point is
// deepest inside.
func (p *worldProbe) pick(point r2.Vec, tolerance float64) ecs.Entity {
	var best ecs.Entity
	bestDist := math.Inf(1)

	q := p.bodies.Query()
	for q.Next() {
		tf, bnd := q.Get()
		dist, _ := bnd.Shape.ClosestPoint(bnd.Placement(tf), point)
		if dist > tolerance || dist >= bestDist {
			continue
		}
		best, bestDist = q.Entity(), dist
	}
	return best
}
