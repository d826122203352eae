// Package renderer draws the physics world for the debug viewer.
package renderer

import (
	"strings"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/rookery/camera"
	"github.com/pthm-cable/rookery/components"
	"github.com/pthm-cable/rookery/geometry"
)

// DebugOptions selects what DebugRenderer draws.
type DebugOptions struct {
	Bounds      bool // outline every shape
	Collisions  bool // mark this tick's contact points
	StuckLinks  bool // line from each stuck body to its parent
	Velocities  bool // velocity vectors
	CircleSides int
}

// Colors per role. Providers are drawn by kind, receivers by response,
// trigger-only bodies by trigger kind.
var (
	ColorProviderNormal = rl.Color{R: 170, G: 170, B: 180, A: 255}
	ColorProviderSticky = rl.Color{R: 90, G: 200, B: 110, A: 255}

	ColorReceiverNormal   = rl.Color{R: 250, G: 210, B: 80, A: 255}
	ColorReceiverStop     = rl.Color{R: 240, G: 140, B: 60, A: 255}
	ColorReceiverGoAround = rl.Color{R: 190, G: 110, B: 230, A: 255}

	ColorTrigger      = rl.Color{R: 120, G: 170, B: 255, A: 255}
	ColorTriggerHeart = rl.Color{R: 255, G: 100, B: 150, A: 255}
	ColorTriggerGoal  = rl.Color{R: 170, G: 255, B: 90, A: 255}
	ColorTriggerEnemy = rl.Color{R: 230, G: 60, B: 60, A: 255}
	ColorTutorial     = rl.Color{R: 100, G: 120, B: 150, A: 160}

	ColorStaticHit  = rl.Color{R: 255, G: 60, B: 60, A: 255}
	ColorTriggerHit = rl.Color{R: 60, G: 200, B: 255, A: 255}
	ColorStuckLink  = rl.Color{R: 90, G: 200, B: 110, A: 140}
	ColorVelocity   = rl.Color{R: 255, G: 255, B: 255, A: 120}
)

// DebugRenderer outlines every physical body in a world.
type DebugRenderer struct {
	bodies ecs.Filter2[components.Transform, components.Bounds]

	tfMap    *ecs.Map[components.Transform]
	tranMap  *ecs.Map[components.DynoTran]
	provMap  *ecs.Map[components.StaticProvider]
	rxMap    *ecs.Map[components.StaticReceiver]
	trigMap  *ecs.Map[components.TriggerReceiver]
	stuckMap *ecs.Map[components.Stuck]

	outline []rl.Vector2
}

// NewDebugRenderer creates a renderer bound to w.
func NewDebugRenderer(w *ecs.World) *DebugRenderer {
	return &DebugRenderer{
		bodies:   *ecs.NewFilter2[components.Transform, components.Bounds](w),
		tfMap:    ecs.NewMap[components.Transform](w),
		tranMap:  ecs.NewMap[components.DynoTran](w),
		provMap:  ecs.NewMap[components.StaticProvider](w),
		rxMap:    ecs.NewMap[components.StaticReceiver](w),
		trigMap:  ecs.NewMap[components.TriggerReceiver](w),
		stuckMap: ecs.NewMap[components.Stuck](w),
	}
}

// Draw renders the world through cam.
func (d *DebugRenderer) Draw(w *ecs.World, cam *camera.Camera, root *components.CollisionRoot, opts DebugOptions) {
	q := d.bodies.Query()
	for q.Next() {
		e := q.Entity()
		tf, bnd := q.Get()
		if !cam.IsVisible(tf.Pos, bnd.Shape.Extent()) {
			continue
		}
		if opts.Bounds {
			d.drawShape(cam, bnd.Shape, tf, d.colorOf(e), opts.CircleSides)
		}
		if opts.Velocities && d.tranMap.Has(e) {
			vel := d.tranMap.Get(e).Vel
			drawSegment(cam, tf.Pos, r2.Add(tf.Pos, r2.Scale(0.25, vel)), ColorVelocity)
		}
		if opts.StuckLinks && d.stuckMap.Has(e) {
			parent := d.stuckMap.Get(e).Parent
			if !parent.IsZero() && w.Alive(parent) && d.tfMap.Has(parent) {
				drawSegment(cam, tf.Pos, d.tfMap.Get(parent).Pos, ColorStuckLink)
			}
		}
	}

	if opts.Collisions && root != nil {
		for _, rec := range root.Statics() {
			x, y := cam.WorldToScreen(rec.Pos)
			rl.DrawCircleV(rl.Vector2{X: x, Y: y}, 3, ColorStaticHit)
		}
		for _, rec := range root.Triggers() {
			x, y := cam.WorldToScreen(rec.Pos)
			rl.DrawCircleLinesV(rl.Vector2{X: x, Y: y}, 4, ColorTriggerHit)
		}
	}
}

func (d *DebugRenderer) colorOf(e ecs.Entity) rl.Color {
	var prov *components.StaticProvider
	var rx *components.StaticReceiver
	var trig *components.TriggerReceiver
	if d.provMap.Has(e) {
		prov = d.provMap.Get(e)
	}
	if d.rxMap.Has(e) {
		rx = d.rxMap.Get(e)
	}
	if d.trigMap.Has(e) {
		trig = d.trigMap.Get(e)
	}
	return BodyColor(prov, rx, trig)
}

// BodyColor picks the outline color for a body from its collision roles.
func BodyColor(prov *components.StaticProvider, rx *components.StaticReceiver, trig *components.TriggerReceiver) rl.Color {
	switch {
	case prov != nil:
		if prov.Kind == components.ProviderSticky {
			return ColorProviderSticky
		}
		return ColorProviderNormal
	case rx != nil:
		switch rx.Kind {
		case components.ReceiverStop:
			return ColorReceiverStop
		case components.ReceiverGoAround:
			return ColorReceiverGoAround
		default:
			return ColorReceiverNormal
		}
	case trig != nil:
		return TriggerColor(trig.Kind)
	}
	return rl.Gray
}

// TriggerColor returns the color for a trigger-only body.
func TriggerColor(kind components.TriggerKind) rl.Color {
	switch kind {
	case components.TriggerHeart:
		return ColorTriggerHeart
	case components.TriggerGoNext:
		return ColorTriggerGoal
	case components.TriggerSimpBody, components.TriggerBulletBad:
		return ColorTriggerEnemy
	}
	if strings.HasPrefix(string(kind), "tutorial:") {
		return ColorTutorial
	}
	return ColorTrigger
}

func (d *DebugRenderer) drawShape(cam *camera.Camera, shape geometry.Shape, tf *components.Transform, color rl.Color, sides int) {
	at := geometry.Placement{Pos: tf.Pos, Angle: tf.Angle}
	switch shape.Kind {
	case geometry.ShapeCircle:
		x, y := cam.WorldToScreen(tf.Pos)
		rl.DrawCircleLinesV(rl.Vector2{X: x, Y: y}, cam.Scale(shape.Radius), color)
		// Spoke so rotation is visible.
		drawSegment(cam, tf.Pos, at.Place(r2.Vec{X: shape.Radius}), color)
	case geometry.ShapePolygon:
		pts := shape.AnimPoints(sides)
		d.outline = d.outline[:0]
		for _, p := range pts {
			x, y := cam.WorldToScreen(at.Place(p))
			d.outline = append(d.outline, rl.Vector2{X: x, Y: y})
		}
		if len(d.outline) > 0 {
			d.outline = append(d.outline, d.outline[0])
			rl.DrawLineStrip(d.outline, color)
		}
	default:
		panic("renderer: unknown shape kind")
	}
}

// DrawDrag draws the aim line from the bird along the current drag.
func DrawDrag(cam *camera.Camera, from, drag r2.Vec, color rl.Color) {
	drawSegment(cam, from, r2.Add(from, drag), color)
	x, y := cam.WorldToScreen(r2.Add(from, drag))
	rl.DrawCircleV(rl.Vector2{X: x, Y: y}, 3, color)
}

func drawSegment(cam *camera.Camera, a, b r2.Vec, color rl.Color) {
	ax, ay := cam.WorldToScreen(a)
	bx, by := cam.WorldToScreen(b)
	rl.DrawLineV(rl.Vector2{X: ax, Y: ay}, rl.Vector2{X: bx, Y: by}, color)
}
