package systems

import (
	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/rookery/components"
	"github.com/pthm-cable/rookery/geometry"
)

// triggerTester records trigger overlaps for one tick. A pair that overlaps
// at several sub-steps still yields one record per direction.
type triggerTester struct {
	root    *components.CollisionRoot
	tfMap   *ecs.Map[components.Transform]
	bndMap  *ecs.Map[components.Bounds]
	trigMap *ecs.Map[components.TriggerReceiver]

	candidates []ecs.Entity
	seen       map[[2]ecs.Entity]struct{}
}

func (t *triggerTester) reset() {
	t.candidates = t.candidates[:0]
	clear(t.seen)
}

// test checks self, placed at the staged transform tf, against every other
// trigger. Other entities are read from the world as they are right now.
func (t *triggerTester) test(self ecs.Entity, shape geometry.Shape, tf components.Transform) {
	at := geometry.Placement{Pos: tf.Pos, Angle: tf.Angle}
	selfKind := t.trigMap.Get(self).Kind

	for _, other := range t.candidates {
		if other == self {
			continue
		}
		otf := t.tfMap.Get(other)
		oat := geometry.Placement{Pos: otf.Pos, Angle: otf.Angle}
		contact, ok := overlap(shape, at, t.bndMap.Get(other).Shape, oat)
		if !ok {
			continue
		}
		t.record(self, other, t.trigMap.Get(other).Kind, contact)
		t.record(other, self, selfKind, contact)
	}
}

func (t *triggerTester) record(self, other ecs.Entity, otherKind components.TriggerKind, pos r2.Vec) {
	key := [2]ecs.Entity{self, other}
	if _, dup := t.seen[key]; dup {
		return
	}
	t.seen[key] = struct{}{}

	id := t.root.AddTrigger(components.TriggerCollisionRecord{
		Pos:       pos,
		Self:      self,
		Other:     other,
		OtherKind: otherKind,
	})
	tr := t.trigMap.Get(self)
	tr.Collisions = append(tr.Collisions, id)
}

// overlap runs the bounce-off test with whichever shape can act as the
// probe. Polygon regions are only ever seen by circles, so two polygons
// never overlap.
func overlap(a geometry.Shape, aAt geometry.Placement, b geometry.Shape, bAt geometry.Placement) (r2.Vec, bool) {
	if r2.Norm(r2.Sub(aAt.Pos, bAt.Pos)) > a.Extent()+b.Extent() {
		return r2.Vec{}, false
	}
	if a.Kind != geometry.ShapeCircle && b.Kind != geometry.ShapeCircle {
		return r2.Vec{}, false
	}
	if a.Kind != geometry.ShapeCircle {
		a, aAt, b, bAt = b, bAt, a, aAt
	}
	_, contact, ok := a.BounceOff(aAt, b, bAt)
	return contact, ok
}
