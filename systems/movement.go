package systems

import (
	"fmt"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/rookery/components"
)

// Resources is the per-world state shared by every stage.
type Resources struct {
	Time       Time
	BulletTime BulletTime
	Tuning     Tuning
	Root       *components.CollisionRoot
	Commands   *Commands
}

// alive reports whether e refers to a live entity. The zero entity never does.
func alive(w *ecs.World, e ecs.Entity) bool {
	return !e.IsZero() && w.Alive(e)
}

// MovePlainSystem moves entities that take no part in collisions. No
// collision checks happen here.
type MovePlainSystem struct {
	res   *Resources
	trans ecs.Filter2[components.Transform, components.DynoTran]
	rots  ecs.Filter2[components.Transform, components.DynoRot]

	provMap *ecs.Map[components.StaticProvider]
	rxMap   *ecs.Map[components.StaticReceiver]
	trigMap *ecs.Map[components.TriggerReceiver]
}

// NewMovePlainSystem creates the plain movement stage.
func NewMovePlainSystem(w *ecs.World, res *Resources) *MovePlainSystem {
	return &MovePlainSystem{
		res:     res,
		trans:   *ecs.NewFilter2[components.Transform, components.DynoTran](w),
		rots:    *ecs.NewFilter2[components.Transform, components.DynoRot](w),
		provMap: ecs.NewMap[components.StaticProvider](w),
		rxMap:   ecs.NewMap[components.StaticReceiver](w),
		trigMap: ecs.NewMap[components.TriggerReceiver](w),
	}
}

func (s *MovePlainSystem) interesting(e ecs.Entity) bool {
	return s.provMap.Has(e) || s.rxMap.Has(e) || s.trigMap.Has(e)
}

// Update runs plain movement.
func (s *MovePlainSystem) Update(w *ecs.World) {
	dt := s.res.Time.Scaled(&s.res.BulletTime)

	tq := s.trans.Query()
	for tq.Next() {
		if s.interesting(tq.Entity()) {
			continue
		}
		tf, tran := tq.Get()
		tf.Pos = r2.Add(tf.Pos, r2.Scale(dt, tran.Vel))
	}

	rq := s.rots.Query()
	for rq.Next() {
		if s.interesting(rq.Entity()) {
			continue
		}
		tf, rot := rq.Get()
		tf.Angle += rot.Rot * dt
	}
}

// MoveProvidersSystem moves static providers. A provider may translate or
// rotate, never both.
type MoveProvidersSystem struct {
	res     *Resources
	filter  ecs.Filter2[components.Transform, components.StaticProvider]
	tranMap *ecs.Map[components.DynoTran]
	rotMap  *ecs.Map[components.DynoRot]
	trigMap *ecs.Map[components.TriggerReceiver]
}

// NewMoveProvidersSystem creates the provider movement stage.
func NewMoveProvidersSystem(w *ecs.World, res *Resources) *MoveProvidersSystem {
	return &MoveProvidersSystem{
		res:     res,
		filter:  *ecs.NewFilter2[components.Transform, components.StaticProvider](w),
		tranMap: ecs.NewMap[components.DynoTran](w),
		rotMap:  ecs.NewMap[components.DynoRot](w),
		trigMap: ecs.NewMap[components.TriggerReceiver](w),
	}
}

// Update runs provider movement.
func (s *MoveProvidersSystem) Update(w *ecs.World) {
	dt := s.res.Time.Scaled(&s.res.BulletTime)

	query := s.filter.Query()
	for query.Next() {
		e := query.Entity()
		tf, _ := query.Get()

		hasTran, hasRot := s.tranMap.Has(e), s.rotMap.Has(e)
		if hasTran && hasRot {
			panic(fmt.Sprintf("physics: provider %d has both translation and rotation, which is not supported", e.ID()))
		}
		if s.trigMap.Has(e) {
			panic(fmt.Sprintf("physics: provider %d carries a trigger receiver, which is not supported", e.ID()))
		}
		if hasTran {
			tf.Pos = r2.Add(tf.Pos, r2.Scale(dt, s.tranMap.Get(e).Vel))
		}
		if hasRot {
			tf.Angle += s.rotMap.Get(e).Rot * dt
		}
	}
}
