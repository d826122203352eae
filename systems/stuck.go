package systems

import (
	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/rookery/components"
	"github.com/pthm-cable/rookery/geometry"
)

// SnapStuckSystem places every stuck entity rigidly on its parent. The
// physics never releases a stuck entity; gameplay removes Stuck for that.
type SnapStuckSystem struct {
	filter  ecs.Filter2[components.Transform, components.Stuck]
	tfMap   *ecs.Map[components.Transform]
	tranMap *ecs.Map[components.DynoTran]
}

// NewSnapStuckSystem creates the snap stage.
func NewSnapStuckSystem(w *ecs.World) *SnapStuckSystem {
	return &SnapStuckSystem{
		filter:  *ecs.NewFilter2[components.Transform, components.Stuck](w),
		tfMap:   ecs.NewMap[components.Transform](w),
		tranMap: ecs.NewMap[components.DynoTran](w),
	}
}

// Update runs the snap.
func (s *SnapStuckSystem) Update(w *ecs.World) {
	query := s.filter.Query()
	for query.Next() {
		e := query.Entity()
		tf, stuck := query.Get()

		if s.tranMap.Has(e) {
			s.tranMap.Get(e).Vel = r2.Vec{}
		}
		// A missing parent is not an error, the body just stays put.
		if !alive(w, stuck.Parent) || !s.tfMap.Has(stuck.Parent) {
			continue
		}
		*tf = SnapTransform(*stuck, *s.tfMap.Get(stuck.Parent))
	}
}

// SnapTransform returns where a stuck body sits for the given parent transform.
func SnapTransform(stuck components.Stuck, parent components.Transform) components.Transform {
	turned := parent.Angle - stuck.ParentInitialAngle
	return components.Transform{
		Pos:   r2.Add(parent.Pos, geometry.Rotate(stuck.InitialOffset, turned)),
		Angle: stuck.MyInitialAngle + turned,
	}
}
