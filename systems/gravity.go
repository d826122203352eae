package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/rookery/components"
)

// GravitySystem accelerates falling bodies downward in scaled time.
type GravitySystem struct {
	res      *Resources
	filter   ecs.Filter2[components.DynoTran, components.Gravity]
	stuckMap *ecs.Map[components.Stuck]
}

// NewGravitySystem creates the gravity stage.
func NewGravitySystem(w *ecs.World, res *Resources) *GravitySystem {
	return &GravitySystem{
		res:      res,
		filter:   *ecs.NewFilter2[components.DynoTran, components.Gravity](w),
		stuckMap: ecs.NewMap[components.Stuck](w),
	}
}

// Update applies gravity. Stuck bodies keep their zero velocity.
func (s *GravitySystem) Update(w *ecs.World) {
	dt := s.res.Time.Scaled(&s.res.BulletTime)

	query := s.filter.Query()
	for query.Next() {
		if s.stuckMap.Has(query.Entity()) {
			continue
		}
		tran, grav := query.Get()
		tran.Vel.Y -= grav.Strength * dt
	}
}
