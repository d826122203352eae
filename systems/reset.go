package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/rookery/components"
)

// ResetCollisionsSystem drops last tick's collision records. Every later
// stage may assume all collisions lists start the tick empty.
type ResetCollisionsSystem struct {
	res       *Resources
	providers ecs.Filter1[components.StaticProvider]
	receivers ecs.Filter1[components.StaticReceiver]
	triggers  ecs.Filter1[components.TriggerReceiver]
}

// NewResetCollisionsSystem creates the reset stage.
func NewResetCollisionsSystem(w *ecs.World, res *Resources) *ResetCollisionsSystem {
	return &ResetCollisionsSystem{
		res:       res,
		providers: *ecs.NewFilter1[components.StaticProvider](w),
		receivers: *ecs.NewFilter1[components.StaticReceiver](w),
		triggers:  *ecs.NewFilter1[components.TriggerReceiver](w),
	}
}

// Update runs the reset.
func (s *ResetCollisionsSystem) Update(w *ecs.World) {
	s.res.Root.Reset()

	pq := s.providers.Query()
	for pq.Next() {
		p := pq.Get()
		p.Collisions = p.Collisions[:0]
	}
	rq := s.receivers.Query()
	for rq.Next() {
		r := rq.Get()
		r.Collisions = r.Collisions[:0]
	}
	tq := s.triggers.Query()
	for tq.Next() {
		tr := tq.Get()
		tr.Collisions = tr.Collisions[:0]
	}
}
