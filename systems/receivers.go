package systems

import (
	"math"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/rookery/components"
	"github.com/pthm-cable/rookery/geometry"
)

// providerSnapshot is a provider's state for the current tick. Providers
// have finished moving by the time receivers run, so it never goes stale
// within the stage.
type providerSnapshot struct {
	entity ecs.Entity
	kind   components.StaticProviderKind
	shape  geometry.Shape
	tf     components.Transform
}

// MoveReceiversSystem moves static receivers and trigger-only entities in
// bounded sub-steps. After every sub-step receivers are pushed out of
// providers and triggers are tested at the fresh position.
//
// Each entity is staged: its transform and velocity are copied out, the whole
// algorithm runs on the copies, and the result is written back once.
type MoveReceiversSystem struct {
	world     *ecs.World
	res       *Resources
	receivers ecs.Filter2[components.Transform, components.StaticReceiver]
	triggers  ecs.Filter2[components.Transform, components.TriggerReceiver]
	providers ecs.Filter3[components.Transform, components.Bounds, components.StaticProvider]

	tfMap    *ecs.Map[components.Transform]
	bndMap   *ecs.Map[components.Bounds]
	tranMap  *ecs.Map[components.DynoTran]
	rotMap   *ecs.Map[components.DynoRot]
	provMap  *ecs.Map[components.StaticProvider]
	rxMap    *ecs.Map[components.StaticReceiver]
	trigMap  *ecs.Map[components.TriggerReceiver]
	stuckMap *ecs.Map[components.Stuck]

	// Scratch, reused across ticks.
	order []ecs.Entity
	provs []providerSnapshot
	trigs triggerTester
}

// NewMoveReceiversSystem creates the receiver movement stage.
func NewMoveReceiversSystem(w *ecs.World, res *Resources) *MoveReceiversSystem {
	s := &MoveReceiversSystem{
		world:     w,
		res:       res,
		receivers: *ecs.NewFilter2[components.Transform, components.StaticReceiver](w),
		triggers:  *ecs.NewFilter2[components.Transform, components.TriggerReceiver](w),
		providers: *ecs.NewFilter3[components.Transform, components.Bounds, components.StaticProvider](w),
		tfMap:     ecs.NewMap[components.Transform](w),
		bndMap:    ecs.NewMap[components.Bounds](w),
		tranMap:   ecs.NewMap[components.DynoTran](w),
		rotMap:    ecs.NewMap[components.DynoRot](w),
		provMap:   ecs.NewMap[components.StaticProvider](w),
		rxMap:     ecs.NewMap[components.StaticReceiver](w),
		trigMap:   ecs.NewMap[components.TriggerReceiver](w),
		stuckMap:  ecs.NewMap[components.Stuck](w),
	}
	s.trigs = triggerTester{
		root:    res.Root,
		tfMap:   s.tfMap,
		bndMap:  s.bndMap,
		trigMap: s.trigMap,
		seen:    make(map[[2]ecs.Entity]struct{}),
	}
	return s
}

// Update runs receiver movement.
func (s *MoveReceiversSystem) Update(w *ecs.World) {
	dt := s.res.Time.Scaled(&s.res.BulletTime)
	s.collect()

	for _, e := range s.order {
		s.moveOne(e, dt)
	}
}

// collect gathers this tick's receivers, trigger candidates and provider
// snapshots. Queries are closed before any entity is processed.
func (s *MoveReceiversSystem) collect() {
	s.order = s.order[:0]
	s.provs = s.provs[:0]
	s.trigs.reset()

	rq := s.receivers.Query()
	for rq.Next() {
		e := rq.Entity()
		if s.provMap.Has(e) {
			continue
		}
		s.order = append(s.order, e)
	}

	tq := s.triggers.Query()
	for tq.Next() {
		e := tq.Entity()
		if s.provMap.Has(e) || !s.bndMap.Has(e) {
			continue
		}
		s.trigs.candidates = append(s.trigs.candidates, e)
		if !s.rxMap.Has(e) {
			s.order = append(s.order, e)
		}
	}

	pq := s.providers.Query()
	for pq.Next() {
		tf, bnd, prov := pq.Get()
		s.provs = append(s.provs, providerSnapshot{
			entity: pq.Entity(),
			kind:   prov.Kind,
			shape:  bnd.Shape,
			tf:     *tf,
		})
	}
}

func (s *MoveReceiversSystem) moveOne(e ecs.Entity, dt float64) {
	if !s.bndMap.Has(e) {
		return
	}
	shape := s.bndMap.Get(e).Shape
	tf := *s.tfMap.Get(e)

	var rx *components.StaticReceiver
	if s.rxMap.Has(e) {
		rx = s.rxMap.Get(e)
	}
	isTrig := s.trigMap.Has(e)

	if s.stuckMap.Has(e) {
		// Stuck bodies are placed by the snap stage, they only get to notice
		// triggers, at the spot the snap will put them this tick.
		if isTrig {
			stuck := s.stuckMap.Get(e)
			if alive(s.world, stuck.Parent) && s.tfMap.Has(stuck.Parent) {
				tf = SnapTransform(*stuck, *s.tfMap.Get(stuck.Parent))
			}
			s.trigs.test(e, shape, tf)
		}
		return
	}

	hasTran := s.tranMap.Has(e)
	var vel r2.Vec
	if hasTran {
		vel = s.tranMap.Get(e).Vel
	}
	if rx == nil && s.rotMap.Has(e) {
		tf.Angle += s.rotMap.Get(e).Rot * dt
	}

	step := func() {
		if rx != nil {
			vel = s.resolve(e, rx, shape, &tf, vel)
		}
		if isTrig {
			s.trigs.test(e, shape, tf)
		}
	}

	total := r2.Norm(vel) * dt
	if total == 0 {
		step()
	}
	moved := 0.0
	for moved < total {
		dir := geometry.UnitOrZero(vel)
		mag := math.Min(total-moved, s.res.Tuning.MaxStepLength)
		tf.Pos = r2.Add(tf.Pos, r2.Scale(mag, dir))
		step()
		moved += mag
		// A collision can only slow the body down, never extend the path.
		total = math.Min(total, r2.Norm(vel)*dt)
	}

	*s.tfMap.Get(e) = tf
	if hasTran {
		s.tranMap.Get(e).Vel = vel
	}
}

// resolve pushes the staged receiver out of every overlapping provider,
// records each hit and returns the new velocity.
func (s *MoveReceiversSystem) resolve(e ecs.Entity, rx *components.StaticReceiver, shape geometry.Shape, tf *components.Transform, vel r2.Vec) r2.Vec {
	stuck := false
	for i := range s.provs {
		p := &s.provs[i]
		at := geometry.Placement{Pos: tf.Pos, Angle: tf.Angle}
		other := geometry.Placement{Pos: p.tf.Pos, Angle: p.tf.Angle}
		push, contact, ok := shape.BounceOff(at, p.shape, other)
		if !ok {
			continue
		}

		normal := geometry.UnitOrZero(push)
		if normal == (r2.Vec{}) {
			// Touching without overlap.
			normal = geometry.UnitOrZero(r2.Sub(tf.Pos, contact))
		}
		perp, par := splitVelocity(vel, normal)
		id := s.res.Root.AddStatic(components.StaticCollisionRecord{
			Pos:          contact,
			Provider:     p.entity,
			ProviderKind: p.kind,
			Receiver:     e,
			ReceiverKind: rx.Kind,
			RxPerp:       perp,
			RxPar:        par,
		})
		rx.Collisions = append(rx.Collisions, id)
		prov := s.provMap.Get(p.entity)
		prov.Collisions = append(prov.Collisions, id)

		tf.Pos = r2.Add(tf.Pos, push)

		var stick bool
		vel, stick = respond(vel, normal, p.kind, rx.Kind, rx.Mult, &s.res.Tuning)
		if stick && !stuck {
			stuck = true
			s.res.Commands.InsertStuck(e, components.NewStuck(p.entity, *tf, p.tf))
		}
	}
	return vel
}
