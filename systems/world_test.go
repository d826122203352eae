package systems

import (
	"testing"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/rookery/components"
	"github.com/pthm-cable/rookery/geometry"
)

// testWorld wires a pipeline with component maps for building scenarios.
type testWorld struct {
	w *ecs.World
	p *Pipeline

	spawner *ecs.Map1[components.Transform]
	tf      *ecs.Map[components.Transform]
	bnd     *ecs.Map[components.Bounds]
	tran    *ecs.Map[components.DynoTran]
	rot     *ecs.Map[components.DynoRot]
	grav    *ecs.Map[components.Gravity]
	prov    *ecs.Map[components.StaticProvider]
	rx      *ecs.Map[components.StaticReceiver]
	trig    *ecs.Map[components.TriggerReceiver]
	stuck   *ecs.Map[components.Stuck]
}

func newTestWorld(t testing.TB, tuning Tuning) *testWorld {
	t.Helper()
	w := ecs.NewWorld()
	return &testWorld{
		w:       w,
		p:       NewPipeline(w, tuning),
		spawner: ecs.NewMap1[components.Transform](w),
		tf:      ecs.NewMap[components.Transform](w),
		bnd:     ecs.NewMap[components.Bounds](w),
		tran:    ecs.NewMap[components.DynoTran](w),
		rot:     ecs.NewMap[components.DynoRot](w),
		grav:    ecs.NewMap[components.Gravity](w),
		prov:    ecs.NewMap[components.StaticProvider](w),
		rx:      ecs.NewMap[components.StaticReceiver](w),
		trig:    ecs.NewMap[components.TriggerReceiver](w),
		stuck:   ecs.NewMap[components.Stuck](w),
	}
}

func (tw *testWorld) body(pos r2.Vec, shape geometry.Shape) ecs.Entity {
	e := tw.spawner.NewEntity(&components.Transform{Pos: pos})
	tw.bnd.Add(e, &components.Bounds{Shape: shape})
	return e
}

func (tw *testWorld) wall(pos r2.Vec, w, h float64, kind components.StaticProviderKind) ecs.Entity {
	e := tw.body(pos, geometry.Rect(w, h))
	tw.prov.Add(e, &components.StaticProvider{Kind: kind})
	return e
}

func (tw *testWorld) ball(pos, vel r2.Vec, radius float64, kind components.StaticReceiverKind) ecs.Entity {
	e := tw.body(pos, geometry.Circle(radius))
	tw.tran.Add(e, &components.DynoTran{Vel: vel})
	tw.rx.Add(e, &components.StaticReceiver{Kind: kind})
	return e
}

func (tw *testWorld) trigger(e ecs.Entity, kind components.TriggerKind) {
	tw.trig.Add(e, &components.TriggerReceiver{Kind: kind})
}

func (tw *testWorld) pos(e ecs.Entity) r2.Vec {
	return tw.tf.Get(e).Pos
}

func (tw *testWorld) vel(e ecs.Entity) r2.Vec {
	return tw.tran.Get(e).Vel
}

func near(a, b r2.Vec, tol float64) bool {
	return r2.Norm(r2.Sub(a, b)) <= tol
}
