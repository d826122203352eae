package systems

import (
	"errors"
	"slices"
	"testing"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/rookery/components"
	"github.com/pthm-cable/rookery/geometry"
	"github.com/pthm-cable/rookery/telemetry"
)

type recordingTimer struct {
	phases []string
}

func (r *recordingTimer) StartPhase(id string) { r.phases = append(r.phases, id) }

func TestPipelineRunsStagesInOrder(t *testing.T) {
	tests := []struct {
		name     string
		validate bool
		want     []string
	}{
		{"with validation", true, []string{
			telemetry.PhaseResetCollisions,
			telemetry.PhaseValidate,
			telemetry.PhaseMovePlain,
			telemetry.PhaseMoveProviders,
			telemetry.PhaseMoveReceivers,
			telemetry.PhaseSnapStuck,
			telemetry.PhaseGravity,
		}},
		{"without validation", false, []string{
			telemetry.PhaseResetCollisions,
			telemetry.PhaseMovePlain,
			telemetry.PhaseMoveProviders,
			telemetry.PhaseMoveReceivers,
			telemetry.PhaseSnapStuck,
			telemetry.PhaseGravity,
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tuning := DefaultTuning()
			tuning.Validate = tc.validate
			p := NewPipeline(ecs.NewWorld(), tuning)
			timer := &recordingTimer{}
			p.SetTimer(timer)

			p.Step(1.0 / 60)

			if !slices.Equal(timer.phases, tc.want) {
				t.Errorf("phases = %v, want %v", timer.phases, tc.want)
			}
		})
	}
}

func TestRegistryMatchesPerfPhases(t *testing.T) {
	reg := NewSystemRegistry()
	ids := reg.IDs()
	if !slices.Equal(ids, telemetry.Phases) {
		t.Errorf("registry %v does not match perf phases %v", ids, telemetry.Phases)
	}
	if got := reg.ByCategory(CategoryGame); len(got) != 2 {
		t.Errorf("game stages = %v", got)
	}
	if got := reg.ByCategory("dev"); len(got) != 1 || got[0].ID != telemetry.PhaseValidate {
		t.Errorf("dev stages = %v", got)
	}
	if reg.GetName("nope") != "nope" {
		t.Error("unknown IDs should fall back to the ID")
	}
}

func TestValidateCheck(t *testing.T) {
	tw := newTestWorld(t, DefaultTuning())
	v := NewValidateSystem(tw.w)

	tw.wall(r2.Vec{}, 10, 10, components.ProviderNormal)
	tw.ball(r2.Vec{X: 50}, r2.Vec{}, 1, components.ReceiverNormal)
	if err := v.Check(); err != nil {
		t.Fatalf("valid world reported %v", err)
	}

	// Receiver without velocity, and a spinning receiver.
	bad := tw.body(r2.Vec{X: 100}, geometry.Circle(1))
	tw.rx.Add(bad, &components.StaticReceiver{})
	tw.rot.Add(bad, &components.DynoRot{Rot: 1})

	err := v.Check()
	if !errors.Is(err, ErrInvariant) {
		t.Fatalf("expected ErrInvariant, got %v", err)
	}

	defer func() {
		if recover() == nil {
			t.Error("Step should panic on an invalid world")
		}
	}()
	tw.p.Step(0.1)
}

func TestProviderWithTranslationAndRotationPanics(t *testing.T) {
	tuning := DefaultTuning()
	tuning.Validate = false
	tw := newTestWorld(t, tuning)
	e := tw.wall(r2.Vec{}, 10, 10, components.ProviderNormal)
	tw.tran.Add(e, &components.DynoTran{Vel: r2.Vec{X: 1}})
	tw.rot.Add(e, &components.DynoRot{Rot: 1})

	defer func() {
		if recover() == nil {
			t.Error("expected a panic")
		}
	}()
	tw.p.Step(0.1)
}

func TestMovingProvider(t *testing.T) {
	tw := newTestWorld(t, DefaultTuning())
	slider := tw.wall(r2.Vec{}, 10, 10, components.ProviderNormal)
	tw.tran.Add(slider, &components.DynoTran{Vel: r2.Vec{X: 10}})
	spinner := tw.wall(r2.Vec{Y: 100}, 10, 10, components.ProviderNormal)
	tw.rot.Add(spinner, &components.DynoRot{Rot: 2})

	tw.p.Resources().BulletTime.SetCustom(0.5)
	tw.p.Step(0.1)

	if got := tw.pos(slider); !near(got, r2.Vec{X: 0.5}, 1e-12) {
		t.Errorf("slider pos = %v", got)
	}
	if got := tw.tf.Get(spinner).Angle; got != 2*0.05 {
		t.Errorf("spinner angle = %v", got)
	}
}

func TestCommands(t *testing.T) {
	w := ecs.NewWorld()
	cmds := NewCommands(w)
	tfMap := ecs.NewMap1[components.Transform](w)
	stuckMap := ecs.NewMap[components.Stuck](w)

	a := tfMap.NewEntity(&components.Transform{})
	b := tfMap.NewEntity(&components.Transform{})

	cmds.InsertStuck(a, components.Stuck{Parent: b, InitialOffset: r2.Vec{X: 1}})
	cmds.InsertStuck(a, components.Stuck{Parent: b, InitialOffset: r2.Vec{X: 2}})
	if stuckMap.Has(a) {
		t.Fatal("commands applied before flush")
	}
	if n := cmds.Flush(w); n != 2 {
		t.Errorf("Flush ran %d ops, want 2", n)
	}
	if !stuckMap.Has(a) || stuckMap.Get(a).InitialOffset.X != 2 {
		t.Errorf("second insert should replace the first")
	}

	// Ops queued during a flush run in the same flush.
	cmds.Run(func(w *ecs.World) { cmds.RemoveStuck(a) })
	cmds.Despawn(b)
	cmds.Despawn(b)
	if n := cmds.Flush(w); n != 4 {
		t.Errorf("Flush ran %d ops, want 4", n)
	}
	if stuckMap.Has(a) {
		t.Error("RemoveStuck did not run")
	}
	if w.Alive(b) {
		t.Error("b should be despawned")
	}

	cmds.InsertStuck(b, components.Stuck{})
	cmds.Flush(w)
	if cmds.Len() != 0 {
		t.Errorf("queue not empty after flush: %d", cmds.Len())
	}
}
