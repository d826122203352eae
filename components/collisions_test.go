package components

import (
	"errors"
	"testing"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"
)

func TestCollisionRootHandles(t *testing.T) {
	root := NewCollisionRoot()

	sid := root.AddStatic(StaticCollisionRecord{Pos: r2.Vec{X: 1}, ProviderKind: ProviderSticky})
	tid := root.AddTrigger(TriggerCollisionRecord{OtherKind: TriggerHeart})

	rec, ok := root.Static(sid)
	if !ok || rec.Pos.X != 1 || rec.ProviderKind != ProviderSticky {
		t.Fatalf("Static(%v) = %+v, %v", sid, rec, ok)
	}
	trig, ok := root.Trigger(tid)
	if !ok || trig.OtherKind != TriggerHeart {
		t.Fatalf("Trigger(%v) = %+v, %v", tid, trig, ok)
	}

	gen := root.Generation()
	root.Reset()
	if root.Generation() == gen {
		t.Error("Reset should advance the generation")
	}
	if _, ok := root.Static(sid); ok {
		t.Error("static handle from the previous tick still resolves")
	}
	if _, ok := root.Trigger(tid); ok {
		t.Error("trigger handle from the previous tick still resolves")
	}
	if s, tr := root.Len(); s != 0 || tr != 0 {
		t.Errorf("Len after Reset = %d, %d", s, tr)
	}

	// Same index, new generation: only the new handle resolves.
	sid2 := root.AddStatic(StaticCollisionRecord{Pos: r2.Vec{X: 2}})
	if _, ok := root.Static(sid); ok {
		t.Error("stale handle aliases a new record")
	}
	if rec, ok := root.Static(sid2); !ok || rec.Pos.X != 2 {
		t.Errorf("Static(new) = %+v, %v", rec, ok)
	}
}

func TestZeroHandleNeverResolves(t *testing.T) {
	root := NewCollisionRoot()
	root.AddStatic(StaticCollisionRecord{})
	if _, ok := root.Static(StaticCollisionID{}); ok {
		t.Error("zero static handle resolved")
	}
	if _, ok := root.Trigger(TriggerCollisionID{}); ok {
		t.Error("zero trigger handle resolved")
	}
}

func TestParseKinds(t *testing.T) {
	for _, name := range ProviderKindNames() {
		k, err := ParseProviderKind(name)
		if err != nil {
			t.Fatalf("ParseProviderKind(%q): %v", name, err)
		}
		if k.String() != name {
			t.Errorf("provider %q round trips to %q", name, k.String())
		}
	}
	for _, name := range ReceiverKindNames() {
		k, err := ParseReceiverKind(name)
		if err != nil {
			t.Fatalf("ParseReceiverKind(%q): %v", name, err)
		}
		if k.String() != name {
			t.Errorf("receiver %q round trips to %q", name, k.String())
		}
	}

	if _, err := ParseProviderKind("bouncy"); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("expected ErrUnknownKind, got %v", err)
	}
	if _, err := ParseReceiverKind(""); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("expected ErrUnknownKind, got %v", err)
	}
	if got := StaticReceiverKind(9).String(); got != "unknown" {
		t.Errorf("out of range kind = %q", got)
	}
}

func TestNewStuckOffset(t *testing.T) {
	parent := Transform{Pos: r2.Vec{X: 10, Y: 5}, Angle: 0.5}
	child := Transform{Pos: r2.Vec{X: 12, Y: 9}, Angle: 1.5}
	s := NewStuck(ecs.Entity{}, child, parent)
	if s.InitialOffset != (r2.Vec{X: 2, Y: 4}) {
		t.Errorf("InitialOffset = %v", s.InitialOffset)
	}
	if s.MyInitialAngle != 1.5 || s.ParentInitialAngle != 0.5 {
		t.Errorf("angles = %v, %v", s.MyInitialAngle, s.ParentInitialAngle)
	}
}
