package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/rookery/components"
	"github.com/pthm-cable/rookery/config"
)

func TestCollectorObserve(t *testing.T) {
	c := NewCollector(1.0, 0.1) // 10 ticks per window
	root := components.NewCollisionRoot()

	root.AddStatic(components.StaticCollisionRecord{
		ProviderKind: components.ProviderNormal,
		ReceiverKind: components.ReceiverNormal,
		RxPerp:       r2.Vec{Y: -30},
	})
	root.AddStatic(components.StaticCollisionRecord{
		ProviderKind: components.ProviderSticky,
		ReceiverKind: components.ReceiverNormal,
		RxPerp:       r2.Vec{Y: -10},
	})
	root.AddStatic(components.StaticCollisionRecord{
		ProviderKind: components.ProviderSticky,
		ReceiverKind: components.ReceiverStop,
	})
	root.AddTrigger(components.TriggerCollisionRecord{OtherKind: components.TriggerHeart})
	c.Observe(root)

	root.Reset()
	root.AddStatic(components.StaticCollisionRecord{ReceiverKind: components.ReceiverGoAround, RxPerp: r2.Vec{X: 20}})
	c.Observe(root)
	c.RecordLaunch()

	if c.ShouldFlush(9) {
		t.Error("window should not be full at tick 9")
	}
	if !c.ShouldFlush(10) {
		t.Error("window should be full at tick 10")
	}

	stats := c.Flush(10, "lobby", 6, 1)

	tests := []struct {
		name string
		got  int
		want int
	}{
		{"static hits", stats.StaticHits, 4},
		{"bounce", stats.BounceHits, 1},
		{"stick", stats.StickHits, 1},
		{"stop", stats.StopHits, 1},
		{"go around", stats.GoAroundHits, 1},
		{"trigger", stats.TriggerHits, 1},
		{"launches", stats.Launches, 1},
		{"peak records", stats.PeakRecords, 4},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.got != tc.want {
				t.Errorf("got %d, want %d", tc.got, tc.want)
			}
		})
	}

	if stats.ImpactMax != 30 {
		t.Errorf("ImpactMax = %v, want 30", stats.ImpactMax)
	}
	if stats.ImpactMean != 15 {
		t.Errorf("ImpactMean = %v, want 15", stats.ImpactMean)
	}
	if stats.Room != "lobby" || stats.Entities != 6 || stats.Stuck != 1 {
		t.Errorf("world sample not carried: %+v", stats)
	}

	// Counters reset for the next window.
	next := c.Flush(20, "lobby", 6, 1)
	if next.StaticHits != 0 || next.Launches != 0 || next.WindowStartTick != 10 {
		t.Errorf("expected fresh window, got %+v", next)
	}
}

func TestOutputManagerWritesCSV(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager: %v", err)
	}

	if err := om.WriteStats(WindowStats{WindowEndTick: 300, Room: "lobby", StaticHits: 4}); err != nil {
		t.Fatal(err)
	}
	if err := om.WriteStats(WindowStats{WindowEndTick: 600, Room: "lobby", StaticHits: 2}); err != nil {
		t.Fatal(err)
	}
	if err := om.WriteEvents([]Event{NewEvent(EventLaunch, 12, 3, r2.Vec{X: 1, Y: 2}).With(0, 90)}); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	if err := om.WriteConfig(cfg); err != nil {
		t.Fatal(err)
	}
	if err := om.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "collisions.csv"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 rows, got %d lines:\n%s", len(lines), data)
	}
	if !strings.HasPrefix(lines[0], "window_end,sim_time,room") {
		t.Errorf("unexpected header %q", lines[0])
	}

	events, err := os.ReadFile(filepath.Join(dir, "events.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(events), "launch,12,3,0,1,2,90") {
		t.Errorf("launch row missing:\n%s", events)
	}
	if _, err := os.Stat(filepath.Join(dir, "config.yaml")); err != nil {
		t.Errorf("config snapshot missing: %v", err)
	}
}

func TestNilOutputManagerIsNoop(t *testing.T) {
	var om *OutputManager
	if err := om.WriteStats(WindowStats{}); err != nil {
		t.Error(err)
	}
	if err := om.Close(); err != nil {
		t.Error(err)
	}
	if om.Dir() != "" {
		t.Error("nil manager should have no dir")
	}
}
