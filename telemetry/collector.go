package telemetry

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/rookery/components"
)

// Collector accumulates collision events within time windows and produces WindowStats.
type Collector struct {
	windowDurationTicks int64
	dt                  float64

	// Current window tracking
	windowStartTick int64

	// Event counters for current window
	bounceHits   int
	stickHits    int
	stopHits     int
	goAroundHits int
	triggerHits  int
	launches     int
	despawns     int
	pickups      int
	roomAdvances int
	damage       int
	peakRecords  int
	impacts      []float64
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per tick (used for tick-to-time conversion)
func NewCollector(windowDurationSec float64, dt float64) *Collector {
	ticksPerWindow := int64(windowDurationSec / dt)
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}

	return &Collector{
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
	}
}

// Observe counts the records of the tick that just ran. Call it once per
// tick, before the next reset drops them.
func (c *Collector) Observe(root *components.CollisionRoot) {
	statics, triggers := root.Len()
	if statics+triggers > c.peakRecords {
		c.peakRecords = statics + triggers
	}
	c.triggerHits += triggers

	for _, rec := range root.Statics() {
		switch rec.ReceiverKind {
		case components.ReceiverStop:
			c.stopHits++
		case components.ReceiverGoAround:
			c.goAroundHits++
		case components.ReceiverNormal:
			if rec.ProviderKind == components.ProviderSticky {
				c.stickHits++
			} else {
				c.bounceHits++
			}
		}
		c.impacts = append(c.impacts, r2.Norm(rec.RxPerp))
	}
}

// RecordLaunch records the bird leaving a perch.
func (c *Collector) RecordLaunch() {
	c.launches++
}

// RecordDespawn records an entity removed by gameplay.
func (c *Collector) RecordDespawn() {
	c.despawns++
}

// RecordPickup records a heart pickup.
func (c *Collector) RecordPickup() {
	c.pickups++
}

// RecordRoomAdvance records a go-next hit.
func (c *Collector) RecordRoomAdvance() {
	c.roomAdvances++
}

// RecordDamage records the bird taking a hit.
func (c *Collector) RecordDamage() {
	c.damage++
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int64) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Flush produces a WindowStats and resets counters for the next window.
// The caller provides the world state sampled at window end.
func (c *Collector) Flush(currentTick int64, room string, entities, stuck int) WindowStats {
	mean, p50, p90, peak := ComputeImpactStats(c.impacts)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * c.dt,
		Room:            room,

		Entities: entities,
		Stuck:    stuck,

		StaticHits:   c.bounceHits + c.stickHits + c.stopHits + c.goAroundHits,
		BounceHits:   c.bounceHits,
		StickHits:    c.stickHits,
		StopHits:     c.stopHits,
		GoAroundHits: c.goAroundHits,
		TriggerHits:  c.triggerHits,

		Launches:     c.launches,
		Despawns:     c.despawns,
		Pickups:      c.pickups,
		RoomAdvances: c.roomAdvances,
		Damage:       c.damage,

		ImpactMean: mean,
		ImpactP50:  p50,
		ImpactP90:  p90,
		ImpactMax:  peak,

		PeakRecords: c.peakRecords,
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.bounceHits = 0
	c.stickHits = 0
	c.stopHits = 0
	c.goAroundHits = 0
	c.triggerHits = 0
	c.launches = 0
	c.despawns = 0
	c.pickups = 0
	c.roomAdvances = 0
	c.damage = 0
	c.peakRecords = 0
	c.impacts = c.impacts[:0]

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int64 {
	return c.windowDurationTicks
}
