package game

import (
	"log/slog"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/rookery/components"
	"github.com/pthm-cable/rookery/telemetry"
	"github.com/pthm-cable/rookery/ui"
)

// worldProbe reads component state for telemetry and the inspector.
type worldProbe struct {
	world  *ecs.World
	bodies ecs.Filter2[components.Transform, components.Bounds]
	stuck  ecs.Filter1[components.Stuck]

	tfMap    *ecs.Map[components.Transform]
	bndMap   *ecs.Map[components.Bounds]
	tranMap  *ecs.Map[components.DynoTran]
	rotMap   *ecs.Map[components.DynoRot]
	gravMap  *ecs.Map[components.Gravity]
	provMap  *ecs.Map[components.StaticProvider]
	rxMap    *ecs.Map[components.StaticReceiver]
	trigMap  *ecs.Map[components.TriggerReceiver]
	stuckMap *ecs.Map[components.Stuck]
	birdMap  *ecs.Map[components.Bird]
	simpMap  *ecs.Map[components.Simp]
	spewMap  *ecs.Map[components.Spew]
}

func newWorldProbe(w *ecs.World) *worldProbe {
	return &worldProbe{
		world:    w,
		bodies:   *ecs.NewFilter2[components.Transform, components.Bounds](w),
		stuck:    *ecs.NewFilter1[components.Stuck](w),
		tfMap:    ecs.NewMap[components.Transform](w),
		bndMap:   ecs.NewMap[components.Bounds](w),
		tranMap:  ecs.NewMap[components.DynoTran](w),
		rotMap:   ecs.NewMap[components.DynoRot](w),
		gravMap:  ecs.NewMap[components.Gravity](w),
		provMap:  ecs.NewMap[components.StaticProvider](w),
		rxMap:    ecs.NewMap[components.StaticReceiver](w),
		trigMap:  ecs.NewMap[components.TriggerReceiver](w),
		stuckMap: ecs.NewMap[components.Stuck](w),
		birdMap:  ecs.NewMap[components.Bird](w),
		simpMap:  ecs.NewMap[components.Simp](w),
		spewMap:  ecs.NewMap[components.Spew](w),
	}
}

// counts returns the number of bodies and of stuck bodies.
func (p *worldProbe) counts() (entities, stuck int) {
	q := p.bodies.Query()
	for q.Next() {
		entities++
	}
	sq := p.stuck.Query()
	for sq.Next() {
		stuck++
	}
	return entities, stuck
}

// entityState copies one body into its snapshot form.
func (p *worldProbe) entityState(e ecs.Entity, tf *components.Transform, bnd *components.Bounds) telemetry.EntityState {
	s := telemetry.EntityState{
		ID:    e.ID(),
		Shape: bnd.Shape.Kind.String(),
		X:     tf.Pos.X,
		Y:     tf.Pos.Y,
		Angle: tf.Angle,
	}
	if p.tranMap.Has(e) {
		vel := p.tranMap.Get(e).Vel
		s.VelX, s.VelY = &vel.X, &vel.Y
	}
	if p.rotMap.Has(e) {
		rot := p.rotMap.Get(e).Rot
		s.Rot = &rot
	}
	if p.provMap.Has(e) {
		prov := p.provMap.Get(e)
		s.Provider = prov.Kind.String()
		s.Collisions += len(prov.Collisions)
	}
	if p.rxMap.Has(e) {
		rx := p.rxMap.Get(e)
		s.Receiver = rx.Kind.String()
		s.Collisions += len(rx.Collisions)
	}
	if p.trigMap.Has(e) {
		trig := p.trigMap.Get(e)
		s.Trigger = string(trig.Kind)
		s.Collisions += len(trig.Collisions)
	}
	if p.stuckMap.Has(e) {
		parent := p.stuckMap.Get(e).Parent
		if !parent.IsZero() && p.world.Alive(parent) {
			id := parent.ID()
			s.StuckTo = &id
		}
	}
	return s
}

// snapshot captures every body in the world.
func (p *worldProbe) snapshot() []telemetry.EntityState {
	var out []telemetry.EntityState
	q := p.bodies.Query()
	for q.Next() {
		tf, bnd := q.Get()
		out = append(out, p.entityState(q.Entity(), tf, bnd))
	}
	return out
}

// entityInfo builds the inspector view of e, or nil if it is gone.
func (p *worldProbe) entityInfo(e ecs.Entity, maxHealth int) *ui.EntityInfo {
	if e.IsZero() || !p.world.Alive(e) {
		return nil
	}
	if !p.tfMap.Has(e) || !p.bndMap.Has(e) {
		return nil
	}
	st := p.entityState(e, p.tfMap.Get(e), p.bndMap.Get(e))

	info := &ui.EntityInfo{
		ID:         st.ID,
		Shape:      st.Shape,
		X:          st.X,
		Y:          st.Y,
		Angle:      st.Angle,
		Provider:   st.Provider,
		Receiver:   st.Receiver,
		Trigger:    st.Trigger,
		Collisions: st.Collisions,
	}
	if st.VelX != nil {
		info.HasVel = true
		info.VelX, info.VelY = *st.VelX, *st.VelY
	}
	if st.Rot != nil {
		info.HasRot = true
		info.Rot = *st.Rot
	}
	if st.StuckTo != nil {
		info.HasStuck = true
		info.StuckTo = *st.StuckTo
	}
	if p.gravMap.Has(e) {
		info.Gravity = p.gravMap.Get(e).Strength
	}
	if p.rxMap.Has(e) {
		info.Mult = float64(p.rxMap.Get(e).Mult)
	}
	if p.birdMap.Has(e) {
		b := p.birdMap.Get(e)
		info.HasBird = true
		info.Health = b.Health
		info.MaxHealth = maxHealth
		info.Launches = b.LaunchesLeft
		info.Bullets = b.BulletsLeft
		info.Hurt = b.Hurt
	}
	if p.spewMap.Has(e) {
		info.HasEnemy = true
		info.EnemyHealth = p.spewMap.Get(e).Health
	}
	if p.simpMap.Has(e) {
		info.HasEnemy = true
		info.Cooldown = p.simpMap.Get(e).Cooldown
	}
	return info
}

// flushTelemetry checks if the stats window should be flushed and handles bookmarks.
func (g *Game) flushTelemetry() {
	if !g.collector.ShouldFlush(g.tick) {
		return
	}

	entities, stuck := g.probe.counts()
	stats := g.collector.Flush(g.tick, g.room.Name, entities, stuck)
	perfStats := g.perfCollector.Stats()

	if g.logStats {
		stats.LogStats()
		perfStats.LogStats()
		g.logWorldState()
	}

	if err := g.outputManager.WriteStats(stats); err != nil {
		slog.Error("failed to write stats", "error", err)
	}
	if err := g.outputManager.WritePerf(perfStats, stats.WindowEndTick); err != nil {
		slog.Error("failed to write perf", "error", err)
	}
	g.writeEvents()

	for _, bm := range g.bookmarks.Check(stats) {
		if g.logStats {
			bm.LogBookmark()
		}
		if err := g.outputManager.WriteBookmark(bm); err != nil {
			slog.Error("failed to write bookmark", "error", err)
		}
		g.saveSnapshot(&bm)
	}
}

// writeEvents drains the event log into the output.
func (g *Game) writeEvents() {
	events := g.events.Drain()
	if len(events) == 0 {
		return
	}
	if err := g.outputManager.WriteEvents(events); err != nil {
		slog.Error("failed to write events", "error", err)
	}
}

// saveSnapshot writes the world state next to the CSVs.
func (g *Game) saveSnapshot(bookmark *telemetry.Bookmark) {
	if g.outputManager == nil {
		return
	}
	path, err := g.outputManager.WriteSnapshot(g.Snapshot(bookmark))
	if err != nil {
		slog.Error("failed to save snapshot", "error", err)
		return
	}
	slog.Info("snapshot saved", "path", path, "tick", g.tick)
}

// Snapshot builds a snapshot of the current room.
func (g *Game) Snapshot(bookmark *telemetry.Bookmark) *telemetry.Snapshot {
	res := g.pipeline.Resources()
	return &telemetry.Snapshot{
		Version:    telemetry.SnapshotVersion,
		Room:       g.room.Name,
		Tick:       g.tick,
		BulletTime: res.BulletTime.Factor(),
		Entities:   g.probe.snapshot(),
		Bookmark:   bookmark,
	}
}
