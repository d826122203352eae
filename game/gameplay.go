package game

import (
	"log/slog"
	"maps"
	"math"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/rookery/components"
	"github.com/pthm-cable/rookery/config"
	"github.com/pthm-cable/rookery/geometry"
	"github.com/pthm-cable/rookery/systems"
	"github.com/pthm-cable/rookery/telemetry"
)

// Intent is what the player asked for this tick. Input handling or the
// autopilot fills it in; Gameplay consumes it.
type Intent struct {
	Aiming bool   // a launch or fire drag is being held
	Drag   r2.Vec // current drag, world units, pointing where the bird should go
	Launch bool   // launch drag released this tick
	Fire   bool   // fire drag released this tick

	Move     r2.Vec // flight nudge, each axis in [-1, 1]
	FastStop bool
}

// Outcome tells the game what to do with the room after a gameplay update.
type Outcome uint8

const (
	OutcomeNone Outcome = iota
	OutcomeAdvance
	OutcomeDied
)

// Flight constants for steering the bird mid-air.
const (
	flightDrag         = 0.99
	fastStopDrag       = 0.9
	flightHorMul       = 125.0
	flightUpMul        = 800.0
	flightDownMul      = 100.0
	flightSlowDownMul  = 6.0
	flightMaxHorSpeed  = 80.0
	flightMaxUpSpeed   = 80.0
	flightMaxDownSpeed = 240.0

	spewSteer     = 100.0 // acceleration toward the goal
	spewKnockback = 1.0 / 6.0
	simpShotSpeed = 0.5 // fraction of the bird's bullet speed
	cullMargin    = 200.0
)

// Gameplay reacts to the collisions the physics recorded. It runs once per
// tick after the pipeline, so every collisions list it reads belongs to the
// tick that just finished.
type Gameplay struct {
	world   *ecs.World
	res     *systems.Resources
	spawner *Spawner
	cfg     config.GameConfig
	room    *RoomSpec

	collector *telemetry.Collector
	events    *telemetry.EventLog

	bird ecs.Entity

	tfMap     *ecs.Map[components.Transform]
	tranMap   *ecs.Map[components.DynoTran]
	stuckMap  *ecs.Map[components.Stuck]
	birdMap   *ecs.Map[components.Bird]
	bulletMap *ecs.Map[components.Bullet]
	rxMap     *ecs.Map[components.StaticReceiver]
	trigMap   *ecs.Map[components.TriggerReceiver]

	bullets ecs.Filter3[components.Transform, components.Bullet, components.StaticReceiver]
	hearts  ecs.Filter3[components.Transform, components.Heart, components.TriggerReceiver]
	goNexts ecs.Filter3[components.Transform, components.GoNext, components.TriggerReceiver]
	simps   ecs.Filter2[components.Transform, components.Simp]
	spews   ecs.Filter4[components.Transform, components.DynoTran, components.Spew, components.TriggerReceiver]
	patrols ecs.Filter3[components.Transform, components.DynoTran, components.Patrol]

	// Per-update scratch
	despawned map[ecs.Entity]bool
	shots     []shot

	overrideOn     bool
	overrideFactor float64
	tutorials      map[string]bool
}

type shot struct {
	pos, vel r2.Vec
}

// NewGameplay binds gameplay to a world built by NewPipeline.
func NewGameplay(w *ecs.World, res *systems.Resources, spawner *Spawner, cfg config.GameConfig, collector *telemetry.Collector, events *telemetry.EventLog) *Gameplay {
	return &Gameplay{
		world:     w,
		res:       res,
		spawner:   spawner,
		cfg:       cfg,
		collector: collector,
		events:    events,

		tfMap:     ecs.NewMap[components.Transform](w),
		tranMap:   ecs.NewMap[components.DynoTran](w),
		stuckMap:  ecs.NewMap[components.Stuck](w),
		birdMap:   ecs.NewMap[components.Bird](w),
		bulletMap: ecs.NewMap[components.Bullet](w),
		rxMap:     ecs.NewMap[components.StaticReceiver](w),
		trigMap:   ecs.NewMap[components.TriggerReceiver](w),

		bullets: *ecs.NewFilter3[components.Transform, components.Bullet, components.StaticReceiver](w),
		hearts:  *ecs.NewFilter3[components.Transform, components.Heart, components.TriggerReceiver](w),
		goNexts: *ecs.NewFilter3[components.Transform, components.GoNext, components.TriggerReceiver](w),
		simps:   *ecs.NewFilter2[components.Transform, components.Simp](w),
		spews:   *ecs.NewFilter4[components.Transform, components.DynoTran, components.Spew, components.TriggerReceiver](w),
		patrols: *ecs.NewFilter3[components.Transform, components.DynoTran, components.Patrol](w),

		despawned: make(map[ecs.Entity]bool),
		tutorials: make(map[string]bool),
	}
}

// LoadRoom spawns the room and the bird.
func (g *Gameplay) LoadRoom(room *RoomSpec) {
	g.room = room
	g.spawner.SpawnRoom(room)
	g.bird = g.spawner.SpawnBird(room.Bird.Vec(), r2.Vec{})
	slog.Info("room loaded", "room", room.Name, "entities", len(room.Entities))
}

// Room returns the current room spec.
func (g *Gameplay) Room() *RoomSpec {
	return g.room
}

// Bird returns the bird entity. It may be dead after a fatal hit.
func (g *Gameplay) Bird() ecs.Entity {
	return g.bird
}

// BirdState reports the bird's placement and counters.
func (g *Gameplay) BirdState() (tf components.Transform, vel r2.Vec, bird components.Bird, stuck, ok bool) {
	if !g.alive(g.bird) {
		return tf, vel, bird, false, false
	}
	return *g.tfMap.Get(g.bird), g.tranMap.Get(g.bird).Vel, *g.birdMap.Get(g.bird), g.stuckMap.Has(g.bird), true
}

// Targets returns the positions of every go-next target.
func (g *Gameplay) Targets() []r2.Vec {
	var out []r2.Vec
	q := g.goNexts.Query()
	for q.Next() {
		tf, _, _ := q.Get()
		out = append(out, tf.Pos)
	}
	return out
}

// SetBulletTimeOverride pins the time factor, ignoring dragging. It is the
// debug slider's hook.
func (g *Gameplay) SetBulletTimeOverride(on bool, factor float64) {
	g.overrideOn = on
	g.overrideFactor = factor
}

func (g *Gameplay) alive(e ecs.Entity) bool {
	return !e.IsZero() && g.world.Alive(e)
}

// Update applies one tick of game rules.
func (g *Gameplay) Update(in Intent) Outcome {
	clear(g.despawned)
	g.shots = g.shots[:0]
	dt := g.res.Time.Scaled(&g.res.BulletTime)
	outcome := OutcomeNone

	if g.alive(g.bird) {
		g.steerBird(in)
		g.refill()
		if g.hurtBird(dt) {
			outcome = OutcomeDied
		}
		g.tutorial()
	}
	g.updateBulletTime(in)

	g.updateBullets()
	g.updateHearts()
	if g.updateGoNext() && outcome == OutcomeNone {
		outcome = OutcomeAdvance
	}
	g.updateSpews(dt)
	g.updateSimps(dt)
	g.updatePatrols()

	// Spawning is structural, so it waits until every query is closed.
	for _, s := range g.shots {
		g.spawner.SpawnBullet(s.pos, s.vel, false)
	}
	return outcome
}

func (g *Gameplay) updateBulletTime(in Intent) {
	bt := &g.res.BulletTime
	if g.overrideOn {
		bt.SetCustom(g.overrideFactor)
		return
	}
	if !g.alive(g.bird) {
		bt.SetInactive()
		return
	}
	bird := g.birdMap.Get(g.bird)
	if in.Aiming && (bird.LaunchesLeft > 0 || bird.BulletsLeft > 0) {
		bt.SetActive()
	} else {
		bt.SetInactive()
	}
}

// steerBird handles launching, firing and mid-air flight.
func (g *Gameplay) steerBird(in Intent) {
	bird := g.birdMap.Get(g.bird)
	tf := g.tfMap.Get(g.bird)
	tran := g.tranMap.Get(g.bird)

	if in.Launch && bird.LaunchesLeft > 0 {
		bird.LaunchesLeft--
		drag := in.Drag
		if n := r2.Norm(drag); n > g.cfg.MaxDrag {
			drag = r2.Scale(g.cfg.MaxDrag/n, drag)
		}
		tran.Vel = r2.Scale(g.cfg.LaunchSpeed, drag)
		tf.Angle = 0
		g.res.Commands.RemoveStuck(g.bird)
		g.collector.RecordLaunch()
		g.events.Add(telemetry.NewEvent(telemetry.EventLaunch, g.res.Time.Tick, g.bird.ID(), tf.Pos).With(0, r2.Norm(tran.Vel)))
	}
	if in.Fire && bird.BulletsLeft > 0 {
		if dir := geometry.UnitOrZero(in.Drag); dir != (r2.Vec{}) {
			bird.BulletsLeft--
			g.spawner.SpawnBullet(tf.Pos, r2.Scale(g.cfg.BulletSpeed, dir), true)
		}
	}

	if in.Move != (r2.Vec{}) {
		tf.Angle = 0
		g.res.Commands.RemoveStuck(g.bird)
		dt := g.res.Time.Scaled(&g.res.BulletTime)
		tran.Vel = flightNudge(tran.Vel, in.Move, dt)
	}
	switch {
	case in.FastStop:
		tran.Vel = r2.Scale(fastStopDrag, tran.Vel)
	case g.res.BulletTime.Mode == systems.BulletTimeInactive:
		tran.Vel = r2.Scale(flightDrag, tran.Vel)
	}
}

// flightNudge accelerates vel along dir, up to the flight speed limits.
// Pushing against a speed above the limit brakes harder.
func flightNudge(vel, dir r2.Vec, dt float64) r2.Vec {
	nx := dir.X * flightHorMul * dt
	ny := dir.Y * flightDownMul * dt
	if dir.Y > 0 {
		ny = dir.Y * flightUpMul * dt
	}
	vel.X = nudgeAxis(vel.X, nx, flightMaxHorSpeed, flightMaxHorSpeed)
	vel.Y = nudgeAxis(vel.Y, ny, flightMaxUpSpeed, flightMaxDownSpeed)
	return vel
}

func nudgeAxis(v, nudge, maxPos, maxNeg float64) float64 {
	switch {
	case nudge > 0 && v < -maxNeg:
		return v + nudge*flightSlowDownMul
	case nudge > 0 && v < maxPos:
		return v + nudge
	case nudge < 0 && v > maxPos:
		return v + nudge*flightSlowDownMul
	case nudge < 0 && v > -maxNeg:
		return v + nudge
	}
	return v
}

// refill tops up launches and bullets when the bird lands on something sticky.
func (g *Gameplay) refill() {
	rx := g.rxMap.Get(g.bird)
	for _, id := range rx.Collisions {
		rec, ok := g.res.Root.Static(id)
		if !ok || rec.ProviderKind != components.ProviderSticky {
			continue
		}
		bird := g.birdMap.Get(g.bird)
		bird.LaunchesLeft = g.cfg.Launches
		bird.BulletsLeft = g.cfg.Bullets
		g.events.Add(telemetry.NewEvent(telemetry.EventStick, g.res.Time.Tick, g.bird.ID(), rec.Pos).
			With(rec.Provider.ID(), r2.Norm(rec.RxPerp)))
		return
	}
}

// hurtBird applies damage from enemies and bad bullets and reports whether
// the bird died.
func (g *Gameplay) hurtBird(dt float64) bool {
	bird := g.birdMap.Get(g.bird)
	if bird.Hurt > 0 {
		bird.Hurt = math.Max(0, bird.Hurt-dt)
	}
	tr := g.trigMap.Get(g.bird)
	for _, id := range tr.Collisions {
		rec, ok := g.res.Root.Trigger(id)
		if !ok {
			continue
		}
		if rec.OtherKind == components.TriggerBulletBad {
			g.despawn(rec.Other, rec.Pos)
		} else if rec.OtherKind != components.TriggerSimpBody {
			continue
		}
		if bird.Hurt > 0 {
			continue
		}
		bird.Health--
		bird.Hurt = g.cfg.DamageCooldown
		g.collector.RecordDamage()
		g.events.Add(telemetry.NewEvent(telemetry.EventDamage, g.res.Time.Tick, g.bird.ID(), rec.Pos).With(rec.Other.ID(), 1))
		slog.Debug("bird hit", "by", string(rec.OtherKind), "health", bird.Health)
	}
	return bird.Health <= 0
}

func (g *Gameplay) tutorial() {
	tr := g.trigMap.Get(g.bird)
	for _, id := range tr.Collisions {
		rec, ok := g.res.Root.Trigger(id)
		if !ok {
			continue
		}
		key, found := tutorialKey(rec.OtherKind)
		if !found || g.tutorials[key] {
			continue
		}
		g.tutorials[key] = true
		slog.Info("tutorial reached", "key", key)
	}
}

func tutorialKey(k components.TriggerKind) (string, bool) {
	const prefix = "tutorial:"
	s := string(k)
	if len(s) > len(prefix) && s[:len(prefix)] == prefix {
		return s[len(prefix):], true
	}
	return "", false
}

// updateBullets despawns every bullet that hit a static this tick, and
// bullets that left the room.
func (g *Gameplay) updateBullets() {
	hw := g.room.Size[0]/2 + cullMargin
	hh := g.room.Size[1]/2 + cullMargin
	q := g.bullets.Query()
	for q.Next() {
		e := q.Entity()
		tf, _, rx := q.Get()
		if len(rx.Collisions) > 0 || math.Abs(tf.Pos.X) > hw || math.Abs(tf.Pos.Y) > hh {
			g.despawn(e, tf.Pos)
		}
	}
}

func (g *Gameplay) updateHearts() {
	q := g.hearts.Query()
	for q.Next() {
		e := q.Entity()
		tf, _, tr := q.Get()
		if !g.touchedBy(tr, components.TriggerBird, components.TriggerBulletGood) {
			continue
		}
		g.despawn(e, tf.Pos)
		g.collector.RecordPickup()
		g.events.Add(telemetry.NewEvent(telemetry.EventPickup, g.res.Time.Tick, e.ID(), tf.Pos))
		if g.alive(g.bird) {
			bird := g.birdMap.Get(g.bird)
			bird.Health = min(bird.Health+1, g.cfg.Health)
		}
	}
}

func (g *Gameplay) updateGoNext() bool {
	hit := false
	q := g.goNexts.Query()
	for q.Next() {
		tf, _, tr := q.Get()
		if g.touchedBy(tr, components.TriggerBulletGood) {
			hit = true
			g.collector.RecordRoomAdvance()
			g.events.Add(telemetry.NewEvent(telemetry.EventRoomAdvance, g.res.Time.Tick, q.Entity().ID(), tf.Pos))
		}
	}
	return hit
}

func (g *Gameplay) touchedBy(tr *components.TriggerReceiver, kinds ...components.TriggerKind) bool {
	for _, id := range tr.Collisions {
		rec, ok := g.res.Root.Trigger(id)
		if !ok {
			continue
		}
		for _, k := range kinds {
			if rec.OtherKind == k {
				return true
			}
		}
	}
	return false
}

// updateSpews hurts spews hit by good bullets and steers the rest toward
// where the bird is going to be.
func (g *Gameplay) updateSpews(dt float64) {
	var goal r2.Vec
	hasBird := g.alive(g.bird)
	var birdPos, birdVel r2.Vec
	if hasBird {
		birdPos = g.tfMap.Get(g.bird).Pos
		birdVel = g.tranMap.Get(g.bird).Vel
	}

	q := g.spews.Query()
	for q.Next() {
		e := q.Entity()
		tf, tran, spew, tr := q.Get()

		// Keys are last tick's hits; values mark who is still touching.
		for b := range spew.ImmuneTo {
			spew.ImmuneTo[b] = false
		}
		for _, id := range tr.Collisions {
			rec, ok := g.res.Root.Trigger(id)
			if !ok || rec.OtherKind != components.TriggerBulletGood {
				continue
			}
			_, immune := spew.ImmuneTo[rec.Other]
			spew.ImmuneTo[rec.Other] = true
			if immune {
				continue
			}
			spew.Health--
			if g.tranMap.Has(rec.Other) {
				tran.Vel = r2.Add(tran.Vel, r2.Scale(spewKnockback, g.tranMap.Get(rec.Other).Vel))
			}
		}
		maps.DeleteFunc(spew.ImmuneTo, func(_ ecs.Entity, touching bool) bool { return !touching })
		if spew.Health <= 0 {
			g.despawn(e, tf.Pos)
			continue
		}

		if !hasBird {
			continue
		}
		goal = r2.Add(birdPos, r2.Scale(spew.PreferFuture, birdVel))
		dir := geometry.UnitOrZero(r2.Sub(goal, tf.Pos))
		tran.Vel = r2.Add(tran.Vel, r2.Scale(spewSteer*dt, dir))
		if n := r2.Norm(tran.Vel); n > spew.Speed {
			tran.Vel = r2.Scale(spew.Speed/n, tran.Vel)
		}
	}
}

// updateSimps counts down each turret and queues a bad bullet at the bird
// when it is ready.
func (g *Gameplay) updateSimps(dt float64) {
	if !g.alive(g.bird) {
		return
	}
	birdPos := g.tfMap.Get(g.bird).Pos
	speed := g.cfg.BulletSpeed * simpShotSpeed

	q := g.simps.Query()
	for q.Next() {
		tf, simp := q.Get()
		simp.Cooldown -= dt
		if simp.Cooldown > 0 {
			continue
		}
		simp.Cooldown += simp.FireEvery
		dir := geometry.UnitOrZero(r2.Sub(birdPos, tf.Pos))
		if dir == (r2.Vec{}) {
			continue
		}
		g.shots = append(g.shots, shot{pos: tf.Pos, vel: r2.Scale(speed, dir)})
	}
}

// updatePatrols turns moving platforms around at the end of their range.
func (g *Gameplay) updatePatrols() {
	q := g.patrols.Query()
	for q.Next() {
		tf, tran, patrol := q.Get()
		off := r2.Sub(tf.Pos, patrol.Origin)
		if r2.Norm(off) >= patrol.Range && r2.Dot(off, tran.Vel) > 0 {
			tran.Vel = r2.Scale(-1, tran.Vel)
		}
	}
}

// despawn queues e for removal once per update.
func (g *Gameplay) despawn(e ecs.Entity, pos r2.Vec) {
	if g.despawned[e] || !g.alive(e) {
		return
	}
	g.despawned[e] = true
	g.res.Commands.Despawn(e)
	g.collector.RecordDespawn()
	g.events.Add(telemetry.NewEvent(telemetry.EventDespawn, g.res.Time.Tick, e.ID(), pos))
}
