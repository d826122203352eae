package game

import (
	"math"
	"testing"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"
	"pgregory.net/rapid"

	"github.com/pthm-cable/rookery/components"
	"github.com/pthm-cable/rookery/config"
	"github.com/pthm-cable/rookery/geometry"
	"github.com/pthm-cable/rookery/systems"
	"github.com/pthm-cable/rookery/telemetry"
)

// testGameplay runs gameplay on a world without the viewer or output files.
type testGameplay struct {
	t      *testing.T
	cfg    *config.Config
	w      *ecs.World
	p      *systems.Pipeline
	gp     *Gameplay
	events *telemetry.EventLog
}

func newTestGameplay(t *testing.T, room *RoomSpec) *testGameplay {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	w := ecs.NewWorld()
	p := systems.NewPipeline(w, systems.TuningFromConfig(cfg.Physics))
	res := p.Resources()
	res.BulletTime.ActiveFactor = cfg.Physics.BulletTimeActive

	events := &telemetry.EventLog{}
	gp := NewGameplay(w, res, NewSpawner(w, cfg), cfg.Game, telemetry.NewCollector(cfg.Telemetry.StatsWindow, cfg.Physics.DT), events)
	gp.LoadRoom(room)
	return &testGameplay{t: t, cfg: cfg, w: w, p: p, gp: gp, events: events}
}

// openRoom is an empty room with the bird well away from the origin.
func openRoom() *RoomSpec {
	return &RoomSpec{Name: "test", Size: Vec2{400, 400}, Bird: Vec2{-150, 0}}
}

func (tg *testGameplay) step(in Intent) Outcome {
	tg.p.Step(tg.cfg.Physics.DT)
	out := tg.gp.Update(in)
	tg.p.Resources().Commands.Flush(tg.w)
	return out
}

func (tg *testGameplay) bird() *components.Bird {
	return tg.gp.birdMap.Get(tg.gp.Bird())
}

func (tg *testGameplay) birdPos() r2.Vec {
	return tg.gp.tfMap.Get(tg.gp.Bird()).Pos
}

func (tg *testGameplay) alive(e ecs.Entity) bool {
	return tg.w.Alive(e)
}

func (tg *testGameplay) hasEvent(typ telemetry.EventType) bool {
	for _, e := range tg.events.Drain() {
		if e.Type == typ {
			return true
		}
	}
	return false
}

func TestBulletDespawnsOnWall(t *testing.T) {
	tg := newTestGameplay(t, openRoom())
	tg.gp.spawner.SpawnWall(r2.Vec{X: 50}, geometry.Rect(10, 100))
	bullet := tg.gp.spawner.SpawnBullet(r2.Vec{X: 30}, r2.Vec{X: 250}, true)

	for i := 0; i < 30 && tg.alive(bullet); i++ {
		tg.step(Intent{})
	}
	if tg.alive(bullet) {
		t.Fatal("bullet survived hitting a wall")
	}
	if !tg.hasEvent(telemetry.EventDespawn) {
		t.Error("no despawn event recorded")
	}
}

func TestBulletCulledOutsideRoom(t *testing.T) {
	tg := newTestGameplay(t, openRoom())
	bullet := tg.gp.spawner.SpawnBullet(r2.Vec{X: 390}, r2.Vec{X: 250}, true)

	for i := 0; i < 30 && tg.alive(bullet); i++ {
		tg.step(Intent{})
	}
	if tg.alive(bullet) {
		t.Fatal("bullet outside the room was not despawned")
	}
}

func TestHeartPickup(t *testing.T) {
	tg := newTestGameplay(t, openRoom())
	tg.bird().Health = 1
	heart := tg.gp.spawner.SpawnHeart(r2.Add(tg.birdPos(), r2.Vec{X: 3}), geometry.Circle(6))

	tg.step(Intent{})

	if tg.alive(heart) {
		t.Error("heart was not picked up")
	}
	if got := tg.bird().Health; got != 2 {
		t.Errorf("health = %d, want 2", got)
	}
	if !tg.hasEvent(telemetry.EventPickup) {
		t.Error("no pickup event recorded")
	}
}

func TestHeartDoesNotOverheal(t *testing.T) {
	tg := newTestGameplay(t, openRoom())
	tg.gp.spawner.SpawnHeart(r2.Add(tg.birdPos(), r2.Vec{X: 3}), geometry.Circle(6))

	tg.step(Intent{})

	if got := tg.bird().Health; got != tg.cfg.Game.Health {
		t.Errorf("health = %d, want max %d", got, tg.cfg.Game.Health)
	}
}

func TestGoNextNeedsGoodBullet(t *testing.T) {
	tests := []struct {
		name string
		good bool
		want Outcome
	}{
		{"good bullet advances", true, OutcomeAdvance},
		{"bad bullet does nothing", false, OutcomeNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tg := newTestGameplay(t, openRoom())
			tg.gp.spawner.SpawnGoNext(r2.Vec{X: 100}, geometry.Circle(10))
			tg.gp.spawner.SpawnBullet(r2.Vec{X: 80}, r2.Vec{X: 250}, tt.good)

			got := OutcomeNone
			for i := 0; i < 20 && got == OutcomeNone; i++ {
				got = tg.step(Intent{})
			}
			if got != tt.want {
				t.Errorf("outcome = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEnemyContactDamage(t *testing.T) {
	tg := newTestGameplay(t, openRoom())
	tg.gp.spawner.SpawnSimp(r2.Add(tg.birdPos(), r2.Vec{X: 4}), geometry.Circle(8), 0)

	tg.step(Intent{})
	if got := tg.bird().Health; got != 2 {
		t.Fatalf("health after first contact = %d, want 2", got)
	}
	if tg.bird().Hurt <= 0 {
		t.Fatal("bird should be invulnerable after a hit")
	}

	for i := 0; i < 10; i++ {
		tg.step(Intent{})
	}
	if got := tg.bird().Health; got != 2 {
		t.Errorf("health during cooldown = %d, want 2", got)
	}

	tg.bird().Hurt = 0
	tg.step(Intent{})
	if got := tg.bird().Health; got != 1 {
		t.Errorf("health after cooldown = %d, want 1", got)
	}

	tg.bird().Hurt = 0
	if got := tg.step(Intent{}); got != OutcomeDied {
		t.Errorf("outcome = %v, want died", got)
	}
	if !tg.hasEvent(telemetry.EventDamage) {
		t.Error("no damage event recorded")
	}
}

func TestBadBulletHurtsAndDespawns(t *testing.T) {
	tg := newTestGameplay(t, openRoom())
	bullet := tg.gp.spawner.SpawnBullet(r2.Add(tg.birdPos(), r2.Vec{X: 4}), r2.Vec{}, false)

	tg.step(Intent{})

	if tg.alive(bullet) {
		t.Error("bad bullet should despawn on hitting the bird")
	}
	if got := tg.bird().Health; got != 2 {
		t.Errorf("health = %d, want 2", got)
	}
}

// stickBird drops the bird onto a sticky ledge and waits until it lands.
func stickBird(t *testing.T, tg *testGameplay) {
	t.Helper()
	tg.gp.spawner.SpawnSticky(r2.Vec{Y: -20}, geometry.Rect(100, 10))
	tg.gp.tfMap.Get(tg.gp.Bird()).Pos = r2.Vec{Y: -9}
	for i := 0; i < 60; i++ {
		tg.step(Intent{})
	}
	if _, _, _, stuck, _ := tg.gp.BirdState(); !stuck {
		t.Fatal("bird did not stick to the ledge")
	}
}

func TestStickyRefill(t *testing.T) {
	tg := newTestGameplay(t, openRoom())
	tg.bird().LaunchesLeft = 0
	tg.bird().BulletsLeft = 0

	stickBird(t, tg)

	if got := tg.bird().LaunchesLeft; got != tg.cfg.Game.Launches {
		t.Errorf("launches = %d, want %d", got, tg.cfg.Game.Launches)
	}
	if got := tg.bird().BulletsLeft; got != tg.cfg.Game.Bullets {
		t.Errorf("bullets = %d, want %d", got, tg.cfg.Game.Bullets)
	}
	if !tg.hasEvent(telemetry.EventStick) {
		t.Error("no stick event recorded")
	}
}

func TestLaunch(t *testing.T) {
	tg := newTestGameplay(t, openRoom())
	stickBird(t, tg)
	tg.events.Drain()

	tests := []struct {
		name string
		drag r2.Vec
		want float64
	}{
		{"within max drag", r2.Vec{Y: 50}, 50},
		{"clamped to max drag", r2.Vec{Y: 500}, tg.cfg.Game.MaxDrag},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bird := tg.bird()
			bird.LaunchesLeft = 1

			tg.gp.Update(Intent{Launch: true, Drag: tt.drag})
			tg.p.Resources().Commands.Flush(tg.w)

			if got := tg.bird().LaunchesLeft; got != 0 {
				t.Errorf("launches = %d, want 0", got)
			}
			_, vel, _, stuck, _ := tg.gp.BirdState()
			if stuck {
				t.Error("bird still stuck after launch")
			}
			// Flight drag applies on the launch tick outside bullet time.
			want := tt.want * tg.cfg.Game.LaunchSpeed * flightDrag
			if math.Abs(vel.Y-want) > 1e-9 || vel.X != 0 {
				t.Errorf("vel = %v, want (0, %v)", vel, want)
			}
			if !tg.hasEvent(telemetry.EventLaunch) {
				t.Error("no launch event recorded")
			}
		})
	}
}

func TestLaunchWithoutLaunchesLeft(t *testing.T) {
	tg := newTestGameplay(t, openRoom())
	tg.bird().LaunchesLeft = 0
	tg.gp.tranMap.Get(tg.gp.Bird()).Vel = r2.Vec{}

	tg.gp.Update(Intent{Launch: true, Drag: r2.Vec{Y: 50}})

	if _, vel, _, _, _ := tg.gp.BirdState(); vel != (r2.Vec{}) {
		t.Errorf("vel = %v, want zero", vel)
	}
}

func TestFireSpawnsGoodBullet(t *testing.T) {
	tg := newTestGameplay(t, openRoom())
	bullets := ecs.NewFilter1[components.Bullet](tg.w)

	tg.gp.Update(Intent{Fire: true, Drag: r2.Vec{X: 10}})

	if got := tg.bird().BulletsLeft; got != tg.cfg.Game.Bullets-1 {
		t.Errorf("bullets left = %d, want %d", got, tg.cfg.Game.Bullets-1)
	}
	var found int
	q := bullets.Query()
	for q.Next() {
		b := q.Get()
		if !b.Good {
			continue
		}
		found++
		if vel := tg.gp.tranMap.Get(q.Entity()).Vel; math.Abs(vel.X-tg.cfg.Game.BulletSpeed) > 1e-9 {
			t.Errorf("bullet vel = %v, want speed %v along +X", vel, tg.cfg.Game.BulletSpeed)
		}
	}
	if found != 1 {
		t.Errorf("good bullets = %d, want 1", found)
	}
}

func TestBulletTimeMode(t *testing.T) {
	tests := []struct {
		name       string
		empty      bool
		override   bool
		in         Intent
		wantMode   systems.BulletTimeMode
		wantFactor float64
	}{
		{"aiming slows time", false, false, Intent{Aiming: true}, systems.BulletTimeActive, -1},
		{"not aiming", false, false, Intent{}, systems.BulletTimeInactive, 1},
		{"aiming with nothing left", true, false, Intent{Aiming: true}, systems.BulletTimeInactive, 1},
		{"override wins", false, true, Intent{Aiming: true}, systems.BulletTimeCustom, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tg := newTestGameplay(t, openRoom())
			if tt.empty {
				tg.bird().LaunchesLeft = 0
				tg.bird().BulletsLeft = 0
			}
			if tt.override {
				tg.gp.SetBulletTimeOverride(true, 0.5)
			}

			tg.gp.Update(tt.in)

			bt := tg.p.Resources().BulletTime
			if bt.Mode != tt.wantMode {
				t.Errorf("mode = %v, want %v", bt.Mode, tt.wantMode)
			}
			want := tt.wantFactor
			if want < 0 {
				want = tg.cfg.Physics.BulletTimeActive
			}
			if got := bt.Factor(); math.Abs(got-want) > 1e-9 {
				t.Errorf("factor = %v, want %v", got, want)
			}
		})
	}
}

func TestPatrolTurnsAround(t *testing.T) {
	tg := newTestGameplay(t, openRoom())
	wall := tg.gp.spawner.spawnEntity(&EntitySpec{
		Kind:  KindWall,
		Pos:   Vec2{0, 100},
		Vel:   Vec2{0, -15},
		Range: 40,
	})

	for i := 0; i < 200; i++ {
		tg.step(Intent{})
	}

	if vel := tg.gp.tranMap.Get(wall).Vel; vel.Y <= 0 {
		t.Errorf("patrol vel = %v, want it heading back up", vel)
	}
	pos := tg.gp.tfMap.Get(wall).Pos
	if off := 100 - pos.Y; off > 41 || off < 0 {
		t.Errorf("patrol offset = %v, want within range 40", off)
	}
}

func TestFlightNudge(t *testing.T) {
	tests := []struct {
		name string
		vel  r2.Vec
		dir  r2.Vec
		want r2.Vec
	}{
		{"accelerate from rest", r2.Vec{}, r2.Vec{X: 1}, r2.Vec{X: 12.5}},
		{"capped at max speed", r2.Vec{X: 100}, r2.Vec{X: 1}, r2.Vec{X: 100}},
		{"brake hard against overspeed", r2.Vec{X: 100}, r2.Vec{X: -1}, r2.Vec{X: 25}},
		{"pull up from a dive", r2.Vec{Y: -300}, r2.Vec{Y: 1}, r2.Vec{Y: 180}},
		{"dive from rest", r2.Vec{}, r2.Vec{Y: -1}, r2.Vec{Y: -10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := flightNudge(tt.vel, tt.dir, 0.1)
			if math.Abs(got.X-tt.want.X) > 1e-9 || math.Abs(got.Y-tt.want.Y) > 1e-9 {
				t.Errorf("flightNudge(%v, %v) = %v, want %v", tt.vel, tt.dir, got, tt.want)
			}
		})
	}
}

func TestNudgeNeverOpposesInput(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		v := rapid.Float64Range(-1000, 1000).Draw(t, "v")
		nudge := rapid.Float64Range(-100, 100).Draw(t, "nudge")

		got := nudgeAxis(v, nudge, flightMaxUpSpeed, flightMaxDownSpeed)
		switch {
		case nudge > 0 && got < v:
			t.Fatalf("positive nudge slowed %v to %v", v, got)
		case nudge < 0 && got > v:
			t.Fatalf("negative nudge raised %v to %v", v, got)
		case nudge == 0 && got != v:
			t.Fatalf("zero nudge changed %v to %v", v, got)
		}
	})
}

func TestSpewImmunityAndDeath(t *testing.T) {
	tg := newTestGameplay(t, openRoom())
	spew := tg.gp.spawner.SpawnSpew(r2.Vec{X: 100}, geometry.Circle(8), components.Spew{Speed: 10, Health: 2}, 0)
	spewMap := ecs.NewMap[components.Spew](tg.w)

	tg.gp.spawner.SpawnBullet(r2.Vec{X: 91}, r2.Vec{X: 250}, true)
	tg.step(Intent{})
	if got := spewMap.Get(spew).Health; got != 1 {
		t.Fatalf("health after hit = %d, want 1", got)
	}

	immune := spewMap.Get(spew).ImmuneTo
	if len(immune) != 1 {
		t.Fatalf("immune to %d bodies, want 1", len(immune))
	}
	// A body that is no longer touching must be forgotten.
	immune[tg.gp.bird] = true

	// Same bullet still overlapping.
	tg.step(Intent{})
	if got := spewMap.Get(spew).Health; got != 1 {
		t.Fatalf("health while immune = %d, want 1", got)
	}
	if immune[tg.gp.bird] || len(immune) != 1 {
		t.Errorf("immunity after second tick = %v, want only the touching bullet", immune)
	}

	pos := tg.gp.tfMap.Get(spew).Pos
	tg.gp.spawner.SpawnBullet(r2.Sub(pos, r2.Vec{X: 9}), r2.Vec{X: 250}, true)
	tg.step(Intent{})
	if tg.alive(spew) {
		t.Error("spew survived its last hit point")
	}
}

func TestSpewChasesBird(t *testing.T) {
	tg := newTestGameplay(t, openRoom())
	spew := tg.gp.spawner.SpawnSpew(r2.Vec{X: 100}, geometry.Circle(8), components.Spew{Speed: 10}, 0)

	for i := 0; i < 30; i++ {
		tg.step(Intent{})
	}
	vel := tg.gp.tranMap.Get(spew).Vel
	if vel.X >= 0 {
		t.Errorf("spew vel = %v, want it heading toward the bird", vel)
	}
	if n := r2.Norm(vel); n > 10+1e-9 {
		t.Errorf("spew speed = %v, want at most 10", n)
	}
}

func TestSimpFiresAtBird(t *testing.T) {
	tg := newTestGameplay(t, openRoom())
	tg.gp.spawner.SpawnSimp(r2.Add(tg.birdPos(), r2.Vec{X: 60}), geometry.Circle(8), 0.05)
	bullets := ecs.NewFilter1[components.Bullet](tg.w)

	var shots int
	for i := 0; i < 5 && shots == 0; i++ {
		tg.step(Intent{})
		q := bullets.Query()
		for q.Next() {
			if b := q.Get(); !b.Good && tg.gp.tranMap.Get(q.Entity()).Vel.X < 0 {
				shots++
			}
		}
	}
	if shots == 0 {
		t.Error("simp did not fire at the bird")
	}
}

func TestTutorialKey(t *testing.T) {
	tests := []struct {
		kind components.TriggerKind
		want string
		ok   bool
	}{
		{components.TutorialTrigger("learn_to_shoot"), "learn_to_shoot", true},
		{components.TriggerBird, "", false},
		{components.TriggerKind("tutorial:"), "", false},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			got, ok := tutorialKey(tt.kind)
			if got != tt.want || ok != tt.ok {
				t.Errorf("tutorialKey(%q) = %q, %v", tt.kind, got, ok)
			}
		})
	}
}

func TestAutopilotDeterministic(t *testing.T) {
	run := func() []Intent {
		room, err := LoadRoom("lobby")
		if err != nil {
			t.Fatalf("LoadRoom: %v", err)
		}
		tg := newTestGameplay(t, room)
		ap := NewAutopilot(7, tg.cfg.Game.MaxDrag)
		var out []Intent
		for i := 0; i < 300; i++ {
			in := ap.Next(tg.gp)
			out = append(out, in)
			if tg.step(in) != OutcomeNone {
				break
			}
		}
		return out
	}

	a, b := run(), run()
	if len(a) != len(b) {
		t.Fatalf("runs differ in length: %d vs %d", len(a), len(b))
	}
	released := false
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("intent %d differs: %+v vs %+v", i, a[i], b[i])
		}
		released = released || a[i].Launch || a[i].Fire
	}
	if !released {
		t.Error("autopilot never launched or fired")
	}
}
