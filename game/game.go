// Package game ties the physics pipeline, gameplay rules, telemetry and the
// debug viewer together.
package game

import (
	"fmt"
	"log/slog"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/rookery/camera"
	"github.com/pthm-cable/rookery/config"
	"github.com/pthm-cable/rookery/renderer"
	"github.com/pthm-cable/rookery/systems"
	"github.com/pthm-cable/rookery/telemetry"
	"github.com/pthm-cable/rookery/ui"
)

// Options configures a game instance beyond the config file.
type Options struct {
	Room           string  // room name or path; empty uses config game.room
	LogStats       bool    // log window stats and perf via slog
	StatsWindowSec float64 // 0 uses config telemetry.stats_window
	OutputDir      string  // CSV/snapshot directory; empty disables file output
	Headless       bool    // no window, no input
	StepsPerUpdate int     // ticks per Update call
	Autopilot      bool    // drive the bird without input
	Seed           int64   // autopilot seed
}

// Progress counts what happened to the bird over a run.
type Progress struct {
	RoomsCleared   int
	Deaths         int
	FirstClearTick int64 // 0 until a room is cleared
}

// Game holds the complete game state.
type Game struct {
	cfg *config.Config

	world    *ecs.World
	pipeline *systems.Pipeline
	spawner  *Spawner
	gameplay *Gameplay
	room     *RoomSpec
	probe    *worldProbe

	tick     int64
	progress Progress

	// Telemetry
	collector     *telemetry.Collector
	perfCollector *telemetry.PerfCollector
	bookmarks     *telemetry.BookmarkDetector
	outputManager *telemetry.OutputManager
	events        *telemetry.EventLog
	logStats      bool

	headless       bool
	stepsPerUpdate int
	autopilot      *Autopilot
	paused         bool
	stepOnce       bool
	controls       ui.ControlsState
	pending        ui.ControlsAction // clicked during the last Draw

	// Viewer, nil when headless
	camera        *camera.Camera
	debug         *renderer.DebugRenderer
	grid          *renderer.GridRenderer
	overlays      *ui.OverlayRegistry
	hud           *ui.HUD
	controlsPanel *ui.ControlsPanel
	perfPanel     *ui.PerfPanel
	inspector     *ui.Inspector
	selected      ecs.Entity
	drag          dragState
	intent        Intent

	screenWidth, screenHeight float32
}

// NewGameWithOptions creates a game and loads its first room.
func NewGameWithOptions(cfg *config.Config, opts Options) (*Game, error) {
	if opts.StepsPerUpdate < 1 {
		opts.StepsPerUpdate = 1
	}
	window := opts.StatsWindowSec
	if window <= 0 {
		window = cfg.Telemetry.StatsWindow
	}

	g := &Game{
		cfg:            cfg,
		collector:      telemetry.NewCollector(window, cfg.Physics.DT),
		perfCollector:  telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		bookmarks:      telemetry.NewBookmarkDetector(10),
		events:         &telemetry.EventLog{},
		logStats:       opts.LogStats,
		headless:       opts.Headless,
		stepsPerUpdate: opts.StepsPerUpdate,
		controls:       ui.ControlsState{OverrideFactor: float32(cfg.Physics.BulletTimeActive)},
		screenWidth:    float32(cfg.Screen.Width),
		screenHeight:   float32(cfg.Screen.Height),
	}
	if opts.Autopilot {
		g.autopilot = NewAutopilot(opts.Seed, cfg.Game.MaxDrag)
	}

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("creating output: %w", err)
	}
	g.outputManager = om
	if err := om.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config", "error", err)
	}

	if !g.headless {
		g.camera = camera.New(float64(cfg.Screen.Width), float64(cfg.Screen.Height), cfg.Screen.Zoom)
		g.grid = renderer.NewGridRenderer(20)
		g.overlays = ui.NewOverlayRegistry()
		g.overlays.SetEnabled(ui.OverlayBounds, cfg.Debug.ShowBounds)
		g.overlays.SetEnabled(ui.OverlayCollisions, cfg.Debug.ShowCollisions)
		g.hud = ui.NewHUD()
		g.controlsPanel = ui.NewControlsPanel(10, 120, 220)
		g.perfPanel = ui.NewPerfPanel(int32(cfg.Screen.Width)-300, 10)
		g.inspector = ui.NewInspector(int32(cfg.Screen.Width)-250, 200, 240)
	}

	name := opts.Room
	if name == "" {
		name = cfg.Game.Room
	}
	room, err := LoadRoom(name)
	if err != nil {
		om.Close()
		return nil, err
	}
	g.loadRoom(room)

	slog.Info("game created",
		"room", room.Name,
		"headless", g.headless,
		"autopilot", opts.Autopilot,
		"output", om.Dir(),
	)
	return g, nil
}

// loadRoom replaces the world with a fresh one holding room. Time carries
// over so ticks and elapsed seconds stay monotonic across rooms.
func (g *Game) loadRoom(room *RoomSpec) {
	var prevTime systems.Time
	if g.pipeline != nil {
		prevTime = g.pipeline.Resources().Time
	}

	w := ecs.NewWorld()
	p := systems.NewPipeline(w, systems.TuningFromConfig(g.cfg.Physics))
	p.SetTimer(g.perfCollector)
	res := p.Resources()
	res.Time = prevTime
	res.BulletTime.ActiveFactor = g.cfg.Physics.BulletTimeActive

	g.world = w
	g.pipeline = p
	g.spawner = NewSpawner(w, g.cfg)
	g.gameplay = NewGameplay(w, res, g.spawner, g.cfg.Game, g.collector, g.events)
	g.gameplay.SetBulletTimeOverride(g.controls.OverrideOn, float64(g.controls.OverrideFactor))
	g.gameplay.LoadRoom(room)
	g.room = room
	g.probe = newWorldProbe(w)
	g.selected = ecs.Entity{}
	g.drag = dragState{}

	if !g.headless {
		g.debug = renderer.NewDebugRenderer(w)
		g.camera.LookAt(r2.Vec{})
	}
}

// advanceRoom loads the room after the current one, or restarts the
// current one when it has no successor or the successor fails to load.
func (g *Game) advanceRoom() {
	next := g.room.Next
	if next == "" {
		g.loadRoom(g.room)
		return
	}
	room, err := LoadRoom(next)
	if err != nil {
		slog.Error("failed to load next room", "room", next, "error", err)
		g.loadRoom(g.room)
		return
	}
	g.loadRoom(room)
}

// step runs one tick: physics, gameplay, then telemetry.
func (g *Game) step(in Intent) {
	g.perfCollector.StartTick()

	g.pipeline.Step(g.cfg.Physics.DT)

	g.perfCollector.StartPhase(telemetry.PhaseGameplay)
	outcome := g.gameplay.Update(in)

	g.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	g.collector.Observe(g.pipeline.Resources().Root)
	g.tick++
	g.flushTelemetry()

	g.perfCollector.EndTick()

	switch outcome {
	case OutcomeAdvance:
		g.progress.RoomsCleared++
		if g.progress.FirstClearTick == 0 {
			g.progress.FirstClearTick = g.tick
		}
		slog.Info("room cleared", "room", g.room.Name, "next", g.room.Next, "tick", g.tick)
		g.advanceRoom()
	case OutcomeDied:
		g.progress.Deaths++
		slog.Info("bird died", "room", g.room.Name, "tick", g.tick)
		g.loadRoom(g.room)
	}
}

// UpdateHeadless runs StepsPerUpdate ticks without touching raylib.
// The autopilot drives the bird when enabled.
func (g *Game) UpdateHeadless() {
	for i := 0; i < g.stepsPerUpdate; i++ {
		var in Intent
		if g.autopilot != nil {
			in = g.autopilot.Next(g.gameplay)
		}
		g.step(in)
	}
}

// Update handles one frame of input and runs the simulation.
func (g *Game) Update() {
	g.perfCollector.RecordFrame()
	g.handleInput()
	g.applyControls()

	if g.paused && !g.stepOnce {
		return
	}
	steps := g.stepsPerUpdate
	if g.stepOnce {
		steps = 1
		g.stepOnce = false
	}

	in := g.intent
	for i := 0; i < steps; i++ {
		if g.autopilot != nil {
			in = g.autopilot.Next(g.gameplay)
		}
		g.step(in)
		// Releases happen once per frame.
		in.Launch, in.Fire = false, false
	}
}

// applyControls applies the clicks collected by the last Draw.
func (g *Game) applyControls() {
	act := g.pending
	g.pending = ui.ControlsAction{}

	g.paused = g.controls.Paused
	if act.Step {
		g.stepOnce = true
	}
	if act.OverlaySet {
		g.overlays.Toggle(act.Overlay)
	}
	g.gameplay.SetBulletTimeOverride(g.controls.OverrideOn, float64(g.controls.OverrideFactor))
	if act.ResetRoom {
		g.loadRoom(g.room)
	}
	if act.NextRoom {
		g.advanceRoom()
	}
}

// ApplyConfig swaps in a reloaded config. Physics tunables apply at once;
// gameplay values apply from the next room load.
func (g *Game) ApplyConfig(cfg *config.Config) {
	g.cfg = cfg
	res := g.pipeline.Resources()
	res.Tuning = systems.TuningFromConfig(cfg.Physics)
	res.BulletTime.ActiveFactor = cfg.Physics.BulletTimeActive
	if g.overlays != nil {
		g.overlays.SetEnabled(ui.OverlayBounds, cfg.Debug.ShowBounds)
		g.overlays.SetEnabled(ui.OverlayCollisions, cfg.Debug.ShowCollisions)
	}
	slog.Info("config applied", "dt", cfg.Physics.DT, "bullet_time_active", cfg.Physics.BulletTimeActive)
}

// Tick returns the number of ticks run so far.
func (g *Game) Tick() int64 {
	return g.tick
}

// Progress returns the run's clear and death counts.
func (g *Game) Progress() Progress {
	return g.progress
}

// Room returns the loaded room.
func (g *Game) Room() *RoomSpec {
	return g.room
}

// Gameplay exposes the gameplay rules for the loaded room.
func (g *Game) Gameplay() *Gameplay {
	return g.gameplay
}

// Unload flushes outstanding events and closes output files.
func (g *Game) Unload() {
	g.writeEvents()
	if err := g.outputManager.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
	}
}
