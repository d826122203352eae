package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/rookery/renderer"
	"github.com/pthm-cable/rookery/ui"
)

var (
	colorLaunchDrag = rl.Color{R: 250, G: 210, B: 80, A: 220}
	colorFireDrag   = rl.Color{R: 255, G: 120, B: 120, A: 220}
	colorSelected   = rl.Color{R: 255, G: 255, B: 255, A: 200}
)

// Draw renders the game state.
func (g *Game) Draw() {
	rl.BeginDrawing()

	roomW, roomH := g.room.Size[0], g.room.Size[1]
	if g.overlays.IsEnabled(ui.OverlayGrid) {
		g.grid.Draw(g.camera, roomW, roomH)
	} else {
		rl.ClearBackground(g.grid.Background)
	}

	g.debug.Draw(g.world, g.camera, g.pipeline.Resources().Root, renderer.DebugOptions{
		Bounds:      g.overlays.IsEnabled(ui.OverlayBounds),
		Collisions:  g.overlays.IsEnabled(ui.OverlayCollisions),
		StuckLinks:  g.overlays.IsEnabled(ui.OverlayStuckLinks),
		Velocities:  g.overlays.IsEnabled(ui.OverlayVelocities),
		CircleSides: g.cfg.Debug.CircleSides,
	})

	g.drawDrag()
	g.drawSelection()
	g.drawUI()

	rl.EndDrawing()
}

// drawDrag shows the aim line while a launch or fire drag is held.
func (g *Game) drawDrag() {
	if !g.intent.Aiming {
		return
	}
	tf, _, _, _, ok := g.gameplay.BirdState()
	if !ok {
		return
	}
	color := colorLaunchDrag
	drag := g.intent.Drag
	if g.drag.fire {
		color = colorFireDrag
	} else if n := r2.Norm(drag); n > g.cfg.Game.MaxDrag {
		drag = r2.Scale(g.cfg.Game.MaxDrag/n, drag)
	}
	renderer.DrawDrag(g.camera, tf.Pos, drag, color)
}

// drawSelection rings the selected body.
func (g *Game) drawSelection() {
	if g.selected.IsZero() || !g.world.Alive(g.selected) || !g.probe.tfMap.Has(g.selected) {
		return
	}
	tf := g.probe.tfMap.Get(g.selected)
	r := 6.0
	if g.probe.bndMap.Has(g.selected) {
		r = g.probe.bndMap.Get(g.selected).Shape.Extent() + 3
	}
	x, y := g.camera.WorldToScreen(tf.Pos)
	rl.DrawCircleLinesV(rl.Vector2{X: x, Y: y}, g.camera.Scale(r), colorSelected)
}

func (g *Game) drawUI() {
	res := g.pipeline.Resources()
	entities, _ := g.probe.counts()

	data := ui.HUDData{
		Title:      "Rookery",
		Room:       g.room.Name,
		Tick:       g.tick,
		Entities:   entities,
		MaxHealth:  g.cfg.Game.Health,
		BulletTime: res.BulletTime.Mode.String(),
		TimeFactor: res.BulletTime.Factor(),
		FPS:        rl.GetFPS(),
		Paused:     g.paused,
	}
	if _, _, bird, _, ok := g.gameplay.BirdState(); ok {
		data.HasBird = true
		data.Health = bird.Health
		data.Launches = bird.LaunchesLeft
		data.Bullets = bird.BulletsLeft
		data.Hurt = bird.Hurt > 0
	}
	g.hud.Draw(data)

	g.pending = g.controlsPanel.Draw(g.overlays, &g.controls)

	if g.overlays.IsEnabled(ui.OverlayPerf) {
		g.perfPanel.Draw(ui.PerfPanelData{
			Stats:    g.perfCollector.Stats(),
			Registry: g.pipeline.Registry(),
		})
	}

	if g.overlays.IsEnabled(ui.OverlayInspector) {
		if info := g.probe.entityInfo(g.selected, g.cfg.Game.Health); info != nil {
			g.inspector.Draw(info)
		}
	}

	g.hud.DrawControls(int32(g.screenWidth), int32(g.screenHeight),
		"L-drag: Launch | R-drag: Fire | WASD: Fly | Shift: Brake | SPACE: Pause | N: Step | R: Reset | M-click: Select | TAB: Panel")
}
