package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r2"
)

// dragState tracks a mouse drag in world space.
type dragState struct {
	active bool
	fire   bool // right button: fire instead of launch
	start  r2.Vec
}

// handleInput processes keyboard and mouse input into g.intent.
func (g *Game) handleInput() {
	g.handleResize()

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	if rl.IsKeyPressed(rl.KeySpace) {
		g.controls.Paused = !g.controls.Paused
	}
	if rl.IsKeyPressed(rl.KeyN) {
		g.stepOnce = true
	}
	if rl.IsKeyPressed(rl.KeyR) {
		g.pending.ResetRoom = true
	}
	if rl.IsKeyPressed(rl.KeyTab) {
		g.controlsPanel.Toggle()
	}

	// Steps-per-update control with < > keys (comma and period)
	if rl.IsKeyPressed(rl.KeyComma) && g.stepsPerUpdate > 1 {
		g.stepsPerUpdate--
	}
	if rl.IsKeyPressed(rl.KeyPeriod) && g.stepsPerUpdate < 10 {
		g.stepsPerUpdate++
	}

	if key := rl.GetKeyPressed(); key != 0 {
		g.overlays.HandleKeyPress(key)
	}

	g.handleCameraInput()
	g.intent = g.readIntent()
}

// readIntent turns the mouse drag and flight keys into an Intent.
func (g *Game) readIntent() Intent {
	var in Intent
	mouse := rl.GetMousePosition()
	world := g.camera.ScreenToWorld(mouse.X, mouse.Y)
	overPanel := g.controlsPanel.Contains(mouse.X, mouse.Y)

	if !g.drag.active && !overPanel {
		switch {
		case rl.IsMouseButtonPressed(rl.MouseButtonLeft):
			g.drag = dragState{active: true, start: world}
		case rl.IsMouseButtonPressed(rl.MouseButtonRight):
			g.drag = dragState{active: true, fire: true, start: world}
		case rl.IsMouseButtonPressed(rl.MouseButtonMiddle):
			g.selected = g.pickEntity(world)
		}
	}

	if g.drag.active {
		// Dragging away from the bird aims the opposite way, like a slingshot.
		in.Drag = r2.Sub(g.drag.start, world)
		in.Aiming = true

		button := rl.MouseButtonLeft
		if g.drag.fire {
			button = rl.MouseButtonRight
		}
		if rl.IsMouseButtonReleased(button) {
			in.Aiming = false
			in.Fire = g.drag.fire
			in.Launch = !g.drag.fire
			g.drag = dragState{}
		}
	}

	if rl.IsKeyDown(rl.KeyA) {
		in.Move.X--
	}
	if rl.IsKeyDown(rl.KeyD) {
		in.Move.X++
	}
	if rl.IsKeyDown(rl.KeyW) {
		in.Move.Y++
	}
	if rl.IsKeyDown(rl.KeyS) {
		in.Move.Y--
	}
	in.FastStop = rl.IsKeyDown(rl.KeyLeftShift) || rl.IsKeyDown(rl.KeyRightShift)
	return in
}

// handleResize checks for window resize and propagates new dimensions.
func (g *Game) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	if w == g.screenWidth && h == g.screenHeight {
		return
	}
	g.screenWidth = w
	g.screenHeight = h

	g.camera.Resize(float64(w), float64(h))
	g.perfPanel.SetPosition(int32(w)-300, 10)
	g.inspector.SetPosition(int32(w)-250, 200)
}

// handleCameraInput processes camera pan/zoom controls.
func (g *Game) handleCameraInput() {
	// Pan speed scales inversely with zoom for natural feel
	panSpeed := 8.0 / g.camera.Zoom

	if rl.IsKeyDown(rl.KeyRight) {
		g.camera.Pan(panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyLeft) {
		g.camera.Pan(-panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyUp) {
		g.camera.Pan(0, panSpeed)
	}
	if rl.IsKeyDown(rl.KeyDown) {
		g.camera.Pan(0, -panSpeed)
	}

	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		g.camera.ZoomBy(1 + float64(wheel)*0.1)
	}
	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		g.camera.ZoomBy(1.25)
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		g.camera.ZoomBy(0.8)
	}

	if rl.IsKeyPressed(rl.KeyHome) {
		g.camera.Reset()
	}
}
