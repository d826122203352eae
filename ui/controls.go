package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// ControlsState is the part of the simulation the controls panel edits.
type ControlsState struct {
	Paused         bool
	OverrideOn     bool    // force a custom bullet-time factor
	OverrideFactor float32 // factor used while OverrideOn
}

// ControlsAction reports what the user clicked this frame.
type ControlsAction struct {
	Step       bool // advance one tick while paused
	ResetRoom  bool
	NextRoom   bool
	Overlay    OverlayID
	OverlaySet bool
}

// ControlsPanel renders the left-side controls panel with overlay toggles
// and bullet-time controls.
type ControlsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	visible  bool
	drawnH   int32 // height at the last Draw
}

// NewControlsPanel creates a new controls panel.
func NewControlsPanel(x, y, width int32) *ControlsPanel {
	return &ControlsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
		visible:  false,
	}
}

// SetVisible shows or hides the panel.
func (c *ControlsPanel) SetVisible(visible bool) {
	c.visible = visible
}

// IsVisible returns whether the panel is shown.
func (c *ControlsPanel) IsVisible() bool {
	return c.visible
}

// Toggle switches panel visibility.
func (c *ControlsPanel) Toggle() bool {
	c.visible = !c.visible
	return c.visible
}

// Contains reports whether a screen point falls inside the visible panel,
// so the caller can keep clicks on it from reaching the world.
func (c *ControlsPanel) Contains(x, y float32) bool {
	if !c.visible {
		return false
	}
	return x >= float32(c.x) && x <= float32(c.x+c.width) && y >= float32(c.y) && y <= float32(c.y+c.drawnH)
}

func (c *ControlsPanel) height(overlays *OverlayRegistry) int32 {
	r := c.renderer
	lines := int32(12)
	for _, cat := range overlays.Categories() {
		lines += int32(len(overlays.ByCategory(cat))) + 1
	}
	return lines*r.Theme.LineHeight + r.Theme.Padding*3
}

// Draw renders the panel, applies slider edits to state and returns the
// buttons pressed this frame.
func (c *ControlsPanel) Draw(overlays *OverlayRegistry, state *ControlsState) ControlsAction {
	var act ControlsAction
	if !c.visible {
		return act
	}

	r := c.renderer
	padding := r.Theme.Padding
	lineHeight := r.Theme.LineHeight
	inner := float32(c.width - padding*2)

	c.drawnH = c.height(overlays)
	r.DrawPanel(c.x, c.y, c.width, c.drawnH)

	x := float32(c.x + padding)
	y := c.y + padding

	rl.DrawText("Simulation", int32(x), y, 16, rl.White)
	y += lineHeight + 4

	half := (inner - 10) / 2
	if gui.Button(rl.Rectangle{X: x, Y: float32(y), Width: half, Height: 22}, toggleText(state.Paused, "Resume", "Pause")) {
		state.Paused = !state.Paused
	}
	if gui.Button(rl.Rectangle{X: x + half + 10, Y: float32(y), Width: half, Height: 22}, "Step") {
		act.Step = true
	}
	y += 28
	if gui.Button(rl.Rectangle{X: x, Y: float32(y), Width: half, Height: 22}, "Reset Room") {
		act.ResetRoom = true
	}
	if gui.Button(rl.Rectangle{X: x + half + 10, Y: float32(y), Width: half, Height: 22}, "Next Room") {
		act.NextRoom = true
	}
	y += 34

	rl.DrawText("Bullet Time", int32(x), y, r.Theme.HeaderFontSize, r.Theme.SectionHeader)
	y += lineHeight
	if gui.Button(rl.Rectangle{X: x, Y: float32(y), Width: inner, Height: 22}, toggleText(state.OverrideOn, "Override: ON", "Override: OFF")) {
		state.OverrideOn = !state.OverrideOn
	}
	y += 28
	state.OverrideFactor = gui.SliderBar(
		rl.Rectangle{X: x + 30, Y: float32(y), Width: inner - 90, Height: 16},
		"0", "1",
		state.OverrideFactor, 0, 1,
	)
	rl.DrawText(fmt.Sprintf("%.2f", state.OverrideFactor), int32(x+inner-50), y+2, r.Theme.FontSize, r.Theme.ValueColor)
	y += 28

	rl.DrawText("Overlays", int32(x), y, 16, rl.White)
	y += lineHeight + 4

	for _, category := range overlays.Categories() {
		rl.DrawText(categoryLabel(category), int32(x), y, r.Theme.HeaderFontSize, r.Theme.SectionHeader)
		y += lineHeight

		for _, desc := range overlays.ByCategory(category) {
			if c.drawToggle(int32(x), y, desc, overlays.IsEnabled(desc.ID), int32(inner)) {
				act.Overlay = desc.ID
				act.OverlaySet = true
			}
			y += lineHeight
		}

		y += 4
	}

	return act
}

// drawToggle draws a single overlay toggle line and reports a click on it.
func (c *ControlsPanel) drawToggle(x, y int32, desc OverlayDescriptor, enabled bool, width int32) bool {
	r := c.renderer

	statusColor := rl.Color{R: 80, G: 80, B: 80, A: 255}
	if enabled {
		statusColor = rl.Color{R: 100, G: 200, B: 100, A: 255}
	}
	rl.DrawRectangle(x, y+2, 8, 8, statusColor)

	nameColor := r.Theme.LabelColor
	if enabled {
		nameColor = rl.White
	}
	rl.DrawText(desc.Name, x+14, y, r.Theme.FontSize, nameColor)

	if desc.KeyLabel != "" {
		keyText := fmt.Sprintf("[%s]", desc.KeyLabel)
		keyWidth := rl.MeasureText(keyText, r.Theme.FontSize)
		rl.DrawText(keyText, x+width-keyWidth, y, r.Theme.FontSize, rl.Color{R: 150, G: 150, B: 150, A: 255})
	}

	row := rl.Rectangle{X: float32(x), Y: float32(y), Width: float32(width), Height: float32(r.Theme.LineHeight)}
	return rl.IsMouseButtonPressed(rl.MouseButtonLeft) && rl.CheckCollisionPointRec(rl.GetMousePosition(), row)
}

// categoryLabel returns a display label for a category.
func categoryLabel(cat string) string {
	switch cat {
	case "world":
		return "World"
	case "debug":
		return "Debug"
	case "panels":
		return "Panels"
	default:
		return cat
	}
}

func toggleText(on bool, onText, offText string) string {
	if on {
		return onText
	}
	return offText
}
