package renderer

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/rookery/camera"
)

// GridRenderer draws a world-space grid behind the bodies and the outline
// of the playable area.
type GridRenderer struct {
	Spacing    float64
	Background rl.Color
	Line       rl.Color
	Axis       rl.Color
	RoomEdge   rl.Color
}

// NewGridRenderer creates a grid with the viewer's default colors.
func NewGridRenderer(spacing float64) *GridRenderer {
	return &GridRenderer{
		Spacing:    spacing,
		Background: rl.Color{R: 18, G: 20, B: 26, A: 255},
		Line:       rl.Color{R: 32, G: 36, B: 44, A: 255},
		Axis:       rl.Color{R: 55, G: 60, B: 72, A: 255},
		RoomEdge:   rl.Color{R: 80, G: 90, B: 110, A: 255},
	}
}

// Draw clears the screen and draws the grid plus a room of the given size
// centered on the origin.
func (g *GridRenderer) Draw(cam *camera.Camera, roomW, roomH float64) {
	rl.ClearBackground(g.Background)

	minX, minY, maxX, maxY := cam.VisibleWorldBounds()
	step := g.Spacing
	// Keep lines at least 8 pixels apart when zoomed out.
	for cam.Scale(step) < 8 {
		step *= 2
	}

	for x := math.Floor(minX/step) * step; x <= maxX; x += step {
		c := g.Line
		if x == 0 {
			c = g.Axis
		}
		drawSegment(cam, r2.Vec{X: x, Y: minY}, r2.Vec{X: x, Y: maxY}, c)
	}
	for y := math.Floor(minY/step) * step; y <= maxY; y += step {
		c := g.Line
		if y == 0 {
			c = g.Axis
		}
		drawSegment(cam, r2.Vec{X: minX, Y: y}, r2.Vec{X: maxX, Y: y}, c)
	}

	if roomW > 0 && roomH > 0 {
		x, y := cam.WorldToScreen(r2.Vec{X: -roomW / 2, Y: roomH / 2})
		rl.DrawRectangleLinesEx(rl.Rectangle{
			X:      x,
			Y:      y,
			Width:  cam.Scale(roomW),
			Height: cam.Scale(roomH),
		}, 1, g.RoomEdge)
	}
}
