// Package camera provides a 2D camera for the debug viewer.
package camera

import "gonum.org/v1/gonum/spatial/r2"

// Camera maps the y-up world onto the y-down screen.
type Camera struct {
	// Position is the camera center in world coordinates
	X, Y float64

	// Zoom level (1.0 = 1:1, 2.0 = 2x magnification)
	Zoom float64

	// Viewport dimensions (screen size)
	ViewportW, ViewportH float64

	// Zoom constraints
	MinZoom, MaxZoom float64

	home r2.Vec
	zoom float64
}

// New creates a camera centered on the world origin at the given zoom.
func New(viewportW, viewportH, zoom float64) *Camera {
	if zoom <= 0 {
		zoom = 1
	}
	return &Camera{
		Zoom:      zoom,
		ViewportW: viewportW,
		ViewportH: viewportH,
		MinZoom:   0.25,
		MaxZoom:   8.0,
		zoom:      zoom,
	}
}

// WorldToScreen converts world coordinates to screen coordinates.
func (c *Camera) WorldToScreen(p r2.Vec) (sx, sy float32) {
	dx := (p.X - c.X) * c.Zoom
	dy := (p.Y - c.Y) * c.Zoom
	return float32(c.ViewportW/2 + dx), float32(c.ViewportH/2 - dy)
}

// ScreenToWorld converts screen coordinates to world coordinates.
func (c *Camera) ScreenToWorld(sx, sy float32) r2.Vec {
	dx := (float64(sx) - c.ViewportW/2) / c.Zoom
	dy := (c.ViewportH/2 - float64(sy)) / c.Zoom
	return r2.Vec{X: c.X + dx, Y: c.Y + dy}
}

// Scale converts a world length to screen pixels.
func (c *Camera) Scale(length float64) float32 {
	return float32(length * c.Zoom)
}

// IsVisible returns true if a circle at p with the given radius
// could be visible on screen (conservative check for culling).
func (c *Camera) IsVisible(p r2.Vec, radius float64) bool {
	minX, minY, maxX, maxY := c.VisibleWorldBounds()
	return p.X+radius >= minX && p.X-radius <= maxX &&
		p.Y+radius >= minY && p.Y-radius <= maxY
}

// Resize updates viewport dimensions.
func (c *Camera) Resize(viewportW, viewportH float64) {
	c.ViewportW = viewportW
	c.ViewportH = viewportH
}

// Pan moves the camera by the given delta in screen pixels.
// Positive dy pans up.
func (c *Camera) Pan(dx, dy float64) {
	c.X += dx / c.Zoom
	c.Y += dy / c.Zoom
}

// LookAt centers the camera on p and makes it the Reset position.
func (c *Camera) LookAt(p r2.Vec) {
	c.X, c.Y = p.X, p.Y
	c.home = p
}

// SetZoom sets the zoom level, clamped to min/max.
func (c *Camera) SetZoom(zoom float64) {
	c.Zoom = clamp(zoom, c.MinZoom, c.MaxZoom)
}

// ZoomBy multiplies the current zoom by the given factor.
func (c *Camera) ZoomBy(factor float64) {
	c.SetZoom(c.Zoom * factor)
}

// Reset returns the camera to its home position and initial zoom.
func (c *Camera) Reset() {
	c.X, c.Y = c.home.X, c.home.Y
	c.Zoom = c.zoom
}

// VisibleWorldBounds returns the world-coordinate bounds of the visible area.
func (c *Camera) VisibleWorldBounds() (minX, minY, maxX, maxY float64) {
	halfW := c.ViewportW / (2 * c.Zoom)
	halfH := c.ViewportH / (2 * c.Zoom)
	return c.X - halfW, c.Y - halfH, c.X + halfW, c.Y + halfH
}

// clamp restricts a value to a range.
func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
