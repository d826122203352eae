package ui

import (
	"slices"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// OverlayID names a toggleable debug layer.
type OverlayID string

const (
	OverlayBounds     OverlayID = "bounds"
	OverlayCollisions OverlayID = "collisions"
	OverlayStuckLinks OverlayID = "stuck_links"
	OverlayVelocities OverlayID = "velocities"
	OverlayGrid       OverlayID = "grid"
	OverlayPerf       OverlayID = "perf"
	OverlayInspector  OverlayID = "inspector"
)

// OverlayDescriptor is the static description of one overlay.
type OverlayDescriptor struct {
	ID          OverlayID
	Name        string
	Description string
	Key         int32  // 0 when the overlay has no hotkey
	KeyLabel    string // shown in the controls panel
	Category    string // "world", "debug" or "panels"
	Default     bool
}

var defaultOverlays = []OverlayDescriptor{
	{OverlayBounds, "Bounds", "Outline every collision shape", rl.KeyB, "B", "world", true},
	{OverlayGrid, "Grid", "World grid and room edge", rl.KeyG, "G", "world", true},
	{OverlayCollisions, "Collisions", "Mark this tick's contact points", rl.KeyC, "C", "debug", false},
	{OverlayStuckLinks, "Stuck Links", "Line from each stuck body to its parent", rl.KeyL, "L", "debug", false},
	{OverlayVelocities, "Velocities", "Velocity vectors", rl.KeyV, "V", "debug", false},
	{OverlayPerf, "Perf", "Per-stage timings", rl.KeyP, "P", "panels", false},
	{OverlayInspector, "Inspector", "Component values of the selected body", rl.KeyI, "I", "panels", false},
}

// OverlayRegistry holds the overlays in display order and which are on.
type OverlayRegistry struct {
	list  []OverlayDescriptor
	on    map[OverlayID]bool
	byKey map[int32]OverlayID
}

// NewOverlayRegistry returns a registry with the built-in overlays at their
// default state.
func NewOverlayRegistry() *OverlayRegistry {
	r := &OverlayRegistry{
		on:    make(map[OverlayID]bool),
		byKey: make(map[int32]OverlayID),
	}
	for _, d := range defaultOverlays {
		r.Register(d)
	}
	return r
}

// Register appends an overlay. Registering an existing ID replaces it in
// place.
func (r *OverlayRegistry) Register(desc OverlayDescriptor) {
	if i := r.index(desc.ID); i >= 0 {
		r.list[i] = desc
	} else {
		r.list = append(r.list, desc)
	}
	r.on[desc.ID] = desc.Default
	if desc.Key != 0 {
		r.byKey[desc.Key] = desc.ID
	}
}

func (r *OverlayRegistry) index(id OverlayID) int {
	return slices.IndexFunc(r.list, func(d OverlayDescriptor) bool { return d.ID == id })
}

// Toggle flips an overlay and returns its new state. Unknown IDs stay off.
func (r *OverlayRegistry) Toggle(id OverlayID) bool {
	r.SetEnabled(id, !r.on[id])
	return r.on[id]
}

// SetEnabled sets an overlay's state. Unknown IDs are ignored.
func (r *OverlayRegistry) SetEnabled(id OverlayID, enabled bool) {
	if r.index(id) < 0 {
		return
	}
	r.on[id] = enabled
}

func (r *OverlayRegistry) IsEnabled(id OverlayID) bool {
	return r.on[id]
}

// ByCategory returns the overlays of one category in display order.
func (r *OverlayRegistry) ByCategory(category string) []OverlayDescriptor {
	var out []OverlayDescriptor
	for _, d := range r.list {
		if d.Category == category {
			out = append(out, d)
		}
	}
	return out
}

// Categories returns each category once, in first-seen order.
func (r *OverlayRegistry) Categories() []string {
	var cats []string
	for _, d := range r.list {
		if !slices.Contains(cats, d.Category) {
			cats = append(cats, d.Category)
		}
	}
	return cats
}

// HandleKeyPress toggles the overlay bound to key. ok is false when the key
// is unbound.
func (r *OverlayRegistry) HandleKeyPress(key int32) (id OverlayID, on bool, ok bool) {
	id, ok = r.byKey[key]
	if !ok {
		return "", false, false
	}
	return id, r.Toggle(id), true
}

// EnabledOverlays lists the overlays that are on, in display order.
func (r *OverlayRegistry) EnabledOverlays() []OverlayID {
	var out []OverlayID
	for _, d := range r.list {
		if r.on[d.ID] {
			out = append(out, d.ID)
		}
	}
	return out
}
