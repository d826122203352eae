package ui

import (
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
)

func TestFieldRangeNormalize(t *testing.T) {
	tests := []struct {
		name string
		r    FieldRange
		v    float32
		want float32
	}{
		{"middle", FieldRange{Min: 0, Max: 10}, 5, 0.5},
		{"below", FieldRange{Min: 0, Max: 10}, -3, 0},
		{"above", FieldRange{Min: 0, Max: 10}, 30, 1},
		{"offset", FieldRange{Min: -1, Max: 1}, 0, 0.5},
		{"empty range", FieldRange{Min: 2, Max: 2}, 2, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.r.Normalize(tt.v); got != tt.want {
				t.Errorf("Normalize(%v) = %v, want %v", tt.v, got, tt.want)
			}
		})
	}
}

func TestFieldText(t *testing.T) {
	e := &EntityInfo{Shape: "circle", Angle: 1.5, Launches: 2}
	byID := make(map[string]FieldDescriptor)
	for _, sd := range InspectorSections {
		for _, fd := range sd.Fields {
			byID[sd.ID+"."+fd.ID] = fd
		}
	}

	tests := []struct {
		field string
		want  string
	}{
		{"body.shape", "circle"},
		{"body.angle", "1.50"},
		{"bird.launches", "2"},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			fd, ok := byID[tt.field]
			if !ok {
				t.Fatalf("no field %q", tt.field)
			}
			if got := FieldText(fd, e); got != tt.want {
				t.Errorf("FieldText = %q, want %q", got, tt.want)
			}
		})
	}

	if got := FieldText(FieldDescriptor{Getter: func(any) float32 { return 0.25 }}, nil); got != "0.25" {
		t.Errorf("default format = %q, want 0.25", got)
	}
}

func TestSectionHeightSkipsHidden(t *testing.T) {
	r := NewRenderer()
	var bird, enemy SectionDescriptor
	for _, sd := range InspectorSections {
		switch sd.ID {
		case "bird":
			bird = sd
		case "enemy":
			enemy = sd
		}
	}

	e := &EntityInfo{HasBird: true}
	if h := r.SectionHeight(enemy, e); h != 0 {
		t.Errorf("hidden section height = %d, want 0", h)
	}
	if h := r.SectionHeight(bird, e); h <= r.Theme.LineHeight {
		t.Errorf("bird section height = %d, want more than one line", h)
	}
}

func TestOverlayDefaults(t *testing.T) {
	reg := NewOverlayRegistry()

	if !reg.IsEnabled(OverlayBounds) || !reg.IsEnabled(OverlayGrid) {
		t.Error("bounds and grid should start enabled")
	}
	if reg.IsEnabled(OverlayCollisions) || reg.IsEnabled(OverlayInspector) {
		t.Error("debug overlays should start disabled")
	}
	if got := reg.Categories(); len(got) != 3 || got[0] != "world" || got[1] != "debug" || got[2] != "panels" {
		t.Errorf("categories = %v", got)
	}
}

func TestOverlayKeys(t *testing.T) {
	reg := NewOverlayRegistry()

	id, on, ok := reg.HandleKeyPress(rl.KeyC)
	if !ok || id != OverlayCollisions || !on {
		t.Fatalf("HandleKeyPress(C) = %v, %v, %v", id, on, ok)
	}
	if _, on, _ = reg.HandleKeyPress(rl.KeyC); on {
		t.Error("second press should turn collisions off")
	}
	if _, _, ok = reg.HandleKeyPress(rl.KeyZ); ok {
		t.Error("Z is not bound to an overlay")
	}

	reg.SetEnabled(OverlayGrid, false)
	for _, id := range reg.EnabledOverlays() {
		if id == OverlayGrid {
			t.Error("grid still listed as enabled")
		}
	}
}
