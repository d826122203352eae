package game

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"
	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/rookery/geometry"
)

//go:embed rooms/*.yaml
var roomsFS embed.FS

var (
	// ErrEmptyRoom is returned for a room with nothing in it.
	ErrEmptyRoom = errors.New("game: room has no entities")
	// ErrInvalidRoom wraps every other room validation failure.
	ErrInvalidRoom = errors.New("game: invalid room")
)

// Vec2 is a vector written as [x, y] in room files.
type Vec2 [2]float64

// Vec converts to gonum's vector type.
func (v Vec2) Vec() r2.Vec {
	return r2.Vec{X: v[0], Y: v[1]}
}

// RoomSpec is a room as written on disk.
type RoomSpec struct {
	Name string `yaml:"name"`
	Next string `yaml:"next"`
	// Size of the playable area, centered on the origin. Bodies that leave
	// it by a wide margin are despawned.
	Size     Vec2         `yaml:"size"`
	Enclosed bool         `yaml:"enclosed"` // wrap the room in a sticky frame
	Bird     Vec2         `yaml:"bird"`
	Entities []EntitySpec `yaml:"entities"`
}

// EntitySpec is one placed thing in a room.
type EntitySpec struct {
	Kind   string  `yaml:"kind"`  // wall, sticky, heart, go_next, simp, spew, trigger
	Shape  string  `yaml:"shape"` // rect, circle or polygon; each kind has a default
	Size   Vec2    `yaml:"size"`
	Radius float64 `yaml:"radius"`
	Points []Vec2  `yaml:"points"`

	Pos   Vec2    `yaml:"pos"`
	Angle float64 `yaml:"angle"` // degrees
	Vel   Vec2    `yaml:"vel"`
	Rot   float64 `yaml:"rot"` // degrees per second
	Range float64 `yaml:"range"` // a moving platform turns back this far from pos

	// Enemy tuning
	Mult         int     `yaml:"mult"`
	Speed        float64 `yaml:"speed"`
	PreferFuture float64 `yaml:"prefer_future"`
	FireEvery    float64 `yaml:"fire_every"`
	Health       int     `yaml:"health"`

	Key string `yaml:"key"` // tutorial trigger name
}

// LoadRoom reads a room by name. A name ending in .yaml is read from that
// path; anything else is looked up in rooms/ on disk first and then in the
// rooms built into the binary.
func LoadRoom(name string) (*RoomSpec, error) {
	data, err := readRoom(name)
	if err != nil {
		return nil, fmt.Errorf("loading room %q: %w", name, err)
	}
	return ParseRoom(data)
}

// RoomNames lists the built-in rooms.
func RoomNames() []string {
	entries, err := roomsFS.ReadDir("rooms")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	return names
}

func readRoom(name string) ([]byte, error) {
	if strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml") {
		return os.ReadFile(name)
	}
	file := name + ".yaml"
	if data, err := os.ReadFile(filepath.Join("rooms", file)); err == nil {
		return data, nil
	}
	return roomsFS.ReadFile("rooms/" + file)
}

// ParseRoom decodes and validates a room file.
func ParseRoom(data []byte) (*RoomSpec, error) {
	var spec RoomSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("parsing room: %w", err)
	}
	if err := spec.validate(); err != nil {
		return nil, err
	}
	return &spec, nil
}

func (r *RoomSpec) validate() error {
	if r.Name == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidRoom)
	}
	if len(r.Entities) == 0 && !r.Enclosed {
		return fmt.Errorf("room %q: %w", r.Name, ErrEmptyRoom)
	}
	if r.Size[0] <= 0 || r.Size[1] <= 0 {
		return fmt.Errorf("%w: room %q: size must be positive, got %v", ErrInvalidRoom, r.Name, r.Size)
	}
	for i := range r.Entities {
		e := &r.Entities[i]
		shape, err := e.BuildShape()
		if err != nil {
			return fmt.Errorf("room %q entity %d (%s): %w", r.Name, i, e.Kind, err)
		}
		switch e.Kind {
		case KindWall, KindSticky:
			if e.Vel != (Vec2{}) && e.Rot != 0 {
				return fmt.Errorf("%w: room %q entity %d: a platform may move or spin, not both", ErrInvalidRoom, r.Name, i)
			}
		case KindSpew:
			// Spews bounce off walls, and only circles can be pushed.
			if shape.Kind != geometry.ShapeCircle {
				return fmt.Errorf("%w: room %q entity %d: a spew must be a circle, got %s", ErrInvalidRoom, r.Name, i, shape.Kind)
			}
		case KindHeart, KindGoNext, KindSimp:
		case KindTrigger:
			if e.Key == "" {
				return fmt.Errorf("%w: room %q entity %d: trigger without key", ErrInvalidRoom, r.Name, i)
			}
		default:
			return fmt.Errorf("%w: room %q entity %d: unknown kind %q", ErrInvalidRoom, r.Name, i, e.Kind)
		}
	}
	return nil
}

// Entity kinds used in room files.
const (
	KindWall    = "wall"
	KindSticky  = "sticky"
	KindHeart   = "heart"
	KindGoNext  = "go_next"
	KindSimp    = "simp"
	KindSpew    = "spew"
	KindTrigger = "trigger"
)

// Default sizes per kind, used when the room file leaves them out.
var defaultShapes = map[string]geometry.Shape{
	KindWall:    geometry.Rect(40, 10),
	KindSticky:  geometry.Rect(40, 10),
	KindHeart:   geometry.Circle(6),
	KindGoNext:  geometry.Circle(10),
	KindSimp:    geometry.Circle(8),
	KindSpew:    geometry.Circle(8),
	KindTrigger: geometry.Rect(20, 20),
}

// BuildShape turns the shape fields into a geometry shape. Polygons given
// counter-clockwise are reversed so they wind the way collision expects.
func (e *EntitySpec) BuildShape() (geometry.Shape, error) {
	if e.Shape == "" {
		switch {
		case e.Radius > 0:
			return geometry.Circle(e.Radius), nil
		case e.Size[0] > 0 && e.Size[1] > 0:
			return geometry.Rect(e.Size[0], e.Size[1]), nil
		}
		if s, ok := defaultShapes[e.Kind]; ok {
			return s, nil
		}
		return geometry.Shape{}, fmt.Errorf("%w: no shape given", geometry.ErrUnknownShape)
	}
	kind, err := geometry.ParseShapeKind(e.Shape)
	if err != nil {
		return geometry.Shape{}, err
	}
	switch kind {
	case geometry.ShapeCircle:
		if e.Radius <= 0 {
			return geometry.Shape{}, fmt.Errorf("%w: circle radius must be positive", ErrInvalidRoom)
		}
		return geometry.Circle(e.Radius), nil
	case geometry.ShapePolygon:
		if e.Shape == "rect" {
			if e.Size[0] <= 0 || e.Size[1] <= 0 {
				return geometry.Shape{}, fmt.Errorf("%w: rect size must be positive", ErrInvalidRoom)
			}
			return geometry.Rect(e.Size[0], e.Size[1]), nil
		}
		if len(e.Points) < 3 {
			return geometry.Shape{}, fmt.Errorf("%w: polygon needs at least 3 points", ErrInvalidRoom)
		}
		pts := make([]r2.Vec, len(e.Points))
		for i, p := range e.Points {
			pts[i] = p.Vec()
		}
		return geometry.Polygon(clockwise(pts)...), nil
	default:
		panic(fmt.Sprintf("game: unhandled shape kind %d", kind))
	}
}

// clockwise reverses pts in place when they wind counter-clockwise.
func clockwise(pts []r2.Vec) []r2.Vec {
	var area float64
	for i, p := range pts {
		q := pts[(i+1)%len(pts)]
		area += p.X*q.Y - q.X*p.Y
	}
	if area > 0 {
		for i, j := 0, len(pts)-1; i < j; i, j = i+1, j-1 {
			pts[i], pts[j] = pts[j], pts[i]
		}
	}
	return pts
}

// frame returns the sticky border drawn around an enclosed room: an outer
// clockwise box with a counter-clockwise hole, so the inside of the room
// counts as outside the shape.
func frame(size Vec2, thickness float64) geometry.Shape {
	hw, hh := size[0]/2, size[1]/2
	ow, oh := hw+thickness, hh+thickness
	return geometry.Polygon(
		r2.Vec{X: -ow, Y: -oh},
		r2.Vec{X: -ow, Y: oh},
		r2.Vec{X: ow, Y: oh},
		r2.Vec{X: ow, Y: -oh},
		r2.Vec{X: -ow, Y: -oh},
		r2.Vec{X: -hw, Y: -hh},
		r2.Vec{X: hw, Y: -hh},
		r2.Vec{X: hw, Y: hh},
		r2.Vec{X: -hw, Y: hh},
		r2.Vec{X: -hw, Y: -hh},
	)
}
