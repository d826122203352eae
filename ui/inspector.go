package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// EntityInfo is a flat copy of one body's components for display.
// Optional components are flagged with their Has* field.
type EntityInfo struct {
	ID    uint32
	Shape string
	X, Y  float64
	Angle float64

	HasVel   bool
	VelX     float64
	VelY     float64
	HasRot   bool
	Rot      float64
	Gravity  float64
	StuckTo  uint32
	HasStuck bool

	Provider   string
	Receiver   string
	Mult       float64
	Trigger    string
	Collisions int

	HasBird   bool
	Health    int
	MaxHealth int
	Launches  int
	Bullets   int
	Hurt      float64

	HasEnemy    bool
	EnemyHealth int
	Cooldown    float64
}

func info(data any) *EntityInfo {
	e, _ := data.(*EntityInfo)
	return e
}

func num(f func(*EntityInfo) float64) func(any) float32 {
	return func(d any) float32 { return float32(f(info(d))) }
}

func text(f func(*EntityInfo) string) func(any) string {
	return func(d any) string { return f(info(d)) }
}

func when(f func(*EntityInfo) bool) func(any) bool {
	return func(d any) bool { return f(info(d)) }
}

// InspectorSections describes the inspector layout.
var InspectorSections = []SectionDescriptor{
	{
		ID:    "body",
		Title: "Body",
		Fields: []FieldDescriptor{
			{ID: "shape", Label: "Shape", Widget: WidgetText, TextGetter: text(func(e *EntityInfo) string { return e.Shape })},
			{ID: "pos", Label: "Pos", Widget: WidgetText, TextGetter: text(func(e *EntityInfo) string { return fmt.Sprintf("%.1f, %.1f", e.X, e.Y) })},
			{ID: "angle", Label: "Angle", Widget: WidgetText, Format: "%.2f", Getter: num(func(e *EntityInfo) float64 { return e.Angle })},
			{ID: "vel", Label: "Vel", Widget: WidgetText,
				Visible:    when(func(e *EntityInfo) bool { return e.HasVel }),
				TextGetter: text(func(e *EntityInfo) string { return fmt.Sprintf("%.1f, %.1f", e.VelX, e.VelY) })},
			{ID: "rot", Label: "Rot", Widget: WidgetText, Format: "%.2f",
				Visible: when(func(e *EntityInfo) bool { return e.HasRot }),
				Getter:  num(func(e *EntityInfo) float64 { return e.Rot })},
			{ID: "gravity", Label: "Gravity", Widget: WidgetText, Format: "%.0f",
				Visible: when(func(e *EntityInfo) bool { return e.Gravity != 0 }),
				Getter:  num(func(e *EntityInfo) float64 { return e.Gravity })},
			{ID: "stuck", Label: "Stuck to", Widget: WidgetText,
				Visible:    when(func(e *EntityInfo) bool { return e.HasStuck }),
				TextGetter: text(func(e *EntityInfo) string { return fmt.Sprintf("#%d", e.StuckTo) })},
		},
	},
	{
		ID:    "collision",
		Title: "Collision",
		Visible: when(func(e *EntityInfo) bool {
			return e.Provider != "" || e.Receiver != "" || e.Trigger != ""
		}),
		Fields: []FieldDescriptor{
			{ID: "provider", Label: "Provider", Widget: WidgetText,
				Visible:    when(func(e *EntityInfo) bool { return e.Provider != "" }),
				TextGetter: text(func(e *EntityInfo) string { return e.Provider })},
			{ID: "receiver", Label: "Receiver", Widget: WidgetText,
				Visible:    when(func(e *EntityInfo) bool { return e.Receiver != "" }),
				TextGetter: text(func(e *EntityInfo) string { return fmt.Sprintf("%s x%.2f", e.Receiver, e.Mult) })},
			{ID: "trigger", Label: "Trigger", Widget: WidgetText,
				Visible:    when(func(e *EntityInfo) bool { return e.Trigger != "" }),
				TextGetter: text(func(e *EntityInfo) string { return e.Trigger })},
			{ID: "contacts", Label: "Contacts", Widget: WidgetText, Format: "%.0f",
				Getter: num(func(e *EntityInfo) float64 { return float64(e.Collisions) })},
		},
	},
	{
		ID:      "bird",
		Title:   "Bird",
		Visible: when(func(e *EntityInfo) bool { return e.HasBird }),
		Fields: []FieldDescriptor{
			{ID: "health", Label: "Health", Widget: WidgetText,
				TextGetter: text(func(e *EntityInfo) string { return fmt.Sprintf("%d/%d", e.Health, e.MaxHealth) })},
			{ID: "launches", Label: "Launches", Widget: WidgetText, Format: "%.0f",
				Getter: num(func(e *EntityInfo) float64 { return float64(e.Launches) })},
			{ID: "bullets", Label: "Bullets", Widget: WidgetText, Format: "%.0f",
				Getter: num(func(e *EntityInfo) float64 { return float64(e.Bullets) })},
			{ID: "hurt", Label: "Hurt", Widget: WidgetBar, Range: DefaultRange(),
				Getter: num(func(e *EntityInfo) float64 { return e.Hurt })},
		},
	},
	{
		ID:      "enemy",
		Title:   "Enemy",
		Visible: when(func(e *EntityInfo) bool { return e.HasEnemy }),
		Fields: []FieldDescriptor{
			{ID: "enemy_health", Label: "Health", Widget: WidgetText, Format: "%.0f",
				Visible: when(func(e *EntityInfo) bool { return e.EnemyHealth > 0 }),
				Getter:  num(func(e *EntityInfo) float64 { return float64(e.EnemyHealth) })},
			{ID: "cooldown", Label: "Cooldown", Widget: WidgetText, Format: "%.2f",
				Visible: when(func(e *EntityInfo) bool { return e.Cooldown > 0 }),
				Getter:  num(func(e *EntityInfo) float64 { return e.Cooldown })},
		},
	},
}

// Inspector renders the selected-body panel.
type Inspector struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewInspector creates a new inspector panel.
func NewInspector(x, y, width int32) *Inspector {
	return &Inspector{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the inspector position.
func (ins *Inspector) SetPosition(x, y int32) {
	ins.x = x
	ins.y = y
}

// Draw renders the inspector panel for e and returns the bottom Y.
func (ins *Inspector) Draw(e *EntityInfo) int32 {
	r := ins.renderer
	padding := r.Theme.Padding

	height := padding*2 + r.Theme.LineHeight + 4
	for _, sd := range InspectorSections {
		height += r.SectionHeight(sd, e)
	}
	r.DrawPanel(ins.x, ins.y, ins.width, height)

	y := ins.y + padding
	rl.DrawText(fmt.Sprintf("Entity #%d", e.ID), ins.x+padding, y, 16, rl.White)
	y += r.Theme.LineHeight + 4

	for _, sd := range InspectorSections {
		y = r.DrawSection(ins.x+padding, y, sd, e, ins.width-padding*2)
	}
	return y
}
