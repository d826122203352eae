package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/rookery/systems"
	"github.com/pthm-cable/rookery/telemetry"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title      string
	Room       string
	Tick       int64
	Entities   int
	Health     int
	MaxHealth  int
	Launches   int
	Bullets    int
	Hurt       bool    // damage cooldown running
	BulletTime string  // bullet-time mode name
	TimeFactor float64 // current bullet-time factor
	FPS        int32
	Paused     bool
	HasBird    bool
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
	}
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	rl.DrawText(data.Title, 10, 10, 20, rl.White)

	rl.DrawText(
		fmt.Sprintf("Room: %s | Tick: %d | Entities: %d | FPS: %d", data.Room, data.Tick, data.Entities, data.FPS),
		10, 35, 16, rl.LightGray,
	)

	if data.HasBird {
		healthColor := rl.LightGray
		if data.Hurt {
			healthColor = rl.Red
		}
		rl.DrawText(fmt.Sprintf("Health: %d/%d", data.Health, data.MaxHealth), 10, 55, 16, healthColor)
		rl.DrawText(
			fmt.Sprintf("Launches: %d | Bullets: %d", data.Launches, data.Bullets),
			150, 55, 16, rl.LightGray,
		)
	}

	rl.DrawText(
		fmt.Sprintf("Bullet time: %s (x%.2f)", data.BulletTime, data.TimeFactor),
		10, 75, 16, rl.LightGray,
	)

	statusText := "Running"
	if data.Paused {
		statusText = "PAUSED"
	}
	rl.DrawText(statusText, 10, 95, 16, rl.Yellow)
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenWidth, screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// PerfPanelData holds performance metrics for display.
type PerfPanelData struct {
	Stats    telemetry.PerfStats
	Registry *systems.SystemRegistry
}

// PerfPanel renders the per-stage performance panel.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
	}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the performance panel, one line per stage in pipeline order.
func (p *PerfPanel) Draw(data PerfPanelData) {
	x := p.x
	y := p.y

	rl.DrawText("Stage Performance", x, y, 16, rl.White)
	y += 20

	rl.DrawText(
		fmt.Sprintf("Tick: %s (p95 %s) | %.0f ticks/s | %.0f fps",
			data.Stats.AvgTickDuration.Round(time.Microsecond), data.Stats.P95TickDuration.Round(time.Microsecond),
			data.Stats.TicksPerSecond, data.Stats.FPS),
		x, y, 14, rl.Yellow,
	)
	y += 16

	ids := telemetry.Phases
	if data.Registry != nil {
		ids = data.Registry.IDs()
	}
	for _, id := range ids {
		avg := data.Stats.PhaseAvg[id]
		pct := data.Stats.PhasePct[id]

		color := rl.LightGray
		if pct > 40 {
			color = rl.Red
		} else if pct > 20 {
			color = rl.Orange
		}

		displayName := id
		if data.Registry != nil {
			displayName = data.Registry.GetName(id)
		}

		rl.DrawText(
			fmt.Sprintf("%-16s %6s %5.1f%%", displayName, avg.Round(time.Microsecond), pct),
			x, y, 12, color,
		)
		y += 14
	}
}
