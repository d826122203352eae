package telemetry

import (
	"log/slog"
	"math"
	"slices"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Phase names for one game tick. The physics stages use the same IDs as
// the systems registry.
const (
	PhaseResetCollisions = "reset_collisions"
	PhaseValidate        = "validate"
	PhaseMovePlain       = "move_plain"
	PhaseMoveProviders   = "move_providers"
	PhaseMoveReceivers   = "move_receivers"
	PhaseSnapStuck       = "snap_stuck"
	PhaseGravity         = "gravity"
	PhaseGameplay        = "gameplay"
	PhaseTelemetry       = "telemetry"
)

// Phases lists every phase in the order a tick runs them.
var Phases = []string{
	PhaseResetCollisions, PhaseValidate, PhaseMovePlain, PhaseMoveProviders,
	PhaseMoveReceivers, PhaseSnapStuck, PhaseGravity, PhaseGameplay, PhaseTelemetry,
}

// tickSample is one tick's timing. phases is indexed by collector slot.
type tickSample struct {
	total  time.Duration
	phases []time.Duration
}

// PerfCollector times ticks and their phases over a rolling window. Phases
// are assigned slots on first use, so the per-tick bookkeeping is a slice
// write rather than a map update.
type PerfCollector struct {
	window  int
	samples []tickSample
	next    int
	count   int

	slots  map[string]int
	names  []string
	cur    []time.Duration
	active int // slot of the running phase, -1 between phases

	tickStart  time.Time
	phaseStart time.Time

	// Frame timing (graphics mode)
	lastFrame time.Time
	frame     time.Duration

	now func() time.Time
}

// NewPerfCollector creates a collector averaging over windowSize ticks.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	p := &PerfCollector{
		window:  windowSize,
		samples: make([]tickSample, windowSize),
		slots:   make(map[string]int, len(Phases)),
		active:  -1,
		now:     time.Now,
	}
	for _, phase := range Phases {
		p.slot(phase)
	}
	return p
}

func (p *PerfCollector) slot(phase string) int {
	if i, ok := p.slots[phase]; ok {
		return i
	}
	i := len(p.names)
	p.slots[phase] = i
	p.names = append(p.names, phase)
	p.cur = append(p.cur, 0)
	return i
}

// StartTick begins timing a new tick.
func (p *PerfCollector) StartTick() {
	p.tickStart = p.now()
	clear(p.cur)
	p.active = -1
}

// StartPhase ends the running phase, if any, and starts timing phase.
func (p *PerfCollector) StartPhase(phase string) {
	now := p.now()
	p.closePhase(now)
	p.active = p.slot(phase)
	p.phaseStart = now
}

func (p *PerfCollector) closePhase(now time.Time) {
	if p.active >= 0 {
		p.cur[p.active] += now.Sub(p.phaseStart)
	}
}

// EndTick closes the last phase and records the tick.
func (p *PerfCollector) EndTick() {
	now := p.now()
	p.closePhase(now)
	p.active = -1

	s := &p.samples[p.next]
	s.total = now.Sub(p.tickStart)
	s.phases = append(s.phases[:0], p.cur...)

	p.next = (p.next + 1) % p.window
	p.count = min(p.count+1, p.window)
}

// RecordFrame records frame timing for graphics mode.
func (p *PerfCollector) RecordFrame() {
	now := p.now()
	if !p.lastFrame.IsZero() {
		p.frame = now.Sub(p.lastFrame)
	}
	p.lastFrame = now
}

// PerfStats holds aggregated performance statistics.
type PerfStats struct {
	AvgTickDuration time.Duration
	MinTickDuration time.Duration
	MaxTickDuration time.Duration
	P95TickDuration time.Duration

	// Per-phase average duration and share of the average tick
	PhaseAvg map[string]time.Duration
	PhasePct map[string]float64

	TicksPerSecond float64

	// Frame timing (graphics mode)
	FrameDuration time.Duration
	FPS           float64
}

// Stats aggregates the current window.
func (p *PerfCollector) Stats() PerfStats {
	stats := PerfStats{
		PhaseAvg:      make(map[string]time.Duration),
		PhasePct:      make(map[string]float64),
		FrameDuration: p.frame,
	}
	if p.frame > 0 {
		stats.FPS = float64(time.Second) / float64(p.frame)
	}
	if p.count == 0 {
		return stats
	}

	ticks := make([]float64, p.count)
	sums := make([]float64, len(p.names))
	for i, s := range p.samples[:p.count] {
		ticks[i] = float64(s.total)
		for slot, d := range s.phases {
			sums[slot] += float64(d)
		}
	}

	mean := stat.Mean(ticks, nil)
	stats.AvgTickDuration = time.Duration(mean)
	stats.MinTickDuration = time.Duration(floats.Min(ticks))
	stats.MaxTickDuration = time.Duration(floats.Max(ticks))
	slices.Sort(ticks)
	stats.P95TickDuration = time.Duration(stat.Quantile(0.95, stat.Empirical, ticks, nil))
	if mean > 0 {
		stats.TicksPerSecond = float64(time.Second) / mean
	}

	n := float64(p.count)
	for slot, sum := range sums {
		if sum == 0 {
			continue
		}
		name := p.names[slot]
		stats.PhaseAvg[name] = time.Duration(sum / n)
		if mean > 0 {
			stats.PhasePct[name] = sum / n / mean * 100
		}
	}
	return stats
}

// LogStats logs the window at info level.
func (s PerfStats) LogStats() {
	attrs := []any{
		"avg_tick_us", s.AvgTickDuration.Microseconds(),
		"p95_tick_us", s.P95TickDuration.Microseconds(),
		"max_tick_us", s.MaxTickDuration.Microseconds(),
		"ticks_per_sec", int(s.TicksPerSecond),
	}
	if s.FPS > 0 {
		attrs = append(attrs, "fps", int(s.FPS))
	}

	var phases []any
	for _, phase := range Phases {
		if pct, ok := s.PhasePct[phase]; ok && pct > 0.1 {
			phases = append(phases, phase, math.Round(pct*10)/10)
		}
	}
	attrs = append(attrs, slog.Group("phase_pct", phases...))

	slog.Info("perf", attrs...)
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_tick_us", s.AvgTickDuration.Microseconds()),
		slog.Int64("min_tick_us", s.MinTickDuration.Microseconds()),
		slog.Int64("max_tick_us", s.MaxTickDuration.Microseconds()),
		slog.Int64("p95_tick_us", s.P95TickDuration.Microseconds()),
		slog.Float64("ticks_per_sec", s.TicksPerSecond),
	}

	if s.FPS > 0 {
		attrs = append(attrs, slog.Float64("fps", s.FPS))
	}

	for phase, pct := range s.PhasePct {
		attrs = append(attrs, slog.Float64(phase+"_pct", pct))
	}

	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is a flat struct for CSV export of performance stats.
type PerfStatsCSV struct {
	WindowEnd          int64   `csv:"window_end"`
	AvgTickUS          int64   `csv:"avg_tick_us"`
	MinTickUS          int64   `csv:"min_tick_us"`
	MaxTickUS          int64   `csv:"max_tick_us"`
	P95TickUS          int64   `csv:"p95_tick_us"`
	TicksPerSec        float64 `csv:"ticks_per_sec"`
	FPS                float64 `csv:"fps"`
	ResetCollisionsPct float64 `csv:"reset_collisions_pct"`
	ValidatePct        float64 `csv:"validate_pct"`
	MovePlainPct       float64 `csv:"move_plain_pct"`
	MoveProvidersPct   float64 `csv:"move_providers_pct"`
	MoveReceiversPct   float64 `csv:"move_receivers_pct"`
	SnapStuckPct       float64 `csv:"snap_stuck_pct"`
	GravityPct         float64 `csv:"gravity_pct"`
	GameplayPct        float64 `csv:"gameplay_pct"`
	TelemetryPct       float64 `csv:"telemetry_pct"`
}

// ToCSV converts PerfStats to a flat CSV-friendly struct.
func (s PerfStats) ToCSV(windowEnd int64) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:          windowEnd,
		AvgTickUS:          s.AvgTickDuration.Microseconds(),
		MinTickUS:          s.MinTickDuration.Microseconds(),
		MaxTickUS:          s.MaxTickDuration.Microseconds(),
		P95TickUS:          s.P95TickDuration.Microseconds(),
		TicksPerSec:        s.TicksPerSecond,
		FPS:                s.FPS,
		ResetCollisionsPct: s.PhasePct[PhaseResetCollisions],
		ValidatePct:        s.PhasePct[PhaseValidate],
		MovePlainPct:       s.PhasePct[PhaseMovePlain],
		MoveProvidersPct:   s.PhasePct[PhaseMoveProviders],
		MoveReceiversPct:   s.PhasePct[PhaseMoveReceivers],
		SnapStuckPct:       s.PhasePct[PhaseSnapStuck],
		GravityPct:         s.PhasePct[PhaseGravity],
		GameplayPct:        s.PhasePct[PhaseGameplay],
		TelemetryPct:       s.PhasePct[PhaseTelemetry],
	}
}
