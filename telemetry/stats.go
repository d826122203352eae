package telemetry

import (
	"log/slog"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated collision statistics for a time window.
type WindowStats struct {
	WindowStartTick int64   `csv:"-"`
	WindowEndTick   int64   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`
	Room            string  `csv:"room"`

	// World state at window end
	Entities int `csv:"entities"`
	Stuck    int `csv:"stuck"`

	// Static collisions during window, by receiver response
	StaticHits   int `csv:"static_hits"`
	BounceHits   int `csv:"bounce_hits"`
	StickHits    int `csv:"stick_hits"`
	StopHits     int `csv:"stop_hits"`
	GoAroundHits int `csv:"go_around_hits"`

	// Trigger collisions during window, one per direction
	TriggerHits int `csv:"trigger_hits"`

	// Gameplay reactions
	Launches     int `csv:"launches"`
	Despawns     int `csv:"despawns"`
	Pickups      int `csv:"pickups"`
	RoomAdvances int `csv:"room_advances"`
	Damage       int `csv:"damage"`

	// Impact strength: normal speed into the surface at each static hit
	ImpactMean float64 `csv:"impact_mean"`
	ImpactP50  float64 `csv:"impact_p50"`
	ImpactP90  float64 `csv:"impact_p90"`
	ImpactMax  float64 `csv:"impact_max"`

	// Busiest tick of the window
	PeakRecords int `csv:"peak_records"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeImpactStats calculates mean, median, p90 and peak of impact strengths.
// Percentiles interpolate between ranks.
func ComputeImpactStats(values []float64) (mean, p50, p90, peak float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	return stat.Mean(values, nil), Percentile(sorted, 0.50), Percentile(sorted, 0.90), floats.Max(values)
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("window_start", s.WindowStartTick),
		slog.Int64("window_end", s.WindowEndTick),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.String("room", s.Room),
		slog.Int("entities", s.Entities),
		slog.Int("stuck", s.Stuck),
		slog.Int("static_hits", s.StaticHits),
		slog.Int("bounce_hits", s.BounceHits),
		slog.Int("stick_hits", s.StickHits),
		slog.Int("stop_hits", s.StopHits),
		slog.Int("go_around_hits", s.GoAroundHits),
		slog.Int("trigger_hits", s.TriggerHits),
		slog.Int("launches", s.Launches),
		slog.Int("despawns", s.Despawns),
		slog.Int("pickups", s.Pickups),
		slog.Int("room_advances", s.RoomAdvances),
		slog.Int("damage", s.Damage),
		slog.Float64("impact_mean", s.ImpactMean),
		slog.Float64("impact_p90", s.ImpactP90),
		slog.Float64("impact_max", s.ImpactMax),
		slog.Int("peak_records", s.PeakRecords),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats", "window", s)
}
