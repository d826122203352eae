package telemetry

import (
	"math"
	"testing"
)

func TestPercentile(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		p      float64
		want   float64
	}{
		{"empty slice", []float64{}, 0.5, 0},
		{"single element", []float64{5.0}, 0.5, 5.0},
		{"p0", []float64{1, 2, 3, 4, 5}, 0.0, 1.0},
		{"p100", []float64{1, 2, 3, 4, 5}, 1.0, 5.0},
		{"p50 odd", []float64{1, 2, 3, 4, 5}, 0.5, 3.0},
		{"p50 even", []float64{1, 2, 3, 4}, 0.5, 2.5},
		{"p10", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.1, 1.9},
		{"p90", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.9, 9.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Percentile(tt.sorted, tt.p)
			if math.Abs(got-tt.want) > 0.001 {
				t.Errorf("Percentile(%v, %v) = %v, want %v", tt.sorted, tt.p, got, tt.want)
			}
		})
	}
}

func TestComputeImpactStats(t *testing.T) {
	values := []float64{10, 2, 8, 4, 6}
	mean, p50, p90, peak := ComputeImpactStats(values)

	if math.Abs(mean-6) > 0.001 {
		t.Errorf("mean = %v, want 6", mean)
	}
	if math.Abs(p50-6) > 0.001 {
		t.Errorf("p50 = %v, want 6", p50)
	}
	// sorted 2,4,6,8,10: idx 3.6 -> 8 + 0.6*2
	if math.Abs(p90-9.2) > 0.001 {
		t.Errorf("p90 = %v, want 9.2", p90)
	}
	if peak != 10 {
		t.Errorf("peak = %v, want 10", peak)
	}

	// Input order must be left alone.
	if values[0] != 10 || values[1] != 2 {
		t.Errorf("input was reordered: %v", values)
	}
}

func TestComputeImpactStatsEmpty(t *testing.T) {
	mean, p50, p90, peak := ComputeImpactStats(nil)

	if mean != 0 || p50 != 0 || p90 != 0 || peak != 0 {
		t.Error("empty slice should return all zeros")
	}
}
