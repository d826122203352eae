package main

import (
	"math"
	"slices"
	"testing"

	"github.com/pthm-cable/rookery/config"
	"github.com/pthm-cable/rookery/game"
)

func TestParamsMatchConfigDefaults(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	pv := NewParamVector()
	if got := pv.ExtractFromConfig(cfg); !slices.Equal(got, pv.DefaultVector()) {
		t.Errorf("config defaults %v, param defaults %v", got, pv.DefaultVector())
	}
}

func TestApplyThenExtract(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	pv := NewParamVector()
	want := pv.Denormalize([]float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6})

	pv.ApplyToConfig(cfg, want)
	got := pv.ExtractFromConfig(cfg)
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Errorf("%s = %v, want %v", pv.Specs[i].Name, got[i], want[i])
		}
	}
}

func TestClamp(t *testing.T) {
	pv := NewParamVector()
	low := make([]float64, pv.Dim())
	high := make([]float64, pv.Dim())
	for i := range high {
		low[i] = -1e6
		high[i] = 1e6
	}
	for i, spec := range pv.Specs {
		if got := pv.Clamp(low)[i]; got != spec.Min {
			t.Errorf("%s low clamp = %v, want %v", spec.Name, got, spec.Min)
		}
		if got := pv.Clamp(high)[i]; got != spec.Max {
			t.Errorf("%s high clamp = %v, want %v", spec.Name, got, spec.Max)
		}
	}
}

func TestComputeFitness(t *testing.T) {
	fe := &FitnessEvaluator{maxTicks: 1000}
	tests := []struct {
		name string
		p    game.Progress
		want float64
	}{
		{"nothing happened", game.Progress{}, 1},
		{"cleared halfway", game.Progress{RoomsCleared: 1, FirstClearTick: 500}, -0.5},
		{"died twice", game.Progress{Deaths: 2}, 1.5},
		{"cleared two rooms", game.Progress{RoomsCleared: 2, FirstClearTick: 100, Deaths: 1}, -1.65},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fe.computeFitness(tt.p); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("computeFitness(%+v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}
