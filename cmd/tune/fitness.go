package main

import (
	"math"
	"sync"

	"github.com/pthm-cable/rookery/config"
	"github.com/pthm-cable/rookery/game"
)

// Penalties used by the fitness. Clearing a room is worth one point.
const (
	deathPenalty   = 0.25
	updateStepSize = 60 // ticks per UpdateHeadless call
)

// FitnessEvaluator runs headless autopilot games and scores how well the
// bird gets through the rooms.
type FitnessEvaluator struct {
	params     *ParamVector
	room       string
	maxTicks   int64
	seeds      []int64
	baseConfig *config.Config

	mu           sync.Mutex
	bestFitness  float64
	lastProgress game.Progress // summed over seeds of the most recent Evaluate
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, room string, maxTicks int64, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		room:        room,
		maxTicks:    maxTicks,
		seeds:       seeds,
		baseConfig:  baseCfg,
		bestFitness: math.Inf(1),
	}
}

// LastProgress returns the summed progress of the most recent evaluation.
func (fe *FitnessEvaluator) LastProgress() game.Progress {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastProgress
}

// Evaluate computes fitness for a parameter vector (lower = better).
// Seeds run in parallel; each gets its own game and config copy.
func (fe *FitnessEvaluator) Evaluate(x []float64) (float64, error) {
	results := make([]game.Progress, len(fe.seeds))
	errs := make([]error, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			results[idx], errs[idx] = fe.runGame(x, s)
		}(i, seed)
	}
	wg.Wait()

	var total float64
	var sum game.Progress
	for i, p := range results {
		if errs[i] != nil {
			return 0, errs[i]
		}
		total += fe.computeFitness(p)
		sum.RoomsCleared += p.RoomsCleared
		sum.Deaths += p.Deaths
		sum.FirstClearTick += p.FirstClearTick
	}
	avg := total / float64(len(fe.seeds))

	fe.mu.Lock()
	fe.bestFitness = math.Min(fe.bestFitness, avg)
	fe.lastProgress = sum
	fe.mu.Unlock()

	return avg, nil
}

// runGame plays one autopilot game for maxTicks.
func (fe *FitnessEvaluator) runGame(x []float64, seed int64) (game.Progress, error) {
	cfg := fe.copyConfig()
	fe.params.ApplyToConfig(cfg, x)

	g, err := game.NewGameWithOptions(cfg, game.Options{
		Room:           fe.room,
		Headless:       true,
		Autopilot:      true,
		Seed:           seed,
		StepsPerUpdate: updateStepSize,
	})
	if err != nil {
		return game.Progress{}, err
	}
	defer g.Unload()

	for g.Tick() < fe.maxTicks {
		g.UpdateHeadless()
	}
	return g.Progress(), nil
}

// computeFitness rewards clearing rooms, and clearing the first one early.
func (fe *FitnessEvaluator) computeFitness(p game.Progress) float64 {
	late := 1.0
	if p.RoomsCleared > 0 {
		late = float64(p.FirstClearTick) / float64(fe.maxTicks)
	}
	return -float64(p.RoomsCleared) + deathPenalty*float64(p.Deaths) + late
}

// copyConfig returns a copy of the base config. Config holds only values,
// so a struct copy is deep.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	return &cfg
}
