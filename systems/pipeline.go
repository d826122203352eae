// Package systems contains the ECS stages of the physics pipeline.
package systems

import (
	"fmt"
	"log/slog"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/rookery/components"
	"github.com/pthm-cable/rookery/telemetry"
)

// Stage is one step of the pipeline.
type Stage interface {
	Update(w *ecs.World)
}

// PhaseTimer is told when each stage starts. telemetry.PerfCollector
// implements it; the caller owns the tick boundaries.
type PhaseTimer interface {
	StartPhase(phase string)
}

type stageEntry struct {
	id    string
	stage Stage
}

// Pipeline runs the physics stages in a fixed order. Deferred commands are
// flushed after every stage, so each stage sees the previous one's
// structural changes.
type Pipeline struct {
	world    *ecs.World
	res      *Resources
	registry *SystemRegistry
	stages   []stageEntry
	timer    PhaseTimer
}

// NewPipeline builds every stage for w in registry order.
func NewPipeline(w *ecs.World, tuning Tuning) *Pipeline {
	res := &Resources{
		Tuning:   tuning,
		Root:     components.NewCollisionRoot(),
		Commands: NewCommands(w),
	}
	reg := NewSystemRegistry()

	built := map[string]Stage{
		telemetry.PhaseResetCollisions: NewResetCollisionsSystem(w, res),
		telemetry.PhaseValidate:        NewValidateSystem(w),
		telemetry.PhaseMovePlain:       NewMovePlainSystem(w, res),
		telemetry.PhaseMoveProviders:   NewMoveProvidersSystem(w, res),
		telemetry.PhaseMoveReceivers:   NewMoveReceiversSystem(w, res),
		telemetry.PhaseSnapStuck:       NewSnapStuckSystem(w),
		telemetry.PhaseGravity:         NewGravitySystem(w, res),
	}

	p := &Pipeline{world: w, res: res, registry: reg}
	for _, info := range reg.All() {
		if info.Category == CategoryGame {
			// Run by the game loop after Step, timed by the caller.
			continue
		}
		stage, ok := built[info.ID]
		if !ok {
			panic(fmt.Sprintf("systems: no stage built for %q", info.ID))
		}
		p.stages = append(p.stages, stageEntry{id: info.ID, stage: stage})
	}

	slog.Debug("pipeline built", "stages", reg.IDs(), "validate", tuning.Validate)
	return p
}

// SetTimer attaches a timer that records every stage. nil disables timing.
func (p *Pipeline) SetTimer(t PhaseTimer) {
	p.timer = t
}

// Resources returns the state shared by the stages.
func (p *Pipeline) Resources() *Resources {
	return p.res
}

// Registry returns stage metadata in run order.
func (p *Pipeline) Registry() *SystemRegistry {
	return p.registry
}

// Step advances the world by one tick of delta real seconds.
func (p *Pipeline) Step(delta float64) {
	// Changes queued by gameplay between ticks land before the tick starts.
	p.res.Commands.Flush(p.world)
	p.res.Time.Advance(delta)

	for _, s := range p.stages {
		if s.id == telemetry.PhaseValidate && !p.res.Tuning.Validate {
			continue
		}
		if p.timer != nil {
			p.timer.StartPhase(s.id)
		}
		s.stage.Update(p.world)
		p.res.Commands.Flush(p.world)
	}
}
