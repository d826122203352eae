package systems

import "github.com/pthm-cable/rookery/telemetry"

// SystemInfo describes a pipeline stage for UI display.
type SystemInfo struct {
	ID          string // Internal identifier (used for perf tracking)
	Name        string // Display name
	Description string // What this stage does
	Category    string // Grouping (e.g., "physics", "dev")
}

// CategoryGame marks phases that the game loop runs after the pipeline.
const CategoryGame = "game"

// SystemRegistry holds metadata about all stages in pipeline order.
// This centralizes stage naming so the UI and perf tracker stay in sync.
type SystemRegistry struct {
	systems []SystemInfo
	byID    map[string]SystemInfo
}

// NewSystemRegistry creates a registry with all known stages.
func NewSystemRegistry() *SystemRegistry {
	reg := &SystemRegistry{
		byID: make(map[string]SystemInfo),
	}
	reg.registerDefaults()
	return reg
}

// registerDefaults adds the physics stages in the order they run.
// Update this when adding new stages.
func (r *SystemRegistry) registerDefaults() {
	r.Register(SystemInfo{ID: telemetry.PhaseResetCollisions, Name: "Reset Collisions", Description: "Drops last tick's collision records", Category: "physics"})
	r.Register(SystemInfo{ID: telemetry.PhaseValidate, Name: "Validate", Description: "Panics on illegal component combinations", Category: "dev"})
	r.Register(SystemInfo{ID: telemetry.PhaseMovePlain, Name: "Move Plain", Description: "Moves bodies that ignore collisions", Category: "physics"})
	r.Register(SystemInfo{ID: telemetry.PhaseMoveProviders, Name: "Move Providers", Description: "Moves and rotates static providers", Category: "physics"})
	r.Register(SystemInfo{ID: telemetry.PhaseMoveReceivers, Name: "Move Receivers", Description: "Sub-steps receivers and triggers, resolves collisions", Category: "physics"})
	r.Register(SystemInfo{ID: telemetry.PhaseSnapStuck, Name: "Snap Stuck", Description: "Pins stuck bodies to their parents", Category: "physics"})
	r.Register(SystemInfo{ID: telemetry.PhaseGravity, Name: "Gravity", Description: "Accelerates falling bodies", Category: "physics"})
	r.Register(SystemInfo{ID: telemetry.PhaseGameplay, Name: "Gameplay", Description: "Flight, damage, pickups and enemies", Category: CategoryGame})
	r.Register(SystemInfo{ID: telemetry.PhaseTelemetry, Name: "Telemetry", Description: "Collision stats and window flushes", Category: CategoryGame})
}

// Register adds a stage to the registry.
func (r *SystemRegistry) Register(info SystemInfo) {
	r.systems = append(r.systems, info)
	r.byID[info.ID] = info
}

// Get returns stage info by ID.
func (r *SystemRegistry) Get(id string) (SystemInfo, bool) {
	info, ok := r.byID[id]
	return info, ok
}

// GetName returns the display name for a stage ID.
// Falls back to the ID itself if not found.
func (r *SystemRegistry) GetName(id string) string {
	if info, ok := r.byID[id]; ok {
		return info.Name
	}
	return id
}

// All returns all registered stages.
func (r *SystemRegistry) All() []SystemInfo {
	return r.systems
}

// ByCategory returns stages filtered by category.
func (r *SystemRegistry) ByCategory(category string) []SystemInfo {
	var result []SystemInfo
	for _, info := range r.systems {
		if info.Category == category {
			result = append(result, info)
		}
	}
	return result
}

// IDs returns all stage IDs in registration order.
func (r *SystemRegistry) IDs() []string {
	ids := make([]string, len(r.systems))
	for i, info := range r.systems {
		ids[i] = info.ID
	}
	return ids
}
