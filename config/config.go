// Package config provides configuration loading and access for the game.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("config: invalid value")

// Config holds all game configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Physics   PhysicsConfig   `yaml:"physics"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Game      GameConfig      `yaml:"game"`
	Debug     DebugConfig     `yaml:"debug"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int     `yaml:"width"`
	Height    int     `yaml:"height"`
	TargetFPS int     `yaml:"target_fps"`
	Zoom      float64 `yaml:"zoom"` // Pixels per world unit
}

// PhysicsConfig holds the collision tunables. The defaults are game-feel
// values, not derived from real physics.
type PhysicsConfig struct {
	DT                 float64 `yaml:"dt"`                   // Fixed tick length in seconds (headless)
	MaxStepLength      float64 `yaml:"max_step_length"`      // Longest single sub-step for receivers
	Springiness        float64 `yaml:"springiness"`          // Fraction of normal velocity kept on bounce
	BaseFriction       float64 `yaml:"base_friction"`        // Tangential damping for grazing hits
	ImpactFrictionMult float64 `yaml:"impact_friction_mult"` // Extra friction for head-on hits
	GravityStrength    float64 `yaml:"gravity_strength"`     // Downward acceleration in units/s^2
	BulletTimeActive   float64 `yaml:"bullet_time_active"`   // Time factor while bullet time is on
	Validate           bool    `yaml:"validate"`             // Panic on illegal component combinations
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"`          // Seconds per collision stats window
	PerfCollectorWindow int     `yaml:"perf_collector_window"` // Ticks averaged by the perf collector
}

// GameConfig holds gameplay parameters that sit on top of the physics.
type GameConfig struct {
	Room        string  `yaml:"room"`         // Built-in room name or path to a room file
	LaunchSpeed float64 `yaml:"launch_speed"` // Bird speed per unit of drag
	MaxDrag     float64 `yaml:"max_drag"`     // Longest drag the launch considers
	BulletSpeed float64 `yaml:"bullet_speed"`
	BirdRadius  float64 `yaml:"bird_radius"`
	Health      int     `yaml:"health"`
	Launches    int     `yaml:"launches"` // Launches per landing on a sticky surface
	Bullets     int     `yaml:"bullets"`  // Shots per landing on a sticky surface

	DamageCooldown float64 `yaml:"damage_cooldown"` // Scaled seconds of invulnerability after a hit
}

// DebugConfig holds viewer toggles.
type DebugConfig struct {
	ShowBounds     bool `yaml:"show_bounds"`
	ShowCollisions bool `yaml:"show_collisions"`
	CircleSides    int  `yaml:"circle_sides"` // Sides used to outline circles
}

// DerivedConfig holds values computed from other config values.
type DerivedConfig struct {
	ScreenW32        float32 // Screen.Width as float32
	ScreenH32        float32 // Screen.Height as float32
	StatsWindowTicks int     // Telemetry.StatsWindow in ticks of Physics.DT
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Set replaces the global configuration, e.g. after a hot reload.
func Set(cfg *Config) {
	global = cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	// Compute derived values
	cfg.computeDerived()

	return cfg, nil
}

// validate rejects values the physics cannot run with.
func (c *Config) validate() error {
	p := c.Physics
	switch {
	case p.DT <= 0:
		return fmt.Errorf("%w: physics.dt must be positive, got %v", ErrInvalid, p.DT)
	case p.MaxStepLength <= 0:
		return fmt.Errorf("%w: physics.max_step_length must be positive, got %v", ErrInvalid, p.MaxStepLength)
	case p.BaseFriction < 0 || p.BaseFriction > 1:
		return fmt.Errorf("%w: physics.base_friction must be in [0,1], got %v", ErrInvalid, p.BaseFriction)
	case p.BulletTimeActive < 0:
		return fmt.Errorf("%w: physics.bullet_time_active must not be negative, got %v", ErrInvalid, p.BulletTimeActive)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)

	ticks := int(c.Telemetry.StatsWindow/c.Physics.DT + 0.5)
	if ticks < 1 {
		ticks = 1
	}
	c.Derived.StatsWindowTicks = ticks

	if c.Debug.CircleSides < 3 {
		c.Debug.CircleSides = 24
	}
	if c.Screen.Zoom <= 0 {
		c.Screen.Zoom = 1
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
