// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Physics   PhysicsConfig   `yaml:"physics"`
	Particles ParticlesConfig `yaml:"particles"`
	Workers   WorkersConfig   `yaml:"workers"`
	Density   DensityConfig   `yaml:"density"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings. Headless runs use Width/Height as
// the fixed viewport.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// PhysicsConfig holds the simulation constants.
type PhysicsConfig struct {
	DT               float64 `yaml:"dt"`                // Fixed step for headless runs
	MinDT            float64 `yaml:"min_dt"`            // Floor for host-supplied steps
	MaxDT            float64 `yaml:"max_dt"`            // Cap for host-supplied steps
	SmoothingRadius  float64 `yaml:"smoothing_radius"`  // Interaction cutoff; cells are twice this
	MaxVelocity      float64 `yaml:"max_velocity"`      // Speed clamp after collisions
	DampingFactor    float64 `yaml:"damping_factor"`    // Wall reflection multiplier, < 1
	CollisionEpsilon float64 `yaml:"collision_epsilon"` // Distance floor for the collision impulse
	ForceScale       float64 `yaml:"force_scale"`       // Multiplier on the dispersion force
}

// ParticlesConfig holds initial lattice parameters.
type ParticlesConfig struct {
	Count   int     `yaml:"count"`
	Radius  float64 `yaml:"radius"`
	Spacing float64 `yaml:"spacing"`
	Jitter  float64 `yaml:"jitter"` // Max random offset per axis at spawn

	// Initial curl-noise velocity; 0 spawns at rest
	Swirl      float64 `yaml:"swirl"`       // Speed for a unit curl
	SwirlScale float64 `yaml:"swirl_scale"` // World units per noise period
}

// WorkersConfig holds worker pool sizing.
type WorkersConfig struct {
	Count             int `yaml:"count"`              // 0 = GOMAXPROCS
	ParallelThreshold int `yaml:"parallel_threshold"` // Below this, run on the calling goroutine
}

// DensityConfig holds density overlay parameters.
type DensityConfig struct {
	Enabled    bool    `yaml:"enabled"`
	Downsample int     `yaml:"downsample"` // Viewport units per density sample
	Gain       float64 `yaml:"gain"`       // Weight multiplier before the colour ramp
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"`          // Seconds of sim time per stats window
	PerfCollectorWindow int     `yaml:"perf_collector_window"` // Frames averaged by the perf collector
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	DT32      float32 // Physics.DT as float32
	MinDT32   float32
	MaxDT32   float32
	CellSize  float32 // 2 * smoothing radius
	ScreenW32 float32
	ScreenH32 float32
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

// Defaults returns a fresh copy of the embedded defaults.
func Defaults() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

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

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.ComputeDerived()

	return cfg, nil
}

// Validate checks the physics constants are usable.
func (c *Config) Validate() error {
	p := c.Physics
	switch {
	case c.Screen.Width <= 0 || c.Screen.Height <= 0:
		return fmt.Errorf("screen size must be positive, got %dx%d", c.Screen.Width, c.Screen.Height)
	case !(p.SmoothingRadius > 0):
		return fmt.Errorf("physics.smoothing_radius must be positive, got %v", p.SmoothingRadius)
	case !(p.MaxVelocity > 0):
		return fmt.Errorf("physics.max_velocity must be positive, got %v", p.MaxVelocity)
	case p.DampingFactor < 0 || p.DampingFactor >= 1:
		return fmt.Errorf("physics.damping_factor must be in [0, 1), got %v", p.DampingFactor)
	case !(p.MinDT > 0) || p.MaxDT < p.MinDT:
		return fmt.Errorf("physics dt bounds invalid: min_dt=%v max_dt=%v", p.MinDT, p.MaxDT)
	case p.CollisionEpsilon < 0:
		return fmt.Errorf("physics.collision_epsilon must not be negative, got %v", p.CollisionEpsilon)
	case c.Particles.Count < 0:
		return fmt.Errorf("particles.count must not be negative, got %d", c.Particles.Count)
	}
	return nil
}

// ComputeDerived calculates values derived from loaded config.
// Call again after mutating fields in place.
func (c *Config) ComputeDerived() {
	c.Derived.DT32 = float32(c.Physics.DT)
	c.Derived.MinDT32 = float32(c.Physics.MinDT)
	c.Derived.MaxDT32 = float32(c.Physics.MaxDT)
	c.Derived.CellSize = float32(2 * c.Physics.SmoothingRadius)
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
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
