// Package game hosts the fluid simulation: it owns the window-side state,
// feeds the frame driver a viewport and a time step, and renders the result.
package game

import (
	"fmt"
	"log/slog"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/fluid/camera"
	"github.com/pthm-cable/fluid/components"
	"github.com/pthm-cable/fluid/config"
	"github.com/pthm-cable/fluid/palette"
	"github.com/pthm-cable/fluid/renderer"
	"github.com/pthm-cable/fluid/simulation"
	"github.com/pthm-cable/fluid/systems"
	"github.com/pthm-cable/fluid/telemetry"
	"github.com/pthm-cable/fluid/ui"
)

// Options configures a Game.
type Options struct {
	Seed           int64
	LogStats       bool
	StatsWindowSec float64
	OutputDir      string
	Headless       bool
	StepsPerUpdate int
	Palette        string // colour ramp name, empty = viridis
	ParticleCount  int    // 0 = use config
}

// Game holds the complete host state.
type Game struct {
	cfg  *config.Config
	opts Options

	sim      *simulation.Simulation
	viewport systems.Viewport

	// Render-side entities, one per particle
	world          *ecs.World
	particleMapper *ecs.Map2[components.ParticleRef, components.Tint]
	particleFilter *ecs.Filter2[components.ParticleRef, components.Tint]

	density     *systems.DensityField
	showDensity bool

	// Rendering (nil when headless)
	camera           *camera.Camera
	particleRenderer *renderer.ParticleRenderer
	densityRenderer  *renderer.DensityRenderer
	hud              *ui.HUD
	perfPanel        *ui.PerfPanel
	paramsPanel      *ui.ParamsPanel

	// Telemetry
	collector     *telemetry.Collector
	perfCollector *telemetry.PerfCollector
	outputManager *telemetry.OutputManager
	statsCallback func(telemetry.WindowStats)
	lastStats     simulation.FrameStats
	tickOpen      bool

	// State
	paused         bool
	stepsPerUpdate int
	showPerf       bool
}

// NewGameWithOptions creates a game from the global config.
func NewGameWithOptions(opts Options) (*Game, error) {
	cfg := config.Cfg()

	if opts.StepsPerUpdate < 1 {
		opts.StepsPerUpdate = 1
	}
	if opts.StatsWindowSec <= 0 {
		opts.StatsWindowSec = cfg.Telemetry.StatsWindow
	}
	if opts.Palette == "" {
		opts.Palette = "viridis"
	}
	if opts.ParticleCount <= 0 {
		opts.ParticleCount = cfg.Particles.Count
	}

	g := &Game{
		cfg:            cfg,
		opts:           opts,
		viewport:       systems.Viewport{Width: cfg.Derived.ScreenW32, Height: cfg.Derived.ScreenH32},
		density:        systems.NewDensityField(cfg.Density.Downsample),
		showDensity:    cfg.Density.Enabled,
		collector:      telemetry.NewCollector(opts.StatsWindowSec),
		perfCollector:  telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		stepsPerUpdate: opts.StepsPerUpdate,
	}

	if err := g.resetSimulation(); err != nil {
		return nil, err
	}

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		g.sim.Close()
		return nil, fmt.Errorf("creating output manager: %w", err)
	}
	g.outputManager = om
	if err := om.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config snapshot", "error", err)
	}

	if !opts.Headless {
		ramp, err := palette.New(opts.Palette, 256)
		if err != nil {
			g.Unload()
			return nil, err
		}
		g.camera = camera.New(g.viewport.Width, g.viewport.Height)
		g.particleRenderer = renderer.NewParticleRenderer(ramp, g.sim.Params().MaxVelocity)
		g.densityRenderer = renderer.NewDensityRenderer(float32(cfg.Density.Gain))
		g.hud = ui.NewHUD()
		g.perfPanel = ui.NewPerfPanel(int32(g.viewport.Width)-250, 10, 240)
		g.paramsPanel = ui.NewParamsPanel(10, 110, 260)
	}

	return g, nil
}

// resetSimulation rebuilds the particle lattice and its render entities.
func (g *Game) resetSimulation() error {
	params := simulation.ParamsFromConfig(g.cfg)
	params.Seed = g.opts.Seed
	if g.sim != nil {
		// Keep slider edits across resets.
		cur := g.sim.Params()
		params.SmoothingRadius = cur.SmoothingRadius
		params.ForceScale = cur.ForceScale
		params.MaxVelocity = cur.MaxVelocity
		params.DampingFactor = cur.DampingFactor
		g.sim.Close()
	}

	p := g.cfg.Particles
	sim, err := simulation.NewLattice(params, g.opts.ParticleCount,
		float32(p.Radius), float32(p.Spacing), float32(p.Jitter))
	if err != nil {
		return fmt.Errorf("creating simulation: %w", err)
	}
	sim.SetPhaseHook(g.onPhase)
	g.sim = sim

	if p.Swirl > 0 {
		g.stir(float32(p.Swirl))
	}

	g.spawnEntities(sim.Store().Len())
	return nil
}

// spawnEntities creates one render entity per particle in a fresh world.
func (g *Game) spawnEntities(n int) {
	g.world = ecs.NewWorld()
	g.particleMapper = ecs.NewMap2[components.ParticleRef, components.Tint](g.world)
	g.particleFilter = ecs.NewFilter2[components.ParticleRef, components.Tint](g.world)

	for i := 0; i < n; i++ {
		ref := components.ParticleRef{Index: int32(i)}
		tint := components.Tint{R: 255, G: 255, B: 255, A: 255}
		g.particleMapper.NewEntity(&ref, &tint)
	}
}

// stir gives every particle a curl-noise velocity.
func (g *Game) stir(strength float32) {
	seed := g.opts.Seed + int64(g.sim.Frame())
	fastest := g.sim.Stir(seed, float32(g.cfg.Particles.SwirlScale), strength)
	slog.Debug("stirred particles", "strength", strength, "fastest", fastest)
}

// onPhase forwards frame driver phases to the perf collector.
func (g *Game) onPhase(p simulation.Phase) {
	if p == simulation.PhaseIdle {
		g.perfCollector.EndPhase()
		return
	}
	g.perfCollector.StartPhase(p.String())
}

// step advances the simulation once and records the result.
func (g *Game) step(dt float32) {
	stats := g.sim.Step(dt, g.viewport)
	g.lastStats = stats
	g.collector.Record(stats)
}

// Update runs one frame in graphics mode. dt is the wall-clock frame time.
func (g *Game) Update(dt float32) {
	g.handleInput()

	if g.paused {
		return
	}

	g.perfCollector.StartTick()
	g.tickOpen = true

	for i := 0; i < g.stepsPerUpdate; i++ {
		g.step(dt)
	}

	if g.showDensity {
		g.perfCollector.StartPhase(telemetry.PhaseDensity)
		g.sim.SampleDensity(g.density)
		g.densityRenderer.Update(g.density)
		g.perfCollector.EndPhase()
	}

	g.flushTelemetry()
}

// UpdateHeadless runs StepsPerUpdate fixed steps over the configured screen
// size, without touching raylib.
func (g *Game) UpdateHeadless() {
	for i := 0; i < g.stepsPerUpdate; i++ {
		g.perfCollector.StartTick()
		g.step(g.cfg.Derived.DT32)
		g.perfCollector.EndTick()

		g.flushTelemetry()
	}
}

// SetStatsCallback registers a function called with every flushed window.
func (g *Game) SetStatsCallback(fn func(telemetry.WindowStats)) {
	g.statsCallback = fn
}

// Simulation returns the underlying frame driver.
func (g *Game) Simulation() *simulation.Simulation {
	return g.sim
}

// Frame returns the number of completed simulation frames.
func (g *Game) Frame() uint64 {
	return g.sim.Frame()
}

// SimTime returns the simulated seconds recorded so far.
func (g *Game) SimTime() float64 {
	return g.collector.SimTime()
}

// Unload releases all resources.
func (g *Game) Unload() {
	if g.densityRenderer != nil {
		g.densityRenderer.Unload()
	}
	if g.sim != nil {
		g.sim.Close()
	}
	if err := g.outputManager.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
	}
}
