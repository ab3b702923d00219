// Package simulation drives the particle fluid one frame at a time: it
// distributes particles into the write grid, updates every particle in
// parallel against the previous frame's read grid, then swaps the grids.
package simulation

import (
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/pthm-cable/fluid/components"
	"github.com/pthm-cable/fluid/systems"
)

// FrameStats reports what happened during one Step.
type FrameStats struct {
	Frame          uint64
	Skipped        bool    // viewport had no area
	Resized        bool    // grids were reallocated this frame
	DT             float32 // step actually used, after clamping
	Collisions     int
	BoundaryHits   int
	NaNRecoveries  int
	NeighborChecks int
	PeakCell       int // most particles sharing one grid cell
}

// Simulation owns the particle store, the double-buffered grid and the
// worker pool. Step, SampleDensity and SetParams must be called from a
// single goroutine.
type Simulation struct {
	params  Params
	store   *systems.Store
	buffers *systems.DoubleBuffer

	viewport systems.Viewport
	dt       float32
	phase    Phase
	hook     PhaseHook
	frame    uint64

	parallel      *parallelState
	densityTarget *systems.DensityField

	logger *slog.Logger
}

// New creates a simulation over a copy of the given particles.
func New(params Params, particles []components.Particle) (*Simulation, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid simulation params: %w", err)
	}

	s := &Simulation{
		params:   params,
		store:    systems.NewStore(particles),
		buffers:  systems.NewDoubleBuffer(params.SmoothingRadius),
		parallel: newParallelState(params.Workers, params.Seed),
		logger:   slog.Default(),
	}

	// Callers may hand in anything; the no-NaN guarantee starts here.
	recovered := 0
	for i := 0; i < s.store.Len(); i++ {
		if systems.Sanitize(s.store.At(i)) {
			recovered++
		}
	}
	if recovered > 0 {
		s.logger.Warn("reset non-finite initial particle state", "count", recovered)
	}

	return s, nil
}

// NewLattice creates a simulation with count particles laid out on a square
// lattice centred on the origin.
func NewLattice(params Params, count int, radius, spacing, jitter float32) (*Simulation, error) {
	rng := rand.New(rand.NewSource(params.Seed))
	return New(params, systems.Lattice(count, radius, spacing, jitter, rng))
}

// SetLogger replaces the logger used for recovery diagnostics.
func (s *Simulation) SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.Default()
	}
	s.logger = l
}

// SetPhaseHook registers a callback invoked on every phase transition.
func (s *Simulation) SetPhaseHook(h PhaseHook) {
	s.hook = h
}

// Params returns the current parameters.
func (s *Simulation) Params() Params {
	return s.params
}

// SetParams swaps in new parameters between frames. A new smoothing radius
// changes the cell size, so both grids are rebuilt and the next frame starts
// with an empty read grid.
func (s *Simulation) SetParams(p Params) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("invalid simulation params: %w", err)
	}
	if p.SmoothingRadius != s.params.SmoothingRadius {
		s.buffers = systems.NewDoubleBuffer(p.SmoothingRadius)
	}
	// Worker count and seed are fixed at construction.
	p.Workers = s.params.Workers
	p.Seed = s.params.Seed
	s.params = p
	return nil
}

// Phase returns the current phase; Idle between frames.
func (s *Simulation) Phase() Phase {
	return s.phase
}

// Frame returns the number of completed, non-skipped frames.
func (s *Simulation) Frame() uint64 {
	return s.frame
}

// Particles returns the particle state. Read-only outside Step.
func (s *Simulation) Particles() []components.Particle {
	return s.store.All()
}

// Store returns the particle store.
func (s *Simulation) Store() *systems.Store {
	return s.store
}

// ReadGrid returns the grid that the next frame will read, which holds the
// snapshots distributed during the last completed frame.
func (s *Simulation) ReadGrid() *systems.Grid {
	return s.buffers.Read()
}

// Viewport returns the viewport used by the last completed frame.
func (s *Simulation) Viewport() systems.Viewport {
	return s.viewport
}

func (s *Simulation) enter(p Phase) {
	s.phase = p
	if s.hook != nil {
		s.hook(p)
	}
}

// Step advances the simulation by dt, clamped to [MinDT, MaxDT], within the
// given viewport. A viewport with no area makes the frame a no-op.
func (s *Simulation) Step(dt float32, vp systems.Viewport) FrameStats {
	stats := FrameStats{Frame: s.frame}
	if vp.Empty() {
		stats.Skipped = true
		return stats
	}

	s.dt = s.params.ClampDT(dt)
	s.viewport = vp
	stats.DT = s.dt

	dimX, dimY := systems.Dimensions(vp, s.buffers.Write().CellSize())
	if curX, curY := s.buffers.Dims(); curX != dimX || curY != dimY {
		s.buffers.Resize(dimX, dimY)
		stats.Resized = true
	}

	n := s.store.Len()

	// Distributing: fill the write grid for the next frame.
	s.enter(PhaseDistributing)
	s.buffers.Write().Clear()
	s.dispatch(n, jobDistribute, s.params.ParallelThreshold)

	// Updating: every particle reads only the read grid and writes only itself.
	s.enter(PhaseUpdating)
	s.parallel.resetCounts()
	s.dispatch(n, jobUpdate, s.params.ParallelThreshold)
	counts := s.parallel.sumCounts()

	// Swapping: dispatch has returned, so no reader remains.
	s.enter(PhaseSwapping)
	s.buffers.Swap()
	stats.PeakCell = s.buffers.Read().PeakCellLen()

	s.enter(PhaseIdle)
	s.frame++

	stats.Collisions = counts.collisions
	stats.BoundaryHits = counts.boundaryHits
	stats.NaNRecoveries = counts.nanRecoveries
	stats.NeighborChecks = counts.neighborChecks

	if counts.nanRecoveries > 0 {
		s.logger.Warn("recovered non-finite particle state",
			"frame", stats.Frame,
			"count", counts.nanRecoveries,
		)
	}

	return stats
}

// updateRange advances particles [start, end) by one step.
func (s *Simulation) updateRange(start, end int, sc *workerScratch) {
	particles := s.store.All()
	read := s.buffers.Read()
	vp := s.viewport
	dt := s.dt
	forceStep := s.params.ForceScale * dt

	sc.smoothingRadius = s.params.SmoothingRadius
	sc.collisionEpsilon = s.params.CollisionEpsilon

	for i := start; i < end; i++ {
		p := &particles[i]

		sc.cur = p
		sc.curID = int32(i)
		sc.fx, sc.fy = 0, 0

		sc.neighbors = read.Neighbors(p.Pos.X, p.Pos.Y, vp, sc.neighbors[:0])
		for _, idx := range sc.neighbors {
			read.ReadCell(idx, sc.visit)
		}

		p.Vel.X += sc.fx * forceStep
		p.Vel.Y += sc.fy * forceStep

		systems.ClampSpeed(&p.Vel, s.params.MaxVelocity)

		p.Pos.X += p.Vel.X * dt
		p.Pos.Y += p.Vel.Y * dt

		sc.counts.boundaryHits += systems.ApplyBoundary(p, vp, s.params.DampingFactor)

		if systems.Sanitize(p) {
			sc.counts.nanRecoveries++
		}
	}
	sc.cur = nil
}

// SampleDensity fills field from the current read grid. Call between frames.
func (s *Simulation) SampleDensity(field *systems.DensityField) {
	if s.viewport.Empty() {
		return
	}
	field.Resize(s.viewport)
	s.densityTarget = field
	s.dispatch(field.H, jobDensity, 2)
	s.densityTarget = nil
}

// Stir replaces every particle's velocity with a seeded curl-noise field.
// scale is world units per noise period. Call between frames. Returns the
// fastest speed assigned; the next Step clamps it to MaxVelocity.
func (s *Simulation) Stir(seed int64, scale, strength float32) float32 {
	return systems.Stir(s.store.All(), systems.NewGradientNoise(seed), scale, strength)
}

// Close stops the worker pool.
func (s *Simulation) Close() {
	s.parallel.stopWorkers()
}
