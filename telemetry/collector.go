package telemetry

import (
	"math"

	"github.com/pthm-cable/fluid/components"
	"github.com/pthm-cable/fluid/simulation"
)

// Collector accumulates frame results within time windows and produces
// WindowStats.
type Collector struct {
	windowDurationSec float64

	// Current window tracking
	windowStartFrame uint64
	windowSimTime    float64
	simTime          float64

	frames         int
	skipped        int
	resizes        int
	collisions     int
	boundaryHits   int
	nanRecoveries  int
	neighborChecks int
	peakCell       int

	speeds []float64
}

// NewCollector creates a new stats collector.
// windowDurationSec: how much simulated time each stats window covers.
func NewCollector(windowDurationSec float64) *Collector {
	if !(windowDurationSec > 0) {
		windowDurationSec = 1
	}
	return &Collector{windowDurationSec: windowDurationSec}
}

// Record adds the result of one Step to the current window.
func (c *Collector) Record(fs simulation.FrameStats) {
	if fs.Skipped {
		c.skipped++
		return
	}
	c.frames++
	c.windowSimTime += float64(fs.DT)
	c.simTime += float64(fs.DT)
	if fs.Resized {
		c.resizes++
	}
	c.collisions += fs.Collisions
	c.boundaryHits += fs.BoundaryHits
	c.nanRecoveries += fs.NaNRecoveries
	c.neighborChecks += fs.NeighborChecks
	c.peakCell = max(c.peakCell, fs.PeakCell)
}

// ShouldFlush returns true once the window has covered its simulated time.
func (c *Collector) ShouldFlush() bool {
	return c.windowSimTime >= c.windowDurationSec
}

// SimTime returns the total simulated time recorded so far.
func (c *Collector) SimTime() float64 {
	return c.simTime
}

// Flush produces a WindowStats from the counters and the particle state at
// window end, then resets the counters for the next window.
func (c *Collector) Flush(currentFrame uint64, particles []components.Particle) WindowStats {
	c.speeds = c.speeds[:0]
	var ke, maxSpeed float64
	for i := range particles {
		p := &particles[i]
		v := float64(p.Vel.Speed())
		c.speeds = append(c.speeds, v)
		ke += 0.5 * float64(p.Mass()) * v * v
		maxSpeed = math.Max(maxSpeed, v)
	}
	mean, std, p10, p50, p90 := ComputeSpeedStats(c.speeds)

	stats := WindowStats{
		WindowStartFrame: c.windowStartFrame,
		WindowEndFrame:   currentFrame,
		SimTimeSec:       c.simTime,

		Particles:     len(particles),
		Frames:        c.frames,
		SkippedFrames: c.skipped,
		Resizes:       c.resizes,

		SpeedMean: mean,
		SpeedStd:  std,
		SpeedP10:  p10,
		SpeedP50:  p50,
		SpeedP90:  p90,
		SpeedMax:  maxSpeed,

		KineticEnergy: ke,

		Collisions:     c.collisions,
		BoundaryHits:   c.boundaryHits,
		NaNRecoveries:  c.nanRecoveries,
		NeighborChecks: c.neighborChecks,
		PeakCell:       c.peakCell,
	}

	if work := float64(c.frames) * float64(len(particles)); work > 0 {
		stats.CollisionRate = float64(c.collisions) / work
		stats.NeighborsPerFrame = float64(c.neighborChecks) / work
	}

	// Reset for next window
	c.windowStartFrame = currentFrame
	c.windowSimTime = 0
	c.frames = 0
	c.skipped = 0
	c.resizes = 0
	c.collisions = 0
	c.boundaryHits = 0
	c.nanRecoveries = 0
	c.neighborChecks = 0
	c.peakCell = 0

	return stats
}
