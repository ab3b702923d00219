package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a window of frames.
type WindowStats struct {
	WindowStartFrame uint64  `csv:"-"`
	WindowEndFrame   uint64  `csv:"window_end"`
	SimTimeSec       float64 `csv:"sim_time"`

	Particles     int `csv:"particles"`
	Frames        int `csv:"frames"`
	SkippedFrames int `csv:"skipped_frames"`
	Resizes       int `csv:"resizes"`

	// Speed distribution (sampled at window end)
	SpeedMean float64 `csv:"speed_mean"`
	SpeedStd  float64 `csv:"speed_std"`
	SpeedP10  float64 `csv:"speed_p10"`
	SpeedP50  float64 `csv:"speed_p50"`
	SpeedP90  float64 `csv:"speed_p90"`
	SpeedMax  float64 `csv:"speed_max"`

	// Sum of m v^2 / 2 with mass = radius^2
	KineticEnergy float64 `csv:"kinetic_energy"`

	// Event totals during window
	Collisions     int `csv:"collisions"`
	BoundaryHits   int `csv:"boundary_hits"`
	NaNRecoveries  int `csv:"nan_recoveries"`
	NeighborChecks int `csv:"neighbor_checks"`
	PeakCell       int `csv:"peak_cell"` // most particles in one grid cell

	// Per particle per frame
	CollisionRate     float64 `csv:"collision_rate"`
	NeighborsPerFrame float64 `csv:"neighbors_per_particle"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeSpeedStats calculates mean, population std, and percentiles.
// values is sorted in place.
func ComputeSpeedStats(values []float64) (mean, std, p10, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0, 0
	}

	mean, std = stat.PopMeanStdDev(values, nil)

	sort.Float64s(values)
	p10 = Percentile(values, 0.10)
	p50 = Percentile(values, 0.50)
	p90 = Percentile(values, 0.90)

	return mean, std, p10, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Uint64("window_start", s.WindowStartFrame),
		slog.Uint64("window_end", s.WindowEndFrame),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("particles", s.Particles),
		slog.Int("frames", s.Frames),
		slog.Int("skipped_frames", s.SkippedFrames),
		slog.Int("resizes", s.Resizes),
		slog.Float64("speed_mean", s.SpeedMean),
		slog.Float64("speed_std", s.SpeedStd),
		slog.Float64("speed_p10", s.SpeedP10),
		slog.Float64("speed_p50", s.SpeedP50),
		slog.Float64("speed_p90", s.SpeedP90),
		slog.Float64("speed_max", s.SpeedMax),
		slog.Float64("kinetic_energy", s.KineticEnergy),
		slog.Int("collisions", s.Collisions),
		slog.Int("boundary_hits", s.BoundaryHits),
		slog.Int("nan_recoveries", s.NaNRecoveries),
		slog.Int("neighbor_checks", s.NeighborChecks),
		slog.Int("peak_cell", s.PeakCell),
		slog.Float64("collision_rate", s.CollisionRate),
		slog.Float64("neighbors_per_particle", s.NeighborsPerFrame),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndFrame,
		"sim_time", s.SimTimeSec,
		"particles", s.Particles,
		"frames", s.Frames,
		"skipped_frames", s.SkippedFrames,
		"speed_mean", s.SpeedMean,
		"speed_p50", s.SpeedP50,
		"speed_p90", s.SpeedP90,
		"speed_max", s.SpeedMax,
		"kinetic_energy", s.KineticEnergy,
		"collisions", s.Collisions,
		"boundary_hits", s.BoundaryHits,
		"nan_recoveries", s.NaNRecoveries,
		"neighbors_per_particle", s.NeighborsPerFrame,
	)
}
