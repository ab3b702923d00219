package main

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/fluid/config"
	"github.com/pthm-cable/fluid/simulation"
	"github.com/pthm-cable/fluid/systems"
	"github.com/pthm-cable/fluid/telemetry"
)

// Score breaks a run's quality into its components. Evaluate averages it
// over seeds.
type Score struct {
	Quality       float64 `csv:"quality"`
	Uniformity    float64 `csv:"uniformity"`
	Headroom      float64 `csv:"headroom"`
	Stability     float64 `csv:"stability"`
	DensityCV     float64 `csv:"density_cv"`
	SpeedP90Frac  float64 `csv:"speed_p90_frac"` // mean P90 speed over the clamp
	NaNRecoveries int     `csv:"nan_recoveries"`
	Failed        int     `csv:"failed_seeds"`
}

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params      *ParamVector
	maxFrames   int
	seeds       []int64
	baseConfig  *config.Config
	statsWindow float64

	mu          sync.Mutex
	bestFitness float64
	bestWindows []telemetry.WindowStats // best seed of the best evaluation
	lastScore   Score
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxFrames int, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxFrames:   maxFrames,
		seeds:       seeds,
		baseConfig:  baseCfg,
		statsWindow: 1.0,
		bestFitness: math.Inf(1),
	}
}

// LastScore returns the seed-averaged score of the most recent evaluation.
func (fe *FitnessEvaluator) LastScore() Score {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastScore
}

// BestWindows returns the window stats of the best seed of the best
// evaluation so far.
func (fe *FitnessEvaluator) BestWindows() []telemetry.WindowStats {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.bestWindows
}

// runResult holds the results from a single simulation run.
type runResult struct {
	windowStats   []telemetry.WindowStats
	densityCV     float64 // coefficient of variation of the final density field
	nanRecoveries int
	maxVelocity   float64
	failed        bool
}

// Evaluate computes fitness for a parameter vector (lower = better).
// Fitness is the negated mean quality over all seeds.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	runs := make([]*runResult, len(fe.seeds))
	scores := make([]Score, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			runs[idx] = fe.runSimulation(x, s)
			scores[idx] = computeScore(runs[idx])
		}(i, seed)
	}
	wg.Wait()

	mean := meanScore(scores)
	fitness := -mean.Quality

	best := 0
	for i := range scores {
		if scores[i].Quality > scores[best].Quality {
			best = i
		}
	}

	fe.mu.Lock()
	if fitness < fe.bestFitness {
		fe.bestFitness = fitness
		fe.bestWindows = runs[best].windowStats
	}
	fe.lastScore = mean
	fe.mu.Unlock()

	return fitness
}

// runSimulation executes a single headless run over the configured screen.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed int64) *runResult {
	cfg := fe.baseConfig.Clone()
	fe.params.ApplyToConfig(cfg, x)

	result := &runResult{maxVelocity: cfg.Physics.MaxVelocity}

	// Every Step on an empty viewport is skipped and the frame count never
	// advances.
	vp := systems.Viewport{Width: cfg.Derived.ScreenW32, Height: cfg.Derived.ScreenH32}
	if vp.Empty() {
		result.failed = true
		return result
	}

	params := simulation.ParamsFromConfig(cfg)
	params.Seed = seed
	// Seeds already run in parallel.
	params.Workers = 1

	p := cfg.Particles
	sim, err := simulation.NewLattice(params, p.Count, float32(p.Radius), float32(p.Spacing), float32(p.Jitter))
	if err != nil {
		result.failed = true
		return result
	}
	defer sim.Close()

	if p.Swirl > 0 {
		sim.Stir(seed, float32(p.SwirlScale), float32(p.Swirl))
	}

	collector := telemetry.NewCollector(fe.statsWindow)
	for sim.Frame() < uint64(fe.maxFrames) {
		stats := sim.Step(cfg.Derived.DT32, vp)
		collector.Record(stats)
		result.nanRecoveries += stats.NaNRecoveries

		if collector.ShouldFlush() {
			result.windowStats = append(result.windowStats, collector.Flush(sim.Frame(), sim.Particles()))
		}
	}

	field := systems.NewDensityField(cfg.Density.Downsample)
	sim.SampleDensity(field)
	result.densityCV = cv(float32sToFloat64s(field.Values))

	return result
}

// Quality component weights.
const (
	qualityWeightUniformity = 0.40
	qualityWeightHeadroom   = 0.30
	qualityWeightStability  = 0.30

	qualityWarmupWindows = 2 // skip first N windows while the lattice relaxes

	// Target P90 speed as a fraction of the clamp
	headroomTarget = 0.3
	headroomWidth  = 0.2
)

// computeScore scores a run. Quality is in [0, 1]; a run that needed NaN
// recovery, failed to start or ended before the warmup scores zero.
func computeScore(r *runResult) Score {
	s := Score{NaNRecoveries: r.nanRecoveries, DensityCV: r.densityCV}
	if r.failed {
		s.Failed = 1
		return s
	}
	if r.nanRecoveries > 0 || len(r.windowStats) <= qualityWarmupWindows {
		return s
	}
	valid := r.windowStats[qualityWarmupWindows:]

	// 1. Density uniformity at the end of the run
	s.Uniformity = math.Exp(-r.densityCV * r.densityCV)

	// 2. Speed headroom: particles move, but rarely hit the clamp
	var headroomSum, fracSum float64
	energies := make([]float64, 0, len(valid))
	for _, w := range valid {
		frac := 0.0
		if r.maxVelocity > 0 {
			frac = w.SpeedP90 / r.maxVelocity
		}
		d := (frac - headroomTarget) / headroomWidth
		headroomSum += math.Exp(-d * d)
		fracSum += frac
		energies = append(energies, w.KineticEnergy)
	}
	s.Headroom = headroomSum / float64(len(valid))
	s.SpeedP90Frac = fracSum / float64(len(valid))

	// 3. Kinetic energy stability across windows
	if len(energies) >= 2 {
		c := cv(energies)
		s.Stability = math.Exp(-c * c)
	}

	s.Quality = clamp01(qualityWeightUniformity*s.Uniformity +
		qualityWeightHeadroom*s.Headroom +
		qualityWeightStability*s.Stability)
	return s
}

// meanScore averages scores component-wise; counts are summed.
func meanScore(scores []Score) Score {
	var m Score
	if len(scores) == 0 {
		return m
	}
	n := float64(len(scores))
	for _, s := range scores {
		m.Quality += s.Quality / n
		m.Uniformity += s.Uniformity / n
		m.Headroom += s.Headroom / n
		m.Stability += s.Stability / n
		m.DensityCV += s.DensityCV / n
		m.SpeedP90Frac += s.SpeedP90Frac / n
		m.NaNRecoveries += s.NaNRecoveries
		m.Failed += s.Failed
	}
	return m
}

// cv computes the coefficient of variation (std/mean) for a slice of values.
func cv(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean, std := stat.PopMeanStdDev(values, nil)
	if mean == 0 {
		return 0
	}
	return std / mean
}

func float32sToFloat64s(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, f := range v {
		out[i] = float64(f)
	}
	return out
}

// clamp01 clamps x to [0, 1].
func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
