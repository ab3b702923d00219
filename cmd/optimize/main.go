// Command optimize searches fluid parameters with CMA-ES. Each candidate runs
// headless simulations over several seeds and is scored on how evenly the
// particles spread, how far speeds stay below the clamp and how steady the
// kinetic energy is.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"time"

	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/fluid/config"
	"github.com/pthm-cable/fluid/telemetry"
)

// runOptions holds the command line.
type runOptions struct {
	configPath string
	outputDir  string
	maxFrames  int
	seeds      int
	maxEvals   int
	population int
	stepSize   float64
	particles  int
}

func main() {
	var opts runOptions
	flag.StringVar(&opts.configPath, "config", "", "Base config YAML file (empty = use defaults)")
	flag.StringVar(&opts.outputDir, "output", "", "Output directory for results")
	flag.IntVar(&opts.maxFrames, "max-frames", 1200, "Simulation frames per run")
	flag.IntVar(&opts.seeds, "seeds", 3, "Seeds per evaluation, run in parallel")
	flag.IntVar(&opts.maxEvals, "max-evals", 200, "Maximum number of evaluations")
	flag.IntVar(&opts.population, "population", 0, "CMA-ES population size (0 = 4 + 3 ln(dim))")
	flag.Float64Var(&opts.stepSize, "step-size", 0.3, "Initial CMA-ES step in normalized parameter units")
	flag.IntVar(&opts.particles, "particles", 0, "Particle count per run (0 = use config)")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	if err := run(opts); err != nil {
		slog.Error("optimization failed", "error", err)
		os.Exit(1)
	}
}

func run(opts runOptions) error {
	if opts.outputDir == "" {
		return fmt.Errorf("-output is required")
	}
	if err := os.MkdirAll(opts.outputDir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	baseCfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if opts.particles > 0 {
		baseCfg.Particles.Count = opts.particles
	}

	params := NewParamVector()
	seeds := make([]int64, opts.seeds)
	for i := range seeds {
		seeds[i] = int64(i*1000 + 42)
	}
	evaluator := NewFitnessEvaluator(params, opts.maxFrames, seeds, baseCfg)

	evals, err := newEvalLog(filepath.Join(opts.outputDir, "evaluations.csv"))
	if err != nil {
		return err
	}
	defer evals.Close()

	var (
		count   int
		best    evalRecord
		started = time.Now()
	)
	best.Fitness = math.Inf(1)

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			raw := params.Denormalize(x)
			fitness := evaluator.Evaluate(raw)
			count++

			rec := newEvalRecord(count, fitness, evaluator.LastScore(), params.Clamp(raw))
			if err := evals.Write(rec); err != nil {
				slog.Error("failed to log evaluation", "error", err)
			}
			if fitness < best.Fitness {
				best = rec
			}

			elapsed := time.Since(started)
			remaining := time.Duration(opts.maxEvals-count) * (elapsed / time.Duration(count))
			slog.Info("evaluation",
				"eval", count,
				"quality", rec.Quality,
				"uniformity", rec.Uniformity,
				"headroom", rec.Headroom,
				"stability", rec.Stability,
				"density_cv", rec.DensityCV,
				"speed_p90_frac", rec.SpeedP90Frac,
				"best_quality", best.Quality,
				"elapsed", elapsed.Round(time.Second).String(),
				"eta", remaining.Round(time.Second).String(),
			)
			return fitness
		},
	}

	// Start from the base config so a previous best_config.yaml can seed a new run
	initX := params.Normalize(params.Clamp(params.ExtractFromConfig(baseCfg)))

	slog.Info("starting optimization",
		"params", params.Dim(),
		"seeds", opts.seeds,
		"frames_per_run", opts.maxFrames,
		"particles", baseCfg.Particles.Count,
		"max_evals", opts.maxEvals,
	)

	_, err = optimize.Minimize(problem, initX,
		&optimize.Settings{FuncEvaluations: opts.maxEvals},
		&optimize.CmaEsChol{InitStepSize: opts.stepSize, Population: opts.population},
	)
	if err != nil {
		// Hitting the evaluation budget is reported as an error too.
		slog.Warn("optimization ended", "reason", err)
	}
	if count == 0 {
		return fmt.Errorf("no evaluations ran")
	}

	return writeBest(opts.outputDir, baseCfg, params, best, evaluator.BestWindows(), time.Since(started))
}

// writeBest saves the best parameters as a config and the window stats of
// its best seed as a telemetry run.
func writeBest(dir string, baseCfg *config.Config, params *ParamVector, best evalRecord,
	windows []telemetry.WindowStats, took time.Duration) error {
	bestCfg := baseCfg.Clone()
	params.ApplyToConfig(bestCfg, []float64{best.SmoothingRadius, best.ForceScale, best.MaxVelocity, best.DampingFactor})

	configPath := filepath.Join(dir, "best_config.yaml")
	if err := bestCfg.WriteYAML(configPath); err != nil {
		return fmt.Errorf("writing best config: %w", err)
	}

	om, err := telemetry.NewOutputManager(filepath.Join(dir, "best_run"))
	if err != nil {
		return err
	}
	if err := om.WriteConfig(bestCfg); err != nil {
		om.Close()
		return err
	}
	for _, w := range windows {
		if err := om.WriteTelemetry(w); err != nil {
			om.Close()
			return err
		}
	}
	if err := om.Close(); err != nil {
		return err
	}

	slog.Info("optimization complete",
		"took", took.Round(time.Second).String(),
		"best_eval", best.Eval,
		"quality", best.Quality,
		"smoothing_radius", best.SmoothingRadius,
		"force_scale", best.ForceScale,
		"max_velocity", best.MaxVelocity,
		"damping_factor", best.DampingFactor,
		"config", configPath,
		"windows", len(windows),
	)
	return nil
}
