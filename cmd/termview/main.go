// Command termview runs the fluid simulation in a terminal, drawing the
// density field with half-block characters.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/fluid/config"
	"github.com/pthm-cable/fluid/palette"
	"github.com/pthm-cable/fluid/simulation"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	particles := flag.Int("particles", 0, "Particle count (0 = use config)")
	scale := flag.Int("scale", 6, "World units per terminal column")
	paletteName := flag.String("palette", "inferno", "Colour ramp")
	fps := flag.Int("fps", 30, "Frames per second")
	logFile := flag.String("log", "", "Write JSON logs to this file (terminal is in use)")
	flag.Parse()

	if err := run(*configPath, *seed, *particles, *scale, *paletteName, *fps, *logFile); err != nil {
		fmt.Fprintln(os.Stderr, "termview:", err)
		os.Exit(1)
	}
}

func run(configPath string, seed int64, count, scale int, paletteName string, fps int, logFile string) error {
	if err := config.Init(configPath); err != nil {
		return err
	}
	cfg := config.Cfg()

	// The screen owns stdout, so logs go to a file or nowhere.
	logger := slog.New(slog.DiscardHandler)
	if logFile != "" {
		f, err := os.Create(logFile)
		if err != nil {
			return fmt.Errorf("creating log file: %w", err)
		}
		defer f.Close()
		logger = slog.New(slog.NewJSONHandler(f, nil))
	}
	slog.SetDefault(logger)

	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if count <= 0 {
		count = cfg.Particles.Count
	}
	if scale < 1 {
		scale = 1
	}
	if fps < 1 {
		fps = 30
	}

	ramp, err := palette.New(paletteName, 256)
	if err != nil {
		return err
	}

	newSim := func() (*simulation.Simulation, error) {
		params := simulation.ParamsFromConfig(cfg)
		params.Seed = seed
		p := cfg.Particles
		sim, err := simulation.NewLattice(params, count, float32(p.Radius), float32(p.Spacing), float32(p.Jitter))
		if err != nil {
			return nil, err
		}
		sim.SetLogger(logger)
		if p.Swirl > 0 {
			sim.Stir(seed, float32(p.SwirlScale), float32(p.Swirl))
		}
		return sim, nil
	}

	sim, err := newSim()
	if err != nil {
		return err
	}
	defer func() { sim.Close() }()

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	v := newView(screen, ramp, scale, float32(cfg.Density.Gain))

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			eventChan <- ev
		}
	}()

	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	logger.Info("termview started", "seed", seed, "particles", count, "scale", scale)

	var (
		paused bool
		stats  simulation.FrameStats
		last   = time.Now()
	)
	for {
		select {
		case ev := <-eventChan:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				switch {
				case ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC:
					return nil
				case ev.Key() == tcell.KeyRune && ev.Rune() == 'q':
					return nil
				case ev.Key() == tcell.KeyRune && ev.Rune() == ' ':
					paused = !paused
				case ev.Key() == tcell.KeyRune && ev.Rune() == 'r':
					if sim, err = resetSim(sim, newSim); err != nil {
						return err
					}
				}
			case *tcell.EventResize:
				screen.Sync()
			}

		case now := <-ticker.C:
			dt := float32(now.Sub(last).Seconds())
			last = now
			if !paused {
				cols, rows := screen.Size()
				stats = sim.Step(dt, viewportFor(cols, rows, float32(scale)))
			}
			v.draw(sim, stats, paused)
		}
	}
}

// resetSim builds a replacement simulation and closes cur only once the
// replacement exists. On error cur is returned still open.
func resetSim(cur *simulation.Simulation, newSim func() (*simulation.Simulation, error)) (*simulation.Simulation, error) {
	next, err := newSim()
	if err != nil {
		return cur, err
	}
	cur.Close()
	return next, nil
}
