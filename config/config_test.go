package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Physics.SmoothingRadius != 12 {
		t.Errorf("smoothing_radius = %v, want 12", cfg.Physics.SmoothingRadius)
	}
	if cfg.Derived.CellSize != 24 {
		t.Errorf("derived cell size = %v, want 24", cfg.Derived.CellSize)
	}
	if cfg.Derived.ScreenW32 != float32(cfg.Screen.Width) {
		t.Errorf("derived screen width = %v", cfg.Derived.ScreenW32)
	}
	if cfg.Physics.DampingFactor >= 1 {
		t.Errorf("default damping %v would gain energy at walls", cfg.Physics.DampingFactor)
	}
}

func TestLoad_OverrideMergesWithDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "override.yaml")
	override := "physics:\n  smoothing_radius: 20\nparticles:\n  count: 10\n"
	if err := os.WriteFile(path, []byte(override), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	defaults := Defaults()

	if cfg.Physics.SmoothingRadius != 20 || cfg.Particles.Count != 10 {
		t.Errorf("override not applied: radius=%v count=%d", cfg.Physics.SmoothingRadius, cfg.Particles.Count)
	}
	if cfg.Derived.CellSize != 40 {
		t.Errorf("derived cell size = %v, want 40", cfg.Derived.CellSize)
	}
	if cfg.Physics.MaxVelocity != defaults.Physics.MaxVelocity {
		t.Errorf("unset field lost its default: max_velocity=%v", cfg.Physics.MaxVelocity)
	}
	if cfg.Screen != defaults.Screen {
		t.Errorf("screen section changed: %+v", cfg.Screen)
	}
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"malformed yaml", "physics: [", "parsing config file"},
		{"zero radius", "physics:\n  smoothing_radius: 0\n", "smoothing_radius"},
		{"damping of one", "physics:\n  damping_factor: 1\n", "damping_factor"},
		{"inverted dt", "physics:\n  min_dt: 0.5\n  max_dt: 0.1\n", "dt bounds"},
		{"negative count", "particles:\n  count: -1\n", "particles.count"},
		{"zero width", "screen:\n  width: 0\n", "screen size"},
		{"negative height", "screen:\n  height: -720\n", "screen size"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(dir, strings.ReplaceAll(tc.name, " ", "_")+".yaml")
			if err := os.WriteFile(path, []byte(tc.content), 0644); err != nil {
				t.Fatal(err)
			}
			_, err := Load(path)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("error %q does not mention %q", err, tc.wantErr)
			}
		})
	}

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestWriteYAML_RoundTrip(t *testing.T) {
	cfg := Defaults()
	cfg.Physics.ForceScale = 3.5
	cfg.Workers.Count = 2

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Physics != cfg.Physics || got.Workers != cfg.Workers || got.Density != cfg.Density {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, cfg)
	}
}

func TestClone_Independent(t *testing.T) {
	cfg := Defaults()
	cp := cfg.Clone()
	cp.Physics.MaxVelocity = 1
	if cfg.Physics.MaxVelocity == 1 {
		t.Error("Clone shares state with the original")
	}
}

func TestCfg_PanicsBeforeInit(t *testing.T) {
	saved := global
	global = nil
	defer func() {
		global = saved
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	Cfg()
}
