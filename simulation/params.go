package simulation

import (
	"errors"
	"fmt"

	"github.com/pthm-cable/fluid/config"
)

// Params holds the constants the frame driver runs with.
type Params struct {
	SmoothingRadius  float32
	MaxVelocity      float32
	DampingFactor    float32
	CollisionEpsilon float32
	ForceScale       float32
	MinDT            float32
	MaxDT            float32

	Workers           int   // 0 = GOMAXPROCS
	ParallelThreshold int   // particle count below which work stays on the caller
	Seed              int64 // seeds the coincident-particle fallback directions
}

// DefaultParams returns the parameters from the embedded default config.
func DefaultParams() Params {
	return ParamsFromConfig(config.Defaults())
}

// ParamsFromConfig extracts simulation parameters from a loaded config.
func ParamsFromConfig(cfg *config.Config) Params {
	return Params{
		SmoothingRadius:   float32(cfg.Physics.SmoothingRadius),
		MaxVelocity:       float32(cfg.Physics.MaxVelocity),
		DampingFactor:     float32(cfg.Physics.DampingFactor),
		CollisionEpsilon:  float32(cfg.Physics.CollisionEpsilon),
		ForceScale:        float32(cfg.Physics.ForceScale),
		MinDT:             float32(cfg.Physics.MinDT),
		MaxDT:             float32(cfg.Physics.MaxDT),
		Workers:           cfg.Workers.Count,
		ParallelThreshold: cfg.Workers.ParallelThreshold,
	}
}

// Validate reports the first unusable parameter.
func (p Params) Validate() error {
	switch {
	case !(p.SmoothingRadius > 0):
		return fmt.Errorf("smoothing radius must be positive, got %v", p.SmoothingRadius)
	case !(p.MaxVelocity > 0):
		return fmt.Errorf("max velocity must be positive, got %v", p.MaxVelocity)
	case p.DampingFactor < 0 || p.DampingFactor >= 1:
		return fmt.Errorf("damping factor must be in [0, 1), got %v", p.DampingFactor)
	case !(p.MinDT > 0) || p.MaxDT < p.MinDT:
		return fmt.Errorf("invalid dt bounds [%v, %v]", p.MinDT, p.MaxDT)
	case p.CollisionEpsilon < 0:
		return errors.New("collision epsilon must not be negative")
	}
	return nil
}

// ClampDT bounds a host-supplied step to [MinDT, MaxDT]. NaN maps to MinDT.
func (p Params) ClampDT(dt float32) float32 {
	if !(dt >= p.MinDT) {
		return p.MinDT
	}
	if dt > p.MaxDT {
		return p.MaxDT
	}
	return dt
}
