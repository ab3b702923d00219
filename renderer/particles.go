package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/fluid/camera"
	"github.com/pthm-cable/fluid/components"
	"github.com/pthm-cable/fluid/palette"
)

// ParticleRenderer draws particles as filled circles.
type ParticleRenderer struct {
	ramp     *palette.Ramp
	maxSpeed float32
}

// NewParticleRenderer creates a renderer that colours particles by speed,
// with maxSpeed mapping to the top of the ramp.
func NewParticleRenderer(ramp *palette.Ramp, maxSpeed float32) *ParticleRenderer {
	return &ParticleRenderer{ramp: ramp, maxSpeed: maxSpeed}
}

// SetMaxSpeed changes the speed that maps to the top of the ramp.
func (r *ParticleRenderer) SetMaxSpeed(v float32) {
	r.maxSpeed = v
}

// Tint returns the colour for a particle moving at speed.
func (r *ParticleRenderer) Tint(speed float32) components.Tint {
	var t float32
	if r.maxSpeed > 0 {
		t = speed / r.maxSpeed
	}
	c := r.ramp.At(t)
	return components.Tint{R: c.R, G: c.G, B: c.B, A: c.A}
}

// Draw renders one particle through the camera, culling it when off screen.
func (r *ParticleRenderer) Draw(cam *camera.Camera, p *components.Particle, tint components.Tint) {
	if !cam.IsVisible(p.Pos.X, p.Pos.Y, p.Radius) {
		return
	}
	sx, sy := cam.WorldToScreen(p.Pos.X, p.Pos.Y)
	radius := cam.ScaleToScreen(p.Radius)
	if radius < 0.5 {
		radius = 0.5
	}
	rl.DrawCircleV(rl.Vector2{X: sx, Y: sy}, radius, rl.Color{R: tint.R, G: tint.G, B: tint.B, A: tint.A})
}
