package systems

import "github.com/pthm-cable/fluid/components"

// Sanitize resets non-finite state: a position with any NaN or infinite
// component goes back to the origin, a velocity likewise goes to zero.
// Returns true if anything was reset.
func Sanitize(p *components.Particle) bool {
	reset := false
	if !isFinite(p.Pos.X) || !isFinite(p.Pos.Y) || !isFinite(p.Pos.Z) {
		p.Pos = components.Position{}
		reset = true
	}
	if !isFinite(p.Vel.X) || !isFinite(p.Vel.Y) || !isFinite(p.Vel.Z) {
		p.Vel = components.Velocity{}
		reset = true
	}
	return reset
}
