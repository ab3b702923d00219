package systems

import "github.com/pthm-cable/fluid/components"

// ApplyBoundary keeps p inside the viewport. On each axis independently, a
// particle past extent/2 - radius is clamped to that bound and the axis
// velocity is reflected and scaled by damping. Returns the number of walls hit.
func ApplyBoundary(p *components.Particle, vp Viewport, damping float32) int {
	hits := 0
	hw, hh := vp.HalfExtents()

	boundX := hw - p.Radius
	if p.Pos.X > boundX {
		p.Pos.X = boundX
		p.Vel.X = -p.Vel.X * damping
		hits++
	} else if p.Pos.X < -boundX {
		p.Pos.X = -boundX
		p.Vel.X = -p.Vel.X * damping
		hits++
	}

	boundY := hh - p.Radius
	if p.Pos.Y > boundY {
		p.Pos.Y = boundY
		p.Vel.Y = -p.Vel.Y * damping
		hits++
	} else if p.Pos.Y < -boundY {
		p.Pos.Y = -boundY
		p.Vel.Y = -p.Vel.Y * damping
		hits++
	}

	return hits
}
