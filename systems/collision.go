package systems

import "github.com/pthm-cable/fluid/components"

// ResolveCollision applies a 2D elastic collision impulse to p from other.
// Each side's mass proxy is its own radius squared. The impulse is only
// applied while the pair overlaps (closer than half the radius sum) and is
// converging; without the converging gate overlapping particles re-collide
// every frame and stick. Returns true if an impulse was applied.
func ResolveCollision(p *components.Particle, other *Entry, epsilon float32) bool {
	dx := p.Pos.X - other.Pos.X
	dy := p.Pos.Y - other.Pos.Y
	dist := length(dx, dy)
	if dist < epsilon {
		dist = epsilon
	}
	if dist >= (p.Radius+other.Radius)/2 {
		return false
	}

	dvx := p.Vel.X - other.Vel.X
	dvy := p.Vel.Y - other.Vel.Y
	if dx*-dvx+dy*-dvy <= 0 {
		return false
	}

	mSelf := p.Radius * p.Radius
	mOther := other.Radius * other.Radius
	massSum := mSelf + mOther
	if massSum <= 0 {
		return false
	}

	k := (2 * mOther / massSum) * (dvx*dx + dvy*dy) / (dist * dist)
	p.Vel.X -= k * dx
	p.Vel.Y -= k * dy
	return true
}

// ClampSpeed rescales v so its planar magnitude does not exceed maxSpeed.
// Returns true if v was rescaled.
func ClampSpeed(v *components.Velocity, maxSpeed float32) bool {
	speed := length(v.X, v.Y)
	if speed <= maxSpeed || speed == 0 {
		return false
	}
	scale := maxSpeed / speed
	v.X *= scale
	v.Y *= scale
	return true
}
