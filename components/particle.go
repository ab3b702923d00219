// Package components defines the plain data records shared by the simulation
// core and its hosts.
package components

import "math"

// Position represents a particle's world position.
// Z is carried for the host transform; the 2D physics never reads it.
type Position struct {
	X, Y, Z float32
}

// Velocity represents a particle's velocity in world units per second.
type Velocity struct {
	X, Y, Z float32
}

// Speed returns the planar velocity magnitude.
func (v Velocity) Speed() float32 {
	return float32(math.Sqrt(float64(v.X*v.X + v.Y*v.Y)))
}

// Particle is a circular fluid particle. Radius is fixed at creation.
type Particle struct {
	Pos    Position
	Vel    Velocity
	Radius float32
}

// Mass returns the effective mass proxy used by collisions (radius squared).
func (p *Particle) Mass() float32 {
	return p.Radius * p.Radius
}
