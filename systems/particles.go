package systems

import (
	"math"
	"math/rand"

	"github.com/pthm-cable/fluid/components"
)

// Store is the contiguous particle arena. A particle's handle is its index,
// which never changes: particles are neither spawned nor removed after setup.
type Store struct {
	particles []components.Particle
}

// NewStore copies the given particles into a new store.
func NewStore(particles []components.Particle) *Store {
	s := &Store{particles: make([]components.Particle, len(particles))}
	copy(s.particles, particles)
	return s
}

// Len returns the number of particles.
func (s *Store) Len() int {
	return len(s.particles)
}

// At returns a pointer to particle i.
func (s *Store) At(i int) *components.Particle {
	return &s.particles[i]
}

// All returns the backing slice. Callers outside the frame driver must
// treat it as read-only.
func (s *Store) All() []components.Particle {
	return s.particles
}

// Speed returns particle i's planar speed, for colouring by the renderer.
func (s *Store) Speed(i int) float32 {
	return s.particles[i].Vel.Speed()
}

// Lattice lays out count particles on a square lattice centred on the
// origin, spacing world units apart. jitter > 0 offsets each position by up
// to jitter in each axis using rng, breaking the perfect symmetry that
// otherwise makes the first frames degenerate.
func Lattice(count int, radius, spacing, jitter float32, rng *rand.Rand) []components.Particle {
	if count <= 0 {
		return nil
	}
	cols := int(math.Ceil(math.Sqrt(float64(count))))
	rows := (count + cols - 1) / cols

	originX := -float32(cols-1) * spacing / 2
	originY := float32(rows-1) * spacing / 2

	particles := make([]components.Particle, count)
	for i := range particles {
		col := i % cols
		row := i / cols
		x := originX + float32(col)*spacing
		y := originY - float32(row)*spacing
		if jitter > 0 && rng != nil {
			x += (rng.Float32()*2 - 1) * jitter
			y += (rng.Float32()*2 - 1) * jitter
		}
		particles[i] = components.Particle{
			Pos:    components.Position{X: x, Y: y},
			Radius: radius,
		}
	}
	return particles
}
