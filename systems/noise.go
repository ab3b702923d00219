package systems

import (
	"math"
	"math/rand"

	"github.com/pthm-cable/fluid/components"
)

// GradientNoise is seeded 2D Perlin noise.
type GradientNoise struct {
	perm [512]int
}

// NewGradientNoise creates a noise generator with a permutation table
// shuffled by seed.
func NewGradientNoise(seed int64) *GradientNoise {
	n := &GradientNoise{}
	rng := rand.New(rand.NewSource(seed))

	var perm [256]int
	for i := range perm {
		perm[i] = i
	}
	for i := len(perm) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		perm[i], perm[j] = perm[j], perm[i]
	}

	// Doubled so corner hashes never wrap
	for i := 0; i < 256; i++ {
		n.perm[i] = perm[i]
		n.perm[i+256] = perm[i]
	}
	return n
}

// At returns noise in roughly [-1, 1] at (x, y).
func (n *GradientNoise) At(x, y float64) float64 {
	fx := math.Floor(x)
	fy := math.Floor(y)
	xi := int(fx) & 255
	yi := int(fy) & 255
	x -= fx
	y -= fy

	u := smootherstep(x)
	v := smootherstep(y)

	a := n.perm[xi] + yi
	b := n.perm[xi+1] + yi

	bottom := mix(u, corner(n.perm[a], x, y), corner(n.perm[b], x-1, y))
	top := mix(u, corner(n.perm[a+1], x, y-1), corner(n.perm[b+1], x-1, y-1))
	return mix(v, bottom, top)
}

// Curl returns the curl of the noise treated as a stream function, a
// divergence-free 2D vector field. h is the finite-difference step.
func (n *GradientNoise) Curl(x, y, h float64) (vx, vy float64) {
	dndy := (n.At(x, y+h) - n.At(x, y-h)) / (2 * h)
	dndx := (n.At(x+h, y) - n.At(x-h, y)) / (2 * h)
	return dndy, -dndx
}

// Stir sets each particle's velocity from the curl field sampled at its
// position. scale is world units per noise period; strength is the speed
// given to a unit curl. Returns the fastest speed assigned.
func Stir(particles []components.Particle, n *GradientNoise, scale, strength float32) float32 {
	if scale <= 0 {
		return 0
	}
	const h = 1e-2
	var fastest float32
	for i := range particles {
		p := &particles[i]
		cx, cy := n.Curl(float64(p.Pos.X/scale), float64(p.Pos.Y/scale), h)
		p.Vel.X = float32(cx) * strength
		p.Vel.Y = float32(cy) * strength
		if s := p.Vel.Speed(); s > fastest {
			fastest = s
		}
	}
	return fastest
}

func smootherstep(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}

func mix(t, a, b float64) float64 {
	return a + t*(b-a)
}

// corner dots the offset with one of eight gradient directions.
func corner(hash int, x, y float64) float64 {
	switch hash & 7 {
	case 0:
		return x + y
	case 1:
		return -x + y
	case 2:
		return x - y
	case 3:
		return -x - y
	case 4:
		return x
	case 5:
		return -x
	case 6:
		return y
	default:
		return -y
	}
}
