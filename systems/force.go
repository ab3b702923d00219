package systems

import "github.com/pthm-cable/fluid/components"

// FallbackDirection supplies a unit vector when two particles coincide
// exactly and the direction between them is undefined.
type FallbackDirection func() (x, y float32)

// Force returns the dispersion force exerted on a by b.
//
// Beyond the smoothing radius the force is zero. Inside it, the force points
// from b towards a with magnitude (d - h)^2, which falls continuously to zero
// at the boundary and grows as the particles press together.
func Force(a, b components.Position, smoothingRadius float32, fallback FallbackDirection) (fx, fy float32) {
	dx := a.X - b.X
	dy := a.Y - b.Y
	d := length(dx, dy)
	if d > smoothingRadius {
		return 0, 0
	}

	var ux, uy float32
	if d == 0 {
		// Also catches separations so small their square underflows.
		if fallback != nil {
			ux, uy = fallback()
		} else {
			ux, uy = 1, 0
		}
	} else {
		ux, uy = dx/d, dy/d
	}

	m := (d - smoothingRadius) * (d - smoothingRadius)
	return ux * m, uy * m
}
