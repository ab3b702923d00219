package systems

import "math"

// length returns the magnitude of (x, y).
func length(x, y float32) float32 {
	return float32(math.Sqrt(float64(x*x + y*y)))
}

// isFinite reports whether f is neither NaN nor infinite.
func isFinite(f float32) bool {
	return !math.IsNaN(float64(f)) && !math.IsInf(float64(f), 0)
}

// clampInt clamps v to [lo, hi].
func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ceilDiv returns ceil(a/b) as an int, with a minimum of 1 for positive a.
func ceilDiv(a, b float32) int {
	n := int(math.Ceil(float64(a / b)))
	if n < 1 {
		n = 1
	}
	return n
}
