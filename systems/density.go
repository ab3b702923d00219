package systems

import (
	"math"

	"github.com/pthm-cable/fluid/components"
)

// DensityField samples local particle density over the viewport. Each sample
// sums the dispersion force magnitude of every particle within the smoothing
// radius, read from a grid's 3x3 neighbourhood. Row 0 is the top of the
// viewport.
type DensityField struct {
	Downsample int // viewport units per sample
	W, H       int
	Values     []float32
}

// NewDensityField creates an empty field. downsample < 1 is treated as 1.
func NewDensityField(downsample int) *DensityField {
	if downsample < 1 {
		downsample = 1
	}
	return &DensityField{Downsample: downsample}
}

// Resize fits the field to the viewport. Returns true if the shape changed.
func (d *DensityField) Resize(vp Viewport) bool {
	w, h := 0, 0
	if !vp.Empty() {
		w = ceilDiv(vp.Width, float32(d.Downsample))
		h = ceilDiv(vp.Height, float32(d.Downsample))
	}
	if w == d.W && h == d.H && len(d.Values) == w*h {
		return false
	}
	d.W, d.H = w, h
	d.Values = make([]float32, w*h)
	return true
}

// SamplePoint returns the world position of sample (col, row).
func (d *DensityField) SamplePoint(col, row int, vp Viewport) (x, y float32) {
	hw, hh := vp.HalfExtents()
	s := float32(d.Downsample)
	return -hw + (float32(col)+0.5)*s, hh - (float32(row)+0.5)*s
}

// SampleRows fills rows [row0, row1) from grid g. Disjoint row ranges may be
// sampled concurrently. scratch is reused for neighbour indices and returned.
func (d *DensityField) SampleRows(g *Grid, vp Viewport, smoothingRadius float32, row0, row1 int, scratch []int) []int {
	var px, py float32
	var weight float32
	accumulate := func(entries []Entry) {
		here := components.Position{X: px, Y: py}
		for i := range entries {
			e := &entries[i]
			if length(px-e.Pos.X, py-e.Pos.Y) >= smoothingRadius {
				continue
			}
			fx, fy := Force(here, e.Pos, smoothingRadius, nil)
			weight += length(fx, fy)
		}
	}

	for row := row0; row < row1; row++ {
		for col := 0; col < d.W; col++ {
			px, py = d.SamplePoint(col, row, vp)
			weight = 0
			scratch = g.Neighbors(px, py, vp, scratch[:0])
			for _, idx := range scratch {
				g.ReadCell(idx, accumulate)
			}
			d.Values[row*d.W+col] = weight
		}
	}
	return scratch
}

// Sample fills the whole field from grid g on the calling goroutine.
func (d *DensityField) Sample(g *Grid, vp Viewport, smoothingRadius float32) {
	d.Resize(vp)
	d.SampleRows(g, vp, smoothingRadius, 0, d.H, nil)
}

// At returns the sample at (col, row).
func (d *DensityField) At(col, row int) float32 {
	return d.Values[row*d.W+col]
}

// Max returns the largest sample.
func (d *DensityField) Max() float32 {
	var m float32
	for _, v := range d.Values {
		if v > m {
			m = v
		}
	}
	return m
}

// DensityRamp maps a density weight to the red-orange-yellow-white ramp:
// the weight saturates red first, then spills into green, then blue.
func DensityRamp(weight float32) (r, g, b uint8) {
	return rampChannel(weight), rampChannel(weight / 255), rampChannel(weight / (255 * 255))
}

func rampChannel(v float32) uint8 {
	if !(v > 0) {
		return 0
	}
	return uint8(math.Min(float64(v), 255))
}
