// Package palette turns scalar values into colours using precomputed
// colorgrad gradients.
package palette

import (
	"fmt"
	"image/color"
	"sort"

	"github.com/mazznoer/colorgrad"
)

var presets = map[string]func() colorgrad.Gradient{
	"viridis": colorgrad.Viridis,
	"inferno": colorgrad.Inferno,
	"magma":   colorgrad.Magma,
	"plasma":  colorgrad.Plasma,
	"turbo":   colorgrad.Turbo,
	"cividis": colorgrad.Cividis,
}

// Names returns the available preset names in sorted order.
func Names() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Ramp is a gradient sampled into a fixed lookup table.
type Ramp struct {
	colors []color.RGBA
}

// New samples the named preset into n steps.
func New(name string, n int) (*Ramp, error) {
	preset, ok := presets[name]
	if !ok {
		return nil, fmt.Errorf("unknown palette %q (have %v)", name, Names())
	}
	if n < 2 {
		n = 2
	}

	grad := preset()
	r := &Ramp{colors: make([]color.RGBA, 0, n)}
	for _, c := range grad.Colors(uint(n)) {
		cr, cg, cb, ca := c.RGBA()
		r.colors = append(r.colors, color.RGBA{
			R: uint8(cr >> 8),
			G: uint8(cg >> 8),
			B: uint8(cb >> 8),
			A: uint8(ca >> 8),
		})
	}
	return r, nil
}

// MustNew is like New but panics on an unknown name.
func MustNew(name string, n int) *Ramp {
	r, err := New(name, n)
	if err != nil {
		panic(err)
	}
	return r
}

// Len returns the number of steps in the table.
func (r *Ramp) Len() int {
	return len(r.colors)
}

// At returns the colour for t in [0, 1]. Values outside the range, and NaN,
// clamp to the ends.
func (r *Ramp) At(t float32) color.RGBA {
	if !(t > 0) {
		return r.colors[0]
	}
	if t >= 1 {
		return r.colors[len(r.colors)-1]
	}
	return r.colors[int(t*float32(len(r.colors)-1)+0.5)]
}
