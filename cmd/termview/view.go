package main

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/fluid/palette"
	"github.com/pthm-cable/fluid/simulation"
	"github.com/pthm-cable/fluid/systems"
)

// halfBlock draws two vertically stacked samples in one terminal cell.
const halfBlock = '▀'

// viewportFor maps a terminal of cols x rows cells to a world viewport where
// each cell covers scale units across and 2*scale units down. The status line
// is excluded.
func viewportFor(cols, rows int, scale float32) systems.Viewport {
	rows-- // status line
	if cols < 1 || rows < 1 {
		return systems.Viewport{}
	}
	return systems.Viewport{
		Width:  float32(cols) * scale,
		Height: float32(rows) * 2 * scale,
	}
}

// view draws the density field of a simulation into a tcell screen.
type view struct {
	screen tcell.Screen
	ramp   *palette.Ramp
	field  *systems.DensityField
	gain   float32

	// Running peak so brightness does not flicker frame to frame
	peak float32
}

func newView(screen tcell.Screen, ramp *palette.Ramp, scale int, gain float32) *view {
	return &view{
		screen: screen,
		ramp:   ramp,
		field:  systems.NewDensityField(scale),
		gain:   gain,
	}
}

// color returns the terminal colour for a density sample.
func (v *view) color(weight float32) tcell.Color {
	var t float32
	if v.peak > 0 {
		t = weight * v.gain / v.peak
	}
	c := v.ramp.At(t)
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

// draw samples sim and renders the field plus a status line.
func (v *view) draw(sim *simulation.Simulation, stats simulation.FrameStats, paused bool) {
	sim.SampleDensity(v.field)

	if m := v.field.Max(); m > 0 {
		// Decay slowly toward the current maximum.
		target := m * v.gain
		if target > v.peak {
			v.peak = target
		} else {
			v.peak += (target - v.peak) * 0.05
		}
	}

	cols, rows := v.screen.Size()
	for y := 0; y < rows-1; y++ {
		top, bottom := 2*y, 2*y+1
		for x := 0; x < cols; x++ {
			if x >= v.field.W || bottom >= v.field.H {
				v.screen.SetContent(x, y, ' ', nil, tcell.StyleDefault)
				continue
			}
			style := tcell.StyleDefault.
				Foreground(v.color(v.field.At(x, top))).
				Background(v.color(v.field.At(x, bottom)))
			v.screen.SetContent(x, y, halfBlock, nil, style)
		}
	}

	status := fmt.Sprintf(" frame %d  particles %d  collisions %d  [space] pause  [r] reset  [q] quit",
		sim.Frame(), sim.Store().Len(), stats.Collisions)
	if paused {
		status += "  PAUSED"
	}
	v.drawStatus(rows-1, cols, status)

	v.screen.Show()
}

// drawStatus writes text on row y, padding the rest of the line.
func (v *view) drawStatus(y, cols int, text string) {
	style := tcell.StyleDefault.Reverse(true)
	runes := []rune(text)
	for x := 0; x < cols; x++ {
		r := ' '
		if x < len(runes) {
			r = runes[x]
		}
		v.screen.SetContent(x, y, r, nil, style)
	}
}
