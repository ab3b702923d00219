package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/fluid/simulation"
)

// slider describes one tunable parameter.
type slider struct {
	label    string
	min, max float32
	format   string
	field    func(*simulation.Params) *float32
}

var paramSliders = []slider{
	{"Smoothing radius", 2, 40, "%.1f", func(p *simulation.Params) *float32 { return &p.SmoothingRadius }},
	{"Force scale", 0, 40, "%.1f", func(p *simulation.Params) *float32 { return &p.ForceScale }},
	{"Max velocity", 10, 1500, "%.0f", func(p *simulation.Params) *float32 { return &p.MaxVelocity }},
	{"Wall damping", 0, 0.99, "%.2f", func(p *simulation.Params) *float32 { return &p.DampingFactor }},
}

// ParamsPanel renders sliders for the live simulation parameters.
type ParamsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	visible  bool
}

// NewParamsPanel creates a new parameter panel.
func NewParamsPanel(x, y, width int32) *ParamsPanel {
	return &ParamsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the panel position.
func (c *ParamsPanel) SetPosition(x, y int32) {
	c.x = x
	c.y = y
}

// IsVisible returns whether the panel is shown.
func (c *ParamsPanel) IsVisible() bool {
	return c.visible
}

// Toggle switches panel visibility.
func (c *ParamsPanel) Toggle() bool {
	c.visible = !c.visible
	return c.visible
}

// Draw renders the sliders and returns the edited parameters, with changed
// set when any slider moved this frame.
func (c *ParamsPanel) Draw(p simulation.Params) (out simulation.Params, changed bool) {
	out = p
	if !c.visible {
		return out, false
	}

	r := c.renderer
	padding := r.Theme.Padding
	rowHeight := int32(40)
	height := rowHeight*int32(len(paramSliders)) + r.Theme.LineHeight + padding*2

	r.DrawPanel(c.x, c.y, c.width, height)
	y := r.DrawSectionHeader(c.x+padding, c.y+padding, "Parameters")

	sliderW := float32(c.width - padding*2 - 60)
	for _, s := range paramSliders {
		v := s.field(&out)

		rl.DrawText(s.label, c.x+padding, y, r.Theme.FontSize, r.Theme.LabelColor)
		next := gui.SliderBar(
			rl.Rectangle{X: float32(c.x + padding), Y: float32(y + 14), Width: sliderW, Height: 16},
			"", "",
			*v, s.min, s.max,
		)
		rl.DrawText(fmt.Sprintf(s.format, next), c.x+padding+int32(sliderW)+8, y+16, r.Theme.FontSize, r.Theme.ValueColor)

		if next != *v {
			*v = next
			changed = true
		}
		y += rowHeight
	}

	return out, changed
}
