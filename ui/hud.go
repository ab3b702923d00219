package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/fluid/telemetry"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title         string
	Particles     int
	Frame         uint64
	StepsPerFrame int
	FPS           int32
	Paused        bool
	ShowDensity   bool
	GridW, GridH  int
	Collisions    int
	NaNRecoveries int
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
	}
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	rl.DrawText(data.Title, 10, 10, 20, rl.White)

	rl.DrawText(
		fmt.Sprintf("Particles: %d | Grid: %dx%d | Collisions: %d", data.Particles, data.GridW, data.GridH, data.Collisions),
		10, 35, 16, rl.LightGray,
	)

	rl.DrawText(
		fmt.Sprintf("Frame: %d | Steps: %dx | FPS: %d", data.Frame, data.StepsPerFrame, data.FPS),
		10, 55, 16, rl.LightGray,
	)

	y := int32(75)
	if data.Paused {
		rl.DrawText("PAUSED", 10, y, 16, rl.Yellow)
		y += 20
	}
	if data.ShowDensity {
		rl.DrawText("Density overlay", 10, y, 16, rl.SkyBlue)
		y += 20
	}
	if data.NaNRecoveries > 0 {
		rl.DrawText(fmt.Sprintf("NaN recoveries: %d", data.NaNRecoveries), 10, y, 16, rl.Red)
	}
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// PerfPanel renders the per-phase frame breakdown.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y, width int32) *PerfPanel {
	return &PerfPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

var perfPhases = []struct {
	id, label string
}{
	{telemetry.PhaseDistributing, "Distribute"},
	{telemetry.PhaseUpdating, "Update"},
	{telemetry.PhaseSwapping, "Swap"},
	{telemetry.PhaseDensity, "Density"},
	{telemetry.PhaseRender, "Render"},
}

// Draw renders the performance panel.
func (p *PerfPanel) Draw(stats telemetry.PerfStats) {
	r := p.renderer
	padding := r.Theme.Padding
	height := r.Theme.LineHeight*int32(len(perfPhases)+3) + padding*2

	r.DrawPanel(p.x, p.y, p.width, height)

	x := p.x + padding
	y := r.DrawSectionHeader(x, p.y+padding, "Frame Timing")
	y = r.DrawLabelValue(x, y, "Avg frame", stats.AvgTickDuration.Round(time.Microsecond).String())
	y = r.DrawLabelValue(x, y, "Max frame", stats.MaxTickDuration.Round(time.Microsecond).String())

	for _, ph := range perfPhases {
		y = r.DrawBar(x, y, ph.label, stats.PhasePct[ph.id], 50, p.width-padding*2)
	}
}
