package game

import (
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/fluid/telemetry"
	"github.com/pthm-cable/fluid/ui"
)

const controlsLegend = "[Space] pause  [</>] steps  [G] density  [Tab] params  [F3] perf  [S] stir  [R] reset  [Arrows/Wheel] camera  [Home] recentre"

// Draw renders the frame and closes the tick opened by Update.
func (g *Game) Draw() {
	g.perfCollector.RecordFrame()
	if g.tickOpen {
		g.perfCollector.StartPhase(telemetry.PhaseRender)
	}

	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)

	if g.showDensity {
		g.densityRenderer.Draw(g.camera, g.sim.Viewport())
	}

	g.drawParticles()
	g.drawBounds()

	gridW, gridH := g.sim.ReadGrid().Dims()
	g.hud.Draw(ui.HUDData{
		Title:         "Fluid",
		Particles:     g.sim.Store().Len(),
		Frame:         g.sim.Frame(),
		StepsPerFrame: g.stepsPerUpdate,
		FPS:           rl.GetFPS(),
		Paused:        g.paused,
		ShowDensity:   g.showDensity,
		GridW:         gridW,
		GridH:         gridH,
		Collisions:    g.lastStats.Collisions,
		NaNRecoveries: g.lastStats.NaNRecoveries,
	})

	g.drawParamsPanel()

	if g.showPerf {
		g.perfPanel.Draw(g.perfCollector.Stats())
	}

	g.hud.DrawControls(int32(rl.GetScreenHeight()), controlsLegend)

	rl.EndDrawing()

	if g.tickOpen {
		g.perfCollector.EndTick()
		g.tickOpen = false
	}
}

// drawParticles refreshes each entity's tint from its particle's speed and
// draws it.
func (g *Game) drawParticles() {
	store := g.sim.Store()
	n := store.Len()

	query := g.particleFilter.Query()
	for query.Next() {
		ref, tint := query.Get()
		i := int(ref.Index)
		if i >= n {
			continue
		}
		*tint = g.particleRenderer.Tint(store.Speed(i))
		g.particleRenderer.Draw(g.camera, store.At(i), *tint)
	}
}

// drawBounds outlines the simulation viewport.
func (g *Game) drawBounds() {
	hw, hh := g.sim.Viewport().HalfExtents()
	x0, y0 := g.camera.WorldToScreen(-hw, hh)
	x1, y1 := g.camera.WorldToScreen(hw, -hh)
	rl.DrawRectangleLinesEx(rl.Rectangle{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}, 1, rl.DarkGray)
}

// drawParamsPanel renders the slider panel and applies any edits.
func (g *Game) drawParamsPanel() {
	if !g.paramsPanel.IsVisible() {
		return
	}
	params, changed := g.paramsPanel.Draw(g.sim.Params())
	if !changed {
		return
	}
	if err := g.sim.SetParams(params); err != nil {
		slog.Warn("rejected parameter change", "error", err)
		return
	}
	g.particleRenderer.SetMaxSpeed(params.MaxVelocity)
}
