package game

import (
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// handleInput processes keyboard input. ESC is raylib's exit key and is
// handled by WindowShouldClose.
func (g *Game) handleInput() {
	// Window resize propagation
	g.handleResize()

	// Fullscreen toggle
	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	if rl.IsKeyPressed(rl.KeySpace) {
		g.paused = !g.paused
	}

	// Steps-per-update control with < > keys (comma and period)
	if rl.IsKeyPressed(rl.KeyComma) && g.stepsPerUpdate > 1 {
		g.stepsPerUpdate--
	}
	if rl.IsKeyPressed(rl.KeyPeriod) && g.stepsPerUpdate < 10 {
		g.stepsPerUpdate++
	}

	if rl.IsKeyPressed(rl.KeyG) {
		g.showDensity = !g.showDensity
	}
	if rl.IsKeyPressed(rl.KeyTab) {
		g.paramsPanel.Toggle()
	}
	if rl.IsKeyPressed(rl.KeyF3) {
		g.showPerf = !g.showPerf
	}

	if rl.IsKeyPressed(rl.KeyS) {
		strength := float32(g.cfg.Particles.Swirl)
		if strength <= 0 {
			strength = g.sim.Params().MaxVelocity / 2
		}
		g.stir(strength)
	}

	if rl.IsKeyPressed(rl.KeyR) {
		if err := g.resetSimulation(); err != nil {
			slog.Error("failed to reset simulation", "error", err)
		}
	}

	// Camera controls
	g.handleCameraInput()
}

// handleResize tracks the window size. The simulation viewport follows the
// screen one-to-one, so the frame driver resizes its grids on the next Step.
func (g *Game) handleResize() {
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	if w == g.viewport.Width && h == g.viewport.Height {
		return
	}
	g.viewport.Width = w
	g.viewport.Height = h

	g.camera.Resize(w, h)
	g.perfPanel.SetPosition(int32(w)-250, 10)
}

// handleCameraInput processes camera pan/zoom controls.
func (g *Game) handleCameraInput() {
	// Pan speed scales inversely with zoom for natural feel
	panSpeed := float32(8.0)

	if rl.IsKeyDown(rl.KeyRight) {
		g.camera.Pan(panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyLeft) {
		g.camera.Pan(-panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyDown) {
		g.camera.Pan(0, panSpeed)
	}
	if rl.IsKeyDown(rl.KeyUp) {
		g.camera.Pan(0, -panSpeed)
	}

	if wheelMove := rl.GetMouseWheelMove(); wheelMove != 0 {
		g.camera.ZoomBy(1 + wheelMove*0.1)
	}

	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		g.camera.ZoomBy(1.25)
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		g.camera.ZoomBy(0.8)
	}

	if rl.IsKeyPressed(rl.KeyHome) {
		g.camera.Reset()
	}
}
