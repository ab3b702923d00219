package renderer

import (
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/fluid/camera"
	"github.com/pthm-cable/fluid/systems"
)

// DensityRenderer uploads a sampled density field to a texture and draws it
// stretched over the simulation viewport.
type DensityRenderer struct {
	tex        rl.Texture2D
	texW, texH int
	pixels     []color.RGBA
	gain       float32

	initialized bool
}

// NewDensityRenderer creates a density renderer. gain scales weights before
// the colour ramp.
func NewDensityRenderer(gain float32) *DensityRenderer {
	return &DensityRenderer{gain: gain}
}

// SetGain changes the weight multiplier.
func (r *DensityRenderer) SetGain(g float32) {
	r.gain = g
}

// init (re)creates the texture at the field's size. Must be called after
// the raylib window is created.
func (r *DensityRenderer) init(w, h int) {
	if r.initialized {
		rl.UnloadTexture(r.tex)
	}

	r.texW = w
	r.texH = h
	r.pixels = make([]color.RGBA, w*h)

	img := rl.GenImageColor(w, h, rl.Black)
	r.tex = rl.LoadTextureFromImage(img)
	rl.SetTextureFilter(r.tex, rl.FilterBilinear)
	rl.UnloadImage(img)

	r.initialized = true
}

// Update converts the field to pixels and uploads them.
func (r *DensityRenderer) Update(field *systems.DensityField) {
	if field.W == 0 || field.H == 0 {
		return
	}
	if !r.initialized || field.W != r.texW || field.H != r.texH {
		r.init(field.W, field.H)
	}

	for i, w := range field.Values {
		cr, cg, cb := systems.DensityRamp(w * r.gain)
		r.pixels[i] = color.RGBA{R: cr, G: cg, B: cb, A: 255}
	}
	rl.UpdateTexture(r.tex, r.pixels)
}

// Draw renders the texture over the world rectangle of the viewport.
func (r *DensityRenderer) Draw(cam *camera.Camera, vp systems.Viewport) {
	if !r.initialized {
		return
	}

	hw, hh := vp.HalfExtents()
	x0, y0 := cam.WorldToScreen(-hw, hh)
	x1, y1 := cam.WorldToScreen(hw, -hh)

	src := rl.Rectangle{X: 0, Y: 0, Width: float32(r.texW), Height: float32(r.texH)}
	dst := rl.Rectangle{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
	rl.DrawTexturePro(r.tex, src, dst, rl.Vector2{}, 0, rl.White)
}

// Unload frees GPU resources.
func (r *DensityRenderer) Unload() {
	if !r.initialized {
		return
	}
	rl.UnloadTexture(r.tex)
	r.initialized = false
}
