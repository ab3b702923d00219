package systems

// Viewport is the visible simulation extent in world units.
// The world is centred on the origin: x spans [-Width/2, Width/2] and
// y spans [-Height/2, Height/2].
type Viewport struct {
	Width, Height float32
}

// Empty reports whether the viewport has no area. NaN dimensions count as empty.
func (v Viewport) Empty() bool {
	return !(v.Width > 0) || !(v.Height > 0)
}

// HalfExtents returns half the width and height.
func (v Viewport) HalfExtents() (hw, hh float32) {
	return v.Width / 2, v.Height / 2
}
