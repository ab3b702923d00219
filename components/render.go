package components

// ParticleRef links a render-side entity to its slot in the particle store.
type ParticleRef struct {
	Index int32
}

// Tint is the display colour assigned to a particle entity each frame.
type Tint struct {
	R, G, B, A uint8
}
