package systems

// DoubleBuffer holds the read and write grids. During a frame the write grid
// is populated for the next frame while the read grid, filled on the previous
// frame, is only read. Swap is the single hand-off point between them.
type DoubleBuffer struct {
	read  *Grid
	write *Grid
}

// NewDoubleBuffer creates two empty grids for the given smoothing radius.
func NewDoubleBuffer(smoothingRadius float32) *DoubleBuffer {
	return &DoubleBuffer{
		read:  NewGrid(smoothingRadius),
		write: NewGrid(smoothingRadius),
	}
}

// Read returns the grid filled on the previous frame.
func (b *DoubleBuffer) Read() *Grid {
	return b.read
}

// Write returns the grid being filled for the next frame.
func (b *DoubleBuffer) Write() *Grid {
	return b.write
}

// Swap exchanges the read and write grids. Must only be called once every
// reader of the current read grid has finished.
func (b *DoubleBuffer) Swap() {
	b.read, b.write = b.write, b.read
}

// Dims returns the dimensions shared by both grids.
func (b *DoubleBuffer) Dims() (dimX, dimY int) {
	return b.write.Dims()
}

// Resize reallocates both grids so they stay the same shape across swaps.
func (b *DoubleBuffer) Resize(dimX, dimY int) {
	b.read.Resize(dimX, dimY)
	b.write.Resize(dimX, dimY)
}
