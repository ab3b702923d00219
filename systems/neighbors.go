package systems

// neighborOffsets covers the 3x3 block around a cell.
var neighborOffsets = [9][2]int{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {0, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

// Neighbors appends to dst the flat indices of the 3x3 block of cells
// centred on the cell containing (x, y) and returns the extended slice.
// Offsets outside the grid are skipped, so edge and corner cells yield
// fewer than nine. Reuse dst across calls to avoid allocations.
func (g *Grid) Neighbors(x, y float32, vp Viewport, dst []int) []int {
	if len(g.cells) == 0 {
		return dst
	}
	cx, cy := g.ChunkCoordinates(x, y, vp)
	for _, off := range neighborOffsets {
		nx, ny := cx+off[0], cy+off[1]
		if nx < 0 || nx >= g.dimX || ny < 0 || ny >= g.dimY {
			continue
		}
		dst = append(dst, ny*g.dimX+nx)
	}
	return dst
}
