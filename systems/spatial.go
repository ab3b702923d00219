// Package systems provides the particle simulation kernels: the chunk grid,
// neighbour queries, dispersion force, collisions and boundary handling.
package systems

import (
	"fmt"
	"math"
	"sync"

	"github.com/pthm-cable/fluid/components"
)

// Entry is a snapshot of a particle taken while distributing into a grid.
// Readers of a previous frame's grid see these copies, never live state.
type Entry struct {
	ID     int32
	Pos    components.Position
	Vel    components.Velocity
	Radius float32
}

// cell is one chunk of the grid. Writers take the write lock while
// distributing; any number of readers may hold the read lock.
type cell struct {
	mu      sync.RWMutex
	entries []Entry
}

// Grid partitions the viewport into square cells of twice the smoothing
// radius, so a 3x3 block always covers the interaction radius of any point
// in the centre cell.
type Grid struct {
	cellSize float32
	dimX     int
	dimY     int
	cells    []cell // flat, row-major
}

// NewGrid creates an empty grid for the given smoothing radius.
// Call Resize before inserting.
func NewGrid(smoothingRadius float32) *Grid {
	return &Grid{cellSize: 2 * smoothingRadius}
}

// Dimensions returns the cell counts needed to cover the viewport.
// Returns (0, 0) for an empty viewport.
func Dimensions(vp Viewport, cellSize float32) (dimX, dimY int) {
	if vp.Empty() || !(cellSize > 0) {
		return 0, 0
	}
	return ceilDiv(vp.Width, cellSize), ceilDiv(vp.Height, cellSize)
}

// CellSize returns the edge length of one cell.
func (g *Grid) CellSize() float32 {
	return g.cellSize
}

// Dims returns the current cell counts.
func (g *Grid) Dims() (dimX, dimY int) {
	return g.dimX, g.dimY
}

// NumCells returns the number of cells.
func (g *Grid) NumCells() int {
	return len(g.cells)
}

// Resize reallocates every cell empty. Always reallocates, even when the
// dimensions are unchanged; use Clear for the per-frame reset.
func (g *Grid) Resize(dimX, dimY int) {
	if dimX < 0 || dimY < 0 {
		panic(fmt.Sprintf("systems: negative grid dimensions %dx%d", dimX, dimY))
	}
	g.dimX = dimX
	g.dimY = dimY
	g.cells = make([]cell, dimX*dimY)
	for i := range g.cells {
		g.cells[i].entries = make([]Entry, 0, 8)
	}
}

// Clear empties every cell without releasing its backing storage.
func (g *Grid) Clear() {
	for i := range g.cells {
		c := &g.cells[i]
		c.mu.Lock()
		c.entries = c.entries[:0]
		c.mu.Unlock()
	}
}

// ChunkCoordinates maps a world position to its cell, clamped to the grid.
// The clamp is required: positions on or past the edge (rounding, or a
// particle not yet pushed back by the boundary) would otherwise index out
// of range.
func (g *Grid) ChunkCoordinates(x, y float32, vp Viewport) (cx, cy int) {
	hw, hh := vp.HalfExtents()
	cx = floorToInt((x + hw) / g.cellSize)
	cy = floorToInt((y + hh) / g.cellSize)
	return clampInt(cx, 0, g.dimX-1), clampInt(cy, 0, g.dimY-1)
}

// floorToInt floors f, mapping NaN to 0 and saturating infinities.
func floorToInt(f float32) int {
	v := math.Floor(float64(f))
	switch {
	case math.IsNaN(v):
		return 0
	case v > math.MaxInt32:
		return math.MaxInt32
	case v < math.MinInt32:
		return math.MinInt32
	}
	return int(v)
}

// index returns the flat cell index. Out-of-range coordinates are a logic
// error; ChunkCoordinates makes them impossible.
func (g *Grid) index(cx, cy int) int {
	if cx < 0 || cx >= g.dimX || cy < 0 || cy >= g.dimY {
		panic(fmt.Sprintf("systems: cell (%d,%d) outside %dx%d grid", cx, cy, g.dimX, g.dimY))
	}
	return cy*g.dimX + cx
}

// Insert appends a snapshot to the cell containing its position.
// Safe for concurrent use: writers serialise per cell.
func (g *Grid) Insert(e Entry, vp Viewport) {
	cx, cy := g.ChunkCoordinates(e.Pos.X, e.Pos.Y, vp)
	c := &g.cells[g.index(cx, cy)]
	c.mu.Lock()
	c.entries = append(c.entries, e)
	c.mu.Unlock()
}

// Distribute inserts a snapshot of every particle, using its slice index
// as the ID.
func (g *Grid) Distribute(particles []components.Particle, vp Viewport) {
	g.DistributeRange(particles, 0, len(particles), vp)
}

// DistributeRange inserts particles[start:end]. Ranges may run concurrently.
func (g *Grid) DistributeRange(particles []components.Particle, start, end int, vp Viewport) {
	for i := start; i < end; i++ {
		p := &particles[i]
		g.Insert(Entry{ID: int32(i), Pos: p.Pos, Vel: p.Vel, Radius: p.Radius}, vp)
	}
}

// ReadCell calls fn with the entries of cell idx while holding its read lock.
// fn must not retain the slice.
func (g *Grid) ReadCell(idx int, fn func(entries []Entry)) {
	if idx < 0 || idx >= len(g.cells) {
		panic(fmt.Sprintf("systems: cell index %d outside grid of %d cells", idx, len(g.cells)))
	}
	c := &g.cells[idx]
	c.mu.RLock()
	fn(c.entries)
	c.mu.RUnlock()
}

// CellLen returns the number of entries in cell idx.
func (g *Grid) CellLen(idx int) int {
	c := &g.cells[idx]
	c.mu.RLock()
	n := len(c.entries)
	c.mu.RUnlock()
	return n
}

// PeakCellLen returns the largest number of entries held by one cell.
func (g *Grid) PeakCellLen() int {
	peak := 0
	for i := range g.cells {
		peak = max(peak, g.CellLen(i))
	}
	return peak
}
