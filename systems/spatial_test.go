package systems

import (
	"math"
	"math/rand"
	"sync"
	"testing"

	"github.com/pthm-cable/fluid/components"
)

func newTestGrid(smoothing float32, vp Viewport) *Grid {
	g := NewGrid(smoothing)
	g.Resize(Dimensions(vp, g.CellSize()))
	return g
}

func TestDimensions(t *testing.T) {
	tests := []struct {
		name     string
		vp       Viewport
		cellSize float32
		wantX    int
		wantY    int
	}{
		{"exact fit", Viewport{Width: 100, Height: 50}, 10, 10, 5},
		{"rounds up", Viewport{Width: 101, Height: 49}, 10, 11, 5},
		{"smaller than a cell", Viewport{Width: 3, Height: 3}, 10, 1, 1},
		{"zero width", Viewport{Width: 0, Height: 50}, 10, 0, 0},
		{"zero height", Viewport{Width: 100, Height: 0}, 10, 0, 0},
		{"negative", Viewport{Width: -5, Height: 50}, 10, 0, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			x, y := Dimensions(tc.vp, tc.cellSize)
			if x != tc.wantX || y != tc.wantY {
				t.Errorf("Dimensions = (%d, %d), want (%d, %d)", x, y, tc.wantX, tc.wantY)
			}
		})
	}
}

func TestChunkCoordinates_Clamped(t *testing.T) {
	vp := Viewport{Width: 100, Height: 60}
	g := newTestGrid(5, vp) // cell size 10 -> 10x6

	tests := []struct {
		name   string
		x, y   float32
		cx, cy int
	}{
		{"bottom-left corner", -50, -30, 0, 0},
		{"centre", 0, 0, 5, 3},
		{"exactly on right edge", 50, 0, 9, 3},
		{"exactly on top edge", 0, 30, 5, 5},
		{"far outside negative", -1e6, -1e6, 0, 0},
		{"far outside positive", 1e6, 1e6, 9, 5},
		{"infinite", float32(math.Inf(1)), float32(math.Inf(-1)), 9, 0},
		{"NaN", float32(math.NaN()), float32(math.NaN()), 0, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cx, cy := g.ChunkCoordinates(tc.x, tc.y, vp)
			if cx != tc.cx || cy != tc.cy {
				t.Errorf("ChunkCoordinates(%v, %v) = (%d, %d), want (%d, %d)", tc.x, tc.y, cx, cy, tc.cx, tc.cy)
			}
		})
	}
}

func TestResize_Idempotent(t *testing.T) {
	vp := Viewport{Width: 80, Height: 40}
	g := newTestGrid(5, vp)
	g.Distribute([]components.Particle{
		{Pos: components.Position{X: 1, Y: 1}, Radius: 1},
		{Pos: components.Position{X: -20, Y: 10}, Radius: 1},
	}, vp)
	if gridLen(g) != 2 {
		t.Fatalf("expected 2 entries before resize, got %d", gridLen(g))
	}

	for i := 0; i < 2; i++ {
		g.Resize(8, 4)
		x, y := g.Dims()
		if x != 8 || y != 4 {
			t.Fatalf("resize %d: dims = (%d, %d), want (8, 4)", i, x, y)
		}
		if g.NumCells() != 32 {
			t.Fatalf("resize %d: %d cells, want 32", i, g.NumCells())
		}
		if gridLen(g) != 0 {
			t.Errorf("resize %d: %d entries retained, want 0", i, gridLen(g))
		}
	}
}

func TestClear_KeepsShape(t *testing.T) {
	vp := Viewport{Width: 80, Height: 40}
	g := newTestGrid(5, vp)
	g.Distribute(Lattice(30, 1, 3, 0, nil), vp)

	g.Clear()

	if gridLen(g) != 0 {
		t.Errorf("expected empty grid after Clear, got %d entries", gridLen(g))
	}
	x, y := g.Dims()
	if x != 8 || y != 4 {
		t.Errorf("Clear changed dims to (%d, %d)", x, y)
	}
}

func TestDistribute_Snapshots(t *testing.T) {
	vp := Viewport{Width: 100, Height: 100}
	g := newTestGrid(5, vp)
	particles := []components.Particle{
		{Pos: components.Position{X: 3, Y: 4}, Vel: components.Velocity{X: 1, Y: 2}, Radius: 2},
	}
	g.Distribute(particles, vp)

	// Mutating live state must not reach the grid.
	particles[0].Pos.X = 40
	particles[0].Vel.X = -9

	cx, cy := g.ChunkCoordinates(3, 4, vp)
	idx := cy*10 + cx
	found := false
	g.ReadCell(idx, func(entries []Entry) {
		for _, e := range entries {
			if e.ID == 0 {
				found = true
				if e.Pos.X != 3 || e.Vel.X != 1 || e.Radius != 2 {
					t.Errorf("snapshot changed: %+v", e)
				}
			}
		}
	})
	if !found {
		t.Fatal("particle 0 not found in its cell")
	}
	if n := g.CellLen(idx); n != 1 {
		t.Errorf("CellLen(%d) = %d, want 1", idx, n)
	}
}

func TestPeakCellLen(t *testing.T) {
	vp := Viewport{Width: 100, Height: 100}
	g := newTestGrid(5, vp)
	if got := g.PeakCellLen(); got != 0 {
		t.Fatalf("empty grid peak = %d", got)
	}

	particles := []components.Particle{
		{Pos: components.Position{X: 1, Y: 1}},
		{Pos: components.Position{X: 2, Y: 2}},
		{Pos: components.Position{X: 3, Y: 1}},
		{Pos: components.Position{X: -40, Y: 40}},
	}
	g.Distribute(particles, vp)
	if got := g.PeakCellLen(); got != 3 {
		t.Errorf("PeakCellLen = %d, want 3", got)
	}
	if got := gridLen(g); got != len(particles) {
		t.Errorf("grid holds %d entries, want %d", got, len(particles))
	}
}

// gridLen sums CellLen over every cell.
func gridLen(g *Grid) int {
	n := 0
	for i := range g.cells {
		n += g.CellLen(i)
	}
	return n
}

func TestInsert_ConcurrentWriters(t *testing.T) {
	vp := Viewport{Width: 200, Height: 200}
	g := newTestGrid(10, vp)
	rng := rand.New(rand.NewSource(3))

	particles := make([]components.Particle, 4000)
	for i := range particles {
		particles[i].Pos = components.Position{
			X: (rng.Float32() - 0.5) * 200,
			Y: (rng.Float32() - 0.5) * 200,
		}
	}

	var wg sync.WaitGroup
	const workers = 8
	chunk := len(particles) / workers
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(start int) {
			defer wg.Done()
			g.DistributeRange(particles, start, start+chunk, vp)
		}(w * chunk)
	}
	wg.Wait()

	if gridLen(g) != len(particles) {
		t.Errorf("grid holds %d entries, want %d", gridLen(g), len(particles))
	}
}

func TestReadCell_PanicsOutOfRange(t *testing.T) {
	g := newTestGrid(5, Viewport{Width: 20, Height: 20})
	defer func() {
		if recover() == nil {
			t.Error("expected panic for out-of-range cell")
		}
	}()
	g.ReadCell(g.NumCells(), func([]Entry) {})
}

func TestNeighbors_CountsAtEdges(t *testing.T) {
	vp := Viewport{Width: 100, Height: 100}
	g := newTestGrid(5, vp) // 10x10

	tests := []struct {
		name string
		x, y float32
		want int
	}{
		{"interior", 0, 0, 9},
		{"corner", -49, -49, 4},
		{"opposite corner", 49, 49, 4},
		{"edge", 0, -49, 6},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := g.Neighbors(tc.x, tc.y, vp, nil)
			if len(got) != tc.want {
				t.Errorf("Neighbors returned %d cells, want %d", len(got), tc.want)
			}
			seen := make(map[int]bool)
			for _, idx := range got {
				if idx < 0 || idx >= g.NumCells() {
					t.Errorf("index %d out of range", idx)
				}
				if seen[idx] {
					t.Errorf("index %d returned twice", idx)
				}
				seen[idx] = true
			}
		})
	}
}

func TestNeighbors_EmptyGrid(t *testing.T) {
	g := NewGrid(5)
	if got := g.Neighbors(0, 0, Viewport{Width: 10, Height: 10}, nil); len(got) != 0 {
		t.Errorf("expected no neighbours on unsized grid, got %v", got)
	}
}

// TestNeighbors_Completeness checks that any two particles within the
// smoothing radius find each other through the 3x3 query.
func TestNeighbors_Completeness(t *testing.T) {
	const smoothing = 7
	vp := Viewport{Width: 300, Height: 200}
	g := newTestGrid(smoothing, vp)
	rng := rand.New(rand.NewSource(11))

	particles := make([]components.Particle, 1500)
	for i := range particles {
		particles[i] = components.Particle{
			Pos: components.Position{
				X: (rng.Float32() - 0.5) * vp.Width,
				Y: (rng.Float32() - 0.5) * vp.Height,
			},
			Radius: 1,
		}
	}
	g.Distribute(particles, vp)

	found := func(i, j int) bool {
		p := particles[i]
		ok := false
		for _, idx := range g.Neighbors(p.Pos.X, p.Pos.Y, vp, nil) {
			g.ReadCell(idx, func(entries []Entry) {
				for _, e := range entries {
					if int(e.ID) == j {
						ok = true
					}
				}
			})
		}
		return ok
	}

	pairs := 0
	for i := range particles {
		for j := i + 1; j < len(particles); j++ {
			dx := particles[i].Pos.X - particles[j].Pos.X
			dy := particles[i].Pos.Y - particles[j].Pos.Y
			if length(dx, dy) > smoothing {
				continue
			}
			pairs++
			if !found(i, j) || !found(j, i) {
				t.Fatalf("particles %d and %d within radius but not mutual neighbours", i, j)
			}
		}
	}
	if pairs == 0 {
		t.Fatal("test setup produced no close pairs")
	}
}

func TestDoubleBuffer_SwapNeverAliases(t *testing.T) {
	b := NewDoubleBuffer(5)
	b.Resize(4, 4)

	r0, w0 := b.Read(), b.Write()
	if r0 == w0 {
		t.Fatal("read and write grids alias")
	}

	b.Swap()
	if b.Read() != w0 || b.Write() != r0 {
		t.Error("Swap did not exchange grids")
	}
	if b.Read() == b.Write() {
		t.Error("read and write grids alias after swap")
	}

	x, y := b.Read().Dims()
	if x != 4 || y != 4 {
		t.Errorf("read grid dims = (%d, %d) after swap, want (4, 4)", x, y)
	}
}

func BenchmarkDistribute(b *testing.B) {
	vp := Viewport{Width: 1280, Height: 720}
	g := newTestGrid(12, vp)
	particles := Lattice(5000, 5, 9, 0.5, rand.New(rand.NewSource(1)))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		g.Clear()
		g.Distribute(particles, vp)
	}
}
