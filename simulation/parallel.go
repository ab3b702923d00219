package simulation

import (
	"math"
	"math/rand"
	"runtime"
	"sync"

	"github.com/pthm-cable/fluid/components"
	"github.com/pthm-cable/fluid/systems"
)

// job selects what a work chunk computes.
type job uint8

const (
	jobDistribute job = iota
	jobUpdate
	jobDensity
)

// frameCounts accumulates per-worker diagnostics for one frame.
type frameCounts struct {
	collisions     int
	boundaryHits   int
	nanRecoveries  int
	neighborChecks int
}

// workerScratch holds per-worker reusable buffers and the state of the
// particle currently being updated. Only its owning worker touches it.
type workerScratch struct {
	neighbors []int
	rng       *rand.Rand
	fallback  systems.FallbackDirection
	visit     func([]systems.Entry)

	cur              *components.Particle
	curID            int32
	fx, fy           float32
	smoothingRadius  float32
	collisionEpsilon float32

	counts frameCounts
}

func newWorkerScratch(seed int64) *workerScratch {
	sc := &workerScratch{
		neighbors: make([]int, 0, 9),
		rng:       rand.New(rand.NewSource(seed)),
	}
	sc.fallback = sc.randomDirection
	sc.visit = sc.visitCell
	return sc
}

// randomDirection returns a uniformly random unit vector.
func (sc *workerScratch) randomDirection() (float32, float32) {
	a := sc.rng.Float64() * 2 * math.Pi
	return float32(math.Cos(a)), float32(math.Sin(a))
}

// visitCell accumulates force from, and resolves collisions against, every
// snapshot in one neighbouring cell.
func (sc *workerScratch) visitCell(entries []systems.Entry) {
	p := sc.cur
	for k := range entries {
		e := &entries[k]
		if e.ID == sc.curID {
			continue
		}
		sc.counts.neighborChecks++

		fx, fy := systems.Force(p.Pos, e.Pos, sc.smoothingRadius, sc.fallback)
		sc.fx += fx
		sc.fy += fy

		if systems.ResolveCollision(p, e, sc.collisionEpsilon) {
			sc.counts.collisions++
		}
	}
}

// workChunk represents a range of items for a worker to process.
type workChunk struct {
	start, end int
	job        job
}

// parallelState holds the persistent worker pool.
type parallelState struct {
	scratches  []*workerScratch
	numWorkers int

	workChan chan workChunk // sends work to workers
	doneChan chan struct{}  // workers signal completion
	stopChan chan struct{}  // signals workers to exit
	wg       sync.WaitGroup // tracks active workers
	running  bool
}

func newParallelState(workers int, seed int64) *parallelState {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	scratches := make([]*workerScratch, workers)
	for i := range scratches {
		scratches[i] = newWorkerScratch(seed + int64(i)*7919)
	}
	return &parallelState{
		numWorkers: workers,
		scratches:  scratches,
	}
}

// startWorkers launches persistent worker goroutines.
func (p *parallelState) startWorkers(s *Simulation) {
	if p.running {
		return
	}

	p.workChan = make(chan workChunk, p.numWorkers)
	p.doneChan = make(chan struct{}, p.numWorkers)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(s, i)
	}
}

// stopWorkers signals all workers to exit and waits for them.
func (p *parallelState) stopWorkers() {
	if !p.running {
		return
	}

	close(p.stopChan)
	p.wg.Wait()
	close(p.workChan)
	close(p.doneChan)
	p.running = false
}

// worker runs in a goroutine, processing chunks until stopped.
func (p *parallelState) worker(s *Simulation, workerID int) {
	defer p.wg.Done()
	scratch := p.scratches[workerID]

	for {
		select {
		case <-p.stopChan:
			return
		case chunk, ok := <-p.workChan:
			if !ok {
				return
			}
			s.runChunk(chunk, scratch)
			p.doneChan <- struct{}{}
		}
	}
}

// resetCounts zeroes every worker's frame counters.
func (p *parallelState) resetCounts() {
	for _, sc := range p.scratches {
		sc.counts = frameCounts{}
	}
}

// sumCounts totals the frame counters across workers.
func (p *parallelState) sumCounts() frameCounts {
	var total frameCounts
	for _, sc := range p.scratches {
		total.collisions += sc.counts.collisions
		total.boundaryHits += sc.counts.boundaryHits
		total.nanRecoveries += sc.counts.nanRecoveries
		total.neighborChecks += sc.counts.neighborChecks
	}
	return total
}

// dispatch runs job over [0, n) and returns once every chunk is done, which
// is the barrier between phases. Below minParallel items the work stays on
// the calling goroutine.
func (s *Simulation) dispatch(n int, j job, minParallel int) {
	if n == 0 {
		return
	}
	p := s.parallel
	if n < minParallel || p.numWorkers == 1 {
		s.runChunk(workChunk{start: 0, end: n, job: j}, p.scratches[0])
		return
	}

	if !p.running {
		p.startWorkers(s)
	}

	chunkSize := (n + p.numWorkers - 1) / p.numWorkers

	chunksDispatched := 0
	for w := 0; w < p.numWorkers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if end > n {
			end = n
		}
		if start >= end {
			continue
		}

		p.workChan <- workChunk{start: start, end: end, job: j}
		chunksDispatched++
	}

	for i := 0; i < chunksDispatched; i++ {
		<-p.doneChan
	}
}

// runChunk executes one chunk of work on the given scratch.
func (s *Simulation) runChunk(c workChunk, sc *workerScratch) {
	switch c.job {
	case jobDistribute:
		s.buffers.Write().DistributeRange(s.store.All(), c.start, c.end, s.viewport)
	case jobUpdate:
		s.updateRange(c.start, c.end, sc)
	case jobDensity:
		sc.neighbors = s.densityTarget.SampleRows(s.buffers.Read(), s.viewport, s.params.SmoothingRadius, c.start, c.end, sc.neighbors)
	}
}
