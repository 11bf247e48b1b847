package meshing

import (
	"context"
	"errors"
	"sync"

	"voxterrain/internal/voxel"
)

// ErrPoolClosed is reported for jobs that could not run because the pool shut down.
var ErrPoolClosed = errors.New("meshing: worker pool closed")

// MeshJob represents a meshing job request
type MeshJob struct {
	Coord   voxel.Vec3i
	Request *Request
	// Result channel - will be sent the result when done
	ResultChan chan MeshResult
}

// MeshResult contains the result of a meshing operation
type MeshResult struct {
	Coord voxel.Vec3i
	Mesh  *Mesh
	Stats BuildStats
	Error error
}

// WorkerPool manages goroutines for mesh generation. Workers only read the
// request samples; callers must not mutate a chunk while its job is queued.
type WorkerPool struct {
	mesher   *Mesher
	jobQueue chan MeshJob
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// NewWorkerPool creates a new mesh worker pool
func NewWorkerPool(mesher *Mesher, workers int, queueSize int) *WorkerPool {
	ctx, cancel := context.WithCancel(context.Background())
	if workers < 1 {
		workers = 1
	}

	pool := &WorkerPool{
		mesher:   mesher,
		jobQueue: make(chan MeshJob, queueSize),
		ctx:      ctx,
		cancel:   cancel,
	}

	// Start worker goroutines
	for i := range workers {
		pool.wg.Add(1)
		go pool.worker(i)
	}

	return pool
}

// SubmitJobBlocking submits a job and blocks until it's queued. It returns
// false if the pool shut down first.
func (p *WorkerPool) SubmitJobBlocking(job MeshJob) bool {
	select {
	case p.jobQueue <- job:
		return true
	case <-p.ctx.Done():
		return false
	}
}

// worker is the worker goroutine that processes mesh jobs
func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	for {
		select {
		case job := <-p.jobQueue:
			mesh, stats, err := p.mesher.Build(job.Request)
			result := MeshResult{
				Coord: job.Coord,
				Mesh:  mesh,
				Stats: stats,
				Error: err,
			}

			// Send result back
			select {
			case job.ResultChan <- result:
			case <-p.ctx.Done():
				return
			}

		case <-p.ctx.Done():
			return
		}
	}
}

// BuildAll meshes every request and waits for all of them, returning the
// results in input order. Nothing is left in flight when it returns.
func (p *WorkerPool) BuildAll(coords []voxel.Vec3i, reqs []*Request) []MeshResult {
	results := make([]MeshResult, len(reqs))
	resultChan := make(chan MeshResult, len(reqs))
	pos := make(map[voxel.Vec3i]int, len(reqs))

	submitted := 0
	for i, req := range reqs {
		pos[coords[i]] = i
		if !p.SubmitJobBlocking(MeshJob{Coord: coords[i], Request: req, ResultChan: resultChan}) {
			for j := i; j < len(reqs); j++ {
				results[j] = MeshResult{Coord: coords[j], Error: ErrPoolClosed}
			}
			break
		}
		submitted++
	}

	for range submitted {
		select {
		case r := <-resultChan:
			results[pos[r.Coord]] = r
		case <-p.ctx.Done():
			// Shutdown waits for the workers, so anything still owed is lost.
			p.wg.Wait()
			for i := range results {
				if results[i].Mesh == nil && results[i].Error == nil {
					results[i] = MeshResult{Coord: coords[i], Error: ErrPoolClosed}
				}
			}
			return results
		}
	}
	return results
}

// Shutdown stops the workers and waits for them to exit. Queued jobs are
// discarded.
func (p *WorkerPool) Shutdown() {
	p.cancel()
	p.wg.Wait()
}
