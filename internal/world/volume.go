package world

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"voxterrain/internal/config"
	"voxterrain/internal/meshing"
	"voxterrain/internal/profiling"
	"voxterrain/internal/store"
	"voxterrain/internal/terrain"
	"voxterrain/internal/voxel"

	"github.com/go-gl/mathgl/mgl32"
)

// Options configures a Volume.
type Options struct {
	Layout   voxel.Layout
	IsoLevel float32
	// Inclusive chunk coordinate bounds; nothing outside is ever created.
	MinBound, MaxBound ChunkCoord

	Stream    *config.StreamSettings
	Generator terrain.Generator
	Mesher    *meshing.Mesher // nil selects the CPU reference backend

	// MeshWorkers > 1 meshes each drained batch in parallel.
	MeshWorkers int
	// Store, if set, supplies saved density for new chunks and receives
	// edited chunks on Flush.
	Store store.Store
}

// TickStats summarises one Tick.
type TickStats struct {
	Target    ChunkCoord
	Streamed  bool // target chunk changed, chunk list was updated
	Created   int
	Loaded    int // created from the store instead of the generator
	Enabled   int
	Disabled  int
	Meshed    int
	Triangles int
	Dropped   int
	Duration  time.Duration
}

// Volume is the streaming, editable density field. Tick, ApplyStencil and
// Flush must be called from one goroutine.
type Volume struct {
	layout   voxel.Layout
	padded   voxel.Vec3i
	iso      float32
	minBound ChunkCoord
	maxBound ChunkCoord

	stream *config.StreamSettings
	gen    terrain.Generator
	mesher *meshing.Mesher
	pool   *meshing.WorkerPool
	store  store.Store

	chunks *ChunkStore
	queue  *remeshQueue

	target  ChunkCoord
	started bool
}

// NewVolume validates opts and returns an empty volume. No chunk exists until
// the first Tick or edit.
func NewVolume(opts Options) (*Volume, error) {
	if err := opts.Layout.Validate(); err != nil {
		return nil, err
	}
	if opts.Generator == nil {
		return nil, errors.New("world: generator is required")
	}
	if opts.MinBound.Max(opts.MaxBound) != opts.MaxBound {
		return nil, fmt.Errorf("world: min bound %v exceeds max bound %v", opts.MinBound, opts.MaxBound)
	}
	if opts.Stream == nil {
		opts.Stream = config.NewStreamSettings(4, 6, 0)
	}
	if opts.Mesher == nil {
		opts.Mesher = meshing.NewMesher(nil)
	}
	v := &Volume{
		layout:   opts.Layout,
		padded:   opts.Layout.Padded(),
		iso:      opts.IsoLevel,
		minBound: opts.MinBound,
		maxBound: opts.MaxBound,
		stream:   opts.Stream,
		gen:      opts.Generator,
		mesher:   opts.Mesher,
		store:    opts.Store,
		chunks:   NewChunkStore(),
		queue:    newRemeshQueue(),
	}
	if opts.MeshWorkers > 1 {
		v.pool = meshing.NewWorkerPool(opts.Mesher, opts.MeshWorkers, opts.MeshWorkers*4)
	}
	return v, nil
}

// Tick runs one update: the streaming phase when the target moved to another
// chunk (always on the first tick), then one mesh per queued chunk. A mesh
// contract violation is returned as an error; the volume is then unusable.
func (v *Volume) Tick(target mgl32.Vec3) (TickStats, error) {
	defer profiling.Track("world.Tick")()
	start := time.Now()

	center := v.layout.ChunkIndexOf(target)
	stats := TickStats{Target: center}
	if !v.started || center != v.target {
		v.started = true
		v.target = center
		stats.Streamed = true
		v.streamAround(center, &stats)
	}

	err := v.drain(&stats)
	stats.Duration = time.Since(start)
	return stats, err
}

// drain meshes every chunk queued before this call exactly once.
func (v *Volume) drain(stats *TickStats) error {
	defer profiling.Track("world.drain")()
	batch := v.queue.take()
	if len(batch) == 0 {
		return nil
	}

	coords := make([]ChunkCoord, 0, len(batch))
	reqs := make([]*meshing.Request, 0, len(batch))
	for _, coord := range batch {
		ch := v.chunks.Get(coord)
		// Disabled chunks are meshed when they are enabled again.
		if ch == nil || !ch.IsActive() {
			continue
		}
		coords = append(coords, coord)
		reqs = append(reqs, v.request(ch))
	}

	var results []meshing.MeshResult
	if v.pool != nil && len(reqs) > 1 {
		results = v.pool.BuildAll(coords, reqs)
	} else {
		results = make([]meshing.MeshResult, len(reqs))
		for i, req := range reqs {
			mesh, bs, err := v.mesher.Build(req)
			results[i] = meshing.MeshResult{Coord: coords[i], Mesh: mesh, Stats: bs, Error: err}
		}
	}

	for _, r := range results {
		if r.Error != nil {
			return fmt.Errorf("mesh chunk %v: %w", r.Coord, r.Error)
		}
		v.chunks.Get(r.Coord).setMesh(r.Mesh)
		stats.Meshed++
		stats.Triangles += r.Stats.Triangles
		stats.Dropped += r.Stats.Dropped
	}
	return nil
}

func (v *Volume) request(ch *Chunk) *meshing.Request {
	return &meshing.Request{
		Samples:    ch.Samples(),
		Resolution: v.layout.ChunkVoxels,
		IsoLevel:   v.iso,
		Chunk:      ch.Coord,
		VoxelSize:  v.layout.VoxelSize(),
		Origin:     v.layout.Origin,
	}
}

// createChunk builds a chunk from the store if it holds one with a matching
// resolution, otherwise from the generator, and registers it.
func (v *Volume) createChunk(coord ChunkCoord, stats *TickStats) *Chunk {
	defer profiling.Track("world.createChunk")()
	var samples []float32
	if v.store != nil {
		rec, err := v.store.Load(context.Background(), coord)
		switch {
		case err == nil && rec.Resolution == v.layout.ChunkVoxels:
			samples = rec.Samples
			if stats != nil {
				stats.Loaded++
			}
		case err == nil:
			log.Printf("world: stored chunk %v has resolution %v, want %v; regenerating",
				coord, rec.Resolution, v.layout.ChunkVoxels)
		case !errors.Is(err, store.ErrNotFound):
			log.Printf("world: load chunk %v: %v; regenerating", coord, err)
		}
	}
	if samples == nil {
		samples = v.gen.Generate(coord, v.padded)
	}
	if stats != nil {
		stats.Created++
	}
	return v.chunks.Add(NewChunk(coord, samples))
}

// InBounds reports whether coord lies within the configured chunk bounds.
func (v *Volume) InBounds(coord ChunkCoord) bool {
	return coord.Within(v.minBound, v.maxBound)
}

// Chunk returns the chunk at coord, or nil if it was never created.
func (v *Volume) Chunk(coord ChunkCoord) *Chunk {
	return v.chunks.Get(coord)
}

// Chunks returns every chunk ever created, ordered by coordinate.
func (v *Volume) Chunks() []*Chunk {
	return v.chunks.All()
}

// ActiveMeshes returns the meshes of all active chunks in coordinate order.
func (v *Volume) ActiveMeshes() ([]ChunkCoord, []*meshing.Mesh) {
	var coords []ChunkCoord
	var meshes []*meshing.Mesh
	for _, ch := range v.chunks.All() {
		if m := ch.Mesh(); ch.IsActive() && m != nil {
			coords = append(coords, ch.Coord)
			meshes = append(meshes, m)
		}
	}
	return coords, meshes
}

// PendingMeshes returns the number of chunks waiting for the next drain.
func (v *Volume) PendingMeshes() int {
	return v.queue.len()
}

// IsPending reports whether coord is queued for meshing.
func (v *Volume) IsPending(coord ChunkCoord) bool {
	return v.queue.contains(coord)
}

func (v *Volume) Layout() voxel.Layout { return v.layout }

func (v *Volume) IsoLevel() float32 { return v.iso }

// ActiveCount returns the number of active chunks.
func (v *Volume) ActiveCount() int { return v.chunks.ActiveCount() }

// Flush saves every edited chunk to the store and returns how many were
// written. Without a store it is a no-op.
func (v *Volume) Flush(ctx context.Context) (int, error) {
	if v.store == nil {
		return 0, nil
	}
	defer profiling.Track("world.Flush")()
	var dirty []*Chunk
	var recs []store.Record
	for _, ch := range v.chunks.All() {
		if !ch.Edited() {
			continue
		}
		dirty = append(dirty, ch)
		recs = append(recs, store.Record{
			Coord:      ch.Coord,
			Resolution: v.layout.ChunkVoxels,
			Samples:    ch.SamplesCopy(),
		})
	}
	if len(recs) == 0 {
		return 0, nil
	}
	if err := v.store.SaveBatch(ctx, recs); err != nil {
		return 0, fmt.Errorf("flush %d chunks: %w", len(recs), err)
	}
	for _, ch := range dirty {
		ch.saved()
	}
	return len(recs), nil
}

// Close stops the mesh workers. The store is owned by the caller.
func (v *Volume) Close() {
	if v.pool != nil {
		v.pool.Shutdown()
		v.pool = nil
	}
}
