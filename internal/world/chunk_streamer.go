package world

import (
	"voxterrain/internal/profiling"
	"voxterrain/internal/voxel"
)

// remeshQueue is an insertion-ordered set of chunk coordinates waiting for a
// mesh. A coordinate is never queued twice.
type remeshQueue struct {
	order   []ChunkCoord
	pending map[ChunkCoord]struct{}
}

func newRemeshQueue() *remeshQueue {
	return &remeshQueue{pending: make(map[ChunkCoord]struct{})}
}

// push enqueues coord and reports whether it was not already queued.
func (q *remeshQueue) push(coord ChunkCoord) bool {
	if _, ok := q.pending[coord]; ok {
		return false
	}
	q.pending[coord] = struct{}{}
	q.order = append(q.order, coord)
	return true
}

// take removes and returns everything queued so far. Coordinates pushed
// afterwards wait for the next take.
func (q *remeshQueue) take() []ChunkCoord {
	batch := q.order
	q.order = nil
	clear(q.pending)
	return batch
}

func (q *remeshQueue) contains(coord ChunkCoord) bool {
	_, ok := q.pending[coord]
	return ok
}

func (q *remeshQueue) len() int {
	return len(q.order)
}

// streamAround updates chunk states for a new target chunk: far chunks are
// disabled, chunks inside the load sphere are created or re-enabled and
// queued for meshing.
func (v *Volume) streamAround(center ChunkCoord, stats *TickStats) {
	defer profiling.Track("world.streamAround")()
	load := v.stream.LoadDistance()
	destroy := v.stream.DestroyDistance()

	for _, ch := range v.chunks.All() {
		if ch.IsActive() && voxel.DistSq(ch.Coord, center) > destroy*destroy {
			ch.Disable()
			stats.Disabled++
		}
	}

	for dz := -load + 1; dz < load; dz++ {
		for dy := -load + 1; dy < load; dy++ {
			for dx := -load + 1; dx < load; dx++ {
				off := voxel.Vec3i{X: dx, Y: dy, Z: dz}
				if off.LenSq() > load*load {
					continue
				}
				coord := center.Add(off).Clamp(v.minBound, v.maxBound)
				ch := v.chunks.Get(coord)
				switch {
				case ch == nil:
					v.createChunk(coord, stats)
					v.queue.push(coord)
				case !ch.IsActive():
					ch.Enable()
					v.queue.push(coord)
					stats.Enabled++
				}
			}
		}
	}
}
