package world

import (
	"sort"
	"sync"
)

// ChunkStore maps chunk coordinates to chunks. Chunks are never removed:
// streaming only disables them.
type ChunkStore struct {
	// Map of chunks indexed by their coordinates
	chunks map[ChunkCoord]*Chunk
	mu     sync.RWMutex
}

// NewChunkStore creates a new chunk store.
func NewChunkStore() *ChunkStore {
	return &ChunkStore{
		chunks: make(map[ChunkCoord]*Chunk),
	}
}

// Get returns the chunk at coord, or nil.
func (cs *ChunkStore) Get(coord ChunkCoord) *Chunk {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.chunks[coord]
}

// Add inserts chunk unless its coordinate is taken, and returns the chunk
// that ends up stored.
func (cs *ChunkStore) Add(chunk *Chunk) *Chunk {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if existing, ok := cs.chunks[chunk.Coord]; ok {
		return existing
	}
	cs.chunks[chunk.Coord] = chunk
	return chunk
}

// All returns every chunk ordered by z, then y, then x.
func (cs *ChunkStore) All() []*Chunk {
	cs.mu.RLock()
	out := make([]*Chunk, 0, len(cs.chunks))
	for _, ch := range cs.chunks {
		out = append(out, ch)
	}
	cs.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Coord, out[j].Coord
		if a.Z != b.Z {
			return a.Z < b.Z
		}
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.X < b.X
	})
	return out
}

// Len returns the number of chunks ever created.
func (cs *ChunkStore) Len() int {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return len(cs.chunks)
}

// ActiveCount returns the number of Active chunks.
func (cs *ChunkStore) ActiveCount() int {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	n := 0
	for _, ch := range cs.chunks {
		if ch.IsActive() {
			n++
		}
	}
	return n
}
