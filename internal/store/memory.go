package store

import (
	"context"
	"fmt"
	"sync"

	"voxterrain/internal/voxel"
)

// Memory is a Store that lives only as long as the process. It copies on the
// way in and out so callers can keep mutating their slices.
type Memory struct {
	mu   sync.RWMutex
	recs map[voxel.Vec3i]Record
}

func NewMemory() *Memory {
	return &Memory{recs: make(map[voxel.Vec3i]Record)}
}

func (m *Memory) Load(_ context.Context, coord voxel.Vec3i) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.recs[coord]
	if !ok {
		return Record{Coord: coord}, ErrNotFound
	}
	r.Samples = append([]float32(nil), r.Samples...)
	return r, nil
}

func (m *Memory) SaveBatch(ctx context.Context, recs []Record) error {
	for _, r := range recs {
		if want := r.Resolution.Add(voxel.Splat(1)).Volume(); len(r.Samples) != want {
			return fmt.Errorf("save chunk %v: %d samples, want %d", r.Coord, len(r.Samples), want)
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range recs {
		r.Samples = append([]float32(nil), r.Samples...)
		m.recs[r.Coord] = r
	}
	return nil
}

// Len returns the number of stored chunks.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.recs)
}

func (m *Memory) Close() error { return nil }
