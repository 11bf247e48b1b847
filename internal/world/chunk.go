package world

import (
	"sync"

	"voxterrain/internal/meshing"
	"voxterrain/internal/voxel"
)

// ChunkCoord identifies a chunk in the chunk grid.
type ChunkCoord = voxel.Vec3i

// ChunkState is the streaming state of a chunk.
type ChunkState int

const (
	// Active chunks are in view and carry a mesh once meshed.
	Active ChunkState = iota
	// Disabled chunks keep their density but have no mesh.
	Disabled
)

func (s ChunkState) String() string {
	if s == Disabled {
		return "disabled"
	}
	return "active"
}

// Chunk holds the padded density field of one chunk and its derived mesh.
// Samples may be mutated by edits and read by mesh workers; mu serialises the
// two.
type Chunk struct {
	Coord ChunkCoord

	mu      sync.RWMutex
	samples []float32
	mesh    *meshing.Mesh
	state   ChunkState
	edited  bool // density differs from what the store holds
}

// NewChunk wraps an already generated density field.
func NewChunk(coord ChunkCoord, samples []float32) *Chunk {
	return &Chunk{
		Coord:   coord,
		samples: samples,
		state:   Active,
	}
}

// Samples returns the live density array. Callers must not modify it.
func (c *Chunk) Samples() []float32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.samples
}

// SamplesCopy returns a snapshot of the density array.
func (c *Chunk) SamplesCopy() []float32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]float32(nil), c.samples...)
}

// Sample returns the density at a flattened sample index.
func (c *Chunk) Sample(idx int) float32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.samples[idx]
}

// Mesh returns the current mesh, nil if the chunk was never meshed or is
// disabled.
func (c *Chunk) Mesh() *meshing.Mesh {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.mesh
}

func (c *Chunk) State() ChunkState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

func (c *Chunk) IsActive() bool {
	return c.State() == Active
}

// Edited reports whether the chunk has unsaved density changes.
func (c *Chunk) Edited() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.edited
}

// Enable makes the chunk active again. The caller is responsible for
// scheduling a remesh.
func (c *Chunk) Enable() {
	c.mu.Lock()
	c.state = Active
	c.mu.Unlock()
}

// Disable drops the mesh and keeps the density.
func (c *Chunk) Disable() {
	c.mu.Lock()
	c.state = Disabled
	c.mesh.Clear()
	c.mesh = nil
	c.mu.Unlock()
}

// setMesh replaces the previous mesh, clearing it first.
func (c *Chunk) setMesh(m *meshing.Mesh) {
	c.mu.Lock()
	if c.mesh != m {
		c.mesh.Clear()
	}
	c.mesh = m
	c.mu.Unlock()
}

// edit runs f on the density array under the write lock and marks the chunk
// edited if f reports a change.
func (c *Chunk) edit(f func(samples []float32) bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	changed := f(c.samples)
	if changed {
		c.edited = true
	}
	return changed
}

// saved clears the edited flag.
func (c *Chunk) saved() {
	c.mu.Lock()
	c.edited = false
	c.mu.Unlock()
}
