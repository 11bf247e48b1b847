package meshing

import (
	"fmt"
	"log"
	"time"

	"voxterrain/internal/profiling"
)

// DefaultCapacityFactor is the number of triangles reserved per voxel.
const DefaultCapacityFactor = 5

// BuildStats describes one Build call.
type BuildStats struct {
	Triangles int // triangles kept
	Dropped   int // triangles beyond capacity
	Vertices  int // after dedup
	Duration  time.Duration
}

// Mesher drives a Backend and post-processes its output into a Mesh.
type Mesher struct {
	Backend        Backend
	CapacityFactor int
}

// NewMesher wraps backend; a nil backend selects the CPU reference.
func NewMesher(backend Backend) *Mesher {
	if backend == nil {
		backend = Tetrahedra{}
	}
	return &Mesher{Backend: backend, CapacityFactor: DefaultCapacityFactor}
}

// Capacity returns the triangle budget for req.
func (m *Mesher) Capacity(req *Request) int {
	if req.MaxTriangles > 0 {
		return req.MaxTriangles
	}
	f := m.CapacityFactor
	if f <= 0 {
		f = DefaultCapacityFactor
	}
	return req.Resolution.Volume() * f
}

// Build polygonizes req and returns the deduplicated mesh. Triangles past the
// capacity are dropped and reported, never an error.
func (m *Mesher) Build(req *Request) (*Mesh, BuildStats, error) {
	defer profiling.Track("meshing.Build")()
	start := time.Now()
	var stats BuildStats

	if err := req.Validate(); err != nil {
		return nil, stats, err
	}
	capacity := m.Capacity(req)
	if req.MaxTriangles == 0 {
		r := *req
		r.MaxTriangles = capacity
		req = &r
	}

	tris, err := m.Backend.Polygonize(req)
	if err != nil {
		return nil, stats, fmt.Errorf("polygonize chunk %v: %w", req.Chunk, err)
	}
	if len(tris) > capacity {
		stats.Dropped = len(tris) - capacity
		log.Printf("meshing: chunk %v produced %d triangles, capacity %d; dropping %d",
			req.Chunk, len(tris), capacity, stats.Dropped)
		tris = tris[:capacity]
	}

	mesh := BuildMesh(tris)
	stats.Triangles = mesh.TriangleCount()
	stats.Vertices = len(mesh.Vertices)
	stats.Duration = time.Since(start)
	return mesh, stats, nil
}
