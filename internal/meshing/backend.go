package meshing

import (
	"errors"
	"fmt"

	"voxterrain/internal/voxel"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrMissingDensity means a chunk was submitted for meshing without a full
// density field. Density is generated when a chunk is created, so this is
// always a caller bug.
var ErrMissingDensity = errors.New("meshing: chunk has no density samples")

// VertexKey identifies a vertex topologically within one request: the two
// padded sample indices of the lattice edge it lies on, smaller first.
type VertexKey struct {
	A, B int32
}

// Vertex is one corner of a backend triangle.
type Vertex struct {
	Pos mgl32.Vec3
	Key VertexKey
}

// Triangle is wound counter-clockwise when viewed from the side of higher
// density.
type Triangle struct {
	A, B, C Vertex
}

// Request is everything an isosurface backend needs to polygonize one chunk.
type Request struct {
	Samples    []float32   // padded density field, x fastest
	Resolution voxel.Vec3i // voxels per axis; Samples has (Resolution+1)^3 entries
	IsoLevel   float32
	Chunk      voxel.Vec3i
	VoxelSize  mgl32.Vec3
	Origin     mgl32.Vec3 // world-space centre of chunk (0,0,0)

	// MaxTriangles caps the response. Zero lets the Mesher pick its default.
	MaxTriangles int
}

// Padded returns the per-axis sample count.
func (r *Request) Padded() voxel.Vec3i {
	return r.Resolution.Add(voxel.Splat(1))
}

// Validate checks that the density field matches the declared resolution.
func (r *Request) Validate() error {
	if r.Resolution.X <= 0 || r.Resolution.Y <= 0 || r.Resolution.Z <= 0 {
		return fmt.Errorf("meshing: invalid resolution %v", r.Resolution)
	}
	if len(r.Samples) == 0 {
		return fmt.Errorf("chunk %v: %w", r.Chunk, ErrMissingDensity)
	}
	if want := r.Padded().Volume(); len(r.Samples) != want {
		return fmt.Errorf("chunk %v: %d samples, want %d: %w", r.Chunk, len(r.Samples), want, ErrMissingDensity)
	}
	return nil
}

// latticeToWorld positions a global lattice coordinate. Global coordinates
// are shared by neighbouring chunks, so vertices on a shared plane land on
// the same float in both meshes.
func (r *Request) latticeToWorld(g mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{
		r.Origin.X() + (g.X()-float32(r.Resolution.X/2))*r.VoxelSize.X(),
		r.Origin.Y() + (g.Y()-float32(r.Resolution.Y/2))*r.VoxelSize.Y(),
		r.Origin.Z() + (g.Z()-float32(r.Resolution.Z/2))*r.VoxelSize.Z(),
	}
}

// Backend turns a density grid into a triangle soup. Implementations may run
// anywhere (GPU, worker threads) but Polygonize returns only once the
// triangles are complete.
type Backend interface {
	Polygonize(req *Request) ([]Triangle, error)
}

// BackendFunc adapts a plain function to the Backend interface.
type BackendFunc func(req *Request) ([]Triangle, error)

func (f BackendFunc) Polygonize(req *Request) ([]Triangle, error) {
	return f(req)
}
