package world

import (
	"voxterrain/internal/profiling"
	"voxterrain/internal/voxel"

	"github.com/go-gl/mathgl/mgl32"
)

// ApplyStencil adds s to the density field around pos and returns the chunks
// it wrote to, in the order they were edited.
//
// pos is snapped to the nearest lattice point. Every chunk holding a lattice
// point the stencil changes receives the same write, so shared boundary
// planes stay identical. Chunks where every delta is zero are left alone.
// Chunks that do not exist yet are created disabled and meshed once they
// stream in.
func (v *Volume) ApplyStencil(pos mgl32.Vec3, s *Stencil) []ChunkCoord {
	defer profiling.Track("world.ApplyStencil")()
	n := v.layout.ChunkVoxels
	center := v.layout.LatticeIndexOf(pos.Add(v.layout.VoxelSize().Mul(0.5)))

	// A chunk c holds lattice points [c*n, c*n+n]; the box spans
	// center-(r+1)..center+(r-1).
	r := s.Radius
	lo := voxel.Vec3i{
		X: voxel.FloorDiv(center.X-r-2, n.X),
		Y: voxel.FloorDiv(center.Y-r-2, n.Y),
		Z: voxel.FloorDiv(center.Z-r-2, n.Z),
	}
	hi := voxel.Vec3i{
		X: voxel.FloorDiv(center.X+r, n.X),
		Y: voxel.FloorDiv(center.Y+r, n.Y),
		Z: voxel.FloorDiv(center.Z+r, n.Z),
	}

	var touched []ChunkCoord
	for z := hi.Z; z >= lo.Z; z-- {
		for y := hi.Y; y >= lo.Y; y-- {
			for x := hi.X; x >= lo.X; x-- {
				coord := ChunkCoord{X: x, Y: y, Z: z}
				if !v.InBounds(coord) {
					continue
				}
				local := center.Sub(v.layout.ChunkOffset(coord))
				if !s.affects(local, n) {
					continue
				}

				ch := v.chunks.Get(coord)
				if ch == nil {
					ch = v.createChunk(coord, nil)
					ch.Disable()
				}
				changed := ch.edit(func(samples []float32) bool {
					return s.applyLocal(samples, local, n)
				})
				if !changed {
					continue
				}
				v.queue.push(coord)
				touched = append(touched, coord)
			}
		}
	}
	return touched
}
