package world

import (
	"math"

	"voxterrain/internal/voxel"

	"github.com/go-gl/mathgl/mgl32"
)

// latticePos converts a world position to continuous global lattice
// coordinates, the inverse of Layout.LatticeToWorld.
func (v *Volume) latticePos(p mgl32.Vec3) [3]float64 {
	vs := v.layout.VoxelSize()
	n := v.layout.ChunkVoxels
	half := [3]int{n.X / 2, n.Y / 2, n.Z / 2}
	var g [3]float64
	for a := range 3 {
		g[a] = float64(p[a]-v.layout.Origin[a])/float64(vs[a]) + float64(half[a])
	}
	return g
}

// LatticeSample returns the stored density at a global lattice point, read
// from the chunk that owns it below its padded edge. ok is false when that
// chunk does not exist.
func (v *Volume) LatticeSample(g voxel.Vec3i) (float32, bool) {
	n := v.layout.ChunkVoxels
	coord := ChunkCoord{X: voxel.FloorDiv(g.X, n.X), Y: voxel.FloorDiv(g.Y, n.Y), Z: voxel.FloorDiv(g.Z, n.Z)}
	ch := v.chunks.Get(coord)
	if ch == nil {
		return 0, false
	}
	return ch.Sample(v.layout.SampleIndex(g.Sub(v.layout.ChunkOffset(coord)))), true
}

// DensityAt trilinearly interpolates the density field at a world position.
// ok is false when the containing chunk was never created.
func (v *Volume) DensityAt(p mgl32.Vec3) (float32, bool) {
	g := v.latticePos(p)
	n := v.layout.ChunkVoxels
	base := voxel.Vec3i{
		X: int(math.Floor(g[0])),
		Y: int(math.Floor(g[1])),
		Z: int(math.Floor(g[2])),
	}
	coord := ChunkCoord{X: voxel.FloorDiv(base.X, n.X), Y: voxel.FloorDiv(base.Y, n.Y), Z: voxel.FloorDiv(base.Z, n.Z)}
	ch := v.chunks.Get(coord)
	if ch == nil {
		return 0, false
	}
	// base lies in [0, n) locally, so base+1 is still inside the padded range
	local := base.Sub(v.layout.ChunkOffset(coord))
	fx := float32(g[0] - float64(base.X))
	fy := float32(g[1] - float64(base.Y))
	fz := float32(g[2] - float64(base.Z))

	samples := ch.Samples()
	at := func(dx, dy, dz int) float32 {
		return samples[v.layout.SampleIndex(local.Add(voxel.Vec3i{X: dx, Y: dy, Z: dz}))]
	}
	x00 := lerp(at(0, 0, 0), at(1, 0, 0), fx)
	x10 := lerp(at(0, 1, 0), at(1, 1, 0), fx)
	x01 := lerp(at(0, 0, 1), at(1, 0, 1), fx)
	x11 := lerp(at(0, 1, 1), at(1, 1, 1), fx)
	return lerp(lerp(x00, x10, fy), lerp(x01, x11, fy), fz), true
}

func lerp(a, b, t float32) float32 {
	return a + t*(b-a)
}
