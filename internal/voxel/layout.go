package voxel

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrInvalidLayout is returned when chunk extent or resolution is not
// positive, or a resolution is odd.
var ErrInvalidLayout = errors.New("voxel: invalid layout")

// Layout describes how chunks tile world space. Chunk (0,0,0) is centered on Origin.
type Layout struct {
	ChunkSize   mgl32.Vec3 // world units per chunk
	ChunkVoxels Vec3i      // voxels per chunk along each axis
	Origin      mgl32.Vec3
}

// Validate checks that every extent and resolution component is positive.
func (l Layout) Validate() error {
	for i := range 3 {
		if l.ChunkSize[i] <= 0 {
			return fmt.Errorf("%w: chunk size %v", ErrInvalidLayout, l.ChunkSize)
		}
	}
	if l.ChunkVoxels.X <= 0 || l.ChunkVoxels.Y <= 0 || l.ChunkVoxels.Z <= 0 {
		return fmt.Errorf("%w: chunk voxels %v", ErrInvalidLayout, l.ChunkVoxels)
	}
	// chunk (0,0,0) is centred on Origin, which needs a lattice point there
	if l.ChunkVoxels.X%2 != 0 || l.ChunkVoxels.Y%2 != 0 || l.ChunkVoxels.Z%2 != 0 {
		return fmt.Errorf("%w: chunk voxels %v must be even", ErrInvalidLayout, l.ChunkVoxels)
	}
	return nil
}

// VoxelSize is the world-space extent of a single voxel.
func (l Layout) VoxelSize() mgl32.Vec3 {
	return mgl32.Vec3{
		l.ChunkSize.X() / float32(l.ChunkVoxels.X),
		l.ChunkSize.Y() / float32(l.ChunkVoxels.Y),
		l.ChunkSize.Z() / float32(l.ChunkVoxels.Z),
	}
}

// Padded is the per-axis sample count of a chunk: one extra plane shared with
// the neighbour in the positive direction.
func (l Layout) Padded() Vec3i {
	return l.ChunkVoxels.Add(Splat(1))
}

// SampleCount is the length of a chunk's flattened density array.
func (l Layout) SampleCount() int {
	return l.Padded().Volume()
}

// SampleIndex flattens a padded local index, x fastest, then y, then z.
func (l Layout) SampleIndex(local Vec3i) int {
	return SampleIndex(local, l.Padded())
}

// SampleIndex flattens local into an array of the given padded dimensions.
func SampleIndex(local, padded Vec3i) int {
	return local.X + local.Y*padded.X + local.Z*padded.X*padded.Y
}

// ChunkOffset is the lattice coordinate of a chunk's local (0,0,0) sample.
func (l Layout) ChunkOffset(chunk Vec3i) Vec3i {
	return chunk.Mul(l.ChunkVoxels)
}

// ChunkIndexOf returns the chunk containing p: floor((p + size/2) / size).
func (l Layout) ChunkIndexOf(p mgl32.Vec3) Vec3i {
	rel := p.Sub(l.Origin)
	return Vec3i{
		floorToInt((rel.X() + l.ChunkSize.X()/2) / l.ChunkSize.X()),
		floorToInt((rel.Y() + l.ChunkSize.Y()/2) / l.ChunkSize.Y()),
		floorToInt((rel.Z() + l.ChunkSize.Z()/2) / l.ChunkSize.Z()),
	}
}

// WorldVoxelIndexOf treats the world as one continuous voxel grid and
// returns the voxel containing p. It does not depend on chunk tiling.
func (l Layout) WorldVoxelIndexOf(p mgl32.Vec3) Vec3i {
	rel := p.Sub(l.Origin)
	vs := l.VoxelSize()
	return Vec3i{
		floorToInt(rel.X() / vs.X()),
		floorToInt(rel.Y() / vs.Y()),
		floorToInt(rel.Z() / vs.Z()),
	}
}

// LocalVoxelIndexOf returns the voxel containing p relative to the chunk
// given by ChunkIndexOf(p). Components are always in [0, ChunkVoxels).
func (l Layout) LocalVoxelIndexOf(p mgl32.Vec3) Vec3i {
	w := l.WorldVoxelIndexOf(p)
	n := l.ChunkVoxels
	return Vec3i{
		Mod(Mod(w.X, n.X)+n.X/2, n.X),
		Mod(Mod(w.Y, n.Y)+n.Y/2, n.Y),
		Mod(Mod(w.Z, n.Z)+n.Z/2, n.Z),
	}
}

// LatticeIndexOf is the chunk-aligned voxel coordinate of p: chunk c owns
// lattice points [c*n, c*n+n]. Edits are centred on this coordinate. It is
// the world voxel index shifted by n/2 and never depends on which chunk p
// falls in.
func (l Layout) LatticeIndexOf(p mgl32.Vec3) Vec3i {
	n := l.ChunkVoxels
	return l.WorldVoxelIndexOf(p).Add(Vec3i{n.X / 2, n.Y / 2, n.Z / 2})
}

// LatticeToWorld maps a (possibly fractional) lattice position of a chunk to
// world space, consistent with ChunkIndexOf's centering.
func (l Layout) LatticeToWorld(chunk Vec3i, local mgl32.Vec3) mgl32.Vec3 {
	off := l.ChunkOffset(chunk)
	half := Vec3i{l.ChunkVoxels.X / 2, l.ChunkVoxels.Y / 2, l.ChunkVoxels.Z / 2}
	vs := l.VoxelSize()
	return mgl32.Vec3{
		l.Origin.X() + (float32(off.X-half.X)+local.X())*vs.X(),
		l.Origin.Y() + (float32(off.Y-half.Y)+local.Y())*vs.Y(),
		l.Origin.Z() + (float32(off.Z-half.Z)+local.Z())*vs.Z(),
	}
}

func floorToInt(f float32) int {
	return int(math.Floor(float64(f)))
}
