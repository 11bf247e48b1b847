package terrain

import (
	"math"

	"voxterrain/internal/voxel"
)

// Flat is a binary step: -1 below SurfaceLevel, +1 at or above it.
type Flat struct {
	SurfaceLevel float64
}

// NewFlat returns a flat generator with its surface at the given lattice height.
func NewFlat(surfaceLevel float64) *Flat {
	return &Flat{SurfaceLevel: surfaceLevel}
}

func (g *Flat) Generate(coord, padded voxel.Vec3i) []float32 {
	return fill(coord, padded, func(_, y, _ int) float32 {
		if float64(y) < g.SurfaceLevel {
			return -1
		}
		return 1
	})
}

// Noise fills the chunk with anisotropic 3D noise remapped to [-1,1].
type Noise struct {
	Scale  [3]float64
	Offset [3]float64
	Seed   int64
}

func (g *Noise) Generate(coord, padded voxel.Vec3i) []float32 {
	return fill(coord, padded, func(x, y, z int) float32 {
		n := noise3D(
			float64(x)*g.Scale[0]+g.Offset[0],
			float64(y)*g.Scale[1]+g.Offset[1],
			float64(z)*g.Scale[2]+g.Offset[2],
			g.Seed,
		)
		return float32(n*2 - 1)
	})
}

// Complex builds a heightmap surface with caves carved underneath it.
type Complex struct {
	SurfaceLevel    float64
	HeightAmplitude float64
	HeightScale     float64
	Octaves         int
	CaveScale       [3]float64
	CaveThreshold   float64
	Seed            int64
}

// SurfaceAt returns the terrain height of the column at lattice (x, z).
func (g *Complex) SurfaceAt(x, z int) float64 {
	n := octaveNoise2D(float64(x)*g.HeightScale, float64(z)*g.HeightScale, g.Seed, g.Octaves)
	return g.SurfaceLevel + (n*2-1)*g.HeightAmplitude
}

func (g *Complex) Generate(coord, padded voxel.Vec3i) []float32 {
	base := latticeOrigin(coord, padded)
	out := make([]float32, padded.Volume())
	for k := range padded.Z {
		z := base.Z + k
		for i := range padded.X {
			x := base.X + i
			surface := g.SurfaceAt(x, z)
			for j := range padded.Y {
				y := base.Y + j
				d := math.Max(-1, math.Min(1, float64(y)-surface))
				// one unit of margin keeps the cave pass off the surface itself
				if float64(y)+1 < surface {
					n := noise3D(
						float64(x)*g.CaveScale[0],
						float64(y)*g.CaveScale[1],
						float64(z)*g.CaveScale[2],
						g.Seed,
					)
					d = math.Abs(n*2-1) - g.CaveThreshold
				}
				out[voxel.SampleIndex(voxel.Vec3i{X: i, Y: j, Z: k}, padded)] = float32(d)
			}
		}
	}
	return out
}
