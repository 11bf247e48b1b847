package terrain

import (
	"errors"
	"fmt"
	"strings"

	"voxterrain/internal/voxel"
)

// ErrUnknownGenerator is returned by New and ParseKind for unsupported kinds.
var ErrUnknownGenerator = errors.New("terrain: unknown generator")

// Generator produces the initial density field of a chunk.
//
// padded is the per-axis sample count (chunk voxels + 1). The returned slice
// has padded.X*padded.Y*padded.Z samples, x fastest. Sample (i,j,k) is
// evaluated at lattice coordinate coord*(padded-1) + (i,j,k), so adjacent
// chunks agree on their shared plane. Implementations are pure.
type Generator interface {
	Generate(coord voxel.Vec3i, padded voxel.Vec3i) []float32
}

// Kind selects a generation strategy.
type Kind int

const (
	KindFlat Kind = iota
	KindNoise
	KindComplex
)

func (k Kind) String() string {
	switch k {
	case KindFlat:
		return "flat"
	case KindNoise:
		return "noise"
	case KindComplex:
		return "complex"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind accepts "flat", "noise" (or "perlin") and "complex".
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "flat":
		return KindFlat, nil
	case "noise", "perlin":
		return KindNoise, nil
	case "complex":
		return KindComplex, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownGenerator, s)
}

// Settings carries the parameters of every strategy; only the fields of the
// selected Kind are read.
type Settings struct {
	Kind Kind

	Seed         int64
	SurfaceLevel float64

	NoiseScale  [3]float64
	NoiseOffset [3]float64

	HeightAmplitude float64
	HeightScale     float64
	Octaves         int
	CaveScale       [3]float64
	CaveThreshold   float64
}

// DefaultSettings mirrors the tuning the terrain was designed around.
func DefaultSettings() Settings {
	return Settings{
		Kind:            KindComplex,
		SurfaceLevel:    112,
		NoiseScale:      [3]float64{0.04, 0.05, 0.04},
		NoiseOffset:     [3]float64{1, 1, 1},
		HeightAmplitude: 30,
		HeightScale:     0.005,
		Octaves:         4,
		CaveScale:       [3]float64{0.04, 0.05, 0.04},
		CaveThreshold:   0.2,
	}
}

// New builds the strategy named by s.Kind.
func New(s Settings) (Generator, error) {
	switch s.Kind {
	case KindFlat:
		return NewFlat(s.SurfaceLevel), nil
	case KindNoise:
		return &Noise{Scale: s.NoiseScale, Offset: s.NoiseOffset, Seed: s.Seed}, nil
	case KindComplex:
		return &Complex{
			SurfaceLevel:    s.SurfaceLevel,
			HeightAmplitude: s.HeightAmplitude,
			HeightScale:     s.HeightScale,
			Octaves:         s.Octaves,
			CaveScale:       s.CaveScale,
			CaveThreshold:   s.CaveThreshold,
			Seed:            s.Seed,
		}, nil
	}
	return nil, fmt.Errorf("%w: %v", ErrUnknownGenerator, s.Kind)
}

// latticeOrigin returns the lattice coordinate of a chunk's sample (0,0,0).
func latticeOrigin(coord, padded voxel.Vec3i) voxel.Vec3i {
	return coord.Mul(padded.Sub(voxel.Splat(1)))
}

// fill evaluates f at every padded sample of a chunk in storage order.
func fill(coord, padded voxel.Vec3i, f func(x, y, z int) float32) []float32 {
	base := latticeOrigin(coord, padded)
	out := make([]float32, padded.Volume())
	idx := 0
	for k := range padded.Z {
		for j := range padded.Y {
			for i := range padded.X {
				out[idx] = f(base.X+i, base.Y+j, base.Z+k)
				idx++
			}
		}
	}
	return out
}
