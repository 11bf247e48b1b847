package terrain

import (
	"math"
)

// Deterministic 2D value noise. Every 3D field in this package is assembled
// from 2D evaluations so all strategies share one lattice hash.

// fade is the quintic smoothstep 6t^5 - 15t^4 + 10t^3.
func fade(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}

func lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

func hash2(x, z, seed int64) uint64 {
	// SplitMix64 finaliser; stable across runs for the same inputs
	v := uint64(x) + (uint64(z) << 1) + uint64(seed)*0x9E3779B97F4A7C15
	v += 0x9E3779B97F4A7C15
	v = (v ^ (v >> 30)) * 0xBF58476D1CE4E5B9
	v = (v ^ (v >> 27)) * 0x94D049BB133111EB
	v = v ^ (v >> 31)
	return v
}

func latticeValue(x, z, seed int64) float64 {
	h := hash2(x, z, seed)
	return float64(h&0xFFFFFFFF) / float64(0xFFFFFFFF)
}

// noise2D is smoothed value noise in [0,1].
func noise2D(x, z float64, seed int64) float64 {
	x0 := math.Floor(x)
	z0 := math.Floor(z)

	fx := fade(x - x0)
	fz := fade(z - z0)

	ix, iz := int64(x0), int64(z0)
	v00 := latticeValue(ix, iz, seed)
	v10 := latticeValue(ix+1, iz, seed)
	v01 := latticeValue(ix, iz+1, seed)
	v11 := latticeValue(ix+1, iz+1, seed)

	return lerp(lerp(v00, v10, fx), lerp(v01, v11, fx), fz)
}

// noise3D averages the six axis-pair 2D evaluations (xy, yz, xz and their
// swapped counterparts). Result stays in [0,1].
func noise3D(x, y, z float64, seed int64) float64 {
	ab := noise2D(x, y, seed)
	bc := noise2D(y, z, seed)
	ac := noise2D(x, z, seed)

	ba := noise2D(y, x, seed)
	cb := noise2D(z, y, seed)
	ca := noise2D(z, x, seed)

	return (ab + bc + ac + ba + cb + ca) / 6
}

// octaveNoise2D layers octaves with frequency 4^i and weight 1/4^i. The sum
// is not renormalised, so the result can exceed 1 slightly.
func octaveNoise2D(x, z float64, seed int64, octaves int) float64 {
	sum := 0.0
	for i := range octaves {
		mag := math.Pow(4, float64(i))
		sum += noise2D(x*mag, z*mag, seed) / mag
	}
	return sum
}
