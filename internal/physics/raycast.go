package physics

import (
	"voxterrain/internal/profiling"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	MinReachDistance = 0.1
	MaxReachDistance = 64.0

	stepSize      = float32(0.05)
	refineSteps   = 12
	normalEpsilon = float32(0.25)
)

// Sampler is a continuous density field. ok is false where nothing is
// loaded; such space is treated as empty.
type Sampler interface {
	DensityAt(p mgl32.Vec3) (float32, bool)
}

// SamplerFunc adapts a plain function to Sampler.
type SamplerFunc func(p mgl32.Vec3) (float32, bool)

func (f SamplerFunc) DensityAt(p mgl32.Vec3) (float32, bool) { return f(p) }

// RaycastResult stores the result of a raycast operation
type RaycastResult struct {
	Position mgl32.Vec3 // first point at or below the iso level
	Normal   mgl32.Vec3 // density gradient at Position, toward empty space
	Distance float32
	Hit      bool
}

// solid reports whether p is inside the surface: densities below iso are solid.
func solid(s Sampler, p mgl32.Vec3, iso float32) bool {
	d, ok := s.DensityAt(p)
	return ok && d <= iso
}

// Raycast marches from start along direction and returns the first crossing
// into solid density between minDist and maxDist, refined by bisection.
func Raycast(start, direction mgl32.Vec3, minDist, maxDist, iso float32, s Sampler) RaycastResult {
	defer profiling.Track("physics.Raycast")()
	result := RaycastResult{Hit: false}
	if direction.LenSqr() == 0 {
		return result
	}
	direction = direction.Normalize()
	steps := int(maxDist / stepSize)

	lastEmpty := minDist
	for i := 0; i <= steps; i++ {
		dist := float32(i) * stepSize
		if dist < minDist {
			continue
		}
		if dist > maxDist {
			dist = maxDist
		}

		if !solid(s, start.Add(direction.Mul(dist)), iso) {
			lastEmpty = dist
			continue
		}

		// bisect between the last empty sample and this one
		lo, hi := lastEmpty, dist
		if dist == minDist {
			lo = dist
		}
		for range refineSteps {
			mid := (lo + hi) / 2
			if solid(s, start.Add(direction.Mul(mid)), iso) {
				hi = mid
			} else {
				lo = mid
			}
		}

		result.Position = start.Add(direction.Mul(hi))
		result.Normal = Gradient(s, result.Position, normalEpsilon)
		result.Distance = hi
		result.Hit = true
		return result
	}

	return result
}

// Gradient estimates the normalised density gradient at p with central
// differences. Missing samples count as zero. Returns the zero vector on a
// flat field.
func Gradient(s Sampler, p mgl32.Vec3, eps float32) mgl32.Vec3 {
	sample := func(q mgl32.Vec3) float32 {
		d, _ := s.DensityAt(q)
		return d
	}
	var g mgl32.Vec3
	for a := range 3 {
		var off mgl32.Vec3
		off[a] = eps
		g[a] = sample(p.Add(off)) - sample(p.Sub(off))
	}
	if g.LenSqr() == 0 {
		return g
	}
	return g.Normalize()
}
