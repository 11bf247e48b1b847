package world

import (
	"errors"
	"fmt"
	"strings"

	"voxterrain/internal/voxel"
)

// ErrInvalidRadius is returned by NewStencil for radii outside (0, min(resolution)).
var ErrInvalidRadius = errors.New("world: invalid stencil radius")

// Shape selects the stencil's per-voxel rule.
type Shape int

const (
	Cube Shape = iota
	Sphere
)

func (s Shape) String() string {
	switch s {
	case Cube:
		return "cube"
	case Sphere:
		return "sphere"
	}
	return fmt.Sprintf("shape(%d)", int(s))
}

// ParseShape accepts "cube" and "sphere".
func ParseShape(s string) (Shape, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cube":
		return Cube, nil
	case "sphere":
		return Sphere, nil
	}
	return 0, fmt.Errorf("world: unknown stencil shape %q", s)
}

// Stencil is an additive edit brush measured in voxels.
type Stencil struct {
	Shape  Shape
	Radius int
	Fill   float32 // density delta at full strength; positive carves, negative adds material
}

// NewStencil validates radius against the chunk resolution: a stencil must
// fit inside one chunk along every axis.
func NewStencil(shape Shape, radius int, fill float32, resolution voxel.Vec3i) (*Stencil, error) {
	if shape != Cube && shape != Sphere {
		return nil, fmt.Errorf("world: unknown stencil shape %v", shape)
	}
	if radius <= 0 || radius >= resolution.MinComponent() {
		return nil, fmt.Errorf("%w: %d (resolution %v)", ErrInvalidRadius, radius, resolution)
	}
	return &Stencil{Shape: shape, Radius: radius, Fill: fill}, nil
}

// Bounds returns the inclusive box the stencil may touch around center:
// center-(r+1) to center+(r-1).
func (s *Stencil) Bounds(center voxel.Vec3i) (start, end voxel.Vec3i) {
	return center.Sub(voxel.Splat(s.Radius + 1)), center.Add(voxel.Splat(s.Radius - 1))
}

// Delta returns the density change at offset d from the centre. Only
// offsets inside Bounds are ever passed in.
func (s *Stencil) Delta(d voxel.Vec3i) float32 {
	if s.Shape == Cube {
		return s.Fill
	}
	return s.Falloff(d) * s.Fill
}

// Falloff is the sphere weight 1 - |d|²/(r-1)², clamped at zero. A radius-1
// sphere only reaches its centre.
func (s *Stencil) Falloff(d voxel.Vec3i) float32 {
	inner := s.Radius - 1
	if inner == 0 {
		if d == (voxel.Vec3i{}) {
			return 1
		}
		return 0
	}
	f := 1 - float32(d.LenSq())/float32(inner*inner)
	if f <= 0 {
		return 0
	}
	return f
}

// applyLocal adds the stencil to samples for a chunk whose local frame puts
// the stencil at center. It reports whether any sample changed.
func (s *Stencil) applyLocal(samples []float32, center, res voxel.Vec3i) bool {
	padded := res.Add(voxel.Splat(1))
	changed := false
	s.each(center, res, func(p voxel.Vec3i, delta float32) bool {
		samples[voxel.SampleIndex(p, padded)] += delta
		changed = true
		return true
	})
	return changed
}

// affects reports whether applyLocal would change any sample of a chunk.
func (s *Stencil) affects(center, res voxel.Vec3i) bool {
	hit := false
	s.each(center, res, func(voxel.Vec3i, float32) bool {
		hit = true
		return false
	})
	return hit
}

// each calls f for every local point of the clamped box with a non-zero
// delta, until f returns false.
func (s *Stencil) each(center, res voxel.Vec3i, f func(p voxel.Vec3i, delta float32) bool) {
	lo, hi, ok := s.clampedBounds(center, res)
	if !ok {
		return
	}
	for z := lo.Z; z <= hi.Z; z++ {
		for y := lo.Y; y <= hi.Y; y++ {
			for x := lo.X; x <= hi.X; x++ {
				p := voxel.Vec3i{X: x, Y: y, Z: z}
				delta := s.Delta(p.Sub(center))
				if delta == 0 {
					continue
				}
				if !f(p, delta) {
					return
				}
			}
		}
	}
}

// clampedBounds intersects Bounds(center) with the chunk's [0, res] range.
func (s *Stencil) clampedBounds(center, res voxel.Vec3i) (lo, hi voxel.Vec3i, ok bool) {
	start, end := s.Bounds(center)
	lo = start.Max(voxel.Vec3i{})
	hi = end.Min(res)
	return lo, hi, lo.X <= hi.X && lo.Y <= hi.Y && lo.Z <= hi.Z
}
