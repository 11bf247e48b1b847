package game

import (
	"fmt"
	"math"

	"voxterrain/internal/config"

	"github.com/go-gl/mathgl/mgl32"
)

// TargetProvider yields the streaming target for a tick.
type TargetProvider interface {
	At(tick int) mgl32.Vec3
}

// FixedPoint never moves.
type FixedPoint mgl32.Vec3

func (p FixedPoint) At(int) mgl32.Vec3 { return mgl32.Vec3(p) }

// LinearPath moves at a constant velocity in world units per tick.
type LinearPath struct {
	Start    mgl32.Vec3
	Velocity mgl32.Vec3
}

func (p LinearPath) At(tick int) mgl32.Vec3 {
	return p.Start.Add(p.Velocity.Mul(float32(tick)))
}

// OrbitPath circles Center in the XZ plane, one revolution per Period ticks.
type OrbitPath struct {
	Center mgl32.Vec3
	Radius float32
	Period int
}

func (p OrbitPath) At(tick int) mgl32.Vec3 {
	if p.Period <= 0 {
		return p.Center
	}
	a := 2 * math.Pi * float64(tick%p.Period) / float64(p.Period)
	return p.Center.Add(mgl32.Vec3{
		p.Radius * float32(math.Cos(a)),
		0,
		p.Radius * float32(math.Sin(a)),
	})
}

// NewTargetProvider builds the path described by the session config.
func NewTargetProvider(c config.PathConfig) (TargetProvider, error) {
	switch c.Kind {
	case "", "fixed":
		return FixedPoint(c.Start), nil
	case "linear":
		return LinearPath{Start: c.Start, Velocity: c.Velocity}, nil
	case "orbit":
		return OrbitPath{Center: c.Center, Radius: c.Radius, Period: c.Period}, nil
	}
	return nil, fmt.Errorf("unknown path kind %q", c.Kind)
}
