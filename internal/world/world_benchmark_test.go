package world

import (
	"testing"

	"voxterrain/internal/config"
	"voxterrain/internal/meshing"
	"voxterrain/internal/voxel"

	"github.com/go-gl/mathgl/mgl32"
)

func benchVolume(b *testing.B, workers int) *Volume {
	b.Helper()
	v, err := NewVolume(Options{
		Layout:      testLayout(),
		MinBound:    voxel.Vec3i{X: -64, Y: 0, Z: -64},
		MaxBound:    voxel.Vec3i{X: 64, Y: 15, Z: 64},
		Stream:      config.NewStreamSettings(2, 3, 0),
		Generator:   noiseGen(),
		Mesher:      meshing.NewMesher(nil),
		MeshWorkers: workers,
	})
	if err != nil {
		b.Fatal(err)
	}
	b.Cleanup(v.Close)
	return v
}

// Benchmark streaming along a line so every tick crosses into a new chunk.
func BenchmarkStreamAround(b *testing.B) {
	v := benchVolume(b, 1)
	// Warm-up populate once
	if _, err := v.Tick(mgl32.Vec3{0, 64, 0}); err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		// back and forth keeps chunk creation bounded
		x := float32(16 * (i%8 - 4))
		if _, err := v.Tick(mgl32.Vec3{x, 64, 0}); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkApplyStencilAndRemesh(b *testing.B) {
	v := benchVolume(b, 4)
	if _, err := v.Tick(mgl32.Vec3{0, 64, 0}); err != nil {
		b.Fatal(err)
	}
	st, err := NewStencil(Sphere, 5, 0.5, v.Layout().ChunkVoxels)
	if err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		// a corner point touches eight chunks
		v.ApplyStencil(mgl32.Vec3{8, 72, 8}, st)
		if _, err := v.Tick(mgl32.Vec3{0, 64, 0}); err != nil {
			b.Fatal(err)
		}
	}
}
