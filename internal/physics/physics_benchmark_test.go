package physics

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func BenchmarkRaycast(b *testing.B) {
	// Build a simple wall at z = 5
	wall := SamplerFunc(func(p mgl32.Vec3) (float32, bool) {
		return 5 - p.Z(), true
	})
	start := mgl32.Vec3{0, 8, 0}
	dir := mgl32.Vec3{0, 0, 1}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Raycast(start, dir, 0.1, 10.0, 0, wall)
	}
}
