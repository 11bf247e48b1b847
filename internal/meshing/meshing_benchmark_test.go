package meshing

import (
	"testing"

	"voxterrain/internal/terrain"
	"voxterrain/internal/voxel"

	"github.com/go-gl/mathgl/mgl32"
)

func terrainRequest(gen terrain.Generator, chunk voxel.Vec3i) *Request {
	return &Request{
		Samples:    gen.Generate(chunk, res16.Add(voxel.Splat(1))),
		Resolution: res16,
		Chunk:      chunk,
		VoxelSize:  mgl32.Vec3{1, 1, 1},
	}
}

func BenchmarkBuildTerrainChunk(b *testing.B) {
	gen, err := terrain.New(terrain.DefaultSettings())
	if err != nil {
		b.Fatal(err)
	}
	// chunk y=6 holds lattice 96..112, where the default surface sits
	req := terrainRequest(gen, voxel.Vec3i{Y: 6})
	m := NewMesher(nil)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _, _ = m.Build(req)
	}
}

func BenchmarkWorkerPool(b *testing.B) {
	gen := &terrain.Noise{Scale: [3]float64{0.04, 0.05, 0.04}, Offset: [3]float64{1, 1, 1}}
	var coords []voxel.Vec3i
	var reqs []*Request
	for x := range 4 {
		for z := range 4 {
			c := voxel.Vec3i{X: x, Z: z}
			coords = append(coords, c)
			reqs = append(reqs, terrainRequest(gen, c))
		}
	}
	pool := NewWorkerPool(NewMesher(nil), 4, 16)
	defer pool.Shutdown()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = pool.BuildAll(coords, reqs)
	}
}
