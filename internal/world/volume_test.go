package world

import (
	"context"
	"errors"
	"sync"
	"testing"

	"voxterrain/internal/config"
	"voxterrain/internal/meshing"
	"voxterrain/internal/store"
	"voxterrain/internal/terrain"
	"voxterrain/internal/voxel"

	"github.com/go-gl/mathgl/mgl32"
)

func testLayout() voxel.Layout {
	return voxel.Layout{
		ChunkSize:   mgl32.Vec3{16, 16, 16},
		ChunkVoxels: voxel.Vec3i{X: 16, Y: 16, Z: 16},
	}
}

// countingBackend records how often each chunk was polygonized.
type countingBackend struct {
	mu    sync.Mutex
	calls map[ChunkCoord]int
}

func newCountingBackend() *countingBackend {
	return &countingBackend{calls: make(map[ChunkCoord]int)}
}

func (b *countingBackend) Polygonize(req *meshing.Request) ([]meshing.Triangle, error) {
	b.mu.Lock()
	b.calls[req.Chunk]++
	b.mu.Unlock()
	return meshing.Tetrahedra{}.Polygonize(req)
}

func (b *countingBackend) count(c ChunkCoord) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[c]
}

func noiseGen() terrain.Generator {
	return &terrain.Noise{
		Scale:  [3]float64{0.04, 0.05, 0.04},
		Offset: [3]float64{1, 1, 1},
		Seed:   7,
	}
}

type volumeOpt func(*Options)

func newTestVolume(t *testing.T, gen terrain.Generator, opts ...volumeOpt) (*Volume, *countingBackend) {
	t.Helper()
	backend := newCountingBackend()
	o := Options{
		Layout:    testLayout(),
		MinBound:  voxel.Vec3i{X: -8, Y: -8, Z: -8},
		MaxBound:  voxel.Vec3i{X: 8, Y: 15, Z: 8},
		Stream:    config.NewStreamSettings(2, 3, 0),
		Generator: gen,
		Mesher:    meshing.NewMesher(backend),
	}
	for _, opt := range opts {
		opt(&o)
	}
	v, err := NewVolume(o)
	if err != nil {
		t.Fatalf("NewVolume: %v", err)
	}
	t.Cleanup(v.Close)
	return v, backend
}

func mustTick(t *testing.T, v *Volume, p mgl32.Vec3) TickStats {
	t.Helper()
	stats, err := v.Tick(p)
	if err != nil {
		t.Fatalf("Tick(%v): %v", p, err)
	}
	return stats
}

func TestFirstTickStreamsFlatTerrain(t *testing.T) {
	v, _ := newTestVolume(t, terrain.NewFlat(112))
	stats := mustTick(t, v, mgl32.Vec3{0, 96, 0})

	if !stats.Streamed || stats.Target != (ChunkCoord{Y: 6}) {
		t.Fatalf("stats = %+v", stats)
	}
	// load distance 2 keeps offsets in (-2, 2) on every axis
	if stats.Created != 27 || stats.Meshed != 27 {
		t.Errorf("created %d, meshed %d; want 27 each", stats.Created, stats.Meshed)
	}
	if v.ActiveCount() != 27 {
		t.Errorf("active = %d", v.ActiveCount())
	}

	surface := v.Chunk(ChunkCoord{Y: 6})
	l := v.Layout()
	for j := range 17 {
		want := float32(-1)
		if j == 16 {
			want = 1
		}
		if got := surface.Sample(l.SampleIndex(voxel.Vec3i{X: 4, Y: j, Z: 9})); got != want {
			t.Errorf("j=%d: density %v, want %v", j, got, want)
		}
	}
	if surface.Mesh().Empty() {
		t.Errorf("surface chunk has no geometry")
	}
	for _, y := range []int{5, 7} {
		if m := v.Chunk(ChunkCoord{Y: y}).Mesh(); m == nil || !m.Empty() {
			t.Errorf("chunk y=%d should have an empty mesh", y)
		}
	}

	again := mustTick(t, v, mgl32.Vec3{3, 90, -2})
	if again.Streamed || again.Meshed != 0 {
		t.Errorf("same target chunk should not stream: %+v", again)
	}
}

func TestStreamingLifecycle(t *testing.T) {
	v, backend := newTestVolume(t, noiseGen())
	home := mgl32.Vec3{0, 96, 0}
	c0 := ChunkCoord{Y: 6}

	mustTick(t, v, home)
	ch := v.Chunk(c0)
	if ch.State() != Active || ch.Mesh() == nil {
		t.Fatalf("chunk at target should be active and meshed")
	}
	before := ch.SamplesCopy()

	stats := mustTick(t, v, mgl32.Vec3{80, 96, 0})
	if stats.Target != (ChunkCoord{X: 5, Y: 6}) {
		t.Fatalf("target = %v", stats.Target)
	}
	if ch.State() != Disabled {
		t.Fatalf("chunk 5 away with destroy distance 3 should be disabled")
	}
	if ch.Mesh() != nil {
		t.Errorf("disabled chunk kept its mesh")
	}
	after := ch.SamplesCopy()
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("disable changed density at %d", i)
		}
	}
	if v.Chunk(c0) != ch {
		t.Fatalf("disabled chunk was replaced")
	}

	calls := backend.count(c0)
	stats = mustTick(t, v, home)
	if ch.State() != Active {
		t.Fatalf("chunk should be active again")
	}
	if got := backend.count(c0) - calls; got != 1 {
		t.Errorf("re-enable meshed %d times, want 1", got)
	}
	if stats.Created != 0 {
		t.Errorf("returning should not create chunks, created %d", stats.Created)
	}
	if stats.Enabled == 0 {
		t.Errorf("expected enabled chunks in %+v", stats)
	}
}

func TestStreamingClampsToBounds(t *testing.T) {
	v, _ := newTestVolume(t, noiseGen(), func(o *Options) {
		o.MinBound = voxel.Vec3i{}
		o.MaxBound = voxel.Vec3i{X: 2, Y: 2, Z: 2}
	})
	mustTick(t, v, mgl32.Vec3{-500, -500, -500})
	for _, ch := range v.Chunks() {
		if !v.InBounds(ch.Coord) {
			t.Fatalf("chunk %v created outside bounds", ch.Coord)
		}
	}
	if v.Chunk(voxel.Vec3i{}) == nil {
		t.Errorf("clamped target chunk should exist")
	}
}

func TestQueueDeduplicates(t *testing.T) {
	q := newRemeshQueue()
	a, b := ChunkCoord{X: 1}, ChunkCoord{Y: 2}
	if !q.push(a) || !q.push(b) || q.push(a) {
		t.Fatalf("push dedup broken")
	}
	if q.len() != 2 {
		t.Fatalf("len = %d", q.len())
	}
	batch := q.take()
	if len(batch) != 2 || batch[0] != a || batch[1] != b {
		t.Fatalf("batch = %v", batch)
	}
	if q.len() != 0 || q.contains(a) {
		t.Errorf("take did not empty the queue")
	}
	if !q.push(a) {
		t.Errorf("coordinate should be queueable again after take")
	}
}

func TestRepeatedEditsMeshOncePerTick(t *testing.T) {
	v, backend := newTestVolume(t, noiseGen())
	home := mgl32.Vec3{0, 96, 0}
	mustTick(t, v, home)

	s, err := NewStencil(Sphere, 3, -0.5, v.Layout().ChunkVoxels)
	if err != nil {
		t.Fatal(err)
	}
	pos := mgl32.Vec3{7.6, 100, 0}
	touched := v.ApplyStencil(pos, s)
	v.ApplyStencil(pos, s)
	if len(touched) < 2 {
		t.Fatalf("edit at a chunk seam touched %v", touched)
	}
	if v.PendingMeshes() != len(touched) {
		t.Fatalf("pending = %d, want %d", v.PendingMeshes(), len(touched))
	}

	before := make(map[ChunkCoord]int)
	for _, c := range touched {
		before[c] = backend.count(c)
	}
	stats := mustTick(t, v, home)
	if stats.Meshed != len(touched) {
		t.Errorf("meshed %d, want %d", stats.Meshed, len(touched))
	}
	for _, c := range touched {
		if got := backend.count(c) - before[c]; got != 1 {
			t.Errorf("chunk %v meshed %d times", c, got)
		}
	}
	if v.PendingMeshes() != 0 {
		t.Errorf("queue not drained")
	}
}

func TestEditCreatesDisabledChunk(t *testing.T) {
	v, backend := newTestVolume(t, noiseGen())
	s, _ := NewStencil(Cube, 2, 1, v.Layout().ChunkVoxels)
	far := mgl32.Vec3{100, 100, 100}

	touched := v.ApplyStencil(far, s)
	if len(touched) != 1 || touched[0] != (ChunkCoord{X: 6, Y: 6, Z: 6}) {
		t.Fatalf("touched = %v", touched)
	}
	ch := v.Chunk(touched[0])
	if ch == nil || ch.State() != Disabled || !ch.Edited() {
		t.Fatalf("edit-created chunk should exist, be disabled and edited")
	}
	if !v.IsPending(touched[0]) {
		t.Fatalf("edit-created chunk should be queued")
	}

	mustTick(t, v, mgl32.Vec3{0, 96, 0})
	if backend.count(touched[0]) != 0 {
		t.Errorf("disabled chunk was meshed")
	}
	if v.PendingMeshes() != 0 {
		t.Errorf("drain left %d pending", v.PendingMeshes())
	}

	mustTick(t, v, far)
	if ch.State() != Active || backend.count(touched[0]) != 1 {
		t.Errorf("streaming in should enable and mesh once, got state %v calls %d",
			ch.State(), backend.count(touched[0]))
	}
}

func TestFlushAndReload(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	withStore := func(o *Options) { o.Store = mem }

	v, _ := newTestVolume(t, noiseGen(), withStore)
	home := mgl32.Vec3{0, 96, 0}
	mustTick(t, v, home)
	s, _ := NewStencil(Cube, 3, 0.25, v.Layout().ChunkVoxels)
	touched := v.ApplyStencil(mgl32.Vec3{3.2, 100.7, -5.1}, s)
	if len(touched) != 2 {
		t.Fatalf("touched = %v", touched)
	}

	n, err := v.Flush(ctx)
	if err != nil || n != len(touched) {
		t.Fatalf("Flush = %d, %v", n, err)
	}
	for _, c := range touched {
		if v.Chunk(c).Edited() {
			t.Errorf("chunk %v still marked edited after flush", c)
		}
	}
	if n, _ := v.Flush(ctx); n != 0 {
		t.Errorf("second flush wrote %d chunks", n)
	}

	v2, _ := newTestVolume(t, noiseGen(), withStore)
	stats := mustTick(t, v2, home)
	if stats.Loaded != len(touched) {
		t.Errorf("loaded %d chunks from store, want %d", stats.Loaded, len(touched))
	}
	for _, c := range touched {
		a, b := v.Chunk(c).SamplesCopy(), v2.Chunk(c).SamplesCopy()
		for i := range a {
			if a[i] != b[i] {
				t.Fatalf("chunk %v sample %d differs after reload", c, i)
			}
		}
	}
}

type emptyGenerator struct{}

func (emptyGenerator) Generate(voxel.Vec3i, voxel.Vec3i) []float32 { return nil }

func TestMissingDensityIsFatal(t *testing.T) {
	v, _ := newTestVolume(t, emptyGenerator{})
	_, err := v.Tick(mgl32.Vec3{})
	if !errors.Is(err, meshing.ErrMissingDensity) {
		t.Fatalf("got %v, want ErrMissingDensity", err)
	}
}

func TestParallelMeshingMatchesSerial(t *testing.T) {
	serial, _ := newTestVolume(t, noiseGen())
	parallel, _ := newTestVolume(t, noiseGen(), func(o *Options) { o.MeshWorkers = 4 })
	p := mgl32.Vec3{10, 60, -20}
	a := mustTick(t, serial, p)
	b := mustTick(t, parallel, p)
	if a.Meshed != b.Meshed || a.Triangles != b.Triangles {
		t.Errorf("serial %+v vs parallel %+v", a, b)
	}
}

func TestDensityAt(t *testing.T) {
	v, _ := newTestVolume(t, terrain.NewFlat(112))
	if _, ok := v.DensityAt(mgl32.Vec3{0, 100, 0}); ok {
		t.Fatalf("density before any chunk exists")
	}
	mustTick(t, v, mgl32.Vec3{0, 96, 0})

	l := v.Layout()
	// lattice y 111 and 112 sit at world 103 and 104
	cases := []struct {
		y    float32
		want float32
	}{
		{103, -1},
		{104, 1},
		{103.5, 0},
		{103.25, -0.5},
	}
	for _, c := range cases {
		got, ok := v.DensityAt(mgl32.Vec3{2.3, c.y, -1.7})
		if !ok || got != c.want {
			t.Errorf("DensityAt(y=%v) = %v, %v; want %v", c.y, got, ok, c.want)
		}
	}

	// lattice samples agree with the owning chunk
	g := voxel.Vec3i{X: 5, Y: 111, Z: -3}
	got, ok := v.LatticeSample(g)
	if !ok || got != -1 {
		t.Errorf("LatticeSample(%v) = %v, %v", g, got, ok)
	}
	w := l.LatticeToWorld(voxel.Vec3i{}, mgl32.Vec3{5, 111, -3})
	if d, _ := v.DensityAt(w); d != got {
		t.Errorf("DensityAt(%v) = %v, want %v", w, d, got)
	}
}
