package terrain

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"voxterrain/internal/voxel"
)

var padded = voxel.Vec3i{X: 17, Y: 17, Z: 17}

// hashSamples computes a SHA-256 over the raw float bits of a density array
func hashSamples(samples []float32) [32]byte {
	h := sha256.New()
	var buf [4]byte
	for _, s := range samples {
		binary.LittleEndian.PutUint32(buf[:], math.Float32bits(s))
		h.Write(buf[:])
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

func allGenerators(t *testing.T) map[string]Generator {
	t.Helper()
	out := make(map[string]Generator)
	for _, k := range []Kind{KindFlat, KindNoise, KindComplex} {
		s := DefaultSettings()
		s.Kind = k
		s.Seed = 1337
		g, err := New(s)
		if err != nil {
			t.Fatalf("New(%v): %v", k, err)
		}
		out[k.String()] = g
	}
	return out
}

func TestGeneratorsDeterministic(t *testing.T) {
	coords := []voxel.Vec3i{{}, {X: 1}, {Y: 6}, {X: -3, Y: 7, Z: -2}}
	for name, g := range allGenerators(t) {
		for _, c := range coords {
			first := hashSamples(g.Generate(c, padded))
			for i := 0; i < 10; i++ {
				if got := hashSamples(g.Generate(c, padded)); got != first {
					t.Fatalf("%s: chunk %v not deterministic on run %d", name, c, i)
				}
			}
		}
	}
}

func TestGeneratorsSampleCount(t *testing.T) {
	for name, g := range allGenerators(t) {
		if n := len(g.Generate(voxel.Vec3i{}, padded)); n != padded.Volume() {
			t.Errorf("%s: got %d samples, want %d", name, n, padded.Volume())
		}
	}
}

// Neighbouring chunks must produce identical values on their shared plane.
func TestGeneratorsSharedPlane(t *testing.T) {
	for name, g := range allGenerators(t) {
		a := voxel.Vec3i{X: -1, Y: 6, Z: 2}
		for axis, step := range []voxel.Vec3i{{X: 1}, {Y: 1}, {Z: 1}} {
			b := a.Add(step)
			sa := g.Generate(a, padded)
			sb := g.Generate(b, padded)
			for u := range 17 {
				for v := range 17 {
					var la, lb voxel.Vec3i
					switch axis {
					case 0:
						la, lb = voxel.Vec3i{X: 16, Y: u, Z: v}, voxel.Vec3i{X: 0, Y: u, Z: v}
					case 1:
						la, lb = voxel.Vec3i{X: u, Y: 16, Z: v}, voxel.Vec3i{X: u, Y: 0, Z: v}
					case 2:
						la, lb = voxel.Vec3i{X: u, Y: v, Z: 16}, voxel.Vec3i{X: u, Y: v, Z: 0}
					}
					va := sa[voxel.SampleIndex(la, padded)]
					vb := sb[voxel.SampleIndex(lb, padded)]
					if va != vb {
						t.Fatalf("%s: axis %d plane mismatch at %v/%v: %v != %v", name, axis, la, lb, va, vb)
					}
				}
			}
		}
	}
}

func TestFlatScenario(t *testing.T) {
	g := NewFlat(112)

	// chunk 0 lies entirely below the surface
	for i, v := range g.Generate(voxel.Vec3i{}, padded) {
		if v != -1 {
			t.Fatalf("chunk 0 sample %d = %v, want -1", i, v)
		}
	}

	// chunk y=6 starts at lattice height 96; the column flips at 112-96 = 16
	samples := g.Generate(voxel.Vec3i{Y: 6}, padded)
	for j := range 17 {
		want := float32(-1)
		if 96+j >= 112 {
			want = 1
		}
		if got := samples[voxel.SampleIndex(voxel.Vec3i{X: 3, Y: j, Z: 5}, padded)]; got != want {
			t.Errorf("chunk y=6, j=%d: got %v, want %v", j, got, want)
		}
	}

	// chunk y=7 starts exactly at the surface
	for i, v := range g.Generate(voxel.Vec3i{Y: 7}, padded) {
		if v != 1 {
			t.Fatalf("chunk y=7 sample %d = %v, want 1", i, v)
		}
	}
}

func TestNoiseRange(t *testing.T) {
	g := &Noise{Scale: [3]float64{0.04, 0.05, 0.04}, Offset: [3]float64{1, 1, 1}}
	samples := g.Generate(voxel.Vec3i{X: 2, Y: -1, Z: 5}, padded)
	lo, hi := float32(2), float32(-2)
	for _, v := range samples {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	if lo < -1 || hi > 1 {
		t.Errorf("noise out of range: [%v, %v]", lo, hi)
	}
	if lo == hi {
		t.Errorf("noise is constant: %v", lo)
	}
}

func TestComplexSurfaceUntouchedByCaves(t *testing.T) {
	s := DefaultSettings()
	s.Seed = 99
	g, err := New(s)
	if err != nil {
		t.Fatal(err)
	}
	c := g.(*Complex)
	for _, cy := range []int{5, 6, 7, 8} {
		coord := voxel.Vec3i{X: 1, Y: cy, Z: -1}
		samples := c.Generate(coord, padded)
		for k := range 17 {
			for i := range 17 {
				x, z := 16+i, -16+k
				surface := c.SurfaceAt(x, z)
				for j := range 17 {
					y := float64(cy*16 + j)
					v := float64(samples[voxel.SampleIndex(voxel.Vec3i{X: i, Y: j, Z: k}, padded)])
					if y+1 >= surface {
						want := math.Max(-1, math.Min(1, y-surface))
						if math.Abs(v-want) > 1e-5 {
							t.Fatalf("column (%d,%d) y=%v: got %v, want %v", x, z, y, v, want)
						}
					} else if v < -c.CaveThreshold-1e-5 || v > 1-c.CaveThreshold+1e-5 {
						t.Fatalf("cave value %v out of range at y=%v", v, y)
					}
				}
			}
		}
	}
}

func TestComplexSurfaceRange(t *testing.T) {
	c := &Complex{SurfaceLevel: 112, HeightAmplitude: 30, HeightScale: 0.005, Octaves: 4}
	for x := -200; x < 200; x += 7 {
		h := c.SurfaceAt(x, x*3)
		// octave sum stays within [0, 1+1/4+1/16+1/64]
		if h < 112-30 || h > 112+30*(2*1.328125-1) {
			t.Fatalf("surface %v out of range at x=%d", h, x)
		}
	}
}

func TestParseKind(t *testing.T) {
	cases := map[string]Kind{"flat": KindFlat, "Noise": KindNoise, "perlin": KindNoise, " complex ": KindComplex}
	for in, want := range cases {
		got, err := ParseKind(in)
		if err != nil || got != want {
			t.Errorf("ParseKind(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseKind("erosion"); !errors.Is(err, ErrUnknownGenerator) {
		t.Errorf("expected ErrUnknownGenerator, got %v", err)
	}
	if _, err := New(Settings{Kind: Kind(42)}); !errors.Is(err, ErrUnknownGenerator) {
		t.Errorf("expected ErrUnknownGenerator from New, got %v", err)
	}
}

func BenchmarkComplexGenerate(b *testing.B) {
	s := DefaultSettings()
	g, _ := New(s)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = g.Generate(voxel.Vec3i{X: i % 8, Y: 6}, padded)
	}
}
