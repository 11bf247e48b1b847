package meshing

import (
	"voxterrain/internal/voxel"

	"github.com/go-gl/mathgl/mgl32"
)

// Cube corner offsets.
var cubeCorners = [8]voxel.Vec3i{
	{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 1, Y: 1, Z: 0}, {X: 0, Y: 1, Z: 0},
	{X: 0, Y: 0, Z: 1}, {X: 1, Y: 0, Z: 1}, {X: 1, Y: 1, Z: 1}, {X: 0, Y: 1, Z: 1},
}

// Freudenthal split of a cube into six tetrahedra around the 0-6 diagonal.
// Each tetrahedron is a monotone chain of corners, so every edge runs from a
// lower to a higher lattice point and therefore from a lower to a higher
// sample index.
var cubeTetrahedra = [6][4]int{
	{0, 1, 2, 6},
	{0, 1, 5, 6},
	{0, 3, 2, 6},
	{0, 3, 7, 6},
	{0, 4, 5, 6},
	{0, 4, 7, 6},
}

// Tetrahedra is the CPU reference backend: marching tetrahedra over the
// padded density grid. It needs no lookup table and produces a watertight
// surface whose vertices lie on lattice edges, which is all the Mesher
// contract asks for.
type Tetrahedra struct{}

type corner struct {
	idx int32      // padded sample index
	pos mgl32.Vec3 // global lattice position
	val float32
}

func (Tetrahedra) Polygonize(req *Request) ([]Triangle, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	padded := req.Padded()
	base := req.Chunk.Mul(req.Resolution)
	iso := req.IsoLevel

	tris := make([]Triangle, 0, 256)
	var cube [8]corner
	for z := range req.Resolution.Z {
		for y := range req.Resolution.Y {
			for x := range req.Resolution.X {
				cell := voxel.Vec3i{X: x, Y: y, Z: z}
				above := 0
				for c, off := range cubeCorners {
					local := cell.Add(off)
					idx := voxel.SampleIndex(local, padded)
					g := base.Add(local)
					cube[c] = corner{
						idx: int32(idx),
						pos: mgl32.Vec3{float32(g.X), float32(g.Y), float32(g.Z)},
						val: req.Samples[idx],
					}
					if cube[c].val > iso {
						above++
					}
				}
				if above == 0 || above == 8 {
					continue
				}
				for _, tet := range cubeTetrahedra {
					tris = polygonizeTet(req, tris, cube[tet[0]], cube[tet[1]], cube[tet[2]], cube[tet[3]])
				}
			}
		}
	}
	return tris, nil
}

func polygonizeTet(req *Request, tris []Triangle, p0, p1, p2, p3 corner) []Triangle {
	iso := req.IsoLevel
	var in, out [4]corner
	ni, no := 0, 0
	for _, p := range [4]corner{p0, p1, p2, p3} {
		if p.val > iso {
			in[ni] = p
			ni++
		} else {
			out[no] = p
			no++
		}
	}

	// Higher density lies in the direction from the outside corners to the
	// inside corners.
	var ci, co mgl32.Vec3
	for i := range ni {
		ci = ci.Add(in[i].pos)
	}
	for i := range no {
		co = co.Add(out[i].pos)
	}

	switch ni {
	case 0, 4:
		return tris
	case 1, 3:
		var apex corner
		var rest [3]corner
		if ni == 1 {
			apex, rest = in[0], [3]corner{out[0], out[1], out[2]}
		} else {
			apex, rest = out[0], [3]corner{in[0], in[1], in[2]}
		}
		up := ci.Mul(1 / float32(ni)).Sub(co.Mul(1 / float32(no)))
		return emitTriangle(req, tris, up,
			edgeVertex(req, apex, rest[0]),
			edgeVertex(req, apex, rest[1]),
			edgeVertex(req, apex, rest[2]),
		)
	default:
		// Two in, two out: the crossed edges form a quad a-c, a-d, b-d, b-c.
		up := ci.Mul(0.5).Sub(co.Mul(0.5))
		ac := edgeVertex(req, in[0], out[0])
		ad := edgeVertex(req, in[0], out[1])
		bd := edgeVertex(req, in[1], out[1])
		bc := edgeVertex(req, in[1], out[0])
		tris = emitTriangle(req, tris, up, ac, ad, bd)
		return emitTriangle(req, tris, up, ac, bd, bc)
	}
}

// edgeVertex interpolates the iso crossing on the edge between a and b. The
// interpolation always runs from the lower sample index so both chunks (and
// both tetrahedra) sharing an edge compute the same bits.
func edgeVertex(req *Request, a, b corner) Vertex {
	if b.idx < a.idx {
		a, b = b, a
	}
	t := float32(0.5)
	if a.val != b.val {
		t = (req.IsoLevel - a.val) / (b.val - a.val)
	}
	g := a.pos.Add(b.pos.Sub(a.pos).Mul(t))
	return Vertex{
		Pos: req.latticeToWorld(g),
		Key: VertexKey{A: a.idx, B: b.idx},
	}
}

// emitTriangle appends (a,b,c) wound so its face normal points along up.
// Triangles that collapse to a point or a line are skipped.
func emitTriangle(req *Request, tris []Triangle, up mgl32.Vec3, a, b, c Vertex) []Triangle {
	if a.Key == b.Key || b.Key == c.Key || a.Key == c.Key {
		return tris
	}
	n := b.Pos.Sub(a.Pos).Cross(c.Pos.Sub(a.Pos))
	if n.LenSqr() == 0 {
		return tris
	}
	// up is in lattice space; scale into world space before comparing
	upWorld := mgl32.Vec3{up.X() * req.VoxelSize.X(), up.Y() * req.VoxelSize.Y(), up.Z() * req.VoxelSize.Z()}
	if n.Dot(upWorld) < 0 {
		b, c = c, b
	}
	return append(tris, Triangle{A: a, B: b, C: c})
}
