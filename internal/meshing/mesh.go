package meshing

import (
	"github.com/go-gl/mathgl/mgl32"
)

// VertexStride is number of float32 per vertex (pos.xyz + normal.xyz)
const VertexStride = 6

// Mesh is an indexed triangle mesh with smooth per-vertex normals.
type Mesh struct {
	Vertices []mgl32.Vec3
	Normals  []mgl32.Vec3
	Indices  []uint32
}

// Clear drops all geometry but keeps the backing arrays for reuse.
func (m *Mesh) Clear() {
	if m == nil {
		return
	}
	m.Vertices = m.Vertices[:0]
	m.Normals = m.Normals[:0]
	m.Indices = m.Indices[:0]
}

// TriangleCount returns len(Indices)/3.
func (m *Mesh) TriangleCount() int {
	if m == nil {
		return 0
	}
	return len(m.Indices) / 3
}

// Empty reports whether the mesh has no triangles.
func (m *Mesh) Empty() bool {
	return m.TriangleCount() == 0
}

// BuildMesh deduplicates a triangle soup by vertex key in a single pass and
// computes smooth normals on the result. Positions are taken from the first
// occurrence of each key.
func BuildMesh(tris []Triangle) *Mesh {
	m := &Mesh{
		Vertices: make([]mgl32.Vec3, 0, len(tris)),
		Indices:  make([]uint32, 0, len(tris)*3),
	}
	lookup := make(map[VertexKey]uint32, len(tris))
	add := func(v Vertex) {
		idx, ok := lookup[v.Key]
		if !ok {
			idx = uint32(len(m.Vertices))
			lookup[v.Key] = idx
			m.Vertices = append(m.Vertices, v.Pos)
		}
		m.Indices = append(m.Indices, idx)
	}
	for _, t := range tris {
		add(t.A)
		add(t.B)
		add(t.C)
	}
	m.RecalculateNormals()
	return m
}

// RecalculateNormals averages the area-weighted face normals around every
// vertex. Vertices with no usable contribution get +Y.
func (m *Mesh) RecalculateNormals() {
	if cap(m.Normals) >= len(m.Vertices) {
		m.Normals = m.Normals[:len(m.Vertices)]
		clear(m.Normals)
	} else {
		m.Normals = make([]mgl32.Vec3, len(m.Vertices))
	}
	for i := 0; i+2 < len(m.Indices); i += 3 {
		a, b, c := m.Indices[i], m.Indices[i+1], m.Indices[i+2]
		pa, pb, pc := m.Vertices[a], m.Vertices[b], m.Vertices[c]
		// cross product length is twice the area, so larger faces weigh more
		n := pb.Sub(pa).Cross(pc.Sub(pa))
		m.Normals[a] = m.Normals[a].Add(n)
		m.Normals[b] = m.Normals[b].Add(n)
		m.Normals[c] = m.Normals[c].Add(n)
	}
	for i, n := range m.Normals {
		if n.LenSqr() == 0 {
			m.Normals[i] = mgl32.Vec3{0, 1, 0}
			continue
		}
		m.Normals[i] = n.Normalize()
	}
}

// Interleaved expands the mesh into a non-indexed pos+normal float stream,
// VertexStride floats per vertex, ready for upload or export.
func (m *Mesh) Interleaved() []float32 {
	if m == nil {
		return nil
	}
	out := make([]float32, 0, len(m.Indices)*VertexStride)
	for _, idx := range m.Indices {
		p, n := m.Vertices[idx], m.Normals[idx]
		out = append(out, p[0], p[1], p[2], n[0], n[1], n[2])
	}
	return out
}
