package meshing

import (
	"bufio"
	"fmt"
	"io"
)

// WriteOBJ writes meshes as one Wavefront OBJ object each, sharing a single
// vertex index space as the format requires. Nil and empty meshes are skipped.
func WriteOBJ(w io.Writer, names []string, meshes ...*Mesh) error {
	bw := bufio.NewWriter(w)
	base := 1 // OBJ indices are 1-based
	for i, m := range meshes {
		if m.Empty() {
			continue
		}
		name := fmt.Sprintf("chunk_%d", i)
		if i < len(names) {
			name = names[i]
		}
		fmt.Fprintf(bw, "o %s\n", name)
		for _, v := range m.Vertices {
			fmt.Fprintf(bw, "v %g %g %g\n", v[0], v[1], v[2])
		}
		for _, n := range m.Normals {
			fmt.Fprintf(bw, "vn %g %g %g\n", n[0], n[1], n[2])
		}
		for j := 0; j+2 < len(m.Indices); j += 3 {
			a := int(m.Indices[j]) + base
			b := int(m.Indices[j+1]) + base
			c := int(m.Indices[j+2]) + base
			fmt.Fprintf(bw, "f %d//%d %d//%d %d//%d\n", a, a, b, b, c, c)
		}
		base += len(m.Vertices)
	}
	return bw.Flush()
}
