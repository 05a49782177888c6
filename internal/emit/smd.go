package emit

import (
	"fmt"
	"io"
	"strconv"

	"brush2mdl/internal/mesh"
	"brush2mdl/internal/skeleton"
)

// MaterialFile is the texture file name a studio compiler looks up.
func MaterialFile(texture string) string {
	return texture + ".bmp"
}

// num formats v with six decimals. Values that round to zero print
// unsigned.
func num(v float64) string {
	s := strconv.FormatFloat(v, 'f', 6, 64)
	if s == "-0.000000" {
		return s[1:]
	}
	return s
}

func writeSkeleton(w io.Writer, bones []skeleton.Bone) {
	fmt.Fprintln(w, "version 1")
	fmt.Fprintln(w, "nodes")
	for i, b := range bones {
		fmt.Fprintf(w, "%d \"%s\" %d\n", i, b.Name, b.Parent)
	}
	fmt.Fprintln(w, "end")
	fmt.Fprintln(w, "skeleton")
	fmt.Fprintln(w, "time 0")
	for i, b := range bones {
		fmt.Fprintf(w, "%d %s %s %s %s %s %s\n", i,
			num(b.Position[0]), num(b.Position[1]), num(b.Position[2]),
			num(b.Rotation[0]), num(b.Rotation[1]), num(b.Rotation[2]))
	}
	fmt.Fprintln(w, "end")
}

// WriteSequence writes a skeleton-only SMD, the rest pose animation.
func WriteSequence(w io.Writer, bones []skeleton.Bone) error {
	writeSkeleton(w, bones)
	return nil
}

// WriteReference writes m as a reference SMD. Every vertex is bound to
// bone 0; the texture coordinate t is written negated.
func WriteReference(w io.Writer, bones []skeleton.Bone, m *mesh.Mesh) error {
	writeSkeleton(w, bones)
	fmt.Fprintln(w, "triangles")
	for _, g := range m.Groups {
		mat := MaterialFile(g.Material.Texture)
		for _, tri := range g.Tris {
			fmt.Fprintln(w, mat)
			for _, vi := range tri {
				v := m.Vertices[vi]
				_, err := fmt.Fprintf(w, "0 %s %s %s %s %s %s %s %s\n",
					num(v.Pos[0]), num(v.Pos[1]), num(v.Pos[2]),
					num(v.Normal[0]), num(v.Normal[1]), num(v.Normal[2]),
					num(v.UV[0]), num(-v.UV[1]))
				if err != nil {
					return err
				}
			}
		}
	}
	_, err := fmt.Fprintln(w, "end")
	return err
}
