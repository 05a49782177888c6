package mesh

import (
	"math"

	"brush2mdl/internal/brush"
	"brush2mdl/internal/mathutil"
)

// Options control assembly of one unit.
type Options struct {
	Shading Shading
	// DoubleSided adds a back-facing copy of every triangle, used for
	// water volumes seen from inside.
	DoubleSided bool
	// Collision keeps tool-textured faces, for clip hull bodies.
	Collision bool
}

// dedup merges vertices added since base, so brushes never share.
type dedup struct {
	eps  float64
	base int
}

func (d *dedup) add(m *Mesh, v Vertex) int {
	for i := d.base; i < len(m.Vertices); i++ {
		o := m.Vertices[i]
		if o.Pos.Sub(v.Pos).Len() <= d.eps &&
			o.Normal.Sub(v.Normal).Len() <= d.eps &&
			math.Abs(o.UV[0]-v.UV[0]) <= d.eps && math.Abs(o.UV[1]-v.UV[1]) <= d.eps {
			return i
		}
	}
	m.Vertices = append(m.Vertices, v)
	return len(m.Vertices) - 1
}

// Assemble fan-triangulates every drawable face of the solids into one
// mesh. Vertices merge only within the brush they came from; normals stay
// flat per face.
func Assemble(solids []*brush.Solid, opts Options, tol mathutil.Tolerance) *Mesh {
	tol = tol.OrDefault()
	m := &Mesh{}
	for _, s := range solids {
		d := &dedup{eps: tol.Merge, base: len(m.Vertices)}
		for fi := range s.Faces {
			f := &s.Faces[fi]
			if !opts.Collision && brush.IsNoRender(f.Texture) {
				continue
			}
			normal := f.Normal
			if opts.Shading.Has(ReverseNormals) {
				normal = normal.Mul(-1)
			}
			idx := make([]int, len(f.Verts))
			for k, vi := range f.Verts {
				idx[k] = d.add(m, Vertex{Pos: s.Vertices[vi], Normal: normal, UV: f.UVs[k]})
			}

			g := m.group(Key{Texture: f.Texture, Flags: opts.Shading})
			for k := 1; k+1 < len(idx); k++ {
				tri := [3]int{idx[0], idx[k], idx[k+1]}
				if opts.Shading.Has(ReverseNormals) {
					tri[1], tri[2] = tri[2], tri[1]
				}
				g.Tris = append(g.Tris, tri)
			}
		}
		if opts.DoubleSided {
			m.addBackFaces(d)
		}
	}
	return m
}

// addBackFaces mirrors the triangles that reference vertices of the
// current brush.
func (m *Mesh) addBackFaces(d *dedup) {
	for gi := range m.Groups {
		g := &m.Groups[gi]
		n := len(g.Tris)
		for ti := 0; ti < n; ti++ {
			tri := g.Tris[ti]
			if tri[0] < d.base {
				continue
			}
			var back [3]int
			for k, vi := range [3]int{tri[0], tri[2], tri[1]} {
				v := m.Vertices[vi]
				v.Normal = v.Normal.Mul(-1)
				back[k] = d.add(m, v)
			}
			g.Tris = append(g.Tris, back)
		}
	}
}

// SplitByVertexLimit partitions the mesh into parts with at most limit
// vertices each. Triangles are never split across parts.
func (m *Mesh) SplitByVertexLimit(limit int) []*Mesh {
	if limit < 3 || len(m.Vertices) <= limit {
		return []*Mesh{m}
	}
	part := make(map[[2]int]int)
	current := 0
	used := make(map[int]bool)
	for gi, g := range m.Groups {
		for ti, tri := range g.Tris {
			fresh := 0
			for _, vi := range tri {
				if !used[vi] {
					fresh++
				}
			}
			if len(used)+fresh > limit {
				current++
				used = make(map[int]bool)
			}
			for _, vi := range tri {
				used[vi] = true
			}
			part[[2]int{gi, ti}] = current
		}
	}
	out := make([]*Mesh, current+1)
	for p := range out {
		p := p
		out[p] = m.subset(func(gi, ti int) bool { return part[[2]int{gi, ti}] == p })
	}
	return out
}

// ChunkTextures partitions the mesh so no part references more than max
// distinct textures.
func (m *Mesh) ChunkTextures(max int) []*Mesh {
	textures := m.Textures()
	if max <= 0 || len(textures) <= max {
		return []*Mesh{m}
	}
	chunkOf := make(map[string]int, len(textures))
	for i, t := range textures {
		chunkOf[t] = i / max
	}
	n := (len(textures) + max - 1) / max
	out := make([]*Mesh, n)
	for c := range out {
		c := c
		out[c] = m.subset(func(gi, _ int) bool { return chunkOf[m.Groups[gi].Material.Texture] == c })
	}
	return out
}
