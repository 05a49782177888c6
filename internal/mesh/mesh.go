// Package mesh merges resolved brush faces into an indexed triangle mesh
// grouped by material.
package mesh

import (
	"brush2mdl/internal/mathutil"

	"github.com/go-gl/mathgl/mgl64"
)

// Shading is the per-unit shading flag set, bit-compatible with the
// entity "options" field.
type Shading uint8

const (
	FlatShade Shading = 1 << iota
	WithCelShade
	AsCelShade
	ReverseNormals
)

func (s Shading) Has(f Shading) bool { return s&f != 0 }

// Key identifies a material group.
type Key struct {
	Texture string
	Flags   Shading
}

type Vertex struct {
	Pos    mgl64.Vec3
	Normal mgl64.Vec3
	UV     mgl64.Vec2
}

// Group holds the triangles of one material. Tris index Mesh.Vertices
// and wind counter-clockwise seen from the normal side.
type Group struct {
	Material Key
	Tris     [][3]int
}

type Mesh struct {
	Vertices []Vertex
	Groups   []Group
}

// TriangleCount sums all groups.
func (m *Mesh) TriangleCount() int {
	n := 0
	for _, g := range m.Groups {
		n += len(g.Tris)
	}
	return n
}

// Textures lists distinct texture names in group order.
func (m *Mesh) Textures() []string {
	seen := make(map[string]bool)
	var out []string
	for _, g := range m.Groups {
		if !seen[g.Material.Texture] {
			seen[g.Material.Texture] = true
			out = append(out, g.Material.Texture)
		}
	}
	return out
}

func (m *Mesh) Bounds() mathutil.AABB {
	b := mathutil.EmptyAABB()
	for _, v := range m.Vertices {
		b = b.Extend(v.Pos)
	}
	return b
}

// Centroid is the mean vertex position.
func (m *Mesh) Centroid() mgl64.Vec3 {
	pts := make([]mgl64.Vec3, len(m.Vertices))
	for i, v := range m.Vertices {
		pts[i] = v.Pos
	}
	return mathutil.Centroid(pts)
}

// Translate moves every vertex by d.
func (m *Mesh) Translate(d mgl64.Vec3) {
	for i := range m.Vertices {
		m.Vertices[i].Pos = m.Vertices[i].Pos.Add(d)
	}
}

func (m *Mesh) group(k Key) *Group {
	for i := range m.Groups {
		if m.Groups[i].Material == k {
			return &m.Groups[i]
		}
	}
	m.Groups = append(m.Groups, Group{Material: k})
	return &m.Groups[len(m.Groups)-1]
}

// subset copies the chosen triangles into a new mesh with a compact
// vertex buffer.
func (m *Mesh) subset(pick func(gi, ti int) bool) *Mesh {
	out := &Mesh{}
	remap := make(map[int]int)
	for gi, g := range m.Groups {
		var dst *Group
		for ti, tri := range g.Tris {
			if !pick(gi, ti) {
				continue
			}
			if dst == nil {
				dst = out.group(g.Material)
			}
			var nt [3]int
			for k, vi := range tri {
				ni, ok := remap[vi]
				if !ok {
					ni = len(out.Vertices)
					out.Vertices = append(out.Vertices, m.Vertices[vi])
					remap[vi] = ni
				}
				nt[k] = ni
			}
			dst.Tris = append(dst.Tris, nt)
		}
	}
	return out
}
