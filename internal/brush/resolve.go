package brush

import (
	"fmt"
	"math"
	"sort"

	"brush2mdl/internal/converr"
	"brush2mdl/internal/mathutil"

	"github.com/go-gl/mathgl/mgl64"
)

// TextureSizer reports source texture dimensions for UV normalization.
type TextureSizer interface {
	TextureSize(name string) (w, h int, ok bool)
}

// ResolvedFace is the polygon a plane contributes to the hull. Verts index
// into Solid.Vertices and wind counter-clockwise seen from outside.
type ResolvedFace struct {
	Plane   int
	Normal  mgl64.Vec3
	Texture string
	Verts   []int
	UVs     []mgl64.Vec2
}

// Solid is a resolved convex polyhedron.
type Solid struct {
	Brush    *Brush
	Vertices []mgl64.Vec3
	Edges    [][2]int
	Faces    []ResolvedFace
}

// Positions returns the face polygon in world space.
func (s *Solid) Positions(f *ResolvedFace) []mgl64.Vec3 {
	out := make([]mgl64.Vec3, len(f.Verts))
	for i, vi := range f.Verts {
		out[i] = s.Vertices[vi]
	}
	return out
}

// Bounds returns the box around all vertices.
func (s *Solid) Bounds() mathutil.AABB {
	b := mathutil.EmptyAABB()
	for _, v := range s.Vertices {
		b = b.Extend(v)
	}
	return b
}

// Centroid is the mean of the hull vertices.
func (s *Solid) Centroid() mgl64.Vec3 {
	return mathutil.Centroid(s.Vertices)
}

// Volume of the hull, from the divergence theorem over fan triangles.
func (s *Solid) Volume() float64 {
	var vol float64
	for i := range s.Faces {
		f := &s.Faces[i]
		a := s.Vertices[f.Verts[0]]
		for k := 1; k+1 < len(f.Verts); k++ {
			b := s.Vertices[f.Verts[k]]
			c := s.Vertices[f.Verts[k+1]]
			vol += a.Dot(b.Cross(c))
		}
	}
	return vol / 6
}

func degenerate(b *Brush, format string, args ...any) error {
	return converr.New(converr.DegenerateBrush, fmt.Errorf(format, args...)).WithBrush(b.Index, b.Line)
}

// Resolve intersects the brush half-spaces into a closed convex solid.
// sizes may be nil, in which case UVs stay in texels.
func Resolve(b *Brush, sizes TextureSizer, tol mathutil.Tolerance) (*Solid, error) {
	tol = tol.OrDefault()
	n := len(b.Faces)
	if n < 4 {
		return nil, degenerate(b, "%d planes, need at least 4", n)
	}
	onEps := math.Max(tol.Plane, tol.Merge)

	// A plane repeated later in the list contributes nothing.
	redundant := make([]bool, n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			pi, pj := b.Faces[i].Plane, b.Faces[j].Plane
			if pi.Normal.ApproxEqualThreshold(pj.Normal, tol.Plane) && math.Abs(pi.Dist-pj.Dist) <= onEps {
				redundant[j] = true
			}
		}
	}

	var verts []mgl64.Vec3
	for i := 0; i < n; i++ {
		if redundant[i] {
			continue
		}
		for j := i + 1; j < n; j++ {
			if redundant[j] {
				continue
			}
			for k := j + 1; k < n; k++ {
				if redundant[k] {
					continue
				}
				p, ok := mathutil.Intersect3(b.Faces[i].Plane, b.Faces[j].Plane, b.Faces[k].Plane, tol.Plane)
				if !ok || !withinRange(p, tol.MaxCoord) || !insideAll(b, p, tol.Plane) {
					continue
				}
				verts = addUnique(verts, p, tol.Merge)
			}
		}
	}

	s := &Solid{Brush: b, Vertices: verts}
	for pi := 0; pi < n; pi++ {
		if redundant[pi] {
			continue
		}
		face := &b.Faces[pi]
		var idx []int
		for vi, v := range verts {
			if face.Plane.On(v, onEps) {
				idx = append(idx, vi)
			}
		}
		// Fewer than three points: the plane only touches the hull.
		if len(idx) < 3 {
			continue
		}
		sortWinding(verts, idx, face.Plane.Normal)
		if area(verts, idx, face.Plane.Normal) <= onEps {
			continue
		}
		if !consistentWinding(verts, idx, face.Plane.Normal, tol.Plane) {
			return nil, degenerate(b, "face %d (%s): inconsistent winding", pi, face.Texture)
		}
		rf := ResolvedFace{
			Plane:   pi,
			Normal:  face.Plane.Normal,
			Texture: face.Texture,
			Verts:   idx,
			UVs:     make([]mgl64.Vec2, len(idx)),
		}
		w, h := 0, 0
		if sizes != nil {
			if tw, th, ok := sizes.TextureSize(face.Texture); ok {
				w, h = tw, th
			}
		}
		for k, vi := range idx {
			rf.UVs[k] = face.Axes.UV(verts[vi], w, h)
		}
		s.Faces = append(s.Faces, rf)
	}

	if len(s.Faces) < 4 {
		return nil, degenerate(b, "%d contributing faces, need at least 4", len(s.Faces))
	}

	edges, err := closedEdges(s.Faces)
	if err != nil {
		return nil, degenerate(b, "%v", err)
	}
	s.Edges = edges

	if err := s.verify(onEps); err != nil {
		return nil, degenerate(b, "%v", err)
	}
	return s, nil
}

func withinRange(p mgl64.Vec3, max float64) bool {
	return math.Abs(p[0]) <= max && math.Abs(p[1]) <= max && math.Abs(p[2]) <= max
}

func insideAll(b *Brush, p mgl64.Vec3, eps float64) bool {
	for i := range b.Faces {
		if !b.Faces[i].Plane.Inside(p, eps) {
			return false
		}
	}
	return true
}

func addUnique(verts []mgl64.Vec3, p mgl64.Vec3, eps float64) []mgl64.Vec3 {
	for _, v := range verts {
		if v.Sub(p).Len() <= eps {
			return verts
		}
	}
	return append(verts, p)
}

// sortWinding orders idx counter-clockwise around normal, starting from
// the lowest vertex index so repeated runs agree.
func sortWinding(verts []mgl64.Vec3, idx []int, normal mgl64.Vec3) {
	sort.Ints(idx)
	pts := make([]mgl64.Vec3, len(idx))
	for i, vi := range idx {
		pts[i] = verts[vi]
	}
	c := mathutil.Centroid(pts)
	u := verts[idx[0]].Sub(c).Normalize()
	w := normal.Cross(u)

	angles := make(map[int]float64, len(idx))
	for _, vi := range idx {
		d := verts[vi].Sub(c)
		a := math.Atan2(d.Dot(w), d.Dot(u))
		if a < 0 {
			a += 2 * math.Pi
		}
		angles[vi] = a
	}
	first := idx[0]
	angles[first] = 0
	sort.SliceStable(idx, func(a, b int) bool {
		return angles[idx[a]] < angles[idx[b]]
	})
}

// area of the polygon via the Newell normal projected on normal.
func area(verts []mgl64.Vec3, idx []int, normal mgl64.Vec3) float64 {
	var sum mgl64.Vec3
	for i := range idx {
		a := verts[idx[i]]
		b := verts[idx[(i+1)%len(idx)]]
		sum = sum.Add(a.Cross(b))
	}
	return sum.Dot(normal) / 2
}

func consistentWinding(verts []mgl64.Vec3, idx []int, normal mgl64.Vec3, eps float64) bool {
	a := verts[idx[0]]
	for k := 1; k+1 < len(idx); k++ {
		b := verts[idx[k]]
		c := verts[idx[k+1]]
		if b.Sub(a).Cross(c.Sub(a)).Dot(normal) < -eps {
			return false
		}
	}
	return true
}

// closedEdges collects undirected edges and requires each to border
// exactly two faces, in opposite directions.
func closedEdges(faces []ResolvedFace) ([][2]int, error) {
	type use struct{ fwd, back int }
	uses := make(map[[2]int]*use)
	var order [][2]int
	for _, f := range faces {
		for i := range f.Verts {
			a, b := f.Verts[i], f.Verts[(i+1)%len(f.Verts)]
			key := [2]int{a, b}
			if b < a {
				key = [2]int{b, a}
			}
			u, ok := uses[key]
			if !ok {
				u = &use{}
				uses[key] = u
				order = append(order, key)
			}
			if a < b {
				u.fwd++
			} else {
				u.back++
			}
		}
	}
	for _, key := range order {
		u := uses[key]
		if u.fwd != 1 || u.back != 1 {
			return nil, fmt.Errorf("hull not closed at edge %d-%d", key[0], key[1])
		}
	}
	return order, nil
}

// verify checks every face vertex against its own plane and every other
// half-space.
func (s *Solid) verify(eps float64) error {
	for _, f := range s.Faces {
		pl := s.Brush.Faces[f.Plane].Plane
		for _, vi := range f.Verts {
			v := s.Vertices[vi]
			if !pl.On(v, eps) {
				return fmt.Errorf("vertex %d off plane %d by %g", vi, f.Plane, pl.Distance(v))
			}
			if !insideAll(s.Brush, v, eps) {
				return fmt.Errorf("vertex %d outside the brush", vi)
			}
		}
	}
	return nil
}
