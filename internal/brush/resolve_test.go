package brush

import (
	"errors"
	"math"
	"testing"

	"brush2mdl/internal/converr"
	"brush2mdl/internal/mapfile"
	"brush2mdl/internal/mathutil"

	"github.com/go-gl/mathgl/mgl64"
)

type fixedSizes map[string][2]int

func (f fixedSizes) TextureSize(name string) (int, int, bool) {
	s, ok := f[name]
	return s[0], s[1], ok
}

func planeBrush(planes ...mathutil.Plane) *Brush {
	b := &Brush{Index: 0, Line: 1}
	for _, p := range planes {
		b.Faces = append(b.Faces, Face{
			Plane:   p,
			Texture: "stone",
			Axes:    StandardAxes(p.Normal, [2]float64{}, 0, [2]float64{1, 1}),
		})
	}
	return b
}

func norm(x, y, z float64) mgl64.Vec3 {
	return mgl64.Vec3{x, y, z}.Normalize()
}

func boxPlanes(min, max mgl64.Vec3) []mathutil.Plane {
	p := mathutil.AABB{Min: min, Max: max}.Planes()
	return p[:]
}

func rotatedCube(deg float64) *Brush {
	rot := mgl64.Rotate3DZ(mgl64.DegToRad(deg)).Mul3(mgl64.Rotate3DX(mgl64.DegToRad(deg / 2)))
	var planes []mathutil.Plane
	for _, pl := range boxPlanes(mgl64.Vec3{-16, -16, -16}, mgl64.Vec3{16, 16, 16}) {
		planes = append(planes, mathutil.Plane{Normal: rot.Mul3x1(pl.Normal), Dist: pl.Dist})
	}
	return planeBrush(planes...)
}

func triangleCount(s *Solid) int {
	n := 0
	for _, f := range s.Faces {
		n += len(f.Verts) - 2
	}
	return n
}

func TestResolveShapes(t *testing.T) {
	tetra := planeBrush(
		mathutil.Plane{Normal: mgl64.Vec3{-1, 0, 0}},
		mathutil.Plane{Normal: mgl64.Vec3{0, -1, 0}},
		mathutil.Plane{Normal: mgl64.Vec3{0, 0, -1}},
		mathutil.Plane{Normal: norm(1, 1, 1), Dist: 1 / math.Sqrt(3)},
	)
	pyramid := planeBrush(
		mathutil.Plane{Normal: mgl64.Vec3{0, 0, -1}},
		mathutil.Plane{Normal: norm(1, 0, 1), Dist: 1 / math.Sqrt2},
		mathutil.Plane{Normal: norm(-1, 0, 1), Dist: 1 / math.Sqrt2},
		mathutil.Plane{Normal: norm(0, 1, 1), Dist: 1 / math.Sqrt2},
		mathutil.Plane{Normal: norm(0, -1, 1), Dist: 1 / math.Sqrt2},
	)
	prism := planeBrush(
		mathutil.Plane{Normal: mgl64.Vec3{0, 0, -1}, Dist: 0},
		mathutil.Plane{Normal: mgl64.Vec3{0, 0, 1}, Dist: 10},
		mathutil.Plane{Normal: mgl64.Vec3{0, -1, 0}, Dist: 0},
		mathutil.Plane{Normal: mgl64.Vec3{-1, 0, 0}, Dist: 0},
		mathutil.Plane{Normal: norm(1, 1, 0), Dist: 4 / math.Sqrt2},
	)

	tests := []struct {
		name      string
		brush     *Brush
		faces     int
		vertices  int
		triangles int
		volume    float64
	}{
		{"cube", planeBrush(boxPlanes(mgl64.Vec3{-64, -64, -16}, mgl64.Vec3{64, 64, 16})...), 6, 8, 12, 128 * 128 * 32},
		{"rotated cube", rotatedCube(30), 6, 8, 12, 32 * 32 * 32},
		{"tetrahedron", tetra, 4, 4, 4, 1.0 / 6},
		{"pyramid", pyramid, 5, 5, 6, 4.0 / 3},
		{"prism", prism, 5, 6, 8, 80},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Resolve(tt.brush, nil, mathutil.DefaultTolerance())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(s.Faces) != tt.faces {
				t.Errorf("expected %d faces, got %d", tt.faces, len(s.Faces))
			}
			if len(s.Vertices) != tt.vertices {
				t.Errorf("expected %d vertices, got %d", tt.vertices, len(s.Vertices))
			}
			if got := triangleCount(s); got != tt.triangles {
				t.Errorf("expected %d triangles, got %d", tt.triangles, got)
			}
			if math.Abs(s.Volume()-tt.volume) > 1e-6*math.Max(1, tt.volume) {
				t.Errorf("expected volume %v, got %v", tt.volume, s.Volume())
			}
			// edges of a closed hull: V - E + F = 2
			if len(s.Vertices)-len(s.Edges)+len(s.Faces) != 2 {
				t.Errorf("euler characteristic broken: V=%d E=%d F=%d", len(s.Vertices), len(s.Edges), len(s.Faces))
			}
			assertHull(t, s)
		})
	}
}

// assertHull checks half-space membership and outward winding of every face.
func assertHull(t *testing.T, s *Solid) {
	t.Helper()
	eps := 1e-4
	for _, f := range s.Faces {
		for _, vi := range f.Verts {
			for pi, bf := range s.Brush.Faces {
				if !bf.Plane.Inside(s.Vertices[vi], eps) {
					t.Errorf("vertex %d outside plane %d", vi, pi)
				}
			}
		}
		a := s.Vertices[f.Verts[0]]
		for k := 1; k+1 < len(f.Verts); k++ {
			b, c := s.Vertices[f.Verts[k]], s.Vertices[f.Verts[k+1]]
			if b.Sub(a).Cross(c.Sub(a)).Dot(f.Normal) <= 0 {
				t.Errorf("face %d triangle %d is not counter-clockwise", f.Plane, k)
			}
		}
	}
}

func TestResolveDropsRedundantPlanes(t *testing.T) {
	planes := boxPlanes(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{8, 8, 8})
	planes = append(planes,
		// wholly outside
		mathutil.Plane{Normal: mgl64.Vec3{0, 0, 1}, Dist: 20},
		// duplicate of +X
		mathutil.Plane{Normal: mgl64.Vec3{1, 0, 0}, Dist: 8},
		// touches a single corner
		mathutil.Plane{Normal: norm(1, 1, 1), Dist: 24 / math.Sqrt(3)},
	)
	s, err := Resolve(planeBrush(planes...), nil, mathutil.DefaultTolerance())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.Faces) != 6 {
		t.Errorf("expected 6 faces, got %d", len(s.Faces))
	}
	for _, f := range s.Faces {
		if f.Plane >= 6 {
			t.Errorf("plane %d should not contribute", f.Plane)
		}
	}
}

func TestResolveDegenerate(t *testing.T) {
	tests := []struct {
		name  string
		brush *Brush
	}{
		{"three planes", planeBrush(boxPlanes(mgl64.Vec3{}, mgl64.Vec3{1, 1, 1})[:3]...)},
		{"unbounded walls", planeBrush(
			mathutil.Plane{Normal: mgl64.Vec3{1, 0, 0}, Dist: 1},
			mathutil.Plane{Normal: mgl64.Vec3{-1, 0, 0}, Dist: 1},
			mathutil.Plane{Normal: mgl64.Vec3{0, 1, 0}, Dist: 1},
			mathutil.Plane{Normal: mgl64.Vec3{0, -1, 0}, Dist: 1},
		)},
		{"empty intersection", planeBrush(
			mathutil.Plane{Normal: mgl64.Vec3{1, 0, 0}, Dist: -5},
			mathutil.Plane{Normal: mgl64.Vec3{-1, 0, 0}, Dist: -5},
			mathutil.Plane{Normal: mgl64.Vec3{0, 1, 0}, Dist: 1},
			mathutil.Plane{Normal: mgl64.Vec3{0, -1, 0}, Dist: 1},
			mathutil.Plane{Normal: mgl64.Vec3{0, 0, 1}, Dist: 1},
			mathutil.Plane{Normal: mgl64.Vec3{0, 0, -1}, Dist: 1},
		)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.brush.Index = 3
			tt.brush.Line = 42
			_, err := Resolve(tt.brush, nil, mathutil.DefaultTolerance())
			if !errors.Is(err, converr.ErrDegenerateBrush) {
				t.Fatalf("expected DegenerateBrush, got %v", err)
			}
			var ce *converr.Error
			if !errors.As(err, &ce) || ce.Brush != 3 || ce.Line != 42 {
				t.Errorf("expected brush identity 3/42, got %+v", ce)
			}
		})
	}
}

func TestResolveIdempotent(t *testing.T) {
	b := rotatedCube(17)
	s1, err := Resolve(b, nil, mathutil.DefaultTolerance())
	if err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	s2, err := Resolve(b, nil, mathutil.DefaultTolerance())
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	if len(s1.Faces) != len(s2.Faces) || len(s1.Vertices) != len(s2.Vertices) {
		t.Fatal("different face or vertex counts")
	}
	for i := range s1.Vertices {
		if s1.Vertices[i].Sub(s2.Vertices[i]).Len() > 1e-9 {
			t.Errorf("vertex %d differs", i)
		}
	}
	for i := range s1.Faces {
		a, b := s1.Faces[i], s2.Faces[i]
		if a.Plane != b.Plane || len(a.Verts) != len(b.Verts) {
			t.Fatalf("face %d differs", i)
		}
		for k := range a.Verts {
			if a.Verts[k] != b.Verts[k] || a.UVs[k] != b.UVs[k] {
				t.Errorf("face %d vertex %d differs", i, k)
			}
		}
	}
}

func TestResolveFromMapUV(t *testing.T) {
	mb := mapfile.BoxBrush(mgl64.Vec3{-64, -64, -16}, mgl64.Vec3{64, 64, 16}, "crate")
	b, err := FromMap(0, mb)
	if err != nil {
		t.Fatalf("from map: %v", err)
	}
	s, err := Resolve(&b, fixedSizes{"crate": {64, 32}}, mathutil.DefaultTolerance())
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(s.Faces) != 6 {
		t.Fatalf("expected 6 faces, got %d", len(s.Faces))
	}
	// +Z face: U = (1,0,0), V = (0,-1,0)
	for _, f := range s.Faces {
		if f.Normal != (mgl64.Vec3{0, 0, 1}) {
			continue
		}
		for k, vi := range f.Verts {
			p := s.Vertices[vi]
			want := mgl64.Vec2{p[0] / 64, -p[1] / 32}
			if f.UVs[k].Sub(want).Len() > 1e-9 {
				t.Errorf("vertex %v: expected uv %v, got %v", p, want, f.UVs[k])
			}
		}
		return
	}
	t.Error("no +Z face found")
}

func TestFromMapCollinear(t *testing.T) {
	mb := mapfile.BoxBrush(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 1, 1}, "x")
	mb.Line = 9
	mb.Faces[2].Points[2] = mb.Faces[2].Points[1]
	_, err := FromMap(5, mb)
	if !errors.Is(err, converr.ErrDegenerateBrush) {
		t.Errorf("expected DegenerateBrush, got %v", err)
	}
}
