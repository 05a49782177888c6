// Package brush resolves convex brushes from their bounding planes into
// wound, textured polygons, and derives collision brushes from them.
package brush

import (
	"strings"

	"brush2mdl/internal/converr"
	"brush2mdl/internal/mapfile"
	"brush2mdl/internal/mathutil"
)

// Tool textures carry compiler meaning and are never drawn.
const (
	TexClip   = "CLIP"
	TexOrigin = "ORIGIN"
	TexWater  = "CONTENTWATER"
)

var noRender = map[string]bool{
	"null":         true,
	"hint":         true,
	"skip":         true,
	"aaatrigger":   true,
	"sky":          true,
	"origin":       true,
	"clip":         true,
	"contentwater": true,
}

// IsNoRender reports whether faces with this texture are left out of the
// visible mesh.
func IsNoRender(tex string) bool {
	return noRender[strings.ToLower(tex)]
}

// IsTool reports whether tex equals the tool texture name, ignoring case.
func IsTool(tex, tool string) bool {
	return strings.EqualFold(tex, tool)
}

// Face is one bounding half-space with its surface.
type Face struct {
	Plane   mathutil.Plane
	Texture string
	Axes    TexAxes
}

// Brush is index-stable: resolved faces refer back to Faces by position.
type Brush struct {
	Index int
	Line  int
	Faces []Face
}

// FromMap converts a parsed brush. Faces whose three points are collinear
// make the brush degenerate.
func FromMap(index int, mb mapfile.Brush) (Brush, error) {
	b := Brush{Index: index, Line: mb.Line, Faces: make([]Face, 0, len(mb.Faces))}
	for i, mf := range mb.Faces {
		pl, err := mathutil.PlaneFromPoints(mf.Points[0], mf.Points[1], mf.Points[2])
		if err != nil {
			return Brush{}, converr.Newf(converr.DegenerateBrush, "face %d: %v", i, err).WithBrush(index, mb.Line)
		}
		b.Faces = append(b.Faces, Face{
			Plane:   pl,
			Texture: mf.Texture,
			Axes:    AxesFromMap(mf, pl.Normal),
		})
	}
	return b, nil
}

// Retextured returns a copy with every face using tex.
func (b Brush) Retextured(tex string) Brush {
	faces := make([]Face, len(b.Faces))
	copy(faces, b.Faces)
	for i := range faces {
		faces[i].Texture = tex
	}
	return Brush{Index: b.Index, Line: b.Line, Faces: faces}
}

// BoxFromAABB builds a six-plane brush enclosing box.
func BoxFromAABB(index int, box mathutil.AABB, tex string) Brush {
	planes := box.Planes()
	b := Brush{Index: index, Faces: make([]Face, 0, len(planes))}
	for _, pl := range planes {
		b.Faces = append(b.Faces, Face{
			Plane:   pl,
			Texture: tex,
			Axes:    StandardAxes(pl.Normal, [2]float64{}, 0, [2]float64{1, 1}),
		})
	}
	return b
}

// HasTexture reports whether any face uses tex, ignoring case.
func (b *Brush) HasTexture(tex string) bool {
	for _, f := range b.Faces {
		if IsTool(f.Texture, tex) {
			return true
		}
	}
	return false
}

// Textures lists the distinct texture names in face order.
func (b *Brush) Textures() []string {
	seen := make(map[string]bool)
	var out []string
	for _, f := range b.Faces {
		if !seen[f.Texture] {
			seen[f.Texture] = true
			out = append(out, f.Texture)
		}
	}
	return out
}
