package raster

import (
	"image"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// surface is what one triangle is painted with: a texture, or a flat
// color when tex is nil.
type surface struct {
	tex   *image.NRGBA
	color [3]uint8
	shade float64
}

// rasterize fills a screen-space triangle. p holds x, y in pixels and
// depth in z; uv are the matching texture coordinates.
func rasterize(fb *FrameBuffer, p [3]mgl64.Vec3, uv [3]mgl64.Vec2, s *surface) {
	x0, y0, z0 := p[0][0], p[0][1], p[0][2]
	x1, y1, z1 := p[1][0], p[1][1], p[1][2]
	x2, y2, z2 := p[2][0], p[2][1], p[2][2]

	det := (y1-y2)*(x0-x2) + (x2-x1)*(y0-y2)
	if math.Abs(det) < 1e-8 {
		return
	}
	invDet := 1 / det

	size := fb.Size
	minX := max(int(math.Floor(math.Min(math.Min(x0, x1), x2))), 0)
	maxX := min(int(math.Ceil(math.Max(math.Max(x0, x1), x2))), size-1)
	minY := max(int(math.Floor(math.Min(math.Min(y0, y1), y2))), 0)
	maxY := min(int(math.Ceil(math.Max(math.Max(y0, y1), y2))), size-1)
	if minX > maxX || minY > maxY {
		return
	}

	dy12, dx21 := y1-y2, x2-x1
	dy20, dx02 := y2-y0, x0-x2

	for sy := minY; sy <= maxY; sy++ {
		cy := float64(sy) + 0.5 - y2
		row := sy * size
		for sx := minX; sx <= maxX; sx++ {
			cx := float64(sx) + 0.5 - x2
			w0 := (dy12*cx + dx21*cy) * invDet
			w1 := (dy20*cx + dx02*cy) * invDet
			w2 := 1 - w0 - w1
			if w0 < -1e-4 || w1 < -1e-4 || w2 < -1e-4 {
				continue
			}

			z := w0*z0 + w1*z1 + w2*z2
			idx := row + sx
			if z <= fb.Depth[idx] {
				continue
			}

			r, g, b, a := s.color[0], s.color[1], s.color[2], uint8(255)
			if s.tex != nil {
				u := w0*uv[0][0] + w1*uv[1][0] + w2*uv[2][0]
				v := w0*uv[0][1] + w1*uv[1][1] + w2*uv[2][1]
				r, g, b, a = sample(s.tex, u, v)
				// masked texels
				if a < 128 {
					continue
				}
			}
			fb.Depth[idx] = z

			o := idx * 4
			fb.Color[o] = lit(r, s.shade)
			fb.Color[o+1] = lit(g, s.shade)
			fb.Color[o+2] = lit(b, s.shade)
			fb.Color[o+3] = 255
		}
	}
}
