// Package raster renders converted meshes into small thumbnails with a
// software rasterizer: a fixed three-quarter orthographic view, flat
// per-face lighting and point-sampled textures.
package raster

import (
	"image"
	"math"

	"brush2mdl/internal/mesh"

	"github.com/go-gl/mathgl/mgl64"
)

// Options control a thumbnail render.
type Options struct {
	Size        int     // output pixels per side
	Supersample int     // render at Size*Supersample, then filter down
	Yaw, Pitch  float64 // camera angles in degrees
	Light       Light
}

func DefaultOptions() Options {
	return Options{
		Size:        256,
		Supersample: 2,
		Yaw:         -35,
		Pitch:       25,
		Light:       DefaultLight(),
	}
}

// fallback paints triangles whose texture is missing.
var fallback = [3]uint8{160, 160, 170}

// Render draws meshes, Z up, into a transparent square image. textures
// maps texture names to true color images; transparent texels are cut out.
func Render(meshes []*mesh.Mesh, textures map[string]*image.NRGBA, opts Options) *image.NRGBA {
	if opts.Size <= 0 {
		opts.Size = DefaultOptions().Size
	}
	if opts.Supersample < 1 {
		opts.Supersample = 1
	}
	size := opts.Size * opts.Supersample
	fb := NewFrameBuffer(size)

	view := viewMatrix(opts.Yaw, opts.Pitch)

	// view space: x right, y up, z toward the camera
	var proj [][]mgl64.Vec3
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, m := range meshes {
		pts := make([]mgl64.Vec3, len(m.Vertices))
		for i, v := range m.Vertices {
			p := view.Mul3x1(v.Pos)
			pts[i] = p
			minX, maxX = math.Min(minX, p[0]), math.Max(maxX, p[0])
			minY, maxY = math.Min(minY, p[1]), math.Max(maxY, p[1])
		}
		proj = append(proj, pts)
	}
	if math.IsInf(minX, 1) {
		return downsample(fb.Image(), opts.Size)
	}

	span := math.Max(math.Max(maxX-minX, maxY-minY), 1e-3)
	margin := float64(8 * opts.Supersample)
	scale := (float64(size) - 2*margin) / span
	cx, cy := (minX+maxX)/2, (minY+maxY)/2
	half := float64(size) / 2

	for mi, m := range meshes {
		pts := proj[mi]
		for _, g := range m.Groups {
			s := surface{color: fallback}
			if tex, ok := textures[g.Material.Texture]; ok && tex.Rect.Dx() > 0 && tex.Rect.Dy() > 0 {
				s.tex = tex
			}
			for _, tri := range g.Tris {
				a, b, c := pts[tri[0]], pts[tri[1]], pts[tri[2]]
				n := b.Sub(a).Cross(c.Sub(a))
				if n.Len() < 1e-12 || n[2] <= 0 {
					continue // back facing
				}
				s.shade = opts.Light.Shade(n.Normalize())

				var screen [3]mgl64.Vec3
				var uv [3]mgl64.Vec2
				for k, p := range [3]mgl64.Vec3{a, b, c} {
					screen[k] = mgl64.Vec3{
						half + (p[0]-cx)*scale,
						half - (p[1]-cy)*scale,
						p[2],
					}
					uv[k] = m.Vertices[tri[k]].UV
				}
				rasterize(fb, screen, uv, &s)
			}
		}
	}
	return downsample(fb.Image(), opts.Size)
}

// viewMatrix maps Z-up world space into view space for a camera orbiting
// by yaw about Z and raised by pitch.
func viewMatrix(yaw, pitch float64) mgl64.Mat3 {
	// world (x, y, z) seen from -y: right = x, up = z, toward camera = -y
	toView := mgl64.Mat3{
		1, 0, 0,
		0, 0, -1,
		0, 1, 0,
	}
	tilt := mgl64.Rotate3DX(mgl64.DegToRad(pitch))
	spin := mgl64.Rotate3DZ(mgl64.DegToRad(yaw))
	return tilt.Mul3(toView).Mul3(spin)
}
