package brush

import (
	"brush2mdl/internal/mapfile"
	"brush2mdl/internal/mathutil"

	"github.com/go-gl/mathgl/mgl64"
)

// TexAxes maps a world position to texel coordinates:
// s = p·U/Scale[0] + Offset[0], t = p·V/Scale[1] + Offset[1].
type TexAxes struct {
	U, V   mgl64.Vec3
	Offset [2]float64
	Scale  [2]float64
}

// Base texture axes per projection plane: normal, s axis, t axis.
var baseAxes = [6][3]mgl64.Vec3{
	{{0, 0, 1}, {1, 0, 0}, {0, -1, 0}},  // floor
	{{0, 0, -1}, {1, 0, 0}, {0, -1, 0}}, // ceiling
	{{1, 0, 0}, {0, 1, 0}, {0, 0, -1}},  // west wall
	{{-1, 0, 0}, {0, 1, 0}, {0, 0, -1}}, // east wall
	{{0, 1, 0}, {1, 0, 0}, {0, 0, -1}},  // south wall
	{{0, -1, 0}, {1, 0, 0}, {0, 0, -1}}, // north wall
}

func scaleOrOne(s float64) float64 {
	if s == 0 {
		return 1
	}
	return s
}

// AxesFromMap reads explicit Valve 220 axes, or derives standard ones
// from the face normal.
func AxesFromMap(f mapfile.Face, normal mgl64.Vec3) TexAxes {
	if f.Valve {
		return TexAxes{
			U:      f.U.Vec3(),
			V:      f.V.Vec3(),
			Offset: [2]float64{f.U[3], f.V[3]},
			Scale:  [2]float64{scaleOrOne(f.Scale[0]), scaleOrOne(f.Scale[1])},
		}
	}
	return StandardAxes(normal, f.Offset, f.Rotation, f.Scale)
}

// StandardAxes projects onto the axial plane closest to normal and
// rotates the projection by rot degrees.
func StandardAxes(normal mgl64.Vec3, offset [2]float64, rot float64, scale [2]float64) TexAxes {
	best := 0
	switch axis := mathutil.DominantAxis(normal); {
	case axis == 2 && normal[2] < 0:
		best = 1
	case axis == 0:
		best = 2
		if normal[0] < 0 {
			best = 3
		}
	case axis == 1:
		best = 4
		if normal[1] < 0 {
			best = 5
		}
	}
	u, v := baseAxes[best][1], baseAxes[best][2]

	if rot != 0 {
		// Rotate within the projection plane using the two non-zero components.
		sv, tv := nonZeroAxis(u), nonZeroAxis(v)
		for _, axis := range []*mgl64.Vec3{&u, &v} {
			r := mathutil.Rotate2D(mgl64.Vec2{axis[sv], axis[tv]}, rot)
			axis[sv], axis[tv] = r[0], r[1]
		}
	}

	return TexAxes{
		U:      u,
		V:      v,
		Offset: offset,
		Scale:  [2]float64{scaleOrOne(scale[0]), scaleOrOne(scale[1])},
	}
}

func nonZeroAxis(v mgl64.Vec3) int {
	switch {
	case v[0] != 0:
		return 0
	case v[1] != 0:
		return 1
	default:
		return 2
	}
}

// Texel returns unnormalized texture coordinates of p.
func (a TexAxes) Texel(p mgl64.Vec3) mgl64.Vec2 {
	return mgl64.Vec2{
		p.Dot(a.U)/a.Scale[0] + a.Offset[0],
		p.Dot(a.V)/a.Scale[1] + a.Offset[1],
	}
}

// UV returns texture coordinates of p normalized by the texture size.
// Unknown sizes leave coordinates in texels.
func (a TexAxes) UV(p mgl64.Vec3, w, h int) mgl64.Vec2 {
	st := a.Texel(p)
	if w > 0 {
		st[0] /= float64(w)
	}
	if h > 0 {
		st[1] /= float64(h)
	}
	return st
}
