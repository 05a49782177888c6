package mathutil

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Rotate2D rotates v counter-clockwise by deg degrees. Exact for
// multiples of 90 so axial texture rotations stay integral.
func Rotate2D(v mgl64.Vec2, deg float64) mgl64.Vec2 {
	var s, c float64
	switch math.Mod(math.Mod(deg, 360)+360, 360) {
	case 0:
		return v
	case 90:
		s, c = 1, 0
	case 180:
		s, c = 0, -1
	case 270:
		s, c = -1, 0
	default:
		s, c = math.Sincos(mgl64.DegToRad(deg))
	}
	return mgl64.Vec2{v[0]*c - v[1]*s, v[0]*s + v[1]*c}
}

// Centroid returns the arithmetic mean of pts, or the zero vector.
func Centroid(pts []mgl64.Vec3) mgl64.Vec3 {
	var sum mgl64.Vec3
	if len(pts) == 0 {
		return sum
	}
	for _, p := range pts {
		sum = sum.Add(p)
	}
	return sum.Mul(1 / float64(len(pts)))
}
