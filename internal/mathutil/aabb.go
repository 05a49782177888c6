package mathutil

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// AABB is an axis-aligned bounding box. The zero value is not empty;
// use EmptyAABB to start an accumulation.
type AABB struct {
	Min, Max mgl64.Vec3
}

// EmptyAABB returns an inverted box that any Extend call will replace.
func EmptyAABB() AABB {
	inf := math.Inf(1)
	return AABB{
		Min: mgl64.Vec3{inf, inf, inf},
		Max: mgl64.Vec3{-inf, -inf, -inf},
	}
}

// Empty reports whether no point was added.
func (b AABB) Empty() bool {
	return b.Min[0] > b.Max[0] || b.Min[1] > b.Max[1] || b.Min[2] > b.Max[2]
}

// Extend grows the box to contain p.
func (b AABB) Extend(p mgl64.Vec3) AABB {
	for i := 0; i < 3; i++ {
		b.Min[i] = math.Min(b.Min[i], p[i])
		b.Max[i] = math.Max(b.Max[i], p[i])
	}
	return b
}

// Union returns the box containing both boxes.
func (b AABB) Union(o AABB) AABB {
	if o.Empty() {
		return b
	}
	return b.Extend(o.Min).Extend(o.Max)
}

func (b AABB) Center() mgl64.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

func (b AABB) Size() mgl64.Vec3 {
	return b.Max.Sub(b.Min)
}

// Volume is zero for empty or flat boxes.
func (b AABB) Volume() float64 {
	if b.Empty() {
		return 0
	}
	s := b.Size()
	return s[0] * s[1] * s[2]
}

// Contains reports whether p is inside the box grown by eps.
func (b AABB) Contains(p mgl64.Vec3, eps float64) bool {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i]-eps || p[i] > b.Max[i]+eps {
			return false
		}
	}
	return true
}

// Planes returns the six outward-facing bounding planes in the order
// -X, +X, -Y, +Y, -Z, +Z.
func (b AABB) Planes() [6]Plane {
	var out [6]Plane
	for axis := 0; axis < 3; axis++ {
		var n mgl64.Vec3
		n[axis] = -1
		out[axis*2] = Plane{Normal: n, Dist: -b.Min[axis]}
		n[axis] = 1
		out[axis*2+1] = Plane{Normal: n, Dist: b.Max[axis]}
	}
	return out
}
