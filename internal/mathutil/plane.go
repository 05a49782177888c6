package mathutil

import (
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ErrCollinear is returned when three plane points do not span a plane.
var ErrCollinear = errors.New("mathutil: collinear plane points")

// Plane is the half-space Normal·p <= Dist. Normal is unit length and
// points out of the solid.
type Plane struct {
	Normal mgl64.Vec3
	Dist   float64
}

// PlaneFromPoints builds the plane through three editor points. The
// winding convention is the one used by Quake-family map editors:
// (p1-p2)×(p3-p2) points outward.
func PlaneFromPoints(p1, p2, p3 mgl64.Vec3) (Plane, error) {
	n := p1.Sub(p2).Cross(p3.Sub(p2))
	l := n.Len()
	if l < 1e-12 {
		return Plane{}, ErrCollinear
	}
	n = n.Mul(1 / l)
	return Plane{Normal: n, Dist: n.Dot(p2)}, nil
}

// Distance returns the signed distance of p from the plane; positive is
// outside.
func (pl Plane) Distance(p mgl64.Vec3) float64 {
	return pl.Normal.Dot(p) - pl.Dist
}

// Inside reports whether p lies on or behind the plane within eps.
func (pl Plane) Inside(p mgl64.Vec3, eps float64) bool {
	return pl.Distance(p) <= eps
}

// On reports whether p lies on the plane within eps.
func (pl Plane) On(p mgl64.Vec3, eps float64) bool {
	return math.Abs(pl.Distance(p)) <= eps
}

// Offset returns the plane pushed outward by d units.
func (pl Plane) Offset(d float64) Plane {
	return Plane{Normal: pl.Normal, Dist: pl.Dist + d}
}

// Flip returns the opposite half-space.
func (pl Plane) Flip() Plane {
	return Plane{Normal: pl.Normal.Mul(-1), Dist: -pl.Dist}
}

// Intersect3 returns the single point shared by three planes. ok is false
// when the planes are (nearly) parallel, i.e. the determinant magnitude
// is below eps.
func Intersect3(a, b, c Plane, eps float64) (p mgl64.Vec3, ok bool) {
	bc := b.Normal.Cross(c.Normal)
	det := a.Normal.Dot(bc)
	if math.Abs(det) < eps {
		return mgl64.Vec3{}, false
	}
	ca := c.Normal.Cross(a.Normal)
	ab := a.Normal.Cross(b.Normal)
	p = bc.Mul(a.Dist).Add(ca.Mul(b.Dist)).Add(ab.Mul(c.Dist)).Mul(1 / det)
	return p, true
}

// DominantAxis returns 0, 1 or 2 for the component of n with the largest
// magnitude. Ties prefer Z, then X, matching editor texture projection.
func DominantAxis(n mgl64.Vec3) int {
	ax, ay, az := math.Abs(n[0]), math.Abs(n[1]), math.Abs(n[2])
	switch {
	case az >= ax && az >= ay:
		return 2
	case ax >= ay:
		return 0
	default:
		return 1
	}
}
