package mathutil

// Tolerance centralizes the numeric thresholds used by geometry resolution
// and mesh assembly. All brush and mesh code takes one of these instead of
// hard-coded literals.
type Tolerance struct {
	// Plane is the epsilon for point-on-plane and point-in-halfspace tests,
	// and the determinant floor for three-plane intersection.
	Plane float64 `yaml:"plane"`
	// Merge is the distance under which two vertices are the same vertex.
	Merge float64 `yaml:"merge"`
	// MaxCoord rejects intersection points of nearly parallel planes.
	MaxCoord float64 `yaml:"max_coord"`
}

// DefaultTolerance matches the precision of integer-snapped editor output.
func DefaultTolerance() Tolerance {
	return Tolerance{
		Plane:    1e-4,
		Merge:    1e-3,
		MaxCoord: 1 << 20,
	}
}

// OrDefault fills zero fields from DefaultTolerance.
func (t Tolerance) OrDefault() Tolerance {
	d := DefaultTolerance()
	if t.Plane <= 0 {
		t.Plane = d.Plane
	}
	if t.Merge <= 0 {
		t.Merge = d.Merge
	}
	if t.MaxCoord <= 0 {
		t.MaxCoord = d.MaxCoord
	}
	return t
}
