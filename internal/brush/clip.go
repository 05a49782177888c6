package brush

import (
	"fmt"

	"brush2mdl/internal/converr"
	"brush2mdl/internal/mathutil"
)

// ClipMode selects the collision geometry emitted with a model.
type ClipMode int

const (
	ClipNone ClipMode = iota
	ClipPrecise
	ClipBox
)

// ClampClipMode maps an entity value to a mode; out of range values are
// clamped into 0..2.
func ClampClipMode(v int) ClipMode {
	switch {
	case v <= 0:
		return ClipNone
	case v >= 2:
		return ClipBox
	default:
		return ClipPrecise
	}
}

func (m ClipMode) String() string {
	switch m {
	case ClipNone:
		return "none"
	case ClipPrecise:
		return "precise"
	case ClipBox:
		return "box"
	default:
		return fmt.Sprintf("ClipMode(%d)", int(m))
	}
}

// ClipBrush is collision geometry for one unit. It is never merged into
// the render mesh.
type ClipBrush struct {
	Mode    ClipMode
	Brushes []Brush
	Solids  []*Solid
	Bounds  mathutil.AABB
}

// Volume sums the hull volumes of the clip solids.
func (c *ClipBrush) Volume() float64 {
	var v float64
	for _, s := range c.Solids {
		v += s.Volume()
	}
	return v
}

// GenerateClip derives collision geometry from the unit's brushes and
// their resolved solids. Precise mode re-resolves textured copies so the
// render solids are never shared; box mode encloses every solid vertex.
// ClipNone returns nil.
func GenerateClip(mode ClipMode, brushes []Brush, solids []*Solid, tol mathutil.Tolerance) (*ClipBrush, error) {
	switch mode {
	case ClipNone:
		return nil, nil
	case ClipPrecise:
		c := &ClipBrush{Mode: mode, Bounds: mathutil.EmptyAABB()}
		for _, b := range brushes {
			cb := b.Retextured(TexClip)
			c.Brushes = append(c.Brushes, cb)
		}
		for i := range c.Brushes {
			s, err := Resolve(&c.Brushes[i], nil, tol)
			if err != nil {
				return nil, err
			}
			c.Solids = append(c.Solids, s)
			c.Bounds = c.Bounds.Union(s.Bounds())
		}
		return c, nil
	case ClipBox:
		box := mathutil.EmptyAABB()
		for _, s := range solids {
			box = box.Union(s.Bounds())
		}
		if box.Empty() {
			return nil, converr.Newf(converr.EmptyConversionUnit, "no geometry to bound")
		}
		c := &ClipBrush{Mode: mode, Bounds: box}
		c.Brushes = []Brush{BoxFromAABB(0, box, TexClip)}
		s, err := Resolve(&c.Brushes[0], nil, tol)
		if err != nil {
			return nil, err
		}
		c.Solids = []*Solid{s}
		return c, nil
	default:
		return nil, fmt.Errorf("brush: unknown clip mode %d", int(mode))
	}
}
