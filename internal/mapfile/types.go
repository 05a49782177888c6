// Package mapfile reads and writes Quake-family .map text: entities made
// of key/value attributes plus brush blocks. Both the Valve 220 and the
// standard face line layouts are understood.
package mapfile

import (
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// Face is one brush face line: three points spanning the plane, the
// texture name, and its alignment.
type Face struct {
	Points  [3]mgl64.Vec3
	Texture string

	// Valve 220 axes, the fourth component is the offset along the axis.
	// Only meaningful when Valve is set.
	U, V mgl64.Vec4

	// Standard format shift. Valve faces keep it zero.
	Offset [2]float64

	Rotation float64
	Scale    [2]float64
	Valve    bool
}

// Brush is one convex solid. Line is the 1-based line of its opening brace.
type Brush struct {
	Line  int
	Faces []Face
}

// Clone deep-copies the brush.
func (b Brush) Clone() Brush {
	faces := make([]Face, len(b.Faces))
	copy(faces, b.Faces)
	return Brush{Line: b.Line, Faces: faces}
}

// WithTexture returns a copy of the brush with every face retextured.
func (b Brush) WithTexture(tex string) Brush {
	c := b.Clone()
	for i := range c.Faces {
		c.Faces[i].Texture = tex
	}
	return c
}

// Attr is one key/value pair.
type Attr struct {
	Key, Value string
}

// Entity keeps attributes in file order so rewritten maps diff cleanly.
type Entity struct {
	Line    int
	Attrs   []Attr
	Brushes []Brush
}

// Get returns the value of key and whether it exists.
func (e *Entity) Get(key string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}

// Value returns the value of key, or "".
func (e *Entity) Value(key string) string {
	v, _ := e.Get(key)
	return v
}

// Set replaces the value of key or appends it.
func (e *Entity) Set(key, value string) {
	for i := range e.Attrs {
		if e.Attrs[i].Key == key {
			e.Attrs[i].Value = value
			return
		}
	}
	e.Attrs = append(e.Attrs, Attr{Key: key, Value: value})
}

// Delete removes key if present.
func (e *Entity) Delete(key string) {
	out := e.Attrs[:0]
	for _, a := range e.Attrs {
		if a.Key != key {
			out = append(out, a)
		}
	}
	e.Attrs = out
}

func (e *Entity) Classname() string {
	return e.Value("classname")
}

// Float parses key as a number.
func (e *Entity) Float(key string) (float64, bool) {
	v, ok := e.Get(key)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Vec3 parses key as three space-separated numbers, e.g. an origin.
func (e *Entity) Vec3(key string) (mgl64.Vec3, bool) {
	v, ok := e.Get(key)
	if !ok {
		return mgl64.Vec3{}, false
	}
	return ParseVec3(v)
}

// ParseVec3 parses "x y z".
func ParseVec3(s string) (mgl64.Vec3, bool) {
	fields := strings.Fields(s)
	if len(fields) != 3 {
		return mgl64.Vec3{}, false
	}
	var out mgl64.Vec3
	for i, f := range fields {
		n, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return mgl64.Vec3{}, false
		}
		out[i] = n
	}
	return out, true
}

// FormatVec3 is the inverse of ParseVec3.
func FormatVec3(v mgl64.Vec3) string {
	return formatNum(v[0]) + " " + formatNum(v[1]) + " " + formatNum(v[2])
}

// Map is a parsed map file.
type Map struct {
	// Header holds the leading comment lines without their "//".
	Header   []string
	Entities []Entity
	// Legacy is set when the source was not UTF-8 and was decoded as
	// Windows-1252; Write encodes back the same way.
	Legacy bool
}

// FindByTargetname returns the index of the first entity with the given
// classname and targetname, or -1.
func (m *Map) FindByTargetname(classname, targetname string) int {
	for i := range m.Entities {
		e := &m.Entities[i]
		if e.Classname() == classname && e.Value("targetname") == targetname {
			return i
		}
	}
	return -1
}

// BoxBrush builds an axis-aligned Valve 220 box brush from min to max with
// every face using tex.
func BoxBrush(min, max mgl64.Vec3, tex string) Brush {
	x0, y0, z0 := min[0], min[1], min[2]
	x1, y1, z1 := max[0], max[1], max[2]
	face := func(p1, p2, p3 mgl64.Vec3, u, v mgl64.Vec3) Face {
		return Face{
			Points:  [3]mgl64.Vec3{p1, p2, p3},
			Texture: tex,
			U:       u.Vec4(0),
			V:       v.Vec4(0),
			Scale:   [2]float64{1, 1},
			Valve:   true,
		}
	}
	return Brush{Faces: []Face{
		face(mgl64.Vec3{x0, y0, z0}, mgl64.Vec3{x0, y0 + 1, z0}, mgl64.Vec3{x0, y0, z0 + 1}, mgl64.Vec3{0, -1, 0}, mgl64.Vec3{0, 0, -1}),
		face(mgl64.Vec3{x0, y0, z0}, mgl64.Vec3{x0, y0, z0 + 1}, mgl64.Vec3{x0 + 1, y0, z0}, mgl64.Vec3{1, 0, 0}, mgl64.Vec3{0, 0, -1}),
		face(mgl64.Vec3{x0, y0, z0}, mgl64.Vec3{x0 + 1, y0, z0}, mgl64.Vec3{x0, y0 + 1, z0}, mgl64.Vec3{-1, 0, 0}, mgl64.Vec3{0, -1, 0}),
		face(mgl64.Vec3{x1, y1, z1}, mgl64.Vec3{x1, y1 + 1, z1}, mgl64.Vec3{x1 + 1, y1, z1}, mgl64.Vec3{1, 0, 0}, mgl64.Vec3{0, -1, 0}),
		face(mgl64.Vec3{x1, y1, z1}, mgl64.Vec3{x1 + 1, y1, z1}, mgl64.Vec3{x1, y1, z1 + 1}, mgl64.Vec3{-1, 0, 0}, mgl64.Vec3{0, 0, -1}),
		face(mgl64.Vec3{x1, y1, z1}, mgl64.Vec3{x1, y1, z1 + 1}, mgl64.Vec3{x1, y1 + 1, z1}, mgl64.Vec3{0, 1, 0}, mgl64.Vec3{0, 0, -1}),
	}}
}
