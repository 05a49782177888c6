package batch

import (
	"fmt"
	"path"
	"strconv"
	"strings"

	"brush2mdl/internal/brush"
	"brush2mdl/internal/converr"
	"brush2mdl/internal/mapfile"
	"brush2mdl/internal/mesh"

	"github.com/go-gl/mathgl/mgl64"
)

// Entity classnames and keys read from the map.
const (
	UnitClassname   = "gchimp_map2mdl"
	TargetClassname = "info_target"

	keyOutput      = "output"
	keyModelEntity = "model_entity"
	keyClipType    = "cliptype"
	keyOptions     = "options"
	keyCelColor    = "celshade_color"
	keyCelDistance = "celshade_distance"
	keyTarget      = "target_origin"
)

// Options are the per-unit conversion settings.
type Options struct {
	Clip         brush.ClipMode
	Shading      mesh.Shading
	CelColor     [3]uint8
	CelDistance  float64
	DisplayClass string
	// TargetOrigin names the info_target whose origin becomes the model
	// origin when no ORIGIN brush is present.
	TargetOrigin string
}

// DefaultOptions apply to keys an entity leaves unset.
func DefaultOptions() Options {
	return Options{CelDistance: 4, DisplayClass: "cycler_sprite"}
}

// Unit is one entity marked for conversion. A unit whose entity cannot be
// read carries Err and is reported without being converted.
type Unit struct {
	Entity  int
	Line    int
	Output  string // model path from the entity, forward slashes
	Brushes []mapfile.Brush
	Options Options

	Target    mgl64.Vec3
	HasTarget bool

	Err error
}

// Name is the model file stem.
func (u *Unit) Name() string {
	return strings.TrimSuffix(path.Base(u.Output), path.Ext(u.Output))
}

// ModelOutput returns the model path for chunk i of count.
func (u *Unit) ModelOutput(i, count int) string {
	if count <= 1 {
		return u.Output
	}
	ext := path.Ext(u.Output)
	return fmt.Sprintf("%s%d%s", strings.TrimSuffix(u.Output, ext), i, ext)
}

// ModelName returns the file stem for chunk i of count.
func (u *Unit) ModelName(i, count int) string {
	if count <= 1 {
		return u.Name()
	}
	return fmt.Sprintf("%s%d", u.Name(), i)
}

// ExtractUnits collects every conversion entity in map order.
func ExtractUnits(m *mapfile.Map, def Options) []Unit {
	var units []Unit
	seen := make(map[string]int)
	for i := range m.Entities {
		e := &m.Entities[i]
		if e.Classname() != UnitClassname {
			continue
		}
		u := unitFromEntity(m, i, def)
		if u.Err == nil {
			key := strings.ToLower(u.Name())
			if prev, dup := seen[key]; dup {
				u.Err = converr.Newf(converr.InvalidEntity, "output %q collides with entity %d", u.Output, prev).WithEntity(i)
			} else {
				seen[key] = i
			}
		}
		units = append(units, u)
	}
	return units
}

func unitFromEntity(m *mapfile.Map, index int, def Options) Unit {
	e := &m.Entities[index]
	u := Unit{Entity: index, Line: e.Line, Brushes: e.Brushes, Options: def}
	invalid := func(format string, args ...any) Unit {
		u.Err = converr.Newf(converr.InvalidEntity, format, args...).WithEntity(index)
		return u
	}

	out := strings.TrimSpace(strings.ReplaceAll(e.Value(keyOutput), "\\", "/"))
	if out == "" {
		return invalid("missing %q", keyOutput)
	}
	if path.Ext(out) == "" {
		out += ".mdl"
	}
	u.Output = out

	if v := e.Value(keyModelEntity); v != "" {
		u.Options.DisplayClass = v
	}
	if v, ok := e.Get(keyClipType); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			n = 0
		}
		u.Options.Clip = brush.ClampClipMode(n)
	}
	if v, ok := e.Get(keyOptions); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || n < 0 {
			return invalid("bad %q %q", keyOptions, v)
		}
		u.Options.Shading = mesh.Shading(n) & (mesh.FlatShade | mesh.WithCelShade | mesh.AsCelShade | mesh.ReverseNormals)
	}
	if v, ok := e.Get(keyCelColor); ok {
		c, err := parseColor(v)
		if err != nil {
			return invalid("bad %q: %v", keyCelColor, err)
		}
		u.Options.CelColor = c
	}
	if d, ok := e.Float(keyCelDistance); ok {
		u.Options.CelDistance = d
	} else if _, set := e.Get(keyCelDistance); set {
		return invalid("bad %q", keyCelDistance)
	}
	if name := e.Value(keyTarget); name != "" {
		u.Options.TargetOrigin = name
		ti := m.FindByTargetname(TargetClassname, name)
		if ti < 0 {
			return invalid("no %s named %q", TargetClassname, name)
		}
		origin, ok := m.Entities[ti].Vec3("origin")
		if !ok {
			return invalid("%s %q has no origin", TargetClassname, name)
		}
		u.Target, u.HasTarget = origin, true
	}

	if len(u.Brushes) == 0 {
		u.Err = converr.Newf(converr.EmptyConversionUnit, "entity has no brushes").WithEntity(index)
	}
	return u
}

// parseColor reads "r g b" with components in 0..255.
func parseColor(s string) ([3]uint8, error) {
	var c [3]uint8
	fields := strings.Fields(s)
	if len(fields) != 3 {
		return c, fmt.Errorf("want 3 components, got %d", len(fields))
	}
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil || n < 0 || n > 255 {
			return c, fmt.Errorf("component %q out of range", f)
		}
		c[i] = uint8(n)
	}
	return c, nil
}
