package mapfile

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

const cubeMap = `// Game: Half-Life
// Format: Valve
// entity 0
{
"classname" "worldspawn"
"wad" "halflife.wad"
}
// entity 1
{
"classname" "gchimp_map2mdl"
"output" "models\crate.mdl"
"cliptype" "2"
// brush 0
{
( -64 -64 -16 ) ( -64 -63 -16 ) ( -64 -64 -15 ) {fence [ 0 -1 0 0 ] [ 0 0 -1 0 ] 0 1 1
( -64 -64 -16 ) ( -64 -64 -15 ) ( -63 -64 -16 ) crate [ 1 0 0 8 ] [ 0 0 -1 0 ] 0 0.5 0.5
( -64 -64 -16 ) ( -63 -64 -16 ) ( -64 -63 -16 ) crate [ -1 0 0 0 ] [ 0 -1 0 0 ] 0 1 1
( 64 64 16 ) ( 64 65 16 ) ( 65 64 16 ) crate [ 1 0 0 0 ] [ 0 -1 0 0 ] 0 1 1
( 64 64 16 ) ( 65 64 16 ) ( 64 64 17 ) crate [ -1 0 0 0 ] [ 0 0 -1 0 ] 0 1 1
( 64 64 16 ) ( 64 64 17 ) ( 64 65 16 ) crate [ 0 1 0 0 ] [ 0 0 -1 0 ] 0 1 1
}
}
`

func TestParseValve(t *testing.T) {
	m, err := ParseBytes([]byte(cubeMap))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(m.Header) != 2 || m.Header[1] != " Format: Valve" {
		t.Errorf("unexpected header %q", m.Header)
	}
	if len(m.Entities) != 2 {
		t.Fatalf("expected 2 entities, got %d", len(m.Entities))
	}

	e := m.Entities[1]
	if e.Classname() != "gchimp_map2mdl" {
		t.Errorf("expected gchimp_map2mdl, got %s", e.Classname())
	}
	if e.Value("output") != `models\crate.mdl` {
		t.Errorf("backslash should survive, got %s", e.Value("output"))
	}
	if len(e.Brushes) != 1 || len(e.Brushes[0].Faces) != 6 {
		t.Fatalf("expected 1 brush with 6 faces")
	}
	if e.Brushes[0].Line != 14 {
		t.Errorf("expected brush line 14, got %d", e.Brushes[0].Line)
	}

	f := e.Brushes[0].Faces[0]
	if f.Texture != "{fence" {
		t.Errorf("expected {fence, got %s", f.Texture)
	}
	if !f.Valve {
		t.Error("expected valve face")
	}
	f = e.Brushes[0].Faces[1]
	if f.U != (mgl64.Vec4{1, 0, 0, 8}) || f.Scale != [2]float64{0.5, 0.5} {
		t.Errorf("unexpected alignment %v %v", f.U, f.Scale)
	}
}

func TestParseStandard(t *testing.T) {
	src := `{
"classname" "worldspawn"
{
( 0 0 0 ) ( 0 1 0 ) ( 1 0 0 ) BRICK 16 -8 90 2 0.5
( 0 0 64 ) ( 1 0 64 ) ( 0 1 64 ) BRICK 0 0 0 1 1 0 0 0
}
}`
	m, err := ParseBytes([]byte(src))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	faces := m.Entities[0].Brushes[0].Faces
	if len(faces) != 2 {
		t.Fatalf("expected 2 faces, got %d", len(faces))
	}
	f := faces[0]
	if f.Valve {
		t.Error("expected standard face")
	}
	if f.Offset != [2]float64{16, -8} || f.Rotation != 90 || f.Scale != [2]float64{2, 0.5} {
		t.Errorf("unexpected alignment %+v", f)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"unterminated entity", `{ "classname" "x"`},
		{"unterminated string", `{ "classname`},
		{"bad number", "{\n{\n( a 0 0 ) ( 0 0 0 ) ( 0 0 0 ) T 0 0 0 1 1\n}\n}"},
		{"stray token", `"classname" "x"`},
		{"missing value", `{ "classname" }`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseBytes([]byte(tt.src))
			if !errors.Is(err, ErrSyntax) {
				t.Errorf("expected ErrSyntax, got %v", err)
			}
		})
	}
}

func TestWriteRoundTrip(t *testing.T) {
	m, err := ParseBytes([]byte(cubeMap))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	var buf bytes.Buffer
	if err := m.Write(&buf); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !strings.Contains(buf.String(), `"output" "models\crate.mdl"`) {
		t.Errorf("attribute not written verbatim:\n%s", buf.String())
	}

	again, err := ParseBytes(buf.Bytes())
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	if len(again.Entities) != len(m.Entities) {
		t.Fatalf("expected %d entities, got %d", len(m.Entities), len(again.Entities))
	}
	for i, f := range m.Entities[1].Brushes[0].Faces {
		g := again.Entities[1].Brushes[0].Faces[i]
		if f.Points != g.Points || f.Texture != g.Texture || f.U != g.U || f.V != g.V || f.Scale != g.Scale {
			t.Errorf("face %d changed: %+v vs %+v", i, f, g)
		}
	}
}

func TestLegacyEncoding(t *testing.T) {
	// 0xE9 is é in Windows-1252 and invalid on its own in UTF-8.
	src := []byte("{\n\"classname\" \"info_target\"\n\"message\" \"caf\xe9\"\n}\n")
	m, err := ParseBytes(src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !m.Legacy {
		t.Error("expected legacy flag")
	}
	if got := m.Entities[0].Value("message"); got != "café" {
		t.Errorf("expected café, got %q", got)
	}
	var buf bytes.Buffer
	if err := m.Write(&buf); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !bytes.Contains(buf.Bytes(), []byte("caf\xe9")) {
		t.Error("expected value re-encoded as windows-1252")
	}
}

func TestEntityAttrs(t *testing.T) {
	e := Entity{}
	e.Set("origin", "1 2 3")
	e.Set("classname", "info_target")
	e.Set("origin", "4 5 6")
	if len(e.Attrs) != 2 {
		t.Fatalf("expected 2 attrs, got %d", len(e.Attrs))
	}
	v, ok := e.Vec3("origin")
	if !ok || v != (mgl64.Vec3{4, 5, 6}) {
		t.Errorf("expected 4 5 6, got %v", v)
	}
	e.Delete("origin")
	if _, ok := e.Get("origin"); ok {
		t.Error("expected origin deleted")
	}
	if _, ok := ParseVec3("1 2"); ok {
		t.Error("expected short vector to fail")
	}
	if FormatVec3(mgl64.Vec3{1, -0.5, 0}) != "1 -0.5 0" {
		t.Errorf("unexpected format %s", FormatVec3(mgl64.Vec3{1, -0.5, 0}))
	}
}

func TestFindByTargetname(t *testing.T) {
	m := &Map{Entities: []Entity{
		{Attrs: []Attr{{"classname", "worldspawn"}}},
		{Attrs: []Attr{{"classname", "info_target"}, {"targetname", "pivot"}}},
	}}
	if i := m.FindByTargetname("info_target", "pivot"); i != 1 {
		t.Errorf("expected 1, got %d", i)
	}
	if i := m.FindByTargetname("info_target", "nope"); i != -1 {
		t.Errorf("expected -1, got %d", i)
	}
}
