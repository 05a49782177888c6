package emit

import (
	"fmt"
	"io"
	"strings"

	"brush2mdl/internal/brush"
	"brush2mdl/internal/mesh"
)

// CelShade is the outline pass requested for a unit. It is recorded in
// the script as metadata only; no geometry is derived from it.
type CelShade struct {
	Color    [3]uint8
	Distance float64
}

// Script is one compiler script, describing one model.
type Script struct {
	ModelPath string // output .mdl path
	Dir       string // $cd and $cdtexture
	Bodies    []string
	Clip      string // clip body SMD stem, or empty
	Textures  []string
	Shading   mesh.Shading
	CelShade  CelShade
}

// forcedFlat reports textures named "a_b_c_gfs": exactly three
// underscores and the gfs suffix.
func forcedFlat(tex string) bool {
	return strings.Count(tex, "_") == 3 && strings.HasSuffix(tex, "_gfs")
}

// WriteQC writes s in studio compiler syntax.
func WriteQC(w io.Writer, s Script) error {
	fmt.Fprintf(w, "$modelname \"%s\"\n", s.ModelPath)
	fmt.Fprintf(w, "$cd \"%s\"\n", s.Dir)
	fmt.Fprintf(w, "$cdtexture \"%s\"\n", s.Dir)
	fmt.Fprintln(w, "$scale 1.0")
	fmt.Fprintln(w, "$cbox 0 0 0 0 0 0")
	fmt.Fprintln(w, "$bbox 0 0 0 0 0 0")
	fmt.Fprintln(w, "$origin 0 0 0 270")

	for _, tex := range s.Textures {
		file := MaterialFile(tex)
		if strings.HasPrefix(tex, "{") {
			fmt.Fprintf(w, "$texrendermode \"%s\" masked\n", file)
		}
		if (s.Shading.Has(mesh.FlatShade) && !brush.IsNoRender(tex)) || forcedFlat(tex) {
			fmt.Fprintf(w, "$texrendermode \"%s\" flatshade\n", file)
		}
		if mode := celMode(s.Shading); mode != "" {
			c := s.CelShade
			fmt.Fprintf(w, "// $celshade \"%s\" %s %d %d %d %g\n",
				file, mode, c.Color[0], c.Color[1], c.Color[2], c.Distance)
		}
	}

	for i, body := range s.Bodies {
		fmt.Fprintf(w, "$body studio%d %s\n", i, body)
	}
	if s.Clip != "" {
		fmt.Fprintf(w, "$body clip %s\n", s.Clip)
	}
	_, err := fmt.Fprintln(w, "$sequence idle \"idle\"")
	return err
}

func celMode(s mesh.Shading) string {
	switch {
	case s.Has(mesh.AsCelShade):
		return "as"
	case s.Has(mesh.WithCelShade):
		return "with"
	}
	return ""
}
