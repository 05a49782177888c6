// Package emit writes the intermediate assets a studio compiler consumes:
// reference and sequence SMD meshes, the QC compile script and indexed
// texture bitmaps, plus optional WebP and glTF previews.
package emit

import (
	"fmt"
	"image"
	"io"
	"sort"

	"brush2mdl/internal/converr"
	"brush2mdl/internal/mesh"
	"brush2mdl/internal/palette"
	"brush2mdl/internal/raster"
	"brush2mdl/internal/skeleton"

	"github.com/HugoSmits86/nativewebp"
)

// SequenceName is the idle animation every model shares.
const SequenceName = "idle"

// Model is one compiled model: a set of bodies that together use at most
// the per-model texture limit.
type Model struct {
	Name      string // file stem of the .mdl, .qc and body SMDs
	ModelPath string // $modelname
	Bodies    []*mesh.Mesh
}

// Job is everything emitted for one conversion unit.
type Job struct {
	Dir      string // resource directory as the compiler sees it
	Models   []Model
	Clip     *mesh.Mesh // attached as a body of the first model
	Textures map[string]*palette.Image
	Shading  mesh.Shading
	CelShade CelShade
	Previews bool
}

// Package lists what was written, by sink-relative name.
type Package struct {
	Name     string
	Files    []string
	QC       []string
	Meshes   []string
	Textures []string
}

func (p *Package) add(name string) { p.Files = append(p.Files, name) }

// Emit writes job to sink. All models share one idle sequence file.
func Emit(sink Sink, job Job) (*Package, error) {
	if len(job.Models) == 0 {
		return nil, converr.Newf(converr.EmptyConversionUnit, "no models to emit")
	}
	bones := skeleton.Static()
	pkg := &Package{Name: job.Models[0].Name}

	seq := SequenceName + ".smd"
	if err := writeFile(sink, seq, func(w io.Writer) error { return WriteSequence(w, bones) }); err != nil {
		return nil, err
	}
	pkg.add(seq)

	clipStem := ""
	if job.Clip != nil && job.Clip.TriangleCount() > 0 {
		clipStem = job.Models[0].Name + "_clip"
		name := clipStem + ".smd"
		skeleton.ApplyTransforms(job.Clip, bones)
		if err := writeFile(sink, name, func(w io.Writer) error { return WriteReference(w, bones, job.Clip) }); err != nil {
			return nil, err
		}
		pkg.add(name)
		pkg.Meshes = append(pkg.Meshes, name)
	}

	var previews []*mesh.Mesh
	for mi, model := range job.Models {
		script := Script{
			ModelPath: model.ModelPath,
			Dir:       job.Dir,
			Shading:   job.Shading,
			CelShade:  job.CelShade,
		}
		if mi == 0 {
			script.Clip = clipStem
		}
		seen := make(map[string]bool)
		for bi, body := range model.Bodies {
			stem := fmt.Sprintf("%s_%d", model.Name, bi)
			name := stem + ".smd"
			skeleton.ApplyTransforms(body, bones)
			if err := writeFile(sink, name, func(w io.Writer) error { return WriteReference(w, bones, body) }); err != nil {
				return nil, err
			}
			pkg.add(name)
			pkg.Meshes = append(pkg.Meshes, name)
			script.Bodies = append(script.Bodies, stem)
			for _, tex := range body.Textures() {
				if !seen[tex] {
					seen[tex] = true
					script.Textures = append(script.Textures, tex)
				}
			}
			previews = append(previews, body)
		}

		qc := model.Name + ".qc"
		if err := writeFile(sink, qc, func(w io.Writer) error { return WriteQC(w, script) }); err != nil {
			return nil, err
		}
		pkg.add(qc)
		pkg.QC = append(pkg.QC, qc)
	}

	names := make([]string, 0, len(job.Textures))
	for name := range job.Textures {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, tex := range names {
		im := job.Textures[tex]
		file := MaterialFile(tex)
		if err := writeFile(sink, file, func(w io.Writer) error { return WriteBMP(w, im) }); err != nil {
			return nil, err
		}
		pkg.add(file)
		pkg.Textures = append(pkg.Textures, file)

		if job.Previews {
			webp := tex + ".webp"
			if err := writeFile(sink, webp, func(w io.Writer) error { return WriteWebP(w, im) }); err != nil {
				return nil, err
			}
			pkg.add(webp)
		}
	}

	if job.Previews {
		glb := pkg.Name + ".glb"
		if err := writeFile(sink, glb, func(w io.Writer) error { return WriteGLB(w, previews) }); err != nil {
			return nil, err
		}
		pkg.add(glb)

		thumb := pkg.Name + "_thumb.webp"
		if err := writeFile(sink, thumb, func(w io.Writer) error { return WriteThumbnail(w, previews, job.Textures) }); err != nil {
			return nil, err
		}
		pkg.add(thumb)
	}
	return pkg, nil
}

// WriteThumbnail renders meshes from a three-quarter view and encodes the
// frame as lossless WebP.
func WriteThumbnail(w io.Writer, meshes []*mesh.Mesh, textures map[string]*palette.Image) error {
	tex := make(map[string]*image.NRGBA, len(textures))
	for name, im := range textures {
		tex[name] = im.NRGBA()
	}
	return nativewebp.Encode(w, raster.Render(meshes, tex, raster.DefaultOptions()), nil)
}
