package batch

import (
	"image"
	"image/color"
	"path/filepath"
	"runtime"
	"sort"
	"sync"

	"brush2mdl/internal/brush"
	"brush2mdl/internal/converr"
	"brush2mdl/internal/emit"
	"brush2mdl/internal/mathutil"
	"brush2mdl/internal/mesh"
	"brush2mdl/internal/palette"
	"brush2mdl/internal/texture"

	"github.com/go-gl/mathgl/mgl64"
)

// clipColor fills the generated collision texture.
var clipColor = color.NRGBA{R: 255, G: 0, B: 255, A: 255}

// convertUnit runs resolve, clip, assemble, reduce and emit for one unit.
// It reads only u and shared read-only resources.
func convertUnit(cfg Config, u *Unit) (Result, error) {
	tol := cfg.Tolerance.OrDefault()

	brushes := make([]brush.Brush, len(u.Brushes))
	for i, mb := range u.Brushes {
		b, err := brush.FromMap(i, mb)
		if err != nil {
			return Result{}, err
		}
		brushes[i] = b
	}

	solids, err := resolveAll(brushes, cfg.Textures, tol)
	if err != nil {
		return Result{}, err
	}

	// Brushes made only of ORIGIN mark the pivot and are not geometry.
	var (
		geoBrushes []brush.Brush
		geoSolids  []*brush.Solid
		originPts  []mgl64.Vec3
		water      bool
	)
	for i, s := range solids {
		for fi := range s.Faces {
			f := &s.Faces[fi]
			if brush.IsTool(f.Texture, brush.TexOrigin) {
				originPts = append(originPts, s.Positions(f)...)
			}
			if brush.IsTool(f.Texture, brush.TexWater) {
				water = true
			}
		}
		if isOriginBrush(&brushes[i]) {
			continue
		}
		geoBrushes = append(geoBrushes, brushes[i])
		geoSolids = append(geoSolids, s)
	}

	clip, err := brush.GenerateClip(u.Options.Clip, geoBrushes, geoSolids, tol)
	if err != nil {
		return Result{}, err
	}

	m := mesh.Assemble(geoSolids, mesh.Options{Shading: u.Options.Shading, DoubleSided: water}, tol)
	if m.TriangleCount() == 0 {
		return Result{}, converr.Newf(converr.EmptyConversionUnit, "no drawable faces")
	}

	var origin mgl64.Vec3
	switch {
	case len(originPts) > 0:
		origin = mathutil.Centroid(originPts)
	case u.HasTarget:
		origin = u.Target
	default:
		origin = m.Centroid()
	}
	m.Translate(origin.Mul(-1))

	var clipMesh *mesh.Mesh
	if clip != nil {
		clipMesh = mesh.Assemble(clip.Solids, mesh.Options{Collision: true}, tol)
		clipMesh.Translate(origin.Mul(-1))
	}

	textures, err := reduceTextures(cfg, append(m.Textures(), clipTextures(clipMesh)...))
	if err != nil {
		return Result{}, err
	}

	chunks := m.ChunkTextures(cfg.TexturesPerModel)
	dir := u.Name()
	job := emit.Job{
		Dir:      filepath.Join(cfg.OutputDir, dir),
		Clip:     clipMesh,
		Textures: textures,
		Shading:  u.Options.Shading,
		CelShade: emit.CelShade{Color: u.Options.CelColor, Distance: u.Options.CelDistance},
		Previews: cfg.Previews,
	}
	for i, chunk := range chunks {
		job.Models = append(job.Models, emit.Model{
			Name:      u.ModelName(i, len(chunks)),
			ModelPath: filepath.Join(cfg.GameDir, filepath.FromSlash(u.ModelOutput(i, len(chunks)))),
			Bodies:    chunk.SplitByVertexLimit(cfg.VertexLimit),
		})
	}

	pkg, err := emit.Emit(emit.Prefix(cfg.Sink, dir), job)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Entity:    u.Entity,
		Output:    u.Output,
		Success:   true,
		Dir:       dir,
		Package:   pkg,
		Origin:    origin,
		Models:    len(chunks),
		Triangles: m.TriangleCount(),
		Clip:      clip,
	}, nil
}

func isOriginBrush(b *brush.Brush) bool {
	for _, f := range b.Faces {
		if !brush.IsTool(f.Texture, brush.TexOrigin) {
			return false
		}
	}
	return len(b.Faces) > 0
}

// resolveAll resolves brushes concurrently. The first error in brush
// order wins.
func resolveAll(brushes []brush.Brush, sizes brush.TextureSizer, tol mathutil.Tolerance) ([]*brush.Solid, error) {
	solids := make([]*brush.Solid, len(brushes))
	errs := make([]error, len(brushes))
	forEach(len(brushes), func(i int) {
		solids[i], errs[i] = brush.Resolve(&brushes[i], sizes, tol)
	})
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return solids, nil
}

func clipTextures(m *mesh.Mesh) []string {
	if m == nil {
		return nil
	}
	return m.Textures()
}

// reduceTextures quantizes each distinct texture with its own palette.
// Tool textures, which have no source image, get a flat placeholder.
func reduceTextures(cfg Config, names []string) (map[string]*palette.Image, error) {
	sort.Strings(names)
	names = dedupSorted(names)

	out := make([]*palette.Image, len(names))
	errs := make([]error, len(names))
	forEach(len(names), func(i int) {
		out[i], errs[i] = reduceTexture(cfg, names[i])
	})

	textures := make(map[string]*palette.Image, len(names))
	for i, name := range names {
		if errs[i] != nil {
			return nil, errs[i]
		}
		textures[name] = out[i]
	}
	return textures, nil
}

func reduceTexture(cfg Config, name string) (*palette.Image, error) {
	var src *image.NRGBA
	if brush.IsNoRender(name) {
		src = image.NewNRGBA(image.Rect(0, 0, 16, 16))
		for i := 0; i < len(src.Pix); i += 4 {
			src.Pix[i], src.Pix[i+1], src.Pix[i+2], src.Pix[i+3] = clipColor.R, clipColor.G, clipColor.B, clipColor.A
		}
	} else {
		if cfg.Textures == nil {
			return nil, converr.Newf(converr.MissingTexture, "no texture source").WithTexture(name)
		}
		img, err := cfg.Textures.Resolve(name)
		if err != nil {
			return nil, converr.Wrap(converr.MissingTexture, err).WithTexture(name)
		}
		src = texture.Fit(img, cfg.TextureMaxSize)
	}

	im, err := palette.Reduce(src, cfg.Palette)
	if err != nil {
		return nil, converr.Wrap(converr.PaletteReductionFailed, err).WithTexture(name)
	}
	return im, nil
}

func dedupSorted(s []string) []string {
	out := s[:0]
	for i, v := range s {
		if i == 0 || v != s[i-1] {
			out = append(out, v)
		}
	}
	return out
}

// forEach runs fn for 0..n-1 on up to NumCPU goroutines.
func forEach(n int, fn func(i int)) {
	workers := min(runtime.NumCPU(), n)
	if workers <= 1 {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}
	next := make(chan int, n)
	for i := 0; i < n; i++ {
		next <- i
	}
	close(next)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range next {
				fn(i)
			}
		}()
	}
	wg.Wait()
}
