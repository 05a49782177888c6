// Package palette reduces true-color textures to small indexed palettes
// by k-means clustering in the Oklab color space.
package palette

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"sort"

	"brush2mdl/internal/converr"
)

// MaxColors is the largest palette an 8-bit index can address.
const MaxColors = 256

// Export colors for the reserved transparent slot. Studio compilers key
// masked textures on the last palette entry, conventionally pure blue.
var (
	TransparentColor = color.NRGBA{R: 0, G: 0, B: 255, A: 255}
	padColor         = color.NRGBA{A: 255}
)

// Options tune one reduction.
type Options struct {
	// Colors is the palette size N, at most MaxColors.
	Colors int
	// Iterations bounds the Lloyd rounds of clustering.
	Iterations int
	// AlphaCutoff: pixels with alpha at or below it are transparent.
	AlphaCutoff uint8
	// Workers for the assignment step; <= 0 uses NumCPU.
	Workers int
}

// DefaultOptions matches the target format limits.
func DefaultOptions() Options {
	return Options{
		Colors:      MaxColors,
		Iterations:  24,
		AlphaCutoff: 64,
	}
}

// Image is an indexed image with a private palette. Transparent is the
// reserved palette index, or -1. The transparent palette entry has alpha
// zero; Paletted(true) swaps it for TransparentColor.
type Image struct {
	Width, Height int
	Palette       []color.NRGBA
	Indices       []uint8
	Transparent   int
}

var errEmptyImage = errors.New("empty image")

// Reduce quantizes img to at most opts.Colors entries. When the opaque
// unique colors already fit they are kept exactly.
func Reduce(img image.Image, opts Options) (*Image, error) {
	if opts.Colors <= 0 || opts.Colors > MaxColors {
		opts.Colors = MaxColors
	}
	if opts.Iterations <= 0 {
		opts.Iterations = DefaultOptions().Iterations
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return nil, converr.New(converr.PaletteReductionFailed, errEmptyImage)
	}

	pixels := make([]color.NRGBA, 0, w*h)
	counts := make(map[color.NRGBA]int)
	hasAlpha := false
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			if c.A <= opts.AlphaCutoff {
				hasAlpha = true
				c = color.NRGBA{}
			} else {
				c.A = 255
				counts[c]++
			}
			pixels = append(pixels, c)
		}
	}

	capacity := opts.Colors
	if hasAlpha {
		capacity--
	}
	if capacity < 1 && len(counts) > 0 {
		return nil, converr.Newf(converr.PaletteReductionFailed, "palette of %d cannot hold opaque colors", opts.Colors)
	}

	unique := make([]color.NRGBA, 0, len(counts))
	for c := range counts {
		unique = append(unique, c)
	}
	sortColors(unique, counts)

	var pal []color.NRGBA
	lookup := make(map[color.NRGBA]uint8, len(unique))
	if len(unique) <= capacity {
		pal = unique
		for i, c := range unique {
			lookup[c] = uint8(i)
		}
	} else {
		points := make([]weighted, len(unique))
		for i, c := range unique {
			points[i] = weighted{c: toLab(c), w: float64(counts[c])}
		}
		centroids := kmeans(points, capacity, opts.Iterations, opts.Workers)
		if len(centroids) == 0 {
			return nil, converr.Newf(converr.PaletteReductionFailed, "clustering produced no colors")
		}
		pal = make([]color.NRGBA, len(centroids))
		for i, ct := range centroids {
			pal[i] = ct.toNRGBA()
		}
		for i, p := range points {
			lookup[unique[i]] = uint8(nearestIndex(p.c, centroids))
		}
	}

	out := &Image{Width: w, Height: h, Transparent: -1}
	out.Palette = append(out.Palette, pal...)
	if hasAlpha {
		for len(out.Palette) < opts.Colors-1 {
			out.Palette = append(out.Palette, padColor)
		}
		out.Transparent = len(out.Palette)
		out.Palette = append(out.Palette, color.NRGBA{R: TransparentColor.R, G: TransparentColor.G, B: TransparentColor.B})
	}

	out.Indices = make([]uint8, len(pixels))
	for i, c := range pixels {
		if c.A == 0 {
			out.Indices[i] = uint8(out.Transparent)
			continue
		}
		out.Indices[i] = lookup[c]
	}
	return out, nil
}

// sortColors orders by frequency, then by value, so palettes are
// reproducible.
func sortColors(cs []color.NRGBA, counts map[color.NRGBA]int) {
	sort.Slice(cs, func(i, j int) bool {
		a, b := cs[i], cs[j]
		if counts[a] != counts[b] {
			return counts[a] > counts[b]
		}
		if a.R != b.R {
			return a.R < b.R
		}
		if a.G != b.G {
			return a.G < b.G
		}
		return a.B < b.B
	})
}

// ColorCount returns the number of distinct palette entries in use.
func (im *Image) ColorCount() int {
	used := make(map[uint8]bool)
	for _, i := range im.Indices {
		used[i] = true
	}
	return len(used)
}

// Paletted converts to a standard library image. With export set the
// transparent slot gets its opaque key color and opaque-only palettes are
// padded to MaxColors, as written to disk.
func (im *Image) Paletted(export bool) *image.Paletted {
	pal := make(color.Palette, len(im.Palette))
	for i, c := range im.Palette {
		if export && i == im.Transparent {
			c = TransparentColor
		}
		pal[i] = c
	}
	if export && im.Transparent < 0 {
		for len(pal) < MaxColors {
			pal = append(pal, padColor)
		}
	}
	p := image.NewPaletted(image.Rect(0, 0, im.Width, im.Height), pal)
	copy(p.Pix, im.Indices)
	return p
}

// NRGBA expands the indexed image back to true color.
func (im *Image) NRGBA() *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, im.Width, im.Height))
	for i, idx := range im.Indices {
		c := im.Palette[idx]
		copy(out.Pix[i*4:i*4+4], []uint8{c.R, c.G, c.B, c.A})
	}
	return out
}

func (im *Image) String() string {
	return fmt.Sprintf("%dx%d, %d colors", im.Width, im.Height, len(im.Palette))
}
