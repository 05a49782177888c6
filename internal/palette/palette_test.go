package palette

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"brush2mdl/internal/converr"
)

func gradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 255 / (w - 1)), G: uint8(y * 255 / (h - 1)), B: uint8((x + y) % 256), A: 255})
		}
	}
	return img
}

func TestReducePassThrough(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	colors := []color.NRGBA{{255, 0, 0, 255}, {0, 255, 0, 255}, {10, 20, 30, 255}}
	for i := 0; i < 16; i++ {
		img.SetNRGBA(i%4, i/4, colors[i%3])
	}
	out, err := Reduce(img, DefaultOptions())
	if err != nil {
		t.Fatalf("reduce: %v", err)
	}
	if len(out.Palette) != 3 {
		t.Errorf("expected 3 palette entries, got %d", len(out.Palette))
	}
	if out.Transparent != -1 {
		t.Errorf("expected no transparent index, got %d", out.Transparent)
	}
	back := out.NRGBA()
	for i := 0; i < 16; i++ {
		if got := back.NRGBAAt(i%4, i/4); got != colors[i%3] {
			t.Fatalf("pixel %d: expected %v, got %v", i, colors[i%3], got)
		}
	}
}

func TestReduceQuantizes(t *testing.T) {
	img := gradient(64, 64)
	out, err := Reduce(img, Options{Colors: 16, Iterations: 8})
	if err != nil {
		t.Fatalf("reduce: %v", err)
	}
	if len(out.Palette) > 16 {
		t.Errorf("expected at most 16 colors, got %d", len(out.Palette))
	}
	if len(out.Indices) != 64*64 {
		t.Fatalf("expected %d indices, got %d", 64*64, len(out.Indices))
	}
	for _, idx := range out.Indices {
		if int(idx) >= len(out.Palette) {
			t.Fatalf("index %d out of palette range", idx)
		}
	}
	// every pixel maps to a reasonably close color
	back := out.NRGBA()
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			a, b := toLab(img.NRGBAAt(x, y)), toLab(back.NRGBAAt(x, y))
			if a.dist2(b) > 0.1 {
				t.Fatalf("pixel (%d,%d) drifted too far", x, y)
			}
		}
	}
}

func TestReduceDeterministic(t *testing.T) {
	img := gradient(32, 32)
	a, err := Reduce(img, Options{Colors: 8})
	if err != nil {
		t.Fatalf("reduce: %v", err)
	}
	b, err := Reduce(img, Options{Colors: 8, Workers: 3})
	if err != nil {
		t.Fatalf("reduce: %v", err)
	}
	for i := range a.Palette {
		if a.Palette[i] != b.Palette[i] {
			t.Fatalf("palette entry %d differs", i)
		}
	}
	for i := range a.Indices {
		if a.Indices[i] != b.Indices[i] {
			t.Fatalf("index %d differs", i)
		}
	}
}

func TestReduceStableOnRequantize(t *testing.T) {
	first, err := Reduce(gradient(48, 48), Options{Colors: 32})
	if err != nil {
		t.Fatalf("reduce: %v", err)
	}
	for _, n := range []int{32, 64, 256} {
		again, err := Reduce(first.Paletted(false), Options{Colors: n})
		if err != nil {
			t.Fatalf("requantize N=%d: %v", n, err)
		}
		a, b := first.NRGBA(), again.NRGBA()
		for i := range a.Pix {
			if a.Pix[i] != b.Pix[i] {
				t.Fatalf("N=%d: pixel byte %d changed from %d to %d", n, i, a.Pix[i], b.Pix[i])
			}
		}
	}
}

func TestReduceTransparency(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.SetNRGBA(0, 0, color.NRGBA{200, 10, 10, 255})
	img.SetNRGBA(1, 0, color.NRGBA{0, 0, 0, 0})
	img.SetNRGBA(0, 1, color.NRGBA{50, 50, 50, 40})
	img.SetNRGBA(1, 1, color.NRGBA{90, 90, 200, 180})

	out, err := Reduce(img, DefaultOptions())
	if err != nil {
		t.Fatalf("reduce: %v", err)
	}
	if out.Transparent != 255 {
		t.Fatalf("expected transparent index 255, got %d", out.Transparent)
	}
	if len(out.Palette) != 256 {
		t.Errorf("expected padded palette of 256, got %d", len(out.Palette))
	}
	if out.Indices[1] != 255 || out.Indices[2] != 255 {
		t.Errorf("expected low-alpha pixels at 255, got %v", out.Indices)
	}
	if out.Palette[out.Indices[3]] != (color.NRGBA{90, 90, 200, 255}) {
		t.Errorf("semi-opaque pixel should become opaque, got %v", out.Palette[out.Indices[3]])
	}
	p := out.Paletted(true)
	if p.Palette[255] != TransparentColor {
		t.Errorf("expected exported key color, got %v", p.Palette[255])
	}
}

func TestReduceEmpty(t *testing.T) {
	_, err := Reduce(image.NewNRGBA(image.Rect(0, 0, 0, 0)), DefaultOptions())
	if !errors.Is(err, converr.ErrPaletteReductionFailed) {
		t.Errorf("expected PaletteReductionFailed, got %v", err)
	}
}

func TestOklabRoundTrip(t *testing.T) {
	for _, c := range []color.NRGBA{{0, 0, 0, 255}, {255, 255, 255, 255}, {12, 200, 77, 255}, {255, 0, 128, 255}} {
		if got := toLab(c).toNRGBA(); got != c {
			t.Errorf("expected %v, got %v", c, got)
		}
	}
}

func TestPalettedExportPads(t *testing.T) {
	im := &Image{Width: 1, Height: 1, Palette: []color.NRGBA{{1, 2, 3, 255}}, Indices: []uint8{0}, Transparent: -1}
	if got := len(im.Paletted(true).Palette); got != MaxColors {
		t.Errorf("expected %d entries, got %d", MaxColors, got)
	}
	if got := len(im.Paletted(false).Palette); got != 1 {
		t.Errorf("expected 1 entry, got %d", got)
	}
}
