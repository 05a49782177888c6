package texture

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"brush2mdl/internal/converr"

	"golang.org/x/image/bmp"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = uint8(i)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
}

func TestBuildIndex(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "props")
	os.MkdirAll(sub, 0755)
	writePNG(t, filepath.Join(sub, "Crate.png"), 16, 16)
	os.WriteFile(filepath.Join(sub, "crate.jpg"), []byte("x"), 0644)
	os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("x"), 0644)

	idx := BuildIndex(dir)
	if idx.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", idx.Len())
	}
	tests := []struct {
		name string
		ok   bool
	}{
		{"crate", true},
		{"CRATE", true},
		{`textures\crate.png`, true},
		{"crate2", false},
	}
	for _, tt := range tests {
		path, ok := idx.ResolvePath(tt.name)
		if ok != tt.ok {
			t.Errorf("%s: expected ok=%v, got %v", tt.name, tt.ok, ok)
		}
		if ok && filepath.Ext(path) != ".png" {
			t.Errorf("%s: expected png to win, got %s", tt.name, path)
		}
	}
}

func TestBuildIndexDirOrder(t *testing.T) {
	a, b := t.TempDir(), t.TempDir()
	writePNG(t, filepath.Join(a, "wall.png"), 16, 16)
	writePNG(t, filepath.Join(b, "wall.png"), 32, 32)
	idx := BuildIndex(a, b)
	path, _ := idx.ResolvePath("wall")
	if filepath.Dir(path) != a {
		t.Errorf("expected first dir to win, got %s", path)
	}
}

func TestCacheResolve(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "{fence.png"), 32, 16)

	bmpPath := filepath.Join(dir, "floor.bmp")
	f, _ := os.Create(bmpPath)
	bmp.Encode(f, image.NewRGBA(image.Rect(0, 0, 8, 8)))
	f.Close()

	os.WriteFile(filepath.Join(dir, "broken.tga"), []byte("not a tga"), 0644)

	c := NewCache(BuildIndex(dir))

	img, err := c.Resolve("{fence")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if img.Bounds().Dx() != 32 || img.Bounds().Dy() != 16 {
		t.Errorf("unexpected size %v", img.Bounds())
	}
	again, _ := c.Resolve("{FENCE")
	if again != img {
		t.Error("expected cached image on second resolve")
	}

	if w, h, ok := c.TextureSize("floor"); !ok || w != 8 || h != 8 {
		t.Errorf("expected 8x8 bmp, got %dx%d %v", w, h, ok)
	}

	_, err = c.Resolve("missing")
	if !errors.Is(err, converr.ErrMissingTexture) {
		t.Errorf("expected MissingTexture, got %v", err)
	}
	_, err = c.Resolve("broken")
	if !errors.Is(err, converr.ErrUnsupportedImageFormat) {
		t.Errorf("expected UnsupportedImageFormat, got %v", err)
	}
	var ce *converr.Error
	if errors.As(err, &ce) && ce.Texture != "broken" {
		t.Errorf("expected texture identity, got %q", ce.Texture)
	}
}

func TestLoadTextureUnknownExtension(t *testing.T) {
	_, err := LoadTexture(filepath.Join(t.TempDir(), "x.ozj"))
	if !errors.Is(err, converr.ErrUnsupportedImageFormat) {
		t.Errorf("expected UnsupportedImageFormat, got %v", err)
	}
}

func TestFit(t *testing.T) {
	tests := []struct {
		w, h   int
		ww, wh int
	}{
		{64, 64, 64, 64},
		{100, 40, 96, 48},
		{1024, 256, 512, 128},
		{8, 8, 16, 16},
		{300, 1200, 128, 512},
	}
	for _, tt := range tests {
		img := image.NewNRGBA(image.Rect(0, 0, tt.w, tt.h))
		img.SetNRGBA(0, 0, color.NRGBA{255, 0, 0, 255})
		out := Fit(img, MaxSize)
		if out.Bounds().Dx() != tt.ww || out.Bounds().Dy() != tt.wh {
			t.Errorf("%dx%d: expected %dx%d, got %v", tt.w, tt.h, tt.ww, tt.wh, out.Bounds())
		}
		if tt.w == tt.ww && tt.h == tt.wh && out != img {
			t.Errorf("%dx%d: expected image returned unchanged", tt.w, tt.h)
		}
	}
}
