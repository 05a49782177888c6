package texture

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"brush2mdl/internal/converr"

	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"
)

// TGA has no magic number, so decoders are chosen by extension rather
// than by sniffing.
var decoders = map[string]func(io.Reader) (image.Image, error){
	".png":  png.Decode,
	".tga":  tga.Decode,
	".bmp":  bmp.Decode,
	".jpg":  jpeg.Decode,
	".jpeg": jpeg.Decode,
}

// LoadTexture reads a PNG, TGA, BMP or JPEG file and returns an NRGBA image.
func LoadTexture(path string) (*image.NRGBA, error) {
	ext := strings.ToLower(filepath.Ext(path))
	decode, ok := decoders[ext]
	if !ok {
		return nil, converr.Newf(converr.UnsupportedImageFormat, "unknown extension %q", ext).WithPath(path)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, converr.New(converr.IoFailure, fmt.Errorf("texture: read %s: %w", path, err))
	}

	img, err := decode(bytes.NewReader(raw))
	if err != nil {
		return nil, converr.New(converr.UnsupportedImageFormat, fmt.Errorf("texture: decode: %w", err)).WithPath(path)
	}

	return toNRGBA(img), nil
}

// toNRGBA converts any image to NRGBA format with its origin at (0,0).
func toNRGBA(src image.Image) *image.NRGBA {
	if n, ok := src.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) {
		return n
	}
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}
