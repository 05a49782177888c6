package raster

import (
	"image"
	"math"

	"golang.org/x/image/draw"
)

// FrameBuffer is a square RGBA target with a depth buffer. Larger depth
// is nearer the camera.
type FrameBuffer struct {
	Size  int
	Color []uint8   // RGBA interleaved, len = Size*Size*4
	Depth []float64 // len = Size*Size, initialized to -inf
}

func NewFrameBuffer(size int) *FrameBuffer {
	n := size * size
	depth := make([]float64, n)
	for i := range depth {
		depth[i] = math.Inf(-1)
	}
	return &FrameBuffer{
		Size:  size,
		Color: make([]uint8, n*4),
		Depth: depth,
	}
}

// Image copies the color buffer out.
func (fb *FrameBuffer) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, fb.Size, fb.Size))
	copy(img.Pix, fb.Color)
	return img
}

// downsample shrinks a supersampled frame to target pixels per side.
// Color is premultiplied during filtering so transparent edges do not
// bleed dark fringes.
func downsample(img *image.NRGBA, target int) *image.NRGBA {
	b := img.Bounds()
	if b.Dx() <= target {
		return img
	}

	premul := image.NewRGBA(b)
	for i := 0; i < len(img.Pix); i += 4 {
		a := uint32(img.Pix[i+3])
		premul.Pix[i] = uint8((uint32(img.Pix[i])*a + 127) / 255)
		premul.Pix[i+1] = uint8((uint32(img.Pix[i+1])*a + 127) / 255)
		premul.Pix[i+2] = uint8((uint32(img.Pix[i+2])*a + 127) / 255)
		premul.Pix[i+3] = img.Pix[i+3]
	}

	dst := image.NewRGBA(image.Rect(0, 0, target, target))
	draw.CatmullRom.Scale(dst, dst.Bounds(), premul, b, draw.Src, nil)

	out := image.NewNRGBA(dst.Bounds())
	for i := 0; i < len(dst.Pix); i += 4 {
		a := float64(dst.Pix[i+3])
		if a > 1 {
			inv := 255 / a
			out.Pix[i] = clamp255(float64(dst.Pix[i]) * inv)
			out.Pix[i+1] = clamp255(float64(dst.Pix[i+1]) * inv)
			out.Pix[i+2] = clamp255(float64(dst.Pix[i+2]) * inv)
		}
		out.Pix[i+3] = dst.Pix[i+3]
	}
	return out
}

func clamp255(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
