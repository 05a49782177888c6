package texture

import (
	"image"

	"golang.org/x/image/draw"
)

// MaxSize is the largest texture edge studio models accept.
const MaxSize = 512

// Fit scales img so both edges are multiples of 16 and no edge exceeds
// max, keeping the aspect ratio as closely as the grid allows. Images that
// already fit are returned unchanged.
func Fit(img *image.NRGBA, max int) *image.NRGBA {
	if max <= 0 {
		max = MaxSize
	}
	b := img.Bounds()
	w, h := fitDims(b.Dx(), b.Dy(), max)
	if w == b.Dx() && h == b.Dy() {
		return img
	}
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

func fitDims(w, h, max int) (int, int) {
	scale := 1.0
	if w > max || h > max {
		if w >= h {
			scale = float64(max) / float64(w)
		} else {
			scale = float64(max) / float64(h)
		}
	}
	return snap16(float64(w) * scale), snap16(float64(h) * scale)
}

func snap16(v float64) int {
	n := int(v/16+0.5) * 16
	if n < 16 {
		n = 16
	}
	return n
}
