package raster

import (
	"image"
	"math"
)

// sample reads the texel under (u, v) with wrapping. Studio models are
// point sampled, so there is no filtering.
func sample(tex *image.NRGBA, u, v float64) (r, g, b, a uint8) {
	w, h := tex.Rect.Dx(), tex.Rect.Dy()
	x := wrap(int(math.Floor(u*float64(w))), w)
	y := wrap(int(math.Floor(v*float64(h))), h)
	i := y*tex.Stride + x*4
	return tex.Pix[i], tex.Pix[i+1], tex.Pix[i+2], tex.Pix[i+3]
}

func wrap(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}
