package emit

import (
	"io"

	"brush2mdl/internal/palette"

	"github.com/HugoSmits86/nativewebp"
	"golang.org/x/image/bmp"
)

// WriteBMP encodes im as an 8-bit paletted bitmap.
func WriteBMP(w io.Writer, im *palette.Image) error {
	return bmp.Encode(w, im.Paletted(true))
}

// WriteWebP encodes a lossless true-color preview of the reduced image.
func WriteWebP(w io.Writer, im *palette.Image) error {
	return nativewebp.Encode(w, im.NRGBA(), nil)
}
