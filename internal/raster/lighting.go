package raster

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Light is a key plus rim light in view space: x right, y up, z toward
// the camera.
type Light struct {
	Key      mgl64.Vec3
	Rim      mgl64.Vec3
	Ambient  float64
	Diffuse  float64
	RimGain  float64
	Exposure float64
}

func DefaultLight() Light {
	return Light{
		Key:      mgl64.Vec3{-0.45, 0.75, 0.5}.Normalize(),
		Rim:      mgl64.Vec3{0.6, 0.2, -0.75}.Normalize(),
		Ambient:  0.45,
		Diffuse:  0.95,
		RimGain:  0.25,
		Exposure: 1.1,
	}
}

// Shade returns the light scalar for a unit face normal.
func (l *Light) Shade(n mgl64.Vec3) float64 {
	key := math.Max(0, n.Dot(l.Key))
	rim := math.Max(0, n.Dot(l.Rim))
	return (l.Ambient + key*l.Diffuse + rim*l.RimGain) * l.Exposure
}

var srgbToLinear [256]float64

func init() {
	for i := range srgbToLinear {
		srgbToLinear[i] = math.Pow(float64(i)/255, 2.2)
	}
}

// acesTonemap is the ACES filmic curve on a linear value.
func acesTonemap(x float64) float64 {
	return (x * (2.51*x + 0.03)) / (x*(2.43*x+0.59) + 0.14)
}

// lit applies shade to an sRGB channel and re-encodes it.
func lit(c uint8, shade float64) uint8 {
	return clamp255(math.Pow(acesTonemap(srgbToLinear[c]*shade), 1/2.2) * 255)
}
