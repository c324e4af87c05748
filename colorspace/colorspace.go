// Package colorspace converts overlay colors between display (gamma-encoded) and linear space.
package colorspace

import (
	"github.com/chewxy/math32"
)

// Gamma is the fixed display exponent used for wireframe colors.
const Gamma float32 = 2.2

// ToLinear decodes a display color: linear = encoded ^ gamma.
func ToLinear(c [3]float32) [3]float32 {
	return powColor(c, Gamma)
}

// ToDisplay is the inverse of ToLinear.
func ToDisplay(c [3]float32) [3]float32 {
	return powColor(c, 1/Gamma)
}

func powColor(c [3]float32, p float32) [3]float32 {
	var out [3]float32
	for i, x := range c {
		out[i] = math32.Pow(clamp01(x), p)
	}
	return out
}

func clamp01(x float32) float32 {
	switch {
	case x < 0:
		return 0
	case x > 1:
		return 1
	}
	return x
}

// Clamp01 limits an opacity or channel value to [0, 1].
func Clamp01(x float32) float32 {
	return clamp01(x)
}
