// Package solver describes the head-fitting solver the overlay reads from.
//
// The overlay only queries the solver. Fitting, camera solving and texture projection
// happen behind the Solver interface.
package solver

import (
	"github.com/richinsley/gowireframe/geometry"
)

// Image is an RGB float raster, row-major, three values per pixel.
type Image struct {
	Width  int
	Height int
	Pix    []float32
}

func NewImage(width, height int) *Image {
	return &Image{Width: width, Height: height, Pix: make([]float32, width*height*3)}
}

// At returns the RGB triple at (x, y).
func (im *Image) At(x, y int) [3]float32 {
	i := (y*im.Width + x) * 3
	return [3]float32{im.Pix[i], im.Pix[i+1], im.Pix[i+2]}
}

func (im *Image) Set(x, y int, c [3]float32) {
	i := (y*im.Width + x) * 3
	im.Pix[i], im.Pix[i+1], im.Pix[i+2] = c[0], c[1], c[2]
}

func (im *Image) Empty() bool {
	return im == nil || im.Width <= 0 || im.Height <= 0
}

// Solver is the query surface of a fitted head model.
type Solver interface {
	FaceTextureAvailable() bool
	// FaceTexture returns the region texture tinted with the colors from the last
	// SetFaceTextureColors call.
	FaceTexture() *Image
	SetFaceTextureColors(colors [][3]float32)
	Keyframes() []int
	// ModelAt returns the fitted polygon mesh, with UVs, at a keyframe.
	ModelAt(keyframe int) geometry.PolyMesh
}
