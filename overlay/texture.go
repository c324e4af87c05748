package overlay

import (
	"fmt"
	"log"

	"github.com/richinsley/gowireframe/colorspace"
	"github.com/richinsley/gowireframe/solver"
)

// ColoringTextureName is the name given to every wireframe coloring texture.
const ColoringTextureName = "ktWireframeTexture"

// ColoringTexture is the per-region tint raster sampled by textured wireframes.
type ColoringTexture struct {
	Name   string
	Width  int
	Height int
	// Pix holds RGBA floats, row-major.
	Pix []float32

	bindCode uint32
	dirty    bool
}

func newColoringTexture(width, height int) *ColoringTexture {
	return &ColoringTexture{
		Name:   ColoringTextureName,
		Width:  width,
		Height: height,
		Pix:    make([]float32, width*height*4),
	}
}

// BindCode is the GPU name of the texture, zero while it is not resident.
func (t *ColoringTexture) BindCode() uint32 {
	if t == nil {
		return 0
	}
	return t.bindCode
}

func (t *ColoringTexture) sameSize(width, height int) bool {
	return t != nil && t.Width == width && t.Height == height
}

// SampleDown halves an image in both axes by keeping every other pixel, starting at
// the first. Odd sizes round up. Pixels are not averaged.
func SampleDown(im *solver.Image) *solver.Image {
	w, h := (im.Width+1)/2, (im.Height+1)/2
	out := solver.NewImage(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			out.Set(x, y, im.At(x*2, y*2))
		}
	}
	return out
}

// WithAlpha expands RGB pixels to opaque RGBA.
func WithAlpha(im *solver.Image, dst []float32) []float32 {
	n := im.Width * im.Height
	if cap(dst) < n*4 {
		dst = make([]float32, n*4)
	}
	dst = dst[:n*4]
	for i := 0; i < n; i++ {
		dst[i*4] = im.Pix[i*3]
		dst[i*4+1] = im.Pix[i*3+1]
		dst[i*4+2] = im.Pix[i*3+2]
		dst[i*4+3] = 1
	}
	return dst
}

// coloring is the color and texture state of a raster session.
type coloring struct {
	colors      [][3]float32
	opacity     float32
	texture     *ColoringTexture
	allocations int
}

func defaultColoring() coloring {
	return coloring{
		colors:  [][3]float32{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}},
		opacity: 0.3,
	}
}

// InitColors stores up to three display colors in linear space along with the
// wireframe opacity.
func (s *RasterSession) InitColors(colors [][3]float32, opacity float32) {
	if len(colors) > 3 {
		colors = colors[:3]
	}
	linear := make([][3]float32, len(colors))
	for i, c := range colors {
		linear[i] = colorspace.ToLinear(c)
	}
	s.colors = linear
	s.opacity = colorspace.Clamp01(opacity)
}

// Colors returns the linear base colors.
func (s *RasterSession) Colors() [][3]float32 {
	return s.colors
}

func (s *RasterSession) Opacity() float32 {
	return s.opacity
}

// Texture returns the current coloring texture, or nil.
func (s *RasterSession) Texture() *ColoringTexture {
	return s.texture
}

// TextureAllocations counts how many coloring textures the session has created.
func (s *RasterSession) TextureAllocations() int {
	return s.allocations
}

// InitWireframeImage rebuilds the coloring texture from the solver's tinted face texture.
// It returns false, leaving the session in simple mode, when specials are hidden or
// the solver has no texture.
func (s *RasterSession) InitWireframeImage(sv solver.Solver, showSpecials bool) bool {
	if !showSpecials {
		s.SwitchToSimple()
		return false
	}
	if sv == nil || !sv.FaceTextureAvailable() {
		s.releaseTexture()
		s.SwitchToSimple()
		return false
	}

	sv.SetFaceTextureColors(s.colors)
	full := sv.FaceTexture()
	if full.Empty() {
		log.Printf("Wireframe: solver returned an empty face texture")
		s.releaseTexture()
		s.SwitchToSimple()
		return false
	}
	small := SampleDown(full)

	if !s.texture.sameSize(small.Width, small.Height) {
		s.releaseTexture()
		s.texture = newColoringTexture(small.Width, small.Height)
		s.allocations++
	}
	s.texture.Pix = WithAlpha(small, s.texture.Pix)
	s.texture.dirty = true
	s.SwitchToTextured()
	return true
}

// ActivateTexture uploads the coloring texture when it is not resident or has new
// pixels, then touches it. A failed upload breaks the session.
func (s *RasterSession) ActivateTexture() error {
	if s.texture == nil {
		return ErrNoTexture
	}
	if s.background() {
		return nil
	}
	if s.texture.bindCode == 0 || s.texture.dirty {
		code, err := s.dev.UploadTexture(s.texture)
		if err == nil && code == 0 {
			err = fmt.Errorf("device returned binding code 0")
		}
		if err != nil {
			s.broken = true
			return fmt.Errorf("%w: %v", ErrTextureActivation, err)
		}
		s.texture.bindCode = code
		s.texture.dirty = false
	}
	s.dev.TouchTexture(s.texture)
	return nil
}

// DeactivateTexture frees the GPU copy of the coloring texture.
func (s *RasterSession) DeactivateTexture() {
	if s.texture == nil || s.texture.bindCode == 0 {
		return
	}
	if !s.background() {
		s.dev.FreeTexture(s.texture)
	}
	s.texture.bindCode = 0
}

func (s *RasterSession) releaseTexture() {
	s.DeactivateTexture()
	s.texture = nil
}

// checkColoringTexture reports whether the current mode can draw, activating the
// texture if needed.
func (s *RasterSession) checkColoringTexture() bool {
	if s.mode != ModeTextured {
		return true
	}
	if s.texture == nil {
		return false
	}
	if s.texture.bindCode == 0 || s.texture.dirty {
		if err := s.ActivateTexture(); err != nil {
			log.Printf("Wireframe: %v", err)
			return false
		}
	}
	return true
}
