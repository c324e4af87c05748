package solver

import (
	"fmt"
	"image"
	"os"

	"github.com/richinsley/gowireframe/geometry"
	"golang.org/x/image/draw"

	// Blank imports for image decoders so image.Decode can handle them.
	_ "image/jpeg"
	_ "image/png"
)

// Region identifiers encoded in a mask image.
const (
	RegionBase = iota
	RegionSpecial
	RegionMidline
	regionNone = -1
)

// Static is an in-process solver whose fitted result is fixed: a polygon mesh and a
// region mask. It is used for offline previews and for tests.
type Static struct {
	polys     *geometry.Polygons
	regions   []int8
	width     int
	height    int
	colors    [][3]float32
	keyframes []int
}

// NewStatic builds a solver around polys. mask may be nil, in which case no face
// texture is available.
func NewStatic(polys *geometry.Polygons, mask image.Image, keyframes []int) *Static {
	s := &Static{
		polys:     polys,
		keyframes: keyframes,
		colors:    [][3]float32{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}},
	}
	if s.keyframes == nil {
		s.keyframes = []int{0}
	}
	if mask != nil {
		s.setMask(mask)
	}
	return s
}

// LoadMask decodes a region mask image from disk.
func LoadMask(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open mask: %w", err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode mask %s: %w", path, err)
	}
	return img, nil
}

// setMask classifies every pixel by its dominant channel: red is the base region,
// green the special region and blue the midline. Dark pixels belong to no region.
// Rows are stored bottom-up so row 0 is UV v=0, the bottom edge of the mask image.
func (s *Static) setMask(mask image.Image) {
	b := mask.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Copy(rgba, image.Point{}, mask, b, draw.Src, nil)

	s.width, s.height = b.Dx(), b.Dy()
	s.regions = make([]int8, s.width*s.height)
	for y := 0; y < s.height; y++ {
		for x := 0; x < s.width; x++ {
			o := rgba.PixOffset(x, y)
			r, g, bl := rgba.Pix[o], rgba.Pix[o+1], rgba.Pix[o+2]
			s.regions[(s.height-1-y)*s.width+x] = classify(r, g, bl)
		}
	}
}

func classify(r, g, b uint8) int8 {
	const threshold = 32
	switch {
	case r < threshold && g < threshold && b < threshold:
		return regionNone
	case r >= g && r >= b:
		return RegionBase
	case g >= b:
		return RegionSpecial
	default:
		return RegionMidline
	}
}

func (s *Static) FaceTextureAvailable() bool {
	return s.regions != nil && s.width > 0 && s.height > 0
}

func (s *Static) SetFaceTextureColors(colors [][3]float32) {
	s.colors = append(s.colors[:0:0], colors...)
}

func (s *Static) FaceTexture() *Image {
	if !s.FaceTextureAvailable() {
		return nil
	}
	im := NewImage(s.width, s.height)
	for y := 0; y < s.height; y++ {
		for x := 0; x < s.width; x++ {
			r := s.regions[y*s.width+x]
			if r == regionNone || int(r) >= len(s.colors) {
				continue
			}
			im.Set(x, y, s.colors[r])
		}
	}
	return im
}

func (s *Static) Keyframes() []int {
	return s.keyframes
}

func (s *Static) ModelAt(keyframe int) geometry.PolyMesh {
	return s.polys
}
