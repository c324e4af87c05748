package solver

import (
	"image"
	"image/color"
	"testing"

	"github.com/richinsley/gowireframe/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMask() image.Image {
	m := image.NewNRGBA(image.Rect(0, 0, 4, 2))
	m.Set(0, 0, color.NRGBA{255, 0, 0, 255})
	m.Set(1, 0, color.NRGBA{0, 200, 10, 255})
	m.Set(2, 0, color.NRGBA{0, 10, 200, 255})
	m.Set(3, 0, color.NRGBA{0, 0, 0, 255})
	return m
}

func TestStaticWithoutMask(t *testing.T) {
	s := NewStatic(&geometry.Polygons{}, nil, nil)
	assert.False(t, s.FaceTextureAvailable())
	assert.Nil(t, s.FaceTexture())
	assert.Equal(t, []int{0}, s.Keyframes())
}

func TestStaticFaceTexture(t *testing.T) {
	s := NewStatic(&geometry.Polygons{}, testMask(), []int{3, 4})
	require.True(t, s.FaceTextureAvailable())

	colors := [][3]float32{{0.1, 0, 0}, {0, 0.2, 0}, {0, 0, 0.3}}
	s.SetFaceTextureColors(colors)
	colors[0] = [3]float32{9, 9, 9}

	im := s.FaceTexture()
	require.Equal(t, 4, im.Width)
	require.Equal(t, 2, im.Height)
	// the mask's top row lands on the last texture row
	assert.Equal(t, [3]float32{0.1, 0, 0}, im.At(0, 1))
	assert.Equal(t, [3]float32{0, 0.2, 0}, im.At(1, 1))
	assert.Equal(t, [3]float32{0, 0, 0.3}, im.At(2, 1))
	assert.Equal(t, [3]float32{}, im.At(3, 1))
	// transparent pixels of the mask's bottom row
	assert.Equal(t, [3]float32{}, im.At(0, 0))
	assert.Equal(t, []int{3, 4}, s.Keyframes())
}

func TestClassify(t *testing.T) {
	assert.Equal(t, int8(regionNone), classify(10, 10, 10))
	assert.Equal(t, int8(RegionBase), classify(200, 200, 0))
	assert.Equal(t, int8(RegionSpecial), classify(0, 200, 200))
	assert.Equal(t, int8(RegionMidline), classify(0, 100, 200))
}

func TestStaticMaskRowsFollowUV(t *testing.T) {
	// special region on top, base region below
	m := image.NewRGBA(image.Rect(0, 0, 2, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 2; x++ {
			c := color.RGBA{255, 0, 0, 255}
			if y == 0 {
				c = color.RGBA{0, 255, 0, 255}
			}
			m.SetRGBA(x, y, c)
		}
	}
	s := NewStatic(&geometry.Polygons{}, m, nil)
	s.SetFaceTextureColors([][3]float32{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}})

	im := s.FaceTexture()
	assert.Equal(t, [3]float32{1, 0, 0}, im.At(0, 0), "v=0 is the bottom of the mask")
	assert.Equal(t, [3]float32{1, 0, 0}, im.At(1, 2))
	assert.Equal(t, [3]float32{0, 1, 0}, im.At(0, 3), "v=1 is the top of the mask")
	assert.Equal(t, [3]float32{0, 1, 0}, im.At(1, 3))
}
