package overlay

import (
	"testing"

	"github.com/richinsley/gowireframe/colorspace"
	"github.com/richinsley/gowireframe/solver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampleDown(t *testing.T) {
	im := solver.NewImage(5, 3)
	for y := 0; y < 3; y++ {
		for x := 0; x < 5; x++ {
			im.Set(x, y, [3]float32{float32(x), float32(y), 0})
		}
	}
	out := SampleDown(im)
	require.Equal(t, 3, out.Width)
	require.Equal(t, 2, out.Height)
	assert.Equal(t, [3]float32{0, 0, 0}, out.At(0, 0))
	assert.Equal(t, [3]float32{2, 0, 0}, out.At(1, 0))
	assert.Equal(t, [3]float32{4, 2, 0}, out.At(2, 1))
}

func TestWithAlpha(t *testing.T) {
	im := solver.NewImage(1, 2)
	im.Set(0, 0, [3]float32{0.1, 0.2, 0.3})
	im.Set(0, 1, [3]float32{0.4, 0.5, 0.6})
	assert.Equal(t, []float32{0.1, 0.2, 0.3, 1, 0.4, 0.5, 0.6, 1}, WithAlpha(im, nil))
}

func TestInitColors(t *testing.T) {
	r := newRig(t)
	r.s.InitColors([][3]float32{{1, 1, 1}, {0.5, 0, 0}, {0, 0.5, 0}, {0, 0, 0.5}}, 1.5)

	require.Len(t, r.s.Colors(), 3)
	assert.Equal(t, [3]float32{1, 1, 1}, r.s.Colors()[0])
	assert.Equal(t, colorspace.ToLinear([3]float32{0.5, 0, 0}), r.s.Colors()[1])
	assert.InDelta(t, 0.2176, r.s.Colors()[1][0], 1e-4)
	assert.Equal(t, float32(1), r.s.Opacity())
}

func TestInitWireframeImageHidesSpecials(t *testing.T) {
	r := newRig(t)
	sv := texturedSolver(4, 4)
	assert.False(t, r.s.InitWireframeImage(sv, false))
	assert.Equal(t, ModeSimple, r.s.Mode())
	assert.Nil(t, r.s.Texture())
	assert.Nil(t, sv.colors)
}

func TestInitWireframeImageWithoutTexture(t *testing.T) {
	r := newRig(t)
	assert.False(t, r.s.InitWireframeImage(&fakeSolver{}, true))
	assert.False(t, r.s.InitWireframeImage(nil, true))
	assert.Equal(t, ModeSimple, r.s.Mode())
}

func TestInitWireframeImagePassesColors(t *testing.T) {
	r := newRig(t)
	r.s.InitColors([][3]float32{{0.2, 0.4, 0.6}}, 0.5)
	sv := texturedSolver(3, 3)
	require.True(t, r.s.InitWireframeImage(sv, true))

	assert.Equal(t, r.s.Colors(), sv.colors)
	tex := r.s.Texture()
	require.NotNil(t, tex)
	assert.Equal(t, ColoringTextureName, tex.Name)
	assert.Equal(t, 2, tex.Width)
	assert.Equal(t, 2, tex.Height)
	assert.Len(t, tex.Pix, 16)
	assert.Equal(t, ModeTextured, r.s.Mode())
}

func TestTextureReusedForSameSize(t *testing.T) {
	r := newRig(t)
	sv := texturedSolver(8, 8)
	require.True(t, r.s.InitWireframeImage(sv, true))
	first := r.s.Texture()
	require.NoError(t, r.s.ActivateTexture())
	code := first.BindCode()

	sv.texture.Set(0, 0, [3]float32{1, 1, 1})
	require.True(t, r.s.InitWireframeImage(sv, true))
	assert.Same(t, first, r.s.Texture())
	assert.Equal(t, 1, r.s.TextureAllocations())
	assert.Equal(t, float32(1), first.Pix[0])

	// new pixels force a re-upload into the same GPU texture
	require.NoError(t, r.s.ActivateTexture())
	assert.Equal(t, 2, r.dev.uploads)
	assert.Equal(t, code, first.BindCode())

	sv.texture = solver.NewImage(16, 8)
	require.True(t, r.s.InitWireframeImage(sv, true))
	assert.NotSame(t, first, r.s.Texture())
	assert.Equal(t, 2, r.s.TextureAllocations())
	assert.Equal(t, 1, r.dev.frees)
	assert.Zero(t, first.BindCode())
}

func TestActivateTextureWithoutTexture(t *testing.T) {
	r := newRig(t)
	assert.ErrorIs(t, r.s.ActivateTexture(), ErrNoTexture)
	assert.NotEqual(t, StateBroken, r.s.State())
}

func TestActivateTextureTouches(t *testing.T) {
	r := newRig(t)
	require.True(t, r.s.InitWireframeImage(texturedSolver(4, 4), true))
	require.NoError(t, r.s.ActivateTexture())
	require.NoError(t, r.s.ActivateTexture())
	assert.Equal(t, 1, r.dev.uploads)
	assert.Equal(t, 2, r.dev.touches)

	r.s.DeactivateTexture()
	assert.Zero(t, r.s.Texture().BindCode())
	assert.Equal(t, 1, r.dev.frees)
	r.s.DeactivateTexture()
	assert.Equal(t, 1, r.dev.frees)
}

func TestTexturedFallsBackWhenNotResident(t *testing.T) {
	r := newRig(t)
	r.prepare(t, texturedSolver(4, 4), true)
	r.s.texture.dirty = false

	cmds := r.s.plan(&Frame{})
	require.NotEmpty(t, cmds)
	assert.Equal(t, ModeSimple, r.s.Mode())
	for _, c := range cmds {
		assert.NotEqual(t, OpBindTexture, c.Op)
	}
}
