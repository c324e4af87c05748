package overlay

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/gowireframe/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newResidualRig(t *testing.T) (*ResidualSession, *fakeHost, *registry.Registry, *fakeDevice) {
	t.Helper()
	host, reg, dev := newFakeHost(), registry.New(), newFakeDevice()
	s, err := NewResidualSession(host, reg, dev)
	require.NoError(t, err)
	return s, host, reg, dev
}

func TestResidualVertices(t *testing.T) {
	s, _, _, _ := newResidualRig(t)
	red := mgl32.Vec4{1, 0, 0, 1}
	blue := mgl32.Vec4{0, 0, 1, 1}

	s.SetColorVertices(red, []mgl32.Vec2{{0, 0}, {1, 1}})
	s.AddVerticesColors([]mgl32.Vec2{{2, 2}}, []mgl32.Vec4{blue})
	assert.Len(t, s.Vertices(), 3)
	assert.Equal(t, []mgl32.Vec4{red, red, blue}, s.VertexColors())

	s.Recolor(blue)
	assert.Equal(t, []mgl32.Vec4{blue, blue, blue}, s.VertexColors())

	s.SetVerticesColors([]mgl32.Vec2{{5, 5}}, []mgl32.Vec4{red})
	assert.Equal(t, []mgl32.Vec2{{5, 5}}, s.Vertices())

	s.ClearVertices()
	assert.Empty(t, s.Vertices())
	assert.Empty(t, s.VertexColors())
}

func TestResidualSegments(t *testing.T) {
	s, _, _, dev := newResidualRig(t)
	s.SetSegments(
		[]mgl32.Vec2{{0, 0}, {10, 10}},
		[]mgl32.Vec2{{3, 4}, {10, 20}, {99, 99}},
		mgl32.Vec4{0, 1, 0, 1},
	)
	require.Len(t, s.Vertices(), 4)
	require.NoError(t, s.CreateBatch())

	spec, ok := dev.batchFor(ProgramResidual)
	require.True(t, ok)
	assert.Equal(t, Lines, spec.Primitive)
	require.Len(t, spec.Attributes, 3)
	assert.Equal(t, []float32{0, 0, 3, 4, 10, 10, 10, 20}, spec.Attributes[0].Data)
	assert.Equal(t, 4, spec.Attributes[1].Count())
	assert.Equal(t, []float32{0, 5, 0, 10}, spec.Attributes[2].Data)
}

func TestResidualColorMismatch(t *testing.T) {
	s, _, _, dev := newResidualRig(t)
	s.AddVerticesColors([]mgl32.Vec2{{0, 0}}, []mgl32.Vec4{{1, 1, 1, 1}})
	s.vertices = append(s.vertices, mgl32.Vec2{1, 1})

	assert.ErrorIs(t, s.CreateBatch(), ErrColorMismatch)
	assert.Empty(t, dev.batches)

	bg, err := NewResidualSession(newFakeHost(), registry.New(), nil)
	require.NoError(t, err)
	bg.vertices = []mgl32.Vec2{{0, 0}}
	assert.ErrorIs(t, bg.CreateBatch(), ErrColorMismatch)
}

func TestResidualDraw(t *testing.T) {
	s, host, reg, dev := newResidualRig(t)
	s.SetSegments([]mgl32.Vec2{{0, 0}}, []mgl32.Vec2{{1, 1}}, mgl32.Vec4{1, 1, 1, 1})
	require.NoError(t, s.CreateBatch())
	require.NoError(t, s.Register(nil))
	assert.Equal(t, PassPostPixel, host.handlers[s.Handle()].pass)

	host.frame(&Frame{Width: 640, Height: 480})
	cmds := dev.last()
	require.Len(t, cmds, 7)
	assert.Equal(t, UniformProjection, cmds[5].Name)
	assert.Equal(t, mgl32.Ortho2D(0, 640, 0, 480), cmds[5].Mat4)

	reg.Clear()
	host.frame(&Frame{Width: 640, Height: 480})
	assert.Len(t, dev.executed, 1)
	assert.False(t, s.IsWorking())

	s.Destroy()
	assert.Empty(t, dev.batches)
	assert.Empty(t, dev.programs)
}
