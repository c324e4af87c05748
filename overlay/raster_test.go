package overlay

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/gowireframe/colorspace"
	"github.com/richinsley/gowireframe/geometry"
	"github.com/richinsley/gowireframe/registry"
	"github.com/richinsley/gowireframe/solver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSolver struct {
	available bool
	texture   *solver.Image
	colors    [][3]float32
	keyframes []int
	model     geometry.PolyMesh
}

func (f *fakeSolver) FaceTextureAvailable() bool               { return f.available }
func (f *fakeSolver) FaceTexture() *solver.Image               { return f.texture }
func (f *fakeSolver) SetFaceTextureColors(colors [][3]float32) { f.colors = colors }
func (f *fakeSolver) Keyframes() []int                         { return f.keyframes }
func (f *fakeSolver) ModelAt(keyframe int) geometry.PolyMesh   { return f.model }

func quadMesh() (*geometry.Mesh, *geometry.Polygons) {
	polys := &geometry.Polygons{
		Faces: [][]uint32{{0, 1, 2, 3}},
		UVs:   [][]mgl32.Vec2{{{0, 0}, {1, 0}, {1, 1}, {0, 1}}},
	}
	mesh := &geometry.Mesh{
		Vertices:  []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}},
		Triangles: geometry.Triangulate(polys.Faces),
	}
	return mesh, polys
}

func texturedSolver(w, h int) *fakeSolver {
	_, polys := quadMesh()
	return &fakeSolver{
		available: true,
		texture:   solver.NewImage(w, h),
		keyframes: []int{0},
		model:     polys,
	}
}

type rig struct {
	host *fakeHost
	reg  *registry.Registry
	dev  *fakeDevice
	s    *RasterSession
}

func newRig(t *testing.T) *rig {
	t.Helper()
	r := &rig{host: newFakeHost(), reg: registry.New(), dev: newFakeDevice()}
	s, err := NewRasterSession(r.host, r.reg, r.dev)
	require.NoError(t, err)
	r.s = s
	return r
}

// prepare runs the full wireframer setup used by an interactive session.
func (r *rig) prepare(t *testing.T, sv solver.Solver, showSpecials bool) {
	t.Helper()
	mesh, _ := quadMesh()
	r.s.InitWireframeImage(sv, showSpecials)
	require.NoError(t, r.s.InitGeometry(mesh, mgl32.Ident4()))
	require.NoError(t, r.s.InitEdgeIndices(sv))
	require.NoError(t, r.s.CreateBatches())
}

func TestNewRasterSessionCompiles(t *testing.T) {
	r := newRig(t)
	assert.Equal(t, StateReady, r.s.State())
	assert.Len(t, r.dev.programs, 4)
	assert.Equal(t, ModeSimple, r.s.Mode())
}

func TestNewRasterSessionCompileFailure(t *testing.T) {
	dev := newFakeDevice()
	dev.failCompile = true
	dev.compileFail = ProgramRasterLine
	_, err := NewRasterSession(newFakeHost(), registry.New(), dev)
	require.Error(t, err)
	assert.Empty(t, dev.programs)
}

func TestBackgroundSession(t *testing.T) {
	host := newFakeHost()
	reg := registry.New()
	s, err := NewRasterSession(host, reg, nil)
	require.NoError(t, err)
	assert.Equal(t, StateUninitialized, s.State())

	mesh, _ := quadMesh()
	require.NoError(t, s.InitGeometry(mesh, mgl32.Ident4()))
	require.NoError(t, s.InitEdgeIndices(texturedSolver(4, 4)))
	require.NoError(t, s.CreateBatches())
	assert.Len(t, s.EdgeVertices(), 8)

	require.NoError(t, s.Register(nil))
	assert.Equal(t, 1, host.frame(&Frame{}))
	assert.True(t, s.IsWorking())
}

func TestRegisterTwiceKeepsOneHandle(t *testing.T) {
	r := newRig(t)
	r.prepare(t, &fakeSolver{}, false)

	require.NoError(t, r.s.Register("first"))
	first := r.s.Handle()
	require.NoError(t, r.s.Register("second"))

	assert.Equal(t, 1, r.reg.Len())
	assert.False(t, r.reg.Contains(first))
	assert.True(t, r.reg.Contains(r.s.Handle()))
	assert.Len(t, r.host.handlers, 1)

	r.host.frame(&Frame{ViewProjection: mgl32.Ident4()})
	assert.Len(t, r.dev.executed, 1)
	assert.Equal(t, StateRegistered, r.s.State())
}

func TestUnregisterIsIdempotent(t *testing.T) {
	r := newRig(t)
	r.s.Unregister()
	assert.True(t, r.reg.IsEmpty())
	assert.Equal(t, 0, r.host.removed)

	require.NoError(t, r.s.Register(nil))
	r.s.Unregister()
	r.s.Unregister()
	assert.True(t, r.reg.IsEmpty())
	assert.Equal(t, 1, r.host.removed)
	assert.Equal(t, StateUnregistered, r.s.State())

	require.NoError(t, r.s.Register(nil))
	assert.Equal(t, StateRegistered, r.s.State())
}

func TestEmptyRegistryStopsSession(t *testing.T) {
	r := newRig(t)
	r.prepare(t, &fakeSolver{}, false)
	require.NoError(t, r.s.Register(nil))

	r.reg.Clear()
	r.host.frame(&Frame{})

	assert.False(t, r.s.IsWorking())
	assert.Empty(t, r.host.handlers)
	assert.Empty(t, r.dev.executed)
}

func TestMissingBatchesSkipDrawing(t *testing.T) {
	r := newRig(t)
	require.NoError(t, r.s.Register(nil))
	r.host.frame(&Frame{})
	assert.Empty(t, r.dev.executed)
	assert.True(t, r.s.IsWorking())
}

func TestSimpleDrawPlan(t *testing.T) {
	r := newRig(t)
	r.s.InitColors([][3]float32{{0.5, 0.5, 0.5}}, 0.4)
	r.prepare(t, &fakeSolver{}, false)
	require.NoError(t, r.s.Register(nil))

	r.host.frame(&Frame{ViewProjection: mgl32.Ident4()})
	cmds := r.dev.last()
	require.NotEmpty(t, cmds)

	var colorCmd *Command
	for i := range cmds {
		if cmds[i].Op == OpUniformVec4 {
			colorCmd = &cmds[i]
		}
		assert.NotEqual(t, OpBindTexture, cmds[i].Op)
	}
	require.NotNil(t, colorCmd)
	want := colorspace.ToLinear([3]float32{0.5, 0.5, 0.5})
	assert.Equal(t, mgl32.Vec4{want[0], want[1], want[2], 0.4}, colorCmd.Vec4)

	// fill draw happens with color writes off, line draw with depth writes off
	last := cmds[len(cmds)-3:]
	assert.Equal(t, Command{Op: OpPolygonMode, Mode: FillSolid}, last[0])
	assert.Equal(t, Command{Op: OpDepthMask, Flag: true}, last[1])
	assert.Equal(t, Command{Op: OpDisable, Cap: CapDepthTest}, last[2])
}

func TestTexturedDraw(t *testing.T) {
	r := newRig(t)
	sv := texturedSolver(8, 6)
	r.prepare(t, sv, true)
	require.Equal(t, ModeTextured, r.s.Mode())
	require.NoError(t, r.s.Register(nil))

	r.host.frame(&Frame{ViewProjection: mgl32.Ident4()})
	r.host.frame(&Frame{ViewProjection: mgl32.Ident4()})

	assert.Equal(t, 1, r.dev.uploads)
	code := r.s.Texture().BindCode()
	require.NotZero(t, code)

	found := false
	for _, c := range r.dev.last() {
		if c.Op == OpBindTexture && c.Texture == code {
			found = true
		}
	}
	assert.True(t, found)

	spec, ok := r.dev.batchFor(ProgramRasterLine)
	require.True(t, ok)
	assert.Equal(t, 8, spec.Attributes[0].Count())
	assert.Equal(t, 8, spec.Attributes[1].Count())
}

func TestTexturedWithoutTextureUnregisters(t *testing.T) {
	r := newRig(t)
	r.prepare(t, &fakeSolver{}, false)
	r.s.SwitchToTextured()
	require.NoError(t, r.s.Register(nil))

	r.host.frame(&Frame{})
	assert.False(t, r.s.IsWorking())
	assert.Empty(t, r.dev.executed)
}

func TestActivationFailureBreaksSession(t *testing.T) {
	r := newRig(t)
	r.prepare(t, texturedSolver(4, 4), true)
	r.dev.uploadErr = errors.New("out of memory")
	require.NoError(t, r.s.Register(nil))

	r.host.frame(&Frame{})
	assert.Equal(t, StateBroken, r.s.State())
	assert.Empty(t, r.dev.executed)
	assert.ErrorIs(t, r.s.Register(nil), ErrBroken)

	err := r.s.ActivateTexture()
	assert.ErrorIs(t, err, ErrTextureActivation)
}

func TestInitEdgeIndicesFallsBack(t *testing.T) {
	r := newRig(t)
	sv := texturedSolver(4, 4)
	r.prepare(t, sv, true)
	require.Equal(t, 4, r.s.Edges().Len())

	sv.keyframes = nil
	require.NoError(t, r.s.InitEdgeIndices(sv))
	assert.Equal(t, 0, r.s.Edges().Len())
	assert.Empty(t, r.s.Edges().UVs)
	assert.Equal(t, ModeSimple, r.s.Mode())

	sv.keyframes = []int{0}
	sv.available = false
	require.NoError(t, r.s.InitEdgeIndices(sv))
	assert.Equal(t, 0, r.s.Edges().Len())
}

func TestDestroyReleasesEverything(t *testing.T) {
	r := newRig(t)
	r.prepare(t, texturedSolver(4, 4), true)
	require.NoError(t, r.s.Register(nil))
	r.host.frame(&Frame{})

	r.s.Destroy()
	assert.Empty(t, r.dev.programs)
	assert.Empty(t, r.dev.batches)
	assert.Equal(t, 1, r.dev.frees)
	assert.Nil(t, r.s.Texture())
	assert.True(t, r.reg.IsEmpty())
}

func TestPlanRasterOrder(t *testing.T) {
	fill := Drawable{Program: 1, Batch: 2}
	line := PlanUniformLines(Drawable{Program: 3, Batch: 4}, mgl32.Vec4{1, 1, 1, 1}, mgl32.Ident4())
	cmds := PlanRaster(fill, line, mgl32.Ident4())

	assert.Equal(t, []Op{
		OpEnable, OpEnable, OpLineSmoothHint, OpBlendAlpha,
		OpEnable, OpEnable, OpPolygonOffset,
		OpColorMask, OpPolygonMode, OpUseProgram, OpUniformMat4, OpDraw,
		OpColorMask, OpDisable,
		OpDepthMask, OpPolygonMode, OpEnable,
		OpUseProgram, OpUniformMat4, OpUniformVec4, OpDraw,
		OpPolygonMode, OpDepthMask, OpDisable,
	}, ops(cmds))
	assert.False(t, cmds[7].Flag)
	assert.Equal(t, Batch(2), cmds[11].Batch)
	assert.True(t, cmds[12].Flag)
	assert.Equal(t, FillLine, cmds[15].Mode)
	assert.Equal(t, Batch(4), cmds[20].Batch)
}

func TestEdgeColorData(t *testing.T) {
	r := newRig(t)
	r.prepare(t, texturedSolver(4, 4), true)

	r.s.InitColorData(geometry.DefaultEdgeColor)
	require.Len(t, r.s.EdgeColors(), 8)

	special := mgl32.Vec4{0, 0, 1, 1}
	n := r.s.InitSpecialAreas(map[geometry.EdgeKey]struct{}{geometry.NewEdgeKey(3, 0): {}}, special)
	assert.Equal(t, 1, n)
	assert.Equal(t, special, r.s.EdgeColors()[6])
	assert.Equal(t, special, r.s.EdgeColors()[7])
	assert.Equal(t, geometry.DefaultEdgeColor, r.s.EdgeColors()[0])

	require.NoError(t, r.s.InitEdgeIndices(&fakeSolver{}))
	assert.Empty(t, r.s.EdgeColors())
}

func TestColoredModeUploadsEdgeColors(t *testing.T) {
	r := newRig(t)
	r.prepare(t, texturedSolver(4, 4), false)
	require.Equal(t, ModeSimple, r.s.Mode())

	base := mgl32.Vec4{1, 1, 1, 1}
	special := mgl32.Vec4{0, 1, 0, 1}
	r.s.InitColorData(base)
	require.Equal(t, 1, r.s.InitSpecialAreas(map[geometry.EdgeKey]struct{}{geometry.NewEdgeKey(1, 2): {}}, special))
	r.s.SwitchToColored()
	require.NoError(t, r.s.CreateBatches())

	spec, ok := r.dev.batchFor(ProgramColoredLine)
	require.True(t, ok)
	require.Len(t, spec.Attributes, 2)
	assert.Equal(t, AttribColor, spec.Attributes[1].Location)
	colors := spec.Attributes[1].Data
	require.Len(t, colors, 8*4)
	assert.Equal(t, []float32{1, 1, 1, 1}, colors[0:4])
	// edge 1 is the (1, 2) side, endpoints 2 and 3
	assert.Equal(t, []float32{0, 1, 0, 1, 0, 1, 0, 1}, colors[8:16])

	r.s.InitColors([][3]float32{{1, 1, 1}}, 0.4)
	require.NoError(t, r.s.Register(nil))
	r.host.frame(&Frame{ViewProjection: mgl32.Ident4()})
	cmds := r.dev.last()
	require.NotEmpty(t, cmds)
	var opacity float32
	var drew bool
	for _, c := range cmds {
		if c.Op == OpUniformFloat && c.Name == UniformOpacity {
			opacity = c.Float
		}
		if c.Op == OpDraw && c.Batch != 0 {
			if r.dev.batches[c.Batch].Program == spec.Program {
				drew = true
			}
		}
	}
	assert.True(t, drew)
	assert.InDelta(t, 0.4, opacity, 1e-6)
	assert.Zero(t, r.dev.uploads)
}

func TestColoredModeDefaultsMissingColors(t *testing.T) {
	r := newRig(t)
	r.prepare(t, texturedSolver(4, 4), false)
	r.s.SwitchToColored()
	require.NoError(t, r.s.CreateBatches())

	spec, ok := r.dev.batchFor(ProgramColoredLine)
	require.True(t, ok)
	d := geometry.DefaultEdgeColor
	assert.Equal(t, []float32{d[0], d[1], d[2], d[3]}, spec.Attributes[1].Data[0:4])
	assert.Equal(t, "colored", r.s.Mode().String())
}

func TestReplaceGeometryKeepsBuffersOnError(t *testing.T) {
	r := newRig(t)
	r.prepare(t, texturedSolver(4, 4), true)
	before := r.s.EdgeVertices()

	tiny := &geometry.Mesh{Vertices: []mgl32.Vec3{{5, 5, 5}}}
	err := r.s.ReplaceGeometry(tiny, mgl32.Ident4())
	assert.ErrorIs(t, err, geometry.ErrIndexOutOfRange)
	assert.Len(t, r.s.Vertices(), 4)
	assert.Equal(t, before, r.s.EdgeVertices())

	mesh, _ := quadMesh()
	require.NoError(t, r.s.ReplaceGeometry(mesh, mgl32.Translate3D(0, 0, 1)))
	assert.Equal(t, mgl32.Vec3{1, 0, 1}, r.s.EdgeVertices()[1])
	assert.Len(t, r.s.Indices(), 2)
}
