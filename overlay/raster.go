package overlay

import (
	"fmt"
	"log"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/gowireframe/geometry"
	"github.com/richinsley/gowireframe/registry"
	"github.com/richinsley/gowireframe/solver"
)

// Mode selects how a raster session colors its wireframe.
type Mode int

const (
	// ModeSimple draws every edge in the first base color.
	ModeSimple Mode = iota
	// ModeTextured samples the coloring texture at each edge endpoint.
	ModeTextured
	// ModeColored draws each edge endpoint in its own color from the edge color data.
	ModeColored
)

func (m Mode) String() string {
	switch m {
	case ModeTextured:
		return "textured"
	case ModeColored:
		return "colored"
	}
	return "simple"
}

// lineParams is what a line variant needs to plan its pass.
type lineParams struct {
	texture        uint32
	color          mgl32.Vec4
	opacity        float32
	viewProjection mgl32.Mat4
}

// lineData is the flattened edge streams a variant may upload.
type lineData struct {
	verts  []float32
	uvs    []float32
	colors []float32
}

// variant is one way of drawing the wireframe line pass.
type variant interface {
	kind() ProgramKind
	program() *Program
	build(dev Device, d lineData) (Batch, error)
	drawable() Drawable
	setBatch(b Batch)
	plan(p lineParams) []Command
}

type simpleLines struct {
	prog  Program
	batch Batch
}

func (v *simpleLines) kind() ProgramKind  { return ProgramUniformLine }
func (v *simpleLines) program() *Program  { return &v.prog }
func (v *simpleLines) drawable() Drawable { return Drawable{v.prog, v.batch} }
func (v *simpleLines) setBatch(b Batch)   { v.batch = b }

func (v *simpleLines) build(dev Device, d lineData) (Batch, error) {
	return dev.CreateBatch(BatchSpec{
		Program:   v.prog,
		Primitive: Lines,
		Attributes: []Attribute{
			{Location: AttribPos, Size: 3, Data: d.verts},
		},
	})
}

func (v *simpleLines) plan(p lineParams) []Command {
	return PlanUniformLines(v.drawable(), p.color, p.viewProjection)
}

type texturedLines struct {
	prog  Program
	batch Batch
}

func (v *texturedLines) kind() ProgramKind  { return ProgramRasterLine }
func (v *texturedLines) program() *Program  { return &v.prog }
func (v *texturedLines) drawable() Drawable { return Drawable{v.prog, v.batch} }
func (v *texturedLines) setBatch(b Batch)   { v.batch = b }

func (v *texturedLines) build(dev Device, d lineData) (Batch, error) {
	return dev.CreateBatch(BatchSpec{
		Program:   v.prog,
		Primitive: Lines,
		Attributes: []Attribute{
			{Location: AttribPos, Size: 3, Data: d.verts},
			{Location: AttribTexCoord, Size: 2, Data: d.uvs},
		},
	})
}

func (v *texturedLines) plan(p lineParams) []Command {
	return PlanTexturedLines(v.drawable(), p.texture, p.opacity, p.viewProjection)
}

type coloredLines struct {
	prog  Program
	batch Batch
}

func (v *coloredLines) kind() ProgramKind  { return ProgramColoredLine }
func (v *coloredLines) program() *Program  { return &v.prog }
func (v *coloredLines) drawable() Drawable { return Drawable{v.prog, v.batch} }
func (v *coloredLines) setBatch(b Batch)   { v.batch = b }

func (v *coloredLines) build(dev Device, d lineData) (Batch, error) {
	return dev.CreateBatch(BatchSpec{
		Program:   v.prog,
		Primitive: Lines,
		Attributes: []Attribute{
			{Location: AttribPos, Size: 3, Data: d.verts},
			{Location: AttribColor, Size: 4, Data: d.colors},
		},
	})
}

func (v *coloredLines) plan(p lineParams) []Command {
	return PlanColoredLines(v.drawable(), p.opacity, p.viewProjection)
}

// RasterSession draws a depth-occluded wireframe of a fitted mesh in world space.
type RasterSession struct {
	base
	coloring

	fillProgram Program
	fillBatch   Batch
	variants    [3]variant
	mode        Mode

	vertices     []mgl32.Vec3
	indices      [][3]uint32
	edges        *geometry.EdgeBuffers
	edgeVertices []mgl32.Vec3
	edgeColors   []mgl32.Vec4
}

// NewRasterSession compiles the session's programs on dev. A nil dev builds a
// background session that keeps its buffers but never draws.
func NewRasterSession(host Host, reg *registry.Registry, dev Device) (*RasterSession, error) {
	s := &RasterSession{
		base:     newBase("Wireframe", host, reg, dev, PassPostView),
		coloring: defaultColoring(),
		variants: [3]variant{&simpleLines{}, &texturedLines{}, &coloredLines{}},
		edges:    &geometry.EdgeBuffers{},
	}
	s.drawFn = s.drawCallback
	if s.background() {
		log.Printf("Wireframe: no device, shader compilation skipped")
		return s, nil
	}
	kinds := []ProgramKind{ProgramFill}
	progs := []*Program{&s.fillProgram}
	for _, v := range s.variants {
		kinds = append(kinds, v.kind())
		progs = append(progs, v.program())
	}
	if err := s.compile(kinds, progs); err != nil {
		return nil, fmt.Errorf("failed to compile wireframe programs: %w", err)
	}
	return s, nil
}

func (s *RasterSession) Mode() Mode {
	return s.mode
}

func (s *RasterSession) SwitchToSimple() {
	s.mode = ModeSimple
}

func (s *RasterSession) SwitchToTextured() {
	s.mode = ModeTextured
}

// SwitchToColored draws the edge color data instead of a single uniform color.
func (s *RasterSession) SwitchToColored() {
	s.mode = ModeColored
}

// InitGeometry transforms mesh by world and stores the triangle buffers.
func (s *RasterSession) InitGeometry(mesh *geometry.Mesh, world mgl32.Mat4) error {
	b, err := geometry.BuildBuffers(mesh, world)
	if err != nil {
		return err
	}
	s.vertices = b.Vertices
	s.indices = b.Indices
	return nil
}

func (s *RasterSession) Vertices() []mgl32.Vec3 {
	return s.vertices
}

func (s *RasterSession) Indices() [][3]uint32 {
	return s.indices
}

// Edges returns the edge index and UV buffers.
func (s *RasterSession) Edges() *geometry.EdgeBuffers {
	return s.edges
}

func (s *RasterSession) EdgeVertices() []mgl32.Vec3 {
	return s.edgeVertices
}

// EdgeColors returns one color per edge endpoint.
func (s *RasterSession) EdgeColors() []mgl32.Vec4 {
	return s.edgeColors
}

// InitColorData gives every edge endpoint the same color.
func (s *RasterSession) InitColorData(color mgl32.Vec4) {
	s.edgeColors = geometry.FillColors(len(s.edgeVertices), color)
}

// InitSpecialAreas recolors the edges whose vertex pair is in pairs and returns how
// many were recolored.
func (s *RasterSession) InitSpecialAreas(pairs map[geometry.EdgeKey]struct{}, color mgl32.Vec4) int {
	if len(s.edgeColors) != len(s.edgeVertices) {
		s.InitColorData(geometry.DefaultEdgeColor)
	}
	return geometry.MarkEdges(s.edgeColors, s.edges.Indices, pairs, color)
}

func (s *RasterSession) clearEdges() {
	s.edges = &geometry.EdgeBuffers{}
	s.edgeVertices = nil
	s.edgeColors = nil
}

// InitEdgeIndices rebuilds the edge and UV buffers from the solver's model at its first
// keyframe. Without a face texture or keyframes the buffers are cleared and the session
// falls back to simple mode.
func (s *RasterSession) InitEdgeIndices(sv solver.Solver) error {
	if sv == nil || !sv.FaceTextureAvailable() {
		s.clearEdges()
		s.SwitchToSimple()
		return nil
	}
	keyframes := sv.Keyframes()
	if len(keyframes) == 0 {
		s.clearEdges()
		s.SwitchToSimple()
		return nil
	}
	s.edges = geometry.BuildEdges(sv.ModelAt(keyframes[0]))
	return s.UpdateEdgeVertices()
}

// UpdateEdgeVertices refreshes edge endpoint positions after the vertices changed.
func (s *RasterSession) UpdateEdgeVertices() error {
	ev, err := geometry.EdgeVertices(s.vertices, s.edges.Indices)
	if err != nil {
		return err
	}
	s.edgeVertices = ev
	return nil
}

// ReplaceGeometry moves the wireframe to mesh, keeping the current edges. Nothing
// changes unless every edge still indexes a vertex of the new mesh.
func (s *RasterSession) ReplaceGeometry(mesh *geometry.Mesh, world mgl32.Mat4) error {
	b, err := geometry.BuildBuffers(mesh, world)
	if err != nil {
		return err
	}
	ev, err := geometry.EdgeVertices(b.Vertices, s.edges.Indices)
	if err != nil {
		return err
	}
	s.vertices = b.Vertices
	s.indices = b.Indices
	s.edgeVertices = ev
	return nil
}

// CreateBatches uploads the current buffers, replacing the previous batches.
func (s *RasterSession) CreateBatches() error {
	if s.background() {
		return nil
	}
	s.deleteBatches()

	fill, err := s.dev.CreateBatch(BatchSpec{
		Program:   s.fillProgram,
		Primitive: Triangles,
		Attributes: []Attribute{
			{Location: AttribPos, Size: 3, Data: geometry.FlatVertices(s.vertices)},
		},
		Indices: geometry.FlatTriangles(s.indices),
	})
	if err != nil {
		return fmt.Errorf("failed to create fill batch: %w", err)
	}
	s.fillBatch = fill

	colors := s.edgeColors
	if len(colors) != len(s.edgeVertices) {
		colors = geometry.FillColors(len(s.edgeVertices), geometry.DefaultEdgeColor)
	}
	data := lineData{
		verts:  geometry.FlatVertices(s.edgeVertices),
		uvs:    geometry.FlatUVs(s.edges.UVs),
		colors: geometry.FlatColors(colors),
	}
	for _, v := range s.variants {
		b, err := v.build(s.dev, data)
		if err != nil {
			return fmt.Errorf("failed to create %s line batch: %w", v.kind(), err)
		}
		v.setBatch(b)
	}
	return nil
}

func (s *RasterSession) deleteBatches() {
	s.deleteBatch(&s.fillBatch)
	for _, v := range s.variants {
		b := v.drawable().Batch
		s.deleteBatch(&b)
		v.setBatch(0)
	}
}

// Destroy unregisters the session and releases every GPU object it owns.
func (s *RasterSession) Destroy() {
	s.Unregister()
	s.releaseTexture()
	s.deleteBatches()
	s.deleteProgram(&s.fillProgram)
	for _, v := range s.variants {
		s.deleteProgram(v.program())
	}
	s.compiled = false
}

func (s *RasterSession) fill() Drawable {
	return Drawable{s.fillProgram, s.fillBatch}
}

func (s *RasterSession) baseColor() mgl32.Vec4 {
	if len(s.colors) == 0 {
		return mgl32.Vec4{1, 1, 1, s.opacity}
	}
	c := s.colors[0]
	return mgl32.Vec4{c[0], c[1], c[2], s.opacity}
}

// plan picks the line variant for this frame. Textured mode without a resident texture
// drops to simple mode. It returns nil when the chosen variant cannot draw.
func (s *RasterSession) plan(frame *Frame) []Command {
	if !s.fill().Valid() {
		return nil
	}
	if s.mode == ModeTextured && s.texture.BindCode() == 0 {
		log.Printf("Wireframe: coloring texture not resident, switching to simple shader")
		s.SwitchToSimple()
	}
	v := s.variants[s.mode]
	if !v.drawable().Valid() {
		return nil
	}
	line := v.plan(lineParams{
		texture:        s.texture.BindCode(),
		color:          s.baseColor(),
		opacity:        s.opacity,
		viewProjection: frame.ViewProjection,
	})
	return PlanRaster(s.fill(), line, frame.ViewProjection)
}

func (s *RasterSession) drawCallback(_ any, frame *Frame) {
	if s.stale() {
		return
	}
	if s.background() || !s.compiled {
		return
	}
	if !s.checkColoringTexture() {
		s.Unregister()
		return
	}
	cmds := s.plan(frame)
	if len(cmds) == 0 {
		return
	}
	s.dev.Execute(cmds)
}
