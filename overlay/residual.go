package overlay

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/gowireframe/geometry"
	"github.com/richinsley/gowireframe/registry"
)

// ResidualSession draws pixel-space line segments, such as the residuals between pins
// and their projected model points, with one color per vertex.
type ResidualSession struct {
	base

	program     Program
	batch       Batch
	vertices    []mgl32.Vec2
	colors      []mgl32.Vec4
	edgeLengths []float32
}

func NewResidualSession(host Host, reg *registry.Registry, dev Device) (*ResidualSession, error) {
	s := &ResidualSession{
		base: newBase("Residuals", host, reg, dev, PassPostPixel),
	}
	s.drawFn = s.drawCallback
	if s.background() {
		return s, nil
	}
	if err := s.compile([]ProgramKind{ProgramResidual}, []*Program{&s.program}); err != nil {
		return nil, fmt.Errorf("failed to compile residual program: %w", err)
	}
	return s, nil
}

func (s *ResidualSession) AddColorVertices(color mgl32.Vec4, verts []mgl32.Vec2) {
	for _, v := range verts {
		s.vertices = append(s.vertices, v)
		s.colors = append(s.colors, color)
	}
}

// AddVerticesColors appends verts with their own colors. colors must be at least as
// long as verts.
func (s *ResidualSession) AddVerticesColors(verts []mgl32.Vec2, colors []mgl32.Vec4) {
	for i, v := range verts {
		s.vertices = append(s.vertices, v)
		s.colors = append(s.colors, colors[i])
	}
}

func (s *ResidualSession) SetColorVertices(color mgl32.Vec4, verts []mgl32.Vec2) {
	s.ClearVertices()
	s.AddColorVertices(color, verts)
}

func (s *ResidualSession) SetVerticesColors(verts []mgl32.Vec2, colors []mgl32.Vec4) {
	s.ClearVertices()
	s.AddVerticesColors(verts, colors)
}

// Recolor replaces every vertex color without touching positions.
func (s *ResidualSession) Recolor(color mgl32.Vec4) {
	s.colors = geometry.FillColors(len(s.vertices), color)
}

func (s *ResidualSession) ClearVertices() {
	s.vertices = nil
	s.colors = nil
}

// SetEdgeLengths sets the per-vertex distance along each line, used for dashing.
func (s *ResidualSession) SetEdgeLengths(lengths []float32) {
	s.edgeLengths = lengths
}

// SetSegments lays out one line per (from, to) pair and derives the line lengths.
func (s *ResidualSession) SetSegments(from, to []mgl32.Vec2, color mgl32.Vec4) {
	s.ClearVertices()
	n := min(len(from), len(to))
	lengths := make([]float32, 0, n*2)
	for i := 0; i < n; i++ {
		s.AddColorVertices(color, []mgl32.Vec2{from[i], to[i]})
		lengths = append(lengths, 0, to[i].Sub(from[i]).Len())
	}
	s.edgeLengths = lengths
}

func (s *ResidualSession) Vertices() []mgl32.Vec2 {
	return s.vertices
}

func (s *ResidualSession) VertexColors() []mgl32.Vec4 {
	return s.colors
}

// CreateBatch uploads vertices, colors and line lengths. Missing line lengths are
// treated as zero.
func (s *ResidualSession) CreateBatch() error {
	if len(s.colors) != len(s.vertices) {
		return fmt.Errorf("%d colors for %d vertices: %w", len(s.colors), len(s.vertices), ErrColorMismatch)
	}
	if s.background() {
		return nil
	}
	s.deleteBatch(&s.batch)

	pos := make([]float32, 0, len(s.vertices)*2)
	for _, v := range s.vertices {
		pos = append(pos, v[0], v[1])
	}
	lengths := make([]float32, len(s.vertices))
	copy(lengths, s.edgeLengths)

	b, err := s.dev.CreateBatch(BatchSpec{
		Program:   s.program,
		Primitive: Lines,
		Attributes: []Attribute{
			{Location: AttribPos, Size: 2, Data: pos},
			{Location: AttribColor, Size: 4, Data: geometry.FlatColors(s.colors)},
			{Location: AttribLineLength, Size: 1, Data: lengths},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create residual batch: %w", err)
	}
	s.batch = b
	return nil
}

func (s *ResidualSession) Destroy() {
	s.Unregister()
	s.deleteBatch(&s.batch)
	s.deleteProgram(&s.program)
	s.compiled = false
}

func (s *ResidualSession) drawCallback(_ any, frame *Frame) {
	if s.stale() {
		return
	}
	d := Drawable{s.program, s.batch}
	if s.background() || !d.Valid() {
		return
	}
	s.dev.Execute(PlanResidual(d, frame.Width, frame.Height))
}
