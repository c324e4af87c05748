// Package overlay draws fitted-mesh wireframes through a host's per-frame render loop.
//
// Sessions own their GPU programs, batches and coloring texture. They never talk to a
// graphics API directly: every frame they plan a list of Commands and hand it to a
// Device, and they register their draw callback with a Host.
package overlay

// ProgramKind selects one of the fixed shader programs an overlay uses.
type ProgramKind int

const (
	// ProgramFill writes depth only; its fragment output is masked off.
	ProgramFill ProgramKind = iota
	// ProgramRasterLine samples the coloring texture at each edge endpoint's UV.
	ProgramRasterLine
	// ProgramUniformLine draws lines in a single uniform color.
	ProgramUniformLine
	// ProgramResidual draws pixel-space lines with per-vertex color and line length.
	ProgramResidual
	// ProgramColoredLine draws lines with a color per edge endpoint.
	ProgramColoredLine
)

func (k ProgramKind) String() string {
	switch k {
	case ProgramFill:
		return "fill"
	case ProgramRasterLine:
		return "raster-line"
	case ProgramUniformLine:
		return "uniform-line"
	case ProgramResidual:
		return "residual"
	case ProgramColoredLine:
		return "colored-line"
	}
	return "unknown"
}

type Primitive int

const (
	Triangles Primitive = iota
	Lines
)

// Vertex attribute locations shared by every program.
const (
	AttribPos        uint32 = 0
	AttribTexCoord   uint32 = 1
	AttribColor      uint32 = 1
	AttribLineLength uint32 = 2
)

// Uniform names shared with the shader sources.
const (
	UniformViewProjection = "viewProjection"
	UniformProjection     = "projection"
	UniformImage          = "image"
	UniformOpacity        = "opacity"
	UniformColor          = "color"
)

// Program and Batch are device handles. Zero means "none".
type (
	Program uint32
	Batch   uint32
)

// Attribute is one tightly packed float vertex stream.
type Attribute struct {
	Location uint32
	Size     int32
	Data     []float32
}

// Count returns the number of vertices the attribute holds.
func (a Attribute) Count() int {
	if a.Size <= 0 {
		return 0
	}
	return len(a.Data) / int(a.Size)
}

type BatchSpec struct {
	Program    Program
	Primitive  Primitive
	Attributes []Attribute
	// Indices is optional; without it the batch draws its vertices in order.
	Indices []uint32
}

// Device executes overlay work on a GPU. All calls happen on the render thread.
type Device interface {
	CompileProgram(kind ProgramKind) (Program, error)
	DeleteProgram(p Program)
	CreateBatch(spec BatchSpec) (Batch, error)
	DeleteBatch(b Batch)
	// UploadTexture makes tex resident and returns its binding code, which is never
	// zero on success. A texture that is already resident is re-specified in place.
	UploadTexture(tex *ColoringTexture) (uint32, error)
	// TouchTexture marks tex as recently used so it survives eviction.
	TouchTexture(tex *ColoringTexture)
	FreeTexture(tex *ColoringTexture)
	Execute(cmds []Command)
}
