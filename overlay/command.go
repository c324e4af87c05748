package overlay

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

type Op int

const (
	OpEnable Op = iota
	OpDisable
	OpBlendAlpha
	OpLineSmoothHint
	OpPolygonOffset
	OpColorMask
	OpDepthMask
	OpPolygonMode
	OpBindTexture
	OpUseProgram
	OpUniformInt
	OpUniformFloat
	OpUniformVec4
	OpUniformMat4
	OpDraw
)

type Cap int

const (
	CapBlend Cap = iota
	CapLineSmooth
	CapDepthTest
	CapPolygonOffsetFill
)

type FillMode int

const (
	FillSolid FillMode = iota
	FillLine
)

// Command is one step of a frame's draw plan. Only the fields relevant to Op are set.
// Uniform commands apply to the program selected by the last OpUseProgram.
type Command struct {
	Op      Op
	Cap     Cap
	Flag    bool
	Mode    FillMode
	Unit    int32
	Texture uint32
	Program Program
	Batch   Batch
	Name    string
	Int     int32
	Float   float32
	Factor  float32
	Units   float32
	Vec4    mgl32.Vec4
	Mat4    mgl32.Mat4
}

func (c Command) String() string {
	switch c.Op {
	case OpEnable:
		return fmt.Sprintf("enable(%d)", c.Cap)
	case OpDisable:
		return fmt.Sprintf("disable(%d)", c.Cap)
	case OpBlendAlpha:
		return "blend(src_alpha, one_minus_src_alpha)"
	case OpLineSmoothHint:
		return "hint(line_smooth, nicest)"
	case OpPolygonOffset:
		return fmt.Sprintf("polygon_offset(%g, %g)", c.Factor, c.Units)
	case OpColorMask:
		return fmt.Sprintf("color_mask(%t)", c.Flag)
	case OpDepthMask:
		return fmt.Sprintf("depth_mask(%t)", c.Flag)
	case OpPolygonMode:
		return fmt.Sprintf("polygon_mode(%d)", c.Mode)
	case OpBindTexture:
		return fmt.Sprintf("bind_texture(%d, %d)", c.Unit, c.Texture)
	case OpUseProgram:
		return fmt.Sprintf("use_program(%d)", c.Program)
	case OpUniformInt, OpUniformFloat, OpUniformVec4, OpUniformMat4:
		return fmt.Sprintf("uniform(%s)", c.Name)
	case OpDraw:
		return fmt.Sprintf("draw(%d)", c.Batch)
	}
	return "unknown"
}

func enable(c Cap) Command  { return Command{Op: OpEnable, Cap: c} }
func disable(c Cap) Command { return Command{Op: OpDisable, Cap: c} }

func useProgram(p Program) Command { return Command{Op: OpUseProgram, Program: p} }
func draw(b Batch) Command         { return Command{Op: OpDraw, Batch: b} }

func uniformInt(name string, v int32) Command {
	return Command{Op: OpUniformInt, Name: name, Int: v}
}

func uniformFloat(name string, v float32) Command {
	return Command{Op: OpUniformFloat, Name: name, Float: v}
}

func uniformVec4(name string, v mgl32.Vec4) Command {
	return Command{Op: OpUniformVec4, Name: name, Vec4: v}
}

func uniformMat4(name string, m mgl32.Mat4) Command {
	return Command{Op: OpUniformMat4, Name: name, Mat4: m}
}

// Drawable pairs a batch with the program that draws it.
type Drawable struct {
	Program Program
	Batch   Batch
}

func (d Drawable) Valid() bool {
	return d.Program != 0 && d.Batch != 0
}

func lineSmoothing() []Command {
	return []Command{
		enable(CapBlend),
		enable(CapLineSmooth),
		{Op: OpLineSmoothHint},
		{Op: OpBlendAlpha},
	}
}

// PlanRaster lays out the two-pass hidden-line draw. The fill batch goes to the depth
// buffer only, then line draws it with color writes on and depth writes off. The plan
// ends by restoring fill mode, depth writes and a disabled depth test.
func PlanRaster(fill Drawable, line []Command, viewProjection mgl32.Mat4) []Command {
	cmds := lineSmoothing()
	cmds = append(cmds,
		enable(CapDepthTest),
		enable(CapPolygonOffsetFill),
		Command{Op: OpPolygonOffset, Factor: 1, Units: 1},

		Command{Op: OpColorMask, Flag: false},
		Command{Op: OpPolygonMode, Mode: FillSolid},
		useProgram(fill.Program),
		uniformMat4(UniformViewProjection, viewProjection),
		draw(fill.Batch),

		Command{Op: OpColorMask, Flag: true},
		disable(CapPolygonOffsetFill),

		Command{Op: OpDepthMask, Flag: false},
		Command{Op: OpPolygonMode, Mode: FillLine},
		enable(CapDepthTest),
	)
	cmds = append(cmds, line...)
	cmds = append(cmds,
		Command{Op: OpPolygonMode, Mode: FillSolid},
		Command{Op: OpDepthMask, Flag: true},
		disable(CapDepthTest),
	)
	return cmds
}

// PlanTexturedLines samples the coloring texture bound on unit 0.
func PlanTexturedLines(line Drawable, texture uint32, opacity float32, viewProjection mgl32.Mat4) []Command {
	return []Command{
		{Op: OpBindTexture, Unit: 0, Texture: texture},
		useProgram(line.Program),
		uniformMat4(UniformViewProjection, viewProjection),
		uniformInt(UniformImage, 0),
		uniformFloat(UniformOpacity, opacity),
		draw(line.Batch),
		{Op: OpBindTexture, Unit: 0, Texture: 0},
	}
}

func PlanUniformLines(line Drawable, color mgl32.Vec4, viewProjection mgl32.Mat4) []Command {
	return []Command{
		useProgram(line.Program),
		uniformMat4(UniformViewProjection, viewProjection),
		uniformVec4(UniformColor, color),
		draw(line.Batch),
	}
}

// PlanColoredLines draws per-vertex colors with their alpha scaled by opacity.
func PlanColoredLines(line Drawable, opacity float32, viewProjection mgl32.Mat4) []Command {
	return []Command{
		useProgram(line.Program),
		uniformMat4(UniformViewProjection, viewProjection),
		uniformFloat(UniformOpacity, opacity),
		draw(line.Batch),
	}
}

// PlanResidual draws pixel-space lines over a width x height viewport.
func PlanResidual(d Drawable, width, height int) []Command {
	cmds := lineSmoothing()
	return append(cmds,
		useProgram(d.Program),
		uniformMat4(UniformProjection, mgl32.Ortho2D(0, float32(width), 0, float32(height))),
		draw(d.Batch),
	)
}
