// Package glgpu runs overlay draw plans on an OpenGL 4.1 core or OpenGL ES 3 context.
package glgpu

import (
	"log"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/gowireframe/overlay"
)

var _ overlay.Device = (*Device)(nil)

// Device implements overlay.Device. Every method must be called on the thread that owns
// the current GL context.
type Device struct {
	gles       bool
	clearColor mgl32.Vec4
	programs   map[overlay.Program]*program
	batches    map[overlay.Batch]*batch
	textures   map[uint32]struct{}
	current    *program
}

// New returns a device for the current context. gl.Init must already have run.
func New(isGLES bool) *Device {
	return &Device{
		gles:       isGLES,
		clearColor: mgl32.Vec4{0.1, 0.1, 0.1, 1},
		programs:   make(map[overlay.Program]*program),
		batches:    make(map[overlay.Batch]*batch),
		textures:   make(map[uint32]struct{}),
	}
}

func (d *Device) IsGLES() bool {
	return d.gles
}

func (d *Device) SetClearColor(c mgl32.Vec4) {
	d.clearColor = c
}

// BeginFrame clears the default framebuffer and sets the viewport.
func (d *Device) BeginFrame(width, height int) {
	gl.Viewport(0, 0, int32(width), int32(height))
	gl.ClearColor(d.clearColor[0], d.clearColor[1], d.clearColor[2], d.clearColor[3])
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// Close deletes every object the device still owns.
func (d *Device) Close() {
	for h := range d.batches {
		d.DeleteBatch(h)
	}
	for h := range d.programs {
		d.DeleteProgram(h)
	}
	for code := range d.textures {
		c := code
		gl.DeleteTextures(1, &c)
	}
	d.textures = make(map[uint32]struct{})
}

// supported reports whether the context can run c. ES 3 has no polygon mode and no
// line smoothing.
func supported(c overlay.Command, gles bool) bool {
	if !gles {
		return true
	}
	switch c.Op {
	case overlay.OpPolygonMode, overlay.OpLineSmoothHint:
		return false
	case overlay.OpEnable, overlay.OpDisable:
		return c.Cap != overlay.CapLineSmooth
	}
	return true
}

func glCap(c overlay.Cap) uint32 {
	switch c {
	case overlay.CapBlend:
		return gl.BLEND
	case overlay.CapLineSmooth:
		return gl.LINE_SMOOTH
	case overlay.CapDepthTest:
		return gl.DEPTH_TEST
	case overlay.CapPolygonOffsetFill:
		return gl.POLYGON_OFFSET_FILL
	}
	return 0
}

// Execute runs a frame plan in order.
func (d *Device) Execute(cmds []overlay.Command) {
	for _, c := range cmds {
		if !supported(c, d.gles) {
			continue
		}
		switch c.Op {
		case overlay.OpEnable:
			gl.Enable(glCap(c.Cap))
		case overlay.OpDisable:
			gl.Disable(glCap(c.Cap))
		case overlay.OpBlendAlpha:
			gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
		case overlay.OpLineSmoothHint:
			gl.Hint(gl.LINE_SMOOTH_HINT, gl.NICEST)
		case overlay.OpPolygonOffset:
			gl.PolygonOffset(c.Factor, c.Units)
		case overlay.OpColorMask:
			gl.ColorMask(c.Flag, c.Flag, c.Flag, c.Flag)
		case overlay.OpDepthMask:
			gl.DepthMask(c.Flag)
		case overlay.OpPolygonMode:
			mode := uint32(gl.FILL)
			if c.Mode == overlay.FillLine {
				mode = gl.LINE
			}
			gl.PolygonMode(gl.FRONT_AND_BACK, mode)
		case overlay.OpBindTexture:
			gl.ActiveTexture(gl.TEXTURE0 + uint32(c.Unit))
			gl.BindTexture(gl.TEXTURE_2D, c.Texture)
		case overlay.OpUseProgram:
			d.current = d.programs[c.Program]
			if d.current == nil {
				log.Printf("glgpu: unknown program %d", c.Program)
				gl.UseProgram(0)
				continue
			}
			gl.UseProgram(d.current.id)
		case overlay.OpUniformInt, overlay.OpUniformFloat, overlay.OpUniformVec4, overlay.OpUniformMat4:
			d.setUniform(c)
		case overlay.OpDraw:
			if d.current == nil {
				continue
			}
			if b, ok := d.batches[c.Batch]; ok {
				b.draw()
			}
		}
	}
}

func (d *Device) setUniform(c overlay.Command) {
	if d.current == nil {
		return
	}
	loc := d.current.location(c.Name)
	if loc == -1 {
		return
	}
	switch c.Op {
	case overlay.OpUniformInt:
		gl.Uniform1i(loc, c.Int)
	case overlay.OpUniformFloat:
		gl.Uniform1f(loc, c.Float)
	case overlay.OpUniformVec4:
		gl.Uniform4f(loc, c.Vec4[0], c.Vec4[1], c.Vec4[2], c.Vec4[3])
	case overlay.OpUniformMat4:
		gl.UniformMatrix4fv(loc, 1, false, &c.Mat4[0])
	}
}
