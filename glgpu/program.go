package glgpu

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/richinsley/gowireframe/overlay"
	"github.com/richinsley/gowireframe/shader"
	"github.com/richinsley/gowireframe/translator"
)

type program struct {
	id       uint32
	kind     overlay.ProgramKind
	uniforms map[string]int32
}

// location returns the cached uniform location, or -1.
func (p *program) location(name string) int32 {
	if loc, ok := p.uniforms[name]; ok {
		return loc
	}
	return -1
}

func (d *Device) CompileProgram(kind overlay.ProgramKind) (overlay.Program, error) {
	src, err := shader.Get(kind)
	if err != nil {
		return 0, err
	}
	tp, err := translator.Translate(src, d.gles)
	if err != nil {
		return 0, fmt.Errorf("%s program: %w", kind, err)
	}
	id, err := newProgram(tp.Vertex, tp.Fragment)
	if err != nil {
		return 0, fmt.Errorf("%s program: %w", kind, err)
	}

	p := &program{id: id, kind: kind, uniforms: make(map[string]int32, len(tp.Uniforms))}
	for name, mapped := range tp.Uniforms {
		p.uniforms[name] = gl.GetUniformLocation(id, gl.Str(mapped+"\x00"))
	}
	d.programs[overlay.Program(id)] = p
	return overlay.Program(id), nil
}

func (d *Device) DeleteProgram(handle overlay.Program) {
	p, ok := d.programs[handle]
	if !ok {
		return
	}
	if d.current == p {
		gl.UseProgram(0)
		d.current = nil
	}
	gl.DeleteProgram(p.id)
	delete(d.programs, handle)
}

func newProgram(vertexShaderSource, fragmentShaderSource string) (uint32, error) {
	vertexShader, err := compileShader(vertexShaderSource, gl.VERTEX_SHADER)
	if err != nil {
		return 0, err
	}
	fragmentShader, err := compileShader(fragmentShaderSource, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vertexShader)
		return 0, err
	}

	program := gl.CreateProgram()
	gl.AttachShader(program, vertexShader)
	gl.AttachShader(program, fragmentShader)
	gl.LinkProgram(program)
	gl.DeleteShader(vertexShader)
	gl.DeleteShader(fragmentShader)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("failed to link program: %v", log)
	}
	return program, nil
}

func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		logText := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(logText))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("failed to compile shader: %v", logText)
	}
	return shader, nil
}
