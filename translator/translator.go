package translator

import (
	"context"
	"fmt"
	"sync"

	gst "github.com/richinsley/goshadertranslator"
	"github.com/richinsley/gowireframe/shader"
)

var (
	translator *gst.ShaderTranslator
	once       sync.Once
	initErr    error
)

// GetTranslator returns the process-wide shader translator, creating it on first use.
func GetTranslator() (*gst.ShaderTranslator, error) {
	once.Do(func() {
		translator, initErr = gst.NewShaderTranslator(context.Background())
	})
	return translator, initErr
}

// Program is a translated vertex/fragment pair ready to compile.
type Program struct {
	Vertex   string
	Fragment string
	// Uniforms maps source uniform names to the names used in the translated code.
	Uniforms map[string]string
}

// Translate converts WebGL2 sources into the dialect of the current context.
func Translate(src shader.Source, isGLES bool) (*Program, error) {
	t, err := GetTranslator()
	if err != nil {
		return nil, fmt.Errorf("failed to create shader translator: %w", err)
	}
	format := gst.OutputFormatGLSL410
	if isGLES {
		format = gst.OutputFormatESSL
	}

	vs, err := t.TranslateShader(src.Vertex, "vertex", gst.ShaderSpecWebGL2, format)
	if err != nil {
		return nil, fmt.Errorf("vertex shader translation failed: %w", err)
	}
	fs, err := t.TranslateShader(src.Fragment, "fragment", gst.ShaderSpecWebGL2, format)
	if err != nil {
		return nil, fmt.Errorf("fragment shader translation failed: %w", err)
	}

	p := &Program{
		Vertex:   vs.Code,
		Fragment: fs.Code,
		Uniforms: make(map[string]string, len(src.Uniforms)),
	}
	for _, name := range src.Uniforms {
		p.Uniforms[name] = name
		if v, ok := vs.Variables[name]; ok {
			p.Uniforms[name] = v.MappedName
		}
		if v, ok := fs.Variables[name]; ok {
			p.Uniforms[name] = v.MappedName
		}
	}
	return p, nil
}
