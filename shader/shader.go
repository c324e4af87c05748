package shader

import (
	"fmt"

	"github.com/richinsley/gowireframe/overlay"
)

// All sources are WebGL2 GLSL. The translator turns them into GLSL 4.10 or ESSL for
// the current context. Attribute locations are fixed by layout qualifiers and match
// the overlay.Attrib* constants.

// ──────────────────────────────── World space ───────────────────────────────────

const fillVertexSource = `#version 300 es
precision highp float;
uniform mat4 viewProjection;
layout(location = 0) in vec3 pos;
void main() {
    gl_Position = viewProjection * vec4(pos, 1.0);
}
`

// Color writes are masked off during the fill pass; only depth matters.
const blackFillFragmentSource = `#version 300 es
precision highp float;
out vec4 fragColor;
void main() {
    fragColor = vec4(0.0, 0.0, 0.0, 1.0);
}
`

const rasterImageVertexSource = `#version 300 es
precision highp float;
uniform mat4 viewProjection;
layout(location = 0) in vec3 pos;
layout(location = 1) in vec2 texCoord;
out vec2 v_texCoord;
void main() {
    v_texCoord = texCoord;
    gl_Position = viewProjection * vec4(pos, 1.0);
}
`

const rasterImageFragmentSource = `#version 300 es
precision highp float;
uniform sampler2D image;
uniform float opacity;
in vec2 v_texCoord;
out vec4 fragColor;
void main() {
    fragColor = vec4(texture(image, v_texCoord).rgb, opacity);
}
`

const uniformColorFragmentSource = `#version 300 es
precision highp float;
uniform vec4 color;
out vec4 fragColor;
void main() {
    fragColor = color;
}
`

const coloredLineVertexSource = `#version 300 es
precision highp float;
uniform mat4 viewProjection;
layout(location = 0) in vec3 pos;
layout(location = 1) in vec4 color;
out vec4 v_color;
void main() {
    v_color = color;
    gl_Position = viewProjection * vec4(pos, 1.0);
}
`

const coloredLineFragmentSource = `#version 300 es
precision highp float;
uniform float opacity;
in vec4 v_color;
out vec4 fragColor;
void main() {
    fragColor = vec4(v_color.rgb, v_color.a * opacity);
}
`

// ──────────────────────────────── Pixel space ───────────────────────────────────

const residualVertexSource = `#version 300 es
precision highp float;
uniform mat4 projection;
layout(location = 0) in vec2 pos;
layout(location = 1) in vec4 color;
layout(location = 2) in float lineLength;
out vec4 v_color;
out float v_lineLength;
void main() {
    v_color = color;
    v_lineLength = lineLength;
    gl_Position = projection * vec4(pos, 0.0, 1.0);
}
`

// Lines are dashed every DashLength pixels along their length.
const residualFragmentSource = `#version 300 es
precision highp float;
const float DashLength = 8.0;
in vec4 v_color;
in float v_lineLength;
out vec4 fragColor;
void main() {
    if (mod(v_lineLength, DashLength * 2.0) > DashLength) {
        discard;
    }
    fragColor = v_color;
}
`

// ────────────────────────────────── Public API ─────────────────────────────────

// Source is a vertex/fragment pair for one overlay program.
type Source struct {
	Vertex   string
	Fragment string
	// Uniforms lists the uniform names the program declares.
	Uniforms []string
}

// Get returns the WebGL2 sources for kind.
func Get(kind overlay.ProgramKind) (Source, error) {
	switch kind {
	case overlay.ProgramFill:
		return Source{
			Vertex:   fillVertexSource,
			Fragment: blackFillFragmentSource,
			Uniforms: []string{overlay.UniformViewProjection},
		}, nil
	case overlay.ProgramRasterLine:
		return Source{
			Vertex:   rasterImageVertexSource,
			Fragment: rasterImageFragmentSource,
			Uniforms: []string{overlay.UniformViewProjection, overlay.UniformImage, overlay.UniformOpacity},
		}, nil
	case overlay.ProgramUniformLine:
		return Source{
			Vertex:   fillVertexSource,
			Fragment: uniformColorFragmentSource,
			Uniforms: []string{overlay.UniformViewProjection, overlay.UniformColor},
		}, nil
	case overlay.ProgramColoredLine:
		return Source{
			Vertex:   coloredLineVertexSource,
			Fragment: coloredLineFragmentSource,
			Uniforms: []string{overlay.UniformViewProjection, overlay.UniformOpacity},
		}, nil
	case overlay.ProgramResidual:
		return Source{
			Vertex:   residualVertexSource,
			Fragment: residualFragmentSource,
			Uniforms: []string{overlay.UniformProjection},
		}, nil
	}
	return Source{}, fmt.Errorf("no shader sources for program kind %v", kind)
}
