package glgpu

import (
	"fmt"
	"log"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/richinsley/gowireframe/overlay"
)

// UploadTexture copies the coloring texture into a RGBA32F texture, reusing the GPU
// texture when one is already bound to tex.
func (d *Device) UploadTexture(tex *overlay.ColoringTexture) (uint32, error) {
	if tex.Width <= 0 || tex.Height <= 0 || len(tex.Pix) < tex.Width*tex.Height*4 {
		return 0, fmt.Errorf("texture %s: %dx%d with %d floats", tex.Name, tex.Width, tex.Height, len(tex.Pix))
	}

	textureID := tex.BindCode()
	if _, ok := d.textures[textureID]; !ok || textureID == 0 {
		gl.GenTextures(1, &textureID)
		if textureID == 0 {
			return 0, fmt.Errorf("texture %s: glGenTextures returned 0", tex.Name)
		}
		d.textures[textureID] = struct{}{}
	}

	gl.BindTexture(gl.TEXTURE_2D, textureID)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexImage2D(
		gl.TEXTURE_2D,
		0,
		gl.RGBA32F,
		int32(tex.Width),
		int32(tex.Height),
		0,
		gl.RGBA,
		gl.FLOAT,
		gl.Ptr(tex.Pix),
	)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	if e := gl.GetError(); e != gl.NO_ERROR {
		gl.DeleteTextures(1, &textureID)
		delete(d.textures, textureID)
		return 0, fmt.Errorf("texture %s: upload failed with GL error 0x%x", tex.Name, e)
	}
	return textureID, nil
}

// TouchTexture checks that the texture is still alive.
func (d *Device) TouchTexture(tex *overlay.ColoringTexture) {
	code := tex.BindCode()
	if code == 0 {
		return
	}
	if !gl.IsTexture(code) {
		log.Printf("glgpu: texture %s (%d) is no longer resident", tex.Name, code)
	}
}

func (d *Device) FreeTexture(tex *overlay.ColoringTexture) {
	code := tex.BindCode()
	if _, ok := d.textures[code]; !ok {
		return
	}
	gl.DeleteTextures(1, &code)
	delete(d.textures, code)
}
