package recorder

import (
	"fmt"
	"image"
	"image/png"
	"os"

	gl "github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

// Offscreen is a framebuffer with an RGBA8 color texture and a 24-bit depth buffer.
// It implements host.FrameDevice so the viewport can render straight into it.
type Offscreen struct {
	fbo               uint32
	textureID         uint32
	depthRenderbuffer uint32
	width             int
	height            int
	clearColor        mgl32.Vec4
	pixels            []byte
}

func NewOffscreen(width, height int) (*Offscreen, error) {
	o := &Offscreen{
		width:      width,
		height:     height,
		clearColor: mgl32.Vec4{0.1, 0.1, 0.1, 1},
		pixels:     make([]byte, width*height*4),
	}

	gl.GenFramebuffers(1, &o.fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, o.fbo)
	gl.GenTextures(1, &o.textureID)
	gl.BindTexture(gl.TEXTURE_2D, o.textureID)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(width), int32(height), 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, o.textureID, 0)
	gl.GenRenderbuffers(1, &o.depthRenderbuffer)
	gl.BindRenderbuffer(gl.RENDERBUFFER, o.depthRenderbuffer)
	gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH_COMPONENT24, int32(width), int32(height))
	gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.RENDERBUFFER, o.depthRenderbuffer)
	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	if status != gl.FRAMEBUFFER_COMPLETE {
		o.Destroy()
		return nil, fmt.Errorf("offscreen fbo is not complete (0x%x)", status)
	}
	return o, nil
}

func (o *Offscreen) Size() (int, int) {
	return o.width, o.height
}

func (o *Offscreen) SetClearColor(c mgl32.Vec4) {
	o.clearColor = c
}

// BeginFrame binds the framebuffer and clears it. The requested size is ignored; the
// framebuffer keeps the size it was created with.
func (o *Offscreen) BeginFrame(_, _ int) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, o.fbo)
	gl.Viewport(0, 0, int32(o.width), int32(o.height))
	gl.ClearColor(o.clearColor[0], o.clearColor[1], o.clearColor[2], o.clearColor[3])
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// GetFramebufferSize lets the offscreen target stand in for a context's framebuffer.
func (o *Offscreen) GetFramebufferSize() (int, int) {
	return o.width, o.height
}

// ReadRGBA reads the color attachment back as a top-down image.
func (o *Offscreen) ReadRGBA() *image.RGBA {
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, o.fbo)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(o.width), int32(o.height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(o.pixels))
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, 0)
	return flipRows(o.pixels, o.width, o.height)
}

func (o *Offscreen) Destroy() {
	gl.DeleteFramebuffers(1, &o.fbo)
	gl.DeleteTextures(1, &o.textureID)
	gl.DeleteRenderbuffers(1, &o.depthRenderbuffer)
}

// flipRows copies bottom-up GL rows into a new top-down image.
func flipRows(pix []byte, width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	rowSize := width * 4
	for y := 0; y < height; y++ {
		src := pix[(height-1-y)*rowSize:]
		copy(img.Pix[y*img.Stride:], src[:rowSize])
	}
	return img
}

func SavePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return f.Close()
}
