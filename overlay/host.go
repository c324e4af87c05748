package overlay

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/gowireframe/registry"
)

// Region names the area of a host window a handler draws into.
type Region string

const RegionWindow Region = "WINDOW"

// Pass selects when in a frame a handler runs.
type Pass int

const (
	// PassPostView runs after the scene, in world space.
	PassPostView Pass = iota
	// PassPostPixel runs last, in pixel space.
	PassPostPixel
)

func (p Pass) String() string {
	if p == PassPostPixel {
		return "POST_PIXEL"
	}
	return "POST_VIEW"
}

// Frame is what the host knows about the frame being drawn.
type Frame struct {
	Width          int
	Height         int
	ViewProjection mgl32.Mat4
	Number         int64
}

// DrawFunc is invoked once per frame while registered, with the args given at registration.
type DrawFunc func(args any, frame *Frame)

// Host is a per-frame render loop that accepts draw handlers.
type Host interface {
	AddDrawHandler(fn DrawFunc, args any, region Region, pass Pass) registry.Handle
	// RemoveDrawHandler ignores handles it does not know.
	RemoveDrawHandler(h registry.Handle, region Region)
}
