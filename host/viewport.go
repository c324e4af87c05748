// Package host is a minimal per-frame render loop that overlay sessions register with.
package host

import (
	"context"
	"log"
	"sync"

	"github.com/richinsley/gowireframe/graphics"
	"github.com/richinsley/gowireframe/overlay"
	"github.com/richinsley/gowireframe/registry"
)

var _ overlay.Host = (*Viewport)(nil)

// FrameDevice prepares the default framebuffer for a frame.
type FrameDevice interface {
	BeginFrame(width, height int)
}

// Framebuffer is anything a frame can be sized from: a window, a pbuffer or an FBO.
type Framebuffer interface {
	GetFramebufferSize() (int, int)
}

type scroller interface {
	TakeScroll() float64
}

type handler struct {
	handle registry.Handle
	fn     overlay.DrawFunc
	args   any
	region overlay.Region
	pass   overlay.Pass
}

// Viewport dispatches draw handlers once per frame, POST_VIEW handlers first and
// POST_PIXEL handlers last, each group in registration order.
type Viewport struct {
	Camera *Camera

	mu       sync.Mutex
	next     registry.Handle
	handlers []handler
	tasks    []func()
	frame    int64
}

func NewViewport(cam *Camera) *Viewport {
	if cam == nil {
		cam = NewCamera()
	}
	return &Viewport{Camera: cam}
}

func (v *Viewport) AddDrawHandler(fn overlay.DrawFunc, args any, region overlay.Region, pass overlay.Pass) registry.Handle {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.next++
	v.handlers = append(v.handlers, handler{handle: v.next, fn: fn, args: args, region: region, pass: pass})
	return v.next
}

func (v *Viewport) RemoveDrawHandler(h registry.Handle, region overlay.Region) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for i, e := range v.handlers {
		if e.handle == h && e.region == region {
			v.handlers = append(v.handlers[:i], v.handlers[i+1:]...)
			return
		}
	}
}

func (v *Viewport) HandlerCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.handlers)
}

// Post queues fn to run on the render thread before the next frame. It is safe to call
// from any goroutine.
func (v *Viewport) Post(fn func()) {
	v.mu.Lock()
	v.tasks = append(v.tasks, fn)
	v.mu.Unlock()
}

// RunPending runs every queued task.
func (v *Viewport) RunPending() {
	v.mu.Lock()
	tasks := v.tasks
	v.tasks = nil
	v.mu.Unlock()
	for _, fn := range tasks {
		fn()
	}
}

// NextFrame describes the next frame of a width x height framebuffer.
func (v *Viewport) NextFrame(width, height int) *overlay.Frame {
	aspect := float32(1)
	if height > 0 {
		aspect = float32(width) / float32(height)
	}
	v.mu.Lock()
	n := v.frame
	v.frame++
	v.mu.Unlock()
	return &overlay.Frame{
		Width:          width,
		Height:         height,
		ViewProjection: v.Camera.ViewProjection(aspect),
		Number:         n,
	}
}

// DrawFrame calls every handler for frame. Handlers may add or remove handlers; the
// changes take effect on the next frame.
func (v *Viewport) DrawFrame(frame *overlay.Frame) {
	v.mu.Lock()
	snapshot := make([]handler, len(v.handlers))
	copy(snapshot, v.handlers)
	v.mu.Unlock()

	for _, pass := range []overlay.Pass{overlay.PassPostView, overlay.PassPostPixel} {
		for _, h := range snapshot {
			if h.pass == pass {
				h.fn(h.args, frame)
			}
		}
	}
}

// RenderFrame runs pending tasks and draws one frame into the current framebuffer.
func (v *Viewport) RenderFrame(fb Framebuffer, dev FrameDevice) *overlay.Frame {
	v.RunPending()
	width, height := fb.GetFramebufferSize()
	dev.BeginFrame(width, height)
	frame := v.NextFrame(width, height)
	v.DrawFrame(frame)
	return frame
}

// Run renders until the context closes or ctx is done.
func (v *Viewport) Run(ctx context.Context, gc graphics.Context, dev FrameDevice) error {
	log.Println("Starting interactive render loop...")
	for !gc.ShouldClose() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		v.Camera.HandleMouse(gc.GetMouseInput())
		if s, ok := gc.(scroller); ok {
			if steps := s.TakeScroll(); steps != 0 {
				v.Camera.Zoom(float32(steps))
			}
		}
		v.RenderFrame(gc, dev)
		gc.EndFrame()
	}
	return nil
}
