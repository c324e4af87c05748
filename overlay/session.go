package overlay

import (
	"errors"
	"log"

	"github.com/richinsley/gowireframe/registry"
)

var (
	ErrBroken            = errors.New("overlay session is broken and must be rebuilt")
	ErrTextureActivation = errors.New("coloring texture activation failed")
	ErrNoTexture         = errors.New("no coloring texture")
	ErrColorMismatch     = errors.New("color buffer length does not match vertex buffer")
)

type State int

const (
	// StateUninitialized sessions have no compiled programs (background mode).
	StateUninitialized State = iota
	StateReady
	StateRegistered
	// StateUnregistered sessions may register again.
	StateUnregistered
	// StateBroken sessions failed to activate their texture and must be rebuilt.
	StateBroken
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateReady:
		return "ready"
	case StateRegistered:
		return "registered"
	case StateUnregistered:
		return "unregistered"
	case StateBroken:
		return "broken"
	}
	return "unknown"
}

// base is the register/unregister lifecycle shared by every session.
type base struct {
	name   string
	host   Host
	reg    *registry.Registry
	dev    Device
	pass   Pass
	drawFn DrawFunc

	handle         registry.Handle
	registered     bool
	everRegistered bool
	compiled       bool
	broken         bool
}

func newBase(name string, host Host, reg *registry.Registry, dev Device, pass Pass) base {
	return base{name: name, host: host, reg: reg, dev: dev, pass: pass}
}

// background reports whether the session was built without a device. Such sessions
// keep their CPU-side buffers but never compile or draw.
func (b *base) background() bool {
	return b.dev == nil
}

// Register installs the draw callback with the host. A session that is already
// registered retires its old handle first.
func (b *base) Register(args any) error {
	if b.broken {
		return ErrBroken
	}
	if b.registered {
		b.Unregister()
	}
	b.handle = b.host.AddDrawHandler(b.drawFn, args, RegionWindow, b.pass)
	b.reg.Add(b.handle)
	b.registered = true
	b.everRegistered = true
	return nil
}

// Unregister removes the draw callback. Calling it on an unregistered session is a no-op.
func (b *base) Unregister() {
	if !b.registered {
		return
	}
	b.host.RemoveDrawHandler(b.handle, RegionWindow)
	b.reg.Remove(b.handle)
	b.handle = 0
	b.registered = false
}

// IsWorking reports whether the draw callback is installed.
func (b *base) IsWorking() bool {
	return b.registered
}

// Handle returns the current host handle, or zero.
func (b *base) Handle() registry.Handle {
	return b.handle
}

func (b *base) State() State {
	switch {
	case b.broken:
		return StateBroken
	case b.registered:
		return StateRegistered
	case b.everRegistered:
		return StateUnregistered
	case !b.compiled:
		return StateUninitialized
	}
	return StateReady
}

// stale unregisters the session when every consumer is gone.
func (b *base) stale() bool {
	if b.reg.IsEmpty() {
		log.Printf("%s: handler registry empty, unregistering", b.name)
		b.Unregister()
		return true
	}
	return false
}

func (b *base) deleteBatch(batch *Batch) {
	if *batch != 0 && b.dev != nil {
		b.dev.DeleteBatch(*batch)
	}
	*batch = 0
}

func (b *base) deleteProgram(p *Program) {
	if *p != 0 && b.dev != nil {
		b.dev.DeleteProgram(*p)
	}
	*p = 0
}

// compile builds the listed programs in order. On failure the programs built so far
// are deleted.
func (b *base) compile(kinds []ProgramKind, out []*Program) error {
	for i, kind := range kinds {
		p, err := b.dev.CompileProgram(kind)
		if err != nil {
			for j := 0; j < i; j++ {
				b.deleteProgram(out[j])
			}
			return err
		}
		*out[i] = p
	}
	b.compiled = true
	return nil
}
