package overlay

import (
	"errors"
	"sort"

	"github.com/richinsley/gowireframe/registry"
)

type handlerEntry struct {
	fn   DrawFunc
	args any
	pass Pass
}

type fakeHost struct {
	next     registry.Handle
	handlers map[registry.Handle]handlerEntry
	removed  int
}

func newFakeHost() *fakeHost {
	return &fakeHost{handlers: make(map[registry.Handle]handlerEntry)}
}

func (h *fakeHost) AddDrawHandler(fn DrawFunc, args any, _ Region, pass Pass) registry.Handle {
	h.next++
	h.handlers[h.next] = handlerEntry{fn: fn, args: args, pass: pass}
	return h.next
}

func (h *fakeHost) RemoveDrawHandler(handle registry.Handle, _ Region) {
	if _, ok := h.handlers[handle]; ok {
		delete(h.handlers, handle)
		h.removed++
	}
}

// frame calls every handler once, in handle order.
func (h *fakeHost) frame(f *Frame) int {
	keys := make([]registry.Handle, 0, len(h.handlers))
	for k := range h.handlers {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	for _, k := range keys {
		e := h.handlers[k]
		e.fn(e.args, f)
	}
	return len(keys)
}

type fakeDevice struct {
	nextID      uint32
	programs    map[Program]ProgramKind
	batches     map[Batch]BatchSpec
	executed    [][]Command
	uploads     int
	touches     int
	frees       int
	uploadErr   error
	compileFail ProgramKind
	failCompile bool
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{
		programs: make(map[Program]ProgramKind),
		batches:  make(map[Batch]BatchSpec),
	}
}

func (d *fakeDevice) id() uint32 {
	d.nextID++
	return d.nextID
}

func (d *fakeDevice) CompileProgram(kind ProgramKind) (Program, error) {
	if d.failCompile && kind == d.compileFail {
		return 0, errors.New("compile failed")
	}
	p := Program(d.id())
	d.programs[p] = kind
	return p, nil
}

func (d *fakeDevice) DeleteProgram(p Program) { delete(d.programs, p) }

func (d *fakeDevice) CreateBatch(spec BatchSpec) (Batch, error) {
	b := Batch(d.id())
	d.batches[b] = spec
	return b, nil
}

func (d *fakeDevice) DeleteBatch(b Batch) { delete(d.batches, b) }

func (d *fakeDevice) UploadTexture(tex *ColoringTexture) (uint32, error) {
	if d.uploadErr != nil {
		return 0, d.uploadErr
	}
	d.uploads++
	if tex.BindCode() != 0 {
		return tex.BindCode(), nil
	}
	return 100 + d.id(), nil
}

func (d *fakeDevice) TouchTexture(*ColoringTexture) { d.touches++ }
func (d *fakeDevice) FreeTexture(*ColoringTexture)  { d.frees++ }

func (d *fakeDevice) Execute(cmds []Command) {
	d.executed = append(d.executed, cmds)
}

func (d *fakeDevice) last() []Command {
	if len(d.executed) == 0 {
		return nil
	}
	return d.executed[len(d.executed)-1]
}

func (d *fakeDevice) batchFor(kind ProgramKind) (BatchSpec, bool) {
	for _, spec := range d.batches {
		if d.programs[spec.Program] == kind {
			return spec, true
		}
	}
	return BatchSpec{}, false
}

func ops(cmds []Command) []Op {
	out := make([]Op, len(cmds))
	for i, c := range cmds {
		out[i] = c.Op
	}
	return out
}
