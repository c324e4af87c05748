package glgpu

import (
	"errors"
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/richinsley/gowireframe/overlay"
)

var ErrAttributeCount = errors.New("vertex attributes have different vertex counts")

type batch struct {
	vao       uint32
	vbos      []uint32
	ebo       uint32
	mode      uint32
	count     int32
	indexed   bool
	program   overlay.Program
	primitive overlay.Primitive
}

// vertexCount checks that every attribute describes the same number of vertices.
func vertexCount(spec overlay.BatchSpec) (int, error) {
	n := -1
	for _, a := range spec.Attributes {
		if a.Size <= 0 || len(a.Data)%int(a.Size) != 0 {
			return 0, fmt.Errorf("attribute %d: %d floats for size %d", a.Location, len(a.Data), a.Size)
		}
		c := a.Count()
		if n >= 0 && c != n {
			return 0, fmt.Errorf("attribute %d has %d vertices, expected %d: %w", a.Location, c, n, ErrAttributeCount)
		}
		n = c
	}
	if n < 0 {
		n = 0
	}
	for _, idx := range spec.Indices {
		if int(idx) >= n {
			return 0, fmt.Errorf("index %d out of range for %d vertices", idx, n)
		}
	}
	return n, nil
}

func glPrimitive(p overlay.Primitive) uint32 {
	if p == overlay.Lines {
		return gl.LINES
	}
	return gl.TRIANGLES
}

func (d *Device) CreateBatch(spec overlay.BatchSpec) (overlay.Batch, error) {
	n, err := vertexCount(spec)
	if err != nil {
		return 0, err
	}

	b := &batch{
		mode:      glPrimitive(spec.Primitive),
		count:     int32(n),
		program:   spec.Program,
		primitive: spec.Primitive,
	}
	gl.GenVertexArrays(1, &b.vao)
	gl.BindVertexArray(b.vao)

	b.vbos = make([]uint32, len(spec.Attributes))
	if len(b.vbos) > 0 {
		gl.GenBuffers(int32(len(b.vbos)), &b.vbos[0])
	}
	for i, a := range spec.Attributes {
		gl.BindBuffer(gl.ARRAY_BUFFER, b.vbos[i])
		if len(a.Data) > 0 {
			gl.BufferData(gl.ARRAY_BUFFER, len(a.Data)*4, gl.Ptr(a.Data), gl.STATIC_DRAW)
		}
		gl.EnableVertexAttribArray(a.Location)
		gl.VertexAttribPointer(a.Location, a.Size, gl.FLOAT, false, a.Size*4, gl.PtrOffset(0))
	}

	if len(spec.Indices) > 0 {
		gl.GenBuffers(1, &b.ebo)
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, b.ebo)
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(spec.Indices)*4, gl.Ptr(spec.Indices), gl.STATIC_DRAW)
		b.indexed = true
		b.count = int32(len(spec.Indices))
	}

	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, 0)

	d.batches[overlay.Batch(b.vao)] = b
	return overlay.Batch(b.vao), nil
}

func (d *Device) DeleteBatch(handle overlay.Batch) {
	b, ok := d.batches[handle]
	if !ok {
		return
	}
	if len(b.vbos) > 0 {
		gl.DeleteBuffers(int32(len(b.vbos)), &b.vbos[0])
	}
	if b.ebo != 0 {
		gl.DeleteBuffers(1, &b.ebo)
	}
	gl.DeleteVertexArrays(1, &b.vao)
	delete(d.batches, handle)
}

func (b *batch) draw() {
	if b.count == 0 {
		return
	}
	gl.BindVertexArray(b.vao)
	if b.indexed {
		gl.DrawElements(b.mode, b.count, gl.UNSIGNED_INT, gl.PtrOffset(0))
	} else {
		gl.DrawArrays(b.mode, 0, b.count)
	}
	gl.BindVertexArray(0)
}
