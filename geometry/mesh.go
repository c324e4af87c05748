package geometry

import (
	"errors"

	"github.com/go-gl/mathgl/mgl32"
)

var (
	ErrDegenerateTransform = errors.New("world transform is not invertible")
	ErrIndexOutOfRange     = errors.New("index out of range")
)

// Mesh is the object-space geometry read from a scene object.
type Mesh struct {
	Vertices  []mgl32.Vec3
	Triangles [][3]uint32
}

// Buffers holds world-space vertices and the triangle list that indexes them.
type Buffers struct {
	Vertices []mgl32.Vec3
	Indices  [][3]uint32
}

// BuildBuffers transforms every mesh vertex by world as a homogeneous point and keeps
// the xyz part, without a perspective divide. Triangles are copied in source order.
func BuildBuffers(m *Mesh, world mgl32.Mat4) (*Buffers, error) {
	if world.Det() == 0 {
		return nil, ErrDegenerateTransform
	}
	b := &Buffers{}
	if m == nil || len(m.Vertices) == 0 {
		return b, nil
	}

	b.Vertices = make([]mgl32.Vec3, len(m.Vertices))
	for i, v := range m.Vertices {
		b.Vertices[i] = world.Mul4x1(v.Vec4(1)).Vec3()
	}
	b.Indices = make([][3]uint32, len(m.Triangles))
	copy(b.Indices, m.Triangles)
	return b, nil
}

// FlatVertices packs vertices as consecutive xyz floats for upload.
func FlatVertices(vv []mgl32.Vec3) []float32 {
	out := make([]float32, 0, len(vv)*3)
	for _, v := range vv {
		out = append(out, v[0], v[1], v[2])
	}
	return out
}

func FlatTriangles(tt [][3]uint32) []uint32 {
	out := make([]uint32, 0, len(tt)*3)
	for _, t := range tt {
		out = append(out, t[0], t[1], t[2])
	}
	return out
}

// Triangulate fan-triangulates polygon faces given as vertex index lists.
// Faces with fewer than three vertices produce no triangles.
func Triangulate(faces [][]uint32) [][3]uint32 {
	var out [][3]uint32
	for _, f := range faces {
		for k := 2; k < len(f); k++ {
			out = append(out, [3]uint32{f[0], f[k-1], f[k]})
		}
	}
	return out
}
