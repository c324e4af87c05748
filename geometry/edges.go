package geometry

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// PolyMesh is the polygon view of a fitted model: faces as ordered point lists,
// each corner carrying its own UV sample.
type PolyMesh interface {
	FacesCount() int
	FaceSize(face int) int
	// FacePoint returns the global vertex index of corner k of face.
	FacePoint(face, k int) uint32
	UV(face, k int) mgl32.Vec2
}

// EdgeBuffers holds one directed edge per polygon side and two UVs per edge.
type EdgeBuffers struct {
	Indices [][2]uint32
	UVs     []mgl32.Vec2
}

// Len returns the number of edges.
func (e *EdgeBuffers) Len() int {
	if e == nil {
		return 0
	}
	return len(e.Indices)
}

// BuildEdges walks every face in winding order. Corner k-1 connects to k, and the
// face's last edge closes the loop from its final corner back to corner 0.
func BuildEdges(pm PolyMesh) *EdgeBuffers {
	if pm == nil {
		return &EdgeBuffers{}
	}
	faces := pm.FacesCount()
	total := 0
	for f := 0; f < faces; f++ {
		total += pm.FaceSize(f)
	}

	eb := &EdgeBuffers{
		Indices: make([][2]uint32, 0, total),
		UVs:     make([]mgl32.Vec2, 0, total*2),
	}
	for f := 0; f < faces; f++ {
		n := pm.FaceSize(f)
		if n == 0 {
			continue
		}
		for k := 1; k < n; k++ {
			eb.Indices = append(eb.Indices, [2]uint32{pm.FacePoint(f, k-1), pm.FacePoint(f, k)})
			eb.UVs = append(eb.UVs, pm.UV(f, k-1), pm.UV(f, k))
		}
		eb.Indices = append(eb.Indices, [2]uint32{pm.FacePoint(f, n-1), pm.FacePoint(f, 0)})
		eb.UVs = append(eb.UVs, pm.UV(f, n-1), pm.UV(f, 0))
	}
	return eb
}

// EdgeVertices looks up both endpoints of every edge, start then end.
func EdgeVertices(vertices []mgl32.Vec3, edges [][2]uint32) ([]mgl32.Vec3, error) {
	out := make([]mgl32.Vec3, 0, len(edges)*2)
	for i, e := range edges {
		for _, idx := range e {
			if int(idx) >= len(vertices) {
				return nil, fmt.Errorf("edge %d references vertex %d of %d: %w", i, idx, len(vertices), ErrIndexOutOfRange)
			}
			out = append(out, vertices[idx])
		}
	}
	return out, nil
}

func FlatUVs(uvs []mgl32.Vec2) []float32 {
	out := make([]float32, 0, len(uvs)*2)
	for _, uv := range uvs {
		out = append(out, uv[0], uv[1])
	}
	return out
}
