package geometry

import "github.com/go-gl/mathgl/mgl32"

// DefaultEdgeColor is the tint used for plain wireframe edges.
var DefaultEdgeColor = mgl32.Vec4{0.5, 0.0, 0.7, 0.2}

// EdgeKey is an undirected vertex pair.
type EdgeKey [2]uint32

func NewEdgeKey(a, b uint32) EdgeKey {
	if a > b {
		a, b = b, a
	}
	return EdgeKey{a, b}
}

func FillColors(n int, c mgl32.Vec4) []mgl32.Vec4 {
	out := make([]mgl32.Vec4, n)
	for i := range out {
		out[i] = c
	}
	return out
}

// MarkEdges recolors both endpoint entries of every edge whose vertex pair, in either
// direction, is in pairs. colors is laid out two entries per edge.
func MarkEdges(colors []mgl32.Vec4, edges [][2]uint32, pairs map[EdgeKey]struct{}, c mgl32.Vec4) int {
	marked := 0
	for i, e := range edges {
		if _, ok := pairs[NewEdgeKey(e[0], e[1])]; !ok {
			continue
		}
		if i*2+1 >= len(colors) {
			break
		}
		colors[i*2] = c
		colors[i*2+1] = c
		marked++
	}
	return marked
}

func FlatColors(cc []mgl32.Vec4) []float32 {
	out := make([]float32, 0, len(cc)*4)
	for _, c := range cc {
		out = append(out, c[0], c[1], c[2], c[3])
	}
	return out
}
