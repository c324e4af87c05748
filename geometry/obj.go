package geometry

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// Polygons is a face list with per-corner UVs. It implements PolyMesh.
type Polygons struct {
	Faces [][]uint32
	UVs   [][]mgl32.Vec2
	// Groups holds the OBJ group active when each face was read.
	Groups []string
}

func (p *Polygons) FacesCount() int             { return len(p.Faces) }
func (p *Polygons) FaceSize(face int) int       { return len(p.Faces[face]) }
func (p *Polygons) FacePoint(face, k int) uint32 { return p.Faces[face][k] }
func (p *Polygons) UV(face, k int) mgl32.Vec2 {
	if face >= len(p.UVs) || k >= len(p.UVs[face]) {
		return mgl32.Vec2{}
	}
	return p.UVs[face][k]
}

// LoadOBJFile opens path and parses it with LoadOBJ.
func LoadOBJFile(path string) (*Mesh, *Polygons, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open mesh: %w", err)
	}
	defer f.Close()
	return LoadOBJ(f)
}

// LoadOBJ reads the v, vt, f, g and o statements of a Wavefront OBJ stream.
// Polygon faces are kept as-is and fan-triangulated into the returned Mesh.
func LoadOBJ(r io.Reader) (*Mesh, *Polygons, error) {
	var (
		verts []mgl32.Vec3
		tex   []mgl32.Vec2
		group string
	)
	polys := &Polygons{}

	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		switch fields[0] {
		case "v":
			v, err := parseFloats(fields[1:], 3)
			if err != nil {
				return nil, nil, fmt.Errorf("line %d: %w", line, err)
			}
			verts = append(verts, mgl32.Vec3{v[0], v[1], v[2]})
		case "vt":
			v, err := parseFloats(fields[1:], 2)
			if err != nil {
				return nil, nil, fmt.Errorf("line %d: %w", line, err)
			}
			tex = append(tex, mgl32.Vec2{v[0], v[1]})
		case "g", "o":
			group = strings.Join(fields[1:], " ")
		case "f":
			face := make([]uint32, 0, len(fields)-1)
			uvs := make([]mgl32.Vec2, 0, len(fields)-1)
			for _, corner := range fields[1:] {
				vi, ti, err := parseCorner(corner, len(verts), len(tex))
				if err != nil {
					return nil, nil, fmt.Errorf("line %d: %w", line, err)
				}
				face = append(face, uint32(vi))
				if ti >= 0 {
					uvs = append(uvs, tex[ti])
				} else {
					uvs = append(uvs, mgl32.Vec2{})
				}
			}
			polys.Faces = append(polys.Faces, face)
			polys.UVs = append(polys.UVs, uvs)
			polys.Groups = append(polys.Groups, group)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to read mesh: %w", err)
	}

	mesh := &Mesh{
		Vertices:  verts,
		Triangles: Triangulate(polys.Faces),
	}
	return mesh, polys, nil
}

func parseFloats(fields []string, n int) ([]float32, error) {
	if len(fields) < n {
		return nil, fmt.Errorf("expected %d components, got %d", n, len(fields))
	}
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return nil, err
		}
		out[i] = float32(f)
	}
	return out, nil
}

// parseCorner resolves "v", "v/vt", "v/vt/vn" and "v//vn" into zero-based vertex and
// texture indices. ti is -1 when the corner has no texture coordinate.
func parseCorner(s string, nv, nt int) (vi, ti int, err error) {
	parts := strings.Split(s, "/")
	vi, err = resolveIndex(parts[0], nv)
	if err != nil {
		return 0, 0, err
	}
	ti = -1
	if len(parts) > 1 && parts[1] != "" {
		ti, err = resolveIndex(parts[1], nt)
		if err != nil {
			return 0, 0, err
		}
	}
	return vi, ti, nil
}

func resolveIndex(s string, n int) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if i < 0 {
		i = n + i
	} else {
		i--
	}
	if i < 0 || i >= n {
		return 0, fmt.Errorf("reference %s of %d: %w", s, n, ErrIndexOutOfRange)
	}
	return i, nil
}

// GroupEdges returns the vertex pairs of every polygon edge in the named groups.
func (p *Polygons) GroupEdges(groups ...string) map[EdgeKey]struct{} {
	want := make(map[string]bool, len(groups))
	for _, g := range groups {
		want[g] = true
	}
	pairs := make(map[EdgeKey]struct{})
	for f, face := range p.Faces {
		if f >= len(p.Groups) || !want[p.Groups[f]] {
			continue
		}
		for k := range face {
			pairs[NewEdgeKey(face[k], face[(k+1)%len(face)])] = struct{}{}
		}
	}
	return pairs
}
