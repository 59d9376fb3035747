package meshio

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"scan2schem/internal/mesh"
)

// LoadOBJ parses a Wavefront OBJ file. Vertex colors on "v" lines (the
// scanner extension "v x y z r g b") are kept; if an mtllib material with a
// map_Kd texture is in use, the texture image is loaded from disk relative
// to the OBJ file.
func LoadOBJ(path string) (*mesh.Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "load obj")
	}
	defer f.Close()
	return readOBJ(f, filepath.Dir(path))
}

func readOBJ(r io.Reader, dir string) (*mesh.Mesh, error) {
	m := &mesh.Mesh{}
	var anyColor, anyUV bool
	materials := map[string]string{} // material name -> map_Kd file
	var texFile string

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	var current string
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		switch fields[0] {
		case "v":
			if len(fields) < 4 {
				return nil, errors.Errorf("obj line %d: vertex needs 3 coordinates", line)
			}
			p, err := parseFloats(fields[1:4])
			if err != nil {
				return nil, errors.Wrapf(err, "obj line %d", line)
			}
			m.Positions = append(m.Positions, [3]float64{p[0], p[1], p[2]})
			// Per-vertex color extension used by scan exports.
			if len(fields) >= 7 {
				c, err := parseFloats(fields[4:7])
				if err != nil {
					return nil, errors.Wrapf(err, "obj line %d", line)
				}
				m.Colors = append(m.Colors, mesh.RGB{floatByte(c[0]), floatByte(c[1]), floatByte(c[2])})
				anyColor = true
			} else {
				m.Colors = append(m.Colors, mesh.RGB{})
			}
		case "vt":
			if len(fields) < 3 {
				return nil, errors.Errorf("obj line %d: texture coordinate needs 2 values", line)
			}
			uv, err := parseFloats(fields[1:3])
			if err != nil {
				return nil, errors.Wrapf(err, "obj line %d", line)
			}
			m.UVs = append(m.UVs, [2]float64{uv[0], uv[1]})
		case "f":
			if len(fields) < 4 {
				return nil, errors.Errorf("obj line %d: face needs at least 3 vertices", line)
			}
			corners := fields[1:]
			vi := make([]int, len(corners))
			ti := make([]int, len(corners))
			for i, c := range corners {
				v, t, err := parseCorner(c, len(m.Positions), len(m.UVs))
				if err != nil {
					return nil, errors.Wrapf(err, "obj line %d", line)
				}
				vi[i], ti[i] = v, t
				if t >= 0 {
					anyUV = true
				}
			}
			// Fan-triangulate polygons.
			for i := 1; i+1 < len(vi); i++ {
				m.Triangles = append(m.Triangles, [3]int{vi[0], vi[i], vi[i+1]})
				m.TriUVs = append(m.TriUVs, [3]int{ti[0], ti[i], ti[i+1]})
			}
		case "mtllib":
			if len(fields) >= 2 {
				// A missing MTL is not fatal; geometry still loads.
				loadMTL(filepath.Join(dir, fields[1]), materials)
			}
		case "usemtl":
			if len(fields) >= 2 {
				current = fields[1]
				if texFile == "" && materials[current] != "" {
					texFile = materials[current]
				}
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "read obj")
	}
	if !anyColor {
		m.Colors = nil
	}
	if !anyUV {
		m.UVs = nil
		m.TriUVs = nil
	}
	if texFile != "" && len(m.UVs) > 0 {
		tex, err := decodeImageFile(filepath.Join(dir, texFile))
		if err != nil {
			return nil, errors.Wrap(err, "load obj")
		}
		m.Texture = tex
	}
	return m, nil
}

// parseCorner parses one "v", "v/vt", "v//vn", or "v/vt/vn" face corner.
// Returned indices are zero-based; the UV index is -1 when absent.
func parseCorner(s string, numVerts, numUVs int) (vert, uv int, err error) {
	parts := strings.Split(s, "/")
	vert, err = resolveIndex(parts[0], numVerts)
	if err != nil {
		return 0, 0, err
	}
	uv = -1
	if len(parts) >= 2 && parts[1] != "" {
		uv, err = resolveIndex(parts[1], numUVs)
		if err != nil {
			return 0, 0, err
		}
	}
	return vert, uv, nil
}

// resolveIndex converts a one-based (or negative, relative) OBJ index into a
// zero-based one.
func resolveIndex(s string, count int) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.Errorf("bad index %q", s)
	}
	if n < 0 {
		n = count + n
	} else {
		n--
	}
	if n < 0 || n >= count {
		return 0, errors.Errorf("index %q out of range (%d elements)", s, count)
	}
	return n, nil
}

func loadMTL(path string, out map[string]string) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()
	var current string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 2 {
			continue
		}
		switch fields[0] {
		case "newmtl":
			current = fields[1]
		case "map_Kd":
			if current != "" {
				// The texture file is the last field; options are ignored.
				out[current] = fields[len(fields)-1]
			}
		}
	}
}

func parseFloats(fields []string) ([]float64, error) {
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, errors.Errorf("bad number %q", f)
		}
		out[i] = v
	}
	return out, nil
}

func floatByte(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}
