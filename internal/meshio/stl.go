package meshio

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"scan2schem/internal/mesh"
)

// ReadSTL parses a binary or ascii STL stream. STL carries no color or UV
// data, so the result is geometry only. Shared vertices are deduplicated so
// the triangle list indexes a compact vertex set.
func ReadSTL(r io.Reader) (*mesh.Mesh, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(6)
	if err != nil {
		return nil, errors.Wrap(err, "read stl")
	}
	if bytes.HasPrefix(head, []byte("solid ")) || bytes.Equal(head, []byte("solid\n")) {
		return readASCIISTL(br)
	}
	return readBinarySTL(br)
}

func readBinarySTL(r io.Reader) (*mesh.Mesh, error) {
	var header struct {
		Comment [80]byte
		NumTris uint32
	}
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, errors.Wrap(err, "read stl header")
	}

	m := &mesh.Mesh{}
	vertIndex := map[[3]float64]int{}
	// Normal (3 floats, skipped) + 3 vertices + attribute count.
	buf := make([]byte, 4*3*4+2)
	for i := 0; i < int(header.NumTris); i++ {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, errors.Wrapf(err, "read stl triangle %d", i)
		}
		var tri [3]int
		for v := 0; v < 3; v++ {
			var p [3]float64
			for c := 0; c < 3; c++ {
				bits := binary.LittleEndian.Uint32(buf[12+12*v+4*c:])
				p[c] = float64(math.Float32frombits(bits))
			}
			tri[v] = internVertex(m, vertIndex, p)
		}
		m.Triangles = append(m.Triangles, tri)
	}
	return m, nil
}

func readASCIISTL(r io.Reader) (*mesh.Mesh, error) {
	m := &mesh.Mesh{}
	vertIndex := map[[3]float64]int{}
	var tri []int

	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || fields[0] != "vertex" {
			continue
		}
		if len(fields) < 4 {
			return nil, errors.Errorf("stl line %d: vertex needs 3 coordinates", line)
		}
		var p [3]float64
		for i := 0; i < 3; i++ {
			v, err := strconv.ParseFloat(fields[i+1], 64)
			if err != nil {
				return nil, errors.Errorf("stl line %d: bad number %q", line, fields[i+1])
			}
			p[i] = v
		}
		tri = append(tri, internVertex(m, vertIndex, p))
		if len(tri) == 3 {
			m.Triangles = append(m.Triangles, [3]int{tri[0], tri[1], tri[2]})
			tri = tri[:0]
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "read stl")
	}
	if len(tri) != 0 {
		return nil, errors.New("read stl: truncated facet")
	}
	return m, nil
}

func internVertex(m *mesh.Mesh, index map[[3]float64]int, p [3]float64) int {
	if i, ok := index[p]; ok {
		return i
	}
	i := len(m.Positions)
	m.Positions = append(m.Positions, p)
	index[p] = i
	return i
}
