package meshio

import (
	"bytes"
	"encoding/binary"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadBinarySTL(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(make([]byte, 80))
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint32(2)))

	// Two triangles sharing an edge; shared vertices must deduplicate.
	tris := [][3][3]float32{
		{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		{{1, 0, 0}, {1, 1, 0}, {0, 1, 0}},
	}
	for _, tri := range tris {
		require.NoError(t, binary.Write(&buf, binary.LittleEndian, [3]float32{0, 0, 1}))
		for _, v := range tri {
			require.NoError(t, binary.Write(&buf, binary.LittleEndian, v))
		}
		require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint16(0)))
	}

	m, err := ReadSTL(&buf)
	require.NoError(t, err)
	assert.Len(t, m.Positions, 4)
	assert.Equal(t, [][3]int{{0, 1, 2}, {1, 3, 2}}, m.Triangles)
	assert.Nil(t, m.Colors)
	assert.Nil(t, m.UVs)
}

func TestReadASCIISTL(t *testing.T) {
	src := `solid box
facet normal 0 0 1
  outer loop
    vertex 0 0 0
    vertex 1 0 0
    vertex 0 1 0
  endloop
endfacet
endsolid box
`
	m, err := ReadSTL(strings.NewReader(src))
	require.NoError(t, err)
	assert.Len(t, m.Positions, 3)
	assert.Equal(t, [][3]int{{0, 1, 2}}, m.Triangles)
}

func TestReadASCIISTLTruncated(t *testing.T) {
	src := `solid box
facet normal 0 0 1
  outer loop
    vertex 0 0 0
    vertex 1 0 0
  endloop
endfacet
`
	_, err := ReadSTL(strings.NewReader(src))
	require.Error(t, err)
}
