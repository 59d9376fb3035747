package palette

import (
	"math/rand"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scan2schem/internal/mesh"
	"scan2schem/internal/voxel"
)

func TestParse(t *testing.T) {
	p, err := Parse([]byte(`[["minecraft:white_wool", [255, 255, 255]], ["minecraft:red_wool", [255, 0, 0]]]`))
	require.NoError(t, err)
	require.Equal(t, 2, p.Len())
	assert.Equal(t, "minecraft:white_wool", p.Entry(0).Name)
	assert.Equal(t, mesh.RGB{255, 0, 0}, p.Entry(1).Color)
}

func TestParseRejectsMalformed(t *testing.T) {
	bad := []string{
		`{"white_wool": [255,255,255]}`,      // object, not list
		`[["white_wool"]]`,                   // missing color
		`[["white_wool", [255, 255]]]`,       // two channels
		`[["white_wool", [255, 255, 300]]]`,  // out of range
		`[["white_wool", [255, 255, -1]]]`,   // negative
		`[["", [0, 0, 0]]]`,                  // empty name
		`[["white_wool", ["r", "g", "b"]]]`,  // wrong types
		`[["white_wool", [0, 0, 0], "more"]]`, // trailing junk
		`not json`,
	}
	for _, src := range bad {
		_, err := Parse([]byte(src))
		assert.Error(t, err, "input %s", src)
	}
}

func TestDefaultPalette(t *testing.T) {
	p := Default()
	assert.Equal(t, 32, p.Len())
	assert.Equal(t, "minecraft:white_wool", p.Entry(0).Name)
}

func TestNearestExactMatch(t *testing.T) {
	p, err := Parse([]byte(`[["minecraft:white_wool", [255, 255, 255]], ["minecraft:red_wool", [255, 0, 0]]]`))
	require.NoError(t, err)
	assert.Equal(t, 1, p.Nearest(mesh.RGB{255, 0, 0}))
	assert.Equal(t, 0, p.Nearest(mesh.RGB{255, 255, 255}))
	assert.Equal(t, 1, p.Nearest(mesh.RGB{200, 30, 20}))
}

func TestNearestTieBreaksToLowestIndex(t *testing.T) {
	p, err := Parse([]byte(`[["first", [10, 20, 30]], ["second", [10, 20, 30]], ["third", [10, 20, 30]]]`))
	require.NoError(t, err)
	assert.Equal(t, 0, p.Nearest(mesh.RGB{10, 20, 30}))
	assert.Equal(t, 0, p.Nearest(mesh.RGB{99, 99, 99}))
}

func TestNearestIsTrueMinimum(t *testing.T) {
	p := Default()
	rng := rand.New(rand.NewSource(42))
	for n := 0; n < 200; n++ {
		c := mesh.RGB{uint8(rng.Intn(256)), uint8(rng.Intn(256)), uint8(rng.Intn(256))}
		got := p.Nearest(c)
		lab := rgbToLab(c)
		for i := 0; i < p.Len(); i++ {
			assert.LessOrEqual(t,
				labDistSq(lab, p.entries[got].lab),
				labDistSq(lab, p.entries[i].lab),
				"color %v: entry %d beats chosen %d", c, i, got)
		}
	}
}

func TestMatch(t *testing.T) {
	p, err := Parse([]byte(`[["minecraft:white_wool", [255, 255, 255]], ["minecraft:red_wool", [255, 0, 0]]]`))
	require.NoError(t, err)

	g := voxel.NewGrid(voxel.Coord{2, 1, 1}, [3]float64{}, 1, []voxel.Coord{{0, 0, 0}, {1, 0, 0}})
	g.Colors = []mesh.RGB{{250, 10, 10}, {240, 240, 240}}

	asg, err := Match(g, p, 2)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 0}, asg.Indexes)
}

func TestMatchEmptyPalette(t *testing.T) {
	empty, err := Parse([]byte(`[]`))
	require.NoError(t, err)

	g := voxel.NewGrid(voxel.Coord{1, 1, 1}, [3]float64{}, 1, []voxel.Coord{{0, 0, 0}})
	g.Colors = []mesh.RGB{{1, 2, 3}}

	_, err = Match(g, empty, 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEmptyPalette), "got %v", err)
}

func TestMatchRequiresSampledColors(t *testing.T) {
	p := Default()
	g := voxel.NewGrid(voxel.Coord{1, 1, 1}, [3]float64{}, 1, []voxel.Coord{{0, 0, 0}})
	_, err := Match(g, p, 1)
	require.Error(t, err)
}

func TestMatchDeterministicAcrossWorkerCounts(t *testing.T) {
	p := Default()
	rng := rand.New(rand.NewSource(7))
	var coords []voxel.Coord
	var colors []mesh.RGB
	for i := 0; i < 500; i++ {
		coords = append(coords, voxel.Coord{i, 0, 0})
		colors = append(colors, mesh.RGB{uint8(rng.Intn(256)), uint8(rng.Intn(256)), uint8(rng.Intn(256))})
	}
	g1 := voxel.NewGrid(voxel.Coord{500, 1, 1}, [3]float64{}, 1, coords)
	g1.Colors = colors
	g2 := voxel.NewGrid(voxel.Coord{500, 1, 1}, [3]float64{}, 1, coords)
	g2.Colors = colors

	a, err := Match(g1, p, 1)
	require.NoError(t, err)
	b, err := Match(g2, p, 16)
	require.NoError(t, err)
	assert.Equal(t, a.Indexes, b.Indexes)
}
