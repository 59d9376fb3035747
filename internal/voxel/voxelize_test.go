package voxel

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scan2schem/internal/mesh"
	"scan2schem/internal/mesh/meshtest"
)

func TestVoxelizeUnitCube(t *testing.T) {
	g, err := Voxelize(meshtest.Cube([3]float64{0, 0, 0}, [3]float64{1, 1, 1}), 4)
	require.NoError(t, err)

	assert.Equal(t, Coord{4, 4, 4}, g.Dims)
	assert.InDelta(t, 0.25, g.Edge, 1e-12)
	// Solid fill: every cell of the cube's box is occupied.
	assert.Equal(t, 64, g.Len())
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			for z := 0; z < 4; z++ {
				assert.True(t, g.Occupied(Coord{x, y, z}))
			}
		}
	}
}

func TestVoxelizeAspectRatio(t *testing.T) {
	// A 2 x 1 x 0.5 box: X doubles the height dimension, Z halves it.
	g, err := Voxelize(meshtest.Cube([3]float64{0, 0, 0}, [3]float64{2, 1, 0.5}), 4)
	require.NoError(t, err)
	assert.Equal(t, Coord{8, 4, 2}, g.Dims)

	// Every occupied coordinate stays inside the declared dimensions.
	for _, c := range g.Coords {
		for a := 0; a < 3; a++ {
			assert.GreaterOrEqual(t, c[a], 0)
			assert.Less(t, c[a], g.Dims[a])
		}
	}
}

func TestVoxelizeMinimumDimension(t *testing.T) {
	// A tall sliver still gets at least one cell along X and Z.
	g, err := Voxelize(meshtest.Cube([3]float64{0, 0, 0}, [3]float64{0.01, 1, 0.01}), 8)
	require.NoError(t, err)
	assert.Equal(t, Coord{1, 8, 1}, g.Dims)
	assert.Greater(t, g.Len(), 0)
}

func TestVoxelizeHollowInterior(t *testing.T) {
	// Interior cells are filled even when far from any surface.
	g, err := Voxelize(meshtest.Cube([3]float64{0, 0, 0}, [3]float64{1, 1, 1}), 9)
	require.NoError(t, err)
	assert.True(t, g.Occupied(Coord{4, 4, 4}), "center cell of a closed box must be filled")
}

func TestVoxelizeInvalidHeight(t *testing.T) {
	cube := meshtest.Cube([3]float64{0, 0, 0}, [3]float64{1, 1, 1})
	for _, h := range []int{0, -1, -100} {
		_, err := Voxelize(cube, h)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidParameter), "height %d: got %v", h, err)
	}
}

func TestVoxelizeInvalidMesh(t *testing.T) {
	_, err := Voxelize(&mesh.Mesh{}, 10)
	require.Error(t, err)
	assert.True(t, errors.Is(err, mesh.ErrInvalidMesh), "got %v", err)

	flat := &mesh.Mesh{
		Positions: [][3]float64{{0, 0, 0}, {1, 0, 0}, {0, 0, 1}},
		Triangles: [][3]int{{0, 1, 2}},
	}
	_, err = Voxelize(flat, 10)
	require.Error(t, err)
	assert.True(t, errors.Is(err, mesh.ErrInvalidMesh), "got %v", err)
}

func TestVoxelizeDeterministic(t *testing.T) {
	cube := meshtest.Cube([3]float64{-0.3, 0.1, 2}, [3]float64{1.1, 2.3, 3.7})
	a, err := Voxelize(cube, 7)
	require.NoError(t, err)
	b, err := Voxelize(cube, 7)
	require.NoError(t, err)
	assert.Equal(t, a.Dims, b.Dims)
	assert.Equal(t, a.Coords, b.Coords)
}

func TestPruneComponents(t *testing.T) {
	// A 2x2x2 blob plus one far-away stray cell.
	coords := []Coord{
		{0, 0, 0}, {0, 0, 1}, {0, 1, 0}, {0, 1, 1},
		{1, 0, 0}, {1, 0, 1}, {1, 1, 0}, {1, 1, 1},
		{7, 7, 7},
	}
	g := NewGrid(Coord{8, 8, 8}, [3]float64{}, 1, coords)

	pruned, removed := PruneComponents(g, 2)
	assert.Equal(t, 1, removed)
	assert.Equal(t, 8, pruned.Len())
	assert.False(t, pruned.Occupied(Coord{7, 7, 7}))

	// minSize <= 1 is a no-op.
	same, removed := PruneComponents(g, 1)
	assert.Equal(t, 0, removed)
	assert.Equal(t, g.Len(), same.Len())

	// A large enough threshold removes everything.
	empty, removed := PruneComponents(g, 100)
	assert.Equal(t, 9, removed)
	assert.Equal(t, 0, empty.Len())
}

func TestPruneComponentsKeepsColors(t *testing.T) {
	coords := []Coord{{0, 0, 0}, {0, 0, 1}, {5, 5, 5}}
	g := NewGrid(Coord{8, 8, 8}, [3]float64{}, 1, coords)
	g.Colors = []mesh.RGB{{1, 1, 1}, {2, 2, 2}, {3, 3, 3}}

	pruned, removed := PruneComponents(g, 2)
	assert.Equal(t, 1, removed)
	require.Equal(t, 2, pruned.Len())
	assert.Equal(t, []mesh.RGB{{1, 1, 1}, {2, 2, 2}}, pruned.Colors)
}
