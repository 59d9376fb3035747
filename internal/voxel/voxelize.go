package voxel

import (
	"math"
	"sort"

	"github.com/pkg/errors"
	"github.com/unixpickle/model3d/model3d"

	"scan2schem/internal/mesh"
)

// ErrInvalidParameter indicates an out-of-range conversion parameter.
var ErrInvalidParameter = errors.New("invalid parameter")

// Voxelize rasterizes the mesh into a grid whose Y dimension is exactly
// height; X and Z are derived from the bounding box so the mesh's
// proportions are preserved, and the voxel edge length is
// bbox-height/height.
//
// Occupancy policy is solid fill: a cell is occupied when its center lies
// inside the surface, or when the surface passes within half a voxel edge of
// the center. The interior test is ray parity over several fixed directions,
// which tolerates the duplicated and unclosed triangles scanned meshes carry.
func Voxelize(m *mesh.Mesh, height int) (*Grid, error) {
	if height < 1 {
		return nil, errors.Wrapf(ErrInvalidParameter, "height must be a positive integer, got %d", height)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}

	bounds := m.Bounds()
	size := bounds.Size()
	edge := size[1] / float64(height)
	dims := Coord{
		dimFor(size[0], size[1], height),
		height,
		dimFor(size[2], size[1], height),
	}
	// Center the grid on the mesh along X and Z, where rounding can make the
	// grid slightly wider than the bounding box.
	origin := [3]float64{
		bounds.Min[0] - (float64(dims[0])*edge-size[0])/2,
		bounds.Min[1],
		bounds.Min[2] - (float64(dims[2])*edge-size[2])/2,
	}

	collider := model3d.MeshToCollider(model3d.NewMeshTriangles(triangleSoup(m)))
	interior := newInteriorTest(collider)
	surfaceRadius := edge / 2

	grid := NewGrid(dims, origin, edge, nil)
	var coords []Coord
	for x := 0; x < dims[0]; x++ {
		for y := 0; y < dims[1]; y++ {
			for z := 0; z < dims[2]; z++ {
				c := Coord{x, y, z}
				center := grid.Center(c)
				if collider.SphereCollision(center, surfaceRadius) || interior.Contains(center) {
					coords = append(coords, c)
				}
			}
		}
	}
	return NewGrid(dims, origin, edge, coords), nil
}

func dimFor(extent, heightExtent float64, height int) int {
	d := int(math.Round(float64(height) * extent / heightExtent))
	if d < 1 {
		return 1
	}
	return d
}

// interiorTest decides containment by casting rays in several fixed
// directions and requiring odd parity in all of them. Nearly coincident
// collisions are collapsed so duplicated surfaces count as one boundary.
type interiorTest struct {
	collider model3d.Collider
	epsilon  float64
}

func newInteriorTest(c model3d.Collider) *interiorTest {
	return &interiorTest{
		collider: c,
		epsilon:  c.Max().Sub(c.Min()).Norm() * 1e-8,
	}
}

var parityDirections = []model3d.Coord3D{
	{X: -0.40475415, Y: 0.86174632, Z: -0.30588783},
	{X: -0.81025101, Y: 0.38452447, Z: -0.44230559},
	{X: -0.09226702, Y: -0.74875317, Z: -0.65639584},
	{X: -0.99668947, Y: 0.08087344, Z: 0.00834144},
	{X: 0.67074042, Y: -0.60098173, Z: 0.43465877},
}

func (t *interiorTest) Contains(c model3d.Coord3D) bool {
	if !model3d.InBounds(t.collider, c) {
		return false
	}
	for _, d := range parityDirections {
		if t.numIntersections(c, d)%2 == 0 {
			return false
		}
	}
	return true
}

func (t *interiorTest) numIntersections(origin, direction model3d.Coord3D) int {
	var collisions []float64
	t.collider.RayCollisions(&model3d.Ray{
		Origin:    origin,
		Direction: direction,
	}, func(r model3d.RayCollision) {
		collisions = append(collisions, r.Scale)
	})
	if len(collisions) == 0 {
		return 0
	}
	sort.Float64s(collisions)

	var lastScale float64
	var numUnique int
	for _, s := range collisions {
		if s-lastScale > t.epsilon {
			numUnique++
		}
		lastScale = s
	}
	return numUnique
}
