package voxel

import (
	"github.com/unixpickle/model3d/model3d"

	"scan2schem/internal/mesh"
)

// triangleSoup converts the pipeline mesh into model3d triangles. The
// returned slice is parallel to m.Triangles, so a *model3d.Triangle coming
// back from a collider or SDF query can be mapped to its source triangle
// index by pointer identity.
func triangleSoup(m *mesh.Mesh) []*model3d.Triangle {
	tris := make([]*model3d.Triangle, len(m.Triangles))
	for i, t := range m.Triangles {
		tris[i] = &model3d.Triangle{
			coord3D(m.Positions[t[0]]),
			coord3D(m.Positions[t[1]]),
			coord3D(m.Positions[t[2]]),
		}
	}
	return tris
}

func coord3D(p [3]float64) model3d.Coord3D {
	return model3d.Coord3D{X: p[0], Y: p[1], Z: p[2]}
}
