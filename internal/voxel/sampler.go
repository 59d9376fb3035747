package voxel

import (
	"runtime"

	"github.com/pkg/errors"
	"github.com/unixpickle/model3d/model3d"
	"golang.org/x/sync/errgroup"

	"scan2schem/internal/mesh"
)

// ErrNoColorSource indicates that a surface point has neither a texture
// sample nor an authored vertex color to draw from.
var ErrNoColorSource = errors.New("no color source")

// Sampler recovers a representative surface color for occupied cells by
// nearest-surface-point queries against the source mesh. Texture colors are
// interpolated with the barycentric coordinates of the closest point;
// meshes without a texture fall back to a barycentric blend of authored
// vertex colors. A non-nil fallback replaces a per-cell missing source
// instead of failing.
type Sampler struct {
	mesh     *mesh.Mesh
	sdf      model3d.FaceSDF
	triIndex map[*model3d.Triangle]int
	fallback *mesh.RGB
}

// NewSampler builds the nearest-face index for a mesh.
func NewSampler(m *mesh.Mesh, fallback *mesh.RGB) *Sampler {
	tris := triangleSoup(m)
	triIndex := make(map[*model3d.Triangle]int, len(tris))
	for i, t := range tris {
		triIndex[t] = i
	}
	return &Sampler{
		mesh:     m,
		sdf:      model3d.MeshToSDF(model3d.NewMeshTriangles(tris)),
		triIndex: triIndex,
		fallback: fallback,
	}
}

// SampleAll attaches one color per occupied cell, in canonical order. Work
// is split across workers over disjoint index ranges; the mesh and SDF are
// read-only, so no locking is involved, and results are deterministic for a
// fixed occupied set.
func (s *Sampler) SampleAll(g *Grid, workers int) error {
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	colors := make([]mesh.RGB, g.Len())

	var eg errgroup.Group
	chunk := (g.Len() + workers - 1) / workers
	for lo := 0; lo < g.Len(); lo += chunk {
		lo, hi := lo, lo+chunk
		if hi > g.Len() {
			hi = g.Len()
		}
		eg.Go(func() error {
			for i := lo; i < hi; i++ {
				c, err := s.sample(g.Center(g.Coords[i]))
				if err != nil {
					return errors.Wrapf(err, "cell %v", g.Coords[i])
				}
				colors[i] = c
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}
	g.Colors = colors
	return nil
}

func (s *Sampler) sample(p model3d.Coord3D) (mesh.RGB, error) {
	face, closest, _ := s.sdf.FaceSDF(p)
	ti := s.triIndex[face]
	bary := barycentric(face, closest)

	if c, ok := s.textureColor(ti, bary); ok {
		return c, nil
	}
	if c, ok := s.vertexColor(ti, bary); ok {
		return c, nil
	}
	if s.fallback != nil {
		return *s.fallback, nil
	}
	return mesh.RGB{}, ErrNoColorSource
}

func (s *Sampler) textureColor(tri int, bary [3]float64) (mesh.RGB, bool) {
	if s.mesh.Texture == nil || len(s.mesh.TriUVs) == 0 {
		return mesh.RGB{}, false
	}
	uvIdx := s.mesh.TriUVs[tri]
	var u, v float64
	for k := 0; k < 3; k++ {
		if uvIdx[k] < 0 {
			return mesh.RGB{}, false
		}
		uv := s.mesh.UVs[uvIdx[k]]
		u += bary[k] * uv[0]
		v += bary[k] * uv[1]
	}
	return s.mesh.Texture.At(u, v), true
}

func (s *Sampler) vertexColor(tri int, bary [3]float64) (mesh.RGB, bool) {
	if len(s.mesh.Colors) == 0 {
		return mesh.RGB{}, false
	}
	var acc [3]float64
	for k := 0; k < 3; k++ {
		c := s.mesh.Colors[s.mesh.Triangles[tri][k]]
		for ch := 0; ch < 3; ch++ {
			acc[ch] += bary[k] * float64(c[ch])
		}
	}
	var out mesh.RGB
	for ch := 0; ch < 3; ch++ {
		v := acc[ch] + 0.5
		if v < 0 {
			v = 0
		} else if v > 255 {
			v = 255
		}
		out[ch] = uint8(v)
	}
	return out, true
}

// barycentric returns the barycentric coordinates of p with respect to the
// triangle's corners. p is assumed to lie on the triangle's plane, as the
// closest points returned by the SDF do.
func barycentric(t *model3d.Triangle, p model3d.Coord3D) [3]float64 {
	v0 := t[1].Sub(t[0])
	v1 := t[2].Sub(t[0])
	v2 := p.Sub(t[0])
	d00 := v0.Dot(v0)
	d01 := v0.Dot(v1)
	d11 := v1.Dot(v1)
	d20 := v2.Dot(v0)
	d21 := v2.Dot(v1)
	denom := d00*d11 - d01*d01
	if denom <= 1e-18 {
		// Degenerate triangle: attribute everything to the first corner.
		return [3]float64{1, 0, 0}
	}
	v := (d11*d20 - d01*d21) / denom
	w := (d00*d21 - d01*d20) / denom
	u := 1 - v - w
	return clampBary([3]float64{u, v, w})
}

func clampBary(b [3]float64) [3]float64 {
	var sum float64
	for i, x := range b {
		if x < 0 {
			x = 0
		}
		b[i] = x
		sum += x
	}
	if sum == 0 {
		return [3]float64{1, 0, 0}
	}
	for i := range b {
		b[i] /= sum
	}
	return b
}
