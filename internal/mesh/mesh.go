// Package mesh defines the in-memory triangle mesh consumed by the
// conversion pipeline, independent of the file container it was loaded from.
package mesh

import (
	"math"

	"github.com/pkg/errors"
)

// ErrInvalidMesh indicates empty or degenerate input geometry.
var ErrInvalidMesh = errors.New("invalid mesh")

// RGB is an 8-bit-per-channel color.
type RGB [3]uint8

// Mesh is an immutable triangulated surface. Positions and Triangles are
// always present; UVs, Colors, and Texture are optional and describe the
// surface's appearance.
type Mesh struct {
	Positions [][3]float64
	Triangles [][3]int

	// UVs holds texture coordinates in [0,1]. TriUVs is parallel to
	// Triangles: TriUVs[i][k] indexes UVs for corner k of triangle i, or is
	// -1 when that corner has no texture coordinate.
	UVs    [][2]float64
	TriUVs [][3]int

	// Colors are authored per-vertex colors, parallel to Positions.
	Colors []RGB

	Texture *Texture
}

// Box is an axis-aligned bounding box.
type Box struct {
	Min, Max [3]float64
}

// Size returns the box extent along each axis.
func (b Box) Size() [3]float64 {
	return [3]float64{b.Max[0] - b.Min[0], b.Max[1] - b.Min[1], b.Max[2] - b.Min[2]}
}

// Bounds computes the axis-aligned bounding box of all referenced vertices.
func (m *Mesh) Bounds() Box {
	inf := math.Inf(1)
	b := Box{
		Min: [3]float64{inf, inf, inf},
		Max: [3]float64{-inf, -inf, -inf},
	}
	for _, t := range m.Triangles {
		for _, vi := range t {
			p := m.Positions[vi]
			for a := 0; a < 3; a++ {
				if p[a] < b.Min[a] {
					b.Min[a] = p[a]
				}
				if p[a] > b.Max[a] {
					b.Max[a] = p[a]
				}
			}
		}
	}
	return b
}

// Validate checks that the mesh has at least one triangle, that every index
// is in range, and that the bounding box has a positive extent along every
// axis. All failures wrap ErrInvalidMesh.
func (m *Mesh) Validate() error {
	if len(m.Triangles) == 0 {
		return errors.Wrap(ErrInvalidMesh, "mesh has no triangles")
	}
	for i, t := range m.Triangles {
		for _, vi := range t {
			if vi < 0 || vi >= len(m.Positions) {
				return errors.Wrapf(ErrInvalidMesh, "triangle %d references vertex %d of %d",
					i, vi, len(m.Positions))
			}
		}
	}
	if len(m.TriUVs) != 0 && len(m.TriUVs) != len(m.Triangles) {
		return errors.Wrapf(ErrInvalidMesh, "have %d triangles but %d UV index triples",
			len(m.Triangles), len(m.TriUVs))
	}
	size := m.Bounds().Size()
	for a, s := range size {
		if s <= 0 {
			return errors.Wrapf(ErrInvalidMesh, "degenerate geometry: zero extent along axis %d", a)
		}
	}
	return nil
}

// HasColorSource reports whether the mesh carries any appearance data at
// all: a texture with UVs, or authored vertex colors.
func (m *Mesh) HasColorSource() bool {
	if m.Texture != nil && len(m.UVs) > 0 && len(m.TriUVs) > 0 {
		return true
	}
	return len(m.Colors) > 0
}
