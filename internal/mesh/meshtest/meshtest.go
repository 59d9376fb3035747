// Package meshtest builds small meshes for tests.
package meshtest

import (
	"image"
	"image/color"

	"scan2schem/internal/mesh"
)

// cubeTriangles indexes the 8 corners of a box, two triangles per face.
var cubeTriangles = [][3]int{
	{0, 1, 5}, {0, 5, 4}, // y = min
	{2, 7, 3}, {2, 6, 7}, // y = max
	{0, 2, 3}, {0, 3, 1}, // z = min
	{4, 5, 7}, {4, 7, 6}, // z = max
	{0, 4, 6}, {0, 6, 2}, // x = min
	{1, 3, 7}, {1, 7, 5}, // x = max
}

// Cube returns a closed axis-aligned box with 8 vertices and 12 triangles.
func Cube(min, max [3]float64) *mesh.Mesh {
	m := &mesh.Mesh{}
	for i := 0; i < 8; i++ {
		m.Positions = append(m.Positions, [3]float64{
			pick(i&1 != 0, min[0], max[0]),
			pick(i&2 != 0, min[1], max[1]),
			pick(i&4 != 0, min[2], max[2]),
		})
	}
	m.Triangles = append(m.Triangles, cubeTriangles...)
	return m
}

func pick(hi bool, lo, hiVal float64) float64 {
	if hi {
		return hiVal
	}
	return lo
}

// WithUniformTexture attaches a solid-color texture and maps every triangle
// corner to its center, so every surface sample returns c.
func WithUniformTexture(m *mesh.Mesh, c mesh.RGB) *mesh.Mesh {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: c[0], G: c[1], B: c[2], A: 255})
		}
	}
	m.Texture = mesh.NewTexture(img)
	m.UVs = [][2]float64{{0.5, 0.5}}
	m.TriUVs = make([][3]int, len(m.Triangles))
	return m
}

// WithVertexColors paints every vertex the same color.
func WithVertexColors(m *mesh.Mesh, c mesh.RGB) *mesh.Mesh {
	m.Colors = make([]mesh.RGB, len(m.Positions))
	for i := range m.Colors {
		m.Colors[i] = c
	}
	return m
}
