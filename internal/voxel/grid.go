// Package voxel discretizes a triangle mesh into a sparse grid of occupied
// cells and recovers a surface color for each of them.
package voxel

import (
	"github.com/unixpickle/model3d/model3d"

	"scan2schem/internal/mesh"
)

// Coord is an integer cell position (x, y, z).
type Coord [3]int

// Grid is a sparse voxel grid. Coords lists the occupied cells in a
// canonical x-major scan order; every parallel per-cell slice (Colors, and
// downstream palette assignments) uses the same order. Origin and Edge map
// cell coordinates back into the mesh's model space.
type Grid struct {
	Dims   Coord
	Origin [3]float64
	Edge   float64

	Coords []Coord
	// Colors is nil until the sampler attaches one color per occupied cell.
	Colors []mesh.RGB

	index map[Coord]int
}

// NewGrid builds a grid over the given occupied cells, which must already be
// in canonical order and free of duplicates.
func NewGrid(dims Coord, origin [3]float64, edge float64, coords []Coord) *Grid {
	g := &Grid{
		Dims:   dims,
		Origin: origin,
		Edge:   edge,
		Coords: coords,
		index:  make(map[Coord]int, len(coords)),
	}
	for i, c := range coords {
		g.index[c] = i
	}
	return g
}

// Len returns the number of occupied cells.
func (g *Grid) Len() int {
	return len(g.Coords)
}

// Occupied reports whether the cell is part of the model.
func (g *Grid) Occupied(c Coord) bool {
	_, ok := g.index[c]
	return ok
}

// IndexOf returns the canonical index of an occupied cell.
func (g *Grid) IndexOf(c Coord) (int, bool) {
	i, ok := g.index[c]
	return i, ok
}

// Center returns the model-space center point of a cell.
func (g *Grid) Center(c Coord) model3d.Coord3D {
	return model3d.Coord3D{
		X: g.Origin[0] + (float64(c[0])+0.5)*g.Edge,
		Y: g.Origin[1] + (float64(c[1])+0.5)*g.Edge,
		Z: g.Origin[2] + (float64(c[2])+0.5)*g.Edge,
	}
}
