// Package schem assembles block assignments into portable schematic
// containers: Litematica .litematic files and legacy MCEdit .schematic
// files, both gzip-framed NBT.
package schem

import (
	"sort"
	"time"

	"github.com/pkg/errors"

	"scan2schem/internal/palette"
	"scan2schem/internal/voxel"
)

// ErrEmptySchematic indicates there is nothing to export.
var ErrEmptySchematic = errors.New("empty schematic")

// Meta is container metadata recorded alongside the blocks.
type Meta struct {
	Name        string
	Author      string
	Description string
	CreatedAt   time.Time
}

// Schematic is the exportable result: grid dimensions, a per-run block
// palette, and a sparse block map. Palette slot 0 is always air; the block
// map only stores non-air cells.
type Schematic struct {
	Width, Height, Length int
	Meta                  Meta

	// Palette lists block names in first-use order over the grid's
	// canonical scan; index 0 is "minecraft:air".
	Palette []string
	// Blocks maps linear cell index ((y*Length+z)*Width+x) to a palette
	// index greater than zero.
	Blocks map[int]int
}

// Assemble builds a Schematic from a voxel grid and its palette assignment.
// Returns ErrEmptySchematic when there are no occupied cells.
func Assemble(g *voxel.Grid, asg *palette.Assignment, meta Meta) (*Schematic, error) {
	if g.Len() == 0 {
		return nil, errors.Wrap(ErrEmptySchematic, "no occupied cells to export")
	}
	if len(asg.Indexes) != g.Len() {
		return nil, errors.Errorf("assemble: %d assignments for %d occupied cells",
			len(asg.Indexes), g.Len())
	}

	s := &Schematic{
		Width:   g.Dims[0],
		Height:  g.Dims[1],
		Length:  g.Dims[2],
		Meta:    meta,
		Palette: []string{"minecraft:air"},
		Blocks:  make(map[int]int, g.Len()),
	}
	slot := map[string]int{"minecraft:air": 0}
	for i, c := range g.Coords {
		name := asg.Palette.Entry(asg.Indexes[i]).Name
		pi, ok := slot[name]
		if !ok {
			pi = len(s.Palette)
			s.Palette = append(s.Palette, name)
			slot[name] = pi
		}
		s.Blocks[s.LinearIndex(c[0], c[1], c[2])] = pi
	}
	return s, nil
}

// LinearIndex flattens a cell coordinate into the container's y-major block
// order.
func (s *Schematic) LinearIndex(x, y, z int) int {
	return (y*s.Length+z)*s.Width + x
}

// Volume is the total cell count of the enclosing box.
func (s *Schematic) Volume() int {
	return s.Width * s.Height * s.Length
}

// TotalBlocks is the number of non-air cells.
func (s *Schematic) TotalBlocks() int {
	return len(s.Blocks)
}

// BlockAt returns the block name at a cell, or "" for air or out-of-range
// coordinates.
func (s *Schematic) BlockAt(x, y, z int) string {
	if x < 0 || x >= s.Width || y < 0 || y >= s.Height || z < 0 || z >= s.Length {
		return ""
	}
	if pi, ok := s.Blocks[s.LinearIndex(x, y, z)]; ok {
		return s.Palette[pi]
	}
	return ""
}

// Counts tallies non-air blocks per name, sorted by descending count then
// name for stable reporting.
func (s *Schematic) Counts() []BlockCount {
	byName := map[string]int{}
	for _, pi := range s.Blocks {
		byName[s.Palette[pi]]++
	}
	out := make([]BlockCount, 0, len(byName))
	for name, n := range byName {
		out = append(out, BlockCount{Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// BlockCount is one entry of a per-block tally.
type BlockCount struct {
	Name  string
	Count int
}
