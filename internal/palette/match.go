package palette

import (
	"runtime"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"scan2schem/internal/voxel"
)

// Assignment maps each occupied grid cell, in the grid's canonical order,
// to a palette entry index.
type Assignment struct {
	Palette *Palette
	Indexes []int
}

// Match assigns every colored cell its nearest palette entry. The palette
// must be non-empty and the grid must already carry sampled colors. Cells
// are partitioned across workers over disjoint index ranges; the palette is
// read-only throughout.
func Match(g *voxel.Grid, p *Palette, workers int) (*Assignment, error) {
	if p == nil || p.Len() == 0 {
		return nil, errors.Wrap(ErrEmptyPalette, "palette has no entries")
	}
	if g.Colors == nil {
		return nil, errors.New("match: grid has no sampled colors")
	}
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}

	indexes := make([]int, g.Len())
	var eg errgroup.Group
	chunk := (g.Len() + workers - 1) / workers
	for lo := 0; lo < g.Len(); lo += chunk {
		lo, hi := lo, lo+chunk
		if hi > g.Len() {
			hi = g.Len()
		}
		eg.Go(func() error {
			for i := lo; i < hi; i++ {
				indexes[i] = p.Nearest(g.Colors[i])
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return &Assignment{Palette: p, Indexes: indexes}, nil
}
