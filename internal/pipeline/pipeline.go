// Package pipeline runs the four conversion stages in order: voxelize,
// sample surface colors, match against the palette, assemble the schematic.
// Each stage completes fully before the next begins, and every failure is
// wrapped with the name of the stage that produced it.
package pipeline

import (
	"log"
	"time"

	"github.com/pkg/errors"

	"scan2schem/internal/mesh"
	"scan2schem/internal/palette"
	"scan2schem/internal/schem"
	"scan2schem/internal/voxel"
)

// Options configures one conversion run.
type Options struct {
	// Height is the target model height in voxels. Required, >= 1.
	Height int
	// MinComponent prunes connected components smaller than this many
	// cells; 0 or 1 disables pruning.
	MinComponent int
	// Workers bounds sampler/matcher parallelism; <1 means GOMAXPROCS.
	Workers int
	// DefaultColor, when set, substitutes for surface points that have no
	// texture or vertex color instead of failing the run.
	DefaultColor *mesh.RGB

	Name        string
	Author      string
	Description string
	// CreatedAt stamps the container metadata; zero means time.Now at
	// write time.
	CreatedAt time.Time
}

// Run converts a mesh into a schematic. The mesh and palette are treated as
// read-only throughout.
func Run(m *mesh.Mesh, pal *palette.Palette, opts Options) (*schem.Schematic, error) {
	if pal == nil || pal.Len() == 0 {
		return nil, errors.Wrap(palette.ErrEmptyPalette, "match stage")
	}

	grid, err := voxel.Voxelize(m, opts.Height)
	if err != nil {
		return nil, errors.Wrap(err, "voxelize stage")
	}
	log.Printf("Voxelized: %d x %d x %d grid, %d occupied cells",
		grid.Dims[0], grid.Dims[1], grid.Dims[2], grid.Len())

	if opts.MinComponent > 1 {
		var removed int
		grid, removed = voxel.PruneComponents(grid, opts.MinComponent)
		log.Printf("Pruned %d cells in components smaller than %d", removed, opts.MinComponent)
	}
	if grid.Len() == 0 {
		return nil, errors.Wrap(schem.ErrEmptySchematic,
			"voxelize stage: no occupied cells remain; increase height or lower min component size")
	}

	if !m.HasColorSource() && opts.DefaultColor == nil {
		return nil, errors.Wrap(voxel.ErrNoColorSource,
			"sample stage: mesh has neither a texture nor vertex colors")
	}
	sampler := voxel.NewSampler(m, opts.DefaultColor)
	if err := sampler.SampleAll(grid, opts.Workers); err != nil {
		return nil, errors.Wrap(err, "sample stage")
	}
	log.Printf("Sampled surface colors for %d cells", grid.Len())

	assignment, err := palette.Match(grid, pal, opts.Workers)
	if err != nil {
		return nil, errors.Wrap(err, "match stage")
	}

	s, err := schem.Assemble(grid, assignment, schem.Meta{
		Name:        opts.Name,
		Author:      opts.Author,
		Description: opts.Description,
		CreatedAt:   opts.CreatedAt,
	})
	if err != nil {
		return nil, errors.Wrap(err, "assemble stage")
	}
	log.Printf("Assembled schematic: %d blocks, %d distinct block types",
		s.TotalBlocks(), len(s.Palette)-1)
	return s, nil
}
