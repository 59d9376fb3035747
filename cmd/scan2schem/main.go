// Command scan2schem voxelizes a 3D surface scan and exports it as a
// Minecraft schematic, coloring each voxel with the nearest palette block.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/unixpickle/essentials"

	"scan2schem/internal/mesh"
	"scan2schem/internal/meshio"
	"scan2schem/internal/palette"
	"scan2schem/internal/pipeline"
	"scan2schem/internal/schem"
)

func main() {
	var meshPath string
	var palettePath string
	var outPath string
	var format string
	var height int
	var minComponent int
	var workers int
	var name string
	var author string
	var description string
	var defaultColor string

	flag.StringVar(&meshPath, "mesh", "", "path to the input OBJ/PLY/STL/GLB mesh")
	flag.StringVar(&palettePath, "palette", "", "block palette JSON (default: built-in wool + concrete)")
	flag.StringVar(&outPath, "out", "scan.litematic", "output file")
	flag.StringVar(&format, "format", "", "output format: litematic or schematic (default: by extension)")
	flag.IntVar(&height, "height", 64, "target model height in blocks")
	flag.IntVar(&minComponent, "min-component", 50, "prune components smaller than this many voxels")
	flag.IntVar(&workers, "workers", 0, "parallel workers for color work (0 = all CPUs)")
	flag.StringVar(&name, "name", "", "schematic name (default: output file base name)")
	flag.StringVar(&author, "author", "scan2schem", "author recorded in the container")
	flag.StringVar(&description, "description", "Generated from mesh", "description recorded in the container")
	flag.StringVar(&defaultColor, "default-color", "",
		"hex RGB (e.g. #BEBEBE) substituted when the mesh has no color data")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage:", os.Args[0], "-mesh <file> [flags]")
		flag.PrintDefaults()
		os.Exit(1)
	}
	flag.Parse()
	if meshPath == "" {
		flag.Usage()
	}

	pal := palette.Default()
	if palettePath != "" {
		var err error
		pal, err = palette.Load(palettePath)
		essentials.Must(err)
	}

	var fallback *mesh.RGB
	if defaultColor != "" {
		c, err := parseHexColor(defaultColor)
		essentials.Must(err)
		fallback = &c
	}

	if name == "" {
		base := filepath.Base(outPath)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}

	write, err := writerFor(format, outPath)
	essentials.Must(err)

	log.Println("Loading mesh:", meshPath)
	m, err := meshio.Load(meshPath)
	essentials.Must(err)

	s, err := pipeline.Run(m, pal, pipeline.Options{
		Height:       height,
		MinComponent: minComponent,
		Workers:      workers,
		DefaultColor: fallback,
		Name:         name,
		Author:       author,
		Description:  description,
	})
	essentials.Must(err)

	f, err := os.Create(outPath)
	essentials.Must(err)
	essentials.Must(write(f, s))
	essentials.Must(f.Close())

	info, err := os.Stat(outPath)
	essentials.Must(err)
	log.Printf("Saved %s (%d bytes)", outPath, info.Size())
}

func writerFor(format, outPath string) (func(f *os.File, s *schem.Schematic) error, error) {
	if format == "" {
		switch strings.ToLower(filepath.Ext(outPath)) {
		case ".litematic":
			format = "litematic"
		case ".schematic", ".schem":
			format = "schematic"
		default:
			format = "litematic"
		}
	}
	switch format {
	case "litematic":
		return func(f *os.File, s *schem.Schematic) error {
			return schem.WriteLitematic(f, s)
		}, nil
	case "schematic":
		return func(f *os.File, s *schem.Schematic) error {
			return schem.WriteLegacy(f, s)
		}, nil
	default:
		return nil, fmt.Errorf("unknown format %q (want litematic or schematic)", format)
	}
}

func parseHexColor(s string) (mesh.RGB, error) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return mesh.RGB{}, fmt.Errorf("bad color %q: want 6 hex digits", s)
	}
	var c mesh.RGB
	for i := 0; i < 3; i++ {
		var v int
		if _, err := fmt.Sscanf(s[i*2:i*2+2], "%02x", &v); err != nil {
			return mesh.RGB{}, fmt.Errorf("bad color %q: %v", s, err)
		}
		c[i] = uint8(v)
	}
	return c, nil
}
