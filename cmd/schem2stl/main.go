// Command schem2stl converts a schematic back into a triangle mesh for
// previewing: the occupied voxels become a solid that is surfaced with
// marching cubes and saved as an STL file.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/unixpickle/essentials"
	"github.com/unixpickle/model3d/model3d"

	"scan2schem/internal/schem"
)

func main() {
	var outputPath string
	flag.StringVar(&outputPath, "output", "preview.stl", "output STL file")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage:", os.Args[0], "[flags] <input.litematic|input.schematic>")
		flag.PrintDefaults()
		os.Exit(1)
	}
	flag.Parse()
	if len(flag.Args()) != 1 {
		flag.Usage()
	}
	inputPath := flag.Args()[0]

	log.Println("Reading schematic...")
	s, err := readSchematic(inputPath)
	essentials.Must(err)
	log.Printf("Loaded %d x %d x %d schematic with %d blocks",
		s.Width, s.Height, s.Length, s.TotalBlocks())

	solid := model3d.CheckedFuncSolid(
		model3d.Coord3D{},
		model3d.Coord3D{X: float64(s.Width), Y: float64(s.Height), Z: float64(s.Length)},
		func(c model3d.Coord3D) bool {
			return s.BlockAt(int(c.X), int(c.Y), int(c.Z)) != ""
		},
	)

	log.Println("Creating mesh...")
	mesh := model3d.MarchingCubesSearch(solid, 0.5, 8)
	essentials.Must(mesh.SaveGroupedSTL(outputPath))
	log.Println("Saved", outputPath)
}

func readSchematic(path string) (*schem.Schematic, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".litematic":
		return schem.ReadLitematic(f)
	default:
		return schem.ReadLegacy(f)
	}
}
