// Command schemstat prints the dimensions, metadata, and per-block counts
// of a schematic file, for sanity-checking converter output.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/unixpickle/essentials"

	"scan2schem/internal/schem"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage:", os.Args[0], "<input.litematic|input.schematic>")
		os.Exit(1)
	}
	flag.Parse()
	if len(flag.Args()) != 1 {
		flag.Usage()
	}
	path := flag.Args()[0]

	f, err := os.Open(path)
	essentials.Must(err)
	defer f.Close()

	var s *schem.Schematic
	switch strings.ToLower(filepath.Ext(path)) {
	case ".litematic":
		s, err = schem.ReadLitematic(f)
	default:
		s, err = schem.ReadLegacy(f)
	}
	essentials.Must(err)

	fmt.Printf("File:        %s\n", path)
	fmt.Printf("Size:        %d x %d x %d (W x H x L)\n", s.Width, s.Height, s.Length)
	fmt.Printf("Blocks:      %d of %d cells\n", s.TotalBlocks(), s.Volume())
	if s.Meta.Name != "" {
		fmt.Printf("Name:        %s\n", s.Meta.Name)
	}
	if s.Meta.Author != "" {
		fmt.Printf("Author:      %s\n", s.Meta.Author)
	}
	if s.Meta.Description != "" {
		fmt.Printf("Description: %s\n", s.Meta.Description)
	}
	fmt.Println("Block counts:")
	for _, bc := range s.Counts() {
		fmt.Printf("  %8d  %s\n", bc.Count, bc.Name)
	}
}
