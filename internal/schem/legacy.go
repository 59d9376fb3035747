package schem

import (
	"io"
	"strings"

	"github.com/Tnze/go-mc/nbt"
	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
)

// Legacy MCEdit .schematic support. Modern block names are mapped onto
// pre-flattening numeric id:meta pairs; only the block families the shipped
// palettes use (wool, concrete, planks, stone) map exactly, everything else
// degrades to stone.

var legacyColorIndex = map[string]byte{
	"white": 0, "orange": 1, "magenta": 2, "light_blue": 3,
	"yellow": 4, "lime": 5, "pink": 6, "gray": 7,
	"light_gray": 8, "cyan": 9, "purple": 10, "blue": 11,
	"brown": 12, "green": 13, "red": 14, "black": 15,
}

var legacyPlankIndex = map[string]byte{
	"oak": 0, "spruce": 1, "birch": 2, "jungle": 3, "acacia": 4, "dark_oak": 5,
}

const (
	legacyIDAir      = 0
	legacyIDStone    = 1
	legacyIDPlanks   = 5
	legacyIDWool     = 35
	legacyIDConcrete = 251
)

// legacyBlock maps a modern block name to a legacy (id, meta) pair.
func legacyBlock(name string) (id, meta byte) {
	b := strings.TrimPrefix(name, "minecraft:")
	switch {
	case b == "" || b == "air":
		return legacyIDAir, 0
	case strings.HasSuffix(b, "_wool"):
		return legacyIDWool, legacyColorIndex[strings.TrimSuffix(b, "_wool")]
	case strings.HasSuffix(b, "_concrete"):
		return legacyIDConcrete, legacyColorIndex[strings.TrimSuffix(b, "_concrete")]
	case strings.HasSuffix(b, "_planks"):
		return legacyIDPlanks, legacyPlankIndex[strings.TrimSuffix(b, "_planks")]
	case b == "stone":
		return legacyIDStone, 0
	default:
		return legacyIDStone, 0
	}
}

// legacyName is the reverse of legacyBlock; unknown ids come back as stone,
// matching the forward mapping's fallback.
func legacyName(id, meta byte) string {
	colorOf := func(idx byte) string {
		for name, i := range legacyColorIndex {
			if i == idx {
				return name
			}
		}
		return "white"
	}
	switch id {
	case legacyIDAir:
		return ""
	case legacyIDWool:
		return "minecraft:" + colorOf(meta) + "_wool"
	case legacyIDConcrete:
		return "minecraft:" + colorOf(meta) + "_concrete"
	case legacyIDPlanks:
		for name, i := range legacyPlankIndex {
			if i == meta {
				return "minecraft:" + name + "_planks"
			}
		}
		return "minecraft:oak_planks"
	default:
		return "minecraft:stone"
	}
}

type legacyFile struct {
	Width        int16      `nbt:"Width"`
	Height       int16      `nbt:"Height"`
	Length       int16      `nbt:"Length"`
	Materials    string     `nbt:"Materials"`
	Blocks       []byte     `nbt:"Blocks"`
	Data         []byte     `nbt:"Data"`
	Entities     []struct{} `nbt:"Entities"`
	TileEntities []struct{} `nbt:"TileEntities"`
	WEOffsetX    int32      `nbt:"WEOffsetX"`
	WEOffsetY    int32      `nbt:"WEOffsetY"`
	WEOffsetZ    int32      `nbt:"WEOffsetZ"`
}

// WriteLegacy serializes the schematic as a legacy MCEdit .schematic:
// gzip-compressed NBT with dense Blocks/Data byte arrays in y,z,x order.
func WriteLegacy(w io.Writer, s *Schematic) error {
	if s.TotalBlocks() == 0 {
		return errors.Wrap(ErrEmptySchematic, "write schematic")
	}

	volume := s.Volume()
	blocks := make([]byte, volume)
	data := make([]byte, volume)
	for idx, pi := range s.Blocks {
		id, meta := legacyBlock(s.Palette[pi])
		blocks[idx] = id
		data[idx] = meta & 0x0F
	}

	file := legacyFile{
		Width:        int16(s.Width),
		Height:       int16(s.Height),
		Length:       int16(s.Length),
		Materials:    "Alpha",
		Blocks:       blocks,
		Data:         data,
		Entities:     []struct{}{},
		TileEntities: []struct{}{},
	}

	zw := gzip.NewWriter(w)
	if err := nbt.NewEncoder(zw).Encode(file, "Schematic"); err != nil {
		return errors.Wrap(err, "write schematic")
	}
	return errors.Wrap(zw.Close(), "write schematic")
}

// ReadLegacy parses a legacy .schematic container. Block names are
// reconstructed from id:meta pairs and the palette rebuilt in scan order.
func ReadLegacy(r io.Reader) (*Schematic, error) {
	zr, err := gzip.NewReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "read schematic")
	}
	defer zr.Close()

	var file legacyFile
	if _, err := nbt.NewDecoder(zr).Decode(&file); err != nil {
		return nil, errors.Wrap(err, "read schematic")
	}

	s := &Schematic{
		Width:   int(file.Width),
		Height:  int(file.Height),
		Length:  int(file.Length),
		Palette: []string{"minecraft:air"},
		Blocks:  map[int]int{},
	}
	if len(file.Blocks) != s.Volume() || len(file.Data) != s.Volume() {
		return nil, errors.Errorf("read schematic: %d block bytes for volume %d",
			len(file.Blocks), s.Volume())
	}
	slot := map[string]int{"minecraft:air": 0}
	for idx, id := range file.Blocks {
		name := legacyName(id, file.Data[idx])
		if name == "" {
			continue
		}
		pi, ok := slot[name]
		if !ok {
			pi = len(s.Palette)
			s.Palette = append(s.Palette, name)
			slot[name] = pi
		}
		s.Blocks[idx] = pi
	}
	return s, nil
}
