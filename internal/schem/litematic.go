package schem

import (
	"io"
	"math/bits"
	"time"

	"github.com/Tnze/go-mc/nbt"
	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
)

const (
	litematicFormatVersion = 5
	// Data version of Minecraft 1.18.2, the oldest release all the block
	// names in the shipped palettes exist in.
	minecraftDataVersion = 2975
)

type nbtVec3 struct {
	X int32 `nbt:"x"`
	Y int32 `nbt:"y"`
	Z int32 `nbt:"z"`
}

type nbtBlockState struct {
	Name string `nbt:"Name"`
}

type litematicMetadata struct {
	Name          string  `nbt:"Name"`
	Author        string  `nbt:"Author"`
	Description   string  `nbt:"Description"`
	RegionCount   int32   `nbt:"RegionCount"`
	TotalBlocks   int32   `nbt:"TotalBlocks"`
	TotalVolume   int32   `nbt:"TotalVolume"`
	TimeCreated   int64   `nbt:"TimeCreated"`
	TimeModified  int64   `nbt:"TimeModified"`
	EnclosingSize nbtVec3 `nbt:"EnclosingSize"`
}

type litematicRegion struct {
	Position          nbtVec3         `nbt:"Position"`
	Size              nbtVec3         `nbt:"Size"`
	BlockStatePalette []nbtBlockState `nbt:"BlockStatePalette"`
	BlockStates       []int64         `nbt:"BlockStates"`
	Entities          []struct{}      `nbt:"Entities"`
	TileEntities      []struct{}      `nbt:"TileEntities"`
	PendingBlockTicks []struct{}      `nbt:"PendingBlockTicks"`
	PendingFluidTicks []struct{}      `nbt:"PendingFluidTicks"`
}

type litematicFile struct {
	Version              int32                      `nbt:"Version"`
	MinecraftDataVersion int32                      `nbt:"MinecraftDataVersion"`
	Metadata             litematicMetadata          `nbt:"Metadata"`
	Regions              map[string]litematicRegion `nbt:"Regions"`
}

// WriteLitematic serializes the schematic as a Litematica .litematic
// container: gzip-compressed NBT with a single region at the origin.
func WriteLitematic(w io.Writer, s *Schematic) error {
	if s.TotalBlocks() == 0 {
		return errors.Wrap(ErrEmptySchematic, "write litematic")
	}

	created := s.Meta.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	millis := created.UnixMilli()

	size := nbtVec3{X: int32(s.Width), Y: int32(s.Height), Z: int32(s.Length)}
	states := make([]nbtBlockState, len(s.Palette))
	for i, name := range s.Palette {
		states[i] = nbtBlockState{Name: name}
	}

	file := litematicFile{
		Version:              litematicFormatVersion,
		MinecraftDataVersion: minecraftDataVersion,
		Metadata: litematicMetadata{
			Name:          s.Meta.Name,
			Author:        s.Meta.Author,
			Description:   s.Meta.Description,
			RegionCount:   1,
			TotalBlocks:   int32(s.TotalBlocks()),
			TotalVolume:   int32(s.Volume()),
			TimeCreated:   millis,
			TimeModified:  millis,
			EnclosingSize: size,
		},
		Regions: map[string]litematicRegion{
			s.Meta.Name: {
				Position:          nbtVec3{},
				Size:              size,
				BlockStatePalette: states,
				BlockStates:       packBlockStates(s),
				Entities:          []struct{}{},
				TileEntities:      []struct{}{},
				PendingBlockTicks: []struct{}{},
				PendingFluidTicks: []struct{}{},
			},
		},
	}

	zw := gzip.NewWriter(w)
	if err := nbt.NewEncoder(zw).Encode(file, ""); err != nil {
		return errors.Wrap(err, "write litematic")
	}
	return errors.Wrap(zw.Close(), "write litematic")
}

// paletteBits returns the bit width Litematica's packing uses for a palette
// of n entries: enough bits for index n-1, but never fewer than 2.
func paletteBits(n int) int {
	b := bits.Len(uint(n - 1))
	if b < 2 {
		return 2
	}
	return b
}

// packBlockStates bit-packs palette indices in y,z,x scan order into a long
// array. Entries are packed little-endian and span long boundaries, which
// is Litematica's layout (unlike the padded chunk format of modern
// Minecraft saves).
func packBlockStates(s *Schematic) []int64 {
	nbits := paletteBits(len(s.Palette))
	volume := s.Volume()
	packed := make([]uint64, (volume*nbits+63)/64)
	for idx, pi := range s.Blocks {
		v := uint64(pi)
		off := idx * nbits
		word, shift := off>>6, uint(off&63)
		packed[word] |= v << shift
		if int(shift)+nbits > 64 {
			packed[word+1] |= v >> (64 - shift)
		}
	}
	out := make([]int64, len(packed))
	for i, v := range packed {
		out[i] = int64(v)
	}
	return out
}

// ReadLitematic parses a .litematic container written by WriteLitematic or
// by Litematica itself. Multi-region files are rejected; the converter only
// ever produces one region.
func ReadLitematic(r io.Reader) (*Schematic, error) {
	zr, err := gzip.NewReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "read litematic")
	}
	defer zr.Close()

	var file litematicFile
	if _, err := nbt.NewDecoder(zr).Decode(&file); err != nil {
		return nil, errors.Wrap(err, "read litematic")
	}
	if len(file.Regions) != 1 {
		return nil, errors.Errorf("read litematic: want exactly 1 region, have %d", len(file.Regions))
	}

	var region litematicRegion
	for _, reg := range file.Regions {
		region = reg
	}
	s := &Schematic{
		Width:  int(abs32(region.Size.X)),
		Height: int(abs32(region.Size.Y)),
		Length: int(abs32(region.Size.Z)),
		Meta: Meta{
			Name:        file.Metadata.Name,
			Author:      file.Metadata.Author,
			Description: file.Metadata.Description,
			CreatedAt:   time.UnixMilli(file.Metadata.TimeCreated),
		},
		Blocks: map[int]int{},
	}
	s.Palette = make([]string, len(region.BlockStatePalette))
	for i, bs := range region.BlockStatePalette {
		s.Palette[i] = bs.Name
	}
	if len(s.Palette) == 0 || s.Palette[0] != "minecraft:air" {
		return nil, errors.New("read litematic: palette slot 0 is not air")
	}

	nbits := paletteBits(len(s.Palette))
	mask := uint64(1)<<uint(nbits) - 1
	packed := make([]uint64, len(region.BlockStates))
	for i, v := range region.BlockStates {
		packed[i] = uint64(v)
	}
	for idx := 0; idx < s.Volume(); idx++ {
		off := idx * nbits
		word, shift := off>>6, uint(off&63)
		if word >= len(packed) {
			return nil, errors.New("read litematic: truncated block state array")
		}
		v := packed[word] >> shift
		if int(shift)+nbits > 64 {
			if word+1 >= len(packed) {
				return nil, errors.New("read litematic: truncated block state array")
			}
			v |= packed[word+1] << (64 - shift)
		}
		v &= mask
		if v == 0 {
			continue
		}
		if int(v) >= len(s.Palette) {
			return nil, errors.Errorf("read litematic: block state %d exceeds palette size %d",
				v, len(s.Palette))
		}
		s.Blocks[idx] = int(v)
	}
	return s, nil
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}
