package schem

import (
	"bytes"
	"fmt"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSchematic(width, height, length, numNames int) *Schematic {
	s := &Schematic{
		Width:  width,
		Height: height,
		Length: length,
		Meta: Meta{
			Name:        "fixture",
			Author:      "tester",
			Description: "round trip fixture",
			CreatedAt:   time.UnixMilli(1700000000000),
		},
		Palette: []string{"minecraft:air"},
		Blocks:  map[int]int{},
	}
	for i := 0; i < numNames; i++ {
		s.Palette = append(s.Palette, fmt.Sprintf("minecraft:block_%d", i))
	}
	// A deterministic sprinkle of blocks, cycling through the palette and
	// leaving every third cell as air.
	idx := 0
	for i := 0; i < s.Volume(); i++ {
		if i%3 == 2 {
			continue
		}
		s.Blocks[i] = 1 + idx%numNames
		idx++
	}
	return s
}

func TestLitematicRoundTrip(t *testing.T) {
	// Palette sizes straddling 2, 4, and 7 bit packing, with a volume that
	// does not divide evenly into 64-bit words.
	for _, numNames := range []int{1, 3, 14, 80} {
		t.Run(fmt.Sprintf("palette%d", numNames), func(t *testing.T) {
			s := testSchematic(5, 7, 3, numNames)

			var buf bytes.Buffer
			require.NoError(t, WriteLitematic(&buf, s))

			got, err := ReadLitematic(&buf)
			require.NoError(t, err)
			assert.Equal(t, s.Width, got.Width)
			assert.Equal(t, s.Height, got.Height)
			assert.Equal(t, s.Length, got.Length)
			assert.Equal(t, s.Palette, got.Palette)
			assert.Equal(t, s.Blocks, got.Blocks)
			assert.Equal(t, s.Meta.Name, got.Meta.Name)
			assert.Equal(t, s.Meta.Author, got.Meta.Author)
			assert.Equal(t, s.Meta.Description, got.Meta.Description)
			assert.Equal(t, s.Meta.CreatedAt.UnixMilli(), got.Meta.CreatedAt.UnixMilli())
		})
	}
}

func TestWriteLitematicEmpty(t *testing.T) {
	s := &Schematic{Width: 4, Height: 4, Length: 4, Palette: []string{"minecraft:air"}, Blocks: map[int]int{}}
	err := WriteLitematic(&bytes.Buffer{}, s)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEmptySchematic), "got %v", err)
}

func TestWriteLitematicDeterministic(t *testing.T) {
	var a, b bytes.Buffer
	require.NoError(t, WriteLitematic(&a, testSchematic(4, 4, 4, 3)))
	require.NoError(t, WriteLitematic(&b, testSchematic(4, 4, 4, 3)))
	assert.Equal(t, a.Bytes(), b.Bytes())
}

func TestReadLitematicGarbage(t *testing.T) {
	_, err := ReadLitematic(bytes.NewReader([]byte("not a litematic")))
	require.Error(t, err)
}

func TestPackBlockStatesSpansWords(t *testing.T) {
	// An 8-entry palette packs at 3 bits, so entry 21 straddles the
	// boundary between the first and second word. Fill all 22 cells with
	// palette index 7 (0b111): the low bit of the straddling entry lands in
	// bit 63 of word 0 and its high bits spill into word 1.
	s := &Schematic{
		Width: 22, Height: 1, Length: 1,
		Palette: []string{"minecraft:air", "a", "b", "c", "d", "e", "f", "g"},
		Blocks:  map[int]int{},
	}
	for i := 0; i < 22; i++ {
		s.Blocks[i] = 7
	}
	packed := packBlockStates(s)
	require.Len(t, packed, 2)
	assert.Equal(t, int64(-1), packed[0], "first word fully set")
	assert.Equal(t, int64(3), packed[1], "two spilled bits")
}
