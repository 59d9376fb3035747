package schem

import (
	"bytes"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLegacyBlockMapping(t *testing.T) {
	tests := []struct {
		name     string
		id, meta byte
	}{
		{"minecraft:air", 0, 0},
		{"minecraft:white_wool", 35, 0},
		{"minecraft:red_wool", 35, 14},
		{"minecraft:black_wool", 35, 15},
		{"minecraft:light_blue_concrete", 251, 3},
		{"minecraft:oak_planks", 5, 0},
		{"minecraft:dark_oak_planks", 5, 5},
		{"minecraft:stone", 1, 0},
		{"minecraft:diamond_block", 1, 0}, // unknown falls back to stone
	}
	for _, test := range tests {
		id, meta := legacyBlock(test.name)
		assert.Equal(t, test.id, id, test.name)
		assert.Equal(t, test.meta, meta, test.name)
	}
}

func TestLegacyNameRoundTrip(t *testing.T) {
	names := []string{
		"minecraft:white_wool", "minecraft:red_wool", "minecraft:cyan_concrete",
		"minecraft:spruce_planks", "minecraft:stone",
	}
	for _, name := range names {
		id, meta := legacyBlock(name)
		assert.Equal(t, name, legacyName(id, meta))
	}
	assert.Equal(t, "", legacyName(0, 0))
}

func TestLegacyFileRoundTrip(t *testing.T) {
	s := &Schematic{
		Width: 2, Height: 2, Length: 1,
		Palette: []string{"minecraft:air", "minecraft:red_wool", "minecraft:gray_concrete"},
		Blocks:  map[int]int{},
	}
	s.Blocks[s.LinearIndex(0, 0, 0)] = 1
	s.Blocks[s.LinearIndex(1, 0, 0)] = 2
	s.Blocks[s.LinearIndex(1, 1, 0)] = 1

	var buf bytes.Buffer
	require.NoError(t, WriteLegacy(&buf, s))

	got, err := ReadLegacy(&buf)
	require.NoError(t, err)
	assert.Equal(t, s.Width, got.Width)
	assert.Equal(t, s.Height, got.Height)
	assert.Equal(t, s.Length, got.Length)
	assert.Equal(t, 3, got.TotalBlocks())
	assert.Equal(t, "minecraft:red_wool", got.BlockAt(0, 0, 0))
	assert.Equal(t, "minecraft:gray_concrete", got.BlockAt(1, 0, 0))
	assert.Equal(t, "minecraft:red_wool", got.BlockAt(1, 1, 0))
	assert.Equal(t, "", got.BlockAt(0, 1, 0))
}

func TestWriteLegacyEmpty(t *testing.T) {
	s := &Schematic{Width: 1, Height: 1, Length: 1, Palette: []string{"minecraft:air"}, Blocks: map[int]int{}}
	err := WriteLegacy(&bytes.Buffer{}, s)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEmptySchematic), "got %v", err)
}
