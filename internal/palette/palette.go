// Package palette maps sampled surface colors onto a fixed, ordered set of
// block identifiers by nearest-neighbor search in CIE-LAB space.
package palette

import (
	_ "embed"
	"encoding/json"
	"os"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"scan2schem/internal/mesh"
)

// ErrEmptyPalette indicates a palette with no entries.
var ErrEmptyPalette = errors.New("empty palette")

//go:embed schema.json
var schemaJSON string

//go:embed wool_concrete.json
var defaultJSON []byte

var paletteSchema = jsonschema.MustCompileString("palette.schema.json", schemaJSON)

// Entry pairs a block identifier with its reference color. The LAB
// equivalent is precomputed once at load time.
type Entry struct {
	Name  string
	Color mesh.RGB

	lab [3]float64
}

// Palette is an ordered, read-only collection of entries. Order matters:
// exactly-equidistant matches resolve to the lowest index.
type Palette struct {
	entries []Entry
}

// Parse validates palette JSON against the embedded schema and decodes it.
// The format is an ordered list of [name, [r, g, b]] pairs.
func Parse(data []byte) (*Palette, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "parse palette")
	}
	if err := paletteSchema.Validate(doc); err != nil {
		return nil, errors.Wrap(err, "parse palette")
	}

	var items [][2]json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, errors.Wrap(err, "parse palette")
	}
	p := &Palette{entries: make([]Entry, 0, len(items))}
	for _, it := range items {
		var e Entry
		if err := json.Unmarshal(it[0], &e.Name); err != nil {
			return nil, errors.Wrap(err, "parse palette")
		}
		if err := json.Unmarshal(it[1], &e.Color); err != nil {
			return nil, errors.Wrap(err, "parse palette")
		}
		e.lab = rgbToLab(e.Color)
		p.entries = append(p.entries, e)
	}
	return p, nil
}

// Load reads and parses a palette file.
func Load(path string) (*Palette, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "load palette")
	}
	return Parse(data)
}

// Default returns the embedded wool + concrete palette.
func Default() *Palette {
	p, err := Parse(defaultJSON)
	if err != nil {
		panic(errors.Wrap(err, "embedded palette"))
	}
	return p
}

// Len returns the number of entries.
func (p *Palette) Len() int {
	return len(p.entries)
}

// Entry returns the entry at the given index.
func (p *Palette) Entry(i int) Entry {
	return p.entries[i]
}

// Nearest returns the index of the entry whose reference color has the
// smallest LAB-space Euclidean distance to c. Ties break to the lowest
// index.
func (p *Palette) Nearest(c mesh.RGB) int {
	lab := rgbToLab(c)
	best, bestDist := 0, labDistSq(lab, p.entries[0].lab)
	for i := 1; i < len(p.entries); i++ {
		if d := labDistSq(lab, p.entries[i].lab); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

func rgbToLab(c mesh.RGB) [3]float64 {
	col := colorful.Color{
		R: float64(c[0]) / 255,
		G: float64(c[1]) / 255,
		B: float64(c[2]) / 255,
	}
	l, a, b := col.Lab()
	return [3]float64{l, a, b}
}

func labDistSq(a, b [3]float64) float64 {
	dl := a[0] - b[0]
	da := a[1] - b[1]
	db := a[2] - b[2]
	return dl*dl + da*da + db*db
}
