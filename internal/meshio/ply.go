package meshio

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"scan2schem/internal/mesh"
)

// ReadPLY parses an ascii or binary_little_endian PLY file. Per-vertex
// red/green/blue colors and s/t (or u/v) texture coordinates are kept when
// present.
func ReadPLY(r io.Reader) (*mesh.Mesh, error) {
	br := bufio.NewReader(r)
	header, err := readPLYHeader(br)
	if err != nil {
		return nil, err
	}

	read := newPLYValueReader(br, header.ascii)
	m := &mesh.Mesh{}
	var haveColor, haveUV bool

	for _, el := range header.elements {
		switch el.name {
		case "vertex":
			xi, yi, zi := el.propIndex("x"), el.propIndex("y"), el.propIndex("z")
			if xi < 0 || yi < 0 || zi < 0 {
				return nil, errors.New("read ply: vertex element lacks x/y/z properties")
			}
			ri, gi, bi := el.propIndex("red"), el.propIndex("green"), el.propIndex("blue")
			ui := el.firstPropIndex("s", "u", "texture_u")
			vi := el.firstPropIndex("t", "v", "texture_v")
			color := ri >= 0 && gi >= 0 && bi >= 0
			uv := ui >= 0 && vi >= 0
			haveColor = haveColor || color
			haveUV = haveUV || uv
			vals := make([]float64, len(el.props))
			for n := 0; n < el.count; n++ {
				for pi, p := range el.props {
					if p.list {
						if err := skipPLYList(read, p); err != nil {
							return nil, err
						}
						continue
					}
					v, err := read(p.typ)
					if err != nil {
						return nil, errors.Wrap(err, "read ply vertex")
					}
					vals[pi] = v
				}
				m.Positions = append(m.Positions, [3]float64{vals[xi], vals[yi], vals[zi]})
				if color {
					m.Colors = append(m.Colors, mesh.RGB{uint8(vals[ri]), uint8(vals[gi]), uint8(vals[bi])})
				}
				if uv {
					m.UVs = append(m.UVs, [2]float64{vals[ui], vals[vi]})
				}
			}
		case "face":
			li := -1
			for pi, p := range el.props {
				if p.list && (p.name == "vertex_indices" || p.name == "vertex_index") {
					li = pi
				}
			}
			if li < 0 {
				return nil, errors.New("read ply: face element lacks a vertex index list")
			}
			for n := 0; n < el.count; n++ {
				for pi, p := range el.props {
					if pi != li {
						if p.list {
							if err := skipPLYList(read, p); err != nil {
								return nil, err
							}
						} else if _, err := read(p.typ); err != nil {
							return nil, errors.Wrap(err, "read ply face")
						}
						continue
					}
					count, err := read(p.countType)
					if err != nil {
						return nil, errors.Wrap(err, "read ply face")
					}
					idx := make([]int, int(count))
					for i := range idx {
						v, err := read(p.typ)
						if err != nil {
							return nil, errors.Wrap(err, "read ply face")
						}
						idx[i] = int(v)
					}
					for i := 1; i+1 < len(idx); i++ {
						m.Triangles = append(m.Triangles, [3]int{idx[0], idx[i], idx[i+1]})
					}
				}
			}
		default:
			// Skip unknown elements property by property.
			for n := 0; n < el.count; n++ {
				for _, p := range el.props {
					if p.list {
						if err := skipPLYList(read, p); err != nil {
							return nil, err
						}
					} else if _, err := read(p.typ); err != nil {
						return nil, errors.Wrap(err, "read ply")
					}
				}
			}
		}
	}

	if haveUV {
		m.TriUVs = make([][3]int, len(m.Triangles))
		for i, t := range m.Triangles {
			m.TriUVs[i] = [3]int{t[0], t[1], t[2]}
		}
	}
	return m, nil
}

type plyProp struct {
	name      string
	typ       string
	list      bool
	countType string
}

type plyElement struct {
	name  string
	count int
	props []plyProp
}

func (e *plyElement) propIndex(name string) int {
	for i, p := range e.props {
		if p.name == name && !p.list {
			return i
		}
	}
	return -1
}

func (e *plyElement) firstPropIndex(names ...string) int {
	for _, n := range names {
		if i := e.propIndex(n); i >= 0 {
			return i
		}
	}
	return -1
}

type plyHeader struct {
	ascii    bool
	elements []*plyElement
}

func readPLYHeader(br *bufio.Reader) (*plyHeader, error) {
	magic, err := br.ReadString('\n')
	if err != nil || strings.TrimSpace(magic) != "ply" {
		return nil, errors.New("read ply: missing ply magic")
	}
	h := &plyHeader{}
	formatSeen := false
	for {
		line, err := br.ReadString('\n')
		if err != nil {
			return nil, errors.Wrap(err, "read ply header")
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "comment", "obj_info":
		case "format":
			if len(fields) < 2 {
				return nil, errors.New("read ply: malformed format line")
			}
			switch fields[1] {
			case "ascii":
				h.ascii = true
			case "binary_little_endian":
				h.ascii = false
			default:
				return nil, errors.Errorf("read ply: unsupported format %q", fields[1])
			}
			formatSeen = true
		case "element":
			if len(fields) < 3 {
				return nil, errors.New("read ply: malformed element line")
			}
			count, err := strconv.Atoi(fields[2])
			if err != nil || count < 0 {
				return nil, errors.Errorf("read ply: bad element count %q", fields[2])
			}
			h.elements = append(h.elements, &plyElement{name: fields[1], count: count})
		case "property":
			if len(h.elements) == 0 {
				return nil, errors.New("read ply: property before element")
			}
			el := h.elements[len(h.elements)-1]
			if len(fields) >= 5 && fields[1] == "list" {
				el.props = append(el.props, plyProp{
					name: fields[4], typ: fields[3], list: true, countType: fields[2],
				})
			} else if len(fields) >= 3 {
				el.props = append(el.props, plyProp{name: fields[2], typ: fields[1]})
			} else {
				return nil, errors.New("read ply: malformed property line")
			}
		case "end_header":
			if !formatSeen {
				return nil, errors.New("read ply: missing format line")
			}
			return h, nil
		}
	}
}

// newPLYValueReader returns a function reading one scalar of the named PLY
// type, either from whitespace-separated ascii tokens or little-endian
// binary data.
func newPLYValueReader(br *bufio.Reader, ascii bool) func(typ string) (float64, error) {
	if ascii {
		sc := bufio.NewScanner(br)
		sc.Split(bufio.ScanWords)
		return func(string) (float64, error) {
			if !sc.Scan() {
				if err := sc.Err(); err != nil {
					return 0, err
				}
				return 0, io.ErrUnexpectedEOF
			}
			return strconv.ParseFloat(sc.Text(), 64)
		}
	}
	var buf [8]byte
	return func(typ string) (float64, error) {
		n := plyTypeSize(typ)
		if n == 0 {
			return 0, errors.Errorf("unknown ply type %q", typ)
		}
		if _, err := io.ReadFull(br, buf[:n]); err != nil {
			return 0, err
		}
		switch typ {
		case "char", "int8":
			return float64(int8(buf[0])), nil
		case "uchar", "uint8":
			return float64(buf[0]), nil
		case "short", "int16":
			return float64(int16(binary.LittleEndian.Uint16(buf[:2]))), nil
		case "ushort", "uint16":
			return float64(binary.LittleEndian.Uint16(buf[:2])), nil
		case "int", "int32":
			return float64(int32(binary.LittleEndian.Uint32(buf[:4]))), nil
		case "uint", "uint32":
			return float64(binary.LittleEndian.Uint32(buf[:4])), nil
		case "float", "float32":
			return float64(math.Float32frombits(binary.LittleEndian.Uint32(buf[:4]))), nil
		case "double", "float64":
			return math.Float64frombits(binary.LittleEndian.Uint64(buf[:8])), nil
		}
		return 0, errors.Errorf("unknown ply type %q", typ)
	}
}

func plyTypeSize(typ string) int {
	switch typ {
	case "char", "int8", "uchar", "uint8":
		return 1
	case "short", "int16", "ushort", "uint16":
		return 2
	case "int", "int32", "uint", "uint32", "float", "float32":
		return 4
	case "double", "float64":
		return 8
	}
	return 0
}

func skipPLYList(read func(string) (float64, error), p plyProp) error {
	count, err := read(p.countType)
	if err != nil {
		return errors.Wrap(err, "read ply list")
	}
	for i := 0; i < int(count); i++ {
		if _, err := read(p.typ); err != nil {
			return errors.Wrap(err, "read ply list")
		}
	}
	return nil
}
