package meshio

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"scan2schem/internal/mesh"
)

// LoadGLB decodes a GLB or glTF file. All primitives of all meshes are
// merged into a single triangle soup; the first base-color texture
// encountered is used for UV sampling, and COLOR_0 vertex colors are kept.
// Node transforms are not applied: scanner exports bake their geometry, and
// the voxelization is invariant under the uniform scale/translation such
// files use anyway.
func LoadGLB(path string) (*mesh.Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "load glb")
	}

	m := &mesh.Mesh{}
	var anyColor, anyUV bool
	for _, gm := range doc.Meshes {
		for _, prim := range gm.Primitives {
			if err := appendPrimitive(doc, prim, m, &anyColor, &anyUV, filepath.Dir(path)); err != nil {
				return nil, errors.Wrap(err, "load glb")
			}
		}
	}
	if !anyColor {
		m.Colors = nil
	}
	if !anyUV || m.Texture == nil {
		m.UVs = nil
		m.TriUVs = nil
		m.Texture = nil
	}
	return m, nil
}

func appendPrimitive(doc *gltf.Document, prim *gltf.Primitive, m *mesh.Mesh, anyColor, anyUV *bool, dir string) error {
	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return nil
	}
	pos, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return errors.Wrap(err, "read positions")
	}

	base := len(m.Positions)
	for _, p := range pos {
		m.Positions = append(m.Positions, [3]float64{float64(p[0]), float64(p[1]), float64(p[2])})
	}

	if uvIdx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
		uvs, err := modeler.ReadTextureCoord(doc, doc.Accessors[uvIdx], nil)
		if err != nil {
			return errors.Wrap(err, "read texture coords")
		}
		if len(uvs) == len(pos) {
			for _, uv := range uvs {
				// glTF UVs have v running top-down; flip into the
				// bottom-up convention mesh.Texture samples with.
				m.UVs = append(m.UVs, [2]float64{float64(uv[0]), 1 - float64(uv[1])})
			}
			*anyUV = true
		}
	}
	for len(m.UVs) < len(m.Positions) {
		m.UVs = append(m.UVs, [2]float64{})
	}

	if colIdx, ok := prim.Attributes[gltf.COLOR_0]; ok {
		cols, err := modeler.ReadColor(doc, doc.Accessors[colIdx], nil)
		if err != nil {
			return errors.Wrap(err, "read vertex colors")
		}
		if len(cols) == len(pos) {
			for _, c := range cols {
				m.Colors = append(m.Colors, mesh.RGB{c[0], c[1], c[2]})
			}
			*anyColor = true
		}
	}
	for len(m.Colors) < len(m.Positions) {
		m.Colors = append(m.Colors, mesh.RGB{})
	}

	var indices []uint32
	if prim.Indices != nil {
		indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return errors.Wrap(err, "read indices")
		}
	} else {
		indices = make([]uint32, len(pos))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}
	for i := 0; i+2 < len(indices); i += 3 {
		tri := [3]int{base + int(indices[i]), base + int(indices[i+1]), base + int(indices[i+2])}
		m.Triangles = append(m.Triangles, tri)
		m.TriUVs = append(m.TriUVs, tri)
	}

	if m.Texture == nil && prim.Material != nil {
		tex, err := primitiveTexture(doc, *prim.Material, dir)
		if err != nil {
			return err
		}
		m.Texture = tex
	}
	return nil
}

// primitiveTexture resolves a material's base-color texture image, either
// from a GLB buffer view or from a file referenced by URI.
func primitiveTexture(doc *gltf.Document, matIdx uint32, dir string) (*mesh.Texture, error) {
	mat := doc.Materials[matIdx]
	if mat.PBRMetallicRoughness == nil || mat.PBRMetallicRoughness.BaseColorTexture == nil {
		return nil, nil
	}
	tex := doc.Textures[mat.PBRMetallicRoughness.BaseColorTexture.Index]
	if tex.Source == nil {
		return nil, nil
	}
	img := doc.Images[*tex.Source]
	switch {
	case img.BufferView != nil:
		data, err := modeler.ReadBufferView(doc, doc.BufferViews[*img.BufferView])
		if err != nil {
			return nil, errors.Wrap(err, "read texture buffer")
		}
		decoded, _, err := decodeImage(bytes.NewReader(data))
		if err != nil {
			return nil, errors.Wrap(err, "decode embedded texture")
		}
		return mesh.NewTexture(decoded), nil
	case img.URI != "" && !img.IsEmbeddedResource():
		f, err := os.Open(filepath.Join(dir, img.URI))
		if err != nil {
			return nil, errors.Wrap(err, "open texture")
		}
		defer f.Close()
		decoded, _, err := decodeImage(f)
		if err != nil {
			return nil, errors.Wrap(err, "decode texture")
		}
		return mesh.NewTexture(decoded), nil
	}
	return nil, nil
}
