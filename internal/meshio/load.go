// Package meshio loads triangle meshes from the container formats commonly
// produced by 3D scanners: OBJ (with MTL materials and textures), PLY (with
// per-vertex colors), STL, and GLB/glTF.
package meshio

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"scan2schem/internal/mesh"
)

// Load reads a mesh file, picking the parser from the file extension.
func Load(path string) (*mesh.Mesh, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".obj":
		return LoadOBJ(path)
	case ".ply":
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.Wrap(err, "load mesh")
		}
		defer f.Close()
		return ReadPLY(f)
	case ".stl":
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.Wrap(err, "load mesh")
		}
		defer f.Close()
		return ReadSTL(f)
	case ".glb", ".gltf":
		return LoadGLB(path)
	default:
		return nil, errors.Errorf("load mesh: unsupported format %q (want .obj, .ply, .stl, .glb, or .gltf)",
			filepath.Ext(path))
	}
}

func decodeImageFile(path string) (*mesh.Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := decodeImage(f)
	if err != nil {
		return nil, errors.Wrapf(err, "decode texture %s", filepath.Base(path))
	}
	return mesh.NewTexture(img), nil
}
