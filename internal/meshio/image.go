package meshio

import (
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
)

func decodeImage(r io.Reader) (image.Image, string, error) {
	return image.Decode(r)
}
