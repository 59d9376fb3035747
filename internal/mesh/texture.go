package mesh

import (
	"image"
	"image/draw"
)

// Texture is a decoded 2D image sampled by UV coordinates.
type Texture struct {
	img *image.NRGBA
}

// NewTexture converts an arbitrary decoded image into a Texture.
func NewTexture(img image.Image) *Texture {
	if n, ok := img.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) {
		return &Texture{img: n}
	}
	n := image.NewNRGBA(image.Rect(0, 0, img.Bounds().Dx(), img.Bounds().Dy()))
	draw.Draw(n, n.Rect, img, img.Bounds().Min, draw.Src)
	return &Texture{img: n}
}

// Size returns the texture dimensions in pixels.
func (t *Texture) Size() (w, h int) {
	return t.img.Rect.Dx(), t.img.Rect.Dy()
}

// At samples the texture at UV coordinates using nearest-pixel lookup.
// Coordinates are clamped to [0,1] and v is flipped, since image rows run
// top-down while UV space runs bottom-up.
func (t *Texture) At(u, v float64) RGB {
	w, h := t.Size()
	x := int(clamp01(u) * float64(w-1))
	y := int((1 - clamp01(v)) * float64(h-1))
	c := t.img.NRGBAAt(x, y)
	return RGB{c.R, c.G, c.B}
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
