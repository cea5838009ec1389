package tilecache

import (
	"bytes"
	"fmt"
	"image"

	// The pipeline emits JPEG tiers; PNG shows up in test fixtures and the
	// odd screenshot that sneaks into a collection.
	_ "image/jpeg"
	_ "image/png"

	"github.com/nfnt/resize"
)

// Decode turns raw tier bytes into a decoded image handle.
func Decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// Downscale fits img into an edge x edge bounding box, preserving aspect
// ratio. Images already inside the box are returned unchanged.
func Downscale(img image.Image, edge int) image.Image {
	b := img.Bounds()
	if edge <= 0 || (b.Dx() <= edge && b.Dy() <= edge) {
		return img
	}
	return resize.Thumbnail(uint(edge), uint(edge), img, resize.Bilinear)
}
