// Package image provides image loading, mask rasterization, and compositing
// of the editing surface.
package image

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var ErrEmptyImage = errors.New("image has no data")

// Layer is a decoded image together with the bytes it was decoded from.
// The bytes are what gets sent to the inpainting service.
type Layer struct {
	Data   []byte
	Image  image.Image
	Format string // decoder name, e.g. "png"
}

// Decode decodes data with any registered decoder.
func Decode(data []byte) (*Layer, error) {
	if len(data) == 0 {
		return nil, ErrEmptyImage
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("failed to decode image: %w", ErrEmptyImage)
	}

	return &Layer{
		Data:   data,
		Image:  img,
		Format: format,
	}, nil
}

// Width returns the natural image width in pixels.
func (l *Layer) Width() int {
	if l == nil || l.Image == nil {
		return 0
	}
	return l.Image.Bounds().Dx()
}

// Height returns the natural image height in pixels.
func (l *Layer) Height() int {
	if l == nil || l.Image == nil {
		return 0
	}
	return l.Image.Bounds().Dy()
}

// Decoder loads layers from encoded bytes.
type Decoder struct{}

func (Decoder) Load(data []byte) (*Layer, error) {
	return Decode(data)
}

// SupportedFormats returns the file extensions the decoder understands.
func SupportedFormats() []string {
	return []string{".png", ".jpg", ".jpeg", ".gif", ".webp", ".bmp", ".tif", ".tiff"}
}
