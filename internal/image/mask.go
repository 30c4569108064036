package image

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strings"

	"InpaintBoard/internal/state"

	"github.com/gogpu/gg"
)

// ErrInvalidSurface is returned when rasterizing onto a surface without a
// usable size, i.e. before an image has been loaded.
var ErrInvalidSurface = errors.New("surface has no width or height")

const defaultThreshold = 128

// Rasterizer renders stroke history into a monochrome mask.
type Rasterizer struct {
	// Threshold is the minimum coverage alpha for a pixel to be painted.
	Threshold uint8
}

func NewRasterizer() *Rasterizer {
	return &Rasterizer{Threshold: defaultThreshold}
}

// Rasterize paints every drawable stroke into a width x height mask. Each
// stroke is stroked on its own and OR-ed into the result, so the mask is the
// union of the individual strokes and does not depend on their order.
func (r *Rasterizer) Rasterize(strokes []state.Stroke, width, height int) (*image.Alpha, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSurface, width, height)
	}

	threshold := r.Threshold
	if threshold == 0 {
		threshold = defaultThreshold
	}

	mask := image.NewAlpha(image.Rect(0, 0, width, height))

	var dc *gg.Context
	defer func() {
		if dc != nil {
			_ = dc.Close()
		}
	}()

	for _, s := range strokes {
		area := s.Bounds().Intersect(mask.Rect)
		if area.Empty() {
			continue
		}

		if dc == nil {
			dc = gg.NewContext(width, height)
		} else {
			dc.Clear()
		}
		dc.SetColor(color.White)

		if err := traceStroke(dc, s); err != nil {
			return nil, fmt.Errorf("rasterize stroke %s: %w", s.ID, err)
		}

		coverage := asRGBA(dc.Image())
		for y := area.Min.Y; y < area.Max.Y; y++ {
			for x := area.Min.X; x < area.Max.X; x++ {
				if coverage.Pix[coverage.PixOffset(x, y)+3] >= threshold {
					mask.Pix[mask.PixOffset(x, y)] = 0xff
				}
			}
		}
	}

	return mask, nil
}

// EncodeMaskPNG encodes the mask as a PNG, white where painted and
// transparent elsewhere.
func EncodeMaskPNG(mask *image.Alpha) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, mask); err != nil {
		return nil, fmt.Errorf("encode mask: %w", err)
	}
	return buf.Bytes(), nil
}

// EncodeMaskDataURL returns the mask as a base64 PNG data URL.
func EncodeMaskDataURL(mask *image.Alpha) (string, error) {
	data, err := EncodeMaskPNG(mask)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(data), nil
}

func asRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}

// DecodeMaskDataURL decodes a base64 PNG data URL produced by
// EncodeMaskDataURL (or any data URL holding a decodable image).
func DecodeMaskDataURL(dataURL string) (image.Image, error) {
	const marker = ";base64,"
	if !strings.HasPrefix(dataURL, "data:") {
		return nil, fmt.Errorf("decode mask: not a data URL")
	}
	idx := strings.Index(dataURL, marker)
	if idx < 0 {
		return nil, fmt.Errorf("decode mask: data URL is not base64")
	}

	raw, err := base64.StdEncoding.DecodeString(dataURL[idx+len(marker):])
	if err != nil {
		return nil, fmt.Errorf("decode mask: %w", err)
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode mask: %w", err)
	}
	return img, nil
}
