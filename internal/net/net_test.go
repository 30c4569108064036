package net

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	boardimage "InpaintBoard/internal/image"
	"InpaintBoard/internal/state"

	"github.com/stretchr/testify/require"
)

func testPNG(t *testing.T, w, h int, fill func(x, y int) color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, fill(x, y))
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func testMaskURL(t *testing.T, w, h int, strokes ...state.Stroke) string {
	t.Helper()
	mask, err := boardimage.NewRasterizer().Rasterize(strokes, w, h)
	require.NoError(t, err)
	url, err := boardimage.EncodeMaskDataURL(mask)
	require.NoError(t, err)
	return url
}
