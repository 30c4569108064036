package export

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 64, 48))
	for y := 0; y < 48; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 4), G: uint8(y * 5), B: 90, A: 255})
		}
	}
	return img
}

func TestFormatFor(t *testing.T) {
	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{path: "out.png", want: FormatPNG},
		{path: "out.JPG", want: FormatJPEG},
		{path: "dir/out.jpeg", want: FormatJPEG},
		{path: "out.pdf", want: FormatPDF},
		{path: "out.gif", wantErr: true},
		{path: "out", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := FormatFor(tt.path)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSaveFile(t *testing.T) {
	dir := t.TempDir()
	img := testImage()

	t.Run("png is lossless", func(t *testing.T) {
		path := filepath.Join(dir, "out.png")
		require.NoError(t, SaveFile(path, img))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		decoded, err := png.Decode(bytes.NewReader(data))
		require.NoError(t, err)
		assert.Equal(t, img.Bounds(), decoded.Bounds())
		assert.Equal(t, img.At(10, 20), color.RGBAModel.Convert(decoded.At(10, 20)))
	})

	t.Run("jpeg", func(t *testing.T) {
		path := filepath.Join(dir, "out.jpg")
		require.NoError(t, SaveFile(path, img))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		cfg, err := jpeg.DecodeConfig(bytes.NewReader(data))
		require.NoError(t, err)
		assert.Equal(t, 64, cfg.Width)
		assert.Equal(t, 48, cfg.Height)
	})

	t.Run("pdf", func(t *testing.T) {
		path := filepath.Join(dir, "out.pdf")
		require.NoError(t, SaveFile(path, img))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
	})

	t.Run("unsupported", func(t *testing.T) {
		err := SaveFile(filepath.Join(dir, "out.txt"), img)
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
		assert.NoFileExists(t, filepath.Join(dir, "out.txt"))
	})
}
