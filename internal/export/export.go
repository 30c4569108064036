// Package export writes the edited image to disk.
package export

import (
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var ErrUnsupportedFormat = errors.New("unsupported export format")

type Format string

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
	FormatPDF  Format = "pdf"
)

const jpegQuality = 92

// FormatFor picks the export format from a file name's extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return FormatPNG, nil
	case ".jpg", ".jpeg":
		return FormatJPEG, nil
	case ".pdf":
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Write encodes img in the given format.
func Write(w io.Writer, f Format, img image.Image) error {
	switch f {
	case FormatPNG:
		return png.Encode(w, img)
	case FormatJPEG:
		return jpeg.Encode(w, img, &jpeg.Options{Quality: jpegQuality})
	case FormatPDF:
		return WritePDF(w, img, "")
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
	}
}

// SaveFile writes img to path in the format implied by its extension.
func SaveFile(path string, img image.Image) error {
	f, err := FormatFor(path)
	if err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	if f == FormatPDF {
		err = WritePDF(file, img, filepath.Base(path))
	} else {
		err = Write(file, f, img)
	}
	if err != nil {
		_ = file.Close()
		return fmt.Errorf("export %s: %w", path, err)
	}
	return file.Close()
}
