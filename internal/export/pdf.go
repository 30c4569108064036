package export

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"

	"github.com/jung-kurt/gofpdf"
)

// WritePDF writes img as a single-page PDF whose page is exactly the image
// size, one point per pixel.
func WritePDF(w io.Writer, img image.Image, title string) error {
	b := img.Bounds()
	width, height := float64(b.Dx()), float64(b.Dy())

	var encoded bytes.Buffer
	if err := png.Encode(&encoded, img); err != nil {
		return fmt.Errorf("encode page image: %w", err)
	}

	orientation := "P"
	if width > height {
		orientation = "L"
	}

	p := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: orientation,
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: width, Ht: height},
	})
	p.SetMargins(0, 0, 0)
	p.SetAutoPageBreak(false, 0)
	p.SetCreator("InpaintBoard", true)
	if title != "" {
		p.SetTitle(title, true)
	}
	p.AddPage()

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	p.RegisterImageOptionsReader("surface", opts, &encoded)
	p.ImageOptions("surface", 0, 0, width, height, false, opts, 0, "")

	if err := p.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}
