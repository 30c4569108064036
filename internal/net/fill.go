package net

import (
	"image"
	"image/draw"

	xdraw "golang.org/x/image/draw"
)

const DefaultIterations = 200

// Fill replaces the pixels of img covered by mask with a smooth diffusion of
// their surroundings. Masked pixels are seeded with the mean colour of the
// unmasked pixels bordering the mask, then repeatedly replaced by the average
// of their four neighbours. A mask of a different size is scaled to img.
func Fill(img, mask image.Image, iterations int) *image.RGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	out := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(out, out.Rect, img, b.Min, draw.Src)

	covered := maskCoverage(mask, w, h)
	if iterations <= 0 {
		iterations = DefaultIterations
	}

	var (
		sum   [3]float64
		count float64
		holes []int
	)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			if covered[i] {
				holes = append(holes, i)
				continue
			}
			if borders(covered, w, h, x, y) {
				o := out.PixOffset(x, y)
				sum[0] += float64(out.Pix[o])
				sum[1] += float64(out.Pix[o+1])
				sum[2] += float64(out.Pix[o+2])
				count++
			}
		}
	}
	if len(holes) == 0 || len(holes) == w*h {
		return out
	}

	field := make([][3]float64, w*h)
	for i := range field {
		o := i * 4
		field[i] = [3]float64{float64(out.Pix[o]), float64(out.Pix[o+1]), float64(out.Pix[o+2])}
	}
	seed := [3]float64{sum[0] / count, sum[1] / count, sum[2] / count}
	for _, i := range holes {
		field[i] = seed
	}

	for range iterations {
		for _, i := range holes {
			x, y := i%w, i/w
			var acc [3]float64
			var n float64
			for _, d := range [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
				nx, ny := x+d[0], y+d[1]
				if nx < 0 || ny < 0 || nx >= w || ny >= h {
					continue
				}
				v := field[ny*w+nx]
				acc[0] += v[0]
				acc[1] += v[1]
				acc[2] += v[2]
				n++
			}
			field[i] = [3]float64{acc[0] / n, acc[1] / n, acc[2] / n}
		}
	}

	for _, i := range holes {
		o := i * 4
		out.Pix[o] = clamp(field[i][0])
		out.Pix[o+1] = clamp(field[i][1])
		out.Pix[o+2] = clamp(field[i][2])
		out.Pix[o+3] = 0xff
	}
	return out
}

// maskCoverage reports, per pixel of a w x h surface, whether the mask is
// painted there.
func maskCoverage(mask image.Image, w, h int) []bool {
	mb := mask.Bounds()
	scaled := image.NewAlpha(image.Rect(0, 0, w, h))
	if mb.Dx() == w && mb.Dy() == h {
		draw.Draw(scaled, scaled.Rect, mask, mb.Min, draw.Src)
	} else {
		xdraw.NearestNeighbor.Scale(scaled, scaled.Rect, mask, mb, xdraw.Src, nil)
	}

	covered := make([]bool, w*h)
	for i, a := range scaled.Pix {
		covered[i] = a >= 0x80
	}
	return covered
}

func borders(covered []bool, w, h, x, y int) bool {
	for _, d := range [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
		nx, ny := x+d[0], y+d[1]
		if nx >= 0 && ny >= 0 && nx < w && ny < h && covered[ny*w+nx] {
			return true
		}
	}
	return false
}

func clamp(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	default:
		return uint8(v + 0.5)
	}
}
