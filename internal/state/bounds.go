package state

import (
	"image"
	"math"
)

// MaxCoordinate is the largest coordinate magnitude a stroke file may use.
const MaxCoordinate = 1 << 24

// boundsLimit keeps rectangle edges representable as int on every platform.
const boundsLimit = 1 << 30

// Bounds returns the pixel rectangle a stroke can touch when rendered: the
// bounding box of its points padded by half the brush size plus one pixel
// for anti-aliasing. Strokes that draw nothing return an empty rectangle.
func (s Stroke) Bounds() image.Rectangle {
	if !s.Drawable() {
		return image.Rectangle{}
	}

	minX, minY := s.Points[0].X, s.Points[0].Y
	maxX, maxY := minX, minY

	for _, p := range s.Points[1:] {
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}

	padding := s.BrushSize/2 + 1
	return image.Rect(
		edge(math.Floor(minX-padding)),
		edge(math.Floor(minY-padding)),
		edge(math.Ceil(maxX+padding)),
		edge(math.Ceil(maxY+padding)),
	)
}

func edge(v float64) int {
	switch {
	case math.IsNaN(v):
		return 0
	case v > boundsLimit:
		return boundsLimit
	case v < -boundsLimit:
		return -boundsLimit
	}
	return int(v)
}

func validPoint(p Point) bool {
	return math.Abs(p.X) <= MaxCoordinate && math.Abs(p.Y) <= MaxCoordinate
}

// UnionBounds returns the smallest rectangle covering every stroke.
func UnionBounds(strokes []Stroke) image.Rectangle {
	var r image.Rectangle
	for _, s := range strokes {
		r = r.Union(s.Bounds())
	}
	return r
}
