package image

import (
	"InpaintBoard/internal/state"

	"github.com/gogpu/gg"
)

// traceStroke paints s onto dc with the current colour: a round-capped,
// round-joined polyline of the stroke's width, or a disc when the stroke has
// no length.
func traceStroke(dc *gg.Context, s state.Stroke) error {
	if !s.Drawable() {
		return nil
	}

	first := s.Points[0]
	if zeroLength(s.Points) {
		dc.DrawCircle(first.X, first.Y, s.BrushSize/2)
		return dc.Fill()
	}

	dc.SetLineWidth(s.BrushSize)
	dc.SetLineCap(gg.LineCapRound)
	dc.SetLineJoin(gg.LineJoinRound)
	dc.MoveTo(first.X, first.Y)
	for _, p := range s.Points[1:] {
		dc.LineTo(p.X, p.Y)
	}
	return dc.Stroke()
}

func zeroLength(points []state.Point) bool {
	for _, p := range points[1:] {
		if p != points[0] {
			return false
		}
	}
	return true
}
