package editor

import "InpaintBoard/internal/state"

// Mapper converts pointer positions from page space into drawing-surface
// space. Offset is the surface's top-left corner in page space; Scale is the
// number of surface pixels per page unit (zero means 1).
type Mapper struct {
	Offset state.Point
	Scale  float64
}

func (m Mapper) Map(page state.Point) state.Point {
	scale := m.Scale
	if scale == 0 {
		scale = 1
	}
	return state.Point{
		X: (page.X - m.Offset.X) * scale,
		Y: (page.Y - m.Offset.Y) * scale,
	}
}
