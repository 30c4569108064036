package state

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Stroke is one continuous press-to-release drawing action. BrushSize zero
// means the size has not been set yet.
type Stroke struct {
	ID        string  `json:"id,omitempty"`
	BrushSize float64 `json:"brush_size"`
	Points    []Point `json:"points"`
}

// Pending reports whether the stroke is still waiting for its first point.
func (s Stroke) Pending() bool {
	return s.BrushSize == 0 && len(s.Points) == 0
}

// Drawable reports whether the stroke contributes anything when rendered.
func (s Stroke) Drawable() bool {
	return s.BrushSize > 0 && len(s.Points) > 0
}

// Clone returns a deep copy so readers never share the points slice.
func (s Stroke) Clone() Stroke {
	c := s
	if s.Points != nil {
		c.Points = make([]Point, len(s.Points))
		copy(c.Points, s.Points)
	}
	return c
}
