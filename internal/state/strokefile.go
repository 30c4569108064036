package state

import (
	"encoding/json"
	"fmt"
	"io"
)

// ReadStrokes parses a JSON array of strokes. Strokes without points are
// dropped; a stroke with points but no brush size, or with a coordinate beyond
// MaxCoordinate, is rejected.
func ReadStrokes(r io.Reader) ([]Stroke, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read strokes: %w", err)
	}

	var loaded []Stroke
	if err := json.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("parse strokes: %w", err)
	}

	strokes := make([]Stroke, 0, len(loaded))
	for i, s := range loaded {
		if len(s.Points) == 0 {
			continue
		}
		if s.BrushSize <= 0 || s.BrushSize > MaxCoordinate {
			return nil, fmt.Errorf("stroke %d: %w", i, ErrInvalidBrush)
		}
		for j, p := range s.Points {
			if !validPoint(p) {
				return nil, fmt.Errorf("stroke %d point %d: %w", i, j, ErrInvalidPoint)
			}
		}
		strokes = append(strokes, s)
	}
	return strokes, nil
}

// WriteStrokes writes strokes as indented JSON, skipping pending ones.
func WriteStrokes(w io.Writer, strokes []Stroke) error {
	out := make([]Stroke, 0, len(strokes))
	for _, s := range strokes {
		if s.Drawable() {
			out = append(out, s)
		}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("encode strokes: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write strokes: %w", err)
	}
	return nil
}
