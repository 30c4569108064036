package state

import (
	"errors"
	"sync"
)

var (
	ErrStrokeInProgress = errors.New("active stroke already started")
	ErrNoActiveStroke   = errors.New("no stroke in progress")
	ErrInvalidBrush     = errors.New("brush size must be positive")
	ErrInvalidPoint     = errors.New("point coordinates out of range")
)

// History is the ordered stroke list of an editing session. The last element
// is always the active stroke; earlier elements are never changed again and
// the list only grows.
type History struct {
	strokes []*Stroke
	mu      sync.RWMutex
}

// NewHistory creates a history holding a single pending stroke.
func NewHistory() *History {
	return &History{
		strokes: []*Stroke{{ID: newStrokeID()}},
	}
}

func (h *History) active() *Stroke {
	return h.strokes[len(h.strokes)-1]
}

// BeginStroke fixes the brush size of the active stroke. The active stroke
// must still be pending.
func (h *History) BeginStroke(brushSize float64) error {
	if brushSize <= 0 {
		return ErrInvalidBrush
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	s := h.active()
	if !s.Pending() {
		return ErrStrokeInProgress
	}
	s.BrushSize = brushSize
	return nil
}

// AppendPoint adds p to the stroke in progress.
func (h *History) AppendPoint(p Point) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	s := h.active()
	if s.BrushSize == 0 {
		return ErrNoActiveStroke
	}
	s.Points = append(s.Points, p)
	return nil
}

// CommitAndAdvance finalizes the active stroke by appending a new pending
// stroke after it. Nothing is cleared, so masks built from the history cover
// every stroke drawn in the session.
func (h *History) CommitAndAdvance() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.strokes = append(h.strokes, &Stroke{ID: newStrokeID()})
}

// Len returns the number of strokes, including the active one.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.strokes)
}

// Active returns a copy of the active stroke.
func (h *History) Active() Stroke {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.active().Clone()
}

// Snapshot returns a deep copy of every stroke in history order.
func (h *History) Snapshot() []Stroke {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]Stroke, 0, len(h.strokes))
	for _, s := range h.strokes {
		out = append(out, s.Clone())
	}
	return out
}
