package image

import (
	"fmt"
	"image"
	"image/color"
	"reflect"

	"InpaintBoard/internal/state"

	"github.com/gogpu/gg"
)

// DefaultOverlay is the translucent colour used for the stroke in progress.
var DefaultOverlay = color.NRGBA{R: 255, G: 59, B: 48, A: 128}

// Compositor renders the visible surface: the current base layer scaled to
// the surface, plus the active stroke as a translucent overlay. Committed
// strokes are not drawn; once a result is applied the base layer already
// shows their effect.
type Compositor struct {
	Overlay color.NRGBA

	dc      *gg.Context
	base    image.Image
	baseBuf *gg.ImageBuf
}

func NewCompositor(overlay color.NRGBA) *Compositor {
	if overlay.A == 0 {
		overlay = DefaultOverlay
	}
	return &Compositor{Overlay: overlay}
}

// Render clears the surface, draws base over the whole surface and then the
// active stroke. base may be nil, in which case only the stroke is drawn.
func (c *Compositor) Render(base image.Image, active state.Stroke, width, height int) (*image.RGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSurface, width, height)
	}

	if c.dc == nil || c.dc.Width() != width || c.dc.Height() != height {
		if c.dc != nil {
			_ = c.dc.Close()
		}
		c.dc = gg.NewContext(width, height)
	}
	dc := c.dc
	dc.Clear()

	if base != nil {
		if !sameImage(base, c.base) {
			c.base = base
			c.baseBuf = gg.ImageBufFromImage(base)
		}
		dc.DrawImageEx(c.baseBuf, gg.DrawImageOptions{
			DstWidth:  float64(width),
			DstHeight: float64(height),
			Opacity:   1.0,
		})
	}

	overlay := c.Overlay
	if overlay.A == 0 {
		overlay = DefaultOverlay
	}
	dc.SetColor(overlay)
	if err := traceStroke(dc, active); err != nil {
		return nil, fmt.Errorf("render active stroke: %w", err)
	}

	return asRGBA(dc.Image()), nil
}

// Close releases the drawing context.
func (c *Compositor) Close() error {
	if c.dc == nil {
		return nil
	}
	err := c.dc.Close()
	c.dc = nil
	return err
}

func sameImage(a, b image.Image) bool {
	if a == nil || b == nil {
		return false
	}
	if !reflect.TypeOf(a).Comparable() || !reflect.TypeOf(b).Comparable() {
		return false
	}
	return a == b
}
