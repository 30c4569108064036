package ui

import (
	"context"
	"image"
	"image/color"

	"InpaintBoard/internal/editor"
	"InpaintBoard/internal/state"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
	"github.com/rs/zerolog"
)

// BoardWidget shows the editing surface and feeds pointer input to the
// controller. The image is letterboxed into the widget; pointer positions are
// mapped back to surface pixels using the same fit.
type BoardWidget struct {
	widget.BaseWidget

	ctx    context.Context
	ctrl   *editor.Controller
	toggle *editor.Toggle
	log    zerolog.Logger

	working     *canvas.Image
	original    *canvas.Image
	placeholder *widget.Label

	OnBusyChange func(busy bool)
}

var _ fyne.Widget = (*BoardWidget)(nil)
var _ fyne.Draggable = (*BoardWidget)(nil)
var _ desktop.Mouseable = (*BoardWidget)(nil)

func NewBoardWidget(ctx context.Context, ctrl *editor.Controller, toggle *editor.Toggle, log zerolog.Logger) *BoardWidget {
	b := &BoardWidget{
		ctx:         ctx,
		ctrl:        ctrl,
		toggle:      toggle,
		log:         log,
		working:     canvas.NewImageFromImage(nil),
		original:    canvas.NewImageFromImage(nil),
		placeholder: widget.NewLabel("Open an image to start"),
	}
	for _, img := range []*canvas.Image{b.working, b.original} {
		img.FillMode = canvas.ImageFillContain
		img.ScaleMode = canvas.ImageScaleSmooth
	}
	b.original.Hide()
	b.placeholder.Alignment = fyne.TextAlignCenter

	toggle.OnChange = func(active bool) {
		fyne.Do(func() { b.showOriginal(active) })
	}

	b.ExtendBaseWidget(b)
	return b
}

// Present implements editor.Presenter. It may be called from any goroutine.
func (b *BoardWidget) Present(frame *image.RGBA) {
	fyne.Do(func() {
		b.placeholder.Hide()
		b.working.Image = frame
		b.working.Refresh()
	})
}

// SetOriginal sets the image shown while comparing.
func (b *BoardWidget) SetOriginal(img image.Image) {
	fyne.Do(func() {
		b.original.Image = img
		b.original.Refresh()
	})
}

func (b *BoardWidget) showOriginal(show bool) {
	if show && b.original.Image != nil {
		b.original.Show()
		b.working.Hide()
	} else {
		b.original.Hide()
		b.working.Show()
	}
}

func (b *BoardWidget) MouseDown(ev *desktop.MouseEvent) {
	if ev.Button != desktop.MouseButtonPrimary {
		return
	}

	w, h := b.ctrl.Size()
	origin := ev.AbsolutePosition.Subtract(ev.Position)
	b.ctrl.SetMapper(fitMapper(origin, b.Size(), w, h))

	b.ctrl.Press(toPoint(ev.AbsolutePosition))
}

func (b *BoardWidget) Dragged(ev *fyne.DragEvent) {
	b.ctrl.Move(toPoint(ev.AbsolutePosition))
}

func (b *BoardWidget) MouseUp(ev *desktop.MouseEvent) {
	if ev.Button == desktop.MouseButtonPrimary {
		b.release()
	}
}

func (b *BoardWidget) DragEnd() {
	b.release()
}

// release locks the controller on the UI goroutine and submits the stroke off
// it. MouseUp and DragEnd both arrive at the end of a drag; only the first one
// starts a request.
func (b *BoardWidget) release() {
	run, ok := b.ctrl.BeginRelease(b.ctx)
	if !ok {
		return
	}

	b.setBusy(true)
	go func() {
		defer b.setBusy(false)
		if err := run(); err != nil {
			b.log.Debug().Err(err).Msg("release finished with error")
		}
	}()
}

func (b *BoardWidget) setBusy(busy bool) {
	if b.OnBusyChange == nil {
		return
	}
	fyne.Do(func() { b.OnBusyChange(busy) })
}

func (b *BoardWidget) MouseIn(*desktop.MouseEvent)    {}
func (b *BoardWidget) MouseOut()                      {}
func (b *BoardWidget) MouseMoved(*desktop.MouseEvent) {}

func (b *BoardWidget) CreateRenderer() fyne.WidgetRenderer {
	background := canvas.NewRectangle(color.NRGBA{R: 32, G: 33, B: 36, A: 255})
	return widget.NewSimpleRenderer(container.NewStack(background, b.working, b.original, b.placeholder))
}

func (b *BoardWidget) MinSize() fyne.Size {
	return fyne.NewSize(300, 300)
}

func toPoint(p fyne.Position) state.Point {
	return state.Point{X: float64(p.X), Y: float64(p.Y)}
}

// fitMapper returns the mapping from absolute window positions to surface
// pixels for a width x height surface drawn contained and centred in a
// widget at origin with the given size.
func fitMapper(origin fyne.Position, size fyne.Size, width, height int) editor.Mapper {
	m := editor.Mapper{Offset: toPoint(origin)}
	if width <= 0 || height <= 0 || size.Width <= 0 || size.Height <= 0 {
		return m
	}

	sx := float64(size.Width) / float64(width)
	sy := float64(size.Height) / float64(height)
	scale := min(sx, sy)

	shownW := float64(width) * scale
	shownH := float64(height) * scale
	m.Offset.X += (float64(size.Width) - shownW) / 2
	m.Offset.Y += (float64(size.Height) - shownH) / 2
	m.Scale = 1 / scale
	return m
}
