package ui

import (
	"errors"
	"fmt"

	"InpaintBoard/internal/editor"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
)

// Board is the editor view: the drawing surface plus a status line.
type Board struct {
	window   fyne.Window
	surface  *BoardWidget
	status   *widget.Label
	progress *widget.ProgressBarInfinite
}

func newBoard(window fyne.Window, surface *BoardWidget) *Board {
	b := &Board{
		window:   window,
		surface:  surface,
		status:   widget.NewLabel("Ready"),
		progress: widget.NewProgressBarInfinite(),
	}
	b.progress.Hide()
	b.progress.Stop()

	surface.OnBusyChange = func(busy bool) {
		if busy {
			b.status.SetText("Inpainting...")
			b.progress.Show()
			b.progress.Start()
			return
		}
		b.progress.Stop()
		b.progress.Hide()
	}
	return b
}

func (b *Board) statusBar() fyne.CanvasObject {
	return container.NewBorder(nil, nil, nil, b.progress, b.status)
}

// SetStatus updates the status line from any goroutine.
func (b *Board) SetStatus(text string) {
	fyne.Do(func() { b.status.SetText(text) })
}

// Notify implements editor.Notifier by showing the failure to the user.
func (b *Board) Notify(err error) {
	msg := describeError(err)
	fyne.Do(func() {
		b.status.SetText(msg)
		dialog.ShowError(errors.New(msg), b.window)
	})
}

// describeError turns a controller failure into a sentence for the user.
func describeError(err error) string {
	switch {
	case errors.Is(err, editor.ErrAuth):
		return "The inpainting service rejected the credentials."
	case errors.Is(err, editor.ErrEmptyResult):
		return "The inpainting service returned no image."
	case errors.Is(err, editor.ErrDecode):
		return "The inpainting result could not be read."
	case errors.Is(err, editor.ErrInvalidSurface):
		return "Load an image before drawing."
	case errors.Is(err, editor.ErrImageLoad):
		return fmt.Sprintf("Could not open the image: %v", err)
	case errors.Is(err, editor.ErrBusy):
		return "Wait for the current request to finish."
	case errors.Is(err, editor.ErrTransport):
		return fmt.Sprintf("Inpainting failed: %v", err)
	default:
		return err.Error()
	}
}
