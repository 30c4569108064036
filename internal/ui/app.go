// Package ui is the desktop front end of the editor.
package ui

import (
	"context"
	"fmt"
	"image"

	"InpaintBoard/internal/editor"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"github.com/rs/zerolog"
)

const appID = "io.github.inpaintboard"

// Options configures the desktop editor.
type Options struct {
	// Editor configures the controller. Presenter and Notifier are
	// provided by the UI and are overwritten.
	Editor editor.Options
	Brush  BrushRange

	// Image, when set, is opened on start.
	ImageName string
	Image     []byte

	Logger zerolog.Logger
}

// App owns the window and wires the controller to the widgets.
type App struct {
	ctx    context.Context
	window fyne.Window
	ctrl   *editor.Controller
	toggle *editor.Toggle
	board  *Board
	log    zerolog.Logger
}

// RunApp opens the editor window and blocks until it is closed.
func RunApp(ctx context.Context, opts Options) {
	fyneApp := app.NewWithID(appID)
	window := fyneApp.NewWindow("InpaintBoard")
	window.Resize(fyne.NewSize(1024, 768))

	a := &App{
		ctx:    ctx,
		window: window,
		toggle: &editor.Toggle{},
		log:    opts.Logger,
	}

	var surface *BoardWidget
	eopts := opts.Editor
	eopts.Presenter = editor.PresenterFunc(func(frame *image.RGBA) { surface.Present(frame) })
	eopts.Notifier = editor.NotifierFunc(func(err error) { a.board.Notify(err) })
	a.ctrl = editor.New(eopts)

	surface = NewBoardWidget(ctx, a.ctrl, a.toggle, opts.Logger)
	a.board = newBoard(window, surface)

	toolbar := NewToolbar(a, opts.Brush)
	content := container.NewBorder(toolbar, a.board.statusBar(), nil, nil, surface)
	window.SetContent(content)

	if len(opts.Image) > 0 {
		a.load(opts.ImageName, opts.Image)
	}

	window.ShowAndRun()
}

// load decodes an image off the UI goroutine and starts a new session.
func (a *App) load(name string, data []byte) {
	a.board.SetStatus("Opening " + name + "...")
	go func() {
		if err := a.ctrl.Load(a.ctx, data); err != nil {
			a.log.Warn().Err(err).Str("file", name).Msg("open failed")
			a.board.Notify(err)
			return
		}

		original := a.ctrl.Original()
		a.board.surface.SetOriginal(original.Image)
		a.board.SetStatus(fmt.Sprintf("Opened %s (%dx%d)", name, original.Width(), original.Height()))
	}()
}
