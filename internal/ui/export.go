package ui

import (
	"fmt"
	"io"
	"strings"

	"InpaintBoard/internal/export"
	boardimage "InpaintBoard/internal/image"
	"InpaintBoard/internal/state"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
)

func (a *App) showOpen() {
	d := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			a.board.Notify(err)
			return
		}
		if reader == nil {
			return
		}
		a.openFrom(reader)
	}, a.window)
	d.SetFilter(storage.NewExtensionFileFilter(boardimage.SupportedFormats()))
	d.Show()
}

func (a *App) openFrom(reader fyne.URIReadCloser) {
	defer func() { _ = reader.Close() }()

	data, err := io.ReadAll(reader)
	if err != nil {
		a.board.Notify(fmt.Errorf("read %s: %w", reader.URI().Name(), err))
		return
	}
	a.load(reader.URI().Name(), data)
}

func (a *App) showExport() {
	frame, err := a.ctrl.Snapshot()
	if err != nil {
		a.board.Notify(err)
		return
	}

	d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			a.board.Notify(err)
			return
		}
		if writer == nil {
			return
		}
		defer func() { _ = writer.Close() }()

		if strings.EqualFold(writer.URI().Extension(), ".json") {
			a.exportStrokes(writer)
			return
		}

		format, err := export.FormatFor(writer.URI().Name())
		if err != nil {
			a.board.Notify(err)
			return
		}
		if err := export.Write(writer, format, frame); err != nil {
			a.board.Notify(fmt.Errorf("export %s: %w", writer.URI().Name(), err))
			return
		}

		a.log.Info().Str("file", writer.URI().String()).Msg("exported image")
		a.board.SetStatus("Exported " + writer.URI().Name())
	}, a.window)
	d.SetFileName("inpainted.png")
	d.SetFilter(storage.NewExtensionFileFilter([]string{".png", ".jpg", ".jpeg", ".pdf", ".json"}))
	d.Show()
}

// exportStrokes saves the stroke history so it can be replayed with the
// apply command.
func (a *App) exportStrokes(writer fyne.URIWriteCloser) {
	strokes := a.ctrl.Strokes()
	if err := state.WriteStrokes(writer, strokes); err != nil {
		a.board.Notify(fmt.Errorf("export %s: %w", writer.URI().Name(), err))
		return
	}

	a.log.Info().Str("file", writer.URI().String()).Int("strokes", len(strokes)).Msg("exported strokes")
	a.board.SetStatus("Saved strokes to " + writer.URI().Name())
}
