package editor

import (
	"errors"

	boardimage "InpaintBoard/internal/image"
)

// Failure taxonomy of the editing engine. Collaborator errors are wrapped
// with one of these so callers can classify them with errors.Is.
var (
	ErrImageLoad      = errors.New("image load failed")
	ErrAuth           = errors.New("authorization failed")
	ErrTransport      = errors.New("inpainting request failed")
	ErrEmptyResult    = errors.New("inpainting returned no image")
	ErrDecode         = errors.New("inpainting result could not be decoded")
	ErrInvalidSurface = boardimage.ErrInvalidSurface
	ErrBusy           = errors.New("editor is busy")
)
