package editor

import (
	"context"
	"image"
	"time"

	boardimage "InpaintBoard/internal/image"
)

// Loader decodes encoded image bytes.
type Loader interface {
	Load(data []byte) (*boardimage.Layer, error)
}

// TokenSource provides the authorization token sent with each request.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Inpainter submits an image and a mask to the inpainting service and
// returns the encoded result image.
type Inpainter interface {
	Inpaint(ctx context.Context, image []byte, maskDataURL, token string) ([]byte, error)
}

// Recorder receives fire-and-forget analytics events. Implementations must
// not block.
type Recorder interface {
	ImageLoaded(width, height int)
	InpaintStart()
	InpaintProcessed(d time.Duration, width, height int)
	InpaintFailed(err error)
}

// Notifier shows an error to the user.
type Notifier interface {
	Notify(err error)
}

// Presenter receives every newly rendered frame of the visible surface.
type Presenter interface {
	Present(frame *image.RGBA)
}

type NotifierFunc func(err error)

func (f NotifierFunc) Notify(err error) { f(err) }

type PresenterFunc func(frame *image.RGBA)

func (f PresenterFunc) Present(frame *image.RGBA) { f(frame) }

// NoToken is a TokenSource for services that need no authorization.
type NoToken struct{}

func (NoToken) Token(context.Context) (string, error) { return "", nil }

type nopRecorder struct{}

func (nopRecorder) ImageLoaded(int, int)                     {}
func (nopRecorder) InpaintStart()                            {}
func (nopRecorder) InpaintProcessed(time.Duration, int, int) {}
func (nopRecorder) InpaintFailed(error)                      {}
