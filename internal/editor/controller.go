// Package editor drives an inpainting session: it turns pointer input into
// strokes, renders the visible surface, and runs one inpainting request at a
// time.
package editor

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"sync"
	"time"

	boardimage "InpaintBoard/internal/image"
	"InpaintBoard/internal/state"

	"github.com/rs/zerolog"
)

// State is the request lifecycle state of a Controller.
type State int

const (
	StateIdle State = iota
	StateDrawing
	StateSubmitting
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDrawing:
		return "drawing"
	case StateSubmitting:
		return "submitting"
	default:
		return "unknown"
	}
}

// Options configures a Controller. Only Inpainter is required.
type Options struct {
	Loader    Loader
	Tokens    TokenSource
	Inpainter Inpainter
	Recorder  Recorder
	Notifier  Notifier
	Presenter Presenter

	BrushSize float64
	Overlay   color.NRGBA
	Logger    zerolog.Logger
}

// Controller owns the stroke history and the session lock. All exported
// methods are safe to call from multiple goroutines; Release blocks for the
// duration of the request and is usually run on its own goroutine.
type Controller struct {
	mu       sync.Mutex
	state    State
	locked   bool
	history  *state.History
	original *boardimage.Layer
	base     image.Image
	width    int
	height   int
	brush    float64
	mapper   Mapper

	loader    Loader
	tokens    TokenSource
	inpainter Inpainter
	recorder  Recorder
	notifier  Notifier
	presenter Presenter

	rasterizer *boardimage.Rasterizer
	compositor *boardimage.Compositor
	log        zerolog.Logger
	now        func() time.Time
}

const DefaultBrushSize = 40

func New(opts Options) *Controller {
	c := &Controller{
		history:    state.NewHistory(),
		brush:      opts.BrushSize,
		loader:     opts.Loader,
		tokens:     opts.Tokens,
		inpainter:  opts.Inpainter,
		recorder:   opts.Recorder,
		notifier:   opts.Notifier,
		presenter:  opts.Presenter,
		rasterizer: boardimage.NewRasterizer(),
		compositor: boardimage.NewCompositor(opts.Overlay),
		log:        opts.Logger,
		now:        time.Now,
	}

	if c.brush <= 0 {
		c.brush = DefaultBrushSize
	}
	if c.loader == nil {
		c.loader = boardimage.Decoder{}
	}
	if c.tokens == nil {
		c.tokens = NoToken{}
	}
	if c.recorder == nil {
		c.recorder = nopRecorder{}
	}
	if c.notifier == nil {
		c.notifier = NotifierFunc(func(error) {})
	}
	if c.presenter == nil {
		c.presenter = PresenterFunc(func(*image.RGBA) {})
	}

	return c
}

// Load decodes data and makes it both the original and the base layer of a
// fresh session. The surface takes the image's natural size.
func (c *Controller) Load(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	idle := c.state == StateIdle
	c.mu.Unlock()
	if !idle {
		return ErrBusy
	}

	layer, err := c.loader.Load(data)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrImageLoad, err)
	}

	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		return ErrBusy
	}
	c.original = layer
	c.base = layer.Image
	c.width = layer.Width()
	c.height = layer.Height()
	c.history = state.NewHistory()
	c.render()
	c.mu.Unlock()

	c.log.Info().
		Int("width", layer.Width()).
		Int("height", layer.Height()).
		Str("format", layer.Format).
		Msg("image loaded")
	c.safely(func() { c.recorder.ImageLoaded(layer.Width(), layer.Height()) })

	return nil
}

// Press starts a stroke at a page-space position. It does nothing and
// returns false unless an image is loaded, no request is in flight and the
// controller is idle.
func (c *Controller) Press(page state.Point) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.press(c.mapper.Map(page))
}

// Move extends the stroke in progress and redraws.
func (c *Controller) Move(page state.Point) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.move(c.mapper.Map(page))
}

func (c *Controller) press(p state.Point) bool {
	if c.state != StateIdle || c.locked || c.original == nil {
		return false
	}

	// the brush size is fixed for the whole stroke
	if err := c.history.BeginStroke(c.brush); err != nil {
		c.log.Debug().Err(err).Msg("press ignored")
		return false
	}
	if err := c.history.AppendPoint(p); err != nil {
		c.log.Debug().Err(err).Msg("press ignored")
		return false
	}

	c.transition(StateDrawing)
	c.render()
	return true
}

func (c *Controller) move(p state.Point) bool {
	if c.state != StateDrawing {
		return false
	}
	if err := c.history.AppendPoint(p); err != nil {
		c.log.Debug().Err(err).Msg("move ignored")
		return false
	}
	c.render()
	return true
}

// Release ends the stroke in progress and submits the mask of the whole
// history to the inpainting service. It blocks until the request resolves.
// On failure the base layer is left alone, the error is reported through the
// Notifier and Recorder, and it is also returned. Strokes are kept either
// way. Release does nothing when no stroke is in progress.
func (c *Controller) Release(ctx context.Context) error {
	run, ok := c.BeginRelease(ctx)
	if !ok {
		return nil
	}
	return run()
}

// BeginRelease ends the stroke in progress and locks the controller right
// away, returning the function that performs the request. Only the first of
// several concurrent callers gets ok; the others see no stroke in progress.
// The returned function must be called exactly once.
func (c *Controller) BeginRelease(ctx context.Context) (run func() error, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateDrawing {
		return nil, false
	}
	c.transition(StateSubmitting)
	c.locked = true
	strokes := c.history.Snapshot()
	original := c.original
	width, height := c.width, c.height

	return func() error {
		return c.request(ctx, original, strokes, width, height)
	}, true
}

func (c *Controller) request(ctx context.Context, original *boardimage.Layer, strokes []state.Stroke, width, height int) error {
	start := c.now()
	c.log.Debug().
		Int("strokes", len(strokes)).
		Stringer("mask_bounds", state.UnionBounds(strokes).Intersect(image.Rect(0, 0, width, height))).
		Msg("submitting mask")
	c.safely(c.recorder.InpaintStart)

	result, err := c.submit(ctx, original, strokes, width, height)

	c.mu.Lock()
	if err == nil {
		c.base = result
	}
	c.history.CommitAndAdvance()
	c.locked = false
	c.transition(StateIdle)
	c.render()
	c.mu.Unlock()

	if err != nil {
		c.log.Warn().Err(err).Int("strokes", len(strokes)).Msg("inpainting failed")
		c.safely(func() { c.recorder.InpaintFailed(err) })
		c.safely(func() { c.notifier.Notify(err) })
		return err
	}

	elapsed := c.now().Sub(start)
	c.log.Info().
		Dur("duration", elapsed).
		Int("strokes", len(strokes)).
		Msg("inpainting processed")
	c.safely(func() { c.recorder.InpaintProcessed(elapsed, width, height) })
	return nil
}

func (c *Controller) submit(ctx context.Context, original *boardimage.Layer, strokes []state.Stroke, width, height int) (image.Image, error) {
	if original == nil {
		return nil, fmt.Errorf("submit: %w", ErrInvalidSurface)
	}

	mask, err := c.rasterizer.Rasterize(strokes, width, height)
	if err != nil {
		return nil, err
	}
	maskURL, err := boardimage.EncodeMaskDataURL(mask)
	if err != nil {
		return nil, err
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAuth, err)
	}

	data, err := c.inpainter.Inpaint(ctx, original.Data, maskURL, token)
	switch {
	case errors.Is(err, ErrEmptyResult), errors.Is(err, ErrAuth), errors.Is(err, ErrTransport):
		return nil, err
	case err != nil:
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	case len(data) == 0:
		return nil, ErrEmptyResult
	}

	layer, err := c.loader.Load(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return layer.Image, nil
}

// Apply replays strokes given in surface coordinates, releasing after each
// one. It stops at the first failed request.
func (c *Controller) Apply(ctx context.Context, strokes []state.Stroke) error {
	for i, s := range strokes {
		if !s.Drawable() {
			continue
		}

		c.mu.Lock()
		prev := c.brush
		c.brush = s.BrushSize
		started := c.press(s.Points[0])
		c.brush = prev
		for _, p := range s.Points[1:] {
			c.move(p)
		}
		c.mu.Unlock()

		if !started {
			return fmt.Errorf("stroke %d: %w", i, ErrBusy)
		}
		if err := c.Release(ctx); err != nil {
			return fmt.Errorf("stroke %d: %w", i, err)
		}
	}
	return nil
}

// Snapshot returns the current composite for export. It is only available
// while idle.
func (c *Controller) Snapshot() (*image.RGBA, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateIdle {
		return nil, ErrBusy
	}
	return c.compositor.Render(c.base, c.history.Active(), c.width, c.height)
}

// Redraw renders the surface again, e.g. after the display was resized.
func (c *Controller) Redraw() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.render()
}

// render draws the base layer and the active stroke. Callers hold c.mu.
func (c *Controller) render() {
	if c.original == nil {
		return
	}
	frame, err := c.compositor.Render(c.base, c.history.Active(), c.width, c.height)
	if err != nil {
		c.log.Error().Err(err).Msg("render failed")
		return
	}
	c.presenter.Present(frame)
}

func (c *Controller) transition(to State) {
	c.log.Debug().Stringer("from", c.state).Stringer("to", to).Msg("state transition")
	c.state = to
}

// safely runs a collaborator callback; a panicking recorder or notifier must
// not take the session down.
func (c *Controller) safely(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error().Interface("panic", r).Msg("collaborator panicked")
		}
	}()
	fn()
}

// SetBrushSize changes the size used for strokes started from now on.
func (c *Controller) SetBrushSize(size float64) {
	if size <= 0 {
		return
	}
	c.mu.Lock()
	c.brush = size
	c.mu.Unlock()
}

func (c *Controller) BrushSize() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.brush
}

// SetMapper sets the page-to-surface mapping used for pointer input.
func (c *Controller) SetMapper(m Mapper) {
	c.mu.Lock()
	c.mapper = m
	c.mu.Unlock()
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Locked reports whether a request is in flight.
func (c *Controller) Locked() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.locked
}

// Loaded reports whether an image has been loaded.
func (c *Controller) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.original != nil
}

// Size returns the surface size, zero until an image is loaded.
func (c *Controller) Size() (width, height int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.width, c.height
}

func (c *Controller) HistoryLen() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.history.Len()
}

// Strokes returns a copy of the stroke history.
func (c *Controller) Strokes() []state.Stroke {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.history.Snapshot()
}

// Base returns the current base layer.
func (c *Controller) Base() image.Image {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.base
}

// Original returns the layer loaded by Load.
func (c *Controller) Original() *boardimage.Layer {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.original
}
