// Package analytics records usage events without ever blocking the caller.
package analytics

import (
	"context"
	"sync"
	"time"

	"InpaintBoard/internal/state"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	EventImageLoaded      = "image_loaded"
	EventInpaintStart     = "inpaint_start"
	EventInpaintProcessed = "inpaint_processed"
	EventInpaintFailed    = "inpaint_failed"
)

const DefaultBuffer = 64

// Event is a single analytics record.
type Event struct {
	ID      string         `json:"id"`
	Session string         `json:"session"`
	Name    string         `json:"name"`
	Time    time.Time      `json:"time"`
	Props   map[string]any `json:"props,omitempty"`
}

// Sink delivers events somewhere. Send is only called from the recorder's
// worker goroutine.
type Sink interface {
	Send(ctx context.Context, e Event) error
}

// Recorder queues events on a buffered channel and delivers them from a
// single worker. When the buffer is full events are dropped.
type Recorder struct {
	ch      chan Event
	sinks   []Sink
	log     zerolog.Logger
	now     func() time.Time
	done    chan struct{}
	once    sync.Once
	mu      sync.Mutex
	dropped int
}

func New(buffer int, log zerolog.Logger, sinks ...Sink) *Recorder {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Recorder{
		ch:    make(chan Event, buffer),
		sinks: sinks,
		log:   log,
		now:   time.Now,
		done:  make(chan struct{}),
	}
}

// Start runs the delivery loop until ctx is cancelled or Close is called.
func (r *Recorder) Start(ctx context.Context) {
	ch := r.ch
	go func() {
		defer close(r.done)
		for {
			select {
			case <-ctx.Done():
				return
			case e, ok := <-ch:
				if !ok {
					return
				}
				r.deliver(ctx, e)
			}
		}
	}()
}

// Close stops accepting events and waits for queued ones to be delivered.
// It must only be called after Start.
func (r *Recorder) Close() {
	r.once.Do(func() {
		r.mu.Lock()
		close(r.ch)
		r.ch = nil
		r.mu.Unlock()
	})
	<-r.done
}

// Dropped returns the number of events lost to a full buffer.
func (r *Recorder) Dropped() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dropped
}

func (r *Recorder) deliver(ctx context.Context, e Event) {
	for _, sink := range r.sinks {
		if err := sink.Send(ctx, e); err != nil {
			r.log.Warn().Err(err).Str("event", e.Name).Msg("analytics delivery failed")
		}
	}
}

func (r *Recorder) record(name string, props map[string]any) {
	e := Event{
		ID:      uuid.NewString(),
		Session: state.SessionID,
		Name:    name,
		Time:    r.now(),
		Props:   props,
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ch == nil {
		return
	}
	select {
	case r.ch <- e:
	default:
		r.dropped++
		r.log.Debug().Str("event", name).Msg("analytics buffer full, event dropped")
	}
}

func (r *Recorder) ImageLoaded(width, height int) {
	r.record(EventImageLoaded, map[string]any{"width": width, "height": height})
}

func (r *Recorder) InpaintStart() {
	r.record(EventInpaintStart, nil)
}

func (r *Recorder) InpaintProcessed(d time.Duration, width, height int) {
	r.record(EventInpaintProcessed, map[string]any{
		"duration_ms": d.Milliseconds(),
		"width":       width,
		"height":      height,
	})
}

func (r *Recorder) InpaintFailed(err error) {
	r.record(EventInpaintFailed, map[string]any{"error": err.Error()})
}
