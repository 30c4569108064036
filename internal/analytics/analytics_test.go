package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"InpaintBoard/internal/state"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memorySink struct {
	mu     sync.Mutex
	events []Event
	block  chan struct{}
}

func (s *memorySink) Send(_ context.Context, e Event) error {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	return nil
}

func (s *memorySink) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.events))
	for _, e := range s.events {
		names = append(names, e.Name)
	}
	return names
}

func TestRecorder_DeliversInOrder(t *testing.T) {
	sink := &memorySink{}
	r := New(8, zerolog.Nop(), sink)
	r.Start(context.Background())

	r.ImageLoaded(800, 600)
	r.InpaintStart()
	r.InpaintProcessed(1500*time.Millisecond, 800, 600)
	r.InpaintFailed(errors.New("boom"))
	r.Close()

	assert.Equal(t, []string{
		EventImageLoaded,
		EventInpaintStart,
		EventInpaintProcessed,
		EventInpaintFailed,
	}, sink.Names())

	first := sink.events[0]
	assert.Equal(t, state.SessionID, first.Session)
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, 800, first.Props["width"])
	assert.Equal(t, int64(1500), sink.events[2].Props["duration_ms"])
	assert.Equal(t, "boom", sink.events[3].Props["error"])
}

func TestRecorder_DropsWhenFull(t *testing.T) {
	sink := &memorySink{block: make(chan struct{})}
	r := New(1, zerolog.Nop(), sink)
	r.Start(context.Background())

	done := make(chan struct{})
	go func() {
		for range 10 {
			r.InpaintStart()
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("recording blocked")
	}

	close(sink.block)
	r.Close()

	assert.Positive(t, r.Dropped())
	assert.Equal(t, 10, r.Dropped()+len(sink.Names()))
}

func TestRecorder_IgnoresEventsAfterClose(t *testing.T) {
	sink := &memorySink{}
	r := New(4, zerolog.Nop(), sink)
	r.Start(context.Background())
	r.Close()

	assert.NotPanics(t, func() { r.InpaintStart() })
	assert.Empty(t, sink.Names())
}

func TestHTTPSink(t *testing.T) {
	var got Event
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	sink := NewHTTPSink(srv.URL, time.Second)
	err := sink.Send(context.Background(), Event{ID: "1", Session: "s", Name: EventInpaintStart})

	require.NoError(t, err)
	assert.Equal(t, "1", got.ID)
	assert.Equal(t, EventInpaintStart, got.Name)
}

func TestHTTPSink_Status(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	err := NewHTTPSink(srv.URL, time.Second).Send(context.Background(), Event{})
	assert.Error(t, err)
}
