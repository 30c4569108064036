package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// LogSink writes every event to the structured log.
type LogSink struct {
	Log zerolog.Logger
}

func (s LogSink) Send(_ context.Context, e Event) error {
	s.Log.Info().
		Str("id", e.ID).
		Str("event", e.Name).
		Fields(e.Props).
		Msg("analytics")
	return nil
}

// HTTPSink posts each event as JSON to URL.
type HTTPSink struct {
	URL  string
	HTTP *http.Client
}

func NewHTTPSink(url string, timeout time.Duration) *HTTPSink {
	return &HTTPSink{URL: url, HTTP: &http.Client{Timeout: timeout}}
}

func (s *HTTPSink) Send(ctx context.Context, e Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("post event: %w", err)
	}
	_ = resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("post event: status %d", resp.StatusCode)
	}
	return nil
}
