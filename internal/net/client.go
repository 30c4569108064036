// Package net holds the network collaborators of the editor: inpainting
// clients, token sources, service discovery and the reference inpainting
// server.
package net

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"InpaintBoard/internal/editor"

	"github.com/rs/zerolog"
)

const maxResultSize = 64 << 20

var (
	// ErrEmptyResult is returned when the service answers without an image.
	ErrEmptyResult = editor.ErrEmptyResult
	// ErrResultTooLarge is returned when a reply exceeds the result size limit.
	ErrResultTooLarge = errors.New("result too large")
)

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("inpaint service returned %d %s", e.Code, http.StatusText(e.Code))
	}
	return fmt.Sprintf("inpaint service returned %d: %s", e.Code, e.Body)
}

// Unwrap classifies rejected credentials as authorization failures.
func (e *StatusError) Unwrap() error {
	if e.Code == http.StatusUnauthorized || e.Code == http.StatusForbidden {
		return editor.ErrAuth
	}
	return nil
}

// HTTPClient posts the image and mask as multipart/form-data.
type HTTPClient struct {
	Endpoint string
	HTTP     *http.Client

	// MaxResult caps the reply size in bytes; zero means 64 MiB.
	MaxResult int64

	log zerolog.Logger
}

func NewHTTPClient(endpoint string, timeout time.Duration, log zerolog.Logger) *HTTPClient {
	return &HTTPClient{
		Endpoint: endpoint,
		HTTP:     &http.Client{Timeout: timeout},
		log:      log,
	}
}

func (c *HTTPClient) Inpaint(ctx context.Context, image []byte, maskDataURL, token string) ([]byte, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	part, err := mw.CreateFormFile("image", "image")
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if _, err := part.Write(image); err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if err := mw.WriteField("mask", maskDataURL); err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, &body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	setBearer(req.Header, token)

	start := time.Now()
	resp, err := c.client().Do(req)
	if err != nil {
		return nil, fmt.Errorf("post %s: %w", c.Endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()

	limit := c.MaxResult
	if limit <= 0 {
		limit = maxResultSize
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: %w: over %d bytes", editor.ErrTransport, ErrResultTooLarge, limit)
	}

	c.log.Debug().
		Int("status", resp.StatusCode).
		Int("bytes", len(data)).
		Dur("elapsed", time.Since(start)).
		Msg("inpaint response")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}
	if len(data) == 0 {
		return nil, ErrEmptyResult
	}
	return data, nil
}

func (c *HTTPClient) client() *http.Client {
	if c.HTTP == nil {
		return http.DefaultClient
	}
	return c.HTTP
}

func setBearer(h http.Header, token string) {
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
}

// NewInpainter picks the client for the endpoint's scheme: ws and wss get a
// WebSocket client, everything else is posted over HTTP.
func NewInpainter(endpoint string, timeout time.Duration, log zerolog.Logger) (editor.Inpainter, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}

	switch u.Scheme {
	case "ws", "wss":
		return NewWSClient(endpoint, timeout, log), nil
	case "http", "https":
		return NewHTTPClient(endpoint, timeout, log), nil
	default:
		return nil, fmt.Errorf("unsupported endpoint scheme %q", u.Scheme)
	}
}
