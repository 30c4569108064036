package net

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"InpaintBoard/internal/editor"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// wsRequest is the single text frame sent to a WebSocket inpaint endpoint.
type wsRequest struct {
	Image string `json:"image"`
	Mask  string `json:"mask"`
}

// wsError is the text frame a WebSocket endpoint answers with on failure.
type wsError struct {
	Error string `json:"error"`
}

// WSClient sends one request per connection and waits for a single reply.
type WSClient struct {
	Endpoint string
	Dialer   *websocket.Dialer
	Timeout  time.Duration
	log      zerolog.Logger
}

func NewWSClient(endpoint string, timeout time.Duration, log zerolog.Logger) *WSClient {
	return &WSClient{
		Endpoint: endpoint,
		Dialer:   websocket.DefaultDialer,
		Timeout:  timeout,
		log:      log,
	}
}

func (c *WSClient) Inpaint(ctx context.Context, image []byte, maskDataURL, token string) ([]byte, error) {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	header := http.Header{}
	setBearer(header, token)

	dialer := c.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}

	conn, resp, err := dialer.DialContext(ctx, c.Endpoint, header)
	if err != nil {
		if resp != nil {
			return nil, &StatusError{Code: resp.StatusCode}
		}
		return nil, fmt.Errorf("dial %s: %w", c.Endpoint, err)
	}
	defer func() { _ = conn.Close() }()
	conn.SetReadLimit(maxResultSize)

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetWriteDeadline(deadline)
		_ = conn.SetReadDeadline(deadline)
	}

	// unblock the read when the caller gives up
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	err = conn.WriteJSON(wsRequest{
		Image: base64.StdEncoding.EncodeToString(image),
		Mask:  maskDataURL,
	})
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}

	kind, data, err := conn.ReadMessage()
	if errors.Is(err, websocket.ErrReadLimit) {
		return nil, fmt.Errorf("%w: %w: over %d bytes", editor.ErrTransport, ErrResultTooLarge, maxResultSize)
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("read reply: %w", ctxErr)
		}
		return nil, fmt.Errorf("read reply: %w", err)
	}

	c.log.Debug().Int("type", kind).Int("bytes", len(data)).Msg("inpaint reply")

	switch kind {
	case websocket.BinaryMessage:
		if len(data) == 0 {
			return nil, ErrEmptyResult
		}
		return data, nil
	case websocket.TextMessage:
		var reply wsError
		if err := json.Unmarshal(data, &reply); err != nil {
			return nil, fmt.Errorf("parse reply: %w", err)
		}
		if reply.Error == "" {
			return nil, ErrEmptyResult
		}
		return nil, errors.New(reply.Error)
	default:
		return nil, fmt.Errorf("unexpected message type %d", kind)
	}
}
