package net

import (
	"bytes"
	"context"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image/png"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	boardimage "InpaintBoard/internal/image"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/hashicorp/mdns"
	"github.com/rs/zerolog"
)

const maxUploadSize = 64 << 20

// ServerOptions configures the reference inpainting server.
type ServerOptions struct {
	Addr       string
	Path       string
	Token      string
	IssuerKey  string
	Iterations int
	Advertise  bool
}

// Server answers inpainting requests over HTTP and WebSocket by filling the
// masked region with a diffusion of its surroundings. When IssuerKey is set it
// also hands out its bearer token at /token to clients presenting that key.
type Server struct {
	opts       ServerOptions
	httpServer *http.Server
	listener   net.Listener
	mdns       *mdns.Server
	sessions   *sessions
	upgrader   websocket.Upgrader
	log        zerolog.Logger
}

func NewServer(opts ServerOptions, log zerolog.Logger) *Server {
	if opts.Path == "" {
		opts.Path = DefaultPath
	}
	if opts.Iterations <= 0 {
		opts.Iterations = DefaultIterations
	}

	s := &Server{
		opts:     opts,
		sessions: newSessions(log),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1 << 16,
			WriteBufferSize: 1 << 16,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		log: log,
	}
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// GenerateToken returns a random bearer token.
func GenerateToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(s.opts.Path, s.handleInpaint)
	mux.HandleFunc("/token", s.handleToken)
	return mux
}

func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}
	s.listener = listener

	port := listener.Addr().(*net.TCPAddr).Port
	s.log.Info().Int("port", port).Str("path", s.opts.Path).Msg("starting inpaint server")

	errChan := make(chan error, 1)
	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("inpaint server failed to start: %w", err)
	case <-time.After(100 * time.Millisecond):
	}

	if s.opts.Advertise {
		server, err := Advertise(port, s.opts.Path)
		if err != nil {
			s.log.Warn().Err(err).Msg("mdns advertisement failed")
		} else {
			s.mdns = server
			s.log.Info().Str("service", ServiceType).Msg("advertising on mdns")
		}
	}
	return nil
}

func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("shutting down inpaint server")
	if s.mdns != nil {
		_ = s.mdns.Shutdown()
	}
	s.sessions.closeAll()
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) authorized(r *http.Request) bool {
	if s.opts.Token == "" {
		return true
	}
	return bearerMatches(r, s.opts.Token)
}

func bearerMatches(r *http.Request, secret string) bool {
	got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	return ok && subtle.ConstantTimeCompare([]byte(got), []byte(secret)) == 1
}

func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	if s.opts.IssuerKey == "" {
		http.NotFound(w, r)
		return
	}
	if !bearerMatches(r, s.opts.IssuerKey) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(tokenResponse{Token: s.opts.Token})
}

func (s *Server) handleInpaint(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	if websocket.IsWebSocketUpgrade(r) {
		s.serveWebSocket(w, r)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		http.Error(w, "invalid form: "+err.Error(), http.StatusBadRequest)
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		http.Error(w, "missing image", http.StatusBadRequest)
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "read image: "+err.Error(), http.StatusBadRequest)
		return
	}

	out, err := s.process(data, r.FormValue("mask"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(out)
}

func (s *Server) serveWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	s.sessions.add(conn)
	defer func() {
		s.sessions.remove(conn)
		_ = conn.Close()
	}()

	conn.SetReadLimit(maxUploadSize)

	var req wsRequest
	if err := conn.ReadJSON(&req); err != nil {
		s.writeWSError(conn, fmt.Errorf("invalid request: %w", err))
		return
	}

	data, err := base64.StdEncoding.DecodeString(req.Image)
	if err != nil {
		s.writeWSError(conn, fmt.Errorf("invalid image: %w", err))
		return
	}

	out, err := s.process(data, req.Mask)
	if err != nil {
		s.writeWSError(conn, err)
		return
	}

	if err := conn.WriteMessage(websocket.BinaryMessage, out); err != nil {
		s.log.Warn().Err(err).Msg("websocket write failed")
	}
}

func (s *Server) writeWSError(conn *websocket.Conn, err error) {
	if werr := conn.WriteJSON(wsError{Error: err.Error()}); werr != nil {
		s.log.Warn().Err(werr).Msg("websocket write failed")
	}
}

// process fills the masked region of the encoded image and returns it as PNG.
func (s *Server) process(data []byte, maskDataURL string) ([]byte, error) {
	layer, err := boardimage.Decode(data)
	if err != nil {
		return nil, err
	}
	mask, err := boardimage.DecodeMaskDataURL(maskDataURL)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	filled := Fill(layer.Image, mask, s.opts.Iterations)

	var buf bytes.Buffer
	if err := png.Encode(&buf, filled); err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}

	s.log.Info().
		Int("width", layer.Width()).
		Int("height", layer.Height()).
		Dur("elapsed", time.Since(start)).
		Msg("inpainted image")
	return buf.Bytes(), nil
}
