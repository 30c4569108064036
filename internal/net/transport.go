package net

import (
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// sessions tracks the open WebSocket connections of a server so they can be
// closed on shutdown.
type sessions struct {
	conns map[*websocket.Conn]struct{}
	mu    sync.Mutex
	log   zerolog.Logger
}

func newSessions(log zerolog.Logger) *sessions {
	return &sessions{
		conns: make(map[*websocket.Conn]struct{}),
		log:   log,
	}
}

func (s *sessions) add(conn *websocket.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conns[conn] = struct{}{}
	s.log.Debug().Str("remote", conn.RemoteAddr().String()).Int("open", len(s.conns)).Msg("websocket client connected")
}

func (s *sessions) remove(conn *websocket.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conns, conn)
}

func (s *sessions) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

func (s *sessions) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.conns {
		_ = conn.Close()
		delete(s.conns, conn)
	}
}
