package feed

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wcravens/shift-main-sub001/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	subscribeLimit = 256
)

// Server upgrades HTTP requests to websocket subscriptions on the hub.
type Server struct {
	hub      *Hub
	logger   logger.Interface
	upgrader websocket.Upgrader
	srv      *http.Server
}

// NewServer wires a websocket endpoint at /feed on the given address.
func NewServer(addr string, hub *Hub, log logger.Interface) *Server {
	s := &Server{
		hub:    hub,
		logger: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/feed", s.handleFeed)
	s.srv = &http.Server{Addr: addr, Handler: mux}
	return s
}

// Start serves until the listener closes. It blocks; run it on its own
// goroutine.
func (s *Server) Start() error {
	err := s.srv.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// handleFeed upgrades the connection and streams events for the symbols in
// the ?symbols= query parameter, or all symbols when it is absent.
func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("feed upgrade failed", logger.Field{Key: "error", Value: err.Error()})
		return
	}

	var symbols []string
	if raw := r.URL.Query().Get("symbols"); raw != "" {
		symbols = strings.Split(raw, ",")
	}
	sub := s.hub.Subscribe(subscribeLimit, symbols...)

	go s.writeLoop(conn, sub)
	s.readLoop(conn, sub)
}

// writeLoop is the connection's single writer.
func (s *Server) writeLoop(conn *websocket.Conn, sub *Subscription) {
	defer conn.Close()
	for event := range sub.C() {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(event); err != nil {
			s.hub.Unsubscribe(sub)
			return
		}
	}
}

// readLoop discards inbound frames and tears the subscription down when the
// peer disconnects.
func (s *Server) readLoop(conn *websocket.Conn, sub *Subscription) {
	defer func() {
		s.hub.Unsubscribe(sub)
		conn.Close()
	}()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
