// Package ws streams review events to browsers over WebSocket.
package ws

import (
	"net/http"
	"slices"
	"time"

	"github.com/abhishek622/movieticket/review/pkg/model"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

type eventSource interface {
	Subscribe() (<-chan model.ReviewEvent, func())
}

// Handler upgrades requests and forwards every review event as a JSON text
// message until the client disconnects.
type Handler struct {
	source   eventSource
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// New creates a WebSocket handler. An empty allowedOrigins accepts any
// origin.
func New(source eventSource, allowedOrigins []string, logger *zap.Logger) *Handler {
	return &Handler{
		source: source,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || len(allowedOrigins) == 0 || slices.Contains(allowedOrigins, origin)
			},
		},
		logger: logger,
	}
}

// ServeHTTP handles GET /ws/reviews.
func (h *Handler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	conn, err := h.upgrader.Upgrade(w, req, nil)
	if err != nil {
		h.logger.Debug("WebSocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	events, cancel := h.source.Subscribe()
	defer cancel()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-closed:
			return
		case <-req.Context().Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(ev); err != nil {
				h.logger.Debug("WebSocket write failed", zap.Error(err))
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
