package server

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/eliaskioni/RateLimitingDemo/internal/recorder"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // the dashboard is a local demo tool
	},
}

// Hub manages WebSocket clients and broadcasts decision events to them.
type Hub struct {
	log     zerolog.Logger
	mu      sync.RWMutex
	clients map[*websocket.Conn]struct{}
}

// NewHub creates a WebSocket hub.
func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		log:     log,
		clients: make(map[*websocket.Conn]struct{}),
	}
}

// HandleWebSocket upgrades the HTTP connection and registers the client.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade")
		return
	}

	h.mu.Lock()
	h.clients[conn] = struct{}{}
	h.mu.Unlock()

	// Read loop: keeps the connection alive and detects disconnects.
	go func() {
		defer func() {
			h.mu.Lock()
			delete(h.clients, conn)
			h.mu.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// Broadcast sends a decision event to every connected client.
func (h *Hub) Broadcast(e recorder.DecisionEvent) {
	data, err := json.Marshal(e)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket marshal")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for conn := range h.clients {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			conn.Close()
			// The read goroutine removes the client; don't mutate the map
			// while iterating under a read lock.
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
