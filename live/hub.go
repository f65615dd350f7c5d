// Package live pushes tournament updates (fixture results, completions,
// standings changes) to websocket clients. Clients join a room per
// tournament; the service layer broadcasts into rooms.
package live

import (
	"encoding/json"
	"log/slog"
	"sync"
)

type Hub struct {
	Register   chan *Client
	Unregister chan *Client

	rooms  map[string]map[*Client]bool
	mu     sync.RWMutex
	logger *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		rooms:      make(map[string]map[*Client]bool),
		logger:     logger,
	}
}

// Run owns the room bookkeeping; start it once in its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			if _, ok := h.rooms[client.room]; !ok {
				h.rooms[client.room] = make(map[*Client]bool)
			}
			h.rooms[client.room][client] = true
			h.logger.Debug("websocket client joined",
				slog.String("room", client.room),
				slog.Int("clients", len(h.rooms[client.room])))
			h.mu.Unlock()

		case client := <-h.Unregister:
			h.mu.Lock()
			if clients, ok := h.rooms[client.room]; ok {
				if _, known := clients[client]; known {
					client.closeSend()
					delete(clients, client)
					if len(clients) == 0 {
						delete(h.rooms, client.room)
					}
				}
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastToRoom sends the message to every client in the room. Clients
// whose send buffer is full are skipped rather than blocking the caller.
func (h *Hub) BroadcastToRoom(roomID string, message interface{}) {
	payload, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("failed to marshal websocket message",
			slog.String("room", roomID), slog.Any("error", err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.rooms[roomID] {
		client.mu.Lock()
		if !client.closed {
			select {
			case client.send <- payload:
			default:
				h.logger.Warn("dropping websocket message, client buffer full",
					slog.String("room", roomID))
			}
		}
		client.mu.Unlock()
	}
}
