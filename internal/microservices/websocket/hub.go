package websocket

// Central hub managing all live notification connections.
// Each WebSocket connection runs in its own goroutine
// but they all communicate through channels to avoid race conditions.

import (
	"encoding/json"
	"log/slog"

	"proposalhub/internal/microservices/http-api/models"
)

type Hub struct {
	// connections per user; one user may have several tabs/devices open
	clients map[string]map[*Client]bool

	Register   chan *Client
	Unregister chan *Client
	publish    chan feedEvent

	logger *slog.Logger
}

type feedEvent struct {
	userID  string
	payload []byte
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		publish:    make(chan feedEvent, 64),
		logger:     logger,
	}
}

// Run owns the client map. Only this goroutine touches it.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			if h.clients[client.UserID] == nil {
				h.clients[client.UserID] = make(map[*Client]bool)
			}
			h.clients[client.UserID][client] = true
			h.logger.Debug("feed client connected", "user_id", client.UserID)

		case client := <-h.Unregister:
			if conns, ok := h.clients[client.UserID]; ok {
				if _, ok := conns[client]; ok {
					delete(conns, client)
					close(client.SendChannel)
					if len(conns) == 0 {
						delete(h.clients, client.UserID)
					}
				}
			}
			h.logger.Debug("feed client disconnected", "user_id", client.UserID)

		case event := <-h.publish:
			for client := range h.clients[event.userID] {
				select {
				case client.SendChannel <- event.payload:
				default:
					// slow consumer, drop the connection rather than block the hub
					delete(h.clients[event.userID], client)
					close(client.SendChannel)
				}
			}
		}
	}
}

// Publish pushes a notification to all live connections of a user. Safe to
// call from any goroutine; no-op when the user has no open connections.
func (h *Hub) Publish(userID string, notification models.Notification) {
	payload, err := json.Marshal(FeedMessage{
		Type:         "notification",
		Notification: &notification,
	})
	if err != nil {
		h.logger.Error("failed to marshal feed message", "error", err)
		return
	}
	h.publish <- feedEvent{userID: userID, payload: payload}
}
