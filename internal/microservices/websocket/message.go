package websocket

import "proposalhub/internal/microservices/http-api/models"

// FeedMessage is the wire envelope for feed pushes.
type FeedMessage struct {
	Type         string               `json:"type"`
	Notification *models.Notification `json:"notification,omitempty"`
}
