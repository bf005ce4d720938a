package websocket

import (
	"time"

	"github.com/gorilla/websocket"
)

// Individual client connection handler.
// The feed is one-way: the server pushes notifications, the client only
// answers pings. Inbound frames are read and discarded to service control
// messages.

const ( // ping pong(2-way heartbeat) to keep connection alive
	WriteWait      = 10 * time.Second    // max time write a message to the peer
	PongWait       = 60 * time.Second    // max time to wait for pong from peer => no pong = no connection
	PingPeriod     = (PongWait * 9) / 10 // send pings before the pong deadline expires
	MaxMessageSize = 512                 // maximum message size allowed from peer
)

type Client struct {
	UserID      string          // user ID from auth token(JWT.claims)
	Conn        *websocket.Conn // WebSocket connection
	SendChannel chan []byte     // channel for outbound(chan <-) messages
	Hub         *Hub            // reference to the central Hub
}

func NewClient(userID string, conn *websocket.Conn, hub *Hub) *Client {
	return &Client{
		UserID:      userID,
		Conn:        conn,
		SendChannel: make(chan []byte, 16),
		Hub:         hub,
	}
}

// ReadPump drains the connection until the client goes away, keeping the
// pong deadline fresh.
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(MaxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(PongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(PongWait))
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			return
		}
	}
}

// WritePump forwards hub messages to the peer and sends periodic pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(PingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.SendChannel:
			c.Conn.SetWriteDeadline(time.Now().Add(WriteWait))
			if !ok {
				// hub closed the channel
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(WriteWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
