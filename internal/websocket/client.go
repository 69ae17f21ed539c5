package websocket

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gorilla/websocket"

	"melhado-backend/internal/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10 // must stay below pongWait
	maxMessageSize = 512
	sendBuffer     = 256
)

// Client is one dashboard connection. Dashboards only listen; the single
// message they send is an application-level ping.
type Client struct {
	UserID   string
	UserRole models.Role
	conn     *websocket.Conn
	hub      *Hub
	send     chan []byte
}

// clientMessage is what a dashboard may send.
type clientMessage struct {
	Type string `json:"type"`
}

func NewClient(userID string, role models.Role, conn *websocket.Conn, hub *Hub) *Client {
	return &Client{
		UserID:   userID,
		UserRole: role,
		conn:     conn,
		hub:      hub,
		send:     make(chan []byte, sendBuffer),
	}
}

// handle answers one client message. Unknown types are ignored.
func (c *Client) handle(raw []byte) {
	var msg clientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		log.Printf("⚠️ [WEBSOCKET] Unreadable message from %s: %v", c.UserID, err)
		return
	}
	if msg.Type != "ping" {
		return
	}
	pong, err := json.Marshal(Event{
		Type: "pong",
		Data: map[string]string{"timestamp": time.Now().UTC().Format(time.RFC3339)},
	})
	if err != nil {
		return
	}
	c.hub.reply(c, pong)
}

// ReadPump runs until the connection fails or closes, then unregisters.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("❌ [WEBSOCKET] Read error for %s: %v", c.UserID, err)
			}
			return
		}
		c.handle(raw)
	}
}

// WritePump drains the send queue and keeps the connection alive with pings.
// It exits when the hub closes the queue or a write fails.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		var (
			kind int
			data []byte
		)
		select {
		case message, ok := <-c.send:
			if !ok {
				c.conn.SetWriteDeadline(time.Now().Add(writeWait))
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			kind, data = websocket.TextMessage, message
		case <-ticker.C:
			kind = websocket.PingMessage
		}

		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(kind, data); err != nil {
			return
		}
	}
}
