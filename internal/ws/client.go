package ws

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"DonorLink/entity"
	"DonorLink/internal/lib/sl"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Client is a single live connection of an authenticated user. A client sits
// in at most one room at a time.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	id     string
	userID string
	room   string

	mu     sync.Mutex
	closed bool
}

// sendEvent queues an event for this connection only. A full buffer drops
// the event rather than blocking the hub.
func (c *Client) sendEvent(event *Event) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	c.enqueue(data)
}

// enqueue puts data on the send channel without blocking. It reports false
// when the buffer is full or the connection is already torn down. The mutex
// keeps enqueue safe against closeSend racing from the hub goroutine.
func (c *Client) enqueue(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// closeSend closes the send channel exactly once. Only the hub calls this.
func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// readPump pumps events from the WebSocket connection into the hub.
// It handles ping/pong keepalive and detects disconnects.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			break
		}
		c.hub.HandleClientMessage(c, message)
	}
}

// writePump pumps events from the hub to the WebSocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Authenticator validates a bearer token and resolves the caller.
type Authenticator interface {
	AuthenticateByToken(token string) (*entity.UserAuth, error)
}

// ServeWs handles WebSocket upgrade requests for chat clients. The token
// travels as a query parameter because browsers cannot set headers on
// WebSocket handshakes.
func ServeWs(hub *Hub, auth Authenticator, log *slog.Logger, w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	user, err := auth.AuthenticateByToken(token)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("websocket upgrade failed", sl.Err(err))
		return
	}

	client := &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, 256),
		id:     uuid.NewString(),
		userID: user.UserID,
	}

	log.Debug("websocket client connected",
		slog.String("connection", client.id),
		slog.String("user", user.Username),
	)

	hub.register <- client

	go client.writePump()
	go client.readPump()
}
