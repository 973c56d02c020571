package ws

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/skribly/skribly-backend/internal"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	maxInboundSize = 64 * 1024
	sendBuffer     = 256
)

// Client is one socket connection. All outbound traffic funnels through the
// send channel and a single write pump, so per-socket FIFO order holds.
type Client struct {
	id   string
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	mu      sync.RWMutex
	session string
	closed  bool
}

// ID is the socket ID, distinct from any session the socket is bound to.
func (c *Client) ID() string { return c.id }

// Session returns the bound session ID, or "" for an unauthenticated socket.
func (c *Client) Session() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session
}

func (c *Client) setSession(sessionID string) {
	c.mu.Lock()
	c.session = sessionID
	c.mu.Unlock()
}

// Send queues one event for this socket. Delivery is fire-and-forget: if the
// socket's buffer is full the message is dropped rather than blocking the
// caller.
func (c *Client) Send(event string, payload any) {
	raw, err := json.Marshal(internal.Message[any]{Type: event, Data: payload})
	if err != nil {
		log.Printf("[Client.Send] socket=%s: marshal %s failed: %v", c.id, event, err)
		return
	}
	c.enqueue(raw)
}

// enqueue holds the read lock so no send can overlap close. Broadcasters
// snapshot clients outside the hub lock, so they may still hold a client
// that has since unregistered; after close this is a silent no-op.
func (c *Client) enqueue(raw []byte) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return
	}
	select {
	case c.send <- raw:
	default:
		log.Printf("[Client.enqueue] socket=%s: send buffer full, dropping message", c.id)
	}
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// readPump consumes inbound frames and hands them to the hub's handler.
// It owns unregistration: when the read loop exits the socket is gone.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxInboundSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[Client.readPump] socket=%s: read error: %v", c.id, err)
			}
			return
		}

		var msg internal.Message[json.RawMessage]
		if err := json.Unmarshal(raw, &msg); err != nil {
			log.Printf("[Client.readPump] socket=%s: malformed message: %v", c.id, err)
			c.Send(internal.EventError, internal.ErrorData{Message: "malformed message"})
			continue
		}
		c.hub.dispatch(c, msg.Type, msg.Data)
	}
}

// writePump drains the send channel onto the wire, keeping the connection
// alive with periodic pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case raw, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, raw); err != nil {
				log.Printf("[Client.writePump] socket=%s: write error: %v", c.id, err)
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
