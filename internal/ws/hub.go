package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/skribly/skribly-backend/internal"
	"github.com/skribly/skribly-backend/internal/registry"
)

// Handler receives socket lifecycle callbacks and inbound events. Handlers
// run on the socket's read goroutine and must not block indefinitely.
type Handler interface {
	HandleConnect(c *Client)
	HandleDisconnect(c *Client)
	HandleEvent(c *Client, event string, data json.RawMessage)
}

// Hub owns every live socket and the socket_id ↔ session_id routing table.
// It is the Broadcaster: fan-out resolves room membership through the
// registry at send time, so it reaches every socket of every member session.
type Hub struct {
	reg     *registry.Registry
	handler Handler

	mu       sync.RWMutex
	clients  map[string]*Client            // socket_id → client
	sessions map[string]map[string]*Client // session_id → socket_id → client

	upgrader websocket.Upgrader
}

func NewHub(reg *registry.Registry) *Hub {
	return &Hub{
		reg:      reg,
		clients:  make(map[string]*Client),
		sessions: make(map[string]map[string]*Client),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// SetHandler wires the inbound event consumer. Must be called before ServeWS.
func (h *Hub) SetHandler(handler Handler) { h.handler = handler }

// ServeWS upgrades the request and runs the socket. sessionHint carries the
// session resolved from the HTTP request (cookie/header), if any; a valid
// hint binds the socket immediately so connection_confirmed can carry user
// info, but an explicit authenticate event may rebind later.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, sessionHint string) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[Hub.ServeWS] upgrade failed: %v", err)
		return
	}

	c := &Client{
		id:   uuid.NewString(),
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}

	h.mu.Lock()
	h.clients[c.id] = c
	h.mu.Unlock()

	if sessionHint != "" {
		if _, ok := h.reg.GetUser(sessionHint); ok {
			h.Bind(c, sessionHint)
		}
	}

	go c.writePump()
	go c.readPump()

	if h.handler != nil {
		h.handler.HandleConnect(c)
	}
	log.Printf("[Hub.ServeWS] socket %s connected (session=%q)", c.id, c.Session())
}

// Bind associates a socket with a session in both directions. A socket
// already bound elsewhere is moved.
func (h *Hub) Bind(c *Client, sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if prev := c.Session(); prev != "" && prev != sessionID {
		h.dropFromSessionLocked(prev, c.id)
	}
	c.setSession(sessionID)
	if h.sessions[sessionID] == nil {
		h.sessions[sessionID] = make(map[string]*Client)
	}
	h.sessions[sessionID][c.id] = c
}

func (h *Hub) dropFromSessionLocked(sessionID, socketID string) {
	if set := h.sessions[sessionID]; set != nil {
		delete(set, socketID)
		if len(set) == 0 {
			delete(h.sessions, sessionID)
		}
	}
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c.id]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c.id)
	if s := c.Session(); s != "" {
		h.dropFromSessionLocked(s, c.id)
	}
	h.mu.Unlock()

	c.close()
	if h.handler != nil {
		h.handler.HandleDisconnect(c)
	}
	log.Printf("[Hub.unregister] socket %s disconnected", c.id)
}

func (h *Hub) dispatch(c *Client, event string, data json.RawMessage) {
	if h.handler == nil {
		return
	}
	h.handler.HandleEvent(c, event, data)
}

// sessionClients snapshots the sockets bound to a session.
func (h *Hub) sessionClients(sessionID string) []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	set := h.sessions[sessionID]
	out := make([]*Client, 0, len(set))
	for _, c := range set {
		out = append(out, c)
	}
	return out
}

// =============================================================================
// BROADCASTER
// =============================================================================

func encode(event string, payload any) ([]byte, bool) {
	raw, err := json.Marshal(internal.Message[any]{Type: event, Data: payload})
	if err != nil {
		log.Printf("[Hub.encode] marshal %s failed: %v", event, err)
		return nil, false
	}
	return raw, true
}

// ToRoom delivers to every socket bound to any member of the room.
func (h *Hub) ToRoom(roomID, event string, payload any) {
	h.toRoomFiltered(roomID, "", event, payload)
}

// ToRoomExcept delivers to the room, skipping every socket of one session.
func (h *Hub) ToRoomExcept(roomID, exceptSession, event string, payload any) {
	h.toRoomFiltered(roomID, exceptSession, event, payload)
}

func (h *Hub) toRoomFiltered(roomID, exceptSession, event string, payload any) {
	players := h.reg.RoomPlayers(roomID)
	if len(players) == 0 {
		return
	}
	raw, ok := encode(event, payload)
	if !ok {
		return
	}
	for _, sid := range players {
		if sid == exceptSession {
			continue
		}
		for _, c := range h.sessionClients(sid) {
			c.enqueue(raw)
		}
	}
}

// ToSession delivers to all sockets bound to one session.
func (h *Hub) ToSession(sessionID, event string, payload any) {
	raw, ok := encode(event, payload)
	if !ok {
		return
	}
	for _, c := range h.sessionClients(sessionID) {
		c.enqueue(raw)
	}
}
