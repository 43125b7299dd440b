package server

import (
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

// Outbound events. Each variant is its own struct so optional fields never
// leak between event kinds.

type roomStateEvent struct {
	Type     string `json:"type"` // "room-state"
	Code     string `json:"code"`
	Language string `json:"language"`
	Count    int    `json:"count"`
}

type codeUpdateEvent struct {
	Type string `json:"type"` // "code-update"
	Code string `json:"code"`
}

type languageUpdateEvent struct {
	Type     string `json:"type"` // "language-update"
	Language string `json:"language"`
}

type userCountEvent struct {
	Type  string `json:"type"` // "user-count"
	Count int    `json:"count"`
}

type userTypingEvent struct {
	Type     string `json:"type"` // "user-typing"
	IsTyping bool   `json:"isTyping"`
}

type errorEvent struct {
	Type  string `json:"type"` // "error"
	Error string `json:"error"`
}

// sendBuffer is the per-connection outbound queue depth. A participant that
// cannot drain this many events is dropped rather than stalling the room.
const sendBuffer = 64

// client is one live websocket connection. All writes go through send and a
// single writer goroutine, which keeps delivery FIFO per sender and keeps
// concurrent broadcasters off the connection.
type client struct {
	conn *websocket.Conn
	send chan any
	once sync.Once
	done chan struct{}
}

func newClient(conn *websocket.Conn) *client {
	return &client{
		conn: conn,
		send: make(chan any, sendBuffer),
		done: make(chan struct{}),
	}
}

// writeLoop drains the send queue onto the connection until close.
func (c *client) writeLoop() {
	for {
		select {
		case <-c.done:
			return
		case msg := <-c.send:
			if err := c.conn.WriteJSON(msg); err != nil {
				log.Printf("websocket write error: %v", err)
				c.close()
				return
			}
		}
	}
}

// enqueue hands an event to the writer. It never blocks: a full queue means
// the peer has stopped draining, and the connection is closed instead.
func (c *client) enqueue(msg any) {
	select {
	case <-c.done:
	case c.send <- msg:
	default:
		log.Printf("websocket send queue full, dropping connection")
		c.close()
	}
}

// close makes the read loop and writer wind down. Safe to call repeatedly.
func (c *client) close() {
	c.once.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

// hub is the broadcast router: it knows which connections are bound to which
// room and fans state-changing events out to everyone but the sender.
type hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*client]struct{}
}

func newHub() *hub {
	return &hub{rooms: make(map[string]map[*client]struct{})}
}

func (h *hub) add(roomID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	peers, ok := h.rooms[roomID]
	if !ok {
		peers = make(map[*client]struct{})
		h.rooms[roomID] = peers
	}
	peers[c] = struct{}{}
}

func (h *hub) remove(roomID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	peers, ok := h.rooms[roomID]
	if !ok {
		return
	}
	delete(peers, c)
	if len(peers) == 0 {
		delete(h.rooms, roomID)
	}
}

// broadcastToOthers delivers an event to every connection bound to the room
// except the sender. sender may be nil to reach the whole room.
func (h *hub) broadcastToOthers(roomID string, sender *client, msg any) {
	h.mu.RLock()
	peers := make([]*client, 0, len(h.rooms[roomID]))
	for c := range h.rooms[roomID] {
		if c != sender {
			peers = append(peers, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range peers {
		c.enqueue(msg)
	}
}

// sendSnapshot delivers the full room state to exactly one connection.
func (h *hub) sendSnapshot(c *client, snap roomStateEvent) {
	c.enqueue(snap)
}
