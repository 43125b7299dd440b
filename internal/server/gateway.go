package server

import (
	"context"
	"log"
	"net/http"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // the editor frontend is served from arbitrary origins
	},
}

// inboundEvent is the tagged-variant wire format for client events. Pointer
// fields distinguish "absent" from zero values during boundary validation.
type inboundEvent struct {
	Type     string  `json:"type"`
	RoomID   string  `json:"roomId"`
	Code     *string `json:"code"`
	Language string  `json:"language"`
	IsTyping bool    `json:"isTyping"`
}

// connState is the gateway's per-connection lifecycle.
type connState int

const (
	stateUnbound connState = iota
	stateBound
	stateClosed
)

// handleWebSocket owns one connection from upgrade to disconnect. The
// connection binds to at most one room for its lifetime; state moves
// unbound -> bound -> closed and closed is terminal.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}

	c := newClient(conn)
	go c.writeLoop()

	state := stateUnbound
	boundRoom := ""

	defer func() {
		if state == stateBound {
			count := s.registry.Leave(boundRoom)
			s.hub.remove(boundRoom, c)
			s.hub.broadcastToOthers(boundRoom, nil, userCountEvent{Type: "user-count", Count: count})
		}
		c.close()
	}()

	for {
		var ev inboundEvent
		if err := conn.ReadJSON(&ev); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("websocket read error: %v", err)
			}
			return
		}

		switch ev.Type {
		case "join":
			s.handleJoin(r.Context(), c, &state, &boundRoom, ev)
		case "code-change":
			s.handleCodeChange(r.Context(), c, state, boundRoom, ev)
		case "typing":
			s.handleTyping(c, state, boundRoom, ev)
		default:
			c.enqueue(errorEvent{Type: "error", Error: "unknown event type"})
		}
	}
}

// handleJoin binds the connection to a room: presence join, registry ensure,
// snapshot to the joiner, then a count broadcast to the room. A missing room
// id is rejected locally with no room created and nothing broadcast.
func (s *Server) handleJoin(ctx context.Context, c *client, state *connState, boundRoom *string, ev inboundEvent) {
	if ev.RoomID == "" {
		c.enqueue(errorEvent{Type: "error", Error: "roomId is required"})
		return
	}
	if *state == stateBound {
		c.enqueue(errorEvent{Type: "error", Error: "already joined a room"})
		return
	}

	count := s.registry.Join(ctx, ev.RoomID)
	snap := s.registry.Ensure(ctx, ev.RoomID)
	s.hub.add(ev.RoomID, c)

	*state = stateBound
	*boundRoom = ev.RoomID

	s.hub.sendSnapshot(c, roomStateEvent{
		Type:     "room-state",
		Code:     snap.Code,
		Language: snap.Language,
		Count:    count,
	})
	s.hub.broadcastToOthers(ev.RoomID, c, userCountEvent{Type: "user-count", Count: count})
}

// handleCodeChange applies the mutation, then fans it out. An event arriving
// before join is tolerated: the room is created implicitly and the event
// routed by its own roomId, since room ids are client-supplied anyway.
func (s *Server) handleCodeChange(ctx context.Context, c *client, state connState, boundRoom string, ev inboundEvent) {
	roomID := boundRoom
	if state != stateBound {
		roomID = ev.RoomID
	}
	if roomID == "" {
		c.enqueue(errorEvent{Type: "error", Error: "roomId is required"})
		return
	}
	if ev.Code == nil {
		c.enqueue(errorEvent{Type: "error", Error: "code is required"})
		return
	}

	// Mutate first, broadcast after, so no observer sees an event for state
	// the registry has not applied yet.
	if ev.Language != "" {
		s.registry.SetCodeAndLanguage(ctx, roomID, *ev.Code, ev.Language)
	} else {
		s.registry.SetCode(ctx, roomID, *ev.Code)
	}

	s.hub.broadcastToOthers(roomID, c, codeUpdateEvent{Type: "code-update", Code: *ev.Code})
	if ev.Language != "" {
		s.hub.broadcastToOthers(roomID, c, languageUpdateEvent{Type: "language-update", Language: ev.Language})
	}
}

// handleTyping relays a transient typing flag. Nothing is stored: a new
// joiner starts from "not typing" until the next event arrives.
func (s *Server) handleTyping(c *client, state connState, boundRoom string, ev inboundEvent) {
	roomID := boundRoom
	if state != stateBound {
		roomID = ev.RoomID
	}
	if roomID == "" {
		c.enqueue(errorEvent{Type: "error", Error: "roomId is required"})
		return
	}
	s.hub.broadcastToOthers(roomID, c, userTypingEvent{Type: "user-typing", IsTyping: ev.IsTyping})
}
