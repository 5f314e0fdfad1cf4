package realtime

import (
    "log"
    "sync"

    "github.com/gorilla/websocket"
)

// Hub owns the registry of live connections.  It is created once at
// process start; entries are added on connect and removed on
// disconnect or on the first failed send.  All access to the registry
// goes through the hub's lock so that join, leave and broadcast are
// linearizable with respect to a single room.
type Hub struct {
    mu      sync.RWMutex
    clients map[string]*Client
}

// NewHub returns an empty hub ready to register connections.
func NewHub() *Hub {
    return &Hub{clients: make(map[string]*Client)}
}

// Register wraps the WebSocket connection in a Client, adds it to the
// registry and queues the connection_established greeting carrying
// the assigned connection ID.  The caller is responsible for starting
// the client's read and write pumps.
func (h *Hub) Register(conn *websocket.Conn) *Client {
    c := newClient(h, conn)
    h.add(c)
    c.enqueue(Message{Type: TypeConnectionEstablished, ConnectionID: c.ID})
    log.Printf("realtime: client %s connected", c.ID)
    return c
}

// add inserts a client into the registry.
func (h *Hub) add(c *Client) {
    h.mu.Lock()
    h.clients[c.ID] = c
    h.mu.Unlock()
}

// Unregister removes the connection from the registry and drops its
// membership in every room.  There is no buffering or replay for the
// removed client; after reconnecting, catching up is the client's
// responsibility via a fresh full-state fetch.  Safe to call more
// than once.
func (h *Hub) Unregister(connID string) {
    h.mu.Lock()
    c, ok := h.clients[connID]
    if ok {
        delete(h.clients, connID)
    }
    h.mu.Unlock()
    if ok {
        c.close()
        log.Printf("realtime: client %s disconnected", connID)
    }
}

// JoinTrip adds the connection to the given trip room.  Memberships
// are additive sets; joining one room never leaves another.
func (h *Hub) JoinTrip(connID, tripID string) {
    if c := h.client(connID); c != nil {
        c.joinTrip(tripID)
    }
}

// LeaveTrip removes the connection from the given trip room.
func (h *Hub) LeaveTrip(connID, tripID string) {
    if c := h.client(connID); c != nil {
        c.leaveTrip(tripID)
    }
}

// JoinOrganizer adds the connection to the given organizer room.
func (h *Hub) JoinOrganizer(connID, organizerID string) {
    if c := h.client(connID); c != nil {
        c.joinOrganizer(organizerID)
    }
}

func (h *Hub) client(connID string) *Client {
    h.mu.RLock()
    defer h.mu.RUnlock()
    return h.clients[connID]
}

// BroadcastToTrip delivers msg to every member of the trip room
// except the optionally excluded originating connection.  Delivery is
// best effort: a member whose send queue is gone or full is removed
// silently and delivery to the remaining members continues.
func (h *Hub) BroadcastToTrip(tripID string, msg Message, excludeConnID string) {
    h.broadcast(msg, excludeConnID, func(c *Client) bool { return c.inTripRoom(tripID) })
}

// BroadcastToOrganizer delivers msg to every member of the organizer
// room except the optionally excluded originating connection.
func (h *Hub) BroadcastToOrganizer(organizerID string, msg Message, excludeConnID string) {
    h.broadcast(msg, excludeConnID, func(c *Client) bool { return c.inOrganizerRoom(organizerID) })
}

func (h *Hub) broadcast(msg Message, excludeConnID string, member func(*Client) bool) {
    h.mu.RLock()
    var dead []string
    for id, c := range h.clients {
        if id == excludeConnID || !member(c) {
            continue
        }
        if !c.enqueue(msg) {
            dead = append(dead, id)
        }
    }
    h.mu.RUnlock()
    for _, id := range dead {
        h.Unregister(id)
    }
}

// ClientCount reports the number of registered connections.
func (h *Hub) ClientCount() int {
    h.mu.RLock()
    defer h.mu.RUnlock()
    return len(h.clients)
}
