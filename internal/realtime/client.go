package realtime

import (
    "log"
    "sync"
    "time"

    "github.com/google/uuid"
    "github.com/gorilla/websocket"
)

const (
    // writeWait bounds a single write to the peer.
    writeWait = 10 * time.Second
    // pongWait is how long we wait for a pong before declaring the
    // connection dead.  Pings are sent at a fraction of this period.
    pongWait   = 60 * time.Second
    pingPeriod = (pongWait * 9) / 10
    // sendBuffer is the per-connection outbound queue.  Events for a
    // connection are written by a single pump in queue order, which
    // preserves per-seat event ordering.  A full queue marks the
    // connection dead rather than blocking the broadcaster.
    sendBuffer = 64
)

// Client is one live WebSocket connection together with its room
// memberships.  Memberships are ephemeral: they exist only while the
// connection is registered and are never persisted.
type Client struct {
    ID   string
    hub  *Hub
    conn *websocket.Conn
    send chan Message

    mu             sync.Mutex
    closed         bool
    tripRooms      map[string]struct{}
    organizerRooms map[string]struct{}
}

func newClient(hub *Hub, conn *websocket.Conn) *Client {
    return &Client{
        ID:             uuid.NewString(),
        hub:            hub,
        conn:           conn,
        send:           make(chan Message, sendBuffer),
        tripRooms:      make(map[string]struct{}),
        organizerRooms: make(map[string]struct{}),
    }
}

// enqueue places msg on the client's outbound queue.  It reports
// false when the client is closed or its queue is full; the caller
// then drops the client from the registry.
func (c *Client) enqueue(msg Message) bool {
    c.mu.Lock()
    defer c.mu.Unlock()
    if c.closed {
        return false
    }
    select {
    case c.send <- msg:
        return true
    default:
        return false
    }
}

// close marks the client closed and ends its write pump.  Called by
// the hub exactly once, from Unregister.
func (c *Client) close() {
    c.mu.Lock()
    defer c.mu.Unlock()
    if c.closed {
        return
    }
    c.closed = true
    close(c.send)
}

func (c *Client) joinTrip(tripID string) {
    c.mu.Lock()
    c.tripRooms[tripID] = struct{}{}
    c.mu.Unlock()
}

func (c *Client) leaveTrip(tripID string) {
    c.mu.Lock()
    delete(c.tripRooms, tripID)
    c.mu.Unlock()
}

func (c *Client) joinOrganizer(organizerID string) {
    c.mu.Lock()
    c.organizerRooms[organizerID] = struct{}{}
    c.mu.Unlock()
}

func (c *Client) inTripRoom(tripID string) bool {
    c.mu.Lock()
    defer c.mu.Unlock()
    _, ok := c.tripRooms[tripID]
    return ok
}

func (c *Client) inOrganizerRoom(organizerID string) bool {
    c.mu.Lock()
    defer c.mu.Unlock()
    _, ok := c.organizerRooms[organizerID]
    return ok
}

// ReadPump consumes messages from the peer and applies room
// membership changes.  It blocks until the connection drops, then
// purges the client's memberships via Unregister.  Run it on the
// request goroutine after starting WritePump.
func (c *Client) ReadPump() {
    defer func() {
        c.hub.Unregister(c.ID)
        _ = c.conn.Close()
    }()
    _ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
    c.conn.SetPongHandler(func(string) error {
        return c.conn.SetReadDeadline(time.Now().Add(pongWait))
    })
    for {
        var msg Message
        if err := c.conn.ReadJSON(&msg); err != nil {
            if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
                log.Printf("realtime: client %s read error: %v", c.ID, err)
            }
            return
        }
        switch msg.Type {
        case TypeJoinTrip:
            if msg.TripID != "" {
                c.joinTrip(msg.TripID)
            }
        case TypeLeaveTrip:
            if msg.TripID != "" {
                c.leaveTrip(msg.TripID)
            }
        case TypeJoinOrganizer:
            if msg.OrganizerID != "" {
                c.joinOrganizer(msg.OrganizerID)
            }
        default:
            // Unknown client messages are ignored; the hub never
            // relays unvalidated payloads on behalf of a client.
        }
    }
}

// WritePump serializes queued messages to the peer and keeps the
// connection alive with periodic pings.  It exits when the client is
// closed or a write fails.
func (c *Client) WritePump() {
    ticker := time.NewTicker(pingPeriod)
    defer func() {
        ticker.Stop()
        _ = c.conn.Close()
    }()
    for {
        select {
        case msg, ok := <-c.send:
            _ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
            if !ok {
                _ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
                return
            }
            if err := c.conn.WriteJSON(msg); err != nil {
                return
            }
        case <-ticker.C:
            _ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
            if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
                return
            }
        }
    }
}
