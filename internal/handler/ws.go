package handler

import (
    "net/http"

    "github.com/gorilla/websocket"
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/bus-trip-reservation/internal/realtime"
)

// WSHandler upgrades HTTP requests to WebSocket connections and hands
// them to the realtime hub.
type WSHandler struct {
    Hub *realtime.Hub

    upgrader websocket.Upgrader
}

// NewWSHandler constructs a WSHandler over the given hub.  Origin
// checking is left open; the socket carries no privileged reads and
// room joins are explicit client messages.
func NewWSHandler(hub *realtime.Hub) *WSHandler {
    return &WSHandler{
        Hub: hub,
        upgrader: websocket.Upgrader{
            ReadBufferSize:  1024,
            WriteBufferSize: 1024,
            CheckOrigin:     func(r *http.Request) bool { return true },
        },
    }
}

// Serve handles GET /ws.  After the upgrade the client is registered
// with the hub, the write pump starts on its own goroutine and the
// read pump takes over this one until the connection closes.
func (h *WSHandler) Serve(c echo.Context) error {
    conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
    if err != nil {
        // Upgrade already wrote the HTTP error response.
        return nil
    }
    client := h.Hub.Register(conn)
    go client.WritePump()
    client.ReadPump()
    return nil
}
