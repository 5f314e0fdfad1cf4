package handler

import (
    "database/sql"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/bus-trip-reservation/internal/realtime"
)

// HealthHandler reports liveness of the service and its primary
// dependency.  The realtime hub's connection count rides along as a
// cheap operational signal.
type HealthHandler struct {
    DB  *sql.DB
    Hub *realtime.Hub
}

// NewHealthHandler constructs a HealthHandler.
func NewHealthHandler(db *sql.DB, hub *realtime.Hub) *HealthHandler {
    return &HealthHandler{DB: db, Hub: hub}
}

// Health handles GET /healthz.  It pings the database and returns 503
// if the ping fails; the process is alive but cannot serve holds
// without its ledger.
func (h *HealthHandler) Health(c echo.Context) error {
    if err := h.DB.PingContext(c.Request().Context()); err != nil {
        return c.JSON(http.StatusServiceUnavailable, echo.Map{
            "status": "degraded",
            "error":  "database unreachable",
        })
    }
    return c.JSON(http.StatusOK, echo.Map{
        "status":      "ok",
        "connections": h.Hub.ClientCount(),
    })
}
