package router // package router defines how HTTP routes are registered for the API

import (
    "github.com/labstack/echo/v4" // import the Echo web framework to handle routing

    "github.com/iliyamo/bus-trip-reservation/internal/handler" // import the handlers that implement business logic
)

// RegisterRoutes registers routes that do not require authentication
// on the provided Echo instance: the health check and the realtime
// WebSocket endpoint.
func RegisterRoutes(e *echo.Echo, h *handler.HealthHandler, ws *handler.WSHandler) {
    // Map the GET request at path "/healthz" to the Health handler.  This
    // endpoint can be used by load balancers or monitoring systems to verify
    // that the service is up and running.
    e.GET("/healthz", h.Health)
    // The WebSocket endpoint carries all realtime seat and booking
    // events.  Room membership is negotiated over the socket itself,
    // so no JWT is required to connect.
    e.GET("/ws", ws.Serve)
}

// RegisterPublic registers unauthenticated browse endpoints.  The
// trip catalogue sits behind the Redis response cache; the seat map
// does not, because seat availability must never be served stale.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, cache echo.MiddlewareFunc) {
    // Expose the list of upcoming trips (cached).
    e.GET("/v1/trips", p.ListTrips, cache)
    // Trip details by trip id (cached).
    e.GET("/v1/trips/:id", p.GetTrip, cache)
    // Live seat map for a trip.  Status already reflects lazily
    // expired holds, so this is always the current truth.
    e.GET("/v1/trips/:id/seats", p.ListSeats)
}
