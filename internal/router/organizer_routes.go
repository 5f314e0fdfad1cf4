package router

import (
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/bus-trip-reservation/internal/handler"
    "github.com/iliyamo/bus-trip-reservation/internal/middleware"
)

// RegisterOrganizer wires the trip management endpoints.  Only users
// carrying the organizer role may publish trips or read passenger
// lists; ownership of a specific trip is enforced in the handler.
func RegisterOrganizer(e *echo.Echo, h *handler.OrganizerHandler, jwtSecret string) {
    g := e.Group("/v1")
    g.Use(middleware.JWTAuth(jwtSecret))
    g.Use(middleware.RequireRole(middleware.RoleOrganizer))

    // Publish a new trip together with its generated seat grid.
    g.POST("/trips", h.CreateTrip)
    // Read the passenger list of one of the organizer's own trips.
    g.GET("/trips/:id/passengers", h.Passengers)
}
