package router

import (
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/bus-trip-reservation/internal/handler"
    "github.com/iliyamo/bus-trip-reservation/internal/middleware"
)

// RegisterPassenger wires the seat reservation flow under /v1.  All
// routes require a valid access token and the passenger role; the
// hold endpoint additionally runs the rate limiter so one client
// cannot hammer a contended seat.
func RegisterPassenger(e *echo.Echo, h *handler.BookingHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
    g := e.Group("/v1")
    // Validate the bearer token and extract user_id/role for handlers.
    g.Use(middleware.JWTAuth(jwtSecret))
    g.Use(middleware.RequireRole(middleware.RolePassenger, middleware.RoleOrganizer))

    // Place an exclusive five minute hold on one seat.
    g.POST("/trips/:id/seats/:seatId/hold", h.HoldSeat, limiter)
    // Give up a hold before it expires.
    g.DELETE("/holds/:id", h.ReleaseHold)
    // Convert active holds into a completed booking.
    g.POST("/trips/:id/bookings", h.CreateBooking)
    // Cancel a completed booking subject to the refund policy.
    g.POST("/bookings/:id/cancel", h.CancelBooking)
    // List the caller's bookings.
    g.GET("/my-bookings", h.MyBookings)
}
