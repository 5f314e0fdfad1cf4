package handler

import (
    "errors"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/bus-trip-reservation/internal/reservation"
)

// getUserID extracts the authenticated user's ID from the echo
// context.  JWTAuth stores the token subject under "user_id"; an
// absent or non-string value means the route was wired without the
// middleware and the request must be rejected.
func getUserID(c echo.Context) (string, error) {
    v := c.Get("user_id")
    id, ok := v.(string)
    if !ok || id == "" {
        return "", errors.New("user id missing from context")
    }
    return id, nil
}

// connectionID returns the caller's realtime connection ID, taken
// from the X-Connection-ID header.  A client that sends it will not
// receive its own seat events back over the socket.  The value is
// advisory; an unknown or empty ID simply excludes nobody.
func connectionID(c echo.Context) string {
    return c.Request().Header.Get("X-Connection-ID")
}

// reservationError translates the reservation package's sentinel
// errors into JSON responses.  Anything unrecognized is a 500 so that
// database failures never leak driver details to the client.
func reservationError(c echo.Context, err error) error {
    switch {
    case errors.Is(err, reservation.ErrSeatUnavailable):
        return c.JSON(http.StatusConflict, echo.Map{"error": "seat_unavailable", "message": "seat is not available"})
    case errors.Is(err, reservation.ErrSeatNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "seat_not_found", "message": "seat not found"})
    case errors.Is(err, reservation.ErrTripNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "trip_not_found", "message": "trip not found"})
    case errors.Is(err, reservation.ErrHoldNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "hold_not_found", "message": "hold not found"})
    case errors.Is(err, reservation.ErrBookingNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "booking_not_found", "message": "booking not found"})
    case errors.Is(err, reservation.ErrForbidden):
        return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden", "message": "resource belongs to another user"})
    case errors.Is(err, reservation.ErrHoldInvalid):
        return c.JSON(http.StatusConflict, echo.Map{"error": "hold_invalid", "message": "one or more holds are missing, expired or owned by another user"})
    case errors.Is(err, reservation.ErrCancellationClosed):
        return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "cancellation_closed", "message": "booking can no longer be cancelled"})
    case errors.Is(err, reservation.ErrPersistence):
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "persistence_failure", "message": "booking could not be written"})
    default:
        c.Logger().Errorf("reservation: %v", err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal", "message": "database error"})
    }
}
