package handler

import (
    "context"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/bus-trip-reservation/internal/model"
    "github.com/iliyamo/bus-trip-reservation/internal/queue"
    "github.com/iliyamo/bus-trip-reservation/internal/repository"
    "github.com/iliyamo/bus-trip-reservation/internal/reservation"
    queue_publisher "github.com/iliyamo/bus-trip-reservation/internal/service"
)

// BookingHandler serves the passenger-facing reservation flow: seat
// holds, hold release, booking creation, cancellation and the
// passenger's own booking list.  All methods assume JWT
// authentication already ran; each state transition is delegated to
// the engine, which performs it atomically and emits the realtime
// events.
type BookingHandler struct {
    Engine   *reservation.Engine
    Trips    *repository.TripRepo
    Bookings *repository.BookingRepo
}

// NewBookingHandler constructs a BookingHandler.  All dependencies
// must be non-nil.
func NewBookingHandler(engine *reservation.Engine, trips *repository.TripRepo, bookings *repository.BookingRepo) *BookingHandler {
    if engine == nil || trips == nil || bookings == nil {
        panic("nil dependency passed to NewBookingHandler")
    }
    return &BookingHandler{Engine: engine, Trips: trips, Bookings: bookings}
}

// bookingWindowOpen reports whether bookings are currently accepted
// for the trip.
func bookingWindowOpen(t *model.Trip, now time.Time) bool {
    if t.BookingWindowStart != nil && now.Before(*t.BookingWindowStart) {
        return false
    }
    return now.Before(t.BookingWindowEnd)
}

// HoldSeat handles POST /v1/trips/:id/seats/:seatId/hold.  It places
// an exclusive five minute hold on a single seat.  A seat that is
// already held or sold yields 409 immediately; there is no queueing
// or waiting on a contended seat.
func (h *BookingHandler) HoldSeat(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    tripID := c.Param("id")
    seatID := c.Param("seatId")

    trip, err := h.Trips.GetByID(c.Request().Context(), tripID)
    if err != nil {
        return reservationError(c, err)
    }
    if !bookingWindowOpen(trip, time.Now().UTC()) {
        return c.JSON(http.StatusUnprocessableEntity, echo.Map{
            "error":   "booking_closed",
            "message": "booking window for this trip is closed",
        })
    }

    receipt, err := h.Engine.Hold(c.Request().Context(), tripID, seatID, userID, connectionID(c))
    if err != nil {
        return reservationError(c, err)
    }
    return c.JSON(http.StatusCreated, receipt)
}

// ReleaseHold handles DELETE /v1/holds/:id.  Releasing a hold that
// has already expired is a successful no-op; the seat was (or will
// be) reclaimed anyway.  Releasing another user's hold is 403.
func (h *BookingHandler) ReleaseHold(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    if err := h.Engine.Release(c.Request().Context(), c.Param("id"), userID, connectionID(c)); err != nil {
        return reservationError(c, err)
    }
    return c.NoContent(http.StatusNoContent)
}

// CreateBooking handles POST /v1/trips/:id/bookings.  The request
// converts the caller's active holds on the listed seats into one
// completed booking.  All-or-nothing: a single missing, expired or
// foreign hold fails the whole request with 409 and no seat changes.
func (h *BookingHandler) CreateBooking(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    tripID := c.Param("id")

    var body struct {
        SeatIDs        []string `json:"seat_ids"`
        PassengerName  string   `json:"passenger_name"`
        PassengerEmail string   `json:"passenger_email"`
        PassengerPhone string   `json:"passenger_phone"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if len(body.SeatIDs) == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat_ids is required"})
    }
    if strings.TrimSpace(body.PassengerName) == "" || strings.TrimSpace(body.PassengerEmail) == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "passenger_name and passenger_email are required"})
    }

    trip, err := h.Trips.GetByID(c.Request().Context(), tripID)
    if err != nil {
        return reservationError(c, err)
    }
    if !bookingWindowOpen(trip, time.Now().UTC()) {
        return c.JSON(http.StatusUnprocessableEntity, echo.Map{
            "error":   "booking_closed",
            "message": "booking window for this trip is closed",
        })
    }

    passenger := reservation.Passenger{
        Name:  strings.TrimSpace(body.PassengerName),
        Email: strings.TrimSpace(body.PassengerEmail),
        Phone: strings.TrimSpace(body.PassengerPhone),
    }
    booking, err := h.Engine.Finalize(c.Request().Context(), tripID, body.SeatIDs, userID, passenger, connectionID(c))
    if err != nil {
        return reservationError(c, err)
    }

    // Publish the confirmation event off the request path.  The
    // booking is already durable; a broker outage only delays the
    // confirmation e-mail.
    go publishConfirmation(booking, trip)

    return c.JSON(http.StatusCreated, booking)
}

func publishConfirmation(b *model.Booking, t *model.Trip) {
    ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
    defer cancel()
    _ = queue_publisher.PublishBookingConfirmed(ctx, queue.BookingConfirmedEvent{
        BookingID:        b.ID,
        BookingReference: b.Reference,
        TripID:           b.TripID,
        UserID:           b.UserID,
        RouteFrom:        t.RouteFrom,
        RouteTo:          t.RouteTo,
        DepartureTime:    t.DepartureTime.UTC().Format(time.RFC3339),
        PassengerName:    b.PassengerName,
        PassengerEmail:   b.PassengerEmail,
        SeatNumbers:      b.SeatNumbers,
        TotalAmount:      b.TotalAmount.StringFixed(2),
        ConfirmedAt:      b.CreatedAt.UTC().Format(time.RFC3339),
    })
}

// CancelBooking handles POST /v1/bookings/:id/cancel.  The fee
// depends on how far in the future the departure lies; inside six
// hours the booking can no longer be cancelled.
func (h *BookingHandler) CancelBooking(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    cancel, err := h.Engine.CancelBooking(c.Request().Context(), c.Param("id"), userID, connectionID(c))
    if err != nil {
        return reservationError(c, err)
    }
    return c.JSON(http.StatusOK, cancel)
}

// MyBookings handles GET /v1/my-bookings.  Returns the caller's
// bookings newest first.
func (h *BookingHandler) MyBookings(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    bookings, err := h.Bookings.ListByUser(c.Request().Context(), userID)
    if err != nil {
        return reservationError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"bookings": bookings})
}
