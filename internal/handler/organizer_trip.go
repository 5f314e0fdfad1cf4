package handler

import (
    "net/http"
    "strings"
    "time"

    "github.com/google/uuid"
    "github.com/labstack/echo/v4"
    "github.com/shopspring/decimal"

    "github.com/iliyamo/bus-trip-reservation/internal/model"
    "github.com/iliyamo/bus-trip-reservation/internal/repository"
)

// OrganizerHandler serves the organizer-facing endpoints: publishing
// trips and reading the passenger list.  RequireRole(organizer) is
// applied by the router; ownership of the trip is still re-checked
// here because the role alone does not grant access to other
// organizers' trips.
type OrganizerHandler struct {
    Trips    *repository.TripRepo
    Bookings *repository.BookingRepo
}

// NewOrganizerHandler constructs an OrganizerHandler.
func NewOrganizerHandler(trips *repository.TripRepo, bookings *repository.BookingRepo) *OrganizerHandler {
    if trips == nil || bookings == nil {
        panic("nil dependency passed to NewOrganizerHandler")
    }
    return &OrganizerHandler{Trips: trips, Bookings: bookings}
}

// maxTripSeats bounds the generated grid so a typo in total_seats
// cannot create an unbounded insert.
const maxTripSeats = 120

// CreateTrip handles POST /v1/trips.  The trip and its full seat grid
// are written in one transaction; a trip is never visible without its
// seats.
func (h *OrganizerHandler) CreateTrip(c echo.Context) error {
    organizerID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }

    var body struct {
        RouteFrom          string  `json:"route_from"`
        RouteTo            string  `json:"route_to"`
        DepartureTime      string  `json:"departure_time"`
        ArrivalTime        string  `json:"arrival_time"`
        BasePrice          string  `json:"base_price"`
        BusType            string  `json:"bus_type"`
        TotalSeats         uint32  `json:"total_seats"`
        BookingWindowStart *string `json:"booking_window_start"`
        BookingWindowEnd   *string `json:"booking_window_end"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if strings.TrimSpace(body.RouteFrom) == "" || strings.TrimSpace(body.RouteTo) == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "route_from and route_to are required"})
    }
    if body.TotalSeats == 0 || body.TotalSeats > maxTripSeats {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "total_seats must be between 1 and 120"})
    }
    if !model.ValidBusType(body.BusType) {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid bus_type"})
    }

    departure, err := time.Parse(time.RFC3339, body.DepartureTime)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid departure_time"})
    }
    arrival, err := time.Parse(time.RFC3339, body.ArrivalTime)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid arrival_time"})
    }
    if !arrival.After(departure) {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "arrival_time must be after departure_time"})
    }
    basePrice, err := decimal.NewFromString(body.BasePrice)
    if err != nil || basePrice.IsNegative() || basePrice.IsZero() {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "base_price must be a positive decimal"})
    }

    // The window defaults to "now until departure" when omitted.
    windowEnd := departure
    if body.BookingWindowEnd != nil {
        windowEnd, err = time.Parse(time.RFC3339, *body.BookingWindowEnd)
        if err != nil || windowEnd.After(departure) {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking_window_end"})
        }
    }
    var windowStart *time.Time
    if body.BookingWindowStart != nil {
        ws, err := time.Parse(time.RFC3339, *body.BookingWindowStart)
        if err != nil || !ws.Before(windowEnd) {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking_window_start"})
        }
        windowStart = &ws
    }

    trip := &model.Trip{
        ID:                 uuid.NewString(),
        OrganizerID:        organizerID,
        RouteFrom:          strings.TrimSpace(body.RouteFrom),
        RouteTo:            strings.TrimSpace(body.RouteTo),
        DepartureTime:      departure.UTC(),
        ArrivalTime:        arrival.UTC(),
        BasePrice:          basePrice,
        BusType:            body.BusType,
        TotalSeats:         body.TotalSeats,
        BookingWindowStart: windowStart,
        BookingWindowEnd:   windowEnd.UTC(),
        CreatedAt:          time.Now().UTC(),
    }
    seats := repository.GenerateSeatGrid(trip.ID, trip.TotalSeats, trip.BasePrice, uuid.NewString)

    if err := h.Trips.Create(c.Request().Context(), trip, seats); err != nil {
        return reservationError(c, err)
    }
    return c.JSON(http.StatusCreated, echo.Map{
        "id":          trip.ID,
        "total_seats": trip.TotalSeats,
        "seats":       seats,
    })
}

// Passengers handles GET /v1/trips/:id/passengers.  Only the trip's
// own organizer may read the list.
func (h *OrganizerHandler) Passengers(c echo.Context) error {
    organizerID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    tripID := c.Param("id")
    trip, err := h.Trips.GetByID(c.Request().Context(), tripID)
    if err != nil {
        return reservationError(c, err)
    }
    if trip.OrganizerID != organizerID {
        return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden", "message": "trip belongs to another organizer"})
    }
    passengers, err := h.Bookings.PassengersByTrip(c.Request().Context(), tripID)
    if err != nil {
        return reservationError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"trip_id": tripID, "passengers": passengers})
}
