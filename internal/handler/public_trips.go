package handler

import (
    "net/http"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/shopspring/decimal"

    "github.com/iliyamo/bus-trip-reservation/internal/model"
    "github.com/iliyamo/bus-trip-reservation/internal/repository"
    "github.com/iliyamo/bus-trip-reservation/internal/reservation"
)

// PublicHandler serves the unauthenticated browse endpoints: the trip
// catalogue and the live seat map.  The list endpoints sit behind the
// Redis response cache; the seat map never does, because held seats
// must be seen as held the moment the hold lands.
type PublicHandler struct {
    Trips  *repository.TripRepo
    Engine *reservation.Engine
}

// NewPublicHandler constructs a PublicHandler.
func NewPublicHandler(trips *repository.TripRepo, engine *reservation.Engine) *PublicHandler {
    return &PublicHandler{Trips: trips, Engine: engine}
}

// tripView is the JSON shape of a trip in list and detail responses.
type tripView struct {
    ID                 string          `json:"id"`
    RouteFrom          string          `json:"route_from"`
    RouteTo            string          `json:"route_to"`
    DepartureTime      time.Time       `json:"departure_time"`
    ArrivalTime        time.Time       `json:"arrival_time"`
    BasePrice          decimal.Decimal `json:"base_price"`
    BusType            string          `json:"bus_type"`
    TotalSeats         uint32          `json:"total_seats"`
    BookingWindowStart *time.Time      `json:"booking_window_start,omitempty"`
    BookingWindowEnd   time.Time       `json:"booking_window_end"`
}

func toTripView(t model.Trip) tripView {
    return tripView{
        ID:                 t.ID,
        RouteFrom:          t.RouteFrom,
        RouteTo:            t.RouteTo,
        DepartureTime:      t.DepartureTime,
        ArrivalTime:        t.ArrivalTime,
        BasePrice:          t.BasePrice,
        BusType:            t.BusType,
        TotalSeats:         t.TotalSeats,
        BookingWindowStart: t.BookingWindowStart,
        BookingWindowEnd:   t.BookingWindowEnd,
    }
}

// ListTrips handles GET /v1/trips.  Returns upcoming trips ordered by
// departure time.
func (h *PublicHandler) ListTrips(c echo.Context) error {
    trips, err := h.Trips.ListUpcoming(c.Request().Context())
    if err != nil {
        return reservationError(c, err)
    }
    views := make([]tripView, 0, len(trips))
    for _, t := range trips {
        views = append(views, toTripView(t))
    }
    return c.JSON(http.StatusOK, echo.Map{"trips": views})
}

// GetTrip handles GET /v1/trips/:id.
func (h *PublicHandler) GetTrip(c echo.Context) error {
    trip, err := h.Trips.GetByID(c.Request().Context(), c.Param("id"))
    if err != nil {
        return reservationError(c, err)
    }
    return c.JSON(http.StatusOK, toTripView(*trip))
}

// ListSeats handles GET /v1/trips/:id/seats.  The returned statuses
// already account for expired holds: a seat whose hold has lapsed
// reads as available even before the sweeper reclaims the row.
func (h *PublicHandler) ListSeats(c echo.Context) error {
    seats, err := h.Engine.ListSeats(c.Request().Context(), c.Param("id"))
    if err != nil {
        return reservationError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"seats": seats})
}
