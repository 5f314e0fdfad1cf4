package model

import (
    "time"

    "github.com/shopspring/decimal"
)

// Trip describes a scheduled bus trip published by an organizer.
// Seats are created together with the trip and live for as long as
// the trip exists.  Bookings may only be created while the booking
// window is open.
//
// Fields:
//  ID                 – primary key identifier (UUID).
//  OrganizerID        – user who published the trip.
//  RouteFrom          – departure city or stop.
//  RouteTo            – destination city or stop.
//  DepartureTime      – scheduled departure.
//  ArrivalTime        – scheduled arrival.
//  BasePrice          – base seat price used when generating the seat grid.
//  BusType            – bus category (standard, luxury, double_decker).
//  TotalSeats         – number of seats generated for the trip.
//  BookingWindowStart – earliest time bookings are accepted (nullable).
//  BookingWindowEnd   – latest time bookings are accepted.
//  CreatedAt          – creation timestamp.
type Trip struct {
    ID                 string          // bus_trips.id
    OrganizerID        string          // bus_trips.organizer_id
    RouteFrom          string          // bus_trips.route_from
    RouteTo            string          // bus_trips.route_to
    DepartureTime      time.Time       // bus_trips.departure_time
    ArrivalTime        time.Time       // bus_trips.arrival_time
    BasePrice          decimal.Decimal // bus_trips.base_price
    BusType            string          // bus_trips.bus_type
    TotalSeats         uint32          // bus_trips.total_seats
    BookingWindowStart *time.Time      // bus_trips.booking_window_start (nullable)
    BookingWindowEnd   time.Time       // bus_trips.booking_window_end
    CreatedAt          time.Time       // bus_trips.created_at
}

// Bus types accepted for a trip.
const (
    BusTypeStandard     = "standard"
    BusTypeLuxury       = "luxury"
    BusTypeDoubleDecker = "double_decker"
)

// ValidBusType reports whether t is one of the accepted bus categories.
func ValidBusType(t string) bool {
    switch t {
    case BusTypeStandard, BusTypeLuxury, BusTypeDoubleDecker:
        return true
    }
    return false
}
