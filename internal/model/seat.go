package model

import (
    "time"

    "github.com/shopspring/decimal"
)

// Seat statuses.  The stored status column is a cache of derived
// state: a seat is held exactly while an unexpired hold row exists
// for it and sold exactly while a completed booking claims it.
// Readers must mask a stored "held" whose hold has already expired.
const (
    SeatStatusAvailable = "available"
    SeatStatusHeld      = "held"
    SeatStatusSold      = "sold"
)

// Seat types as generated for the seat grid.
const (
    SeatTypeWindow = "window"
    SeatTypeAisle  = "aisle"
)

// Seat describes a physical seat on a trip's bus.  Seats are
// uniquely identified by their trip, row number and column position.
// The price may differ from the trip's base price (window seats
// carry an uplift).
//
// Fields:
//  ID             – primary key identifier (UUID).
//  TripID         – trip to which this seat belongs.
//  SeatNumber     – human readable label such as "3C".
//  RowNumber      – row of the seat, starting at 1.
//  ColumnPosition – column within the row, starting at 1.
//  Price          – price for this seat.
//  SeatType       – window or aisle.
//  Status         – available, held or sold (see constants above).
//  UpdatedAt      – last status transition timestamp.
type Seat struct {
    ID             string          `json:"id"`              // seats.id
    TripID         string          `json:"trip_id"`         // seats.trip_id
    SeatNumber     string          `json:"seat_number"`     // seats.seat_number
    RowNumber      uint32          `json:"row_number"`      // seats.row_number
    ColumnPosition uint32          `json:"column_position"` // seats.column_position
    Price          decimal.Decimal `json:"price"`           // seats.price
    SeatType       string          `json:"seat_type"`       // seats.seat_type
    Status         string          `json:"status"`          // seats.status
    UpdatedAt      time.Time       `json:"-"`               // seats.updated_at
}
