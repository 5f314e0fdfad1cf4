package model

import (
    "time"

    "github.com/shopspring/decimal"
)

// Booking statuses.  A booking is created as completed (payment
// capture is external to this service) and may only transition to
// cancelled afterwards.
const (
    BookingStatusCompleted = "completed"
    BookingStatusCancelled = "cancelled"
)

// Booking groups the sold seats of a single finalize operation.  It
// is created atomically with the seats' transition to sold; a
// booking must never exist without its seats being sold, nor the
// other way around.
//
// Fields:
//  ID             – primary key identifier (UUID).
//  Reference      – human readable booking reference ("BF-..." code).
//  TripID         – trip the seats belong to.
//  UserID         – opaque identifier of the passenger who booked.
//  PassengerName  – contact name captured at checkout.
//  PassengerEmail – contact e-mail captured at checkout.
//  PassengerPhone – optional contact phone.
//  SeatIDs        – seats claimed by this booking.
//  SeatNumbers    – human readable labels of the claimed seats.
//  TotalAmount    – sum of the seat prices at finalize time.
//  Status         – completed or cancelled.
//  CreatedAt      – creation timestamp.
type Booking struct {
    ID             string          `json:"id"`
    Reference      string          `json:"booking_reference"`
    TripID         string          `json:"trip_id"`
    UserID         string          `json:"user_id"`
    PassengerName  string          `json:"passenger_name"`
    PassengerEmail string          `json:"passenger_email"`
    PassengerPhone string          `json:"passenger_phone,omitempty"`
    SeatIDs        []string        `json:"seat_ids"`
    SeatNumbers    []string        `json:"seat_numbers"`
    TotalAmount    decimal.Decimal `json:"total_amount"`
    Status         string          `json:"status"`
    CreatedAt      time.Time       `json:"created_at"`
}
