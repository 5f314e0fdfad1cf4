package repository

import (
    "context"
    "database/sql"
    "encoding/json"
    "time"

    "github.com/shopspring/decimal"
)

// BookingRepo provides read access to bookings.  Booking writes
// happen inside the SeatLedger's finalize and cancel transactions;
// this repository only serves listing endpoints.
type BookingRepo struct {
    db *sql.DB
}

// NewBookingRepo returns a BookingRepo bound to the provided database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// BookingSummary is the listing shape returned to passengers.
type BookingSummary struct {
    ID          string          `json:"id"`
    Reference   string          `json:"booking_reference"`
    TripID      string          `json:"trip_id"`
    RouteFrom   string          `json:"route_from"`
    RouteTo     string          `json:"route_to"`
    Departure   time.Time       `json:"departure_time"`
    SeatNumbers []string        `json:"seat_numbers"`
    TotalAmount decimal.Decimal `json:"total_amount"`
    Status      string          `json:"status"`
    CreatedAt   time.Time       `json:"created_at"`
}

// ListByUser returns all bookings created by the given user, newest
// first, together with the trip route for display.
func (r *BookingRepo) ListByUser(ctx context.Context, userID string) ([]BookingSummary, error) {
    const q = `SELECT b.id, b.booking_reference, b.trip_id, t.route_from, t.route_to, t.departure_time,
                      b.seat_numbers, b.total_amount, b.status, b.created_at
               FROM bookings b
               JOIN bus_trips t ON t.id = b.trip_id
               WHERE b.user_id = ?
               ORDER BY b.created_at DESC`
    rows, err := r.db.QueryContext(ctx, q, userID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var out []BookingSummary
    for rows.Next() {
        var b BookingSummary
        var seatNumbers []byte
        if err := rows.Scan(&b.ID, &b.Reference, &b.TripID, &b.RouteFrom, &b.RouteTo, &b.Departure,
            &seatNumbers, &b.TotalAmount, &b.Status, &b.CreatedAt); err != nil {
            return nil, err
        }
        if err := json.Unmarshal(seatNumbers, &b.SeatNumbers); err != nil {
            return nil, err
        }
        out = append(out, b)
    }
    return out, rows.Err()
}

// PassengerEntry is one row of the organizer's passenger list.
type PassengerEntry struct {
    BookingReference string   `json:"booking_reference"`
    PassengerName    string   `json:"passenger_name"`
    PassengerEmail   string   `json:"passenger_email"`
    PassengerPhone   string   `json:"passenger_phone,omitempty"`
    SeatNumbers      []string `json:"seat_numbers"`
}

// PassengersByTrip returns the passenger list of a trip: one entry
// per completed booking with the seats it claimed.
func (r *BookingRepo) PassengersByTrip(ctx context.Context, tripID string) ([]PassengerEntry, error) {
    const q = `SELECT booking_reference, passenger_name, passenger_email, passenger_phone, seat_numbers
               FROM bookings
               WHERE trip_id = ? AND status = 'completed'
               ORDER BY created_at ASC`
    rows, err := r.db.QueryContext(ctx, q, tripID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var out []PassengerEntry
    for rows.Next() {
        var p PassengerEntry
        var phone sql.NullString
        var seatNumbers []byte
        if err := rows.Scan(&p.BookingReference, &p.PassengerName, &p.PassengerEmail, &phone, &seatNumbers); err != nil {
            return nil, err
        }
        if phone.Valid {
            p.PassengerPhone = phone.String
        }
        if err := json.Unmarshal(seatNumbers, &p.SeatNumbers); err != nil {
            return nil, err
        }
        out = append(out, p)
    }
    return out, rows.Err()
}
