package repository

import (
    "context"
    "database/sql"
    "fmt"
    "time"

    "github.com/shopspring/decimal"

    "github.com/iliyamo/bus-trip-reservation/internal/model"
    "github.com/iliyamo/bus-trip-reservation/internal/reservation"
)

// TripRepo provides data access to bus_trips and the seat grid
// created alongside each trip.
type TripRepo struct {
    db *sql.DB
}

// NewTripRepo returns a TripRepo bound to the provided database.
func NewTripRepo(db *sql.DB) *TripRepo { return &TripRepo{db: db} }

// seatColumns is the fixed number of seats per row in the generated
// grid (2+2 with a central aisle).  Columns 1 and 4 are window
// seats.
const seatColumns = 4

// windowUplift is the relative price increase for window seats.
var windowUplift = decimal.NewFromFloat(0.10)

// Create inserts the trip together with its full seat grid in one
// transaction.  Seats exist exactly as long as their trip does; a
// trip is never published without its seats.
func (r *TripRepo) Create(ctx context.Context, trip *model.Trip, seats []model.Seat) error {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()
    if _, err := tx.ExecContext(ctx,
        `INSERT INTO bus_trips (id, organizer_id, route_from, route_to, departure_time, arrival_time,
                                base_price, bus_type, total_seats, booking_window_start, booking_window_end, created_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
        trip.ID, trip.OrganizerID, trip.RouteFrom, trip.RouteTo, trip.DepartureTime, trip.ArrivalTime,
        trip.BasePrice, trip.BusType, trip.TotalSeats, trip.BookingWindowStart, trip.BookingWindowEnd,
        trip.CreatedAt,
    ); err != nil {
        return err
    }
    if len(seats) > 0 {
        query := `INSERT INTO seats (id, trip_id, seat_number, ` + "`row_number`" + `, column_position, price, seat_type, status) VALUES `
        args := make([]any, 0, len(seats)*8)
        for i, s := range seats {
            if i > 0 {
                query += ","
            }
            query += "(?, ?, ?, ?, ?, ?, ?, ?)"
            args = append(args, s.ID, s.TripID, s.SeatNumber, s.RowNumber, s.ColumnPosition, s.Price, s.SeatType, s.Status)
        }
        if _, err := tx.ExecContext(ctx, query, args...); err != nil {
            return err
        }
    }
    if err := tx.Commit(); err != nil {
        return err
    }
    committed = true
    return nil
}

// GetByID loads a single trip.  Returns reservation.ErrTripNotFound
// when no trip with the given id exists.
func (r *TripRepo) GetByID(ctx context.Context, id string) (*model.Trip, error) {
    const q = `SELECT id, organizer_id, route_from, route_to, departure_time, arrival_time,
                      base_price, bus_type, total_seats, booking_window_start, booking_window_end, created_at
               FROM bus_trips WHERE id = ?`
    var t model.Trip
    var windowStart sql.NullTime
    err := r.db.QueryRowContext(ctx, q, id).Scan(
        &t.ID, &t.OrganizerID, &t.RouteFrom, &t.RouteTo, &t.DepartureTime, &t.ArrivalTime,
        &t.BasePrice, &t.BusType, &t.TotalSeats, &windowStart, &t.BookingWindowEnd, &t.CreatedAt,
    )
    if err == sql.ErrNoRows {
        return nil, reservation.ErrTripNotFound
    }
    if err != nil {
        return nil, err
    }
    if windowStart.Valid {
        ws := windowStart.Time
        t.BookingWindowStart = &ws
    }
    return &t, nil
}

// ListUpcoming returns trips whose departure lies in the future,
// soonest first.  Used by the public browse endpoints.
func (r *TripRepo) ListUpcoming(ctx context.Context) ([]model.Trip, error) {
    const q = `SELECT id, organizer_id, route_from, route_to, departure_time, arrival_time,
                      base_price, bus_type, total_seats, booking_window_start, booking_window_end, created_at
               FROM bus_trips
               WHERE departure_time > UTC_TIMESTAMP()
               ORDER BY departure_time ASC`
    rows, err := r.db.QueryContext(ctx, q)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var trips []model.Trip
    for rows.Next() {
        var t model.Trip
        var windowStart sql.NullTime
        if err := rows.Scan(
            &t.ID, &t.OrganizerID, &t.RouteFrom, &t.RouteTo, &t.DepartureTime, &t.ArrivalTime,
            &t.BasePrice, &t.BusType, &t.TotalSeats, &windowStart, &t.BookingWindowEnd, &t.CreatedAt,
        ); err != nil {
            return nil, err
        }
        if windowStart.Valid {
            ws := windowStart.Time
            t.BookingWindowStart = &ws
        }
        trips = append(trips, t)
    }
    return trips, rows.Err()
}

// GenerateSeatGrid builds the seat rows for a new trip: four seats
// per row labelled A-D, window seats on the outside with a price
// uplift over the trip's base price.  Seat IDs are assigned by the
// caller-provided newID function so tests can keep them stable.
func GenerateSeatGrid(tripID string, totalSeats uint32, basePrice decimal.Decimal, newID func() string) []model.Seat {
    seats := make([]model.Seat, 0, totalSeats)
    windowPrice := basePrice.Add(basePrice.Mul(windowUplift)).Round(2)
    now := time.Now().UTC()
    for i := uint32(0); i < totalSeats; i++ {
        row := i/seatColumns + 1
        col := i%seatColumns + 1
        seatType := model.SeatTypeAisle
        price := basePrice
        if col == 1 || col == seatColumns {
            seatType = model.SeatTypeWindow
            price = windowPrice
        }
        seats = append(seats, model.Seat{
            ID:             newID(),
            TripID:         tripID,
            SeatNumber:     fmt.Sprintf("%d%c", row, 'A'+rune(col-1)),
            RowNumber:      row,
            ColumnPosition: col,
            Price:          price,
            SeatType:       seatType,
            Status:         model.SeatStatusAvailable,
            UpdatedAt:      now,
        })
    }
    return seats
}
