// Package repository provides MySQL-backed persistence for trips,
// seats, holds and bookings.  The SeatLedger in this file is the
// authoritative seat-state store: every transition is one atomic
// conditional statement (guarded INSERT...SELECT or conditional
// UPDATE) executed in a transaction, so racing callers are decided
// by the database, never by read-modify-write in Go.  All
// timestamps are UTC.
package repository

import (
    "context"
    "database/sql"
    "encoding/json"
    "errors"
    "time"

    "github.com/go-sql-driver/mysql"
    "github.com/shopspring/decimal"

    "github.com/iliyamo/bus-trip-reservation/internal/model"
    "github.com/iliyamo/bus-trip-reservation/internal/reservation"
)

// mysqlDuplicateEntry is the server error number for a unique index
// violation, raised when two holds race for the same seat.
const mysqlDuplicateEntry = 1062

// SeatLedger implements reservation.Ledger on top of MySQL.
type SeatLedger struct {
    db *sql.DB
}

// NewSeatLedger returns a SeatLedger bound to the provided database.
func NewSeatLedger(db *sql.DB) *SeatLedger { return &SeatLedger{db: db} }

// DB exposes the underlying handle for callers that need to open
// their own transactions (trip creation shares it).
func (l *SeatLedger) DB() *sql.DB { return l.db }

// ListSeats returns every seat of the trip ordered by row and
// column.  The status column is masked in the query itself: a seat
// whose stored status is held but whose hold has lapsed is reported
// available, so stale rows never leak into availability decisions.
func (l *SeatLedger) ListSeats(ctx context.Context, tripID string) ([]model.Seat, error) {
    var exists int
    err := l.db.QueryRowContext(ctx, `SELECT 1 FROM bus_trips WHERE id = ?`, tripID).Scan(&exists)
    if err == sql.ErrNoRows {
        return nil, reservation.ErrTripNotFound
    }
    if err != nil {
        return nil, err
    }
    const q = `SELECT s.id, s.trip_id, s.seat_number, s.` + "`row_number`" + `, s.column_position,
                      s.price, s.seat_type,
                      CASE
                          WHEN s.status = 'sold' THEN 'sold'
                          WHEN EXISTS (SELECT 1 FROM seat_holds h
                                       WHERE h.seat_id = s.id AND h.expires_at > UTC_TIMESTAMP()) THEN 'held'
                          ELSE 'available'
                      END AS status
               FROM seats s
               WHERE s.trip_id = ?
               ORDER BY s.` + "`row_number`" + `, s.column_position`
    rows, err := l.db.QueryContext(ctx, q, tripID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var seats []model.Seat
    for rows.Next() {
        var s model.Seat
        if err := rows.Scan(&s.ID, &s.TripID, &s.SeatNumber, &s.RowNumber, &s.ColumnPosition, &s.Price, &s.SeatType, &s.Status); err != nil {
            return nil, err
        }
        seats = append(seats, s)
    }
    return seats, rows.Err()
}

// AcquireHold records the hold with one guarded insert.  The insert
// only matches when the seat belongs to the trip, is not sold and
// carries no hold row; an expired row is purged first so it cannot
// block the guard.  Two concurrent winners are impossible: the
// unique index on seat_holds.seat_id turns the losing insert into a
// duplicate-entry error, surfaced as ErrSeatUnavailable.
func (l *SeatLedger) AcquireHold(ctx context.Context, hold *model.SeatHold) error {
    tx, err := l.db.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()
    // Lazy expiry: a lapsed row must read as "no hold".
    if _, err := tx.ExecContext(ctx,
        `DELETE FROM seat_holds WHERE seat_id = ? AND expires_at <= UTC_TIMESTAMP()`,
        hold.SeatID,
    ); err != nil {
        return err
    }
    res, err := tx.ExecContext(ctx,
        `INSERT INTO seat_holds (id, seat_id, trip_id, user_id, expires_at, created_at)
         SELECT ?, s.id, s.trip_id, ?, ?, ?
         FROM seats s
         WHERE s.id = ? AND s.trip_id = ? AND s.status <> 'sold'
           AND NOT EXISTS (SELECT 1 FROM seat_holds h WHERE h.seat_id = s.id)`,
        hold.ID, hold.UserID, hold.ExpiresAt, hold.CreatedAt, hold.SeatID, hold.TripID,
    )
    if err != nil {
        var me *mysql.MySQLError
        if errors.As(err, &me) && me.Number == mysqlDuplicateEntry {
            return reservation.ErrSeatUnavailable
        }
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        // Lost without inserting: either the seat is unknown for
        // this trip or it is held/sold.  Tell the caller which.
        var status string
        err := tx.QueryRowContext(ctx,
            `SELECT status FROM seats WHERE id = ? AND trip_id = ?`,
            hold.SeatID, hold.TripID,
        ).Scan(&status)
        if err == sql.ErrNoRows {
            return reservation.ErrSeatNotFound
        }
        if err != nil {
            return err
        }
        return reservation.ErrSeatUnavailable
    }
    // Refresh the derived status cache.
    if _, err := tx.ExecContext(ctx,
        `UPDATE seats SET status = 'held', updated_at = UTC_TIMESTAMP() WHERE id = ?`,
        hold.SeatID,
    ); err != nil {
        return err
    }
    if err := tx.Commit(); err != nil {
        return err
    }
    committed = true
    return nil
}

// ReleaseHold deletes the hold and reverts the seat.  The hold row
// is locked first so a racing sweep or finalize on the same seat is
// serialized; ownership is checked before anything changes.  A
// lapsed hold is reclaimed here as well (lazy path) and reported as
// ErrHoldExpired with the reverted seat attached when one flipped.
func (l *SeatLedger) ReleaseHold(ctx context.Context, holdID, holderID string) (*reservation.ReleasedSeat, error) {
    tx, err := l.db.BeginTx(ctx, nil)
    if err != nil {
        return nil, err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()
    var (
        seatID, tripID, userID string
        expiresAt              time.Time
    )
    err = tx.QueryRowContext(ctx,
        `SELECT seat_id, trip_id, user_id, expires_at FROM seat_holds WHERE id = ? FOR UPDATE`,
        holdID,
    ).Scan(&seatID, &tripID, &userID, &expiresAt)
    if err == sql.ErrNoRows {
        return nil, reservation.ErrHoldNotFound
    }
    if err != nil {
        return nil, err
    }
    if userID != holderID {
        return nil, reservation.ErrForbidden
    }
    if _, err := tx.ExecContext(ctx, `DELETE FROM seat_holds WHERE id = ?`, holdID); err != nil {
        return nil, err
    }
    res, err := tx.ExecContext(ctx,
        `UPDATE seats SET status = 'available', updated_at = UTC_TIMESTAMP() WHERE id = ? AND status = 'held'`,
        seatID,
    )
    if err != nil {
        return nil, err
    }
    reverted, err := res.RowsAffected()
    if err != nil {
        return nil, err
    }
    if err := tx.Commit(); err != nil {
        return nil, err
    }
    committed = true
    var released *reservation.ReleasedSeat
    if reverted > 0 {
        released = &reservation.ReleasedSeat{TripID: tripID, SeatID: seatID}
    }
    if !expiresAt.After(time.Now().UTC()) {
        return released, reservation.ErrHoldExpired
    }
    return released, nil
}

// FinalizeHolds converts the booking's seats from held to sold and
// persists the booking in one transaction.  Lapsed holds for the
// trip are purged first so they cannot satisfy the ownership check.
// Any missing, expired or foreign hold aborts the whole operation
// with ErrHoldInvalid; a failed booking write rolls everything back
// and surfaces as ErrPersistence.
func (l *SeatLedger) FinalizeHolds(ctx context.Context, booking *model.Booking) (string, error) {
    if len(booking.SeatIDs) == 0 {
        return "", reservation.ErrHoldInvalid
    }
    tx, err := l.db.BeginTx(ctx, nil)
    if err != nil {
        return "", err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()
    if _, err := tx.ExecContext(ctx,
        `DELETE FROM seat_holds WHERE trip_id = ? AND expires_at <= UTC_TIMESTAMP()`,
        booking.TripID,
    ); err != nil {
        return "", err
    }
    var organizerID string
    err = tx.QueryRowContext(ctx,
        `SELECT organizer_id FROM bus_trips WHERE id = ?`, booking.TripID,
    ).Scan(&organizerID)
    if err == sql.ErrNoRows {
        return "", reservation.ErrTripNotFound
    }
    if err != nil {
        return "", err
    }
    // Lock the surviving holds and their seats for the requested set.
    q := `SELECT h.seat_id, h.user_id, s.seat_number, s.price, s.status
          FROM seat_holds h
          JOIN seats s ON s.id = h.seat_id
          WHERE s.trip_id = ? AND h.seat_id IN (` + placeholders(len(booking.SeatIDs)) + `)
          FOR UPDATE`
    args := append([]any{booking.TripID}, toAny(booking.SeatIDs)...)
    rows, err := tx.QueryContext(ctx, q, args...)
    if err != nil {
        return "", err
    }
    type heldSeat struct {
        userID     string
        seatNumber string
        price      decimal.Decimal
        status     string
    }
    held := make(map[string]heldSeat, len(booking.SeatIDs))
    for rows.Next() {
        var sid string
        var hs heldSeat
        if err := rows.Scan(&sid, &hs.userID, &hs.seatNumber, &hs.price, &hs.status); err != nil {
            rows.Close()
            return "", err
        }
        held[sid] = hs
    }
    if err := rows.Close(); err != nil {
        return "", err
    }
    total := decimal.Zero
    seatNumbers := make([]string, 0, len(booking.SeatIDs))
    for _, sid := range booking.SeatIDs {
        hs, ok := held[sid]
        if !ok || hs.userID != booking.UserID || hs.status != model.SeatStatusHeld {
            return "", reservation.ErrHoldInvalid
        }
        total = total.Add(hs.price)
        seatNumbers = append(seatNumbers, hs.seatNumber)
    }
    booking.SeatNumbers = seatNumbers
    booking.TotalAmount = total

    // Booking collaborator write: part of the same unit of work, so
    // a failure here leaves no seat sold and no stray hold deleted.
    seatNumbersJSON, err := json.Marshal(seatNumbers)
    if err != nil {
        return "", err
    }
    if _, err := tx.ExecContext(ctx,
        `INSERT INTO bookings (id, booking_reference, trip_id, user_id, passenger_name,
                               passenger_email, passenger_phone, seat_numbers, total_amount, status, created_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
        booking.ID, booking.Reference, booking.TripID, booking.UserID, booking.PassengerName,
        booking.PassengerEmail, nullable(booking.PassengerPhone), seatNumbersJSON,
        booking.TotalAmount, booking.Status, booking.CreatedAt,
    ); err != nil {
        return "", errors.Join(reservation.ErrPersistence, err)
    }
    insert := `INSERT INTO booking_seats (booking_id, seat_id) VALUES `
    bsArgs := make([]any, 0, len(booking.SeatIDs)*2)
    for i, sid := range booking.SeatIDs {
        if i > 0 {
            insert += ","
        }
        insert += "(?, ?)"
        bsArgs = append(bsArgs, booking.ID, sid)
    }
    if _, err := tx.ExecContext(ctx, insert, bsArgs...); err != nil {
        return "", errors.Join(reservation.ErrPersistence, err)
    }
    if _, err := tx.ExecContext(ctx,
        `UPDATE seats SET status = 'sold', updated_at = UTC_TIMESTAMP()
         WHERE id IN (`+placeholders(len(booking.SeatIDs))+`)`,
        toAny(booking.SeatIDs)...,
    ); err != nil {
        return "", err
    }
    if _, err := tx.ExecContext(ctx,
        `DELETE FROM seat_holds WHERE seat_id IN (`+placeholders(len(booking.SeatIDs))+`)`,
        toAny(booking.SeatIDs)...,
    ); err != nil {
        return "", err
    }
    if err := tx.Commit(); err != nil {
        return "", errors.Join(reservation.ErrPersistence, err)
    }
    committed = true
    return organizerID, nil
}

// ReclaimExpired is the eager expiry path.  It locks every lapsed
// hold, deletes it and reverts its seat unless a racing finalize
// already moved the seat on; only seats that actually flipped back
// are returned.  Running it concurrently with Release or Finalize is
// safe: whichever transaction commits first decides.
func (l *SeatLedger) ReclaimExpired(ctx context.Context) ([]reservation.ReleasedSeat, error) {
    tx, err := l.db.BeginTx(ctx, nil)
    if err != nil {
        return nil, err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()
    rows, err := tx.QueryContext(ctx,
        `SELECT id, seat_id, trip_id FROM seat_holds WHERE expires_at <= UTC_TIMESTAMP() FOR UPDATE`)
    if err != nil {
        return nil, err
    }
    type expiredHold struct {
        id, seatID, tripID string
    }
    var expired []expiredHold
    for rows.Next() {
        var h expiredHold
        if err := rows.Scan(&h.id, &h.seatID, &h.tripID); err != nil {
            rows.Close()
            return nil, err
        }
        expired = append(expired, h)
    }
    if err := rows.Close(); err != nil {
        return nil, err
    }
    if len(expired) == 0 {
        if err := tx.Commit(); err != nil {
            return nil, err
        }
        committed = true
        return nil, nil
    }
    ids := make([]any, 0, len(expired))
    for _, h := range expired {
        ids = append(ids, h.id)
    }
    if _, err := tx.ExecContext(ctx,
        `DELETE FROM seat_holds WHERE id IN (`+placeholders(len(ids))+`)`, ids...,
    ); err != nil {
        return nil, err
    }
    var released []reservation.ReleasedSeat
    for _, h := range expired {
        res, err := tx.ExecContext(ctx,
            `UPDATE seats SET status = 'available', updated_at = UTC_TIMESTAMP()
             WHERE id = ? AND status = 'held'`,
            h.seatID,
        )
        if err != nil {
            return nil, err
        }
        if n, err := res.RowsAffected(); err != nil {
            return nil, err
        } else if n > 0 {
            released = append(released, reservation.ReleasedSeat{TripID: h.tripID, SeatID: h.seatID})
        }
    }
    if err := tx.Commit(); err != nil {
        return nil, err
    }
    committed = true
    return released, nil
}

// CancelBooking cancels a completed booking owned by holderID.  The
// booking row is locked, the refund policy is evaluated against the
// trip's departure time and the booked seats return to available,
// all in one transaction.
func (l *SeatLedger) CancelBooking(ctx context.Context, bookingID, holderID string, policy reservation.RefundPolicy) (*reservation.Cancellation, error) {
    tx, err := l.db.BeginTx(ctx, nil)
    if err != nil {
        return nil, err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()
    var (
        tripID, userID, reference, status, organizerID string
        total                                          decimal.Decimal
        departure                                      time.Time
    )
    err = tx.QueryRowContext(ctx,
        `SELECT b.trip_id, b.user_id, b.booking_reference, b.total_amount, b.status,
                t.departure_time, t.organizer_id
         FROM bookings b
         JOIN bus_trips t ON t.id = b.trip_id
         WHERE b.id = ?
         FOR UPDATE`,
        bookingID,
    ).Scan(&tripID, &userID, &reference, &total, &status, &departure, &organizerID)
    if err == sql.ErrNoRows {
        return nil, reservation.ErrBookingNotFound
    }
    if err != nil {
        return nil, err
    }
    if userID != holderID {
        return nil, reservation.ErrForbidden
    }
    if status != model.BookingStatusCompleted {
        return nil, reservation.ErrBookingNotFound
    }
    hours := int(time.Until(departure).Hours())
    fee, ok := policy(total, hours)
    if !ok {
        return nil, reservation.ErrCancellationClosed
    }
    rows, err := tx.QueryContext(ctx, `SELECT seat_id FROM booking_seats WHERE booking_id = ?`, bookingID)
    if err != nil {
        return nil, err
    }
    var seatIDs []string
    for rows.Next() {
        var sid string
        if err := rows.Scan(&sid); err != nil {
            rows.Close()
            return nil, err
        }
        seatIDs = append(seatIDs, sid)
    }
    if err := rows.Close(); err != nil {
        return nil, err
    }
    if _, err := tx.ExecContext(ctx,
        `UPDATE bookings SET status = 'cancelled' WHERE id = ?`, bookingID,
    ); err != nil {
        return nil, err
    }
    if len(seatIDs) > 0 {
        if _, err := tx.ExecContext(ctx,
            `UPDATE seats SET status = 'available', updated_at = UTC_TIMESTAMP()
             WHERE id IN (`+placeholders(len(seatIDs))+`) AND status = 'sold'`,
            toAny(seatIDs)...,
        ); err != nil {
            return nil, err
        }
    }
    if err := tx.Commit(); err != nil {
        return nil, err
    }
    committed = true
    return &reservation.Cancellation{
        BookingID:            bookingID,
        Reference:            reference,
        TripID:               tripID,
        OrganizerID:          organizerID,
        SeatIDs:              seatIDs,
        TotalAmount:          total,
        Fee:                  fee,
        Refund:               total.Sub(fee),
        HoursBeforeDeparture: hours,
    }, nil
}

// placeholders builds "?, ?, ..." for n parameters.
func placeholders(n int) string {
    if n <= 0 {
        return ""
    }
    b := make([]byte, 0, n*3-2)
    for i := 0; i < n; i++ {
        if i > 0 {
            b = append(b, ',', ' ')
        }
        b = append(b, '?')
    }
    return string(b)
}

func toAny(ss []string) []any {
    out := make([]any, len(ss))
    for i, s := range ss {
        out[i] = s
    }
    return out
}

func nullable(s string) any {
    if s == "" {
        return nil
    }
    return s
}
