package reservation

import (
    "context"

    "github.com/shopspring/decimal"

    "github.com/iliyamo/bus-trip-reservation/internal/model"
)

// ReleasedSeat identifies a seat that returned to availability, with
// enough context to route the seat_released event to its trip room.
type ReleasedSeat struct {
    TripID string
    SeatID string
}

// Cancellation is the outcome of cancelling a booking: which seats
// were reverted and how the paid amount splits into fee and refund.
type Cancellation struct {
    BookingID            string          `json:"booking_id"`
    Reference            string          `json:"booking_reference"`
    TripID               string          `json:"trip_id"`
    OrganizerID          string          `json:"-"`
    SeatIDs              []string        `json:"seat_ids"`
    TotalAmount          decimal.Decimal `json:"total_amount"`
    Fee                  decimal.Decimal `json:"cancellation_fee"`
    Refund               decimal.Decimal `json:"refund_amount"`
    HoursBeforeDeparture int             `json:"hours_before_departure"`
}

// RefundPolicy computes the cancellation fee for a booking total at
// the given distance from departure.  It reports cancellable=false
// when the booking may no longer be cancelled at all.  The policy is
// business logic layered on top of the engine and is evaluated
// inside the cancellation transaction.
type RefundPolicy func(total decimal.Decimal, hoursBeforeDeparture int) (fee decimal.Decimal, cancellable bool)

// Ledger is the authoritative record of seat state.  Every method is
// one atomic transition: implementations must guarantee that two
// racing calls over the same seat cannot both succeed, and that a
// lapsed hold (expires_at <= now) is treated as absent by every read
// and write regardless of whether the sweep has removed the row.
// All failures are reported with the sentinel errors of this package.
type Ledger interface {
    // ListSeats returns every seat of the trip with status already
    // reflecting lazily expired holds.
    ListSeats(ctx context.Context, tripID string) ([]model.Seat, error)

    // AcquireHold records the hold if and only if the seat exists on
    // the trip, is not sold and carries no active hold.  It either
    // wins the race or fails immediately with ErrSeatUnavailable.
    AcquireHold(ctx context.Context, hold *model.SeatHold) error

    // ReleaseHold deletes the hold owned by holderID and reverts its
    // seat to available.  On ErrHoldExpired the lapsed row has been
    // reclaimed as a side effect; the returned seat is non-nil when a
    // seat actually changed state.
    ReleaseHold(ctx context.Context, holdID, holderID string) (*ReleasedSeat, error)

    // FinalizeHolds converts the booking's seat set from held to sold
    // and persists the booking, all within one unit of work.  Every
    // seat must carry an unexpired hold owned by booking.UserID or
    // the whole operation fails with ErrHoldInvalid and nothing
    // changes.  On success booking.SeatNumbers and
    // booking.TotalAmount are populated and the trip's organizer id
    // is returned for event routing.
    FinalizeHolds(ctx context.Context, booking *model.Booking) (organizerID string, err error)

    // ReclaimExpired deletes every lapsed hold and reverts its seat
    // to available unless the seat is already sold.  It returns the
    // seats that actually changed state and is safe to race against
    // in-flight Release and Finalize calls.
    ReclaimExpired(ctx context.Context) ([]ReleasedSeat, error)

    // CancelBooking cancels holderID's completed booking, reverting
    // its seats to available.  The policy decides the fee from the
    // trip's departure time; ErrCancellationClosed is returned when
    // it refuses.
    CancelBooking(ctx context.Context, bookingID, holderID string, policy RefundPolicy) (*Cancellation, error)
}
