package reservation

import (
    "context"
    "errors"
    "time"

    "github.com/google/uuid"

    "github.com/iliyamo/bus-trip-reservation/internal/model"
    "github.com/iliyamo/bus-trip-reservation/internal/realtime"
    "github.com/iliyamo/bus-trip-reservation/internal/utils"
)

// HoldTTL is the lifetime of a seat hold.  Expiry is a data property
// of the hold row, not a running timer, which keeps lazy expiry
// correct across process restarts.
const HoldTTL = 5 * time.Minute

// Broadcaster pushes engine events into rooms.  The realtime hub
// satisfies it; tests substitute a recorder.  excludeConnID names the
// originating connection so a caller does not receive its own event.
// Delivery order is guaranteed per connection only for events from a
// single actor; a sweep's seat_released may interleave with a newer
// seat_held from another actor on the same seat.  Viewers reconcile
// by refetching the seat map periodically.
type Broadcaster interface {
    BroadcastToTrip(tripID string, msg realtime.Message, excludeConnID string)
    BroadcastToOrganizer(organizerID string, msg realtime.Message, excludeConnID string)
}

// HoldReceipt is returned to the caller of a successful Hold.
type HoldReceipt struct {
    HoldID    string    `json:"hold_id"`
    SeatID    string    `json:"seat_id"`
    ExpiresAt time.Time `json:"expires_at"`
}

// Engine exposes the seat reservation operations.  It validates
// input, delegates each state transition to the ledger as a single
// atomic operation and emits the corresponding realtime event after
// the transition is durable.  The engine never blocks on a contended
// seat.
type Engine struct {
    ledger Ledger
    events Broadcaster
    policy RefundPolicy
    now    func() time.Time
}

// NewEngine constructs an Engine over the given ledger and event
// sink, using the standard refund policy for cancellations.
func NewEngine(ledger Ledger, events Broadcaster) *Engine {
    return &Engine{
        ledger: ledger,
        events: events,
        policy: StandardRefundPolicy,
        now:    time.Now,
    }
}

// Hold places an exclusive 5 minute hold on one seat for holderID.
// The transition is one conditional write: it either wins the race
// or fails immediately with ErrSeatUnavailable, so two concurrent
// calls on the same seat can never both succeed.  originConn, when
// non-empty, is excluded from the seat_held broadcast.
func (e *Engine) Hold(ctx context.Context, tripID, seatID, holderID, originConn string) (*HoldReceipt, error) {
    now := e.now().UTC()
    hold := &model.SeatHold{
        ID:        uuid.NewString(),
        SeatID:    seatID,
        TripID:    tripID,
        UserID:    holderID,
        CreatedAt: now,
        ExpiresAt: now.Add(HoldTTL),
    }
    if err := e.ledger.AcquireHold(ctx, hold); err != nil {
        return nil, err
    }
    e.events.BroadcastToTrip(tripID, realtime.Message{
        Type:   realtime.TypeSeatHeld,
        TripID: tripID,
        SeatID: seatID,
        Data:   map[string]any{"expires_at": hold.ExpiresAt.Format(time.RFC3339)},
    }, originConn)
    return &HoldReceipt{HoldID: hold.ID, SeatID: seatID, ExpiresAt: hold.ExpiresAt}, nil
}

// Release gives up a hold before it expires.  A lapsed hold is a
// no-op success: the seat is already reclaimed (or about to be) and
// the caller has nothing left to do.  Ownership is enforced; a
// mismatched holder gets ErrForbidden and no state change.
func (e *Engine) Release(ctx context.Context, holdID, holderID, originConn string) error {
    released, err := e.ledger.ReleaseHold(ctx, holdID, holderID)
    if errors.Is(err, ErrHoldExpired) {
        // The expired row was reclaimed lazily; viewers still need
        // the event if the seat actually flipped back.
        if released != nil {
            e.broadcastReleased(*released, originConn)
        }
        return nil
    }
    if err != nil {
        return err
    }
    e.broadcastReleased(*released, originConn)
    return nil
}

// Finalize converts holderID's holds on exactly seatIDs into a
// completed booking.  seatIDs is treated as a set: duplicate entries
// collapse to one before any seat is touched, so a repeated id can
// never double-charge or trip the booking_seats key.  All-or-nothing:
// if any hold is missing, expired or foreign the whole call fails
// with ErrHoldInvalid and no seat changes.  On success every seat is
// sold, the holds are gone and exactly one booking exists; a failed
// booking write rolls the seat transition back and surfaces as
// ErrPersistence.
func (e *Engine) Finalize(ctx context.Context, tripID string, seatIDs []string, holderID string, passenger Passenger, originConn string) (*model.Booking, error) {
    seatIDs = dedupeSeats(seatIDs)
    if len(seatIDs) == 0 {
        return nil, ErrHoldInvalid
    }
    booking := &model.Booking{
        ID:             uuid.NewString(),
        Reference:      utils.BookingReference(),
        TripID:         tripID,
        UserID:         holderID,
        PassengerName:  passenger.Name,
        PassengerEmail: passenger.Email,
        PassengerPhone: passenger.Phone,
        SeatIDs:        seatIDs,
        Status:         model.BookingStatusCompleted,
        CreatedAt:      e.now().UTC(),
    }
    organizerID, err := e.ledger.FinalizeHolds(ctx, booking)
    if err != nil {
        return nil, err
    }
    for _, seatID := range seatIDs {
        e.events.BroadcastToTrip(tripID, realtime.Message{
            Type:   realtime.TypeSeatSold,
            TripID: tripID,
            SeatID: seatID,
        }, originConn)
    }
    update := map[string]any{
        "booking_id":        booking.ID,
        "booking_reference": booking.Reference,
        "seat_numbers":      booking.SeatNumbers,
        "total_amount":      booking.TotalAmount,
        "status":            booking.Status,
    }
    e.events.BroadcastToTrip(tripID, realtime.Message{
        Type:   realtime.TypeBookingUpdate,
        TripID: tripID,
        Data:   update,
    }, originConn)
    if organizerID != "" {
        e.events.BroadcastToOrganizer(organizerID, realtime.Message{
            Type:   realtime.TypeBookingUpdate,
            TripID: tripID,
            Data:   update,
        }, originConn)
        e.events.BroadcastToOrganizer(organizerID, realtime.Message{
            Type:   realtime.TypePassengerListUpdate,
            TripID: tripID,
            Data: map[string]any{
                "passenger_name": booking.PassengerName,
                "seat_numbers":   booking.SeatNumbers,
            },
        }, originConn)
    }
    return booking, nil
}

// ListSeats returns the trip's seats with status already reflecting
// lazily expired holds.
func (e *Engine) ListSeats(ctx context.Context, tripID string) ([]model.Seat, error) {
    return e.ledger.ListSeats(ctx, tripID)
}

// CancelBooking cancels holderID's completed booking according to
// the refund policy, reverts the booked seats to available and
// notifies the trip room and the organizer room.
func (e *Engine) CancelBooking(ctx context.Context, bookingID, holderID, originConn string) (*Cancellation, error) {
    cancel, err := e.ledger.CancelBooking(ctx, bookingID, holderID, e.policy)
    if err != nil {
        return nil, err
    }
    for _, seatID := range cancel.SeatIDs {
        e.broadcastReleased(ReleasedSeat{TripID: cancel.TripID, SeatID: seatID}, originConn)
    }
    update := map[string]any{
        "booking_id":        cancel.BookingID,
        "booking_reference": cancel.Reference,
        "status":            model.BookingStatusCancelled,
        "refund_amount":     cancel.Refund,
    }
    e.events.BroadcastToTrip(cancel.TripID, realtime.Message{
        Type:   realtime.TypeBookingUpdate,
        TripID: cancel.TripID,
        Data:   update,
    }, originConn)
    if cancel.OrganizerID != "" {
        e.events.BroadcastToOrganizer(cancel.OrganizerID, realtime.Message{
            Type:   realtime.TypePassengerListUpdate,
            TripID: cancel.TripID,
            Data:   update,
        }, originConn)
    }
    return cancel, nil
}

// dedupeSeats drops repeated ids while preserving first-seen order.
// The caller's slice is left untouched.
func dedupeSeats(ids []string) []string {
    seen := make(map[string]struct{}, len(ids))
    out := make([]string, 0, len(ids))
    for _, id := range ids {
        if _, ok := seen[id]; ok {
            continue
        }
        seen[id] = struct{}{}
        out = append(out, id)
    }
    return out
}

func (e *Engine) broadcastReleased(seat ReleasedSeat, originConn string) {
    e.events.BroadcastToTrip(seat.TripID, realtime.Message{
        Type:   realtime.TypeSeatReleased,
        TripID: seat.TripID,
        SeatID: seat.SeatID,
    }, originConn)
}

// Passenger carries the contact details captured at checkout.
type Passenger struct {
    Name  string
    Email string
    Phone string
}
