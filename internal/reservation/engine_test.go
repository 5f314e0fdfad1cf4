package reservation

import (
    "context"
    "errors"
    "fmt"
    "sync"
    "testing"
    "time"

    "github.com/shopspring/decimal"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/bus-trip-reservation/internal/model"
    "github.com/iliyamo/bus-trip-reservation/internal/realtime"
)

// memLedger is an in-memory Ledger used to test the engine without a
// database.  A single mutex makes every method one atomic transition,
// mirroring the transactional guarantees of the MySQL implementation.
type memLedger struct {
    mu         sync.Mutex
    now        func() time.Time
    seats      map[string]*model.Seat     // seat id -> seat
    holds      map[string]*model.SeatHold // hold id -> hold
    holdBySeat map[string]string          // seat id -> hold id
    bookings   map[string]*model.Booking
    organizers map[string]string // trip id -> organizer id
    departures map[string]time.Time
    bookingErr error // injected booking-write failure
}

func newMemLedger(now func() time.Time) *memLedger {
    return &memLedger{
        now:        now,
        seats:      make(map[string]*model.Seat),
        holds:      make(map[string]*model.SeatHold),
        holdBySeat: make(map[string]string),
        bookings:   make(map[string]*model.Booking),
        organizers: make(map[string]string),
        departures: make(map[string]time.Time),
    }
}

func (l *memLedger) addTrip(tripID, organizerID string, departure time.Time) {
    l.organizers[tripID] = organizerID
    l.departures[tripID] = departure
}

func (l *memLedger) addSeat(id, tripID, number string, price int64) {
    l.seats[id] = &model.Seat{
        ID:         id,
        TripID:     tripID,
        SeatNumber: number,
        Price:      decimal.NewFromInt(price),
        SeatType:   model.SeatTypeAisle,
        Status:     model.SeatStatusAvailable,
    }
}

func (l *memLedger) expired(h *model.SeatHold) bool {
    return h.Expired(l.now())
}

// dropExpired removes a lapsed hold for the seat, if any, reverting
// the seat unless it was sold.
func (l *memLedger) dropExpired(seatID string) {
    holdID, ok := l.holdBySeat[seatID]
    if !ok {
        return
    }
    h := l.holds[holdID]
    if !l.expired(h) {
        return
    }
    delete(l.holds, holdID)
    delete(l.holdBySeat, seatID)
    if s := l.seats[seatID]; s.Status == model.SeatStatusHeld {
        s.Status = model.SeatStatusAvailable
    }
}

func (l *memLedger) ListSeats(_ context.Context, tripID string) ([]model.Seat, error) {
    l.mu.Lock()
    defer l.mu.Unlock()
    if _, ok := l.organizers[tripID]; !ok {
        return nil, ErrTripNotFound
    }
    var out []model.Seat
    for _, s := range l.seats {
        if s.TripID != tripID {
            continue
        }
        view := *s
        if holdID, ok := l.holdBySeat[s.ID]; ok && l.expired(l.holds[holdID]) && view.Status == model.SeatStatusHeld {
            view.Status = model.SeatStatusAvailable
        }
        out = append(out, view)
    }
    return out, nil
}

func (l *memLedger) AcquireHold(_ context.Context, hold *model.SeatHold) error {
    l.mu.Lock()
    defer l.mu.Unlock()
    seat, ok := l.seats[hold.SeatID]
    if !ok || seat.TripID != hold.TripID {
        return ErrSeatNotFound
    }
    if seat.Status == model.SeatStatusSold {
        return ErrSeatUnavailable
    }
    l.dropExpired(hold.SeatID)
    if _, taken := l.holdBySeat[hold.SeatID]; taken {
        return ErrSeatUnavailable
    }
    cp := *hold
    l.holds[hold.ID] = &cp
    l.holdBySeat[hold.SeatID] = hold.ID
    seat.Status = model.SeatStatusHeld
    return nil
}

func (l *memLedger) ReleaseHold(_ context.Context, holdID, holderID string) (*ReleasedSeat, error) {
    l.mu.Lock()
    defer l.mu.Unlock()
    h, ok := l.holds[holdID]
    if !ok {
        return nil, ErrHoldNotFound
    }
    if h.UserID != holderID {
        return nil, ErrForbidden
    }
    lapsed := l.expired(h)
    delete(l.holds, holdID)
    delete(l.holdBySeat, h.SeatID)
    var released *ReleasedSeat
    if s := l.seats[h.SeatID]; s.Status == model.SeatStatusHeld {
        s.Status = model.SeatStatusAvailable
        released = &ReleasedSeat{TripID: h.TripID, SeatID: h.SeatID}
    }
    if lapsed {
        return released, ErrHoldExpired
    }
    return released, nil
}

func (l *memLedger) FinalizeHolds(_ context.Context, booking *model.Booking) (string, error) {
    l.mu.Lock()
    defer l.mu.Unlock()
    organizerID, ok := l.organizers[booking.TripID]
    if !ok {
        return "", ErrTripNotFound
    }
    total := decimal.Zero
    var numbers []string
    for _, seatID := range booking.SeatIDs {
        holdID, ok := l.holdBySeat[seatID]
        if !ok {
            return "", ErrHoldInvalid
        }
        h := l.holds[holdID]
        if h.UserID != booking.UserID || l.expired(h) {
            return "", ErrHoldInvalid
        }
        seat := l.seats[seatID]
        if seat.Status != model.SeatStatusHeld {
            return "", ErrHoldInvalid
        }
        total = total.Add(seat.Price)
        numbers = append(numbers, seat.SeatNumber)
    }
    // The booking write commits in the same unit of work as the seat
    // transitions; a failure here must leave every seat and hold as
    // it was.
    if l.bookingErr != nil {
        return "", errors.Join(ErrPersistence, l.bookingErr)
    }
    for _, seatID := range booking.SeatIDs {
        holdID := l.holdBySeat[seatID]
        delete(l.holds, holdID)
        delete(l.holdBySeat, seatID)
        l.seats[seatID].Status = model.SeatStatusSold
    }
    booking.SeatNumbers = numbers
    booking.TotalAmount = total
    cp := *booking
    l.bookings[booking.ID] = &cp
    return organizerID, nil
}

func (l *memLedger) ReclaimExpired(_ context.Context) ([]ReleasedSeat, error) {
    l.mu.Lock()
    defer l.mu.Unlock()
    var out []ReleasedSeat
    for id, h := range l.holds {
        if !l.expired(h) {
            continue
        }
        delete(l.holds, id)
        delete(l.holdBySeat, h.SeatID)
        if s := l.seats[h.SeatID]; s.Status == model.SeatStatusHeld {
            s.Status = model.SeatStatusAvailable
            out = append(out, ReleasedSeat{TripID: h.TripID, SeatID: h.SeatID})
        }
    }
    return out, nil
}

func (l *memLedger) CancelBooking(_ context.Context, bookingID, holderID string, policy RefundPolicy) (*Cancellation, error) {
    l.mu.Lock()
    defer l.mu.Unlock()
    b, ok := l.bookings[bookingID]
    if !ok {
        return nil, ErrBookingNotFound
    }
    if b.UserID != holderID {
        return nil, ErrForbidden
    }
    if b.Status != model.BookingStatusCompleted {
        return nil, ErrBookingNotFound
    }
    hours := int(l.departures[b.TripID].Sub(l.now()).Hours())
    fee, cancellable := policy(b.TotalAmount, hours)
    if !cancellable {
        return nil, ErrCancellationClosed
    }
    b.Status = model.BookingStatusCancelled
    for _, seatID := range b.SeatIDs {
        if s := l.seats[seatID]; s.Status == model.SeatStatusSold {
            s.Status = model.SeatStatusAvailable
        }
    }
    return &Cancellation{
        BookingID:            b.ID,
        Reference:            b.Reference,
        TripID:               b.TripID,
        OrganizerID:          l.organizers[b.TripID],
        SeatIDs:              b.SeatIDs,
        TotalAmount:          b.TotalAmount,
        Fee:                  fee,
        Refund:               b.TotalAmount.Sub(fee),
        HoursBeforeDeparture: hours,
    }, nil
}

// recorder captures broadcast events for assertions.
type recorder struct {
    mu        sync.Mutex
    trip      []realtime.Message
    organizer []realtime.Message
}

func (r *recorder) BroadcastToTrip(_ string, msg realtime.Message, _ string) {
    r.mu.Lock()
    r.trip = append(r.trip, msg)
    r.mu.Unlock()
}

func (r *recorder) BroadcastToOrganizer(_ string, msg realtime.Message, _ string) {
    r.mu.Lock()
    r.organizer = append(r.organizer, msg)
    r.mu.Unlock()
}

func (r *recorder) tripTypes() []string {
    r.mu.Lock()
    defer r.mu.Unlock()
    out := make([]string, len(r.trip))
    for i, m := range r.trip {
        out[i] = m.Type
    }
    return out
}

func fixedClock(t time.Time) func() time.Time {
    return func() time.Time { return t }
}

func TestHoldAcquiresSeatAndSetsTTL(t *testing.T) {
    base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
    ledger := newMemLedger(fixedClock(base))
    ledger.addTrip("trip-1", "org-1", base.Add(72*time.Hour))
    ledger.addSeat("seat-1", "trip-1", "1A", 100)

    rec := &recorder{}
    e := NewEngine(ledger, rec)
    e.now = fixedClock(base)

    receipt, err := e.Hold(context.Background(), "trip-1", "seat-1", "user-1", "")
    require.NoError(t, err)
    assert.Equal(t, "seat-1", receipt.SeatID)
    assert.Equal(t, base.Add(HoldTTL), receipt.ExpiresAt)
    assert.Equal(t, []string{realtime.TypeSeatHeld}, rec.tripTypes())

    seats, err := e.ListSeats(context.Background(), "trip-1")
    require.NoError(t, err)
    require.Len(t, seats, 1)
    assert.Equal(t, model.SeatStatusHeld, seats[0].Status)
}

func TestHoldIsExclusive(t *testing.T) {
    base := time.Now().UTC()
    ledger := newMemLedger(time.Now)
    ledger.addTrip("trip-1", "org-1", base.Add(72*time.Hour))
    ledger.addSeat("seat-1", "trip-1", "1A", 100)

    e := NewEngine(ledger, &recorder{})

    const racers = 16
    var wg sync.WaitGroup
    var wins, losses int64
    var mu sync.Mutex
    for i := 0; i < racers; i++ {
        wg.Add(1)
        go func(n int) {
            defer wg.Done()
            _, err := e.Hold(context.Background(), "trip-1", "seat-1", "user-a", "")
            mu.Lock()
            defer mu.Unlock()
            if err == nil {
                wins++
            } else {
                assert.ErrorIs(t, err, ErrSeatUnavailable)
                losses++
            }
        }(i)
    }
    wg.Wait()
    assert.EqualValues(t, 1, wins)
    assert.EqualValues(t, racers-1, losses)
}

func TestHoldUnknownSeat(t *testing.T) {
    ledger := newMemLedger(time.Now)
    ledger.addTrip("trip-1", "org-1", time.Now().Add(72*time.Hour))
    e := NewEngine(ledger, &recorder{})

    _, err := e.Hold(context.Background(), "trip-1", "ghost", "user-1", "")
    assert.ErrorIs(t, err, ErrSeatNotFound)
}

func TestReleaseReturnsSeatAndBroadcasts(t *testing.T) {
    base := time.Now().UTC()
    ledger := newMemLedger(time.Now)
    ledger.addTrip("trip-1", "org-1", base.Add(72*time.Hour))
    ledger.addSeat("seat-1", "trip-1", "1A", 100)

    rec := &recorder{}
    e := NewEngine(ledger, rec)

    receipt, err := e.Hold(context.Background(), "trip-1", "seat-1", "user-1", "")
    require.NoError(t, err)

    require.NoError(t, e.Release(context.Background(), receipt.HoldID, "user-1", ""))
    assert.Equal(t, []string{realtime.TypeSeatHeld, realtime.TypeSeatReleased}, rec.tripTypes())

    seats, err := e.ListSeats(context.Background(), "trip-1")
    require.NoError(t, err)
    assert.Equal(t, model.SeatStatusAvailable, seats[0].Status)
}

func TestReleaseOwnershipEnforced(t *testing.T) {
    ledger := newMemLedger(time.Now)
    ledger.addTrip("trip-1", "org-1", time.Now().Add(72*time.Hour))
    ledger.addSeat("seat-1", "trip-1", "1A", 100)
    e := NewEngine(ledger, &recorder{})

    receipt, err := e.Hold(context.Background(), "trip-1", "seat-1", "user-1", "")
    require.NoError(t, err)

    assert.ErrorIs(t, e.Release(context.Background(), receipt.HoldID, "intruder", ""), ErrForbidden)
    assert.ErrorIs(t, e.Release(context.Background(), "no-such-hold", "user-1", ""), ErrHoldNotFound)
}

func TestReleaseExpiredHoldIsNoOpSuccess(t *testing.T) {
    clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
    current := &clock
    now := func() time.Time { return *current }

    ledger := newMemLedger(now)
    ledger.addTrip("trip-1", "org-1", clock.Add(72*time.Hour))
    ledger.addSeat("seat-1", "trip-1", "1A", 100)

    rec := &recorder{}
    e := NewEngine(ledger, rec)
    e.now = now

    receipt, err := e.Hold(context.Background(), "trip-1", "seat-1", "user-1", "")
    require.NoError(t, err)

    // Jump past the TTL; the hold is lapsed but the row still exists.
    later := clock.Add(HoldTTL + time.Second)
    current = &later

    require.NoError(t, e.Release(context.Background(), receipt.HoldID, "user-1", ""))
    // The seat flipped back lazily, so viewers got the released event.
    assert.Equal(t, []string{realtime.TypeSeatHeld, realtime.TypeSeatReleased}, rec.tripTypes())
}

func TestExpiredHoldMaskedInListing(t *testing.T) {
    clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
    current := &clock
    now := func() time.Time { return *current }

    ledger := newMemLedger(now)
    ledger.addTrip("trip-1", "org-1", clock.Add(72*time.Hour))
    ledger.addSeat("seat-1", "trip-1", "1A", 100)

    e := NewEngine(ledger, &recorder{})
    e.now = now

    _, err := e.Hold(context.Background(), "trip-1", "seat-1", "user-1", "")
    require.NoError(t, err)

    later := clock.Add(HoldTTL + time.Minute)
    current = &later

    seats, err := e.ListSeats(context.Background(), "trip-1")
    require.NoError(t, err)
    assert.Equal(t, model.SeatStatusAvailable, seats[0].Status)
}

func TestExpiredSeatCanBeHeldAgain(t *testing.T) {
    clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
    current := &clock
    now := func() time.Time { return *current }

    ledger := newMemLedger(now)
    ledger.addTrip("trip-1", "org-1", clock.Add(72*time.Hour))
    ledger.addSeat("seat-1", "trip-1", "1A", 100)

    e := NewEngine(ledger, &recorder{})
    e.now = now

    _, err := e.Hold(context.Background(), "trip-1", "seat-1", "user-1", "")
    require.NoError(t, err)

    // A second user fails while the hold is live.
    _, err = e.Hold(context.Background(), "trip-1", "seat-1", "user-2", "")
    assert.ErrorIs(t, err, ErrSeatUnavailable)

    // After expiry the seat is up for grabs again.
    later := clock.Add(HoldTTL + time.Second)
    current = &later
    _, err = e.Hold(context.Background(), "trip-1", "seat-1", "user-2", "")
    assert.NoError(t, err)
}

func TestFinalizeConvertsHoldsToBooking(t *testing.T) {
    base := time.Now().UTC()
    ledger := newMemLedger(time.Now)
    ledger.addTrip("trip-1", "org-1", base.Add(72*time.Hour))
    ledger.addSeat("seat-1", "trip-1", "1A", 100)
    ledger.addSeat("seat-2", "trip-1", "1B", 120)

    rec := &recorder{}
    e := NewEngine(ledger, rec)

    _, err := e.Hold(context.Background(), "trip-1", "seat-1", "user-1", "")
    require.NoError(t, err)
    _, err = e.Hold(context.Background(), "trip-1", "seat-2", "user-1", "")
    require.NoError(t, err)

    passenger := Passenger{Name: "Ada Lovelace", Email: "ada@example.com"}
    booking, err := e.Finalize(context.Background(), "trip-1", []string{"seat-1", "seat-2"}, "user-1", passenger, "")
    require.NoError(t, err)

    assert.True(t, booking.TotalAmount.Equal(decimal.NewFromInt(220)), "total was %s", booking.TotalAmount)
    assert.ElementsMatch(t, []string{"1A", "1B"}, booking.SeatNumbers)
    assert.Equal(t, model.BookingStatusCompleted, booking.Status)
    assert.Contains(t, booking.Reference, "BF-")

    seats, err := e.ListSeats(context.Background(), "trip-1")
    require.NoError(t, err)
    for _, s := range seats {
        assert.Equal(t, model.SeatStatusSold, s.Status)
    }

    types := rec.tripTypes()
    assert.Contains(t, types, realtime.TypeSeatSold)
    assert.Contains(t, types, realtime.TypeBookingUpdate)

    rec.mu.Lock()
    orgTypes := make([]string, len(rec.organizer))
    for i, m := range rec.organizer {
        orgTypes[i] = m.Type
    }
    rec.mu.Unlock()
    assert.Contains(t, orgTypes, realtime.TypeBookingUpdate)
    assert.Contains(t, orgTypes, realtime.TypePassengerListUpdate)
}

func TestFinalizeAllOrNothing(t *testing.T) {
    base := time.Now().UTC()
    ledger := newMemLedger(time.Now)
    ledger.addTrip("trip-1", "org-1", base.Add(72*time.Hour))
    ledger.addSeat("seat-1", "trip-1", "1A", 100)
    ledger.addSeat("seat-2", "trip-1", "1B", 100)

    e := NewEngine(ledger, &recorder{})

    _, err := e.Hold(context.Background(), "trip-1", "seat-1", "user-1", "")
    require.NoError(t, err)
    // seat-2 is held by somebody else.
    _, err = e.Hold(context.Background(), "trip-1", "seat-2", "user-2", "")
    require.NoError(t, err)

    _, err = e.Finalize(context.Background(), "trip-1", []string{"seat-1", "seat-2"}, "user-1", Passenger{Name: "A", Email: "a@b.c"}, "")
    assert.ErrorIs(t, err, ErrHoldInvalid)

    // Nothing changed: both seats still held, user-1's hold intact.
    seats, err := e.ListSeats(context.Background(), "trip-1")
    require.NoError(t, err)
    for _, s := range seats {
        assert.Equal(t, model.SeatStatusHeld, s.Status)
    }
}

func TestFinalizeTreatsSeatListAsSet(t *testing.T) {
    base := time.Now().UTC()
    ledger := newMemLedger(time.Now)
    ledger.addTrip("trip-1", "org-1", base.Add(72*time.Hour))
    ledger.addSeat("seat-1", "trip-1", "1A", 100)

    rec := &recorder{}
    e := NewEngine(ledger, rec)

    _, err := e.Hold(context.Background(), "trip-1", "seat-1", "user-1", "")
    require.NoError(t, err)

    // The same seat listed twice collapses to one: charged once,
    // sold once, announced once.
    booking, err := e.Finalize(context.Background(), "trip-1", []string{"seat-1", "seat-1"}, "user-1", Passenger{Name: "A", Email: "a@b.c"}, "")
    require.NoError(t, err)

    assert.True(t, booking.TotalAmount.Equal(decimal.NewFromInt(100)), "total was %s", booking.TotalAmount)
    assert.Equal(t, []string{"seat-1"}, booking.SeatIDs)
    assert.Equal(t, []string{"1A"}, booking.SeatNumbers)

    sold := 0
    for _, typ := range rec.tripTypes() {
        if typ == realtime.TypeSeatSold {
            sold++
        }
    }
    assert.Equal(t, 1, sold)
}

func TestFinalizeBookingWriteFailureLeavesSeatsUntouched(t *testing.T) {
    base := time.Now().UTC()
    ledger := newMemLedger(time.Now)
    ledger.addTrip("trip-1", "org-1", base.Add(72*time.Hour))
    ledger.addSeat("seat-1", "trip-1", "1A", 100)
    ledger.addSeat("seat-2", "trip-1", "1B", 100)

    rec := &recorder{}
    e := NewEngine(ledger, rec)

    _, err := e.Hold(context.Background(), "trip-1", "seat-1", "user-1", "")
    require.NoError(t, err)
    _, err = e.Hold(context.Background(), "trip-1", "seat-2", "user-1", "")
    require.NoError(t, err)

    ledger.bookingErr = errors.New("insert bookings: disk full")
    _, err = e.Finalize(context.Background(), "trip-1", []string{"seat-1", "seat-2"}, "user-1", Passenger{Name: "A", Email: "a@b.c"}, "")
    assert.ErrorIs(t, err, ErrPersistence)

    // The whole unit of work rolled back: no seat sold, both holds
    // intact, no booking event left the engine.
    seats, err := e.ListSeats(context.Background(), "trip-1")
    require.NoError(t, err)
    for _, s := range seats {
        assert.Equal(t, model.SeatStatusHeld, s.Status)
    }
    for _, typ := range rec.tripTypes() {
        assert.NotEqual(t, realtime.TypeSeatSold, typ)
        assert.NotEqual(t, realtime.TypeBookingUpdate, typ)
    }

    // The surviving holds finalize cleanly once the write succeeds.
    ledger.bookingErr = nil
    booking, err := e.Finalize(context.Background(), "trip-1", []string{"seat-1", "seat-2"}, "user-1", Passenger{Name: "A", Email: "a@b.c"}, "")
    require.NoError(t, err)
    assert.True(t, booking.TotalAmount.Equal(decimal.NewFromInt(200)))
}

func TestFinalizeRejectsEmptySeatList(t *testing.T) {
    ledger := newMemLedger(time.Now)
    ledger.addTrip("trip-1", "org-1", time.Now().Add(72*time.Hour))
    e := NewEngine(ledger, &recorder{})

    _, err := e.Finalize(context.Background(), "trip-1", nil, "user-1", Passenger{}, "")
    assert.ErrorIs(t, err, ErrHoldInvalid)
}

// wrappingLedger decorates ReleaseHold errors the way a driver-level
// implementation might, to make sure the engine matches sentinels by
// chain rather than identity.
type wrappingLedger struct {
    Ledger
}

func (w wrappingLedger) ReleaseHold(ctx context.Context, holdID, holderID string) (*ReleasedSeat, error) {
    released, err := w.Ledger.ReleaseHold(ctx, holdID, holderID)
    if err != nil {
        return released, fmt.Errorf("seat ledger: %w", err)
    }
    return released, nil
}

func TestReleaseExpiredHoldWrappedSentinel(t *testing.T) {
    clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
    current := &clock
    now := func() time.Time { return *current }

    mem := newMemLedger(now)
    mem.addTrip("trip-1", "org-1", clock.Add(72*time.Hour))
    mem.addSeat("seat-1", "trip-1", "1A", 100)

    e := NewEngine(wrappingLedger{mem}, &recorder{})
    e.now = now

    receipt, err := e.Hold(context.Background(), "trip-1", "seat-1", "user-1", "")
    require.NoError(t, err)

    later := clock.Add(HoldTTL + time.Second)
    current = &later

    // The wrapped expiry sentinel still maps to a no-op success.
    require.NoError(t, e.Release(context.Background(), receipt.HoldID, "user-1", ""))
}

func TestCancelBookingAppliesFeeAndFreesSeats(t *testing.T) {
    base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
    ledger := newMemLedger(fixedClock(base))
    // Departure 72h out puts the cancellation in the 10% tier.
    ledger.addTrip("trip-1", "org-1", base.Add(72*time.Hour))
    ledger.addSeat("seat-1", "trip-1", "1A", 200)

    rec := &recorder{}
    e := NewEngine(ledger, rec)
    e.now = fixedClock(base)

    _, err := e.Hold(context.Background(), "trip-1", "seat-1", "user-1", "")
    require.NoError(t, err)
    booking, err := e.Finalize(context.Background(), "trip-1", []string{"seat-1"}, "user-1", Passenger{Name: "A", Email: "a@b.c"}, "")
    require.NoError(t, err)

    cancel, err := e.CancelBooking(context.Background(), booking.ID, "user-1", "")
    require.NoError(t, err)
    assert.True(t, cancel.Fee.Equal(decimal.NewFromInt(20)), "fee was %s", cancel.Fee)
    assert.True(t, cancel.Refund.Equal(decimal.NewFromInt(180)), "refund was %s", cancel.Refund)

    seats, err := e.ListSeats(context.Background(), "trip-1")
    require.NoError(t, err)
    assert.Equal(t, model.SeatStatusAvailable, seats[0].Status)
    assert.Contains(t, rec.tripTypes(), realtime.TypeSeatReleased)
}

func TestCancelBookingRefusedCloseToDeparture(t *testing.T) {
    base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
    ledger := newMemLedger(fixedClock(base))
    ledger.addTrip("trip-1", "org-1", base.Add(3*time.Hour))
    ledger.addSeat("seat-1", "trip-1", "1A", 200)

    e := NewEngine(ledger, &recorder{})
    e.now = fixedClock(base)

    _, err := e.Hold(context.Background(), "trip-1", "seat-1", "user-1", "")
    require.NoError(t, err)
    booking, err := e.Finalize(context.Background(), "trip-1", []string{"seat-1"}, "user-1", Passenger{Name: "A", Email: "a@b.c"}, "")
    require.NoError(t, err)

    _, err = e.CancelBooking(context.Background(), booking.ID, "user-1", "")
    assert.ErrorIs(t, err, ErrCancellationClosed)

    // The booking is untouched and the seat stays sold.
    seats, err := e.ListSeats(context.Background(), "trip-1")
    require.NoError(t, err)
    assert.Equal(t, model.SeatStatusSold, seats[0].Status)
}
