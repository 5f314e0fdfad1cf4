package reservation

import (
    "context"
    "log"
    "time"

    "github.com/iliyamo/bus-trip-reservation/internal/realtime"
)

// DefaultSweepInterval is how often the reclaimer scans for expired
// holds.  It must be shorter than HoldTTL so a lapsed hold is swept
// within one TTL even when no request touches the seat.
const DefaultSweepInterval = 30 * time.Second

// Reclaimer is the eager half of hold expiry.  The lazy half lives
// in the ledger, which masks lapsed holds on every read and write;
// the reclaimer additionally deletes the stale rows on a timer and
// announces the freed seats so viewers see them return to
// availability without any client action.  Both halves are
// idempotent: whichever atomic transition lands first wins and the
// loser no-ops.
type Reclaimer struct {
    ledger   Ledger
    events   Broadcaster
    interval time.Duration
}

// NewReclaimer builds a reclaimer sweeping at the given interval; a
// non-positive interval falls back to DefaultSweepInterval.
func NewReclaimer(ledger Ledger, events Broadcaster, interval time.Duration) *Reclaimer {
    if interval <= 0 {
        interval = DefaultSweepInterval
    }
    return &Reclaimer{ledger: ledger, events: events, interval: interval}
}

// Run sweeps until ctx is cancelled.  Sweep errors are logged and
// the next tick tries again; nothing here is fatal to the process.
func (r *Reclaimer) Run(ctx context.Context) {
    ticker := time.NewTicker(r.interval)
    defer ticker.Stop()
    for {
        select {
        case <-ctx.Done():
            return
        case <-ticker.C:
            if n, err := r.Sweep(ctx); err != nil {
                log.Printf("reclaimer: sweep failed: %v", err)
            } else if n > 0 {
                log.Printf("reclaimer: reclaimed %d expired hold(s)", n)
            }
        }
    }
}

// Sweep performs one reclamation pass and returns the number of
// seats that went back to available.  A seat_released event is
// emitted per reclaimed seat.  The events are emitted after commit
// and are not ordered against broadcasts from concurrent holds on
// the same seat; a viewer that applies a stale release recovers on
// its next full seat-map fetch.
func (r *Reclaimer) Sweep(ctx context.Context) (int, error) {
    released, err := r.ledger.ReclaimExpired(ctx)
    if err != nil {
        return 0, err
    }
    for _, seat := range released {
        r.events.BroadcastToTrip(seat.TripID, realtime.Message{
            Type:   realtime.TypeSeatReleased,
            TripID: seat.TripID,
            SeatID: seat.SeatID,
        }, "")
    }
    return len(released), nil
}
