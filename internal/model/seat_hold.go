package model

import "time"

// SeatHold represents a temporary, exclusive claim on one seat by
// one holder during checkout.  At most one hold may exist per seat
// (enforced by a unique index on seat_holds.seat_id).  A hold whose
// expires_at has passed is treated as absent by every read and
// write, whether or not the background sweep has removed the row
// yet.
//
// Fields:
//  ID        – primary key identifier (UUID), returned to the client.
//  SeatID    – seat being held.
//  TripID    – trip the seat belongs to (kept for event routing).
//  UserID    – opaque identifier of the holder.
//  ExpiresAt – when the hold lapses (created_at + 5 minutes).
//  CreatedAt – when the hold was created.
type SeatHold struct {
    ID        string    // seat_holds.id
    SeatID    string    // seat_holds.seat_id
    TripID    string    // seat_holds.trip_id
    UserID    string    // seat_holds.user_id
    ExpiresAt time.Time // seat_holds.expires_at
    CreatedAt time.Time // seat_holds.created_at
}

// Expired reports whether the hold has lapsed at the given instant.
func (h *SeatHold) Expired(now time.Time) bool {
    return !h.ExpiresAt.After(now)
}
