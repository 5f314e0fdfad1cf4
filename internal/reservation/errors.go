// Package reservation implements the seat reservation engine: TTL
// bounded exclusive seat holds and their atomic conversion into sold
// seats.  All seat state transitions are performed as single atomic
// conditional writes against the seat ledger; contention is resolved
// by fail-fast rejection, never by queuing.  These sentinel values
// form the complete error taxonomy of the engine; every failure mode
// is recoverable by the caller and none is fatal to the process.
package reservation

import "errors"

// ErrSeatUnavailable is returned by Hold when the seat is already
// held or sold.  Callers should re-render availability and let the
// user pick another seat.
var ErrSeatUnavailable = errors.New("seat unavailable")

// ErrSeatNotFound is returned when the seat does not exist or does
// not belong to the given trip.
var ErrSeatNotFound = errors.New("seat not found")

// ErrTripNotFound is returned when the trip id is unknown.
var ErrTripNotFound = errors.New("trip not found")

// ErrHoldNotFound is returned by Release when no hold with the given
// id exists.  Callers treat it as already resolved.
var ErrHoldNotFound = errors.New("hold not found")

// ErrForbidden is returned when the caller is not the holder of the
// hold, or not the owner of the booking, being operated on.
var ErrForbidden = errors.New("forbidden")

// ErrHoldExpired signals that a hold lapsed before the operation.
// The ledger reclaims the seat on this path; Release maps it to a
// no-op success since the seat is already back to available.
var ErrHoldExpired = errors.New("hold expired")

// ErrHoldInvalid is returned by Finalize when any requested seat's
// hold is missing, expired or owned by someone else.  The operation
// is all-or-nothing: no seat changes on this error.
var ErrHoldInvalid = errors.New("hold invalid")

// ErrPersistence wraps a failed booking write during Finalize.  The
// seat and hold mutations are rolled back; the caller may retry.
var ErrPersistence = errors.New("booking persistence failed")

// ErrBookingNotFound is returned by CancelBooking for an unknown or
// already cancelled booking.
var ErrBookingNotFound = errors.New("booking not found")

// ErrCancellationClosed is returned by CancelBooking when the refund
// policy no longer permits cancellation (too close to departure).
var ErrCancellationClosed = errors.New("cancellation window closed")
