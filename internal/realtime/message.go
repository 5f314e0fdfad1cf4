// Package realtime implements the fanout hub that pushes seat and
// booking state changes to connected viewers over WebSocket.  The hub
// is purely a transport: payload validation and seat-state invariants
// are guaranteed upstream by the reservation engine before an event
// is ever published.
package realtime

// Message types sent by clients to the hub.
const (
    TypeJoinTrip      = "join_trip"
    TypeLeaveTrip     = "leave_trip"
    TypeJoinOrganizer = "join_organizer"
)

// Message types pushed by the hub to clients.
const (
    TypeConnectionEstablished = "connection_established"
    TypeSeatHeld              = "seat_held"
    TypeSeatReleased          = "seat_released"
    TypeSeatSold              = "seat_sold"
    TypeBookingUpdate         = "booking_update"
    TypePassengerListUpdate   = "passenger_list_update"
)

// Message is the JSON envelope exchanged over a connection.  Field
// names use camelCase to match the browser client.  Unused fields are
// omitted from the wire form.
type Message struct {
    Type         string `json:"type"`
    TripID       string `json:"tripId,omitempty"`
    SeatID       string `json:"seatId,omitempty"`
    OrganizerID  string `json:"organizerId,omitempty"`
    ConnectionID string `json:"connectionId,omitempty"`
    Data         any    `json:"data,omitempty"`
}
