// Package queue defines message payloads exchanged over the message broker.
package queue

// BookingConfirmedEvent is published when a booking is successfully
// finalized.  It contains enough information for downstream consumers
// to log, notify, or trigger analytics without querying the primary
// database.
type BookingConfirmedEvent struct {
    BookingID        string   `json:"booking_id"`
    BookingReference string   `json:"booking_reference"`
    TripID           string   `json:"trip_id"`
    UserID           string   `json:"user_id"`
    RouteFrom        string   `json:"route_from"`
    RouteTo          string   `json:"route_to"`
    DepartureTime    string   `json:"departure_time"`
    PassengerName    string   `json:"passenger_name"`
    PassengerEmail   string   `json:"passenger_email"`
    SeatNumbers      []string `json:"seats"`
    TotalAmount      string   `json:"total_amount"`
    ConfirmedAt      string   `json:"confirmed_at"`
}
