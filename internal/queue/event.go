// Package queue defines message payloads exchanged over the message broker.
package queue

// BookingCreatedEvent is published when a guest submits a booking
// request.  It carries enough information for downstream consumers to
// log, notify the host, or feed analytics without querying the primary
// database.
type BookingCreatedEvent struct {
	BookingID    uint64  `json:"booking_id"`
	GuestID      uint64  `json:"guest_id"`
	PropertyID   uint64  `json:"property_id"`
	PropertyName string  `json:"property_name"`
	CheckIn      string  `json:"check_in"`
	CheckOut     string  `json:"check_out"`
	Nights       int     `json:"nights"`
	TotalPrice   float64 `json:"total_price"`
	CreatedAt    string  `json:"created_at"`
}

// BookingStatusEvent is published when a host accepts or rejects a
// pending booking.
type BookingStatusEvent struct {
	BookingID uint64 `json:"booking_id"`
	OwnerID   uint64 `json:"owner_id"`
	Status    string `json:"status"`
	DecidedAt string `json:"decided_at"`
}
