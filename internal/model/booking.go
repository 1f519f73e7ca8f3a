package model

import "time"

// Booking status values.  A booking starts out pending and is moved to
// accepted or rejected by the property owner; both are terminal.
const (
	BookingPending  = "pending"
	BookingAccepted = "accepted"
	BookingRejected = "rejected"
)

// Booking records a guest's stay request for a property.
//
// Fields:
//
//	ID           – primary key identifier.
//	UserID       – guest who made the booking.
//	PropertyID   – property being booked.
//	CheckIn      – first night (DATE, UTC midnight).
//	CheckOut     – day of departure, strictly after CheckIn.
//	Status       – pending, accepted or rejected.
//	TotalPrice   – nights × nightly rate at booking time.
//	CreatedAt    – creation timestamp.
//	UpdatedAt    – last update timestamp.
type Booking struct {
	ID         uint64    // bookings.id
	UserID     uint64    // bookings.user_id
	PropertyID uint64    // bookings.property_id
	CheckIn    time.Time // bookings.check_in_date
	CheckOut   time.Time // bookings.check_out_date
	Status     string    // bookings.status
	TotalPrice float64   // bookings.total_price
	CreatedAt  time.Time // bookings.created_at
	UpdatedAt  time.Time // bookings.updated_at
}
