package model

import "time"

// Property is a rental listing owned by a user.  Deleting a property
// cascades to its bookings at the database level.
//
// Fields:
//
//	ID            – primary key identifier.
//	OwnerID       – user who owns the listing.
//	Name          – listing title.
//	Description   – free-form description shown on the detail page.
//	Location      – human readable location string.
//	PricePerNight – nightly rate, must be positive.
//	ImageURL      – optional public image URL (nullable).
//	IsAvailable   – whether the listing accepts new bookings.
//	CreatedAt     – creation timestamp.
//	UpdatedAt     – last update timestamp.
type Property struct {
	ID            uint64    // properties.id
	OwnerID       uint64    // properties.owner_id
	Name          string    // properties.name
	Description   string    // properties.description
	Location      string    // properties.location
	PricePerNight float64   // properties.price_per_night
	ImageURL      *string   // properties.image_url (nullable)
	IsAvailable   bool      // properties.is_available
	CreatedAt     time.Time // properties.created_at
	UpdatedAt     time.Time // properties.updated_at
}
