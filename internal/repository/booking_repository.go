package repository

import (
	"context"
	"database/sql"
	"time"
)

// BookingRepo provides persistence for bookings.  Creation runs inside a
// caller-supplied transaction so the overlap check and the insert are
// atomic.  Timestamps and dates are stored in UTC.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// DB exposes the underlying handle for transaction control.
func (r *BookingRepo) DB() *sql.DB { return r.db }

const dateLayout = "2006-01-02"

// BookingRecord mirrors the schema of the bookings table.  It is used by
// the repository when constructing or scanning rows.
type BookingRecord struct {
	ID         uint64
	UserID     uint64
	PropertyID uint64
	CheckIn    time.Time
	CheckOut   time.Time
	Status     string
	TotalPrice float64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// CountOverlappingAcceptedTx counts accepted bookings on the property
// whose date range intersects [checkIn, checkOut).  The rows are locked
// so that two concurrent creations cannot both observe zero.
func (r *BookingRepo) CountOverlappingAcceptedTx(ctx context.Context, tx *sql.Tx, propertyID uint64, checkIn, checkOut time.Time) (int, error) {
	const q = `SELECT COUNT(*) FROM bookings
               WHERE property_id = ? AND status = 'accepted'
                 AND check_in_date < ? AND check_out_date > ?
               FOR UPDATE`
	var n int
	err := tx.QueryRowContext(ctx, q, propertyID,
		checkOut.Format(dateLayout), checkIn.Format(dateLayout)).Scan(&n)
	return n, err
}

// CreateTx inserts a new pending booking within the scope of an existing
// transaction.  It populates the generated ID and timestamps on the
// provided record.  The caller must commit or rollback the transaction.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *BookingRecord) error {
	const q = `INSERT INTO bookings (user_id, property_id, check_in_date, check_out_date, status, total_price) VALUES (?, ?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, q, b.UserID, b.PropertyID,
		b.CheckIn.Format(dateLayout), b.CheckOut.Format(dateLayout), b.Status, b.TotalPrice)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	// Query back the full row to populate timestamps and defaults
	const sel = `SELECT id, user_id, property_id, check_in_date, check_out_date, status, total_price, created_at, updated_at FROM bookings WHERE id = ?`
	return tx.QueryRowContext(ctx, sel, b.ID).Scan(
		&b.ID, &b.UserID, &b.PropertyID, &b.CheckIn, &b.CheckOut,
		&b.Status, &b.TotalPrice, &b.CreatedAt, &b.UpdatedAt,
	)
}

// GetGuestID returns the guest who made a booking, or sql.ErrNoRows.
func (r *BookingRepo) GetGuestID(ctx context.Context, bookingID uint64) (uint64, error) {
	var userID uint64
	err := r.db.QueryRowContext(ctx,
		"SELECT user_id FROM bookings WHERE id=? LIMIT 1", bookingID).Scan(&userID)
	return userID, err
}

// GetPropertyOwnerID returns the owner of the property a booking belongs
// to, joining through properties.  sql.ErrNoRows means the booking does
// not exist.
func (r *BookingRepo) GetPropertyOwnerID(ctx context.Context, bookingID uint64) (uint64, error) {
	const q = `SELECT p.owner_id
               FROM bookings b
               JOIN properties p ON p.id = b.property_id
               WHERE b.id = ?`
	var ownerID uint64
	err := r.db.QueryRowContext(ctx, q, bookingID).Scan(&ownerID)
	return ownerID, err
}

// Delete removes a booking.  Authorization checks happen in handlers.
func (r *BookingRepo) Delete(ctx context.Context, bookingID uint64) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM bookings WHERE id=?", bookingID)
	return err
}

// UpdateStatusFromPending transitions a pending booking to the given
// status.  It returns ErrConflict when the booking has already left the
// pending state; accepted and rejected are terminal.
func (r *BookingRepo) UpdateStatusFromPending(ctx context.Context, bookingID uint64, status string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE bookings SET status=? WHERE id=? AND status='pending'",
		status, bookingID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrConflict
	}
	return nil
}

// GuestBookingDetail is a booking joined with the listing it targets,
// returned by ListByGuest for the guest's bookings page.
type GuestBookingDetail struct {
	ID               uint64  `json:"id"`
	PropertyID       uint64  `json:"property_id"`
	PropertyName     string  `json:"property_name"`
	PropertyLocation string  `json:"property_location"`
	PropertyImageURL *string `json:"property_image_url,omitempty"`
	CheckIn          string  `json:"check_in"`
	CheckOut         string  `json:"check_out"`
	Status           string  `json:"status"`
	TotalPrice       float64 `json:"total_price"`
	CreatedAt        string  `json:"created_at"`
}

// ListByGuest returns all bookings created by the given user, newest
// first, with enough listing context to render without further queries.
func (r *BookingRepo) ListByGuest(ctx context.Context, userID uint64) ([]GuestBookingDetail, error) {
	const q = `SELECT b.id, b.property_id, p.name, p.location, p.image_url,
                      b.check_in_date, b.check_out_date, b.status, b.total_price, b.created_at
               FROM bookings b
               JOIN properties p ON p.id = b.property_id
               WHERE b.user_id = ?
               ORDER BY b.created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	details := make([]GuestBookingDetail, 0)
	for rows.Next() {
		var d GuestBookingDetail
		var img sql.NullString
		var in, out, created time.Time
		if err := rows.Scan(&d.ID, &d.PropertyID, &d.PropertyName, &d.PropertyLocation, &img,
			&in, &out, &d.Status, &d.TotalPrice, &created); err != nil {
			return nil, err
		}
		if img.Valid {
			u := img.String
			d.PropertyImageURL = &u
		}
		d.CheckIn = in.UTC().Format(dateLayout)
		d.CheckOut = out.UTC().Format(dateLayout)
		d.CreatedAt = created.UTC().Format(time.RFC3339)
		details = append(details, d)
	}
	return details, rows.Err()
}

// OwnerBookingDetail extends a booking with the guest's profile for the
// host dashboard, where hosts review and decide pending requests.
type OwnerBookingDetail struct {
	ID           uint64  `json:"id"`
	PropertyID   uint64  `json:"property_id"`
	PropertyName string  `json:"property_name"`
	GuestID      uint64  `json:"guest_id"`
	GuestName    string  `json:"guest_name"`
	GuestEmail   string  `json:"guest_email"`
	CheckIn      string  `json:"check_in"`
	CheckOut     string  `json:"check_out"`
	Status       string  `json:"status"`
	TotalPrice   float64 `json:"total_price"`
	CreatedAt    string  `json:"created_at"`
}

// ListByOwner returns every booking on the owner's properties, newest
// first, joined with guest name and email.
func (r *BookingRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]OwnerBookingDetail, error) {
	const q = `SELECT b.id, b.property_id, p.name, u.id, u.name, u.email,
                      b.check_in_date, b.check_out_date, b.status, b.total_price, b.created_at
               FROM bookings b
               JOIN properties p ON p.id = b.property_id
               JOIN users u ON u.id = b.user_id
               WHERE p.owner_id = ?
               ORDER BY b.created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	details := make([]OwnerBookingDetail, 0)
	for rows.Next() {
		var d OwnerBookingDetail
		var in, out, created time.Time
		if err := rows.Scan(&d.ID, &d.PropertyID, &d.PropertyName, &d.GuestID, &d.GuestName, &d.GuestEmail,
			&in, &out, &d.Status, &d.TotalPrice, &created); err != nil {
			return nil, err
		}
		d.CheckIn = in.UTC().Format(dateLayout)
		d.CheckOut = out.UTC().Format(dateLayout)
		d.CreatedAt = created.UTC().Format(time.RFC3339)
		details = append(details, d)
	}
	return details, rows.Err()
}
