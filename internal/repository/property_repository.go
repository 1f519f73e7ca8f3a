package repository

import (
	"context"
	"database/sql"

	"github.com/stayloft/stayloft/internal/model"
)

// PropertyRepo provides CRUD operations for rental listings.  Ownership
// is not enforced here beyond GetOwnerID; handlers combine the owner ID
// with the caller's admin flag to decide access, because the admin
// override crosses repository boundaries.
type PropertyRepo struct{ db *sql.DB }

// NewPropertyRepo returns a PropertyRepo bound to the given database.
func NewPropertyRepo(db *sql.DB) *PropertyRepo { return &PropertyRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions
// spanning several repositories.
func (r *PropertyRepo) DB() *sql.DB { return r.db }

const propertyCols = "id,owner_id,name,description,location,price_per_night,image_url,is_available,created_at,updated_at"

func scanProperty(row interface{ Scan(...any) error }) (model.Property, error) {
	var p model.Property
	var img sql.NullString
	err := row.Scan(&p.ID, &p.OwnerID, &p.Name, &p.Description, &p.Location,
		&p.PricePerNight, &img, &p.IsAvailable, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return p, err
	}
	if img.Valid {
		u := img.String
		p.ImageURL = &u
	}
	return p, nil
}

// Create inserts a new property and returns its ID.  A nil ImageURL is
// stored as NULL.
func (r *PropertyRepo) Create(ctx context.Context, p *model.Property) (uint64, error) {
	var img any
	if p.ImageURL != nil && *p.ImageURL != "" {
		img = *p.ImageURL
	}
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO properties (owner_id, name, description, location, price_per_night, image_url) VALUES (?,?,?,?,?,?)",
		p.OwnerID, p.Name, p.Description, p.Location, p.PricePerNight, img)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByID fetches a single property.  sql.ErrNoRows is returned when the
// id does not resolve.
func (r *PropertyRepo) GetByID(ctx context.Context, id uint64) (model.Property, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+propertyCols+" FROM properties WHERE id=? LIMIT 1", id)
	return scanProperty(row)
}

// GetOwnerID returns the owner of a property, or sql.ErrNoRows when the
// property does not exist.
func (r *PropertyRepo) GetOwnerID(ctx context.Context, id uint64) (uint64, error) {
	var ownerID uint64
	err := r.db.QueryRowContext(ctx,
		"SELECT owner_id FROM properties WHERE id=? LIMIT 1", id).Scan(&ownerID)
	return ownerID, err
}

// ListAll returns every property ordered by nightly price descending,
// which is the order the public listing page renders.
func (r *PropertyRepo) ListAll(ctx context.Context) ([]model.Property, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+propertyCols+" FROM properties ORDER BY price_per_night DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Property, 0)
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ListByOwner returns the owner's properties, newest first, for the
// host dashboard.
func (r *PropertyRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]model.Property, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+propertyCols+" FROM properties WHERE owner_id=? ORDER BY created_at DESC", ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Property, 0)
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Update rewrites the mutable listing fields.  Callers must have already
// verified ownership.
func (r *PropertyRepo) Update(ctx context.Context, p *model.Property) error {
	var img any
	if p.ImageURL != nil && *p.ImageURL != "" {
		img = *p.ImageURL
	}
	_, err := r.db.ExecContext(ctx,
		"UPDATE properties SET name=?, description=?, location=?, price_per_night=?, image_url=? WHERE id=?",
		p.Name, p.Description, p.Location, p.PricePerNight, img, p.ID)
	return err
}

// Delete removes a property.  Bookings referencing it are removed by the
// ON DELETE CASCADE foreign key.
func (r *PropertyRepo) Delete(ctx context.Context, id uint64) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM properties WHERE id=?", id)
	return err
}
