package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountOverlappingAcceptedTxBounds(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	// check-in compared against the requested check-out and vice versa:
	// half-open ranges, back-to-back stays do not collide
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM bookings")).
		WithArgs(int64(7), "2025-07-04", "2025-07-01").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectRollback()

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)
	defer tx.Rollback()

	repo := NewBookingRepo(db)
	in, _ := time.ParseInLocation(dateLayout, "2025-07-01", time.UTC)
	out, _ := time.ParseInLocation(dateLayout, "2025-07-04", time.UTC)
	n, err := repo.CountOverlappingAcceptedTx(context.Background(), tx, 7, in, out)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusFromPendingConflict(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE bookings SET status=? WHERE id=? AND status='pending'")).
		WithArgs("accepted", int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewBookingRepo(db)
	err = repo.UpdateStatusFromPending(context.Background(), 5, "accepted")
	assert.ErrorIs(t, err, ErrConflict)
}

func TestListByGuestJoinsListingContext(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	in, _ := time.ParseInLocation(dateLayout, "2025-07-01", time.UTC)
	out, _ := time.ParseInLocation(dateLayout, "2025-07-04", time.UTC)
	created := time.Date(2025, 6, 20, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("FROM bookings b")).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "property_id", "name", "location", "image_url",
			"check_in_date", "check_out_date", "status", "total_price", "created_at"}).
			AddRow(5, 7, "Harbor Loft", "Lisbon", nil, in, out, "pending", 300.0, created))

	repo := NewBookingRepo(db)
	items, err := repo.ListByGuest(context.Background(), 42)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Harbor Loft", items[0].PropertyName)
	assert.Equal(t, "2025-07-01", items[0].CheckIn)
	assert.Equal(t, "2025-07-04", items[0].CheckOut)
	assert.Nil(t, items[0].PropertyImageURL)
	assert.Equal(t, "2025-06-20T10:00:00Z", items[0].CreatedAt)
}
