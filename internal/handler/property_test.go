package handler

import (
	"net/http"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stayloft/stayloft/internal/repository"
)

func newPropertyHandler(t *testing.T) (*PropertyHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPropertyHandler(
		repository.NewPropertyRepo(db),
		repository.NewBookingRepo(db),
		repository.NewUserRepo(db),
		nil,
	), mock
}

func TestListPropertiesSignedInFlag(t *testing.T) {
	now := time.Now().UTC()
	for _, signedIn := range []bool{true, false} {
		h, mock := newPropertyHandler(t)
		mock.ExpectQuery(regexp.QuoteMeta("FROM properties ORDER BY price_per_night DESC")).
			WillReturnRows(propertyRow(now, 1, 9, 250))

		c, rec := jsonContext(t, http.MethodGet, "/api/properties", "")
		if signedIn {
			c.Set("user_id", uint64(9))
		}

		require.NoError(t, h.List(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		if signedIn {
			assert.Contains(t, rec.Body.String(), `"signedIn":true`)
		} else {
			assert.Contains(t, rec.Body.String(), `"signedIn":false`)
		}
	}
}

func TestGetPropertyNotFound(t *testing.T) {
	h, mock := newPropertyHandler(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM properties WHERE id=?")).
		WithArgs(int64(12)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	c, rec := jsonContext(t, http.MethodGet, "/api/properties/12", "")
	c.SetParamNames("id")
	c.SetParamValues("12")

	require.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Property not found")
}

func TestCreatePropertyRequiresLogin(t *testing.T) {
	h, _ := newPropertyHandler(t)
	c, rec := jsonContext(t, http.MethodPost, "/api/properties", `{"name":"Loft","description":"d","location":"Lisbon","pricePerNight":80}`)

	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "You must be logged in to create a property")
}

func TestCreatePropertyValidation(t *testing.T) {
	bodies := []string{
		`{"name":"","description":"d","location":"l","pricePerNight":80}`,
		`{"name":"n","description":"","location":"l","pricePerNight":80}`,
		`{"name":"n","description":"d","location":"","pricePerNight":80}`,
		`{"name":"n","description":"d","location":"l","pricePerNight":0}`,
		`{"name":"n","description":"d","location":"l","pricePerNight":-3}`,
	}
	for _, body := range bodies {
		h, _ := newPropertyHandler(t)
		c, rec := jsonContext(t, http.MethodPost, "/api/properties", body)
		c.Set("user_id", uint64(9))

		require.NoError(t, h.Create(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %s", body)
		assert.Contains(t, rec.Body.String(), "All required fields must be filled")
	}
}

func TestCreatePropertyReturnsID(t *testing.T) {
	h, mock := newPropertyHandler(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO properties")).
		WithArgs(int64(9), "Harbor Loft", "A bright loft", "Lisbon", float64(80), nil).
		WillReturnResult(sqlmock.NewResult(33, 1))

	c, rec := jsonContext(t, http.MethodPost, "/api/properties",
		`{"name":"Harbor Loft","description":"A bright loft","location":"Lisbon","pricePerNight":80}`)
	c.Set("user_id", uint64(9))

	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"propertyId":33`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdatePropertyOwnerOnly(t *testing.T) {
	h, mock := newPropertyHandler(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT owner_id FROM properties WHERE id=?")).
		WithArgs(int64(12)).
		WillReturnRows(sqlmock.NewRows([]string{"owner_id"}).AddRow(77))

	c, rec := jsonContext(t, http.MethodPatch, "/api/properties/12",
		`{"name":"n","description":"d","location":"l","pricePerNight":80}`)
	c.SetParamNames("id")
	c.SetParamValues("12")
	c.Set("user_id", uint64(9))

	require.NoError(t, h.Update(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "You can only edit your own properties")
}

func TestDeletePropertyForbiddenForStrangers(t *testing.T) {
	h, mock := newPropertyHandler(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT owner_id FROM properties WHERE id=?")).
		WithArgs(int64(12)).
		WillReturnRows(sqlmock.NewRows([]string{"owner_id"}).AddRow(77))
	// admin flag is re-read from the users table, not trusted from the claim
	mock.ExpectQuery(regexp.QuoteMeta("SELECT is_admin FROM users WHERE id=?")).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"is_admin"}).AddRow(false))

	c, rec := jsonContext(t, http.MethodDelete, "/api/properties/12", "")
	c.SetParamNames("id")
	c.SetParamValues("12")
	c.Set("user_id", uint64(9))

	require.NoError(t, h.Delete(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "You can only delete your own properties")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeletePropertyAdminOverride(t *testing.T) {
	h, mock := newPropertyHandler(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT owner_id FROM properties WHERE id=?")).
		WithArgs(int64(12)).
		WillReturnRows(sqlmock.NewRows([]string{"owner_id"}).AddRow(77))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT is_admin FROM users WHERE id=?")).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"is_admin"}).AddRow(true))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM properties WHERE id=?")).
		WithArgs(int64(12)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	c, rec := jsonContext(t, http.MethodDelete, "/api/properties/12", "")
	c.SetParamNames("id")
	c.SetParamValues("12")
	c.Set("user_id", uint64(9))

	require.NoError(t, h.Delete(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
