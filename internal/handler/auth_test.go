package handler

import (
	"net/http"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/stayloft/stayloft/internal/config"
	"github.com/stayloft/stayloft/internal/middleware"
	"github.com/stayloft/stayloft/internal/repository"
)

func newAuthHandler(t *testing.T) (*AuthHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	cfg := config.Config{
		JWTSecret:      "test-secret",
		AccessTTLMin:   15,
		RefreshTTLDays: 30,
		BcryptCost:     bcrypt.MinCost,
	}
	return NewAuthHandler(cfg, repository.NewUserRepo(db), repository.NewTokenRepo(db)), mock
}

func TestRegisterValidation(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"empty name", `{"name":"","email":"a@b.c","password":"secret1","confirmPassword":"secret1"}`, "All fields are required"},
		{"empty email", `{"name":"Ana","email":"","password":"secret1","confirmPassword":"secret1"}`, "All fields are required"},
		{"missing confirm", `{"name":"Ana","email":"a@b.c","password":"secret1"}`, "All fields are required"},
		{"mismatch", `{"name":"Ana","email":"a@b.c","password":"secret1","confirmPassword":"secret2"}`, "Passwords do not match"},
		{"too short", `{"name":"Ana","email":"a@b.c","password":"abc","confirmPassword":"abc"}`, "Password must be at least 6 characters"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h, _ := newAuthHandler(t)
			c, rec := jsonContext(t, http.MethodPost, "/api/auth/register", tc.body)

			require.NoError(t, h.Register(c))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), tc.want)
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	h, mock := newAuthHandler(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnError(assertableMySQLDuplicate{})

	c, rec := jsonContext(t, http.MethodPost, "/api/auth/register",
		`{"name":"Ana","email":"ana@example.com","password":"secret1","confirmPassword":"secret1"}`)

	require.NoError(t, h.Register(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "email already exists")
}

// assertableMySQLDuplicate mimics the driver's duplicate-key error text.
type assertableMySQLDuplicate struct{}

func (assertableMySQLDuplicate) Error() string {
	return "Error 1062 (23000): Duplicate entry 'ana@example.com' for key 'users.email'"
}

func TestRegisterOpensSession(t *testing.T) {
	h, mock := newAuthHandler(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs("Ana", "ana@example.com", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(21, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO refresh_tokens")).
		WithArgs(int64(21), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	// email arrives mixed-case and is normalized before insertion
	c, rec := jsonContext(t, http.MethodPost, "/api/auth/register",
		`{"name":"Ana","email":"Ana@Example.com","password":"secret1","confirmPassword":"secret1"}`)

	require.NoError(t, h.Register(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":true`)

	cookies := rec.Result().Cookies()
	var names []string
	for _, ck := range cookies {
		names = append(names, ck.Name)
		assert.True(t, ck.HttpOnly, "cookie %s must be HttpOnly", ck.Name)
	}
	assert.Contains(t, names, middleware.SessionCookie)
	assert.Contains(t, names, "refresh_token")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	t.Run("unknown email", func(t *testing.T) {
		h, mock := newAuthHandler(t)
		mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email=?")).
			WithArgs("ghost@example.com").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		c, rec := jsonContext(t, http.MethodPost, "/api/auth/login",
			`{"email":"ghost@example.com","password":"secret1"}`)

		require.NoError(t, h.Login(c))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "invalid credentials")
	})

	t.Run("wrong password", func(t *testing.T) {
		h, mock := newAuthHandler(t)
		hash, err := bcrypt.GenerateFromPassword([]byte("right-password"), bcrypt.MinCost)
		require.NoError(t, err)
		now := time.Now().UTC()
		mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email=?")).
			WithArgs("ana@example.com").
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "is_admin", "created_at", "updated_at"}).
				AddRow(21, "Ana", "ana@example.com", string(hash), false, now, now))

		c, rec := jsonContext(t, http.MethodPost, "/api/auth/login",
			`{"email":"ana@example.com","password":"wrong-password"}`)

		require.NoError(t, h.Login(c))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "invalid credentials")
	})
}

func TestLoginSetsSessionCookies(t *testing.T) {
	h, mock := newAuthHandler(t)
	hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	require.NoError(t, err)
	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email=?")).
		WithArgs("ana@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "is_admin", "created_at", "updated_at"}).
			AddRow(21, "Ana", "ana@example.com", string(hash), false, now, now))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO refresh_tokens")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	c, rec := jsonContext(t, http.MethodPost, "/api/auth/login",
		`{"email":"ana@example.com","password":"secret1"}`)

	require.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var names []string
	for _, ck := range rec.Result().Cookies() {
		names = append(names, ck.Name)
	}
	assert.Contains(t, names, middleware.SessionCookie)
	assert.Contains(t, names, "refresh_token")
}

func TestLogoutAlwaysSucceeds(t *testing.T) {
	h, _ := newAuthHandler(t)
	c, rec := jsonContext(t, http.MethodPost, "/api/auth/logout", "{}")

	require.NoError(t, h.Logout(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":true`)

	// both cookies cleared even without a valid session
	for _, ck := range rec.Result().Cookies() {
		assert.Equal(t, -1, ck.MaxAge, "cookie %s should expire", ck.Name)
	}
}

func TestMeRequiresSession(t *testing.T) {
	h, _ := newAuthHandler(t)
	c, rec := jsonContext(t, http.MethodGet, "/api/auth/me", "")

	require.NoError(t, h.Me(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
