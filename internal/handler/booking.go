package handler

import (
	"context"      // background context for event publishing
	"database/sql" // sentinel errors returned from repository
	"errors"       // errors.Is comparisons
	"math"         // nights are the ceiling of the date difference
	"net/http"     // HTTP status codes
	"strconv"      // parsing path parameters
	"time"         // date parsing and arithmetic

	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/stayloft/stayloft/internal/cache"      // view invalidation
	"github.com/stayloft/stayloft/internal/model"      // status constants
	"github.com/stayloft/stayloft/internal/queue"      // event payloads
	"github.com/stayloft/stayloft/internal/repository" // repository layer
	queuepub "github.com/stayloft/stayloft/internal/service"
)

const dateLayout = "2006-01-02"

// BookingHandler groups the repositories needed for guests to create and
// cancel bookings and for hosts to decide them.  Creation runs inside a
// transaction so the overlap check and the insert are atomic.
type BookingHandler struct {
	Bookings   *repository.BookingRepo
	Properties *repository.PropertyRepo
	Views      *cache.Views
}

// NewBookingHandler constructs a BookingHandler with the provided
// repositories.  Views may be nil when running without Redis.
func NewBookingHandler(b *repository.BookingRepo, p *repository.PropertyRepo, v *cache.Views) *BookingHandler {
	if b == nil || p == nil {
		panic("nil repository passed to NewBookingHandler")
	}
	return &BookingHandler{Bookings: b, Properties: p, Views: v}
}

type createBookingReq struct {
	PropertyID uint64 `json:"propertyId"`
	CheckIn    string `json:"checkIn"`
	CheckOut   string `json:"checkOut"`
}

// nights returns the whole-day length of a stay, rounding any partial
// day up, matching what the booking form shows the guest.
func nights(checkIn, checkOut time.Time) int {
	return int(math.Ceil(checkOut.Sub(checkIn).Hours() / 24))
}

// Create handles POST /api/bookings.  The booking is persisted as
// pending with the total priced at booking time; accepting it later does
// not reprice.  Date ranges overlapping an already-accepted stay are
// rejected with 409 inside the same transaction that inserts the row.
func (h *BookingHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "You must be logged in to book"})
	}
	var req createBookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.PropertyID == 0 || req.CheckIn == "" || req.CheckOut == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "All fields are required"})
	}
	checkIn, err := time.ParseInLocation(dateLayout, req.CheckIn, time.UTC)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid check-in date"})
	}
	checkOut, err := time.ParseInLocation(dateLayout, req.CheckOut, time.UTC)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid check-out date"})
	}
	if !checkOut.After(checkIn) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Check-out date must be after check-in date"})
	}

	ctx := c.Request().Context()
	prop, err := h.Properties.GetByID(ctx, req.PropertyID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Property not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load property"})
	}

	n := nights(checkIn, checkOut)
	total := float64(n) * prop.PricePerNight

	tx, err := h.Bookings.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	overlapping, err := h.Bookings.CountOverlappingAcceptedTx(ctx, tx, req.PropertyID, checkIn, checkOut)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to check availability"})
	}
	if overlapping > 0 {
		return c.JSON(http.StatusConflict, echo.Map{"error": "Property is already booked for those dates"})
	}

	rec := &repository.BookingRecord{
		UserID:     userID,
		PropertyID: req.PropertyID,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		Status:     model.BookingPending,
		TotalPrice: total,
	}
	if err := h.Bookings.CreateTx(ctx, tx, rec); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create booking"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true

	h.Views.Invalidate(ctx, cache.GroupBookings, cache.GroupDashboard)
	go func() {
		_ = queuepub.PublishBookingCreated(context.Background(), queue.BookingCreatedEvent{
			BookingID:    rec.ID,
			GuestID:      userID,
			PropertyID:   prop.ID,
			PropertyName: prop.Name,
			CheckIn:      checkIn.Format(dateLayout),
			CheckOut:     checkOut.Format(dateLayout),
			Nights:       n,
			TotalPrice:   total,
			CreatedAt:    time.Now().UTC().Format(time.RFC3339),
		})
	}()

	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// List handles GET /api/bookings: the guest's own bookings, newest
// first.
func (h *BookingHandler) List(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	details, err := h.Bookings.ListByGuest(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load bookings"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": details})
}

// Cancel handles DELETE /api/bookings/:id, the guest path.  Only the
// booking's guest may cancel here; everyone else sees 403, including
// callers probing ids that do not exist.
func (h *BookingHandler) Cancel(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}

	ctx := c.Request().Context()
	guestID, err := h.Bookings.GetGuestID(ctx, id)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load booking"})
	}
	if errors.Is(err, sql.ErrNoRows) || guestID != userID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "You can only cancel your own bookings"})
	}

	if err := h.Bookings.Delete(ctx, id); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete booking"})
	}

	h.Views.Invalidate(ctx, cache.GroupBookings, cache.GroupDashboard)
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// OwnerCancel handles DELETE /api/bookings/:id/owner, the host path.
// The caller must own the property the booking targets.
func (h *BookingHandler) OwnerCancel(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}

	ctx := c.Request().Context()
	ownerID, err := h.Bookings.GetPropertyOwnerID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load booking"})
	}
	if ownerID != userID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "You are not authorized to delete this booking"})
	}

	if err := h.Bookings.Delete(ctx, id); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete booking"})
	}

	h.Views.Invalidate(ctx, cache.GroupBookings, cache.GroupDashboard)
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

type statusReq struct {
	Status string `json:"status"`
}

// UpdateStatus handles PATCH /api/bookings/:id/status.  Hosts accept or
// reject pending requests on their properties.  Accepted and rejected
// are terminal: re-deciding answers 409.
func (h *BookingHandler) UpdateStatus(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	var req statusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Status != model.BookingAccepted && req.Status != model.BookingRejected {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid status. Must be 'accepted' or 'rejected'"})
	}

	ctx := c.Request().Context()
	ownerID, err := h.Bookings.GetPropertyOwnerID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load booking"})
	}
	if ownerID != userID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "You are not authorized to update this booking"})
	}

	if err := h.Bookings.UpdateStatusFromPending(ctx, id, req.Status); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "Booking has already been decided"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update booking"})
	}

	h.Views.Invalidate(ctx, cache.GroupBookings, cache.GroupDashboard)
	go func() {
		_ = queuepub.PublishBookingStatus(context.Background(), queue.BookingStatusEvent{
			BookingID: id,
			OwnerID:   ownerID,
			Status:    req.Status,
			DecidedAt: time.Now().UTC().Format(time.RFC3339),
		})
	}()

	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
