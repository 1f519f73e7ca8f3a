package handler

import (
	"context"      // context with timeout for DB calls
	"database/sql" // sentinel errors from repository
	"errors"       // errors.Is comparisons
	"net/http"     // HTTP status codes
	"strconv"      // parsing path parameters
	"time"         // timestamps and timeouts

	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/stayloft/stayloft/internal/cache"      // view invalidation
	"github.com/stayloft/stayloft/internal/model"      // row structs
	"github.com/stayloft/stayloft/internal/repository" // repository layer
)

// PropertyHandler groups the repositories used by listing endpoints.
// Mutations enforce owner-or-admin authorization and invalidate the
// affected cached views.
type PropertyHandler struct {
	Properties *repository.PropertyRepo
	Bookings   *repository.BookingRepo
	Users      *repository.UserRepo
	Views      *cache.Views
}

// NewPropertyHandler constructs a PropertyHandler.  Views may be nil
// when running without Redis.
func NewPropertyHandler(p *repository.PropertyRepo, b *repository.BookingRepo, u *repository.UserRepo, v *cache.Views) *PropertyHandler {
	if p == nil || b == nil || u == nil {
		panic("nil repository passed to NewPropertyHandler")
	}
	return &PropertyHandler{Properties: p, Bookings: b, Users: u, Views: v}
}

type propertyReq struct {
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	Location      string  `json:"location"`
	PricePerNight float64 `json:"pricePerNight"`
	ImageURL      string  `json:"imageUrl"`
}

type propertyResp struct {
	ID            uint64  `json:"id"`
	OwnerID       uint64  `json:"ownerId"`
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	Location      string  `json:"location"`
	PricePerNight float64 `json:"pricePerNight"`
	ImageURL      *string `json:"imageUrl,omitempty"`
	IsAvailable   bool    `json:"isAvailable"`
	CreatedAt     string  `json:"createdAt"`
}

func toPropertyResp(p model.Property) propertyResp {
	return propertyResp{
		ID:            p.ID,
		OwnerID:       p.OwnerID,
		Name:          p.Name,
		Description:   p.Description,
		Location:      p.Location,
		PricePerNight: p.PricePerNight,
		ImageURL:      p.ImageURL,
		IsAvailable:   p.IsAvailable,
		CreatedAt:     p.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func (r propertyReq) invalid() bool {
	return r.Name == "" || r.Description == "" || r.Location == "" || r.PricePerNight <= 0
}

// List handles GET /api/properties.  All properties ordered by nightly
// price descending; signedIn lets the page tailor its empty state.
func (h *PropertyHandler) List(c echo.Context) error {
	ctx := c.Request().Context()
	props, err := h.Properties.ListAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load properties"})
	}
	items := make([]propertyResp, 0, len(props))
	for _, p := range props {
		items = append(items, toPropertyResp(p))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"items":    items,
		"signedIn": c.Get("user_id") != nil,
	})
}

// Get handles GET /api/properties/:id.
func (h *PropertyHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid property id"})
	}
	p, err := h.Properties.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Property not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load property"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": toPropertyResp(p)})
}

// Create handles POST /api/properties.
func (h *PropertyHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "You must be logged in to create a property"})
	}
	var req propertyReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.invalid() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "All required fields must be filled"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p := model.Property{
		OwnerID:       userID,
		Name:          req.Name,
		Description:   req.Description,
		Location:      req.Location,
		PricePerNight: req.PricePerNight,
	}
	if req.ImageURL != "" {
		p.ImageURL = &req.ImageURL
	}
	id, err := h.Properties.Create(ctx, &p)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create property"})
	}

	h.Views.Invalidate(ctx, cache.GroupHome)
	return c.JSON(http.StatusOK, echo.Map{"success": true, "propertyId": id})
}

// Update handles PATCH /api/properties/:id.  Only the owner may edit a
// listing; admins do not get the edit override, matching the delete-only
// scope of the admin flag.
func (h *PropertyHandler) Update(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "You must be logged in to update a property"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid property id"})
	}
	var req propertyReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.invalid() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "All required fields must be filled"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ownerID, err := h.Properties.GetOwnerID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Property not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load property"})
	}
	if ownerID != userID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "You can only edit your own properties"})
	}

	p := model.Property{
		ID:            id,
		Name:          req.Name,
		Description:   req.Description,
		Location:      req.Location,
		PricePerNight: req.PricePerNight,
	}
	if req.ImageURL != "" {
		p.ImageURL = &req.ImageURL
	}
	if err := h.Properties.Update(ctx, &p); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update property"})
	}

	h.Views.Invalidate(ctx, cache.GroupHome, cache.PropertyGroup(id))
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// Delete handles DELETE /api/properties/:id.  The owner or an admin may
// delete; the admin flag is re-read from the profile row so a stale
// session claim cannot grant the override.
func (h *PropertyHandler) Delete(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid property id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ownerID, err := h.Properties.GetOwnerID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Property not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load property"})
	}
	if ownerID != userID {
		admin, err := h.Users.IsAdmin(ctx, userID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load profile"})
		}
		if !admin {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "You can only delete your own properties"})
		}
	}

	if err := h.Properties.Delete(ctx, id); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete property"})
	}

	h.Views.Invalidate(ctx, cache.GroupHome, cache.GroupDashboard, cache.PropertyGroup(id))
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// MyProperties handles GET /api/my-properties: the host dashboard data,
// the caller's listings newest first plus every booking on them with the
// guest's profile attached.
func (h *PropertyHandler) MyProperties(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx := c.Request().Context()

	props, err := h.Properties.ListByOwner(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load properties"})
	}
	bookings, err := h.Bookings.ListByOwner(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load bookings"})
	}
	items := make([]propertyResp, 0, len(props))
	for _, p := range props {
		items = append(items, toPropertyResp(p))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"properties": items,
		"bookings":   bookings,
	})
}
