package web

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/stayloft/stayloft/internal/model"
	"github.com/stayloft/stayloft/internal/repository"
)

// Pages renders the HTML pages.  Data is read through the same
// repositories the API uses; forms on the pages submit JSON to the API
// endpoints.
type Pages struct {
	Properties *repository.PropertyRepo
	Bookings   *repository.BookingRepo
}

func NewPages(p *repository.PropertyRepo, b *repository.BookingRepo) *Pages {
	return &Pages{Properties: p, Bookings: b}
}

// viewer is the identity block every page template receives.
type viewer struct {
	SignedIn bool
	Name     string
}

func viewerFrom(c echo.Context) viewer {
	v := viewer{SignedIn: c.Get("user_id") != nil}
	if name, ok := c.Get("user_name").(string); ok {
		v.Name = name
	}
	return v
}

func viewerID(c echo.Context) uint64 {
	switch id := c.Get("user_id").(type) {
	case uint64:
		return id
	case int64:
		return uint64(id)
	case float64:
		return uint64(id)
	}
	return 0
}

// Home renders the listing grid, most expensive first.
func (p *Pages) Home(c echo.Context) error {
	properties, err := p.Properties.ListAll(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load properties")
	}
	return c.Render(http.StatusOK, "home", echo.Map{
		"Viewer":     viewerFrom(c),
		"Properties": properties,
	})
}

// Login renders the sign-in form, preserving the redirect target the
// access gate attached.
func (p *Pages) Login(c echo.Context) error {
	return c.Render(http.StatusOK, "login", echo.Map{
		"Viewer":     viewerFrom(c),
		"RedirectTo": c.QueryParam("redirectTo"),
	})
}

// Register renders the sign-up form.
func (p *Pages) Register(c echo.Context) error {
	return c.Render(http.StatusOK, "register", echo.Map{"Viewer": viewerFrom(c)})
}

// PropertyNew renders the listing creation form.
func (p *Pages) PropertyNew(c echo.Context) error {
	return c.Render(http.StatusOK, "property_form", echo.Map{
		"Viewer":   viewerFrom(c),
		"Editing":  false,
		"Property": model.Property{IsAvailable: true},
	})
}

// PropertyDetail renders a single listing with its booking form.
func (p *Pages) PropertyDetail(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return p.notFound(c)
	}
	property, err := p.Properties.GetByID(c.Request().Context(), id)
	if errors.Is(err, sql.ErrNoRows) {
		return p.notFound(c)
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load property")
	}
	v := viewerFrom(c)
	return c.Render(http.StatusOK, "property_detail", echo.Map{
		"Viewer":   v,
		"Property": property,
		"IsOwner":  v.SignedIn && property.OwnerID == viewerID(c),
	})
}

// PropertyEdit renders the edit form pre-filled with the listing.  The
// API enforces ownership on submit; the page only steers non-owners
// back to the detail view.
func (p *Pages) PropertyEdit(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return p.notFound(c)
	}
	property, err := p.Properties.GetByID(c.Request().Context(), id)
	if errors.Is(err, sql.ErrNoRows) {
		return p.notFound(c)
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load property")
	}
	if property.OwnerID != viewerID(c) {
		return c.Redirect(http.StatusFound, "/properties/"+c.Param("id"))
	}
	return c.Render(http.StatusOK, "property_form", echo.Map{
		"Viewer":   viewerFrom(c),
		"Editing":  true,
		"Property": property,
	})
}

// BookingsPage renders the guest's trips, newest first.
func (p *Pages) BookingsPage(c echo.Context) error {
	bookings, err := p.Bookings.ListByGuest(c.Request().Context(), viewerID(c))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load bookings")
	}
	return c.Render(http.StatusOK, "bookings", echo.Map{
		"Viewer":   viewerFrom(c),
		"Bookings": bookings,
	})
}

// MyProperties renders the host dashboard: the caller's listings and
// every booking request against them.
func (p *Pages) MyProperties(c echo.Context) error {
	ctx := c.Request().Context()
	ownerID := viewerID(c)
	properties, err := p.Properties.ListByOwner(ctx, ownerID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load properties")
	}
	bookings, err := p.Bookings.ListByOwner(ctx, ownerID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load bookings")
	}
	return c.Render(http.StatusOK, "my_properties", echo.Map{
		"Viewer":     viewerFrom(c),
		"Properties": properties,
		"Bookings":   bookings,
	})
}

func (p *Pages) notFound(c echo.Context) error {
	return c.Render(http.StatusNotFound, "not_found", echo.Map{"Viewer": viewerFrom(c)})
}
