package web

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stayloft/stayloft/internal/model"
)

func renderPage(t *testing.T, name string, data any) string {
	t.Helper()
	r, err := NewRenderer()
	require.NoError(t, err)
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	var sb strings.Builder
	require.NoError(t, r.Render(&sb, name, data, c))
	return sb.String()
}

func TestHomeRendersListings(t *testing.T) {
	img := "http://localhost:8080/uploads/9/photo.jpg"
	out := renderPage(t, "home", echo.Map{
		"Viewer": viewer{SignedIn: true, Name: "Ana"},
		"Properties": []model.Property{
			{ID: 7, Name: "Harbor Loft", Location: "Lisbon", PricePerNight: 80, ImageURL: &img},
		},
	})
	assert.Contains(t, out, "Harbor Loft")
	assert.Contains(t, out, "Lisbon")
	assert.Contains(t, out, "$80.00")
	assert.Contains(t, out, `/properties/7`)
	assert.Contains(t, out, img)
}

func TestHomeEmptyStateDependsOnViewer(t *testing.T) {
	signedOut := renderPage(t, "home", echo.Map{
		"Viewer":     viewer{},
		"Properties": []model.Property{},
	})
	assert.Contains(t, signedOut, "Sign up")

	signedIn := renderPage(t, "home", echo.Map{
		"Viewer":     viewer{SignedIn: true, Name: "Ana"},
		"Properties": []model.Property{},
	})
	assert.Contains(t, signedIn, "List the first one")
}

func TestLoginCarriesRedirectTarget(t *testing.T) {
	out := renderPage(t, "login", echo.Map{
		"Viewer":     viewer{},
		"RedirectTo": "/properties/new",
	})
	assert.Contains(t, out, "/properties/new")
}

func TestEveryPageTemplateParses(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)
	for _, name := range []string{"home", "login", "register", "property_form", "property_detail", "bookings", "my_properties", "not_found"} {
		assert.NotNil(t, r.templates.Lookup(name), "template %s missing", name)
	}
}
