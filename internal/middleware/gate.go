package middleware

import (
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/labstack/echo/v4"
)

// Path classes for the access gate.  Protected paths require a signed-in
// caller; auth pages should only be visited while signed out.
var (
	protectedPrefixes = []string{"/properties/new", "/bookings", "/my-properties"}
	authPages         = []string{"/login", "/register"}
	editPathPattern   = regexp.MustCompile(`^/properties/[^/]+/edit$`)
)

// AccessGate runs ahead of every matched page route.  It relies on the
// Session middleware having already resolved the caller's claims.
// Unauthenticated callers on a protected path are redirected to the
// login page carrying the original path in redirectTo; authenticated
// callers visiting an auth page are bounced to the home page.  API,
// upload and health routes are exempt: JSON endpoints answer with status
// codes, not redirects.
func AccessGate() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path
			if strings.HasPrefix(path, "/api/") || strings.HasPrefix(path, "/uploads/") || path == "/healthz" {
				return next(c)
			}

			if !signedIn(c) && isProtectedPath(path) {
				return c.Redirect(http.StatusFound, "/login?redirectTo="+url.QueryEscape(path))
			}
			if signedIn(c) && isAuthPage(path) {
				return c.Redirect(http.StatusFound, "/")
			}
			return next(c)
		}
	}
}

func isProtectedPath(path string) bool {
	for _, p := range protectedPrefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return editPathPattern.MatchString(path)
}

func isAuthPage(path string) bool {
	for _, p := range authPages {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}
