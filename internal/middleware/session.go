package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"net/http" // HTTP status codes for responses
	"strings"  // string utilities for prefix checking and trimming

	"github.com/golang-jwt/jwt/v5" // JWT library for parsing and validating tokens
	"github.com/labstack/echo/v4"  // Echo framework used for defining middleware and handlers
)

// SessionCookie is the name of the cookie carrying the access token for
// browser clients.  API clients may use the Authorization header instead.
const SessionCookie = "session"

// Session returns an Echo middleware that resolves the caller's identity
// from a Bearer access token or the session cookie and injects the
// claims into the request context.  The middleware never rejects a
// request: routes that require a caller use RequireUser (or check the
// context themselves) so that public pages can still tailor output for
// signed-in visitors.  Claims are parsed once per request; handlers read
// the memoized values via c.Get("user_id"), c.Get("user_name") and
// c.Get("is_admin").
func Session(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := tokenFromRequest(c)
			if raw == "" {
				return next(c)
			}
			// Parse the token using the HS256 signing method and our
			// secret.  A different signing algorithm means the token was
			// not issued by us, so the caller stays anonymous.
			tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, echo.ErrUnauthorized
				}
				return []byte(secret), nil
			})
			if err != nil || !tok.Valid {
				return next(c)
			}
			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return next(c)
			}
			c.Set("user_id", claims["sub"])
			if name, ok := claims["name"].(string); ok {
				c.Set("user_name", name)
			}
			if adm, ok := claims["adm"].(bool); ok {
				c.Set("is_admin", adm)
			}
			return next(c)
		}
	}
}

// RequireUser aborts with 401 when no identity was resolved by Session.
// It wraps API routes whose contract demands a caller.
func RequireUser() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Get("user_id") == nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
			}
			return next(c)
		}
	}
}

// tokenFromRequest extracts the raw access token, preferring the
// Authorization header over the session cookie.
func tokenFromRequest(c echo.Context) string {
	auth := c.Request().Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	if ck, err := c.Cookie(SessionCookie); err == nil && ck.Value != "" {
		return ck.Value
	}
	return ""
}
