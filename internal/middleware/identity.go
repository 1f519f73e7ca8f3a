package middleware

// identity.go provides helpers shared across middleware files for
// reading the resolved session claims out of the Echo context.

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// signedIn reports whether the Session middleware resolved an identity
// for this request.
func signedIn(c echo.Context) bool {
	return c.Get("user_id") != nil
}

// userKey returns a stable identifier for the caller usable in cache and
// rate-limit keys.  Anonymous callers share the "guest" bucket.
func userKey(c echo.Context) string {
	v := c.Get("user_id")
	if v == nil {
		return "guest"
	}
	switch t := v.(type) {
	case string:
		if t != "" {
			return t
		}
	case float64:
		return strconv.FormatUint(uint64(t), 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	}
	return "guest"
}
