package middleware

import (
	"strings"

	"github.com/S-W-Development-Group-Project-UOG-4-7/Easy-Park-sub002/internal/principal"
	"github.com/labstack/echo/v4"
)

const (
	HeaderUserID    = "X-User-ID"
	HeaderUserRoles = "X-User-Roles"

	principalKey = "principal"
)

// Principal reads the caller identity forwarded by the auth gateway. Requests
// without headers get an anonymous principal; handlers decide whether that is
// enough.
func Principal() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Request().Header
			p := principal.Principal{
				UserID: strings.TrimSpace(h.Get(HeaderUserID)),
				Roles:  principal.ParseRoles(h.Values(HeaderUserRoles)...),
			}
			c.Set(principalKey, p)
			return next(c)
		}
	}
}

// PrincipalFrom returns the principal stored by Principal, or the anonymous
// principal when the middleware did not run.
func PrincipalFrom(c echo.Context) principal.Principal {
	if p, ok := c.Get(principalKey).(principal.Principal); ok {
		return p
	}
	return principal.Principal{}
}
