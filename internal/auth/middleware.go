package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

const principalKey = "auth.principal"

// Middleware gates a route group on a valid session cookie. The allocator and
// merge engine never check authorization themselves; this is the single gate.
func Middleware(sessions *Sessions) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(SessionCookieName)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required.")
			}
			principal, err := sessions.VerifySession(cookie.Value)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required.")
			}
			c.Set(principalKey, principal)
			return next(c)
		}
	}
}

// PrincipalFrom returns the authenticated principal, or nil outside the
// middleware.
func PrincipalFrom(c echo.Context) *Principal {
	if p, ok := c.Get(principalKey).(*Principal); ok {
		return p
	}
	return nil
}
