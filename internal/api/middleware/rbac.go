package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/planwise/business-planner/internal/api/handler"
	"github.com/planwise/business-planner/internal/core/session"
)

// RequireSignedIn rejects requests whose client session has no signed-in user.
// Session must run first.
func RequireSignedIn() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			m, _ := c.Get(handler.ContextSession).(*session.Manager)
			if m == nil || !m.State().Authenticated() {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "sign in required"})
			}
			return next(c)
		}
	}
}
