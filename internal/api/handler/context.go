package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/planwise/business-planner/internal/core/domain"
	"github.com/planwise/business-planner/internal/core/session"
)

// Context keys set by the session middleware.
const (
	ContextSessionID = "sid"
	ContextSession   = "session"
)

// ctxSession returns the client session attached by the session middleware.
// Its absence means the route was registered without that middleware, which
// is reported as 401 so the client re-opens a session.
func ctxSession(c echo.Context) (*session.Manager, error) {
	m, _ := c.Get(ContextSession).(*session.Manager)
	if m == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing session")
	}
	return m, nil
}

// ctxProfile returns the session together with its signed-in profile.
func ctxProfile(c echo.Context) (*session.Manager, domain.UserProfile, error) {
	m, err := ctxSession(c)
	if err != nil {
		return nil, domain.UserProfile{}, err
	}
	s := m.State()
	if !s.Authenticated() {
		return nil, domain.UserProfile{}, domain.ErrNotSignedIn
	}
	return m, *s.Profile, nil
}

// bindAndValidate decodes the request body into req and validates it.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if c.Echo().Validator == nil {
		return nil
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}
