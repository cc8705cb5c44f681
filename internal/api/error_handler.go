package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/planwise/business-planner/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	// Known domain errors → deterministic HTTP codes. Messages carry the
	// wrapped detail so the client can display them.
	switch {
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrUnknownField),
		errors.Is(err, domain.ErrNoPreviousStep),
		errors.Is(err, domain.ErrNoNextStep):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, domain.ErrNotSignedIn),
		errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, domain.ErrQuotaExceeded),
		errors.Is(err, domain.ErrPaymentIncomplete):
		return http.StatusPaymentRequired, err.Error()
	case errors.Is(err, domain.ErrExportNotAllowed):
		return http.StatusForbidden, err.Error()
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, "user not found"
	case errors.Is(err, domain.ErrPlanNotFound),
		errors.Is(err, domain.ErrShareNotFound),
		errors.Is(err, domain.ErrPostNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusConflict, "user already exists"
	case errors.Is(err, domain.ErrNotAnUpgrade),
		errors.Is(err, domain.ErrGenerationInProgress),
		errors.Is(err, domain.ErrWizardDetached):
		return http.StatusConflict, err.Error()
	case errors.Is(err, domain.ErrStepIncomplete):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, domain.ErrRateLimited),
		errors.Is(err, domain.ErrDailyCapReached):
		return http.StatusTooManyRequests, err.Error()
	case errors.Is(err, domain.ErrGenerationFailed):
		return http.StatusBadGateway, err.Error()
	case errors.Is(err, domain.ErrPaymentUnavailable),
		errors.Is(err, domain.ErrModerationFailed):
		return http.StatusServiceUnavailable, err.Error()
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
