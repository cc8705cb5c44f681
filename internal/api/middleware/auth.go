package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/planwise/business-planner/internal/api/handler"
	"github.com/planwise/business-planner/internal/core/domain"
	"github.com/planwise/business-planner/internal/core/session"
)

// SessionAcquirer returns live client sessions by id.
type SessionAcquirer interface {
	Acquire(ctx context.Context, sid string) (*session.Manager, error)
}

// Auth validates the session JWT and injects its sid claim into context.
func Auth(jwtSecret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			claims := jwt.MapClaims{}
			tkn, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
				if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
					return nil, jwt.ErrTokenSignatureInvalid
				}
				return []byte(jwtSecret), nil
			})
			if err != nil || !tkn.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			sid, _ := claims["sid"].(string)
			if sid == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "token missing session id")
			}
			c.Set(handler.ContextSessionID, sid)

			return next(c)
		}
	}
}

// Session loads the client session named by the sid claim. Auth must run first.
func Session(sessions SessionAcquirer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sid, _ := c.Get(handler.ContextSessionID).(string)
			if sid == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing session id")
			}

			m, err := sessions.Acquire(c.Request().Context(), sid)
			if errors.Is(err, domain.ErrSessionNotFound) {
				return echo.NewHTTPError(http.StatusUnauthorized, "session expired")
			}
			if err != nil {
				return err
			}
			c.Set(handler.ContextSession, m)

			return next(c)
		}
	}
}
