package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/planwise/business-planner/internal/api/handler"
	"github.com/planwise/business-planner/internal/core/service"
	"github.com/planwise/business-planner/internal/core/session"
	"github.com/planwise/business-planner/internal/infrastructure/db/memory"
	"github.com/planwise/business-planner/internal/infrastructure/identity"
)

func newSignedInSession(t *testing.T) *session.Manager {
	t.Helper()
	kv := memory.NewKVStore()
	m := session.NewManager("s1", session.Deps{
		Auth:   service.NewAuthService(nil, identity.NewLocalUsers(kv), zerolog.Nop()),
		Events: identity.NewHub(),
		Store:  kv,
		Log:    zerolog.Nop(),
	})
	m.Init(context.Background(), "/")
	t.Cleanup(m.Teardown)
	if _, err := m.SignUp(context.Background(), "Ada", "ada@x.com", "secret"); err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	return m
}

func TestRequireSignedIn_Allows(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(handler.ContextSession, newSignedInSession(t))

	called := false
	next := RequireSignedIn()(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})

	if err := next(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next handler not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRequireSignedIn_RejectsAnonymous(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(handler.ContextSession, session.NewManager("anon", session.Deps{}))

	next := RequireSignedIn()(func(c echo.Context) error {
		t.Fatalf("should not reach next handler")
		return nil
	})

	_ = next(c)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
