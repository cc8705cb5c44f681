package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/planwise/business-planner/internal/core/domain"
	"github.com/planwise/business-planner/internal/core/session"
	"github.com/planwise/business-planner/internal/core/shell"
)

func TestAuthHandler_SignUp_Success(t *testing.T) {
	f := newFixture(t)
	h := NewAuthHandler()
	m := f.open(t, "/")

	c, rec := f.request(m, http.MethodPost, "/v1/auth/signup", `{"name":"Ada","email":"ada@example.com","password":"secret"}`)
	if err := h.SignUp(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp sessionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	s := resp.Session
	if s.Status != session.StatusAuthenticated || s.Profile == nil || s.Profile.Plan != domain.PlanStarter {
		t.Fatalf("unexpected session: %+v", s)
	}
	if s.Route.View != shell.ViewDashboard {
		t.Fatalf("expected dashboard, got %s", s.Route.View)
	}
}

func TestAuthHandler_SignUp_ValidationError(t *testing.T) {
	f := newFixture(t)
	h := NewAuthHandler()
	m := f.open(t, "/")

	c, _ := f.request(m, http.MethodPost, "/v1/auth/signup", `{"name":"Ada","email":"not-an-email","password":"secret"}`)
	err := h.SignUp(c)

	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestAuthHandler_SignUp_UserExists(t *testing.T) {
	f := newFixture(t)
	h := NewAuthHandler()
	f.signedIn(t)
	m := f.open(t, "/")

	c, _ := f.request(m, http.MethodPost, "/v1/auth/signup", `{"name":"Ada","email":"ada@example.com","password":"secret"}`)
	if err := h.SignUp(c); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	f := newFixture(t)
	h := NewAuthHandler()
	f.signedIn(t)
	m := f.open(t, "/")

	c, _ := f.request(m, http.MethodPost, "/v1/auth/login", `{"email":"ada@example.com","password":"wrong-one"}`)
	if err := h.Login(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if m.State().Authenticated() {
		t.Fatalf("failed login must not sign the session in")
	}
}

func TestAuthHandler_UpdatePlanIsIdempotent(t *testing.T) {
	f := newFixture(t)
	h := NewAuthHandler()
	m := f.signedIn(t)

	for i := 0; i < 2; i++ {
		c, rec := f.request(m, http.MethodPut, "/v1/me/plan", `{"plan":"pro"}`)
		if err := h.UpdatePlan(c); err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
		var resp profileResponse
		_ = json.Unmarshal(rec.Body.Bytes(), &resp)
		if resp.Profile.Plan != domain.PlanPro {
			t.Fatalf("call %d: expected pro, got %s", i, resp.Profile.Plan)
		}
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	f := newFixture(t)
	h := NewAuthHandler()
	m := f.signedIn(t)

	c, rec := f.request(m, http.MethodPost, "/v1/auth/logout", "")
	if err := h.Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK || m.State().Authenticated() {
		t.Fatalf("session still signed in")
	}
}
