package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/planwise/business-planner/internal/core/domain"
	"github.com/planwise/business-planner/internal/core/shell"
)

func TestRegistry_OpenAcquireClose(t *testing.T) {
	f := newFixture(t)
	r := NewRegistry(f.deps, time.Minute)
	t.Cleanup(r.Shutdown)
	ctx := context.Background()

	m, err := r.Open(ctx, "/blog")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if m.State().Route.View != shell.ViewBlog {
		t.Fatalf("unexpected view %s", m.State().Route.View)
	}
	got, err := r.Acquire(ctx, m.ID())
	if err != nil || got != m {
		t.Fatalf("Acquire returned %v, %v", got, err)
	}

	if err := r.Close(ctx, m.ID()); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := r.Acquire(ctx, m.ID()); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound after close, got %v", err)
	}
	if f.hub.Subscribers() != 0 {
		t.Fatalf("closed session still subscribed")
	}
}

func TestRegistry_AcquireUnknown(t *testing.T) {
	f := newFixture(t)
	r := NewRegistry(f.deps, time.Minute)

	if _, err := r.Acquire(context.Background(), "does-not-exist"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestRegistry_SweepThenRestore(t *testing.T) {
	f := newFixture(t)
	r := NewRegistry(f.deps, time.Minute)
	t.Cleanup(r.Shutdown)
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }
	ctx := context.Background()

	m, _ := r.Open(ctx, "/")
	if _, err := m.SignUp(ctx, "Ada", "ada@x.com", "secret"); err != nil {
		t.Fatalf("SignUp: %v", err)
	}

	now = now.Add(30 * time.Second)
	if n := r.Sweep(); n != 0 {
		t.Fatalf("active session swept")
	}
	now = now.Add(2 * time.Minute)
	if n := r.Sweep(); n != 1 || r.Len() != 0 {
		t.Fatalf("expected one eviction, got %d (len %d)", n, r.Len())
	}
	if f.hub.Subscribers() != 0 {
		t.Fatalf("evicted session still subscribed")
	}

	restored, err := r.Acquire(ctx, m.ID())
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if restored == m {
		t.Fatalf("expected a rebuilt session")
	}
	s := restored.State()
	if !s.Authenticated() || s.Profile.Email != "ada@x.com" || s.Route.View != shell.ViewDashboard {
		t.Fatalf("session not restored: %+v", s)
	}
}
