package service

import (
	"context"
	"errors"
	"testing"

	"github.com/planwise/business-planner/internal/core/domain"
)

func TestShareService_RoundTrip(t *testing.T) {
	svc := NewShareService(newMemRepo[domain.SharedLink]())
	content := "# Plan\n\nExact content with [[CHART]] token."

	link, err := svc.Create(context.Background(), content)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(link.ID) != 32 {
		t.Fatalf("expected 128-bit hex token, got %q", link.ID)
	}

	got, err := svc.Get(context.Background(), link.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Content != content {
		t.Fatalf("content mismatch: %q", got.Content)
	}
}

func TestShareService_NotFound(t *testing.T) {
	svc := NewShareService(newMemRepo[domain.SharedLink]())

	link, err := svc.Get(context.Background(), "does-not-exist")
	if !errors.Is(err, domain.ErrShareNotFound) || link != nil {
		t.Fatalf("expected ErrShareNotFound, got %v %v", link, err)
	}
}

func TestShareService_TokensAreNotReused(t *testing.T) {
	svc := NewShareService(newMemRepo[domain.SharedLink]())
	a, _ := svc.Create(context.Background(), "same")
	b, _ := svc.Create(context.Background(), "same")
	if a.ID == b.ID {
		t.Fatalf("expected distinct tokens")
	}
}

func TestShareService_RejectsEmptyContent(t *testing.T) {
	svc := NewShareService(newMemRepo[domain.SharedLink]())
	if _, err := svc.Create(context.Background(), "  "); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
