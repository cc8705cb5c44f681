package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/planwise/business-planner/internal/core/domain"
	"github.com/planwise/business-planner/internal/core/ports"
)

// ShareService publishes read-only plan snapshots under opaque tokens.
// Links carry no owner and never expire.
type ShareService struct {
	shares ports.Repository[domain.SharedLink]
	now    func() time.Time
}

func NewShareService(shares ports.Repository[domain.SharedLink]) *ShareService {
	return &ShareService{shares: shares, now: time.Now}
}

// Create stores content under a fresh 128-bit token.
func (s *ShareService) Create(ctx context.Context, content string) (domain.SharedLink, error) {
	if strings.TrimSpace(content) == "" {
		return domain.SharedLink{}, domain.ErrInvalidInput
	}
	link := domain.SharedLink{
		ID:        strings.ReplaceAll(uuid.NewString(), "-", ""),
		Content:   content,
		CreatedAt: s.now().UTC(),
	}
	return s.shares.Save(ctx, domain.Scope{}, link)
}

// Get returns the link or ErrShareNotFound.
func (s *ShareService) Get(ctx context.Context, id string) (*domain.SharedLink, error) {
	if id == "" {
		return nil, domain.ErrShareNotFound
	}
	link, err := s.shares.Get(ctx, domain.Scope{}, id)
	if err != nil {
		return nil, err
	}
	if link == nil {
		return nil, domain.ErrShareNotFound
	}
	return link, nil
}
