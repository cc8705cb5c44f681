package ports

import (
	"context"

	"github.com/planwise/business-planner/internal/core/domain"
)

// UserRepository defines the interface for account persistence. Both the
// remote identity backend and the local fallback implement it.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	// Update replaces the mutable fields of an existing user (last write wins).
	Update(ctx context.Context, user *domain.User) (*domain.User, error)
}
