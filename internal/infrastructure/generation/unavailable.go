package generation

import (
	"context"
	"errors"

	"github.com/planwise/business-planner/internal/core/domain"
	"github.com/planwise/business-planner/internal/core/ports"
)

// ErrNotConfigured is returned by Unavailable for every call.
var ErrNotConfigured = errors.New("generation: no provider configured")

// Unavailable stands in for the generator when no API key is configured.
// Wizard and blog flows stay reachable and fail at the generation step.
type Unavailable struct{}

var _ ports.GenerationService = Unavailable{}

func (Unavailable) GeneratePlan(context.Context, domain.FormData, domain.ModelTier) (string, error) {
	return "", ErrNotConfigured
}

func (Unavailable) GenerateSuggestions(context.Context, string) ([]string, error) {
	return nil, ErrNotConfigured
}

func (Unavailable) ModerateContent(context.Context, string, string) (bool, error) {
	return false, ErrNotConfigured
}

func (Unavailable) GenerateBlogPost(context.Context, string) (*ports.BlogDraft, error) {
	return nil, ErrNotConfigured
}
