package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/planwise/business-planner/internal/core/domain"
	"github.com/planwise/business-planner/internal/core/ports"
)

const maxKeywordLength = 100

// SuggestionService proposes business ideas for the wizard's first step.
type SuggestionService struct {
	gen ports.GenerationService
}

func NewSuggestionService(gen ports.GenerationService) *SuggestionService {
	return &SuggestionService{gen: gen}
}

func (s *SuggestionService) Suggest(ctx context.Context, keyword string) ([]string, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" || len(keyword) > maxKeywordLength {
		return nil, domain.ErrInvalidInput
	}
	out, err := s.gen.GenerateSuggestions(ctx, keyword)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrGenerationFailed, err)
	}
	if out == nil {
		out = []string{}
	}
	return out, nil
}
