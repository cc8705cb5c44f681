package service

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/planwise/business-planner/internal/core/domain"
	"github.com/planwise/business-planner/internal/core/ports"
)

// PlanService manages a user's finalised plans.
type PlanService struct {
	plans ports.Repository[domain.SavedPlan]
	log   zerolog.Logger
	now   func() time.Time
}

func NewPlanService(plans ports.Repository[domain.SavedPlan], log zerolog.Logger) *PlanService {
	return &PlanService{plans: plans, log: log, now: time.Now}
}

// Create stores a new plan generated from form. Each call creates a distinct record.
func (s *PlanService) Create(ctx context.Context, userID string, form domain.FormData, content string) (domain.SavedPlan, error) {
	if userID == "" {
		return domain.SavedPlan{}, domain.ErrNotSignedIn
	}
	style := form.TemplateStyle
	if style == "" {
		style = domain.DefaultTemplateStyle
	}
	plan := domain.SavedPlan{
		ID:       uuid.NewString(),
		UserID:   userID,
		Date:     s.now().UTC().Format(time.RFC3339Nano),
		Title:    domain.PlanTitle(form),
		Style:    style,
		Content:  content,
		FormData: form,
	}
	return s.plans.Save(ctx, domain.OwnedBy(userID), plan)
}

// List returns the user's plans, newest first.
func (s *PlanService) List(ctx context.Context, userID string) ([]domain.SavedPlan, error) {
	plans, err := s.plans.List(ctx, domain.OwnedBy(userID))
	if err != nil {
		return nil, err
	}
	sort.SliceStable(plans, func(i, j int) bool {
		return parseDate(plans[i].Date).After(parseDate(plans[j].Date))
	})
	return plans, nil
}

// Count returns how many plans the user holds, for quota checks.
func (s *PlanService) Count(ctx context.Context, userID string) (int, error) {
	plans, err := s.plans.List(ctx, domain.OwnedBy(userID))
	if err != nil {
		return 0, err
	}
	return len(plans), nil
}

func (s *PlanService) Get(ctx context.Context, userID, id string) (*domain.SavedPlan, error) {
	plan, err := s.plans.Get(ctx, domain.OwnedBy(userID), id)
	if err != nil {
		return nil, err
	}
	if plan == nil || plan.UserID != userID {
		return nil, domain.ErrPlanNotFound
	}
	return plan, nil
}

func (s *PlanService) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	return s.plans.Delete(ctx, domain.OwnedBy(userID), id)
}

// parseDate reads the timestamps written by this package and by older
// clients; unparseable dates sort last.
func parseDate(s string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
