package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/planwise/business-planner/internal/core/domain"
	"github.com/planwise/business-planner/internal/core/ports"
	"github.com/planwise/business-planner/internal/pkg/metrics"
)

// TestimonialInput is a public submission.
type TestimonialInput struct {
	Author  string `json:"author" validate:"required,max=80"`
	Role    string `json:"role" validate:"max=80"`
	Content string `json:"content" validate:"required,min=10,max=1000"`
	Image   string `json:"image" validate:"omitempty,url"`
}

// SubmissionResult reports the moderation outcome. A rejection is an
// expected result, not an error.
type SubmissionResult struct {
	Outcome     domain.ModerationOutcome `json:"outcome"`
	Testimonial domain.Testimonial       `json:"testimonial"`
}

type TestimonialService struct {
	testimonials ports.Repository[domain.Testimonial]
	gen          ports.GenerationService
	validate     *validator.Validate
	policy       *bluemonday.Policy
	log          zerolog.Logger
	now          func() time.Time
}

func NewTestimonialService(testimonials ports.Repository[domain.Testimonial], gen ports.GenerationService, log zerolog.Logger) *TestimonialService {
	return &TestimonialService{
		testimonials: testimonials,
		gen:          gen,
		validate:     validator.New(),
		policy:       bluemonday.StrictPolicy(),
		log:          log,
		now:          time.Now,
	}
}

// Submit sanitises and moderates in, then stores it. Rejected submissions are
// kept with Approved=false and never listed.
func (s *TestimonialService) Submit(ctx context.Context, in TestimonialInput) (SubmissionResult, error) {
	in.Author = strings.TrimSpace(s.policy.Sanitize(in.Author))
	in.Role = strings.TrimSpace(s.policy.Sanitize(in.Role))
	in.Content = strings.TrimSpace(s.policy.Sanitize(in.Content))
	in.Image = strings.TrimSpace(in.Image)
	if err := s.validate.Struct(in); err != nil {
		return SubmissionResult{}, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	approved, err := s.gen.ModerateContent(ctx, in.Content, in.Author)
	if err != nil {
		metrics.TestimonialsModeratedTotal.WithLabelValues("error").Inc()
		return SubmissionResult{}, fmt.Errorf("%w: %v", domain.ErrModerationFailed, err)
	}

	t := domain.Testimonial{
		ID:       uuid.NewString(),
		Author:   in.Author,
		Role:     in.Role,
		Content:  in.Content,
		Image:    in.Image,
		Approved: approved,
		Date:     s.now().UTC().Format(time.RFC3339),
	}
	saved, err := s.testimonials.Save(ctx, domain.Scope{}, t)
	if err != nil {
		return SubmissionResult{}, err
	}

	outcome := domain.ModerationRejected
	if approved {
		outcome = domain.ModerationAccepted
	}
	metrics.TestimonialsModeratedTotal.WithLabelValues(string(outcome)).Inc()
	return SubmissionResult{Outcome: outcome, Testimonial: saved}, nil
}

// ListApproved returns approved testimonials, newest first.
func (s *TestimonialService) ListApproved(ctx context.Context) ([]domain.Testimonial, error) {
	all, err := s.testimonials.List(ctx, domain.Scope{})
	if err != nil {
		return nil, err
	}
	out := make([]domain.Testimonial, 0, len(all))
	for _, t := range all {
		if t.Approved {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return parseDate(out[i].Date).After(parseDate(out[j].Date))
	})
	return out, nil
}
