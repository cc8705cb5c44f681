package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/planwise/business-planner/internal/core/domain"
	"github.com/planwise/business-planner/internal/core/ports"
	"github.com/planwise/business-planner/internal/pkg/metrics"
)

const aiAuthor = "Planner AI"

// BlogService serves seed and generated articles and runs the rate-limited
// automated generation.
type BlogService struct {
	posts   ports.Repository[domain.BlogPost]
	gen     ports.GenerationService
	limiter *BlogRateLimiter
	text    *bluemonday.Policy
	html    *bluemonday.Policy
	log     zerolog.Logger
}

func NewBlogService(posts ports.Repository[domain.BlogPost], gen ports.GenerationService, limiter *BlogRateLimiter, log zerolog.Logger) *BlogService {
	return &BlogService{
		posts:   posts,
		gen:     gen,
		limiter: limiter,
		text:    bluemonday.StrictPolicy(),
		html:    bluemonday.UGCPolicy(),
		log:     log,
	}
}

// List merges stored posts with the seed set, de-duplicated by id, optionally
// filtered by category, newest first.
func (s *BlogService) List(ctx context.Context, category string) ([]domain.BlogPost, error) {
	stored, err := s.posts.List(ctx, domain.Scope{Category: category})
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(stored)+len(seedPosts))
	out := make([]domain.BlogPost, 0, len(stored)+len(seedPosts))
	for _, src := range [][]domain.BlogPost{stored, seedPosts} {
		for _, p := range src {
			if category != "" && p.Category != category {
				continue
			}
			if _, dup := seen[p.ID]; dup {
				continue
			}
			seen[p.ID] = struct{}{}
			out = append(out, p)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return parseDate(out[i].Date).After(parseDate(out[j].Date))
	})
	return out, nil
}

func (s *BlogService) Get(ctx context.Context, id string) (*domain.BlogPost, error) {
	for i := range seedPosts {
		if seedPosts[i].ID == id {
			p := seedPosts[i]
			return &p, nil
		}
	}
	p, err := s.posts.Get(ctx, domain.Scope{}, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrPostNotFound
	}
	return p, nil
}

// Generate produces one AI article if the rate limiter allows an attempt at now.
func (s *BlogService) Generate(ctx context.Context, now time.Time) (*domain.BlogPost, error) {
	if err := s.limiter.Reserve(ctx, now); err != nil {
		if errors.Is(err, domain.ErrRateLimited) || errors.Is(err, domain.ErrDailyCapReached) {
			metrics.BlogGenerationsTotal.WithLabelValues("limited").Inc()
		}
		return nil, err
	}

	topic := blogTopics[int(now.Unix()/int64(blogMinGap.Seconds()))%len(blogTopics)]
	draft, err := s.gen.GenerateBlogPost(ctx, topic)
	if err != nil {
		metrics.BlogGenerationsTotal.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("%w: %v", domain.ErrGenerationFailed, err)
	}

	post := domain.BlogPost{
		ID:       uuid.NewString(),
		Title:    s.text.Sanitize(draft.Title),
		Excerpt:  s.text.Sanitize(draft.Excerpt),
		Content:  s.html.Sanitize(draft.Content),
		Category: s.text.Sanitize(draft.Category),
		Author:   aiAuthor,
		Date:     now.UTC().Format(time.RFC3339),
		IsAI:     true,
	}
	if post.Category == "" {
		post.Category = "Strategy"
	}

	saved, err := s.posts.Save(ctx, domain.Scope{}, post)
	if err != nil {
		metrics.BlogGenerationsTotal.WithLabelValues("failed").Inc()
		return nil, err
	}
	metrics.BlogGenerationsTotal.WithLabelValues("created").Inc()
	s.log.Info().Str("post_id", saved.ID).Str("topic", topic).Msg("blog post generated")
	return &saved, nil
}
