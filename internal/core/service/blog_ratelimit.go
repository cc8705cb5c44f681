package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/planwise/business-planner/internal/core/domain"
	"github.com/planwise/business-planner/internal/core/ports"
)

const (
	blogRateLimitKey  = "blog:ratelimit"
	blogDailyCap      = 5
	blogMinGap        = 2 * time.Hour
	calendarDayLayout = "2006-01-02"
)

// blogCounters is the persisted limiter state.
type blogCounters struct {
	DailyCount     int       `json:"dailyCount"`
	LastResetDate  string    `json:"lastResetDate"`
	LastGeneration time.Time `json:"lastGeneration"`
}

// BlogRateLimiter allows at most five automated generations per local
// calendar day, at least two hours apart. Both limits reset at local midnight.
type BlogRateLimiter struct {
	kv  ports.KeyValueStore
	loc *time.Location
	mu  sync.Mutex
}

// NewBlogRateLimiter uses loc to decide calendar days; nil means time.Local.
func NewBlogRateLimiter(kv ports.KeyValueStore, loc *time.Location) *BlogRateLimiter {
	if loc == nil {
		loc = time.Local
	}
	return &BlogRateLimiter{kv: kv, loc: loc}
}

// Reserve records an attempt at now, or returns ErrDailyCapReached or
// ErrRateLimited without recording anything.
func (l *BlogRateLimiter) Reserve(ctx context.Context, now time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	c, err := l.load(ctx, now)
	if err != nil {
		return err
	}
	if c.DailyCount >= blogDailyCap {
		return domain.ErrDailyCapReached
	}
	if !c.LastGeneration.IsZero() && now.Sub(c.LastGeneration) < blogMinGap {
		return domain.ErrRateLimited
	}

	c.DailyCount++
	c.LastGeneration = now
	return l.save(ctx, c)
}

// load reads the counters and applies the day rollover.
func (l *BlogRateLimiter) load(ctx context.Context, now time.Time) (blogCounters, error) {
	today := now.In(l.loc).Format(calendarDayLayout)

	var c blogCounters
	raw, err := l.kv.Get(ctx, blogRateLimitKey)
	switch {
	case errors.Is(err, ports.ErrKeyNotFound):
	case err != nil:
		return c, fmt.Errorf("read blog counters: %w", err)
	default:
		if err := json.Unmarshal(raw, &c); err != nil {
			c = blogCounters{}
		}
	}

	if c.LastResetDate != today {
		c = blogCounters{LastResetDate: today}
	}
	return c, nil
}

func (l *BlogRateLimiter) save(ctx context.Context, c blogCounters) error {
	raw, err := json.Marshal(c)
	if err != nil {
		return err
	}
	if err := l.kv.Set(ctx, blogRateLimitKey, raw, 0); err != nil {
		return fmt.Errorf("write blog counters: %w", err)
	}
	return nil
}
