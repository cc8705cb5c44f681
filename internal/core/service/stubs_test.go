package service

import (
	"context"
	"sync"

	"github.com/planwise/business-planner/internal/core/domain"
	"github.com/planwise/business-planner/internal/core/ports"
)

// memRepo is an in-memory ports.Repository keyed by owner.
type memRepo[T domain.Entity] struct {
	mu      sync.Mutex
	records map[string][]T
	saves   int
}

func newMemRepo[T domain.Entity]() *memRepo[T] {
	return &memRepo[T]{records: make(map[string][]T)}
}

func (r *memRepo[T]) Save(_ context.Context, scope domain.Scope, rec T) (T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++
	list := r.records[scope.OwnerID]
	for i := range list {
		if list[i].EntityID() == rec.EntityID() {
			list[i] = rec
			return rec, nil
		}
	}
	r.records[scope.OwnerID] = append(list, rec)
	return rec, nil
}

func (r *memRepo[T]) List(_ context.Context, scope domain.Scope) ([]T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]T, len(r.records[scope.OwnerID]))
	copy(out, r.records[scope.OwnerID])
	return out, nil
}

func (r *memRepo[T]) Get(_ context.Context, scope domain.Scope, id string) (*T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records[scope.OwnerID] {
		if rec.EntityID() == id {
			found := rec
			return &found, nil
		}
	}
	return nil, nil
}

func (r *memRepo[T]) Delete(_ context.Context, scope domain.Scope, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.records[scope.OwnerID]
	kept := list[:0]
	for _, rec := range list {
		if rec.EntityID() != id {
			kept = append(kept, rec)
		}
	}
	r.records[scope.OwnerID] = kept
	return nil
}

// stubGenerator records calls and returns canned answers.
type stubGenerator struct {
	mu          sync.Mutex
	planCalls   int
	blogCalls   int
	approve     bool
	err         error
	suggestions []string
}

func (g *stubGenerator) GeneratePlan(_ context.Context, form domain.FormData, tier domain.ModelTier) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.planCalls++
	if g.err != nil {
		return "", g.err
	}
	return "# " + form.BusinessName + "\n" + domain.ChartPlaceholder + "\n" + string(tier), nil
}

func (g *stubGenerator) GenerateSuggestions(_ context.Context, keyword string) ([]string, error) {
	if g.err != nil {
		return nil, g.err
	}
	return g.suggestions, nil
}

func (g *stubGenerator) ModerateContent(_ context.Context, _, _ string) (bool, error) {
	if g.err != nil {
		return false, g.err
	}
	return g.approve, nil
}

func (g *stubGenerator) GenerateBlogPost(_ context.Context, topic string) (*ports.BlogDraft, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.blogCalls++
	if g.err != nil {
		return nil, g.err
	}
	return &ports.BlogDraft{
		Title:    "On " + topic,
		Excerpt:  "<b>Short</b> take",
		Content:  "Body <script>alert(1)</script>",
		Category: "Strategy",
	}, nil
}

type stubPayments struct {
	receipt *ports.Receipt
	created []ports.CheckoutRequest
	err     error
}

func (p *stubPayments) CreateCheckout(_ context.Context, req ports.CheckoutRequest) (*ports.CheckoutSession, error) {
	if p.err != nil {
		return nil, p.err
	}
	p.created = append(p.created, req)
	return &ports.CheckoutSession{Reference: "cs_test_1", URL: "https://pay.example/cs_test_1"}, nil
}

func (p *stubPayments) FetchReceipt(_ context.Context, reference string) (*ports.Receipt, error) {
	if p.err != nil {
		return nil, p.err
	}
	r := *p.receipt
	r.Reference = reference
	return &r, nil
}
