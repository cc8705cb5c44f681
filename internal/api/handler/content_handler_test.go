package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/planwise/business-planner/internal/core/domain"
	"github.com/planwise/business-planner/internal/core/service"
	"github.com/planwise/business-planner/internal/infrastructure/db/memory"
	"github.com/planwise/business-planner/internal/infrastructure/gateway"
)

func newContentHandler(f *fixture) *ContentHandler {
	kv := memory.NewKVStore()
	blog := service.NewBlogService(
		gateway.New[domain.BlogPost]("blog", nil, kv, gateway.OwnerOptional, zerolog.Nop()),
		f.gen, service.NewBlogRateLimiter(kv, time.UTC), zerolog.Nop())
	return NewContentHandler(f.shares, blog, f.testimonials, service.NewSuggestionService(f.gen))
}

func TestContentHandler_GetShare(t *testing.T) {
	f := newFixture(t)
	h := newContentHandler(f)
	link, err := f.shares.Create(context.Background(), "# Acme")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	c, rec := f.request(nil, http.MethodGet, "/v1/shares/"+link.ID, "")
	if err := h.GetShare(withID(c, link.ID)); err != nil {
		t.Fatalf("GetShare: %v", err)
	}
	var got domain.SharedLink
	_ = json.Unmarshal(rec.Body.Bytes(), &got)
	if got.Content != "# Acme" {
		t.Fatalf("unexpected content %q", got.Content)
	}

	c, _ = f.request(nil, http.MethodGet, "/v1/shares/missing", "")
	if err := h.GetShare(withID(c, "missing")); !errors.Is(err, domain.ErrShareNotFound) {
		t.Fatalf("expected ErrShareNotFound, got %v", err)
	}
}

func TestContentHandler_BlogListsSeedPosts(t *testing.T) {
	f := newFixture(t)
	h := newContentHandler(f)

	c, rec := f.request(nil, http.MethodGet, "/v1/blog", "")
	if err := h.ListBlog(c); err != nil {
		t.Fatalf("ListBlog: %v", err)
	}
	var posts []domain.BlogPost
	_ = json.Unmarshal(rec.Body.Bytes(), &posts)
	if len(posts) == 0 {
		t.Fatalf("expected the seed posts")
	}

	c, _ = f.request(nil, http.MethodGet, "/v1/blog/nope", "")
	if err := h.GetBlogPost(withID(c, "nope")); !errors.Is(err, domain.ErrPostNotFound) {
		t.Fatalf("expected ErrPostNotFound, got %v", err)
	}
}

func TestContentHandler_SubmitTestimonial(t *testing.T) {
	f := newFixture(t)
	h := newContentHandler(f)
	body := `{"author":"Ada","role":"Founder","content":"Wrote my plan in an afternoon."}`

	c, rec := f.request(nil, http.MethodPost, "/v1/testimonials", body)
	if err := h.SubmitTestimonial(c); err != nil {
		t.Fatalf("SubmitTestimonial: %v", err)
	}
	var resp testimonialResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Outcome != domain.ModerationAccepted || resp.Testimonial == nil {
		t.Fatalf("expected accepted testimonial, got %+v", resp)
	}

	f.gen.approve = false
	c, rec = f.request(nil, http.MethodPost, "/v1/testimonials", body)
	if err := h.SubmitTestimonial(c); err != nil {
		t.Fatalf("SubmitTestimonial: %v", err)
	}
	resp = testimonialResponse{}
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if rec.Code != http.StatusOK || resp.Outcome != domain.ModerationRejected || resp.Testimonial != nil {
		t.Fatalf("rejection should be a plain outcome, got %d %+v", rec.Code, resp)
	}

	c, rec = f.request(nil, http.MethodGet, "/v1/testimonials", "")
	if err := h.ListTestimonials(c); err != nil {
		t.Fatalf("ListTestimonials: %v", err)
	}
	var list []domain.Testimonial
	_ = json.Unmarshal(rec.Body.Bytes(), &list)
	if len(list) != 1 {
		t.Fatalf("only the approved testimonial is listed, got %d", len(list))
	}
}

func TestContentHandler_Suggestions(t *testing.T) {
	f := newFixture(t)
	h := newContentHandler(f)
	m := f.signedIn(t)

	c, rec := f.request(m, http.MethodGet, "/v1/suggestions?keyword=coffee", "")
	if err := h.Suggestions(c); err != nil {
		t.Fatalf("Suggestions: %v", err)
	}
	var resp suggestionsResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Keyword != "coffee" || len(resp.Suggestions) != 2 {
		t.Fatalf("unexpected suggestions: %+v", resp)
	}

	c, _ = f.request(m, http.MethodGet, "/v1/suggestions", "")
	if err := h.Suggestions(c); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
