package handler

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/planwise/business-planner/internal/core/domain"
	"github.com/planwise/business-planner/internal/core/ports"
	"github.com/planwise/business-planner/internal/core/service"
	"github.com/planwise/business-planner/internal/core/session"
	"github.com/planwise/business-planner/internal/core/wizard"
	"github.com/planwise/business-planner/internal/infrastructure/db/memory"
	"github.com/planwise/business-planner/internal/infrastructure/gateway"
	"github.com/planwise/business-planner/internal/infrastructure/identity"
	"github.com/planwise/business-planner/internal/infrastructure/queue"
)

type stubGenerator struct {
	approve bool
}

func (g *stubGenerator) GeneratePlan(_ context.Context, form domain.FormData, _ domain.ModelTier) (string, error) {
	return "# " + form.BusinessName + "\n\n[[CHART]]", nil
}

func (g *stubGenerator) GenerateSuggestions(_ context.Context, keyword string) ([]string, error) {
	return []string{keyword + " subscription box", keyword + " marketplace"}, nil
}

func (g *stubGenerator) ModerateContent(context.Context, string, string) (bool, error) {
	return g.approve, nil
}

func (g *stubGenerator) GenerateBlogPost(context.Context, string) (*ports.BlogDraft, error) {
	return &ports.BlogDraft{Title: "Post", Content: "Body", Category: "Strategy"}, nil
}

type fixture struct {
	e            *echo.Echo
	registry     *session.Registry
	plans        *service.PlanService
	shares       *service.ShareService
	checkout     *service.CheckoutService
	testimonials *service.TestimonialService
	gen          *stubGenerator
	autosave     *queue.Autosaver
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	kv := memory.NewKVStore()
	gen := &stubGenerator{approve: true}
	auth := service.NewAuthService(nil, identity.NewLocalUsers(kv), zerolog.Nop())
	plans := service.NewPlanService(
		gateway.New[domain.SavedPlan]("plans", nil, kv, gateway.OwnerRequired, zerolog.Nop()), zerolog.Nop())
	drafts := gateway.New[domain.Draft]("drafts", nil, kv, gateway.OwnerRequired, zerolog.Nop())
	autosave := queue.NewAutosaver(drafts, 10*time.Millisecond, 2, zerolog.Nop())
	autosave.Start(ctx)
	checkout := service.NewCheckoutService(nil,
		gateway.New[domain.Transaction]("transactions", nil, kv, gateway.OwnerRequired, zerolog.Nop()), auth, zerolog.Nop())

	registry := session.NewRegistry(session.Deps{
		Auth:     auth,
		Plans:    plans,
		Checkout: checkout,
		Events:   identity.NewHub(),
		Store:    kv,
		StateTTL: time.Hour,
		Wizard: wizard.Deps{
			Plans:     plans,
			Drafts:    drafts,
			Autosave:  autosave,
			Generator: gen,
			Log:       zerolog.Nop(),
		},
		Log: zerolog.Nop(),
	}, time.Minute)
	t.Cleanup(registry.Shutdown)

	e := echo.New()
	e.Validator = NewValidator()

	return &fixture{
		e:        e,
		registry: registry,
		plans:    plans,
		shares: service.NewShareService(
			gateway.New[domain.SharedLink]("shares", nil, kv, gateway.OwnerOptional, zerolog.Nop())),
		checkout: checkout,
		testimonials: service.NewTestimonialService(
			gateway.New[domain.Testimonial]("testimonials", nil, kv, gateway.OwnerOptional, zerolog.Nop()), gen, zerolog.Nop()),
		gen:      gen,
		autosave: autosave,
	}
}

func (f *fixture) open(t *testing.T, path string) *session.Manager {
	t.Helper()
	m, err := f.registry.Open(context.Background(), path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return m
}

func (f *fixture) signedIn(t *testing.T) *session.Manager {
	t.Helper()
	m := f.open(t, "/")
	if _, err := m.SignUp(context.Background(), "Ada", "ada@example.com", "secret"); err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	return m
}

// request builds an echo context carrying m, as the session middleware would.
func (f *fixture) request(m *session.Manager, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := f.e.NewContext(req, rec)
	if m != nil {
		c.Set(ContextSessionID, m.ID())
		c.Set(ContextSession, m)
	}
	return c, rec
}

func withID(c echo.Context, id string) echo.Context {
	c.SetParamNames("id")
	c.SetParamValues(id)
	return c
}
