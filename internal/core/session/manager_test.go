package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/planwise/business-planner/internal/core/domain"
	"github.com/planwise/business-planner/internal/core/ports"
	"github.com/planwise/business-planner/internal/core/service"
	"github.com/planwise/business-planner/internal/core/shell"
	"github.com/planwise/business-planner/internal/core/wizard"
	"github.com/planwise/business-planner/internal/infrastructure/db/memory"
	"github.com/planwise/business-planner/internal/infrastructure/gateway"
	"github.com/planwise/business-planner/internal/infrastructure/identity"
	"github.com/planwise/business-planner/internal/infrastructure/queue"
)

type stubCheckout struct {
	mu    sync.Mutex
	refs  []string
	tiers []domain.PlanTier
	err   error
}

func (c *stubCheckout) Begin(_ context.Context, _ domain.UserProfile, plan domain.PlanTier, _, _ string) (*ports.CheckoutSession, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tiers = append(c.tiers, plan)
	return &ports.CheckoutSession{Reference: "cs_test_1", URL: "https://checkout.example/cs_test_1"}, nil
}

func (c *stubCheckout) Complete(_ context.Context, profile domain.UserProfile, reference string) (*ports.Receipt, domain.ProfileResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.refs = append(c.refs, reference)
	if c.err != nil {
		return nil, domain.ProfileResult{}, c.err
	}
	profile.Plan = domain.PlanPro
	receipt := &ports.Receipt{Reference: reference, Status: ports.ReceiptPaid, PlanID: domain.PlanPro}
	return receipt, domain.ProfileResult{Profile: profile, Status: domain.UpdateConfirmed}, nil
}

type fixture struct {
	deps     Deps
	hub      *identity.Hub
	plans    *service.PlanService
	checkout *stubCheckout
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	kv := memory.NewKVStore()
	hub := identity.NewHub()
	plans := service.NewPlanService(
		gateway.New[domain.SavedPlan]("plans", nil, kv, gateway.OwnerRequired, zerolog.Nop()), zerolog.Nop())
	drafts := gateway.New[domain.Draft]("drafts", nil, kv, gateway.OwnerRequired, zerolog.Nop())
	autosave := queue.NewAutosaver(drafts, 10*time.Millisecond, 2, zerolog.Nop())
	autosave.Start(ctx)
	checkout := &stubCheckout{}

	return &fixture{
		hub:      hub,
		plans:    plans,
		checkout: checkout,
		deps: Deps{
			Auth:     service.NewAuthService(nil, identity.NewLocalUsers(kv), zerolog.Nop()),
			Plans:    plans,
			Checkout: checkout,
			Events:   hub,
			Store:    kv,
			StateTTL: time.Hour,
			Wizard: wizard.Deps{
				Plans:    plans,
				Drafts:   drafts,
				Autosave: autosave,
				Log:      zerolog.Nop(),
			},
			Log: zerolog.Nop(),
		},
	}
}

func (f *fixture) open(t *testing.T, id, path string) *Manager {
	t.Helper()
	m := NewManager(id, f.deps)
	m.Init(context.Background(), path)
	t.Cleanup(m.Teardown)
	return m
}

func signUp(t *testing.T, m *Manager, email string) State {
	t.Helper()
	s, err := m.SignUp(context.Background(), "Ada", email, "secret")
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	return s
}

func TestManager_InitAnonymous(t *testing.T) {
	f := newFixture(t)
	m := NewManager("s1", f.deps)
	if s := m.State(); s.Status != StatusUninitialized {
		t.Fatalf("expected uninitialized, got %s", s.Status)
	}

	s := m.Init(context.Background(), "/dashboard")
	defer m.Teardown()
	if s.Status != StatusAnonymous {
		t.Fatalf("expected anonymous, got %s", s.Status)
	}
	if s.Route.View != shell.ViewAuth {
		t.Fatalf("protected view must redirect to auth, got %s", s.Route.View)
	}
	if f.hub.Subscribers() != 1 {
		t.Fatalf("expected one subscription, got %d", f.hub.Subscribers())
	}
	m.Init(context.Background(), "")
	if f.hub.Subscribers() != 1 {
		t.Fatalf("second Init must not subscribe again")
	}
}

func TestManager_SignUpAndSignOut(t *testing.T) {
	f := newFixture(t)
	m := f.open(t, "s1", "/")

	s := signUp(t, m, "ada@x.com")
	if !s.Authenticated() || s.Profile.Plan != domain.PlanStarter || s.Route.View != shell.ViewDashboard {
		t.Fatalf("unexpected state after sign up: %+v", s)
	}

	s = m.SignOut(context.Background())
	if s.Status != StatusAnonymous || s.Profile != nil || s.Route.View != shell.ViewLanding {
		t.Fatalf("unexpected state after sign out: %+v", s)
	}
}

func TestManager_SignInFailureKeepsState(t *testing.T) {
	f := newFixture(t)
	m := f.open(t, "s1", "/pricing")
	before := m.State()

	_, err := m.SignIn(context.Background(), "nobody@x.com", "wrong-password")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if after := m.State(); after != before {
		t.Fatalf("state changed on failed sign in: %+v -> %+v", before, after)
	}
}

func TestManager_SignInDoesNotOverridePendingCheckout(t *testing.T) {
	f := newFixture(t)
	owner := f.open(t, "s0", "/")
	signUp(t, owner, "ada@x.com")

	m := f.open(t, "s1", "/pricing")
	s, err := m.ChooseTier(context.Background(), domain.PlanPro)
	if err != nil {
		t.Fatalf("ChooseTier: %v", err)
	}
	if s.Route.View != shell.ViewAuth || s.PendingCheckout != domain.PlanPro {
		t.Fatalf("anonymous checkout should go through auth, got %+v", s)
	}

	s, err = m.SignIn(context.Background(), "ada@x.com", "secret")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if s.Route.View != shell.ViewCheckout {
		t.Fatalf("pending checkout must survive sign in, got %s", s.Route.View)
	}

	// A repeated sign-in notification for the same user does not move the view.
	_, _ = m.Navigate(context.Background(), "/settings")
	f.hub.Publish(ports.IdentityEvent{Kind: ports.EventSignedIn, SessionID: "s1", UserID: s.Profile.ID, Profile: s.Profile})
	if v := m.State().Route.View; v != shell.ViewSettings {
		t.Fatalf("repeated sign in moved the view to %s", v)
	}
}

func TestManager_ProfileUpdatesReachOtherSessionsOfSameUser(t *testing.T) {
	f := newFixture(t)
	m1 := f.open(t, "s1", "/")
	m2 := f.open(t, "s2", "/")
	other := f.open(t, "s3", "/")

	signUp(t, m1, "ada@x.com")
	if _, err := m2.SignIn(context.Background(), "ada@x.com", "secret"); err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	signUp(t, other, "bob@x.com")

	res, err := m1.UpdatePlan(context.Background(), domain.PlanPro)
	if err != nil {
		t.Fatalf("UpdatePlan: %v", err)
	}
	if res.Profile.Plan != domain.PlanPro || res.Status != domain.UpdateAppliedLocally {
		t.Fatalf("unexpected result: %+v", res)
	}
	if p := m2.State().Profile; p == nil || p.Plan != domain.PlanPro {
		t.Fatalf("second session did not see the update: %+v", p)
	}
	if p := other.State().Profile; p.Plan != domain.PlanStarter {
		t.Fatalf("another user's session changed: %+v", p)
	}

	m1.SignOut(context.Background())
	if !m2.State().Authenticated() {
		t.Fatalf("signing out one session must not sign out another")
	}
}

func TestManager_DeletingSelectedPlanClearsSelection(t *testing.T) {
	f := newFixture(t)
	m := f.open(t, "s1", "/")
	s := signUp(t, m, "ada@x.com")

	plan, err := f.plans.Create(context.Background(), s.Profile.ID, domain.FormData{BusinessName: "Acme"}, "doc")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := m.OpenPlan(context.Background(), plan.ID); err != nil {
		t.Fatalf("OpenPlan: %v", err)
	}
	if s := m.State(); s.SelectedPlanID != plan.ID || s.Route.View != shell.ViewPlan {
		t.Fatalf("plan not selected: %+v", s)
	}

	s, err = m.DeletePlan(context.Background(), plan.ID)
	if err != nil {
		t.Fatalf("DeletePlan: %v", err)
	}
	if s.SelectedPlanID != "" || s.Route.View != shell.ViewDashboard {
		t.Fatalf("stale selection remains: %+v", s)
	}
	if _, err := m.OpenPlan(context.Background(), plan.ID); !errors.Is(err, domain.ErrPlanNotFound) {
		t.Fatalf("expected ErrPlanNotFound, got %v", err)
	}
}

func TestManager_PaymentRedirectReconciles(t *testing.T) {
	f := newFixture(t)
	m := f.open(t, "s1", "/")
	signUp(t, m, "ada@x.com")

	if _, err := m.ChooseTier(context.Background(), domain.PlanPro); err != nil {
		t.Fatalf("ChooseTier: %v", err)
	}
	cs, err := m.BeginCheckout(context.Background(), "Ada", "ada@x.com")
	if err != nil || cs.Reference == "" {
		t.Fatalf("BeginCheckout: %v %v", cs, err)
	}

	s, err := m.Navigate(context.Background(), "/payment/success?reference="+cs.Reference)
	if err != nil {
		t.Fatalf("Navigate: %v", err)
	}
	if s.Route.View != shell.ViewDashboard || s.PendingCheckout != "" || s.Profile.Plan != domain.PlanPro {
		t.Fatalf("payment not reconciled: %+v", s)
	}
	if len(f.checkout.refs) != 1 || f.checkout.refs[0] != cs.Reference {
		t.Fatalf("unexpected receipt lookups: %v", f.checkout.refs)
	}
}

func TestManager_PaymentFailureLeavesNotice(t *testing.T) {
	f := newFixture(t)
	f.checkout.err = domain.ErrPaymentIncomplete
	m := f.open(t, "s1", "/")
	signUp(t, m, "ada@x.com")

	s, err := m.Navigate(context.Background(), "/payment/success?reference=cs_unpaid")
	if !errors.Is(err, domain.ErrPaymentIncomplete) {
		t.Fatalf("expected ErrPaymentIncomplete, got %v", err)
	}
	if s.Route.View != shell.ViewPricing || s.Notice == "" || s.Profile.Plan != domain.PlanStarter {
		t.Fatalf("unexpected state: %+v", s)
	}
}

func TestManager_ChooseTierRejectsDowngrade(t *testing.T) {
	f := newFixture(t)
	m := f.open(t, "s1", "/")
	signUp(t, m, "ada@x.com")

	if _, err := m.ChooseTier(context.Background(), domain.PlanStarter); !errors.Is(err, domain.ErrNotAnUpgrade) {
		t.Fatalf("expected ErrNotAnUpgrade, got %v", err)
	}
	if _, err := m.BeginCheckout(context.Background(), "Ada", "ada@x.com"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("checkout without a chosen tier must fail, got %v", err)
	}
}

func TestManager_WizardFollowsIdentity(t *testing.T) {
	f := newFixture(t)
	m := f.open(t, "s1", "/")

	if _, err := m.Wizard(context.Background()); !errors.Is(err, domain.ErrNotSignedIn) {
		t.Fatalf("expected ErrNotSignedIn, got %v", err)
	}
	signUp(t, m, "ada@x.com")

	w, err := m.Wizard(context.Background())
	if err != nil {
		t.Fatalf("Wizard: %v", err)
	}
	if again, _ := m.Wizard(context.Background()); again != w {
		t.Fatalf("wizard should be reused for the same user")
	}

	m.SignOut(context.Background())
	if w.State().Mounted {
		t.Fatalf("wizard must be unmounted on sign out")
	}
}

func TestManager_RestoresFromSnapshot(t *testing.T) {
	f := newFixture(t)
	m := f.open(t, "s1", "/")
	signUp(t, m, "ada@x.com")
	_, _ = m.Navigate(context.Background(), "/settings")
	m.Teardown()

	restored := f.open(t, "s1", "")
	s := restored.State()
	if !s.Authenticated() || s.Profile.Email != "ada@x.com" || s.Route.View != shell.ViewSettings {
		t.Fatalf("session not restored: %+v", s)
	}
}
