// Package session holds the per-client session context: identity state,
// navigation, pending checkout and the client's wizard, plus the registry
// that owns every live client session.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/planwise/business-planner/internal/core/domain"
	"github.com/planwise/business-planner/internal/core/ports"
	"github.com/planwise/business-planner/internal/core/shell"
	"github.com/planwise/business-planner/internal/core/wizard"
)

// Status is the identity state of a client session.
type Status string

const (
	StatusUninitialized Status = "uninitialized"
	StatusResolving     Status = "resolving"
	StatusAuthenticated Status = "authenticated"
	StatusAnonymous     Status = "anonymous"
)

// Authenticator is the identity provider used by a session.
type Authenticator interface {
	SignUp(ctx context.Context, name, email, password string) (*domain.UserProfile, error)
	SignIn(ctx context.Context, email, password string) (*domain.UserProfile, error)
	Resolve(ctx context.Context, userID string) (*domain.UserProfile, error)
	UpdateProfile(ctx context.Context, current domain.UserProfile, update domain.ProfileUpdate) (domain.ProfileResult, error)
	UpdatePlan(ctx context.Context, current domain.UserProfile, plan domain.PlanTier) (domain.ProfileResult, error)
	UpdatePassword(ctx context.Context, userID, currentPassword, newPassword string) error
}

// PlanCatalog reads and deletes a user's saved plans.
type PlanCatalog interface {
	Get(ctx context.Context, userID, id string) (*domain.SavedPlan, error)
	Delete(ctx context.Context, userID, id string) error
}

// Checkout opens payment sessions and reconciles their receipts.
type Checkout interface {
	Begin(ctx context.Context, profile domain.UserProfile, plan domain.PlanTier, name, email string) (*ports.CheckoutSession, error)
	Complete(ctx context.Context, profile domain.UserProfile, reference string) (*ports.Receipt, domain.ProfileResult, error)
}

// Deps are shared by every client session.
type Deps struct {
	Auth     Authenticator
	Plans    PlanCatalog
	Checkout Checkout
	Events   ports.IdentityEvents
	Store    ports.KeyValueStore
	StateTTL time.Duration
	Wizard   wizard.Deps
	Log      zerolog.Logger
}

// State is an immutable snapshot of a client session.
type State struct {
	ID              string              `json:"id"`
	Status          Status              `json:"status"`
	Profile         *domain.UserProfile `json:"profile,omitempty"`
	Route           shell.Route         `json:"route"`
	PendingCheckout domain.PlanTier     `json:"pendingCheckout,omitempty"`
	SelectedPlanID  string              `json:"selectedPlanId,omitempty"`
	// Notice is a one-shot message for the client, e.g. a failed payment reconciliation.
	Notice string `json:"notice,omitempty"`
}

// Authenticated reports whether the session has a signed-in user.
func (s State) Authenticated() bool {
	return s.Status == StatusAuthenticated && s.Profile != nil
}

func (s State) userID() string {
	if s.Profile == nil {
		return ""
	}
	return s.Profile.ID
}

// snapshot is the part of State kept in ephemeral storage across restarts.
// It only restores UI state; identity is always resolved live.
type snapshot struct {
	UserID          string          `json:"userId,omitempty"`
	View            shell.View      `json:"view"`
	ContentID       string          `json:"contentId,omitempty"`
	PendingCheckout domain.PlanTier `json:"pendingCheckout,omitempty"`
}

// SnapshotKey is the ephemeral storage key of session sid.
func SnapshotKey(sid string) string { return "session:" + sid }

// Manager is one client session. Its state lives in an atomic cell so
// identity events always transition the latest state.
type Manager struct {
	id    string
	deps  Deps
	log   zerolog.Logger
	state atomic.Pointer[State]

	lifecycle   sync.Mutex
	unsubscribe func()

	wmu sync.Mutex
	wiz *wizard.Wizard
}

// NewManager creates an uninitialized session.
func NewManager(id string, deps Deps) *Manager {
	m := &Manager{
		id:   id,
		deps: deps,
		log:  deps.Log.With().Str("session_id", id).Logger(),
	}
	m.state.Store(&State{ID: id, Status: StatusUninitialized, Route: shell.Route{View: shell.ViewLanding}})
	return m
}

func (m *Manager) ID() string { return m.id }

// State returns the current snapshot.
func (m *Manager) State() State {
	return *m.state.Load()
}

// Init restores the session from ephemeral storage, subscribes to identity
// events and resolves the live identity. A non-empty path overrides the
// restored location. Calling Init again is a no-op.
func (m *Manager) Init(ctx context.Context, path string) State {
	m.lifecycle.Lock()
	if m.unsubscribe != nil {
		m.lifecycle.Unlock()
		return m.State()
	}
	m.update(func(s State) State {
		s.Status = StatusResolving
		return s
	})
	m.unsubscribe = m.deps.Events.Subscribe(m.handle)
	m.lifecycle.Unlock()

	snap := m.loadSnapshot(ctx)

	var profile *domain.UserProfile
	if snap.UserID != "" {
		p, err := m.deps.Auth.Resolve(ctx, snap.UserID)
		if err != nil {
			m.log.Info().Err(err).Str("user_id", snap.UserID).Msg("stored identity could not be resolved, continuing anonymously")
		} else {
			profile = p
		}
	}

	route := shell.Route{View: snap.View, ContentID: snap.ContentID}
	if route.View == "" {
		route.View = shell.ViewLanding
	}
	if path != "" {
		route = shell.Resolve(path)
	}

	m.update(func(s State) State {
		// A sign-in may have landed while resolving.
		if s.Status == StatusResolving {
			if profile != nil {
				s.Status = StatusAuthenticated
				s.Profile = profile
			} else {
				s.Status = StatusAnonymous
			}
		}
		if s.PendingCheckout == "" {
			s.PendingCheckout = snap.PendingCheckout
		}
		return applyRoute(s, route)
	})

	if route.View == shell.ViewPaymentSuccess && m.State().Authenticated() {
		if _, err := m.ReconcilePayment(ctx, route.PaymentReference); err != nil {
			m.log.Warn().Err(err).Str("reference", route.PaymentReference).Msg("payment reconciliation failed")
		}
	}

	m.persist(ctx)
	return m.State()
}

// Teardown detaches the session from identity events and its wizard.
// The ephemeral snapshot is kept so the session can be re-acquired.
func (m *Manager) Teardown() {
	m.lifecycle.Lock()
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
	m.lifecycle.Unlock()
	m.dropWizard()
}

// SignIn verifies credentials. On failure the state is unchanged.
func (m *Manager) SignIn(ctx context.Context, email, password string) (State, error) {
	p, err := m.deps.Auth.SignIn(ctx, email, password)
	if err != nil {
		return m.State(), err
	}
	m.publish(ports.EventSignedIn, p)
	m.persist(ctx)
	return m.State(), nil
}

// SignUp creates a starter account and signs it in.
func (m *Manager) SignUp(ctx context.Context, name, email, password string) (State, error) {
	p, err := m.deps.Auth.SignUp(ctx, name, email, password)
	if err != nil {
		return m.State(), err
	}
	m.publish(ports.EventSignedIn, p)
	m.persist(ctx)
	return m.State(), nil
}

// SignOut clears the identity. Signing out an anonymous session is a no-op.
func (m *Manager) SignOut(ctx context.Context) State {
	s := m.State()
	if !s.Authenticated() {
		return s
	}
	m.deps.Events.Publish(ports.IdentityEvent{Kind: ports.EventSignedOut, SessionID: m.id, UserID: s.userID()})
	m.persist(ctx)
	return m.State()
}

// UpdateProfile changes name and/or e-mail and returns the complete profile.
func (m *Manager) UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (domain.ProfileResult, error) {
	current, err := m.profile()
	if err != nil {
		return domain.ProfileResult{}, err
	}
	res, err := m.deps.Auth.UpdateProfile(ctx, current, update)
	if err != nil {
		return res, err
	}
	m.publish(ports.EventUserUpdated, &res.Profile)
	return res, nil
}

// UpdatePlan sets the subscription tier directly.
func (m *Manager) UpdatePlan(ctx context.Context, plan domain.PlanTier) (domain.ProfileResult, error) {
	current, err := m.profile()
	if err != nil {
		return domain.ProfileResult{}, err
	}
	res, err := m.deps.Auth.UpdatePlan(ctx, current, plan)
	if err != nil {
		return res, err
	}
	m.publish(ports.EventUserUpdated, &res.Profile)
	return res, nil
}

func (m *Manager) UpdatePassword(ctx context.Context, currentPassword, newPassword string) error {
	current, err := m.profile()
	if err != nil {
		return err
	}
	return m.deps.Auth.UpdatePassword(ctx, current.ID, currentPassword, newPassword)
}

// Navigate moves the session to path. Protected views redirect anonymous
// clients to the auth view; the post-payment path reconciles the payment.
func (m *Manager) Navigate(ctx context.Context, path string) (State, error) {
	route := shell.Resolve(path)
	m.update(func(s State) State {
		s.Notice = ""
		return applyRoute(s, route)
	})

	var err error
	if route.View == shell.ViewPaymentSuccess && m.State().Authenticated() {
		_, err = m.ReconcilePayment(ctx, route.PaymentReference)
	}
	m.persist(ctx)
	return m.State(), err
}

// ChooseTier records the tier the client wants to buy. Anonymous clients are
// sent to sign in first and resume the checkout afterwards.
func (m *Manager) ChooseTier(ctx context.Context, plan domain.PlanTier) (State, error) {
	tier, ok := domain.ParsePlanTier(string(plan))
	if !ok {
		return m.State(), fmt.Errorf("%w: unknown plan %q", domain.ErrInvalidInput, plan)
	}
	if s := m.State(); s.Authenticated() && domain.ClassifyPlanChange(s.Profile.Plan, tier) != domain.PlanUpgrade {
		return s, domain.ErrNotAnUpgrade
	}
	m.update(func(s State) State {
		s.PendingCheckout = tier
		s.Route = shell.Route{View: shell.Guard(shell.ViewCheckout, s.Authenticated())}
		return s
	})
	m.persist(ctx)
	return m.State(), nil
}

// BeginCheckout opens a payment session for the pending tier.
func (m *Manager) BeginCheckout(ctx context.Context, name, email string) (*ports.CheckoutSession, error) {
	current, err := m.profile()
	if err != nil {
		return nil, err
	}
	pending := m.State().PendingCheckout
	if pending == "" {
		return nil, fmt.Errorf("%w: no plan selected", domain.ErrInvalidInput)
	}
	return m.deps.Checkout.Begin(ctx, current, pending, name, email)
}

// CancelCheckout drops the pending tier and returns to pricing.
func (m *Manager) CancelCheckout(ctx context.Context) State {
	m.update(func(s State) State {
		s.PendingCheckout = ""
		s.Route = shell.Route{View: shell.ViewPricing}
		return s
	})
	m.persist(ctx)
	return m.State()
}

// ReconcilePayment completes the checkout identified by reference: the
// receipt is recorded, the plan applied, the pending checkout cleared and the
// client sent to the dashboard.
func (m *Manager) ReconcilePayment(ctx context.Context, reference string) (domain.ProfileResult, error) {
	current, err := m.profile()
	if err != nil {
		return domain.ProfileResult{}, err
	}
	_, res, err := m.deps.Checkout.Complete(ctx, current, reference)
	if err != nil {
		m.update(func(s State) State {
			s.Notice = err.Error()
			s.Route = shell.Route{View: shell.ViewPricing}
			return s
		})
		m.persist(ctx)
		return res, err
	}

	m.publish(ports.EventUserUpdated, &res.Profile)
	m.update(func(s State) State {
		s.PendingCheckout = ""
		s.Notice = ""
		s.Route = shell.Route{View: shell.ViewDashboard}
		return s
	})
	m.persist(ctx)
	return res, nil
}

// OpenPlan selects one of the user's plans for the detail view.
func (m *Manager) OpenPlan(ctx context.Context, id string) (*domain.SavedPlan, error) {
	current, err := m.profile()
	if err != nil {
		return nil, err
	}
	plan, err := m.deps.Plans.Get(ctx, current.ID, id)
	if err != nil {
		return nil, err
	}
	m.update(func(s State) State {
		s.SelectedPlanID = id
		s.Route = shell.Route{View: shell.ViewPlan, ContentID: id}
		return s
	})
	m.persist(ctx)
	return plan, nil
}

// DeletePlan removes a plan. A selection pointing at it is cleared.
func (m *Manager) DeletePlan(ctx context.Context, id string) (State, error) {
	current, err := m.profile()
	if err != nil {
		return m.State(), err
	}
	if err := m.deps.Plans.Delete(ctx, current.ID, id); err != nil {
		return m.State(), err
	}
	m.update(func(s State) State {
		if s.SelectedPlanID == id {
			s.SelectedPlanID = ""
		}
		if s.Route.View == shell.ViewPlan && s.Route.ContentID == id {
			s.Route = shell.Route{View: shell.ViewDashboard}
		}
		return s
	})
	m.persist(ctx)
	return m.State(), nil
}

// Wizard returns the signed-in user's wizard, mounting it on first use.
func (m *Manager) Wizard(ctx context.Context) (*wizard.Wizard, error) {
	current, err := m.profile()
	if err != nil {
		return nil, err
	}

	m.wmu.Lock()
	defer m.wmu.Unlock()
	if m.wiz != nil && m.wiz.UserID() == current.ID {
		return m.wiz, nil
	}
	if m.wiz != nil {
		m.wiz.Unmount()
	}

	w := wizard.New(m.deps.Wizard, func() domain.UserProfile {
		if s := m.state.Load(); s.Profile != nil && s.Profile.ID == current.ID {
			return *s.Profile
		}
		return current
	})
	if _, err := w.Mount(ctx); err != nil {
		return nil, err
	}
	m.wiz = w
	return w, nil
}

// handle applies an identity event to the latest state. Sign-in and sign-out
// are scoped to the originating session; profile updates reach every session
// of the same user.
func (m *Manager) handle(ev ports.IdentityEvent) {
	switch ev.Kind {
	case ports.EventSignedIn:
		if ev.SessionID != m.id || ev.Profile == nil {
			return
		}
		profile := *ev.Profile
		prev, _ := m.swap(func(s State) State {
			if s.Authenticated() && s.Profile.ID == profile.ID {
				s.Profile = &profile
				return s
			}
			s.Status = StatusAuthenticated
			s.Profile = &profile
			s.SelectedPlanID = ""
			s.Notice = ""
			s.Route = shell.Route{View: shell.AfterSignIn(s.PendingCheckout != "")}
			return s
		})
		if prev.userID() != profile.ID {
			m.dropWizard()
		}

	case ports.EventSignedOut:
		if ev.SessionID != m.id {
			return
		}
		m.update(func(s State) State {
			s.Status = StatusAnonymous
			s.Profile = nil
			s.PendingCheckout = ""
			s.SelectedPlanID = ""
			s.Route = shell.Route{View: shell.ViewLanding}
			return s
		})
		m.dropWizard()

	case ports.EventUserUpdated, ports.EventTokenRefreshed:
		if ev.Profile == nil {
			return
		}
		profile := *ev.Profile
		m.update(func(s State) State {
			if s.Authenticated() && s.Profile.ID == ev.UserID {
				s.Profile = &profile
			}
			return s
		})
	}
}

func (m *Manager) publish(kind ports.IdentityEventKind, p *domain.UserProfile) {
	m.deps.Events.Publish(ports.IdentityEvent{Kind: kind, SessionID: m.id, UserID: p.ID, Profile: p})
}

// update applies fn to the latest state until it wins the swap. fn may run
// more than once and must not have side effects.
func (m *Manager) update(fn func(State) State) State {
	_, next := m.swap(fn)
	return next
}

func (m *Manager) swap(fn func(State) State) (prev, next State) {
	for {
		old := m.state.Load()
		n := fn(*old)
		if m.state.CompareAndSwap(old, &n) {
			return *old, n
		}
	}
}

func (m *Manager) profile() (domain.UserProfile, error) {
	s := m.State()
	if !s.Authenticated() {
		return domain.UserProfile{}, domain.ErrNotSignedIn
	}
	return *s.Profile, nil
}

func (m *Manager) dropWizard() {
	m.wmu.Lock()
	defer m.wmu.Unlock()
	if m.wiz != nil {
		m.wiz.Unmount()
		m.wiz = nil
	}
}

func (m *Manager) loadSnapshot(ctx context.Context) snapshot {
	var snap snapshot
	raw, err := m.deps.Store.Get(ctx, SnapshotKey(m.id))
	if err != nil {
		if !errors.Is(err, ports.ErrKeyNotFound) {
			m.log.Warn().Err(err).Msg("session snapshot unavailable")
		}
		return snap
	}
	if err := json.Unmarshal(raw, &snap); err != nil {
		m.log.Warn().Err(err).Msg("discarding unreadable session snapshot")
		return snapshot{}
	}
	return snap
}

func (m *Manager) persist(ctx context.Context) {
	s := m.State()
	raw, err := json.Marshal(snapshot{
		UserID:          s.userID(),
		View:            s.Route.View,
		ContentID:       s.Route.ContentID,
		PendingCheckout: s.PendingCheckout,
	})
	if err != nil {
		m.log.Error().Err(err).Msg("encode session snapshot")
		return
	}
	if err := m.deps.Store.Set(ctx, SnapshotKey(m.id), raw, m.deps.StateTTL); err != nil {
		m.log.Warn().Err(err).Msg("session snapshot not stored")
	}
}

// applyRoute moves s to route, honouring the shell guards.
func applyRoute(s State, route shell.Route) State {
	authed := s.Authenticated()
	route.View = shell.Guard(route.View, authed)
	if route.View == shell.ViewAuth {
		route = shell.Route{View: shell.ViewAuth}
	}
	if route.View == shell.ViewCheckout && s.PendingCheckout == "" {
		route = shell.Route{View: shell.ViewPricing}
	}
	if route.View == shell.ViewPlan {
		s.SelectedPlanID = route.ContentID
	}
	s.Route = route
	return s
}
