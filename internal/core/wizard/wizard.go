// Package wizard implements the step-by-step plan creation flow: step
// sequencing, per-step validation gating, draft autosave and restore, quota
// enforcement and the generation transition.
package wizard

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/planwise/business-planner/internal/core/domain"
	"github.com/planwise/business-planner/internal/core/ports"
	"github.com/planwise/business-planner/internal/pkg/metrics"
)

// PlanStore is the part of the plan service the wizard needs.
type PlanStore interface {
	Count(ctx context.Context, userID string) (int, error)
	Create(ctx context.Context, userID string, form domain.FormData, content string) (domain.SavedPlan, error)
}

// Autosaver debounces draft writes; see queue.Autosaver.
type Autosaver interface {
	Schedule(draft domain.Draft)
	Pending(userID string) (domain.Draft, bool)
	// Discard orders a delete of the stored draft after every snapshot
	// scheduled so far; the channel closes once it was applied.
	Discard(userID string) <-chan struct{}
}

// Deps are shared by every wizard instance.
type Deps struct {
	Plans           PlanStore
	Drafts          ports.Repository[domain.Draft]
	Autosave        Autosaver
	Generator       ports.GenerationService
	// GenerateTimeout bounds one generation call; zero means no extra bound.
	GenerateTimeout time.Duration
	Log             zerolog.Logger
}

// State is a snapshot of the wizard for rendering.
type State struct {
	Step         int             `json:"step"`
	StepName     string          `json:"stepName"`
	StepKind     domain.StepKind `json:"stepKind"`
	TotalSteps   int             `json:"totalSteps"`
	FormData     domain.FormData `json:"formData"`
	BusinessPlan string          `json:"businessPlan,omitempty"`
	CanAdvance   bool            `json:"canAdvance"`
	Missing      []string        `json:"missing,omitempty"`
	Generating   bool            `json:"generating"`
	Error        string          `json:"error,omitempty"`
	SavedPlanID  string          `json:"savedPlanId,omitempty"`
	Mounted      bool            `json:"mounted"`
}

// Wizard is one user's planner flow inside one client session. All methods
// are safe for concurrent use; the mutex is released while the generation
// collaborator runs.
type Wizard struct {
	deps    Deps
	userID  string
	profile func() domain.UserProfile
	now     func() time.Time

	mu         sync.Mutex
	epoch      uint64
	mounted    bool
	step       int
	form       domain.FormData
	plan       string
	generating bool
	lastErr    error
	savedID    string
}

// New creates a wizard for the signed-in user. profile is read at generation
// time so tier changes made meanwhile are honoured.
func New(deps Deps, profile func() domain.UserProfile) *Wizard {
	return &Wizard{
		deps:    deps,
		userID:  profile().ID,
		profile: profile,
		now:     time.Now,
	}
}

// UserID returns the owner of this wizard.
func (w *Wizard) UserID() string { return w.userID }

// Mount restores the user's draft, if any, before any interaction is accepted.
func (w *Wizard) Mount(ctx context.Context) (State, error) {
	w.mu.Lock()
	w.epoch++
	epoch := w.epoch
	w.mu.Unlock()

	draft, err := w.loadDraft(ctx)
	if err != nil {
		w.deps.Log.Warn().Err(err).Str("user_id", w.userID).Msg("draft restore failed, starting empty")
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.epoch != epoch {
		return w.stateLocked(), domain.ErrWizardDetached
	}
	w.reset()
	if draft != nil {
		w.step = clampStep(draft.CurrentStep, draft.BusinessPlan != "")
		w.form = draft.FormData
		w.plan = draft.BusinessPlan
	}
	w.mounted = true
	return w.stateLocked(), nil
}

// Unmount detaches the wizard. Operations still in flight complete without
// touching its state.
func (w *Wizard) Unmount() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.epoch++
	w.mounted = false
	w.generating = false
}

func (w *Wizard) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stateLocked()
}

// CanAdvance reports whether every required field of the current step is filled.
func (w *Wizard) CanAdvance() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.canAdvanceLocked()
}

// SetField updates one form field and schedules an autosave.
func (w *Wizard) SetField(name, value string) (State, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.interactive(); err != nil {
		return w.stateLocked(), err
	}
	form, ok := w.form.WithField(name, value)
	if !ok {
		return w.stateLocked(), fmt.Errorf("%w: %s", domain.ErrUnknownField, name)
	}
	if form == w.form {
		return w.stateLocked(), nil
	}
	w.form = form
	w.scheduleLocked()
	return w.stateLocked(), nil
}

// SetFields applies several field updates at once. Nothing changes unless
// every name is a known field.
func (w *Wizard) SetFields(fields map[string]string) (State, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.interactive(); err != nil {
		return w.stateLocked(), err
	}
	names := make([]string, 0, len(fields))
	for name := range fields {
		if _, ok := w.form.Field(name); !ok {
			return w.stateLocked(), fmt.Errorf("%w: %s", domain.ErrUnknownField, name)
		}
		names = append(names, name)
	}
	sort.Strings(names)

	form := w.form
	for _, name := range names {
		form, _ = form.WithField(name, fields[name])
	}
	if form == w.form {
		return w.stateLocked(), nil
	}
	w.form = form
	w.scheduleLocked()
	return w.stateLocked(), nil
}

// Back moves one step backwards.
func (w *Wizard) Back() (State, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.interactive(); err != nil {
		return w.stateLocked(), err
	}
	if w.step == 0 {
		return w.stateLocked(), domain.ErrNoPreviousStep
	}
	w.step--
	w.lastErr = nil
	w.scheduleLocked()
	return w.stateLocked(), nil
}

// Edit returns from the result to the review step. The saved plan is kept.
func (w *Wizard) Edit() (State, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.interactive(); err != nil {
		return w.stateLocked(), err
	}
	if w.step != domain.ResultStep {
		return w.stateLocked(), fmt.Errorf("%w: edit is only available on the result step", domain.ErrInvalidInput)
	}
	w.step = domain.ReviewStep
	w.scheduleLocked()
	return w.stateLocked(), nil
}

// Restart clears the wizard and the persisted draft and returns to the first step.
func (w *Wizard) Restart(ctx context.Context) (State, error) {
	w.mu.Lock()
	if !w.mounted {
		w.mu.Unlock()
		return w.State(), domain.ErrWizardDetached
	}
	w.epoch++
	w.reset()
	done := w.deps.Autosave.Discard(w.userID)
	w.mu.Unlock()

	waitDone(ctx, done)
	return w.State(), nil
}

// Next advances one step. On the review step it runs the generation
// transition: quota check, generation, exactly one saved plan, result step.
func (w *Wizard) Next(ctx context.Context) (State, error) {
	w.mu.Lock()
	if w.step != domain.ReviewStep || w.interactive() != nil {
		defer w.mu.Unlock()
		return w.advanceLocked()
	}

	w.generating = true
	w.lastErr = nil
	epoch := w.epoch
	form := w.form
	w.mu.Unlock()

	return w.generate(ctx, epoch, form)
}

func (w *Wizard) advanceLocked() (State, error) {
	if err := w.interactive(); err != nil {
		return w.stateLocked(), err
	}
	if w.step == domain.ResultStep {
		return w.stateLocked(), domain.ErrNoNextStep
	}
	if missing := domain.WizardSteps[w.step].MissingFields(w.form); len(missing) > 0 {
		return w.stateLocked(), fmt.Errorf("%w: %s", domain.ErrStepIncomplete, strings.Join(missing, ", "))
	}
	w.step++
	w.lastErr = nil
	w.scheduleLocked()
	return w.stateLocked(), nil
}

func (w *Wizard) generate(ctx context.Context, epoch uint64, form domain.FormData) (State, error) {
	profile := w.profile()

	count, err := w.deps.Plans.Count(ctx, w.userID)
	if err != nil {
		return w.fail(epoch, "error", fmt.Errorf("count plans: %w", err))
	}
	if domain.QuotaExceeded(profile.Plan, count) {
		return w.fail(epoch, "quota_exceeded", fmt.Errorf("%w: %s accounts can keep %d plans",
			domain.ErrQuotaExceeded, profile.Plan, domain.MaxSavedPlans(profile.Plan)))
	}

	tier := domain.GenerationModelTier(profile.Plan)
	genCtx, cancel := ctx, context.CancelFunc(func() {})
	if w.deps.GenerateTimeout > 0 {
		genCtx, cancel = context.WithTimeout(ctx, w.deps.GenerateTimeout)
	}
	start := time.Now()
	content, err := w.deps.Generator.GeneratePlan(genCtx, form, tier)
	cancel()
	metrics.GenerationDuration.WithLabelValues(string(tier)).Observe(time.Since(start).Seconds())
	if err != nil {
		w.deps.Log.Error().Err(err).Str("user_id", w.userID).Msg("plan generation failed")
		return w.fail(epoch, "error", fmt.Errorf("%w: %v", domain.ErrGenerationFailed, err))
	}

	// The generation already happened, so the plan is kept even when the
	// wizard was unmounted or restarted meanwhile.
	saved, err := w.deps.Plans.Create(ctx, w.userID, form, content)
	if err != nil {
		return w.fail(epoch, "error", fmt.Errorf("save plan: %w", err))
	}

	w.mu.Lock()
	if w.epoch != epoch {
		w.mu.Unlock()
		metrics.GenerationsTotal.WithLabelValues("discarded").Inc()
		return w.State(), domain.ErrWizardDetached
	}
	w.generating = false
	w.plan = content
	w.savedID = saved.ID
	w.step = domain.ResultStep
	done := w.deps.Autosave.Discard(w.userID)
	w.mu.Unlock()

	metrics.GenerationsTotal.WithLabelValues("success").Inc()
	waitDone(ctx, done)
	return w.State(), nil
}

// fail records err on the review step unless the wizard moved on.
func (w *Wizard) fail(epoch uint64, outcome string, err error) (State, error) {
	metrics.GenerationsTotal.WithLabelValues(outcome).Inc()

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.epoch != epoch {
		return w.stateLocked(), domain.ErrWizardDetached
	}
	w.generating = false
	w.lastErr = err
	return w.stateLocked(), err
}

func waitDone(ctx context.Context, done <-chan struct{}) {
	select {
	case <-done:
	case <-ctx.Done():
	}
}

func (w *Wizard) loadDraft(ctx context.Context) (*domain.Draft, error) {
	if d, ok := w.deps.Autosave.Pending(w.userID); ok {
		return &d, nil
	}
	return w.deps.Drafts.Get(ctx, domain.OwnedBy(w.userID), w.userID)
}

func (w *Wizard) interactive() error {
	if !w.mounted {
		return domain.ErrWizardDetached
	}
	if w.generating {
		return domain.ErrGenerationInProgress
	}
	return nil
}

func (w *Wizard) reset() {
	w.step = 0
	w.form = domain.FormData{}
	w.plan = ""
	w.generating = false
	w.lastErr = nil
	w.savedID = ""
}

func (w *Wizard) scheduleLocked() {
	w.deps.Autosave.Schedule(domain.Draft{
		UserID:       w.userID,
		CurrentStep:  w.step,
		FormData:     w.form,
		BusinessPlan: w.plan,
		UpdatedAt:    w.now().UTC(),
	})
}

func (w *Wizard) canAdvanceLocked() bool {
	return w.step < domain.ResultStep && len(domain.WizardSteps[w.step].MissingFields(w.form)) == 0
}

func (w *Wizard) stateLocked() State {
	step := domain.WizardSteps[w.step]
	s := State{
		Step:         w.step,
		StepName:     step.Name,
		StepKind:     step.Kind,
		TotalSteps:   len(domain.WizardSteps),
		FormData:     w.form,
		BusinessPlan: w.plan,
		CanAdvance:   w.canAdvanceLocked(),
		Missing:      step.MissingFields(w.form),
		Generating:   w.generating,
		SavedPlanID:  w.savedID,
		Mounted:      w.mounted,
	}
	if w.lastErr != nil {
		s.Error = w.lastErr.Error()
	}
	return s
}

// clampStep keeps a restored step inside the flow. The result step is only
// restored together with its document.
func clampStep(step int, hasPlan bool) int {
	switch {
	case step < 0:
		return 0
	case step >= domain.ResultStep && hasPlan:
		return domain.ResultStep
	case step >= domain.ResultStep:
		return domain.ReviewStep
	}
	return step
}
