package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/planwise/business-planner/internal/core/domain"
	"github.com/planwise/business-planner/internal/core/ports"
	"github.com/planwise/business-planner/internal/pkg/metrics"
)

// PlanUpdater is the part of AuthService checkout depends on.
type PlanUpdater interface {
	UpdatePlan(ctx context.Context, current domain.UserProfile, plan domain.PlanTier) (domain.ProfileResult, error)
}

type checkoutInput struct {
	Name  string `validate:"required"`
	Email string `validate:"required,email"`
}

// CheckoutService opens payment sessions for upgrades and reconciles receipts.
type CheckoutService struct {
	payments     ports.PaymentGateway
	transactions ports.Repository[domain.Transaction]
	users        PlanUpdater
	validate     *validator.Validate
	log          zerolog.Logger
	now          func() time.Time
}

// NewCheckoutService builds the service. payments may be nil when no payment
// provider is configured; every call then fails with ErrPaymentUnavailable.
func NewCheckoutService(payments ports.PaymentGateway, transactions ports.Repository[domain.Transaction], users PlanUpdater, log zerolog.Logger) *CheckoutService {
	return &CheckoutService{
		payments:     payments,
		transactions: transactions,
		users:        users,
		validate:     validator.New(),
		log:          log,
		now:          time.Now,
	}
}

// Begin opens a checkout for moving profile to plan. Only upgrades are sold.
func (s *CheckoutService) Begin(ctx context.Context, profile domain.UserProfile, plan domain.PlanTier, name, email string) (*ports.CheckoutSession, error) {
	in := checkoutInput{Name: strings.TrimSpace(name), Email: domain.NormalizeEmail(email)}
	if err := s.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	tier, ok := domain.ParsePlanTier(string(plan))
	if !ok {
		return nil, fmt.Errorf("%w: unknown plan %q", domain.ErrInvalidInput, plan)
	}
	if domain.ClassifyPlanChange(profile.Plan, tier) != domain.PlanUpgrade {
		return nil, domain.ErrNotAnUpgrade
	}
	if s.payments == nil {
		return nil, domain.ErrPaymentUnavailable
	}

	session, err := s.payments.CreateCheckout(ctx, ports.CheckoutRequest{
		UserID: profile.ID,
		Name:   in.Name,
		Email:  in.Email,
		Plan:   tier,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPaymentUnavailable, err)
	}
	return session, nil
}

// Complete fetches the receipt for reference, records the transaction and
// applies the purchased plan. Repeating it for the same reference is harmless.
func (s *CheckoutService) Complete(ctx context.Context, profile domain.UserProfile, reference string) (*ports.Receipt, domain.ProfileResult, error) {
	if strings.TrimSpace(reference) == "" {
		return nil, domain.ProfileResult{}, domain.ErrInvalidInput
	}
	if s.payments == nil {
		return nil, domain.ProfileResult{}, domain.ErrPaymentUnavailable
	}

	receipt, err := s.payments.FetchReceipt(ctx, reference)
	if err != nil {
		return nil, domain.ProfileResult{}, fmt.Errorf("%w: %v", domain.ErrPaymentUnavailable, err)
	}
	if receipt.Status != ports.ReceiptPaid {
		return receipt, domain.ProfileResult{}, domain.ErrPaymentIncomplete
	}
	if receipt.UserID != "" && receipt.UserID != profile.ID {
		return receipt, domain.ProfileResult{}, fmt.Errorf("%w: receipt belongs to another account", domain.ErrInvalidInput)
	}
	if _, ok := domain.ParsePlanTier(string(receipt.PlanID)); !ok {
		return receipt, domain.ProfileResult{}, fmt.Errorf("%w: receipt has no plan", domain.ErrPaymentIncomplete)
	}

	tx := domain.Transaction{
		ID:        receipt.Reference,
		UserID:    profile.ID,
		Reference: receipt.Reference,
		Status:    receipt.Status,
		Amount:    receipt.Amount,
		Currency:  receipt.Currency,
		PlanID:    receipt.PlanID,
		Date:      s.now().UTC().Format(time.RFC3339),
	}
	if _, err := s.transactions.Save(ctx, domain.OwnedBy(profile.ID), tx); err != nil {
		return receipt, domain.ProfileResult{}, err
	}

	change := domain.ClassifyPlanChange(profile.Plan, receipt.PlanID)
	res, err := s.users.UpdatePlan(ctx, profile, receipt.PlanID)
	if err != nil {
		return receipt, domain.ProfileResult{}, err
	}
	metrics.PlanChangesTotal.WithLabelValues(string(change), string(res.Status)).Inc()
	s.log.Info().
		Str("user_id", profile.ID).
		Str("reference", receipt.Reference).
		Str("plan", string(receipt.PlanID)).
		Msg("payment reconciled")
	return receipt, res, nil
}

// Transactions lists the user's recorded receipts.
func (s *CheckoutService) Transactions(ctx context.Context, userID string) ([]domain.Transaction, error) {
	return s.transactions.List(ctx, domain.OwnedBy(userID))
}
