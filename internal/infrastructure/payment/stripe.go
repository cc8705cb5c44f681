// Package payment adapts Stripe Checkout to ports.PaymentGateway.
package payment

import (
	"context"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v75"
	"github.com/stripe/stripe-go/v75/client"

	"github.com/planwise/business-planner/internal/core/domain"
	"github.com/planwise/business-planner/internal/core/ports"
)

// Config maps plan tiers to Stripe price ids and sets the redirect origin.
type Config struct {
	SecretKey string
	Prices    map[domain.PlanTier]string
	BaseURL   string
}

// StripeGateway creates subscription checkout sessions and reads them back
// as receipts. The session id doubles as the payment reference.
type StripeGateway struct {
	api     *client.API
	prices  map[domain.PlanTier]string
	baseURL string
}

func NewStripeGateway(cfg Config) *StripeGateway {
	return &StripeGateway{
		api:     client.New(cfg.SecretKey, nil),
		prices:  cfg.Prices,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
	}
}

var _ ports.PaymentGateway = (*StripeGateway)(nil)

func (g *StripeGateway) CreateCheckout(ctx context.Context, req ports.CheckoutRequest) (*ports.CheckoutSession, error) {
	price, ok := g.prices[req.Plan]
	if !ok || price == "" {
		return nil, fmt.Errorf("%w: no price configured for plan %q", domain.ErrInvalidInput, req.Plan)
	}

	params := &stripe.CheckoutSessionParams{
		SuccessURL:    stripe.String(g.baseURL + "/payment/success?reference={CHECKOUT_SESSION_ID}"),
		CancelURL:     stripe.String(g.baseURL + "/pricing"),
		Mode:          stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		CustomerEmail: stripe.String(req.Email),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(price), Quantity: stripe.Int64(1)},
		},
		ClientReferenceID: stripe.String(req.UserID),
		Metadata: map[string]string{
			"user_id": req.UserID,
			"plan_id": string(req.Plan),
			"name":    req.Name,
		},
	}
	params.Context = ctx

	s, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}
	return &ports.CheckoutSession{Reference: s.ID, URL: s.URL}, nil
}

func (g *StripeGateway) FetchReceipt(ctx context.Context, reference string) (*ports.Receipt, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	s, err := g.api.CheckoutSessions.Get(reference, params)
	if err != nil {
		return nil, fmt.Errorf("get checkout session: %w", err)
	}

	plan, _ := domain.ParsePlanTier(s.Metadata["plan_id"])
	return &ports.Receipt{
		Reference: s.ID,
		Status:    receiptStatus(s.PaymentStatus),
		Amount:    s.AmountTotal,
		Currency:  strings.ToUpper(string(s.Currency)),
		PlanID:    plan,
		UserID:    s.ClientReferenceID,
	}, nil
}

func receiptStatus(status stripe.CheckoutSessionPaymentStatus) string {
	switch status {
	case stripe.CheckoutSessionPaymentStatusPaid, stripe.CheckoutSessionPaymentStatusNoPaymentRequired:
		return ports.ReceiptPaid
	default:
		return string(status)
	}
}
