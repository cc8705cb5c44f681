package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/planwise/business-planner/internal/core/domain"
)

// TransactionLister lists recorded payment receipts.
type TransactionLister interface {
	Transactions(ctx context.Context, userID string) ([]domain.Transaction, error)
}

// CheckoutHandler handles tier upgrades.
type CheckoutHandler struct {
	transactions TransactionLister
}

func NewCheckoutHandler(transactions TransactionLister) *CheckoutHandler {
	return &CheckoutHandler{transactions: transactions}
}

// Begin handles POST /v1/checkout.
//
// @Summary      Open a checkout for an upgrade
// @Description  Records the chosen tier on the session and returns the embeddable checkout.
// @Tags         checkout
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      checkoutRequest  true  "Tier and customer"
// @Success      201   {object}  checkoutResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse  "Not an upgrade"
// @Failure      503   {object}  errorResponse  "Payment provider unavailable"
// @Router       /v1/checkout [post]
func (h *CheckoutHandler) Begin(c echo.Context) error {
	m, _, err := ctxProfile(c)
	if err != nil {
		return err
	}
	var req checkoutRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	if _, err := m.ChooseTier(ctx, domain.PlanTier(req.Plan)); err != nil {
		return err
	}
	cs, err := m.BeginCheckout(ctx, req.Name, req.Email)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, checkoutResponse{Reference: cs.Reference, URL: cs.URL, Session: m.State()})
}

// Complete handles POST /v1/checkout/complete.
//
// @Summary      Reconcile a finished payment
// @Tags         checkout
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      completeCheckoutRequest  true  "Checkout reference"
// @Success      200   {object}  profileResponse
// @Failure      402   {object}  errorResponse  "Payment not completed"
// @Router       /v1/checkout/complete [post]
func (h *CheckoutHandler) Complete(c echo.Context) error {
	m, err := ctxSession(c)
	if err != nil {
		return err
	}
	var req completeCheckoutRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := m.ReconcilePayment(c.Request().Context(), req.Reference)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toProfileResponse(res))
}

// Cancel handles DELETE /v1/checkout.
//
// @Summary      Abandon the pending checkout
// @Tags         checkout
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  sessionResponse
// @Router       /v1/checkout [delete]
func (h *CheckoutHandler) Cancel(c echo.Context) error {
	m, err := ctxSession(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sessionResponse{Session: m.CancelCheckout(c.Request().Context())})
}

// Transactions handles GET /v1/transactions.
//
// @Summary      Payment history
// @Tags         checkout
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  domain.Transaction
// @Router       /v1/transactions [get]
func (h *CheckoutHandler) Transactions(c echo.Context) error {
	_, profile, err := ctxProfile(c)
	if err != nil {
		return err
	}
	list, err := h.transactions.Transactions(c.Request().Context(), profile.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}
