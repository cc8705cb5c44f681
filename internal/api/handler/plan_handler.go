package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/planwise/business-planner/internal/core/domain"
	"github.com/planwise/business-planner/internal/core/service"
	"github.com/planwise/business-planner/internal/core/shell"
)

// PlanReader lists and reads a user's saved plans.
type PlanReader interface {
	List(ctx context.Context, userID string) ([]domain.SavedPlan, error)
	Get(ctx context.Context, userID, id string) (*domain.SavedPlan, error)
}

// ShareCreator snapshots plan text behind a public token.
type ShareCreator interface {
	Create(ctx context.Context, content string) (domain.SharedLink, error)
}

// Exporter renders and stores a plan document.
type Exporter interface {
	Export(ctx context.Context, profile domain.UserProfile, planID string) (*service.ExportResult, error)
}

// PlanHandler handles the signed-in user's saved plans.
type PlanHandler struct {
	plans    PlanReader
	shares   ShareCreator
	exporter Exporter
}

func NewPlanHandler(plans PlanReader, shares ShareCreator, exporter Exporter) *PlanHandler {
	return &PlanHandler{plans: plans, shares: shares, exporter: exporter}
}

// List handles GET /v1/plans.
//
// @Summary      List saved plans, newest first
// @Tags         plans
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   planSummary
// @Failure      401  {object}  errorResponse
// @Router       /v1/plans [get]
func (h *PlanHandler) List(c echo.Context) error {
	_, profile, err := ctxProfile(c)
	if err != nil {
		return err
	}
	plans, err := h.plans.List(c.Request().Context(), profile.ID)
	if err != nil {
		return err
	}

	out := make([]planSummary, 0, len(plans))
	for _, p := range plans {
		out = append(out, planSummary{ID: p.ID, Title: p.Title, Date: p.Date, Style: p.Style})
	}
	return c.JSON(http.StatusOK, out)
}

// Get handles GET /v1/plans/:id and selects the plan in the session.
//
// @Summary      Open a saved plan
// @Tags         plans
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Plan id"
// @Success      200  {object}  domain.SavedPlan
// @Failure      404  {object}  errorResponse
// @Router       /v1/plans/{id} [get]
func (h *PlanHandler) Get(c echo.Context) error {
	m, err := ctxSession(c)
	if err != nil {
		return err
	}
	plan, err := m.OpenPlan(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, plan)
}

// Delete handles DELETE /v1/plans/:id.
//
// @Summary      Delete a saved plan
// @Tags         plans
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Plan id"
// @Success      200  {object}  sessionResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/plans/{id} [delete]
func (h *PlanHandler) Delete(c echo.Context) error {
	m, err := ctxSession(c)
	if err != nil {
		return err
	}
	state, err := m.DeletePlan(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sessionResponse{Session: state})
}

// Share handles POST /v1/plans/:id/share.
//
// @Summary      Create a public read-only link
// @Tags         plans
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Plan id"
// @Success      201  {object}  shareResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/plans/{id}/share [post]
func (h *PlanHandler) Share(c echo.Context) error {
	_, profile, err := ctxProfile(c)
	if err != nil {
		return err
	}
	plan, err := h.plans.Get(c.Request().Context(), profile.ID, c.Param("id"))
	if err != nil {
		return err
	}
	link, err := h.shares.Create(c.Request().Context(), plan.Content)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, shareResponse{
		ID:   link.ID,
		Path: shell.Path(shell.Route{View: shell.ViewShared, ContentID: link.ID}),
	})
}

// Export handles POST /v1/plans/:id/export.
//
// @Summary      Export a plan document
// @Tags         plans
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Plan id"
// @Success      201  {object}  exportResponse
// @Failure      403  {object}  errorResponse  "Tier does not include export"
// @Failure      404  {object}  errorResponse
// @Router       /v1/plans/{id}/export [post]
func (h *PlanHandler) Export(c echo.Context) error {
	_, profile, err := ctxProfile(c)
	if err != nil {
		return err
	}
	res, err := h.exporter.Export(c.Request().Context(), profile, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, exportResponse{Location: res.Path})
}
