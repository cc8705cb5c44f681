package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/planwise/business-planner/internal/core/wizard"
)

// WizardHandler exposes the signed-in user's plan wizard.
type WizardHandler struct{}

func NewWizardHandler() *WizardHandler {
	return &WizardHandler{}
}

func wizardFor(c echo.Context) (*wizard.Wizard, error) {
	m, err := ctxSession(c)
	if err != nil {
		return nil, err
	}
	return m.Wizard(c.Request().Context())
}

// Get handles GET /v1/wizard.
//
// @Summary      Wizard state
// @Description  Mounts the wizard on first access, restoring the saved draft.
// @Tags         wizard
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  wizard.State
// @Failure      401  {object}  errorResponse
// @Router       /v1/wizard [get]
func (h *WizardHandler) Get(c echo.Context) error {
	w, err := wizardFor(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, w.State())
}

// SetFields handles PUT /v1/wizard/fields.
//
// @Summary      Update form fields
// @Tags         wizard
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      setFieldsRequest  true  "Field name to value"
// @Success      200   {object}  wizard.State
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /v1/wizard/fields [put]
func (h *WizardHandler) SetFields(c echo.Context) error {
	w, err := wizardFor(c)
	if err != nil {
		return err
	}
	var req setFieldsRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	state, err := w.SetFields(req.Fields)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, state)
}

// Next handles POST /v1/wizard/next. On the review step it generates the plan.
//
// @Summary      Advance one step
// @Tags         wizard
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  wizard.State
// @Failure      402  {object}  errorResponse  "Saved plan limit reached"
// @Failure      422  {object}  errorResponse  "Step incomplete"
// @Failure      502  {object}  errorResponse  "Generation failed"
// @Router       /v1/wizard/next [post]
func (h *WizardHandler) Next(c echo.Context) error {
	w, err := wizardFor(c)
	if err != nil {
		return err
	}
	state, err := w.Next(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, state)
}

// Back handles POST /v1/wizard/back.
//
// @Summary      Go back one step
// @Tags         wizard
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  wizard.State
// @Router       /v1/wizard/back [post]
func (h *WizardHandler) Back(c echo.Context) error {
	w, err := wizardFor(c)
	if err != nil {
		return err
	}
	state, err := w.Back()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, state)
}

// Edit handles POST /v1/wizard/edit.
//
// @Summary      Return from the result to the review step
// @Tags         wizard
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  wizard.State
// @Router       /v1/wizard/edit [post]
func (h *WizardHandler) Edit(c echo.Context) error {
	w, err := wizardFor(c)
	if err != nil {
		return err
	}
	state, err := w.Edit()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, state)
}

// Restart handles POST /v1/wizard/restart.
//
// @Summary      Clear the wizard and its draft
// @Tags         wizard
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  wizard.State
// @Router       /v1/wizard/restart [post]
func (h *WizardHandler) Restart(c echo.Context) error {
	w, err := wizardFor(c)
	if err != nil {
		return err
	}
	state, err := w.Restart(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, state)
}
