package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/planwise/business-planner/internal/core/session"
)

// SessionRegistry opens and closes client sessions.
type SessionRegistry interface {
	Open(ctx context.Context, path string) (*session.Manager, error)
	Close(ctx context.Context, sid string) error
}

// TokenIssuer signs client-session tokens.
type TokenIssuer interface {
	Issue(sessionID string) (string, error)
}

// SessionHandler handles the client-session lifecycle and navigation.
type SessionHandler struct {
	registry SessionRegistry
	tokens   TokenIssuer
}

func NewSessionHandler(registry SessionRegistry, tokens TokenIssuer) *SessionHandler {
	return &SessionHandler{registry: registry, tokens: tokens}
}

// Open handles POST /v1/sessions.
//
// @Summary      Open a client session
// @Description  Starts a session at the given client path and returns its bearer token.
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      openSessionRequest  false  "Initial client path"
// @Success      201   {object}  sessionResponse
// @Failure      500   {object}  errorResponse
// @Router       /v1/sessions [post]
func (h *SessionHandler) Open(c echo.Context) error {
	var req openSessionRequest
	if c.Request().ContentLength > 0 {
		if err := bindAndValidate(c, &req); err != nil {
			return err
		}
	}

	m, err := h.registry.Open(c.Request().Context(), req.Path)
	if err != nil {
		return err
	}
	token, err := h.tokens.Issue(m.ID())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, sessionResponse{Token: token, Session: m.State()})
}

// Get handles GET /v1/session.
//
// @Summary      Current session state
// @Tags         session
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  sessionResponse
// @Failure      401  {object}  errorResponse
// @Router       /v1/session [get]
func (h *SessionHandler) Get(c echo.Context) error {
	m, err := ctxSession(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sessionResponse{Session: m.State()})
}

// Navigate handles POST /v1/session/navigate.
//
// @Summary      Move the session to a client path
// @Description  Protected paths redirect anonymous sessions to the auth view. The post-payment path reconciles the payment.
// @Tags         session
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      navigateRequest  true  "Client path"
// @Success      200   {object}  sessionResponse
// @Failure      400   {object}  errorResponse
// @Failure      402   {object}  errorResponse
// @Router       /v1/session/navigate [post]
func (h *SessionHandler) Navigate(c echo.Context) error {
	m, err := ctxSession(c)
	if err != nil {
		return err
	}
	var req navigateRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	state, err := m.Navigate(c.Request().Context(), req.Path)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sessionResponse{Session: state})
}

// Close handles DELETE /v1/session.
//
// @Summary      Close the client session
// @Tags         session
// @Security     BearerAuth
// @Success      204
// @Router       /v1/session [delete]
func (h *SessionHandler) Close(c echo.Context) error {
	m, err := ctxSession(c)
	if err != nil {
		return err
	}
	if err := h.registry.Close(c.Request().Context(), m.ID()); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
