package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/planwise/business-planner/internal/core/domain"
)

// AuthHandler handles sign-in, sign-up, sign-out and account updates for the
// client session carried by the request.
type AuthHandler struct{}

func NewAuthHandler() *AuthHandler {
	return &AuthHandler{}
}

// SignUp creates a new account and signs the session in.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      signUpRequest  true  "User registration details"
// @Success      201   {object}  sessionResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /v1/auth/signup [post]
func (h *AuthHandler) SignUp(c echo.Context) error {
	m, err := ctxSession(c)
	if err != nil {
		return err
	}
	var req signUpRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	state, err := m.SignUp(c.Request().Context(), req.Name, req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, sessionResponse{Session: state})
}

// Login signs the session in.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  sessionResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /v1/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	m, err := ctxSession(c)
	if err != nil {
		return err
	}
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	state, err := m.SignIn(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sessionResponse{Session: state})
}

// Logout signs the session out. The session itself stays open.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  sessionResponse
// @Router       /v1/auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	m, err := ctxSession(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sessionResponse{Session: m.SignOut(c.Request().Context())})
}

// UpdateProfile handles PATCH /v1/me.
//
// @Summary      Update name and/or email
// @Description  Returns the complete profile; confirmed is false when the change was only applied locally.
// @Tags         account
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updateProfileRequest  true  "Fields to change"
// @Success      200   {object}  profileResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /v1/me [patch]
func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	m, err := ctxSession(c)
	if err != nil {
		return err
	}
	var req updateProfileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := m.UpdateProfile(c.Request().Context(), domain.ProfileUpdate{Name: req.Name, Email: req.Email})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toProfileResponse(res))
}

// UpdatePlan handles PUT /v1/me/plan.
//
// @Summary      Set the subscription tier
// @Tags         account
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updatePlanRequest  true  "Target tier"
// @Success      200   {object}  profileResponse
// @Failure      400   {object}  errorResponse
// @Router       /v1/me/plan [put]
func (h *AuthHandler) UpdatePlan(c echo.Context) error {
	m, err := ctxSession(c)
	if err != nil {
		return err
	}
	var req updatePlanRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := m.UpdatePlan(c.Request().Context(), domain.PlanTier(req.Plan))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toProfileResponse(res))
}

// UpdatePassword handles PUT /v1/me/password.
//
// @Summary      Change password
// @Tags         account
// @Accept       json
// @Security     BearerAuth
// @Param        body  body  updatePasswordRequest  true  "Current and new password"
// @Success      204
// @Failure      400  {object}  errorResponse
// @Failure      401  {object}  errorResponse
// @Router       /v1/me/password [put]
func (h *AuthHandler) UpdatePassword(c echo.Context) error {
	m, err := ctxSession(c)
	if err != nil {
		return err
	}
	var req updatePasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := m.UpdatePassword(c.Request().Context(), req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func toProfileResponse(res domain.ProfileResult) profileResponse {
	return profileResponse{Profile: res.Profile, Status: res.Status, Confirmed: res.Confirmed()}
}
