package handler

import (
	"github.com/planwise/business-planner/internal/core/domain"
	"github.com/planwise/business-planner/internal/core/session"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request / Response types ---

type openSessionRequest struct {
	Path string `json:"path"`
}

type navigateRequest struct {
	Path string `json:"path" validate:"required"`
}

type sessionResponse struct {
	Token   string        `json:"token,omitempty"`
	Session session.State `json:"session"`
}

type signUpRequest struct {
	Name     string `json:"name"     validate:"required"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

type updateProfileRequest struct {
	Name  *string `json:"name"  validate:"omitempty,min=1"`
	Email *string `json:"email" validate:"omitempty,email"`
}

type updatePlanRequest struct {
	Plan string `json:"plan" validate:"required,oneof=starter pro enterprise"`
}

type updatePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password"     validate:"required,min=6"`
}

type profileResponse struct {
	Profile   domain.UserProfile  `json:"profile"`
	Status    domain.UpdateStatus `json:"status"`
	Confirmed bool                `json:"confirmed"`
}

type setFieldsRequest struct {
	Fields map[string]string `json:"fields" validate:"required,min=1"`
}

type planSummary struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Date  string `json:"date"`
	Style string `json:"style"`
}

type shareResponse struct {
	ID   string `json:"id"`
	Path string `json:"path"`
}

type exportResponse struct {
	Location string `json:"location"`
}

type testimonialResponse struct {
	Outcome     domain.ModerationOutcome `json:"outcome"`
	Testimonial *domain.Testimonial      `json:"testimonial,omitempty"`
}

type checkoutRequest struct {
	Plan  string `json:"plan"  validate:"required"`
	Name  string `json:"name"  validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

type checkoutResponse struct {
	Reference string        `json:"reference"`
	URL       string        `json:"url"`
	Session   session.State `json:"session"`
}

type completeCheckoutRequest struct {
	Reference string `json:"reference" validate:"required"`
}

type suggestionsResponse struct {
	Keyword     string   `json:"keyword"`
	Suggestions []string `json:"suggestions"`
}
