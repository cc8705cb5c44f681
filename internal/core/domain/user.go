package domain

import (
	"strings"
	"time"
)

// PlanTier is the subscription level controlling quotas and feature gates.
type PlanTier string

const (
	PlanStarter    PlanTier = "starter"
	PlanPro        PlanTier = "pro"
	PlanEnterprise PlanTier = "enterprise"
)

// ParsePlanTier normalises s and reports whether it names a known tier.
func ParsePlanTier(s string) (PlanTier, bool) {
	switch PlanTier(strings.ToLower(strings.TrimSpace(s))) {
	case PlanStarter:
		return PlanStarter, true
	case PlanPro:
		return PlanPro, true
	case PlanEnterprise:
		return PlanEnterprise, true
	}
	return "", false
}

// UserProfile is the identity + entitlement view handed to callers.
type UserProfile struct {
	ID    string   `json:"id"`
	Email string   `json:"email"`
	Name  string   `json:"name"`
	Plan  PlanTier `json:"plan"`
}

// User models an account as stored by an identity backend.
type User struct {
	ID           string    `json:"id" bson:"_id"`
	Name         string    `json:"name" bson:"name"`
	Email        string    `json:"email" bson:"email"`
	PasswordHash string    `json:"password_hash" bson:"password_hash"`
	Plan         PlanTier  `json:"plan" bson:"plan"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" bson:"updated_at"`
}

// Profile strips credentials from u.
func (u *User) Profile() UserProfile {
	plan := u.Plan
	if plan == "" {
		plan = PlanStarter
	}
	return UserProfile{ID: u.ID, Email: u.Email, Name: u.Name, Plan: plan}
}

// ProfileUpdate carries the optional fields of a profile mutation.
type ProfileUpdate struct {
	Name  *string
	Email *string
}

// UpdateStatus tells callers whether a mutation reached the identity backend.
type UpdateStatus string

const (
	UpdateConfirmed      UpdateStatus = "confirmed"
	UpdateAppliedLocally UpdateStatus = "applied_locally"
)

// ProfileResult is the complete updated profile plus how it was applied.
type ProfileResult struct {
	Profile UserProfile  `json:"profile"`
	Status  UpdateStatus `json:"status"`
}

// Confirmed reports whether the remote identity backend acknowledged the update.
func (r ProfileResult) Confirmed() bool { return r.Status == UpdateConfirmed }

// NormalizeEmail lower-cases and trims an e-mail address for lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
