package domain

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

// Entity is implemented by every record the persistence gateway stores.
type Entity interface {
	EntityID() string
}

// Scope narrows gateway reads and writes to an owner and optional category.
type Scope struct {
	OwnerID  string
	Category string
}

// OwnedBy returns a scope for records belonging to ownerID.
func OwnedBy(ownerID string) Scope { return Scope{OwnerID: ownerID} }

// LocalIDPrefix marks identities created without a remote identity backend.
const LocalIDPrefix = "local-"

// NewLocalID returns an identifier that deliberately fails IsCanonicalID.
func NewLocalID() string {
	return LocalIDPrefix + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// IsCanonicalID reports whether id is in the remote backend's canonical
// unique-id format (a hyphenated UUID).
func IsCanonicalID(id string) bool {
	if len(id) != 36 {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrNotSignedIn        = errors.New("not signed in")
	ErrSessionNotFound    = errors.New("session not found")

	ErrPlanNotFound  = errors.New("plan not found")
	ErrShareNotFound = errors.New("shared link not found")
	ErrPostNotFound  = errors.New("blog post not found")

	ErrStepIncomplete       = errors.New("step has missing required fields")
	ErrNoNextStep           = errors.New("no step after result")
	ErrNoPreviousStep       = errors.New("already on the first step")
	ErrUnknownField         = errors.New("unknown form field")
	ErrQuotaExceeded        = errors.New("saved plan limit reached")
	ErrGenerationFailed     = errors.New("plan generation failed")
	ErrGenerationInProgress = errors.New("plan generation already in progress")
	ErrWizardDetached       = errors.New("wizard is no longer mounted")

	ErrRateLimited     = errors.New("generation attempted too soon")
	ErrDailyCapReached = errors.New("daily generation cap reached")

	ErrExportNotAllowed   = errors.New("plan tier does not include export")
	ErrNotAnUpgrade       = errors.New("checkout requires an upgrade")
	ErrPaymentIncomplete  = errors.New("payment not completed")
	ErrPaymentUnavailable = errors.New("payment provider not configured")
	ErrModerationFailed   = errors.New("content moderation unavailable")
)
