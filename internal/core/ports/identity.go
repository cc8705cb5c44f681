package ports

import "github.com/planwise/business-planner/internal/core/domain"

// IdentityEventKind names an identity-change notification.
type IdentityEventKind string

const (
	EventSignedIn       IdentityEventKind = "SIGNED_IN"
	EventSignedOut      IdentityEventKind = "SIGNED_OUT"
	EventUserUpdated    IdentityEventKind = "USER_UPDATED"
	EventTokenRefreshed IdentityEventKind = "TOKEN_REFRESHED"
)

// IdentityEvent is delivered to every subscriber. SessionID is set when the
// change originated from a specific client session.
type IdentityEvent struct {
	Kind      IdentityEventKind
	SessionID string
	UserID    string
	Profile   *domain.UserProfile
}

// IdentityEvents is a publish/subscribe channel for identity changes.
type IdentityEvents interface {
	Publish(event IdentityEvent)
	// Subscribe registers fn and returns a function that removes it.
	Subscribe(fn func(IdentityEvent)) (unsubscribe func())
}
