package gateway

import "github.com/planwise/business-planner/internal/core/domain"

// OwnerPolicy states whether an entity's remote path needs a remote-compatible owner id.
type OwnerPolicy int

const (
	// OwnerOptional records (shares, blog posts, testimonials) use the remote
	// backend whenever one is configured.
	OwnerOptional OwnerPolicy = iota
	// OwnerRequired records (plans, drafts, transactions) skip the remote
	// backend when the owner id is not canonical.
	OwnerRequired
)

// Fallback reasons, also used as metric labels.
const (
	reasonUnconfigured = "unconfigured"
	reasonOwnerShape   = "owner_shape"
	reasonRemoteError  = "remote_error"
)

// UseRemote is the single fallback decision shared by every gateway call site.
// It returns false together with the reason when the call must go straight to
// local storage.
func UseRemote(remoteConfigured bool, policy OwnerPolicy, ownerID string) (bool, string) {
	if !remoteConfigured {
		return false, reasonUnconfigured
	}
	if policy == OwnerRequired && !domain.IsCanonicalID(ownerID) {
		return false, reasonOwnerShape
	}
	return true, ""
}
