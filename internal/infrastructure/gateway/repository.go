// Package gateway implements the persistence gateway: one generic repository
// per entity that prefers the remote backend and transparently falls back to
// the local key-value store.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/planwise/business-planner/internal/core/domain"
	"github.com/planwise/business-planner/internal/core/ports"
	"github.com/planwise/business-planner/internal/pkg/metrics"
)

const keyPrefix = "bp"

// Categorized is implemented by records that can be filtered by Scope.Category.
type Categorized interface {
	EntityCategory() string
}

// Repository implements ports.Repository[T] with remote-then-local fallback.
type Repository[T domain.Entity] struct {
	namespace string
	remote    ports.RemoteCollection[T]
	local     ports.KeyValueStore
	policy    OwnerPolicy
	log       zerolog.Logger

	// mu serialises read-modify-write cycles on local keys within this process.
	mu sync.Mutex
}

// New builds a repository. A nil remote means no remote backend is configured.
func New[T domain.Entity](
	namespace string,
	remote ports.RemoteCollection[T],
	local ports.KeyValueStore,
	policy OwnerPolicy,
	log zerolog.Logger,
) *Repository[T] {
	return &Repository[T]{
		namespace: namespace,
		remote:    remote,
		local:     local,
		policy:    policy,
		log:       log.With().Str("entity", namespace).Logger(),
	}
}

var _ ports.Repository[domain.SavedPlan] = (*Repository[domain.SavedPlan])(nil)

// Save writes rec remotely, or locally when the remote path is unusable or fails.
func (r *Repository[T]) Save(ctx context.Context, scope domain.Scope, rec T) (T, error) {
	if r.tryRemote(scope, "save") {
		err := r.remote.Upsert(ctx, rec)
		if err == nil {
			return rec, nil
		}
		r.remoteFailed("save", scope, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := r.key(scope)
	records, err := r.readLocal(ctx, key)
	if err != nil {
		return rec, err
	}
	replaced := false
	for i := range records {
		if records[i].EntityID() == rec.EntityID() {
			records[i] = rec
			replaced = true
			break
		}
	}
	if !replaced {
		records = append(records, rec)
	}
	if err := r.writeLocal(ctx, key, records); err != nil {
		return rec, err
	}
	return rec, nil
}

// List merges remote and local records, de-duplicated by id in insertion order.
func (r *Repository[T]) List(ctx context.Context, scope domain.Scope) ([]T, error) {
	var remote []T
	if r.tryRemote(scope, "list") {
		recs, err := r.remote.List(ctx, scope)
		if err != nil {
			r.remoteFailed("list", scope, err)
		} else {
			remote = recs
		}
	}

	local, err := r.readLocal(ctx, r.key(scope))
	if err != nil {
		if len(remote) > 0 {
			r.log.Warn().Err(err).Msg("local read failed, serving remote records only")
			return filterCategory(remote, scope.Category), nil
		}
		return nil, err
	}

	return filterCategory(mergeByID(remote, local), scope.Category), nil
}

// Get returns the record with id, or (nil, nil) when neither store has it.
func (r *Repository[T]) Get(ctx context.Context, scope domain.Scope, id string) (*T, error) {
	if r.tryRemote(scope, "get") {
		rec, err := r.remote.Get(ctx, scope, id)
		switch {
		case err != nil:
			r.remoteFailed("get", scope, err)
		case rec != nil:
			return rec, nil
		}
	}

	records, err := r.readLocal(ctx, r.key(scope))
	if err != nil {
		return nil, err
	}
	for i := range records {
		if records[i].EntityID() == id {
			rec := records[i]
			return &rec, nil
		}
	}
	return nil, nil
}

// Delete removes id remotely and always from the local store as well.
func (r *Repository[T]) Delete(ctx context.Context, scope domain.Scope, id string) error {
	if r.tryRemote(scope, "delete") {
		if err := r.remote.Delete(ctx, scope, id); err != nil {
			r.remoteFailed("delete", scope, err)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := r.key(scope)
	records, err := r.readLocal(ctx, key)
	if err != nil {
		return err
	}
	kept := records[:0]
	for _, rec := range records {
		if rec.EntityID() != id {
			kept = append(kept, rec)
		}
	}
	if len(kept) == len(records) {
		return nil
	}
	if len(kept) == 0 {
		if err := r.local.Delete(ctx, key); err != nil {
			return fmt.Errorf("gateway %s: delete local: %w", r.namespace, err)
		}
		return nil
	}
	return r.writeLocal(ctx, key, kept)
}

func (r *Repository[T]) tryRemote(scope domain.Scope, op string) bool {
	ok, reason := UseRemote(r.remote != nil, r.policy, scope.OwnerID)
	if !ok {
		metrics.GatewayFallbackTotal.WithLabelValues(r.namespace, op, reason).Inc()
	}
	return ok
}

func (r *Repository[T]) remoteFailed(op string, scope domain.Scope, err error) {
	metrics.GatewayFallbackTotal.WithLabelValues(r.namespace, op, reasonRemoteError).Inc()
	r.log.Warn().
		Err(err).
		Str("op", op).
		Str("owner", scope.OwnerID).
		Msg("remote store unavailable, using local storage")
}

// key returns the namespaced local key for scope, e.g. bp:plans:<owner>.
func (r *Repository[T]) key(scope domain.Scope) string {
	owner := scope.OwnerID
	if owner == "" {
		owner = "_"
	}
	return fmt.Sprintf("%s:%s:%s", keyPrefix, r.namespace, owner)
}

func (r *Repository[T]) readLocal(ctx context.Context, key string) ([]T, error) {
	raw, err := r.local.Get(ctx, key)
	if errors.Is(err, ports.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("gateway %s: read local: %w", r.namespace, err)
	}
	var records []T
	if err := json.Unmarshal(raw, &records); err != nil {
		// Corrupt entries read as empty.
		r.log.Error().Err(err).Str("key", key).Msg("discarding unreadable local records")
		return nil, nil
	}
	return records, nil
}

func (r *Repository[T]) writeLocal(ctx context.Context, key string, records []T) error {
	raw, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("gateway %s: encode local: %w", r.namespace, err)
	}
	if err := r.local.Set(ctx, key, raw, 0); err != nil {
		return fmt.Errorf("gateway %s: write local: %w", r.namespace, err)
	}
	return nil
}

func mergeByID[T domain.Entity](sources ...[]T) []T {
	seen := make(map[string]struct{})
	var out []T
	for _, src := range sources {
		for _, rec := range src {
			id := rec.EntityID()
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, rec)
		}
	}
	return out
}

func filterCategory[T domain.Entity](records []T, category string) []T {
	if category == "" {
		return records
	}
	out := records[:0:0]
	for _, rec := range records {
		if c, ok := any(rec).(Categorized); ok && c.EntityCategory() != category {
			continue
		}
		out = append(out, rec)
	}
	return out
}
