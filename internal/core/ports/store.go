package ports

import (
	"context"
	"errors"
	"time"

	"github.com/planwise/business-planner/internal/core/domain"
)

// ErrKeyNotFound is returned by KeyValueStore.Get when the key is absent.
var ErrKeyNotFound = errors.New("key not found")

// KeyValueStore is the shared local persistence space. Writers must namespace
// their keys; the last write for a key always wins.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value under key. A ttl of zero keeps the key until deleted.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// RemoteCollection is one entity collection in the remote backend.
type RemoteCollection[T domain.Entity] interface {
	// Upsert inserts rec or replaces the record with the same id.
	Upsert(ctx context.Context, rec T) error
	// List returns the records matching scope in insertion order.
	List(ctx context.Context, scope domain.Scope) ([]T, error)
	// Get returns the record with id inside scope, or (nil, nil) when absent.
	Get(ctx context.Context, scope domain.Scope, id string) (*T, error)
	Delete(ctx context.Context, scope domain.Scope, id string) error
}

// Repository is the uniform CRUD surface the persistence gateway exposes for
// one entity type, regardless of which backing store served the call.
type Repository[T domain.Entity] interface {
	Save(ctx context.Context, scope domain.Scope, rec T) (T, error)
	List(ctx context.Context, scope domain.Scope) ([]T, error)
	Get(ctx context.Context, scope domain.Scope, id string) (*T, error)
	Delete(ctx context.Context, scope domain.Scope, id string) error
}
