// Package memory provides an in-process key-value store used when no Redis
// instance is configured, and by tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/planwise/business-planner/internal/core/ports"
)

type entry struct {
	value     []byte
	expiresAt time.Time
}

// KVStore is a mutex-guarded map implementing ports.KeyValueStore.
type KVStore struct {
	mu   sync.RWMutex
	data map[string]entry
	now  func() time.Time
}

// NewKVStore returns an empty store.
func NewKVStore() *KVStore {
	return &KVStore{data: make(map[string]entry), now: time.Now}
}

var _ ports.KeyValueStore = (*KVStore)(nil)

func (s *KVStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	e, ok := s.data[key]
	s.mu.RUnlock()
	if !ok || (!e.expiresAt.IsZero() && !s.now().Before(e.expiresAt)) {
		return nil, ports.ErrKeyNotFound
	}
	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, nil
}

func (s *KVStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	e := entry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expiresAt = s.now().Add(ttl)
	}
	s.mu.Lock()
	s.data[key] = e
	s.mu.Unlock()
	return nil
}

func (s *KVStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.data, key)
	s.mu.Unlock()
	return nil
}

// Keys returns the number of stored keys, expired or not. Useful in tests.
func (s *KVStore) Keys() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
