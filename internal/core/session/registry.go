package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/planwise/business-planner/internal/core/domain"
	"github.com/planwise/business-planner/internal/core/ports"
	"github.com/planwise/business-planner/internal/pkg/metrics"
)

const defaultIdleTimeout = 30 * time.Minute

type entry struct {
	manager  *Manager
	lastSeen time.Time
}

// Registry owns the client sessions held in memory. Sessions evicted for
// idleness, or lost in a restart, are rebuilt from ephemeral storage on the
// next Acquire.
type Registry struct {
	deps Deps
	idle time.Duration
	now  func() time.Time

	mu       sync.Mutex
	sessions map[string]*entry
}

// NewRegistry creates an empty registry. idle <= 0 uses defaultIdleTimeout.
func NewRegistry(deps Deps, idle time.Duration) *Registry {
	if idle <= 0 {
		idle = defaultIdleTimeout
	}
	return &Registry{
		deps:     deps,
		idle:     idle,
		now:      time.Now,
		sessions: make(map[string]*entry),
	}
}

// Open starts a new client session located at path.
func (r *Registry) Open(ctx context.Context, path string) (*Manager, error) {
	m := NewManager(uuid.NewString(), r.deps)
	m.Init(ctx, path)

	r.mu.Lock()
	r.sessions[m.ID()] = &entry{manager: m, lastSeen: r.now()}
	r.reportLocked()
	r.mu.Unlock()

	r.deps.Log.Debug().Str("session_id", m.ID()).Msg("session opened")
	return m, nil
}

// Acquire returns the live session sid, restoring it from ephemeral storage
// when it is not held in memory.
func (r *Registry) Acquire(ctx context.Context, sid string) (*Manager, error) {
	if m := r.touch(sid); m != nil {
		return m, nil
	}

	if _, err := r.deps.Store.Get(ctx, SnapshotKey(sid)); err != nil {
		if errors.Is(err, ports.ErrKeyNotFound) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("acquire session: %w", err)
	}

	m := NewManager(sid, r.deps)
	m.Init(ctx, "")

	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.sessions[sid]; ok {
		// Restored concurrently by another request.
		m.Teardown()
		e.lastSeen = r.now()
		return e.manager, nil
	}
	r.sessions[sid] = &entry{manager: m, lastSeen: r.now()}
	r.reportLocked()
	r.deps.Log.Debug().Str("session_id", sid).Msg("session restored")
	return m, nil
}

// Close tears the session down and forgets it, including its snapshot.
func (r *Registry) Close(ctx context.Context, sid string) error {
	r.mu.Lock()
	e, ok := r.sessions[sid]
	delete(r.sessions, sid)
	r.reportLocked()
	r.mu.Unlock()

	if ok {
		e.manager.Teardown()
	}
	if err := r.deps.Store.Delete(ctx, SnapshotKey(sid)); err != nil {
		return fmt.Errorf("close session: %w", err)
	}
	return nil
}

// Sweep tears down sessions idle for longer than the idle timeout and
// returns how many were evicted.
func (r *Registry) Sweep() int {
	cutoff := r.now().Add(-r.idle)

	r.mu.Lock()
	var stale []*Manager
	for sid, e := range r.sessions {
		if e.lastSeen.Before(cutoff) {
			stale = append(stale, e.manager)
			delete(r.sessions, sid)
		}
	}
	r.reportLocked()
	r.mu.Unlock()

	for _, m := range stale {
		m.Teardown()
	}
	if len(stale) > 0 {
		r.deps.Log.Info().Int("evicted", len(stale)).Msg("idle sessions swept")
	}
	return len(stale)
}

// Run sweeps every interval until ctx is cancelled.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

// Shutdown tears down every held session. Snapshots are kept.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	all := r.sessions
	r.sessions = make(map[string]*entry)
	r.reportLocked()
	r.mu.Unlock()

	for _, e := range all {
		e.manager.Teardown()
	}
}

// Len returns the number of sessions held in memory.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *Registry) touch(sid string) *Manager {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[sid]
	if !ok {
		return nil
	}
	e.lastSeen = r.now()
	return e.manager
}

func (r *Registry) reportLocked() {
	metrics.ActiveSessions.Set(float64(len(r.sessions)))
}
