package queue

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/planwise/business-planner/internal/core/domain"
	"github.com/planwise/business-planner/internal/core/ports"
	"github.com/planwise/business-planner/internal/pkg/metrics"
)

const (
	defaultWorkers = 8
	defaultDelay   = time.Second
	channelBuffer  = 256
)

type jobKind int

const (
	jobSave jobKind = iota
	jobClear
)

type job struct {
	kind   jobKind
	seq    uint64
	userID string
	draft  domain.Draft
	done   chan struct{}
}

type pending struct {
	seq   uint64
	draft domain.Draft
	timer *time.Timer
}

// inflight is a released job that a worker has not finished yet. A cleared
// entry hides the stored draft until the delete lands.
type inflight struct {
	seq     uint64
	draft   domain.Draft
	cleared bool
}

// Autosaver debounces draft writes per user and routes them to a fixed set of
// workers using consistent hashing on the user id. Writes and clears for one
// user run on the same worker in the order they were released, so a
// superseded snapshot can never land after a newer one or after a clear.
// A released snapshot stays visible through Pending until its write returns.
type Autosaver struct {
	drafts  ports.Repository[domain.Draft]
	delay   time.Duration
	workers []chan job
	log     zerolog.Logger

	mu      sync.Mutex
	seq     uint64
	pending map[string]*pending

	// flightMu nests inside mu; workers take only flightMu.
	flightMu sync.Mutex
	inflight map[string]inflight
}

// NewAutosaver creates an Autosaver with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used; if delay <= 0, defaultDelay.
func NewAutosaver(drafts ports.Repository[domain.Draft], delay time.Duration, numWorkers int, log zerolog.Logger) *Autosaver {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	if delay <= 0 {
		delay = defaultDelay
	}
	a := &Autosaver{
		drafts:  drafts,
		delay:   delay,
		workers: make([]chan job, numWorkers),
		log:     log,
		pending:  make(map[string]*pending),
		inflight: make(map[string]inflight),
	}
	for i := range a.workers {
		a.workers[i] = make(chan job, channelBuffer)
	}
	return a
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (a *Autosaver) Start(ctx context.Context) {
	for i, ch := range a.workers {
		go a.runWorker(ctx, i, ch)
	}
}

// Schedule replaces the pending snapshot for draft.UserID and restarts its
// idle timer. Only the latest snapshot is written when the timer fires.
func (a *Autosaver) Schedule(draft domain.Draft) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.seq++
	seq := a.seq
	userID := draft.UserID
	if p, ok := a.pending[userID]; ok {
		p.timer.Stop()
	}
	a.pending[userID] = &pending{
		seq:   seq,
		draft: draft,
		timer: time.AfterFunc(a.delay, func() { a.fire(userID, seq) }),
	}
}

// Pending returns the newest snapshot for userID that the repository may not
// reflect yet: one waiting for its timer or one a worker is still writing.
// While a clear is being applied it reports an empty draft.
func (a *Autosaver) Pending(userID string) (domain.Draft, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if p, ok := a.pending[userID]; ok {
		return p.draft, true
	}
	a.flightMu.Lock()
	f, ok := a.inflight[userID]
	a.flightMu.Unlock()
	if !ok {
		return domain.Draft{}, false
	}
	if f.cleared {
		return domain.Draft{UserID: userID}, true
	}
	return f.draft, true
}

// Flush writes the pending snapshot for userID now and waits for it.
func (a *Autosaver) Flush(ctx context.Context, userID string) {
	a.mu.Lock()
	p, ok := a.pending[userID]
	if !ok {
		a.mu.Unlock()
		return
	}
	p.timer.Stop()
	delete(a.pending, userID)
	done := make(chan struct{})
	a.enqueue(job{kind: jobSave, seq: p.seq, userID: userID, draft: p.draft, done: done})
	a.mu.Unlock()

	a.wait(ctx, done)
}

// FlushAll writes every pending snapshot. Used on shutdown, before the
// workers stop.
func (a *Autosaver) FlushAll(ctx context.Context) {
	a.mu.Lock()
	users := make([]string, 0, len(a.pending))
	for userID := range a.pending {
		users = append(users, userID)
	}
	a.mu.Unlock()

	for _, userID := range users {
		a.Flush(ctx, userID)
	}
}

// Clear drops any pending snapshot for userID and deletes the stored draft,
// waiting until the delete has been applied.
func (a *Autosaver) Clear(ctx context.Context, userID string) {
	a.wait(ctx, a.Discard(userID))
}

// Discard drops any pending snapshot for userID and releases a delete of the
// stored draft. Snapshots scheduled after Discard returns are written after
// the delete. The returned channel is closed once the delete was applied.
func (a *Autosaver) Discard(userID string) <-chan struct{} {
	a.mu.Lock()
	defer a.mu.Unlock()
	if p, ok := a.pending[userID]; ok {
		p.timer.Stop()
		delete(a.pending, userID)
	}
	a.seq++
	done := make(chan struct{})
	a.enqueue(job{kind: jobClear, seq: a.seq, userID: userID, done: done})
	return done
}

// fire releases the snapshot scheduled under seq unless it was superseded.
func (a *Autosaver) fire(userID string, seq uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	p, ok := a.pending[userID]
	if !ok || p.seq != seq {
		return
	}
	delete(a.pending, userID)
	a.enqueue(job{kind: jobSave, seq: seq, userID: userID, draft: p.draft})
}

// enqueue must be called with a.mu held so release order equals queue order.
func (a *Autosaver) enqueue(j job) {
	a.flightMu.Lock()
	a.inflight[j.userID] = inflight{seq: j.seq, draft: j.draft, cleared: j.kind == jobClear}
	a.flightMu.Unlock()
	a.workers[a.shardIndex(j.userID)] <- j
}

// settle forgets the in-flight entry for j unless a later job replaced it.
func (a *Autosaver) settle(j job) {
	a.flightMu.Lock()
	defer a.flightMu.Unlock()
	if f, ok := a.inflight[j.userID]; ok && f.seq == j.seq {
		delete(a.inflight, j.userID)
	}
}

func (a *Autosaver) wait(ctx context.Context, done <-chan struct{}) {
	select {
	case <-done:
	case <-ctx.Done():
	}
}

// shardIndex maps a user id deterministically to a worker index.
func (a *Autosaver) shardIndex(userID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return int(h.Sum32() % uint32(len(a.workers)))
}

func (a *Autosaver) runWorker(ctx context.Context, id int, ch <-chan job) {
	for {
		select {
		case <-ctx.Done():
			return
		case j, ok := <-ch:
			if !ok {
				return
			}
			a.process(ctx, id, j)
		}
	}
}

func (a *Autosaver) process(ctx context.Context, id int, j job) {
	if j.done != nil {
		defer close(j.done)
	}

	scope := domain.OwnedBy(j.userID)
	var err error
	result := "saved"
	switch j.kind {
	case jobSave:
		_, err = a.drafts.Save(ctx, scope, j.draft)
	case jobClear:
		result = "cleared"
		err = a.drafts.Delete(ctx, scope, j.userID)
	}
	a.settle(j)
	if err != nil {
		result = "failed"
		a.log.Error().Err(err).
			Str("user_id", j.userID).
			Int("worker_id", id).
			Msg("draft write failed")
	}
	metrics.DraftWritesTotal.WithLabelValues(result).Inc()
}
