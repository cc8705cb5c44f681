package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/planwise/business-planner/internal/core/domain"
)

type recordingDrafts struct {
	mu     sync.Mutex
	ops    []string
	stored map[string]domain.Draft
}

func newRecordingDrafts() *recordingDrafts {
	return &recordingDrafts{stored: make(map[string]domain.Draft)}
}

func (r *recordingDrafts) Save(_ context.Context, _ domain.Scope, d domain.Draft) (domain.Draft, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, "save:"+d.FormData.BusinessName)
	r.stored[d.UserID] = d
	return d, nil
}

func (r *recordingDrafts) List(context.Context, domain.Scope) ([]domain.Draft, error) {
	return nil, nil
}

func (r *recordingDrafts) Get(_ context.Context, _ domain.Scope, id string) (*domain.Draft, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.stored[id]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

func (r *recordingDrafts) Delete(_ context.Context, _ domain.Scope, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, "delete")
	delete(r.stored, id)
	return nil
}

func (r *recordingDrafts) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.ops...)
}

func draftNamed(user, name string) domain.Draft {
	return domain.Draft{UserID: user, FormData: domain.FormData{BusinessName: name}}
}

func startAutosaver(t *testing.T, drafts *recordingDrafts, delay time.Duration) *Autosaver {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	a := NewAutosaver(drafts, delay, 4, zerolog.Nop())
	a.Start(ctx)
	return a
}

func TestAutosaver_DebouncesToLatestSnapshot(t *testing.T) {
	drafts := newRecordingDrafts()
	a := startAutosaver(t, drafts, 20*time.Millisecond)

	a.Schedule(draftNamed("u1", "A"))
	a.Schedule(draftNamed("u1", "Ac"))
	a.Schedule(draftNamed("u1", "Acme"))

	if d, ok := a.Pending("u1"); !ok || d.FormData.BusinessName != "Acme" {
		t.Fatalf("pending snapshot should be the latest, got %+v %v", d, ok)
	}

	deadline := time.Now().Add(time.Second)
	for len(drafts.snapshot()) == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	ops := drafts.snapshot()
	if len(ops) != 1 || ops[0] != "save:Acme" {
		t.Fatalf("expected a single write of the latest snapshot, got %v", ops)
	}
	for time.Now().Before(deadline) {
		if _, ok := a.Pending("u1"); !ok {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("nothing should be pending after the write")
}

func TestAutosaver_ClearCancelsPendingWrite(t *testing.T) {
	drafts := newRecordingDrafts()
	a := startAutosaver(t, drafts, 20*time.Millisecond)

	a.Schedule(draftNamed("u1", "Acme"))
	a.Clear(context.Background(), "u1")
	time.Sleep(60 * time.Millisecond)

	ops := drafts.snapshot()
	if len(ops) != 1 || ops[0] != "delete" {
		t.Fatalf("expected only the delete, got %v", ops)
	}
	if d, _ := drafts.Get(context.Background(), domain.Scope{}, "u1"); d != nil {
		t.Fatalf("draft must be gone, got %+v", d)
	}
}

func TestAutosaver_FlushThenClearKeepsOrder(t *testing.T) {
	drafts := newRecordingDrafts()
	a := startAutosaver(t, drafts, time.Hour)

	a.Schedule(draftNamed("u1", "Acme"))
	a.Flush(context.Background(), "u1")
	a.Clear(context.Background(), "u1")

	ops := drafts.snapshot()
	if len(ops) != 2 || ops[0] != "save:Acme" || ops[1] != "delete" {
		t.Fatalf("unexpected order: %v", ops)
	}
}

func TestAutosaver_ShardIndexIsStable(t *testing.T) {
	a := NewAutosaver(newRecordingDrafts(), 0, 8, zerolog.Nop())
	first := a.shardIndex("user-42")
	for i := 0; i < 10; i++ {
		if got := a.shardIndex("user-42"); got != first {
			t.Fatalf("shard changed: %d != %d", got, first)
		}
	}
}

func TestAutosaver_FlushAllWritesEveryPendingDraft(t *testing.T) {
	drafts := newRecordingDrafts()
	a := startAutosaver(t, drafts, time.Hour)

	a.Schedule(draftNamed("u1", "Acme"))
	a.Schedule(draftNamed("u2", "Globex"))
	a.FlushAll(context.Background())

	if n := len(drafts.snapshot()); n != 2 {
		t.Fatalf("expected two writes, got %d", n)
	}
	for _, user := range []string{"u1", "u2"} {
		if _, ok := a.Pending(user); ok {
			t.Fatalf("%s still pending", user)
		}
	}
}

type blockingDrafts struct {
	*recordingDrafts
	entered chan struct{}
	release chan struct{}
}

func newBlockingDrafts() *blockingDrafts {
	return &blockingDrafts{
		recordingDrafts: newRecordingDrafts(),
		entered:         make(chan struct{}, 1),
		release:         make(chan struct{}),
	}
}

func (b *blockingDrafts) Save(ctx context.Context, scope domain.Scope, d domain.Draft) (domain.Draft, error) {
	b.entered <- struct{}{}
	<-b.release
	return b.recordingDrafts.Save(ctx, scope, d)
}

func TestAutosaver_PendingCoversWriteInFlight(t *testing.T) {
	drafts := newBlockingDrafts()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	a := NewAutosaver(drafts, 10*time.Millisecond, 2, zerolog.Nop())
	a.Start(ctx)

	a.Schedule(draftNamed("u1", "Acme"))
	select {
	case <-drafts.entered:
	case <-time.After(time.Second):
		t.Fatal("write never started")
	}

	d, ok := a.Pending("u1")
	if !ok || d.FormData.BusinessName != "Acme" {
		t.Fatalf("snapshot being written must stay visible, got %+v %v", d, ok)
	}
	if stored, _ := drafts.Get(ctx, domain.Scope{}, "u1"); stored != nil {
		t.Fatalf("repository should not have the draft yet, got %+v", stored)
	}

	close(drafts.release)
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if _, ok := a.Pending("u1"); !ok {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	if _, ok := a.Pending("u1"); ok {
		t.Fatal("in-flight entry should be dropped once the write returns")
	}
	if stored, _ := drafts.Get(ctx, domain.Scope{}, "u1"); stored == nil || stored.FormData.BusinessName != "Acme" {
		t.Fatalf("draft not stored: %+v", stored)
	}
}

func TestAutosaver_ScheduleAfterDiscardSurvives(t *testing.T) {
	drafts := newRecordingDrafts()
	a := startAutosaver(t, drafts, time.Hour)

	a.Schedule(draftNamed("u1", "Acme"))
	done := a.Discard("u1")
	a.Schedule(draftNamed("u1", "Globex"))
	a.Flush(context.Background(), "u1")

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("discard never applied")
	}
	ops := drafts.snapshot()
	if len(ops) != 2 || ops[0] != "delete" || ops[1] != "save:Globex" {
		t.Fatalf("unexpected order: %v", ops)
	}
	if d, _ := drafts.Get(context.Background(), domain.Scope{}, "u1"); d == nil || d.FormData.BusinessName != "Globex" {
		t.Fatalf("later snapshot was dropped: %+v", d)
	}
}
