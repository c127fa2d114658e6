package rsvp

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

func TestRegistryGetCreatesAndReuses(t *testing.T) {
	r := NewRegistry(&fakeDirectory{}, time.Hour, zerolog.Nop())

	s1, id := r.Get("")
	if _, err := uuid.Parse(id); err != nil {
		t.Fatalf("id %q is not a uuid: %v", id, err)
	}
	s2, id2 := r.Get(id)
	if s1 != s2 || id != id2 {
		t.Fatal("expected the same session for the same id")
	}
	if r.Len() != 1 {
		t.Fatalf("len = %d, want 1", r.Len())
	}
}

func TestRegistryIgnoresForgedIDs(t *testing.T) {
	r := NewRegistry(&fakeDirectory{}, time.Hour, zerolog.Nop())
	_, id := r.Get("not-a-uuid")
	if id == "not-a-uuid" {
		t.Fatal("malformed id should be replaced")
	}
}

func TestRegistryUnknownIDStartsIdle(t *testing.T) {
	r := NewRegistry(&fakeDirectory{}, time.Hour, zerolog.Nop())
	known := uuid.New().String()
	s, id := r.Get(known)
	if id != known {
		t.Fatalf("id = %q, want %q", id, known)
	}
	if s.Phase() != PhaseIdle {
		t.Fatalf("phase = %s, want idle", s.Phase())
	}
}

func TestRegistryEvict(t *testing.T) {
	now := time.Date(2026, time.January, 1, 12, 0, 0, 0, time.UTC)
	r := NewRegistry(&fakeDirectory{}, 30*time.Minute, zerolog.Nop())
	r.now = func() time.Time { return now }

	_, stale := r.Get("")
	now = now.Add(20 * time.Minute)
	_, fresh := r.Get("")
	now = now.Add(15 * time.Minute)

	if n := r.Evict(); n != 1 {
		t.Fatalf("evicted = %d, want 1", n)
	}
	r.mu.Lock()
	_, staleKept := r.sessions[stale]
	_, freshKept := r.sessions[fresh]
	r.mu.Unlock()
	if staleKept || !freshKept {
		t.Fatalf("stale kept = %v, fresh kept = %v", staleKept, freshKept)
	}
}

func TestRegistryRunStopsOnCancel(t *testing.T) {
	r := NewRegistry(&fakeDirectory{}, time.Millisecond, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop")
	}
}
