package rsvp

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"wedding-rsvp/internal/metrics"
)

type entry struct {
	session  *Session
	lastSeen time.Time
}

// Registry keeps one Session per browser. Nothing outlives the process and
// sessions idle for longer than the TTL are forgotten.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*entry
	dir      Directory
	ttl      time.Duration
	now      func() time.Time
	log      zerolog.Logger
}

// NewRegistry creates an empty registry whose sessions use dir.
func NewRegistry(dir Directory, ttl time.Duration, log zerolog.Logger) *Registry {
	return &Registry{
		sessions: make(map[string]*entry),
		dir:      dir,
		ttl:      ttl,
		now:      time.Now,
		log:      log,
	}
}

// Get returns the session identified by id, creating a new one when id is
// empty, malformed or unknown. The returned id is the one to hand back to the
// browser.
func (r *Registry) Get(id string) (*Session, string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.sessions[id]; ok {
		e.lastSeen = r.now()
		return e.session, id
	}
	if _, err := uuid.Parse(id); err != nil || id == "" {
		id = uuid.New().String()
	}

	s := NewSession(r.dir, r.log.With().Str("session", id).Logger())
	r.sessions[id] = &entry{session: s, lastSeen: r.now()}
	metrics.ActiveSessions.Set(float64(len(r.sessions)))
	r.log.Debug().Str("session", id).Msg("Session created")
	return s, id
}

// Len returns the number of sessions held.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Evict removes sessions idle for longer than the TTL and returns how many
// were removed.
func (r *Registry) Evict() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-r.ttl)
	removed := 0
	for id, e := range r.sessions {
		if e.lastSeen.Before(cutoff) {
			e.session.Reset()
			delete(r.sessions, id)
			removed++
		}
	}
	metrics.ActiveSessions.Set(float64(len(r.sessions)))
	return removed
}

// Run evicts idle sessions periodically until ctx is done.
func (r *Registry) Run(ctx context.Context) {
	interval := r.ttl / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Evict(); n > 0 {
				r.log.Debug().Int("evicted", n).Msg("Idle sessions evicted")
			}
		}
	}
}
