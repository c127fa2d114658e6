// Package rsvp drives a guest through finding their invitation and confirming
// who in the group will attend.
//
// A Session moves through these phases:
//
//	Idle -> Searching -> Found | NotFound | SearchFailed
//	Found -> Found (toggle) | Submitting | Idle (reset)
//	Submitting -> Confirmed | Found (failure, toggles kept)
//	Confirmed -> Idle (reset, query cleared)
//
// NotFound and SearchFailed accept a new search like Idle does. Searching and
// Submitting reject every other operation with ErrBusy, so at most one
// directory call is in flight per session.
package rsvp

import (
	"context"
	"errors"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"wedding-rsvp/internal/metrics"
	"wedding-rsvp/internal/models"
)

// MinQueryLength is the minimum number of characters of a trimmed search.
const MinQueryLength = 3

var (
	ErrQueryTooShort = errors.New("query too short")
	ErrNotFound      = errors.New("invitation not found")
	ErrBusy          = errors.New("operation already in progress")
	ErrInvalidPhase  = errors.New("operation not allowed in current phase")
	ErrUnknownGuest  = errors.New("guest not in current group")
	ErrStale         = errors.New("session was reset while waiting for the directory")
)

// User-facing messages.
const (
	MsgQueryTooShort = "Por favor, digite pelo menos 3 letras para buscar."
	MsgNotFound      = "Convite não encontrado. Verifique se o nome está correto."
	MsgSearchFailed  = "Erro ao conectar com a lista. Tente novamente mais tarde."
	MsgSubmitFailed  = "Erro ao salvar sua confirmação. Tente novamente."
)

// Directory is the remote guest list.
type Directory interface {
	Search(ctx context.Context, query string) ([]models.GuestGroupEntry, error)
	Submit(ctx context.Context, submission models.AttendanceSubmission) error
}

// Phase is the current state of a Session.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSearching
	PhaseFound
	PhaseNotFound
	PhaseSearchFailed
	PhaseSubmitting
	PhaseConfirmed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSearching:
		return "searching"
	case PhaseFound:
		return "found"
	case PhaseNotFound:
		return "not_found"
	case PhaseSearchFailed:
		return "search_failed"
	case PhaseSubmitting:
		return "submitting"
	case PhaseConfirmed:
		return "confirmed"
	default:
		return "unknown"
	}
}

// Editable reports whether the query form is shown in this phase.
func (p Phase) Editable() bool {
	return p == PhaseIdle || p == PhaseNotFound || p == PhaseSearchFailed || p == PhaseSearching
}

// View is a copy of the session state for rendering.
type View struct {
	Phase   Phase
	Query   string
	Group   string
	Guests  []models.GuestGroupEntry
	Message string
}

// Confirmation describes an accepted submission.
type Confirmation struct {
	Group      string
	Submission models.AttendanceSubmission
}

// Session is one visitor's RSVP interaction. It is safe for concurrent use;
// a reset discards any directory answer that arrives afterwards.
type Session struct {
	mu  sync.Mutex
	dir Directory
	log zerolog.Logger

	phase   Phase
	query   string
	guests  []models.GuestGroupEntry
	index   map[string]int
	message string

	generation uint64
	cancel     context.CancelFunc
}

// NewSession creates an idle session.
func NewSession(dir Directory, log zerolog.Logger) *Session {
	return &Session{
		dir:   dir,
		log:   log,
		phase: PhaseIdle,
	}
}

// View returns a snapshot of the session.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		Phase:   s.phase,
		Query:   s.query,
		Guests:  append([]models.GuestGroupEntry(nil), s.guests...),
		Message: s.message,
	}
	if len(s.guests) > 0 {
		v.Group = s.guests[0].Group
	}
	return v
}

// Phase returns the current phase.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Search looks up the invitation matching raw. The text is kept as typed so
// the visitor can correct it; the directory receives it trimmed.
func (s *Session) Search(ctx context.Context, raw string) error {
	s.mu.Lock()
	switch s.phase {
	case PhaseSearching, PhaseSubmitting:
		s.mu.Unlock()
		return ErrBusy
	case PhaseFound, PhaseConfirmed:
		s.mu.Unlock()
		return ErrInvalidPhase
	}

	s.query = raw
	query := strings.TrimSpace(raw)
	if utf8.RuneCountInString(query) < MinQueryLength {
		s.phase = PhaseIdle
		s.message = MsgQueryTooShort
		s.mu.Unlock()
		metrics.Searches.WithLabelValues("invalid").Inc()
		return ErrQueryTooShort
	}

	ctx, gen := s.begin(ctx, PhaseSearching)
	s.mu.Unlock()

	entries, err := s.dir.Search(ctx, query)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.finish(gen) {
		s.log.Debug().Str("query", query).Msg("Discarding search answer after reset")
		return ErrStale
	}

	switch {
	case err != nil:
		s.phase = PhaseSearchFailed
		s.message = MsgSearchFailed
		metrics.Searches.WithLabelValues("failed").Inc()
		s.log.Warn().Err(err).Str("query", query).Msg("Guest search failed")
		return err
	case len(entries) == 0:
		s.phase = PhaseNotFound
		s.message = MsgNotFound
		metrics.Searches.WithLabelValues("not_found").Inc()
		s.log.Debug().Str("query", query).Msg("Invitation not found")
		return ErrNotFound
	}

	s.guests = entries
	s.index = make(map[string]int, len(entries))
	for i, g := range entries {
		s.index[g.Name] = i
	}
	s.phase = PhaseFound
	metrics.Searches.WithLabelValues("found").Inc()
	s.log.Debug().Str("query", query).Int("guests", len(entries)).Msg("Invitation found")
	return nil
}

// Toggle flips the attendance of one guest of the current group.
func (s *Session) Toggle(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.phase {
	case PhaseFound:
	case PhaseSubmitting:
		return ErrBusy
	default:
		return ErrInvalidPhase
	}

	i, ok := s.index[name]
	if !ok {
		return ErrUnknownGuest
	}
	s.guests[i].Attending = !s.guests[i].Attending
	return nil
}

// Confirm sends one attendance record per guest of the group, as currently
// toggled. On failure the session returns to PhaseFound with every toggle
// intact.
func (s *Session) Confirm(ctx context.Context) (Confirmation, error) {
	s.mu.Lock()
	switch s.phase {
	case PhaseFound:
	case PhaseSearching, PhaseSubmitting:
		s.mu.Unlock()
		return Confirmation{}, ErrBusy
	default:
		s.mu.Unlock()
		return Confirmation{}, ErrInvalidPhase
	}

	c := Confirmation{
		Group:      s.guests[0].Group,
		Submission: make(models.AttendanceSubmission, 0, len(s.guests)),
	}
	for _, g := range s.guests {
		c.Submission = append(c.Submission, models.AttendanceRecord{Name: g.Name, Attending: g.Attending})
	}
	ctx, gen := s.begin(ctx, PhaseSubmitting)
	s.mu.Unlock()

	err := s.dir.Submit(ctx, c.Submission)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.finish(gen) {
		s.log.Debug().Str("group", c.Group).Msg("Discarding submission answer after reset")
		return Confirmation{}, ErrStale
	}
	if err != nil {
		s.phase = PhaseFound
		s.message = MsgSubmitFailed
		metrics.Submissions.WithLabelValues("failed").Inc()
		s.log.Warn().Err(err).Str("group", c.Group).Msg("Attendance submission failed")
		return Confirmation{}, err
	}

	s.phase = PhaseConfirmed
	metrics.Submissions.WithLabelValues("confirmed").Inc()
	s.log.Info().Str("group", c.Group).Int("guests", len(c.Submission)).Msg("Attendance confirmed")
	return c, nil
}

// Reset discards the current group and returns to the query form. Leaving
// PhaseConfirmed also clears the query, starting a fresh lookup. A directory
// call still in flight is cancelled and its answer ignored.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if s.phase == PhaseConfirmed {
		s.query = ""
	}
	s.phase = PhaseIdle
	s.guests = nil
	s.index = nil
	s.message = ""
}

// begin enters an in-flight phase. Callers hold s.mu.
func (s *Session) begin(parent context.Context, phase Phase) (context.Context, uint64) {
	ctx, cancel := context.WithCancel(parent)
	s.cancel = cancel
	s.phase = phase
	s.message = ""
	return ctx, s.generation
}

// finish releases the in-flight call and reports whether its answer still
// belongs to this session. Callers hold s.mu.
func (s *Session) finish(gen uint64) bool {
	if gen != s.generation {
		return false
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	return true
}
