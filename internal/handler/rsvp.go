package handler

import (
	"context"
	"errors"
	"net/http"

	"wedding-rsvp/internal/directory"
	"wedding-rsvp/internal/metrics"
	"wedding-rsvp/internal/rsvp"
)

const sessionCookie = "rsvp_session"

// session returns the visitor's RSVP session, issuing a cookie when needed.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) *rsvp.Session {
	var id string
	if c, err := r.Cookie(sessionCookie); err == nil {
		id = c.Value
	}
	s, newID := h.sessions.Get(id)
	if newID != id {
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookie,
			Value:    newID,
			Path:     "/",
			HttpOnly: true,
			Secure:   r.TLS != nil,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return s
}

func backToRSVP(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/#rsvp", http.StatusSeeOther)
}

func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	err := s.Search(r.Context(), r.PostFormValue("nome"))
	h.logOutcome(r, "search", err)
	backToRSVP(w, r)
}

func (h *Handler) toggle(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	err := s.Toggle(r.PostFormValue("guest"))
	h.logOutcome(r, "toggle", err)
	backToRSVP(w, r)
}

func (h *Handler) confirm(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	c, err := s.Confirm(r.Context())
	h.logOutcome(r, "confirm", err)
	if err == nil {
		h.notify(c)
	}
	backToRSVP(w, r)
}

func (h *Handler) reset(w http.ResponseWriter, r *http.Request) {
	h.session(w, r).Reset()
	backToRSVP(w, r)
}

// notify forwards a confirmation without holding up the visitor.
func (h *Handler) notify(c rsvp.Confirmation) {
	if h.notifier == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), h.cfg.NotifyTimeout)
		defer cancel()
		if err := h.notifier.NotifyConfirmation(ctx, c.Group, c.Submission); err != nil {
			metrics.Notifications.WithLabelValues("failed").Inc()
			h.log.Error().Err(err).Str("group", c.Group).Msg("Failed to notify couple")
			return
		}
		metrics.Notifications.WithLabelValues("sent").Inc()
	}()
}

// logOutcome logs operation errors the visitor already sees as a message at
// a level matching their severity.
func (h *Handler) logOutcome(r *http.Request, op string, err error) {
	var terr *directory.TransportError
	switch {
	case err == nil:
	case errors.Is(err, rsvp.ErrQueryTooShort), errors.Is(err, rsvp.ErrNotFound), errors.Is(err, rsvp.ErrStale):
		h.log.Debug().Err(err).Str("op", op).Msg("RSVP outcome")
	case errors.As(err, &terr):
		h.log.Warn().Err(err).Str("op", op).Msg("Directory unavailable")
	case errors.Is(err, rsvp.ErrBusy), errors.Is(err, rsvp.ErrInvalidPhase), errors.Is(err, rsvp.ErrUnknownGuest):
		h.log.Info().Err(err).Str("op", op).Str("ip", r.RemoteAddr).Msg("Rejected RSVP action")
	default:
		h.log.Error().Err(err).Str("op", op).Msg("RSVP action failed")
	}
}
