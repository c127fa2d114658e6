// Package guestlist serves a guest list over the same contract as the
// spreadsheet script the site talks to in production.
package guestlist

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"wedding-rsvp/internal/models"
)

const maxBodyBytes = 64 << 10

// Store is the guest list backing the handler.
type Store interface {
	FindGroup(ctx context.Context, query string) ([]models.Guest, error)
	UpdateRSVP(ctx context.Context, records []models.AttendanceRecord) (int, error)
}

// Handler answers GET ?nome= searches and POST attendance updates.
type Handler struct {
	store Store
	log   zerolog.Logger
}

// NewHandler creates the guest list handler.
func NewHandler(store Store, log zerolog.Logger) *Handler {
	return &Handler{store: store, log: log}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.search(w, r)
	case http.MethodPost:
		h.update(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("nome")

	guests, err := h.store.FindGroup(r.Context(), query)
	if err != nil {
		h.log.Error().Err(err).Str("query", query).Msg("Guest search failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	records := make([]models.GuestRecord, 0, len(guests))
	for _, g := range guests {
		records = append(records, models.GuestRecord{
			Name:     g.Name,
			Group:    g.Group,
			Situacao: g.RSVPStatus.Situacao(),
		})
	}

	h.log.Info().Str("query", query).Int("guests", len(records)).Msg("Guest search")
	writeJSON(w, http.StatusOK, records)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	var records []models.AttendanceRecord
	if err := json.Unmarshal(body, &records); err != nil {
		http.Error(w, "body must be a JSON array", http.StatusBadRequest)
		return
	}

	updated, err := h.store.UpdateRSVP(r.Context(), records)
	if err != nil {
		h.log.Error().Err(err).Msg("Attendance update failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	h.log.Info().Int("received", len(records)).Int("updated", updated).Msg("Attendance recorded")
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "updated": updated})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
