package handler

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"wedding-rsvp/internal/countdown"
	"wedding-rsvp/internal/gifts"
	"wedding-rsvp/internal/models"
	"wedding-rsvp/internal/rsvp"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Notifier is told about every accepted RSVP.
type Notifier interface {
	NotifyConfirmation(ctx context.Context, group string, submission models.AttendanceSubmission) error
}

type Config struct {
	CoupleNames   string
	VenueName     string
	VenueMapURL   string
	NotifyTimeout time.Duration
}

// Handler serves the wedding page and its interactive parts.
type Handler struct {
	cfg      Config
	sessions *rsvp.Registry
	catalog  *gifts.Catalog
	timer    *countdown.Timer
	notifier Notifier
	page     *template.Template
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

// New creates the site handler. notifier may be nil.
func New(cfg Config, sessions *rsvp.Registry, catalog *gifts.Catalog, timer *countdown.Timer, notifier Notifier, log zerolog.Logger) (*Handler, error) {
	page, err := template.ParseFS(templatesFS, "templates/page.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	if cfg.NotifyTimeout <= 0 {
		cfg.NotifyTimeout = 30 * time.Second
	}
	return &Handler{
		cfg:      cfg,
		sessions: sessions,
		catalog:  catalog,
		timer:    timer,
		notifier: notifier,
		page:     page,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		log: log,
	}, nil
}

// Routes registers every route on a new mux.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", h.index)
	mux.HandleFunc("POST /rsvp/search", h.search)
	mux.HandleFunc("POST /rsvp/toggle", h.toggle)
	mux.HandleFunc("POST /rsvp/confirm", h.confirm)
	mux.HandleFunc("POST /rsvp/reset", h.reset)
	mux.HandleFunc("GET /countdown", h.countdown)
	mux.HandleFunc("GET /gifts/{id}", h.gift)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return mux
}

// WithLogging wraps next with request-scoped logging and an access log.
func WithLogging(log zerolog.Logger, next http.Handler) http.Handler {
	access := hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("Request")
	})
	return hlog.NewHandler(log)(hlog.RemoteAddrHandler("ip")(access(next)))
}

type giftView struct {
	ID    int
	Title string
	Price string
	Image string
}

type rsvpView struct {
	rsvp.View
	Busy      bool
	ShowGroup bool
	Confirmed bool
}

type pageData struct {
	CoupleNames string
	ShortDate   string
	LongDate    string
	Time        string
	VenueName   string
	VenueMapURL string
	Countdown   countdown.Breakdown
	Gifts       []giftView
	RSVP        rsvpView
}

func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	session := h.session(w, r)
	v := session.View()
	target := h.timer.Target()

	data := pageData{
		CoupleNames: h.cfg.CoupleNames,
		ShortDate:   target.Format("02.01.2006"),
		LongDate:    longDate(target),
		Time:        target.Format("15:04"),
		VenueName:   h.cfg.VenueName,
		VenueMapURL: h.cfg.VenueMapURL,
		Countdown:   h.timer.Now(),
		RSVP: rsvpView{
			View:      v,
			Busy:      v.Phase == rsvp.PhaseSearching || v.Phase == rsvp.PhaseSubmitting,
			ShowGroup: v.Phase == rsvp.PhaseFound || v.Phase == rsvp.PhaseSubmitting,
			Confirmed: v.Phase == rsvp.PhaseConfirmed,
		},
	}
	for g := range h.catalog.All() {
		data.Gifts = append(data.Gifts, giftView{
			ID:    g.ID,
			Title: g.Title,
			Price: h.catalog.FormatPrice(g),
			Image: g.Image,
		})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := h.page.Execute(w, data); err != nil {
		h.log.Error().Err(err).Msg("Failed to render page")
	}
}

var (
	weekdays = [...]string{"Domingo", "Segunda-feira", "Terça-feira", "Quarta-feira", "Quinta-feira", "Sexta-feira", "Sábado"}
	months   = [...]string{"Janeiro", "Fevereiro", "Março", "Abril", "Maio", "Junho", "Julho", "Agosto", "Setembro", "Outubro", "Novembro", "Dezembro"}
)

// longDate formats t as "Sábado, 02 de Maio de 2026".
func longDate(t time.Time) string {
	return fmt.Sprintf("%s, %02d de %s de %d", weekdays[t.Weekday()], t.Day(), months[t.Month()-1], t.Year())
}
