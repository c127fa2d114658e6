package handler

import (
	"context"
	"net/http"
	"time"

	"wedding-rsvp/internal/metrics"
)

const writeWait = 5 * time.Second

// countdown streams the remaining time once per second over a websocket. The
// ticker stops as soon as the browser goes away.
func (h *Handler) countdown(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Debug().Err(err).Msg("Countdown upgrade failed")
		return
	}
	defer conn.Close()

	metrics.CountdownConnections.Inc()
	defer metrics.CountdownConnections.Dec()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// The browser never sends anything; a read error means it left.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	for b := range h.timer.Run(ctx) {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(b); err != nil {
			return
		}
		if b.Done {
			return
		}
	}
}
