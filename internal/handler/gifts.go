package handler

import (
	"net/http"
	"strconv"
)

// gift sends the visitor to the purchase page of a gift.
func (h *Handler) gift(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	g, ok := h.catalog.Lookup(id)
	if !ok {
		http.NotFound(w, r)
		return
	}
	h.log.Info().Int("gift", g.ID).Str("title", g.Title).Msg("Gift purchase opened")
	http.Redirect(w, r, g.PurchaseURL, http.StatusFound)
}
