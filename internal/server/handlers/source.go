// internal/server/handlers/source.go

package handlers

import (
	"net/http"

	"brandpulse/internal/domain/source"
)

// SourceHandler handles source roster HTTP requests
type SourceHandler struct {
	store source.Store
}

// NewSourceHandler creates a new source handler
func NewSourceHandler(store source.Store) *SourceHandler {
	return &SourceHandler{
		store: store,
	}
}

// ListSources returns the tracked sources, optionally filtered by
// platform.
func (h *SourceHandler) ListSources(w http.ResponseWriter, r *http.Request) {
	platform := r.URL.Query().Get("platform")

	sources, err := h.store.List(r.Context(), platform)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to list sources", err)
		return
	}
	if sources == nil {
		sources = []source.Source{}
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"total":   len(sources),
		"sources": sources,
	})
}
