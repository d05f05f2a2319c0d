// internal/server/handlers/backup.go

package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"brandpulse/internal/domain/scan"
)

// BackupHandler handles backup recovery HTTP requests
type BackupHandler struct {
	store scan.BackupStore
}

// NewBackupHandler creates a new backup handler
func NewBackupHandler(store scan.BackupStore) *BackupHandler {
	return &BackupHandler{
		store: store,
	}
}

// ListBackups returns summaries of stored backups, newest first
func (h *BackupHandler) ListBackups(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.store.List(r.Context())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to list backups", err)
		return
	}
	if summaries == nil {
		summaries = []scan.BackupSummary{}
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"total":   len(summaries),
		"backups": summaries,
	})
}

// GetBackup returns one backup in full
func (h *BackupHandler) GetBackup(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "Missing backup ID", nil)
		return
	}

	b, err := h.store.Retrieve(r.Context(), id)
	if err != nil {
		if errors.Is(err, scan.ErrBackupNotFound) {
			respondWithError(w, http.StatusNotFound, "Backup not found", nil)
		} else {
			respondWithError(w, http.StatusInternalServerError, "Failed to read backup", err)
		}
		return
	}

	respondWithJSON(w, http.StatusOK, b)
}
