// internal/server/handlers/health.go

package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/nats-io/nats.go"
)

// HealthHandler reports service health and dependency status
type HealthHandler struct {
	db        *pgxpool.Pool
	natsConn  *nats.Conn
	platforms []string
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db *pgxpool.Pool, natsConn *nats.Conn, platforms []string) *HealthHandler {
	return &HealthHandler{
		db:        db,
		natsConn:  natsConn,
		platforms: platforms,
	}
}

// Health returns overall status plus per-dependency detail. The service
// is degraded, not down, when the event bus is unavailable.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	deps := map[string]string{}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if h.db != nil {
		if err := h.db.Ping(ctx); err != nil {
			deps["postgres"] = "down"
			status = "degraded"
		} else {
			deps["postgres"] = "ok"
		}
	}

	if h.natsConn != nil {
		if h.natsConn.IsConnected() {
			deps["nats"] = "ok"
		} else {
			deps["nats"] = "down"
			status = "degraded"
		}
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"status":       status,
		"time":         time.Now().UTC(),
		"platforms":    h.platforms,
		"dependencies": deps,
	})
}
