// internal/server/server.go

package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/nats-io/nats.go"

	"brandpulse/internal/config"
	"brandpulse/internal/domain/scan"
	"brandpulse/internal/domain/source"
	"brandpulse/internal/server/handlers"
)

// Server represents the HTTP server
type Server struct {
	server *http.Server
	router *chi.Mux
}

// NewServer creates a new HTTP server
func NewServer(
	cfg config.ServerConfig,
	db *pgxpool.Pool,
	natsConn *nats.Conn,
	scanner scan.Scanner,
	sourceStore source.Store,
	backupStore scan.BackupStore,
	eventsTopic string,
	platforms []string,
) *Server {
	router := chi.NewRouter()

	// Middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	// Scans run far longer than a typical request.
	router.Use(middleware.Timeout(cfg.RequestTimeout))

	// CORS configuration
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CorsOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Create handler dependencies
	scanHandler := handlers.NewScanHandler(scanner)
	sourceHandler := handlers.NewSourceHandler(sourceStore)
	backupHandler := handlers.NewBackupHandler(backupStore)
	healthHandler := handlers.NewHealthHandler(db, natsConn, platforms)

	// Routes
	router.Route("/api", func(r chi.Router) {
		// Health check
		r.Get("/health", healthHandler.Health)

		// API version
		r.Route("/v1", func(r chi.Router) {
			// Scans API
			r.Route("/scan", func(r chi.Router) {
				r.Get("/telegram", scanHandler.ScanTelegram)
				r.Post("/telegram", scanHandler.ScanTelegram)
				r.Get("/vk", scanHandler.ScanVK)
				r.Post("/vk", scanHandler.ScanVK)
				r.Get("/twitter", scanHandler.ScanTwitter)
				r.Post("/twitter", scanHandler.ScanTwitter)
				r.Get("/all", scanHandler.ScanAll)
				r.Post("/all", scanHandler.ScanAll)
			})

			// Sources API
			r.Get("/sources", sourceHandler.ListSources)

			// Recovery API
			r.Route("/recovery", func(r chi.Router) {
				r.Get("/backups", backupHandler.ListBackups)
				r.Get("/backups/{id}", backupHandler.GetBackup)
			})
		})
	})

	// WebSocket endpoint for real-time scan events
	router.Get("/ws/scans", handlers.ScanWebSocketHandler(natsConn, eventsTopic))

	// Create HTTP server
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return &Server{
		server: httpServer,
		router: router,
	}
}

// ListenAndServe starts the HTTP server
func (s *Server) ListenAndServe() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
