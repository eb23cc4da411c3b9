package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"fintrack/internal/backup"
	"fintrack/internal/config"
)

// Server is the HTTP API over the collections and the backup service.
type Server struct {
	cfg         *config.Config
	collections backup.Collections
	backups     *backup.Service
	tokens      *TokenManager
	logger      backup.Logger
	httpServer  *http.Server
}

// New creates an HTTP server with its routes wired.
func New(cfg *config.Config, collections backup.Collections, backups *backup.Service, logger backup.Logger) *Server {
	s := &Server{
		cfg:         cfg,
		collections: collections,
		backups:     backups,
		tokens:      NewTokenManager(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLHours)*time.Hour),
		logger:      logger,
	}
	s.httpServer = &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Tokens returns the server's token manager. The CLI token command uses it
// to mint tokens without going through the login route.
func (s *Server) Tokens() *TokenManager { return s.tokens }

// Routes builds the router. Split out from New so handler tests can mount
// the exact production routing.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(logRequests(s.logger))
	r.Use(recoverPanics(s.logger))

	r.Post("/api/login", s.handleLogin)

	// The backup listing predates auth on the original client and stays
	// open; everything mutating requires a token.
	r.Get("/api/backups", s.handleListBackups)

	r.Group(func(r chi.Router) {
		r.Use(requireAuth(s.tokens))

		r.Route("/api/records", func(r chi.Router) {
			r.Get("/", s.handleListRecords)
			r.Post("/", s.handleCreateRecord)
			r.Get("/{id}", s.handleGetRecord)
			r.Put("/{id}", s.handleUpdateRecord)
			r.Delete("/{id}", s.handleDeleteRecord)
		})

		r.Route("/api/categories", func(r chi.Router) {
			r.Get("/", s.handleListCategories)
			r.Get("/type/{type}", s.handleListCategoriesByType)
			r.Post("/", s.handleCreateCategory)
			r.Put("/{id}", s.handleUpdateCategory)
			r.Delete("/{id}", s.handleDeleteCategory)
		})

		r.Post("/api/backups", s.handleCreateBackup)
		r.Post("/api/backups/restore/{backupId}", s.handleRestoreBackup)
		r.Delete("/api/backups/{backupId}", s.handleDeleteBackup)
		r.Get("/api/backup/download/{filename}", s.handleDownloadBackup)

		r.Get("/api/settings/backup", s.handleGetBackupSettings)
		r.Put("/api/settings/backup", s.handleUpdateBackupSettings)
	})

	return r
}

// ListenAndServe runs the HTTP server until Shutdown is called.
func (s *Server) ListenAndServe() error {
	s.logger.Info("http server listening", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
