package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fintrack/internal/archive"
	"fintrack/internal/backup"
	"fintrack/internal/config"
	"fintrack/internal/server"
	"fintrack/internal/store"
)

// App is the application layer between the CLI and the backup service.
// It constructs all dependencies from config and exposes high-level
// operations for the CLI commands. The caller must call Close when done.
type App struct {
	cfg       *config.Config
	service   *backup.Service
	scheduler *backup.Scheduler
	logFile   *os.File
	logger    backup.Logger
}

// NewApp creates a fully wired App from the given config.
// operation identifies the CLI command being run (e.g. "Serve", "BackupNow").
func NewApp(cfg *config.Config, operation string) (*App, error) {
	opID := time.Now().UTC().Format("20060102T150405Z")
	slogger, logFile, err := newLogger(cfg.LogDir, opID)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	logger := &slogAdapter{l: slogger}

	collections, err := store.NewFileCollections(cfg.DataDir)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("creating collections store: %w", err)
	}
	docs, err := store.NewFileDocuments(cfg.DataDir)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("creating document store: %w", err)
	}

	arch, err := archive.NewArchiveFromConfig(context.Background(), cfg.Archive)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("creating archive: %w", err)
	}

	catalog := backup.NewCatalog(arch, logger)
	settings := backup.NewSettingsStore(docs, logger)
	service := backup.NewService(collections, arch, catalog, settings, logger, backup.RealClock{})

	return &App{
		cfg:     cfg,
		service: service,
		logFile: logFile,
		logger:  logger,
	}, nil
}

// Service returns the backup service for CLI operations.
func (a *App) Service() *backup.Service { return a.service }

// Collections returns the live collections store.
func (a *App) Collections() backup.Collections { return a.service.Collections() }

// Serve starts the scheduler and the HTTP server and blocks until the
// process receives SIGINT or SIGTERM, then shuts both down gracefully.
func (a *App) Serve() error {
	a.scheduler = backup.NewScheduler(a.service, a.logger)
	defer a.scheduler.Stop()

	settings, err := a.service.Settings().Get()
	if err != nil {
		return fmt.Errorf("loading backup settings: %w", err)
	}
	a.scheduler.Rearm(settings)
	a.service.Settings().OnChange(a.scheduler.Rearm)

	srv := server.New(a.cfg, a.service.Collections(), a.service, a.logger)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case sig := <-stop:
		a.logger.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}
	return nil
}

// Close releases the application's resources.
func (a *App) Close() error {
	if a.logFile != nil {
		return a.logFile.Close()
	}
	return nil
}
