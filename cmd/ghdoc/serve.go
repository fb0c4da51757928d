package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	sqliteadapter "github.com/ericfisherdev/ghdoc/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/ghdoc/internal/adapter/driven/textsurface"
	httphandler "github.com/ericfisherdev/ghdoc/internal/adapter/driving/http"
	"github.com/ericfisherdev/ghdoc/internal/application"
	"github.com/ericfisherdev/ghdoc/internal/config"
	"github.com/ericfisherdev/ghdoc/internal/domain/port/driven"
)

func runServe(ctx context.Context, cfg *config.Config) error {
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"scheme", cfg.Scheme,
		"github_base_url", cfg.GitHubBaseURL,
	)

	// 1. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Open database and run migrations.
	db, err := sqliteadapter.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()
	slog.Info("database opened", "path", cfg.DBPath)

	// 3. Wire adapters.
	store := sqliteadapter.NewStateRepo(db)
	reportPersisted(ctx, store)

	client, err := newGitHubClient(cfg)
	if err != nil {
		return err
	}

	messages := application.NewMessageLog(cfg.MessageLimit)
	workspace := application.NewWorkspace(cfg.Scheme, client, client, store, messages,
		func() driven.Surface { return textsurface.New() })

	// 4. Create HTTP handler.
	handler := httphandler.NewServeMux(
		httphandler.NewHandler(workspace, messages, cfg.Scheme, slog.Default()),
		slog.Default(),
	)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// 5. Wait for shutdown signal or a failed listener.
	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return err
		}
	}
	slog.Info("shutting down")

	// 6. Stop accepting requests, then let every surface finish its saves.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}
	workspace.Shutdown(shutdownCtx)

	slog.Info("shutdown complete")
	return nil
}

// reportPersisted logs the surfaces left over from a previous run.
func reportPersisted(ctx context.Context, store *sqliteadapter.StateRepo) {
	states, err := store.List(ctx)
	if err != nil {
		slog.Warn("listing persisted surfaces failed", "error", err)
		return
	}

	dirty, err := store.ListDirty(ctx)
	if err != nil {
		slog.Warn("listing unsaved surfaces failed", "error", err)
		return
	}

	slog.Info("persisted surfaces", "count", len(states), "unsaved", len(dirty))
	for _, name := range dirty {
		slog.Warn("surface had unsaved changes at last shutdown", "surface", name)
	}
}
