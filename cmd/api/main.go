// Copyright (c) 2026 Lensfolio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the Lensfolio HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Open storage, cache and file store for the configured drivers.
//  4. Run database migrations (idempotent).
//  5. Build the token service.
//  6. Wire health probes.
//  7. Wire domain services and handlers.
//  8. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
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

	"github.com/taibuivan/lensfolio/internal/api"
	"github.com/taibuivan/lensfolio/internal/app"
	"github.com/taibuivan/lensfolio/internal/catalog"
	"github.com/taibuivan/lensfolio/internal/platform/config"
	"github.com/taibuivan/lensfolio/internal/platform/constants"
	"github.com/taibuivan/lensfolio/internal/platform/sec"
	"github.com/taibuivan/lensfolio/internal/platform/upload"
	"github.com/taibuivan/lensfolio/internal/users/auth"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	log := newLogger(slog.LevelInfo)
	slog.SetDefault(log)

	log.Info("service_initializing", slog.String("version", constants.AppVersion))

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		log = newLogger(slog.LevelDebug)
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("storage_driver", cfg.StorageDriver),
		slog.String("upload_backend", cfg.UploadBackend),
	)

	// Root context for startup. Misconfiguration should fail fast rather
	// than hang indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. Infrastructure ─────────────────────────────────────────────────
	infra, err := app.Open(startupCtx, cfg, log, app.Options{Cache: true, Files: true})
	must(log, err, "open infrastructure")
	defer infra.Close()

	// ── 4. Migrations ─────────────────────────────────────────────────────
	if cfg.MigrateOnStart {
		must(log, infra.Migrate(), "run migrations")
	}

	// ── 5. Token Service ──────────────────────────────────────────────────
	tokens, err := sec.NewTokenService(sec.TokenOptions{
		SigningKey: cfg.SigningKey,
		Issuer:     constants.AuthIssuer,
	})
	must(log, err, "initialize token service")

	// ── 6. Health handlers (wired with real dependency checkers) ──────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: infra.CheckDatabase,
		CheckCache:    infra.CheckCache,
		CheckFiles:    infra.CheckFiles,
	}, log)

	// ── 7. Domain Wiring ──────────────────────────────────────────────────
	limits := upload.Limits{MaxBytes: cfg.MaxUploadBytes}

	authService := auth.NewService(infra.Users, infra.Revocations, tokens, cfg.TokenTTL)
	catalogService := catalog.NewService(infra.Catalogs, infra.Users, infra.Files, log)

	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Uploads:   api.NewUploadsHandler(infra.Files),
		Auth:      auth.NewHandler(authService, infra.Files, limits),
		Catalog:   catalog.NewHandler(catalogService, infra.Files, limits),
	}

	// ── 8. HTTP Server & Graceful Shutdown ────────────────────────────────
	serverCtx, serverCancel := context.WithCancel(context.Background())
	defer serverCancel()

	server := api.NewServer(serverCtx, cfg, log, authService, handlers)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown_signal_received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server_startup_error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting_down_server", slog.Duration("timeout", shutdownTimeout))

	exitCode := 0
	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown_error", slog.Any("error", err))
		exitCode = 1
	}

	// Deleted images may still be releasing their files.
	catalogService.Wait()
	serverCancel()
	infra.Close()

	log.Info("server_stopped_cleanly")
	os.Exit(exitCode)
}

// newLogger builds the JSON logger tagged with the application name.
func newLogger(level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With(slog.String("app", constants.AppName))
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup_failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
