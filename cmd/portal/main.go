// main is the entry point of the University Gateway portal.
//
// STARTUP SEQUENCE:
//  1. Load configuration from a YAML file
//  2. Initialise the logger
//  3. Open local token storage and wire the router
//  4. Start the HTTP server in a separate goroutine
//  5. Block until an OS signal (Ctrl+C / kill) arrives
//  6. Gracefully shut down: finish in-flight requests, close storage, exit
//
// RUNNING THE SERVER:
//
//	go run ./cmd/portal --config=config/local.yaml
//
// or (with the environment variable):
//
//	CONFIG_PATH=config/local.yaml go run ./cmd/portal
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aanand-mishra/ugs-portal/internal/app"
	"github.com/aanand-mishra/ugs-portal/internal/config"
)

func main() {
	// ── 1. Load Config ────────────────────────────────────────────────────
	cfg := config.MustLoad()

	// ── 2. Initialise Logger ──────────────────────────────────────────────
	// Handlers and session managers log through slog's default logger.
	log := setupLogger(cfg.Env)
	slog.SetDefault(log)

	log.Info("starting ugs-portal",
		slog.String("env", cfg.Env),
		slog.String("storage", cfg.Storage.Backend),
		slog.String("student_api", cfg.API.StudentBaseURL),
		slog.String("admin_api", cfg.API.AdminBaseURL),
	)

	// ── 3. Storage + Router ───────────────────────────────────────────────
	application, err := app.New(cfg)
	if err != nil {
		log.Error("failed to initialise portal",
			slog.String("error", err.Error()))
		os.Exit(1)
	}

	// ── 4. Serve ──────────────────────────────────────────────────────────
	go func() {
		log.Info("server started", slog.String("address", application.Addr()))
		if err := application.Run(); err != nil {
			log.Error("server encountered an error",
				slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// ── 5. Wait for Shutdown Signal ───────────────────────────────────────
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)
	<-done

	log.Info("shutdown signal received, stopping server...")

	// ── 6. Graceful Shutdown ──────────────────────────────────────────────
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := application.Shutdown(ctx); err != nil {
		log.Error("failed to shutdown gracefully",
			slog.String("error", err.Error()))
		os.Exit(1)
	}

	log.Info("server stopped gracefully")
}

// setupLogger returns a *slog.Logger configured for the given environment.
//
// Development (dev): human-readable text output at DEBUG level.
// Production (prod): machine-readable JSON output at INFO level.
func setupLogger(env string) *slog.Logger {
	switch env {
	case "prod":
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	case "staging":
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	default:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}
