// Package app assembles the portal: it opens local storage, wires the
// router and runs the HTTP server until it is shut down.
package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/aanand-mishra/ugs-portal/internal/config"
	"github.com/aanand-mishra/ugs-portal/internal/storage"
	"github.com/aanand-mishra/ugs-portal/internal/view"
)

type App struct {
	httpServer *http.Server
	store      storage.Storage
	portal     *Portal
}

func New(cfg *config.Config) (*App, error) {
	store, err := OpenStorage(cfg.Storage, cfg.Redis)
	if err != nil {
		return nil, err
	}
	views, err := view.New()
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	portal := NewPortal(store, Settings{
		StudentBaseURL: cfg.API.StudentBaseURL,
		AdminBaseURL:   cfg.API.AdminBaseURL,
		// Timeout 0 leaves outbound calls unbounded.
		HTTPClient:   &http.Client{Timeout: cfg.API.Timeout},
		SecureCookie: cfg.Cookie.Secure,
		GuardWait:    cfg.Guard.Wait,
	}, views)

	return &App{
		httpServer: &http.Server{
			Addr:    cfg.HTTPServer.Addr,
			Handler: portal.Router,

			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		store:  store,
		portal: portal,
	}, nil
}

func (a *App) Addr() string { return a.httpServer.Addr }

// Run blocks until the server stops. A server stopped by Shutdown returns nil.
func (a *App) Run() error {
	if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown lets in-flight requests finish, then closes local storage.
func (a *App) Shutdown(ctx context.Context) error {
	if err := a.httpServer.Shutdown(ctx); err != nil {
		return err
	}
	slog.Info("http server stopped",
		slog.Int("student_sessions", a.portal.Students.Len()),
		slog.Int("admin_sessions", a.portal.Admins.Len()))
	return a.store.Close()
}
