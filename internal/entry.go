// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/checkstyle/eclipse-cs/internal/api"
	"github.com/checkstyle/eclipse-cs/internal/index"
	"github.com/checkstyle/eclipse-cs/internal/sse"
	"github.com/checkstyle/eclipse-cs/internal/widgets"
)

// Run serves the site over HTTP until ctx is cancelled or a shutdown signal
// arrives.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts, os.Stdout)
	if err != nil {
		return err
	}

	cfg := app.config
	logger := app.logger
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("environment", cfg.App.Environment),
		slog.String("content_path", cfg.Content.Path),
		slog.String("crawler_param", cfg.Crawler.Param),
		slog.String("log_level", cfg.App.LogLevel.String()))

	s, err := buildSite(cfg, logger)
	if err != nil {
		return err
	}
	defer s.Close()

	// SSE broker for live reload.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	siteRouter := api.NewRouter(s.svc, api.RouterOptions{
		CrawlerParam: cfg.Crawler.Param,
		Ad: widgets.AdSlot{
			Environment: cfg.App.Environment,
			Client:      cfg.Widgets.AdClient,
			Slot:        cfg.Widgets.AdSlot,
		},
		Social: widgets.SocialButton{
			ShareURL: cfg.Widgets.ShareURL,
			Text:     cfg.Widgets.ShareText,
		},
		Events: broker,
	})

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Mount("/", siteRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	// Ends open event streams so Shutdown does not wait on them.
	httpServer.RegisterOnShutdown(broker.Close)

	g, gCtx := errgroup.WithContext(ctx)

	// Keep the search index and browsers in sync with content edits.
	if cfg.Content.Watch {
		g.Go(func() error {
			err := index.Watch(gCtx, s.db, s.store, s.store.Root(), cfg.Content.Partials, logger,
				func(kind, path string) {
					broker.PublishTemplateEvent(kind, path)
				})
			if err != nil {
				logger.Warn("watcher stopped", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the group so the watcher stops with the server.
var errShutdown = errors.New("shutdown")
