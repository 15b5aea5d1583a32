package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/checkstyle/eclipse-cs/internal/index"
	"github.com/checkstyle/eclipse-cs/internal/manifest"
	"github.com/checkstyle/eclipse-cs/internal/mcpserver"
	"github.com/checkstyle/eclipse-cs/internal/navigator"
	"github.com/checkstyle/eclipse-cs/internal/releases"
	"github.com/checkstyle/eclipse-cs/internal/resolver"
	"github.com/checkstyle/eclipse-cs/internal/siteservice"
	"github.com/checkstyle/eclipse-cs/internal/storage"
)

// site is the wired set of components shared by every command.
type site struct {
	store    *storage.FS
	manifest *manifest.Manifest
	db       *index.DB
	svc      *siteservice.Service
}

func (s *site) Close() error {
	return s.db.Close()
}

// newApplication applies opts and fills in the defaults every command needs.
// Without WithLogger, JSON logs go to logOut.
func newApplication(opts []Option, logOut io.Writer) (*application, error) {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if app.out == nil {
		app.out = os.Stdout
	}
	if app.version == "" {
		app.version = "dev"
	}
	if app.logger == nil {
		app.logger = newLogger(logOut, app.config.App.LogLevel)
	}
	return app, nil
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
}

// buildSite opens the content root and wires the template store, manifest,
// resolver, navigator and search index.
func buildSite(cfg *Config, logger *slog.Logger) (*site, error) {
	store, err := storage.NewFS(cfg.Content.Path)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	m, err := manifest.Load(cfg.Content.ManifestPath())
	if err != nil {
		return nil, fmt.Errorf("load manifest: %w", err)
	}
	table, err := m.Table()
	if err != nil {
		return nil, fmt.Errorf("build route table: %w", err)
	}

	loader := &releases.Loader{
		Store:        store,
		Path:         m.Releases,
		ExpandRecent: cfg.Releases.ExpandRecent,
	}
	res, err := resolver.New(resolver.Config{
		Store:            store,
		Routes:           table,
		Releases:         loader,
		ReleaseFragment:  m.ReleaseFragment,
		PartialsDir:      cfg.Content.Partials,
		OnUnavailable:    cfg.Releases.OnUnavailable,
		FetchConcurrency: cfg.Releases.FetchConcurrency,
		Logger:           logger,
	})
	if err != nil {
		return nil, fmt.Errorf("init resolver: %w", err)
	}
	nav := navigator.New(table, loader, m.ReleaseFragment, cfg.Releases.ExpandParam)

	db, err := index.Open(cfg.Search.DSN)
	if err != nil {
		return nil, fmt.Errorf("init index: %w", err)
	}
	if err := index.Sync(db, store, cfg.Content.Partials, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	logger.Info("Site loaded",
		slog.String("content_path", store.Root()),
		slog.Int("routes", len(table.Rules())),
		slog.String("release_fragment", m.ReleaseFragment),
		slog.String("releases", m.Releases))

	svc := siteservice.New(siteservice.Options{
		Store:       store,
		Resolver:    res,
		Navigator:   nav,
		Loader:      loader,
		Index:       db,
		Screenshots: m.Screenshots,
		Shell:       cfg.Content.Shell,
		PartialsDir: cfg.Content.Partials,
		Environment: cfg.App.Environment,
		Logger:      logger,
	})
	return &site{store: store, manifest: m, db: db, svc: svc}, nil
}

// Resolve prints the crawler document for fragment.
func Resolve(ctx context.Context, fragment string, opts ...Option) error {
	app, err := newApplication(opts, os.Stderr)
	if err != nil {
		return err
	}
	s, err := buildSite(app.config, app.logger)
	if err != nil {
		return err
	}
	defer s.Close()

	body, err := s.svc.RenderCrawler(ctx, fragment)
	if err != nil {
		if siteservice.IsNotFound(err) {
			return fmt.Errorf("fragment %q: %w", fragment, err)
		}
		return err
	}
	_, err = app.out.Write(body)
	return err
}

// ServeMCP serves the site's MCP tools over stdio. Stdout carries the
// protocol, so the default logger writes to stderr.
func ServeMCP(_ context.Context, opts ...Option) error {
	app, err := newApplication(opts, os.Stderr)
	if err != nil {
		return err
	}
	s, err := buildSite(app.config, app.logger)
	if err != nil {
		return err
	}
	defer s.Close()

	app.logger.Info("MCP server starting", slog.String("version", app.version))
	if err := mcpserver.New(s.svc, app.version).ServeStdio(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}
