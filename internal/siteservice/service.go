// Package siteservice coordinates the template store, resolver, navigator
// and search index for the transport layers (HTTP, MCP, CLI).
package siteservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"strings"

	"github.com/checkstyle/eclipse-cs/internal/apperr"
	"github.com/checkstyle/eclipse-cs/internal/index"
	"github.com/checkstyle/eclipse-cs/internal/models"
	"github.com/checkstyle/eclipse-cs/internal/navigator"
	"github.com/checkstyle/eclipse-cs/internal/releases"
	"github.com/checkstyle/eclipse-cs/internal/render"
	"github.com/checkstyle/eclipse-cs/internal/resolver"
	"github.com/checkstyle/eclipse-cs/internal/routes"
	"github.com/checkstyle/eclipse-cs/internal/storage"
)

// SearchHit is one search result, mapped back to the fragment that shows it.
type SearchHit struct {
	Path     string `json:"path"`
	Fragment string `json:"fragment"`
	Title    string `json:"title"`
	Snippet  string `json:"snippet"`
}

// Options configures a Service.
type Options struct {
	Store       storage.Provider
	Resolver    *resolver.Resolver
	Navigator   *navigator.Navigator
	Loader      *releases.Loader
	Index       index.TemplateIndex
	Screenshots []models.Screenshot
	// Shell is the template reference of the interactive page.
	Shell string
	// PartialsDir is the namespace served to the browser navigator.
	PartialsDir string
	Environment string
	Logger      *slog.Logger
}

// Service is the application facade.
type Service struct {
	opts Options
}

// New creates a new site service.
func New(opts Options) *Service {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.PartialsDir == "" {
		opts.PartialsDir = resolver.DefaultPartialsDir
	}
	return &Service{opts: opts}
}

// Resolve resolves fragment and logs the outcome.
func (s *Service) Resolve(ctx context.Context, fragment string) (*resolver.Document, error) {
	doc, err := s.opts.Resolver.Resolve(ctx, fragment)
	outcome := resolver.Outcome(err)
	switch outcome {
	case resolver.OutcomeResolved:
		s.opts.Logger.Debug("fragment resolved",
			slog.String("fragment", fragment),
			slog.Int("blocks", len(doc.Blocks)))
	case resolver.OutcomeError:
		s.opts.Logger.Error("fragment resolution failed",
			slog.String("fragment", fragment),
			slog.String("error", err.Error()))
	default:
		s.opts.Logger.Info("fragment not resolved",
			slog.String("fragment", fragment),
			slog.String("outcome", outcome))
	}
	return doc, err
}

// RenderCrawler resolves fragment and renders the crawler document.
func (s *Service) RenderCrawler(ctx context.Context, fragment string) ([]byte, error) {
	doc, err := s.Resolve(ctx, fragment)
	if err != nil {
		return nil, err
	}
	return render.Bytes(ctx, doc)
}

// Shell returns the interactive page unmodified.
func (s *Service) Shell(_ context.Context) ([]byte, error) {
	return s.opts.Store.Read(s.opts.Shell)
}

// Partial returns a template from the partials namespace for the browser
// navigator. References outside the namespace are not found.
func (s *Service) Partial(_ context.Context, ref string) ([]byte, error) {
	key, ok := storage.Key(ref)
	dir, _ := storage.Key(s.opts.PartialsDir)
	if !ok || !strings.HasPrefix(key, dir+"/") {
		return nil, fmt.Errorf("siteservice: partial %q: %w", ref, apperr.ErrNotFound)
	}
	return s.opts.Store.Read(key)
}

// PartialsDir returns the template namespace served to the navigator.
func (s *Service) PartialsDir() string {
	dir, _ := storage.Key(s.opts.PartialsDir)
	return dir
}

// Routes returns the client route table.
func (s *Service) Routes() (rules []routes.Rule, def string) {
	tbl := s.opts.Navigator.Table()
	return tbl.Rules(), tbl.Default().Pattern
}

// Releases loads the release index, newest first, expanding every entry
// when expandAll is set. Each label in toggle then flips that entry's
// expansion; an unknown label is not found.
func (s *Service) Releases(ctx context.Context, expandAll bool, toggle ...string) ([]releases.Entry, error) {
	entries, err := s.opts.Loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	entries = releases.Apply(releases.Sorted(entries), expandAll)
	for _, label := range toggle {
		if !releases.Toggle(entries, label) {
			return nil, fmt.Errorf("siteservice: release %q: %w", label, apperr.ErrNotFound)
		}
	}
	return entries, nil
}

// ExpandParam returns the query parameter that triggers expand-all.
func (s *Service) ExpandParam() string {
	return s.opts.Navigator.ExpandParam()
}

// View returns the browser navigator's view model for one navigation.
func (s *Service) View(ctx context.Context, fragment string, query url.Values) (*navigator.View, error) {
	return s.opts.Navigator.Navigate(ctx, fragment, query)
}

// Search queries the template index.
func (s *Service) Search(_ context.Context, query string, limit int) ([]SearchHit, error) {
	if s.opts.Index == nil {
		return []SearchHit{}, nil
	}
	results, err := s.opts.Index.Search(query, limit)
	if err != nil {
		return nil, err
	}
	hits := make([]SearchHit, 0, len(results))
	for _, r := range results {
		hits = append(hits, SearchHit{
			Path:     r.Path,
			Fragment: s.FragmentFor(r.Path),
			Title:    r.Title,
			Snippet:  r.Snippet,
		})
	}
	return hits, nil
}

// Backlinks returns the templates that link to fragment.
func (s *Service) Backlinks(_ context.Context, fragment string) ([]string, error) {
	if s.opts.Index == nil {
		return []string{}, nil
	}
	bl, err := s.opts.Index.Backlinks(routes.Normalize(fragment))
	if err != nil {
		return nil, err
	}
	if bl == nil {
		bl = []string{}
	}
	return bl, nil
}

// FragmentFor maps a template path back to the fragment that displays it:
// a route whose template matches, otherwise the direct partials path.
func (s *Service) FragmentFor(templatePath string) string {
	key, _ := storage.Key(templatePath)
	for _, r := range s.opts.Navigator.Table().Rules() {
		if k, _ := storage.Key(r.Template); k == key {
			return r.Pattern
		}
	}
	dir, _ := storage.Key(s.opts.PartialsDir)
	rel := strings.TrimPrefix(key, dir+"/")
	return "/" + strings.TrimSuffix(rel, path.Ext(rel))
}

// Screenshots returns the home page carousel slides.
func (s *Service) Screenshots() []models.Screenshot {
	if s.opts.Screenshots == nil {
		return []models.Screenshot{}
	}
	return s.opts.Screenshots
}

// Environment returns the deployment environment.
func (s *Service) Environment() string {
	return s.opts.Environment
}

// IsNotFound reports whether err means a missing fragment or template.
func IsNotFound(err error) bool {
	return errors.Is(err, apperr.ErrNotFound)
}
