// Package resolver turns a requested fragment into a complete document for
// agents that cannot run the browser navigator.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/checkstyle/eclipse-cs/internal/apperr"
	"github.com/checkstyle/eclipse-cs/internal/releases"
	"github.com/checkstyle/eclipse-cs/internal/routes"
	"github.com/checkstyle/eclipse-cs/internal/storage"
)

const tracerName = "github.com/checkstyle/eclipse-cs/internal/resolver"

// Policies for an unreadable release data resource.
const (
	UnavailableFail  = "fail"
	UnavailableEmpty = "empty"
)

// Defaults applied by New.
const (
	DefaultPartialsDir      = "partials"
	DefaultFetchConcurrency = 8
)

// Config holds the resolver collaborators and settings.
type Config struct {
	Store           storage.Provider
	Routes          *routes.Table
	Releases        *releases.Loader
	ReleaseFragment string
	// PartialsDir is the namespace direct fragments are looked up in.
	PartialsDir string
	// OnUnavailable is UnavailableFail or UnavailableEmpty.
	OnUnavailable    string
	FetchConcurrency int
	Logger           *slog.Logger
}

// Resolver resolves fragments. It holds no per-request state and is safe for
// concurrent use.
type Resolver struct {
	cfg    Config
	tracer trace.Tracer
}

// New creates a resolver.
func New(cfg Config) (*Resolver, error) {
	if cfg.Store == nil || cfg.Routes == nil || cfg.Releases == nil {
		return nil, errors.New("resolver: store, routes and releases are required")
	}
	if cfg.ReleaseFragment == "" || routes.IsRoot(cfg.ReleaseFragment) {
		return nil, fmt.Errorf("resolver: invalid release fragment %q", cfg.ReleaseFragment)
	}
	if cfg.PartialsDir == "" {
		cfg.PartialsDir = DefaultPartialsDir
	}
	if cfg.OnUnavailable == "" {
		cfg.OnUnavailable = UnavailableFail
	}
	if cfg.FetchConcurrency <= 0 {
		cfg.FetchConcurrency = DefaultFetchConcurrency
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Resolver{cfg: cfg, tracer: otel.Tracer(tracerName)}, nil
}

// Classify reports how fragment will be resolved.
func (r *Resolver) Classify(fragment string) Kind {
	switch {
	case routes.IsRoot(fragment):
		return KindRoot
	case fragment == r.cfg.ReleaseFragment:
		return KindReleaseNotes
	default:
		return KindDirect
	}
}

// DirectRef returns the template reference a non-root, non-release fragment
// is looked up at: "/faq" maps to "partials/faq.html". The second result is
// false when the fragment would leave the partials namespace.
func (r *Resolver) DirectRef(fragment string) (string, bool) {
	name := strings.TrimPrefix(fragment, "/")
	if name == "" {
		return "", false
	}
	if !strings.HasSuffix(name, ".html") {
		name += ".html"
	}
	// Check the key the store will read, where a backslash is a separator.
	ref, ok := storage.Key(path.Join(r.cfg.PartialsDir, name))
	dir, _ := storage.Key(r.cfg.PartialsDir)
	if !ok || !strings.HasPrefix(ref, dir+"/") {
		return "", false
	}
	return ref, true
}

// Resolve turns fragment into a document. It returns an error wrapping
// apperr.ErrNotFound when nothing corresponds to fragment, and one wrapping
// apperr.ErrSourceUnavailable when the release data cannot be loaded.
// A missing sub-template inside the release notes is skipped, never an error.
func (r *Resolver) Resolve(ctx context.Context, fragment string) (*Document, error) {
	kind := r.Classify(fragment)
	ctx, span := r.tracer.Start(ctx, "resolver.Resolve", trace.WithAttributes(
		attribute.String("fragment", fragment),
		attribute.String("kind", kind.String()),
	))
	defer span.End()

	var (
		doc *Document
		err error
	)
	switch kind {
	case KindRoot:
		doc, err = r.single(ctx, routes.Root, r.cfg.Routes.Match(routes.Root).Template)
	case KindReleaseNotes:
		doc, err = r.releaseNotes(ctx, fragment)
	default:
		ref, ok := r.DirectRef(fragment)
		if !ok {
			err = fmt.Errorf("resolver: fragment %q: %w", fragment, apperr.ErrNotFound)
			break
		}
		doc, err = r.single(ctx, fragment, ref)
	}

	span.SetAttributes(attribute.String("outcome", Outcome(err)))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("blocks", len(doc.Blocks)))
	return doc, nil
}

func (r *Resolver) single(ctx context.Context, fragment, ref string) (*Document, error) {
	data, err := r.fetch(ctx, ref)
	if err != nil {
		if missing(err) {
			return nil, fmt.Errorf("resolver: fragment %q: %w", fragment, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("resolver: fragment %q: %w", fragment, err)
	}
	return &Document{
		Fragment: fragment,
		Blocks:   []Block{{Content: data, Source: ref}},
	}, nil
}

func (r *Resolver) releaseNotes(ctx context.Context, fragment string) (*Document, error) {
	logger := r.cfg.Logger

	entries, err := r.cfg.Releases.Load(ctx)
	if err != nil {
		if errors.Is(err, apperr.ErrSourceUnavailable) && r.cfg.OnUnavailable == UnavailableEmpty {
			logger.Warn("resolver: release data unavailable, rendering empty release notes",
				slog.String("error", err.Error()))
			return &Document{Fragment: fragment}, nil
		}
		return nil, err
	}
	entries = releases.Sorted(entries)

	contents := make([][]byte, len(entries))
	found := make([]bool, len(entries))

	// Fetches complete in any order; assembly below follows Order.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.FetchConcurrency)
	for i, e := range entries {
		g.Go(func() error {
			data, err := r.fetch(gctx, e.Template)
			if err != nil {
				if missing(err) {
					logger.Debug("resolver: release notes missing, skipped",
						slog.String("label", e.Label),
						slog.String("template", e.Template))
					return nil
				}
				return fmt.Errorf("resolver: release %s: %w", e.Label, err)
			}
			contents[i] = data
			found[i] = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	doc := &Document{Fragment: fragment, Blocks: make([]Block, 0, len(entries))}
	for i, e := range entries {
		if !found[i] {
			continue
		}
		doc.Blocks = append(doc.Blocks, Block{Heading: e.Label, Content: contents[i], Source: e.Template})
	}
	return doc, nil
}

func (r *Resolver) fetch(ctx context.Context, ref string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	_, span := r.tracer.Start(ctx, "resolver.fetch", trace.WithAttributes(attribute.String("template", ref)))
	defer span.End()

	data, err := r.cfg.Store.Read(ref)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("bytes", len(data)))
	return data, nil
}

// missing reports whether err means the template does not exist or cannot
// name a stored template.
func missing(err error) bool {
	return errors.Is(err, apperr.ErrNotFound) || errors.Is(err, apperr.ErrInvalidPath)
}
