// Package testutil provides shared test helpers for building sites and
// search indexes.
package testutil

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/checkstyle/eclipse-cs/internal/index"
	"github.com/checkstyle/eclipse-cs/internal/manifest"
	"github.com/checkstyle/eclipse-cs/internal/navigator"
	"github.com/checkstyle/eclipse-cs/internal/releases"
	"github.com/checkstyle/eclipse-cs/internal/resolver"
	"github.com/checkstyle/eclipse-cs/internal/siteservice"
	"github.com/checkstyle/eclipse-cs/internal/storage"
	"github.com/checkstyle/eclipse-cs/internal/widgets"
)

// Shell is the interactive page in SiteFS.
const Shell = `<html ng-app="ecs"><body><div ng-view></div></body></html>`

// SiteFS returns a small site laid out like the default manifest. The
// 10.0.0 release points at a template that does not exist.
func SiteFS() fstest.MapFS {
	return fstest.MapFS{
		"index.html":                  {Data: []byte(Shell)},
		"partials/index.html":         {Data: []byte("<h1>Eclipse Checkstyle Plug-in</h1>")},
		"partials/faq.html":           {Data: []byte(`<h2>FAQ</h2><p>See <a href="#!/install">install</a>.</p>`)},
		"partials/basic/install.html": {Data: []byte("<h1>Installing</h1><p>Use the update site.</p>")},
		"partials/releasenotes/releases.json": {Data: []byte(`[
			{"label": "10.1.0", "template": "/partials/releasenotes/10.1.0.html"},
			{"label": "10.0.0", "template": "/partials/releasenotes/missing.html"},
			{"label": "9.0.0", "template": "/partials/releasenotes/9.0.0.html"}
		]`)},
		"partials/releasenotes/10.1.0.html": {Data: []byte("<p>newest</p>")},
		"partials/releasenotes/9.0.0.html":  {Data: []byte("<p>older</p>")},
	}
}

// TestDB creates a temporary SQLite index that is closed on cleanup.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	db, err := index.Open(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// Logger discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// SiteOptions tweaks NewSite.
type SiteOptions struct {
	// OnUnavailable is the resolver's release data policy.
	OnUnavailable string
	Environment   string
}

// NewSite wires fsys with the default manifest, a synced search index and
// a site service.
func NewSite(t *testing.T, fsys fstest.MapFS, opts SiteOptions) *siteservice.Service {
	t.Helper()
	if fsys == nil {
		fsys = SiteFS()
	}
	if opts.Environment == "" {
		opts.Environment = widgets.EnvLocal
	}
	store := storage.NewFromFS(fsys)
	logger := Logger()

	m := manifest.Default()
	table, err := m.Table()
	if err != nil {
		t.Fatal(err)
	}
	loader := &releases.Loader{Store: store, Path: m.Releases, ExpandRecent: 1}
	res, err := resolver.New(resolver.Config{
		Store:           store,
		Routes:          table,
		Releases:        loader,
		ReleaseFragment: m.ReleaseFragment,
		OnUnavailable:   opts.OnUnavailable,
		Logger:          logger,
	})
	if err != nil {
		t.Fatal(err)
	}

	db := TestDB(t)
	if err := index.Sync(db, store, resolver.DefaultPartialsDir, logger); err != nil {
		t.Fatal(err)
	}

	return siteservice.New(siteservice.Options{
		Store:       store,
		Resolver:    res,
		Navigator:   navigator.New(table, loader, m.ReleaseFragment, ""),
		Loader:      loader,
		Index:       db,
		Screenshots: m.Screenshots,
		Shell:       "index.html",
		Environment: opts.Environment,
		Logger:      logger,
	})
}
