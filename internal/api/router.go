package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/checkstyle/eclipse-cs/internal/siteservice"
	"github.com/checkstyle/eclipse-cs/internal/widgets"
)

// RouterOptions configures NewRouter.
type RouterOptions struct {
	// CrawlerParam is the query parameter that carries a crawler's fragment.
	CrawlerParam string
	Ad           widgets.Mounter
	Social       widgets.Mounter
	// Events, if non-nil, is mounted at GET /api/events.
	Events http.Handler
}

// NewRouter creates a chi router with the page, partials, API and widget
// routes mounted.
func NewRouter(svc *siteservice.Service, opts RouterOptions) chi.Router {
	h := NewHandler(svc, opts.CrawlerParam)

	r := chi.NewRouter()
	// Crawlers probe with HEAD before fetching.
	r.Use(middleware.GetHead)

	// Shell page or crawler document.
	r.Get("/", h.Page)
	r.Get("/index.html", h.Page)

	// Templates for the browser navigator.
	r.Get("/"+svc.PartialsDir()+"/*", h.Partial)

	r.Route("/api", func(r chi.Router) {
		r.Use(NoIndex)
		r.Get("/routes", h.Routes)
		r.Get("/releases", h.Releases)
		r.Get("/view", h.View)
		r.Get("/search", h.Search)
		r.Get("/backlinks", h.Backlinks)
		r.Get("/screenshots", h.Screenshots)
		r.Get("/site", h.Site)
		if opts.Events != nil {
			r.Get("/events", opts.Events.ServeHTTP)
		}
	})

	r.Route("/widgets", func(r chi.Router) {
		r.Use(NoIndex)
		r.Get("/ad", h.Widget(opts.Ad))
		r.Get("/social", h.Widget(opts.Social))
	})

	return r
}
