package api

import (
	"bytes"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"path"
	"strconv"

	"github.com/checkstyle/eclipse-cs/internal/apperr"
	"github.com/checkstyle/eclipse-cs/internal/checksum"
	"github.com/checkstyle/eclipse-cs/internal/releases"
	"github.com/checkstyle/eclipse-cs/internal/routes"
	"github.com/checkstyle/eclipse-cs/internal/siteservice"
	"github.com/checkstyle/eclipse-cs/internal/widgets"
)

const htmlContentType = "text/html; charset=utf-8"

// Handler holds the site route handlers.
type Handler struct {
	svc          *siteservice.Service
	crawlerParam string
}

// NewHandler creates a new Handler. An empty crawlerParam uses
// "_escaped_fragment_".
func NewHandler(svc *siteservice.Service, crawlerParam string) *Handler {
	if crawlerParam == "" {
		crawlerParam = "_escaped_fragment_"
	}
	return &Handler{svc: svc, crawlerParam: crawlerParam}
}

// Page handles GET / and GET /index.html.
//
// Without the crawler parameter the interactive shell is returned
// unmodified. With it, the requested fragment is resolved into a complete
// document. Error responses carry no body.
func (h *Handler) Page(w http.ResponseWriter, r *http.Request) {
	fragment := r.URL.Query().Get(h.crawlerParam)
	if fragment == "" {
		h.shell(w, r)
		return
	}

	body, err := h.svc.RenderCrawler(r.Context(), fragment)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrNotFound):
			w.WriteHeader(http.StatusNotFound)
		case errors.Is(err, apperr.ErrSourceUnavailable):
			w.WriteHeader(http.StatusServiceUnavailable)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
		return
	}
	writeBody(w, r, htmlContentType, body)
}

func (h *Handler) shell(w http.ResponseWriter, r *http.Request) {
	body, err := h.svc.Shell(r.Context())
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		slog.Error("read shell failed", slog.String("error", err.Error()))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	writeBody(w, r, htmlContentType, body)
}

// Partial handles GET /partials/*. It serves templates and data resources
// to the browser navigator byte for byte.
func (h *Handler) Partial(w http.ResponseWriter, r *http.Request) {
	body, err := h.svc.Partial(r.Context(), r.URL.Path)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) || errors.Is(err, apperr.ErrInvalidPath) {
			http.NotFound(w, r)
			return
		}
		slog.Error("read partial failed", slog.String("path", r.URL.Path), slog.String("error", err.Error()))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	ct := mime.TypeByExtension(path.Ext(r.URL.Path))
	if ct == "" {
		ct = htmlContentType
	}
	writeBody(w, r, ct, body)
}

// writeBody writes body with an ETag, answering a matching If-None-Match
// with 304.
func writeBody(w http.ResponseWriter, r *http.Request, contentType string, body []byte) {
	etag := checksum.ETag(body)
	w.Header().Set("ETag", etag)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// Routes handles GET /api/routes.
//
//	@Summary	The client route table
//	@Tags		navigation
//	@Produce	json
//	@Success	200	{object}	RoutesResponse
//	@Router		/routes [get]
func (h *Handler) Routes(w http.ResponseWriter, _ *http.Request) {
	rules, def := h.svc.Routes()
	writeJSON(w, http.StatusOK, RoutesResponse{Routes: rules, Default: def})
}

// Releases handles GET /api/releases.
//
//	@Summary	The release index, newest first
//	@Tags		releases
//	@Produce	json
//	@Param		expandAll	query		string	false	"Expand every entry"
//	@Param		toggle		query		string	false	"Flip one entry's expansion (repeatable)"
//	@Success	200			{object}	ReleasesResponse
//	@Failure	404			{object}	errResponse
//	@Failure	503			{object}	errResponse
//	@Router		/releases [get]
func (h *Handler) Releases(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	expand := releases.TriggerFromQuery(q, h.svc.ExpandParam())
	entries, err := h.svc.Releases(r.Context(), expand, q["toggle"]...)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("unknown release"))
			return
		}
		slog.Error("load releases failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusServiceUnavailable, errorBody("release data unavailable"))
		return
	}
	writeJSON(w, http.StatusOK, ReleasesResponse{Releases: entries})
}

// View handles GET /api/view.
//
//	@Summary	The navigator view for a fragment
//	@Tags		navigation
//	@Produce	json
//	@Param		fragment	query		string	false	"Fragment, defaults to /"
//	@Param		expandAll	query		string	false	"Expand every release entry"
//	@Success	200			{object}	ViewResponse
//	@Failure	503			{object}	errResponse
//	@Router		/view [get]
func (h *Handler) View(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	fragment := q.Get("fragment")
	if fragment == "" {
		fragment = routes.Root
	}
	view, err := h.svc.View(r.Context(), fragment, q)
	if err != nil {
		if errors.Is(err, apperr.ErrSourceUnavailable) {
			writeJSON(w, http.StatusServiceUnavailable, errorBody("release data unavailable"))
		} else {
			slog.Error("navigate failed", slog.String("fragment", fragment), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Search handles GET /api/search.
//
//	@Summary	Full-text search across templates
//	@Tags		search
//	@Produce	json
//	@Param		q		query		string	true	"Search query"
//	@Param		limit	query		int		false	"Max results"
//	@Success	200		{object}	SearchResponse
//	@Failure	400		{object}	errResponse
//	@Router		/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		slog.Error("search failed", slog.String("query", q), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

// Backlinks handles GET /api/backlinks.
//
//	@Summary	Templates linking to a fragment
//	@Tags		search
//	@Produce	json
//	@Param		fragment	query		string	true	"Fragment"
//	@Success	200			{object}	BacklinksResponse
//	@Failure	400			{object}	errResponse
//	@Router		/backlinks [get]
func (h *Handler) Backlinks(w http.ResponseWriter, r *http.Request) {
	fragment := r.URL.Query().Get("fragment")
	if fragment == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'fragment' is required"))
		return
	}
	bl, err := h.svc.Backlinks(r.Context(), fragment)
	if err != nil {
		slog.Error("backlinks failed", slog.String("fragment", fragment), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, BacklinksResponse{Fragment: routes.Normalize(fragment), Backlinks: bl})
}

// Screenshots handles GET /api/screenshots.
func (h *Handler) Screenshots(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, ScreenshotsResponse{Screenshots: h.svc.Screenshots()})
}

// Site handles GET /api/site.
func (h *Handler) Site(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, SiteResponse{Environment: h.svc.Environment()})
}

// Widget returns a handler serving m's snippet, or 204 when m is nil or
// disabled.
func (h *Handler) Widget(m widgets.Mounter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if m == nil || !m.Enabled() {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		var buf bytes.Buffer
		if err := m.Mount().Render(r.Context(), &buf); err != nil {
			slog.Error("render widget failed", slog.String("path", r.URL.Path), slog.String("error", err.Error()))
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", htmlContentType)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(buf.Bytes())
	}
}
