package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/checkstyle/eclipse-cs/internal/resolver"
	"github.com/checkstyle/eclipse-cs/internal/testutil"
	"github.com/checkstyle/eclipse-cs/internal/widgets"
)

type envOptions struct {
	fs     fstest.MapFS
	policy string
	router RouterOptions
}

func testEnv(t *testing.T, opts envOptions) http.Handler {
	t.Helper()
	svc := testutil.NewSite(t, opts.fs, testutil.SiteOptions{OnUnavailable: opts.policy})
	return NewRouter(svc, opts.router)
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestShellPassThrough(t *testing.T) {
	router := testEnv(t, envOptions{})

	for _, target := range []string{"/", "/index.html", "/?_escaped_fragment_="} {
		w := get(t, router, target)
		if w.Code != http.StatusOK {
			t.Fatalf("%s: status = %d", target, w.Code)
		}
		if w.Body.String() != testutil.Shell {
			t.Errorf("%s: shell was modified: %q", target, w.Body.String())
		}
	}
}

func TestCrawlerDirectFragment(t *testing.T) {
	router := testEnv(t, envOptions{})

	w := get(t, router, "/?_escaped_fragment_=/faq")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("content type = %q", ct)
	}
	body := w.Body.String()
	if !strings.HasPrefix(body, "<!DOCTYPE html>") {
		t.Errorf("missing doctype: %q", body)
	}
	if !strings.Contains(body, `<meta charset="utf-8">`) {
		t.Errorf("missing charset declaration: %q", body)
	}
	if !strings.Contains(body, "<h2>FAQ</h2>") {
		t.Errorf("missing template content: %q", body)
	}
	if w.Header().Get("ETag") == "" {
		t.Error("missing ETag")
	}
}

func TestCrawlerRootAliases(t *testing.T) {
	router := testEnv(t, envOptions{})

	for _, frag := range []string{"/", "//"} {
		w := get(t, router, "/?_escaped_fragment_="+frag)
		if w.Code != http.StatusOK {
			t.Fatalf("%q: status = %d", frag, w.Code)
		}
		if !strings.Contains(w.Body.String(), "Eclipse Checkstyle Plug-in") {
			t.Errorf("%q: root template not rendered: %q", frag, w.Body.String())
		}
	}
}

func TestCrawlerReleaseNotes(t *testing.T) {
	router := testEnv(t, envOptions{})

	w := get(t, router, "/?_escaped_fragment_=/releasenotes")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	body := w.Body.String()
	newest := strings.Index(body, "newest")
	older := strings.Index(body, "older")
	if newest < 0 || older < 0 || newest > older {
		t.Errorf("release blocks out of order: %q", body)
	}
	if strings.Contains(body, "10.0.0") {
		t.Errorf("entry with missing template should be skipped: %q", body)
	}
	if strings.Count(body, "<h2>") != 2 {
		t.Errorf("want 2 release headings: %q", body)
	}
}

func TestCrawlerNotFound(t *testing.T) {
	router := testEnv(t, envOptions{})

	for _, frag := range []string{"/nope", "/../index", `\..\index`, "/install"} {
		w := get(t, router, "/?_escaped_fragment_="+frag)
		if w.Code != http.StatusNotFound {
			t.Errorf("%q: status = %d, want 404", frag, w.Code)
		}
		if w.Body.Len() != 0 {
			t.Errorf("%q: body should be empty, got %q", frag, w.Body.String())
		}
	}
}

func TestCrawlerSourceUnavailable(t *testing.T) {
	fs := testutil.SiteFS()
	fs["partials/releasenotes/releases.json"] = &fstest.MapFile{Data: []byte(`{"not": "a list"}`)}

	router := testEnv(t, envOptions{fs: fs})
	w := get(t, router, "/?_escaped_fragment_=/releasenotes")
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}

	router = testEnv(t, envOptions{fs: fs, policy: resolver.UnavailableEmpty})
	w = get(t, router, "/?_escaped_fragment_=/releasenotes")
	if w.Code != http.StatusOK {
		t.Fatalf("empty policy status = %d, want 200", w.Code)
	}
	if strings.Contains(w.Body.String(), "<h2>") {
		t.Errorf("empty policy should render no blocks: %q", w.Body.String())
	}
}

func TestCrawlerConditionalGet(t *testing.T) {
	router := testEnv(t, envOptions{})

	w := get(t, router, "/?_escaped_fragment_=/faq")
	etag := w.Header().Get("ETag")

	req := httptest.NewRequest(http.MethodGet, "/?_escaped_fragment_=/faq", nil)
	req.Header.Set("If-None-Match", etag)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotModified {
		t.Errorf("status = %d, want 304", w.Code)
	}
}

func TestCrawlerHead(t *testing.T) {
	router := testEnv(t, envOptions{})

	req := httptest.NewRequest(http.MethodHead, "/?_escaped_fragment_=/faq", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("HEAD status = %d, want 200", w.Code)
	}
	if w.Header().Get("ETag") == "" {
		t.Error("HEAD should carry the ETag")
	}

	req = httptest.NewRequest(http.MethodHead, "/?_escaped_fragment_=/nope", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("HEAD unknown fragment status = %d, want 404", w.Code)
	}
}

func TestCustomCrawlerParam(t *testing.T) {
	router := testEnv(t, envOptions{router: RouterOptions{CrawlerParam: "fragment"}})

	w := get(t, router, "/?fragment=/faq")
	if !strings.Contains(w.Body.String(), "<h2>FAQ</h2>") {
		t.Errorf("custom param not honoured: %q", w.Body.String())
	}
	w = get(t, router, "/?_escaped_fragment_=/faq")
	if w.Body.String() != testutil.Shell {
		t.Errorf("default param should pass through: %q", w.Body.String())
	}
}

func TestPartials(t *testing.T) {
	router := testEnv(t, envOptions{})

	w := get(t, router, "/partials/basic/install.html")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Installing") {
		t.Errorf("body = %q", w.Body.String())
	}

	w = get(t, router, "/partials/releasenotes/releases.json")
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("content type = %q", ct)
	}

	w = get(t, router, "/partials/nope.html")
	if w.Code != http.StatusNotFound {
		t.Errorf("missing partial status = %d", w.Code)
	}
}

func TestRoutesEndpoint(t *testing.T) {
	router := testEnv(t, envOptions{})

	w := get(t, router, "/api/routes")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if w.Header().Get("X-Robots-Tag") != "noindex" {
		t.Error("api responses should not be indexed")
	}
	var resp struct {
		Routes []struct {
			Path        string `json:"path"`
			TemplateURL string `json:"templateUrl"`
		} `json:"routes"`
		Default string `json:"default"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Default != "/" {
		t.Errorf("default = %q", resp.Default)
	}
	if len(resp.Routes) == 0 || resp.Routes[0].Path != "/" || resp.Routes[0].TemplateURL != "/partials/index.html" {
		t.Errorf("routes = %+v", resp.Routes)
	}
}

func TestReleasesEndpoint(t *testing.T) {
	router := testEnv(t, envOptions{})

	var resp ReleasesResponse
	w := get(t, router, "/api/releases")
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Releases) != 3 {
		t.Fatalf("releases = %d, want 3", len(resp.Releases))
	}
	if !resp.Releases[0].Expanded || resp.Releases[1].Expanded {
		t.Errorf("only the newest entry should be expanded: %+v", resp.Releases)
	}

	w = get(t, router, "/api/releases?expandAll")
	resp = ReleasesResponse{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, e := range resp.Releases {
		if !e.Expanded {
			t.Errorf("%s not expanded with expandAll", e.Label)
		}
	}
}

func TestReleasesToggle(t *testing.T) {
	router := testEnv(t, envOptions{})

	var resp ReleasesResponse
	w := get(t, router, "/api/releases?toggle=10.1.0&toggle=9.0.0")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Releases[0].Expanded || resp.Releases[1].Expanded || !resp.Releases[2].Expanded {
		t.Errorf("toggled state = %+v", resp.Releases)
	}

	w = get(t, router, "/api/releases?toggle=0.0.1")
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown label status = %d, want 404", w.Code)
	}
}

func TestViewEndpoint(t *testing.T) {
	router := testEnv(t, envOptions{})

	var view ViewResponse
	w := get(t, router, "/api/view?fragment=/unknown")
	if err := json.Unmarshal(w.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if view.Template != "/partials/index.html" {
		t.Errorf("unknown fragment should route to root, got %q", view.Template)
	}

	view = ViewResponse{}
	w = get(t, router, "/api/view?fragment=/releasenotes&expandAll=true")
	if err := json.Unmarshal(w.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(view.Releases) != 3 || !view.Releases[2].Expanded {
		t.Errorf("release view = %+v", view.Releases)
	}
}

func TestSearchAndBacklinks(t *testing.T) {
	router := testEnv(t, envOptions{})

	w := get(t, router, "/api/search")
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing q status = %d", w.Code)
	}

	var sr SearchResponse
	w = get(t, router, "/api/search?q=update")
	if err := json.Unmarshal(w.Body.Bytes(), &sr); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(sr.Results) != 1 || sr.Results[0].Fragment != "/install" {
		t.Errorf("search results = %+v", sr.Results)
	}

	var bl BacklinksResponse
	w = get(t, router, "/api/backlinks?fragment=/install")
	if err := json.Unmarshal(w.Body.Bytes(), &bl); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(bl.Backlinks) != 1 || bl.Backlinks[0] != "partials/faq.html" {
		t.Errorf("backlinks = %+v", bl.Backlinks)
	}
}

func TestScreenshotsAndSite(t *testing.T) {
	router := testEnv(t, envOptions{})

	var shots ScreenshotsResponse
	w := get(t, router, "/api/screenshots")
	if err := json.Unmarshal(w.Body.Bytes(), &shots); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(shots.Screenshots) == 0 {
		t.Error("default manifest should carry screenshots")
	}

	var site SiteResponse
	w = get(t, router, "/api/site")
	if err := json.Unmarshal(w.Body.Bytes(), &site); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if site.Environment != "local" {
		t.Errorf("environment = %q", site.Environment)
	}
}

func TestWidgets(t *testing.T) {
	router := testEnv(t, envOptions{router: RouterOptions{
		Ad:     widgets.AdSlot{Environment: widgets.EnvLocal, Client: "ca-pub-1"},
		Social: widgets.SocialButton{ShareURL: "https://checkstyle.org/eclipse-cs"},
	}})

	w := get(t, router, "/widgets/ad")
	if w.Code != http.StatusNoContent {
		t.Errorf("ad outside production status = %d, want 204", w.Code)
	}

	w = get(t, router, "/widgets/social")
	if w.Code != http.StatusOK {
		t.Fatalf("social status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "twitter.com/intent/tweet") {
		t.Errorf("social body = %q", w.Body.String())
	}

	router = testEnv(t, envOptions{router: RouterOptions{
		Ad: widgets.AdSlot{Environment: widgets.EnvProduction, Client: "ca-pub-1", Slot: "42"},
	}})
	w = get(t, router, "/widgets/ad")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "adsbygoogle") {
		t.Errorf("production ad: status = %d body = %q", w.Code, w.Body.String())
	}
	w = get(t, router, "/widgets/social")
	if w.Code != http.StatusNoContent {
		t.Errorf("unconfigured social status = %d, want 204", w.Code)
	}
}
