// Package api implements the documentation site's HTTP surface using chi.
package api

import (
	"net/http"
)

// NoIndex marks responses as not for search engines. Crawlers should index
// the resolved fragment documents, not the navigator's JSON or embeds.
func NoIndex(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Robots-Tag", "noindex")
		next.ServeHTTP(w, r)
	})
}
