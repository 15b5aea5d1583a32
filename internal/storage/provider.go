// Package storage defines the read-only template store.
package storage

import (
	"path"
	"strings"

	"github.com/checkstyle/eclipse-cs/internal/models"
)

// Provider is the interface for template lookups. Implementations are
// read-only and safe for concurrent use.
type Provider interface {
	// Read returns the raw bytes of the template at ref.
	// A missing template yields an error wrapping apperr.ErrNotFound.
	Read(ref string) ([]byte, error)
	// List returns metadata for every template under dir whose name ends in ext.
	// An empty ext lists every file.
	List(dir, ext string) ([]models.TemplateMeta, error)
}

// Key normalises a template reference such as "/partials/faq.html" to the
// slash-separated key relative to the content root ("partials/faq.html").
// The second result is false when ref escapes the root.
func Key(ref string) (string, bool) {
	ref = strings.ReplaceAll(ref, "\\", "/")
	ref = strings.TrimLeft(ref, "/")
	if ref == "" {
		return ".", true
	}
	cleaned := path.Clean(ref)
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", false
	}
	return cleaned, true
}
