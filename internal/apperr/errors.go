// Package apperr holds the sentinel errors shared across packages.
package apperr

import "errors"

var (
	// ErrNotFound reports that a fragment or template has no content.
	ErrNotFound = errors.New("not found")
	// ErrSourceUnavailable reports that the release data resource could not
	// be read or parsed.
	ErrSourceUnavailable = errors.New("source unavailable")
	// ErrInvalidPath reports a template reference that escapes the content root.
	ErrInvalidPath = errors.New("invalid path")
)
