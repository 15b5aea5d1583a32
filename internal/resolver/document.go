package resolver

import (
	"errors"

	"github.com/checkstyle/eclipse-cs/internal/apperr"
)

// Block is one piece of a resolved document: opaque template bytes with an
// optional heading.
type Block struct {
	Heading string
	Content []byte
	// Source is the template reference the content was read from.
	Source string
}

// Document is the result of a successful resolution. Blocks are in display
// order.
type Document struct {
	Fragment string
	Blocks   []Block
}

// Kind classifies a fragment before any template is read.
type Kind int

const (
	KindRoot Kind = iota
	KindReleaseNotes
	KindDirect
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindRoot:
		return "root"
	case KindReleaseNotes:
		return "release_notes"
	case KindDirect:
		return "direct"
	default:
		return "unknown"
	}
}

// Resolution outcomes, used for logging and tool output.
const (
	OutcomeResolved          = "resolved"
	OutcomeNotFound          = "not_found"
	OutcomeSourceUnavailable = "source_unavailable"
	OutcomeError             = "error"
)

// Outcome classifies the error returned by Resolve.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeResolved
	case errors.Is(err, apperr.ErrNotFound):
		return OutcomeNotFound
	case errors.Is(err, apperr.ErrSourceUnavailable):
		return OutcomeSourceUnavailable
	default:
		return OutcomeError
	}
}
