// Package releases loads the ordered list of versioned release notes and
// manages each entry's expansion state.
package releases

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/checkstyle/eclipse-cs/internal/apperr"
	"github.com/checkstyle/eclipse-cs/internal/storage"
)

// Entry is one versioned release's notes. Order is the position in the
// release data resource; 0 is the newest release.
type Entry struct {
	Label    string `json:"label"`
	Template string `json:"template"`
	Expanded bool   `json:"expanded"`
	Order    int    `json:"order"`
}

// record is the on-disk shape of one entry. Expanded is optional.
type record struct {
	Label    string `json:"label"`
	Template string `json:"template"`
	Expanded *bool  `json:"expanded,omitempty"`
}

// Loader reads the release data resource from a template store.
type Loader struct {
	Store storage.Provider
	// Path is the template reference of the JSON release list.
	Path string
	// ExpandRecent is the number of newest entries expanded by default.
	ExpandRecent int
}

// Load reads and parses the release list, preserving file order as Order.
// Any read or parse failure wraps apperr.ErrSourceUnavailable.
func (l *Loader) Load(ctx context.Context) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := l.Store.Read(l.Path)
	if err != nil {
		return nil, fmt.Errorf("releases: %w: %w", apperr.ErrSourceUnavailable, err)
	}
	return Parse(data, l.ExpandRecent)
}

// Parse decodes a JSON release list. The document must be an array whose
// elements each carry a label and a template.
func Parse(data []byte, expandRecent int) ([]Entry, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("releases: %w: document is not a list", apperr.ErrSourceUnavailable)
	}
	var recs []record
	if err := json.Unmarshal(trimmed, &recs); err != nil {
		return nil, fmt.Errorf("releases: %w: %w", apperr.ErrSourceUnavailable, err)
	}

	out := make([]Entry, 0, len(recs))
	for i, r := range recs {
		if r.Label == "" || r.Template == "" {
			return nil, fmt.Errorf("releases: %w: entry %d needs label and template", apperr.ErrSourceUnavailable, i)
		}
		e := Entry{
			Label:    r.Label,
			Template: r.Template,
			Expanded: i < expandRecent,
			Order:    i,
		}
		if r.Expanded != nil {
			e.Expanded = *r.Expanded
		}
		out = append(out, e)
	}
	return out, nil
}

// Sorted returns a copy of entries ordered newest first.
func Sorted(entries []Entry) []Entry {
	out := make([]Entry, len(entries))
	copy(out, entries)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// ExpandAll marks every entry expanded. It is idempotent.
func ExpandAll(entries []Entry) {
	for i := range entries {
		entries[i].Expanded = true
	}
}

// Toggle flips the expansion state of the entry with the given label and
// reports whether such an entry exists.
func Toggle(entries []Entry, label string) bool {
	for i := range entries {
		if entries[i].Label == label {
			entries[i].Expanded = !entries[i].Expanded
			return true
		}
	}
	return false
}
