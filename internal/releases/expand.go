package releases

import (
	"net/url"
	"strings"
)

// DefaultExpandParam is the query parameter that requests every release
// entry expanded.
const DefaultExpandParam = "expandAll"

// Apply runs the expand-all control: when trigger is set every entry is
// expanded, otherwise entries pass through unchanged. It must run after the
// index has loaded.
func Apply(entries []Entry, trigger bool) []Entry {
	if trigger {
		ExpandAll(entries)
	}
	return entries
}

// TriggerFromQuery reports whether param is present in q with a value other
// than "false", "0" or "no".
func TriggerFromQuery(q url.Values, param string) bool {
	if param == "" {
		param = DefaultExpandParam
	}
	vals, ok := q[param]
	if !ok {
		return false
	}
	if len(vals) == 0 {
		return true
	}
	switch strings.ToLower(strings.TrimSpace(vals[0])) {
	case "false", "0", "no":
		return false
	}
	return true
}
