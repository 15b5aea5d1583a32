// Package navigator mirrors the browser-side navigator: it picks the
// template for a fragment and prepares the release notes view model. It
// never reads or aggregates template content.
package navigator

import (
	"context"
	"fmt"
	"net/url"

	"github.com/checkstyle/eclipse-cs/internal/releases"
	"github.com/checkstyle/eclipse-cs/internal/routes"
)

// View is what the browser displays for one navigation.
type View struct {
	Fragment string `json:"fragment"`
	Template string `json:"templateUrl"`
	// Releases is set only for the release notes fragment. Each entry
	// renders its own template and honours its Expanded flag.
	Releases []releases.Entry `json:"releases,omitempty"`
}

// Navigator selects templates from the route table.
type Navigator struct {
	table           *routes.Table
	loader          *releases.Loader
	releaseFragment string
	expandParam     string
}

// New creates a navigator. expandParam names the query parameter that
// triggers expand-all; empty uses releases.DefaultExpandParam.
func New(table *routes.Table, loader *releases.Loader, releaseFragment, expandParam string) *Navigator {
	if expandParam == "" {
		expandParam = releases.DefaultExpandParam
	}
	return &Navigator{
		table:           table,
		loader:          loader,
		releaseFragment: releaseFragment,
		expandParam:     expandParam,
	}
}

// Route returns the template for fragment, or the root template when no
// rule matches.
func (n *Navigator) Route(fragment string) string {
	return n.table.Match(fragment).Template
}

// Navigate builds the view for one navigation event. For the release notes
// fragment the index is loaded first and the expand-all control is applied
// once afterwards.
func (n *Navigator) Navigate(ctx context.Context, fragment string, query url.Values) (*View, error) {
	rule := n.table.Match(fragment)
	v := &View{Fragment: rule.Pattern, Template: rule.Template}
	if fragment != n.releaseFragment {
		return v, nil
	}

	entries, err := n.loader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("navigator: %w", err)
	}
	v.Releases = releases.Apply(releases.Sorted(entries), releases.TriggerFromQuery(query, n.expandParam))
	return v, nil
}

// Table exposes the route table compiled into the browser bundle.
func (n *Navigator) Table() *routes.Table {
	return n.table
}

// ExpandParam returns the query parameter that triggers expand-all.
func (n *Navigator) ExpandParam() string {
	return n.expandParam
}
