// Package widgets renders third-party embeds (advertising, social sharing)
// behind a small capability interface. Fragment resolution never uses them.
package widgets

import (
	"context"
	"io"
	"net/url"

	"github.com/a-h/templ"
)

// Environments.
const (
	EnvLocal      = "local"
	EnvProduction = "production"
)

// Mounter is a third-party embed that can be placed into a page.
type Mounter interface {
	// Enabled reports whether Mount would write anything.
	Enabled() bool
	// Mount returns the markup that loads the embed.
	Mount() templ.Component
}

// AdSlot is an advertising unit. It is disabled outside production and when
// no client id is configured.
type AdSlot struct {
	Environment string
	Client      string
	Slot        string
}

var _ Mounter = AdSlot{}

// Enabled implements Mounter.
func (a AdSlot) Enabled() bool {
	return a.Environment == EnvProduction && a.Client != ""
}

// Mount implements Mounter.
func (a AdSlot) Mount() templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		if !a.Enabled() {
			return nil
		}
		client := templ.EscapeString(a.Client)
		_, err := io.WriteString(w,
			`<script async src="https://pagead2.googlesyndication.com/pagead/js/adsbygoogle.js?client=`+url.QueryEscape(a.Client)+`" crossorigin="anonymous"></script>`+"\n"+
				`<ins class="adsbygoogle" style="display:block" data-ad-client="`+client+`" data-ad-slot="`+templ.EscapeString(a.Slot)+`" data-ad-format="auto"></ins>`+"\n"+
				`<script>(adsbygoogle = window.adsbygoogle || []).push({});</script>`+"\n")
		return err
	})
}

// SocialButton is a share link for the site.
type SocialButton struct {
	// ShareURL is the page being shared; empty disables the button.
	ShareURL string
	Text     string
}

var _ Mounter = SocialButton{}

// Enabled implements Mounter.
func (s SocialButton) Enabled() bool {
	return s.ShareURL != ""
}

// Mount implements Mounter.
func (s SocialButton) Mount() templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		if !s.Enabled() {
			return nil
		}
		q := url.Values{"url": {s.ShareURL}}
		if s.Text != "" {
			q.Set("text", s.Text)
		}
		href := "https://twitter.com/intent/tweet?" + q.Encode()
		_, err := io.WriteString(w, `<a class="share-button" href="`+templ.EscapeString(href)+`" target="_blank" rel="noopener">Share</a>`+"\n")
		return err
	})
}
