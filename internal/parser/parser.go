// Package parser extracts the title, visible text and fragment links from
// HTML template partials.
package parser

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// FragmentPrefix is the hash prefix the browser navigator uses for in-app
// links ("#!/faq").
const FragmentPrefix = "#!"

// Result holds the output of parsing one partial.
type Result struct {
	Title string
	Text  string
	Links []string
}

// Parse walks the HTML fragment in data. Partials are not full documents, so
// they are parsed in the context of a <body> element.
func Parse(data []byte) (*Result, error) {
	ctx := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(bytes.NewReader(data), ctx)
	if err != nil {
		return nil, err
	}

	w := &walker{seen: map[string]struct{}{}}
	for _, n := range nodes {
		w.walk(n)
	}
	return &Result{
		Title: strings.TrimSpace(w.title),
		Text:  strings.Join(strings.Fields(w.text.String()), " "),
		Links: w.links,
	}, nil
}

type walker struct {
	title string
	text  strings.Builder
	links []string
	seen  map[string]struct{}
}

func (w *walker) walk(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		w.text.WriteString(n.Data)
		w.text.WriteByte(' ')
	case html.ElementNode:
		switch n.DataAtom {
		case atom.Script, atom.Style:
			return
		case atom.H1, atom.H2, atom.H3:
			if w.title == "" {
				w.title = textOf(n)
			}
		case atom.A:
			w.link(attr(n, "href"))
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walk(c)
	}
}

func (w *walker) link(href string) {
	target, ok := FragmentFromHref(href)
	if !ok {
		return
	}
	if _, dup := w.seen[target]; dup {
		return
	}
	w.seen[target] = struct{}{}
	w.links = append(w.links, target)
}

// FragmentFromHref returns the fragment named by an in-app link such as
// "#!/faq" or "/#!/install". Other links report false.
func FragmentFromHref(href string) (string, bool) {
	i := strings.Index(href, FragmentPrefix)
	if i < 0 {
		return "", false
	}
	target := href[i+len(FragmentPrefix):]
	if j := strings.IndexAny(target, "?#"); j >= 0 {
		target = target[:j]
	}
	if !strings.HasPrefix(target, "/") {
		return "", false
	}
	return target, true
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textOf(n *html.Node) string {
	var b strings.Builder
	var rec func(*html.Node)
	rec = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			rec(c)
		}
	}
	rec(n)
	return strings.Join(strings.Fields(b.String()), " ")
}
