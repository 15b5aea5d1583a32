// Package render writes resolved documents as complete HTML pages for
// crawlers.
package render

import (
	"bytes"
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/checkstyle/eclipse-cs/internal/resolver"
)

// Document returns a component that writes doc inside a minimal page: a
// doctype, a head declaring UTF-8, and a body holding every block. Block
// content is written verbatim; headings are escaped.
func Document(doc *resolver.Document) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, "<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n</head>\n<body>\n"); err != nil {
			return err
		}
		for _, b := range doc.Blocks {
			if err := Block(b).Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, "</body>\n</html>\n")
		return err
	})
}

// Block returns a component for one block.
func Block(b resolver.Block) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		if b.Heading != "" {
			if _, err := io.WriteString(w, "<h2>"+templ.EscapeString(b.Heading)+"</h2>\n"); err != nil {
				return err
			}
		}
		if _, err := w.Write(b.Content); err != nil {
			return err
		}
		_, err := io.WriteString(w, "\n")
		return err
	})
}

// Bytes renders doc into memory.
func Bytes(ctx context.Context, doc *resolver.Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := Document(doc).Render(ctx, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
