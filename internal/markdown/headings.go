package markdown

import (
	"strings"

	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// Heading is a document heading with its auto-generated anchor ID.
type Heading struct {
	Level int
	Text  string
	ID    string
}

// ExtractHeadings parses a Markdown body and returns its headings in document
// order. IDs match the anchors the renderer emits for the same body.
func ExtractHeadings(body []byte, opts Options) ([]Heading, error) {
	md := newMarkdown(opts)
	root := md.Parser().Parse(text.NewReader(body), parser.WithContext(parser.NewContext()))

	headings := make([]Heading, 0)
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		h, ok := n.(*gmast.Heading)
		if !ok {
			return gmast.WalkContinue, nil
		}

		id := ""
		if v, found := h.AttributeString("id"); found {
			if b, isBytes := v.([]byte); isBytes {
				id = string(b)
			}
		}
		headings = append(headings, Heading{
			Level: h.Level,
			Text:  nodeText(h, body),
			ID:    id,
		})
		return gmast.WalkSkipChildren, nil
	})
	return headings, nil
}

// FirstH1 returns the text of the first level-1 heading, or "" if the body
// has none.
func FirstH1(body []byte, opts Options) (string, error) {
	headings, err := ExtractHeadings(body, opts)
	if err != nil {
		return "", err
	}
	for _, h := range headings {
		if h.Level == 1 {
			return h.Text, nil
		}
	}
	return "", nil
}

func nodeText(n gmast.Node, source []byte) string {
	var sb strings.Builder
	_ = gmast.Walk(n, func(c gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *gmast.Text:
			sb.Write(t.Segment.Value(source))
		case *gmast.String:
			sb.Write(t.Value)
		}
		return gmast.WalkContinue, nil
	})
	return sb.String()
}
