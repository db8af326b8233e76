// Package markdown wraps Goldmark for guide page rendering and analysis:
// HTML conversion with GFM and mermaid support, heading extraction for
// titles and tables of contents, and link extraction for verification.
package markdown

import (
	"bytes"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	ghtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// Options controls how Markdown is parsed and rendered.
type Options struct {
	// Unsafe allows raw HTML in page bodies to pass through to the rendered
	// output. Guide corpora are trusted first-party content, so builds enable
	// this; analysis paths leave it off.
	Unsafe bool

	// ResolveLink, when set, rewrites link and image destinations during
	// rendering. It receives the authored destination; returning ok=false
	// keeps the destination untouched. Builds use this to map
	// source-relative references onto site routes.
	ResolveLink func(dest string) (string, bool)
}

func newMarkdown(opts Options) goldmark.Markdown {
	rendererOpts := []renderer.Option{}
	if opts.Unsafe {
		rendererOpts = append(rendererOpts, ghtml.WithUnsafe())
	}
	parserOpts := []parser.Option{parser.WithAutoHeadingID()}
	if opts.ResolveLink != nil {
		parserOpts = append(parserOpts, parser.WithASTTransformers(
			util.Prioritized(linkRewriter{resolve: opts.ResolveLink}, 500),
		))
	}
	return goldmark.New(
		goldmark.WithExtensions(extension.GFM, Mermaid{}),
		goldmark.WithParserOptions(parserOpts...),
		goldmark.WithRendererOptions(rendererOpts...),
	)
}

// linkRewriter rewrites link and image destinations through the
// configured resolver after parsing.
type linkRewriter struct {
	resolve func(dest string) (string, bool)
}

func (r linkRewriter) Transform(doc *gmast.Document, _ text.Reader, _ parser.Context) {
	_ = gmast.Walk(doc, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch v := n.(type) {
		case *gmast.Link:
			if dest, ok := r.resolve(string(v.Destination)); ok {
				v.Destination = []byte(dest)
			}
		case *gmast.Image:
			if dest, ok := r.resolve(string(v.Destination)); ok {
				v.Destination = []byte(dest)
			}
		}
		return gmast.WalkContinue, nil
	})
}

// Render converts a Markdown body (frontmatter already removed) to HTML.
func Render(body []byte, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	if err := newMarkdown(opts).Convert(body, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ParseBody parses a Markdown body into a Goldmark AST for analysis.
func ParseBody(body []byte, opts Options) (gmast.Node, error) {
	md := newMarkdown(opts)
	root := md.Parser().Parse(text.NewReader(body))
	return root, nil
}
