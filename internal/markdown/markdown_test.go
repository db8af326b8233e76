package markdown

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRender_BasicMarkdown(t *testing.T) {
	html, err := Render([]byte("# Getting Started\n\nSome *emphasis*.\n"), Options{})
	require.NoError(t, err)
	require.Contains(t, string(html), "<h1 id=\"getting-started\">Getting Started</h1>")
	require.Contains(t, string(html), "<em>emphasis</em>")
}

func TestRender_GFMTable(t *testing.T) {
	src := []byte("| Method | Idempotent |\n|--------|------------|\n| GET | yes |\n")
	html, err := Render(src, Options{})
	require.NoError(t, err)
	require.Contains(t, string(html), "<table>")
	require.Contains(t, string(html), "<td>GET</td>")
}

func TestRender_FencedCodeKeepsLanguageClass(t *testing.T) {
	src := []byte("```json\n{\"id\": 1}\n```\n")
	html, err := Render(src, Options{})
	require.NoError(t, err)
	require.Contains(t, string(html), `<code class="language-json">`)
}

func TestRender_MermaidFenceBecomesPreMermaid(t *testing.T) {
	src := []byte("```mermaid\ngraph TD;\n  A-->B;\n```\n")
	html, err := Render(src, Options{})
	require.NoError(t, err)
	require.Contains(t, string(html), `<pre class="mermaid">`)
	require.Contains(t, string(html), "graph TD;")
	require.NotContains(t, string(html), "language-mermaid")
}

func TestRender_MermaidContentIsEscaped(t *testing.T) {
	src := []byte("```mermaid\ngraph TD;\n  A--><B>;\n```\n")
	html, err := Render(src, Options{})
	require.NoError(t, err)
	require.Contains(t, string(html), "&lt;B&gt;")
}

func TestRender_RawHTMLRespectsUnsafeOption(t *testing.T) {
	src := []byte("<div class=\"note\">hello</div>\n")

	safe, err := Render(src, Options{})
	require.NoError(t, err)
	require.NotContains(t, string(safe), `<div class="note">`)

	unsafe, err := Render(src, Options{Unsafe: true})
	require.NoError(t, err)
	require.Contains(t, string(unsafe), `<div class="note">`)
}

func TestRender_MultipleMermaidBlocks(t *testing.T) {
	src := []byte("```mermaid\ngraph TD;\n```\n\ntext\n\n```mermaid\nsequenceDiagram\n```\n")
	html, err := Render(src, Options{})
	require.NoError(t, err)
	require.Equal(t, 2, strings.Count(string(html), `<pre class="mermaid">`))
}

func TestRender_ResolveLinkRewritesDestinations(t *testing.T) {
	src := []byte("See [errors](02_errors.md) and ![flow](images/flow.png), not [RFC 9110](https://www.rfc-editor.org/rfc/rfc9110).\n")

	resolved := map[string]string{
		"02_errors.md":    "/foundation/errors/",
		"images/flow.png": "/foundation/images/flow.png",
	}
	html, err := Render(src, Options{
		ResolveLink: func(dest string) (string, bool) {
			out, ok := resolved[dest]
			return out, ok
		},
	})
	require.NoError(t, err)
	require.Contains(t, string(html), `<a href="/foundation/errors/">errors</a>`)
	require.Contains(t, string(html), `<img src="/foundation/images/flow.png" alt="flow"`)
	require.Contains(t, string(html), `<a href="https://www.rfc-editor.org/rfc/rfc9110">`)
}

func TestRender_NoResolverLeavesDestinations(t *testing.T) {
	src := []byte("[errors](02_errors.md)\n")
	html, err := Render(src, Options{})
	require.NoError(t, err)
	require.Contains(t, string(html), `<a href="02_errors.md">`)
}
