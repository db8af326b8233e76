package site

import (
	"bytes"
	"fmt"
	"html/template"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/guidebuilder/internal/markdown"
	"git.home.luguber.info/inful/guidebuilder/internal/nav"
	"git.home.luguber.info/inful/guidebuilder/internal/version"
)

// pageView is the data handed to the page layout template.
type pageView struct {
	SiteTitle       string
	SiteDescription string
	Banner          string
	Root            string // site root path, always with trailing slash
	Title           string
	Description     string
	Content         template.HTML
	Sidebar         template.HTML
	Breadcrumbs     []crumbView
	TOC             []tocEntry
	Prev            *pagerRef
	Next            *pagerRef
	EditURL         string
	HasMermaid      bool
	Version         string

	// TitleInBody is set when the rendered body opens with its own H1, so
	// the layout must not add a second one.
	TitleInBody bool
}

type crumbView struct {
	Title string
	Href  string
	Last  bool
}

type tocEntry struct {
	Level int
	Text  string
	ID    string
}

type pagerRef struct {
	Title string
	Href  string
}

// rootPath derives the site root path from the configured base URL.
// https://example.com -> "/", https://example.com/guide -> "/guide/".
func (b *Builder) rootPath() string {
	u, err := url.Parse(b.cfg.Site.BaseURL)
	if err != nil {
		return "/"
	}
	p := strings.Trim(u.Path, "/")
	if p == "" {
		return "/"
	}
	return "/" + p + "/"
}

// hrefFor turns a tree route into a servable href under the base URL.
func (b *Builder) hrefFor(route string) string {
	root := b.rootPath()
	return root + strings.TrimPrefix(route, "/")
}

// renderPage renders one navigation node into the staging tree.
func (b *Builder) renderPage(bs *BuildState, node *nav.Node) error {
	var body template.HTML
	var toc []tocEntry
	var titleInBody bool

	if node.IsStub() {
		body = b.stubSectionBody(node)
	} else {
		// Authored corpus content is trusted; raw HTML passes through.
		mdOpts := markdown.Options{
			Unsafe:      true,
			ResolveLink: b.linkResolver(bs.Nav, node),
		}
		html, err := markdown.Render(node.Page.Body, mdOpts)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrRender, node.Page.RelPath, err)
		}
		body = template.HTML(html) // #nosec G203 -- authored site content
		headings, err := markdown.ExtractHeadings(node.Page.Body, mdOpts)
		if err == nil {
			// A leading H1 already carries the page title.
			titleInBody = len(headings) > 0 && headings[0].Level == 1
			for _, h := range headings {
				if h.Level == 2 || h.Level == 3 {
					toc = append(toc, tocEntry{Level: h.Level, Text: h.Text, ID: h.ID})
				}
			}
		}
	}

	view := pageView{
		SiteTitle:       b.cfg.Site.Title,
		SiteDescription: b.cfg.Site.Description,
		Banner:          b.cfg.Site.Banner,
		Root:            b.rootPath(),
		Title:           node.Title,
		Content:         body,
		Sidebar:         b.renderSidebar(bs.Nav, node),
		Breadcrumbs:     b.breadcrumbViews(bs.Nav, node),
		TOC:             toc,
		HasMermaid:      strings.Contains(string(body), `<pre class="mermaid"`),
		Version:         version.Version,
		TitleInBody:     titleInBody,
	}
	if node.Page != nil {
		view.Description = node.Page.Description
		if b.cfg.Site.EditBaseURL != "" {
			view.EditURL = strings.TrimSuffix(b.cfg.Site.EditBaseURL, "/") + "/" + node.Page.RelPath
		}
	}
	if prev := bs.Nav.Prev(node); prev != nil {
		view.Prev = &pagerRef{Title: b.pagerTitle(prev), Href: b.hrefFor(prev.Route)}
	}
	if next := bs.Nav.Next(node); next != nil {
		view.Next = &pagerRef{Title: b.pagerTitle(next), Href: b.hrefFor(next.Route)}
	}

	return b.writePage(node.Route, "page", view)
}

// linkResolver maps source-relative destinations in a page's markdown
// onto site routes: `02_errors.md` becomes the target page's clean URL,
// `images/flow.png` becomes the asset's prefix-stripped location.
// Absolute URLs, anchors, and anything that escapes the corpus pass
// through untouched; dangling page references are left as written so
// link verification reports them against the rendered tree.
func (b *Builder) linkResolver(tree *nav.Tree, node *nav.Node) func(string) (string, bool) {
	src := node.SourcePath()
	if src == "" {
		return nil
	}
	srcDir := path.Dir(src)

	return func(dest string) (string, bool) {
		u, err := url.Parse(dest)
		if err != nil || u.Scheme != "" || u.Host != "" || u.Path == "" || path.IsAbs(u.Path) {
			return "", false
		}
		target := path.Join(srcDir, u.Path)
		if target == ".." || strings.HasPrefix(target, "../") {
			return "", false
		}
		suffix := ""
		if u.RawQuery != "" {
			suffix += "?" + u.RawQuery
		}
		if u.Fragment != "" {
			suffix += "#" + u.Fragment
		}
		if strings.EqualFold(path.Ext(target), ".md") {
			if t := tree.BySource(target); t != nil {
				return b.hrefFor(t.Route) + suffix, true
			}
			return "", false
		}
		return b.rootPath() + tree.AssetRoute(target) + suffix, true
	}
}

// writePage executes a layout template into <stage>/<route>/index.html.
func (b *Builder) writePage(route, kind string, view any) error {
	var buf bytes.Buffer
	if err := b.templates.Lookup(kind).Execute(&buf, view); err != nil {
		return fmt.Errorf("execute %s template: %w", kind, err)
	}
	rel := strings.Trim(route, "/")
	dir := filepath.Join(b.stageDir, filepath.FromSlash(rel))
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create page dir: %w", err)
	}
	// #nosec G306 -- rendered pages are public site content
	if err := os.WriteFile(filepath.Join(dir, "index.html"), buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write page: %w", err)
	}
	return nil
}

// stubSectionBody synthesizes a listing body for a section without an
// authored index page: its children in navigation order.
func (b *Builder) stubSectionBody(node *nav.Node) template.HTML {
	var sb strings.Builder
	sb.WriteString(`<ul class="section-list">` + "\n")
	for _, child := range node.Children {
		sb.WriteString(`<li><a href="`)
		sb.WriteString(template.HTMLEscapeString(b.hrefFor(child.Route)))
		sb.WriteString(`">`)
		sb.WriteString(template.HTMLEscapeString(child.Title))
		sb.WriteString(`</a>`)
		if child.Page != nil && child.Page.Description != "" {
			sb.WriteString(` <span class="desc">`)
			sb.WriteString(template.HTMLEscapeString(child.Page.Description))
			sb.WriteString(`</span>`)
		}
		sb.WriteString("</li>\n")
	}
	sb.WriteString("</ul>\n")
	return template.HTML(sb.String()) // #nosec G203 -- all dynamic parts escaped above
}

// renderSidebar produces the full navigation tree as nested lists with
// the active page marked.
func (b *Builder) renderSidebar(tree *nav.Tree, active *nav.Node) template.HTML {
	var sb strings.Builder
	b.renderSidebarLevel(&sb, tree.Root.Children, active)
	return template.HTML(sb.String()) // #nosec G203 -- all dynamic parts escaped below
}

func (b *Builder) renderSidebarLevel(sb *strings.Builder, nodes []*nav.Node, active *nav.Node) {
	if len(nodes) == 0 {
		return
	}
	sb.WriteString("<ul>\n")
	for _, n := range nodes {
		sb.WriteString("<li>")
		class := ""
		if n == active {
			class = ` class="active"`
		}
		fmt.Fprintf(sb, `<a%s href="%s">%s</a>`, class,
			template.HTMLEscapeString(b.hrefFor(n.Route)),
			template.HTMLEscapeString(n.Title))
		if n.IsSection {
			b.renderSidebarLevel(sb, n.Children, active)
		}
		sb.WriteString("</li>\n")
	}
	sb.WriteString("</ul>\n")
}

// pagerTitle labels a prev/next neighbor. The root node has no derived
// title of its own, so it appears as the site title, matching breadcrumbs.
func (b *Builder) pagerTitle(node *nav.Node) string {
	if node.Parent == nil {
		return b.cfg.Site.Title
	}
	return node.Title
}

// breadcrumbViews maps the node's ancestry onto template data. The root
// node appears as the site title.
func (b *Builder) breadcrumbViews(tree *nav.Tree, node *nav.Node) []crumbView {
	chain := tree.Breadcrumbs(node)
	if len(chain) == 0 {
		return nil
	}
	views := make([]crumbView, 0, len(chain))
	for i, n := range chain {
		title := n.Title
		if n.Parent == nil {
			title = b.cfg.Site.Title
		}
		views = append(views, crumbView{
			Title: title,
			Href:  b.hrefFor(n.Route),
			Last:  i == len(chain)-1,
		})
	}
	return views
}
