package site

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"git.home.luguber.info/inful/guidebuilder/internal/nav"
	"git.home.luguber.info/inful/guidebuilder/internal/version"
)

// stageIndexes writes the generated site artifacts that are not pages:
// the client-side search index, the sitemap, and the 404 page.
func stageIndexes(_ context.Context, bs *BuildState) error {
	b := bs.Builder
	if bs.Nav == nil {
		return NewFatalStageError(StageIndexes, fmt.Errorf("navigation not resolved"))
	}
	if err := b.writeSearchIndex(bs.Nav); err != nil {
		return NewFatalStageError(StageIndexes, err)
	}
	if err := b.writeSitemap(bs.Nav); err != nil {
		return NewFatalStageError(StageIndexes, err)
	}
	if err := b.writeNotFoundPage(); err != nil {
		return NewFatalStageError(StageIndexes, err)
	}
	return nil
}

// searchIndex is the document consumed by static/search.js.
type searchIndex struct {
	Generator string            `json:"generator"`
	Generated time.Time         `json:"generated"`
	Pages     []searchIndexPage `json:"pages"`
}

type searchIndexPage struct {
	Route   string `json:"route"`
	Title   string `json:"title"`
	Section string `json:"section,omitempty"`
	Text    string `json:"text,omitempty"`
}

func (b *Builder) writeSearchIndex(tree *nav.Tree) error {
	idx := searchIndex{
		Generator: "guidebuilder " + version.Version,
		Generated: time.Now().UTC(),
		Pages:     make([]searchIndexPage, 0, len(tree.Ordered())),
	}
	for _, node := range tree.Ordered() {
		entry := searchIndexPage{
			Route: b.hrefFor(node.Route),
			Title: node.Title,
		}
		if node.Parent != nil && node.Parent.Parent != nil {
			entry.Section = node.Parent.Title
		}
		if node.Page != nil {
			entry.Text = plainExcerpt(node.Page.Body, 240)
		}
		idx.Pages = append(idx.Pages, entry)
	}
	data, err := json.Marshal(idx)
	if err != nil {
		return fmt.Errorf("marshal search index: %w", err)
	}
	// #nosec G306 -- search index is public site content
	if err := os.WriteFile(filepath.Join(b.stageDir, "search-index.json"), data, 0o644); err != nil {
		return fmt.Errorf("write search index: %w", err)
	}
	return nil
}

// plainExcerpt reduces a markdown body to a short plain-text snippet for
// the search index: fences dropped, inline markers stripped, whitespace
// collapsed.
func plainExcerpt(body []byte, limit int) string {
	var sb strings.Builder
	inFence := false
	for _, line := range strings.Split(string(body), "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			inFence = !inFence
			continue
		}
		if inFence || trimmed == "" {
			continue
		}
		trimmed = strings.TrimLeft(trimmed, "#>- ")
		trimmed = strings.NewReplacer("**", "", "`", "", "*", "").Replace(trimmed)
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(trimmed)
		if sb.Len() >= limit {
			break
		}
	}
	out := sb.String()
	if len(out) > limit {
		out = out[:limit]
		if i := strings.LastIndexByte(out, ' '); i > 0 {
			out = out[:i]
		}
	}
	return out
}

// sitemapURLSet is the minimal sitemap.org schema subset.
type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

func (b *Builder) writeSitemap(tree *nav.Tree) error {
	base := strings.TrimSuffix(b.cfg.Site.BaseURL, "/")
	now := time.Now().UTC().Format("2006-01-02")
	set := sitemapURLSet{XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9"}
	for _, node := range tree.Ordered() {
		set.URLs = append(set.URLs, sitemapURL{Loc: base + node.Route, LastMod: now})
	}
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(set); err != nil {
		return fmt.Errorf("encode sitemap: %w", err)
	}
	buf.WriteByte('\n')
	// #nosec G306 -- sitemap is public site content
	if err := os.WriteFile(filepath.Join(b.stageDir, "sitemap.xml"), buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write sitemap: %w", err)
	}
	return nil
}

func (b *Builder) writeNotFoundPage() error {
	view := struct {
		SiteTitle string
		Root      string
	}{
		SiteTitle: b.cfg.Site.Title,
		Root:      b.rootPath(),
	}
	var buf bytes.Buffer
	if err := b.templates.Lookup("404").Execute(&buf, view); err != nil {
		return fmt.Errorf("execute 404 template: %w", err)
	}
	// #nosec G306 -- 404 page is public site content
	if err := os.WriteFile(filepath.Join(b.stageDir, "404.html"), buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write 404 page: %w", err)
	}
	return nil
}
