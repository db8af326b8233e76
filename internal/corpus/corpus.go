// Package corpus discovers and loads the guide content tree: Markdown pages
// named by the numeric ordering convention, their frontmatter, and the static
// assets that travel with them.
package corpus

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"sort"
	"strings"

	cerrors "git.home.luguber.info/inful/guidebuilder/internal/corpus/errors"
	"git.home.luguber.info/inful/guidebuilder/internal/frontmatter"
	"git.home.luguber.info/inful/guidebuilder/internal/markdown"
)

// Page is one discovered Markdown guide page.
type Page struct {
	AbsPath        string            // absolute path on disk
	RelPath        string            // slash-separated path relative to the content root
	Section        string            // slash-separated parent directory, "" at the root
	Name           string            // file name without extension
	IsSectionIndex bool              // the directory's own page (page.md / index.md / _index.md)
	Content        []byte            // raw bytes, loaded on demand
	Fields         map[string]any    // parsed frontmatter
	Body           []byte            // content with frontmatter removed
	Style          frontmatter.Style // newline style for stable rewriting
	Title          string            // frontmatter title, else first H1, else ""
	Description    string            // frontmatter description
	Fingerprint    string            // sha256 of raw content

	loaded bool
	parsed bool
}

// Asset is a non-Markdown file carried through to the generated site.
type Asset struct {
	AbsPath string
	RelPath string
}

// Corpus is the discovered content tree.
type Corpus struct {
	Root   string // absolute content root
	Pages  []Page
	Assets []Asset
}

// Load reads the page's raw content and computes its fingerprint. Calling
// Load on an already-loaded page is a no-op.
func (p *Page) Load() error {
	if p.loaded {
		return nil
	}

	content, err := os.ReadFile(p.AbsPath)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", cerrors.ErrFileReadFailed, p.AbsPath, err)
	}

	sum := sha256.Sum256(content)
	p.Content = content
	p.Fingerprint = hex.EncodeToString(sum[:])
	p.loaded = true
	return nil
}

// Parse splits frontmatter from the loaded content and resolves title and
// description. Title resolution: frontmatter `title`, else the body's first
// H1, else empty (the nav layer derives a final fallback from the path).
func (p *Page) Parse() error {
	if p.parsed {
		return nil
	}
	if err := p.Load(); err != nil {
		return err
	}

	fields, body, _, style, err := frontmatter.Parse(p.Content)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", cerrors.ErrFrontmatterInvalid, p.RelPath, err)
	}
	p.Fields = fields
	p.Body = body
	p.Style = style

	if t, ok := fields["title"].(string); ok && t != "" {
		p.Title = t
	} else {
		h1, err := markdown.FirstH1(body, markdown.Options{})
		if err != nil {
			return fmt.Errorf("extract title from %s: %w", p.RelPath, err)
		}
		p.Title = h1
	}

	if d, ok := fields["description"].(string); ok {
		p.Description = d
	}

	p.parsed = true
	return nil
}

// LoadAll loads and parses every page in the corpus. The context is checked
// between pages so large corpora stay cancelable.
func (c *Corpus) LoadAll(ctx context.Context) error {
	for i := range c.Pages {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := c.Pages[i].Parse(); err != nil {
			return err
		}
	}
	return nil
}

// PageByRelPath returns the page with the given root-relative path, or nil.
func (c *Corpus) PageByRelPath(rel string) *Page {
	for i := range c.Pages {
		if c.Pages[i].RelPath == rel {
			return &c.Pages[i]
		}
	}
	return nil
}

// Fingerprint computes a deterministic hash over the whole corpus: page
// paths and content fingerprints plus asset paths. The daemon uses it to
// skip rebuilds when a sync produced no content change. Pages must be
// loaded first.
func (c *Corpus) FingerprintAll() string {
	entries := make([]string, 0, len(c.Pages)+len(c.Assets))
	for i := range c.Pages {
		entries = append(entries, c.Pages[i].RelPath+"|"+c.Pages[i].Fingerprint)
	}
	for _, a := range c.Assets {
		entries = append(entries, "asset|"+a.RelPath)
	}
	sort.Strings(entries)

	h := sha256.New()
	for _, e := range entries {
		h.Write([]byte(e))
		h.Write([]byte("\n"))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// SectionDirs returns the sorted set of directories (root-relative) that
// contain at least one page, including intermediate directories. The root is
// represented as "".
func (c *Corpus) SectionDirs() []string {
	seen := map[string]struct{}{"": {}}
	for i := range c.Pages {
		dir := c.Pages[i].Section
		for dir != "" {
			seen[dir] = struct{}{}
			idx := strings.LastIndex(dir, "/")
			if idx < 0 {
				break
			}
			dir = dir[:idx]
		}
	}

	dirs := make([]string, 0, len(seen))
	for d := range seen {
		dirs = append(dirs, d)
	}
	sort.Strings(dirs)
	return dirs
}
