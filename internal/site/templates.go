package site

import (
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/guidebuilder/internal/logfields"
)

// templateKinds enumerates the layout templates the builder renders with.
var templateKinds = []string{"page", "404"}

var embeddedTemplates = map[string]string{
	"page": pageTemplate,
	"404":  notFoundTemplate,
}

// TemplateSet holds the parsed layout templates for one build together
// with the source bookkeeping surfaced in the build report.
type TemplateSet struct {
	templates map[string]*template.Template
	usage     map[string]TemplateInfo
}

// loadTemplates parses all layout templates, preferring file overrides
// from templateDir (empty means embedded only).
//
// Search order per kind (first hit wins):
//  1. <templateDir>/<kind>.html.tmpl
//  2. <templateDir>/<kind>.tmpl
//  3. embedded default
func loadTemplates(templateDir string) (*TemplateSet, error) {
	ts := &TemplateSet{
		templates: make(map[string]*template.Template, len(templateKinds)),
		usage:     make(map[string]TemplateInfo, len(templateKinds)),
	}
	for _, kind := range templateKinds {
		raw, info := resolveTemplateSource(templateDir, kind)
		tpl, err := template.New(kind).Parse(raw)
		if err != nil {
			if info.Source == "file" {
				return nil, fmt.Errorf("parse template override %s: %w", info.Path, err)
			}
			return nil, fmt.Errorf("parse embedded template %s: %w", kind, err)
		}
		ts.templates[kind] = tpl
		ts.usage[kind] = info
	}
	return ts, nil
}

func resolveTemplateSource(templateDir, kind string) (string, TemplateInfo) {
	if templateDir != "" {
		candidates := []string{
			filepath.Join(templateDir, kind+".html.tmpl"),
			filepath.Join(templateDir, kind+".tmpl"),
		}
		for _, p := range candidates {
			// #nosec G304 -- candidate paths derive from the configured template dir
			b, err := os.ReadFile(p)
			if err == nil && strings.TrimSpace(string(b)) != "" {
				slog.Debug("loaded template override", "kind", kind, logfields.Path(p))
				return string(b), TemplateInfo{Source: "file", Path: p}
			}
		}
	}
	return embeddedTemplates[kind], TemplateInfo{Source: "embedded"}
}

// Lookup returns the parsed template for a kind; missing kinds are a
// programmer error.
func (ts *TemplateSet) Lookup(kind string) *template.Template {
	tpl, ok := ts.templates[kind]
	if !ok {
		panic(fmt.Sprintf("unknown layout template kind %q", kind))
	}
	return tpl
}

// Usage reports which source served each template kind.
func (ts *TemplateSet) Usage() map[string]TemplateInfo {
	out := make(map[string]TemplateInfo, len(ts.usage))
	for k, v := range ts.usage {
		out[k] = v
	}
	return out
}
