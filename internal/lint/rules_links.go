package lint

import (
	"net/url"
	"path"
	"strings"

	"git.home.luguber.info/inful/guidebuilder/internal/corpus"
	"git.home.luguber.info/inful/guidebuilder/internal/markdown"
)

// RelativeLinkRule verifies that relative links and image references
// point at something inside the content tree. Relative destinations are
// rewritten to routes at render time, so a dangling one is guaranteed
// to 404 in the published site.
type RelativeLinkRule struct{}

// Name returns the rule identifier.
func (r *RelativeLinkRule) Name() string {
	return "relative-links"
}

// Check resolves each relative destination against the linking page's
// directory and looks it up among pages, assets, and section
// directories. Absolute and external destinations are out of scope;
// the post-build link verifier covers those.
func (r *RelativeLinkRule) Check(c *corpus.Corpus) ([]Issue, error) {
	pages := make(map[string]bool, len(c.Pages))
	for i := range c.Pages {
		pages[c.Pages[i].RelPath] = true
	}
	assets := make(map[string]bool, len(c.Assets))
	for i := range c.Assets {
		assets[c.Assets[i].RelPath] = true
	}
	dirs := make(map[string]bool)
	for _, d := range c.SectionDirs() {
		dirs[d] = true
	}

	var issues []Issue
	for i := range c.Pages {
		p := &c.Pages[i]
		if p.Body == nil {
			continue
		}
		links, err := markdown.ExtractLinks(p.Body, markdown.Options{})
		if err != nil {
			issues = append(issues, Issue{
				FilePath:    p.RelPath,
				Severity:    SeverityWarning,
				Rule:        r.Name(),
				Message:     "Links could not be analyzed",
				Explanation: err.Error(),
			})
			continue
		}

		srcDir := path.Dir(p.RelPath)
		seen := make(map[string]bool)
		for _, link := range links {
			u, err := url.Parse(link.Destination)
			if err != nil || u.Scheme != "" || u.Host != "" {
				continue
			}
			if u.Path == "" || path.IsAbs(u.Path) {
				continue
			}
			if seen[u.Path] {
				continue
			}
			seen[u.Path] = true

			target := path.Join(srcDir, u.Path)
			if target == ".." || strings.HasPrefix(target, "../") {
				issues = append(issues, Issue{
					FilePath: p.RelPath,
					Severity: SeverityError,
					Rule:     r.Name(),
					Message:  "Relative link escapes the content tree: " + link.Destination,
					Explanation: `The destination resolves to a path above the content root, which
cannot exist in the published site.

Resolved target: ` + target,
					Fix: "Link to a file inside the content tree instead",
				})
				continue
			}

			if target == "." || pages[target] || assets[target] || dirs[target] {
				continue
			}
			issues = append(issues, Issue{
				FilePath: p.RelPath,
				Severity: SeverityError,
				Rule:     r.Name(),
				Message:  "Broken relative link: " + link.Destination,
				Explanation: `No page, asset, or directory matches the destination. The published
page will carry a link that 404s.

Resolved target: ` + target + `
Paths resolve relative to the directory of the linking page.`,
				Fix: "Point the link at an existing file, or create the missing target",
			})
		}
	}
	return issues, nil
}
