package lint

import (
	"errors"
	"fmt"

	"git.home.luguber.info/inful/guidebuilder/internal/corpus"
	"git.home.luguber.info/inful/guidebuilder/internal/frontmatter"
)

// FrontmatterRule diagnoses front matter blocks that fail to parse. A
// malformed block aborts the whole build, so lint reports it with more
// context than the build error carries.
type FrontmatterRule struct{}

// Name returns the rule identifier.
func (r *FrontmatterRule) Name() string {
	return "frontmatter"
}

// Check re-parses each page's raw content so the diagnosis does not
// depend on which pages the loader managed to parse.
func (r *FrontmatterRule) Check(c *corpus.Corpus) ([]Issue, error) {
	var issues []Issue
	for i := range c.Pages {
		p := &c.Pages[i]
		if p.Content == nil {
			continue // unreadable pages are reported by the linter itself
		}
		fields, _, _, _, err := frontmatter.Parse(p.Content)
		if err != nil {
			issues = append(issues, r.diagnose(p.RelPath, err))
			continue
		}
		if raw, ok := fields["title"]; ok {
			if _, isString := raw.(string); !isString {
				issues = append(issues, Issue{
					FilePath: p.RelPath,
					Severity: SeverityWarning,
					Rule:     r.Name(),
					Message:  "Front matter title is not a string",
					Explanation: fmt.Sprintf(`The title field parsed as %T, so it is ignored and the title falls
back to the first heading or the file name. Unquoted values like
numbers or dates are the usual cause.`, raw),
					Fix: "Quote the title value, e.g. title: \"2.0 Release Notes\"",
				})
			}
		}
	}
	return issues, nil
}

func (r *FrontmatterRule) diagnose(rel string, err error) Issue {
	if errors.Is(err, frontmatter.ErrMissingClosingDelimiter) {
		return Issue{
			FilePath: rel,
			Severity: SeverityError,
			Rule:     r.Name(),
			Message:  "Front matter block is never closed",
			Explanation: `The file opens with a --- delimiter but no closing --- line follows,
so the whole document is treated as front matter and the build fails.`,
			Fix: "Add a closing --- line after the front matter fields",
		}
	}
	return Issue{
		FilePath: rel,
		Severity: SeverityError,
		Rule:     r.Name(),
		Message:  "Front matter is not valid YAML",
		Explanation: `The block between the --- delimiters failed to parse:

  ` + err.Error(),
		Fix: "Fix the YAML syntax (indentation and unquoted special characters are the usual causes)",
	}
}

// TitleRule warns about pages with no discoverable title. The site
// still builds: the navigation derives a mechanical title from the
// file name, which is rarely what the author wants readers to see.
type TitleRule struct{}

// Name returns the rule identifier.
func (r *TitleRule) Name() string {
	return "page-title"
}

// Check inspects parsed pages only; unparsed ones already carry a
// front matter error.
func (r *TitleRule) Check(c *corpus.Corpus) ([]Issue, error) {
	var issues []Issue
	for i := range c.Pages {
		p := &c.Pages[i]
		if p.Body == nil || p.Title != "" {
			continue
		}
		issues = append(issues, Issue{
			FilePath: p.RelPath,
			Severity: SeverityWarning,
			Rule:     r.Name(),
			Message:  "Page has no title",
			Explanation: `Neither a front matter title nor an opening H1 heading was found.
The navigation falls back to a title derived from the file name.`,
			Fix: "Add a title field to the front matter, or start the page with a # heading",
		})
	}
	return issues, nil
}
