package lint

import (
	"context"
	"fmt"
	"sort"

	"git.home.luguber.info/inful/guidebuilder/internal/corpus"
)

// Linter runs lint rules over a guide corpus.
type Linter struct {
	config Config
	rules  []Rule
}

// New creates a linter with the default rule set.
func New(config Config) *Linter {
	return &Linter{
		config: config,
		rules: []Rule{
			&FilenameRule{},
			&OrderPrefixRule{},
			&SiblingPrefixRule{},
			&RouteCollisionRule{},
			&FrontmatterRule{},
			&TitleRule{},
			&RelativeLinkRule{},
		},
	}
}

// NewWithRules creates a linter with a custom rule set.
func NewWithRules(config Config, rules []Rule) *Linter {
	return &Linter{config: config, rules: rules}
}

// LintPath scans the content tree rooted at root and runs all rules
// against it. Pages that cannot be read or parsed are reported as
// issues rather than aborting the run, so one broken file does not
// hide findings in the rest of the corpus.
func (l *Linter) LintPath(ctx context.Context, root string) (*Result, error) {
	c, err := corpus.Scan(ctx, root)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}

	result := &Result{FilesTotal: len(c.Pages) + len(c.Assets)}

	for i := range c.Pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p := &c.Pages[i]
		if err := p.Load(); err != nil {
			l.record(result, Issue{
				FilePath:    p.RelPath,
				Severity:    SeverityError,
				Rule:        "file-access",
				Message:     "file could not be read",
				Explanation: err.Error(),
			})
			continue
		}
		// Parse failures are reported by the frontmatter rule with a
		// proper diagnosis; here we only make sure every readable page
		// has been given the chance to parse.
		_ = p.Parse()
	}

	for _, rule := range l.rules {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		issues, err := rule.Check(c)
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", rule.Name(), err)
		}
		for _, issue := range issues {
			l.record(result, issue)
		}
	}

	sortIssues(result.Issues)
	return result, nil
}

func (l *Linter) record(result *Result, issue Issue) {
	if l.config.Quiet && issue.Severity != SeverityError {
		return
	}
	result.Issues = append(result.Issues, issue)
}

// sortIssues orders issues by file, then line, then rule name so the
// report is stable across runs.
func sortIssues(issues []Issue) {
	sort.SliceStable(issues, func(i, j int) bool {
		if issues[i].FilePath != issues[j].FilePath {
			return issues[i].FilePath < issues[j].FilePath
		}
		if issues[i].Line != issues[j].Line {
			return issues[i].Line < issues[j].Line
		}
		return issues[i].Rule < issues[j].Rule
	})
}
