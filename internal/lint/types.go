// Package lint checks a guide corpus for authoring mistakes before a
// build: filename conventions, ordering-prefix anomalies, missing
// titles, malformed front matter and broken relative links. It reports
// problems instead of fixing them; the build pipeline stays tolerant
// and resolves anomalies deterministically, so lint is where authors
// find out what the resolver had to guess about.
package lint

import (
	"fmt"

	"git.home.luguber.info/inful/guidebuilder/internal/corpus"
)

// Severity indicates how serious an issue is.
type Severity int

const (
	// SeverityInfo is for informational messages.
	SeverityInfo Severity = iota
	// SeverityWarning is for issues that should be fixed but don't block.
	SeverityWarning
	// SeverityError is for issues that must be fixed.
	SeverityError
)

// String returns the string representation of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityWarning:
		return "WARNING"
	case SeverityError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Issue represents a single lint finding.
type Issue struct {
	// FilePath is the corpus-relative path of the offending file.
	FilePath string
	// Severity of the issue.
	Severity Severity
	// Rule that produced the issue.
	Rule string
	// Message is a short description of the issue.
	Message string
	// Explanation provides more context about why this is an issue.
	Explanation string
	// Fix describes how to fix the issue, when a concrete fix exists.
	Fix string
	// Line number in the file, when known (0 means the whole file).
	Line int
}

// Result holds the outcome of a lint run.
type Result struct {
	// Issues found during linting.
	Issues []Issue
	// FilesTotal is the number of files checked (pages and assets).
	FilesTotal int
}

// HasErrors returns true if any issue has error severity.
func (r *Result) HasErrors() bool {
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			return true
		}
	}
	return false
}

// HasWarnings returns true if any issue has warning severity.
func (r *Result) HasWarnings() bool {
	for _, issue := range r.Issues {
		if issue.Severity == SeverityWarning {
			return true
		}
	}
	return false
}

// ErrorCount returns the number of error-severity issues.
func (r *Result) ErrorCount() int {
	return r.countBySeverity(SeverityError)
}

// WarningCount returns the number of warning-severity issues.
func (r *Result) WarningCount() int {
	return r.countBySeverity(SeverityWarning)
}

// InfoCount returns the number of info-severity issues.
func (r *Result) InfoCount() int {
	return r.countBySeverity(SeverityInfo)
}

func (r *Result) countBySeverity(severity Severity) int {
	count := 0
	for _, issue := range r.Issues {
		if issue.Severity == severity {
			count++
		}
	}
	return count
}

// Rule is the interface all lint rules implement. Rules see the whole
// scanned corpus so they can reason about sibling files, not just one
// file at a time.
type Rule interface {
	// Name returns the rule identifier used in reports.
	Name() string
	// Check inspects the corpus and returns any issues found.
	Check(c *corpus.Corpus) ([]Issue, error)
}

// Config holds lint configuration.
type Config struct {
	// Quiet suppresses warnings and informational messages, keeping
	// only errors.
	Quiet bool
	// Format selects the output format ("text" or "json").
	Format string
}

// Validate checks the configuration for unsupported values.
func (c Config) Validate() error {
	switch c.Format {
	case "", "text", "json":
		return nil
	default:
		return fmt.Errorf("unknown lint format %q (expected text or json)", c.Format)
	}
}
