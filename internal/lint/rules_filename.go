package lint

import (
	"path"
	"regexp"
	"strings"
	"unicode"

	"git.home.luguber.info/inful/guidebuilder/internal/corpus"
)

// FilenameRule validates that file and directory names follow guide
// naming conventions. Route slugs are derived from path segments, so a
// messy segment produces a messy URL for every page beneath it.
type FilenameRule struct{}

// Name returns the rule identifier.
func (r *FilenameRule) Name() string {
	return "filename-conventions"
}

// Check validates every path segment in the corpus. Directory segments
// are checked once even when many files live under them.
func (r *FilenameRule) Check(c *corpus.Corpus) ([]Issue, error) {
	var issues []Issue
	seen := make(map[string]bool)

	check := func(rel string) {
		segments := strings.Split(rel, "/")
		for i, segment := range segments {
			prefix := strings.Join(segments[:i+1], "/")
			if seen[prefix] {
				continue
			}
			seen[prefix] = true
			// Directory findings are attributed to the directory itself,
			// not to whichever file happened to be walked first.
			issues = append(issues, checkSegment(r.Name(), prefix, segment, i < len(segments)-1)...)
		}
	}

	for i := range c.Pages {
		check(c.Pages[i].RelPath)
	}
	for i := range c.Assets {
		check(c.Assets[i].RelPath)
	}
	return issues, nil
}

// checkSegment runs the naming checks against a single path segment.
// isDir marks directory segments; the messages differ slightly because
// directories shape the routes of everything below them.
func checkSegment(rule, rel, segment string, isDir bool) []Issue {
	var issues []Issue
	kind := "Filename"
	if isDir {
		kind = "Directory name"
	}

	if !isDir && hasInvalidDoubleExtension(segment) {
		issues = append(issues, Issue{
			FilePath: rel,
			Severity: SeverityError,
			Rule:     rule,
			Message:  "Invalid double extension detected",
			Explanation: `File has a double extension that looks like a leftover backup or
temporary file. It would be published as a regular asset.

Whitelisted double extensions (allowed):
  • .drawio.png (Draw.io embedded PNG diagrams)
  • .drawio.svg (Draw.io embedded SVG diagrams)

Common problematic patterns:
  • .md.backup, .markdown.old (backup files)
  • .png.tmp, .jpg.bak (temporary files)`,
			Fix: "Remove backup files from the content tree or add them to .gitignore",
		})
		return issues
	}

	if hasUppercase(segment) {
		suggested := strings.ToLower(segment)
		issues = append(issues, Issue{
			FilePath: rel,
			Severity: SeverityError,
			Rule:     rule,
			Message:  kind + " contains uppercase letters",
			Explanation: `Uppercase letters cause case-sensitivity issues across platforms
and the published URL will not match the authored name.

Current:  ` + segment + `
Suggested: ` + suggested + `

Why this matters:
  • Path segments are lowercased when routes are derived
  • Case sensitivity varies by OS (Linux vs macOS/Windows)
  • Cross-references typed with the original casing break on Linux`,
			Fix: "Rename to lowercase: " + suggested,
		})
	}

	if strings.Contains(segment, " ") {
		suggested := suggestSegment(segment)
		issues = append(issues, Issue{
			FilePath: rel,
			Severity: SeverityError,
			Rule:     rule,
			Message:  kind + " contains spaces",
			Explanation: `Spaces create problematic URLs with %20 encoding and break
cross-references.

Current:  ` + segment + `
Suggested: ` + suggested + `

Why this matters:
  • Spaces become hyphens in routes but %20 in literal links
  • Makes links harder to type and share
  • Hyphen-separated names keep authored paths and routes aligned`,
			Fix: "Rename using hyphens: " + suggested,
		})
	}

	if hasSpecialChars(segment) {
		suggested := suggestSegment(segment)
		invalidChars := findSpecialChars(segment)
		issues = append(issues, Issue{
			FilePath: rel,
			Severity: SeverityError,
			Rule:     rule,
			Message:  kind + " contains special characters: " + strings.Join(invalidChars, ", "),
			Explanation: `Special characters are dropped when the route slug is derived and
may cause shell escaping issues.

Current:  ` + segment + `
Suggested: ` + suggested + `

Allowed characters: [a-z0-9-_.]
Invalid characters found: ` + strings.Join(invalidChars, ", "),
			Fix: "Rename to remove special characters: " + suggested,
		})
	}

	// Leading underscores are legal: _index.md names a section index.
	nameWithoutExt := strings.TrimSuffix(segment, path.Ext(segment))
	if strings.HasPrefix(nameWithoutExt, "-") ||
		strings.HasSuffix(nameWithoutExt, "-") || strings.HasSuffix(nameWithoutExt, "_") {
		suggested := suggestSegment(segment)
		issues = append(issues, Issue{
			FilePath: rel,
			Severity: SeverityError,
			Rule:     rule,
			Message:  kind + " has leading or trailing separators",
			Explanation: `Leading or trailing hyphens/underscores create malformed URLs.

Current:  ` + segment + `
Suggested: ` + suggested + `

Examples of problematic URLs:
  • /-drafts/ or /temp_/`,
			Fix: "Rename to remove leading/trailing separators: " + suggested,
		})
	}

	return issues
}

// isWhitelistedDoubleExtension checks if a filename has an allowed
// double extension.
func isWhitelistedDoubleExtension(filename string) bool {
	whitelisted := []string{".drawio.png", ".drawio.svg"}
	lower := strings.ToLower(filename)
	for _, ext := range whitelisted {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// hasInvalidDoubleExtension checks for non-whitelisted double extensions.
func hasInvalidDoubleExtension(filename string) bool {
	if isWhitelistedDoubleExtension(filename) {
		return false
	}

	parts := strings.Split(filename, ".")
	if len(parts) < 3 {
		return false
	}
	secondToLast := "." + parts[len(parts)-2]
	commonExts := []string{".md", ".markdown", ".png", ".jpg", ".jpeg", ".gif", ".svg", ".tmp", ".bak", ".backup", ".old", ".yaml", ".yml", ".json", ".toml"}
	for _, ext := range commonExts {
		if strings.EqualFold(secondToLast, ext) {
			return true
		}
	}
	return false
}

// hasUppercase checks if a segment contains uppercase letters.
func hasUppercase(segment string) bool {
	for _, r := range segment {
		if unicode.IsUpper(r) {
			return true
		}
	}
	return false
}

var validSegmentPattern = regexp.MustCompile(`^[a-z0-9\-_.]+$`)

// hasSpecialChars checks if a segment contains characters outside
// [a-z0-9-_.]. Uppercase letters and spaces are reported separately.
func hasSpecialChars(segment string) bool {
	cleaned := strings.ReplaceAll(strings.ToLower(segment), " ", "")
	if cleaned == "" {
		return false
	}
	return !validSegmentPattern.MatchString(cleaned)
}

// findSpecialChars returns the distinct offending characters in order
// of first appearance.
func findSpecialChars(segment string) []string {
	seen := make(map[rune]bool)
	var chars []string
	for _, r := range segment {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' || r == '.' {
			continue
		}
		if seen[r] {
			continue
		}
		seen[r] = true
		if r == ' ' {
			continue // reported by the spaces check
		}
		chars = append(chars, string(r))
	}
	return chars
}

var (
	invalidSegmentChars = regexp.MustCompile(`[^a-z0-9\-_.]`)
	multiHyphen         = regexp.MustCompile(`-+`)
)

// suggestSegment returns a conforming replacement for a path segment,
// preserving the extension.
func suggestSegment(segment string) string {
	if isWhitelistedDoubleExtension(segment) {
		return strings.ToLower(segment)
	}

	ext := path.Ext(segment)
	name := strings.TrimSuffix(segment, ext)

	// Invalid double extensions keep only the last extension.
	if parts := strings.Split(segment, "."); len(parts) >= 3 {
		name = strings.Join(parts[:len(parts)-1], ".")
		ext = "." + parts[len(parts)-1]
	}

	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, " ", "-")
	name = invalidSegmentChars.ReplaceAllString(name, "")
	name = multiHyphen.ReplaceAllString(name, "-")
	name = strings.TrimLeft(name, "-")
	name = strings.TrimRight(name, "-_")

	if name == "" {
		name = "untitled"
	}
	return name + strings.ToLower(ext)
}
