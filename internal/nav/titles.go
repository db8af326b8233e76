package nav

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DeriveTitle turns a prefix-stripped segment name into a display title:
// separators become spaces and words are title-cased, so
// "getting-started" renders as "Getting Started".
func DeriveTitle(name string) string {
	cleaned := strings.NewReplacer("-", " ", "_", " ").Replace(name)
	cleaned = strings.Join(strings.Fields(cleaned), " ")
	if cleaned == "" {
		return name
	}
	return cases.Title(language.English).String(cleaned)
}

// Slug exposes the route slug derivation for callers that need to reason
// about collisions the same way route computation does.
func Slug(s string) string { return slugify(s) }

// slugify lowercases a segment into a URL-safe slug: spaces collapse to
// hyphens, underscores and dots survive, anything else non-alphanumeric is
// dropped.
func slugify(s string) string {
	s = strings.ToLower(s)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('-')
		case r == '_' || r == '-' || r == '.':
			b.WriteRune(r)
		}
	}

	out := strings.Trim(b.String(), "-")
	for strings.Contains(out, "--") {
		out = strings.ReplaceAll(out, "--", "-")
	}
	if out == "" {
		return "untitled"
	}
	return out
}
