package markdown

import (
	"sort"
	"strings"

	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

type LinkKind string

const (
	LinkKindInline              LinkKind = "inline"
	LinkKindImage               LinkKind = "image"
	LinkKindAuto                LinkKind = "auto"
	LinkKindReferenceDefinition LinkKind = "reference_definition"
)

type Link struct {
	Kind        LinkKind
	Destination string
}

// ExtractLinks parses a Markdown body and extracts link-like constructs.
//
// This is an analysis API; it does not attempt to re-render Markdown.
func ExtractLinks(body []byte, opts Options) ([]Link, error) {
	md := newMarkdown(opts)
	ctx := parser.NewContext()
	root := md.Parser().Parse(text.NewReader(body), parser.WithContext(ctx))

	links := make([]Link, 0)
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *gmast.AutoLink:
			links = append(links, Link{Kind: LinkKindAuto, Destination: string(node.URL(body))})
		case *gmast.Image:
			links = append(links, Link{Kind: LinkKindImage, Destination: string(node.Destination)})
		case *gmast.Link:
			// Reference-style links resolve to Link nodes with a Destination.
			links = append(links, Link{Kind: LinkKindInline, Destination: string(node.Destination)})
		}
		return gmast.WalkContinue, nil
	})

	// Reference definitions live in the parse context, not the AST.
	refs := ctx.References()
	sort.Slice(refs, func(i, j int) bool {
		return string(refs[i].Label()) < string(refs[j].Label())
	})
	for _, ref := range refs {
		links = append(links, Link{Kind: LinkKindReferenceDefinition, Destination: string(ref.Destination())})
	}

	// CommonMark drops destinations containing unescaped spaces. Authors write
	// them anyway, and the lint rules need to see them, so add a best-effort
	// permissive pass.
	links = append(links, extractPermissiveLinks(body)...)

	return links, nil
}

// extractPermissiveLinks scans line-by-line for inline and image links whose
// destinations contain whitespace, skipping fenced/indented code and inline
// code spans.
func extractPermissiveLinks(body []byte) []Link {
	lines := strings.Split(string(body), "\n")

	inCodeBlock := false
	activeFence := ""

	out := make([]Link, 0)
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			inCodeBlock, activeFence = toggleFence(inCodeBlock, activeFence, "```")
			continue
		}
		if strings.HasPrefix(trimmed, "~~~") {
			inCodeBlock, activeFence = toggleFence(inCodeBlock, activeFence, "~~~")
			continue
		}
		if inCodeBlock || strings.HasPrefix(line, "    ") || strings.HasPrefix(line, "\t") {
			continue
		}

		clean := stripInlineCodeSpans(line)

		for i := 0; i+2 < len(clean); i++ {
			if clean[i] != '!' || clean[i+1] != '[' {
				continue
			}
			if target, ok := inlineTargetAfterBracket(clean, i+1); ok && containsWhitespace(target) {
				out = append(out, Link{Kind: LinkKindImage, Destination: target})
			}
		}
		for i := 0; i+1 < len(clean); i++ {
			if clean[i] != ']' || clean[i+1] != '(' {
				continue
			}
			if !hasLinkTextBefore(clean, i) {
				continue
			}
			if target, ok := targetAt(clean, i+2); ok && containsWhitespace(target) {
				out = append(out, Link{Kind: LinkKindInline, Destination: target})
			}
		}
	}

	return out
}

func toggleFence(inCodeBlock bool, activeFence, fence string) (bool, string) {
	if !inCodeBlock {
		return true, fence
	}
	if activeFence == fence {
		return false, ""
	}
	return inCodeBlock, activeFence
}

func stripInlineCodeSpans(s string) string {
	if !strings.Contains(s, "`") {
		return s
	}

	var out strings.Builder
	out.Grow(len(s))

	for i := 0; i < len(s); {
		if s[i] != '`' {
			out.WriteByte(s[i])
			i++
			continue
		}

		run := 1
		for i+run < len(s) && s[i+run] == '`' {
			run++
		}

		marker := strings.Repeat("`", run)
		closeRel := strings.Index(s[i+run:], marker)
		if closeRel == -1 {
			// Unclosed code span; keep the backticks and continue.
			out.WriteString(marker)
			i += run
			continue
		}

		// Skip the entire code span, including delimiters.
		i = i + run + closeRel + run
	}

	return out.String()
}

// inlineTargetAfterBracket extracts the (...) destination that follows the
// [...] starting at openBracket.
func inlineTargetAfterBracket(line string, openBracket int) (string, bool) {
	closeBracket := strings.Index(line[openBracket+1:], "]")
	if closeBracket == -1 {
		return "", false
	}
	closeBracket += openBracket + 1

	if closeBracket+1 >= len(line) || line[closeBracket+1] != '(' {
		return "", false
	}
	return targetAt(line, closeBracket+2)
}

// targetAt extracts the destination of a link whose "(" content starts at pos.
func targetAt(line string, pos int) (string, bool) {
	end := strings.Index(line[pos:], ")")
	if end == -1 {
		return "", false
	}
	return line[pos : pos+end], true
}

// hasLinkTextBefore reports whether "](" at closeBracket is preceded by a
// plain link opener (not an image).
func hasLinkTextBefore(line string, closeBracket int) bool {
	for j := closeBracket - 1; j >= 0; j-- {
		if line[j] == '[' {
			return j == 0 || line[j-1] != '!'
		}
	}
	return false
}

func containsWhitespace(s string) bool {
	return strings.ContainsAny(s, " \t")
}
