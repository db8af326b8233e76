package lint

import (
	"fmt"
	"sort"
	"strings"

	"git.home.luguber.info/inful/guidebuilder/internal/corpus"
	"git.home.luguber.info/inful/guidebuilder/internal/nav"
)

// OrderPrefixRule flags ordering-prefix anomalies among siblings:
// duplicate numbers and prefixes with nothing after the separator.
// The resolver handles both deterministically, but the resulting order
// is rarely what the author meant.
type OrderPrefixRule struct{}

// Name returns the rule identifier.
func (r *OrderPrefixRule) Name() string {
	return "order-prefix"
}

// Check walks every sibling group in the resolved navigation tree.
func (r *OrderPrefixRule) Check(c *corpus.Corpus) ([]Issue, error) {
	var issues []Issue
	walkSiblingGroups(nav.BuildTree(c, nav.Options{}), func(dir string, children []*nav.Node) {
		byNumber := make(map[int][]*nav.Node)
		for _, child := range children {
			p := nav.ParsePrefix(child.Segment)
			if !p.Present {
				continue
			}
			byNumber[p.Number] = append(byNumber[p.Number], child)

			if p.Name == "" {
				issues = append(issues, Issue{
					FilePath: nodeFilePath(child, dir),
					Severity: SeverityWarning,
					Rule:     r.Name(),
					Message:  "Ordering prefix has no name",
					Explanation: `The segment is only a number and a separator, so after the prefix
is stripped nothing remains and the route falls back to "untitled".

Current: ` + child.Segment,
					Fix: "Add a name after the prefix, e.g. " + child.Segment + "overview",
				})
			}
		}

		numbers := make([]int, 0, len(byNumber))
		for n := range byNumber {
			numbers = append(numbers, n)
		}
		sort.Ints(numbers)

		for _, n := range numbers {
			group := byNumber[n]
			if len(group) < 2 {
				continue
			}
			segments := make([]string, len(group))
			for i, node := range group {
				segments[i] = node.Segment
			}
			for _, node := range group {
				issues = append(issues, Issue{
					FilePath: nodeFilePath(node, dir),
					Severity: SeverityWarning,
					Rule:     r.Name(),
					Message:  fmt.Sprintf("Duplicate ordering prefix %d among siblings", n),
					Explanation: fmt.Sprintf(`Several siblings share the same ordering number, so their relative
order falls back to name comparison.

Siblings with prefix %d: %s
Resolved order: ties sort by full segment name, ascending.`, n, strings.Join(segments, ", ")),
					Fix: "Renumber so each sibling carries a distinct prefix",
				})
			}
		}
	})
	return issues, nil
}

// SiblingPrefixRule flags unprefixed files and directories that sit in
// a sibling group where others carry ordering prefixes. Unprefixed
// siblings always sort after the prefixed ones, which surprises authors
// who expected alphabetical interleaving.
type SiblingPrefixRule struct{}

// Name returns the rule identifier.
func (r *SiblingPrefixRule) Name() string {
	return "sibling-prefix"
}

// Check reports each unprefixed sibling in a mixed group.
func (r *SiblingPrefixRule) Check(c *corpus.Corpus) ([]Issue, error) {
	var issues []Issue
	walkSiblingGroups(nav.BuildTree(c, nav.Options{}), func(dir string, children []*nav.Node) {
		prefixed := 0
		var unprefixed []*nav.Node
		for _, child := range children {
			if nav.ParsePrefix(child.Segment).Present {
				prefixed++
			} else {
				unprefixed = append(unprefixed, child)
			}
		}
		if prefixed == 0 || len(unprefixed) == 0 {
			return
		}
		for _, node := range unprefixed {
			issues = append(issues, Issue{
				FilePath: nodeFilePath(node, dir),
				Severity: SeverityInfo,
				Rule:     r.Name(),
				Message:  "Unprefixed entry among prefixed siblings",
				Explanation: `Siblings in this directory carry numeric ordering prefixes, but this
entry does not. It will be placed after every prefixed sibling, in
name order.

Current: ` + node.Segment,
				Fix: "Add an ordering prefix (e.g. 10_" + node.Segment + ") to give it an explicit position",
			})
		}
	})
	return issues, nil
}

// RouteCollisionRule flags siblings whose segments strip to the same
// route slug, e.g. 01_intro and 02_intro. The resolver keeps the site
// buildable by suffixing the later sibling with its raw segment slug,
// which produces an ugly, unstable URL.
type RouteCollisionRule struct{}

// Name returns the rule identifier.
func (r *RouteCollisionRule) Name() string {
	return "route-collision"
}

// Check groups siblings by their prefix-stripped slug.
func (r *RouteCollisionRule) Check(c *corpus.Corpus) ([]Issue, error) {
	var issues []Issue
	walkSiblingGroups(nav.BuildTree(c, nav.Options{}), func(dir string, children []*nav.Node) {
		bySlug := make(map[string][]*nav.Node)
		var order []string
		for _, child := range children {
			slug := nav.Slug(nav.ParsePrefix(child.Segment).Name)
			if _, ok := bySlug[slug]; !ok {
				order = append(order, slug)
			}
			bySlug[slug] = append(bySlug[slug], child)
		}
		for _, slug := range order {
			group := bySlug[slug]
			if len(group) < 2 {
				continue
			}
			keeper := group[0]
			for _, node := range group[1:] {
				issues = append(issues, Issue{
					FilePath: nodeFilePath(node, dir),
					Severity: SeverityWarning,
					Rule:     r.Name(),
					Message:  fmt.Sprintf("Route collision with sibling %s", keeper.Segment),
					Explanation: fmt.Sprintf(`After the ordering prefix is stripped, this entry resolves to the
same route slug %q as a sibling. A disambiguated route was assigned
so the build still succeeds, but the URL now leaks the raw segment.

%s keeps %s
%s was assigned %s`, slug, keeper.Segment, keeper.Route, node.Segment, node.Route),
					Fix: "Rename one of the colliding siblings so the stripped names differ",
				})
			}
		}
	})
	return issues, nil
}

// walkSiblingGroups invokes fn for every node with children, passing
// the corpus-relative directory of the group ("" for the root).
func walkSiblingGroups(t *nav.Tree, fn func(dir string, children []*nav.Node)) {
	var visit func(n *nav.Node, dir string)
	visit = func(n *nav.Node, dir string) {
		if len(n.Children) > 0 {
			fn(dir, n.Children)
		}
		for _, child := range n.Children {
			childDir := child.Segment
			if dir != "" {
				childDir = dir + "/" + child.Segment
			}
			visit(child, childDir)
		}
	}
	visit(t.Root, "")
}

// nodeFilePath returns the best corpus-relative path to report for a
// node: its source file when it has one, the raw directory otherwise.
func nodeFilePath(n *nav.Node, parentDir string) string {
	if sp := n.SourcePath(); sp != "" {
		return sp
	}
	if parentDir == "" {
		return n.Segment
	}
	return parentDir + "/" + n.Segment
}
