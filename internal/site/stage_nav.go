package site

import (
	"context"
	"fmt"
	"strings"

	"git.home.luguber.info/inful/guidebuilder/internal/nav"
)

// stageResolveNav builds the navigation tree and records authoring
// anomalies (duplicate numeric prefixes, route collisions) as report
// issues. The resolver itself is tolerant of both; the issues make the
// ambiguity visible without failing the build.
func stageResolveNav(_ context.Context, bs *BuildState) error {
	if bs.Corpus == nil {
		return NewFatalStageError(StageResolveNav, fmt.Errorf("%w: corpus not scanned", ErrNav))
	}
	tree := nav.BuildTree(bs.Corpus, nav.Options{KeepPrefixes: bs.Builder.cfg.Site.KeepPrefixes})
	bs.Nav = tree

	sections := 0
	for _, n := range tree.Ordered() {
		if n.IsSection {
			sections++
		}
	}
	bs.Report.Sections = sections

	reportSiblingAnomalies(bs, tree.Root)
	return nil
}

// reportSiblingAnomalies walks the tree looking at each sibling group for
// duplicate numeric prefixes and prefix-stripped name collisions.
func reportSiblingAnomalies(bs *BuildState, node *nav.Node) {
	byNumber := make(map[int][]string)
	byStripped := make(map[string][]string)
	for _, child := range node.Children {
		p := nav.ParsePrefix(child.Segment)
		if p.Present {
			byNumber[p.Number] = append(byNumber[p.Number], child.Segment)
		}
		byStripped[nav.Slug(child.Name)] = append(byStripped[nav.Slug(child.Name)], child.Segment)
	}
	for number, segments := range byNumber {
		if len(segments) > 1 {
			bs.Report.AddIssue(IssueDuplicatePrefix, StageResolveNav, SeverityWarning,
				fmt.Sprintf("duplicate order prefix %d under %s: %s", number, sectionLabel(node), strings.Join(sortedCopy(segments), ", ")),
				false, nil)
		}
	}
	for stripped, segments := range byStripped {
		if len(segments) > 1 {
			bs.Report.AddIssue(IssueRouteCollision, StageResolveNav, SeverityWarning,
				fmt.Sprintf("route collision on %q under %s: %s", stripped, sectionLabel(node), strings.Join(sortedCopy(segments), ", ")),
				false, nil)
		}
	}
	for _, child := range node.Children {
		reportSiblingAnomalies(bs, child)
	}
}

func sectionLabel(node *nav.Node) string {
	if node.Parent == nil {
		return "content root"
	}
	return node.Route
}

func sortedCopy(in []string) []string {
	out := append([]string(nil), in...)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}
