package nav

import (
	"sort"
	"strconv"
	"strings"

	"git.home.luguber.info/inful/guidebuilder/internal/corpus"
)

// Options controls tree resolution.
type Options struct {
	// KeepPrefixes keeps the raw `NN_name` segments in routes instead of
	// stripping the ordering prefix. Stripped routes stay stable when pages
	// are renumbered; raw routes mirror the tree on disk.
	KeepPrefixes bool
}

// BuildTree resolves the navigation tree for a scanned corpus: section nodes
// for every directory holding pages, leaf nodes for every page, siblings
// ordered by the prefix convention, 1-based weights, routes, and titles.
//
// Resolution is deterministic and idempotent: the same corpus always yields
// an identical tree.
func BuildTree(c *corpus.Corpus, opts Options) *Tree {
	root := &Node{Segment: "", Name: "", Route: "/", IsSection: true}
	dirNodes := map[string]*Node{"": root}

	for _, dir := range c.SectionDirs() {
		ensureSection(dirNodes, dir)
	}

	for i := range c.Pages {
		p := &c.Pages[i]
		if p.IsSectionIndex {
			dirNodes[p.Section].Page = p
			continue
		}
		parent := ensureSection(dirNodes, p.Section)
		parent.Children = append(parent.Children, &Node{
			Segment: p.Name,
			Page:    p,
			Parent:  parent,
		})
	}

	finalize(root, opts)

	t := &Tree{Root: root, keepPrefixes: opts.KeepPrefixes}
	t.index()
	return t
}

// ensureSection returns the node for dir, creating it and any missing
// ancestors. dir is slash-separated and root-relative; "" is the root.
func ensureSection(dirNodes map[string]*Node, dir string) *Node {
	if n, ok := dirNodes[dir]; ok {
		return n
	}

	parentDir := ""
	segment := dir
	if idx := strings.LastIndex(dir, "/"); idx >= 0 {
		parentDir = dir[:idx]
		segment = dir[idx+1:]
	}

	parent := ensureSection(dirNodes, parentDir)
	n := &Node{
		Segment:   segment,
		IsSection: true,
		Parent:    parent,
	}
	parent.Children = append(parent.Children, n)
	dirNodes[dir] = n
	return n
}

// finalize sorts each sibling set, assigns weights, and computes names,
// titles, and collision-free routes, depth-first.
func finalize(n *Node, opts Options) {
	n.Name = ParsePrefix(n.Segment).Name
	if n.Name == "" {
		n.Name = n.Segment
	}

	if n.Page != nil && n.Page.Title != "" {
		n.Title = n.Page.Title
	} else if n.Parent != nil {
		n.Title = DeriveTitle(n.Name)
	}

	sort.SliceStable(n.Children, func(i, j int) bool {
		return Less(n.Children[i].Segment, n.Children[j].Segment)
	})

	used := make(map[string]struct{}, len(n.Children))
	for i, child := range n.Children {
		child.Weight = i + 1
		child.Route = n.Route + routeSlug(child.Segment, used, opts) + "/"
		finalize(child, opts)
	}
}

// routeSlug picks a unique URL segment among siblings. Prefix-stripped slugs
// can collide after renumbering-stable stripping (01_intro vs 02_intro); the
// later sibling falls back to its raw segment, then to a numeric suffix.
func routeSlug(segment string, used map[string]struct{}, opts Options) string {
	candidate := segment
	if !opts.KeepPrefixes {
		if p := ParsePrefix(segment); p.Present && p.Name != "" {
			candidate = p.Name
		}
	}

	slug := slugify(candidate)
	if _, taken := used[slug]; taken {
		slug = slugify(segment)
	}
	base := slug
	for i := 2; ; i++ {
		if _, taken := used[slug]; !taken {
			break
		}
		slug = base + "-" + strconv.Itoa(i)
	}
	used[slug] = struct{}{}
	return slug
}
