package nav

import (
	"git.home.luguber.info/inful/guidebuilder/internal/corpus"
)

// Node is one entry in the resolved navigation tree: a section (directory)
// or a leaf page.
type Node struct {
	// Segment is the raw path segment, ordering prefix included. Empty for
	// the root.
	Segment string `json:"segment"`
	// Name is the segment with the ordering prefix stripped.
	Name string `json:"name"`
	// Title is the display title: the page's resolved title when available,
	// otherwise derived from Name.
	Title string `json:"title"`
	// Route is the clean URL path, always ending in "/" ("/" for the root).
	Route string `json:"route"`
	// Weight is the 1-based position among siblings after resolution.
	Weight int `json:"weight"`
	// IsSection marks directory nodes. A section without its own index page
	// gets a generated stub (Page == nil).
	IsSection bool `json:"is_section"`

	Page     *corpus.Page `json:"-"`
	Parent   *Node        `json:"-"`
	Children []*Node      `json:"children,omitempty"`
}

// IsStub reports whether this is a section with no authored index page.
func (n *Node) IsStub() bool {
	return n.IsSection && n.Page == nil
}

// SourcePath returns the root-relative path of the node's page, or "" for
// stub sections.
func (n *Node) SourcePath() string {
	if n.Page == nil {
		return ""
	}
	return n.Page.RelPath
}

// Tree is the fully resolved navigation tree.
type Tree struct {
	Root *Node

	keepPrefixes bool

	ordered  []*Node
	byRoute  map[string]*Node
	bySource map[string]*Node
	byDir    map[string]*Node
}

// Ordered returns every node in global navigation order: depth-first,
// sections before their children, siblings by resolved order.
func (t *Tree) Ordered() []*Node {
	return t.ordered
}

// ByRoute returns the node with the given route, or nil.
func (t *Tree) ByRoute(route string) *Node {
	return t.byRoute[route]
}

// BySource returns the node whose page has the given root-relative source
// path, or nil.
func (t *Tree) BySource(rel string) *Node {
	return t.bySource[rel]
}

// Prev returns the node before n in global order, or nil for the first.
func (t *Tree) Prev(n *Node) *Node {
	for i, cur := range t.ordered {
		if cur == n {
			if i == 0 {
				return nil
			}
			return t.ordered[i-1]
		}
	}
	return nil
}

// Next returns the node after n in global order, or nil for the last.
func (t *Tree) Next(n *Node) *Node {
	for i, cur := range t.ordered {
		if cur == n {
			if i == len(t.ordered)-1 {
				return nil
			}
			return t.ordered[i+1]
		}
	}
	return nil
}

// Breadcrumbs returns the chain from the root to n, inclusive.
func (t *Tree) Breadcrumbs(n *Node) []*Node {
	var chain []*Node
	for cur := n; cur != nil; cur = cur.Parent {
		chain = append(chain, cur)
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

func (t *Tree) index() {
	t.ordered = t.ordered[:0]
	t.byRoute = make(map[string]*Node)
	t.bySource = make(map[string]*Node)
	t.byDir = make(map[string]*Node)

	var visit func(n *Node, dir string)
	visit = func(n *Node, dir string) {
		t.ordered = append(t.ordered, n)
		t.byRoute[n.Route] = n
		if src := n.SourcePath(); src != "" {
			t.bySource[src] = n
		}
		if n.IsSection {
			t.byDir[dir] = n
		}
		for _, c := range n.Children {
			childDir := c.Segment
			if dir != "" {
				childDir = dir + "/" + c.Segment
			}
			visit(c, childDir)
		}
	}
	visit(t.Root, "")
}
