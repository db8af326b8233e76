package nav

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func buildFixtureTree(t *testing.T) *Tree {
	t.Helper()
	c := testCorpus(
		"page.md",
		"01_foundation/page.md",
		"01_foundation/01_getting-started.md",
		"01_foundation/02_http.md",
		"02_advanced/page.md",
		"02_advanced/01_caching.md",
	)
	return BuildTree(c, Options{})
}

func TestTree_OrderedIsDepthFirst(t *testing.T) {
	tree := buildFixtureTree(t)

	var routes []string
	for _, n := range tree.Ordered() {
		routes = append(routes, n.Route)
	}

	require.Equal(t, []string{
		"/",
		"/foundation/",
		"/foundation/getting-started/",
		"/foundation/http/",
		"/advanced/",
		"/advanced/caching/",
	}, routes)
}

func TestTree_PrevNextChainCoversEveryNodeOnce(t *testing.T) {
	tree := buildFixtureTree(t)
	ordered := tree.Ordered()

	// Forward walk from the root reaches every node exactly once.
	var walked []*Node
	for n := tree.Root; n != nil; n = tree.Next(n) {
		walked = append(walked, n)
	}
	require.Equal(t, ordered, walked)

	// Backward walk from the last node mirrors it.
	var back []*Node
	for n := ordered[len(ordered)-1]; n != nil; n = tree.Prev(n) {
		back = append(back, n)
	}
	require.Len(t, back, len(ordered))
	for i := range back {
		require.Same(t, ordered[len(ordered)-1-i], back[i])
	}
}

func TestTree_PrevOfFirstAndNextOfLastAreNil(t *testing.T) {
	tree := buildFixtureTree(t)
	ordered := tree.Ordered()

	require.Nil(t, tree.Prev(ordered[0]))
	require.Nil(t, tree.Next(ordered[len(ordered)-1]))
}

func TestTree_Breadcrumbs(t *testing.T) {
	tree := buildFixtureTree(t)

	leaf := tree.ByRoute("/foundation/http/")
	require.NotNil(t, leaf)

	crumbs := tree.Breadcrumbs(leaf)
	require.Len(t, crumbs, 3)
	require.Equal(t, "/", crumbs[0].Route)
	require.Equal(t, "/foundation/", crumbs[1].Route)
	require.Equal(t, "/foundation/http/", crumbs[2].Route)
}

func TestTree_Lookups(t *testing.T) {
	tree := buildFixtureTree(t)

	byRoute := tree.ByRoute("/advanced/caching/")
	require.NotNil(t, byRoute)
	require.Equal(t, "01_caching", byRoute.Segment)

	bySource := tree.BySource("02_advanced/01_caching.md")
	require.Same(t, byRoute, bySource)

	require.Nil(t, tree.ByRoute("/missing/"))
	require.Nil(t, tree.BySource("missing.md"))
}
