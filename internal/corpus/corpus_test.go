package corpus

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPage_LoadAndParse_FrontmatterTitle(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "01_intro/page.md", "---\ntitle: Introduction\ndescription: Why this guide exists\n---\n# Ignored Heading\n\nBody.\n")

	c, err := Scan(context.Background(), root)
	require.NoError(t, err)
	require.NoError(t, c.LoadAll(context.Background()))

	p := c.PageByRelPath("01_intro/page.md")
	require.NotNil(t, p)
	require.Equal(t, "Introduction", p.Title)
	require.Equal(t, "Why this guide exists", p.Description)
	require.Equal(t, "# Ignored Heading\n\nBody.\n", string(p.Body))
	require.NotEmpty(t, p.Fingerprint)
}

func TestPage_Parse_FallsBackToFirstH1(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "01_intro/page.md", "# Derived From Heading\n\nBody.\n")

	c, err := Scan(context.Background(), root)
	require.NoError(t, err)
	require.NoError(t, c.LoadAll(context.Background()))

	p := c.PageByRelPath("01_intro/page.md")
	require.Equal(t, "Derived From Heading", p.Title)
}

func TestPage_Parse_NoTitleSources_LeavesEmpty(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "01_intro/02_details.md", "Just text, no heading.\n")

	c, err := Scan(context.Background(), root)
	require.NoError(t, err)
	require.NoError(t, c.LoadAll(context.Background()))

	p := c.PageByRelPath("01_intro/02_details.md")
	require.Equal(t, "", p.Title)
}

func TestPage_Load_IsIdempotent(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "01_intro/page.md", "# Intro\n")

	c, err := Scan(context.Background(), root)
	require.NoError(t, err)

	p := c.PageByRelPath("01_intro/page.md")
	require.NoError(t, p.Load())
	first := p.Fingerprint
	require.NoError(t, p.Load())
	require.Equal(t, first, p.Fingerprint)
}

func TestCorpus_FingerprintAll_TracksContentChanges(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "01_intro/page.md", "# Intro\n")
	writeFile(t, root, "02_next/page.md", "# Next\n")

	c1, err := Scan(context.Background(), root)
	require.NoError(t, err)
	require.NoError(t, c1.LoadAll(context.Background()))
	fp1 := c1.FingerprintAll()

	// Unchanged corpus scans to the same fingerprint.
	c2, err := Scan(context.Background(), root)
	require.NoError(t, err)
	require.NoError(t, c2.LoadAll(context.Background()))
	require.Equal(t, fp1, c2.FingerprintAll())

	writeFile(t, root, "01_intro/page.md", "# Intro, revised\n")
	c3, err := Scan(context.Background(), root)
	require.NoError(t, err)
	require.NoError(t, c3.LoadAll(context.Background()))
	require.NotEqual(t, fp1, c3.FingerprintAll())
}

func TestCorpus_SectionDirs_IncludesIntermediate(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "01_foundation/02_http/01_verbs.md", "# Verbs\n")
	writeFile(t, root, "02_advanced/page.md", "# Advanced\n")

	c, err := Scan(context.Background(), root)
	require.NoError(t, err)

	dirs := c.SectionDirs()
	require.Equal(t, []string{"", "01_foundation", "01_foundation/02_http", "02_advanced"}, dirs)
}
