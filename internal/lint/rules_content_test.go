package lint

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFrontmatterRule_FlagsUnclosedBlock(t *testing.T) {
	c := scanTestCorpus(t, map[string]string{
		"broken.md": "---\ntitle: Broken\n",
	})

	issues := issuesForRule(t, &FrontmatterRule{}, c)
	require.Len(t, issues, 1)
	require.Equal(t, SeverityError, issues[0].Severity)
	require.Contains(t, issues[0].Message, "never closed")
	require.Contains(t, issues[0].Fix, "closing ---")
}

func TestFrontmatterRule_FlagsInvalidYAML(t *testing.T) {
	c := scanTestCorpus(t, map[string]string{
		"bad.md": "---\ntitle: [unclosed\n---\n# Bad\n",
	})

	issues := issuesForRule(t, &FrontmatterRule{}, c)
	require.Len(t, issues, 1)
	require.Equal(t, SeverityError, issues[0].Severity)
	require.Contains(t, issues[0].Message, "not valid YAML")
}

func TestFrontmatterRule_FlagsNonStringTitle(t *testing.T) {
	c := scanTestCorpus(t, map[string]string{
		"year.md": "---\ntitle: 2026\n---\n# Fallback\n",
	})

	issues := issuesForRule(t, &FrontmatterRule{}, c)
	require.Len(t, issues, 1)
	require.Equal(t, SeverityWarning, issues[0].Severity)
	require.Contains(t, issues[0].Message, "not a string")
	require.Contains(t, issues[0].Explanation, "int")
}

func TestFrontmatterRule_CleanPagesPass(t *testing.T) {
	c := scanTestCorpus(t, map[string]string{
		"plain.md": "# No Front Matter\n",
		"full.md":  "---\ntitle: \"Full\"\ndescription: d\n---\nbody\n",
	})

	require.Empty(t, issuesForRule(t, &FrontmatterRule{}, c))
}

func TestTitleRule_FlagsPagesWithoutTitle(t *testing.T) {
	c := scanTestCorpus(t, map[string]string{
		"anon.md": "Just prose, no heading.\n",
	})

	issues := issuesForRule(t, &TitleRule{}, c)
	require.Len(t, issues, 1)
	require.Equal(t, SeverityWarning, issues[0].Severity)
	require.Equal(t, "anon.md", issues[0].FilePath)
	require.Contains(t, issues[0].Message, "no title")
}

func TestTitleRule_AcceptsFrontmatterTitleOrH1(t *testing.T) {
	c := scanTestCorpus(t, map[string]string{
		"fm.md": "---\ntitle: From Front Matter\n---\nbody\n",
		"h1.md": "# From Heading\n\nbody\n",
	})

	require.Empty(t, issuesForRule(t, &TitleRule{}, c))
}

func TestTitleRule_SkipsUnparsedPages(t *testing.T) {
	// A page whose front matter failed to parse already carries an
	// error; piling a title warning on top would be noise.
	c := scanTestCorpus(t, map[string]string{
		"broken.md": "---\ntitle: Broken\n",
	})

	require.Empty(t, issuesForRule(t, &TitleRule{}, c))
}
