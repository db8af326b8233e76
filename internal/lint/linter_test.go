package lint

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/guidebuilder/internal/corpus"
)

// writeContentTree materializes files under a temp root and returns it.
func writeContentTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		abs := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0o750))
		require.NoError(t, os.WriteFile(abs, []byte(content), 0o600))
	}
	return root
}

func TestLinter_CleanCorpusPasses(t *testing.T) {
	root := writeContentTree(t, map[string]string{
		"index.md":      "# Home\n\n[Terms](10_a/terms.md)\n",
		"10_a/terms.md": "# Terms\n\n![Flow](flow.png)\n",
		"10_a/flow.png": "png",
	})

	result, err := New(Config{}).LintPath(context.Background(), root)
	require.NoError(t, err)
	require.Empty(t, result.Issues)
	require.Equal(t, 3, result.FilesTotal)
	require.False(t, result.HasErrors())
	require.False(t, result.HasWarnings())
}

func TestLinter_CollectsAcrossRules(t *testing.T) {
	root := writeContentTree(t, map[string]string{
		"10_page.md": "# Page\n\n[gone](zzz.md)\n",
		"plain.md":   "Prose without a heading.\n",
	})

	result, err := New(Config{}).LintPath(context.Background(), root)
	require.NoError(t, err)

	require.Equal(t, 1, result.ErrorCount(), "broken relative link")
	require.Equal(t, 1, result.WarningCount(), "missing title")
	require.Equal(t, 1, result.InfoCount(), "unprefixed sibling")
	require.True(t, result.HasErrors())
	require.True(t, result.HasWarnings())
}

func TestLinter_QuietKeepsOnlyErrors(t *testing.T) {
	root := writeContentTree(t, map[string]string{
		"10_page.md": "# Page\n\n[gone](zzz.md)\n",
		"plain.md":   "Prose without a heading.\n",
	})

	result, err := New(Config{Quiet: true}).LintPath(context.Background(), root)
	require.NoError(t, err)

	require.Len(t, result.Issues, 1)
	require.Equal(t, SeverityError, result.Issues[0].Severity)
	require.Equal(t, "relative-links", result.Issues[0].Rule)
}

func TestLinter_SortsIssuesByFile(t *testing.T) {
	root := writeContentTree(t, map[string]string{
		"b.md": "prose\n",
		"a.md": "prose\n",
	})

	result, err := New(Config{}).LintPath(context.Background(), root)
	require.NoError(t, err)
	require.Len(t, result.Issues, 2)
	require.Equal(t, "a.md", result.Issues[0].FilePath)
	require.Equal(t, "b.md", result.Issues[1].FilePath)
}

func TestLinter_MissingRootFails(t *testing.T) {
	_, err := New(Config{}).LintPath(context.Background(), filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
}

func TestLinter_CanceledContext(t *testing.T) {
	root := writeContentTree(t, map[string]string{"index.md": "# Home\n"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(Config{}).LintPath(ctx, root)
	require.ErrorIs(t, err, context.Canceled)
}

type failingRule struct{}

func (r *failingRule) Name() string { return "failing" }

func (r *failingRule) Check(_ *corpus.Corpus) ([]Issue, error) {
	return nil, errors.New("boom")
}

func TestLinter_RuleErrorAbortsRun(t *testing.T) {
	root := writeContentTree(t, map[string]string{"index.md": "# Home\n"})

	_, err := NewWithRules(Config{}, []Rule{&failingRule{}}).LintPath(context.Background(), root)
	require.Error(t, err)
	require.Contains(t, err.Error(), "rule failing")
	require.Contains(t, err.Error(), "boom")
}
