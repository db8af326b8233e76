package site

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadTemplates_EmbeddedDefaults(t *testing.T) {
	ts, err := loadTemplates("")
	require.NoError(t, err)

	for _, kind := range templateKinds {
		require.NotNil(t, ts.Lookup(kind))
	}
	usage := ts.Usage()
	require.Equal(t, "embedded", usage["page"].Source)
	require.Equal(t, "embedded", usage["404"].Source)
	require.Empty(t, usage["page"].Path)
}

func TestLoadTemplates_FileOverrideWins(t *testing.T) {
	dir := t.TempDir()
	override := filepath.Join(dir, "page.html.tmpl")
	require.NoError(t, os.WriteFile(override, []byte("<html>custom {{ .Title }}</html>"), 0o600))

	ts, err := loadTemplates(dir)
	require.NoError(t, err)

	usage := ts.Usage()
	require.Equal(t, "file", usage["page"].Source)
	require.Equal(t, override, usage["page"].Path)
	// The 404 kind has no override and falls back to embedded.
	require.Equal(t, "embedded", usage["404"].Source)

	var sb strings.Builder
	require.NoError(t, ts.Lookup("page").Execute(&sb, map[string]string{"Title": "Hello"}))
	require.Equal(t, "<html>custom Hello</html>", sb.String())
}

func TestLoadTemplates_SecondCandidateExtension(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "404.tmpl"), []byte("<p>gone</p>"), 0o600))

	ts, err := loadTemplates(dir)
	require.NoError(t, err)
	require.Equal(t, "file", ts.Usage()["404"].Source)
}

func TestLoadTemplates_EmptyOverrideFallsBack(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "page.html.tmpl"), []byte("  \n\t"), 0o600))

	ts, err := loadTemplates(dir)
	require.NoError(t, err)
	require.Equal(t, "embedded", ts.Usage()["page"].Source)
}

func TestLoadTemplates_BadOverrideFails(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "page.html.tmpl")
	require.NoError(t, os.WriteFile(bad, []byte("{{ .Unclosed"), 0o600))

	_, err := loadTemplates(dir)
	require.Error(t, err)
	require.Contains(t, err.Error(), bad)
}

func TestLookup_UnknownKindPanics(t *testing.T) {
	ts, err := loadTemplates("")
	require.NoError(t, err)
	require.Panics(t, func() { ts.Lookup("nope") })
}
