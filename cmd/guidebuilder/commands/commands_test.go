package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeFixtureCorpus lays out a tiny tiered guide and a config pointing at it.
func writeFixtureCorpus(t *testing.T) (configPath, outputDir string) {
	t.Helper()
	dir := t.TempDir()
	content := filepath.Join(dir, "content")
	outputDir = filepath.Join(dir, "public")

	pages := map[string]string{
		"01_getting-started/page.md":       "---\ntitle: Getting Started\n---\n\n# Getting Started\n",
		"01_getting-started/01_install.md": "# Install\n\nSee [foundation](../02_foundation/page.md).\n",
		"02_foundation/page.md":            "# Foundation\n",
	}
	for rel, body := range pages {
		path := filepath.Join(content, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	}

	configPath = filepath.Join(dir, "guidebuilder.yaml")
	cfg := "version: \"1.0\"\n" +
		"site:\n  title: Test Guide\n" +
		"content:\n  root: " + content + "\n" +
		"build:\n  output_dir: " + outputDir + "\n"
	require.NoError(t, os.WriteFile(configPath, []byte(cfg), 0o644))
	return configPath, outputDir
}

func TestBuildCmd_ProducesSite(t *testing.T) {
	configPath, outputDir := writeFixtureCorpus(t)

	cmd := &BuildCmd{}
	require.NoError(t, cmd.Run(&Global{}, &CLI{Config: configPath}))

	for _, rel := range []string{
		"index.html",
		filepath.Join("getting-started", "index.html"),
		filepath.Join("getting-started", "install", "index.html"),
		filepath.Join("foundation", "index.html"),
		"sitemap.xml",
		"search-index.json",
	} {
		_, err := os.Stat(filepath.Join(outputDir, rel))
		require.NoError(t, err, "expected %s in output", rel)
	}
}

func TestBuildCmd_OutputOverride(t *testing.T) {
	configPath, _ := writeFixtureCorpus(t)
	override := filepath.Join(t.TempDir(), "site")

	cmd := &BuildCmd{Output: override}
	require.NoError(t, cmd.Run(&Global{}, &CLI{Config: configPath}))

	_, err := os.Stat(filepath.Join(override, "index.html"))
	require.NoError(t, err)
}

func TestBuildCmd_MissingConfig(t *testing.T) {
	cmd := &BuildCmd{}
	err := cmd.Run(&Global{}, &CLI{Config: filepath.Join(t.TempDir(), "nope.yaml")})
	require.Error(t, err)
}

func TestScanCmd_WorksWithoutConfigFile(t *testing.T) {
	_, _ = writeFixtureCorpus(t) // unrelated config; scan gets a bare root
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "01_intro"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "01_intro", "page.md"), []byte("# Intro\n"), 0o644))

	cmd := &ScanCmd{Root: root}
	require.NoError(t, cmd.Run(&Global{}, &CLI{Config: filepath.Join(root, "absent.yaml")}))
}

func TestLintCmd_CleanCorpusPasses(t *testing.T) {
	configPath, _ := writeFixtureCorpus(t)

	cmd := &LintCmd{Format: "text"}
	require.NoError(t, cmd.Run(&Global{}, &CLI{Config: configPath}))
}

func TestLintCmd_ErrorsSetExitStatus(t *testing.T) {
	dir := t.TempDir()
	// Unclosed frontmatter is a lint error.
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "01_intro"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "01_intro", "page.md"),
		[]byte("---\ntitle: Broken\n\n# Broken\n"), 0o644))

	cmd := &LintCmd{Format: "text", Path: dir}
	err := cmd.Run(&Global{}, &CLI{Config: filepath.Join(dir, "absent.yaml")})
	require.Error(t, err)
	require.Contains(t, err.Error(), "lint error")
}

func TestInitCmd_WritesConfig(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "guidebuilder.yaml")

	cmd := &InitCmd{}
	require.NoError(t, cmd.Run(&Global{}, &CLI{Config: configPath}))

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	require.Contains(t, string(data), "version:")

	// Refuses to overwrite without --force.
	require.Error(t, cmd.Run(&Global{}, &CLI{Config: configPath}))
	force := &InitCmd{Force: true}
	require.NoError(t, force.Run(&Global{}, &CLI{Config: configPath}))
}
