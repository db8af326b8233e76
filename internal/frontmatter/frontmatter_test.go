package frontmatter

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplit_NoFrontmatter_ReturnsBodyOnly(t *testing.T) {
	input := []byte("# Designing Resources\n\nHello\n")

	fm, body, had, _, err := Split(input)
	require.NoError(t, err)
	require.False(t, had)
	require.Empty(t, fm)
	require.Equal(t, input, body)
}

func TestSplit_YAMLFrontmatter_SplitsFrontmatterAndBody(t *testing.T) {
	input := []byte("---\ntitle: Getting Started\n---\n# Getting Started\n")

	fm, body, had, _, err := Split(input)
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, []byte("title: Getting Started\n"), fm)
	require.Equal(t, []byte("# Getting Started\n"), body)
}

func TestSplit_MissingClosingDelimiter_ReturnsError(t *testing.T) {
	input := []byte("---\ntitle: Getting Started\n# Heading\n")

	_, _, had, _, err := Split(input)
	require.Error(t, err)
	require.False(t, had)
	require.True(t, errors.Is(err, ErrMissingClosingDelimiter))
}

func TestSplit_CRLF_SplitsFrontmatterAndBody(t *testing.T) {
	input := []byte("---\r\ntitle: Getting Started\r\n---\r\n# Heading\r\n")

	fm, body, had, style, err := Split(input)
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, "\r\n", style.Newline)
	require.Equal(t, []byte("title: Getting Started\r\n"), fm)
	require.Equal(t, []byte("# Heading\r\n"), body)
}

func TestSplit_EmptyFrontmatterBlock_SplitsAsHadWithEmptyFrontmatter(t *testing.T) {
	input := []byte("---\n---\n# Heading\n")

	fm, body, had, _, err := Split(input)
	require.NoError(t, err)
	require.True(t, had)
	require.Empty(t, fm)
	require.Equal(t, []byte("# Heading\n"), body)
}

func TestJoin_RoundTrip_ReconstructsOriginalBytes(t *testing.T) {
	cases := [][]byte{
		[]byte("# Heading\n\nHello\n"),
		[]byte("---\ntitle: Pagination\n---\n# Heading\n"),
		[]byte("---\n---\n# Heading\n"),
		[]byte("---\r\ntitle: Pagination\r\n---\r\n# Heading\r\n"),
	}

	for _, input := range cases {
		fm, body, had, style, err := Split(input)
		require.NoError(t, err)

		out := Join(fm, body, had, style)
		require.Equal(t, input, out)
	}
}

func TestParse_CombinesSplitAndDecode(t *testing.T) {
	input := []byte("---\ntitle: Error Handling\ntags:\n  - errors\n---\nBody text\n")

	fields, body, had, _, err := Parse(input)
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, "Error Handling", fields["title"])
	require.Equal(t, []any{"errors"}, fields["tags"])
	require.Equal(t, []byte("Body text\n"), body)
}

func TestParse_NoFrontmatter_ReturnsEmptyMap(t *testing.T) {
	fields, body, had, _, err := Parse([]byte("plain body\n"))
	require.NoError(t, err)
	require.False(t, had)
	require.NotNil(t, fields)
	require.Empty(t, fields)
	require.Equal(t, []byte("plain body\n"), body)
}

func TestParseYAML_ValidYAML_ReturnsMap(t *testing.T) {
	fm := []byte("description: Overview of versioning\ntags:\n  - one\n")

	fields, err := ParseYAML(fm)
	require.NoError(t, err)
	require.Equal(t, "Overview of versioning", fields["description"])
	require.Equal(t, []any{"one"}, fields["tags"])
}

func TestParseYAML_InvalidYAML_ReturnsError(t *testing.T) {
	_, err := ParseYAML([]byte(": not yaml"))
	require.Error(t, err)
}
