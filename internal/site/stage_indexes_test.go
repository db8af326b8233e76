package site

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPlainExcerpt(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "strips headings and emphasis",
			body: "## Getting Started\n\nUse **verbs** for `actions`.\n",
			want: "Getting Started Use verbs for actions.",
		},
		{
			name: "drops fenced code blocks",
			body: "Intro line.\n\n```go\nfunc secret() {}\n```\n\nOutro line.\n",
			want: "Intro line. Outro line.",
		},
		{
			name: "drops tilde fences",
			body: "Before.\n~~~\nhidden\n~~~\nAfter.\n",
			want: "Before. After.",
		},
		{
			name: "strips blockquote and list markers",
			body: "> quoted advice\n- first item\n",
			want: "quoted advice first item",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, plainExcerpt([]byte(tt.body), 240))
		})
	}
}

func TestPlainExcerpt_TruncatesOnWordBoundary(t *testing.T) {
	body := "alpha beta gamma delta epsilon zeta"
	got := plainExcerpt([]byte(body), 16)
	require.LessOrEqual(t, len(got), 16)
	require.Equal(t, "alpha beta", got)
}

func TestPlainExcerpt_EmptyBody(t *testing.T) {
	require.Empty(t, plainExcerpt(nil, 100))
	require.Empty(t, plainExcerpt([]byte("\n\n\n"), 100))
}
