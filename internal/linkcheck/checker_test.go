package linkcheck

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// writeSite lays out a rendered tree under a temp dir from rel path -> body.
func writeSite(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, body := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o750))
		require.NoError(t, os.WriteFile(full, []byte(body), 0o600))
	}
	return root
}

func TestVerifySite_InternalLinksResolve(t *testing.T) {
	root := writeSite(t, map[string]string{
		"index.html":                `<a href="/styleguide/">Guide</a> <a href="/styleguide/naming/">Naming</a>`,
		"styleguide/index.html":     `<a href="naming/">Naming</a> <a href="../">Home</a> <img src="/assets/diagram.png">`,
		"styleguide/naming/index.html": `<a href="/styleguide/">Up</a>`,
		"assets/diagram.png":        "png",
	})
	c := New(Options{SiteDir: root, BaseURL: "https://guide.example.com/"})
	res, err := c.VerifySite(context.Background())
	require.NoError(t, err)
	require.Empty(t, res.Findings)
	require.Equal(t, 3, res.PagesScanned)
}

func TestVerifySite_MissingInternalTargetReported(t *testing.T) {
	root := writeSite(t, map[string]string{
		"index.html": `<a href="/styleguide/missing/">Gone</a> <a href="broken.png">Img</a>`,
	})
	c := New(Options{SiteDir: root, BaseURL: "https://guide.example.com/"})
	res, err := c.VerifySite(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Findings, 2)
	for _, f := range res.Findings {
		require.True(t, f.Internal)
		require.Equal(t, "index.html", f.Page)
		require.Equal(t, "target not found in site output", f.Reason)
	}
}

func TestVerifySite_BaseURLSubpathStripped(t *testing.T) {
	root := writeSite(t, map[string]string{
		"index.html":       `<a href="/guide/errors/">Errors</a>`,
		"errors/index.html": "ok",
	})
	c := New(Options{SiteDir: root, BaseURL: "https://example.com/guide/"})
	res, err := c.VerifySite(context.Background())
	require.NoError(t, err)
	require.Empty(t, res.Findings)
}

func TestVerifySite_ExternalDisabledSkips(t *testing.T) {
	root := writeSite(t, map[string]string{
		"index.html": `<a href="https://definitely-not-checked.invalid/">Ext</a>`,
	})
	c := New(Options{SiteDir: root, BaseURL: "https://guide.example.com/"})
	res, err := c.VerifySite(context.Background())
	require.NoError(t, err)
	require.Empty(t, res.Findings)
	require.Equal(t, 1, res.ExternalSkipped)
}

func TestVerifySite_ExternalBrokenReportedAndCached(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			w.WriteHeader(http.StatusOK)
		case "/auth":
			w.WriteHeader(http.StatusForbidden)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	root := writeSite(t, map[string]string{
		"index.html": `<a href="` + srv.URL + `/ok">OK</a>` +
			`<a href="` + srv.URL + `/auth">Auth</a>` +
			`<a href="` + srv.URL + `/gone">Gone</a>`,
	})
	cache := NewMemoryCache()
	c := New(Options{
		SiteDir:       root,
		BaseURL:       "https://guide.example.com/",
		CheckExternal: true,
		Cache:         cache,
	})
	res, err := c.VerifySite(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Findings, 1)
	require.Equal(t, srv.URL+"/gone", res.Findings[0].URL)
	require.Equal(t, http.StatusNotFound, res.Findings[0].Status)
	require.False(t, res.Findings[0].Internal)

	entry, err := cache.Get(context.Background(), srv.URL+"/gone")
	require.NoError(t, err)
	require.NotNil(t, entry)
	require.False(t, entry.IsValid)
	require.Equal(t, 1, entry.FailureCount)

	okEntry, err := cache.Get(context.Background(), srv.URL+"/ok")
	require.NoError(t, err)
	require.NotNil(t, okEntry)
	require.True(t, okEntry.IsValid)

	authEntry, err := cache.Get(context.Background(), srv.URL+"/auth")
	require.NoError(t, err)
	require.NotNil(t, authEntry)
	require.True(t, authEntry.IsValid, "auth challenges count as reachable")
}

func TestVerifySite_CachedFailureSkipsProbe(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	root := writeSite(t, map[string]string{
		"index.html": `<a href="` + srv.URL + `/gone">Gone</a>`,
	})
	cache := NewMemoryCache()
	require.NoError(t, cache.Set(context.Background(), &CacheEntry{
		URL:          srv.URL + "/gone",
		Status:       http.StatusNotFound,
		IsValid:      false,
		Error:        "HTTP 404: 404 Not Found",
		LastChecked:  time.Now(),
		FailureCount: 3,
	}))
	c := New(Options{
		SiteDir:       root,
		BaseURL:       "https://guide.example.com/",
		CheckExternal: true,
		Cache:         cache,
	})
	res, err := c.VerifySite(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Findings, 1)
	require.Zero(t, hits, "fresh cached failure must not be re-probed")
}

type capturedEvents struct {
	events []*BrokenLinkEvent
}

func (c *capturedEvents) PublishBrokenLink(_ context.Context, e *BrokenLinkEvent) error {
	c.events = append(c.events, e)
	return nil
}

func TestVerifySite_PublishesBrokenLinkEvents(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	root := writeSite(t, map[string]string{
		"errors/index.html": `<a href="` + srv.URL + `/dead">Dead</a>`,
	})
	sink := &capturedEvents{}
	c := New(Options{
		SiteDir:       root,
		BaseURL:       "https://guide.example.com/",
		CheckExternal: true,
		MaxConcurrent: 1,
		Publisher:     sink,
		BuildID:       "build-123",
	})
	_, err := c.VerifySite(context.Background())
	require.NoError(t, err)
	require.Len(t, sink.events, 1)
	ev := sink.events[0]
	require.Equal(t, srv.URL+"/dead", ev.URL)
	require.Equal(t, "errors/index.html", ev.Page)
	require.Equal(t, "build-123", ev.BuildID)
	require.Equal(t, http.StatusNotFound, ev.Status)
}

func TestResolveInternalTarget(t *testing.T) {
	c := New(Options{SiteDir: "unused", BaseURL: "https://example.com/guide/"})
	cases := []struct {
		page string
		dest string
		want string
		ok   bool
	}{
		{"index.html", "/guide/errors/", "errors", true},
		{"styleguide/index.html", "naming/", "styleguide/naming", true},
		{"styleguide/naming/index.html", "../", "styleguide", true},
		{"index.html", "/guide/", "", true},
		{"index.html", "/guidebook/", "guidebook", true},
		{"index.html", "ftp://example.com/x", "", false},
	}
	for _, tc := range cases {
		got, ok := c.resolveInternalTarget(tc.page, tc.dest)
		if ok != tc.ok || got != tc.want {
			t.Errorf("resolveInternalTarget(%q, %q) = (%q, %v), want (%q, %v)", tc.page, tc.dest, got, ok, tc.want, tc.ok)
		}
	}
}

func TestCacheKeyCharset(t *testing.T) {
	key := cacheKey("https://example.com/path?q=1")
	for i := 0; i < len(key); i++ {
		ch := key[i]
		valid := (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9') ||
			ch == '-' || ch == '_' || ch == '.' || ch == '='
		if !valid {
			t.Fatalf("cacheKey produced invalid KV char %q in %q", ch, key)
		}
	}
	if cacheKey("a/b") == cacheKey("a.b") {
		t.Fatal("distinct URLs must map to distinct keys")
	}
}
