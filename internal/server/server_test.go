package server

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/guidebuilder/internal/config"
)

func TestServerStartStop(t *testing.T) {
	cfg := config.Default()
	cfg.Build.OutputDir = t.TempDir()
	cfg.Daemon.SitePort = 0
	cfg.Daemon.WebhookPort = 0
	cfg.Daemon.AdminPort = 0

	s := New(cfg, newStubRuntime(), Options{Hub: NewHub(slog.Default())})
	require.NoError(t, s.Start(t.Context()))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
}

func TestServerStartFailsWhenPortTaken(t *testing.T) {
	blocker, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	defer blocker.Close()
	port := blocker.Addr().(*net.TCPAddr).Port

	cfg := config.Default()
	cfg.Build.OutputDir = t.TempDir()
	cfg.Daemon.SitePort = port
	cfg.Daemon.WebhookPort = 0
	cfg.Daemon.AdminPort = 0

	s := New(cfg, newStubRuntime(), Options{})
	err = s.Start(t.Context())
	require.Error(t, err)
	require.Contains(t, err.Error(), "http startup failed")
	require.Contains(t, err.Error(), fmt.Sprintf("site port %d", port))
}

func TestPreviewServesSiteWithLivereload(t *testing.T) {
	root := writeRendered(t, map[string]string{
		"index.html": "<html><body><h1>Home</h1></body></html>",
	})
	p := NewPreview(root, 0, NewHub(slog.Default()), nil)
	ts := httptest.NewServer(p.srv.Handler)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(body), "Home")
	require.Contains(t, string(body), liveReloadScriptTag)

	resp, err = http.Get(ts.URL + "/livereload.js")
	require.NoError(t, err)
	script, err := io.ReadAll(resp.Body)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(script), "EventSource")
}

func TestPreviewWithoutHubSkipsInjection(t *testing.T) {
	root := writeRendered(t, map[string]string{
		"index.html": "<html><body><h1>Home</h1></body></html>",
	})
	p := NewPreview(root, 0, nil, nil)
	ts := httptest.NewServer(p.srv.Handler)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, err)
	require.NotContains(t, string(body), liveReloadScriptTag)

	resp, err = http.Get(ts.URL + "/livereload.js")
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPreviewStartStop(t *testing.T) {
	p := NewPreview(t.TempDir(), 0, nil, nil)
	require.NoError(t, p.Start(t.Context()))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, p.Stop(ctx))
}
