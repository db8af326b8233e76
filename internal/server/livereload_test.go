package server

import (
	"bufio"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func readSSELine(t *testing.T, r *bufio.Reader) string {
	t.Helper()
	line, err := r.ReadString('\n')
	require.NoError(t, err)
	return line
}

func TestHubHandshakeAndBroadcast(t *testing.T) {
	h := NewHub(slog.Default())
	defer h.Shutdown()

	srv := httptest.NewServer(h)
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	require.Equal(t, ": connected\n", readSSELine(t, reader))
	require.Equal(t, "\n", readSSELine(t, reader))
	require.Equal(t, 1, h.ClientCount())

	h.Broadcast("abc123")
	require.Equal(t, "data: {\"hash\":\"abc123\"}\n", readSSELine(t, reader))
}

func TestHubReplaysLastHashToNewClients(t *testing.T) {
	h := NewHub(slog.Default())
	defer h.Shutdown()
	h.Broadcast("abc123")

	srv := httptest.NewServer(h)
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	reader := bufio.NewReader(resp.Body)
	require.Equal(t, ": connected\n", readSSELine(t, reader))
	require.Equal(t, "\n", readSSELine(t, reader))
	require.Equal(t, "data: {\"hash\":\"abc123\"}\n", readSSELine(t, reader))
}

func TestHubRejectsConnectionsAfterShutdown(t *testing.T) {
	h := NewHub(slog.Default())
	h.Shutdown()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/livereload", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHubBroadcastDedupesAndSkipsEmpty(t *testing.T) {
	h := NewHub(slog.Default())
	c := &hubClient{ch: make(chan string, 8), done: make(chan struct{})}
	h.clients[c.id] = c

	h.Broadcast("")
	h.Broadcast("aaa")
	h.Broadcast("aaa")
	h.Broadcast("bbb")

	require.Len(t, c.ch, 2)
	require.Equal(t, "aaa", <-c.ch)
	require.Equal(t, "bbb", <-c.ch)
}

func TestHubDropsSlowClients(t *testing.T) {
	h := NewHub(slog.Default())
	c := &hubClient{ch: make(chan string, 1), done: make(chan struct{})}
	h.clients[c.id] = c

	h.Broadcast("hash-1")
	h.Broadcast("hash-2") // channel full, client dropped

	require.Equal(t, 0, h.ClientCount())
	select {
	case <-c.done:
	default:
		t.Fatal("dropped client should have its done channel closed")
	}
}

func TestInjectLiveReloadAddsScriptTag(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<html><body><h1>Home</h1></body></html>"))
	})
	rec := httptest.NewRecorder()
	injectLiveReload(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), liveReloadScriptTag+"</body>")
}

func TestInjectLiveReloadPreservesStatus(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("<html><body>missing</body></html>"))
	})
	rec := httptest.NewRecorder()
	injectLiveReload(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/gone/", nil))

	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), liveReloadScriptTag)
}

func TestInjectLiveReloadSkipsNonHTML(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/css")
		_, _ = w.Write([]byte("body{}"))
	})
	rec := httptest.NewRecorder()
	injectLiveReload(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/site.css", nil))

	require.Equal(t, "body{}", rec.Body.String())
}

func TestScriptInjectorOversizeFallsThrough(t *testing.T) {
	rec := httptest.NewRecorder()
	inj := &scriptInjector{ResponseWriter: rec, statusCode: http.StatusOK, maxSize: 8}

	_, err := inj.Write([]byte("<body>0123456789</body>"))
	require.NoError(t, err)
	inj.finalize()

	require.Equal(t, "<body>0123456789</body>", rec.Body.String())
}
