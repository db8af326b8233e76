package server

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/guidebuilder/internal/config"
	"git.home.luguber.info/inful/guidebuilder/internal/guideerr"
	"git.home.luguber.info/inful/guidebuilder/internal/metrics"
)

func newTestWebhook(cfg *config.Config, rt Runtime) *webhookHandler {
	return &webhookHandler{
		cfg:      cfg,
		rt:       rt,
		recorder: metrics.NoopRecorder{},
		adapter:  guideerr.NewHTTPErrorAdapter(slog.Default()),
		logger:   slog.Default(),
	}
}

func postWebhook(t *testing.T, h http.Handler, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhook/push", strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func signSHA256(secret, body string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(body))
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func signSHA1(secret, body string) string {
	mac := hmac.New(sha1.New, []byte(secret))
	mac.Write([]byte(body))
	return "sha1=" + hex.EncodeToString(mac.Sum(nil))
}

func TestWebhookQueuesBuildOnPush(t *testing.T) {
	rt := newStubRuntime()
	h := newTestWebhook(config.Default(), rt)

	body := `{"ref":"refs/heads/main","after":"abc123"}`
	rec := postWebhook(t, h, body, nil)
	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp TriggerResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "queued", resp.Status)
	require.Equal(t, "job-1", resp.JobID)
	require.Equal(t, []string{"webhook"}, rt.triggers)
	require.Equal(t, []string{"main"}, rt.branches)
	require.Equal(t, []string{"abc123"}, rt.commits)
}

func TestWebhookIgnoresOtherBranches(t *testing.T) {
	rt := newStubRuntime()
	h := newTestWebhook(config.Default(), rt)

	rec := postWebhook(t, h, `{"ref":"refs/heads/feature","after":"def456"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var ack webhookAck
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ack))
	require.Equal(t, "ignored", ack.Status)
	require.Empty(t, rt.triggers)
}

func TestWebhookValidatesSignature(t *testing.T) {
	cfg := config.Default()
	cfg.Daemon.Webhook.Secret = "s3cret"
	body := `{"ref":"refs/heads/main","after":"abc123"}`

	t.Run("valid sha256 accepted", func(t *testing.T) {
		rt := newStubRuntime()
		rec := postWebhook(t, newTestWebhook(cfg, rt), body, map[string]string{
			"X-Hub-Signature-256": signSHA256("s3cret", body),
		})
		require.Equal(t, http.StatusAccepted, rec.Code)
		require.Len(t, rt.triggers, 1)
	})

	t.Run("legacy sha1 accepted", func(t *testing.T) {
		rt := newStubRuntime()
		rec := postWebhook(t, newTestWebhook(cfg, rt), body, map[string]string{
			"X-Hub-Signature": signSHA1("s3cret", body),
		})
		require.Equal(t, http.StatusAccepted, rec.Code)
		require.Len(t, rt.triggers, 1)
	})

	t.Run("wrong secret rejected", func(t *testing.T) {
		rt := newStubRuntime()
		rec := postWebhook(t, newTestWebhook(cfg, rt), body, map[string]string{
			"X-Hub-Signature-256": signSHA256("wrong", body),
		})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Empty(t, rt.triggers)
	})

	t.Run("missing signature rejected", func(t *testing.T) {
		rt := newStubRuntime()
		rec := postWebhook(t, newTestWebhook(cfg, rt), body, nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Empty(t, rt.triggers)
	})
}

func TestWebhookRejectsNonPost(t *testing.T) {
	h := newTestWebhook(config.Default(), newStubRuntime())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/webhook/push", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWebhookRejectsInvalidJSON(t *testing.T) {
	rt := newStubRuntime()
	h := newTestWebhook(config.Default(), rt)

	rec := postWebhook(t, h, "not json", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Empty(t, rt.triggers)
}

func TestWebhookQueueFullMapsToServiceUnavailable(t *testing.T) {
	rt := newStubRuntime()
	rt.enqueueErr = guideerr.DaemonError("build queue full")
	h := newTestWebhook(config.Default(), rt)

	rec := postWebhook(t, h, `{"ref":"refs/heads/main","after":"abc123"}`, nil)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestNormalizeWebhookPath(t *testing.T) {
	require.Equal(t, "", normalizeWebhookPath("  "))
	require.Equal(t, "/hooks/push", normalizeWebhookPath("hooks/push"))
	require.Equal(t, "/webhook/push", normalizeWebhookPath("/webhook/push"))
}
