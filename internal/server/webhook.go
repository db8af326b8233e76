package server

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"git.home.luguber.info/inful/guidebuilder/internal/config"
	"git.home.luguber.info/inful/guidebuilder/internal/guideerr"
	"git.home.luguber.info/inful/guidebuilder/internal/logfields"
	"git.home.luguber.info/inful/guidebuilder/internal/metrics"
)

const (
	defaultWebhookPath = "/webhook/push"
	maxWebhookBody     = 1 << 20 // 1MB
)

func normalizeWebhookPath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	if !strings.HasPrefix(p, "/") {
		return "/" + p
	}
	return p
}

// pushPayload is the subset of a forge push event the daemon cares about.
type pushPayload struct {
	Ref   string `json:"ref"`
	After string `json:"after"`
}

// webhookHandler accepts push notifications and queues rebuilds. Deliveries
// for branches other than the watched one are acknowledged but ignored.
type webhookHandler struct {
	cfg      *config.Config
	rt       Runtime
	recorder metrics.Recorder
	adapter  *guideerr.HTTPErrorAdapter
	logger   *slog.Logger
}

func (h *webhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		err := guideerr.ValidationError("invalid HTTP method").
			WithContext("method", r.Method).
			WithContext("allowed_method", "POST")
		h.adapter.WriteErrorResponse(w, r, err)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		h.recorder.IncWebhookReceived(false)
		h.adapter.WriteErrorResponse(w, r, guideerr.ValidationError("unreadable request body"))
		return
	}

	if secret := h.cfg.Daemon.Webhook.Secret; secret != "" {
		if !validSignature(body, r.Header, secret) {
			h.recorder.IncWebhookReceived(false)
			sigErr := guideerr.New(guideerr.CategoryAuth, guideerr.SeverityWarning, "webhook signature mismatch").
				WithContext("remote_addr", r.RemoteAddr)
			h.adapter.WriteErrorResponse(w, r, sigErr)
			return
		}
	}

	var payload pushPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		h.recorder.IncWebhookReceived(false)
		derr := guideerr.ValidationError("invalid JSON payload").
			WithContext("content_type", r.Header.Get("Content-Type")).
			WithContext("error", err.Error())
		h.adapter.WriteErrorResponse(w, r, derr)
		return
	}

	branch := strings.TrimPrefix(payload.Ref, "refs/heads/")
	if want := h.cfg.Daemon.Repo.Branch; want != "" && payload.Ref != "" && branch != want {
		h.recorder.IncWebhookReceived(true)
		h.logger.Debug("webhook for unwatched branch ignored", "branch", branch, "watched", want)
		_ = writeJSON(w, http.StatusOK, webhookAck{Status: "ignored", Reason: "branch not watched"})
		return
	}

	jobID, err := h.rt.EnqueueBuild("webhook", branch, payload.After)
	if err != nil {
		h.recorder.IncWebhookReceived(false)
		h.adapter.WriteErrorResponse(w, r, err)
		return
	}

	h.recorder.IncWebhookReceived(true)
	h.logger.Info("webhook build queued",
		logfields.JobID(jobID),
		"branch", branch,
		"commit", payload.After)
	_ = writeJSON(w, http.StatusAccepted, TriggerResponse{Status: "queued", JobID: jobID})
}

// validSignature checks the forge HMAC signature against the shared secret.
// The SHA-256 header is preferred; the legacy SHA-1 form is accepted for
// older forges.
func validSignature(payload []byte, header http.Header, secret string) bool {
	if sig := header.Get("X-Hub-Signature-256"); strings.HasPrefix(sig, "sha256=") {
		expected := sig[len("sha256="):]
		mac := hmac.New(sha256.New, []byte(secret))
		mac.Write(payload)
		calc := hex.EncodeToString(mac.Sum(nil))
		return hmac.Equal([]byte(expected), []byte(calc))
	}

	if sig := header.Get("X-Hub-Signature"); strings.HasPrefix(sig, "sha1=") {
		expected := sig[len("sha1="):]
		mac := hmac.New(sha1.New, []byte(secret))
		mac.Write(payload)
		calc := hex.EncodeToString(mac.Sum(nil))
		return hmac.Equal([]byte(expected), []byte(calc))
	}

	return false
}
