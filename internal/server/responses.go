package server

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"

	"git.home.luguber.info/inful/guidebuilder/internal/eventstore"
	"git.home.luguber.info/inful/guidebuilder/internal/logfields"
)

// HealthResponse is returned by /healthz.
type HealthResponse struct {
	Status       string `json:"status"`
	Timestamp    string `json:"timestamp"`
	Version      string `json:"version,omitempty"`
	Uptime       string `json:"uptime"`
	DaemonStatus string `json:"daemon_status"`
	ActiveJobs   int    `json:"active_jobs"`
}

// StatusResponse is returned by /status.
type StatusResponse struct {
	Status      string                   `json:"status"`
	StartTime   string                   `json:"start_time"`
	Uptime      string                   `json:"uptime"`
	QueueLength int                      `json:"queue_length"`
	ActiveJobs  int                      `json:"active_jobs"`
	LastBuild   *eventstore.BuildSummary `json:"last_build,omitempty"`
}

// BuildsResponse is returned by /api/builds.
type BuildsResponse struct {
	Builds []*eventstore.BuildSummary `json:"builds"`
	Count  int                        `json:"count"`
}

// TriggerResponse acknowledges an accepted build trigger.
type TriggerResponse struct {
	Status string `json:"status"`
	JobID  string `json:"job_id"`
}

// webhookAck acknowledges a webhook delivery that did not queue a build.
type webhookAck struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

// writeJSON serializes the provided value to JSON and writes it with the
// given status code. Encoding goes through an intermediate buffer so a failed
// encode never sends a partial body.
func writeJSON(w http.ResponseWriter, status int, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(true)
	if err := enc.Encode(v); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Error("failed writing JSON response body", logfields.Error(err))
		return err
	}
	return nil
}

// writeJSONPretty indents the response when the request carries pretty=1 or
// pretty=true, falling back to compact form if indentation fails.
func writeJSONPretty(w http.ResponseWriter, r *http.Request, status int, v any) error {
	if r != nil {
		if p := r.URL.Query().Get("pretty"); p == "1" || p == "true" {
			b, err := json.MarshalIndent(v, "", "  ")
			if err == nil {
				w.Header().Set("Content-Type", "application/json; charset=utf-8")
				w.WriteHeader(status)
				if _, werr := w.Write(append(b, '\n')); werr != nil { // newline parity with Encoder
					slog.Error("failed writing pretty JSON", logfields.Error(werr))
					return werr
				}
				return nil
			}
			slog.Warn("pretty JSON marshal failed, falling back to standard encode", logfields.Error(err))
		}
	}
	return writeJSON(w, status, v)
}
