package server

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"git.home.luguber.info/inful/guidebuilder/internal/guideerr"
)

// adminHandlers serves health, readiness, status, and build-history endpoints.
type adminHandlers struct {
	rt        Runtime
	opts      Options
	adapter   *guideerr.HTTPErrorAdapter
	outputDir string
}

func (h *adminHandlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:       "healthy",
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
		Version:      h.opts.Version,
		Uptime:       time.Since(h.rt.StartTime()).Round(time.Second).String(),
		DaemonStatus: h.rt.Status(),
		ActiveJobs:   h.rt.ActiveJobs(),
	}
	if err := writeJSONPretty(w, r, http.StatusOK, resp); err != nil {
		h.adapter.WriteErrorResponse(w, r, guideerr.WrapError(err, guideerr.CategoryInternal, "failed to write health response"))
	}
}

// handleReadiness reports ready only once a rendered site exists.
func (h *adminHandlers) handleReadiness(w http.ResponseWriter, _ *http.Request) {
	index := filepath.Join(h.outputDir, "index.html")
	if st, err := os.Stat(index); err == nil && !st.IsDir() {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
		return
	}
	w.WriteHeader(http.StatusServiceUnavailable)
	_, _ = w.Write([]byte("not ready: no rendered site"))
}

func (h *adminHandlers) handleStatus(w http.ResponseWriter, r *http.Request) {
	start := h.rt.StartTime()
	resp := StatusResponse{
		Status:      h.rt.Status(),
		StartTime:   start.UTC().Format(time.RFC3339),
		Uptime:      time.Since(start).Round(time.Second).String(),
		QueueLength: h.rt.QueueLength(),
		ActiveJobs:  h.rt.ActiveJobs(),
	}
	if history := h.rt.History(); len(history) > 0 {
		resp.LastBuild = history[0]
	}
	if err := writeJSONPretty(w, r, http.StatusOK, resp); err != nil {
		h.adapter.WriteErrorResponse(w, r, guideerr.WrapError(err, guideerr.CategoryInternal, "failed to write status response"))
	}
}

func (h *adminHandlers) handleBuilds(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		err := guideerr.ValidationError("invalid HTTP method").
			WithContext("method", r.Method).
			WithContext("allowed_method", "GET")
		h.adapter.WriteErrorResponse(w, r, err)
		return
	}
	builds := h.rt.History()
	resp := BuildsResponse{Builds: builds, Count: len(builds)}
	if err := writeJSONPretty(w, r, http.StatusOK, resp); err != nil {
		h.adapter.WriteErrorResponse(w, r, guideerr.WrapError(err, guideerr.CategoryInternal, "failed to write builds response"))
	}
}

func (h *adminHandlers) handleBuildByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		err := guideerr.ValidationError("invalid HTTP method").
			WithContext("method", r.Method).
			WithContext("allowed_method", "GET")
		h.adapter.WriteErrorResponse(w, r, err)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/builds/")
	if id == "" || strings.Contains(id, "/") {
		h.adapter.WriteErrorResponse(w, r, guideerr.ValidationError("missing build id"))
		return
	}
	summary, ok := h.rt.Build(id)
	if !ok {
		err := guideerr.New(guideerr.CategoryNotFound, guideerr.SeverityWarning, "build not found").
			WithContext("build_id", id)
		h.adapter.WriteErrorResponse(w, r, err)
		return
	}
	if err := writeJSONPretty(w, r, http.StatusOK, summary); err != nil {
		h.adapter.WriteErrorResponse(w, r, guideerr.WrapError(err, guideerr.CategoryInternal, "failed to write build response"))
	}
}

func (h *adminHandlers) handleTrigger(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		err := guideerr.ValidationError("invalid HTTP method").
			WithContext("method", r.Method).
			WithContext("allowed_method", "POST")
		h.adapter.WriteErrorResponse(w, r, err)
		return
	}
	jobID, err := h.rt.EnqueueBuild("manual", "", "")
	if err != nil {
		h.adapter.WriteErrorResponse(w, r, err)
		return
	}
	_ = writeJSON(w, http.StatusAccepted, TriggerResponse{Status: "queued", JobID: jobID})
}

func (h *adminHandlers) mux(metricsHandler http.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", h.handleHealth)
	mux.HandleFunc("/healthz", h.handleHealth) // Kubernetes-style alias
	mux.HandleFunc("/ready", h.handleReadiness)
	mux.HandleFunc("/readyz", h.handleReadiness) // Kubernetes-style alias
	mux.HandleFunc("/status", h.handleStatus)
	mux.HandleFunc("/api/builds", h.handleBuilds)
	mux.HandleFunc("/api/builds/", h.handleBuildByID)
	mux.HandleFunc("/api/build/trigger", h.handleTrigger)
	if metricsHandler != nil {
		mux.Handle("/metrics", metricsHandler)
	}
	return mux
}
