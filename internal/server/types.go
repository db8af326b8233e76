package server

import (
	"net/http"
	"time"

	"git.home.luguber.info/inful/guidebuilder/internal/eventstore"
	"git.home.luguber.info/inful/guidebuilder/internal/metrics"
)

// Runtime is the daemon surface the HTTP handlers read from and trigger into.
// The daemon implements it; tests substitute a stub.
type Runtime interface {
	Status() string
	StartTime() time.Time
	QueueLength() int
	ActiveJobs() int

	History() []*eventstore.BuildSummary
	Build(buildID string) (*eventstore.BuildSummary, bool)

	// EnqueueBuild queues a build and returns its job ID. Trigger names the
	// source (webhook, schedule, manual); branch and commit may be empty.
	EnqueueBuild(trigger, branch, commit string) (string, error)
}

// Options configures optional server wiring that is runtime-specific.
type Options struct {
	// Optional: live reload support. When set, the site server gains the SSE
	// endpoint and injects the client script into HTML pages.
	Hub *Hub

	// Optional: Prometheus exposition handler, mounted at /metrics on the
	// admin server.
	Metrics http.Handler

	// Recorder receives webhook counters. Nil means no-op.
	Recorder metrics.Recorder

	// Version is reported by /healthz.
	Version string
}
