// Package metrics defines the Recorder interface for build observability.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so metrics never require nil checks and cost nothing when
// disabled. The daemon swaps in PrometheusRecorder and exposes the registry
// on its admin endpoint.
package metrics

import "time"

// ResultLabel enumerates stage result categories for counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultWarning  ResultLabel = "warning"
	ResultFatal    ResultLabel = "fatal"
	ResultCanceled ResultLabel = "canceled"
)

// Recorder defines observability hooks for build, sync, and daemon metrics.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	ObserveBuildDuration(d time.Duration)
	IncStageResult(stage string, result ResultLabel)
	IncBuildOutcome(outcome string) // outcome: success|warning|failed|canceled
	ObserveSyncDuration(d time.Duration, success bool)
	SetPagesRendered(n int)
	SetQueueDepth(n int)
	IncWebhookReceived(accepted bool)
}

// NoopRecorder is a Recorder that does nothing (default when metrics are not
// configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration) {}
func (NoopRecorder) ObserveBuildDuration(time.Duration)         {}
func (NoopRecorder) IncStageResult(string, ResultLabel)         {}
func (NoopRecorder) IncBuildOutcome(string)                     {}
func (NoopRecorder) ObserveSyncDuration(time.Duration, bool)    {}
func (NoopRecorder) SetPagesRendered(int)                       {}
func (NoopRecorder) SetQueueDepth(int)                          {}
func (NoopRecorder) IncWebhookReceived(bool)                    {}
