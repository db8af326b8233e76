package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	stageDuration   *prom.HistogramVec
	buildDuration   prom.Histogram
	stageResults    *prom.CounterVec
	buildOutcome    *prom.CounterVec
	syncDuration    *prom.HistogramVec
	pagesRendered   prom.Gauge
	queueDepth      prom.Gauge
	webhookReceived *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers the guidebuilder metrics on
// reg (a fresh registry when nil).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}

	pr := &PrometheusRecorder{
		stageDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "guidebuilder",
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual build stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"}),
		buildDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "guidebuilder",
			Name:      "build_duration_seconds",
			Help:      "Total build duration",
			Buckets:   prom.DefBuckets,
		}),
		stageResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "guidebuilder",
			Name:      "stage_results_total",
			Help:      "Stage result counts by outcome",
		}, []string{"stage", "result"}),
		buildOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "guidebuilder",
			Name:      "build_outcomes_total",
			Help:      "Build outcomes by final status",
		}, []string{"outcome"}),
		syncDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "guidebuilder",
			Name:      "corpus_sync_duration_seconds",
			Help:      "Duration of corpus repository sync operations",
			Buckets:   prom.DefBuckets,
		}, []string{"result"}),
		pagesRendered: prom.NewGauge(prom.GaugeOpts{
			Namespace: "guidebuilder",
			Name:      "pages_rendered",
			Help:      "Pages rendered by the most recent build",
		}),
		queueDepth: prom.NewGauge(prom.GaugeOpts{
			Namespace: "guidebuilder",
			Name:      "build_queue_depth",
			Help:      "Jobs waiting in the build queue",
		}),
		webhookReceived: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "guidebuilder",
			Name:      "webhooks_received_total",
			Help:      "Webhook deliveries by acceptance",
		}, []string{"result"}),
	}

	reg.MustRegister(
		pr.stageDuration,
		pr.buildDuration,
		pr.stageResults,
		pr.buildOutcome,
		pr.syncDuration,
		pr.pagesRendered,
		pr.queueDepth,
		pr.webhookReceived,
	)
	return pr
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncStageResult(stage string, result ResultLabel) {
	if p == nil {
		return
	}
	p.stageResults.WithLabelValues(stage, string(result)).Inc()
}

func (p *PrometheusRecorder) IncBuildOutcome(outcome string) {
	if p == nil {
		return
	}
	p.buildOutcome.WithLabelValues(outcome).Inc()
}

func (p *PrometheusRecorder) ObserveSyncDuration(d time.Duration, success bool) {
	if p == nil {
		return
	}
	p.syncDuration.WithLabelValues(resultString(success)).Observe(d.Seconds())
}

func (p *PrometheusRecorder) SetPagesRendered(n int) {
	if p == nil {
		return
	}
	p.pagesRendered.Set(float64(n))
}

func (p *PrometheusRecorder) SetQueueDepth(n int) {
	if p == nil {
		return
	}
	p.queueDepth.Set(float64(n))
}

func (p *PrometheusRecorder) IncWebhookReceived(accepted bool) {
	if p == nil {
		return
	}
	label := "rejected"
	if accepted {
		label = "accepted"
	}
	p.webhookReceived.WithLabelValues(label).Inc()
}

func resultString(success bool) string {
	if success {
		return "success"
	}
	return "failed"
}
