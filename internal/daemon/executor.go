package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"git.home.luguber.info/inful/guidebuilder/internal/config"
	"git.home.luguber.info/inful/guidebuilder/internal/eventstore"
	"git.home.luguber.info/inful/guidebuilder/internal/gitsync"
	"git.home.luguber.info/inful/guidebuilder/internal/linkcheck"
	"git.home.luguber.info/inful/guidebuilder/internal/logfields"
	"git.home.luguber.info/inful/guidebuilder/internal/metrics"
	"git.home.luguber.info/inful/guidebuilder/internal/site"
)

// executor runs one build job end to end: sync the corpus checkout, run the
// site pipeline, emit lifecycle events, and notify livereload clients on a
// promoted build. Config and syncer are swappable so a config reload takes
// effect on the next job without disturbing one in flight.
type executor struct {
	emitter   *EventEmitter
	recorder  metrics.Recorder
	broadcast func(hash string) // nil when livereload is off
	linkCache *linkcheck.NATSCache

	mu     sync.RWMutex
	cfg    *config.Config
	syncer *gitsync.Syncer
}

func newExecutor(cfg *config.Config, syncer *gitsync.Syncer, emitter *EventEmitter, recorder metrics.Recorder) *executor {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &executor{
		emitter:  emitter,
		recorder: recorder,
		cfg:      cfg,
		syncer:   syncer,
	}
}

// snapshot returns the current config and syncer for one job.
func (e *executor) snapshot() (*config.Config, *gitsync.Syncer) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cfg, e.syncer
}

// update swaps config and syncer after a reload. In-flight jobs keep the
// pair they started with.
func (e *executor) update(cfg *config.Config, syncer *gitsync.Syncer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cfg = cfg
	e.syncer = syncer
}

// run executes one job. Used as the BuildQueue worker callback.
func (e *executor) run(ctx context.Context, job *BuildJob, worker int) {
	cfg, syncer := e.snapshot()
	start := time.Now()

	slog.Info("build job started",
		logfields.BuildID(job.ID),
		slog.String("trigger", job.Trigger),
		logfields.Worker(fmt.Sprintf("worker-%d", worker)))
	e.emitter.BuildStarted(ctx, job.ID, eventstore.BuildStartedMeta{
		Trigger: job.Trigger,
		Commit:  job.Commit,
		Worker:  worker,
	})

	syncStart := time.Now()
	res, err := syncer.Sync(ctx)
	syncDur := time.Since(syncStart)
	e.recorder.ObserveSyncDuration(syncDur, err == nil)
	if err != nil {
		slog.Error("corpus sync failed",
			logfields.BuildID(job.ID),
			logfields.Error(err))
		e.emitter.BuildFailed(ctx, job.ID, "sync", err.Error())
		return
	}
	e.emitter.SourceSynced(ctx, job.ID, res, syncDur)

	// Build against the synced checkout, not the local content root.
	buildCfg := *cfg
	buildCfg.Content.Root = syncer.ContentDir()

	builder := site.NewBuilder(&buildCfg).
		SetBuildID(job.ID).
		SetRecorder(e.recorder)
	if e.linkCache != nil {
		builder.SetLinkVerification(e.linkCache, e.linkCache)
	}

	report, buildErr := builder.Build(ctx)
	if report.Pages > 0 {
		e.emitter.PagesDiscovered(ctx, job.ID, report.Pages, report.Assets, report.Sections)
	}

	duration := time.Since(start)
	if buildErr != nil {
		if report.OutcomeT == site.OutcomeCanceled {
			slog.Warn("build canceled", logfields.BuildID(job.ID))
			e.emitter.BuildCompleted(ctx, job.ID, report.Outcome, duration, reportData(report))
			return
		}
		slog.Error("build failed",
			logfields.BuildID(job.ID),
			logfields.Stage(string(failureStage(report))),
			logfields.Error(buildErr))
		e.emitter.BuildFailed(ctx, job.ID, string(failureStage(report)), buildErr.Error())
		return
	}

	e.emitter.SiteRendered(ctx, job.ID, buildCfg.Build.OutputDir,
		report.RenderedPages, report.StubsGenerated, report.AssetsCopied,
		report.End.Sub(report.Start))
	e.emitter.BuildCompleted(ctx, job.ID, report.Outcome, duration, reportData(report))
	if e.broadcast != nil {
		e.broadcast(job.ID)
	}
	slog.Info("build job completed",
		logfields.BuildID(job.ID),
		slog.String("trigger", job.Trigger),
		slog.String("commit", res.ShortCommit()),
		slog.Duration("duration", duration.Truncate(time.Millisecond)),
		slog.String("outcome", report.Outcome))
}

// failureStage picks the stage to blame for a fatal build error: the first
// stage that recorded a fatal result, falling back to "build".
func failureStage(report *site.BuildReport) site.StageName {
	for _, issue := range report.Issues {
		if issue.Severity == site.SeverityError {
			return issue.Stage
		}
	}
	for stage, counts := range report.StageCounts {
		if counts.Fatal > 0 {
			return stage
		}
	}
	return "build"
}

// reportData projects the build report onto the event payload shape.
func reportData(report *site.BuildReport) eventstore.ReportData {
	return eventstore.ReportData{
		Pages:          report.Pages,
		Assets:         report.Assets,
		Sections:       report.Sections,
		RenderedPages:  report.RenderedPages,
		StubsGenerated: report.StubsGenerated,
		AssetsCopied:   report.AssetsCopied,
		LinksChecked:   report.LinksChecked,
		BrokenLinks:    report.BrokenLinks,
		Warnings:       len(report.Warnings),
		Outcome:        report.Outcome,
	}
}
