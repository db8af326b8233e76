package site

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/guidebuilder/internal/config"
	"git.home.luguber.info/inful/guidebuilder/internal/linkcheck"
	"git.home.luguber.info/inful/guidebuilder/internal/logfields"
	"git.home.luguber.info/inful/guidebuilder/internal/metrics"
)

// Builder generates the complete site from a content tree.
type Builder struct {
	cfg         *config.Config
	contentRoot string
	outputDir   string
	stageDir    string // ephemeral staging dir for the current build
	keepStaging bool
	buildID     string // externally assigned; empty means generate one

	templates *TemplateSet // loaded during prepare_staging
	recorder  metrics.Recorder

	// Daemon-mode link verification wiring; nil means internal-only
	// checks with an in-process cache.
	linkCache     linkcheck.ResultCache
	linkPublisher linkcheck.EventPublisher
	checkExternal bool
}

// NewBuilder creates a Builder from configuration.
func NewBuilder(cfg *config.Config) *Builder {
	return &Builder{
		cfg:         cfg,
		contentRoot: filepath.Clean(cfg.Content.Root),
		outputDir:   filepath.Clean(cfg.Build.OutputDir),
		keepStaging: cfg.Build.KeepStaging,
		recorder:    metrics.NoopRecorder{},
	}
}

// SetBuildID fixes the build ID instead of generating one. The daemon uses
// this so queue job, event trail, and persisted report share one ID.
func (b *Builder) SetBuildID(id string) *Builder {
	b.buildID = id
	return b
}

// SetRecorder injects a metrics recorder. Returns the builder for chaining.
func (b *Builder) SetRecorder(r metrics.Recorder) *Builder {
	if r == nil {
		b.recorder = metrics.NoopRecorder{}
		return b
	}
	b.recorder = r
	return b
}

// SetLinkVerification wires a shared result cache and event publisher and
// enables external link probing. Used by the daemon; one-shot builds keep
// the defaults (internal checks only).
func (b *Builder) SetLinkVerification(cache linkcheck.ResultCache, publisher linkcheck.EventPublisher) *Builder {
	b.linkCache = cache
	b.linkPublisher = publisher
	b.checkExternal = true
	return b
}

// OutputDir returns the final output directory.
func (b *Builder) OutputDir() string { return b.outputDir }

// Build runs the full pipeline and atomically promotes the result into
// the output directory. The returned report is non-nil even on failure
// so callers can inspect what happened.
func (b *Builder) Build(ctx context.Context) (*BuildReport, error) {
	buildID := b.buildID
	if buildID == "" {
		buildID = uuid.NewString()
	}
	slog.Info("starting site build", logfields.BuildID(buildID), "content", b.contentRoot, "output", b.outputDir)

	report := newBuildReport(buildID)
	bs := newBuildState(b, report)

	if err := b.beginStaging(); err != nil {
		report.AddIssue(IssueGenericStageError, StagePrepareStaging, SeverityError, err.Error(), false, err)
		report.deriveOutcome()
		report.finish()
		return report, err
	}

	stages := NewPipeline().
		Add(StagePrepareStaging, stagePrepareStaging).
		Add(StageScanCorpus, stageScanCorpus).
		Add(StageResolveNav, stageResolveNav).
		Add(StageRenderPages, stageRenderPages).
		Add(StageCopyAssets, stageCopyAssets).
		Add(StageIndexes, stageIndexes).
		AddIf(b.cfg.Build.VerifyLinks, StageVerifyLinks, stageVerifyLinks).
		Build()

	if err := runStages(ctx, bs, stages); err != nil {
		report.deriveOutcome()
		report.finish()
		b.abortStaging()
		b.recordBuildMetrics(report)
		return report, err
	}

	report.deriveOutcome()
	report.finish()
	if err := b.finalizeStaging(); err != nil {
		return report, fmt.Errorf("finalize staging: %w", err)
	}
	// Persist report (best effort) inside the final output directory.
	if err := report.Persist(b.outputDir); err != nil {
		slog.Warn("failed to persist build report", "error", err)
	}
	b.recordBuildMetrics(report)
	slog.Info("site build completed",
		logfields.BuildID(buildID),
		"pages", report.Pages,
		"rendered", report.RenderedPages,
		"sections", report.Sections,
		"outcome", report.Outcome)
	return report, nil
}

func (b *Builder) recordBuildMetrics(report *BuildReport) {
	if b.recorder == nil {
		return
	}
	b.recorder.ObserveBuildDuration(report.End.Sub(report.Start))
	b.recorder.IncBuildOutcome(report.Outcome)
	b.recorder.SetPagesRendered(report.RenderedPages)
}
