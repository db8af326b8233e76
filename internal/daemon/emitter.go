package daemon

import (
	"context"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/guidebuilder/internal/eventstore"
	"git.home.luguber.info/inful/guidebuilder/internal/gitsync"
	"git.home.luguber.info/inful/guidebuilder/internal/logfields"
)

// LifecyclePublisher forwards build lifecycle events to an external bus.
// Publishing is best effort: the sqlite store is the system of record.
type LifecyclePublisher interface {
	Publish(ctx context.Context, event eventstore.Event) error
}

// EventEmitter records build lifecycle events: append to the store, apply to
// the in-memory projection, and optionally publish to NATS. Emission never
// fails a build; storage problems are logged and the build carries on.
type EventEmitter struct {
	store      eventstore.Store
	projection *eventstore.BuildHistoryProjection
	publisher  LifecyclePublisher
}

// NewEventEmitter wires the emitter. publisher may be nil.
func NewEventEmitter(store eventstore.Store, projection *eventstore.BuildHistoryProjection, publisher LifecyclePublisher) *EventEmitter {
	return &EventEmitter{store: store, projection: projection, publisher: publisher}
}

// emit is the canonical event path: persist, project, publish.
func (e *EventEmitter) emit(ctx context.Context, event eventstore.Event, buildErr error) {
	if e == nil || event == nil {
		return
	}
	if buildErr != nil {
		slog.Warn("skipping event emission, constructor failed",
			logfields.Error(buildErr))
		return
	}

	if e.store != nil {
		if err := e.store.Append(ctx, event.BuildID(), event.Type(), event.Payload(), event.Metadata()); err != nil {
			slog.Error("failed to persist build event",
				logfields.BuildID(event.BuildID()),
				slog.String("event", event.Type()),
				logfields.Error(err))
		}
	}
	if e.projection != nil {
		e.projection.Apply(event)
	}
	if e.publisher != nil {
		if err := e.publisher.Publish(ctx, event); err != nil {
			slog.Warn("failed to publish build event",
				logfields.BuildID(event.BuildID()),
				slog.String("event", event.Type()),
				logfields.Error(err))
		}
	}
}

// BuildStarted records the start of a build.
func (e *EventEmitter) BuildStarted(ctx context.Context, buildID string, meta eventstore.BuildStartedMeta) {
	event, err := eventstore.NewBuildStarted(buildID, meta)
	e.emit(ctx, event, err)
}

// SourceSynced records the outcome of the git sync preceding a build.
func (e *EventEmitter) SourceSynced(ctx context.Context, buildID string, res *gitsync.Result, d time.Duration) {
	if res == nil {
		return
	}
	event, err := eventstore.NewSourceSynced(buildID, res.Commit, res.Branch, res.Cloned, res.Changed, d)
	e.emit(ctx, event, err)
}

// PagesDiscovered records the corpus scan counts.
func (e *EventEmitter) PagesDiscovered(ctx context.Context, buildID string, pages, assets, sections int) {
	event, err := eventstore.NewPagesDiscovered(buildID, pages, assets, sections)
	e.emit(ctx, event, err)
}

// SiteRendered records the rendered output written by a build.
func (e *EventEmitter) SiteRendered(ctx context.Context, buildID, outputDir string, rendered, stubs, assets int, d time.Duration) {
	event, err := eventstore.NewSiteRendered(buildID, outputDir, rendered, stubs, assets, d)
	e.emit(ctx, event, err)
}

// BuildCompleted records a terminal non-failure outcome.
func (e *EventEmitter) BuildCompleted(ctx context.Context, buildID, outcome string, d time.Duration, report eventstore.ReportData) {
	event, err := eventstore.NewBuildCompleted(buildID, outcome, d, report)
	e.emit(ctx, event, err)
}

// BuildFailed records a fatal build error.
func (e *EventEmitter) BuildFailed(ctx context.Context, buildID, stage, errorMsg string) {
	event, err := eventstore.NewBuildFailed(buildID, stage, errorMsg)
	e.emit(ctx, event, err)
}
