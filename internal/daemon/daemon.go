// Package daemon runs guidebuilder in continuous mode: a build queue fed by
// webhooks and a periodic sync schedule, a sqlite event log with an in-memory
// history projection, optional NATS publishing, and the HTTP surface.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/guidebuilder/internal/config"
	"git.home.luguber.info/inful/guidebuilder/internal/eventstore"
	"git.home.luguber.info/inful/guidebuilder/internal/gitsync"
	"git.home.luguber.info/inful/guidebuilder/internal/guideerr"
	"git.home.luguber.info/inful/guidebuilder/internal/linkcheck"
	"git.home.luguber.info/inful/guidebuilder/internal/logfields"
	"git.home.luguber.info/inful/guidebuilder/internal/metrics"
	"git.home.luguber.info/inful/guidebuilder/internal/server"
	"git.home.luguber.info/inful/guidebuilder/internal/version"
)

// Status is the daemon lifecycle state reported by /status.
type Status string

const (
	StatusStopped  Status = "stopped"
	StatusStarting Status = "starting"
	StatusRunning  Status = "running"
	StatusStopping Status = "stopping"
)

// Daemon owns every continuous-mode component and implements server.Runtime.
type Daemon struct {
	cfg        *config.Config
	configPath string

	status    atomic.Value // Status
	startTime time.Time

	queue         *BuildQueue
	executor      *executor
	scheduler     *Scheduler
	configWatcher *ConfigWatcher
	httpServer    *server.Server
	hub           *server.Hub

	store      eventstore.Store
	projection *eventstore.BuildHistoryProjection
	emitter    *EventEmitter
	publisher  *BuildEventPublisher
	linkCache  *linkcheck.NATSCache

	registry *prom.Registry
	recorder metrics.Recorder
}

// New assembles a daemon from a validated configuration. configPath enables
// live config reloading when non-empty. ctx bounds the NATS handshakes and
// the projection rebuild; it does not outlive New.
func New(ctx context.Context, cfg *config.Config, configPath string) (*Daemon, error) {
	if cfg == nil {
		return nil, guideerr.ValidationError("configuration is required")
	}
	if err := cfg.ValidateDaemon(); err != nil {
		return nil, err
	}

	d := &Daemon{cfg: cfg, configPath: configPath}
	d.status.Store(StatusStopped)

	d.registry = prom.NewRegistry()
	d.recorder = metrics.NewPrometheusRecorder(d.registry)

	store, err := eventstore.NewSQLiteStore(cfg.Daemon.EventStore.Path)
	if err != nil {
		return nil, fmt.Errorf("open event store: %w", err)
	}
	d.store = store
	d.projection = eventstore.NewBuildHistoryProjection(store, 100)
	if err := d.projection.Rebuild(ctx); err != nil {
		// Non-fatal: history starts empty and refills as builds run.
		slog.Warn("rebuilding build history projection", logfields.Error(err))
	}

	var publisher LifecyclePublisher
	if cfg.Daemon.NATS.Enabled() {
		p, err := NewBuildEventPublisher(ctx, cfg.Daemon.NATS)
		if err != nil {
			d.closeStores()
			return nil, fmt.Errorf("connect build event publisher: %w", err)
		}
		d.publisher = p
		publisher = p

		if cfg.Build.VerifyLinks {
			cache, err := linkcheck.NewNATSCache(ctx, linkcheck.NATSCacheOptions{
				URL:     cfg.Daemon.NATS.URL,
				Bucket:  cfg.Daemon.NATS.KVBucket,
				Subject: cfg.Daemon.NATS.Subject + ".links.broken",
			})
			if err != nil {
				d.closeStores()
				return nil, fmt.Errorf("connect link cache: %w", err)
			}
			d.linkCache = cache
		}
	}

	d.emitter = NewEventEmitter(store, d.projection, publisher)
	d.hub = server.NewHub(slog.Default())

	syncer := gitsync.New(cfg.Daemon.Repo, cfg.Daemon.WorkDir)
	d.executor = newExecutor(cfg, syncer, d.emitter, d.recorder)
	d.executor.broadcast = d.hub.Broadcast
	d.executor.linkCache = d.linkCache

	d.queue = NewBuildQueue(cfg.Daemon.QueueSize, cfg.Daemon.Workers, d.recorder, d.executor.run)

	d.httpServer = server.New(cfg, d, server.Options{
		Hub:      d.hub,
		Metrics:  metrics.HTTPHandler(d.registry),
		Recorder: d.recorder,
		Version:  version.Version,
	})

	d.scheduler, err = NewScheduler()
	if err != nil {
		d.closeStores()
		return nil, err
	}

	if configPath != "" {
		d.configWatcher, err = NewConfigWatcher(configPath, 0, d.applyConfig)
		if err != nil {
			d.closeStores()
			return nil, err
		}
	}

	return d, nil
}

// Start brings every component up and blocks until ctx is canceled. Call
// Stop afterwards to drain in-flight work.
func (d *Daemon) Start(ctx context.Context) error {
	if s := d.currentStatus(); s != StatusStopped {
		return guideerr.DaemonError("daemon is not stopped").WithContext("status", string(s))
	}
	d.status.Store(StatusStarting)
	d.startTime = time.Now()

	if err := d.httpServer.Start(ctx); err != nil {
		d.status.Store(StatusStopped)
		return err
	}
	d.queue.Start(ctx)

	interval, err := d.cfg.Daemon.SyncIntervalDuration()
	if err != nil {
		// ValidateDaemon already vetted the interval; this is unreachable
		// short of a reload race, so treat it as fatal.
		return err
	}
	if _, err := d.scheduler.ScheduleEvery("corpus-sync", interval, d.scheduledSync); err != nil {
		return err
	}
	d.scheduler.Start(ctx)

	if d.configWatcher != nil {
		if err := d.configWatcher.Start(); err != nil {
			slog.Error("starting config watcher", logfields.Error(err))
		}
	}

	d.status.Store(StatusRunning)
	slog.Info("daemon started",
		slog.Int("site_port", d.cfg.Daemon.SitePort),
		slog.Int("webhook_port", d.cfg.Daemon.WebhookPort),
		slog.Int("admin_port", d.cfg.Daemon.AdminPort),
		slog.String("repo", d.cfg.Daemon.Repo.URL),
		slog.Duration("sync_interval", interval))

	<-ctx.Done()
	d.status.Store(StatusStopping)
	return nil
}

// Stop shuts components down in reverse dependency order: stop producing
// jobs, drain workers, then close the HTTP surface and the stores.
func (d *Daemon) Stop(ctx context.Context) error {
	if d.currentStatus() == StatusStopped {
		return nil
	}
	d.status.Store(StatusStopping)

	if d.configWatcher != nil {
		d.configWatcher.Stop()
	}

	var errs []error
	if err := d.scheduler.Stop(ctx); err != nil {
		errs = append(errs, fmt.Errorf("stop scheduler: %w", err))
	}
	if err := d.queue.Stop(ctx); err != nil {
		errs = append(errs, fmt.Errorf("stop build queue: %w", err))
	}
	if err := d.httpServer.Stop(ctx); err != nil {
		errs = append(errs, fmt.Errorf("stop http servers: %w", err))
	}
	errs = append(errs, d.closeStores())

	d.status.Store(StatusStopped)
	slog.Info("daemon stopped")
	return errors.Join(errs...)
}

// closeStores releases the NATS connections and the sqlite store.
func (d *Daemon) closeStores() error {
	var errs []error
	if d.linkCache != nil {
		if err := d.linkCache.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close link cache: %w", err))
		}
	}
	if d.publisher != nil {
		if err := d.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close event publisher: %w", err))
		}
	}
	if d.store != nil {
		if err := d.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close event store: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (d *Daemon) currentStatus() Status {
	s, _ := d.status.Load().(Status)
	return s
}

// scheduledSync is the periodic tick: enqueue a sync-and-build job. A full
// queue means builds are already backed up, so the tick is dropped.
func (d *Daemon) scheduledSync() {
	if _, err := d.EnqueueBuild("schedule", "", ""); err != nil {
		slog.Warn("scheduled build not enqueued", logfields.Error(err))
	}
}

// applyConfig is the config watcher callback. Settings the running
// components read per job (repo, content, site, build) take effect on the
// next build; listener ports and store paths need a restart.
func (d *Daemon) applyConfig(newCfg *config.Config) error {
	old := d.cfg
	if newCfg.Daemon.SitePort != old.Daemon.SitePort ||
		newCfg.Daemon.WebhookPort != old.Daemon.WebhookPort ||
		newCfg.Daemon.AdminPort != old.Daemon.AdminPort {
		slog.Warn("port changes take effect after restart")
	}
	if newCfg.Daemon.EventStore.Path != old.Daemon.EventStore.Path {
		slog.Warn("event store path change takes effect after restart")
	}
	if newCfg.Daemon.NATS != old.Daemon.NATS {
		slog.Warn("nats changes take effect after restart")
	}

	syncer := gitsync.New(newCfg.Daemon.Repo, newCfg.Daemon.WorkDir)
	d.executor.update(newCfg, syncer)
	d.cfg = newCfg
	return nil
}

// Status implements server.Runtime.
func (d *Daemon) Status() string { return string(d.currentStatus()) }

// StartTime implements server.Runtime.
func (d *Daemon) StartTime() time.Time { return d.startTime }

// QueueLength implements server.Runtime.
func (d *Daemon) QueueLength() int { return d.queue.Length() }

// ActiveJobs implements server.Runtime.
func (d *Daemon) ActiveJobs() int { return d.queue.Active() }

// History implements server.Runtime.
func (d *Daemon) History() []*eventstore.BuildSummary {
	return d.projection.GetHistory()
}

// Build implements server.Runtime.
func (d *Daemon) Build(buildID string) (*eventstore.BuildSummary, bool) {
	return d.projection.GetBuild(buildID)
}

// EnqueueBuild implements server.Runtime: mint a job ID and queue the build.
func (d *Daemon) EnqueueBuild(trigger, branch, commit string) (string, error) {
	job := &BuildJob{
		ID:        uuid.NewString(),
		Trigger:   trigger,
		Branch:    branch,
		Commit:    commit,
		CreatedAt: time.Now(),
	}
	if err := d.queue.Enqueue(job); err != nil {
		return "", err
	}
	return job.ID, nil
}
