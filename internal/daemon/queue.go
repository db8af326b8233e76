package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"git.home.luguber.info/inful/guidebuilder/internal/guideerr"
	"git.home.luguber.info/inful/guidebuilder/internal/logfields"
	"git.home.luguber.info/inful/guidebuilder/internal/metrics"
)

// BuildJob is one queued build request. The job itself stays small: status
// and history live in the event store, keyed by the job ID.
type BuildJob struct {
	ID        string
	Trigger   string // "webhook", "schedule", "manual"
	Branch    string
	Commit    string
	CreatedAt time.Time
}

// BuildQueue feeds queued jobs to a fixed pool of workers. Enqueue never
// blocks; a full queue is reported to the caller so webhook deliveries get
// a clean 503 instead of piling up.
type BuildQueue struct {
	jobs     chan *BuildJob
	workers  int
	execute  func(ctx context.Context, job *BuildJob, worker int)
	recorder metrics.Recorder

	active   atomic.Int32
	stopOnce sync.Once
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewBuildQueue creates a queue with the given capacity and worker count.
// execute is called once per job from a worker goroutine.
func NewBuildQueue(size, workers int, recorder metrics.Recorder, execute func(ctx context.Context, job *BuildJob, worker int)) *BuildQueue {
	if size <= 0 {
		size = 16
	}
	if workers <= 0 {
		workers = 1
	}
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &BuildQueue{
		jobs:     make(chan *BuildJob, size),
		workers:  workers,
		execute:  execute,
		recorder: recorder,
		stopChan: make(chan struct{}),
	}
}

// Start launches the worker pool.
func (q *BuildQueue) Start(ctx context.Context) {
	slog.Info("build queue started", slog.Int("workers", q.workers), slog.Int("capacity", cap(q.jobs)))
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(ctx, i)
	}
}

// Stop shuts the workers down, waiting for in-flight jobs until ctx expires.
// The jobs themselves are canceled through the context passed to Start.
func (q *BuildQueue) Stop(ctx context.Context) error {
	q.stopOnce.Do(func() { close(q.stopChan) })

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		slog.Info("build queue stopped")
		return nil
	case <-ctx.Done():
		return guideerr.DaemonError("build queue did not drain before shutdown deadline").
			WithContext("active_jobs", int(q.active.Load()))
	}
}

// Enqueue adds a job without blocking.
func (q *BuildQueue) Enqueue(job *BuildJob) error {
	if job == nil || job.ID == "" {
		return guideerr.ValidationError("build job requires an ID")
	}
	select {
	case q.jobs <- job:
		q.recorder.SetQueueDepth(len(q.jobs))
		slog.Info("build job enqueued",
			logfields.JobID(job.ID),
			slog.String("trigger", job.Trigger))
		return nil
	default:
		return guideerr.DaemonError("build queue full").
			WithContext("queue_size", cap(q.jobs))
	}
}

// Length returns the number of jobs waiting.
func (q *BuildQueue) Length() int { return len(q.jobs) }

// Active returns the number of jobs currently executing.
func (q *BuildQueue) Active() int { return int(q.active.Load()) }

func (q *BuildQueue) worker(ctx context.Context, id int) {
	defer q.wg.Done()
	name := fmt.Sprintf("worker-%d", id)
	slog.Debug("build worker started", logfields.Worker(name))

	for {
		select {
		case <-ctx.Done():
			slog.Debug("build worker stopped by context", logfields.Worker(name))
			return
		case <-q.stopChan:
			slog.Debug("build worker stopped", logfields.Worker(name))
			return
		case job := <-q.jobs:
			if job == nil {
				continue
			}
			q.recorder.SetQueueDepth(len(q.jobs))
			q.active.Add(1)
			q.execute(ctx, job, id)
			q.active.Add(-1)
		}
	}
}
