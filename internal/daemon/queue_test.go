package daemon

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/guidebuilder/internal/guideerr"
)

func TestBuildQueue_ExecutesJobs(t *testing.T) {
	var executed atomic.Int32
	var mu sync.Mutex
	seen := map[string]bool{}

	q := NewBuildQueue(8, 2, nil, func(_ context.Context, job *BuildJob, _ int) {
		mu.Lock()
		seen[job.ID] = true
		mu.Unlock()
		executed.Add(1)
	})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	q.Start(ctx)
	t.Cleanup(func() { _ = q.Stop(context.Background()) })

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, q.Enqueue(&BuildJob{ID: id, Trigger: "manual", CreatedAt: time.Now()}))
	}

	require.Eventually(t, func() bool { return executed.Load() == 3 },
		2*time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, seen, 3)
}

func TestBuildQueue_RejectsJobWithoutID(t *testing.T) {
	q := NewBuildQueue(1, 1, nil, func(context.Context, *BuildJob, int) {})

	err := q.Enqueue(&BuildJob{})
	require.Error(t, err)
	require.True(t, guideerr.IsCategory(err, guideerr.CategoryValidation))

	require.Error(t, q.Enqueue(nil))
}

func TestBuildQueue_FullQueueDoesNotBlock(t *testing.T) {
	block := make(chan struct{})
	q := NewBuildQueue(1, 1, nil, func(_ context.Context, _ *BuildJob, _ int) {
		<-block
	})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	q.Start(ctx)
	t.Cleanup(func() {
		close(block)
		_ = q.Stop(context.Background())
	})

	// First job occupies the worker, second fills the buffer.
	require.NoError(t, q.Enqueue(&BuildJob{ID: "running"}))
	require.Eventually(t, func() bool { return q.Active() == 1 },
		time.Second, 5*time.Millisecond)
	require.NoError(t, q.Enqueue(&BuildJob{ID: "waiting"}))

	err := q.Enqueue(&BuildJob{ID: "overflow"})
	require.Error(t, err)
	require.True(t, guideerr.IsCategory(err, guideerr.CategoryDaemon))
}

func TestBuildQueue_StopWaitsForInFlightJob(t *testing.T) {
	release := make(chan struct{})
	var finished atomic.Bool

	q := NewBuildQueue(4, 1, nil, func(_ context.Context, _ *BuildJob, _ int) {
		<-release
		finished.Store(true)
	})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	q.Start(ctx)

	require.NoError(t, q.Enqueue(&BuildJob{ID: "slow"}))
	require.Eventually(t, func() bool { return q.Active() == 1 },
		time.Second, 5*time.Millisecond)

	go func() {
		time.Sleep(50 * time.Millisecond)
		close(release)
	}()

	require.NoError(t, q.Stop(context.Background()))
	require.True(t, finished.Load())
}

func TestBuildQueue_StopHonorsDeadline(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	q := NewBuildQueue(4, 1, nil, func(_ context.Context, _ *BuildJob, _ int) {
		<-release
	})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	q.Start(ctx)

	require.NoError(t, q.Enqueue(&BuildJob{ID: "stuck"}))
	require.Eventually(t, func() bool { return q.Active() == 1 },
		time.Second, 5*time.Millisecond)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer stopCancel()
	err := q.Stop(stopCtx)
	require.Error(t, err)
	require.True(t, guideerr.IsCategory(err, guideerr.CategoryDaemon))
}
