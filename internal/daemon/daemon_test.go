package daemon

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/guidebuilder/internal/config"
)

func daemonTestConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Content.Root = filepath.Join(dir, "content")
	cfg.Build.OutputDir = filepath.Join(dir, "public")
	cfg.Daemon.WorkDir = filepath.Join(dir, "work")
	cfg.Daemon.EventStore.Path = filepath.Join(dir, "events.db")
	cfg.Daemon.Repo.URL = "https://git.example.com/guides/api-design.git"
	return cfg
}

func TestNew_RequiresDaemonConfig(t *testing.T) {
	_, err := New(context.Background(), nil, "")
	require.Error(t, err)

	cfg := daemonTestConfig(t)
	cfg.Daemon.Repo.URL = ""
	_, err = New(context.Background(), cfg, "")
	require.Error(t, err)
}

func TestNew_WiresRuntime(t *testing.T) {
	cfg := daemonTestConfig(t)

	d, err := New(context.Background(), cfg, "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.closeStores() })

	require.Equal(t, string(StatusStopped), d.Status())
	require.Zero(t, d.QueueLength())
	require.Zero(t, d.ActiveJobs())
	require.Empty(t, d.History())

	_, ok := d.Build("nope")
	require.False(t, ok)
}

func TestEnqueueBuild_AssignsJobIDs(t *testing.T) {
	cfg := daemonTestConfig(t)

	d, err := New(context.Background(), cfg, "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.closeStores() })

	// Workers are not started, so jobs stay queued.
	id1, err := d.EnqueueBuild("webhook", "main", "abc123")
	require.NoError(t, err)
	require.NotEmpty(t, id1)

	id2, err := d.EnqueueBuild("manual", "", "")
	require.NoError(t, err)
	require.NotEqual(t, id1, id2)

	require.Equal(t, 2, d.QueueLength())
}

func TestEnqueueBuild_ReportsFullQueue(t *testing.T) {
	cfg := daemonTestConfig(t)
	cfg.Daemon.QueueSize = 1

	d, err := New(context.Background(), cfg, "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.closeStores() })

	_, err = d.EnqueueBuild("webhook", "", "")
	require.NoError(t, err)

	_, err = d.EnqueueBuild("webhook", "", "")
	require.Error(t, err)
}
