package daemon

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestContentWatcher_FiresOnFileChange(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "01_intro"), 0o755))

	var fires atomic.Int32
	cw, err := NewContentWatcher(root, 30*time.Millisecond, func() { fires.Add(1) })
	require.NoError(t, err)
	require.NoError(t, cw.Start())
	t.Cleanup(cw.Stop)

	require.NoError(t, os.WriteFile(filepath.Join(root, "01_intro", "page.md"), []byte("# Intro\n"), 0o644))

	require.Eventually(t, func() bool { return fires.Load() >= 1 },
		2*time.Second, 10*time.Millisecond)
}

func TestContentWatcher_PicksUpNewDirectories(t *testing.T) {
	root := t.TempDir()

	var fires atomic.Int32
	cw, err := NewContentWatcher(root, 30*time.Millisecond, func() { fires.Add(1) })
	require.NoError(t, err)
	require.NoError(t, cw.Start())
	t.Cleanup(cw.Stop)

	newDir := filepath.Join(root, "02_foundation")
	require.NoError(t, os.Mkdir(newDir, 0o755))
	require.Eventually(t, func() bool { return fires.Load() >= 1 },
		2*time.Second, 10*time.Millisecond)

	// Wait out the burst, then a write inside the new directory must fire
	// again, proving the directory was added to the watch set.
	time.Sleep(150 * time.Millisecond)
	before := fires.Load()
	require.NoError(t, os.WriteFile(filepath.Join(newDir, "page.md"), []byte("# Foundation\n"), 0o644))

	require.Eventually(t, func() bool { return fires.Load() > before },
		2*time.Second, 10*time.Millisecond)
}

func TestContentWatcher_IgnoresHiddenEntries(t *testing.T) {
	root := t.TempDir()

	var fires atomic.Int32
	cw, err := NewContentWatcher(root, 30*time.Millisecond, func() { fires.Add(1) })
	require.NoError(t, err)
	require.NoError(t, cw.Start())
	t.Cleanup(cw.Stop)

	require.NoError(t, os.WriteFile(filepath.Join(root, ".draft.md"), []byte("wip"), 0o644))

	time.Sleep(200 * time.Millisecond)
	require.Equal(t, int32(0), fires.Load())
}
