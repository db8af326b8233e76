package daemon

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/guidebuilder/internal/guideerr"
	"git.home.luguber.info/inful/guidebuilder/internal/logfields"
)

// ContentWatcher watches a content tree and fires a debounced callback when
// pages or assets change. fsnotify does not recurse, so every directory is
// watched individually and new directories are added as they appear.
type ContentWatcher struct {
	root      string
	watcher   *fsnotify.Watcher
	debouncer *Debouncer

	stopOnce sync.Once
	stopChan chan struct{}
}

// NewContentWatcher creates a watcher over root calling onChange after a
// quiet window. quiet <= 0 picks a default tuned for editor save bursts.
func NewContentWatcher(root string, quiet time.Duration, onChange func()) (*ContentWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, guideerr.WrapError(err, guideerr.CategoryDaemon, "create content watcher")
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		_ = watcher.Close()
		return nil, guideerr.WrapError(err, guideerr.CategoryDaemon, "resolve content root").
			WithContext("path", root)
	}
	if quiet <= 0 {
		quiet = 500 * time.Millisecond
	}

	cw := &ContentWatcher{
		root:     absRoot,
		watcher:  watcher,
		stopChan: make(chan struct{}),
	}
	cw.debouncer = NewDebouncer(quiet, 10*quiet, onChange)
	return cw, nil
}

// Start registers the directory tree and begins watching.
func (cw *ContentWatcher) Start() error {
	if err := cw.addTree(cw.root); err != nil {
		return err
	}
	slog.Info("content watcher started", logfields.Path(cw.root))
	go cw.watchLoop()
	return nil
}

// Stop ends watching and cancels any pending rebuild.
func (cw *ContentWatcher) Stop() {
	cw.stopOnce.Do(func() {
		close(cw.stopChan)
		cw.debouncer.Stop()
		if err := cw.watcher.Close(); err != nil {
			slog.Warn("closing content watcher", logfields.Error(err))
		}
	})
}

// addTree watches dir and every non-hidden directory below it.
func (cw *ContentWatcher) addTree(dir string) error {
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != cw.root && isHiddenEntry(d.Name()) {
			return filepath.SkipDir
		}
		if err := cw.watcher.Add(path); err != nil {
			return guideerr.WrapError(err, guideerr.CategoryDaemon, "watch directory").
				WithContext("dir", path)
		}
		return nil
	})
	if err != nil {
		return err
	}
	return nil
}

func (cw *ContentWatcher) watchLoop() {
	for {
		select {
		case <-cw.stopChan:
			return
		case event, ok := <-cw.watcher.Events:
			if !ok {
				return
			}
			if isHiddenEntry(filepath.Base(event.Name)) {
				continue
			}
			if event.Op == fsnotify.Chmod {
				continue
			}
			if event.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := cw.addTree(event.Name); err != nil {
						slog.Warn("watching new directory", logfields.Error(err))
					}
				}
			}
			slog.Debug("content changed",
				logfields.Path(event.Name),
				slog.String("op", event.Op.String()))
			cw.debouncer.Trigger()
		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("content watcher error", logfields.Error(err))
		}
	}
}

// isHiddenEntry mirrors the corpus scanner's hidden-file rule so the
// watcher stays quiet about files a rebuild would ignore anyway.
func isHiddenEntry(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}
