package daemon

import (
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/guidebuilder/internal/config"
	"git.home.luguber.info/inful/guidebuilder/internal/guideerr"
	"git.home.luguber.info/inful/guidebuilder/internal/logfields"
)

// ConfigWatcher reloads the daemon configuration when the config file
// changes on disk. Edits are debounced so an editor's write-rename dance
// produces one reload, not three.
type ConfigWatcher struct {
	configPath string
	apply      func(*config.Config) error
	watcher    *fsnotify.Watcher
	debouncer  *Debouncer

	stopOnce sync.Once
	stopChan chan struct{}
}

// NewConfigWatcher watches configPath and calls apply with each
// successfully loaded new configuration. quiet controls the debounce
// window; zero picks a default suited to editor save patterns.
func NewConfigWatcher(configPath string, quiet time.Duration, apply func(*config.Config) error) (*ConfigWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, guideerr.WrapError(err, guideerr.CategoryDaemon, "create config watcher")
	}

	// Absolute path so events compare stably regardless of cwd.
	absPath, err := filepath.Abs(configPath)
	if err != nil {
		_ = watcher.Close()
		return nil, guideerr.WrapError(err, guideerr.CategoryDaemon, "resolve config path").
			WithContext("path", configPath)
	}
	if quiet <= 0 {
		quiet = 2 * time.Second
	}

	cw := &ConfigWatcher{
		configPath: absPath,
		apply:      apply,
		watcher:    watcher,
		stopChan:   make(chan struct{}),
	}
	cw.debouncer = NewDebouncer(quiet, 5*quiet, cw.reload)
	return cw, nil
}

// Start begins watching. Watching the parent directory instead of the file
// itself survives editors that replace the file on save.
func (cw *ConfigWatcher) Start() error {
	configDir := filepath.Dir(cw.configPath)
	if err := cw.watcher.Add(configDir); err != nil {
		return guideerr.WrapError(err, guideerr.CategoryDaemon, "watch config directory").
			WithContext("dir", configDir)
	}

	slog.Info("config watcher started", logfields.Path(cw.configPath))
	go cw.watchLoop()
	return nil
}

// Stop ends watching and cancels any pending reload.
func (cw *ConfigWatcher) Stop() {
	cw.stopOnce.Do(func() {
		close(cw.stopChan)
		cw.debouncer.Stop()
		if err := cw.watcher.Close(); err != nil {
			slog.Warn("closing config watcher", logfields.Error(err))
		}
	})
}

func (cw *ConfigWatcher) watchLoop() {
	configFile := filepath.Base(cw.configPath)

	for {
		select {
		case <-cw.stopChan:
			return
		case event, ok := <-cw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != configFile {
				continue
			}
			switch {
			case event.Op.Has(fsnotify.Write), event.Op.Has(fsnotify.Create), event.Op.Has(fsnotify.Rename):
				slog.Debug("config file changed", logfields.Path(event.Name), slog.String("op", event.Op.String()))
				cw.debouncer.Trigger()
			case event.Op.Has(fsnotify.Remove):
				slog.Warn("config file removed, keeping current configuration", logfields.Path(event.Name))
			}
		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("config watcher error", logfields.Error(err))
		}
	}
}

// reload loads and applies the changed file. A file that fails to load or
// validate leaves the running configuration untouched.
func (cw *ConfigWatcher) reload() {
	slog.Info("reloading configuration", logfields.Path(cw.configPath))

	cfg, err := config.Load(cw.configPath)
	if err != nil {
		slog.Error("config reload rejected", logfields.Error(err))
		return
	}
	if err := cfg.ValidateDaemon(); err != nil {
		slog.Error("config reload rejected", logfields.Error(err))
		return
	}
	if err := cw.apply(cfg); err != nil {
		slog.Error("config reload failed", logfields.Error(err))
		return
	}
	slog.Info("configuration reloaded")
}
