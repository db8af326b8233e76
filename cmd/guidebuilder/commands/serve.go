package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/guidebuilder/internal/daemon"
	"git.home.luguber.info/inful/guidebuilder/internal/logfields"
	"git.home.luguber.info/inful/guidebuilder/internal/server"
	"git.home.luguber.info/inful/guidebuilder/internal/site"
)

// ServeCmd implements the 'serve' command: build once, serve the result on
// a local port, and rebuild on content changes with live reload.
type ServeCmd struct {
	Port    int  `short:"p" help:"Override the configured serve port"`
	NoWatch bool `help:"Serve the current build without watching for changes"`
}

func (s *ServeCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	if s.Port != 0 {
		cfg.Serve.Port = s.Port
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var hub *server.Hub
	if cfg.Serve.LiveReloadEnabled() {
		hub = server.NewHub(slog.Default())
	}

	// rebuild is shared by the initial build and the watcher. Builds are
	// serialized: watcher bursts collapse in the debouncer, and a change
	// during a build queues at the mutex.
	var buildMu sync.Mutex
	rebuild := func() {
		buildMu.Lock()
		defer buildMu.Unlock()

		buildID := uuid.NewString()
		report, err := site.NewBuilder(cfg).SetBuildID(buildID).Build(ctx)
		if err != nil {
			slog.Error("rebuild failed", logfields.BuildID(buildID), logfields.Error(err))
			return
		}
		slog.Info("site rebuilt",
			logfields.BuildID(buildID),
			slog.Int("pages", report.RenderedPages),
			slog.String("outcome", report.Outcome))
		if hub != nil {
			hub.Broadcast(buildID)
		}
	}

	report, err := site.NewBuilder(cfg).Build(ctx)
	printReportSummary(report)
	if err != nil {
		return fmt.Errorf("initial build failed: %w", err)
	}

	preview := server.NewPreview(cfg.Build.OutputDir, cfg.Serve.Port, hub, slog.Default())
	if err := preview.Start(ctx); err != nil {
		return err
	}

	if !s.NoWatch {
		watcher, err := daemon.NewContentWatcher(cfg.Content.Root, 0, rebuild)
		if err != nil {
			return err
		}
		if err := watcher.Start(); err != nil {
			return err
		}
		defer watcher.Stop()
	}

	fmt.Printf("Serving %s on http://localhost:%d/ (Ctrl-C to stop)\n",
		cfg.Build.OutputDir, cfg.Serve.Port)
	<-ctx.Done()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer stopCancel()
	return preview.Stop(stopCtx)
}
