package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"git.home.luguber.info/inful/guidebuilder/internal/guideerr"
	"git.home.luguber.info/inful/guidebuilder/internal/logfields"
)

// Preview is the single-port server behind the serve command. It serves the
// rendered site and, when live reload is on, the SSE endpoint and client
// script on the same port.
type Preview struct {
	srv    *http.Server
	hub    *Hub
	logger *slog.Logger
	port   int
}

// NewPreview assembles the preview server for the given output directory.
// hub may be nil when live reload is disabled.
func NewPreview(outputDir string, port int, hub *Hub, logger *slog.Logger) *Preview {
	if logger == nil {
		logger = slog.Default()
	}
	adapter := guideerr.NewHTTPErrorAdapter(logger)
	site := newSiteHandler(outputDir, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	var root http.Handler = site
	writeTimeout := 30 * time.Second
	if hub != nil {
		root = injectLiveReload(root)
		mux.Handle("/livereload", hub)
		mux.HandleFunc("/livereload.js", handleLiveReloadScript)
		writeTimeout = 0
	}
	mux.Handle("/", Chain(logger, adapter)(addCacheControl(root)))

	return &Preview{
		srv:    &http.Server{Handler: mux, ReadTimeout: 30 * time.Second, WriteTimeout: writeTimeout, IdleTimeout: 300 * time.Second},
		hub:    hub,
		logger: logger,
		port:   port,
	}
}

// Start binds the port and serves in the background until Stop.
func (p *Preview) Start(ctx context.Context) error {
	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", fmt.Sprintf(":%d", p.port))
	if err != nil {
		return fmt.Errorf("preview port %d: %w", p.port, err)
	}
	p.logger.Info("preview server started",
		slog.Int("port", p.port),
		logfields.URL(fmt.Sprintf("http://localhost:%d/", p.port)))
	go func() {
		if err := p.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			p.logger.Error("preview server error", logfields.Error(err))
		}
	}()
	return nil
}

// Broadcast forwards a content hash to livereload clients.
func (p *Preview) Broadcast(hash string) {
	if p.hub != nil {
		p.hub.Broadcast(hash)
	}
}

// Stop closes SSE clients and drains the server.
func (p *Preview) Stop(ctx context.Context) error {
	if p.hub != nil {
		p.hub.Shutdown()
	}
	return p.srv.Shutdown(ctx)
}
