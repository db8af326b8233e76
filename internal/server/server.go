// Package server provides the daemon's HTTP surface: the rendered site with
// live reload, the push webhook, and admin endpoints, each on its own port.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"git.home.luguber.info/inful/guidebuilder/internal/config"
	"git.home.luguber.info/inful/guidebuilder/internal/guideerr"
	"git.home.luguber.info/inful/guidebuilder/internal/logfields"
	"git.home.luguber.info/inful/guidebuilder/internal/metrics"
)

// Server manages the daemon HTTP endpoints (site, webhook, admin).
type Server struct {
	cfg    *config.Config
	opts   Options
	logger *slog.Logger
	mchain func(http.Handler) http.Handler

	site    *siteHandler
	admin   *adminHandlers
	webhook *webhookHandler

	siteServer    *http.Server
	webhookServer *http.Server
	adminServer   *http.Server
}

// New constructs the server wiring. Runtime is the daemon surface handlers
// call into; Options carries the optional hub, metrics handler, and recorder.
func New(cfg *config.Config, rt Runtime, opts Options) *Server {
	if opts.Recorder == nil {
		opts.Recorder = metrics.NoopRecorder{}
	}
	logger := slog.Default()
	adapter := guideerr.NewHTTPErrorAdapter(logger)
	outputDir := cfg.Build.OutputDir

	return &Server{
		cfg:     cfg,
		opts:    opts,
		logger:  logger,
		mchain:  Chain(logger, adapter),
		site:    newSiteHandler(outputDir, logger),
		admin:   &adminHandlers{rt: rt, opts: opts, adapter: adapter, outputDir: outputDir},
		webhook: &webhookHandler{cfg: cfg, rt: rt, recorder: opts.Recorder, adapter: adapter, logger: logger},
	}
}

// Start binds and starts the site, webhook, and admin servers.
func (s *Server) Start(ctx context.Context) error {
	// Pre-bind all required ports so we can fail fast and surface aggregate
	// errors instead of logging three independent 'address already in use'
	// lines after partial initialization.
	type preBind struct {
		name string
		port int
		ln   net.Listener
	}
	binds := []preBind{
		{name: "site", port: s.cfg.Daemon.SitePort},
		{name: "webhook", port: s.cfg.Daemon.WebhookPort},
		{name: "admin", port: s.cfg.Daemon.AdminPort},
	}
	var bindErrs []error
	lc := net.ListenConfig{}
	for i := range binds {
		addr := fmt.Sprintf(":%d", binds[i].port)
		ln, err := lc.Listen(ctx, "tcp", addr)
		if err != nil {
			bindErrs = append(bindErrs, fmt.Errorf("%s port %d: %w", binds[i].name, binds[i].port, err))
			continue
		}
		binds[i].ln = ln
	}
	if len(bindErrs) > 0 {
		// Close any successful listeners before returning.
		for _, b := range binds {
			if b.ln != nil {
				_ = b.ln.Close()
			}
		}
		return fmt.Errorf("http startup failed: %w", errors.Join(bindErrs...))
	}

	s.startSiteServer(binds[0].ln)
	s.startWebhookServer(binds[1].ln)
	s.startAdminServer(binds[2].ln)

	s.logger.Info("HTTP servers started",
		slog.Int("site_port", s.cfg.Daemon.SitePort),
		slog.Int("webhook_port", s.cfg.Daemon.WebhookPort),
		slog.Int("admin_port", s.cfg.Daemon.AdminPort))
	return nil
}

func (s *Server) startSiteServer(ln net.Listener) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.admin.handleHealth)
	mux.HandleFunc("/readyz", s.admin.handleReadiness)

	var root http.Handler = s.site
	writeTimeout := 30 * time.Second
	if s.opts.Hub != nil {
		root = injectLiveReload(root)
		mux.Handle("/livereload", s.opts.Hub)
		mux.HandleFunc("/livereload.js", handleLiveReloadScript)
		// SSE connections outlive any fixed write deadline.
		writeTimeout = 0
	}
	mux.Handle("/", s.mchain(addCacheControl(root)))

	s.siteServer = &http.Server{Handler: mux, ReadTimeout: 30 * time.Second, WriteTimeout: writeTimeout, IdleTimeout: 300 * time.Second}
	s.startServerWithListener("site", s.siteServer, ln)
}

func (s *Server) startWebhookServer(ln net.Listener) {
	mux := http.NewServeMux()
	path := normalizeWebhookPath(s.cfg.Daemon.Webhook.Path)
	if path == "" {
		path = defaultWebhookPath
	}
	mux.Handle(path, s.webhook)

	s.webhookServer = &http.Server{Handler: s.mchain(mux), ReadTimeout: 30 * time.Second, WriteTimeout: 10 * time.Second, IdleTimeout: 60 * time.Second}
	s.startServerWithListener("webhook", s.webhookServer, ln)
}

func (s *Server) startAdminServer(ln net.Listener) {
	s.adminServer = &http.Server{Handler: s.mchain(s.admin.mux(s.opts.Metrics)), ReadTimeout: 30 * time.Second, WriteTimeout: 30 * time.Second, IdleTimeout: 120 * time.Second}
	s.startServerWithListener("admin", s.adminServer, ln)
}

// startServerWithListener launches an http.Server on a pre-bound listener.
// It standardizes goroutine startup and error logging across server kinds.
func (s *Server) startServerWithListener(kind string, srv *http.Server, ln net.Listener) {
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error(fmt.Sprintf("%s server error", kind), logfields.Error(err))
		}
	}()
}

// Stop gracefully shuts down all HTTP servers.
func (s *Server) Stop(ctx context.Context) error {
	var errs []error

	if s.adminServer != nil {
		if err := s.adminServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("admin server shutdown: %w", err))
		}
	}
	if s.webhookServer != nil {
		if err := s.webhookServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("webhook server shutdown: %w", err))
		}
	}
	// SSE connections never finish on their own; closing the hub first lets
	// the site server drain.
	if s.opts.Hub != nil {
		s.opts.Hub.Shutdown()
	}
	if s.siteServer != nil {
		if err := s.siteServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("site server shutdown: %w", err))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	s.logger.Info("HTTP servers stopped")
	return nil
}
