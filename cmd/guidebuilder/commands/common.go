// Package commands holds the kong command tree for the guidebuilder CLI.
package commands

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/guidebuilder/internal/config"
)

// Global carries shared state into subcommands.
type Global struct {
	Logger *slog.Logger
}

// CLI is the root command definition with global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"guidebuilder.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build  BuildCmd  `cmd:"" help:"Build the static site from the content tree"`
	Init   InitCmd   `cmd:"" help:"Write a starter configuration file"`
	Scan   ScanCmd   `cmd:"" help:"Print the resolved page order without building"`
	Lint   LintCmd   `cmd:"" help:"Check the content tree for authoring mistakes"`
	Serve  ServeCmd  `cmd:"" help:"Build, serve locally, and rebuild on change"`
	Daemon DaemonCmd `cmd:"" help:"Run continuously: sync a git corpus and publish on push"`
}

// AfterApply sets up default logging once flags are parsed. Commands that
// load a config re-apply logging with the configured level and format.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// loadConfig loads the configuration file and applies its logging settings,
// with --verbose forcing debug regardless of the configured level.
func loadConfig(root *CLI) (*config.Config, error) {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return nil, err
	}
	applyLogging(cfg, root.Verbose)
	return cfg, nil
}

func applyLogging(cfg *config.Config, verbose bool) {
	level := cfg.SlogLevel()
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Logging.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}
