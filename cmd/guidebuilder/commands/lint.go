package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/guidebuilder/internal/config"
	"git.home.luguber.info/inful/guidebuilder/internal/lint"
)

// LintCmd implements the 'lint' command.
type LintCmd struct {
	Format string `short:"f" default:"text" enum:"text,json" help:"Output format (text or json)"`
	Quiet  bool   `short:"q" help:"Only show errors, suppress warnings and info"`
	Path   string `arg:"" optional:"" help:"Content root to lint (defaults to the configured content.root)"`
}

func (l *LintCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		if l.Path == "" {
			return err
		}
		cfg = config.Default()
	}
	path := cfg.Content.Root
	if l.Path != "" {
		path = l.Path
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("path does not exist: %s", path)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	linter := lint.New(lint.Config{Quiet: l.Quiet, Format: l.Format})
	result, err := linter.LintPath(ctx, path)
	if err != nil {
		return err
	}

	if err := lint.NewFormatter(l.Format).Format(os.Stdout, result, path); err != nil {
		return err
	}
	if result.HasErrors() {
		return fmt.Errorf("%d lint error(s)", result.ErrorCount())
	}
	return nil
}
