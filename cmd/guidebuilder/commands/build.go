package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"git.home.luguber.info/inful/guidebuilder/internal/site"
)

// BuildCmd implements the 'build' command: one full site build into the
// configured output directory.
type BuildCmd struct {
	Output      string `short:"o" help:"Override the configured output directory"`
	VerifyLinks bool   `help:"Verify links in the rendered site even if the config disables it"`
}

func (b *BuildCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	if b.Output != "" {
		cfg.Build.OutputDir = b.Output
	}
	if b.VerifyLinks {
		cfg.Build.VerifyLinks = true
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	report, err := site.NewBuilder(cfg).Build(ctx)
	printReportSummary(report)
	if err != nil {
		return fmt.Errorf("build failed: %w", err)
	}
	return nil
}

// printReportSummary writes the human-facing build outcome to stdout; the
// full report lands next to the site as JSON.
func printReportSummary(report *site.BuildReport) {
	if report == nil {
		return
	}
	fmt.Printf("Build %s: %s\n", report.BuildID, report.Outcome)
	fmt.Printf("  pages: %d rendered (%d discovered, %d stub sections)\n",
		report.RenderedPages, report.Pages, report.StubsGenerated)
	fmt.Printf("  assets: %d copied\n", report.AssetsCopied)
	if report.LinksChecked > 0 {
		fmt.Printf("  links: %d checked, %d broken\n", report.LinksChecked, report.BrokenLinks)
	}
	fmt.Printf("  duration: %s\n", report.End.Sub(report.Start).Truncate(time.Millisecond))
	for _, warn := range report.Warnings {
		fmt.Fprintf(os.Stderr, "  warning: %v\n", warn)
	}
}
