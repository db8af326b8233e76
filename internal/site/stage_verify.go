package site

import (
	"context"
	"fmt"
	"log/slog"

	"git.home.luguber.info/inful/guidebuilder/internal/linkcheck"
)

// stageVerifyLinks walks the staged output and verifies every extracted
// link. Findings are warnings: a broken link never fails the build, it
// degrades the outcome and lands in the report.
func stageVerifyLinks(ctx context.Context, bs *BuildState) error {
	b := bs.Builder
	checker := linkcheck.New(linkcheck.Options{
		SiteDir:       b.stageDir,
		BaseURL:       b.cfg.Site.BaseURL,
		CheckExternal: b.checkExternal,
		SkipEditLinks: true,
		Cache:         b.linkCache,
		Publisher:     b.linkPublisher,
		BuildID:       bs.Report.BuildID,
		BuildTime:     bs.Report.Start,
	})

	result, err := checker.VerifySite(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return NewCanceledStageError(StageVerifyLinks, ctx.Err())
		}
		return NewWarnStageError(StageVerifyLinks, fmt.Errorf("%w: %v", ErrLinkCheck, err))
	}

	bs.Report.LinksChecked = result.LinksChecked
	bs.Report.BrokenLinks = len(result.Findings)

	for _, f := range result.Findings {
		bs.Report.AddIssue(IssueBrokenLink, StageVerifyLinks, SeverityWarning,
			fmt.Sprintf("%s: %s (%s)", f.Page, f.URL, f.Reason), !f.Internal, nil)
	}

	slog.Info("link verification complete",
		slog.Int("pages", result.PagesScanned),
		slog.Int("links", result.LinksChecked),
		slog.Int("broken", len(result.Findings)),
		slog.Int("external_skipped", result.ExternalSkipped))

	if len(result.Findings) > 0 {
		return NewWarnStageError(StageVerifyLinks,
			fmt.Errorf("%w: %d broken links", ErrLinkCheck, len(result.Findings)))
	}
	return nil
}
