package site

import (
	"context"
	"fmt"

	"git.home.luguber.info/inful/guidebuilder/internal/corpus"
)

// stageScanCorpus discovers and parses the content tree.
func stageScanCorpus(ctx context.Context, bs *BuildState) error {
	b := bs.Builder

	c, err := corpus.Scan(ctx, b.contentRoot)
	if err != nil {
		if ctx.Err() != nil {
			return NewCanceledStageError(StageScanCorpus, ctx.Err())
		}
		return NewFatalStageError(StageScanCorpus, fmt.Errorf("%w: %v", ErrScan, err))
	}
	if err := c.LoadAll(ctx); err != nil {
		if ctx.Err() != nil {
			return NewCanceledStageError(StageScanCorpus, ctx.Err())
		}
		return NewFatalStageError(StageScanCorpus, fmt.Errorf("%w: %v", ErrScan, err))
	}
	bs.Corpus = c
	bs.Report.Pages = len(c.Pages)
	bs.Report.Assets = len(c.Assets)

	if len(c.Pages) == 0 {
		// An empty corpus still produces a site shell; flag it so the
		// operator notices.
		bs.Report.AddIssue(IssueNoPages, StageScanCorpus, SeverityWarning,
			fmt.Sprintf("no pages found under %s", b.contentRoot), false, nil)
		return NewWarnStageError(StageScanCorpus, fmt.Errorf("%w: no pages found", ErrScan))
	}
	return nil
}
