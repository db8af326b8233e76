package site

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"git.home.luguber.info/inful/guidebuilder/internal/logfields"
)

// stageRenderPages renders every navigation node into the staging tree.
// Per-page markdown failures are recorded and skipped; filesystem and
// template failures abort the build.
func stageRenderPages(ctx context.Context, bs *BuildState) error {
	if bs.Nav == nil {
		return NewFatalStageError(StageRenderPages, fmt.Errorf("%w: navigation not resolved", ErrRender))
	}
	b := bs.Builder
	failed := 0
	for _, node := range bs.Nav.Ordered() {
		select {
		case <-ctx.Done():
			return NewCanceledStageError(StageRenderPages, ctx.Err())
		default:
		}
		if err := b.renderPage(bs, node); err != nil {
			if errors.Is(err, ErrRender) {
				failed++
				bs.Report.AddIssue(IssueRenderFailure, StageRenderPages, SeverityWarning, err.Error(), false, nil)
				slog.Warn("page render failed", logfields.Route(node.Route), "error", err)
				continue
			}
			return NewFatalStageError(StageRenderPages, err)
		}
		bs.Report.RenderedPages++
		if node.IsStub() {
			bs.Report.StubsGenerated++
		}
	}
	if failed > 0 {
		return NewWarnStageError(StageRenderPages, fmt.Errorf("%w: %d pages failed to render", ErrRender, failed))
	}
	return nil
}
