package site

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/guidebuilder/internal/logfields"
)

// stageCopyAssets copies corpus assets into the staging tree at their
// route-mapped locations (directory prefixes stripped the same way page
// routes are), so references rewritten at render time resolve.
func stageCopyAssets(ctx context.Context, bs *BuildState) error {
	if bs.Corpus == nil || bs.Nav == nil {
		return nil
	}
	b := bs.Builder
	failed := 0
	for _, asset := range bs.Corpus.Assets {
		select {
		case <-ctx.Done():
			return NewCanceledStageError(StageCopyAssets, ctx.Err())
		default:
		}
		dst := filepath.Join(b.stageDir, filepath.FromSlash(bs.Nav.AssetRoute(asset.RelPath)))
		if err := copyFile(asset.AbsPath, dst); err != nil {
			failed++
			bs.Report.AddIssue(IssueAssetCopyFailure, StageCopyAssets, SeverityWarning,
				fmt.Sprintf("copy %s: %v", asset.RelPath, err), false, nil)
			slog.Warn("asset copy failed", logfields.Path(asset.RelPath), "error", err)
			continue
		}
		bs.Report.AssetsCopied++
	}
	if failed > 0 {
		return NewWarnStageError(StageCopyAssets, fmt.Errorf("%d assets failed to copy", failed))
	}
	return nil
}

func copyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return err
	}
	// #nosec G304 -- src comes from the scanned content tree
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		_ = in.Close()
	}()
	// #nosec G304 G306 -- dst stays inside the staging dir; assets are public
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
