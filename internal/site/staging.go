package site

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"git.home.luguber.info/inful/guidebuilder/internal/logfields"
)

// beginStaging creates an isolated staging directory for atomic build
// output. The staging dir is a sibling of the final output dir
// (<output>_stage), never nested inside it.
func (b *Builder) beginStaging() error {
	stage := b.outputDir + "_stage"
	if err := os.RemoveAll(stage); err != nil {
		return fmt.Errorf("clear stale staging dir: %w", err)
	}
	if err := os.MkdirAll(stage, 0o750); err != nil {
		return fmt.Errorf("create staging dir: %w", err)
	}
	b.stageDir = stage
	slog.Debug("initialized staging directory", "staging", stage, "final", b.outputDir)
	return nil
}

// finalizeStaging atomically promotes the staging directory to the final
// output location:
//
//  1. Move the existing output dir (if any) to <output>.prev.
//  2. Rename staging -> output.
//  3. Remove the previous backup asynchronously, best effort.
func (b *Builder) finalizeStaging() error {
	if b.stageDir == "" {
		return fmt.Errorf("no staging directory initialized")
	}
	if _, err := os.Stat(b.stageDir); err != nil {
		return fmt.Errorf("staging directory missing: %w", err)
	}

	prev := b.outputDir + ".prev"
	if _, err := os.Stat(prev); err == nil {
		// A previous backup may still be held open by a file server;
		// retry a few times before giving up.
		for i := 0; i < 3; i++ {
			if err := os.RemoveAll(prev); err == nil {
				break
			}
			if i < 2 {
				time.Sleep(100 * time.Millisecond)
			}
		}
		if _, err := os.Stat(prev); err == nil {
			slog.Warn("failed to remove previous backup", logfields.Path(prev))
			// Continue anyway; the rename below fails if prev blocks it.
		}
	}
	if _, err := os.Stat(b.outputDir); err == nil {
		if err := os.Rename(b.outputDir, prev); err != nil {
			return fmt.Errorf("backup existing output: %w", err)
		}
	}
	if err := os.Rename(b.stageDir, b.outputDir); err != nil {
		return fmt.Errorf("promote staging: %w", err)
	}
	b.stageDir = ""
	go func(p string) {
		if err := os.RemoveAll(p); err != nil {
			slog.Warn("failed to remove previous backup", logfields.Path(p), "error", err)
		}
	}(prev)
	slog.Info("promoted staging directory", "output", b.outputDir)
	return nil
}

// abortStaging removes the staging directory after a failed build so no
// orphaned temp dirs pile up. With keep_staging configured the directory
// is left in place for inspection.
func (b *Builder) abortStaging() {
	if b.stageDir == "" {
		return
	}
	dir := b.stageDir
	b.stageDir = ""
	if b.keepStaging {
		slog.Info("keeping staging directory after failed build", "staging", dir)
		return
	}
	if err := os.RemoveAll(dir); err != nil {
		slog.Warn("failed to remove staging directory after abort", "staging", dir, "error", err)
	} else {
		slog.Debug("removed staging directory after abort", "staging", dir)
	}
}
