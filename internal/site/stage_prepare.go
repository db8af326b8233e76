package site

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// stagePrepareStaging loads layout templates and lays down the static
// skeleton of the staging tree.
func stagePrepareStaging(_ context.Context, bs *BuildState) error {
	b := bs.Builder

	ts, err := loadTemplates(b.cfg.Build.TemplateDir)
	if err != nil {
		return NewFatalStageError(StagePrepareStaging, err)
	}
	b.templates = ts
	for kind, info := range ts.Usage() {
		bs.Report.TemplateSources[kind] = info
	}

	staticDir := filepath.Join(b.stageDir, "static")
	if err := os.MkdirAll(staticDir, 0o750); err != nil {
		return NewFatalStageError(StagePrepareStaging, fmt.Errorf("create static dir: %w", err))
	}
	assets := map[string]string{
		"guide.css": defaultStylesheet,
		"search.js": searchScript,
	}
	for name, content := range assets {
		// #nosec G306 -- static assets are public site content
		if err := os.WriteFile(filepath.Join(staticDir, name), []byte(content), 0o644); err != nil {
			return NewFatalStageError(StagePrepareStaging, fmt.Errorf("write static asset %s: %w", name, err))
		}
	}
	return nil
}
