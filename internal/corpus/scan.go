package corpus

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	cerrors "git.home.luguber.info/inful/guidebuilder/internal/corpus/errors"
	"git.home.luguber.info/inful/guidebuilder/internal/logfields"
)

// sectionIndexNames are the accepted file names for a directory's own page,
// in priority order when more than one is present.
var sectionIndexNames = []string{"page", "index", "_index"}

// Scan walks the content root and classifies every entry as a guide page or
// a static asset. Hidden files and directories are skipped. Page content is
// not loaded; call LoadAll (or Page.Parse) afterwards.
func Scan(ctx context.Context, root string) (*Corpus, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve content root: %w", err)
	}

	info, err := os.Stat(absRoot)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", cerrors.ErrContentRootNotFound, root)
	}
	if err != nil {
		return nil, fmt.Errorf("stat content root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", cerrors.ErrContentRootNotDir, root)
	}

	c := &Corpus{Root: absRoot}

	err = filepath.Walk(absRoot, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		name := info.Name()

		if info.IsDir() {
			if path != absRoot && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasPrefix(name, ".") {
			return nil
		}

		relPath, err := filepath.Rel(absRoot, path)
		if err != nil {
			return fmt.Errorf("%w: %w", cerrors.ErrInvalidRelativePath, err)
		}
		relPath = filepath.ToSlash(relPath)

		section := ""
		if idx := strings.LastIndex(relPath, "/"); idx >= 0 {
			section = relPath[:idx]
		}

		switch {
		case isMarkdownFile(name):
			// Repository boilerplate is only meaningful at the root; README
			// stays because it can serve as the landing page.
			if section == "" && isIgnoredFile(name) && !strings.EqualFold(name, "README.md") {
				slog.Debug("Skipping repository boilerplate", logfields.Path(relPath))
				return nil
			}

			base := strings.TrimSuffix(name, filepath.Ext(name))
			c.Pages = append(c.Pages, Page{
				AbsPath:        path,
				RelPath:        relPath,
				Section:        section,
				Name:           base,
				IsSectionIndex: isSectionIndexName(base, section),
			})
			slog.Debug("Discovered page", logfields.Path(relPath), logfields.Section(section))

		case isAsset(name):
			c.Assets = append(c.Assets, Asset{AbsPath: path, RelPath: relPath})
			slog.Debug("Discovered asset", logfields.Path(relPath))
		}

		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %s: %w", cerrors.ErrWalkFailed, root, err)
	}

	resolveIndexCollisions(c)

	sort.Slice(c.Pages, func(i, j int) bool { return c.Pages[i].RelPath < c.Pages[j].RelPath })
	sort.Slice(c.Assets, func(i, j int) bool { return c.Assets[i].RelPath < c.Assets[j].RelPath })

	slog.Info("Corpus scanned",
		logfields.Path(root),
		slog.Int("pages", len(c.Pages)),
		slog.Int("assets", len(c.Assets)))

	return c, nil
}

// resolveIndexCollisions keeps one index page per directory when aliases
// coexist (page.md beats index.md beats _index.md beats root README.md) and
// drops the rest so routes stay unique.
func resolveIndexCollisions(c *Corpus) {
	indexes := make(map[string][]int)
	for i := range c.Pages {
		if c.Pages[i].IsSectionIndex {
			indexes[c.Pages[i].Section] = append(indexes[c.Pages[i].Section], i)
		}
	}

	drop := make(map[int]struct{})
	for section, candidates := range indexes {
		if len(candidates) < 2 {
			continue
		}

		sort.Slice(candidates, func(a, b int) bool {
			return indexPriority(c.Pages[candidates[a]].Name) < indexPriority(c.Pages[candidates[b]].Name)
		})

		for _, idx := range candidates[1:] {
			slog.Warn("Duplicate section index, ignoring",
				logfields.Section(section),
				logfields.Path(c.Pages[idx].RelPath),
				slog.String("kept", c.Pages[candidates[0]].RelPath))
			drop[idx] = struct{}{}
		}
	}

	if len(drop) == 0 {
		return
	}

	kept := c.Pages[:0]
	for i := range c.Pages {
		if _, dropped := drop[i]; !dropped {
			kept = append(kept, c.Pages[i])
		}
	}
	c.Pages = kept
}

func indexPriority(base string) int {
	for i, n := range sectionIndexNames {
		if strings.EqualFold(base, n) {
			return i
		}
	}
	// README lands after the explicit aliases.
	return len(sectionIndexNames)
}

func isSectionIndexName(base, section string) bool {
	for _, n := range sectionIndexNames {
		if strings.EqualFold(base, n) {
			return true
		}
	}
	return section == "" && strings.EqualFold(base, "README")
}

// isMarkdownFile checks if a file is a markdown file
func isMarkdownFile(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return ext == ".md" || ext == ".markdown" || ext == ".mdown" || ext == ".mkd"
}

// isAsset checks if a file is an asset (image, etc.)
func isAsset(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	assetExtensions := []string{
		// Images
		".png", ".jpg", ".jpeg", ".gif", ".svg", ".webp", ".bmp", ".ico",
		// Documents
		".pdf",
		// Video
		".mp4", ".webm", ".ogv",
		// Other
		".csv", ".json", ".txt", ".css", ".js",
	}
	for _, assetExt := range assetExtensions {
		if ext == assetExt {
			return true
		}
	}
	return false
}

// isIgnoredFile checks if a root-level file is repository boilerplate.
func isIgnoredFile(filename string) bool {
	ignored := []string{
		"README.md",
		"CONTRIBUTING.md",
		"CHANGELOG.md",
		"LICENSE.md",
		"CODE_OF_CONDUCT.md",
	}

	for _, ignore := range ignored {
		if strings.EqualFold(filename, ignore) {
			return true
		}
	}

	return false
}
