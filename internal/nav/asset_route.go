package nav

import (
	"path"
	"strings"
)

// AssetRoute maps a corpus-relative asset path onto its site-relative
// location in the rendered tree (slash-separated, no leading slash).
//
// Directories that hold pages reuse their resolved section route, so
// collision-suffixed sections stay consistent and relative references
// from rendered pages keep resolving after prefix stripping. Directories
// without any pages get the same per-segment stripping treatment routes
// do. File names pass through untouched: authors reference them
// literally.
func (t *Tree) AssetRoute(relPath string) string {
	rel := path.Clean(strings.ReplaceAll(relPath, "\\", "/"))
	dir := path.Dir(rel)
	base := path.Base(rel)
	if dir == "." || dir == "/" {
		return base
	}

	// Longest known section prefix wins; the remainder is stripped
	// segment by segment.
	bestDir, bestRoute := "", "/"
	for d, n := range t.byDir {
		if d == "" {
			continue
		}
		if (d == dir || strings.HasPrefix(dir, d+"/")) && len(d) > len(bestDir) {
			bestDir, bestRoute = d, n.Route
		}
	}

	mapped := strings.TrimPrefix(bestRoute, "/")
	rest := strings.TrimPrefix(dir[len(bestDir):], "/")
	if rest != "" {
		segs := strings.Split(rest, "/")
		for i, s := range segs {
			segs[i] = t.assetSegment(s)
		}
		mapped += strings.Join(segs, "/") + "/"
	}
	return mapped + base
}

func (t *Tree) assetSegment(seg string) string {
	candidate := seg
	if !t.keepPrefixes {
		if p := ParsePrefix(seg); p.Present && p.Name != "" {
			candidate = p.Name
		}
	}
	return slugify(candidate)
}
