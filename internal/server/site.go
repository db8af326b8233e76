package server

import (
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/guidebuilder/internal/logfields"
)

// siteHandler serves the rendered site with clean-URL resolution: directory
// requests resolve to their index.html, directories without a trailing slash
// redirect, and misses render the generated 404 page.
type siteHandler struct {
	outputDir string
	logger    *slog.Logger
}

func newSiteHandler(outputDir string, logger *slog.Logger) *siteHandler {
	return &siteHandler{outputDir: filepath.Clean(outputDir), logger: logger}
}

// resolveRoot picks the directory to serve: the output directory when it
// holds a rendered site, else the .prev backup while a promote is in flight.
// An empty return means no build exists yet.
func (s *siteHandler) resolveRoot() string {
	if hasIndex(s.outputDir) {
		return s.outputDir
	}
	prev := s.outputDir + ".prev"
	if hasIndex(prev) {
		s.logger.Warn("serving from backup directory while promote is in flight", logfields.Path(prev))
		return prev
	}
	return ""
}

func hasIndex(dir string) bool {
	st, err := os.Stat(filepath.Join(dir, "index.html"))
	return err == nil && !st.IsDir()
}

func (s *siteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	root := s.resolveRoot()
	if root == "" {
		if r.URL.Path == "/" || r.URL.Path == "" {
			s.servePending(w, r)
			return
		}
		http.NotFound(w, r)
		return
	}

	urlPath := path.Clean("/" + r.URL.Path)
	fsPath := filepath.Join(root, filepath.FromSlash(urlPath))

	st, err := os.Stat(fsPath)
	switch {
	case err == nil && st.IsDir():
		if !strings.HasSuffix(r.URL.Path, "/") {
			redirect := urlPath + "/"
			if r.URL.RawQuery != "" {
				redirect += "?" + r.URL.RawQuery
			}
			http.Redirect(w, r, redirect, http.StatusMovedPermanently)
			return
		}
		index := filepath.Join(fsPath, "index.html")
		if fi, ferr := os.Stat(index); ferr == nil && !fi.IsDir() {
			http.ServeFile(w, r, index)
			return
		}
		s.serveNotFound(w, r, root)
	case err == nil:
		http.ServeFile(w, r, fsPath)
	default:
		s.serveNotFound(w, r, root)
	}
}

// serveNotFound renders the generated 404 page with a 404 status, falling
// back to a plain NotFound when the site has none.
func (s *siteHandler) serveNotFound(w http.ResponseWriter, r *http.Request, root string) {
	body, err := os.ReadFile(filepath.Join(root, "404.html"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache, must-revalidate")
	w.WriteHeader(http.StatusNotFound)
	if r.Method != http.MethodHead {
		_, _ = w.Write(body)
	}
}

// servePending is shown on the root path before the first build completes.
// The injected livereload script replaces it once a build lands.
func (s *siteHandler) servePending(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusServiceUnavailable)
	if r.Method == http.MethodHead {
		return
	}
	_, _ = w.Write([]byte(`<!doctype html><html><head><meta charset="utf-8"><title>Site rendering</title></head><body><h1>The guide is being prepared</h1><p>The site has not been rendered yet. This page reloads automatically once the first build completes.</p></body></html>`))
}

// addCacheControl sets Cache-Control headers by asset type before the site
// handler runs.
func addCacheControl(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if cc := determineCacheControl(r.URL.Path); cc != "" {
			w.Header().Set("Cache-Control", cc)
		}
		next.ServeHTTP(w, r)
	})
}

// determineCacheControl returns the Cache-Control value for a path.
func determineCacheControl(path string) string {
	// Stylesheets and scripts are copied verbatim, not content-hashed, so
	// they only get an hour instead of the usual immutable year.
	if strings.HasSuffix(path, ".css") || strings.HasSuffix(path, ".js") {
		return "public, max-age=3600"
	}

	// Web fonts - cache for 1 week
	if strings.HasSuffix(path, ".woff") || strings.HasSuffix(path, ".woff2") ||
		strings.HasSuffix(path, ".ttf") || strings.HasSuffix(path, ".eot") ||
		strings.HasSuffix(path, ".otf") {
		return "public, max-age=604800"
	}

	// Images - cache for 1 week
	if strings.HasSuffix(path, ".png") || strings.HasSuffix(path, ".jpg") ||
		strings.HasSuffix(path, ".jpeg") || strings.HasSuffix(path, ".gif") ||
		strings.HasSuffix(path, ".svg") || strings.HasSuffix(path, ".webp") ||
		strings.HasSuffix(path, ".ico") {
		return "public, max-age=604800"
	}

	// Downloadable files - cache for 1 day
	if strings.HasSuffix(path, ".pdf") || strings.HasSuffix(path, ".zip") ||
		strings.HasSuffix(path, ".tar") || strings.HasSuffix(path, ".gz") {
		return "public, max-age=86400"
	}

	// JSON data files (except search indices) - cache for 5 minutes
	if strings.HasSuffix(path, ".json") && !strings.Contains(path, "search") {
		return "public, max-age=300"
	}

	// XML files (RSS, sitemaps) - cache for 1 hour
	if strings.HasSuffix(path, ".xml") {
		return "public, max-age=3600"
	}

	// HTML pages and directories - no cache so content updates are visible
	if strings.HasSuffix(path, ".html") || path == "/" || !strings.Contains(path, ".") {
		return "no-cache, must-revalidate"
	}

	return ""
}
