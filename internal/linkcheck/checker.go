package linkcheck

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"git.home.luguber.info/inful/guidebuilder/internal/version"
)

// Options configures a Checker.
type Options struct {
	SiteDir       string // root of the rendered site tree to verify
	BaseURL       string // absolute site base URL, used to classify links
	CheckExternal bool   // verify off-site destinations over HTTP
	SkipEditLinks bool   // skip forge edit UIs (they demand auth)

	Cache     ResultCache    // nil selects an in-process cache
	Publisher EventPublisher // optional broken-link event sink

	MaxConcurrent  int           // cap on simultaneous external requests
	RequestTimeout time.Duration // per-request budget
	FollowRedirects bool
	MaxRedirects    int
	ValidTTL        time.Duration // cache lifetime for healthy links
	FailedTTL       time.Duration // cache lifetime for broken links

	BuildID   string
	BuildTime time.Time
}

// Finding records one broken link.
type Finding struct {
	Page     string `json:"page"` // site-relative rendered path
	URL      string `json:"url"`
	Status   int    `json:"status,omitempty"`
	Reason   string `json:"reason"`
	Internal bool   `json:"internal"`
	Text     string `json:"text,omitempty"`
}

// Result summarizes one verification run.
type Result struct {
	PagesScanned    int
	LinksFound      int
	LinksChecked    int
	ExternalSkipped int
	Findings        []Finding
}

// Checker verifies links inside a rendered site tree.
type Checker struct {
	opts       Options
	httpClient *http.Client
	cache      ResultCache
	publisher  EventPublisher
	basePath   string // path component of BaseURL, "" when served from root

	mu       sync.Mutex
	findings []Finding
	checked  int
	skipped  int
}

// New creates a Checker with defaults filled in.
func New(opts Options) *Checker {
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 10
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 10 * time.Second
	}
	if opts.MaxRedirects <= 0 {
		opts.MaxRedirects = 5
	}
	if opts.ValidTTL <= 0 {
		opts.ValidTTL = 24 * time.Hour
	}
	if opts.FailedTTL <= 0 {
		opts.FailedTTL = time.Hour
	}
	cache := opts.Cache
	if cache == nil {
		cache = NewMemoryCache()
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	client := &http.Client{
		Timeout:   opts.RequestTimeout,
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if !opts.FollowRedirects {
				return http.ErrUseLastResponse
			}
			if len(via) >= opts.MaxRedirects {
				return fmt.Errorf("stopped after %d redirects", opts.MaxRedirects)
			}
			return nil
		},
	}

	basePath := ""
	if u, err := url.Parse(opts.BaseURL); err == nil {
		basePath = strings.Trim(u.Path, "/")
	}

	return &Checker{opts: opts, httpClient: client, cache: cache, publisher: opts.Publisher, basePath: basePath}
}

// VerifySite walks the rendered tree and verifies every page's links.
// Internal destinations are resolved against the tree on disk; external
// ones go through the cache and, when enabled, an HTTP HEAD probe.
func (c *Checker) VerifySite(ctx context.Context) (*Result, error) {
	pages, err := c.collectPages()
	if err != nil {
		return nil, err
	}
	slog.Info("verifying links", "pages", len(pages), "external", c.opts.CheckExternal)

	c.mu.Lock()
	c.findings = nil
	c.checked = 0
	c.skipped = 0
	c.mu.Unlock()

	linkSem := make(chan struct{}, c.opts.MaxConcurrent)
	var wg sync.WaitGroup
	found := 0

	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			wg.Wait()
			return nil, err
		}
		links, err := ExtractLinks(filepath.Join(c.opts.SiteDir, filepath.FromSlash(page)), c.opts.BaseURL)
		if err != nil {
			slog.Warn("failed to extract links", "page", page, "error", err)
			continue
		}
		found += len(links)
		for _, link := range links {
			if !ShouldVerify(link) {
				continue
			}
			if c.opts.SkipEditLinks && IsEditLink(link.URL) {
				continue
			}
			if link.IsInternal {
				c.verifyInternal(page, link)
				continue
			}
			if !c.opts.CheckExternal {
				c.mu.Lock()
				c.skipped++
				c.mu.Unlock()
				continue
			}
			select {
			case <-ctx.Done():
				wg.Wait()
				return nil, ctx.Err()
			case linkSem <- struct{}{}:
			}
			wg.Add(1)
			go func(page string, link *Link) {
				defer wg.Done()
				defer func() { <-linkSem }()
				c.verifyExternal(ctx, page, link)
			}(page, link)
		}
	}
	wg.Wait()

	c.mu.Lock()
	defer c.mu.Unlock()
	sort.Slice(c.findings, func(i, j int) bool {
		if c.findings[i].Page != c.findings[j].Page {
			return c.findings[i].Page < c.findings[j].Page
		}
		return c.findings[i].URL < c.findings[j].URL
	})
	res := &Result{
		PagesScanned:    len(pages),
		LinksFound:      found,
		LinksChecked:    c.checked,
		ExternalSkipped: c.skipped,
		Findings:        append([]Finding(nil), c.findings...),
	}
	return res, nil
}

// collectPages enumerates rendered HTML files relative to SiteDir.
func (c *Checker) collectPages() ([]string, error) {
	var pages []string
	err := filepath.WalkDir(c.opts.SiteDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasSuffix(strings.ToLower(d.Name()), ".html") {
			rel, relErr := filepath.Rel(c.opts.SiteDir, p)
			if relErr != nil {
				return relErr
			}
			pages = append(pages, filepath.ToSlash(rel))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk site dir: %w", err)
	}
	sort.Strings(pages)
	return pages, nil
}

// verifyInternal resolves a destination against the rendered tree.
func (c *Checker) verifyInternal(page string, link *Link) {
	target, ok := c.resolveInternalTarget(page, link.URL)
	if !ok {
		// Unresolvable (odd scheme or escape from the site root); skip.
		return
	}
	c.mu.Lock()
	c.checked++
	c.mu.Unlock()
	if c.targetExists(target) {
		return
	}
	c.addFinding(Finding{
		Page:     page,
		URL:      link.URL,
		Reason:   "target not found in site output",
		Internal: true,
		Text:     link.Text,
	})
}

// resolveInternalTarget maps a link destination onto a site-relative path.
// Returns ok=false for destinations that cannot or should not be resolved
// against the tree.
func (c *Checker) resolveInternalTarget(page, dest string) (string, bool) {
	u, err := url.Parse(dest)
	if err != nil {
		return "", false
	}
	if u.Scheme != "" && u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}
	p := u.Path
	if p == "" { // fragment-only or query-only
		return "", true
	}
	if path.IsAbs(p) {
		p = strings.TrimPrefix(p, "/")
		switch {
		case c.basePath == "":
		case p == c.basePath:
			p = ""
		case strings.HasPrefix(p, c.basePath+"/"):
			p = p[len(c.basePath)+1:]
		}
	} else {
		// Relative to the page's directory URL.
		p = path.Join(path.Dir(page), p)
	}
	cleaned := path.Clean("/" + p)
	return strings.TrimPrefix(cleaned, "/"), true
}

// targetExists checks the rendered tree for a resolved destination.
func (c *Checker) targetExists(target string) bool {
	if target == "" {
		return true // site root always renders
	}
	full := filepath.Join(c.opts.SiteDir, filepath.FromSlash(target))
	if fi, err := os.Stat(full); err == nil {
		if !fi.IsDir() {
			return true
		}
		// Directory link: the clean URL form needs an index page.
		_, err := os.Stat(filepath.Join(full, "index.html"))
		return err == nil
	}
	// Extensionless page link written without trailing slash.
	if path.Ext(target) == "" {
		_, err := os.Stat(filepath.Join(full, "index.html"))
		return err == nil
	}
	return false
}

// verifyExternal checks one off-site destination, consulting the cache
// first and recording the outcome back into it.
func (c *Checker) verifyExternal(ctx context.Context, page string, link *Link) {
	c.mu.Lock()
	c.checked++
	c.mu.Unlock()

	cached, err := c.cache.Get(ctx, link.URL)
	if err != nil {
		slog.Debug("cache lookup failed", "url", link.URL, "error", err)
	} else if cached != nil && c.cacheValid(cached) {
		if !cached.IsValid {
			c.reportBroken(ctx, page, link, cached.Status, cached.Error, cached)
		}
		return
	}

	status, checkErr := c.probe(ctx, link.URL)
	entry := &CacheEntry{
		URL:         link.URL,
		Status:      status,
		IsValid:     checkErr == nil,
		LastChecked: time.Now(),
	}
	if checkErr != nil {
		entry.Error = checkErr.Error()
		trackFailure(entry, cached)
		c.reportBroken(ctx, page, link, status, checkErr.Error(), entry)
	}
	if err := c.cache.Set(ctx, entry); err != nil {
		slog.Warn("failed to update link cache", "url", link.URL, "error", err)
	}
}

// probe issues a HEAD request against the destination. Auth challenges
// count as healthy: the URL exists, it just wants credentials.
func (c *Checker) probe(ctx context.Context, linkURL string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, linkURL, nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "guidebuilder-linkcheck/"+version.Version)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	_, _ = io.Copy(io.Discard, resp.Body)

	if isAuthStatus(resp.StatusCode) {
		return resp.StatusCode, nil
	}
	if resp.StatusCode >= 400 {
		return resp.StatusCode, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}
	return resp.StatusCode, nil
}

func isAuthStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusMethodNotAllowed:
		return true
	}
	return false
}

// cacheValid reports whether a cached result is still fresh enough to
// reuse. Broken links expire faster so recoveries are noticed.
func (c *Checker) cacheValid(entry *CacheEntry) bool {
	if entry == nil {
		return false
	}
	ttl := c.opts.ValidTTL
	if !entry.IsValid {
		ttl = c.opts.FailedTTL
	}
	return time.Since(entry.LastChecked) < ttl
}

func trackFailure(entry *CacheEntry, prev *CacheEntry) {
	if prev != nil {
		entry.FailureCount = prev.FailureCount + 1
		entry.FirstFailedAt = prev.FirstFailedAt
		if entry.FirstFailedAt.IsZero() {
			entry.FirstFailedAt = time.Now()
		}
	} else {
		entry.FailureCount = 1
		entry.FirstFailedAt = time.Now()
	}
	entry.ConsecutiveFail = true
}

func (c *Checker) addFinding(f Finding) {
	c.mu.Lock()
	c.findings = append(c.findings, f)
	c.mu.Unlock()
}

// reportBroken records the finding and, when a publisher is wired,
// emits a broken-link event.
func (c *Checker) reportBroken(ctx context.Context, page string, link *Link, status int, reason string, entry *CacheEntry) {
	c.addFinding(Finding{
		Page:     page,
		URL:      link.URL,
		Status:   status,
		Reason:   reason,
		Internal: link.IsInternal,
		Text:     link.Text,
	})
	slog.Warn("broken link detected", "url", link.URL, "page", page, "status", status, "error", reason)
	if c.publisher == nil {
		return
	}
	event := &BrokenLinkEvent{
		URL:        link.URL,
		Status:     status,
		Error:      reason,
		IsInternal: link.IsInternal,
		Page:       page,
		PageURL:    strings.TrimSuffix(c.opts.BaseURL, "/") + "/" + strings.TrimSuffix(page, "index.html"),
		LinkText:   link.Text,
		Tag:        link.Tag,
		BuildID:    c.opts.BuildID,
		BuildTime:  c.opts.BuildTime,
	}
	if entry != nil {
		event.FailureCount = entry.FailureCount
		event.FirstFailedAt = entry.FirstFailedAt
		event.LastChecked = entry.LastChecked
	}
	if err := c.publisher.PublishBrokenLink(ctx, event); err != nil {
		slog.Error("failed to publish broken link event", "url", link.URL, "error", err)
	}
}
