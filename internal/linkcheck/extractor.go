package linkcheck

import (
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"

	"git.home.luguber.info/inful/guidebuilder/internal/guideerr"
)

// Link represents a single outgoing reference extracted from rendered HTML.
type Link struct {
	URL        string // raw destination as written in the document
	Text       string // link text or alt text
	Tag        string // HTML tag (a, img, script, link, ...)
	Attribute  string // attribute carrying the destination (href, src)
	IsInternal bool   // destination stays on this site
}

// ExtractLinks extracts all links from an HTML file on disk.
func ExtractLinks(htmlPath string, baseURL string) ([]*Link, error) {
	file, err := os.Open(filepath.Clean(htmlPath))
	if err != nil {
		return nil, guideerr.WrapError(err, guideerr.CategoryFileSystem, "open rendered page").
			WithContext("path", htmlPath)
	}
	defer func() {
		_ = file.Close()
	}()
	return ExtractLinksFromReader(file, baseURL)
}

// ExtractLinksFromReader extracts all links from an HTML stream.
func ExtractLinksFromReader(r io.Reader, baseURL string) ([]*Link, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, guideerr.WrapError(err, guideerr.CategoryContent, "parse rendered HTML")
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, guideerr.WrapError(err, guideerr.CategoryValidation, "invalid base URL").
			WithContext("base_url", baseURL)
	}

	var links []*Link
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			collectElementLinks(n, &links, base)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return links, nil
}

func collectElementLinks(n *html.Node, links *[]*Link, base *url.URL) {
	switch n.Data {
	case "a":
		if href := attrValue(n, "href"); href != "" {
			*links = append(*links, &Link{URL: href, Text: nodeText(n), Tag: "a", Attribute: "href", IsInternal: isInternalLink(href, base)})
		}
	case "img":
		if src := attrValue(n, "src"); src != "" {
			*links = append(*links, &Link{URL: src, Text: attrValue(n, "alt"), Tag: "img", Attribute: "src", IsInternal: isInternalLink(src, base)})
		}
	case "script":
		if src := attrValue(n, "src"); src != "" {
			*links = append(*links, &Link{URL: src, Tag: "script", Attribute: "src", IsInternal: isInternalLink(src, base)})
		}
	case "link":
		if href := attrValue(n, "href"); href != "" {
			*links = append(*links, &Link{URL: href, Text: attrValue(n, "rel"), Tag: "link", Attribute: "href", IsInternal: isInternalLink(href, base)})
		}
	case "video", "audio", "source":
		if src := attrValue(n, "src"); src != "" {
			*links = append(*links, &Link{URL: src, Tag: n.Data, Attribute: "src", IsInternal: isInternalLink(src, base)})
		}
	}
}

func attrValue(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

func nodeText(n *html.Node) string {
	if n.Type == html.TextNode {
		return strings.TrimSpace(n.Data)
	}
	var text strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		text.WriteString(nodeText(c))
	}
	return strings.TrimSpace(text.String())
}

// isInternalLink reports whether a destination stays within the site.
// Fragment-only and special-protocol destinations count as internal so
// they never reach the external checker.
func isInternalLink(linkURL string, base *url.URL) bool {
	if strings.HasPrefix(linkURL, "mailto:") ||
		strings.HasPrefix(linkURL, "tel:") ||
		strings.HasPrefix(linkURL, "javascript:") ||
		strings.HasPrefix(linkURL, "#") {
		return true
	}
	u, err := url.Parse(linkURL)
	if err != nil {
		return false
	}
	if u.Scheme == "" || u.Host == "" {
		return true
	}
	return base != nil && u.Host == base.Host
}

// FilterLinks keeps links matching the requested classes.
func FilterLinks(links []*Link, includeInternal, includeExternal bool) []*Link {
	var filtered []*Link
	for _, link := range links {
		if link.IsInternal && includeInternal {
			filtered = append(filtered, link)
		} else if !link.IsInternal && includeExternal {
			filtered = append(filtered, link)
		}
	}
	return filtered
}

// ShouldVerify reports whether a link is worth checking at all.
func ShouldVerify(link *Link) bool {
	if link.URL == "" {
		return false
	}
	if strings.HasPrefix(link.URL, "#") {
		return false
	}
	if strings.HasPrefix(link.URL, "mailto:") ||
		strings.HasPrefix(link.URL, "tel:") ||
		strings.HasPrefix(link.URL, "javascript:") ||
		strings.HasPrefix(link.URL, "data:") {
		return false
	}
	return !isGeneratedFeature(link.URL)
}

// isGeneratedFeature matches site files the generator emits alongside the
// pages; they always exist when the build reaches verification so checking
// them only produces noise.
func isGeneratedFeature(linkURL string) bool {
	u, err := url.Parse(linkURL)
	if err != nil {
		return false
	}
	path := u.Path
	switch {
	case strings.HasSuffix(path, "search-index.json"):
		return true
	case strings.HasSuffix(path, "sitemap.xml"):
		return true
	case strings.HasSuffix(path, "robots.txt"):
		return true
	case strings.HasSuffix(path, "/livereload"):
		return true
	}
	return false
}

// IsEditLink matches "edit this page" destinations, which point at forge
// edit UIs and normally require authentication.
func IsEditLink(linkURL string) bool {
	u, err := url.Parse(linkURL)
	if err != nil {
		return false
	}
	path := u.Path
	return strings.Contains(path, "/edit/") ||
		strings.Contains(path, "/-/edit/") ||
		strings.Contains(path, "/_edit/")
}
