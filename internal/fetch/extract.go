package fetch

import (
	"net/url"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/net/html"
)

// srcAttrs are the <img> attributes checked for image locations, in order.
// Lazy-loading widgets commonly stash the real URL in data-src or
// data-original.
var srcAttrs = []string{"src", "data-src", "data-original"}

// rawURLPattern catches raster image URLs embedded in scripts or inline
// styles that the DOM walk misses.
var rawURLPattern = regexp.MustCompile(`(?i)https?://[^"'\s>]+\.(?:jpg|jpeg|png|gif|webp|bmp|tiff)(?:\?[^"'\s>]*)?`)

// skipWords filter out decorative assets that are never worth converting.
var skipWords = []string{"icon", "logo", "button", "16x16", "32x32"}

// ExtractImageURLs parses markup and returns the absolute URLs of candidate
// images, deduplicated and sorted. baseURL resolves relative references;
// URLs that resolve to anything other than http(s) are dropped, as are
// obvious icons and logos.
func ExtractImageURLs(markup, baseURL string) []string {
	base, err := url.Parse(baseURL)
	if err != nil {
		base = nil
	}

	found := make(map[string]struct{})

	doc, err := html.Parse(strings.NewReader(markup))
	if err == nil {
		var walk func(*html.Node)
		walk = func(n *html.Node) {
			if n.Type == html.ElementNode && n.Data == "img" {
				for _, attr := range srcAttrs {
					if src := attrValue(n, attr); src != "" {
						if abs := resolveURL(base, src); abs != "" {
							found[abs] = struct{}{}
						}
					}
				}
			}
			for child := n.FirstChild; child != nil; child = child.NextSibling {
				walk(child)
			}
		}
		walk(doc)
	}

	for _, match := range rawURLPattern.FindAllString(markup, -1) {
		found[match] = struct{}{}
	}

	urls := make([]string, 0, len(found))
	for u := range found {
		if skippable(u) {
			continue
		}
		urls = append(urls, u)
	}
	sort.Strings(urls)
	return urls
}

func attrValue(n *html.Node, name string) string {
	for _, attr := range n.Attr {
		if attr.Key == name {
			return strings.TrimSpace(attr.Val)
		}
	}
	return ""
}

func resolveURL(base *url.URL, ref string) string {
	parsed, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	if base != nil {
		parsed = base.ResolveReference(parsed)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return ""
	}
	return parsed.String()
}

func skippable(u string) bool {
	lower := strings.ToLower(u)
	for _, word := range skipWords {
		if strings.Contains(lower, word) {
			return true
		}
	}
	return false
}
