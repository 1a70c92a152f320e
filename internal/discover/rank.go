package discover

import (
	"net/url"
	"strings"

	"prodfact/internal/model"
)

// Candidate URLs are scored before fetching (path shape, brand host), and
// fetched pages are scored again on content (product markup, link density)
// so listing/nav pages can be skipped before extraction.

var productPathMarkers = []string{"/product", "/products/", "/p/", "/dp/", "/item/", "/shop/"}

var boilerplatePathMarkers = []string{
	"/blog", "/news", "/category", "/collections", "/search", "/tag/",
	"/forum", "/community", "/about", "/careers", "/press",
}

// ScoreURL ranks a candidate by URL path shape and title, before any fetch.
func ScoreURL(rawURL, title, brand string) float64 {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return 0
	}
	path := strings.ToLower(parsed.Path)

	var score float64
	for _, m := range productPathMarkers {
		if strings.Contains(path, m) {
			score += 2
			break
		}
	}
	for _, m := range boilerplatePathMarkers {
		if strings.Contains(path, m) {
			score -= 2
			break
		}
	}
	if strings.HasSuffix(path, ".pdf") {
		score += 1.5 // Manuals and datasheets are high-trust sources.
	}
	if model.IsManufacturer(rawURL, brand) {
		score += 3
	}
	if len(parsed.RawQuery) > 40 {
		score -= 1 // Long query strings usually mean search/tracking pages.
	}
	if t := strings.ToLower(title); strings.Contains(t, "spec") || strings.Contains(t, "manual") {
		score += 1
	}
	return score
}

// PageUseful applies post-fetch content heuristics: a page dominated by
// links is a listing or navigation page, and structured product markup is a
// strong positive signal.
func PageUseful(html string) bool {
	if HasProductMarkup(html) {
		return true
	}
	return LinkDensity(html) < 0.25
}

// HasProductMarkup detects embedded schema.org Product blocks.
func HasProductMarkup(html string) bool {
	lower := strings.ToLower(html)
	return strings.Contains(lower, "application/ld+json") &&
		strings.Contains(lower, `"product"`)
}

// LinkDensity is a crude anchor-tags-per-word ratio over raw HTML.
func LinkDensity(html string) float64 {
	if html == "" {
		return 0
	}
	anchors := strings.Count(strings.ToLower(html), "<a ")
	words := len(strings.Fields(html))
	if words == 0 {
		return 0
	}
	d := float64(anchors*10) / float64(words)
	if d > 1 {
		d = 1
	}
	return d
}
