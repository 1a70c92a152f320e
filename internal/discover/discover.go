// Package discover issues web-search queries for a brand/product pair and
// returns a deduplicated, ranked list of candidate URLs. Search being
// unavailable or empty is a normal outcome: downstream stages degrade to a
// thin record, never an error.
package discover

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"prodfact/internal/model"
)

// Candidate is one search hit worth fetching.
type Candidate struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Searcher is the web-search capability boundary. Implementations must
// tolerate zero results.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]Candidate, error)
}

// Discovery builds query variants and ranks the merged results.
type Discovery struct {
	searcher Searcher
	config   model.SearchConfig
}

// New creates a Discovery over the given searcher.
func New(searcher Searcher, config model.SearchConfig) *Discovery {
	return &Discovery{searcher: searcher, config: config}
}

// Queries returns the search query variants for a brand/product pair.
// The variants cover marketing pages and technical documents (manuals,
// datasheets) to raise recall on spec-bearing sources.
func Queries(brand, product string, hints []string) []string {
	base := strings.TrimSpace(brand + " " + product)
	queries := []string{
		fmt.Sprintf("%q %s", base, strings.Join(hints, " ")),
		base + " specifications",
		base + " manual",
		base + " datasheet filetype:pdf",
	}
	for i, q := range queries {
		queries[i] = strings.TrimSpace(q)
	}
	return queries
}

// Discover runs all query variants, dedupes by URL, and returns the top
// candidates ranked by product-page heuristics. Discovery order is the
// secondary rank and is preserved for downstream tie-breaking.
func (d *Discovery) Discover(ctx context.Context, brand, product string, hints []string) []Candidate {
	type scored struct {
		cand  Candidate
		score float64
		order int
	}

	seen := make(map[string]bool)
	var all []scored

	for _, query := range Queries(brand, product, hints) {
		hits, err := d.searcher.Search(ctx, query, d.config.MaxResults)
		if err != nil {
			continue // Search failure means no data from this variant.
		}
		for _, h := range hits {
			url := canonicalURL(h.URL)
			if url == "" || seen[url] {
				continue
			}
			seen[url] = true
			all = append(all, scored{
				cand:  Candidate{Title: h.Title, URL: url},
				score: ScoreURL(url, h.Title, brand),
				order: len(all),
			})
		}
	}

	sort.SliceStable(all, func(i, j int) bool {
		if all[i].score != all[j].score {
			return all[i].score > all[j].score
		}
		return all[i].order < all[j].order
	})

	max := d.config.MaxCandidates
	if max <= 0 || max > len(all) {
		max = len(all)
	}
	out := make([]Candidate, 0, max)
	for _, s := range all[:max] {
		out = append(out, s.cand)
	}
	return out
}

// canonicalURL strips fragments and trailing slashes for deduplication.
func canonicalURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || !strings.HasPrefix(raw, "http") {
		return ""
	}
	if idx := strings.IndexByte(raw, '#'); idx > 0 {
		raw = raw[:idx]
	}
	return strings.TrimSuffix(raw, "/")
}
