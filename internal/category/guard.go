// Package category cross-checks candidate text against an expected product
// category, so claims harvested from a same-brand-but-wrong-product page
// never pollute the record.
package category

import (
	"strings"

	"prodfact/internal/model"
)

// Guard filters text by per-category allow/deny keyword lists. Deny markers
// take precedence over allow markers: a single deny hit rejects the text no
// matter how many allow markers it carries. An unknown or unset category
// fails open.
type Guard struct {
	categories map[string]model.KeywordSet
}

// NewGuard creates a guard from configured keyword sets.
func NewGuard(cfg model.CategoryConfig) *Guard {
	categories := make(map[string]model.KeywordSet, len(cfg.Categories))
	for name, set := range cfg.Categories {
		categories[strings.ToLower(name)] = set
	}
	return &Guard{categories: categories}
}

// OK reports whether the candidate text is admissible for the desired
// category.
func (g *Guard) OK(text, desiredCategory string) bool {
	set, known := g.lookup(desiredCategory)
	if !known {
		return true
	}

	lower := strings.ToLower(text)
	tokens := tokenize(lower)

	for _, marker := range set.Deny {
		if matchMarker(lower, tokens, marker) {
			return false
		}
	}
	return true
}

// Match reports whether the text carries at least one allow marker for the
// category (and no deny marker). Used to positively confirm vision/OCR
// category tags.
func (g *Guard) Match(text, desiredCategory string) bool {
	set, known := g.lookup(desiredCategory)
	if !known {
		return true
	}
	if !g.OK(text, desiredCategory) {
		return false
	}

	lower := strings.ToLower(text)
	tokens := tokenize(lower)
	for _, marker := range set.Allow {
		if matchMarker(lower, tokens, marker) {
			return true
		}
	}
	return false
}

// lookup resolves the desired category against configured sets, tolerating
// qualifiers ("wireless headphones" resolves to "headphones").
func (g *Guard) lookup(desired string) (model.KeywordSet, bool) {
	desired = strings.ToLower(strings.TrimSpace(desired))
	if desired == "" {
		return model.KeywordSet{}, false
	}
	if set, ok := g.categories[desired]; ok {
		return set, true
	}
	for name, set := range g.categories {
		if strings.Contains(desired, name) {
			return set, true
		}
	}
	return model.KeywordSet{}, false
}

// matchMarker matches single-word markers against whole tokens (so the
// deny marker "wh" hits "500Wh" but not "white") and multi-word markers
// as substrings.
func matchMarker(lower string, tokens map[string]bool, marker string) bool {
	marker = strings.ToLower(marker)
	if strings.ContainsRune(marker, ' ') {
		return strings.Contains(lower, marker)
	}
	return tokens[marker]
}

// tokenize splits text into letter runs. Digits act as separators so that
// compound quantities like "500wh" still yield the unit token.
func tokenize(lower string) map[string]bool {
	tokens := make(map[string]bool)
	var b strings.Builder
	flush := func() {
		if b.Len() > 0 {
			tokens[b.String()] = true
			b.Reset()
		}
	}
	for _, r := range lower {
		if r >= 'a' && r <= 'z' {
			b.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return tokens
}
