// Package extract parses fetched pages (HTML or PDF) into raw,
// source-attributed claims. Extraction is a pure function of the input
// bytes: malformed input yields an empty claim list, never an error.
package extract

import (
	"strings"

	"prodfact/internal/model"
	"prodfact/internal/normalize"
)

// Extractor turns page bytes into claims.
type Extractor struct {
	maxPerPage int
}

// New creates an extractor with default limits.
func New() *Extractor {
	return &Extractor{maxPerPage: 60}
}

// Extract parses page bytes into claims attributed to sourceURL. The
// mediaType decides the parsing path (HTML or PDF).
func (e *Extractor) Extract(body []byte, mediaType, sourceURL string) []model.Claim {
	var claims []model.Claim
	switch {
	case strings.Contains(mediaType, "pdf"):
		claims = e.extractPDF(body, sourceURL)
	default:
		claims = e.extractHTML(body, sourceURL)
	}
	claims = dedupeClaims(claims)
	if len(claims) > e.maxPerPage {
		claims = claims[:e.maxPerPage]
	}
	return claims
}

// ExtractLines runs the attribute patterns and line classifiers over
// already-plain text lines (e.g. OCR output). sourceURL may be a sentinel
// source.
func (e *Extractor) ExtractLines(lines []string, sourceURL string) []model.Claim {
	var claims []model.Claim
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		claims = append(claims, matchPatterns(line, sourceURL)...)
		if label, value, ok := splitKeyValue(line); ok {
			if c, valid := keyValueClaim(label, value, sourceURL); valid {
				claims = append(claims, c)
			}
		}
		claims = append(claims, classifyLine(line, sourceURL)...)
	}
	claims = dedupeClaims(claims)
	if len(claims) > e.maxPerPage {
		claims = claims[:e.maxPerPage]
	}
	return claims
}

// matchPatterns runs the fixed attribute table over one line of text.
func matchPatterns(line, sourceURL string) []model.Claim {
	var claims []model.Claim
	for _, p := range attrPatterns {
		m := p.re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		claims = append(claims, model.Claim{
			Key:     p.key,
			Value:   strings.TrimSpace(m[1]),
			Kind:    model.KindSpec,
			Source:  sourceURL,
			Snippet: strings.TrimSpace(m[0]),
		})
	}
	return claims
}

// classifyLine turns a free-text line into feature/disclaimer claims.
func classifyLine(line, sourceURL string) []model.Claim {
	if looksLikeDisclaimer(line) {
		return []model.Claim{{
			Key:     "disclaimer",
			Value:   line,
			Kind:    model.KindDisclaimer,
			Source:  sourceURL,
			Snippet: line,
		}}
	}
	if looksLikeFeature(line) {
		return []model.Claim{{
			Key:     "feature",
			Value:   line,
			Kind:    model.KindFeature,
			Source:  sourceURL,
			Snippet: line,
		}}
	}
	return nil
}

// keyValueClaim maps a "label: value" pair through the alias table.
func keyValueClaim(label, value, sourceURL string) (model.Claim, bool) {
	key, ok := keyAliases[strings.ToLower(strings.TrimSpace(label))]
	if !ok {
		return model.Claim{}, false
	}
	value = strings.TrimSpace(value)
	if value == "" || len(value) > 80 {
		return model.Claim{}, false
	}
	return model.Claim{
		Key:     key,
		Value:   value,
		Kind:    model.KindSpec,
		Source:  sourceURL,
		Snippet: label + ": " + value,
	}, true
}

// dedupeClaims removes per-page duplicates by (kind, key, normalized value),
// keeping first occurrence order.
func dedupeClaims(claims []model.Claim) []model.Claim {
	seen := make(map[string]bool, len(claims))
	out := claims[:0]
	for _, c := range claims {
		id := string(c.Kind) + "|" + c.Key + "|" + normalize.Phrase(c.Value)
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, c)
	}
	return out
}
