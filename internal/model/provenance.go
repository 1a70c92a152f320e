package model

import (
	"net/url"
	"strings"
)

// Provenance weights per source class. Manufacturer pages outrank trusted
// retailers, which outrank generic pages; synthetic sources sit at the floor.
const (
	ProvenanceManufacturer = 1.0
	ProvenanceRetailer     = 0.75
	ProvenanceGeneric      = 0.5
	ProvenanceLLM          = 0.35
	ProvenanceVision       = 0.2
)

// BrandToken derives the matching token from a brand name: the first word,
// lowercased, stripped of non-alphanumeric runes. "Helinox Inc." -> "helinox".
func BrandToken(brand string) string {
	fields := strings.Fields(strings.ToLower(brand))
	if len(fields) == 0 {
		return ""
	}
	var b strings.Builder
	for _, r := range fields[0] {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// IsManufacturer reports whether the source URL belongs to a brand-owned
// domain. The brand token is matched against whole host labels rather than
// as a raw substring, so "arcteryx.com" matches brand "Arc'teryx" while
// "notarcteryxfan.blog" does not.
func IsManufacturer(source, brand string) bool {
	token := BrandToken(brand)
	if token == "" {
		return false
	}
	host := hostOf(source)
	if host == "" {
		return false
	}
	for _, label := range strings.Split(host, ".") {
		if label == token {
			return true
		}
	}
	return false
}

// ProvenanceScore assigns the trust weight for a claim source.
func ProvenanceScore(source, brand string, trustedRetailers []string) float64 {
	switch source {
	case SourceLLMFallback:
		return ProvenanceLLM
	case SourceVisionHint:
		return ProvenanceVision
	}
	if IsManufacturer(source, brand) {
		return ProvenanceManufacturer
	}
	host := hostOf(source)
	for _, retailer := range trustedRetailers {
		if host == retailer || strings.HasSuffix(host, "."+retailer) {
			return ProvenanceRetailer
		}
	}
	return ProvenanceGeneric
}

func hostOf(source string) string {
	parsed, err := url.Parse(source)
	if err != nil || parsed.Host == "" {
		return ""
	}
	host := parsed.Host
	if idx := strings.Index(host, ":"); idx > 0 {
		host = host[:idx]
	}
	return strings.TrimPrefix(strings.ToLower(host), "www.")
}
