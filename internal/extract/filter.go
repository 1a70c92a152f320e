package extract

import (
	"regexp"
	"strings"
)

// Feature acceptance is deliberately conservative: a line only becomes a
// feature claim if it is short, avoids slogan/legal/navigation language,
// and names at least one concrete product part. The noun-token gate is the
// primary defense against ingesting marketing fluff as fact.

const (
	minFeatureWords    = 3
	maxFeatureWords    = 12
	maxDisclaimerWords = 25
)

var denyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(safest|best|#1|no\.\s?1|guarantee[ds]?|miracle|revolutionary|world'?s)\b`),
	regexp.MustCompile(`(?i)\b(\d{2,}%\s+(?:better|more|less)|\d+x\s+(?:faster|stronger|longer))\b`),
	regexp.MustCompile(`(?i)\b(terms\s+of\s+service|privacy\s+policy|newsletter|subscribe|sign\s+(?:up|in)|log\s+in|cookie[s]?|copyright|all\s+rights\s+reserved)\b`),
	regexp.MustCompile(`(?i)\b(free\s+shipping|add\s+to\s+cart|in\s+stock|buy\s+now|checkout|track\s+(?:my\s+)?order)\b`),
	// Certifications we must not repeat without verification.
	regexp.MustCompile(`\b(FDA|CE|UL|ISO)\b`),
}

// productNouns are concrete product-part tokens. At least one must appear
// for a line to count as a feature.
var productNouns = map[string]bool{
	"strap": true, "straps": true, "frame": true, "battery": true,
	"driver": true, "drivers": true, "hinge": true, "seat": true,
	"fabric": true, "mesh": true, "foam": true, "padding": true,
	"pocket": true, "pockets": true, "handle": true, "handles": true,
	"wheel": true, "wheels": true, "zipper": true, "motor": true,
	"lens": true, "sensor": true, "speaker": true, "speakers": true,
	"holder": true, "armrest": true, "armrests": true, "leg": true,
	"legs": true, "pole": true, "poles": true, "canopy": true,
	"bag": true, "case": true, "cable": true, "port": true, "ports": true,
	"button": true, "buttons": true, "filter": true, "blade": true,
	"blades": true, "panel": true, "valve": true, "buckle": true,
	"lid": true, "grip": true, "back": true, "backrest": true,
	"microphone": true, "earcup": true, "earcups": true, "cushion": true,
	"cushions": true, "outlet": true, "outlets": true, "stand": true,
	"mount": true, "base": true, "shell": true, "lining": true,
}

var disclaimerKeywords = []string{
	"do not", "warning", "caution", "not intended", "not a toy",
	"keep out of reach", "max weight", "maximum weight", "weight capacity",
	"do not exceed", "read the instructions", "read all instructions",
	"follow all warnings", "adult supervision", "choking hazard",
}

// looksLikeFeature applies the three-part feature gate.
func looksLikeFeature(line string) bool {
	words := strings.Fields(line)
	if len(words) < minFeatureWords || len(words) > maxFeatureWords {
		return false
	}
	lower := strings.ToLower(line)
	// Comparative copy is marketing, not fact.
	if strings.Contains(lower, " than ") || strings.Contains(lower, " vs ") {
		return false
	}
	for _, re := range denyPatterns {
		if re.MatchString(line) {
			return false
		}
	}
	for _, w := range words {
		if productNouns[strings.Trim(strings.ToLower(w), ".,;:!?()\"'")] {
			return true
		}
	}
	return false
}

// looksLikeDisclaimer accepts short lines carrying cautionary language.
func looksLikeDisclaimer(line string) bool {
	words := strings.Fields(line)
	if len(words) == 0 || len(words) > maxDisclaimerWords {
		return false
	}
	lower := strings.ToLower(line)
	for _, kw := range disclaimerKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
