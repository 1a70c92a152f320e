// Package normalize rewrites claim values into canonical forms so that
// claims from different sources become comparable. Normalization never
// fails loudly: an unparseable value is returned unchanged, which only
// lowers the chance of cross-source agreement for it.
package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Keys with a known physical dimension.
var (
	massKeys   = map[string]bool{"weight": true, "load_capacity": true}
	lengthKeys = map[string]bool{"seat_height": true, "screen": true}
	dimKeys    = map[string]bool{"dimensions": true, "packed_size": true}
)

// Factors into the canonical unit (kilograms for mass, centimeters for length).
var (
	massFactors = map[string]float64{
		"kg": 1, "kgs": 1, "kilogram": 1, "kilograms": 1,
		"g": 0.001, "gram": 0.001, "grams": 0.001,
		"lb": 0.45359237, "lbs": 0.45359237, "pound": 0.45359237, "pounds": 0.45359237,
		"oz": 0.0283495, "ounce": 0.0283495, "ounces": 0.0283495,
	}
	lengthFactors = map[string]float64{
		"cm": 1, "centimeter": 1, "centimeters": 1,
		"mm": 0.1, "m": 100,
		"in": 2.54, "inch": 2.54, "inches": 2.54, `"`: 2.54,
		"ft": 30.48, "feet": 30.48, "foot": 30.48,
	}

	quantityRe = regexp.MustCompile(`([\d]+(?:[.,]\d+)?)\s*([a-zA-Z"]+)`)

	// Separator between two measurements; a bare "x" inside a word is not one.
	dimSepRe = regexp.MustCompile(`(\d)\s*[x×]\s*(\d)`)
)

// Value rewrites a claim value for the given key into its canonical unit,
// rounding to a stable precision so near-equal values from different
// sources collapse into the same bucket. Values it cannot parse are
// returned unchanged.
func Value(key, raw string) string {
	switch {
	case massKeys[key]:
		if v, ok := convert(raw, massFactors); ok {
			return fmt.Sprintf("%.2f kg", v)
		}
		return raw
	case lengthKeys[key]:
		if v, ok := convert(raw, lengthFactors); ok {
			return fmt.Sprintf("%.1f cm", v)
		}
		return raw
	case dimKeys[key]:
		// Dimensions are usually "X × Y × Z unit"; standardize the
		// separator and spacing only.
		v := dimSepRe.ReplaceAllString(strings.ToLower(raw), "$1 × $2")
		return collapseSpaces(v)
	default:
		return Surface(raw)
	}
}

// convert parses the leading number and unit token and converts to the
// canonical unit using the factor table.
func convert(raw string, factors map[string]float64) (float64, bool) {
	m := quantityRe.FindStringSubmatch(strings.ToLower(raw))
	if m == nil {
		return 0, false
	}
	num, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "."), 64)
	if err != nil {
		return 0, false
	}
	factor, ok := factors[strings.TrimSuffix(m[2], ".")]
	if !ok {
		return 0, false
	}
	return num * factor, true
}

// Surface performs surface-only normalization for values without a
// recognized unit: separator standardization and whitespace collapsing.
func Surface(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, " / ", "/")
	return collapseSpaces(s)
}

var nonPhrase = regexp.MustCompile(`[^\w\s×.\-:/]`)

// Phrase normalizes free text (features, disclaimers) for grouping:
// lowercase, punctuation stripped, whitespace collapsed.
func Phrase(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = nonPhrase.ReplaceAllString(s, "")
	return collapseSpaces(s)
}

// Key normalizes a spec key name: lowercase, spaces and dashes to
// underscores. "Battery Life" -> "battery_life".
func Key(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer(" ", "_", "-", "_").Replace(s)
	for strings.Contains(s, "__") {
		s = strings.ReplaceAll(s, "__", "_")
	}
	return s
}

var spaceRun = regexp.MustCompile(`\s+`)

func collapseSpaces(s string) string {
	return strings.TrimSpace(spaceRun.ReplaceAllString(s, " "))
}
