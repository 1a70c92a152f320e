package model

import "time"

// SourceRef attributes an accepted value to one originating source.
type SourceRef struct {
	URL     string `json:"url"`
	Snippet string `json:"snippet,omitempty"`
}

// SpecValue is the single winning value accepted for a spec key.
type SpecValue struct {
	Value      string      `json:"value"`
	Confidence float64     `json:"confidence"`
	Sources    []SourceRef `json:"sources"`
}

// Entry is an accepted feature or disclaimer.
type Entry struct {
	Text       string      `json:"text"`
	Confidence float64     `json:"confidence"`
	Sources    []SourceRef `json:"sources"`
	Inferred   bool        `json:"inferred,omitempty"` // Backfilled from vision/LLM hints, not web-corroborated
}

// ConsolidatedRecord is the final, immutable output of one research request.
// A thin record with empty lists and non-empty warnings is a legitimate
// outcome, not an error state.
type ConsolidatedRecord struct {
	Brand       string    `json:"brand"`
	Product     string    `json:"product"`
	Query       string    `json:"query,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`

	Specs       map[string]SpecValue `json:"specs"`
	Features    []Entry              `json:"features"`
	Disclaimers []Entry              `json:"disclaimers"`
	Warnings    []string             `json:"warnings,omitempty"`

	// Raw keeps a bounded sample of the input claims for audit and debugging.
	// It is never fed to the script generator.
	Raw []Claim `json:"raw_claims,omitempty"`
}

// Thin reports whether the record carries too little verified content for
// downstream script generation.
func (r *ConsolidatedRecord) Thin() bool {
	return len(r.Specs) == 0 && len(r.Features) == 0
}
