package model

import "fmt"

// ClaimKind categorizes the nature of an extracted assertion
type ClaimKind string

const (
	KindSpec       ClaimKind = "spec"       // Keyed attribute (weight, battery_life, ...)
	KindFeature    ClaimKind = "feature"    // Short product-part statement
	KindDisclaimer ClaimKind = "disclaimer" // Safety or usage caution
)

// Valid reports whether k is one of the three recognized kinds.
func (k ClaimKind) Valid() bool {
	switch k {
	case KindSpec, KindFeature, KindDisclaimer:
		return true
	}
	return false
}

// Sentinel sources for claims that did not come from a fetched page.
// Every claim carries a source classification, even a synthetic one,
// so consensus can always explain why a value was accepted.
const (
	SourceLLMFallback = "llm-fallback"
	SourceVisionHint  = "vision-hint"
)

// Claim is a single attributed assertion extracted from one source.
type Claim struct {
	Key        string    `json:"key"`               // Normalized attribute name, or "feature"/"disclaimer"
	Value      string    `json:"value"`             // Extracted value text
	Kind       ClaimKind `json:"kind"`              // spec | feature | disclaimer
	Source     string    `json:"source"`            // Originating URL or sentinel
	Snippet    string    `json:"snippet,omitempty"` // Evidence context for audit
	Provenance float64   `json:"provenance_score"`  // Source trust weight
	Order      int       `json:"-"`                 // Discovery order of the source, for deterministic tie-breaks
}

// Synthetic reports whether the claim came from a non-page source.
func (c Claim) Synthetic() bool {
	return c.Source == SourceLLMFallback || c.Source == SourceVisionHint
}

// MustValidate panics if the claim violates the data-model contract.
// Contract violations are programming errors, never recoverable input.
func (c Claim) MustValidate() {
	if !c.Kind.Valid() {
		panic(fmt.Sprintf("claim %q: unrecognized kind %q", c.Key, c.Kind))
	}
	if c.Source == "" {
		panic(fmt.Sprintf("claim %q: empty source", c.Key))
	}
}

// ClaimGroup is the set of claims that agree on a normalized key/value,
// differing at most in superficial formatting. All members share the same
// kind and normalized key.
type ClaimGroup struct {
	Key     string    `json:"key"`
	Norm    string    `json:"norm"` // Normalized value the members agree on
	Kind    ClaimKind `json:"kind"`
	Members []Claim   `json:"members"`
}

// MemberCount returns the number of member claims.
func (g *ClaimGroup) MemberCount() int {
	return len(g.Members)
}

// SourceCount returns the number of distinct sources among the members.
func (g *ClaimGroup) SourceCount() int {
	seen := make(map[string]bool, len(g.Members))
	for _, m := range g.Members {
		seen[m.Source] = true
	}
	return len(seen)
}

// TotalProvenance sums the provenance weights of all members.
func (g *ClaimGroup) TotalProvenance() float64 {
	var total float64
	for _, m := range g.Members {
		total += m.Provenance
	}
	return total
}

// FirstOrder returns the earliest discovery order among the members.
func (g *ClaimGroup) FirstOrder() int {
	first := int(^uint(0) >> 1)
	for _, m := range g.Members {
		if m.Order < first {
			first = m.Order
		}
	}
	return first
}

// SyntheticOnly reports whether every member came from a sentinel source.
func (g *ClaimGroup) SyntheticOnly() bool {
	for _, m := range g.Members {
		if !m.Synthetic() {
			return false
		}
	}
	return len(g.Members) > 0
}
