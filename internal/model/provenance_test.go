package model

import "testing"

func TestBrandToken(t *testing.T) {
	tests := []struct {
		brand string
		want  string
	}{
		{"Helinox", "helinox"},
		{"Arc'teryx", "arcteryx"},
		{"Anker Innovations Ltd.", "anker"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := BrandToken(tt.brand); got != tt.want {
			t.Errorf("BrandToken(%q) = %q, want %q", tt.brand, got, tt.want)
		}
	}
}

func TestIsManufacturer(t *testing.T) {
	tests := []struct {
		source string
		brand  string
		want   bool
	}{
		{"https://helinox.com/products/chair-one", "Helinox", true},
		{"https://www.helinox.com/products/chair-one", "Helinox", true},
		{"https://shop.helinox.eu/chair", "Helinox", true},
		{"https://arcteryx.com/jacket", "Arc'teryx", true},
		// Brand token inside a longer label is not a brand domain.
		{"https://notarcteryxfan.blog/review", "Arc'teryx", false},
		{"https://rei.com/product/helinox-chair-one", "Helinox", false},
		{"https://helinox.com/x", "", false},
		{SourceLLMFallback, "Helinox", false},
	}
	for _, tt := range tests {
		if got := IsManufacturer(tt.source, tt.brand); got != tt.want {
			t.Errorf("IsManufacturer(%q, %q) = %v, want %v", tt.source, tt.brand, got, tt.want)
		}
	}
}

func TestProvenanceScore(t *testing.T) {
	retailers := []string{"amazon.com", "rei.com"}

	tests := []struct {
		source string
		want   float64
	}{
		{"https://helinox.com/products/chair-one", ProvenanceManufacturer},
		{"https://www.rei.com/product/123", ProvenanceRetailer},
		{"https://smile.amazon.com/dp/B01", ProvenanceRetailer},
		{"https://randomblog.net/review", ProvenanceGeneric},
		{SourceLLMFallback, ProvenanceLLM},
		{SourceVisionHint, ProvenanceVision},
	}
	for _, tt := range tests {
		if got := ProvenanceScore(tt.source, "Helinox", retailers); got != tt.want {
			t.Errorf("ProvenanceScore(%q) = %f, want %f", tt.source, got, tt.want)
		}
	}
}

func TestClaim_MustValidate(t *testing.T) {
	good := Claim{Key: "weight", Value: "1 kg", Kind: KindSpec, Source: "https://example.com"}
	good.MustValidate()

	assertPanics := func(name string, c Claim) {
		defer func() {
			if recover() == nil {
				t.Errorf("%s: expected panic", name)
			}
		}()
		c.MustValidate()
	}
	assertPanics("bad kind", Claim{Key: "weight", Kind: "bogus", Source: "https://example.com"})
	assertPanics("empty source", Claim{Key: "weight", Kind: KindSpec})
}

func TestClaimGroup_Counts(t *testing.T) {
	g := &ClaimGroup{Members: []Claim{
		{Source: "https://a.com", Provenance: 0.5, Order: 3},
		{Source: "https://a.com", Provenance: 0.5, Order: 1},
		{Source: "https://b.com", Provenance: 1.0, Order: 2},
	}}

	if g.SourceCount() != 2 {
		t.Errorf("SourceCount = %d, want 2", g.SourceCount())
	}
	if g.MemberCount() != 3 {
		t.Errorf("MemberCount = %d, want 3", g.MemberCount())
	}
	if g.TotalProvenance() != 2.0 {
		t.Errorf("TotalProvenance = %f, want 2.0", g.TotalProvenance())
	}
	if g.FirstOrder() != 1 {
		t.Errorf("FirstOrder = %d, want 1", g.FirstOrder())
	}
	if g.SyntheticOnly() {
		t.Error("page-sourced group must not be synthetic-only")
	}
}

func TestClaimGroup_SyntheticOnly(t *testing.T) {
	g := &ClaimGroup{Members: []Claim{
		{Source: SourceVisionHint},
		{Source: SourceLLMFallback},
	}}
	if !g.SyntheticOnly() {
		t.Error("group of sentinel sources must be synthetic-only")
	}

	empty := &ClaimGroup{}
	if empty.SyntheticOnly() {
		t.Error("empty group must not be synthetic-only")
	}
}
