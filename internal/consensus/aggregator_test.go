package consensus

import (
	"reflect"
	"strings"
	"testing"

	"prodfact/internal/model"
)

func testConfig() model.ConsensusConfig {
	return model.ConsensusConfig{
		MinConfidence:  0.6,
		MinFeatures:    4,
		MaxFeatures:    20,
		MaxDisclaimers: 10,
	}
}

func specClaim(key, value, source string, provenance float64, order int) model.Claim {
	return model.Claim{
		Key: key, Value: value, Kind: model.KindSpec,
		Source: source, Provenance: provenance, Order: order,
	}
}

func featureClaim(value, source string, provenance float64, order int) model.Claim {
	return model.Claim{
		Key: "feature", Value: value, Kind: model.KindFeature,
		Source: source, Provenance: provenance, Order: order,
	}
}

func disclaimerClaim(value, source string, provenance float64, order int) model.Claim {
	return model.Claim{
		Key: "disclaimer", Value: value, Kind: model.KindDisclaimer,
		Source: source, Provenance: provenance, Order: order,
	}
}

func TestAggregator_Consolidate_EmptyInput(t *testing.T) {
	a := New(testConfig())

	record := a.Consolidate(nil, "Acme", 0.6)

	if !record.Thin() {
		t.Error("expected thin record for empty input")
	}
	if len(record.Warnings) == 0 {
		t.Error("expected a warning for empty input")
	}
}

func TestAggregator_Consolidate_AtMostOneValuePerKey(t *testing.T) {
	a := New(testConfig())

	claims := []model.Claim{
		specClaim("weight", "2 kg", "https://site1.com/p", 0.5, 0),
		specClaim("weight", "2 kg", "https://site2.com/p", 0.5, 1),
		specClaim("weight", "3 kg", "https://site3.com/p", 0.5, 2),
		specClaim("weight", "3 kg", "https://site4.com/p", 0.5, 3),
	}

	record := a.Consolidate(claims, "Acme", 0.6)

	if len(record.Specs) > 1 {
		t.Fatalf("expected at most one spec entry, got %d", len(record.Specs))
	}
	if _, ok := record.Specs["weight"]; !ok {
		t.Fatal("expected a winning value for weight")
	}
}

func TestAggregator_Consolidate_SyntheticOnlySpecRejected(t *testing.T) {
	a := New(testConfig())

	// A spec stated only by hint or fallback sources must never win its
	// key, no matter how permissive the caller's threshold is.
	claims := []model.Claim{
		specClaim("weight", "2 kg", model.SourceVisionHint, 0.2, 5),
		specClaim("capacity", "500 Wh", model.SourceLLMFallback, 0.35, 6),
	}

	record := a.Consolidate(claims, "Acme", 0.5)

	if len(record.Specs) != 0 {
		t.Fatalf("synthetic-only specs must be rejected, got %v", record.Specs)
	}
	found := false
	for _, w := range record.Warnings {
		if strings.Contains(w, "synthetic sources only") {
			found = true
		}
	}
	if !found {
		t.Error("expected a warning for the rejected synthetic specs")
	}
}

func TestAggregator_Consolidate_SyntheticCorroboratesPageSpec(t *testing.T) {
	a := New(testConfig())

	// A hint agreeing with a page source still counts toward confidence.
	claims := []model.Claim{
		specClaim("weight", "2 kg", "https://site1.com/p", 0.5, 0),
		specClaim("weight", "2 kg", model.SourceVisionHint, 0.2, 5),
	}

	record := a.Consolidate(claims, "Acme", 0.6)

	sv, ok := record.Specs["weight"]
	if !ok {
		t.Fatalf("expected page-backed weight spec, warnings: %v", record.Warnings)
	}
	if len(sv.Sources) != 2 {
		t.Errorf("expected the hint to corroborate, got %d sources", len(sv.Sources))
	}
}

func TestAggregator_Consolidate_ManufacturerWinsAgainstCount(t *testing.T) {
	a := New(testConfig())

	// Three generic sources agree on one value; the manufacturer states
	// another. The manufacturer boost must carry its value.
	claims := []model.Claim{
		specClaim("weight", "2 kg", "https://site1.com/p", 0.5, 1),
		specClaim("weight", "2 kg", "https://site2.com/p", 0.5, 2),
		specClaim("weight", "2 kg", "https://site3.com/p", 0.5, 3),
		specClaim("weight", "1.5 kg", "https://acme.com/product", 1.0, 0),
	}

	record := a.Consolidate(claims, "Acme", 0.6)

	sv, ok := record.Specs["weight"]
	if !ok {
		t.Fatal("expected a weight spec")
	}
	if sv.Value != "1.50 kg" {
		t.Errorf("expected manufacturer value 1.50 kg, got %q", sv.Value)
	}
}

func TestAggregator_Consolidate_UnitVariantsAgree(t *testing.T) {
	a := New(testConfig())

	// 2.2 lb and 1 kg normalize to the same bucket and corroborate each
	// other instead of competing.
	claims := []model.Claim{
		specClaim("weight", "2.2 lb", "https://site1.com/p", 0.5, 0),
		specClaim("weight", "1 kg", "https://site2.com/p", 0.5, 1),
	}

	record := a.Consolidate(claims, "Acme", 0.6)

	sv, ok := record.Specs["weight"]
	if !ok {
		t.Fatal("expected agreement to clear the threshold")
	}
	if sv.Value != "1.00 kg" {
		t.Errorf("expected normalized value 1.00 kg, got %q", sv.Value)
	}
	if len(sv.Sources) != 2 {
		t.Errorf("expected 2 sources, got %d", len(sv.Sources))
	}
}

func TestAggregator_Consolidate_BelowThresholdGoesToWarnings(t *testing.T) {
	a := New(testConfig())

	// Single generic source: confidence 0.45 + 0.12 = 0.57 < 0.6.
	claims := []model.Claim{
		specClaim("weight", "2 kg", "https://site1.com/p", 0.5, 0),
	}

	record := a.Consolidate(claims, "Acme", 0.6)

	if _, ok := record.Specs["weight"]; ok {
		t.Error("expected single-source spec to be dropped")
	}
	found := false
	for _, w := range record.Warnings {
		if strings.Contains(w, "weight") {
			found = true
		}
	}
	if !found {
		t.Error("expected a warning naming the dropped key")
	}
}

func TestAggregator_Features_CorroborationRule(t *testing.T) {
	a := New(testConfig())

	claims := []model.Claim{
		// Uncorroborated single generic source: rejected.
		featureClaim("Includes a carry bag", "https://site1.com/p", 0.5, 0),
		// Two independent sources: accepted.
		featureClaim("Folds flat for transport", "https://site1.com/p", 0.5, 0),
		featureClaim("Folds flat for transport", "https://site2.com/p", 0.5, 1),
		// Single manufacturer source: accepted.
		featureClaim("Aluminum pole structure", "https://acme.com/product", 1.0, 2),
	}

	record := a.Consolidate(claims, "Acme", 0.6)

	texts := make(map[string]bool)
	for _, e := range record.Features {
		texts[e.Text] = true
	}

	if texts["Includes a carry bag"] {
		t.Error("uncorroborated single-source feature must be rejected")
	}
	if !texts["Folds flat for transport"] {
		t.Error("two-source feature must be accepted")
	}
	if !texts["Aluminum pole structure"] {
		t.Error("manufacturer-backed feature must be accepted")
	}

	found := false
	for _, w := range record.Warnings {
		if strings.Contains(w, "unverified") {
			found = true
		}
	}
	if !found {
		t.Error("expected a warning about rejected single-source features")
	}
}

func TestAggregator_Disclaimers_RequireCorroboration(t *testing.T) {
	a := New(testConfig())

	claims := []model.Claim{
		disclaimerClaim("Not suitable for children under 3", "https://site1.com/p", 0.5, 0),
		disclaimerClaim("Do not exceed the rated load", "https://acme.com/manual.pdf", 1.0, 1),
	}

	record := a.Consolidate(claims, "Acme", 0.6)

	texts := make(map[string]bool)
	for _, e := range record.Disclaimers {
		texts[e.Text] = true
	}

	if texts["Not suitable for children under 3"] {
		t.Error("single generic-source disclaimer must be rejected")
	}
	if !texts["Do not exceed the rated load"] {
		t.Error("manufacturer disclaimer must be accepted")
	}
}

func TestAggregator_ConfidenceBounds(t *testing.T) {
	a := New(testConfig())

	// Many corroborating sources plus manufacturer: confidence must stay
	// under the epistemic ceiling.
	var claims []model.Claim
	claims = append(claims, specClaim("weight", "2 kg", "https://acme.com/p", 1.0, 0))
	for i := 0; i < 10; i++ {
		claims = append(claims, specClaim("weight", "2 kg",
			"https://site"+string(rune('a'+i))+".com/p", 0.5, i+1))
	}

	record := a.Consolidate(claims, "Acme", 0.6)

	sv, ok := record.Specs["weight"]
	if !ok {
		t.Fatal("expected a weight spec")
	}
	if sv.Confidence > 0.98 {
		t.Errorf("confidence %f exceeds ceiling", sv.Confidence)
	}
	if sv.Confidence < 0.5 {
		t.Errorf("accepted confidence %f below floor", sv.Confidence)
	}
}

func TestAggregator_ConfidenceMonotonicity(t *testing.T) {
	a := New(testConfig())

	two := &model.ClaimGroup{Members: []model.Claim{
		specClaim("weight", "2 kg", "https://site1.com/p", 0.5, 0),
		specClaim("weight", "2 kg", "https://site2.com/p", 0.5, 1),
	}}
	three := &model.ClaimGroup{Members: []model.Claim{
		specClaim("weight", "2 kg", "https://site1.com/p", 0.5, 0),
		specClaim("weight", "2 kg", "https://site2.com/p", 0.5, 1),
		specClaim("weight", "2 kg", "https://site3.com/p", 0.5, 2),
	}}
	withMfr := &model.ClaimGroup{Members: []model.Claim{
		specClaim("weight", "2 kg", "https://site1.com/p", 0.5, 0),
		specClaim("weight", "2 kg", "https://acme.com/p", 1.0, 1),
	}}

	if a.confidence(three, "Acme") < a.confidence(two, "Acme") {
		t.Error("confidence must be non-decreasing in source count")
	}
	if a.confidence(withMfr, "Acme") < a.confidence(two, "Acme") {
		t.Error("confidence must be non-decreasing in manufacturer presence")
	}
}

func TestAggregator_Consolidate_Idempotent(t *testing.T) {
	a := New(testConfig())

	claims := []model.Claim{
		specClaim("weight", "2 kg", "https://site1.com/p", 0.5, 0),
		specClaim("weight", "2 kg", "https://acme.com/p", 1.0, 1),
		featureClaim("Folds flat for transport", "https://site1.com/p", 0.5, 0),
		featureClaim("Folds flat for transport", "https://site2.com/p", 0.5, 1),
	}

	first := a.Consolidate(claims, "Acme", 0.6)
	second := a.Consolidate(claims, "Acme", 0.6)

	if !reflect.DeepEqual(first, second) {
		t.Error("repeated consolidation of the same claims must be identical")
	}
}

func TestAggregator_NeutralFeatureFloor(t *testing.T) {
	a := New(testConfig())

	// Only synthetic hints available. The floor backfills them, capped and
	// marked inferred.
	claims := []model.Claim{
		featureClaim("Visible carry handle", model.SourceVisionHint, 0.2, 5),
		featureClaim("Mesh side pockets", model.SourceVisionHint, 0.2, 5),
	}

	record := a.Consolidate(claims, "Acme", 0.6)

	if len(record.Features) != 2 {
		t.Fatalf("expected 2 backfilled features, got %d", len(record.Features))
	}
	for _, e := range record.Features {
		if !e.Inferred {
			t.Errorf("backfilled feature %q must be marked inferred", e.Text)
		}
		if e.Confidence > 0.6 {
			t.Errorf("backfilled feature confidence %f exceeds cap", e.Confidence)
		}
	}
	found := false
	for _, w := range record.Warnings {
		if strings.Contains(w, "inferred") {
			found = true
		}
	}
	if !found {
		t.Error("expected a warning about inferred features")
	}
}

func TestAggregator_NeutralFloorSkippedWhenEnoughFeatures(t *testing.T) {
	cfg := testConfig()
	cfg.MinFeatures = 1
	a := New(cfg)

	claims := []model.Claim{
		featureClaim("Folds flat for transport", "https://site1.com/p", 0.5, 0),
		featureClaim("Folds flat for transport", "https://site2.com/p", 0.5, 1),
		featureClaim("Visible carry handle", model.SourceVisionHint, 0.2, 5),
	}

	record := a.Consolidate(claims, "Acme", 0.6)

	for _, e := range record.Features {
		if e.Inferred {
			t.Errorf("no backfill expected when the floor is met, got %q", e.Text)
		}
	}
}

func TestAggregator_TieBreak_ProvenanceThenOrder(t *testing.T) {
	a := New(testConfig())

	// Equal source counts, no manufacturer. Higher total provenance wins.
	claims := []model.Claim{
		specClaim("weight", "2 kg", "https://site1.com/p", 0.5, 2),
		specClaim("weight", "3 kg", "https://rei.com/p", 0.75, 3),
	}
	record := a.Consolidate(claims, "Acme", 0)
	if record.Specs["weight"].Value != "3.00 kg" {
		t.Errorf("expected higher-provenance value to win, got %q", record.Specs["weight"].Value)
	}

	// Full tie: earliest discovery order wins.
	claims = []model.Claim{
		specClaim("weight", "3 kg", "https://site2.com/p", 0.5, 1),
		specClaim("weight", "2 kg", "https://site1.com/p", 0.5, 0),
	}
	record = a.Consolidate(claims, "Acme", 0)
	if record.Specs["weight"].Value != "2.00 kg" {
		t.Errorf("expected earliest-order value to win, got %q", record.Specs["weight"].Value)
	}
}

func TestAggregator_Consolidate_PanicsOnBadKind(t *testing.T) {
	a := New(testConfig())

	defer func() {
		if recover() == nil {
			t.Error("expected panic on unrecognized claim kind")
		}
	}()

	a.Consolidate([]model.Claim{
		{Key: "weight", Value: "2 kg", Kind: "bogus", Source: "https://site1.com/p"},
	}, "Acme", 0.6)
}

func TestAggregator_RawClaimsBounded(t *testing.T) {
	a := New(testConfig())

	var claims []model.Claim
	for i := 0; i < 50; i++ {
		claims = append(claims, specClaim("weight", "2 kg", "https://site1.com/p", 0.5, i))
	}

	record := a.Consolidate(claims, "Acme", 0)

	if len(record.Raw) > 30 {
		t.Errorf("expected raw claim sample bounded at 30, got %d", len(record.Raw))
	}
}
