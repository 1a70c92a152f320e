// Package consensus resolves noisy, multi-source claims into a single
// confidence-weighted record. It is a pure, deterministic function of its
// input: the same claim list always produces the same record, and ties are
// broken by provenance and discovery order, never map iteration.
package consensus

import (
	"fmt"
	"sort"

	"prodfact/internal/model"
	"prodfact/internal/normalize"
)

// Weights are the tunable scoring constants. The real contract is the
// monotonicity and bounds properties, not the specific numbers: confidence
// must be non-decreasing in source count and manufacturer presence, and
// accepted entries stay within [Floor, Ceiling].
type Weights struct {
	Base              float64 // Starting confidence for a single source
	PerSource         float64 // Added per distinct corroborating source
	ManufacturerBonus float64 // Added once if any source is brand-owned
	Floor             float64 // Lower confidence clamp for accepted entries
	Ceiling           float64 // Epistemic ceiling; web facts are never 1.0
	// SelectBoost is the winner-selection bonus for manufacturer-backed
	// groups; manufacturer-stated specs are definitionally authoritative.
	SelectBoost float64
	// InferredCap bounds the confidence of backfilled synthetic features.
	InferredCap float64
}

// DefaultWeights returns the tuned defaults.
func DefaultWeights() Weights {
	return Weights{
		Base:              0.45,
		PerSource:         0.12,
		ManufacturerBonus: 0.2,
		Floor:             0.5,
		Ceiling:           0.98,
		SelectBoost:       2.5,
		InferredCap:       0.6,
	}
}

// Aggregator consolidates claims per (brand, product) request.
type Aggregator struct {
	weights Weights
	config  model.ConsensusConfig
}

// New creates an aggregator with default weights.
func New(config model.ConsensusConfig) *Aggregator {
	return &Aggregator{weights: DefaultWeights(), config: config}
}

// Consolidate resolves the claim multiset into a ConsolidatedRecord.
// An empty claim list is a normal outcome and yields an empty record with
// a warning. A claim with an unrecognized kind is a programming error and
// panics.
func (a *Aggregator) Consolidate(claims []model.Claim, brand string, minConfidence float64) *model.ConsolidatedRecord {
	record := &model.ConsolidatedRecord{
		Brand: brand,
		Specs: make(map[string]model.SpecValue),
	}

	if len(claims) == 0 {
		record.Warnings = append(record.Warnings, "no claims gathered; product may have little or no web presence")
		return record
	}

	var specClaims, featureClaims, disclaimerClaims []model.Claim
	for _, c := range claims {
		c.MustValidate()
		switch c.Kind {
		case model.KindSpec:
			specClaims = append(specClaims, c)
		case model.KindFeature:
			featureClaims = append(featureClaims, c)
		case model.KindDisclaimer:
			disclaimerClaims = append(disclaimerClaims, c)
		}
	}

	a.consolidateSpecs(record, specClaims, brand, minConfidence)
	skippedSynthetic := a.consolidateFeatures(record, featureClaims, brand, minConfidence)
	a.consolidateDisclaimers(record, disclaimerClaims, brand, minConfidence)
	a.backfillFeatures(record, skippedSynthetic)

	if record.Thin() {
		record.Warnings = append(record.Warnings, "insufficient evidence: no verified specs or features")
	}

	if len(claims) > 30 {
		claims = claims[:30]
	}
	record.Raw = claims

	return record
}

// consolidateSpecs picks at most one winning value per spec key. The winner
// is the group with the most independent corroboration, with a decisive
// boost for manufacturer provenance; ties break by total provenance, then
// earliest discovery order.
func (a *Aggregator) consolidateSpecs(record *model.ConsolidatedRecord, claims []model.Claim, brand string, minConfidence float64) {
	byKey := make(map[string][]model.Claim)
	for _, c := range claims {
		byKey[c.Key] = append(byKey[c.Key], c)
	}

	for _, key := range sortedKeys(byKey) {
		groups := groupBy(byKey[key], func(c model.Claim) string {
			return normalize.Value(c.Key, c.Value)
		})

		// Hint and fallback sources may corroborate page evidence but
		// never stand alone as specs.
		backed := make([]*model.ClaimGroup, 0, len(groups))
		for _, g := range groups {
			if !g.SyntheticOnly() {
				backed = append(backed, g)
			}
		}
		if len(backed) == 0 {
			record.Warnings = append(record.Warnings,
				fmt.Sprintf("spec %q dropped: synthetic sources only", key))
			continue
		}

		winner := a.pickWinner(backed, brand)
		conf := a.confidence(winner, brand)
		if conf < minConfidence {
			record.Warnings = append(record.Warnings,
				fmt.Sprintf("spec %q dropped: confidence %.2f below threshold %.2f", key, conf, minConfidence))
			continue
		}

		record.Specs[key] = model.SpecValue{
			Value:      winner.Norm,
			Confidence: conf,
			Sources:    sourceRefs(winner),
		}
	}
}

// pickWinner selects the highest-scoring group. groups is non-empty.
func (a *Aggregator) pickWinner(groups []*model.ClaimGroup, brand string) *model.ClaimGroup {
	best := groups[0]
	bestScore := a.selectScore(best, brand)
	for _, g := range groups[1:] {
		score := a.selectScore(g, brand)
		switch {
		case score > bestScore:
			best, bestScore = g, score
		case score == bestScore:
			if g.TotalProvenance() > best.TotalProvenance() ||
				(g.TotalProvenance() == best.TotalProvenance() && g.FirstOrder() < best.FirstOrder()) {
				best = g
			}
		}
	}
	return best
}

func (a *Aggregator) selectScore(g *model.ClaimGroup, brand string) float64 {
	score := float64(g.SourceCount())
	if hasManufacturer(g, brand) {
		score += a.weights.SelectBoost
	}
	return score
}

// consolidateFeatures applies the corroboration-or-manufacturer rule: a
// feature needs a manufacturer source or at least two independent sources.
// Groups backed only by synthetic sources are withheld for the neutral
// floor and returned to the caller.
func (a *Aggregator) consolidateFeatures(record *model.ConsolidatedRecord, claims []model.Claim, brand string, minConfidence float64) []*model.ClaimGroup {
	groups := groupBy(claims, func(c model.Claim) string {
		return normalize.Phrase(c.Value)
	})

	var entries []scoredEntry
	var synthetic []*model.ClaimGroup
	uncorroborated := 0

	for _, g := range groups {
		if g.SyntheticOnly() {
			synthetic = append(synthetic, g)
			continue
		}
		if !hasManufacturer(g, brand) && g.SourceCount() < 2 {
			uncorroborated++
			continue
		}
		conf := a.confidence(g, brand)
		if conf < minConfidence {
			record.Warnings = append(record.Warnings,
				fmt.Sprintf("feature dropped below confidence threshold: %q", bestWording(g)))
			continue
		}
		entries = append(entries, scoredEntry{
			entry: model.Entry{Text: bestWording(g), Confidence: conf, Sources: sourceRefs(g)},
			order: g.FirstOrder(),
		})
	}

	if uncorroborated > 0 {
		record.Warnings = append(record.Warnings,
			fmt.Sprintf("%d unverified single-source feature(s) rejected", uncorroborated))
	}

	record.Features = sortEntries(entries, a.config.MaxFeatures)
	return synthetic
}

// consolidateDisclaimers uses the same corroboration rule as features, with
// a lower bar: corroborated disclaimers are kept even below the caller's
// confidence threshold, since an unnecessary caution is less harmful than a
// missing one.
func (a *Aggregator) consolidateDisclaimers(record *model.ConsolidatedRecord, claims []model.Claim, brand string, minConfidence float64) {
	groups := groupBy(claims, func(c model.Claim) string {
		return normalize.Phrase(c.Value)
	})

	var entries []scoredEntry
	for _, g := range groups {
		if !hasManufacturer(g, brand) && g.SourceCount() < 2 {
			continue
		}
		conf := a.confidence(g, brand)
		entries = append(entries, scoredEntry{
			entry: model.Entry{Text: bestWording(g), Confidence: conf, Sources: sourceRefs(g)},
			order: g.FirstOrder(),
		})
	}

	record.Disclaimers = sortEntries(entries, a.config.MaxDisclaimers)
}

// backfillFeatures implements the neutral-feature floor: if consensus left
// the feature list too thin for script generation, synthetic-only groups
// are appended as explicitly low-confidence, inferred entries.
func (a *Aggregator) backfillFeatures(record *model.ConsolidatedRecord, synthetic []*model.ClaimGroup) {
	min := a.config.MinFeatures
	if min <= 0 || len(record.Features) >= min || len(synthetic) == 0 {
		return
	}

	sort.SliceStable(synthetic, func(i, j int) bool {
		if synthetic[i].FirstOrder() != synthetic[j].FirstOrder() {
			return synthetic[i].FirstOrder() < synthetic[j].FirstOrder()
		}
		return synthetic[i].Norm < synthetic[j].Norm
	})

	added := 0
	for _, g := range synthetic {
		if len(record.Features) >= min {
			break
		}
		conf := a.confidence(g, "")
		if conf > a.weights.InferredCap {
			conf = a.weights.InferredCap
		}
		record.Features = append(record.Features, model.Entry{
			Text:       bestWording(g),
			Confidence: conf,
			Sources:    sourceRefs(g),
			Inferred:   true,
		})
		added++
	}

	if added > 0 {
		record.Warnings = append(record.Warnings,
			fmt.Sprintf("feature list thin after consensus; %d inferred feature(s) appended at low confidence", added))
	}
}

// confidence is monotonically non-decreasing in source count and
// manufacturer presence, clamped to [Floor, Ceiling].
func (a *Aggregator) confidence(g *model.ClaimGroup, brand string) float64 {
	conf := a.weights.Base + a.weights.PerSource*float64(g.SourceCount())
	if brand != "" && hasManufacturer(g, brand) {
		conf += a.weights.ManufacturerBonus
	}
	if conf < a.weights.Floor {
		conf = a.weights.Floor
	}
	if conf > a.weights.Ceiling {
		conf = a.weights.Ceiling
	}
	return conf
}

func hasManufacturer(g *model.ClaimGroup, brand string) bool {
	for _, m := range g.Members {
		if model.IsManufacturer(m.Source, brand) {
			return true
		}
	}
	return false
}

// bestWording returns the member value with the highest provenance,
// breaking ties by discovery order, so near-duplicate phrasings collapse to
// the most trustworthy wording.
func bestWording(g *model.ClaimGroup) string {
	best := g.Members[0]
	for _, m := range g.Members[1:] {
		if m.Provenance > best.Provenance ||
			(m.Provenance == best.Provenance && m.Order < best.Order) {
			best = m
		}
	}
	return best.Value
}

// sourceRefs lists the distinct sources of a group in discovery order.
func sourceRefs(g *model.ClaimGroup) []model.SourceRef {
	members := append([]model.Claim(nil), g.Members...)
	sort.SliceStable(members, func(i, j int) bool {
		if members[i].Order != members[j].Order {
			return members[i].Order < members[j].Order
		}
		return members[i].Source < members[j].Source
	})

	seen := make(map[string]bool, len(members))
	refs := make([]model.SourceRef, 0, len(members))
	for _, m := range members {
		if seen[m.Source] {
			continue
		}
		seen[m.Source] = true
		refs = append(refs, model.SourceRef{URL: m.Source, Snippet: m.Snippet})
	}
	return refs
}

// groupBy buckets claims by a normalization function, returning groups
// ordered deterministically by their normalized value.
func groupBy(claims []model.Claim, norm func(model.Claim) string) []*model.ClaimGroup {
	byNorm := make(map[string]*model.ClaimGroup)
	for _, c := range claims {
		n := norm(c)
		g, ok := byNorm[n]
		if !ok {
			g = &model.ClaimGroup{Key: c.Key, Norm: n, Kind: c.Kind}
			byNorm[n] = g
		}
		g.Members = append(g.Members, c)
	}

	norms := make([]string, 0, len(byNorm))
	for n := range byNorm {
		norms = append(norms, n)
	}
	sort.Strings(norms)

	groups := make([]*model.ClaimGroup, 0, len(norms))
	for _, n := range norms {
		groups = append(groups, byNorm[n])
	}
	return groups
}

func sortedKeys(m map[string][]model.Claim) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// scoredEntry pairs an entry with its group order for deterministic output.
type scoredEntry struct {
	entry model.Entry
	order int
}

func sortEntries(entries []scoredEntry, max int) []model.Entry {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].entry.Confidence != entries[j].entry.Confidence {
			return entries[i].entry.Confidence > entries[j].entry.Confidence
		}
		if entries[i].order != entries[j].order {
			return entries[i].order < entries[j].order
		}
		return entries[i].entry.Text < entries[j].entry.Text
	})

	if max > 0 && len(entries) > max {
		entries = entries[:max]
	}
	out := make([]model.Entry, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.entry)
	}
	return out
}
