// Package pipeline orchestrates one research request end to end: candidate
// discovery, guarded concurrent fetch+extract, vision/OCR hint conversion,
// the optional LLM fallback, and consensus. The pipeline never fails on
// missing data; every degradation shows up as warnings on the record.
package pipeline

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"prodfact/internal/category"
	"prodfact/internal/consensus"
	"prodfact/internal/discover"
	"prodfact/internal/extract"
	"prodfact/internal/fetch"
	"prodfact/internal/llm"
	"prodfact/internal/model"
	"prodfact/internal/worker"
)

// Request describes one product to research.
type Request struct {
	Brand   string
	Product string

	// ProductURL skips discovery and researches a single page directly.
	ProductURL string

	// Category gates candidate pages and hint text; empty disables the guard.
	Category string

	// Hints are extra search terms appended to the primary query variant.
	Hints []string

	// VisibleFeatures, CategoryTags, and OCRLines come from an upstream
	// vision stage. They become vision-hint claims at floor provenance.
	VisibleFeatures []string
	CategoryTags    []string
	OCRLines        []string

	// MinConfidence overrides the configured acceptance threshold when > 0.
	MinConfidence float64
}

// Pipeline wires the research stages together.
type Pipeline struct {
	discovery  *discover.Discovery
	fetcher    *fetch.Fetcher
	extractor  *extract.Extractor
	guard      *category.Guard
	aggregator *consensus.Aggregator
	structurer *llm.Structurer
	config     *model.Config
}

// New creates a pipeline. structurer may be nil to disable the LLM fallback.
func New(discovery *discover.Discovery, fetcher *fetch.Fetcher, guard *category.Guard,
	structurer *llm.Structurer, config *model.Config) *Pipeline {
	return &Pipeline{
		discovery:  discovery,
		fetcher:    fetcher,
		extractor:  extract.New(),
		guard:      guard,
		aggregator: consensus.New(config.Consensus),
		structurer: structurer,
		config:     config,
	}
}

// Research runs the full pipeline and returns the consolidated record.
func (p *Pipeline) Research(ctx context.Context, req Request) *model.ConsolidatedRecord {
	minConf := req.MinConfidence
	if minConf <= 0 {
		minConf = p.config.Consensus.MinConfidence
	}

	var warnings []string

	candidates := p.candidates(ctx, req)
	if len(candidates) == 0 && req.ProductURL == "" {
		warnings = append(warnings, "discovery returned no candidates")
	}

	claims := p.fetchAndExtract(ctx, req, candidates)
	pageClaims := len(claims)

	hintClaims, hintWarnings := p.hintClaims(req, len(candidates))
	claims = append(claims, hintClaims...)
	warnings = append(warnings, hintWarnings...)

	if p.structurer.Enabled() && pageClaims < p.config.LLM.MinPageClaims {
		llmClaims, err := p.structurer.Extract(ctx, req.Brand, req.Product, "")
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("llm fallback failed: %v", err))
		}
		for _, c := range llmClaims {
			if c.Kind != model.KindSpec && !p.guard.OK(c.Value, req.Category) {
				continue
			}
			c.Order = len(candidates) + 1
			claims = append(claims, c)
		}
	}

	record := p.aggregator.Consolidate(claims, req.Brand, minConf)
	record.Product = req.Product
	record.Query = strings.TrimSpace(req.Brand + " " + req.Product)
	record.GeneratedAt = time.Now().UTC()
	record.Warnings = append(warnings, record.Warnings...)
	return record
}

func (p *Pipeline) candidates(ctx context.Context, req Request) []discover.Candidate {
	if req.ProductURL != "" {
		return []discover.Candidate{{URL: req.ProductURL}}
	}
	return p.discovery.Discover(ctx, req.Brand, req.Product, req.Hints)
}

// fetchJob fetches and extracts one candidate on the worker pool.
type fetchJob struct {
	pipeline  *Pipeline
	candidate discover.Candidate
	index     int
	request   Request
}

type fetchResult struct {
	index  int
	claims []model.Claim
}

func (r *fetchResult) GetError() error { return nil }

func (j *fetchJob) Execute(ctx context.Context) worker.Result {
	return &fetchResult{
		index:  j.index,
		claims: j.pipeline.pageClaims(ctx, j.request, j.candidate, j.index),
	}
}

// fetchAndExtract runs candidates through the pool and reconstructs
// discovery order, so downstream tie-breaking stays deterministic.
func (p *Pipeline) fetchAndExtract(ctx context.Context, req Request, candidates []discover.Candidate) []model.Claim {
	if len(candidates) == 0 {
		return nil
	}

	pool := worker.NewPool(p.config.Concurrency.FetchWorkers)
	pool.Start()
	for i, c := range candidates {
		pool.Submit(&fetchJob{pipeline: p, candidate: c, index: i, request: req})
	}

	results := make([]*fetchResult, 0, len(candidates))
	for _, r := range pool.Wait() {
		results = append(results, r.(*fetchResult))
	}
	sort.Slice(results, func(i, j int) bool { return results[i].index < results[j].index })

	var claims []model.Claim
	for _, r := range results {
		claims = append(claims, r.claims...)
	}
	return claims
}

// pageClaims fetches one candidate and extracts its claims. Any skip reason
// (fetch failure, listing page, category mismatch) yields nil.
func (p *Pipeline) pageClaims(ctx context.Context, req Request, cand discover.Candidate, index int) []model.Claim {
	page := p.fetcher.Fetch(ctx, cand.URL)
	if page == nil {
		return nil
	}

	if !page.IsPDF() {
		if !discover.PageUseful(string(page.Body)) {
			return nil
		}
		if !p.guard.OK(extract.VisibleText(page.Body, 4000), req.Category) {
			return nil
		}
	}

	source := page.FinalURL
	if source == "" {
		source = page.URL
	}

	claims := p.extractor.Extract(page.Body, page.MediaType, source)

	// PDFs carry no cheap pre-extraction text, so the guard runs over the
	// extracted evidence instead.
	if page.IsPDF() && !p.guard.OK(claimText(claims), req.Category) {
		return nil
	}

	provenance := model.ProvenanceScore(source, req.Brand, p.config.Consensus.TrustedRetailers)
	for i := range claims {
		claims[i].Provenance = provenance
		claims[i].Order = index
	}
	return claims
}

func claimText(claims []model.Claim) string {
	var b strings.Builder
	for _, c := range claims {
		b.WriteString(c.Snippet)
		b.WriteString("\n")
	}
	return b.String()
}

// hintClaims converts vision/OCR input into vision-hint claims. When the
// request carries category tags and none of them confirms the desired
// category, every vision hint is dropped: a mismatched photo must not feed
// the record.
func (p *Pipeline) hintClaims(req Request, order int) ([]model.Claim, []string) {
	if len(req.VisibleFeatures) == 0 && len(req.OCRLines) == 0 {
		return nil, nil
	}

	if req.Category != "" && len(req.CategoryTags) > 0 {
		confirmed := false
		for _, tag := range req.CategoryTags {
			if p.guard.Match(tag, req.Category) {
				confirmed = true
				break
			}
		}
		if !confirmed {
			return nil, []string{fmt.Sprintf("vision hints dropped: category tags do not confirm %q", req.Category)}
		}
	}

	var claims []model.Claim
	for _, f := range req.VisibleFeatures {
		f = strings.TrimSpace(f)
		if f == "" || !p.guard.OK(f, req.Category) {
			continue
		}
		claims = append(claims, model.Claim{
			Key:        "feature",
			Value:      f,
			Kind:       model.KindFeature,
			Source:     model.SourceVisionHint,
			Snippet:    f,
			Provenance: model.ProvenanceVision,
			Order:      order,
		})
	}

	for _, c := range p.extractor.ExtractLines(req.OCRLines, model.SourceVisionHint) {
		if !p.guard.OK(c.Value, req.Category) {
			continue
		}
		c.Provenance = model.ProvenanceVision
		c.Order = order
		claims = append(claims, c)
	}

	return claims, nil
}
