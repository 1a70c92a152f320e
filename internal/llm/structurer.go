package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"prodfact/internal/model"
	"prodfact/internal/normalize"
)

// ParseStructured extracts the JSON object from a model response and parses
// it into a StructureResponse. Models occasionally wrap the object in prose
// or markdown fences despite instructions, so parsing starts at the first
// '{' and ends at the last '}'.
func ParseStructured(text string) (*StructureResponse, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return nil, fmt.Errorf("no JSON object in model response")
	}

	var resp StructureResponse
	if err := json.Unmarshal([]byte(text[start:end+1]), &resp); err != nil {
		return nil, fmt.Errorf("parse model response: %w", err)
	}
	if resp.Status == "" {
		return nil, fmt.Errorf("model response missing status")
	}
	return &resp, nil
}

// Structurer runs the fallback extraction through a provider and converts
// the result into claims attributable to the synthetic llm-fallback source.
type Structurer struct {
	provider Provider
	config   Config
}

// NewStructurer wraps a provider. A nil provider is allowed and yields a
// Structurer whose Extract always returns no claims.
func NewStructurer(provider Provider, config Config) *Structurer {
	return &Structurer{provider: provider, config: config}
}

// Enabled reports whether a provider is configured.
func (s *Structurer) Enabled() bool {
	return s != nil && s.provider != nil
}

// Extract performs one structured-extraction call and converts the response
// into claims. A NOT_FOUND response or an unavailable provider returns no
// claims and no error.
func (s *Structurer) Extract(ctx context.Context, brand, product, rawText string) ([]model.Claim, error) {
	if !s.Enabled() {
		return nil, nil
	}
	if !s.provider.IsAvailable(ctx) {
		return nil, fmt.Errorf("llm provider %s not available", s.provider.Name())
	}

	resp, err := s.provider.Structure(ctx, StructureRequest{
		Brand:     brand,
		Product:   product,
		RawText:   rawText,
		Model:     s.config.Model,
		MaxTokens: s.config.MaxTokens,
	})
	if err != nil {
		return nil, err
	}
	if !resp.Found() {
		return nil, nil
	}
	return Claims(resp), nil
}

// Claims converts a parsed response into claims. All carry the llm-fallback
// source so consensus weighting treats them as a single low-trust voice.
func Claims(resp *StructureResponse) []model.Claim {
	if !resp.Found() {
		return nil
	}

	var claims []model.Claim

	keys := make([]string, 0, len(resp.Specs))
	for k := range resp.Specs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := strings.TrimSpace(resp.Specs[k])
		if v == "" {
			continue
		}
		claims = append(claims, model.Claim{
			Key:        normalize.Key(k),
			Value:      v,
			Kind:       model.KindSpec,
			Source:     model.SourceLLMFallback,
			Provenance: model.ProvenanceLLM,
		})
	}

	for _, f := range resp.Features {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		claims = append(claims, model.Claim{
			Key:        "feature",
			Value:      f,
			Kind:       model.KindFeature,
			Source:     model.SourceLLMFallback,
			Provenance: model.ProvenanceLLM,
		})
	}

	for _, d := range resp.Disclaimers {
		d = strings.TrimSpace(d)
		if d == "" {
			continue
		}
		claims = append(claims, model.Claim{
			Key:        "disclaimer",
			Value:      d,
			Kind:       model.KindDisclaimer,
			Source:     model.SourceLLMFallback,
			Provenance: model.ProvenanceLLM,
		})
	}

	return claims
}
