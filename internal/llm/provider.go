// Package llm is the structured-extraction fallback: when heuristic
// extraction is too thin, one provider call asks for product facts in a
// strict JSON schema. The output is treated as a single low-to-medium-trust
// source in the consensus step, never as authoritative.
package llm

import (
	"context"
	"fmt"
	"strings"

	"prodfact/internal/model"
)

// Provider defines the interface for LLM backends.
type Provider interface {
	// Name returns the provider name.
	Name() string

	// Structure asks the model for product facts in the strict JSON schema.
	Structure(ctx context.Context, req StructureRequest) (*StructureResponse, error)

	// IsAvailable checks if the provider is configured and reachable.
	IsAvailable(ctx context.Context) bool
}

// StructureRequest is the input for one structured-extraction call.
type StructureRequest struct {
	Brand   string
	Product string

	// RawText optionally carries already-fetched page text for the model
	// to structure; when empty the model works from its own knowledge and
	// must follow the two-independent-sources instruction.
	RawText string

	Model     string
	MaxTokens int
}

// StructureResponse is the parsed model output.
type StructureResponse struct {
	// Status is "OK" or "NOT_FOUND" per the schema contract.
	Status string `json:"status"`

	Specs       map[string]string `json:"specs"`
	Features    []string          `json:"features"`
	Disclaimers []string          `json:"disclaimers"`

	Model      string `json:"-"`
	TokensUsed int    `json:"-"`
}

// Found reports whether the model confirmed enough facts to use.
func (r *StructureResponse) Found() bool {
	return r != nil && strings.EqualFold(r.Status, "OK")
}

// Config holds LLM provider configuration.
type Config struct {
	// Provider name: "openai", "gemini", "ollama", "" = disabled.
	Provider string

	Model   string
	APIKey  string
	BaseURL string

	// Timeout for API requests, in seconds.
	Timeout int

	MaxTokens int

	// Proxy settings for the HTTP-level providers.
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults (provider disabled).
func DefaultConfig() Config {
	return Config{
		Timeout:   45,
		MaxTokens: 1024,
	}
}

// schemaExample is shown to the model verbatim; it must return only a JSON
// object of this shape.
const schemaExample = `{
  "status": "OK",
  "specs": { "battery_life": "8 hours", "weight": "0.95 kg" },
  "features": ["short factual bullet", "..."],
  "disclaimers": ["short caution", "..."]
}`

// BuildPrompt constructs the strictly factual retrieval prompt. The
// two-independent-sources instruction and the NOT_FOUND escape hatch are
// the model-side half of the anti-hallucination contract; the consensus
// engine independently down-weights whatever comes back.
func BuildPrompt(req StructureRequest) string {
	var b strings.Builder
	b.WriteString("You are a strictly factual product-spec retriever.\n")
	b.WriteString("Rules:\n")
	b.WriteString("1. State a spec or feature only if you are confident it appears in at least TWO independent sources.\n")
	b.WriteString("2. Keep features as short bullets of at most 120 characters.\n")
	b.WriteString("3. Never invent certifications, percentages, or superlatives.\n")
	b.WriteString("4. Return ONLY a JSON object matching the schema below - no markdown, no extra keys.\n")
	b.WriteString("5. If you cannot confirm at least THREE specs, return {\"status\":\"NOT_FOUND\"} and nothing else.\n\n")
	fmt.Fprintf(&b, "Brand: %s\nProduct: %s\n", req.Brand, req.Product)
	if req.RawText != "" {
		fmt.Fprintf(&b, "\nSource text to structure:\n%s\n", req.RawText)
	}
	fmt.Fprintf(&b, "\nJSON schema you MUST follow exactly:\n%s\n", schemaExample)
	return b.String()
}

// ConfigFromModel converts model.LLMConfig to llm.Config.
func ConfigFromModel(mc model.LLMConfig, hc model.HTTPConfig) Config {
	return Config{
		Provider:   mc.Provider,
		Model:      mc.Model,
		APIKey:     mc.APIKey,
		BaseURL:    mc.BaseURL,
		Timeout:    mc.Timeout,
		MaxTokens:  mc.MaxTokens,
		HTTPProxy:  hc.HTTPProxy,
		HTTPSProxy: hc.HTTPSProxy,
		NoProxy:    hc.NoProxy,
	}
}
