package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// GeminiProvider implements the Provider interface for Google Gemini
// models via the GenAI API.
type GeminiProvider struct {
	client *genai.Client
	config Config
}

// NewGeminiProvider creates a new Gemini provider.
func NewGeminiProvider(config Config) (*GeminiProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey: config.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &GeminiProvider{
		client: client,
		config: config,
	}, nil
}

// Name returns the provider name.
func (p *GeminiProvider) Name() string {
	return "gemini"
}

// IsAvailable reports whether the client was configured. The GenAI API has
// no cheap liveness call, so availability is configuration-level only.
func (p *GeminiProvider) IsAvailable(ctx context.Context) bool {
	return p.client != nil
}

// Structure generates the strict-schema JSON with JSON response MIME type
// enforced.
func (p *GeminiProvider) Structure(ctx context.Context, req StructureRequest) (*StructureResponse, error) {
	model := req.Model
	if model == "" {
		model = p.config.Model
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = p.config.MaxTokens
	}

	resp, err := p.client.Models.GenerateContent(ctx, model,
		genai.Text(BuildPrompt(req)),
		&genai.GenerateContentConfig{
			Temperature:      genai.Ptr[float32](0.2),
			MaxOutputTokens:  int32(maxTokens),
			ResponseMIMEType: "application/json",
		},
	)
	if err != nil {
		return nil, fmt.Errorf("gemini generate: %w", err)
	}

	structured, err := ParseStructured(resp.Text())
	if err != nil {
		return nil, err
	}
	structured.Model = model
	return structured, nil
}
