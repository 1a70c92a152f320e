package model

import (
	"os"
	"path/filepath"
	"time"
)

// Config is the complete runtime configuration. Every component receives the
// section it needs through its constructor; there is no package-level state.
type Config struct {
	HTTP        HTTPConfig        `yaml:"http" mapstructure:"http"`
	Cache       CacheConfig       `yaml:"cache" mapstructure:"cache"`
	Search      SearchConfig      `yaml:"search" mapstructure:"search"`
	Consensus   ConsensusConfig   `yaml:"consensus" mapstructure:"consensus"`
	Category    CategoryConfig    `yaml:"category" mapstructure:"category"`
	LLM         LLMConfig         `yaml:"llm" mapstructure:"llm"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
}

// HTTPConfig controls fetching behavior.
type HTTPConfig struct {
	Timeout        time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent      string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes   int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	InsecureTLS    bool          `yaml:"insecure_tls" mapstructure:"insecure_tls"`
	RatePerSecond  float64       `yaml:"rate_per_second" mapstructure:"rate_per_second"` // Per-domain request rate
	RateBurst      int           `yaml:"rate_burst" mapstructure:"rate_burst"`
	RenderFallback bool          `yaml:"render_fallback" mapstructure:"render_fallback"` // Headless render for JS-heavy pages
	HTTPProxy      string        `yaml:"http_proxy" mapstructure:"http_proxy"`
	HTTPSProxy     string        `yaml:"https_proxy" mapstructure:"https_proxy"`
	NoProxy        string        `yaml:"no_proxy" mapstructure:"no_proxy"`
}

// CacheConfig controls the layered fetch cache.
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// SearchConfig controls candidate discovery.
type SearchConfig struct {
	Endpoint      string `yaml:"endpoint" mapstructure:"endpoint"` // HTML search endpoint, overridable for tests
	MaxResults    int    `yaml:"max_results" mapstructure:"max_results"`
	MaxCandidates int    `yaml:"max_candidates" mapstructure:"max_candidates"`
}

// ConsensusConfig controls claim aggregation.
type ConsensusConfig struct {
	MinConfidence    float64  `yaml:"min_confidence" mapstructure:"min_confidence"`
	MinFeatures      int      `yaml:"min_features" mapstructure:"min_features"` // Neutral-feature floor
	MaxFeatures      int      `yaml:"max_features" mapstructure:"max_features"`
	MaxDisclaimers   int      `yaml:"max_disclaimers" mapstructure:"max_disclaimers"`
	TrustedRetailers []string `yaml:"trusted_retailers" mapstructure:"trusted_retailers"`
}

// KeywordSet holds the allow/deny markers for one product category.
// These are configuration data, extendable without code changes.
type KeywordSet struct {
	Allow []string `yaml:"allow" mapstructure:"allow"`
	Deny  []string `yaml:"deny" mapstructure:"deny"`
}

// CategoryConfig maps category names to their keyword sets.
type CategoryConfig struct {
	Categories map[string]KeywordSet `yaml:"categories" mapstructure:"categories"`
}

// LLMConfig controls the structured-extraction fallback.
type LLMConfig struct {
	Provider  string `yaml:"provider" mapstructure:"provider"` // openai, gemini, ollama, "" = disabled
	Model     string `yaml:"model" mapstructure:"model"`
	APIKey    string `yaml:"-" mapstructure:"-"` // From environment only, never persisted
	BaseURL   string `yaml:"base_url" mapstructure:"base_url"`
	Timeout   int    `yaml:"timeout_seconds" mapstructure:"timeout_seconds"`
	MaxTokens int    `yaml:"max_tokens" mapstructure:"max_tokens"`
	// MinPageClaims is the extraction-thinness threshold below which the
	// LLM fallback is consulted.
	MinPageClaims int `yaml:"min_page_claims" mapstructure:"min_page_claims"`
}

// ConcurrencyConfig controls worker counts.
type ConcurrencyConfig struct {
	FetchWorkers int `yaml:"fetch_workers" mapstructure:"fetch_workers"`
}

// OutputConfig controls rendering.
type OutputConfig struct {
	Verbose       bool `yaml:"verbose" mapstructure:"verbose"`
	IncludeFooter bool `yaml:"include_footer" mapstructure:"include_footer"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	cacheDir := filepath.Join(os.TempDir(), "prodfact-cache")
	return &Config{
		HTTP: HTTPConfig{
			Timeout:        15 * time.Second,
			UserAgent:      "prodfact/0.1 (+https://github.com/prodfact)",
			MaxBodyBytes:   2_000_000,
			RatePerSecond:  2,
			RateBurst:      4,
			RenderFallback: false,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       cacheDir,
			MemoryTTL: 15 * time.Minute,
			DiskTTL:   24 * time.Hour,
		},
		Search: SearchConfig{
			Endpoint:      "https://html.duckduckgo.com/html/",
			MaxResults:    6,
			MaxCandidates: 8,
		},
		Consensus: ConsensusConfig{
			MinConfidence:  0.6,
			MinFeatures:    4,
			MaxFeatures:    20,
			MaxDisclaimers: 10,
			TrustedRetailers: []string{
				"amazon.com", "rei.com", "bestbuy.com", "walmart.com",
				"target.com", "homedepot.com", "backcountry.com",
			},
		},
		Category: CategoryConfig{
			Categories: defaultCategories(),
		},
		LLM: LLMConfig{
			Provider:      "",
			Timeout:       45,
			MaxTokens:     1024,
			MinPageClaims: 5,
		},
		Concurrency: ConcurrencyConfig{
			FetchWorkers: 4,
		},
		Output: OutputConfig{
			IncludeFooter: true,
		},
	}
}

// defaultCategories seeds the category guard. Deny markers are vocabulary
// strongly associated with *other* categories that share ambiguous terms;
// deny always takes precedence over allow.
func defaultCategories() map[string]KeywordSet {
	return map[string]KeywordSet{
		"headphones": {
			Allow: []string{
				"headphone", "headphones", "earbud", "earbuds", "driver",
				"impedance", "noise cancelling", "anc", "ear cup", "bluetooth",
			},
			Deny: []string{
				"wh", "inverter", "power station", "lifepo4", "solar panel",
				"ac outlet",
			},
		},
		"power station": {
			Allow: []string{
				"power station", "wh", "inverter", "lifepo4", "solar",
				"ac outlet", "recharge",
			},
			Deny: []string{
				"impedance", "earbud", "ear cup", "noise cancelling",
			},
		},
		"camping chair": {
			Allow: []string{
				"chair", "seat", "armrest", "cup holder", "folding",
				"camping", "recline",
			},
			Deny: []string{
				"impedance", "inverter", "lifepo4", "earbud",
			},
		},
	}
}
