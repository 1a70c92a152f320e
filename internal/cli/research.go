package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"prodfact/internal/cache"
	"prodfact/internal/category"
	"prodfact/internal/discover"
	"prodfact/internal/fetch"
	"prodfact/internal/llm"
	"prodfact/internal/model"
	"prodfact/internal/pipeline"
)

var (
	outJSON       string
	outMD         string
	productURL    string
	categoryName  string
	hints         []string
	minConfidence float64
	timeout       time.Duration
	userAgent     string
	maxBytes      int64
	noCache       bool
	noFooter      bool
	insecureTLS   bool
	renderPages   bool
	workers       int
	llmEnabled    bool
	llmProvider   string
	llmModel      string

	visibleFeatures []string
	categoryTags    []string
	ocrFile         string
)

// researchCmd represents the research command
var researchCmd = &cobra.Command{
	Use:   "research <brand> <product...>",
	Short: "Research a product and build a consolidated fact record",
	Long: `Research discovers candidate pages for a brand/product pair, extracts
attributed claims from them, and consolidates the claims into a single
confidence-weighted record:

- Specs carry at most one winning value per attribute
- Features and disclaimers require corroboration or a manufacturer source
- Every accepted value lists the sources that stated it
- Anything dropped or degraded shows up in warnings

Example:
  prodfact research Anker "Soundcore Space Q45"
  prodfact research Jackery "Explorer 500" --category "power station" --json record.json
  prodfact research Helinox "Chair One" --url https://helinox.com/products/chair-one`,
	Args: cobra.MinimumNArgs(2),
	RunE: runResearch,
}

func init() {
	rootCmd.AddCommand(researchCmd)

	// Output flags
	researchCmd.Flags().StringVar(&outJSON, "json", "", "output JSON path (optional)")
	researchCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	researchCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown output")

	// Research flags
	researchCmd.Flags().StringVar(&productURL, "url", "", "skip discovery and research this page directly")
	researchCmd.Flags().StringVar(&categoryName, "category", "", "expected product category for cross-checking candidate pages")
	researchCmd.Flags().StringArrayVar(&hints, "hint", nil, "extra search term (repeatable)")
	researchCmd.Flags().Float64Var(&minConfidence, "min-confidence", 0, "acceptance threshold override (0 = configured default)")

	// HTTP flags
	researchCmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall research timeout")
	researchCmd.Flags().StringVar(&userAgent, "ua", "", "HTTP User-Agent override")
	researchCmd.Flags().Int64Var(&maxBytes, "max-bytes", 2_000_000, "max response bytes to read per page")
	researchCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable cache (force fresh fetches)")
	researchCmd.Flags().BoolVar(&insecureTLS, "insecure", false, "skip TLS certificate verification")
	researchCmd.Flags().BoolVar(&renderPages, "render", false, "enable headless rendering for JS-heavy pages")
	researchCmd.Flags().IntVar(&workers, "workers", 0, "concurrent fetch workers (0 = configured default)")

	// LLM flags
	researchCmd.Flags().BoolVar(&llmEnabled, "llm", false, "enable the LLM structured-extraction fallback")
	researchCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai, gemini, ollama)")
	researchCmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name (provider default if empty)")

	// Vision hint flags
	researchCmd.Flags().StringArrayVar(&visibleFeatures, "visible-feature", nil, "feature visible in product imagery (repeatable)")
	researchCmd.Flags().StringArrayVar(&categoryTags, "category-tag", nil, "category tag from product imagery (repeatable)")
	researchCmd.Flags().StringVar(&ocrFile, "ocr-file", "", "file with OCR text lines from packaging or labels")
}

func runResearch(cmd *cobra.Command, args []string) error {
	brand := args[0]
	product := strings.Join(args[1:], " ")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Researching: %s %s\n", brand, product)
		fmt.Fprintf(os.Stderr, "Timeout: %v\n", timeout)
		fmt.Fprintf(os.Stderr, "Cache: %v\n", cfg.Cache.Enabled)
		fmt.Fprintln(os.Stderr)
	}

	ocrLines, err := readLines(ocrFile)
	if err != nil {
		return err
	}

	var store cache.Cache
	if cfg.Cache.Enabled {
		store = cache.NewLayeredCache(cfg.Cache.MemoryTTL, cfg.Cache.Dir, cfg.Cache.DiskTTL)
	}

	var renderer fetch.Renderer
	if cfg.HTTP.RenderFallback {
		rod := fetch.NewRodRenderer()
		defer rod.Close()
		renderer = rod
	}

	searcher := discover.NewDuckDuckGo(cfg.Search.Endpoint, cfg.HTTP.UserAgent, cfg.HTTP.Timeout)

	var structurer *llm.Structurer
	if cfg.LLM.Provider != "" {
		llmCfg := llm.ConfigFromModel(cfg.LLM, cfg.HTTP)
		provider, err := llm.NewProvider(llmCfg)
		if err != nil {
			return fmt.Errorf("llm provider: %w", err)
		}
		structurer = llm.NewStructurer(provider, llmCfg)
	}

	p := pipeline.New(
		discover.New(searcher, cfg.Search),
		fetch.New(cfg.HTTP, store, renderer),
		category.NewGuard(cfg.Category),
		structurer,
		cfg,
	)

	record := p.Research(ctx, pipeline.Request{
		Brand:           brand,
		Product:         product,
		ProductURL:      productURL,
		Category:        categoryName,
		Hints:           hints,
		VisibleFeatures: visibleFeatures,
		CategoryTags:    categoryTags,
		OCRLines:        ocrLines,
		MinConfidence:   minConfidence,
	})

	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Accepted %d specs\n", len(record.Specs))
		fmt.Fprintf(os.Stderr, "✓ Accepted %d features\n", len(record.Features))
		fmt.Fprintf(os.Stderr, "✓ Accepted %d disclaimers\n", len(record.Disclaimers))
		fmt.Fprintln(os.Stderr)
	}

	out := pipeline.NewRenderer(cfg.Output.IncludeFooter)
	if outJSON != "" {
		if err := out.RenderJSON(record, outJSON); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if verbose {
			fmt.Printf("✓ Wrote JSON: %s\n", outJSON)
		}
	}
	if outMD != "" {
		if err := out.RenderMarkdown(record, outMD); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		if verbose {
			fmt.Printf("✓ Wrote Markdown: %s\n", outMD)
		}
	}
	out.RenderSummary(record)

	return nil
}

// buildConfig layers the config file (already read by viper) over the
// defaults, then CLI flags over both. Flags win only when actually given,
// so a file-configured value survives an untouched flag default.
func buildConfig(cmd *cobra.Command) (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("apply config file: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("max-bytes") {
		cfg.HTTP.MaxBodyBytes = maxBytes
	}
	if flags.Changed("insecure") {
		cfg.HTTP.InsecureTLS = insecureTLS
	}
	if flags.Changed("render") {
		cfg.HTTP.RenderFallback = renderPages
	}
	if flags.Changed("no-cache") {
		cfg.Cache.Enabled = !noCache
	}
	if flags.Changed("no-footer") {
		cfg.Output.IncludeFooter = !noFooter
	}
	cfg.Output.Verbose = verbose
	if userAgent != "" {
		cfg.HTTP.UserAgent = userAgent
	}
	if workers > 0 {
		cfg.Concurrency.FetchWorkers = workers
	}

	if llmEnabled {
		cfg.LLM.Provider = llmProvider
		if llmModel != "" {
			cfg.LLM.Model = llmModel
		}
	}
	switch cfg.LLM.Provider {
	case "":
	case "openai":
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.LLM.APIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case "gemini", "google":
		cfg.LLM.APIKey = os.Getenv("GOOGLE_API_KEY")
		if cfg.LLM.APIKey == "" {
			return nil, fmt.Errorf("GOOGLE_API_KEY environment variable not set")
		}
	case "ollama":
		// Ollama doesn't need an API key
		if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
			cfg.LLM.BaseURL = baseURL
		}
	}

	return cfg, nil
}

// readLines reads non-empty lines from a file; an empty path yields nil.
func readLines(path string) ([]string, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, scanner.Err()
}
