// Package fetch retrieves candidate pages with caching, robots compliance,
// per-domain rate limiting, and an optional headless-render fallback.
// Every failure mode (network error, wrong content type, timeout, robots
// denial) returns nil: callers treat nil as "skip this candidate."
package fetch

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"prodfact/internal/cache"
	"prodfact/internal/model"
	"prodfact/internal/util"
	"prodfact/internal/worker"
)

// Page is one successfully fetched document.
type Page struct {
	URL       string `json:"url"`       // Requested URL
	FinalURL  string `json:"final_url"` // After redirects
	MediaType string `json:"media_type"`
	Body      []byte `json:"body"`
	FromCache bool   `json:"-"`
	Rendered  bool   `json:"-"` // Produced by the headless fallback
}

// IsPDF reports whether the page is a PDF document.
func (p *Page) IsPDF() bool {
	return strings.Contains(p.MediaType, "pdf")
}

// Renderer is the headless-rendering capability for JS-heavy pages.
type Renderer interface {
	Render(ctx context.Context, url string) (string, error)
}

// Fetcher retrieves pages.
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
	store      cache.Cache
	robots     *robotsChecker
	limiter    *worker.Limiter
	renderer   Renderer
}

// minUsefulHTML is the body size under which a successful fetch is still
// retried through the renderer: tiny documents are usually JS shells.
const minUsefulHTML = 4096

// New creates a fetcher. store and renderer may be nil to disable caching
// and the render fallback.
func New(cfg model.HTTPConfig, store cache.Cache, renderer Renderer) *Fetcher {
	transport := &http.Transport{
		Proxy: util.NewProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy, cfg.NoProxy),
	}
	if cfg.InsecureTLS {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return &Fetcher{
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		userAgent: cfg.UserAgent,
		maxBytes:  cfg.MaxBodyBytes,
		store:     store,
		robots:    newRobotsChecker(cfg.UserAgent, cfg.Timeout),
		limiter:   worker.NewLimiter(cfg.RatePerSecond, cfg.RateBurst),
		renderer:  renderer,
	}
}

// Fetch retrieves a URL, returning nil when the candidate should be
// skipped for any reason.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) *Page {
	if page := f.fromCache(rawURL); page != nil {
		return page
	}

	if !f.robots.allowed(ctx, rawURL) {
		return nil
	}
	if err := f.limiter.Wait(ctx, rawURL); err != nil {
		return nil
	}

	page := f.fetchHTTP(ctx, rawURL)

	// JS-heavy pages ship nearly empty HTML; retry with the renderer.
	if f.renderer != nil && pageTooThin(page) {
		if rendered := f.render(ctx, rawURL); rendered != nil {
			page = rendered
		}
	}

	if page != nil {
		f.toCache(rawURL, page)
	}
	return page
}

func pageTooThin(p *Page) bool {
	return p == nil || (!p.IsPDF() && len(p.Body) < minUsefulHTML)
}

func (f *Fetcher) fetchHTTP(ctx context.Context, rawURL string) *Page {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/pdf;q=0.9,*/*;q=0.5")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil
	}

	mediaType := mediaTypeOf(resp.Header.Get("Content-Type"), rawURL)
	if mediaType == "" {
		return nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return nil
	}

	return &Page{
		URL:       rawURL,
		FinalURL:  resp.Request.URL.String(),
		MediaType: mediaType,
		Body:      body,
	}
}

// mediaTypeOf gates on content type: only HTML and PDF pass. A missing
// header falls back to the URL extension.
func mediaTypeOf(contentType, rawURL string) string {
	ct := strings.ToLower(contentType)
	switch {
	case strings.Contains(ct, "text/html"), strings.Contains(ct, "application/xhtml"):
		return "text/html"
	case strings.Contains(ct, "application/pdf"):
		return "application/pdf"
	case ct == "" && strings.HasSuffix(strings.ToLower(rawURL), ".pdf"):
		return "application/pdf"
	}
	return ""
}

func (f *Fetcher) render(ctx context.Context, rawURL string) *Page {
	html, err := f.renderer.Render(ctx, rawURL)
	if err != nil || len(html) == 0 {
		return nil
	}
	return &Page{
		URL:       rawURL,
		FinalURL:  rawURL,
		MediaType: "text/html",
		Body:      []byte(html),
		Rendered:  true,
	}
}

func (f *Fetcher) fromCache(rawURL string) *Page {
	if f.store == nil {
		return nil
	}
	data, found := f.store.Get(cache.Key(rawURL))
	if !found {
		return nil
	}
	var page Page
	if err := json.Unmarshal(data, &page); err != nil {
		return nil
	}
	page.FromCache = true
	return &page
}

func (f *Fetcher) toCache(rawURL string, page *Page) {
	if f.store == nil {
		return
	}
	data, err := json.Marshal(page)
	if err != nil {
		return
	}
	_ = f.store.Set(cache.Key(rawURL), data, 0)
}
