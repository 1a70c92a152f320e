package fetch

import (
	"context"
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// RodRenderer renders JS-heavy pages with a headless browser. A browser is
// launched lazily on first use and reused for the life of the renderer.
type RodRenderer struct {
	browser *rod.Browser
	cleanup func()
}

// NewRodRenderer creates the renderer without launching a browser yet.
func NewRodRenderer() *RodRenderer {
	return &RodRenderer{}
}

// Render loads the URL in a headless page and returns the settled HTML.
func (r *RodRenderer) Render(ctx context.Context, url string) (string, error) {
	browser, err := r.connect()
	if err != nil {
		return "", err
	}

	page, err := browser.Context(ctx).Page(proto.TargetCreateTarget{URL: url})
	if err != nil {
		return "", fmt.Errorf("open page: %w", err)
	}
	defer func() { _ = page.Close() }()

	if err := page.WaitLoad(); err != nil {
		return "", fmt.Errorf("wait load: %w", err)
	}

	html, err := page.HTML()
	if err != nil {
		return "", fmt.Errorf("page html: %w", err)
	}
	return html, nil
}

func (r *RodRenderer) connect() (*rod.Browser, error) {
	if r.browser != nil {
		return r.browser, nil
	}

	l := launcher.New().Headless(true)
	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Cleanup()
		return nil, fmt.Errorf("connect browser: %w", err)
	}

	r.browser = browser
	r.cleanup = l.Cleanup
	return browser, nil
}

// Close shuts the browser down.
func (r *RodRenderer) Close() {
	if r.browser != nil {
		_ = r.browser.Close()
		r.browser = nil
	}
	if r.cleanup != nil {
		r.cleanup()
		r.cleanup = nil
	}
}
