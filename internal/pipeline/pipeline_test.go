package pipeline

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"prodfact/internal/category"
	"prodfact/internal/discover"
	"prodfact/internal/fetch"
	"prodfact/internal/model"
)

// fakeSearcher returns the same candidates for every query variant.
type fakeSearcher struct {
	candidates []discover.Candidate
	calls      int
}

func (f *fakeSearcher) Search(ctx context.Context, query string, maxResults int) ([]discover.Candidate, error) {
	f.calls++
	return f.candidates, nil
}

func pagePadding() string {
	return "<p>" + strings.Repeat("Plain descriptive product prose for density purposes. ", 120) + "</p>"
}

func productServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", http.NotFound)
	mux.HandleFunc("/page1", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body>
<h2>Specifications</h2>
<ul>
<li>Weight: 2 kg</li>
<li>Seat height: 35 cm</li>
<li>Shock-corded aluminum pole structure</li>
</ul>
<p>Warning: do not exceed the rated load.</p>` + pagePadding() + `</body></html>`))
	})
	mux.HandleFunc("/page2", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body>
<ul>
<li>Weight: 4.4 lbs</li>
<li>Shock-corded aluminum pole structure</li>
</ul>
<p>Warning: do not exceed the rated load.</p>` + pagePadding() + `</body></html>`))
	})
	return httptest.NewServer(mux)
}

func testPipeline(searcher discover.Searcher) *Pipeline {
	cfg := model.DefaultConfig()
	cfg.Cache.Enabled = false
	cfg.HTTP.Timeout = 5 * time.Second
	cfg.HTTP.RatePerSecond = 100
	cfg.HTTP.RateBurst = 100
	cfg.Concurrency.FetchWorkers = 2

	return New(
		discover.New(searcher, cfg.Search),
		fetch.New(cfg.HTTP, nil, nil),
		category.NewGuard(cfg.Category),
		nil,
		cfg,
	)
}

func TestPipeline_Research_EndToEnd(t *testing.T) {
	server := productServer(t)
	defer server.Close()

	searcher := &fakeSearcher{candidates: []discover.Candidate{
		{Title: "Page one", URL: server.URL + "/page1"},
		{Title: "Page two", URL: server.URL + "/page2"},
	}}
	p := testPipeline(searcher)

	record := p.Research(context.Background(), Request{Brand: "Acme", Product: "Chair One"})

	// 2 kg and 4.4 lbs agree after normalization; two sources clear the
	// threshold.
	sv, ok := record.Specs["weight"]
	if !ok {
		t.Fatalf("expected a weight spec, warnings: %v", record.Warnings)
	}
	if sv.Value != "2.00 kg" {
		t.Errorf("expected 2.00 kg, got %q", sv.Value)
	}
	if len(sv.Sources) != 2 {
		t.Errorf("expected 2 sources for weight, got %d", len(sv.Sources))
	}

	// Single-source seat height must be dropped into warnings.
	if _, ok := record.Specs["seat_height"]; ok {
		t.Error("single-source seat_height must not be accepted")
	}

	// The corroborated feature and disclaimer survive.
	foundFeature := false
	for _, e := range record.Features {
		if strings.Contains(e.Text, "aluminum pole") {
			foundFeature = true
		}
	}
	if !foundFeature {
		t.Error("expected the two-source feature to be accepted")
	}
	foundDisclaimer := false
	for _, e := range record.Disclaimers {
		if strings.Contains(e.Text, "do not exceed") {
			foundDisclaimer = true
		}
	}
	if !foundDisclaimer {
		t.Error("expected the two-source disclaimer to be accepted")
	}

	if record.Brand != "Acme" || record.Product != "Chair One" {
		t.Error("record must carry the request identity")
	}
	if record.GeneratedAt.IsZero() {
		t.Error("record must carry a generation timestamp")
	}
}

func TestPipeline_Research_EmptyDiscovery(t *testing.T) {
	p := testPipeline(&fakeSearcher{})

	record := p.Research(context.Background(), Request{Brand: "Acme", Product: "Chair One"})

	if !record.Thin() {
		t.Error("expected a thin record with no candidates")
	}
	if len(record.Warnings) == 0 {
		t.Error("expected warnings on a thin record")
	}
}

func TestPipeline_Research_URLOverrideSkipsDiscovery(t *testing.T) {
	server := productServer(t)
	defer server.Close()

	searcher := &fakeSearcher{}
	p := testPipeline(searcher)

	record := p.Research(context.Background(), Request{
		Brand: "Acme", Product: "Chair One",
		ProductURL: server.URL + "/page1",
	})

	if searcher.calls != 0 {
		t.Errorf("discovery must be skipped with --url, got %d searches", searcher.calls)
	}
	if len(record.Raw) == 0 {
		t.Error("expected claims from the overridden URL")
	}
}

func TestPipeline_Research_CategoryGuardBlocksPage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", http.NotFound)
	mux.HandleFunc("/station", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body>
<li>Capacity: 500 Wh</li>
<li>LiFePO4 battery with AC inverter</li>` + pagePadding() + `</body></html>`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	p := testPipeline(&fakeSearcher{})

	record := p.Research(context.Background(), Request{
		Brand: "Acme", Product: "Soundcore Q45",
		ProductURL: server.URL + "/station",
		Category:   "headphones",
	})

	if len(record.Specs) != 0 {
		t.Errorf("wrong-category page must contribute nothing, got %v", record.Specs)
	}
}

func TestPipeline_Research_VisionHints(t *testing.T) {
	p := testPipeline(&fakeSearcher{})

	record := p.Research(context.Background(), Request{
		Brand: "Acme", Product: "Chair One",
		Category:        "camping chair",
		CategoryTags:    []string{"folding camping chair"},
		VisibleFeatures: []string{"Mesh seat back panel", "Cup holder on armrest"},
	})

	// With no web evidence the hints backfill the feature floor, marked
	// inferred.
	if len(record.Features) != 2 {
		t.Fatalf("expected 2 backfilled features, got %d", len(record.Features))
	}
	for _, e := range record.Features {
		if !e.Inferred {
			t.Errorf("hint feature %q must be inferred", e.Text)
		}
		if e.Confidence > 0.6 {
			t.Errorf("hint feature confidence %f exceeds cap", e.Confidence)
		}
	}
}

func TestPipeline_Research_OCRSpecsNeedPageBacking(t *testing.T) {
	p := testPipeline(&fakeSearcher{})

	// Packaging OCR alone must never become a standalone spec, even with a
	// permissive threshold.
	record := p.Research(context.Background(), Request{
		Brand: "Acme", Product: "Chair One",
		Category:      "camping chair",
		OCRLines:      []string{"Weight: 2 kg"},
		MinConfidence: 0.5,
	})

	if len(record.Specs) != 0 {
		t.Errorf("OCR-only specs must not be emitted, got %v", record.Specs)
	}
}

func TestPipeline_Research_MismatchedTagsDropHints(t *testing.T) {
	p := testPipeline(&fakeSearcher{})

	record := p.Research(context.Background(), Request{
		Brand: "Acme", Product: "Chair One",
		Category:        "camping chair",
		CategoryTags:    []string{"over-ear headphones"},
		VisibleFeatures: []string{"Mesh seat back panel"},
	})

	if len(record.Features) != 0 {
		t.Errorf("mismatched category tags must drop vision hints, got %v", record.Features)
	}
	found := false
	for _, w := range record.Warnings {
		if strings.Contains(w, "vision hints dropped") {
			found = true
		}
	}
	if !found {
		t.Error("expected a warning about dropped vision hints")
	}
}
